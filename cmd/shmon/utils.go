// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/shmonad/shmon/kv"
	"github.com/shmonad/shmon/log"
)

const defaultMaxCrankAge = 2 * time.Minute

var (
	ledgerBucket = kv.Bucket("l")
	simBucket    = kv.Bucket("s")
	simStateKey  = []byte("state")
)

func initLogger(ctx *cli.Context) *slog.LevelVar {
	var level slog.LevelVar
	level.Set(log.FromVerbosity(ctx.Int(verbosityFlag.Name)))

	if ctx.Bool(jsonLogsFlag.Name) {
		log.SetDefaultJSON(os.Stdout, &level)
	} else {
		useColor := (isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())) && os.Getenv("TERM") != "dumb"
		log.SetDefault(os.Stdout, &level, useColor)
	}
	return &level
}

func defaultDataDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".shmon")
	}
	return filepath.Join(".", ".shmon")
}

// openStore opens the on-disk store, or an in-memory one when persist is false.
func openStore(ctx *cli.Context, persist bool) (*kv.LevelDB, string, error) {
	if !persist {
		db, err := kv.NewMem()
		return db, "Memory", err
	}
	dir := ctx.String(dataDirFlag.Name)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, "", errors.Wrapf(err, "create data dir [%v]", dir)
	}
	path := filepath.Join(dir, "ledger.db")
	db, err := kv.New(path, kv.Options{CacheSize: 16, OpenFilesCacheCapacity: 64})
	if err != nil {
		return nil, "", errors.WithMessagef(err, "open ledger database [%v]", path)
	}
	return db, path, nil
}

func startAPIServer(addr string, handler http.Handler) (string, func(context.Context) error, <-chan error, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, nil, errors.Wrapf(err, "listen API addr [%v]", addr)
	}
	srv := &http.Server{Handler: handler, ReadHeaderTimeout: time.Second, ReadTimeout: 5 * time.Second}
	done := make(chan error, 1)
	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			done <- err
		}
		close(done)
	}()
	return "http://" + listener.Addr().String() + "/", srv.Shutdown, done, nil
}

// handleExitSignal returns a context cancelled on the first interrupt.
func handleExitSignal() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		exitSignalCh := make(chan os.Signal, 1)
		signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)

		sig := <-exitSignalCh
		logger.Info("exit signal received", "signal", sig)
		cancel()
	}()
	return ctx
}
