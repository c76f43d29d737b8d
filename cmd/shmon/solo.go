// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/shmonad/shmon/api"
	"github.com/shmonad/shmon/keeper"
	"github.com/shmonad/shmon/kv"
	"github.com/shmonad/shmon/ledger"
	"github.com/shmonad/shmon/metrics"
	"github.com/shmonad/shmon/shmon"
	"github.com/shmonad/shmon/staking/sim"
)

// soloCommission is the commission every simulated validator charges.
var soloCommission = shmon.NewAmount(5e16)

func soloAction(ctx *cli.Context) error {
	defer func() { logger.Info("exited") }()

	logLevel := initLogger(ctx)
	cfg, err := loadConfig(ctx.String(configFlag.Name))
	if err != nil {
		return err
	}
	deposit, err := shmon.ParseAmount(ctx.String(depositFlag.Name))
	if err != nil {
		return errors.WithMessage(err, "deposit")
	}
	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	db, dbPath, err := openStore(ctx, ctx.Bool(persistFlag.Name))
	if err != nil {
		return err
	}
	defer func() { logger.Info("closing ledger database..."); db.Close() }()

	chain := sim.New(cfg.Sim)
	l, resumed, err := openLedger(db, chain, cfg, ctx.Int(validatorsFlag.Name))
	if err != nil {
		return err
	}
	defer func() {
		if err := saveSim(db, chain); err != nil {
			logger.Warn("failed to save simulated chain", "err", err)
		}
	}()

	svc := keeper.New(l, ledgerBucket.NewPutter(db), cfg.Keeper)
	svc.SetChain(chain)
	if !deposit.IsZero() {
		if err := svc.Update(func(l *ledger.Ledger) error {
			_, err := l.Deposit(deposit)
			return err
		}); err != nil {
			return errors.WithMessage(err, "initial deposit")
		}
	}
	if !cfg.Keeper.Tip.IsZero() {
		for _, v := range l.Validators() {
			if err := svc.AddTipJar(v.ID, cfg.Keeper.Tip); err != nil {
				return errors.WithMessagef(err, "tip jar for validator %v", v.ID)
			}
		}
	}

	apiURL, shutdownAPI, apiErr, err := startAPIServer(ctx.String(apiAddrFlag.Name), api.New(svc, api.Options{
		AllowedOrigins:  ctx.String(apiCorsFlag.Name),
		PprofOn:         ctx.Bool(pprofFlag.Name),
		EnableReqLogger: ctx.Bool(enableAPILogsFlag.Name),
		EnableMetrics:   ctx.Bool(enableMetricsFlag.Name),
		AllowCrank:      ctx.Bool(apiAllowCrankFlag.Name),
	}))
	if err != nil {
		return err
	}
	defer func() { logger.Info("stopping API server..."); shutdownAPI(context.Background()) }()

	adminURL := "disabled"
	if addr := ctx.String(adminAddrFlag.Name); addr != "" {
		url, stopAdmin, err := api.StartAdminServer(addr, logLevel, svc, ctx.Duration(maxCrankAgeFlag.Name))
		if err != nil {
			return err
		}
		defer func() { logger.Info("stopping admin server..."); stopAdmin() }()
		adminURL = url
	}

	printSoloStartupMessage(os.Stdout, svc, dbPath, apiURL, adminURL, resumed)

	group, gctx := errgroup.WithContext(handleExitSignal())
	group.Go(func() error {
		return svc.Run(gctx)
	})
	group.Go(func() error {
		select {
		case err := <-apiErr:
			return errors.WithMessage(err, "API server")
		case <-gctx.Done():
			return nil
		}
	})
	return group.Wait()
}

// openLedger resumes a saved ledger and chain from db, or registers count
// fresh validators on both.
func openLedger(db kv.Store, chain *sim.Precompile, cfg Config, count int) (*ledger.Ledger, bool, error) {
	if data, err := simBucket.NewGetter(db).Get(simStateKey); err == nil {
		if err := chain.Decode(data); err != nil {
			return nil, false, err
		}
		l, found, err := ledger.Load(ledgerBucket.NewGetter(db), chain, cfg.Ledger)
		if err != nil {
			return nil, false, err
		}
		if found {
			return l, true, nil
		}
	} else if !db.IsNotFound(err) {
		return nil, false, errors.Wrap(err, "read simulated chain")
	}

	if count <= 0 {
		return nil, false, errors.New("at least one validator required")
	}
	l, err := ledger.New(chain, cfg.Ledger)
	if err != nil {
		return nil, false, err
	}
	for i := 1; i <= count; i++ {
		id := shmon.ValidatorID(i)
		chain.AddValidator(id, soloCommission)
		if err := l.AddValidator(id); err != nil {
			return nil, false, errors.WithMessagef(err, "add validator %v", id)
		}
	}
	if err := l.Save(ledgerBucket.NewPutter(db)); err != nil {
		return nil, false, err
	}
	return l, false, saveSim(db, chain)
}

func saveSim(w kv.Putter, chain *sim.Precompile) error {
	data, err := chain.Encode()
	if err != nil {
		return err
	}
	return simBucket.NewPutter(w).Put(simStateKey, data)
}

func printSoloStartupMessage(w io.Writer, svc *keeper.Service, dbPath, apiURL, adminURL string, resumed bool) {
	svc.View(func(l *ledger.Ledger) error {
		state := "new"
		if resumed {
			state = "resumed"
		}
		fmt.Fprintf(w, `Starting %v
    Ledger      [ %v, internal epoch %v ]
    Equity      [ %v ]
    Data        [ %v ]
    API portal  [ %v ]
    Admin       [ %v ]
`,
			fmt.Sprintf("shmon solo %v", fullVersion()),
			state, l.InternalEpoch(),
			shmon.Format(l.Equity()),
			dbPath,
			apiURL,
			adminURL)

		table := newTable(w, "Validator", "Active set", "Target stake")
		for _, v := range l.Validators() {
			target, _ := l.TargetStake(v.ID)
			table.Append([]string{v.ID.String(), fmt.Sprint(v.InActiveSetCurrent), shmon.Format(target)})
		}
		table.Render()
		return nil
	})
}
