// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"io"
	"log/slog"

	ethlog "github.com/ethereum/go-ethereum/log"
	"github.com/pkg/errors"
)

// Levels, re-exported so callers only import this package.
const (
	LevelTrace = ethlog.LevelTrace
	LevelDebug = ethlog.LevelDebug
	LevelInfo  = ethlog.LevelInfo
	LevelWarn  = ethlog.LevelWarn
	LevelError = ethlog.LevelError
	LevelCrit  = ethlog.LevelCrit
)

// Logger is the subset of the go-ethereum logger used across the repo.
type Logger interface {
	With(ctx ...any) Logger
	Trace(msg string, ctx ...any)
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Warn(msg string, ctx ...any)
	Error(msg string, ctx ...any)
	Crit(msg string, ctx ...any)
}

// contextLogger resolves the root logger on every call, so package level
// loggers created at init time follow later SetDefault calls.
type contextLogger struct {
	ctx []any
}

// WithContext returns a logger that attaches ctx to every record.
func WithContext(ctx ...any) Logger {
	return &contextLogger{ctx: ctx}
}

func (l *contextLogger) root() ethlog.Logger {
	return ethlog.Root().With(l.ctx...)
}

func (l *contextLogger) With(ctx ...any) Logger {
	merged := make([]any, 0, len(l.ctx)+len(ctx))
	merged = append(merged, l.ctx...)
	return &contextLogger{ctx: append(merged, ctx...)}
}

func (l *contextLogger) Trace(msg string, ctx ...any) { l.root().Trace(msg, ctx...) }
func (l *contextLogger) Debug(msg string, ctx ...any) { l.root().Debug(msg, ctx...) }
func (l *contextLogger) Info(msg string, ctx ...any)  { l.root().Info(msg, ctx...) }
func (l *contextLogger) Warn(msg string, ctx ...any)  { l.root().Warn(msg, ctx...) }
func (l *contextLogger) Error(msg string, ctx ...any) { l.root().Error(msg, ctx...) }

// Crit logs at the critical level without exiting the process.
func (l *contextLogger) Crit(msg string, ctx ...any) {
	l.root().Log(LevelCrit, msg, ctx...)
}

// SetDefault installs a terminal handler writing to w, filtered by level.
func SetDefault(w io.Writer, level *slog.LevelVar, useColor bool) {
	SetDefaultHandler(NewLevelHandler(ethlog.NewTerminalHandlerWithLevel(w, LevelTrace, useColor), level))
}

// SetDefaultJSON installs a JSON handler writing to w, filtered by level.
func SetDefaultJSON(w io.Writer, level *slog.LevelVar) {
	SetDefaultHandler(NewLevelHandler(ethlog.JSONHandlerWithLevel(w, LevelTrace), level))
}

// SetDefaultHandler installs h as the root handler.
func SetDefaultHandler(h slog.Handler) {
	ethlog.SetDefault(ethlog.NewLogger(h))
}

// FromVerbosity maps a numeric verbosity (0 crit .. 5 trace) to a level.
func FromVerbosity(v int) slog.Level {
	return ethlog.FromLegacyLevel(v)
}

// ParseLevel parses a level name such as "info" or "debug".
func ParseLevel(s string) (slog.Level, error) {
	switch s {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	case "crit":
		return LevelCrit, nil
	}
	return LevelInfo, errors.Errorf("unknown log level %q", s)
}

// LevelString returns the lower case name of a level.
func LevelString(l slog.Level) string {
	switch {
	case l <= LevelTrace:
		return "trace"
	case l <= LevelDebug:
		return "debug"
	case l <= LevelInfo:
		return "info"
	case l <= LevelWarn:
		return "warn"
	case l <= LevelError:
		return "error"
	}
	return "crit"
}
