// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rend

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gogpu/rend/backend"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// newNopLogger creates a logger that silently discards all output.
func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

// executors are the executors of live renderers; SetLogger forwards the
// logger to them.
var (
	executorsMu sync.Mutex
	executors   = map[backend.Executor]int{}
)

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for rend and the executors of every
// live Renderer. By default rend produces no log output. Pass nil to
// restore the silent default.
//
// Log levels used by rend:
//   - [slog.LevelDebug]: dropped contributions, refused portals, frame stats
//   - [slog.LevelInfo]: renderer and executor lifecycle
//   - [slog.LevelWarn]: executor failures and misuse of the frame API
//
// Example:
//
//	rend.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)

	executorsMu.Lock()
	defer executorsMu.Unlock()
	for e := range executors {
		propagateLogger(e, l)
	}
}

// Logger returns the current logger used by rend. Executors created
// outside rend may call it to share the configuration.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// propagateLogger passes the logger to an executor that accepts one.
func propagateLogger(e backend.Executor, l *slog.Logger) {
	if ls, ok := e.(backend.LoggerSetter); ok {
		ls.SetLogger(l)
	}
}

// attachExecutor hands e the current logger and keeps it updated until
// detachExecutor.
func attachExecutor(e backend.Executor) {
	if e == nil {
		return
	}
	executorsMu.Lock()
	defer executorsMu.Unlock()
	executors[e]++
	propagateLogger(e, Logger())
}

func detachExecutor(e backend.Executor) {
	if e == nil {
		return
	}
	executorsMu.Lock()
	defer executorsMu.Unlock()
	if executors[e] <= 1 {
		delete(executors, e)
		return
	}
	executors[e]--
}
