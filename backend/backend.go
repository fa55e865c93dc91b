// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package backend

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gogpu/rend/cmdstream"
	"github.com/gogpu/rend/frame"
)

// Common backend errors.
var (
	// ErrNotRegistered is returned when a requested executor is not registered.
	ErrNotRegistered = errors.New("backend: executor not registered")

	// ErrClosed is returned when work is submitted to a closed executor.
	ErrClosed = errors.New("backend: executor closed")

	// ErrNotFinished is returned when a stream is executed before Finish.
	ErrNotFinished = errors.New("backend: stream not finished")
)

// Executor consumes a finished command stream.
//
// Draw-surface records reference surfaces by index into f's arenas, so f
// must not be reset until Execute returns (or, for [Async], until Wait
// returns).
type Executor interface {
	// Name returns the executor identifier (e.g. "trace", "hal").
	Name() string

	// Execute replays every record of s.
	Execute(ctx context.Context, f *frame.Frame, s *cmdstream.Stream) error
}

// Waiter is implemented by executors that return before the work is done.
type Waiter interface {
	// Wait blocks until every submitted stream has been executed and
	// returns the first error since the previous Wait.
	Wait() error
}

// LoggerSetter is implemented by executors that accept a logger.
type LoggerSetter interface {
	SetLogger(*slog.Logger)
}

// CheckStream returns ErrNotFinished when s cannot be replayed yet.
func CheckStream(s *cmdstream.Stream) error {
	if s == nil || !s.Finished() {
		return ErrNotFinished
	}
	return nil
}
