// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package backend

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gogpu/rend/cmdstream"
	"github.com/gogpu/rend/frame"
)

// DefaultQueueDepth is the number of streams Async accepts before Execute
// blocks. Two matches a double-buffered producer.
const DefaultQueueDepth = 2

type job struct {
	ctx context.Context //nolint:containedctx // carried to the worker with its stream
	f   *frame.Frame
	s   *cmdstream.Stream
}

// Async executes streams on a worker goroutine.
//
// Execute enqueues and returns at once; it blocks only while the queue is
// full. Errors from the wrapped executor are collected and reported by
// Wait. Async is safe for concurrent use.
type Async struct {
	exec Executor
	jobs chan job
	done chan struct{}

	// mu guards closed and the send side of jobs.
	mu     sync.RWMutex
	closed bool

	pending sync.WaitGroup

	errMu sync.Mutex
	err   error
}

// NewAsync starts a worker running exec. A depth below one selects
// DefaultQueueDepth.
func NewAsync(exec Executor, depth int) *Async {
	if depth < 1 {
		depth = DefaultQueueDepth
	}
	a := &Async{
		exec: exec,
		jobs: make(chan job, depth),
		done: make(chan struct{}),
	}
	go a.run()
	return a
}

// Name returns the wrapped executor's name.
func (a *Async) Name() string {
	return a.exec.Name()
}

// Unwrap returns the wrapped executor.
func (a *Async) Unwrap() Executor {
	return a.exec
}

// SetLogger forwards l to the wrapped executor.
func (a *Async) SetLogger(l *slog.Logger) {
	if ls, ok := a.exec.(LoggerSetter); ok {
		ls.SetLogger(l)
	}
}

// Execute queues s for execution.
func (a *Async) Execute(ctx context.Context, f *frame.Frame, s *cmdstream.Stream) error {
	if err := CheckStream(s); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return ErrClosed
	}

	a.pending.Add(1)
	select {
	case a.jobs <- job{ctx: ctx, f: f, s: s}:
		return nil
	case <-ctx.Done():
		a.pending.Done()
		return ctx.Err()
	}
}

// Wait blocks until all queued streams have executed and returns the first
// error recorded since the previous Wait.
func (a *Async) Wait() error {
	a.pending.Wait()

	a.errMu.Lock()
	defer a.errMu.Unlock()
	err := a.err
	a.err = nil
	return err
}

// Close drains the queue, stops the worker and closes the wrapped executor
// when it has a Close method. Close is idempotent.
func (a *Async) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	close(a.jobs)
	a.mu.Unlock()

	<-a.done
	err := a.Wait()
	if c, ok := a.exec.(interface{ Close() error }); ok {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func (a *Async) run() {
	defer close(a.done)
	for j := range a.jobs {
		err := j.ctx.Err()
		if err == nil {
			err = a.exec.Execute(j.ctx, j.f, j.s)
		}
		if err != nil {
			a.errMu.Lock()
			if a.err == nil {
				a.err = fmt.Errorf("backend: %s: %w", a.exec.Name(), err)
			}
			a.errMu.Unlock()
		}
		a.pending.Done()
	}
}
