// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package backend

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/gogpu/rend/cmdstream"
	"github.com/gogpu/rend/frame"
)

// recorder is an executor that records the frame numbers it executed.
type recorder struct {
	mu     sync.Mutex
	frames []int
	fail   int
	closed bool
}

func (r *recorder) Name() string { return "recorder" }

func (r *recorder) Execute(_ context.Context, f *frame.Frame, _ *cmdstream.Stream) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, f.Number)
	if r.fail != 0 && f.Number == r.fail {
		return errors.New("device lost")
	}
	return nil
}

func (r *recorder) Close() error {
	r.closed = true
	return nil
}

func finished(t *testing.T) *cmdstream.Stream {
	t.Helper()
	s := cmdstream.New(0)
	s.Finish()
	return s
}

func newFrame(t *testing.T, n int) *frame.Frame {
	t.Helper()
	f, err := frame.New(frame.DefaultLimits())
	if err != nil {
		t.Fatalf("frame.New() error = %v", err)
	}
	f.Reset(n)
	return f
}

func TestRegistry(t *testing.T) {
	Register("test-a", func() Executor { return &recorder{} })
	Register("test-b", func() Executor { return &recorder{} })
	t.Cleanup(func() {
		Unregister("test-a")
		Unregister("test-b")
	})

	if !IsRegistered("test-a") {
		t.Error("IsRegistered(test-a) = false")
	}
	e, err := Get("test-b")
	if err != nil || e.Name() != "recorder" {
		t.Errorf("Get(test-b) = %v, %v", e, err)
	}

	names := Available()
	ia, ib := -1, -1
	for i, n := range names {
		switch n {
		case "test-a":
			ia = i
		case "test-b":
			ib = i
		}
	}
	if ia < 0 || ib < 0 || ia > ib {
		t.Errorf("Available() = %v, want sorted names containing test-a, test-b", names)
	}

	if _, err := Get("missing"); !errors.Is(err, ErrNotRegistered) {
		t.Errorf("Get(missing) error = %v, want ErrNotRegistered", err)
	}
}

func TestRegisterPanics(t *testing.T) {
	Register("test-dup", func() Executor { return &recorder{} })
	t.Cleanup(func() { Unregister("test-dup") })

	tests := []struct {
		name    string
		factory Factory
	}{
		{"test-dup", func() Executor { return &recorder{} }},
		{"test-nil", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("Register() did not panic")
				}
			}()
			Register(tt.name, tt.factory)
		})
	}
}

func TestAsyncExecutesInOrder(t *testing.T) {
	rec := &recorder{}
	a := NewAsync(rec, 2)
	ctx := context.Background()

	for n := 1; n <= 5; n++ {
		if err := a.Execute(ctx, newFrame(t, n), finished(t)); err != nil {
			t.Fatalf("Execute(%d) error = %v", n, err)
		}
	}
	if err := a.Wait(); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	rec.mu.Lock()
	got := append([]int(nil), rec.frames...)
	rec.mu.Unlock()
	for i, n := range got {
		if n != i+1 {
			t.Fatalf("executed frames = %v, want 1..5 in order", got)
		}
	}
	if len(got) != 5 {
		t.Fatalf("executed %d frames, want 5", len(got))
	}

	if err := a.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if !rec.closed {
		t.Error("Close() did not close the wrapped executor")
	}
	if err := a.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if err := a.Execute(ctx, newFrame(t, 6), finished(t)); !errors.Is(err, ErrClosed) {
		t.Errorf("Execute after Close error = %v, want ErrClosed", err)
	}
}

func TestAsyncWaitReportsFirstError(t *testing.T) {
	rec := &recorder{fail: 2}
	a := NewAsync(rec, 0)
	t.Cleanup(func() { _ = a.Close() })

	for n := 1; n <= 3; n++ {
		if err := a.Execute(context.Background(), newFrame(t, n), finished(t)); err != nil {
			t.Fatalf("Execute(%d) error = %v", n, err)
		}
	}
	err := a.Wait()
	if err == nil {
		t.Fatal("Wait() = nil, want executor error")
	}
	if err := a.Wait(); err != nil {
		t.Errorf("second Wait() = %v, want nil", err)
	}
}

func TestAsyncRejectsUnfinishedStream(t *testing.T) {
	a := NewAsync(&recorder{}, 1)
	t.Cleanup(func() { _ = a.Close() })

	err := a.Execute(context.Background(), newFrame(t, 1), cmdstream.New(0))
	if !errors.Is(err, ErrNotFinished) {
		t.Errorf("Execute(unfinished) error = %v, want ErrNotFinished", err)
	}
}

func TestAsyncCanceledContext(t *testing.T) {
	rec := &recorder{}
	a := NewAsync(rec, 1)
	t.Cleanup(func() { _ = a.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := a.Execute(ctx, newFrame(t, 1), finished(t)); !errors.Is(err, context.Canceled) {
		t.Errorf("Execute() error = %v, want context.Canceled", err)
	}
	if err := a.Wait(); err != nil {
		t.Errorf("Wait() = %v, want nil", err)
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.frames) != 0 {
		t.Errorf("executed %v with canceled context", rec.frames)
	}
}
