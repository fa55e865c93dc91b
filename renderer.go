// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rend

import (
	"context"
	"fmt"

	"github.com/gogpu/rend/backend"
	"github.com/gogpu/rend/cmdstream"
	"github.com/gogpu/rend/frame"
	"github.com/gogpu/rend/shader"
)

// slot is one frame buffer: the arenas and the command stream that
// references them. Two slots let frame N+1 compose while an asynchronous
// executor still reads frame N.
type slot struct {
	frame  *frame.Frame
	stream *cmdstream.Stream
}

// Renderer composes frames. It is not safe for concurrent use: scene
// accumulation, RenderScene and the 2D calls of a frame all run on one
// goroutine between BeginFrame and EndFrame.
type Renderer struct {
	cfg     config
	shaders *shader.Table
	exec    backend.Executor

	pool  *cmdstream.Pool
	slots [2]slot
	cur   *slot

	// frameCount numbers frames from 1.
	frameCount int
	inFrame    bool
	closed     bool

	scene sceneMarks
	// sceneNum counts RenderScene calls in the frame.
	sceneNum  int
	viewCount int

	// scratch is the radix sort buffer, sized to the draw surface arena.
	scratch []frame.DrawSurface
	// order is the permutation buffer of the transparency sort.
	order []int

	// color is the current 2D draw color.
	color [4]float32

	stats Stats
	last  *cmdstream.Stream
}

// New creates a renderer.
func New(opts ...Option) (*Renderer, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.limits.Validate(); err != nil {
		return nil, fmt.Errorf("rend: %w", err)
	}
	if cfg.shaders == nil {
		cfg.shaders = shader.NewTable()
	}

	r := &Renderer{
		cfg:     cfg,
		shaders: cfg.shaders,
		exec:    cfg.exec,
		pool:    cmdstream.NewPool(cfg.streamSize),
		scratch: make([]frame.DrawSurface, cfg.limits.DrawSurfs),
		color:   [4]float32{1, 1, 1, 1},
	}
	r.pool.Warmup(len(r.slots))
	for i := range r.slots {
		f, err := frame.New(cfg.limits)
		if err != nil {
			return nil, fmt.Errorf("rend: %w", err)
		}
		r.slots[i] = slot{frame: f, stream: r.pool.Get()}
	}
	attachExecutor(r.exec)

	exec := "none"
	if r.exec != nil {
		exec = r.exec.Name()
	}
	Logger().Info("rend: renderer created", "executor", exec, "shaders", r.shaders.Len())
	return r, nil
}

// Shaders returns the shader table.
func (r *Renderer) Shaders() *shader.Table {
	return r.shaders
}

// FrameCount returns the number of the current or last frame.
func (r *Renderer) FrameCount() int {
	return r.frameCount
}

// Stats returns the counters of the current frame, or of the last frame
// after EndFrame.
func (r *Renderer) Stats() Stats {
	return r.stats
}

// Frame returns the arenas of the current frame, or nil outside a frame.
func (r *Renderer) Frame() *frame.Frame {
	if !r.inFrame {
		return nil
	}
	return r.cur.frame
}

// LastStream returns the stream finished by the last EndFrame. It stays
// valid until the next BeginFrame reuses its slot.
func (r *Renderer) LastStream() *cmdstream.Stream {
	return r.last
}

// BeginFrame opens a new frame: the next arena slot is reset, the shader
// sorted indices restart and a frame-begin record is written.
func (r *Renderer) BeginFrame() error {
	if r.closed {
		return ErrClosed
	}
	if r.inFrame {
		return ErrInFrame
	}
	r.frameCount++
	r.cur = &r.slots[r.frameCount%len(r.slots)]
	r.cur.frame.Reset(r.frameCount)
	r.cur.stream.Reset()
	r.cur.stream.SetLimit(r.cfg.streamSize)
	r.shaders.BeginFrame()

	r.inFrame = true
	r.scene = sceneMarks{}
	r.sceneNum = 0
	r.stats = Stats{Frame: r.frameCount}
	r.color = [4]float32{1, 1, 1, 1}

	r.record(r.cur.stream.WriteFrameBegin(cmdstream.FrameBegin{
		Frame: uint32(r.frameCount), //nolint:gosec // G115: frame counter stays far below 2^32
		//nolint:gosec // G115: slot index is 0 or 1
		Buffer: uint32(r.frameCount % len(r.slots)),
	}))
	return nil
}

// EndFrame writes the swap record, finishes the stream and hands it to
// the executor. With an asynchronous executor the previous frame is
// waited for first, so the slot the next BeginFrame reuses is free.
func (r *Renderer) EndFrame(ctx context.Context) error {
	if r.closed {
		return ErrClosed
	}
	if !r.inFrame {
		return ErrNoFrame
	}
	r.inFrame = false

	s := r.cur.stream
	//nolint:gosec // G115: frame counter stays far below 2^32
	r.record(s.WriteSwapBuffers(uint32(r.frameCount)))
	s.Finish()
	r.last = s
	r.stats.StreamBytes = s.Len()
	r.stats.logFrame()

	if r.exec == nil {
		return nil
	}
	if w, ok := r.exec.(backend.Waiter); ok {
		if err := w.Wait(); err != nil {
			Logger().Warn("rend: executor failed", "executor", r.exec.Name(), "err", err)
			return fmt.Errorf("rend: frame %d: %w", r.frameCount-1, err)
		}
	}
	if err := r.exec.Execute(ctx, r.cur.frame, s); err != nil {
		Logger().Warn("rend: executor failed", "executor", r.exec.Name(), "err", err)
		return fmt.Errorf("rend: frame %d: %w", r.frameCount, err)
	}
	return nil
}

// Close waits for outstanding work and closes the executor when it has a
// Close method. Close is idempotent.
func (r *Renderer) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.inFrame = false
	defer detachExecutor(r.exec)

	var err error
	if w, ok := r.exec.(backend.Waiter); ok {
		err = w.Wait()
	}
	if c, ok := r.exec.(interface{ Close() error }); ok {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}
	for i := range r.slots {
		r.pool.Put(r.slots[i].stream)
		r.slots[i].stream = nil
	}
	r.last = nil
	Logger().Info("rend: renderer closed", "frames", r.frameCount)
	return err
}

// record counts a record the stream had no room for.
func (r *Renderer) record(ok bool) {
	if !ok {
		r.stats.DroppedRecords++
		Logger().Debug("rend: command buffer full, record dropped", "frame", r.frameCount)
	}
}
