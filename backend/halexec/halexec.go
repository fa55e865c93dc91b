// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package halexec replays command streams on a WebGPU HAL device.
//
// Every draw-surfaces record becomes one render pass into an offscreen
// RGBA8 target with its own depth clear. Consecutive surfaces sharing a
// pipeline id are drawn with a single draw call, so the sort order the
// composer produced is exactly the state-change order on the device.
// Stretch pics and triangles are batched into overlay passes; screenshots
// and video frames read the target back and encode it.
//
// Geometry is transformed to clip space on the CPU and shaded with a flat
// per-shader color: the executor shows what the composer decided, not
// what a material system would paint.
package halexec

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rend/backend"
	"github.com/gogpu/rend/cmdstream"
	"github.com/gogpu/rend/frame"
	"github.com/gogpu/rend/shader"
)

// Name is the executor name.
const Name = "hal"

// Errors returned by the HAL executor.
var (
	// ErrNoHAL is returned when a device provider does not expose HAL
	// device and queue handles.
	ErrNoHAL = errors.New("halexec: provider does not expose HAL types")

	// ErrNoShaders is returned when no shader table is given.
	ErrNoShaders = errors.New("halexec: shader table is nil")

	// ErrPipeline is returned for a pipeline id the shader table never
	// interned.
	ErrPipeline = errors.New("halexec: unknown pipeline id")

	// ErrRange means a draw-surfaces record points outside the frame arenas.
	ErrRange = errors.New("halexec: record range outside frame arenas")

	// ErrTimeout is returned when the GPU does not signal a submission fence.
	ErrTimeout = errors.New("halexec: GPU wait timed out")
)

// Defaults.
const (
	DefaultWidth   = 640
	DefaultHeight  = 480
	DefaultTimeout = 5 * time.Second
)

// Option configures an Executor.
type Option func(*Executor)

// WithSize sets the render target size.
func WithSize(width, height uint32) Option {
	return func(e *Executor) {
		if width > 0 && height > 0 {
			e.width, e.height = width, height
		}
	}
}

// WithTimeout bounds each wait for the GPU.
func WithTimeout(d time.Duration) Option {
	return func(e *Executor) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithOutput receives encoded screenshots and video frames.
func WithOutput(output func(name string, data []byte) error) Option {
	return func(e *Executor) {
		e.output = output
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) {
		if l != nil {
			e.log = l
		}
	}
}

// Stats counts work done since the executor was created.
type Stats struct {
	Frames    int
	Passes    int
	DrawCalls int
	Surfaces  int
	// Skipped counts surfaces without geometry the executor can draw.
	Skipped  int
	Captures int
}

// Executor is the HAL executor. Execute calls are serialized.
type Executor struct {
	mu sync.Mutex

	device  hal.Device
	queue   hal.Queue
	shaders *shader.Table

	width, height uint32
	timeout       time.Duration
	output        func(string, []byte) error
	log           *slog.Logger

	module    hal.ShaderModule
	layout    hal.PipelineLayout
	pipelines map[pipelineKey]hal.RenderPipeline
	target    *target

	videoFrames int
	stats       Stats
	closed      bool
}

// New creates an executor on the device shared by provider. The provider
// must implement HalDevice() any and HalQueue() any returning hal.Device
// and hal.Queue.
func New(provider gpucontext.DeviceProvider, shaders *shader.Table, opts ...Option) (*Executor, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNoHAL
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNoHAL)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNoHAL)
	}
	return NewWithDevice(device, queue, shaders, opts...)
}

// NewWithDevice creates an executor on device and queue. The executor
// does not own them; Close releases only what the executor created.
func NewWithDevice(device hal.Device, queue hal.Queue, shaders *shader.Table, opts ...Option) (*Executor, error) {
	if shaders == nil {
		return nil, ErrNoShaders
	}
	e := &Executor{
		device:    device,
		queue:     queue,
		shaders:   shaders,
		width:     DefaultWidth,
		height:    DefaultHeight,
		timeout:   DefaultTimeout,
		log:       slog.New(discard{}),
		pipelines: make(map[pipelineKey]hal.RenderPipeline),
	}
	for _, opt := range opts {
		opt(e)
	}

	module, err := device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "rend_surface_shader",
		Source: hal.ShaderSource{WGSL: surfaceShaderSource},
	})
	if err != nil {
		return nil, fmt.Errorf("halexec: compile surface shader: %w", err)
	}
	e.module = module

	layout, err := device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label: "rend_surface_pipe_layout",
	})
	if err != nil {
		e.release()
		return nil, fmt.Errorf("halexec: create pipeline layout: %w", err)
	}
	e.layout = layout

	t, err := newTarget(device, e.width, e.height)
	if err != nil {
		e.release()
		return nil, err
	}
	e.target = t

	e.log.Info("halexec: executor ready", "width", e.width, "height", e.height)
	return e, nil
}

// Name returns "hal".
func (e *Executor) Name() string { return Name }

// SetLogger replaces the logger; nil restores the silent default.
func (e *Executor) SetLogger(l *slog.Logger) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if l == nil {
		l = slog.New(discard{})
	}
	e.log = l
}

// Stats returns the work counters.
func (e *Executor) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

// Execute replays s against the arenas of f.
func (e *Executor) Execute(ctx context.Context, f *frame.Frame, s *cmdstream.Stream) error {
	if err := backend.CheckStream(s); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return backend.ErrClosed
	}

	fs := newFrameState(e, f)
	defer fs.release()

	var number uint32
	dec := cmdstream.NewDecoder(s.Bytes())
	for dec.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		var err error
		switch dec.Tag() {
		case cmdstream.TagFrameBegin:
			number = dec.FrameBegin().Frame
		case cmdstream.TagSetColor:
			fs.color = dec.SetColor()
		case cmdstream.TagColorMask:
			fs.mask = writeMask(dec.ColorMask())
		case cmdstream.TagClearColor:
			c := dec.ClearColor()
			fs.clear = &c
		case cmdstream.TagClearDepth:
			// every view pass clears depth
		case cmdstream.TagDrawSurfs:
			err = fs.drawView(dec.DrawSurfs())
		case cmdstream.TagStretchPic:
			fs.stretchPic(dec.StretchPic())
		case cmdstream.TagTriangle:
			fs.triangle(dec.Triangle())
		case cmdstream.TagScreenshot:
			err = fs.screenshot(number, dec.Screenshot())
		case cmdstream.TagVideoFrame:
			err = fs.videoFrame(dec.VideoFrame())
		case cmdstream.TagSwapBuffers:
			dec.SwapBuffers()
			err = fs.submit()
		}
		if err != nil {
			return fmt.Errorf("halexec: frame %d: %w", number, err)
		}
	}
	if err := dec.Err(); err != nil {
		return fmt.Errorf("halexec: frame %d: %w", number, err)
	}
	if err := fs.submit(); err != nil {
		return fmt.Errorf("halexec: frame %d: %w", number, err)
	}
	e.stats.Frames++
	return nil
}

// Close releases the executor's pipelines, shader and target.
func (e *Executor) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	e.release()
	e.log.Info("halexec: executor closed", "frames", e.stats.Frames)
	return nil
}

func (e *Executor) release() {
	e.destroyPipelines()
	if e.target != nil {
		e.target.destroy(e.device)
		e.target = nil
	}
	if e.layout != nil {
		e.device.DestroyPipelineLayout(e.layout)
		e.layout = nil
	}
	if e.module != nil {
		e.device.DestroyShaderModule(e.module)
		e.module = nil
	}
}
