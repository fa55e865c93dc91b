// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package halexec

import (
	"context"
	"errors"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/rend/backend"
	"github.com/gogpu/rend/cmdstream"
	"github.com/gogpu/rend/frame"
	"github.com/gogpu/rend/shader"
	"github.com/gogpu/rend/view"
)

// createNoopDevice creates a noop device and queue for testing.
func createNoopDevice(t *testing.T) (hal.Device, hal.Queue, func()) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	cleanup := func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	return openDev.Device, openDev.Queue, cleanup
}

type mockDevice struct{}

func (m *mockDevice) Poll(wait bool) {}
func (m *mockDevice) Destroy()       {}

type mockQueue struct{}

type mockAdapter struct{}

// mockProvider implements gpucontext.DeviceProvider, optionally exposing
// HAL handles.
type mockProvider struct{}

func (m *mockProvider) Device() gpucontext.Device             { return &mockDevice{} }
func (m *mockProvider) Queue() gpucontext.Queue               { return &mockQueue{} }
func (m *mockProvider) Adapter() gpucontext.Adapter           { return &mockAdapter{} }
func (m *mockProvider) SurfaceFormat() gputypes.TextureFormat { return colorFormat }

type halMockProvider struct {
	mockProvider
	device hal.Device
	queue  hal.Queue
}

func (m *halMockProvider) HalDevice() any { return m.device }
func (m *halMockProvider) HalQueue() any  { return m.queue }

// quad is a face surface one unit in front of the camera.
type quad struct{}

func (quad) Kind() frame.SurfaceKind { return frame.SurfaceFace }

func (quad) Vertices() []frame.Vertex {
	return []frame.Vertex{
		{Pos: view.Vec3{64, -8, -8}},
		{Pos: view.Vec3{64, 8, -8}},
		{Pos: view.Vec3{64, 8, 8}},
		{Pos: view.Vec3{64, -8, 8}},
	}
}

// bare has no geometry the executor can read.
type bare struct{}

func (bare) Kind() frame.SurfaceKind { return frame.SurfaceGrid }

func testParms() view.Parms {
	p := view.Parms{
		Or:       view.Orientation{Axis: view.IdentityAxis()},
		Viewport: view.Viewport{Width: 64, Height: 48},
		FovX:     90, FovY: 73.7,
		ZNear: 4, ZFar: 2048,
	}
	p.SetupModelView()
	p.SetupProjection(p.ZNear)
	p.SetupProjectionZ()
	return p
}

func newTestExecutor(t *testing.T, opts ...Option) (*Executor, *shader.Table) {
	t.Helper()
	device, queue, cleanup := createNoopDevice(t)
	t.Cleanup(cleanup)

	shaders := shader.NewTable()
	e, err := NewWithDevice(device, queue, shaders, append([]Option{WithSize(64, 48)}, opts...)...)
	if err != nil {
		t.Fatalf("NewWithDevice() error = %v", err)
	}
	t.Cleanup(func() { _ = e.Close() })
	return e, shaders
}

func TestNewErrors(t *testing.T) {
	if _, err := New(&mockProvider{}, shader.NewTable()); !errors.Is(err, ErrNoHAL) {
		t.Errorf("New(no HAL) error = %v, want ErrNoHAL", err)
	}
	if _, err := New(&halMockProvider{device: nil}, shader.NewTable()); !errors.Is(err, ErrNoHAL) {
		t.Errorf("New(nil HAL device) error = %v, want ErrNoHAL", err)
	}

	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()
	if _, err := NewWithDevice(device, queue, nil); !errors.Is(err, ErrNoShaders) {
		t.Errorf("NewWithDevice(nil table) error = %v, want ErrNoShaders", err)
	}

	e, err := New(&halMockProvider{device: device, queue: queue}, shader.NewTable())
	if err != nil {
		t.Fatalf("New(HAL provider) error = %v", err)
	}
	if e.Name() != Name {
		t.Errorf("Name() = %q, want %q", e.Name(), Name)
	}
	if err := e.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestExecuteBatchesByPipeline(t *testing.T) {
	e, shaders := newTestExecutor(t)

	// two shaders with the same state share a pipeline id
	a, _ := shaders.Register(shader.Shader{Name: "wall", Sort: shader.SortOpaque, State: shader.OpaqueState()})
	b, _ := shaders.Register(shader.Shader{Name: "floor", Sort: shader.SortOpaque, State: shader.OpaqueState()})
	glass, _ := shaders.Register(shader.Shader{Name: "glass", Sort: shader.SortBlend0, State: shader.AlphaBlendState()})

	f, err := frame.New(frame.DefaultLimits())
	if err != nil {
		t.Fatal(err)
	}
	f.Reset(1)
	for _, ds := range []frame.DrawSurface{
		{Surface: quad{}, Entity: frame.EntityWorld, Shader: a},
		{Surface: quad{}, Entity: frame.EntityWorld, Shader: b},
		{Surface: bare{}, Entity: frame.EntityWorld, Shader: a},
		{Surface: quad{}, Entity: frame.EntityWorld, Shader: glass},
	} {
		f.AddDrawSurf(ds)
	}

	s := cmdstream.New(0)
	s.WriteFrameBegin(cmdstream.FrameBegin{Frame: 1})
	s.WriteDrawSurfs(&cmdstream.DrawSurfs{View: testParms(), First: 0, Count: 4, Transp: 1})
	s.WriteSetColor([4]float32{1, 1, 1, 1})
	s.WriteStretchPic(cmdstream.StretchPic{X: 0, Y: 0, W: 16, H: 16})
	s.WriteSwapBuffers(1)
	s.Finish()

	if err := e.Execute(context.Background(), f, s); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	st := e.Stats()
	if st.Frames != 1 {
		t.Errorf("Frames = %d, want 1", st.Frames)
	}
	if st.Passes != 2 {
		t.Errorf("Passes = %d, want 2 (view and overlay)", st.Passes)
	}
	// wall+floor batch, glass, overlay
	if st.DrawCalls != 3 {
		t.Errorf("DrawCalls = %d, want 3", st.DrawCalls)
	}
	if st.Surfaces != 3 || st.Skipped != 1 {
		t.Errorf("Surfaces = %d, Skipped = %d, want 3, 1", st.Surfaces, st.Skipped)
	}
	if len(e.pipelines) != 3 {
		t.Errorf("cached pipelines = %d, want 3", len(e.pipelines))
	}
}

func TestExecuteRejectsBadRange(t *testing.T) {
	e, _ := newTestExecutor(t)
	f, _ := frame.New(frame.DefaultLimits())
	f.Reset(1)

	s := cmdstream.New(0)
	s.WriteDrawSurfs(&cmdstream.DrawSurfs{View: testParms(), First: 0, Count: 5})
	s.Finish()

	if err := e.Execute(context.Background(), f, s); !errors.Is(err, ErrRange) {
		t.Errorf("Execute() error = %v, want ErrRange", err)
	}
}

func TestExecuteCapturesToOutput(t *testing.T) {
	got := map[string]int{}
	e, _ := newTestExecutor(t, WithOutput(func(name string, data []byte) error {
		got[name] = len(data)
		return nil
	}))
	f, _ := frame.New(frame.DefaultLimits())
	f.Reset(3)

	s := cmdstream.New(0)
	s.WriteFrameBegin(cmdstream.FrameBegin{Frame: 3})
	s.WriteClearColor([4]float32{0, 0, 1, 1})
	s.WriteScreenshot(cmdstream.Screenshot{Width: 32, Height: 24, Format: cmdstream.FormatPNG})
	s.WriteVideoFrame(cmdstream.VideoFrame{Width: 16, Height: 12, Format: cmdstream.FormatRaw})
	s.WriteSwapBuffers(3)
	s.Finish()

	if err := e.Execute(context.Background(), f, s); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if _, ok := got["shot0003.png"]; !ok {
		t.Errorf("outputs = %v, want shot0003.png", got)
	}
	if n := got["video000000.raw"]; n != 16*12*4 {
		t.Errorf("raw video frame = %d bytes, want %d", n, 16*12*4)
	}
	if st := e.Stats(); st.Captures != 2 {
		t.Errorf("Captures = %d, want 2", st.Captures)
	}
}

func TestExecuteAfterClose(t *testing.T) {
	e, _ := newTestExecutor(t)
	if err := e.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := e.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	f, _ := frame.New(frame.DefaultLimits())
	s := cmdstream.New(0)
	s.Finish()
	if err := e.Execute(context.Background(), f, s); !errors.Is(err, backend.ErrClosed) {
		t.Errorf("Execute() after Close error = %v, want ErrClosed", err)
	}
}

func TestViewportFlipsAndClamps(t *testing.T) {
	e, _ := newTestExecutor(t)
	fs := newFrameState(e, nil)

	tests := []struct {
		name       string
		vp         view.Viewport
		x, y, w, h float32
		ok         bool
	}{
		{"full", view.Viewport{Width: 64, Height: 48}, 0, 0, 64, 48, true},
		{"bottom left", view.Viewport{Width: 32, Height: 24}, 0, 24, 32, 24, true},
		{"clamped", view.Viewport{X: 48, Y: -8, Width: 32, Height: 16}, 48, 40, 16, 8, true},
		{"outside", view.Viewport{X: 100, Width: 10, Height: 10}, 0, 0, 0, 0, false},
		{"empty", view.Viewport{}, 0, 0, 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y, w, h, ok := fs.viewport(tt.vp)
			if ok != tt.ok || x != tt.x || y != tt.y || w != tt.w || h != tt.h {
				t.Errorf("viewport(%+v) = %v %v %v %v %v, want %v %v %v %v %v",
					tt.vp, x, y, w, h, ok, tt.x, tt.y, tt.w, tt.h, tt.ok)
			}
		})
	}
}

func TestWriteMask(t *testing.T) {
	if got := writeMask([4]bool{true, true, true, true}); got != gputypes.ColorWriteMaskAll {
		t.Errorf("writeMask(all) = %v, want ColorWriteMaskAll", got)
	}
	if got := writeMask([4]bool{false, true, false, false}); got != gputypes.ColorWriteMaskGreen {
		t.Errorf("writeMask(green) = %v", got)
	}
}
