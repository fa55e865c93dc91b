// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rend

import (
	"context"
	"errors"
	"testing"

	"github.com/gogpu/rend/backend/trace"
	"github.com/gogpu/rend/frame"
	"github.com/gogpu/rend/shader"
	"github.com/gogpu/rend/view"
)

// face is a square facing the viewer at the origin, x units down the
// forward axis.
type face struct {
	verts  [4]frame.Vertex
	bounds view.Bounds
	plane  view.Plane
}

func newFace(x, half float32) *face {
	f := &face{bounds: view.EmptyBounds()}
	corners := [4]view.Vec3{
		{x, half, half},
		{x, -half, half},
		{x, -half, -half},
		{x, half, -half},
	}
	normal := view.Vec3{-1, 0, 0}
	for i, c := range corners {
		f.verts[i] = frame.Vertex{Pos: c, Normal: normal}
		f.bounds = f.bounds.AddPoint(c)
	}
	f.plane = view.NewPlane(normal, -x)
	return f
}

func (f *face) Kind() frame.SurfaceKind  { return frame.SurfaceFace }
func (f *face) Vertices() []frame.Vertex { return f.verts[:] }
func (f *face) Bounds() view.Bounds      { return f.bounds }
func (f *face) Plane() view.Plane        { return f.plane }

// worldSurf is one surface the stub world adds to every view.
type worldSurf struct {
	surf   frame.Surface
	shader int
}

// stubWorld adds the same surfaces to every view it is asked for.
type stubWorld struct {
	surfs []worldSurf
	calls int
	views []view.Parms
}

func (w *stubWorld) AddWorldSurfaces(p *view.Parms, sink SurfaceSink) view.Bounds {
	w.calls++
	w.views = append(w.views, *p)
	b := view.EmptyBounds()
	for _, s := range w.surfs {
		sink.AddDrawSurf(s.surf, s.shader, frame.EntityWorld, 0, true)
		if bs, ok := s.surf.(frame.Bounded); ok {
			b = b.Union(bs.Bounds())
		}
	}
	return b
}

func (w *stubWorld) add(s frame.Surface, shader int) {
	w.surfs = append(w.surfs, worldSurf{surf: s, shader: shader})
}

// stubModels gives every model entity one face in its local space.
type stubModels struct {
	shader   int
	entities []int
}

func (m *stubModels) AddModelSurfaces(_ *view.Parms, _ *frame.RefEntity, entityNum int, sink SurfaceSink) {
	m.entities = append(m.entities, entityNum)
	sink.AddDrawSurf(newFace(0, 4), m.shader, entityNum, 7, false)
}

// testShaders are the handles registered by newShaders.
type testShaders struct {
	table  *shader.Table
	wall   int
	sky    int
	mirror int
	glass  int
	smoke  int
}

func newShaders(t *testing.T) testShaders {
	t.Helper()
	ts := testShaders{table: shader.NewTable()}
	register := func(sh shader.Shader) int {
		h, err := ts.table.Register(sh)
		if err != nil {
			t.Fatalf("Register(%q) = %v", sh.Name, err)
		}
		return h
	}
	ts.wall = register(shader.Shader{Name: "wall", Sort: shader.SortOpaque, State: shader.OpaqueState(), NumStages: 1})
	ts.sky = register(shader.Shader{Name: "sky", Sort: shader.SortEnvironment, State: shader.OpaqueState(), IsSky: true})
	ts.mirror = register(shader.Shader{Name: "mirror", Sort: shader.SortPortal, State: shader.OpaqueState()})
	ts.glass = register(shader.Shader{Name: "glass", Sort: shader.SortBlend0, State: shader.AlphaBlendState()})
	ts.smoke = register(shader.Shader{Name: "smoke", Sort: shader.SortBlend1, State: shader.AlphaBlendState(), EntityMergable: true})
	return ts
}

// testRefDef looks down +X from the origin.
func testRefDef() *RefDef {
	return &RefDef{
		Viewport: view.Viewport{Width: 640, Height: 480},
		FovX:     90,
		FovY:     73.7,
		Axis:     view.IdentityAxis(),
		Time:     1000,
	}
}

// newTestRenderer creates a renderer replaying into a trace executor.
func newTestRenderer(t *testing.T, opts ...Option) (*Renderer, *trace.Executor) {
	t.Helper()
	exec := trace.New(trace.WithSize(64, 48))
	r, err := New(append([]Option{WithExecutor(exec)}, opts...)...)
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r, exec
}

// renderFrame runs one frame: scene calls, then RenderScene with rd.
func renderFrame(t *testing.T, r *Renderer, exec *trace.Executor, rd *RefDef, scene func()) trace.Record {
	t.Helper()
	if err := r.BeginFrame(); err != nil {
		t.Fatalf("BeginFrame() = %v", err)
	}
	if scene != nil {
		scene()
	}
	r.RenderScene(rd)
	if err := r.EndFrame(context.Background()); err != nil {
		t.Fatalf("EndFrame() = %v", err)
	}
	rec, ok := exec.Last()
	if !ok {
		t.Fatal("trace recorded no frame")
	}
	return rec
}

// lastFrame returns the arenas of the last frame composed.
func lastFrame(r *Renderer) *frame.Frame {
	return r.cur.frame
}

// expectFatal runs fn and checks that it panics with a FatalError
// wrapping want.
func expectFatal(t *testing.T, want error, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		v := recover()
		fe, ok := v.(*FatalError)
		if !ok {
			t.Fatalf("panic = %v, want *FatalError", v)
		}
		if !errors.Is(fe, want) {
			t.Errorf("FatalError = %v, want %v", fe, want)
		}
	}()
	fn()
}
