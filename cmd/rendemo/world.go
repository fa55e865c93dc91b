// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"github.com/gogpu/rend"
	"github.com/gogpu/rend/frame"
	"github.com/gogpu/rend/shader"
	"github.com/gogpu/rend/view"
)

type demoShaders struct {
	table  *shader.Table
	wall   int
	floor  int
	mirror int
	window int
	glass  int
	flame  int
	hud    int
}

// quad is a planar world polygon.
type quad struct {
	verts  [4]frame.Vertex
	bounds view.Bounds
	plane  view.Plane
}

// newQuad builds a quad from its corners, wound clockwise seen from the
// front.
func newQuad(c [4]view.Vec3) *quad {
	q := &quad{bounds: view.EmptyBounds()}
	q.plane, _ = view.PlaneFromPoints(c[0], c[1], c[2])
	for i, p := range c {
		q.verts[i] = frame.Vertex{Pos: p, Normal: q.plane.Normal}
		q.bounds = q.bounds.AddPoint(p)
	}
	return q
}

func (q *quad) Kind() frame.SurfaceKind  { return frame.SurfaceFace }
func (q *quad) Vertices() []frame.Vertex { return q.verts[:] }
func (q *quad) Bounds() view.Bounds      { return q.bounds }
func (q *quad) Plane() view.Plane        { return q.plane }

type worldSurface struct {
	surf   *quad
	shader int
}

// room is a closed box 512 units wide with a mirror on the far wall, a
// free-standing portal window and two panes of glass.
type room struct {
	surfs []worldSurface
}

func (w *room) AddWorldSurfaces(p *view.Parms, sink rend.SurfaceSink) view.Bounds {
	var st view.CullStats
	b := view.EmptyBounds()
	for _, s := range w.surfs {
		if p.CullBox(s.surf.bounds, &st) == view.CullOut {
			continue
		}
		sink.AddDrawSurf(s.surf, s.shader, frame.EntityWorld, 0, true)
		b = b.Union(s.surf.bounds)
	}
	return b
}

func buildWorld() (*demoShaders, *room, error) {
	sh := &demoShaders{table: shader.NewTable()}
	for _, s := range []struct {
		dst *int
		sh  shader.Shader
	}{
		{&sh.wall, shader.Shader{Name: "textures/base/wall", Sort: shader.SortOpaque, State: shader.OpaqueState(), NumStages: 2}},
		{&sh.floor, shader.Shader{Name: "textures/base/floor", Sort: shader.SortOpaque, State: shader.OpaqueState(), NumStages: 1}},
		{&sh.mirror, shader.Shader{Name: "textures/base/mirror", Sort: shader.SortPortal, State: shader.OpaqueState()}},
		{&sh.window, shader.Shader{Name: "textures/base/portal", Sort: shader.SortPortal, State: shader.OpaqueState(), PortalRange: 1024}},
		{&sh.glass, shader.Shader{Name: "textures/base/glass", Sort: shader.SortBlend0, State: shader.AlphaBlendState()}},
		{&sh.flame, shader.Shader{Name: "sprites/flame", Sort: shader.SortBlend1, State: shader.AlphaBlendState(), EntityMergable: true}},
		{&sh.hud, shader.Shader{Name: "gfx/hud/bar", Sort: shader.SortNearest, State: shader.AlphaBlendState()}},
	} {
		h, err := sh.table.Register(s.sh)
		if err != nil {
			return nil, nil, err
		}
		*s.dst = h
	}

	const lo, hi, top = -256, 256, 192
	w := &room{}
	add := func(shader int, c [4]view.Vec3) {
		w.surfs = append(w.surfs, worldSurface{surf: newQuad(c), shader: shader})
	}
	add(sh.floor, [4]view.Vec3{{lo, hi, 0}, {hi, hi, 0}, {hi, lo, 0}, {lo, lo, 0}})
	add(sh.wall, [4]view.Vec3{{lo, lo, top}, {hi, lo, top}, {hi, hi, top}, {lo, hi, top}})
	add(sh.wall, [4]view.Vec3{{lo, lo, 0}, {hi, lo, 0}, {hi, lo, top}, {lo, lo, top}})
	add(sh.wall, [4]view.Vec3{{lo, hi, top}, {hi, hi, top}, {hi, hi, 0}, {lo, hi, 0}})
	add(sh.wall, [4]view.Vec3{{lo, hi, 0}, {lo, lo, 0}, {lo, lo, top}, {lo, hi, top}})
	add(sh.wall, [4]view.Vec3{{hi, hi, top}, {hi, lo, top}, {hi, lo, 0}, {hi, hi, 0}})
	add(sh.mirror, [4]view.Vec3{{255, 64, 128}, {255, -64, 128}, {255, -64, 0}, {255, 64, 0}})
	add(sh.window, [4]view.Vec3{{128, -48, 128}, {128, -112, 128}, {128, -112, 0}, {128, -48, 0}})
	add(sh.glass, [4]view.Vec3{{96, 32, 96}, {96, -32, 96}, {96, -32, 32}, {96, 32, 32}})
	add(sh.glass, [4]view.Vec3{{160, 64, 80}, {160, 16, 80}, {160, 16, 16}, {160, 64, 16}})
	return sh, w, nil
}
