// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package halexec

import (
	"math"

	"github.com/gogpu/rend/frame"
	"github.com/gogpu/rend/shader"
	"github.com/gogpu/rend/view"
)

// batch is a run of vertices drawn with one pipeline.
type batch struct {
	key   pipelineKey
	first uint32
	count uint32
}

func vertexCount(v []float32) uint32 {
	//nolint:gosec // G115: vertex data is bounded by frame arenas
	return uint32(len(v) / vertexFloats)
}

func appendVertex(dst []float32, pos, color [4]float32) []float32 {
	return append(dst, pos[0], pos[1], pos[2], pos[3], color[0], color[1], color[2], color[3])
}

// appendFan triangulates a convex polygon of n vertices.
func appendFan(dst []float32, n int, at func(int) (pos, color [4]float32)) []float32 {
	if n < 3 {
		return dst
	}
	p0, c0 := at(0)
	for i := 1; i+1 < n; i++ {
		p1, c1 := at(i)
		p2, c2 := at(i + 1)
		dst = appendVertex(dst, p0, c0)
		dst = appendVertex(dst, p1, c1)
		dst = appendVertex(dst, p2, c2)
	}
	return dst
}

// appendList copies whole triangles; a trailing partial triangle is
// dropped.
func appendList(dst []float32, n int, at func(int) (pos, color [4]float32)) []float32 {
	for i := 0; i+2 < n; i += 3 {
		for j := i; j < i+3; j++ {
			p, c := at(j)
			dst = appendVertex(dst, p, c)
		}
	}
	return dst
}

// appendSurface appends the clip-space triangles of ds. It reports false
// for surfaces that carry no geometry the executor can read.
func appendSurface(dst []float32, p *view.Parms, f *frame.Frame, ds *frame.DrawSurface, c [4]float32) ([]float32, bool) {
	or := &p.World
	if ent := f.Entity(ds.Entity); ent != nil && ent.ModelSpace() {
		o := p.RotateForEntity(ent.Origin, ent.Axis, ent.NonNormalizedAxes)
		or = &o
	}

	switch s := ds.Surface.(type) {
	case frame.PolySurface:
		if s.Index < 0 || s.Index >= len(f.Polys) {
			return dst, false
		}
		pv := f.PolyVertices(s.Index)
		return appendFan(dst, len(pv), func(i int) (pos, color [4]float32) {
			return p.TransformToClip(&p.World, pv[i].Pos), rgba8(pv[i].Color)
		}), true
	case frame.Vertexed:
		vs := s.Vertices()
		at := func(i int) (pos, color [4]float32) {
			return p.TransformToClip(or, vs[i].Pos), c
		}
		switch ds.Surface.Kind() {
		case frame.SurfaceFace, frame.SurfaceFlare, frame.SurfaceEntity:
			return appendFan(dst, len(vs), at), true
		}
		return appendList(dst, len(vs), at), true
	}
	return dst, false
}

func rgba8(c [4]uint8) [4]float32 {
	return [4]float32{float32(c[0]) / 255, float32(c[1]) / 255, float32(c[2]) / 255, float32(c[3]) / 255}
}

// surfaceColor picks a stable flat color per shader; blended shaders are
// half transparent.
func surfaceColor(sh *shader.Shader) [4]float32 {
	const golden = 0.618033988749895
	hue := math.Mod(float64(sh.Index)*golden, 1)
	r, g, b := hsvToRGB(hue, 0.6, 0.9)
	a := float32(1)
	if sh.State.Blend != nil {
		a = 0.5
	}
	grey := sh.Greyscale
	if grey > 0 {
		l := 0.299*r + 0.587*g + 0.114*b
		r += (l - r) * grey
		g += (l - g) * grey
		b += (l - b) * grey
	}
	return [4]float32{r, g, b, a}
}

func hsvToRGB(h, s, v float64) (r, g, b float32) {
	i := math.Floor(h * 6)
	f := h*6 - i
	p := v * (1 - s)
	q := v * (1 - f*s)
	t := v * (1 - (1-f)*s)
	var rr, gg, bb float64
	switch int(i) % 6 {
	case 0:
		rr, gg, bb = v, t, p
	case 1:
		rr, gg, bb = q, v, p
	case 2:
		rr, gg, bb = p, v, t
	case 3:
		rr, gg, bb = p, q, v
	case 4:
		rr, gg, bb = t, p, v
	default:
		rr, gg, bb = v, p, q
	}
	return float32(rr), float32(gg), float32(bb)
}

// screenToClip maps a pixel position on a width x height target to clip
// space.
func screenToClip(x, y float32, width, height uint32) [4]float32 {
	return [4]float32{x/float32(width)*2 - 1, 1 - y/float32(height)*2, 0, 1}
}
