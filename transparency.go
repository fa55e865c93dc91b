// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rend

import (
	"cmp"
	"math"
	"slices"

	"github.com/gogpu/rend/frame"
	"github.com/gogpu/rend/shader"
	"github.com/gogpu/rend/view"
)

// DepthPoint picks the world-space point a transparent surface is depth
// sorted by. ok is false when the surface offers nothing to pick from.
type DepthPoint func(p *view.Parms, f *frame.Frame, ds *frame.DrawSurface) (pt view.Vec3, ok bool)

// DepthPolicy maps surface kinds to their depth rule. The rules are
// heuristics tuned for typical content; kinds without a rule, and rules
// that report !ok, fall back to BoundsCenter.
type DepthPolicy map[frame.SurfaceKind]DepthPoint

// DefaultDepthPolicy returns the standard rules: point-like surfaces use
// their center, free-form triangle soups their vertex nearest the
// viewer.
func DefaultDepthPolicy() DepthPolicy {
	return DepthPolicy{
		frame.SurfaceFace:      BoundsCenter,
		frame.SurfaceGrid:      BoundsCenter,
		frame.SurfaceMesh:      BoundsCenter,
		frame.SurfaceFlare:     BoundsCenter,
		frame.SurfaceEntity:    EntityOrigin,
		frame.SurfacePoly:      PolyCenter,
		frame.SurfaceTriangles: NearestVertex,
	}
}

// placement returns the orientation of a surface's local space without
// the view transform.
func placement(f *frame.Frame, ds *frame.DrawSurface) (view.Orientation, bool) {
	if ent := f.Entity(ds.Entity); ent != nil && ent.ModelSpace() {
		return view.Orientation{Origin: ent.Origin, Axis: ent.Axis}, true
	}
	return view.Orientation{}, false
}

func toWorld(f *frame.Frame, ds *frame.DrawSurface, local view.Vec3) view.Vec3 {
	if or, ok := placement(f, ds); ok {
		return or.LocalPointToWorld(local)
	}
	return local
}

// BoundsCenter is the center of the surface bounds.
func BoundsCenter(_ *view.Parms, f *frame.Frame, ds *frame.DrawSurface) (view.Vec3, bool) {
	b, ok := ds.Surface.(frame.Bounded)
	if !ok || b.Bounds().IsEmpty() {
		return view.Vec3{}, false
	}
	return toWorld(f, ds, b.Bounds().Center()), true
}

// EntityOrigin is the origin of the owning entity.
func EntityOrigin(_ *view.Parms, f *frame.Frame, ds *frame.DrawSurface) (view.Vec3, bool) {
	ent := f.Entity(ds.Entity)
	if ent == nil {
		return view.Vec3{}, false
	}
	return ent.Origin, true
}

// PolyCenter is the average of a poly's vertices.
func PolyCenter(_ *view.Parms, f *frame.Frame, ds *frame.DrawSurface) (view.Vec3, bool) {
	ps, ok := ds.Surface.(frame.PolySurface)
	if !ok || ps.Index < 0 || ps.Index >= len(f.Polys) {
		return view.Vec3{}, false
	}
	verts := f.PolyVertices(ps.Index)
	if len(verts) == 0 {
		return view.Vec3{}, false
	}
	var sum view.Vec3
	for _, v := range verts {
		sum = sum.Add(v.Pos)
	}
	return sum.Scale(1 / float32(len(verts))), true
}

// NearestVertex is the vertex closest to the viewer in eye depth.
func NearestVertex(p *view.Parms, f *frame.Frame, ds *frame.DrawSurface) (view.Vec3, bool) {
	vx, ok := ds.Surface.(frame.Vertexed)
	if !ok {
		return view.Vec3{}, false
	}
	var best view.Vec3
	bestDepth := float32(math.MaxFloat32)
	found := false
	for _, v := range vx.Vertices() {
		w := toWorld(f, ds, v.Pos)
		if d := p.World.ModelView.EyeDepth(w); d < bestDepth {
			best, bestDepth, found = w, d, true
		}
	}
	return best, found
}

// surfaceDepth is the eye depth of the surface's depth point.
func (r *Renderer) surfaceDepth(p *view.Parms, ds *frame.DrawSurface) float32 {
	f := r.cur.frame
	if rule, ok := r.cfg.depth[ds.Surface.Kind()]; ok {
		if pt, ok := rule(p, f, ds); ok {
			return p.World.ModelView.EyeDepth(pt)
		}
	}
	if pt, ok := BoundsCenter(p, f, ds); ok {
		return p.World.ModelView.EyeDepth(pt)
	}
	return 0
}

// resolveTransparency depth sorts the trailing run of transparent
// surfaces of a key-sorted view, farthest first, and returns its length.
// Ties are broken by sort class (unless ignored) and then by position,
// so the order is total.
func (r *Renderer) resolveTransparency(p *view.Parms, surfs []frame.DrawSurface) int {
	start := len(surfs)
	for start > 0 && surfs[start-1].Sort > shader.SortOpaque {
		start--
	}
	transp := surfs[start:]
	n := len(transp)
	if n == 0 || r.cfg.noSort {
		return n
	}

	for i := range transp {
		transp[i].Depth = r.surfaceDepth(p, &transp[i])
	}

	order := r.order[:0]
	for i := range transp {
		order = append(order, i)
	}
	ignoreSort := r.cfg.ignoreShaderSort
	slices.SortFunc(order, func(a, b int) int {
		sa, sb := &transp[a], &transp[b]
		if !ignoreSort {
			if c := cmp.Compare(sa.Sort, sb.Sort); c != 0 {
				return c
			}
		}
		if c := cmp.Compare(sb.Depth, sa.Depth); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})

	tmp := r.scratch[:n]
	for i, j := range order {
		tmp[i] = transp[j]
	}
	copy(transp, tmp)
	r.order = order
	return n
}
