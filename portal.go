// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rend

import (
	"math"

	"github.com/gogpu/rend/frame"
	"github.com/gogpu/rend/view"
)

// portalEntityRange is how far a portal surface entity may sit from the
// surface plane and still belong to it.
const portalEntityRange = 64

// renderPortal renders the view seen through the portal or mirror
// surface ds and reports whether it did. Nested portals, offscreen
// portals and portals without a camera entity render nothing extra.
// p is restored by value once the inner view is done.
func (r *Renderer) renderPortal(p *view.Parms, ds *frame.DrawSurface, sc *sceneView) bool {
	if p.IsPortal {
		r.stats.PortalRefused++
		Logger().Debug("rend: recursive mirror/portal found", "frame", r.frameCount, "view", p.ViewCount)
		return false
	}
	if r.surfaceOffscreen(p, ds) {
		r.stats.PortalOffscreen++
		return false
	}

	surface, camera, pvsOrigin, mirror, ok := r.portalOrientations(p, ds, sc.time)
	if !ok {
		r.stats.PortalNoCamera++
		return false
	}
	if !mirror && r.beyondPortalRange(p, ds) {
		r.stats.PortalOffscreen++
		return false
	}

	saved := *p

	inner := *p
	inner.IsPortal = true
	inner.IsMirror = mirror
	inner.PVSOrigin = pvsOrigin
	inner.Or.Origin = view.MirrorPoint(p.Or.Origin, &surface, &camera)
	for i := range inner.Or.Axis {
		inner.Or.Axis[i] = view.MirrorVector(p.Or.Axis[i], &surface, &camera)
	}
	normal := camera.Axis[0].Neg()
	inner.PortalPlane = view.NewPlane(normal, camera.Origin.Dot(normal))

	r.stats.PortalViews++
	Logger().Debug("rend: portal view", "frame", r.frameCount, "mirror", mirror, "shader", ds.Shader)
	r.renderView(&inner, sc)

	*p = saved
	return true
}

// surfaceOrientation returns the placement of the surface's local space.
func surfaceOrientation(p *view.Parms, f *frame.Frame, ds *frame.DrawSurface) view.Orientation {
	if ent := f.Entity(ds.Entity); ent != nil && ent.ModelSpace() {
		return p.RotateForEntity(ent.Origin, ent.Axis, ent.NonNormalizedAxes)
	}
	return p.World
}

// surfaceOffscreen reports whether no part of the portal surface can be
// seen: every vertex is outside the same clip plane, or every vertex
// faces away. Surfaces without vertices are assumed visible.
func (r *Renderer) surfaceOffscreen(p *view.Parms, ds *frame.DrawSurface) bool {
	vx, ok := ds.Surface.(frame.Vertexed)
	if !ok {
		return false
	}
	verts := vx.Vertices()
	if len(verts) == 0 {
		return false
	}
	or := surfaceOrientation(p, r.cur.frame, ds)

	and := uint8(0xff)
	for _, v := range verts {
		and &= view.ClipCodes(p.TransformToClip(&or, v.Pos))
	}
	if and != 0 {
		return true
	}

	withNormal, facing := 0, 0
	for _, v := range verts {
		if v.Normal == (view.Vec3{}) {
			continue
		}
		withNormal++
		pos := or.LocalPointToWorld(v.Pos)
		n := or.LocalNormalToWorld(v.Normal)
		if pos.Sub(p.Or.Origin).Dot(n) < 0 {
			facing++
		}
	}
	return withNormal > 0 && facing == 0
}

// beyondPortalRange reports whether the viewer is farther from every
// vertex of the surface than the shader's portal range.
func (r *Renderer) beyondPortalRange(p *view.Parms, ds *frame.DrawSurface) bool {
	sh := r.shaders.Get(ds.Shader)
	if sh.PortalRange <= 0 {
		return false
	}
	vx, ok := ds.Surface.(frame.Vertexed)
	if !ok {
		return false
	}
	or := surfaceOrientation(p, r.cur.frame, ds)
	shortest := float32(math.MaxFloat32)
	for _, v := range vx.Vertices() {
		d := or.LocalPointToWorld(v.Pos).Sub(p.Or.Origin).LengthSquared()
		shortest = min(shortest, d)
	}
	return shortest > sh.PortalRange*sh.PortalRange
}

// surfacePlane returns the world-space plane of a portal surface.
func surfacePlane(p *view.Parms, f *frame.Frame, ds *frame.DrawSurface) (view.Plane, bool) {
	var plane view.Plane
	switch s := ds.Surface.(type) {
	case frame.Planar:
		plane = s.Plane()
	case frame.Vertexed:
		vs := s.Vertices()
		if len(vs) < 3 {
			return view.Plane{}, false
		}
		var ok bool
		if plane, ok = view.PlaneFromPoints(vs[0].Pos, vs[1].Pos, vs[2].Pos); !ok {
			return view.Plane{}, false
		}
	default:
		return view.Plane{}, false
	}

	if ent := f.Entity(ds.Entity); ent != nil && ent.ModelSpace() {
		or := p.RotateForEntity(ent.Origin, ent.Axis, ent.NonNormalizedAxes)
		n := or.LocalNormalToWorld(plane.Normal)
		plane = view.NewPlane(n, plane.Dist+n.Dot(or.Origin))
	}
	return plane, true
}

// portalOrientations finds the portal surface entity that belongs to ds
// and derives the surface and camera orientations of the inner view. A
// portal entity whose old origin equals its origin makes the surface a
// mirror.
func (r *Renderer) portalOrientations(p *view.Parms, ds *frame.DrawSurface, time int32) (surface, camera view.Orientation, pvsOrigin view.Vec3, mirror, ok bool) {
	f := r.cur.frame
	plane, ok := surfacePlane(p, f, ds)
	if !ok {
		return surface, camera, pvsOrigin, false, false
	}

	surface.Axis[0] = plane.Normal
	surface.Axis[1] = plane.Normal.Perpendicular()
	surface.Axis[2] = surface.Axis[0].Cross(surface.Axis[1])

	for i := r.scene.firstEntity; i < len(f.Entities); i++ {
		e := &f.Entities[i]
		if e.Type != frame.EntityPortalSurface {
			continue
		}
		d := plane.Distance(e.Origin)
		if d > portalEntityRange || d < -portalEntityRange {
			continue
		}
		pvsOrigin = e.OldOrigin

		if e.OldOrigin == e.Origin {
			surface.Origin = plane.Normal.Scale(plane.Dist)
			camera.Origin = surface.Origin
			camera.Axis[0] = surface.Axis[0].Neg()
			camera.Axis[1] = surface.Axis[1]
			camera.Axis[2] = surface.Axis[2]
			return surface, camera, pvsOrigin, true, true
		}

		surface.Origin = e.Origin.MA(-d, surface.Axis[0])
		camera.Origin = e.OldOrigin
		camera.Axis[0] = e.Axis[0].Neg()
		camera.Axis[1] = e.Axis[1].Neg()
		camera.Axis[2] = e.Axis[2]

		if deg, rotate := portalRotation(e, time); rotate {
			camera.Axis[1] = view.RotateAround(camera.Axis[0], camera.Axis[1], deg)
			camera.Axis[2] = camera.Axis[0].Cross(camera.Axis[1])
		}
		return surface, camera, pvsOrigin, false, true
	}
	return surface, camera, pvsOrigin, false, false
}

// portalRotation returns the roll of a portal camera in degrees. OldFrame
// enables animation: Frame is a constant speed in degrees per second,
// without it the camera swings around SkinNum. A SkinNum alone is a fixed
// roll.
func portalRotation(e *frame.RefEntity, time int32) (float32, bool) {
	switch {
	case e.OldFrame != 0 && e.Frame != 0:
		return float32(time) / 1000 * float32(e.Frame), true
	case e.OldFrame != 0:
		swing := math.Sin(float64(time) * 0.003)
		return float32(e.SkinNum) + float32(swing)*4, true
	case e.SkinNum != 0:
		return float32(e.SkinNum), true
	}
	return 0, false
}
