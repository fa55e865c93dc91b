// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rend

import (
	"github.com/gogpu/rend/frame"
	"github.com/gogpu/rend/internal/surfsort"
	"github.com/gogpu/rend/sortkey"
	"github.com/gogpu/rend/view"
)

// addViewLights copies the scene lights that touch the frustum into the
// view light arena and links every surface from first on that a light
// reaches into the light's lit list, sorted by lit key. It returns the
// view's range of view lights.
func (r *Renderer) addViewLights(p *view.Parms, first int) (lightFirst, lightCount int) {
	f := r.cur.frame
	lightFirst = len(f.ViewLights)

	for i := r.scene.firstLight; i < len(f.Lights); i++ {
		l := f.Lights[i]
		if p.CullPointAndRadius(l.Origin, l.Radius, &r.stats.Cull) == view.CullOut {
			continue
		}
		vi, ok := f.AddViewLight(l)
		if !ok {
			r.stats.DroppedLights++
			Logger().Debug("rend: view light arena full, light dropped", "frame", r.frameCount, "view", p.ViewCount)
			break
		}
		r.litSurfaces(vi, first)

		vl := &f.ViewLights[vi]
		vl.Head, vl.Tail = surfsort.SortLit(f.LitSurfs, vl.Head)
		r.stats.ViewLights++
	}
	return lightFirst, len(f.ViewLights) - lightFirst
}

// litSurfaces adds the draw surfaces from first on that view light vi
// reaches. Sky and portal surfaces never take dynamic light.
func (r *Renderer) litSurfaces(vi, first int) {
	f := r.cur.frame
	l := f.ViewLights[vi]
	end := len(f.DrawSurfs)

	for i := first; i < end; i++ {
		ds := &f.DrawSurfs[i]
		b, ok := ds.Surface.(frame.Bounded)
		if !ok {
			continue
		}
		sh := r.shaders.Get(ds.Shader)
		if sh.IsSky || sh.IsPortal() {
			continue
		}

		center, radius := l.Origin, l.Radius
		if ent := f.Entity(ds.Entity); ent != nil && ent.ModelSpace() {
			center, radius = lightInEntity(ent, l.Origin, radius)
		}
		if !b.Bounds().IntersectsSphere(center, radius) {
			continue
		}

		ok = f.AddLitSurf(vi, frame.LitSurface{
			Key:     r.composeLitKey("add lit surface", ds.Entity, sh, sortkey.Unpack(ds.Key).Static),
			Surface: ds.Surface,
			Entity:  ds.Entity,
			Shader:  ds.Shader,
		})
		if !ok {
			r.stats.DroppedLitSurfs++
			Logger().Debug("rend: lit surface arena full", "frame", r.frameCount)
			return
		}
		r.stats.LitSurfs++
	}
}

// lightInEntity moves a light sphere into the local space of a model
// entity. Scaled axes shrink or grow the sphere with the model.
func lightInEntity(ent *frame.RefEntity, origin view.Vec3, radius float32) (view.Vec3, float32) {
	or := view.Orientation{Origin: ent.Origin, Axis: ent.Axis}
	if !ent.NonNormalizedAxes {
		return or.WorldToLocal(origin), radius
	}
	if s := ent.Axis[0].Length(); s != 0 {
		radius /= s
	}
	return or.WorldToScaledLocal(origin), radius
}
