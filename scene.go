// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rend

import (
	"github.com/gogpu/rend/frame"
	"github.com/gogpu/rend/view"
)

// RDFlags modify how RenderScene draws a view.
type RDFlags uint32

// Scene flags.
const (
	// RDFNoWorldModel renders entities and polys only, e.g. a 3D model
	// in a UI panel.
	RDFNoWorldModel RDFlags = 1 << iota
)

// RefDef describes one camera to render.
type RefDef struct {
	// Viewport is in window pixels with the origin at the bottom left.
	Viewport   view.Viewport
	FovX, FovY float32

	Origin view.Vec3
	// Axis is forward, left, up.
	Axis [3]view.Vec3

	// Time is the scene time in milliseconds. It drives portal rotation.
	Time  int32
	Flags RDFlags
}

// sceneMarks are the first arena indices of the current scene.
type sceneMarks struct {
	firstEntity int
	firstLight  int
	firstPoly   int
}

// ClearScene starts a new scene within the frame: entities, lights and
// polys added so far are left out of the next RenderScene. Nothing is
// freed; several scenes can share one frame.
func (r *Renderer) ClearScene() {
	if !r.inFrame {
		return
	}
	f := r.cur.frame
	r.scene = sceneMarks{
		firstEntity: len(f.Entities),
		firstLight:  len(f.Lights),
		firstPoly:   len(f.Polys),
	}
}

// checkFrame reports whether a scene call may touch the frame arenas.
func (r *Renderer) checkFrame(op string) bool {
	if r.inFrame {
		return true
	}
	Logger().Warn("rend: called outside BeginFrame/EndFrame", "op", op)
	return false
}

// AddRefEntityToScene adds ent to the current scene. The entity is
// dropped when the entity arena is full. An entity type outside the
// enumeration is a fatal reference error.
func (r *Renderer) AddRefEntityToScene(ent frame.RefEntity) {
	if !r.checkFrame("add entity") {
		return
	}
	if ent.Type > frame.EntityPortalSurface {
		r.fatal("add entity", int(ent.Type), ErrBadEntity)
	}
	if _, ok := r.cur.frame.AddEntity(ent); !ok {
		r.stats.DroppedEntities++
		Logger().Debug("rend: entity arena full, entity dropped", "frame", r.frameCount)
	}
}

// AddLightToScene adds a dynamic light. Lights with a non-positive
// radius are ignored.
func (r *Renderer) AddLightToScene(origin view.Vec3, radius float32, red, green, blue float32) {
	r.addLight(origin, radius, red, green, blue, false)
}

// AddAdditiveLightToScene adds a dynamic light that is blended
// additively instead of modulating.
func (r *Renderer) AddAdditiveLightToScene(origin view.Vec3, radius float32, red, green, blue float32) {
	r.addLight(origin, radius, red, green, blue, true)
}

func (r *Renderer) addLight(origin view.Vec3, radius float32, red, green, blue float32, additive bool) {
	if !r.checkFrame("add light") || radius <= 0 {
		return
	}
	ok := r.cur.frame.AddLight(frame.Light{
		Origin:   origin,
		Radius:   radius,
		Color:    [3]float32{red, green, blue},
		Additive: additive,
	})
	if !ok {
		r.stats.DroppedLights++
		Logger().Debug("rend: light arena full, light dropped", "frame", r.frameCount)
	}
}

// AddPolyToScene adds a transient polygon, copying verts. The polygon is
// dropped when the poly or vertex arena is full.
func (r *Renderer) AddPolyToScene(shader int, verts []frame.PolyVert) {
	if !r.checkFrame("add poly") {
		return
	}
	if _, ok := r.cur.frame.AddPoly(shader, verts); !ok {
		r.stats.DroppedPolys++
		Logger().Debug("rend: poly arena full, poly dropped", "frame", r.frameCount, "verts", len(verts))
	}
}

// AddPolysToScene adds numPolys polygons of numVerts vertices each,
// stored back to back in verts.
func (r *Renderer) AddPolysToScene(shader int, verts []frame.PolyVert, numVerts, numPolys int) {
	if numVerts <= 0 || numPolys <= 0 || len(verts) < numVerts*numPolys {
		return
	}
	for i := 0; i < numPolys; i++ {
		r.AddPolyToScene(shader, verts[i*numVerts:(i+1)*numVerts])
	}
}

// RenderScene composes the view described by rd from the current scene
// and appends its draw-surfaces records, portal views first. A view with
// an empty viewport renders nothing. The next scene starts after the
// entities, lights and polys of this one.
func (r *Renderer) RenderScene(rd *RefDef) {
	if !r.checkFrame("render scene") {
		return
	}
	defer r.ClearScene()
	if rd.Viewport.Empty() {
		Logger().Debug("rend: empty viewport, scene skipped", "frame", r.frameCount)
		return
	}

	r.sceneNum++
	r.stats.Scenes++

	p := view.Parms{
		Or:            view.Orientation{Origin: rd.Origin, Axis: rd.Axis},
		PVSOrigin:     rd.Origin,
		Viewport:      rd.Viewport,
		FovX:          rd.FovX,
		FovY:          rd.FovY,
		ZNear:         r.cfg.zNear,
		FrameSceneNum: r.sceneNum,
		FrameCount:    r.frameCount,
		NoCull:        r.cfg.noCull,
	}
	sc := sceneView{
		time:    rd.Time,
		noWorld: rd.Flags&RDFNoWorldModel != 0 || r.cfg.world == nil,
	}
	r.renderView(&p, &sc)
}
