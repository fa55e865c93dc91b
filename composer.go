// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rend

import (
	"errors"

	"github.com/gogpu/rend/cmdstream"
	"github.com/gogpu/rend/frame"
	"github.com/gogpu/rend/internal/surfsort"
	"github.com/gogpu/rend/shader"
	"github.com/gogpu/rend/sortkey"
	"github.com/gogpu/rend/view"
)

// World supplies the world surfaces visible from a view. It is called
// once per composed view, after the frustum is set up.
type World interface {
	// AddWorldSurfaces adds the visible world surfaces to sink with
	// entity frame.EntityWorld and returns the bounds of the visible
	// world geometry, which sets the far clip distance.
	AddWorldSurfaces(p *view.Parms, sink SurfaceSink) view.Bounds
}

// Models generates the surfaces of model entities.
type Models interface {
	// AddModelSurfaces adds the surfaces of ent, entity index entityNum,
	// visible from p.
	AddModelSurfaces(p *view.Parms, ent *frame.RefEntity, entityNum int, sink SurfaceSink)
}

// SurfaceSink receives the draw surfaces of a view.
type SurfaceSink interface {
	// AddDrawSurf adds one surface drawn with the shader handle for the
	// entity index (or frame.EntityWorld). static marks batched static
	// geometry. An invalid shader or entity, or a shader without a sort
	// class, is a fatal reference error.
	AddDrawSurf(s frame.Surface, shader, entity, model int, static bool)
}

// sceneView carries the per-scene values every view of a scene shares.
type sceneView struct {
	time    int32
	noWorld bool
}

// viewSink adds surfaces to the renderer's current frame.
type viewSink struct {
	r *Renderer
}

func (s viewSink) AddDrawSurf(surf frame.Surface, shader, entity, model int, static bool) {
	s.r.addDrawSurf(surf, shader, entity, model, static)
}

func (r *Renderer) addDrawSurf(surf frame.Surface, shaderHandle, entity, model int, static bool) {
	f := r.cur.frame
	if entity != frame.EntityWorld {
		ent := f.Entity(entity)
		if ent == nil {
			r.fatal("add draw surface", entity, ErrBadEntity)
		}
		if ent.CustomShader != 0 {
			shaderHandle = ent.CustomShader
		}
	}
	sh := r.shaders.Get(shaderHandle)
	if sh == nil {
		r.fatal("add draw surface", shaderHandle, ErrBadShader)
	}
	if sh.Sort == shader.SortBad {
		r.fatal("add draw surface", shaderHandle, ErrBadSort)
	}

	_, ok := f.AddDrawSurf(frame.DrawSurface{
		Key:       r.composeKey("add draw surface", entity, sh, static),
		Surface:   surf,
		Entity:    entity,
		Shader:    shaderHandle,
		Model:     model,
		Greyscale: sh.Greyscale,
		Sort:      sh.Sort,
	})
	if !ok {
		r.stats.DroppedSurfs++
		Logger().Debug("rend: draw surface arena full, surface dropped", "frame", r.frameCount, "shader", sh.Name)
	}
}

// renderView composes one view: frustum, surface generation, lights,
// sort, portal views, transparency, and finally the view's
// draw-surfaces record. Portal views recurse into renderView and write
// their records first.
func (r *Renderer) renderView(p *view.Parms, sc *sceneView) {
	if p.Viewport.Empty() {
		return
	}
	r.viewCount++
	p.ViewCount = r.viewCount
	r.stats.Views++

	f := r.cur.frame
	first := len(f.DrawSurfs)
	sink := viewSink{r: r}

	p.SetupModelView()
	p.SetupProjection(r.cfg.zNear)

	p.VisBounds = view.EmptyBounds()
	if !sc.noWorld {
		p.VisBounds = r.cfg.world.AddWorldSurfaces(p, sink)
	}
	r.addEntitySurfaces(p, sink)
	r.addPolySurfaces(sink)

	p.SetFarClip(sc.noWorld, r.cfg.defaultFar)
	p.SetupProjectionZ()

	lightFirst, lightCount := r.addViewLights(p, first)

	surfs := f.DrawSurfs[first:]
	transp, ok := r.sortSurfaces(p, surfs, sc)
	if !ok {
		return
	}

	r.stats.DrawSurfs += len(surfs)
	r.stats.Transp += transp
	r.record(r.cur.stream.WriteDrawSurfs(&cmdstream.DrawSurfs{
		View:       *p,
		NoWorld:    sc.noWorld,
		Time:       sc.time,
		First:      first,
		Count:      len(surfs),
		Transp:     transp,
		LightFirst: lightFirst,
		LightCount: lightCount,
	}))
}

// sortSurfaces orders the surfaces of a view: radix sort by key, portal
// views for the leading portal surfaces, then the transparent suffix by
// depth. It returns the length of the transparent suffix, and false when
// a portal-only view must not be drawn.
func (r *Renderer) sortSurfaces(p *view.Parms, surfs []frame.DrawSurface, sc *sceneView) (int, bool) {
	if len(surfs) == 0 {
		return 0, true
	}
	surfsort.RadixSort(surfs, r.scratch)

	// portal flag 0 sorts first, so portals lead the list
	for i := range surfs {
		if surfs[i].Sort != shader.SortPortal {
			break
		}
		if r.renderPortal(p, &surfs[i], sc) && r.cfg.portalOnly {
			return 0, false
		}
	}

	return r.resolveTransparency(p, surfs), true
}

// composeKey packs the sort key of a surface. An index the key cannot
// hold is a fatal reference error of the current frame.
func (r *Renderer) composeKey(op string, entity int, sh *shader.Shader, static bool) uint64 {
	defer r.keyRange(op, entity, sh)
	return sortkey.Compose(r.shaders, entity, sh, static)
}

// composeLitKey is composeKey for lit surfaces.
func (r *Renderer) composeLitKey(op string, entity int, sh *shader.Shader, static bool) uint32 {
	defer r.keyRange(op, entity, sh)
	return sortkey.ComposeLit(r.shaders, entity, sh, static)
}

// keyRange turns a sortkey range panic into a FatalError. Other panics
// pass through.
func (r *Renderer) keyRange(op string, entity int, sh *shader.Shader) {
	v := recover()
	if v == nil {
		return
	}
	err, ok := v.(error)
	switch {
	case ok && errors.Is(err, sortkey.ErrEntityRange):
		r.fatal(op, entity, err)
	case ok && errors.Is(err, sortkey.ErrShaderRange):
		r.fatal(op, sh.Index, err)
	}
	panic(v)
}

func (r *Renderer) addPolySurfaces(sink SurfaceSink) {
	f := r.cur.frame
	for i := r.scene.firstPoly; i < len(f.Polys); i++ {
		sink.AddDrawSurf(frame.PolySurface{Index: i}, f.Polys[i].Shader, frame.EntityWorld, 0, false)
	}
}
