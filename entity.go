// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rend

import (
	"math"

	"github.com/gogpu/rend/frame"
	"github.com/gogpu/rend/view"
)

// Widths of entity ribbons with no radius of their own.
const (
	beamWidth      = 8
	railCoreWidth  = 6
	railRingsWidth = 12
	lightningWidth = 8
)

// entitySurface is the world-space quad of a sprite, beam, rail or
// lightning entity.
type entitySurface struct {
	verts  [4]frame.Vertex
	bounds view.Bounds
}

func (s *entitySurface) Kind() frame.SurfaceKind { return frame.SurfaceEntity }

func (s *entitySurface) Vertices() []frame.Vertex { return s.verts[:] }

func (s *entitySurface) Bounds() view.Bounds { return s.bounds }

func newEntitySurface(corners [4]view.Vec3, normal view.Vec3) *entitySurface {
	s := &entitySurface{bounds: view.EmptyBounds()}
	for i, c := range corners {
		s.verts[i] = frame.Vertex{Pos: c, Normal: normal}
		s.bounds = s.bounds.AddPoint(c)
	}
	return s
}

// addEntitySurfaces adds the surfaces of the scene's entities. Entities
// marked third person only show in portal views, first person entities
// never do.
func (r *Renderer) addEntitySurfaces(p *view.Parms, sink SurfaceSink) {
	f := r.cur.frame
	for i := r.scene.firstEntity; i < len(f.Entities); i++ {
		ent := &f.Entities[i]
		if ent.RenderFX&frame.RFFirstPerson != 0 && p.IsPortal {
			continue
		}
		if ent.RenderFX&frame.RFThirdPerson != 0 && !p.IsPortal {
			continue
		}

		switch ent.Type {
		case frame.EntityPortalSurface:
			// only a camera placement for the portal recursor
		case frame.EntityModel:
			if r.cfg.models != nil {
				r.cfg.models.AddModelSurfaces(p, ent, i, sink)
			}
		default:
			s := entityQuad(p, ent)
			if s == nil {
				continue
			}
			b := s.bounds
			if p.CullPointAndRadius(b.Center(), b.Radius(), &r.stats.Cull) == view.CullOut {
				continue
			}
			sink.AddDrawSurf(s, ent.CustomShader, i, ent.Model, false)
		}
	}
}

// entityQuad builds the quad of a core entity type facing the viewer. It
// returns nil for degenerate entities.
func entityQuad(p *view.Parms, ent *frame.RefEntity) *entitySurface {
	switch ent.Type {
	case frame.EntitySprite:
		return spriteQuad(p, ent)
	case frame.EntityBeam:
		return ribbon(p, ent.Origin, ent.OldOrigin, widthOr(ent.Radius, beamWidth))
	case frame.EntityRailCore:
		return ribbon(p, ent.Origin, ent.OldOrigin, widthOr(ent.Radius, railCoreWidth))
	case frame.EntityRailRings:
		return ribbon(p, ent.Origin, ent.OldOrigin, widthOr(ent.Radius, railRingsWidth))
	case frame.EntityLightning:
		return ribbon(p, ent.Origin, ent.OldOrigin, widthOr(ent.Radius, lightningWidth))
	}
	return nil
}

func widthOr(radius, def float32) float32 {
	if radius > 0 {
		return radius * 2
	}
	return def
}

// spriteQuad is a screen-aligned square of half size Radius, rotated by
// Rotation degrees around the view axis.
func spriteQuad(p *view.Parms, ent *frame.RefEntity) *entitySurface {
	radius := ent.Radius
	if radius <= 0 {
		return nil
	}
	ax := p.Or.Axis

	var left, up view.Vec3
	if ent.Rotation == 0 {
		left = ax[1].Scale(radius)
		up = ax[2].Scale(radius)
	} else {
		s, c := math.Sincos(float64(ent.Rotation) * math.Pi / 180)
		sf, cf := float32(s), float32(c)
		left = ax[1].Scale(cf*radius).MA(-sf*radius, ax[2])
		up = ax[2].Scale(cf*radius).MA(sf*radius, ax[1])
	}
	if p.IsMirror {
		left = left.Neg()
	}

	o := ent.Origin
	return newEntitySurface([4]view.Vec3{
		o.Add(left).Add(up),
		o.Sub(left).Add(up),
		o.Sub(left).Sub(up),
		o.Add(left).Sub(up),
	}, ax[0].Neg())
}

// ribbon is a quad from start to end of the given width, turned to face
// the viewer.
func ribbon(p *view.Parms, start, end view.Vec3, width float32) *entitySurface {
	dir, length := end.Sub(start).Normalize()
	if length == 0 {
		return nil
	}
	mid := start.Add(end).Scale(0.5)
	toEye := p.Or.Origin.Sub(mid)

	side, l := dir.Cross(toEye).Normalize()
	if l == 0 {
		side = dir.Perpendicular()
	}
	side = side.Scale(width * 0.5)
	normal, _ := side.Cross(dir).Normalize()

	return newEntitySurface([4]view.Vec3{
		start.Add(side),
		end.Add(side),
		end.Sub(side),
		start.Sub(side),
	}, normal)
}
