// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package frame holds the per-frame arenas the composer fills: draw
// surfaces, lit surfaces, lights, entities and polys.
//
// All arenas are append-only with a fixed capacity and are reset in one
// step at the start of a frame. Add methods report false once an arena is
// full; callers drop the contribution.
package frame

import (
	"errors"
	"fmt"

	"github.com/gogpu/rend/view"
)

// EntityWorld is the entity index of world geometry. Real entity indices
// are below it, which bounds the number of entities per frame.
const EntityWorld = 1<<10 - 1

// MaxEntities is the largest entity capacity a frame may have.
const MaxEntities = EntityWorld

// viewLightSets is how many views per frame get their own light copies;
// later views render without dynamic lights.
const viewLightSets = 8

// ErrLimits is returned by Limits.Validate.
var ErrLimits = errors.New("frame: invalid limits")

// Limits are the arena capacities of a frame.
type Limits struct {
	DrawSurfs int
	LitSurfs  int
	Entities  int
	Lights    int
	Polys     int
	PolyVerts int
}

// DefaultLimits returns the standard capacities.
func DefaultLimits() Limits {
	return Limits{
		DrawSurfs: 0x10000,
		LitSurfs:  0x10000,
		Entities:  MaxEntities,
		Lights:    32,
		Polys:     600,
		PolyVerts: 3000,
	}
}

// Validate reports whether every capacity is usable.
func (l Limits) Validate() error {
	switch {
	case l.DrawSurfs <= 0, l.LitSurfs < 0, l.Lights < 0, l.Polys < 0, l.PolyVerts < 0:
		return fmt.Errorf("%w: negative or zero capacity %+v", ErrLimits, l)
	case l.Entities < 0 || l.Entities > MaxEntities:
		return fmt.Errorf("%w: entities %d not in [0, %d]", ErrLimits, l.Entities, MaxEntities)
	case l.LitSurfs > 1<<31-1:
		return fmt.Errorf("%w: lit surfaces %d overflow list links", ErrLimits, l.LitSurfs)
	}
	return nil
}

// Light is a dynamic light. Head and Tail delimit its lit surface list in
// Frame.LitSurfs; both are -1 while the list is empty.
type Light struct {
	Origin   view.Vec3
	Radius   float32
	Color    [3]float32
	Additive bool

	Head, Tail int32
	NumLit     int
}

// PolyVert is one vertex of a transient polygon.
type PolyVert struct {
	Pos   view.Vec3
	ST    [2]float32
	Color [4]uint8
}

// Poly is a transient polygon; its vertices live in Frame.PolyVerts.
type Poly struct {
	Shader    int
	FirstVert int
	NumVerts  int
}

// Frame is the set of arenas for one frame. The slices are allocated once
// with their full capacity and only resliced afterwards.
type Frame struct {
	// Number is the frame counter value the frame was begun with.
	Number int

	DrawSurfs []DrawSurface
	LitSurfs  []LitSurface

	// Lights are the lights added to the scene; ViewLights are per-view
	// copies carrying lit surface lists, so nested views never share
	// lists.
	Lights     []Light
	ViewLights []Light

	Entities  []RefEntity
	Polys     []Poly
	PolyVerts []PolyVert

	limits Limits
}

// New allocates a frame with the given capacities.
func New(l Limits) (*Frame, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return &Frame{
		DrawSurfs:  make([]DrawSurface, 0, l.DrawSurfs),
		LitSurfs:   make([]LitSurface, 0, l.LitSurfs),
		Lights:     make([]Light, 0, l.Lights),
		ViewLights: make([]Light, 0, l.Lights*viewLightSets),
		Entities:   make([]RefEntity, 0, l.Entities),
		Polys:      make([]Poly, 0, l.Polys),
		PolyVerts:  make([]PolyVert, 0, l.PolyVerts),
		limits:     l,
	}, nil
}

// Limits returns the capacities the frame was created with.
func (f *Frame) Limits() Limits {
	return f.limits
}

// Reset empties every arena and stamps the frame number.
func (f *Frame) Reset(number int) {
	f.Number = number
	f.DrawSurfs = f.DrawSurfs[:0]
	f.LitSurfs = f.LitSurfs[:0]
	f.Lights = f.Lights[:0]
	f.ViewLights = f.ViewLights[:0]
	f.Entities = f.Entities[:0]
	f.Polys = f.Polys[:0]
	f.PolyVerts = f.PolyVerts[:0]
}

// AddDrawSurf appends ds and returns its index.
func (f *Frame) AddDrawSurf(ds DrawSurface) (int, bool) {
	if len(f.DrawSurfs) == cap(f.DrawSurfs) {
		return 0, false
	}
	f.DrawSurfs = append(f.DrawSurfs, ds)
	return len(f.DrawSurfs) - 1, true
}

// AddLitSurf appends ls to the list of ViewLights[light].
func (f *Frame) AddLitSurf(light int, ls LitSurface) bool {
	if len(f.LitSurfs) == cap(f.LitSurfs) {
		return false
	}
	//nolint:gosec // G115: LitSurfs capacity is validated to fit int32
	idx := int32(len(f.LitSurfs))
	ls.Next = -1
	f.LitSurfs = append(f.LitSurfs, ls)

	l := &f.ViewLights[light]
	if l.Tail < 0 {
		l.Head = idx
	} else {
		f.LitSurfs[l.Tail].Next = idx
	}
	l.Tail = idx
	l.NumLit++
	return true
}

// AddEntity appends e and returns its index.
func (f *Frame) AddEntity(e RefEntity) (int, bool) {
	if len(f.Entities) == cap(f.Entities) {
		return 0, false
	}
	f.Entities = append(f.Entities, e)
	return len(f.Entities) - 1, true
}

// AddLight appends a scene light with an empty lit list.
func (f *Frame) AddLight(l Light) bool {
	if len(f.Lights) == cap(f.Lights) {
		return false
	}
	l.Head, l.Tail, l.NumLit = -1, -1, 0
	f.Lights = append(f.Lights, l)
	return true
}

// AddViewLight appends a per-view copy of a light and returns its index.
func (f *Frame) AddViewLight(l Light) (int, bool) {
	if len(f.ViewLights) == cap(f.ViewLights) {
		return 0, false
	}
	l.Head, l.Tail, l.NumLit = -1, -1, 0
	f.ViewLights = append(f.ViewLights, l)
	return len(f.ViewLights) - 1, true
}

// AddPoly copies verts into the vertex arena and appends a poly using
// them. Nothing is added when either arena lacks room.
func (f *Frame) AddPoly(shader int, verts []PolyVert) (int, bool) {
	if len(f.Polys) == cap(f.Polys) || len(f.PolyVerts)+len(verts) > cap(f.PolyVerts) {
		return 0, false
	}
	first := len(f.PolyVerts)
	f.PolyVerts = append(f.PolyVerts, verts...)
	f.Polys = append(f.Polys, Poly{Shader: shader, FirstVert: first, NumVerts: len(verts)})
	return len(f.Polys) - 1, true
}

// PolyVertices returns the vertices of Polys[i].
func (f *Frame) PolyVertices(i int) []PolyVert {
	p := f.Polys[i]
	return f.PolyVerts[p.FirstVert : p.FirstVert+p.NumVerts]
}

// Entity returns the entity at index i, or nil for EntityWorld.
func (f *Frame) Entity(i int) *RefEntity {
	if i == EntityWorld || i < 0 || i >= len(f.Entities) {
		return nil
	}
	return &f.Entities[i]
}
