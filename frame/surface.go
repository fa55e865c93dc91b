// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package frame

import "github.com/gogpu/rend/view"

// SurfaceKind tags the geometry behind a Surface.
type SurfaceKind uint8

// Surface kinds.
const (
	SurfaceBad SurfaceKind = iota
	// SurfaceSkip surfaces are placeholders that never draw.
	SurfaceSkip
	// SurfaceFace is a planar world polygon.
	SurfaceFace
	// SurfaceGrid is a curved patch tessellated into a grid.
	SurfaceGrid
	// SurfaceTriangles is a free-form triangle soup.
	SurfaceTriangles
	// SurfacePoly is a transient polygon added with AddPolyToScene.
	SurfacePoly
	// SurfaceMesh is one mesh of an animated model.
	SurfaceMesh
	// SurfaceFlare is a light flare.
	SurfaceFlare
	// SurfaceEntity is geometry generated from a RefEntity (sprites,
	// beams, rails, lightning).
	SurfaceEntity
)

var surfaceKindNames = [...]string{
	SurfaceBad:       "bad",
	SurfaceSkip:      "skip",
	SurfaceFace:      "face",
	SurfaceGrid:      "grid",
	SurfaceTriangles: "triangles",
	SurfacePoly:      "poly",
	SurfaceMesh:      "mesh",
	SurfaceFlare:     "flare",
	SurfaceEntity:    "entity",
}

func (k SurfaceKind) String() string {
	if int(k) < len(surfaceKindNames) {
		return surfaceKindNames[k]
	}
	return "unknown"
}

// Surface is an opaque reference to renderable geometry. It is owned by the
// world or model data, or by the frame for polys and entity surfaces.
type Surface interface {
	Kind() SurfaceKind
}

// Bounded surfaces report their bounds in local (entity) space.
type Bounded interface {
	Bounds() view.Bounds
}

// Vertex is a geometry vertex as seen by the composer.
type Vertex struct {
	Pos    view.Vec3
	Normal view.Vec3
}

// Vertexed surfaces expose their vertices in local space. Face, flare and
// entity surfaces list a convex polygon in winding order; other kinds list
// triangles.
type Vertexed interface {
	Vertices() []Vertex
}

// Planar surfaces lie on a single plane in local space.
type Planar interface {
	Plane() view.Plane
}

// PolySurface refers to Frame.Polys[Index].
type PolySurface struct {
	Index int
}

// Kind returns SurfacePoly.
func (PolySurface) Kind() SurfaceKind { return SurfacePoly }

// EntitySurface is the geometry of a sprite, beam, rail or lightning
// entity; the entity is named by the owning DrawSurface.
type EntitySurface struct{}

// Kind returns SurfaceEntity.
func (EntitySurface) Kind() SurfaceKind { return SurfaceEntity }

// DrawSurface is one renderable contribution for one
// entity/shader/geometry combination in the current view.
type DrawSurface struct {
	// Key orders the surface; see package sortkey.
	Key     uint64
	Surface Surface
	// Entity indexes Frame.Entities, or is EntityWorld.
	Entity int
	// Shader and Model are handles into global tables.
	Shader int
	Model  int

	Greyscale float32
	// Depth is the eye-space distance, filled only for transparent
	// surfaces.
	Depth float32
	// Sort is the coarse sort class copied from the shader.
	Sort float32
}

// LitSurface is one contribution of a surface to a dynamic light. Lit
// surfaces of a light form a forward list linked by index.
type LitSurface struct {
	Key     uint32
	Surface Surface
	Entity  int
	Shader  int
	// Next indexes Frame.LitSurfs, or is -1 at the end of the list.
	Next int32
}
