// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package shader holds the shader records the frame composer reads while
// building sort keys: coarse sort class, pipeline state, cull mode and the
// batching hints of each shader handle.
//
// Shaders are registered once, usually at level load, and are read-only
// afterwards except for the per-frame sorted index, which the composer
// assigns lazily through Table.SortedIndex.
package shader

import "github.com/gogpu/gputypes"

// Coarse sort classes. Lower values draw first. Everything above
// SortOpaque is treated as transparent and depth sorted.
const (
	SortBad           float32 = 0
	SortPortal        float32 = 1
	SortEnvironment   float32 = 2 // sky box
	SortOpaque        float32 = 3
	SortDecal         float32 = 4
	SortSeeThrough    float32 = 5
	SortBanner        float32 = 6
	SortFog           float32 = 7
	SortUnderwater    float32 = 8
	SortBlend0        float32 = 9
	SortBlend1        float32 = 10
	SortBlend2        float32 = 11
	SortBlend3        float32 = 12
	SortBlend6        float32 = 13
	SortStencilShadow float32 = 14
	SortAlmostNearest float32 = 15
	SortNearest       float32 = 16
)

// Shader is one registered shader.
type Shader struct {
	// Name identifies the shader in diagnostics.
	Name string
	// Index is the handle returned by Table.Register.
	Index int

	// Sort is the coarse sort class, one of the Sort* constants or a
	// value in between.
	Sort float32

	// State is the fixed-function state the backend needs for this shader.
	// Shaders with equal states share a Pipeline id.
	State PipelineState
	// Pipeline is the interned id of State, filled in by Register.
	Pipeline uint16

	// EntityMergable allows surfaces of different entities to be drawn in
	// one batch.
	EntityMergable bool
	// NumStages is the number of rendering passes of the shader.
	NumStages int
	// PortalRange is the distance beyond which a portal shader stops
	// rendering its view. Zero disables the range check.
	PortalRange float32
	IsSky       bool
	AlphaTest   bool
	// Greyscale is the desaturation applied to every surface of the shader.
	Greyscale float32

	// Program is optional WGSL source. Register validates it and folds the
	// compiled module into the pipeline id.
	Program string

	sortedIndex int
	sortedGen   uint64
}

// IsPortal reports whether surfaces of the shader trigger a portal view.
func (s *Shader) IsPortal() bool {
	return s.Sort == SortPortal
}

// IsOpaque reports whether surfaces of the shader draw before the
// depth-sorted transparent run.
func (s *Shader) IsOpaque() bool {
	return s.Sort <= SortOpaque
}

// CullMode returns the face culling mode.
func (s *Shader) CullMode() gputypes.CullMode {
	return s.State.CullMode
}

// PolygonOffset reports whether depth values are biased (decals).
func (s *Shader) PolygonOffset() bool {
	return s.State.PolygonOffset
}

// DepthEqual reports whether the shader only draws where depth matches
// exactly, as light passes over already-drawn geometry do.
func (s *Shader) DepthEqual() bool {
	return s.State.DepthCompare == gputypes.CompareFunctionEqual
}
