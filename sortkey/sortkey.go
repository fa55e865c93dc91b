// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package sortkey packs draw-surface ordering criteria into integers whose
// unsigned order is the draw order.
//
// Draw surface keys are 64 bits, of which the low 45 are used. From least
// to most significant:
//
//	bits  0-9   entity index
//	bits 10-23  shader sorted index
//	bit  24     static flag (0 = batched static geometry)
//	bits 25-40  pipeline id
//	bit  41     sky flag (0 = sky)
//	bit  42     alpha-test flag (1 = alpha tested)
//	bit  43     opaque flag (0 = opaque)
//	bit  44     portal flag (0 = portal)
//
// Higher fields dominate, so portals draw first, then opaque surfaces
// before blended ones, and within a class surfaces group by pipeline,
// shader and entity for batching.
//
// Lit surface keys are 32 bits:
//
//	bits  0-9   entity index
//	bits 10-23  shader sorted index
//	bit  24     static flag
//	bits 25-26  cull mode
//	bit  27     polygon offset
//	bit  28     depth-equal test
package sortkey

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/rend/shader"
)

// Range errors. Composing a key from an out-of-range index is a
// programmer error and panics with one of these wrapped.
var (
	ErrEntityRange = errors.New("sortkey: entity index out of range")
	ErrShaderRange = errors.New("sortkey: shader index out of range")
)

// Field widths and shifts of the draw surface key.
const (
	EntityBits   = 10
	ShaderBits   = 14
	PipelineBits = 16

	EntityShift    = 0
	ShaderShift    = EntityShift + EntityBits
	StaticShift    = ShaderShift + ShaderBits
	PipelineShift  = StaticShift + 1
	SkyShift       = PipelineShift + PipelineBits
	AlphaTestShift = SkyShift + 1
	OpaqueShift    = AlphaTestShift + 1
	PortalShift    = OpaqueShift + 1

	// KeyBits is the number of meaningful bits in a draw surface key.
	KeyBits = PortalShift + 1

	MaxEntities = 1 << EntityBits
	MaxShaders  = 1 << ShaderBits

	entityMask = MaxEntities - 1
	shaderMask = MaxShaders - 1
)

// Lit surface key layout.
const (
	litStaticShift = ShaderShift + ShaderBits
	litCullShift   = litStaticShift + 1
	litOffsetShift = litCullShift + 2
	litEqualShift  = litOffsetShift + 1
)

// Key is the unpacked form of a draw surface key.
type Key struct {
	Portal    bool
	Blend     bool
	AlphaTest bool
	Sky       bool
	Static    bool
	Pipeline  uint16
	Shader    int
	Entity    int
}

// Pack returns the ordered integer form of k. It panics when Entity or
// Shader does not fit its field.
func (k Key) Pack() uint64 {
	checkRange(k.Entity, k.Shader)

	key := uint64(k.Entity)<<EntityShift |
		uint64(k.Shader)<<ShaderShift |
		uint64(k.Pipeline)<<PipelineShift
	if !k.Static {
		key |= 1 << StaticShift
	}
	if !k.Sky {
		key |= 1 << SkyShift
	}
	if k.AlphaTest {
		key |= 1 << AlphaTestShift
	}
	if k.Blend {
		key |= 1 << OpaqueShift
	}
	if !k.Portal {
		key |= 1 << PortalShift
	}
	return key
}

// Unpack is the inverse of Pack.
func Unpack(key uint64) Key {
	return Key{
		Portal:    key&(1<<PortalShift) == 0,
		Blend:     key&(1<<OpaqueShift) != 0,
		AlphaTest: key&(1<<AlphaTestShift) != 0,
		Sky:       key&(1<<SkyShift) == 0,
		Static:    key&(1<<StaticShift) == 0,
		Pipeline:  uint16(key >> PipelineShift),
		Shader:    int(key>>ShaderShift) & shaderMask,
		Entity:    int(key>>EntityShift) & entityMask,
	}
}

// Indexer hands out per-frame shader sorted indices. *shader.Table
// implements it.
type Indexer interface {
	SortedIndex(sh *shader.Shader) int
}

// Compose builds the key of a surface of sh drawn for entity. The shader's
// sorted index is taken from ix, assigning one on first use this frame.
func Compose(ix Indexer, entity int, sh *shader.Shader, static bool) uint64 {
	return Key{
		Portal:    sh.IsPortal(),
		Blend:     !sh.IsOpaque(),
		AlphaTest: sh.AlphaTest,
		Sky:       sh.IsSky,
		Static:    static,
		Pipeline:  sh.Pipeline,
		Shader:    ix.SortedIndex(sh),
		Entity:    entity,
	}.Pack()
}

// Decompose returns the entity index and shader sorted index of key.
func Decompose(key uint64) (entity, shaderSorted int) {
	return int(key>>EntityShift) & entityMask, int(key>>ShaderShift) & shaderMask
}

// ComposeLit builds the key of a lit surface.
func ComposeLit(ix Indexer, entity int, sh *shader.Shader, static bool) uint32 {
	sorted := ix.SortedIndex(sh)
	checkRange(entity, sorted)

	//nolint:gosec // G115: both indices are range checked above
	key := uint32(entity)<<EntityShift | uint32(sorted)<<ShaderShift
	if !static {
		key |= 1 << litStaticShift
	}
	key |= cullBits(sh.CullMode()) << litCullShift
	if sh.PolygonOffset() {
		key |= 1 << litOffsetShift
	}
	if sh.DepthEqual() {
		key |= 1 << litEqualShift
	}
	return key
}

// DecomposeLit returns the entity index and shader sorted index of a lit
// surface key.
func DecomposeLit(key uint32) (entity, shaderSorted int) {
	return int(key>>EntityShift) & entityMask, int(key>>ShaderShift) & shaderMask
}

// LitCullMode returns the cull mode stored in a lit surface key.
func LitCullMode(key uint32) gputypes.CullMode {
	switch (key >> litCullShift) & 3 {
	case 1:
		return gputypes.CullModeFront
	case 2:
		return gputypes.CullModeBack
	}
	return gputypes.CullModeNone
}

func cullBits(m gputypes.CullMode) uint32 {
	switch m {
	case gputypes.CullModeFront:
		return 1
	case gputypes.CullModeBack:
		return 2
	}
	return 0
}

func checkRange(entity, shaderSorted int) {
	if entity < 0 || entity >= MaxEntities {
		panic(fmt.Errorf("%w: %d", ErrEntityRange, entity))
	}
	if shaderSorted < 0 || shaderSorted >= MaxShaders {
		panic(fmt.Errorf("%w: %d", ErrShaderRange, shaderSorted))
	}
}
