// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shader

import (
	"encoding/binary"
	"errors"
	"hash"
	"hash/fnv"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gputypes"
)

// ErrTooManyPipelines is returned when more distinct pipeline states are
// interned than a sort key can address.
var ErrTooManyPipelines = errors.New("shader: too many pipeline states")

// MaxPipelines is the number of distinct pipeline ids a sort key holds.
const MaxPipelines = 1 << 16

// PipelineState is the fixed-function state of a shader. It is the part of
// a render pipeline that changes between shaders; formats and sample
// counts belong to the backend.
type PipelineState struct {
	Topology     gputypes.PrimitiveTopology
	FrontFace    gputypes.FrontFace
	CullMode     gputypes.CullMode
	DepthWrite   bool
	DepthCompare gputypes.CompareFunction
	// PolygonOffset biases depth to keep decals above their surface.
	PolygonOffset bool
	// Blend is nil for opaque shaders.
	Blend *Blend
	// ProgramHash identifies the compiled program, zero for the fixed
	// function path.
	ProgramHash uint64
}

// Blend describes color and alpha blending.
type Blend struct {
	Color BlendComponent
	Alpha BlendComponent
}

// BlendComponent is one blend equation.
type BlendComponent struct {
	SrcFactor gputypes.BlendFactor
	DstFactor gputypes.BlendFactor
	Operation gputypes.BlendOperation
}

// OpaqueState returns the state of an ordinary depth-tested opaque shader.
func OpaqueState() PipelineState {
	return PipelineState{
		Topology:     gputypes.PrimitiveTopologyTriangleList,
		FrontFace:    gputypes.FrontFaceCCW,
		CullMode:     gputypes.CullModeBack,
		DepthWrite:   true,
		DepthCompare: gputypes.CompareFunctionLessEqual,
	}
}

// AlphaBlendState returns the state of a transparent shader blending with
// source alpha and not writing depth.
func AlphaBlendState() PipelineState {
	s := OpaqueState()
	s.CullMode = gputypes.CullModeNone
	s.DepthWrite = false
	s.Blend = &Blend{
		Color: BlendComponent{
			SrcFactor: gputypes.BlendFactorSrcAlpha,
			DstFactor: gputypes.BlendFactorOneMinusSrcAlpha,
			Operation: gputypes.BlendOperationAdd,
		},
		Alpha: BlendComponent{
			SrcFactor: gputypes.BlendFactorOne,
			DstFactor: gputypes.BlendFactorZero,
			Operation: gputypes.BlendOperationAdd,
		},
	}
	return s
}

// Hash computes an FNV-1a hash of the state.
func (s *PipelineState) Hash() uint64 {
	h := fnv.New64a()

	hashWriteUint32(h, uint32(s.Topology))
	hashWriteUint32(h, uint32(s.FrontFace))
	hashWriteUint32(h, uint32(s.CullMode))

	hashWriteBool(h, s.DepthWrite)
	hashWriteUint32(h, uint32(s.DepthCompare))
	hashWriteBool(h, s.PolygonOffset)

	if s.Blend != nil {
		hashWriteBool(h, true)
		hashWriteUint32(h, uint32(s.Blend.Color.SrcFactor))
		hashWriteUint32(h, uint32(s.Blend.Color.DstFactor))
		hashWriteUint32(h, uint32(s.Blend.Color.Operation))
		hashWriteUint32(h, uint32(s.Blend.Alpha.SrcFactor))
		hashWriteUint32(h, uint32(s.Blend.Alpha.DstFactor))
		hashWriteUint32(h, uint32(s.Blend.Alpha.Operation))
	} else {
		hashWriteBool(h, false)
	}

	hashWriteUint64(h, s.ProgramHash)
	return h.Sum64()
}

// Pipelines interns pipeline states into dense ids. Equal states get the
// same id; ids are assigned in first-seen order starting at zero.
//
// Pipelines is safe for concurrent use. Lookups take a read lock and only
// new states take the write lock.
type Pipelines struct {
	mu     sync.RWMutex
	ids    map[uint64]uint16
	states []PipelineState

	hits   uint64
	misses uint64
}

// NewPipelines creates an empty interner.
func NewPipelines() *Pipelines {
	return &Pipelines{ids: make(map[uint64]uint16)}
}

// Intern returns the id of state, assigning the next id on first sight.
func (p *Pipelines) Intern(state PipelineState) (uint16, error) {
	key := state.Hash()

	p.mu.RLock()
	if id, ok := p.ids[key]; ok {
		p.mu.RUnlock()
		atomic.AddUint64(&p.hits, 1)
		return id, nil
	}
	p.mu.RUnlock()

	p.mu.Lock()
	defer p.mu.Unlock()

	if id, ok := p.ids[key]; ok {
		atomic.AddUint64(&p.hits, 1)
		return id, nil
	}
	if len(p.states) >= MaxPipelines {
		return 0, ErrTooManyPipelines
	}

	//nolint:gosec // G115: bounded by MaxPipelines above
	id := uint16(len(p.states))
	p.ids[key] = id
	p.states = append(p.states, state)
	atomic.AddUint64(&p.misses, 1)
	return id, nil
}

// State returns the state interned as id.
func (p *Pipelines) State(id uint16) (PipelineState, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if int(id) >= len(p.states) {
		return PipelineState{}, false
	}
	return p.states[id], true
}

// Len returns the number of interned states.
func (p *Pipelines) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.states)
}

// Stats returns lookup hits and misses.
func (p *Pipelines) Stats() (hits, misses uint64) {
	return atomic.LoadUint64(&p.hits), atomic.LoadUint64(&p.misses)
}

func hashWriteUint32(h hash.Hash64, v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, _ = h.Write(buf[:])
}

func hashWriteUint64(h hash.Hash64, v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	_, _ = h.Write(buf[:])
}

func hashWriteBool(h hash.Hash64, v bool) {
	if v {
		_, _ = h.Write([]byte{1})
	} else {
		_, _ = h.Write([]byte{0})
	}
}
