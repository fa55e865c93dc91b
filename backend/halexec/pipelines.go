// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package halexec

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rend/shader"
)

const (
	colorFormat = gputypes.TextureFormatRGBA8Unorm
	depthFormat = gputypes.TextureFormatDepth24PlusStencil8

	// vertexStride is vec4 position + vec4 color.
	vertexStride = 32
	vertexFloats = vertexStride / 4
)

// pipelineKey selects a compiled pipeline. Shaders that intern to the same
// pipeline id share it; the color mask is dynamic state in the stream but
// pipeline state on the device.
type pipelineKey struct {
	id   uint16
	mask gputypes.ColorWriteMask
	// overlay marks the 2D pipeline, which ignores id.
	overlay bool
}

func vertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{{
		ArrayStride: vertexStride,
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes: []gputypes.VertexAttribute{
			{Format: gputypes.VertexFormatFloat32x4, Offset: 0, ShaderLocation: 0},
			{Format: gputypes.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 1},
		},
	}}
}

// overlayState is the state of stretch pics and triangles: blended, no
// culling, depth ignored.
func overlayState() shader.PipelineState {
	s := shader.AlphaBlendState()
	s.DepthCompare = gputypes.CompareFunctionAlways
	return s
}

// pipeline returns the cached pipeline for k, creating it on first use.
func (e *Executor) pipeline(k pipelineKey) (hal.RenderPipeline, error) {
	if p, ok := e.pipelines[k]; ok {
		return p, nil
	}

	var st shader.PipelineState
	label := "rend_overlay_pipeline"
	if k.overlay {
		st = overlayState()
	} else {
		var ok bool
		if st, ok = e.shaders.Pipelines().State(k.id); !ok {
			return nil, fmt.Errorf("%w: %d", ErrPipeline, k.id)
		}
		label = fmt.Sprintf("rend_surface_pipeline_%d", k.id)
	}

	p, err := e.createPipeline(label, &st, k.mask)
	if err != nil {
		return nil, err
	}
	e.pipelines[k] = p
	e.log.Debug("halexec: pipeline created", "label", label, "mask", k.mask)
	return p, nil
}

func (e *Executor) createPipeline(label string, st *shader.PipelineState, mask gputypes.ColorWriteMask) (hal.RenderPipeline, error) {
	target := gputypes.ColorTargetState{
		Format:    colorFormat,
		WriteMask: mask,
	}
	if st.Blend != nil {
		b := blendState(st.Blend)
		target.Blend = &b
	}

	keep := hal.StencilFaceState{
		Compare:     gputypes.CompareFunctionAlways,
		FailOp:      hal.StencilOperationKeep,
		DepthFailOp: hal.StencilOperationKeep,
		PassOp:      hal.StencilOperationKeep,
	}
	p, err := e.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  label,
		Layout: e.layout,
		Vertex: hal.VertexState{
			Module:     e.module,
			EntryPoint: "vs_main",
			Buffers:    vertexLayout(),
		},
		Fragment: &hal.FragmentState{
			Module:     e.module,
			EntryPoint: "fs_main",
			Targets:    []gputypes.ColorTargetState{target},
		},
		DepthStencil: &hal.DepthStencilState{
			Format:            depthFormat,
			DepthWriteEnabled: st.DepthWrite,
			DepthCompare:      st.DepthCompare,
			StencilFront:      keep,
			StencilBack:       keep,
		},
		Primitive: gputypes.PrimitiveState{
			Topology:  st.Topology,
			FrontFace: st.FrontFace,
			CullMode:  st.CullMode,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("halexec: create %s: %w", label, err)
	}
	return p, nil
}

func blendState(b *shader.Blend) gputypes.BlendState {
	s := gputypes.BlendStatePremultiplied()
	s.Color.SrcFactor = b.Color.SrcFactor
	s.Color.DstFactor = b.Color.DstFactor
	s.Color.Operation = b.Color.Operation
	s.Alpha.SrcFactor = b.Alpha.SrcFactor
	s.Alpha.DstFactor = b.Alpha.DstFactor
	s.Alpha.Operation = b.Alpha.Operation
	return s
}

func writeMask(m [4]bool) gputypes.ColorWriteMask {
	var w gputypes.ColorWriteMask
	if m[0] {
		w |= gputypes.ColorWriteMaskRed
	}
	if m[1] {
		w |= gputypes.ColorWriteMaskGreen
	}
	if m[2] {
		w |= gputypes.ColorWriteMaskBlue
	}
	if m[3] {
		w |= gputypes.ColorWriteMaskAlpha
	}
	return w
}

func (e *Executor) destroyPipelines() {
	for k, p := range e.pipelines {
		e.device.DestroyRenderPipeline(p)
		delete(e.pipelines, k)
	}
}
