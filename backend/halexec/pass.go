// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package halexec

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rend/cmdstream"
	"github.com/gogpu/rend/frame"
	"github.com/gogpu/rend/view"
)

// frameState is the executor state of one Execute call.
type frameState struct {
	e *Executor
	f *frame.Frame

	color [4]float32
	mask  gputypes.ColorWriteMask
	// clear is a pending clear color for the next pass.
	clear   *[4]float32
	cleared bool

	encoder hal.CommandEncoder
	buffers []hal.Buffer
	overlay []float32
}

func newFrameState(e *Executor, f *frame.Frame) *frameState {
	return &frameState{
		e:     e,
		f:     f,
		color: [4]float32{1, 1, 1, 1},
		mask:  gputypes.ColorWriteMaskAll,
	}
}

func (fs *frameState) begin() error {
	if fs.encoder != nil {
		return nil
	}
	encoder, err := fs.e.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "rend_frame_encoder",
	})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("rend_frame"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}
	fs.encoder = encoder
	return nil
}

// upload creates a vertex buffer holding v. Buffers live until submit.
func (fs *frameState) upload(label string, v []float32) (hal.Buffer, error) {
	data := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(data[i*4:], math.Float32bits(f))
	}
	buf, err := fs.e.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	fs.e.queue.WriteBuffer(buf, 0, data)
	fs.buffers = append(fs.buffers, buf)
	return buf, nil
}

// passDescriptor describes a pass over the target. The color attachment
// is cleared on the frame's first pass and after a clear-color record.
func (fs *frameState) passDescriptor(label string) *hal.RenderPassDescriptor {
	t := fs.e.target
	color := hal.RenderPassColorAttachment{
		View:    t.colorView,
		LoadOp:  gputypes.LoadOpLoad,
		StoreOp: gputypes.StoreOpStore,
	}
	if fs.clear != nil || !fs.cleared {
		var c [4]float32
		if fs.clear != nil {
			c = *fs.clear
		}
		color.LoadOp = gputypes.LoadOpClear
		color.ClearValue = gputypes.Color{R: float64(c[0]), G: float64(c[1]), B: float64(c[2]), A: float64(c[3])}
		fs.clear = nil
		fs.cleared = true
	}
	return &hal.RenderPassDescriptor{
		Label:            label,
		ColorAttachments: []hal.RenderPassColorAttachment{color},
		DepthStencilAttachment: &hal.RenderPassDepthStencilAttachment{
			View:              t.depthView,
			DepthLoadOp:       gputypes.LoadOpClear,
			DepthStoreOp:      gputypes.StoreOpStore,
			DepthClearValue:   1.0,
			StencilLoadOp:     gputypes.LoadOpClear,
			StencilStoreOp:    gputypes.StoreOpDiscard,
			StencilClearValue: 0,
		},
	}
}

// drawView encodes one draw-surfaces record as a render pass.
func (fs *frameState) drawView(r cmdstream.DrawSurfs) error {
	f := fs.f
	if r.First < 0 || r.Count < 0 || r.First+r.Count > len(f.DrawSurfs) || r.Transp > r.Count {
		return fmt.Errorf("%w: surfaces [%d, %d+%d) of %d", ErrRange, r.First, r.First, r.Count, len(f.DrawSurfs))
	}
	if err := fs.flushOverlay(); err != nil {
		return err
	}

	var verts []float32
	var batches []batch
	for i := r.First; i < r.First+r.Count; i++ {
		ds := &f.DrawSurfs[i]
		sh := fs.e.shaders.Get(ds.Shader)
		if sh == nil {
			fs.e.stats.Skipped++
			continue
		}
		start := vertexCount(verts)
		var ok bool
		verts, ok = appendSurface(verts, &r.View, f, ds, surfaceColor(sh))
		if !ok {
			fs.e.stats.Skipped++
			continue
		}
		fs.e.stats.Surfaces++
		n := vertexCount(verts) - start
		if n == 0 {
			continue
		}
		key := pipelineKey{id: sh.Pipeline, mask: fs.mask}
		if last := len(batches) - 1; last >= 0 && batches[last].key == key {
			batches[last].count += n
			continue
		}
		batches = append(batches, batch{key: key, first: start, count: n})
	}

	if err := fs.begin(); err != nil {
		return err
	}
	var buf hal.Buffer
	if len(verts) > 0 {
		var err error
		if buf, err = fs.upload("rend_view_vertices", verts); err != nil {
			return err
		}
	}

	rp := fs.encoder.BeginRenderPass(fs.passDescriptor("rend_view_pass"))
	if x, y, w, h, ok := fs.viewport(r.View.Viewport); ok {
		rp.SetViewport(x, y, w, h, 0, 1)
	}
	for _, b := range batches {
		p, err := fs.e.pipeline(b.key)
		if err != nil {
			rp.End()
			return err
		}
		rp.SetPipeline(p)
		rp.SetVertexBuffer(0, buf, 0)
		rp.Draw(b.count, 1, b.first, 0)
		fs.e.stats.DrawCalls++
	}
	rp.End()
	fs.e.stats.Passes++
	return nil
}

// viewport converts a bottom-up view rectangle to a top-down one clamped
// to the target.
func (fs *frameState) viewport(vp view.Viewport) (x, y, w, h float32, ok bool) {
	if vp.Empty() {
		return 0, 0, 0, 0, false
	}
	tw, th := int(fs.e.target.width), int(fs.e.target.height)
	x0 := max(vp.X, 0)
	x1 := min(vp.X+vp.Width, tw)
	y0 := max(th-(vp.Y+vp.Height), 0)
	y1 := min(th-vp.Y, th)
	if x1 <= x0 || y1 <= y0 {
		return 0, 0, 0, 0, false
	}
	return float32(x0), float32(y0), float32(x1 - x0), float32(y1 - y0), true
}

func (fs *frameState) stretchPic(p cmdstream.StretchPic) {
	w, h := fs.e.target.width, fs.e.target.height
	x0, y0, x1, y1 := p.X, p.Y, p.X+p.W, p.Y+p.H
	for _, v := range [6][2]float32{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y0}, {x1, y1}, {x0, y1}} {
		fs.overlay = appendVertex(fs.overlay, screenToClip(v[0], v[1], w, h), fs.color)
	}
}

func (fs *frameState) triangle(t cmdstream.Triangle) {
	w, h := fs.e.target.width, fs.e.target.height
	for _, v := range t.XY {
		fs.overlay = appendVertex(fs.overlay, screenToClip(v[0], v[1], w, h), fs.color)
	}
}

// flushOverlay draws pending 2D primitives in one pass.
func (fs *frameState) flushOverlay() error {
	if len(fs.overlay) == 0 {
		return nil
	}
	verts := fs.overlay
	fs.overlay = nil

	if err := fs.begin(); err != nil {
		return err
	}
	buf, err := fs.upload("rend_overlay_vertices", verts)
	if err != nil {
		return err
	}
	p, err := fs.e.pipeline(pipelineKey{mask: fs.mask, overlay: true})
	if err != nil {
		return err
	}
	rp := fs.encoder.BeginRenderPass(fs.passDescriptor("rend_overlay_pass"))
	rp.SetPipeline(p)
	rp.SetVertexBuffer(0, buf, 0)
	rp.Draw(vertexCount(verts), 1, 0, 0)
	rp.End()
	fs.e.stats.Passes++
	fs.e.stats.DrawCalls++
	return nil
}

// submit flushes pending work, submits the encoder and waits for it.
func (fs *frameState) submit() error {
	if err := fs.flushOverlay(); err != nil {
		return err
	}
	if fs.clear != nil {
		// a clear with nothing drawn after it still has to happen
		if err := fs.begin(); err != nil {
			return err
		}
		fs.encoder.BeginRenderPass(fs.passDescriptor("rend_clear_pass")).End()
		fs.e.stats.Passes++
	}
	if fs.encoder == nil {
		return nil
	}

	e := fs.e
	cmdBuf, err := fs.encoder.EndEncoding()
	fs.encoder = nil
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer e.device.FreeCommandBuffer(cmdBuf)

	fence, err := e.device.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer e.device.DestroyFence(fence)

	if err := e.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	ok, err := e.device.Wait(fence, 1, e.timeout)
	if err != nil {
		return fmt.Errorf("wait for GPU: %w", err)
	}
	if !ok {
		return ErrTimeout
	}
	fs.releaseBuffers()
	return nil
}

func (fs *frameState) releaseBuffers() {
	for _, b := range fs.buffers {
		fs.e.device.DestroyBuffer(b)
	}
	fs.buffers = fs.buffers[:0]
}

// release drops an unsubmitted encoder after an error.
func (fs *frameState) release() {
	if fs.encoder != nil {
		fs.encoder.DiscardEncoding()
		fs.encoder = nil
	}
	fs.releaseBuffers()
}
