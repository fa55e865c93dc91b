// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package halexec

import (
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/rend/backend/trace"
	"github.com/gogpu/rend/cmdstream"
)

// readback submits pending work and copies the color target to memory.
func (fs *frameState) readback() (*image.RGBA, error) {
	if err := fs.submit(); err != nil {
		return nil, err
	}
	e := fs.e
	t := e.target
	w, h := t.width, t.height
	rowBytes := w * 4
	// copy rows are 256-byte aligned
	stride := (rowBytes + 255) &^ 255
	size := uint64(stride) * uint64(h)

	staging, err := e.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "rend_readback",
		Size:  size,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create readback buffer: %w", err)
	}
	defer e.device.DestroyBuffer(staging)

	if err := fs.begin(); err != nil {
		return nil, err
	}
	fs.encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: t.color,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})
	fs.encoder.CopyTextureToBuffer(t.color, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: stride, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: t.color, MipLevel: 0},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})
	fs.encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: t.color,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})
	if err := fs.submit(); err != nil {
		return nil, err
	}

	raw := make([]byte, size)
	if err := e.queue.ReadBuffer(staging, 0, raw); err != nil {
		return nil, fmt.Errorf("readback: %w", err)
	}
	img := image.NewRGBA(image.Rect(0, 0, int(w), int(h)))
	for y := 0; y < int(h); y++ {
		copy(img.Pix[y*img.Stride:y*img.Stride+int(rowBytes)], raw[y*int(stride):])
	}
	return img, nil
}

func (fs *frameState) screenshot(frameNum uint32, r cmdstream.Screenshot) error {
	img, err := fs.readback()
	if err != nil {
		return err
	}
	if rect := image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height); !rect.Empty() {
		//nolint:errcheck // SubImage of *image.RGBA is always *image.RGBA
		img = img.SubImage(rect.Intersect(img.Bounds())).(*image.RGBA)
	}
	name := r.Name
	if name == "" {
		name = fmt.Sprintf("shot%04d.%s", frameNum, r.Format)
	}
	return fs.capture(name, img, r.Format)
}

func (fs *frameState) videoFrame(r cmdstream.VideoFrame) error {
	img, err := fs.readback()
	if err != nil {
		return err
	}
	if r.Width > 0 && r.Height > 0 && (r.Width != img.Bounds().Dx() || r.Height != img.Bounds().Dy()) {
		scaled := image.NewRGBA(image.Rect(0, 0, r.Width, r.Height))
		xdraw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), img, img.Bounds(), xdraw.Src, nil)
		img = scaled
	}
	name := fmt.Sprintf("video%06d.%s", fs.e.videoFrames, r.Format)
	fs.e.videoFrames++
	return fs.capture(name, img, r.Format)
}

func (fs *frameState) capture(name string, img *image.RGBA, format cmdstream.ImageFormat) error {
	e := fs.e
	e.stats.Captures++
	if e.output == nil {
		e.log.Debug("halexec: capture dropped, no output", "name", name)
		return nil
	}
	data, err := trace.Encode(img, format)
	if err != nil {
		return err
	}
	if err := e.output(name, data); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
