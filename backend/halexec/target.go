// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package halexec

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// target is the offscreen color and depth attachment pair.
type target struct {
	width, height uint32

	color     hal.Texture
	colorView hal.TextureView
	depth     hal.Texture
	depthView hal.TextureView
}

func newTarget(device hal.Device, width, height uint32) (*target, error) {
	t := &target{width: width, height: height}
	size := hal.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1}

	color, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         "rend_color",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        colorFormat,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return nil, fmt.Errorf("halexec: create color texture: %w", err)
	}
	t.color = color

	colorView, err := device.CreateTextureView(color, &hal.TextureViewDescriptor{Label: "rend_color_view"})
	if err != nil {
		t.destroy(device)
		return nil, fmt.Errorf("halexec: create color view: %w", err)
	}
	t.colorView = colorView

	depth, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         "rend_depth",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        depthFormat,
		Usage:         gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		t.destroy(device)
		return nil, fmt.Errorf("halexec: create depth texture: %w", err)
	}
	t.depth = depth

	depthView, err := device.CreateTextureView(depth, &hal.TextureViewDescriptor{Label: "rend_depth_view"})
	if err != nil {
		t.destroy(device)
		return nil, fmt.Errorf("halexec: create depth view: %w", err)
	}
	t.depthView = depthView
	return t, nil
}

// destroy releases views before textures. Safe on a partial target.
func (t *target) destroy(device hal.Device) {
	if t.depthView != nil {
		device.DestroyTextureView(t.depthView)
		t.depthView = nil
	}
	if t.depth != nil {
		device.DestroyTexture(t.depth)
		t.depth = nil
	}
	if t.colorView != nil {
		device.DestroyTextureView(t.colorView)
		t.colorView = nil
	}
	if t.color != nil {
		device.DestroyTexture(t.color)
		t.color = nil
	}
}
