// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cmdstream

import "github.com/gogpu/rend/view"

// ImageFormat selects the encoding of captured frames.
type ImageFormat uint32

// Capture formats.
const (
	FormatPNG ImageFormat = iota
	FormatBMP
	FormatTIFF
	// FormatRaw is tightly packed RGBA8 without a container.
	FormatRaw
)

func (f ImageFormat) String() string {
	switch f {
	case FormatPNG:
		return "png"
	case FormatBMP:
		return "bmp"
	case FormatTIFF:
		return "tiff"
	case FormatRaw:
		return "raw"
	}
	return "unknown"
}

// FrameBegin is the payload of TagFrameBegin.
type FrameBegin struct {
	Frame  uint32
	Buffer uint32
}

// DrawSurfs is the payload of TagDrawSurfs. First and Count select a run
// of the frame's draw surface arena; the last Transp surfaces of the run
// are transparent and already depth sorted. LightFirst and LightCount
// select the view's lights in the frame's view light arena.
//
// Only the camera fields of View travel in the stream: Or.Origin, Or.Axis,
// World.ModelView, ProjectionMatrix, Viewport, FovX, FovY, ZNear, ZFar,
// IsPortal, IsMirror, PortalPlane, FrameSceneNum and ViewCount.
type DrawSurfs struct {
	View    view.Parms
	NoWorld bool
	// Time is the scene time in milliseconds.
	Time int32

	First, Count, Transp   int
	LightFirst, LightCount int
}

// StretchPic is the payload of TagStretchPic.
type StretchPic struct {
	Shader         int
	X, Y, W, H     float32
	S1, T1, S2, T2 float32
}

// Triangle is the payload of TagTriangle.
type Triangle struct {
	Shader int
	XY     [3][2]float32
	ST     [3][2]float32
}

// Screenshot is the payload of TagScreenshot.
type Screenshot struct {
	X, Y          int
	Width, Height int
	Format        ImageFormat
	Name          string
}

// VideoFrame is the payload of TagVideoFrame.
type VideoFrame struct {
	Width, Height int
	Format        ImageFormat
}

// view record flags
const (
	viewPortal = 1 << iota
	viewMirror
	viewNoWorld
)

// viewWords is the size of a serialized view: origin, axes, world
// matrix, projection, viewport, fov, near/far, flags, portal plane,
// scene number and view count.
const viewWords = 3 + 9 + 16 + 16 + 4 + 2 + 2 + 1 + 4 + 1 + 1
