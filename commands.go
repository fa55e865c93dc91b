// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rend

import "github.com/gogpu/rend/cmdstream"

// ImageFormat selects the encoding of captured frames.
type ImageFormat = cmdstream.ImageFormat

// Capture formats.
const (
	FormatPNG  = cmdstream.FormatPNG
	FormatBMP  = cmdstream.FormatBMP
	FormatTIFF = cmdstream.FormatTIFF
	FormatRaw  = cmdstream.FormatRaw
)

// SetColor sets the color of following stretch pics and triangles.
func (r *Renderer) SetColor(rgba [4]float32) {
	if !r.checkFrame("set color") || rgba == r.color {
		return
	}
	r.color = rgba
	r.record(r.cur.stream.WriteSetColor(rgba))
}

// checkShader validates a 2D shader handle.
func (r *Renderer) checkShader(op string, shader int) {
	if r.shaders.Get(shader) == nil {
		r.fatal(op, shader, ErrBadShader)
	}
}

// DrawStretchPic draws the (s1,t1)-(s2,t2) region of a shader's image
// into the screen rectangle at x, y.
func (r *Renderer) DrawStretchPic(x, y, w, h, s1, t1, s2, t2 float32, shader int) {
	if !r.checkFrame("stretch pic") {
		return
	}
	r.checkShader("stretch pic", shader)
	r.record(r.cur.stream.WriteStretchPic(cmdstream.StretchPic{
		Shader: shader,
		X:      x, Y: y, W: w, H: h,
		S1: s1, T1: t1, S2: s2, T2: t2,
	}))
}

// DrawTriangle draws a screen-space triangle with texture coordinates.
func (r *Renderer) DrawTriangle(xy, st [3][2]float32, shader int) {
	if !r.checkFrame("triangle") {
		return
	}
	r.checkShader("triangle", shader)
	r.record(r.cur.stream.WriteTriangle(cmdstream.Triangle{Shader: shader, XY: xy, ST: st}))
}

// TakeScreenshot captures a window rectangle once everything before it
// has been drawn. An empty rectangle captures the whole target; an empty
// name lets the executor pick one.
func (r *Renderer) TakeScreenshot(x, y, width, height int, format ImageFormat, name string) {
	if !r.checkFrame("screenshot") {
		return
	}
	r.record(r.cur.stream.WriteScreenshot(cmdstream.Screenshot{
		X: x, Y: y, Width: width, Height: height,
		Format: format,
		Name:   name,
	}))
}

// TakeVideoFrame captures the target scaled to width x height.
func (r *Renderer) TakeVideoFrame(width, height int, format ImageFormat) {
	if !r.checkFrame("video frame") {
		return
	}
	r.record(r.cur.stream.WriteVideoFrame(cmdstream.VideoFrame{Width: width, Height: height, Format: format}))
}

// ClearDepth clears the depth buffer before the following records.
func (r *Renderer) ClearDepth() {
	if !r.checkFrame("clear depth") {
		return
	}
	r.record(r.cur.stream.WriteClearDepth())
}

// ClearColor clears the color target.
func (r *Renderer) ClearColor(rgba [4]float32) {
	if !r.checkFrame("clear color") {
		return
	}
	r.record(r.cur.stream.WriteClearColor(rgba))
}

// ColorMask enables or disables writes to each color channel.
func (r *Renderer) ColorMask(red, green, blue, alpha bool) {
	if !r.checkFrame("color mask") {
		return
	}
	r.record(r.cur.stream.WriteColorMask([4]bool{red, green, blue, alpha}))
}
