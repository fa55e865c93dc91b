// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package trace

import (
	"image"
	"image/color"
	"math"

	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/rend/cmdstream"
)

func toNRGBA(c [4]float32) color.NRGBA {
	return color.NRGBA{R: unorm8(c[0]), G: unorm8(c[1]), B: unorm8(c[2]), A: unorm8(c[3])}
}

func unorm8(f float32) uint8 {
	switch {
	case f <= 0 || f != f:
		return 0
	case f >= 1:
		return 255
	}
	return uint8(f*255 + 0.5)
}

// masked runs draw on the canvas rectangle r and keeps only the channels
// enabled by the color mask.
func (e *Executor) masked(r image.Rectangle, draw func(dst *image.RGBA)) {
	r = r.Intersect(e.canvas.Bounds())
	if r.Empty() {
		return
	}
	if e.mask == [4]bool{true, true, true, true} {
		draw(e.canvas)
		return
	}
	scratch := image.NewRGBA(r)
	xdraw.Copy(scratch, r.Min, e.canvas, r, xdraw.Src, nil)
	draw(scratch)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			so := scratch.PixOffset(x, y)
			do := e.canvas.PixOffset(x, y)
			for c := 0; c < 4; c++ {
				if e.mask[c] {
					e.canvas.Pix[do+c] = scratch.Pix[so+c]
				}
			}
		}
	}
}

func (e *Executor) clearColor(rgba [4]float32) {
	c := toNRGBA(rgba)
	e.masked(e.canvas.Bounds(), func(dst *image.RGBA) {
		xdraw.Draw(dst, e.canvas.Bounds(), image.NewUniform(c), image.Point{}, xdraw.Src)
	})
}

func (e *Executor) stretchPic(p cmdstream.StretchPic) {
	dr := image.Rect(
		int(math.Floor(float64(p.X))), int(math.Floor(float64(p.Y))),
		int(math.Ceil(float64(p.X+p.W))), int(math.Ceil(float64(p.Y+p.H))),
	)
	src := e.image(p.Shader)
	e.masked(dr, func(dst *image.RGBA) {
		if src == nil {
			xdraw.Draw(dst, dr, image.NewUniform(e.color), image.Point{}, xdraw.Over)
			return
		}
		sb := src.Bounds()
		sx := func(s float32) int { return sb.Min.X + int(s*float32(sb.Dx())) }
		sy := func(t float32) int { return sb.Min.Y + int(t*float32(sb.Dy())) }
		sr := image.Rect(sx(p.S1), sy(p.T1), sx(p.S2), sy(p.T2))
		opts := &xdraw.Options{SrcMask: image.NewUniform(color.Alpha{A: e.color.A})}
		xdraw.ApproxBiLinear.Scale(dst, dr, src, sr, xdraw.Over, opts)
	})
}

// triangle fills a screen-space triangle with the current color,
// modulated by the shader image sampled at the interpolated texture
// coordinates.
func (e *Executor) triangle(t cmdstream.Triangle) {
	x0, y0 := t.XY[0][0], t.XY[0][1]
	x1, y1 := t.XY[1][0], t.XY[1][1]
	x2, y2 := t.XY[2][0], t.XY[2][1]
	area := edge(x0, y0, x1, y1, x2, y2)
	if area == 0 {
		return
	}
	bb := image.Rect(
		int(math.Floor(float64(min(x0, x1, x2)))), int(math.Floor(float64(min(y0, y1, y2)))),
		int(math.Ceil(float64(max(x0, x1, x2)))), int(math.Ceil(float64(max(y0, y1, y2)))),
	)
	src := e.image(t.Shader)
	e.masked(bb, func(dst *image.RGBA) {
		r := bb.Intersect(dst.Bounds())
		for y := r.Min.Y; y < r.Max.Y; y++ {
			py := float32(y) + 0.5
			for x := r.Min.X; x < r.Max.X; x++ {
				px := float32(x) + 0.5
				w0 := edge(x1, y1, x2, y2, px, py) / area
				w1 := edge(x2, y2, x0, y0, px, py) / area
				w2 := 1 - w0 - w1
				if w0 < 0 || w1 < 0 || w2 < 0 {
					continue
				}
				c := e.color
				if src != nil {
					s := w0*t.ST[0][0] + w1*t.ST[1][0] + w2*t.ST[2][0]
					tt := w0*t.ST[0][1] + w1*t.ST[1][1] + w2*t.ST[2][1]
					c = modulate(c, sample(src, s, tt))
				}
				blendOver(dst, x, y, c)
			}
		}
	})
}

// edge is twice the signed area of (a, b, p).
func edge(ax, ay, bx, by, px, py float32) float32 {
	return (bx-ax)*(py-ay) - (by-ay)*(px-ax)
}

func sample(img image.Image, s, t float32) color.NRGBA {
	b := img.Bounds()
	x := b.Min.X + clampInt(int(s*float32(b.Dx())), 0, b.Dx()-1)
	y := b.Min.Y + clampInt(int(t*float32(b.Dy())), 0, b.Dy()-1)
	return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

func modulate(a, b color.NRGBA) color.NRGBA {
	mul := func(x, y uint8) uint8 { return uint8((uint16(x)*uint16(y) + 127) / 255) }
	return color.NRGBA{R: mul(a.R, b.R), G: mul(a.G, b.G), B: mul(a.B, b.B), A: mul(a.A, b.A)}
}

// blendOver composites straight-alpha c over the premultiplied pixel.
func blendOver(dst *image.RGBA, x, y int, c color.NRGBA) {
	if c.A == 0 {
		return
	}
	o := dst.PixOffset(x, y)
	a := uint32(c.A)
	inv := 255 - a
	px := dst.Pix[o : o+4 : o+4]
	px[0] = uint8((uint32(c.R)*a + uint32(px[0])*inv + 127) / 255)
	px[1] = uint8((uint32(c.G)*a + uint32(px[1])*inv + 127) / 255)
	px[2] = uint8((uint32(c.B)*a + uint32(px[2])*inv + 127) / 255)
	px[3] = uint8((a*255 + uint32(px[3])*inv + 127) / 255)
}
