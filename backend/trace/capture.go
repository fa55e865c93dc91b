// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package trace

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/gogpu/rend/cmdstream"
)

// Encode writes img in the given capture format. FormatRaw is the
// tightly packed RGBA8 pixels of img.
func Encode(img *image.RGBA, format cmdstream.ImageFormat) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch format {
	case cmdstream.FormatPNG:
		err = png.Encode(&buf, img)
	case cmdstream.FormatBMP:
		err = bmp.Encode(&buf, img)
	case cmdstream.FormatTIFF:
		err = tiff.Encode(&buf, img, &tiff.Options{Compression: tiff.Deflate})
	case cmdstream.FormatRaw:
		return packRGBA(img), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrFormat, uint32(format))
	}
	if err != nil {
		return nil, fmt.Errorf("trace: encode %v: %w", format, err)
	}
	return buf.Bytes(), nil
}

func packRGBA(img *image.RGBA) []byte {
	b := img.Bounds()
	row := b.Dx() * 4
	out := make([]byte, 0, row*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		off := img.PixOffset(b.Min.X, y)
		out = append(out, img.Pix[off:off+row]...)
	}
	return out
}

// crop copies the rectangle r of the canvas, clipped to its bounds. An
// empty r selects the whole canvas.
func crop(canvas *image.RGBA, r image.Rectangle) *image.RGBA {
	if r.Empty() {
		r = canvas.Bounds()
	}
	r = r.Intersect(canvas.Bounds())
	out := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	xdraw.Copy(out, image.Point{}, canvas, r, xdraw.Src, nil)
	return out
}

// resize scales the canvas to w x h, or copies it when the size matches.
func resize(canvas *image.RGBA, w, h int) *image.RGBA {
	b := canvas.Bounds()
	if w <= 0 || h <= 0 || (w == b.Dx() && h == b.Dy()) {
		return crop(canvas, image.Rectangle{})
	}
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(out, out.Bounds(), canvas, b, xdraw.Src, nil)
	return out
}

func (e *Executor) screenshot(rec *Record, r cmdstream.Screenshot) error {
	img := crop(e.canvas, image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height))
	name := r.Name
	if name == "" {
		name = fmt.Sprintf("shot%04d.%s", rec.Frame, r.Format)
	}
	return e.capture(rec, name, img, r.Format)
}

func (e *Executor) videoFrame(rec *Record, r cmdstream.VideoFrame) error {
	img := resize(e.canvas, r.Width, r.Height)
	name := fmt.Sprintf("video%06d.%s", e.videoFrames, r.Format)
	e.videoFrames++
	return e.capture(rec, name, img, r.Format)
}

func (e *Executor) capture(rec *Record, name string, img *image.RGBA, format cmdstream.ImageFormat) error {
	data, err := Encode(img, format)
	if err != nil {
		return err
	}
	rec.Captures = append(rec.Captures, name)
	if e.output == nil {
		e.lastName, e.lastData = name, data
		return nil
	}
	if err := e.output(name, data); err != nil {
		return fmt.Errorf("trace: write %s: %w", name, err)
	}
	return nil
}
