// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cmdstream

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/gogpu/rend/view"
)

// Decoder errors.
var (
	// ErrTruncated means the buffer ended inside a record or before the
	// end-of-list tag.
	ErrTruncated = errors.New("cmdstream: truncated stream")

	// ErrUnknownTag means a record starts with a tag outside the
	// enumeration.
	ErrUnknownTag = errors.New("cmdstream: unknown tag")

	// ErrWrongRecord means a payload reader was called for a record of a
	// different tag.
	ErrWrongRecord = errors.New("cmdstream: payload read for wrong record")
)

// Decoder reads a stream record by record.
//
// Example usage:
//
//	dec := cmdstream.NewDecoder(stream.Bytes())
//	for dec.Next() {
//	    switch dec.Tag() {
//	    case cmdstream.TagDrawSurfs:
//	        ds := dec.DrawSurfs()
//	        // draw ds.Count surfaces starting at ds.First
//	    case cmdstream.TagSwapBuffers:
//	        dec.SwapBuffers()
//	    }
//	}
//	if err := dec.Err(); err != nil {
//	    // malformed stream
//	}
//
// Payloads that are not read are skipped by the next call to Next.
type Decoder struct {
	buf []byte

	// pos is the read cursor, end the offset just past the current record.
	pos int
	end int

	tag      Tag
	consumed bool
	ended    bool
	err      error
}

// NewDecoder creates a decoder over buf.
func NewDecoder(buf []byte) *Decoder {
	return &Decoder{buf: buf}
}

// Reset restarts decoding over buf.
func (d *Decoder) Reset(buf []byte) {
	*d = Decoder{buf: buf}
}

// Next advances to the next record. It returns false at the end-of-list
// tag or on a malformed stream; Err tells the two apart.
func (d *Decoder) Next() bool {
	if d.err != nil || d.ended {
		return false
	}
	if d.end > d.pos {
		d.pos = d.end
	}
	d.pos = alignUp(d.pos)

	if d.pos+4 > len(d.buf) {
		d.err = fmt.Errorf("%w: no end-of-list at offset %d", ErrTruncated, d.pos)
		return false
	}
	d.tag = Tag(binary.LittleEndian.Uint32(d.buf[d.pos:]))
	d.pos += 4
	d.consumed = false

	if d.tag == TagEndOfList {
		d.ended = true
		d.end = d.pos
		return false
	}
	if !d.tag.Valid() {
		d.err = fmt.Errorf("%w: %d at offset %d", ErrUnknownTag, uint32(d.tag), d.pos-4)
		return false
	}

	size := fixedWords[d.tag] * 4
	if d.tag == TagScreenshot {
		// the name length is the last fixed word
		lenAt := d.pos + (fixedWords[TagScreenshot]-1)*4
		if lenAt+4 > len(d.buf) {
			d.err = fmt.Errorf("%w: screenshot header at offset %d", ErrTruncated, d.pos)
			return false
		}
		n := int(int32(binary.LittleEndian.Uint32(d.buf[lenAt:])))
		if n < 0 {
			d.err = fmt.Errorf("%w: screenshot name length %d", ErrTruncated, n)
			return false
		}
		size += alignUp(n)
	}
	d.end = d.pos + size
	if d.end > len(d.buf) {
		d.err = fmt.Errorf("%w: %v record at offset %d", ErrTruncated, d.tag, d.pos-4)
		return false
	}
	return true
}

// Tag returns the tag of the current record.
func (d *Decoder) Tag() Tag {
	return d.tag
}

// Ended reports whether the end-of-list tag has been read.
func (d *Decoder) Ended() bool {
	return d.ended
}

// Err returns the first decoding error.
func (d *Decoder) Err() error {
	return d.err
}

// Position returns the read offset in bytes.
func (d *Decoder) Position() int {
	return d.pos
}

// payload checks the current tag and returns a reader over its payload,
// moving the cursor past the record.
func (d *Decoder) payload(tag Tag) (words, bool) {
	if d.err != nil {
		return words{}, false
	}
	if d.tag != tag || d.consumed || d.ended {
		d.err = fmt.Errorf("%w: want %v, at %v", ErrWrongRecord, tag, d.tag)
		return words{}, false
	}
	w := words{b: d.buf[d.pos:d.end]}
	d.pos = d.end
	d.consumed = true
	return w, true
}

// FrameBegin reads a TagFrameBegin payload.
func (d *Decoder) FrameBegin() FrameBegin {
	w, ok := d.payload(TagFrameBegin)
	if !ok {
		return FrameBegin{}
	}
	return FrameBegin{Frame: w.u32(), Buffer: w.u32()}
}

// SetColor reads a TagSetColor payload.
func (d *Decoder) SetColor() [4]float32 {
	w, ok := d.payload(TagSetColor)
	if !ok {
		return [4]float32{}
	}
	return w.rgba()
}

// DrawSurfs reads a TagDrawSurfs payload.
func (d *Decoder) DrawSurfs() DrawSurfs {
	w, ok := d.payload(TagDrawSurfs)
	if !ok {
		return DrawSurfs{}
	}
	var r DrawSurfs
	r.NoWorld = w.readView(&r.View)
	r.Time = int32(w.u32())
	r.First = w.num()
	r.Count = w.num()
	r.Transp = w.num()
	r.LightFirst = w.num()
	r.LightCount = w.num()
	return r
}

// StretchPic reads a TagStretchPic payload.
func (d *Decoder) StretchPic() StretchPic {
	w, ok := d.payload(TagStretchPic)
	if !ok {
		return StretchPic{}
	}
	return StretchPic{
		Shader: w.num(),
		X:      w.f32(), Y: w.f32(), W: w.f32(), H: w.f32(),
		S1: w.f32(), T1: w.f32(), S2: w.f32(), T2: w.f32(),
	}
}

// Triangle reads a TagTriangle payload.
func (d *Decoder) Triangle() Triangle {
	w, ok := d.payload(TagTriangle)
	if !ok {
		return Triangle{}
	}
	r := Triangle{Shader: w.num()}
	for i := range r.XY {
		r.XY[i] = [2]float32{w.f32(), w.f32()}
	}
	for i := range r.ST {
		r.ST[i] = [2]float32{w.f32(), w.f32()}
	}
	return r
}

// SwapBuffers reads a TagSwapBuffers payload and returns the frame number.
func (d *Decoder) SwapBuffers() uint32 {
	w, ok := d.payload(TagSwapBuffers)
	if !ok {
		return 0
	}
	return w.u32()
}

// Screenshot reads a TagScreenshot payload.
func (d *Decoder) Screenshot() Screenshot {
	w, ok := d.payload(TagScreenshot)
	if !ok {
		return Screenshot{}
	}
	r := Screenshot{
		X: w.num(), Y: w.num(),
		Width: w.num(), Height: w.num(),
		Format: ImageFormat(w.u32()),
	}
	n := w.num()
	r.Name = string(w.b[w.i : w.i+n])
	return r
}

// VideoFrame reads a TagVideoFrame payload.
func (d *Decoder) VideoFrame() VideoFrame {
	w, ok := d.payload(TagVideoFrame)
	if !ok {
		return VideoFrame{}
	}
	return VideoFrame{Width: w.num(), Height: w.num(), Format: ImageFormat(w.u32())}
}

// ClearColor reads a TagClearColor payload.
func (d *Decoder) ClearColor() [4]float32 {
	w, ok := d.payload(TagClearColor)
	if !ok {
		return [4]float32{}
	}
	return w.rgba()
}

// ColorMask reads a TagColorMask payload.
func (d *Decoder) ColorMask() [4]bool {
	w, ok := d.payload(TagColorMask)
	if !ok {
		return [4]bool{}
	}
	return [4]bool{w.u32() != 0, w.u32() != 0, w.u32() != 0, w.u32() != 0}
}

// words reads little-endian words from a record payload. Bounds were
// checked by Next.
type words struct {
	b []byte
	i int
}

func (w *words) u32() uint32 {
	v := binary.LittleEndian.Uint32(w.b[w.i:])
	w.i += 4
	return v
}

func (w *words) num() int {
	return int(int32(w.u32()))
}

func (w *words) f32() float32 {
	return math.Float32frombits(w.u32())
}

func (w *words) vec3() view.Vec3 {
	return view.Vec3{w.f32(), w.f32(), w.f32()}
}

func (w *words) rgba() [4]float32 {
	return [4]float32{w.f32(), w.f32(), w.f32(), w.f32()}
}

func (w *words) mat4(m *view.Mat4) {
	for i := range m {
		m[i] = w.f32()
	}
}

func (w *words) readView(p *view.Parms) (noWorld bool) {
	p.Or.Origin = w.vec3()
	for i := range p.Or.Axis {
		p.Or.Axis[i] = w.vec3()
	}
	w.mat4(&p.World.ModelView)
	p.World.Axis = view.IdentityAxis()
	p.World.ViewOrigin = p.Or.Origin
	w.mat4(&p.ProjectionMatrix)
	p.Viewport = view.Viewport{X: w.num(), Y: w.num(), Width: w.num(), Height: w.num()}
	p.FovX = w.f32()
	p.FovY = w.f32()
	p.ZNear = w.f32()
	p.ZFar = w.f32()

	flags := w.u32()
	p.IsPortal = flags&viewPortal != 0
	p.IsMirror = flags&viewMirror != 0

	p.PortalPlane = view.NewPlane(w.vec3(), 0)
	p.PortalPlane.Dist = w.f32()
	p.FrameSceneNum = w.num()
	p.ViewCount = w.num()
	return flags&viewNoWorld != 0
}

func alignUp(n int) int {
	return (n + 3) &^ 3
}
