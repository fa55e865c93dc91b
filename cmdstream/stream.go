// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cmdstream

import (
	"encoding/binary"
	"errors"
	"math"

	"github.com/gogpu/rend/view"
)

// DefaultSize is the default stream capacity in bytes.
const DefaultSize = 0x40000

// ErrFinished is the panic value of a write to a finished stream.
var ErrFinished = errors.New("cmdstream: write to finished stream")

// Stream is an append-only command buffer with a byte limit.
//
// Every write reports whether the record was stored. A record that would
// leave no room for the final end-of-list tag is dropped whole, so a full
// stream is always still terminable.
type Stream struct {
	buf      []byte
	limit    int
	finished bool
	dropped  int
}

// New creates a stream holding at most limit bytes. A non-positive limit
// selects DefaultSize.
func New(limit int) *Stream {
	if limit <= 0 {
		limit = DefaultSize
	}
	return &Stream{
		buf:   make([]byte, 0, min(limit, 4096)),
		limit: limit,
	}
}

// Reset empties the stream for reuse, keeping its buffer.
func (s *Stream) Reset() {
	s.buf = s.buf[:0]
	s.finished = false
	s.dropped = 0
}

// SetLimit changes the byte limit. It affects later writes only.
func (s *Stream) SetLimit(limit int) {
	if limit <= 0 {
		limit = DefaultSize
	}
	s.limit = limit
}

// Limit returns the byte limit.
func (s *Stream) Limit() int { return s.limit }

// Len returns the number of bytes written.
func (s *Stream) Len() int { return len(s.buf) }

// Dropped returns the number of records rejected for lack of room.
func (s *Stream) Dropped() int { return s.dropped }

// Finished reports whether Finish has been called.
func (s *Stream) Finished() bool { return s.finished }

// Bytes returns the encoded stream. The slice must not be modified.
func (s *Stream) Bytes() []byte { return s.buf }

// Finish appends the end-of-list tag and freezes the stream. Calling it
// again has no effect.
func (s *Stream) Finish() {
	if s.finished {
		return
	}
	s.align()
	s.putU32(uint32(TagEndOfList))
	s.finished = true
}

// begin pads to a word boundary and writes tag when a record of the given
// payload size fits in front of the reserved end-of-list tag.
func (s *Stream) begin(tag Tag, payloadWords int) bool {
	if s.finished {
		panic(ErrFinished)
	}
	s.align()
	if len(s.buf)+4+payloadWords*4+4 > s.limit {
		s.dropped++
		return false
	}
	s.putU32(uint32(tag))
	return true
}

func (s *Stream) align() {
	for len(s.buf)%4 != 0 {
		s.buf = append(s.buf, 0)
	}
}

func (s *Stream) putU32(v uint32) {
	s.buf = binary.LittleEndian.AppendUint32(s.buf, v)
}

func (s *Stream) putI32(v int) {
	//nolint:gosec // G115: record fields are frame-bounded indices and sizes
	s.putU32(uint32(int32(v)))
}

func (s *Stream) putF32(v float32) {
	s.putU32(math.Float32bits(v))
}

func (s *Stream) putBool(v bool) {
	if v {
		s.putU32(1)
	} else {
		s.putU32(0)
	}
}

func (s *Stream) putVec3(v view.Vec3) {
	s.putF32(v[0])
	s.putF32(v[1])
	s.putF32(v[2])
}

func (s *Stream) putMat4(m *view.Mat4) {
	for _, f := range m {
		s.putF32(f)
	}
}

// WriteFrameBegin writes TagFrameBegin.
func (s *Stream) WriteFrameBegin(r FrameBegin) bool {
	if !s.begin(TagFrameBegin, fixedWords[TagFrameBegin]) {
		return false
	}
	s.putU32(r.Frame)
	s.putU32(r.Buffer)
	return true
}

// WriteSetColor writes TagSetColor.
func (s *Stream) WriteSetColor(rgba [4]float32) bool {
	if !s.begin(TagSetColor, fixedWords[TagSetColor]) {
		return false
	}
	for _, c := range rgba {
		s.putF32(c)
	}
	return true
}

// WriteDrawSurfs writes TagDrawSurfs.
func (s *Stream) WriteDrawSurfs(r *DrawSurfs) bool {
	if !s.begin(TagDrawSurfs, fixedWords[TagDrawSurfs]) {
		return false
	}
	s.putView(&r.View, r.NoWorld)
	s.putI32(int(r.Time))
	s.putI32(r.First)
	s.putI32(r.Count)
	s.putI32(r.Transp)
	s.putI32(r.LightFirst)
	s.putI32(r.LightCount)
	return true
}

func (s *Stream) putView(p *view.Parms, noWorld bool) {
	s.putVec3(p.Or.Origin)
	for _, a := range p.Or.Axis {
		s.putVec3(a)
	}
	s.putMat4(&p.World.ModelView)
	s.putMat4(&p.ProjectionMatrix)
	s.putI32(p.Viewport.X)
	s.putI32(p.Viewport.Y)
	s.putI32(p.Viewport.Width)
	s.putI32(p.Viewport.Height)
	s.putF32(p.FovX)
	s.putF32(p.FovY)
	s.putF32(p.ZNear)
	s.putF32(p.ZFar)

	var flags uint32
	if p.IsPortal {
		flags |= viewPortal
	}
	if p.IsMirror {
		flags |= viewMirror
	}
	if noWorld {
		flags |= viewNoWorld
	}
	s.putU32(flags)

	s.putVec3(p.PortalPlane.Normal)
	s.putF32(p.PortalPlane.Dist)
	s.putI32(p.FrameSceneNum)
	s.putI32(p.ViewCount)
}

// WriteStretchPic writes TagStretchPic.
func (s *Stream) WriteStretchPic(r StretchPic) bool {
	if !s.begin(TagStretchPic, fixedWords[TagStretchPic]) {
		return false
	}
	s.putI32(r.Shader)
	for _, f := range [...]float32{r.X, r.Y, r.W, r.H, r.S1, r.T1, r.S2, r.T2} {
		s.putF32(f)
	}
	return true
}

// WriteTriangle writes TagTriangle.
func (s *Stream) WriteTriangle(r Triangle) bool {
	if !s.begin(TagTriangle, fixedWords[TagTriangle]) {
		return false
	}
	s.putI32(r.Shader)
	for _, v := range r.XY {
		s.putF32(v[0])
		s.putF32(v[1])
	}
	for _, v := range r.ST {
		s.putF32(v[0])
		s.putF32(v[1])
	}
	return true
}

// WriteSwapBuffers writes TagSwapBuffers.
func (s *Stream) WriteSwapBuffers(frame uint32) bool {
	if !s.begin(TagSwapBuffers, fixedWords[TagSwapBuffers]) {
		return false
	}
	s.putU32(frame)
	return true
}

// WriteScreenshot writes TagScreenshot.
func (s *Stream) WriteScreenshot(r Screenshot) bool {
	nameWords := (len(r.Name) + 3) / 4
	if !s.begin(TagScreenshot, fixedWords[TagScreenshot]+nameWords) {
		return false
	}
	s.putI32(r.X)
	s.putI32(r.Y)
	s.putI32(r.Width)
	s.putI32(r.Height)
	s.putU32(uint32(r.Format))
	s.putI32(len(r.Name))
	s.buf = append(s.buf, r.Name...)
	s.align()
	return true
}

// WriteVideoFrame writes TagVideoFrame.
func (s *Stream) WriteVideoFrame(r VideoFrame) bool {
	if !s.begin(TagVideoFrame, fixedWords[TagVideoFrame]) {
		return false
	}
	s.putI32(r.Width)
	s.putI32(r.Height)
	s.putU32(uint32(r.Format))
	return true
}

// WriteClearDepth writes TagClearDepth.
func (s *Stream) WriteClearDepth() bool {
	return s.begin(TagClearDepth, 0)
}

// WriteClearColor writes TagClearColor.
func (s *Stream) WriteClearColor(rgba [4]float32) bool {
	if !s.begin(TagClearColor, fixedWords[TagClearColor]) {
		return false
	}
	for _, c := range rgba {
		s.putF32(c)
	}
	return true
}

// WriteColorMask writes TagColorMask.
func (s *Stream) WriteColorMask(mask [4]bool) bool {
	if !s.begin(TagColorMask, fixedWords[TagColorMask]) {
		return false
	}
	for _, m := range mask {
		s.putBool(m)
	}
	return true
}
