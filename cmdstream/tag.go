// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package cmdstream defines the command stream handed from the frame
// composer to a backend executor.
//
// A stream is a byte buffer of self-describing records. Every record starts
// with a 4-byte little-endian Tag followed by a payload of 4-byte words
// whose layout is fixed by the tag. The stream ends with TagEndOfList.
// Once finished, a stream is immutable and may be executed later or on
// another goroutine.
package cmdstream

// Tag identifies a record. Tags are 4-byte words at 4-byte aligned
// offsets.
type Tag uint32

// Tag constants. Each tag's payload is documented in its comment; all
// values are little-endian uint32, int32 or float32 words.
const (
	// TagEndOfList terminates the stream.
	// Payload: none
	TagEndOfList Tag = iota

	// TagFrameBegin starts a frame.
	// Payload: frame number, draw buffer (0 back, 1 front)
	TagFrameBegin

	// TagSetColor sets the color of following 2D primitives.
	// Payload: 4 float32 [r, g, b, a]
	TagSetColor

	// TagDrawSurfs draws a sorted run of the frame's draw surfaces for one
	// view.
	// Payload: view (see DrawSurfs), scene time in ms, first surface,
	// surface count, transparent count, first view light, light count
	TagDrawSurfs

	// TagStretchPic draws a textured screen rectangle.
	// Payload: shader handle, 8 float32 [x, y, w, h, s1, t1, s2, t2]
	TagStretchPic

	// TagTriangle draws a textured screen triangle.
	// Payload: shader handle, 6 float32 positions, 6 float32 texcoords
	TagTriangle

	// TagSwapBuffers presents the frame.
	// Payload: frame number
	TagSwapBuffers

	// TagScreenshot captures the framebuffer to a file.
	// Payload: x, y, width, height, format, name length, name bytes padded
	// to a word boundary
	TagScreenshot

	// TagVideoFrame captures the framebuffer for video recording.
	// Payload: width, height, format
	TagVideoFrame

	// TagClearDepth clears the depth buffer.
	// Payload: none
	TagClearDepth

	// TagClearColor clears the color buffer.
	// Payload: 4 float32 [r, g, b, a]
	TagClearColor

	// TagColorMask sets the color write mask.
	// Payload: 4 words [r, g, b, a], non-zero enables the channel
	TagColorMask

	tagCount
)

var tagNames = [...]string{
	TagEndOfList:   "EndOfList",
	TagFrameBegin:  "FrameBegin",
	TagSetColor:    "SetColor",
	TagDrawSurfs:   "DrawSurfs",
	TagStretchPic:  "StretchPic",
	TagTriangle:    "Triangle",
	TagSwapBuffers: "SwapBuffers",
	TagScreenshot:  "Screenshot",
	TagVideoFrame:  "VideoFrame",
	TagClearDepth:  "ClearDepth",
	TagClearColor:  "ClearColor",
	TagColorMask:   "ColorMask",
}

// String returns a human-readable name for the tag.
func (t Tag) String() string {
	if t < tagCount {
		return tagNames[t]
	}
	return "Unknown"
}

// Valid reports whether t is a known tag.
func (t Tag) Valid() bool {
	return t < tagCount
}

// fixedWords is the payload size in words of every fixed-size record.
// TagScreenshot carries a variable-length name and is sized separately.
var fixedWords = [...]int{
	TagEndOfList:   0,
	TagFrameBegin:  2,
	TagSetColor:    4,
	TagDrawSurfs:   viewWords + 6,
	TagStretchPic:  9,
	TagTriangle:    13,
	TagSwapBuffers: 1,
	TagScreenshot:  6,
	TagVideoFrame:  3,
	TagClearDepth:  0,
	TagClearColor:  4,
	TagColorMask:   4,
}
