// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rend

import (
	"errors"
	"fmt"
)

// Errors returned by the frame API.
var (
	// ErrInFrame is returned by BeginFrame while a frame is open.
	ErrInFrame = errors.New("rend: frame already begun")

	// ErrNoFrame is returned by EndFrame without a matching BeginFrame.
	ErrNoFrame = errors.New("rend: no frame begun")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("rend: renderer closed")
)

// Reference errors. They are carried by FatalError panics.
var (
	// ErrBadShader means a surface named a shader handle the table does
	// not hold.
	ErrBadShader = errors.New("rend: shader handle out of range")

	// ErrBadEntity means a surface named an entity that is not in the
	// frame.
	ErrBadEntity = errors.New("rend: entity index out of range")

	// ErrBadSort means a surface's shader has no sort class.
	ErrBadSort = errors.New("rend: shader has no sort class")
)

// FatalError is the panic value for a corrupted reference: a shader or
// entity index the frontend should never have produced. Continuing would
// draw garbage, so the render subsystem stops.
//
// Embedders that want to survive it recover and inspect the error:
//
//	defer func() {
//	    if v := recover(); v != nil {
//	        if fe, ok := v.(*rend.FatalError); ok && errors.Is(fe, rend.ErrBadShader) {
//	            // shut the renderer down
//	        }
//	    }
//	}()
type FatalError struct {
	// Frame is the frame number the error occurred in.
	Frame int
	// Op names the operation, e.g. "add draw surface".
	Op string
	// Index is the offending index.
	Index int
	Err   error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("rend: frame %d: %s: index %d: %v", e.Frame, e.Op, e.Index, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// fatal panics with a FatalError.
func (r *Renderer) fatal(op string, index int, err error) {
	Logger().Error("rend: fatal reference error", "frame", r.frameCount, "op", op, "index", index, "err", err)
	panic(&FatalError{Frame: r.frameCount, Op: op, Index: index, Err: err})
}
