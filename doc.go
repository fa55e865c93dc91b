// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package rend is the frontend of a real-time 3D renderer: it collects the
// surfaces visible in a view, orders them for drawing and writes the
// result into a command stream that a backend executor replays, possibly
// on another goroutine.
//
// # Quick Start
//
//	r, err := rend.New(
//	    rend.WithShaders(shaders),
//	    rend.WithWorld(bsp),
//	    rend.WithExecutor(trace.New()),
//	)
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//
//	r.BeginFrame()
//	r.AddRefEntityToScene(player)
//	r.AddLightToScene(origin, 200, 1, 0.8, 0.6)
//	r.RenderScene(&rend.RefDef{
//	    Viewport: view.Viewport{Width: 640, Height: 480},
//	    FovX:     90, FovY: 73.7,
//	    Origin:   eye,
//	    Axis:     view.IdentityAxis(),
//	})
//	r.DrawStretchPic(0, 0, 64, 64, 0, 0, 1, 1, hud)
//	err = r.EndFrame(ctx)
//
// # Composition
//
// RenderScene builds the camera and frustum (package view), asks the
// World and Models collaborators for surfaces, adds core entity and poly
// surfaces, and links surfaces to the dynamic lights that reach them.
// Every surface carries a 64-bit key (package sortkey) and the view's
// surfaces are radix sorted by it. Portal surfaces sort first; each one
// may render a mirrored or remote view into the same frame before the
// outer view continues. The trailing transparent surfaces are then
// ordered back to front, and one draw-surfaces record describes the view.
//
// Portal views never nest: a portal seen from inside a portal view is
// not rendered.
//
// # Errors
//
// Running out of arena or stream space drops the contribution and is
// counted in Stats. A shader or entity index that does not exist is a
// programmer error and panics with a *FatalError.
//
// # Frames
//
// A Renderer owns two frame slots. EndFrame finishes the stream and hands
// it with its slot to the executor; with an asynchronous executor
// (backend.Async) the next frame is composed while the previous one
// executes.
package rend
