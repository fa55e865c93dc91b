// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package backend defines the boundary between frame composition and the
// code that consumes a finished command stream.
//
// An [Executor] receives a frame's arenas together with its finished
// [cmdstream.Stream] and replays the records. Executors are registered by
// name, following the database/sql driver pattern:
//
//	func init() {
//		backend.Register("trace", func() backend.Executor {
//			return trace.New()
//		})
//	}
//
// and selected at runtime:
//
//	exec, err := backend.Get("trace")
//
// # Deferred execution
//
// [Async] runs a wrapped executor on a worker goroutine so composition of
// frame N+1 can overlap execution of frame N. The producer must call
// [Async.Wait] before reusing a frame slot that is still queued.
//
// # Available executors
//
//   - "trace": software reference executor (package backend/trace),
//     registered on import
//   - backend/halexec: WebGPU HAL executor. It needs a device, so it is
//     constructed with halexec.New rather than looked up by name.
package backend
