// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cmdstream

import "sync"

// Pool manages reusable streams of one byte limit.
//
// Usage:
//
//	pool := cmdstream.NewPool(cmdstream.DefaultSize)
//	s := pool.Get()
//	defer pool.Put(s)
type Pool struct {
	limit int
	pool  sync.Pool
}

// NewPool creates a pool of streams limited to limit bytes.
func NewPool(limit int) *Pool {
	p := &Pool{limit: limit}
	p.pool.New = func() any {
		return New(p.limit)
	}
	return p
}

// Get returns an empty, writable stream.
func (p *Pool) Get() *Stream {
	s := p.pool.Get().(*Stream)
	s.Reset()
	s.SetLimit(p.limit)
	return s
}

// Put returns s to the pool. s must no longer be read.
func (p *Pool) Put(s *Stream) {
	if s == nil {
		return
	}
	p.pool.Put(s)
}

// Warmup pre-allocates streams so the first frames do not allocate.
func (p *Pool) Warmup(count int) {
	streams := make([]*Stream, count)
	for i := range streams {
		streams[i] = p.Get()
	}
	for _, s := range streams {
		p.Put(s)
	}
}
