// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package surfsort orders draw surfaces and lit surface lists by sort key.
package surfsort

import (
	"github.com/gogpu/rend/frame"
)

// Passes is the number of byte passes RadixSort makes. Six bytes cover
// every meaningful key bit, and an even count leaves the result in the
// caller's slice.
const Passes = 6

// RadixSort sorts surfs by Key with a least-significant-byte-first radix
// sort. Each pass is a stable counting sort over 256 buckets, ping-ponging
// between surfs and scratch. scratch is grown when it is shorter than
// surfs; passing a slice with enough capacity avoids the allocation.
func RadixSort(surfs, scratch []frame.DrawSurface) {
	n := len(surfs)
	if n < 2 {
		return
	}
	if cap(scratch) < n {
		scratch = make([]frame.DrawSurface, n)
	}

	src, dst := surfs, scratch[:n]
	var count [256]int
	for pass := 0; pass < Passes; pass++ {
		shift := uint(pass * 8)

		count = [256]int{}
		for i := range src {
			count[byte(src[i].Key>>shift)]++
		}
		sum := 0
		for b, c := range count {
			count[b] = sum
			sum += c
		}
		for i := range src {
			b := byte(src[i].Key >> shift)
			dst[count[b]] = src[i]
			count[b]++
		}

		src, dst = dst, src
	}
}

// tape is a queue of lit surfaces threaded through the arena.
type tape struct {
	head, tail int32
}

var emptyTape = tape{head: -1, tail: -1}

func (t *tape) empty() bool { return t.head < 0 }

func (t *tape) push(arena []frame.LitSurface, i int32) {
	arena[i].Next = -1
	if t.tail < 0 {
		t.head = i
	} else {
		arena[t.tail].Next = i
	}
	t.tail = i
}

func (t *tape) pop(arena []frame.LitSurface) int32 {
	i := t.head
	t.head = arena[i].Next
	if t.head < 0 {
		t.tail = -1
	}
	return i
}

// SortLit sorts the lit surface list starting at head by Key and returns
// the new head and tail. It is a bottom-up merge over four tapes: two
// input tapes hold alternating runs, which are merged pairwise into runs
// twice as long on the two output tapes, until one tape holds everything.
// Ties keep list order.
func SortLit(arena []frame.LitSurface, head int32) (newHead, newTail int32) {
	if head < 0 {
		return -1, -1
	}

	tapes := [4]tape{emptyTape, emptyTape, emptyTape, emptyTape}

	// runs of length one, alternating between the input tapes
	k := 0
	for i := head; i >= 0; {
		next := arena[i].Next
		tapes[k].push(arena, i)
		k ^= 1
		i = next
	}

	in, out := 0, 2
	for run := 1; !tapes[in+1].empty(); run *= 2 {
		a, b := &tapes[in], &tapes[in+1]
		tapes[out], tapes[out+1] = emptyTape, emptyTape

		o := out
		for !a.empty() || !b.empty() {
			na, nb := run, run
			for {
				useA := na > 0 && !a.empty()
				useB := nb > 0 && !b.empty()
				if !useA && !useB {
					break
				}
				if useA && useB {
					useA = arena[a.head].Key <= arena[b.head].Key
				}
				if useA {
					tapes[o].push(arena, a.pop(arena))
					na--
				} else {
					tapes[o].push(arena, b.pop(arena))
					nb--
				}
			}
			o ^= 1
		}
		in, out = out, in
	}
	return tapes[in].head, tapes[in].tail
}
