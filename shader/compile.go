// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shader

import (
	"errors"
	"fmt"
	"hash/fnv"

	"github.com/gogpu/naga"
)

// ErrCompile wraps WGSL compilation failures.
var ErrCompile = errors.New("shader: compile failed")

// Compile compiles WGSL source to SPIR-V words.
func Compile(wgsl string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(wgsl)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompile, err)
	}

	// SPIR-V is little-endian 32-bit words
	code := make([]uint32, len(spirvBytes)/4)
	for i := range code {
		code[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return code, nil
}

// ProgramHash compiles wgsl and returns an FNV-1a hash of the SPIR-V.
// Sources that differ only in formatting hash to the same value when the
// compiler output is identical.
func ProgramHash(wgsl string) (uint64, error) {
	code, err := Compile(wgsl)
	if err != nil {
		return 0, err
	}
	h := fnv.New64a()
	for _, w := range code {
		hashWriteUint32(h, w)
	}
	return h.Sum64(), nil
}
