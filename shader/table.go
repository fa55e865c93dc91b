// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shader

import (
	"errors"
	"fmt"

	"golang.org/x/text/cases"
)

// MaxShaders is the number of shaders a sort key can address.
const MaxShaders = 1 << 14

// Table errors.
var (
	// ErrTableFull is returned by Register past MaxShaders.
	ErrTableFull = errors.New("shader: table full")

	// ErrNoName is returned when registering a shader without a name.
	ErrNoName = errors.New("shader: shader has no name")

	// ErrDuplicate is returned when a name is registered twice.
	ErrDuplicate = errors.New("shader: duplicate shader name")
)

// DefaultName is the name of the shader registered at handle 0.
const DefaultName = "<default>"

// Table is the global shader table. Handles are dense indices assigned by
// Register. A new table holds the default opaque shader at handle 0.
//
// Register and Get may be used from any goroutine before rendering starts;
// BeginFrame and SortedIndex belong to the frame composer.
type Table struct {
	shaders   []*Shader
	byName    map[string]int
	pipelines *Pipelines

	gen    uint64
	sorted []*Shader
}

// NewTable creates a table with the default shader registered.
func NewTable() *Table {
	t := &Table{
		byName:    make(map[string]int),
		pipelines: NewPipelines(),
		gen:       1,
	}
	if _, err := t.Register(Shader{
		Name:      DefaultName,
		Sort:      SortOpaque,
		State:     OpaqueState(),
		NumStages: 1,
	}); err != nil {
		// the first registration cannot fail
		panic(err)
	}
	return t
}

// Register adds sh to the table and returns its handle. The pipeline id is
// interned from sh.State after folding in the compiled Program, if any.
func (t *Table) Register(sh Shader) (int, error) {
	if sh.Name == "" {
		return 0, ErrNoName
	}
	key := foldName(sh.Name)
	if _, ok := t.byName[key]; ok {
		return 0, fmt.Errorf("%w: %q", ErrDuplicate, sh.Name)
	}
	if len(t.shaders) >= MaxShaders {
		return 0, ErrTableFull
	}

	if sh.Program != "" {
		h, err := ProgramHash(sh.Program)
		if err != nil {
			return 0, fmt.Errorf("shader %q: %w", sh.Name, err)
		}
		sh.State.ProgramHash = h
	}
	id, err := t.pipelines.Intern(sh.State)
	if err != nil {
		return 0, fmt.Errorf("shader %q: %w", sh.Name, err)
	}

	s := sh
	s.Pipeline = id
	s.Index = len(t.shaders)
	s.sortedGen = 0
	t.shaders = append(t.shaders, &s)
	t.byName[key] = s.Index
	return s.Index, nil
}

// Get returns the shader for handle, or nil when the handle is invalid.
func (t *Table) Get(handle int) *Shader {
	if handle < 0 || handle >= len(t.shaders) {
		return nil
	}
	return t.shaders[handle]
}

// Find returns the handle registered under name. Names match without
// regard to case.
func (t *Table) Find(name string) (int, bool) {
	h, ok := t.byName[foldName(name)]
	return h, ok
}

// foldName is the lookup key of a shader name. A Caser keeps state, so
// each call gets its own.
func foldName(name string) string {
	return cases.Fold().String(name)
}

// Len returns the number of registered shaders.
func (t *Table) Len() int {
	return len(t.shaders)
}

// Pipelines returns the pipeline interner backing the table.
func (t *Table) Pipelines() *Pipelines {
	return t.pipelines
}

// BeginFrame forgets all sorted indices. The next SortedIndex calls hand
// out indices from zero again in first-encounter order.
func (t *Table) BeginFrame() {
	t.gen++
	t.sorted = t.sorted[:0]
}

// SortedIndex returns the sorted index of sh for the current frame,
// assigning the next free index on the first call of the frame. Indices
// stay fixed for the rest of the frame so keys composed earlier remain
// valid.
func (t *Table) SortedIndex(sh *Shader) int {
	if sh.sortedGen != t.gen {
		sh.sortedGen = t.gen
		sh.sortedIndex = len(t.sorted)
		t.sorted = append(t.sorted, sh)
	}
	return sh.sortedIndex
}

// BySorted returns the shader assigned sorted index i this frame.
func (t *Table) BySorted(i int) *Shader {
	if i < 0 || i >= len(t.sorted) {
		return nil
	}
	return t.sorted[i]
}
