// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shader

import (
	"errors"
	"sync"
	"testing"

	"github.com/gogpu/gputypes"
)

func TestNewTableDefaultShader(t *testing.T) {
	tab := NewTable()
	sh := tab.Get(0)
	if sh == nil {
		t.Fatal("Get(0) = nil, want default shader")
	}
	if sh.Name != DefaultName || !sh.IsOpaque() {
		t.Errorf("default shader = %+v, want opaque %q", sh, DefaultName)
	}
	if h, ok := tab.Find(DefaultName); !ok || h != 0 {
		t.Errorf("Find(%q) = %d, %v, want 0, true", DefaultName, h, ok)
	}
}

func TestRegister(t *testing.T) {
	tab := NewTable()

	tests := []struct {
		name    string
		sh      Shader
		wantErr error
	}{
		{"opaque", Shader{Name: "walls", Sort: SortOpaque, State: OpaqueState()}, nil},
		{"blend", Shader{Name: "glass", Sort: SortBlend0, State: AlphaBlendState()}, nil},
		{"no name", Shader{Sort: SortOpaque}, ErrNoName},
		{"duplicate", Shader{Name: "walls"}, ErrDuplicate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := tab.Register(tt.sh)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Register() error = %v, want %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if got := tab.Get(h); got == nil || got.Name != tt.sh.Name || got.Index != h {
				t.Errorf("Get(%d) = %+v, want %q at %d", h, got, tt.sh.Name, h)
			}
		})
	}

	if tab.Get(-1) != nil || tab.Get(tab.Len()) != nil {
		t.Error("Get() out of range returned a shader")
	}
}

func TestRegisterSharesPipelines(t *testing.T) {
	tab := NewTable()
	a, _ := tab.Register(Shader{Name: "a", Sort: SortOpaque, State: OpaqueState()})
	b, _ := tab.Register(Shader{Name: "b", Sort: SortOpaque, State: OpaqueState()})
	c, _ := tab.Register(Shader{Name: "c", Sort: SortBlend0, State: AlphaBlendState()})

	if tab.Get(a).Pipeline != tab.Get(b).Pipeline {
		t.Errorf("equal states got pipelines %d and %d", tab.Get(a).Pipeline, tab.Get(b).Pipeline)
	}
	if tab.Get(a).Pipeline == tab.Get(c).Pipeline {
		t.Error("opaque and blend states share a pipeline id")
	}
	// the default shader shares OpaqueState with a and b
	if got := tab.Pipelines().Len(); got != 2 {
		t.Errorf("Pipelines().Len() = %d, want 2", got)
	}
}

func TestSortedIndexPerFrame(t *testing.T) {
	tab := NewTable()
	a, _ := tab.Register(Shader{Name: "a", Sort: SortOpaque})
	b, _ := tab.Register(Shader{Name: "b", Sort: SortOpaque})
	sa, sb := tab.Get(a), tab.Get(b)

	tab.BeginFrame()
	if got := tab.SortedIndex(sb); got != 0 {
		t.Errorf("first SortedIndex() = %d, want 0", got)
	}
	if got := tab.SortedIndex(sa); got != 1 {
		t.Errorf("second SortedIndex() = %d, want 1", got)
	}
	if got := tab.SortedIndex(sb); got != 0 {
		t.Errorf("repeated SortedIndex() = %d, want 0", got)
	}
	if tab.BySorted(1) != sa {
		t.Error("BySorted(1) is not shader a")
	}

	tab.BeginFrame()
	if got := tab.SortedIndex(sa); got != 0 {
		t.Errorf("SortedIndex() after BeginFrame = %d, want 0", got)
	}
	if tab.BySorted(1) != nil {
		t.Error("BySorted(1) survived BeginFrame")
	}
}

func TestShaderFlags(t *testing.T) {
	decal := OpaqueState()
	decal.PolygonOffset = true
	decal.DepthCompare = gputypes.CompareFunctionEqual

	tests := []struct {
		name       string
		sh         Shader
		portal     bool
		opaque     bool
		offset     bool
		depthEqual bool
	}{
		{"portal", Shader{Sort: SortPortal}, true, true, false, false},
		{"opaque", Shader{Sort: SortOpaque, State: OpaqueState()}, false, true, false, false},
		{"decal", Shader{Sort: SortDecal, State: decal}, false, false, true, true},
		{"blend", Shader{Sort: SortBlend1, State: AlphaBlendState()}, false, false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.sh.IsPortal(); got != tt.portal {
				t.Errorf("IsPortal() = %v, want %v", got, tt.portal)
			}
			if got := tt.sh.IsOpaque(); got != tt.opaque {
				t.Errorf("IsOpaque() = %v, want %v", got, tt.opaque)
			}
			if got := tt.sh.PolygonOffset(); got != tt.offset {
				t.Errorf("PolygonOffset() = %v, want %v", got, tt.offset)
			}
			if got := tt.sh.DepthEqual(); got != tt.depthEqual {
				t.Errorf("DepthEqual() = %v, want %v", got, tt.depthEqual)
			}
		})
	}
}

func TestPipelinesConcurrentIntern(t *testing.T) {
	p := NewPipelines()
	states := []PipelineState{OpaqueState(), AlphaBlendState()}

	var wg sync.WaitGroup
	ids := make([][2]uint16, 8)
	for g := range ids {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i, s := range states {
				id, err := p.Intern(s)
				if err != nil {
					t.Errorf("Intern() error = %v", err)
				}
				ids[g][i] = id
			}
		}(g)
	}
	wg.Wait()

	for g := range ids {
		if ids[g] != ids[0] {
			t.Errorf("goroutine %d ids = %v, want %v", g, ids[g], ids[0])
		}
	}
	if p.Len() != 2 {
		t.Errorf("Len() = %d, want 2", p.Len())
	}
	hits, misses := p.Stats()
	if misses != 2 || hits != uint64(len(ids)*2-2) {
		t.Errorf("Stats() = %d hits, %d misses, want %d, 2", hits, misses, len(ids)*2-2)
	}
	if s, ok := p.State(ids[0][1]); !ok || s.Blend == nil {
		t.Errorf("State() = %+v, %v, want blend state", s, ok)
	}
}

func TestPipelineStateHash(t *testing.T) {
	a := OpaqueState()
	b := OpaqueState()
	if a.Hash() != b.Hash() {
		t.Error("equal states hash differently")
	}
	b.CullMode = gputypes.CullModeNone
	if a.Hash() == b.Hash() {
		t.Error("cull mode not part of hash")
	}
	c := OpaqueState()
	c.ProgramHash = 42
	if a.Hash() == c.Hash() {
		t.Error("program hash not part of hash")
	}
}

func TestFindIgnoresCase(t *testing.T) {
	tab := NewTable()
	h, err := tab.Register(Shader{Name: "Textures/Base/Wall", Sort: SortOpaque, State: OpaqueState()})
	if err != nil {
		t.Fatalf("Register() = %v", err)
	}
	for _, name := range []string{"Textures/Base/Wall", "textures/base/wall", "TEXTURES/BASE/WALL"} {
		if got, ok := tab.Find(name); !ok || got != h {
			t.Errorf("Find(%q) = %d, %v, want %d, true", name, got, ok, h)
		}
	}
	if _, err := tab.Register(Shader{Name: "textures/base/WALL"}); !errors.Is(err, ErrDuplicate) {
		t.Errorf("Register() folded duplicate error = %v, want %v", err, ErrDuplicate)
	}
	if got := tab.Get(h).Name; got != "Textures/Base/Wall" {
		t.Errorf("Name = %q, want original spelling", got)
	}
}
