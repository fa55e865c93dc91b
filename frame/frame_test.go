// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package frame

import (
	"errors"
	"testing"
)

func smallLimits() Limits {
	return Limits{DrawSurfs: 4, LitSurfs: 4, Entities: 2, Lights: 2, Polys: 2, PolyVerts: 6}
}

func TestLimitsValidate(t *testing.T) {
	tests := []struct {
		name    string
		l       Limits
		wantErr bool
	}{
		{"default", DefaultLimits(), false},
		{"small", smallLimits(), false},
		{"no draw surfaces", Limits{}, true},
		{"too many entities", Limits{DrawSurfs: 1, Entities: MaxEntities + 1}, true},
		{"negative lights", Limits{DrawSurfs: 1, Lights: -1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.l.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrLimits) {
				t.Errorf("Validate() error = %v, want ErrLimits", err)
			}
		})
	}
}

func TestArenaCapacity(t *testing.T) {
	f, err := New(smallLimits())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	for i := 0; i < 4; i++ {
		if idx, ok := f.AddDrawSurf(DrawSurface{Shader: i}); !ok || idx != i {
			t.Fatalf("AddDrawSurf(%d) = %d, %v", i, idx, ok)
		}
	}
	if _, ok := f.AddDrawSurf(DrawSurface{}); ok {
		t.Error("AddDrawSurf() past capacity succeeded")
	}

	f.AddEntity(RefEntity{})
	f.AddEntity(RefEntity{})
	if _, ok := f.AddEntity(RefEntity{}); ok {
		t.Error("AddEntity() past capacity succeeded")
	}
	if len(f.Entities) != 2 {
		t.Errorf("len(Entities) = %d, want 2", len(f.Entities))
	}

	verts := make([]PolyVert, 4)
	if _, ok := f.AddPoly(1, verts); !ok {
		t.Fatal("AddPoly() failed with room left")
	}
	// 4 + 4 exceeds 6 vertices: neither arena may change
	if _, ok := f.AddPoly(1, verts); ok {
		t.Error("AddPoly() past vertex capacity succeeded")
	}
	if len(f.Polys) != 1 || len(f.PolyVerts) != 4 {
		t.Errorf("polys = %d, verts = %d, want 1, 4", len(f.Polys), len(f.PolyVerts))
	}
	if got := len(f.PolyVertices(0)); got != 4 {
		t.Errorf("len(PolyVertices(0)) = %d, want 4", got)
	}

	f.Reset(7)
	if f.Number != 7 || len(f.DrawSurfs) != 0 || len(f.Entities) != 0 || len(f.Polys) != 0 {
		t.Errorf("Reset() left %+v", f)
	}
	if cap(f.DrawSurfs) != 4 {
		t.Errorf("cap(DrawSurfs) = %d after Reset, want 4", cap(f.DrawSurfs))
	}
}

func TestLitSurfaceList(t *testing.T) {
	f, _ := New(smallLimits())
	li, ok := f.AddViewLight(Light{Radius: 100})
	if !ok {
		t.Fatal("AddViewLight() failed")
	}
	if l := f.ViewLights[li]; l.Head != -1 || l.Tail != -1 {
		t.Fatalf("new light list = %d..%d, want -1..-1", l.Head, l.Tail)
	}

	for i := 0; i < 3; i++ {
		if !f.AddLitSurf(li, LitSurface{Shader: i}) {
			t.Fatalf("AddLitSurf(%d) failed", i)
		}
	}

	l := f.ViewLights[li]
	if l.NumLit != 3 || l.Head != 0 || l.Tail != 2 {
		t.Errorf("light = %+v, want 3 surfaces 0..2", l)
	}
	var order []int
	for i := l.Head; i >= 0; i = f.LitSurfs[i].Next {
		order = append(order, f.LitSurfs[i].Shader)
	}
	if len(order) != 3 || order[0] != 0 || order[1] != 1 || order[2] != 2 {
		t.Errorf("list order = %v, want [0 1 2]", order)
	}
}

func TestEntityLookup(t *testing.T) {
	f, _ := New(smallLimits())
	f.AddEntity(RefEntity{Model: 5})
	if e := f.Entity(0); e == nil || e.Model != 5 {
		t.Errorf("Entity(0) = %+v, want model 5", e)
	}
	if f.Entity(EntityWorld) != nil {
		t.Error("Entity(EntityWorld) != nil")
	}
	if f.Entity(1) != nil {
		t.Error("Entity(1) past the end != nil")
	}
}

func TestSurfaceKindString(t *testing.T) {
	if got := SurfacePoly.String(); got != "poly" {
		t.Errorf("SurfacePoly.String() = %q, want poly", got)
	}
	if got := SurfaceKind(200).String(); got != "unknown" {
		t.Errorf("SurfaceKind(200).String() = %q, want unknown", got)
	}
	if (PolySurface{}).Kind() != SurfacePoly || (EntitySurface{}).Kind() != SurfaceEntity {
		t.Error("core surface kinds mismatch")
	}
}
