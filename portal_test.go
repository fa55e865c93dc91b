// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rend

import (
	"testing"

	"github.com/gogpu/rend/frame"
	"github.com/gogpu/rend/shader"
	"github.com/gogpu/rend/view"
)

func portalEntity(origin, camera view.Vec3) frame.RefEntity {
	return frame.RefEntity{
		Type:      frame.EntityPortalSurface,
		Origin:    origin,
		OldOrigin: camera,
		Axis:      view.IdentityAxis(),
	}
}

// movedFace returns f shifted by d along its plane.
func movedFace(f *face, d view.Vec3) *face {
	g := *f
	g.bounds = view.EmptyBounds()
	for i := range g.verts {
		g.verts[i].Pos = g.verts[i].Pos.Add(d)
		g.bounds = g.bounds.AddPoint(g.verts[i].Pos)
	}
	return &g
}

func vecApprox(a, b view.Vec3) bool {
	return approx(a[0], b[0]) && approx(a[1], b[1]) && approx(a[2], b[2])
}

func TestMirror(t *testing.T) {
	ts := newShaders(t)
	world := &stubWorld{}
	world.add(newFace(100, 20), ts.mirror)
	world.add(newFace(300, 20), ts.wall)

	r, exec := newTestRenderer(t, WithShaders(ts.table), WithWorld(world))
	rec := renderFrame(t, r, exec, testRefDef(), func() {
		r.AddRefEntityToScene(portalEntity(view.Vec3{100, 0, 0}, view.Vec3{100, 0, 0}))
	})

	if len(rec.Views) != 2 {
		t.Fatalf("got %d views, want the mirror view and the main view", len(rec.Views))
	}
	inner, outer := rec.Views[0].Parms, rec.Views[1].Parms
	if !inner.IsPortal || !inner.IsMirror || outer.IsPortal {
		t.Errorf("flags inner portal=%v mirror=%v, outer portal=%v", inner.IsPortal, inner.IsMirror, outer.IsPortal)
	}
	if !vecApprox(inner.Or.Origin, view.Vec3{200, 0, 0}) {
		t.Errorf("mirrored origin = %v, want (200 0 0)", inner.Or.Origin)
	}
	if !vecApprox(inner.Or.Axis[0], view.Vec3{-1, 0, 0}) {
		t.Errorf("mirrored forward = %v, want (-1 0 0)", inner.Or.Axis[0])
	}
	if !vecApprox(inner.PortalPlane.Normal, view.Vec3{-1, 0, 0}) || !approx(inner.PortalPlane.Dist, -100) {
		t.Errorf("portal plane = %+v", inner.PortalPlane)
	}
	if !vecApprox(outer.Or.Origin, view.Vec3{}) || outer.IsMirror {
		t.Errorf("main view not restored: %+v", outer.Or)
	}
	if outer.ViewCount != 1 || inner.ViewCount != 2 {
		t.Errorf("view counts inner %d, outer %d, want 2, 1", inner.ViewCount, outer.ViewCount)
	}

	// the mirror seen from inside the mirror view is not rendered again
	st := r.Stats()
	if st.PortalViews != 1 || st.PortalRefused != 1 || st.Views != 2 {
		t.Errorf("PortalViews = %d, PortalRefused = %d, Views = %d, want 1, 1, 2", st.PortalViews, st.PortalRefused, st.Views)
	}
	if world.calls != 2 {
		t.Errorf("world asked %d times, want 2", world.calls)
	}

	// portal surfaces lead the main view
	if d := rec.Views[1].Draws[0]; d.Shader != ts.mirror {
		t.Errorf("first draw shader = %d, want the mirror", d.Shader)
	}
}

func TestPortalCamera(t *testing.T) {
	ts := newShaders(t)
	world := &stubWorld{}
	world.add(newFace(100, 20), ts.mirror)

	r, exec := newTestRenderer(t, WithShaders(ts.table), WithWorld(world))
	rec := renderFrame(t, r, exec, testRefDef(), func() {
		r.AddRefEntityToScene(portalEntity(view.Vec3{100, 0, 10}, view.Vec3{500, 500, 0}))
	})

	if len(rec.Views) != 2 {
		t.Fatalf("got %d views, want 2", len(rec.Views))
	}
	inner := rec.Views[0].Parms
	if !inner.IsPortal || inner.IsMirror {
		t.Errorf("portal = %v, mirror = %v, want a non-mirror portal", inner.IsPortal, inner.IsMirror)
	}
	// the entity sits 10 units up the plane, which moves the surface
	// origin with it
	if !vecApprox(inner.Or.Origin, view.Vec3{400, 500, 10}) {
		t.Errorf("portal origin = %v, want (400 500 10)", inner.Or.Origin)
	}
	if !vecApprox(inner.Or.Axis[0], view.Vec3{1, 0, 0}) {
		t.Errorf("portal forward = %v, want (1 0 0)", inner.Or.Axis[0])
	}
	if pvs := world.views[1].PVSOrigin; pvs != (view.Vec3{500, 500, 0}) {
		t.Errorf("PVSOrigin = %v, want the camera position", pvs)
	}
	if world.views[0].PVSOrigin != (view.Vec3{}) {
		t.Errorf("main view PVSOrigin = %v, want the view origin", world.views[0].PVSOrigin)
	}
}

func TestPortalRotationApplied(t *testing.T) {
	ts := newShaders(t)
	world := &stubWorld{}
	world.add(newFace(100, 20), ts.mirror)

	r, exec := newTestRenderer(t, WithShaders(ts.table), WithWorld(world))
	rec := renderFrame(t, r, exec, testRefDef(), func() {
		e := portalEntity(view.Vec3{100, 0, 0}, view.Vec3{500, 500, 0})
		e.SkinNum = 90
		r.AddRefEntityToScene(e)
	})

	inner := rec.Views[0].Parms
	if !vecApprox(inner.Or.Axis[1], view.Vec3{0, 0, 1}) {
		t.Errorf("rolled left axis = %v, want (0 0 1)", inner.Or.Axis[1])
	}
}

func TestPortalRotation(t *testing.T) {
	tests := []struct {
		name string
		ent  frame.RefEntity
		time int32
		want float32
		ok   bool
	}{
		{"none", frame.RefEntity{}, 500, 0, false},
		{"fixed", frame.RefEntity{SkinNum: 45}, 500, 45, true},
		{"speed", frame.RefEntity{OldFrame: 1, Frame: 30}, 2000, 60, true},
		{"swing at rest", frame.RefEntity{OldFrame: 1, SkinNum: 10}, 0, 10, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := portalRotation(&tt.ent, tt.time)
			if ok != tt.ok || !approx(got, tt.want) {
				t.Errorf("portalRotation() = %v, %v, want %v, %v", got, ok, tt.want, tt.ok)
			}
		})
	}

	// the swing stays within four degrees of the base angle
	e := frame.RefEntity{OldFrame: 1, SkinNum: 10}
	for ms := int32(0); ms < 5000; ms += 77 {
		got, _ := portalRotation(&e, ms)
		if got < 6 || got > 14 {
			t.Fatalf("swing at %dms = %v", ms, got)
		}
	}
}

func TestPortalRefusals(t *testing.T) {
	ts := newShaders(t)
	ranged, err := ts.table.Register(shader.Shader{Name: "ranged", Sort: shader.SortPortal, State: shader.OpaqueState(), PortalRange: 50})
	if err != nil {
		t.Fatalf("Register() = %v", err)
	}

	facingAway := newFace(100, 20)
	for i := range facingAway.verts {
		facingAway.verts[i].Normal = view.Vec3{1, 0, 0}
	}

	mirrorAt := func(x float32) frame.RefEntity {
		return portalEntity(view.Vec3{x, 0, 0}, view.Vec3{x, 0, 0})
	}
	tests := []struct {
		name   string
		surf   frame.Surface
		shader int
		ent    *frame.RefEntity
		check  func(Stats) bool
	}{
		{"off to the side", movedFace(newFace(100, 5), view.Vec3{0, 1000, 0}), ts.mirror, nil,
			func(s Stats) bool { return s.PortalOffscreen == 1 }},
		{"facing away", facingAway, ts.mirror, nil,
			func(s Stats) bool { return s.PortalOffscreen == 1 }},
		{"no portal entity", newFace(100, 20), ts.mirror, nil,
			func(s Stats) bool { return s.PortalNoCamera == 1 }},
		{"entity off the plane", newFace(100, 20), ts.mirror, ptr(mirrorAt(300)),
			func(s Stats) bool { return s.PortalNoCamera == 1 }},
		{"beyond portal range", newFace(100, 20), ranged, ptr(portalEntity(view.Vec3{100, 0, 0}, view.Vec3{0, 500, 0})),
			func(s Stats) bool { return s.PortalOffscreen == 1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			world := &stubWorld{}
			world.add(tt.surf, tt.shader)
			r, exec := newTestRenderer(t, WithShaders(ts.table), WithWorld(world))
			rec := renderFrame(t, r, exec, testRefDef(), func() {
				if tt.ent != nil {
					r.AddRefEntityToScene(*tt.ent)
				}
			})
			st := r.Stats()
			if len(rec.Views) != 1 || st.PortalViews != 0 || !tt.check(st) {
				t.Errorf("views = %d, stats = %+v", len(rec.Views), st)
			}
		})
	}
}

func TestPortalWithinRange(t *testing.T) {
	ts := newShaders(t)
	ranged, err := ts.table.Register(shader.Shader{Name: "ranged", Sort: shader.SortPortal, State: shader.OpaqueState(), PortalRange: 500})
	if err != nil {
		t.Fatalf("Register() = %v", err)
	}
	world := &stubWorld{}
	world.add(newFace(100, 20), ranged)

	r, exec := newTestRenderer(t, WithShaders(ts.table), WithWorld(world))
	rec := renderFrame(t, r, exec, testRefDef(), func() {
		r.AddRefEntityToScene(portalEntity(view.Vec3{100, 0, 0}, view.Vec3{0, 500, 0}))
	})
	if len(rec.Views) != 2 || r.Stats().PortalViews != 1 {
		t.Errorf("views = %d, PortalViews = %d, want 2, 1", len(rec.Views), r.Stats().PortalViews)
	}
}

func TestPortalOnly(t *testing.T) {
	ts := newShaders(t)
	world := &stubWorld{}
	world.add(newFace(100, 20), ts.mirror)
	world.add(newFace(50, 5), ts.wall)

	r, exec := newTestRenderer(t, WithShaders(ts.table), WithWorld(world), WithPortalOnly(true))
	rec := renderFrame(t, r, exec, testRefDef(), func() {
		r.AddRefEntityToScene(portalEntity(view.Vec3{100, 0, 0}, view.Vec3{100, 0, 0}))
	})
	if len(rec.Views) != 1 || !rec.Views[0].Parms.IsPortal {
		t.Errorf("views = %d, want the portal view alone", len(rec.Views))
	}
}

func TestPortalViewEntities(t *testing.T) {
	ts := newShaders(t)
	world := &stubWorld{}
	world.add(newFace(100, 20), ts.mirror)

	r, exec := newTestRenderer(t, WithShaders(ts.table), WithWorld(world))
	rec := renderFrame(t, r, exec, testRefDef(), func() {
		r.AddRefEntityToScene(portalEntity(view.Vec3{100, 0, 0}, view.Vec3{100, 0, 0}))

		body := sprite(50, ts.glass)
		body.RenderFX = frame.RFThirdPerson
		r.AddRefEntityToScene(body)

		weapon := sprite(60, ts.smoke)
		weapon.RenderFX = frame.RFFirstPerson
		r.AddRefEntityToScene(weapon)
	})
	if len(rec.Views) != 2 {
		t.Fatalf("got %d views, want 2", len(rec.Views))
	}

	entities := func(v int) map[int]bool {
		m := map[int]bool{}
		for _, d := range rec.Views[v].Draws {
			if d.Entity != frame.EntityWorld {
				m[d.Entity] = true
			}
		}
		return m
	}
	inner, outer := entities(0), entities(1)
	if !inner[1] || inner[2] {
		t.Errorf("mirror view entities = %v, want the body only", inner)
	}
	if outer[1] || !outer[2] {
		t.Errorf("main view entities = %v, want the weapon only", outer)
	}
}

func ptr[T any](v T) *T { return &v }

func TestUnsortedShaderIsFatal(t *testing.T) {
	ts := newShaders(t)
	unsorted, err := ts.table.Register(shader.Shader{Name: "unsorted", State: shader.OpaqueState()})
	if err != nil {
		t.Fatalf("Register() = %v", err)
	}
	world := &stubWorld{}
	world.add(newFace(100, 20), unsorted)

	r, _ := newTestRenderer(t, WithShaders(ts.table), WithWorld(world))
	if err := r.BeginFrame(); err != nil {
		t.Fatalf("BeginFrame() = %v", err)
	}
	// a mirror camera on the face's plane must not turn it into a portal
	r.AddRefEntityToScene(portalEntity(view.Vec3{100, 0, 0}, view.Vec3{100, 0, 0}))
	expectFatal(t, ErrBadSort, func() {
		r.RenderScene(testRefDef())
	})
	if got := r.Stats().PortalViews; got != 0 {
		t.Errorf("PortalViews = %d, want 0", got)
	}
}

func TestOnlyPortalShadersOpenViews(t *testing.T) {
	ts := newShaders(t)
	world := &stubWorld{}
	// sorts right behind portals, sits on the mirror entity's plane
	world.add(newFace(100, 20), ts.sky)

	r, exec := newTestRenderer(t, WithShaders(ts.table), WithWorld(world))
	rec := renderFrame(t, r, exec, testRefDef(), func() {
		r.AddRefEntityToScene(portalEntity(view.Vec3{100, 0, 0}, view.Vec3{100, 0, 0}))
	})
	if len(rec.Views) != 1 || r.Stats().PortalViews != 0 {
		t.Errorf("views = %d, PortalViews = %d, want 1 and 0", len(rec.Views), r.Stats().PortalViews)
	}
}
