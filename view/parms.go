// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package view

import "math"

// Viewport is a window-relative rectangle in pixels.
type Viewport struct {
	X, Y          int
	Width, Height int
}

// Empty reports whether the viewport covers no pixels.
func (v Viewport) Empty() bool {
	return v.Width <= 0 || v.Height <= 0
}

// Parms is one composed camera. It is a plain value: callers save and
// restore it by copy around a portal render.
type Parms struct {
	// Or is the camera placement. Axis[0] looks forward, Axis[1] left,
	// Axis[2] up.
	Or Orientation
	// World is the orientation used for world geometry; its ModelView is
	// the world-to-eye matrix.
	World Orientation

	// PVSOrigin is the point visibility is computed from. It differs from
	// Or.Origin only in portal views.
	PVSOrigin Vec3

	IsPortal bool
	IsMirror bool
	// PortalPlane clips geometry behind the portal in portal views.
	PortalPlane Plane

	Viewport   Viewport
	FovX, FovY float32

	ProjectionMatrix Mat4
	Frustum          [4]Plane

	// VisBounds accumulates the bounds of visible world geometry and
	// drives the far clip distance.
	VisBounds Bounds
	ZNear     float32
	ZFar      float32

	FrameSceneNum int
	FrameCount    int
	ViewCount     int

	// NoCull makes every cull test report CullClip.
	NoCull bool
}

// SetupModelView builds the world-to-eye matrix for the camera in p.Or:
// the rows of the view rotation are the camera axes, followed by the
// basis flip into eye space.
func (p *Parms) SetupModelView() {
	var viewer Mat4
	o := p.Or.Origin
	for r := 0; r < 3; r++ {
		a := p.Or.Axis[r]
		viewer[r] = a[0]
		viewer[4+r] = a[1]
		viewer[8+r] = a[2]
		viewer[12+r] = -o.Dot(a)
	}
	viewer[15] = 1

	p.Or.ModelView = Concat(viewer, FlipMatrix)
	p.World = Orientation{
		Axis:       IdentityAxis(),
		ViewOrigin: o,
		ModelView:  p.Or.ModelView,
	}
}

// SetFarClip sets ZFar to the distance of the farthest corner of
// VisBounds. Views without world geometry get defaultFar.
func (p *Parms) SetFarClip(noWorld bool, defaultFar float32) {
	if noWorld || p.VisBounds.IsEmpty() {
		p.ZFar = defaultFar
		return
	}
	var farthest float32
	for i := 0; i < 8; i++ {
		d := p.VisBounds.Corner(i).Sub(p.Or.Origin).LengthSquared()
		if d > farthest {
			farthest = d
		}
	}
	p.ZFar = float32(math.Sqrt(float64(farthest)))
}
