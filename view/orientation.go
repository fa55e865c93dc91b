// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package view

// Orientation places a local coordinate frame in the world.
type Orientation struct {
	Origin Vec3
	Axis   [3]Vec3
	// ViewOrigin is the viewer's position in this frame's local space.
	ViewOrigin Vec3
	// ModelView transforms local points into eye space.
	ModelView Mat4
}

// IdentityAxis returns the engine basis: forward, left, up.
func IdentityAxis() [3]Vec3 {
	return [3]Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

// LocalPointToWorld transforms a point from local into world space.
func (o *Orientation) LocalPointToWorld(local Vec3) Vec3 {
	return o.Origin.
		MA(local[0], o.Axis[0]).
		MA(local[1], o.Axis[1]).
		MA(local[2], o.Axis[2])
}

// LocalNormalToWorld rotates a direction from local into world space.
func (o *Orientation) LocalNormalToWorld(local Vec3) Vec3 {
	return Vec3{}.
		MA(local[0], o.Axis[0]).
		MA(local[1], o.Axis[1]).
		MA(local[2], o.Axis[2])
}

// WorldToLocal transforms a world point into local space.
func (o *Orientation) WorldToLocal(world Vec3) Vec3 {
	d := world.Sub(o.Origin)
	return Vec3{d.Dot(o.Axis[0]), d.Dot(o.Axis[1]), d.Dot(o.Axis[2])}
}

// WorldToScaledLocal is WorldToLocal for axes that all carry the same
// scale, the length of Axis[0].
func (o *Orientation) WorldToScaledLocal(world Vec3) Vec3 {
	l := o.WorldToLocal(world)
	if s := o.Axis[0].LengthSquared(); s != 0 {
		return l.Scale(1 / s)
	}
	return l
}

// RotateForEntity returns the orientation of an entity placed at origin
// with the given axes, as seen from p. nonNormalized marks scaled axes:
// the local view origin is then divided by the axis length.
func (p *Parms) RotateForEntity(origin Vec3, axis [3]Vec3, nonNormalized bool) Orientation {
	or := Orientation{Origin: origin, Axis: axis}

	var local Mat4
	local[0], local[4], local[8], local[12] = axis[0][0], axis[1][0], axis[2][0], origin[0]
	local[1], local[5], local[9], local[13] = axis[0][1], axis[1][1], axis[2][1], origin[1]
	local[2], local[6], local[10], local[14] = axis[0][2], axis[1][2], axis[2][2], origin[2]
	local[15] = 1
	or.ModelView = Concat(local, p.World.ModelView)

	delta := p.Or.Origin.Sub(origin)
	scale := float32(1)
	if nonNormalized {
		if l := axis[0].Length(); l != 0 {
			scale = 1 / l
		}
	}
	for i := 0; i < 3; i++ {
		or.ViewOrigin[i] = delta.Dot(axis[i]) * scale
	}
	return or
}
