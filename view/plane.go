// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package view

import "math"

// Plane types. Axial planes allow cheaper box classification.
const (
	PlaneX uint8 = iota
	PlaneY
	PlaneZ
	PlaneNonAxial
)

// Plane is the set of points p with Normal·p == Dist.
// Points with Normal·p > Dist are in front.
type Plane struct {
	Normal Vec3
	Dist   float32
	// Type is PlaneX/Y/Z for axis-aligned normals, PlaneNonAxial otherwise.
	Type uint8
	// SignBits has bit i set when Normal[i] is negative.
	SignBits uint8
}

// NewPlane returns a plane with Type and SignBits filled in.
func NewPlane(normal Vec3, dist float32) Plane {
	p := Plane{Normal: normal, Dist: dist}
	p.SetTypeAndSignBits()
	return p
}

// PlaneFromPoints returns the plane through a, b and c wound clockwise
// when seen from the front. ok is false for degenerate triangles.
func PlaneFromPoints(a, b, c Vec3) (Plane, bool) {
	d1 := b.Sub(a)
	d2 := c.Sub(a)
	n, l := d2.Cross(d1).Normalize()
	if l == 0 {
		return Plane{}, false
	}
	return NewPlane(n, a.Dot(n)), true
}

// SetTypeAndSignBits recomputes Type and SignBits from Normal.
func (p *Plane) SetTypeAndSignBits() {
	p.Type = PlaneNonAxial
	for i := 0; i < 3; i++ {
		if p.Normal[i] == 1 {
			p.Type = uint8(i)
			break
		}
	}
	p.SignBits = 0
	for i := 0; i < 3; i++ {
		if p.Normal[i] < 0 {
			p.SignBits |= 1 << i
		}
	}
}

// Distance returns the signed distance of pt from the plane.
func (p *Plane) Distance(pt Vec3) float32 {
	return p.Normal.Dot(pt) - p.Dist
}

// Box sides returned by BoxOnPlaneSide.
const (
	SideFront = 1
	SideBack  = 2
	SideCross = SideFront | SideBack
)

// BoxOnPlaneSide classifies b against p using the plane's sign bits to
// pick the two extreme corners instead of testing all eight.
func BoxOnPlaneSide(b Bounds, p *Plane) int {
	if p.Type < PlaneNonAxial {
		switch {
		case p.Dist <= b.Min[p.Type]:
			return SideFront
		case p.Dist >= b.Max[p.Type]:
			return SideBack
		default:
			return SideCross
		}
	}

	var near, far Vec3
	for i := 0; i < 3; i++ {
		if p.SignBits&(1<<i) != 0 {
			near[i], far[i] = b.Max[i], b.Min[i]
		} else {
			near[i], far[i] = b.Min[i], b.Max[i]
		}
	}
	dist1 := p.Normal.Dot(far)
	dist2 := p.Normal.Dot(near)

	sides := 0
	if dist1 >= p.Dist {
		sides = SideFront
	}
	if dist2 < p.Dist {
		sides |= SideBack
	}
	return sides
}

// normalizePlane rescales normal and dist so the normal has unit length.
func normalizePlane(normal Vec3, dist float32) (Vec3, float32) {
	l := float64(normal.Length())
	if l == 0 || math.Abs(l-1) < 1e-6 {
		return normal, dist
	}
	inv := float32(1 / l)
	return normal.Scale(inv), dist * inv
}
