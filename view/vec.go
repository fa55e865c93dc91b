// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package view

import "math"

// Vec3 is a point or direction in engine space.
// Engine space looks down +X, with +Y to the left and +Z up.
type Vec3 [3]float32

// Add returns v + w.
func (v Vec3) Add(w Vec3) Vec3 {
	return Vec3{v[0] + w[0], v[1] + w[1], v[2] + w[2]}
}

// Sub returns v - w.
func (v Vec3) Sub(w Vec3) Vec3 {
	return Vec3{v[0] - w[0], v[1] - w[1], v[2] - w[2]}
}

// Scale returns v scaled by s.
func (v Vec3) Scale(s float32) Vec3 {
	return Vec3{v[0] * s, v[1] * s, v[2] * s}
}

// MA returns v + w*s (multiply-add).
func (v Vec3) MA(s float32, w Vec3) Vec3 {
	return Vec3{v[0] + w[0]*s, v[1] + w[1]*s, v[2] + w[2]*s}
}

// Neg returns -v.
func (v Vec3) Neg() Vec3 {
	return Vec3{-v[0], -v[1], -v[2]}
}

// Dot returns the dot product of v and w.
func (v Vec3) Dot(w Vec3) float32 {
	return v[0]*w[0] + v[1]*w[1] + v[2]*w[2]
}

// Cross returns the cross product v × w.
func (v Vec3) Cross(w Vec3) Vec3 {
	return Vec3{
		v[1]*w[2] - v[2]*w[1],
		v[2]*w[0] - v[0]*w[2],
		v[0]*w[1] - v[1]*w[0],
	}
}

// LengthSquared returns |v|².
func (v Vec3) LengthSquared() float32 {
	return v.Dot(v)
}

// Length returns |v|.
func (v Vec3) Length() float32 {
	return float32(math.Sqrt(float64(v.Dot(v))))
}

// Normalize returns v scaled to unit length and the original length.
// A zero vector is returned unchanged with length 0.
func (v Vec3) Normalize() (Vec3, float32) {
	l := v.Length()
	if l == 0 {
		return v, 0
	}
	inv := 1 / l
	return v.Scale(inv), l
}

// Perpendicular returns a unit vector perpendicular to the unit vector v.
func (v Vec3) Perpendicular() Vec3 {
	// project the axis with the smallest component onto the plane
	pos, minelem := 0, float32(1)
	for i := 0; i < 3; i++ {
		a := float32(math.Abs(float64(v[i])))
		if a < minelem {
			pos = i
			minelem = a
		}
	}
	var temp Vec3
	temp[pos] = 1
	d := temp.Dot(v)
	dst := temp.MA(-d, v)
	dst, _ = dst.Normalize()
	return dst
}

// RotateAround rotates point p around the unit direction dir by degrees.
func RotateAround(dir, p Vec3, degrees float32) Vec3 {
	rad := float64(degrees) * math.Pi / 180
	s, c := math.Sincos(rad)
	sin, cos := float32(s), float32(c)
	// Rodrigues' rotation formula.
	return p.Scale(cos).
		Add(dir.Cross(p).Scale(sin)).
		Add(dir.Scale(dir.Dot(p) * (1 - cos)))
}

// Bounds is an axis-aligned box.
type Bounds struct {
	Min, Max Vec3
}

// EmptyBounds returns inverted bounds ready for AddPoint.
func EmptyBounds() Bounds {
	return Bounds{
		Min: Vec3{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32},
		Max: Vec3{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32},
	}
}

// IsEmpty reports whether no point has been added.
func (b Bounds) IsEmpty() bool {
	return b.Min[0] > b.Max[0] || b.Min[1] > b.Max[1] || b.Min[2] > b.Max[2]
}

// AddPoint returns b expanded to include p.
func (b Bounds) AddPoint(p Vec3) Bounds {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] {
			b.Min[i] = p[i]
		}
		if p[i] > b.Max[i] {
			b.Max[i] = p[i]
		}
	}
	return b
}

// Union returns the smallest bounds containing b and o.
func (b Bounds) Union(o Bounds) Bounds {
	if o.IsEmpty() {
		return b
	}
	return b.AddPoint(o.Min).AddPoint(o.Max)
}

// Corner returns corner i (0..7); bit 0 selects X, bit 1 Y, bit 2 Z.
func (b Bounds) Corner(i int) Vec3 {
	var v Vec3
	for axis := 0; axis < 3; axis++ {
		if i&(1<<axis) != 0 {
			v[axis] = b.Max[axis]
		} else {
			v[axis] = b.Min[axis]
		}
	}
	return v
}

// Center returns the centroid of b.
func (b Bounds) Center() Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Radius returns half the diagonal of b.
func (b Bounds) Radius() float32 {
	return b.Max.Sub(b.Min).Length() * 0.5
}

// IntersectsSphere reports whether b touches the sphere at c with radius r.
func (b Bounds) IntersectsSphere(c Vec3, r float32) bool {
	var d float32
	for i := 0; i < 3; i++ {
		switch {
		case c[i] < b.Min[i]:
			e := c[i] - b.Min[i]
			d += e * e
		case c[i] > b.Max[i]:
			e := c[i] - b.Max[i]
			d += e * e
		}
	}
	return d <= r*r
}
