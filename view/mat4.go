// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package view

// Mat4 is a 4x4 matrix stored column-major: element (row r, column c) is
// at index c*4+r, the layout graphics APIs upload directly.
type Mat4 [16]float32

// Identity returns the identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// FlipMatrix converts engine space (looking down +X, Z up) into the
// conventional eye space (looking down -Z, Y up).
var FlipMatrix = Mat4{
	0, 0, -1, 0,
	-1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0, 1,
}

// Concat returns the matrix that applies a first and then b.
func Concat(a, b Mat4) Mat4 {
	var out Mat4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			out[i*4+j] = a[i*4+0]*b[0*4+j] +
				a[i*4+1]*b[1*4+j] +
				a[i*4+2]*b[2*4+j] +
				a[i*4+3]*b[3*4+j]
		}
	}
	return out
}

// Row returns row r as (x, y, z, w).
func (m *Mat4) Row(r int) [4]float32 {
	return [4]float32{m[r], m[4+r], m[8+r], m[12+r]}
}

// TransformPoint returns m·(p, 1) as a homogeneous vector.
func (m *Mat4) TransformPoint(p Vec3) [4]float32 {
	var out [4]float32
	for i := 0; i < 4; i++ {
		out[i] = p[0]*m[i+0*4] + p[1]*m[i+1*4] + p[2]*m[i+2*4] + m[i+3*4]
	}
	return out
}

// TransformVec4 returns m·v.
func (m *Mat4) TransformVec4(v [4]float32) [4]float32 {
	var out [4]float32
	for i := 0; i < 4; i++ {
		out[i] = v[0]*m[i+0*4] + v[1]*m[i+1*4] + v[2]*m[i+2*4] + v[3]*m[i+3*4]
	}
	return out
}

// EyeDepth returns the distance in front of the camera of p, i.e. the
// negated eye-space Z of p transformed by the model-view matrix m.
// Larger values are farther away.
func (m *Mat4) EyeDepth(p Vec3) float32 {
	r := m.Row(2)
	return -(r[0]*p[0] + r[1]*p[1] + r[2]*p[2] + r[3])
}
