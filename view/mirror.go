// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package view

// MirrorPoint carries a point expressed relative to surface into the
// same relative position around camera.
func MirrorPoint(in Vec3, surface, camera *Orientation) Vec3 {
	local := in.Sub(surface.Origin)
	var out Vec3
	for i := 0; i < 3; i++ {
		out = out.MA(local.Dot(surface.Axis[i]), camera.Axis[i])
	}
	return out.Add(camera.Origin)
}

// MirrorVector is MirrorPoint for directions.
func MirrorVector(in Vec3, surface, camera *Orientation) Vec3 {
	var out Vec3
	for i := 0; i < 3; i++ {
		out = out.MA(in.Dot(surface.Axis[i]), camera.Axis[i])
	}
	return out
}

// ClipCodes returns the clip-space outcodes of a homogeneous point. Axis j
// sets bit 2j when clip[j] >= w and bit 2j+1 when clip[j] <= -w.
func ClipCodes(clip [4]float32) uint8 {
	var code uint8
	for j := 0; j < 3; j++ {
		switch {
		case clip[j] >= clip[3]:
			code |= 1 << (j * 2)
		case clip[j] <= -clip[3]:
			code |= 1 << (j*2 + 1)
		}
	}
	return code
}
