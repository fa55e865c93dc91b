// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package view

import "math"

// SetupProjection fills the X/Y rows of ProjectionMatrix for a symmetric
// perspective with its image plane at zProj, then builds the frustum.
// The depth row is written separately by SetupProjectionZ once ZFar is
// known.
func (p *Parms) SetupProjection(zProj float32) {
	ymax := zProj * tanHalf(p.FovY)
	ymin := -ymax
	xmax := zProj * tanHalf(p.FovX)
	xmin := -xmax

	width := xmax - xmin
	height := ymax - ymin

	m := &p.ProjectionMatrix
	m[0] = 2 * zProj / width
	m[4] = 0
	m[8] = (xmax + xmin) / width
	m[12] = 0

	m[1] = 0
	m[5] = 2 * zProj / height
	m[9] = (ymax + ymin) / height
	m[13] = 0

	m[3] = 0
	m[7] = 0
	m[11] = -1
	m[15] = 0

	p.SetupFrustum()
}

// SetupProjectionZ writes the depth row of ProjectionMatrix from ZNear and
// ZFar. In portal views the near plane is replaced by PortalPlane (oblique
// near-plane clipping) so nothing behind the portal is drawn.
func (p *Parms) SetupProjectionZ() {
	zNear, zFar := p.ZNear, p.ZFar
	depth := zFar - zNear

	m := &p.ProjectionMatrix
	m[2] = 0
	m[6] = 0
	m[10] = -(zFar + zNear) / depth
	m[14] = -2 * zFar * zNear / depth

	if !p.IsPortal {
		return
	}

	// portal plane in eye space
	n, d := p.PortalPlane.Normal, p.PortalPlane.Dist
	plane := [4]float32{
		-p.Or.Axis[1].Dot(n),
		p.Or.Axis[2].Dot(n),
		-p.Or.Axis[0].Dot(n),
		n.Dot(p.Or.Origin) - d,
	}

	q := [4]float32{
		(sign(plane[0]) + m[8]) / m[0],
		(sign(plane[1]) + m[9]) / m[5],
		-1,
		(1 + m[10]) / m[14],
	}
	dot := plane[0]*q[0] + plane[1]*q[1] + plane[2]*q[2] + plane[3]*q[3]
	if dot == 0 {
		return
	}
	s := 2 / dot
	m[2] = plane[0] * s
	m[6] = plane[1] * s
	m[10] = plane[2]*s + 1
	m[14] = plane[3] * s
}

// SetupFrustum builds the four side planes from the half field of view
// angles and the camera axes. Near and far are handled by the projection.
func (p *Parms) SetupFrustum() {
	ax := p.Or.Axis

	xs, xc := sincosHalf(p.FovX)
	p.Frustum[0].Normal = ax[0].Scale(xs).MA(xc, ax[1])
	p.Frustum[1].Normal = ax[0].Scale(xs).MA(-xc, ax[1])

	ys, yc := sincosHalf(p.FovY)
	p.Frustum[2].Normal = ax[0].Scale(ys).MA(yc, ax[2])
	p.Frustum[3].Normal = ax[0].Scale(ys).MA(-yc, ax[2])

	for i := range p.Frustum {
		f := &p.Frustum[i]
		f.Normal, _ = normalizePlane(f.Normal, 0)
		f.Dist = p.Or.Origin.Dot(f.Normal)
		f.SetTypeAndSignBits()
		// side planes are never axial for culling purposes
		f.Type = PlaneNonAxial
	}
}

// TransformToClip returns the clip-space position of a local point.
func (p *Parms) TransformToClip(or *Orientation, local Vec3) [4]float32 {
	eye := or.ModelView.TransformPoint(local)
	return p.ProjectionMatrix.TransformVec4(eye)
}

func tanHalf(fovDegrees float32) float32 {
	return float32(math.Tan(float64(fovDegrees) * math.Pi / 360))
}

func sincosHalf(fovDegrees float32) (float32, float32) {
	s, c := math.Sincos(float64(fovDegrees) / 180 * math.Pi * 0.5)
	return float32(s), float32(c)
}

func sign(f float32) float32 {
	switch {
	case f > 0:
		return 1
	case f < 0:
		return -1
	}
	return 0
}
