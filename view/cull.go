// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package view

// CullResult classifies a volume against the view frustum.
type CullResult uint8

const (
	// CullIn means entirely inside all four side planes.
	CullIn CullResult = iota
	// CullClip means crossing at least one plane.
	CullClip
	// CullOut means entirely outside at least one plane.
	CullOut
)

// String returns the result name.
func (c CullResult) String() string {
	switch c {
	case CullIn:
		return "in"
	case CullClip:
		return "clip"
	case CullOut:
		return "out"
	}
	return "unknown"
}

// CullStats counts cull outcomes. Culling never writes to Parms; callers
// that want counters pass a *CullStats.
type CullStats struct {
	BoxIn, BoxClip, BoxOut          int
	SphereIn, SphereClip, SphereOut int
}

// Add accumulates o into s.
func (s *CullStats) Add(o CullStats) {
	s.BoxIn += o.BoxIn
	s.BoxClip += o.BoxClip
	s.BoxOut += o.BoxOut
	s.SphereIn += o.SphereIn
	s.SphereClip += o.SphereClip
	s.SphereOut += o.SphereOut
}

func (s *CullStats) box(r CullResult) CullResult {
	if s != nil {
		switch r {
		case CullIn:
			s.BoxIn++
		case CullClip:
			s.BoxClip++
		case CullOut:
			s.BoxOut++
		}
	}
	return r
}

func (s *CullStats) sphere(r CullResult) CullResult {
	if s != nil {
		switch r {
		case CullIn:
			s.SphereIn++
		case CullClip:
			s.SphereClip++
		case CullOut:
			s.SphereOut++
		}
	}
	return r
}

// CullBox classifies a world-space box.
func (p *Parms) CullBox(b Bounds, st *CullStats) CullResult {
	if p.NoCull {
		return CullClip
	}
	anyClip := false
	for i := range p.Frustum {
		switch BoxOnPlaneSide(b, &p.Frustum[i]) {
		case SideBack:
			return st.box(CullOut)
		case SideCross:
			anyClip = true
		}
	}
	if anyClip {
		return st.box(CullClip)
	}
	return st.box(CullIn)
}

// CullLocalBox classifies a box given in the local space of or. All eight
// corners are transformed; a plane with every corner behind it culls the
// box immediately.
func (p *Parms) CullLocalBox(or *Orientation, b Bounds, st *CullStats) CullResult {
	if p.NoCull {
		return CullClip
	}

	var corners [8]Vec3
	for i := range corners {
		corners[i] = or.LocalPointToWorld(b.Corner(i))
	}

	anyBack := false
	for i := range p.Frustum {
		f := &p.Frustum[i]
		front, back := false, false
		for j := range corners {
			if corners[j].Dot(f.Normal) > f.Dist {
				front = true
				if back {
					break
				}
			} else {
				back = true
			}
		}
		if !front {
			return st.box(CullOut)
		}
		if back {
			anyBack = true
		}
	}
	if anyBack {
		return st.box(CullClip)
	}
	return st.box(CullIn)
}

// CullPointAndRadius classifies a world-space sphere.
func (p *Parms) CullPointAndRadius(pt Vec3, radius float32, st *CullStats) CullResult {
	if p.NoCull {
		return CullClip
	}
	clipped := false
	for i := range p.Frustum {
		d := p.Frustum[i].Distance(pt)
		if d < -radius {
			return st.sphere(CullOut)
		}
		if d <= radius {
			clipped = true
		}
	}
	if clipped {
		return st.sphere(CullClip)
	}
	return st.sphere(CullIn)
}

// CullLocalPointAndRadius classifies a sphere centred on a local point.
func (p *Parms) CullLocalPointAndRadius(or *Orientation, pt Vec3, radius float32, st *CullStats) CullResult {
	return p.CullPointAndRadius(or.LocalPointToWorld(pt), radius, st)
}
