// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package trace

import (
	"fmt"
	"strings"

	"github.com/gogpu/rend/cmdstream"
	"github.com/gogpu/rend/frame"
	"github.com/gogpu/rend/view"
)

// Draw is one draw surface replayed by a view.
type Draw struct {
	// Index is the surface's position in the frame's draw surface arena.
	Index  int
	Entity int
	Shader int
	Kind   frame.SurfaceKind
	Sort   float32
	// Depth is meaningful for transparent surfaces only.
	Depth       float32
	Transparent bool
}

// View is one draw-surfaces record.
type View struct {
	Parms   view.Parms
	NoWorld bool
	Time    int32
	Draws   []Draw

	Lights      int
	LitSurfaces int
}

// Record is everything one frame's stream asked for.
type Record struct {
	Frame uint32
	// Tags lists every record in stream order, end-of-list excluded.
	Tags []cmdstream.Tag
	// Views are the draw-surfaces records; portal views precede the
	// view that contains the portal.
	Views []View

	Pics        int
	Triangles   int
	DepthClears int
	// Captures names the screenshots and video frames produced.
	Captures []string
}

// Draws returns the number of surfaces drawn over all views.
func (r *Record) Draws() int {
	n := 0
	for i := range r.Views {
		n += len(r.Views[i].Draws)
	}
	return n
}

// String formats the record as an indented listing.
func (r *Record) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "frame %d: %d records, %d views, %d draws\n", r.Frame, len(r.Tags), len(r.Views), r.Draws())
	for i := range r.Views {
		v := &r.Views[i]
		o := v.Parms.Or.Origin
		fmt.Fprintf(&b, "  view %d: origin (%g %g %g) portal=%t mirror=%t noworld=%t lights=%d lit=%d\n",
			i, o[0], o[1], o[2], v.Parms.IsPortal, v.Parms.IsMirror, v.NoWorld, v.Lights, v.LitSurfaces)
		for _, d := range v.Draws {
			fmt.Fprintf(&b, "    #%-5d entity=%-4d shader=%-4d %-9s sort=%g", d.Index, d.Entity, d.Shader, d.Kind, d.Sort)
			if d.Transparent {
				fmt.Fprintf(&b, " depth=%.2f", d.Depth)
			}
			b.WriteByte('\n')
		}
	}
	if r.Pics > 0 || r.Triangles > 0 {
		fmt.Fprintf(&b, "  2d: %d pics, %d triangles\n", r.Pics, r.Triangles)
	}
	for _, c := range r.Captures {
		fmt.Fprintf(&b, "  capture %s\n", c)
	}
	return b.String()
}
