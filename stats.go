// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rend

import (
	"context"
	"log/slog"

	"github.com/gogpu/rend/view"
)

// Stats counts the work of one frame.
type Stats struct {
	Frame int
	// Scenes counts RenderScene calls; Views counts composed views,
	// portal views included.
	Scenes int
	Views  int

	DrawSurfs  int
	LitSurfs   int
	Transp     int
	ViewLights int

	// Portal outcomes.
	PortalViews     int
	PortalRefused   int
	PortalOffscreen int
	PortalNoCamera  int

	// Contributions dropped for lack of room.
	DroppedSurfs    int
	DroppedLitSurfs int
	DroppedEntities int
	DroppedLights   int
	DroppedPolys    int
	DroppedRecords  int

	Cull        view.CullStats
	StreamBytes int
}

// Dropped returns the total number of dropped contributions.
func (s *Stats) Dropped() int {
	return s.DroppedSurfs + s.DroppedLitSurfs + s.DroppedEntities +
		s.DroppedLights + s.DroppedPolys + s.DroppedRecords
}

func (s *Stats) logFrame() {
	l := Logger()
	if !l.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	l.Debug("rend: frame composed",
		"frame", s.Frame,
		"views", s.Views,
		"surfs", s.DrawSurfs,
		"transp", s.Transp,
		"lit", s.LitSurfs,
		"lights", s.ViewLights,
		"portals", s.PortalViews,
		"dropped", s.Dropped(),
		"box", []int{s.Cull.BoxIn, s.Cull.BoxClip, s.Cull.BoxOut},
		"sphere", []int{s.Cull.SphereIn, s.Cull.SphereClip, s.Cull.SphereOut},
		"bytes", s.StreamBytes,
	)
}
