// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package trace

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const overlaySize = 12

var (
	overlayOnce sync.Once
	overlayFont *opentype.Font
	overlayErr  error
)

func loadOverlayFont() (*opentype.Font, error) {
	overlayOnce.Do(func() {
		overlayFont, overlayErr = opentype.Parse(goregular.TTF)
	})
	return overlayFont, overlayErr
}

// drawOverlay prints the frame statistics in the top-left corner.
func (e *Executor) drawOverlay(rec *Record) error {
	f, err := loadOverlayFont()
	if err != nil {
		return fmt.Errorf("trace: parse overlay font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    overlaySize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return fmt.Errorf("trace: overlay face: %w", err)
	}
	defer func() {
		_ = face.Close()
	}()

	line := fmt.Sprintf("frame %d  views %d  draws %d", rec.Frame, len(rec.Views), rec.Draws())
	d := &font.Drawer{
		Dst:  e.canvas,
		Src:  image.NewUniform(color.White),
		Face: face,
		Dot:  fixed.P(2, 2+overlaySize),
	}
	d.DrawString(line)
	return nil
}
