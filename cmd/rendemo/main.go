// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Command rendemo composes a small scene with a mirror, a portal window,
// sprites and dynamic lights, replays it with the trace executor and
// prints what each frame asked the backend to draw.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/gogpu/rend"
	"github.com/gogpu/rend/backend"
	"github.com/gogpu/rend/backend/trace"
	"github.com/gogpu/rend/frame"
	"github.com/gogpu/rend/view"
)

func main() {
	var (
		width   = flag.Int("width", 640, "view width")
		height  = flag.Int("height", 480, "view height")
		frames  = flag.Int("frames", 3, "number of frames to render")
		async   = flag.Bool("async", false, "execute frames on a worker goroutine")
		capture = flag.String("capture", "", "directory for a screenshot of the last frame")
		verbose = flag.Bool("v", false, "log frame statistics")
		list    = flag.Bool("list", false, "list registered executors and exit")
	)
	flag.Parse()

	if *list {
		fmt.Println(strings.Join(backend.Available(), "\n"))
		return
	}
	if *verbose {
		rend.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	opts := []trace.Option{trace.WithSize(*width, *height), trace.WithOverlay(true)}
	if *capture != "" {
		if err := os.MkdirAll(*capture, 0o755); err != nil {
			log.Fatalf("Failed to create capture directory: %v", err)
		}
		opts = append(opts, trace.WithOutput(func(name string, data []byte) error {
			return os.WriteFile(filepath.Join(*capture, name), data, 0o600)
		}))
	}
	tr := trace.New(opts...)

	var exec backend.Executor = tr
	if *async {
		exec = backend.NewAsync(tr, 0)
	}

	shaders, world, err := buildWorld()
	if err != nil {
		log.Fatalf("Failed to build world: %v", err)
	}
	r, err := rend.New(
		rend.WithShaders(shaders.table),
		rend.WithWorld(world),
		rend.WithExecutor(exec),
	)
	if err != nil {
		log.Fatalf("Failed to create renderer: %v", err)
	}

	ctx := context.Background()
	for i := 0; i < *frames; i++ {
		last := i == *frames-1
		if err := renderFrame(ctx, r, shaders, i, *width, *height, last && *capture != ""); err != nil {
			log.Fatalf("Frame %d: %v", i+1, err)
		}
	}
	if err := r.Close(); err != nil {
		log.Fatalf("Failed to close renderer: %v", err)
	}

	for _, rec := range tr.Frames() {
		fmt.Print(rec.String())
	}
	if *capture != "" {
		log.Printf("Captures written to %s\n", *capture)
	}
}

func renderFrame(ctx context.Context, r *rend.Renderer, sh *demoShaders, n, w, h int, shot bool) error {
	if err := r.BeginFrame(); err != nil {
		return err
	}
	time := int32(n * 100)

	// the mirror's camera entity and the portal window's remote camera
	r.AddRefEntityToScene(frame.RefEntity{
		Type:      frame.EntityPortalSurface,
		Origin:    view.Vec3{255, 0, 64},
		OldOrigin: view.Vec3{255, 0, 64},
		Axis:      view.IdentityAxis(),
	})
	r.AddRefEntityToScene(frame.RefEntity{
		Type:      frame.EntityPortalSurface,
		Origin:    view.Vec3{128, -80, 64},
		OldOrigin: view.Vec3{-192, 192, 96},
		Axis:      [3]view.Vec3{{0, -1, 0}, {1, 0, 0}, {0, 0, 1}},
		OldFrame:  1,
		Frame:     15,
	})

	// a torch sprite circling the room and a beam
	a := float64(n) * 0.5
	r.AddRefEntityToScene(frame.RefEntity{
		Type:         frame.EntitySprite,
		Origin:       view.Vec3{128 + float32(64*math.Cos(a)), float32(64 * math.Sin(a)), 48},
		Radius:       8,
		Rotation:     float32(n * 15),
		CustomShader: sh.flame,
	})
	r.AddRefEntityToScene(frame.RefEntity{
		Type:         frame.EntityBeam,
		Origin:       view.Vec3{64, -96, 16},
		OldOrigin:    view.Vec3{200, -96, 112},
		CustomShader: sh.flame,
	})
	r.AddLightToScene(view.Vec3{128, 0, 64}, 160, 1, 0.8, 0.6)
	r.AddAdditiveLightToScene(view.Vec3{200, -96, 112}, 64, 0.2, 0.4, 1)

	r.RenderScene(&rend.RefDef{
		Viewport: view.Viewport{Width: w, Height: h},
		FovX:     90,
		FovY:     fovY(90, w, h),
		Origin:   view.Vec3{0, 0, 64},
		Axis:     view.IdentityAxis(),
		Time:     time,
	})

	r.SetColor([4]float32{1, 1, 1, 0.8})
	r.DrawStretchPic(8, 8, 64, 16, 0, 0, 1, 1, sh.hud)
	if shot {
		r.TakeScreenshot(0, 0, 0, 0, rend.FormatPNG, "")
	}
	return r.EndFrame(ctx)
}

// fovY derives the vertical field of view that keeps pixels square.
func fovY(fovX float32, w, h int) float32 {
	x := float64(w) / math.Tan(float64(fovX)/360*math.Pi)
	return float32(math.Atan2(float64(h), x) * 360 / math.Pi)
}
