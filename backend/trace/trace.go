// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package trace is a software executor that replays command streams
// without a GPU.
//
// It records what every frame asked for (views, draw order, lights, 2D
// primitives, captures) as a [Record], rasterizes stretch pics and
// triangles into an RGBA canvas, and encodes screenshots and video
// frames as PNG, BMP, TIFF or raw RGBA.
//
// Importing the package registers the executor as "trace":
//
//	import _ "github.com/gogpu/rend/backend/trace"
//
//	exec, _ := backend.Get("trace")
package trace

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"sync"

	"github.com/gogpu/rend/backend"
	"github.com/gogpu/rend/cmdstream"
	"github.com/gogpu/rend/frame"
)

// Name is the registry name of the trace executor.
const Name = "trace"

// Errors returned by Execute.
var (
	// ErrRange means a draw-surfaces record points outside the frame arenas.
	ErrRange = errors.New("trace: record range outside frame arenas")

	// ErrFormat means a capture record names an unknown image format.
	ErrFormat = errors.New("trace: unknown image format")
)

func init() {
	backend.Register(Name, func() backend.Executor { return New() })
}

// Default canvas size.
const (
	DefaultWidth  = 640
	DefaultHeight = 480
)

// DefaultHistory is the number of frame records kept.
const DefaultHistory = 16

// Option configures an Executor.
type Option func(*Executor)

// WithSize sets the canvas size.
func WithSize(width, height int) Option {
	return func(e *Executor) {
		if width > 0 && height > 0 {
			e.width, e.height = width, height
		}
	}
}

// WithImages supplies the image drawn for a shader handle by stretch pics
// and triangles. A nil result draws the current color.
func WithImages(images func(shader int) image.Image) Option {
	return func(e *Executor) {
		e.images = images
	}
}

// WithOutput receives every encoded capture. Without it only the most
// recent capture is kept (see LastCapture).
func WithOutput(output func(name string, data []byte) error) Option {
	return func(e *Executor) {
		e.output = output
	}
}

// WithHistory sets how many frame records are kept.
func WithHistory(n int) Option {
	return func(e *Executor) {
		if n > 0 {
			e.history = n
		}
	}
}

// WithOverlay prints frame statistics onto the canvas at swap.
func WithOverlay(enabled bool) Option {
	return func(e *Executor) {
		e.overlay = enabled
	}
}

// WithLogger sets the logger. Nil keeps the silent default.
func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) {
		if l != nil {
			e.log = l
		}
	}
}

// Executor is the trace executor. Execute calls are serialized.
type Executor struct {
	mu sync.Mutex

	width, height int
	history       int
	overlay       bool
	images        func(int) image.Image
	output        func(string, []byte) error
	log           *slog.Logger

	canvas      *image.RGBA
	color       color.NRGBA
	mask        [4]bool
	videoFrames int

	frames   []Record
	lastName string
	lastData []byte
}

// New creates a trace executor.
func New(opts ...Option) *Executor {
	e := &Executor{
		width:   DefaultWidth,
		height:  DefaultHeight,
		history: DefaultHistory,
		log:     slog.New(discard{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.canvas = image.NewRGBA(image.Rect(0, 0, e.width, e.height))
	return e
}

// Name returns "trace".
func (e *Executor) Name() string { return Name }

// SetLogger replaces the logger; nil restores the silent default.
func (e *Executor) SetLogger(l *slog.Logger) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if l == nil {
		l = slog.New(discard{})
	}
	e.log = l
}

// Execute replays s against the arenas of f.
func (e *Executor) Execute(ctx context.Context, f *frame.Frame, s *cmdstream.Stream) error {
	if err := backend.CheckStream(s); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	// draw state starts over every frame
	e.color = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	e.mask = [4]bool{true, true, true, true}

	rec := Record{}
	dec := cmdstream.NewDecoder(s.Bytes())
	for dec.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		tag := dec.Tag()
		rec.Tags = append(rec.Tags, tag)

		var err error
		switch tag {
		case cmdstream.TagFrameBegin:
			rec.Frame = dec.FrameBegin().Frame
		case cmdstream.TagSetColor:
			e.color = toNRGBA(dec.SetColor())
		case cmdstream.TagDrawSurfs:
			err = e.drawSurfs(&rec, f, dec.DrawSurfs())
		case cmdstream.TagStretchPic:
			e.stretchPic(dec.StretchPic())
			rec.Pics++
		case cmdstream.TagTriangle:
			e.triangle(dec.Triangle())
			rec.Triangles++
		case cmdstream.TagClearDepth:
			rec.DepthClears++
		case cmdstream.TagClearColor:
			e.clearColor(dec.ClearColor())
		case cmdstream.TagColorMask:
			e.mask = dec.ColorMask()
		case cmdstream.TagScreenshot:
			err = e.screenshot(&rec, dec.Screenshot())
		case cmdstream.TagVideoFrame:
			err = e.videoFrame(&rec, dec.VideoFrame())
		case cmdstream.TagSwapBuffers:
			dec.SwapBuffers()
			if e.overlay {
				if oerr := e.drawOverlay(&rec); oerr != nil {
					e.log.Warn("trace: overlay disabled", "err", oerr)
					e.overlay = false
				}
			}
		}
		if err != nil {
			return err
		}
	}
	if err := dec.Err(); err != nil {
		return fmt.Errorf("trace: frame %d: %w", rec.Frame, err)
	}

	e.frames = append(e.frames, rec)
	if len(e.frames) > e.history {
		e.frames = e.frames[len(e.frames)-e.history:]
	}
	e.log.Debug("trace: frame executed",
		"frame", rec.Frame, "views", len(rec.Views), "draws", rec.Draws(), "captures", len(rec.Captures))
	return nil
}

func (e *Executor) drawSurfs(rec *Record, f *frame.Frame, r cmdstream.DrawSurfs) error {
	if r.First < 0 || r.Count < 0 || r.First+r.Count > len(f.DrawSurfs) || r.Transp > r.Count {
		return fmt.Errorf("%w: surfaces [%d, %d+%d) of %d", ErrRange, r.First, r.First, r.Count, len(f.DrawSurfs))
	}
	if r.LightFirst < 0 || r.LightCount < 0 || r.LightFirst+r.LightCount > len(f.ViewLights) {
		return fmt.Errorf("%w: lights [%d, %d+%d) of %d", ErrRange, r.LightFirst, r.LightFirst, r.LightCount, len(f.ViewLights))
	}

	v := View{Parms: r.View, NoWorld: r.NoWorld, Time: r.Time, Lights: r.LightCount}
	v.Draws = make([]Draw, 0, r.Count)
	opaque := r.Count - r.Transp
	for i, ds := range f.DrawSurfs[r.First : r.First+r.Count] {
		d := Draw{
			Index:       r.First + i,
			Entity:      ds.Entity,
			Shader:      ds.Shader,
			Sort:        ds.Sort,
			Transparent: i >= opaque,
		}
		if ds.Surface != nil {
			d.Kind = ds.Surface.Kind()
		}
		if d.Transparent {
			d.Depth = ds.Depth
		}
		v.Draws = append(v.Draws, d)
	}
	for _, l := range f.ViewLights[r.LightFirst : r.LightFirst+r.LightCount] {
		for i := l.Head; i >= 0; i = f.LitSurfs[i].Next {
			v.LitSurfaces++
		}
	}
	rec.Views = append(rec.Views, v)
	return nil
}

func (e *Executor) image(shader int) image.Image {
	if e.images == nil {
		return nil
	}
	return e.images(shader)
}

// Frames returns copies of the kept frame records, oldest first.
func (e *Executor) Frames() []Record {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Record(nil), e.frames...)
}

// Last returns the most recent frame record.
func (e *Executor) Last() (Record, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.frames) == 0 {
		return Record{}, false
	}
	return e.frames[len(e.frames)-1], true
}

// Canvas returns a copy of the canvas.
func (e *Executor) Canvas() *image.RGBA {
	e.mu.Lock()
	defer e.mu.Unlock()
	return crop(e.canvas, image.Rectangle{})
}

// LastCapture returns the most recent capture when no output is set.
func (e *Executor) LastCapture() (name string, data []byte) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastName, e.lastData
}
