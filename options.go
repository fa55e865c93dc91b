// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rend

import (
	"github.com/gogpu/rend/backend"
	"github.com/gogpu/rend/cmdstream"
	"github.com/gogpu/rend/frame"
	"github.com/gogpu/rend/shader"
)

// Defaults.
const (
	// DefaultZNear is the near clip distance and projection plane.
	DefaultZNear = 4
	// DefaultFar is the far clip distance of views without world geometry.
	DefaultFar = 2048
)

// Option configures a Renderer during creation.
//
// Example:
//
//	r, err := rend.New(
//	    rend.WithShaders(shaders),
//	    rend.WithWorld(bsp),
//	    rend.WithExecutor(backend.NewAsync(exec, 0)),
//	)
type Option func(*config)

// config holds the Renderer configuration.
type config struct {
	world   World
	models  Models
	shaders *shader.Table
	exec    backend.Executor

	limits     frame.Limits
	streamSize int

	noCull           bool
	noSort           bool
	ignoreShaderSort bool
	portalOnly       bool

	zNear      float32
	defaultFar float32
	depth      DepthPolicy
}

func defaultConfig() config {
	return config{
		limits:     frame.DefaultLimits(),
		streamSize: cmdstream.DefaultSize,
		zNear:      DefaultZNear,
		defaultFar: DefaultFar,
		depth:      DefaultDepthPolicy(),
	}
}

// WithWorld sets the world collaborator. Without one every view renders
// as if RDFNoWorldModel were set.
func WithWorld(w World) Option {
	return func(c *config) {
		c.world = w
	}
}

// WithModels sets the collaborator that generates surfaces of model
// entities. Without one model entities add nothing.
func WithModels(m Models) Option {
	return func(c *config) {
		c.models = m
	}
}

// WithShaders sets the shader table. New creates an empty table (holding
// only the default shader) when none is given.
func WithShaders(t *shader.Table) Option {
	return func(c *config) {
		c.shaders = t
	}
}

// WithExecutor sets the executor EndFrame hands finished streams to.
// Without one streams are kept for inspection through LastStream.
func WithExecutor(e backend.Executor) Option {
	return func(c *config) {
		c.exec = e
	}
}

// WithLimits sets the per-frame arena capacities.
func WithLimits(l frame.Limits) Option {
	return func(c *config) {
		c.limits = l
	}
}

// WithCommandBufferSize sets the byte limit of each frame's command
// stream. Records past the limit are dropped.
func WithCommandBufferSize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.streamSize = n
		}
	}
}

// WithNoCull disables frustum culling; every test reports a clipped
// volume. Meant for debugging.
func WithNoCull(on bool) Option {
	return func(c *config) {
		c.noCull = on
	}
}

// WithNoSort skips the depth sort of transparent surfaces; they draw in
// key order.
func WithNoSort(on bool) Option {
	return func(c *config) {
		c.noSort = on
	}
}

// WithIgnoreShaderSort orders transparent surfaces by depth alone,
// ignoring the shaders' sort classes.
func WithIgnoreShaderSort(on bool) Option {
	return func(c *config) {
		c.ignoreShaderSort = on
	}
}

// WithPortalOnly stops a view right after its first portal view has
// rendered. Meant for debugging portals.
func WithPortalOnly(on bool) Option {
	return func(c *config) {
		c.portalOnly = on
	}
}

// WithZNear sets the near clip distance.
func WithZNear(z float32) Option {
	return func(c *config) {
		if z > 0 {
			c.zNear = z
		}
	}
}

// WithDefaultFar sets the far clip distance of views without world
// geometry.
func WithDefaultFar(z float32) Option {
	return func(c *config) {
		if z > 0 {
			c.defaultFar = z
		}
	}
}

// WithDepthPolicy replaces the per-kind depth rules of transparent
// surfaces. Kinds missing from p use the surface bounds.
func WithDepthPolicy(p DepthPolicy) Option {
	return func(c *config) {
		if p != nil {
			c.depth = p
		}
	}
}
