// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package frame

import "github.com/gogpu/rend/view"

// EntityType selects how an entity generates surfaces.
type EntityType uint8

// Entity types.
const (
	// EntityModel surfaces come from the model collaborator.
	EntityModel EntityType = iota
	EntitySprite
	EntityBeam
	EntityRailCore
	EntityRailRings
	EntityLightning
	// EntityPortalSurface marks the camera of a portal or mirror. It is
	// never drawn.
	EntityPortalSurface
)

// RenderFX flags change how an entity is drawn.
type RenderFX uint32

// Render flags.
const (
	// RFThirdPerson entities are hidden in the primary view and shown
	// only in portal views (the player's own body).
	RFThirdPerson RenderFX = 1 << iota
	// RFFirstPerson entities are hidden in portal views (the view weapon).
	RFFirstPerson
	// RFDepthHack squashes depth so the entity never pokes into walls.
	RFDepthHack
	// RFNoShadow disables shadow casting.
	RFNoShadow
)

// RefEntity is one entity submitted for the current scene.
type RefEntity struct {
	Type     EntityType
	RenderFX RenderFX

	// Model is a handle into the model collaborator's table.
	Model int

	Origin view.Vec3
	Axis   [3]view.Vec3
	// NonNormalizedAxes marks scaled axes.
	NonNormalizedAxes bool

	// OldOrigin is the previous position for interpolation. Portal
	// entities use it as the camera position; equal to Origin means the
	// portal is a mirror.
	OldOrigin view.Vec3

	// Frame and OldFrame drive animation. Portal entities use OldFrame
	// to enable rotation and Frame as the rotation speed.
	Frame    int
	OldFrame int
	// SkinNum doubles as the portal rotation angle in degrees.
	SkinNum int

	// CustomShader overrides the shader of every surface; 0 keeps the
	// model's shaders.
	CustomShader int

	// Radius and Rotation size sprites and beams.
	Radius   float32
	Rotation float32

	ShaderRGBA [4]uint8
}

// ModelSpace reports whether the entity's surfaces are given in its own
// local space. Surfaces of the other entity types are built in world
// space.
func (e *RefEntity) ModelSpace() bool {
	return e.Type == EntityModel
}
