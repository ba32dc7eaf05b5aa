// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package device

// LoadOp selects what happens to an attachment at the start of a pass.
type LoadOp uint32

const (
	// LoadOpLoad preserves the existing attachment contents.
	LoadOpLoad LoadOp = iota

	// LoadOpClear clears the attachment to the pass clear value.
	LoadOpClear
)

// ClearColor is an RGBA clear value in linear [0, 1] components.
type ClearColor [4]float32

// ColorAttachment describes the color target of a render pass.
type ColorAttachment struct {
	// Texture is the render target. Must have been created with
	// TextureUsageRenderAttachment.
	Texture Texture

	// Load selects clear-or-preserve at pass start.
	Load LoadOp

	// Clear is the clear value when Load is LoadOpClear.
	Clear ClearColor
}

// DepthAttachment describes the depth target of a render pass.
type DepthAttachment struct {
	// Texture is the depth target.
	Texture Texture

	// Load selects clear-or-preserve at pass start.
	Load LoadOp

	// Clear is the clear depth when Load is LoadOpClear.
	Clear float32
}

// RenderPassDescriptor describes a render pass.
type RenderPassDescriptor struct {
	// Label is an optional debug label for the pass.
	Label string

	// Color is the color attachment.
	Color ColorAttachment

	// Depth is the optional depth attachment.
	Depth *DepthAttachment
}

// ScissorRect restricts rasterization to a pixel rectangle.
type ScissorRect struct {
	X, Y, Width, Height uint32
}

// RenderPass records draw commands into an open pass.
// Calls after End are ignored by backends.
type RenderPass interface {
	// SetPipeline binds a render pipeline for subsequent draws.
	SetPipeline(p Pipeline)

	// SetVertexBuffer binds the vertex buffer at slot 0.
	SetVertexBuffer(b Buffer)

	// SetScissor restricts rasterization to the given rectangle.
	SetScissor(rect ScissorRect)

	// SetTexture binds a texture at binding index slot, with the sampler
	// at slot+1. A nil sampler binds only the texture, for shaders that
	// share a previously bound sampler.
	SetTexture(slot uint32, t Texture, s Sampler)

	// SetUniforms uploads the push-constant style uniform block for
	// subsequent draws.
	SetUniforms(data []byte)

	// Draw draws count vertices starting at first.
	Draw(first, count uint32)

	// End finishes the pass and submits it.
	End()
}
