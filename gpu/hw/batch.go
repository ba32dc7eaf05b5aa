// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package hw

import "github.com/eltociear/duckstation/gpu"

// BatchRenderMode selects how a flushed batch handles semi-transparency.
type BatchRenderMode uint8

const (
	// BatchRenderModeTransparencyDisabled draws with blending off.
	BatchRenderModeTransparencyDisabled BatchRenderMode = iota

	// BatchRenderModeTransparentAndOpaque draws opaque and blended
	// texels in one pass. Requires dual-source blending when textured.
	BatchRenderModeTransparentAndOpaque

	// BatchRenderModeOnlyOpaque draws only texels without the
	// semi-transparency flag. First pass of two-pass rendering.
	BatchRenderModeOnlyOpaque

	// BatchRenderModeOnlyTransparent draws only texels with the
	// semi-transparency flag. Second pass of two-pass rendering.
	BatchRenderModeOnlyTransparent
)

// String returns the mode name.
func (m BatchRenderMode) String() string {
	switch m {
	case BatchRenderModeTransparencyDisabled:
		return "TransparencyDisabled"
	case BatchRenderModeTransparentAndOpaque:
		return "TransparentAndOpaque"
	case BatchRenderModeOnlyOpaque:
		return "OnlyOpaque"
	case BatchRenderModeOnlyTransparent:
		return "OnlyTransparent"
	default:
		return "Unknown"
	}
}

// InterlacedRenderMode selects how draws interact with interlaced
// display output.
type InterlacedRenderMode uint8

const (
	// InterlacedRenderModeNone renders progressively.
	InterlacedRenderModeNone InterlacedRenderMode = iota

	// InterlacedRenderModeInterleavedFields discards rows belonging to
	// the inactive field while drawing into an interleaved buffer.
	InterlacedRenderModeInterleavedFields

	// InterlacedRenderModeSeparateFields renders the active field only.
	InterlacedRenderModeSeparateFields
)

// String returns the mode name.
func (m InterlacedRenderMode) String() string {
	switch m {
	case InterlacedRenderModeNone:
		return "None"
	case InterlacedRenderModeInterleavedFields:
		return "InterleavedFields"
	case InterlacedRenderModeSeparateFields:
		return "SeparateFields"
	default:
		return "Unknown"
	}
}

// BatchConfig is the render configuration shared by every vertex in a
// batch. Two primitives may share a flush only if their configurations
// are identical; any difference forces a flush first.
type BatchConfig struct {
	// TextureMode is the texture color depth, or disabled.
	TextureMode gpu.TextureMode

	// TransparencyMode is the active blend equation, or disabled.
	TransparencyMode gpu.TransparencyMode

	// Dithering applies the console's 4x4 dither matrix.
	Dithering bool

	// Interlacing restricts rasterization to the active field.
	Interlacing bool

	// SetMaskWhileDrawing forces the mask bit on drawn pixels, which is
	// the precondition for depth writes.
	SetMaskWhileDrawing bool

	// CheckMaskBeforeDraw skips pixels whose mask bit is already set,
	// emulated with a depth test.
	CheckMaskBeforeDraw bool

	// UseDepthBuffer enables the depth attachment for this batch.
	UseDepthBuffer bool
}

// NeedsTwoPassRendering reports whether the batch must be drawn twice,
// restricted to opaque then transparent texels. Blending is a per-texel
// decision when texturing, so a single fixed blend equation cannot
// express it unless the device supports dual-source blending, and never
// for background-minus-foreground which needs different equations per
// texel class.
func (c BatchConfig) NeedsTwoPassRendering(dualSourceBlend bool) bool {
	if c.TextureMode == gpu.TextureModeDisabled {
		return false
	}
	if c.TransparencyMode == gpu.TransparencyBackgroundMinusForeground {
		return true
	}
	return c.TransparencyMode != gpu.TransparencyDisabled && !dualSourceBlend
}

// RenderMode resolves the single-pass render mode for the batch. Batches
// that need two passes are instead drawn as OnlyOpaque followed by
// OnlyTransparent.
func (c BatchConfig) RenderMode() BatchRenderMode {
	if c.TransparencyMode == gpu.TransparencyDisabled {
		return BatchRenderModeTransparencyDisabled
	}
	return BatchRenderModeTransparentAndOpaque
}
