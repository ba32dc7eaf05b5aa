// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package hw

import "github.com/eltociear/duckstation/gpu"

// Config controls the renderer's quality and emulation options.
// Zero values select conservative defaults; NewRenderer applies them.
type Config struct {
	// ResolutionScale multiplies the native framebuffer resolution for
	// all render targets. 1 renders at native resolution.
	ResolutionScale uint32

	// TrueColor renders in 8-bit-per-channel color instead of emulating
	// the console's 5-bit channels.
	TrueColor bool

	// ScaledDithering applies the dither matrix at the scaled
	// resolution instead of the native one.
	ScaledDithering bool

	// TextureFilter selects the sampling filter for cached textures.
	TextureFilter gpu.TextureFilter

	// DownsampleMode selects how scaled output is reduced back to
	// native resolution for read-back and display.
	DownsampleMode gpu.DownsampleMode

	// DownsampleScale is the box filter reduction factor. 0 means
	// "down to native resolution".
	DownsampleScale uint32
}

// withDefaults returns the configuration with zero fields replaced by
// their defaults.
func (c Config) withDefaults() Config {
	if c.ResolutionScale == 0 {
		c.ResolutionScale = 1
	}
	return c
}
