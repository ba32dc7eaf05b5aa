// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import "fmt"

// TextureMode is the color depth used when sampling a texture page.
// The numeric values match the draw mode register encoding.
type TextureMode uint8

const (
	// TextureModePalette4Bit packs four 4-bit palette indices per VRAM word.
	TextureModePalette4Bit TextureMode = 0

	// TextureModePalette8Bit packs two 8-bit palette indices per VRAM word.
	TextureModePalette8Bit TextureMode = 1

	// TextureModeDirect16Bit maps VRAM words 1:1 to texels.
	TextureModeDirect16Bit TextureMode = 2

	// TextureModeReservedDirect16Bit aliases direct color on real hardware.
	TextureModeReservedDirect16Bit TextureMode = 3

	// TextureModeDisabled draws untextured primitives.
	TextureModeDisabled TextureMode = 4
)

// IsPaletted returns true for the 4-bit and 8-bit palette modes.
func (m TextureMode) IsPaletted() bool {
	return m < TextureModeDirect16Bit
}

// String returns the mode name.
func (m TextureMode) String() string {
	switch m {
	case TextureModePalette4Bit:
		return "Palette4Bit"
	case TextureModePalette8Bit:
		return "Palette8Bit"
	case TextureModeDirect16Bit:
		return "Direct16Bit"
	case TextureModeReservedDirect16Bit:
		return "ReservedDirect16Bit"
	case TextureModeDisabled:
		return "Disabled"
	default:
		return fmt.Sprintf("TextureMode(%d)", uint8(m))
	}
}

// TransparencyMode selects the blend equation for semi-transparent
// primitives. Whether a given texel actually blends is decided per pixel
// by its mask bit, not per primitive.
type TransparencyMode uint8

const (
	// TransparencyHalfBackgroundPlusHalfForeground is B/2 + F/2.
	TransparencyHalfBackgroundPlusHalfForeground TransparencyMode = 0

	// TransparencyBackgroundPlusForeground is B + F.
	TransparencyBackgroundPlusForeground TransparencyMode = 1

	// TransparencyBackgroundMinusForeground is B - F.
	TransparencyBackgroundMinusForeground TransparencyMode = 2

	// TransparencyBackgroundPlusQuarterForeground is B + F/4.
	TransparencyBackgroundPlusQuarterForeground TransparencyMode = 3

	// TransparencyDisabled draws fully opaque.
	TransparencyDisabled TransparencyMode = 4
)

// String returns the blend equation name.
func (m TransparencyMode) String() string {
	switch m {
	case TransparencyHalfBackgroundPlusHalfForeground:
		return "HalfBackgroundPlusHalfForeground"
	case TransparencyBackgroundPlusForeground:
		return "BackgroundPlusForeground"
	case TransparencyBackgroundMinusForeground:
		return "BackgroundMinusForeground"
	case TransparencyBackgroundPlusQuarterForeground:
		return "BackgroundPlusQuarterForeground"
	case TransparencyDisabled:
		return "Disabled"
	default:
		return fmt.Sprintf("TransparencyMode(%d)", uint8(m))
	}
}

// DownsampleMode selects how scaled framebuffers are reduced to native
// resolution for read-back and display.
type DownsampleMode uint8

const (
	// DownsampleDisabled presents at the scaled resolution.
	DownsampleDisabled DownsampleMode = iota

	// DownsampleBox averages each scale x scale block.
	DownsampleBox

	// DownsampleAdaptive blends mip levels weighted by local contrast.
	DownsampleAdaptive
)

// String returns the downsample mode name.
func (m DownsampleMode) String() string {
	switch m {
	case DownsampleDisabled:
		return "Disabled"
	case DownsampleBox:
		return "Box"
	case DownsampleAdaptive:
		return "Adaptive"
	default:
		return fmt.Sprintf("DownsampleMode(%d)", uint8(m))
	}
}

// TextureFilter selects the sampling filter applied to cached textures.
type TextureFilter uint8

const (
	// TextureFilterNearest is the console-accurate point filter.
	TextureFilterNearest TextureFilter = iota

	// TextureFilterBilinear smooths texel transitions.
	TextureFilterBilinear
)

// String returns the filter name.
func (f TextureFilter) String() string {
	switch f {
	case TextureFilterNearest:
		return "Nearest"
	case TextureFilterBilinear:
		return "Bilinear"
	default:
		return fmt.Sprintf("TextureFilter(%d)", uint8(f))
	}
}
