// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

// The console stores color as 5-5-5-1: five bits per channel and the mask
// bit in bit 15. GPU-side textures use 8-bit RGBA; conversion widens each
// channel by replicating its top bits into the new low bits so that pure
// white stays pure white.

// MaskBit is the per-pixel overdraw-protection flag in a 16-bit pixel.
const MaskBit uint16 = 0x8000

// Convert5To8 widens a 5-bit channel value to 8 bits.
func Convert5To8(c uint8) uint8 {
	return (c << 3) | (c >> 2)
}

// Convert8To5 narrows an 8-bit channel value to 5 bits.
func Convert8To5(c uint8) uint8 {
	return c >> 3
}

// VRAMRGBA5551ToRGBA8888 converts a native 16-bit pixel to packed
// little-endian RGBA8. The mask bit becomes alpha 0xFF, a clear mask bit
// alpha 0x00; the renderer's shaders key semi-transparency off it.
func VRAMRGBA5551ToRGBA8888(color uint16) uint32 {
	r := uint32(Convert5To8(uint8(color & 0x1F)))
	g := uint32(Convert5To8(uint8((color >> 5) & 0x1F)))
	b := uint32(Convert5To8(uint8((color >> 10) & 0x1F)))
	var a uint32
	if color&MaskBit != 0 {
		a = 0xFF
	}
	return r | (g << 8) | (b << 16) | (a << 24)
}

// VRAMRGBA8888ToRGBA5551 converts packed RGBA8 back to the native 16-bit
// format. Any non-zero alpha sets the mask bit.
func VRAMRGBA8888ToRGBA5551(color uint32) uint16 {
	r := uint16(Convert8To5(uint8(color)))
	g := uint16(Convert8To5(uint8(color >> 8)))
	b := uint16(Convert8To5(uint8(color >> 16)))
	var a uint16
	if (color>>24)&0xFF != 0 {
		a = MaskBit
	}
	return r | (g << 5) | (b << 10) | a
}

// RGBA8ToFill555 converts a 24-bit fill color (as carried by fill
// commands, 8 bits per channel) to the 15-bit value written to VRAM.
// Fill never sets the mask bit.
func RGBA8ToFill555(color uint32) uint16 {
	r := uint16(Convert8To5(uint8(color)))
	g := uint16(Convert8To5(uint8(color >> 8)))
	b := uint16(Convert8To5(uint8(color >> 16)))
	return r | (g << 5) | (b << 10)
}
