// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

// Draw-state registers. Field layouts follow the console's GP0 register
// encodings; types wrap the raw words with accessors rather than
// unpacking into structs so that save states and command parsing stay
// bit-exact.

// PaletteReg locates a palette (CLUT) in VRAM: X base in 16-pixel steps
// over 6 bits, Y base over 9 bits.
type PaletteReg uint16

// XBase returns the palette's left VRAM coordinate.
func (p PaletteReg) XBase() uint32 {
	return uint32(p&0x3F) * 16
}

// YBase returns the palette's VRAM row.
func (p PaletteReg) YBase() uint32 {
	return uint32(p>>6) & 0x1FF
}

// PaletteWidth returns the number of VRAM pixels a palette occupies for
// the given texture mode: 16 entries in 4-bit mode, 256 in 8-bit mode.
func PaletteWidth(mode TextureMode) uint32 {
	if mode == TextureModePalette4Bit {
		return 16
	}
	return 256
}

// DrawModeReg is the texture page / draw mode register.
type DrawModeReg uint16

// TexturePageXBase returns the texture page's left VRAM coordinate
// (64-pixel steps).
func (r DrawModeReg) TexturePageXBase() uint32 {
	return uint32(r&0x0F) * 64
}

// TexturePageYBase returns the texture page's top VRAM coordinate
// (256-line steps).
func (r DrawModeReg) TexturePageYBase() uint32 {
	return uint32((r>>4)&1) * 256
}

// TransparencyMode returns the semi-transparency equation selected for
// blended primitives.
func (r DrawModeReg) TransparencyMode() TransparencyMode {
	return TransparencyMode((r >> 5) & 3)
}

// TextureMode returns the texture color depth.
func (r DrawModeReg) TextureMode() TextureMode {
	return TextureMode((r >> 7) & 3)
}

// DitherEnable reports whether 24-to-15-bit dithering is on.
func (r DrawModeReg) DitherEnable() bool {
	return r&(1<<9) != 0
}

// DrawToDisplayArea reports whether drawing into the displayed area is
// permitted.
func (r DrawModeReg) DrawToDisplayArea() bool {
	return r&(1<<10) != 0
}

// TextureDisable reports whether texturing is globally disabled.
func (r DrawModeReg) TextureDisable() bool {
	return r&(1<<11) != 0
}

// TexturePage returns the page number of the configured texture page in
// the invalidation-page grid.
func (r DrawModeReg) TexturePage() uint8 {
	return uint8(VRAMCoordinateToPage(r.TexturePageXBase(), r.TexturePageYBase()))
}

// TextureWindow repeats a sub-rectangle of the texture page. The masks
// are precomputed AND/OR values applied to texture coordinates.
type TextureWindow struct {
	AndX uint8
	AndY uint8
	OrX  uint8
	OrY  uint8
}

// NewTextureWindow converts the raw 8-pixel-step window register fields
// into AND/OR coordinate masks.
func NewTextureWindow(maskX, maskY, offsetX, offsetY uint8) TextureWindow {
	return TextureWindow{
		AndX: ^(maskX * 8),
		AndY: ^(maskY * 8),
		OrX:  (offsetX & maskX) * 8,
		OrY:  (offsetY & maskY) * 8,
	}
}

// Apply maps a texture coordinate pair through the window.
func (w TextureWindow) Apply(u, v uint8) (uint8, uint8) {
	return (u & w.AndX) | w.OrX, (v & w.AndY) | w.OrY
}

// IsDefault reports whether the window passes coordinates through
// unchanged.
func (w TextureWindow) IsDefault() bool {
	return w.AndX == 0xFF && w.AndY == 0xFF && w.OrX == 0 && w.OrY == 0
}

// DrawingArea is the clip rectangle for rendered primitives, inclusive on
// all edges as the hardware defines it.
type DrawingArea struct {
	Left   uint32
	Top    uint32
	Right  uint32
	Bottom uint32
}

// Valid reports whether the area clips anything at all.
func (a DrawingArea) Valid() bool {
	return a.Right >= a.Left && a.Bottom >= a.Top
}

// DisplayConfig describes scanout: where in VRAM the display area starts,
// its size, and the signal format.
type DisplayConfig struct {
	// VRAMStartX and VRAMStartY locate the displayed region in VRAM.
	VRAMStartX uint32
	VRAMStartY uint32

	// Width and Height are the active display size in VRAM pixels.
	Width  uint32
	Height uint32

	// Interlaced enables 480i field output.
	Interlaced bool

	// VerticalResolution480 selects the 480-line mode (interlaced only).
	VerticalResolution480 bool

	// Depth24 enables 24-bit scanout (unpacked from VRAM, never drawn).
	Depth24 bool

	// ActiveField is the field currently being displayed (0 or 1).
	ActiveField uint32
}

// InterlacedDisplayEnabled reports whether scanout is actively
// interlaced. 480-line modes interleave fields in one buffer; 240-line
// interlaced modes render each field separately.
func (c DisplayConfig) InterlacedDisplayEnabled() bool {
	return c.Interlaced
}

// MaskFlags carry the per-draw mask-bit behavior.
type MaskFlags struct {
	// SetWhileDrawing forces the mask bit on every written pixel.
	SetWhileDrawing bool

	// CheckBeforeDraw skips pixels whose mask bit is already set.
	CheckBeforeDraw bool
}
