// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import "testing"

func TestPaletteReg(t *testing.T) {
	// X is in 16-halfword steps, Y is a raw scanline.
	p := PaletteReg(0x3F | (511 << 6))
	if got := p.XBase(); got != 63*16 {
		t.Errorf("XBase() = %d, want %d", got, 63*16)
	}
	if got := p.YBase(); got != 511 {
		t.Errorf("YBase() = %d, want 511", got)
	}

	if got := PaletteWidth(TextureModePalette4Bit); got != 16 {
		t.Errorf("PaletteWidth(4bit) = %d, want 16", got)
	}
	if got := PaletteWidth(TextureModePalette8Bit); got != 256 {
		t.Errorf("PaletteWidth(8bit) = %d, want 256", got)
	}
}

func TestDrawModeReg(t *testing.T) {
	// Page (5, 1), subtractive blend, 8-bit textures, dithering on.
	r := DrawModeReg(5 | (1 << 4) | (2 << 5) | (1 << 7) | (1 << 9))
	if got := r.TexturePageXBase(); got != 5*64 {
		t.Errorf("TexturePageXBase() = %d, want %d", got, 5*64)
	}
	if got := r.TexturePageYBase(); got != 256 {
		t.Errorf("TexturePageYBase() = %d, want 256", got)
	}
	if got := r.TransparencyMode(); got != TransparencyBackgroundMinusForeground {
		t.Errorf("TransparencyMode() = %v", got)
	}
	if got := r.TextureMode(); got != TextureModePalette8Bit {
		t.Errorf("TextureMode() = %v", got)
	}
	if !r.DitherEnable() {
		t.Errorf("DitherEnable() = false")
	}
	if r.TextureDisable() {
		t.Errorf("TextureDisable() = true")
	}
}

func TestTextureWindow(t *testing.T) {
	w := NewTextureWindow(0, 0, 0, 0)
	if !w.IsDefault() {
		t.Errorf("zero window not default")
	}
	u, v := w.Apply(200, 100)
	if u != 200 || v != 100 {
		t.Errorf("default Apply(200,100) = (%d,%d)", u, v)
	}

	// Mask 0x1F repeats a 32-texel window at offset 32.
	w = NewTextureWindow(0x03, 0x03, 0x04, 0x00)
	u, v = w.Apply(200, 100)
	wantU := uint8(200&^(0x03*8)) | (0x04&0x03)*8
	wantV := uint8(100 &^ (0x03 * 8))
	if u != wantU || v != wantV {
		t.Errorf("Apply(200,100) = (%d,%d), want (%d,%d)", u, v, wantU, wantV)
	}
	if w.IsDefault() {
		t.Errorf("windowed config reported default")
	}
}

func TestDisplayConfigInterlaced(t *testing.T) {
	c := DisplayConfig{Interlaced: true, VerticalResolution480: true}
	if !c.InterlacedDisplayEnabled() {
		t.Errorf("480i display not interlaced")
	}
	c.Interlaced = false
	if c.InterlacedDisplayEnabled() {
		t.Errorf("progressive display reported interlaced")
	}
}

func TestRenderCommandDecode(t *testing.T) {
	// Shaded textured quad with transparency.
	c := RenderCommand(0x00123456 |
		(1 << 25) | (1 << 26) | (1 << 27) | (1 << 28) | (1 << 29))
	if got := c.Color(); got != 0x123456 {
		t.Errorf("Color() = %#06x, want 0x123456", got)
	}
	if got := c.Primitive(); got != PrimitivePolygon {
		t.Errorf("Primitive() = %v, want polygon", got)
	}
	if !c.TransparencyEnable() || !c.TextureEnable() || !c.QuadPolygon() || !c.ShadingEnable() {
		t.Errorf("flag decode failed: %#08x", uint32(c))
	}

	r := RenderCommand((3 << 29) | (2 << 27))
	if got := r.Primitive(); got != PrimitiveRectangle {
		t.Errorf("Primitive() = %v, want rectangle", got)
	}
	if got := r.RectSize(); got != RectangleSize8x8 {
		t.Errorf("RectSize() = %v, want 8x8", got)
	}
}
