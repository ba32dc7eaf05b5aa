// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import "testing"

func TestConvert5To8Endpoints(t *testing.T) {
	if got := Convert5To8(0); got != 0 {
		t.Errorf("Convert5To8(0) = %d, want 0", got)
	}
	if got := Convert5To8(31); got != 255 {
		t.Errorf("Convert5To8(31) = %d, want 255", got)
	}
	// Round trip: narrowing a widened channel gives the channel back.
	for c := uint8(0); c < 32; c++ {
		if got := Convert8To5(Convert5To8(c)); got != c {
			t.Errorf("Convert8To5(Convert5To8(%d)) = %d", c, got)
		}
	}
}

func TestVRAMRGBA5551ToRGBA8888(t *testing.T) {
	tests := []struct {
		name  string
		color uint16
		want  uint32
	}{
		{"black", 0x0000, 0x00000000},
		{"black with mask", 0x8000, 0xFF000000},
		{"white", 0x7FFF, 0x00FFFFFF},
		{"pure red", 0x001F, 0x000000FF},
		{"pure green", 0x03E0, 0x0000FF00},
		{"pure blue", 0x7C00, 0x00FF0000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := VRAMRGBA5551ToRGBA8888(tt.color); got != tt.want {
				t.Errorf("VRAMRGBA5551ToRGBA8888(%#04x) = %#08x, want %#08x", tt.color, got, tt.want)
			}
		})
	}
}

func TestVRAMColorRoundTrip(t *testing.T) {
	for _, color := range []uint16{0x0000, 0x8000, 0x7FFF, 0xFFFF, 0x1234, 0xABCD} {
		got := VRAMRGBA8888ToRGBA5551(VRAMRGBA5551ToRGBA8888(color))
		if got != color {
			t.Errorf("round trip %#04x = %#04x", color, got)
		}
	}
}

func TestRGBA8ToFill555NeverSetsMask(t *testing.T) {
	for _, color := range []uint32{0x00000000, 0x00FFFFFF, 0xFFFFFFFF, 0x00808080} {
		if got := RGBA8ToFill555(color); got&MaskBit != 0 {
			t.Errorf("RGBA8ToFill555(%#08x) = %#04x sets mask bit", color, got)
		}
	}
	if got := RGBA8ToFill555(0x00FFFFFF); got != 0x7FFF {
		t.Errorf("RGBA8ToFill555(white) = %#04x, want 0x7fff", got)
	}
}
