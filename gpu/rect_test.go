// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import "testing"

func TestInvalidRectInclude(t *testing.T) {
	r := InvalidRect()
	if r.Valid() {
		t.Fatalf("InvalidRect().Valid() = true")
	}

	r = r.Include(NewRect(100, 50, 32, 16))
	want := Rect{Left: 100, Top: 50, Right: 132, Bottom: 66}
	if r != want {
		t.Errorf("first Include = %v, want %v", r, want)
	}
	if !r.Valid() {
		t.Errorf("rect invalid after Include")
	}

	r = r.Include(NewRect(90, 60, 8, 8))
	want = Rect{Left: 90, Top: 50, Right: 132, Bottom: 68}
	if r != want {
		t.Errorf("second Include = %v, want %v", r, want)
	}
}

func TestRectIntersects(t *testing.T) {
	a := NewRect(0, 0, 64, 64)
	tests := []struct {
		name string
		b    Rect
		want bool
	}{
		{"overlapping", NewRect(32, 32, 64, 64), true},
		{"contained", NewRect(16, 16, 8, 8), true},
		{"touching edge", NewRect(64, 0, 16, 16), false},
		{"disjoint", NewRect(128, 128, 16, 16), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Intersects(tt.b); got != tt.want {
				t.Errorf("Intersects(%v) = %v, want %v", tt.b, got, tt.want)
			}
			if got := tt.b.Intersects(a); got != tt.want {
				t.Errorf("Intersects is not symmetric for %v", tt.b)
			}
		})
	}
}

func TestRectContains(t *testing.T) {
	a := NewRect(0, 0, 64, 64)
	if !a.Contains(NewRect(0, 0, 64, 64)) {
		t.Errorf("rect does not contain itself")
	}
	if !a.Contains(NewRect(10, 10, 10, 10)) {
		t.Errorf("rect does not contain inner rect")
	}
	if a.Contains(NewRect(60, 60, 10, 10)) {
		t.Errorf("rect contains overhanging rect")
	}
}

func TestRectClamp(t *testing.T) {
	r := NewRect(1000, 500, 100, 100).Clamp()
	if r.Right != VRAMWidth || r.Bottom != VRAMHeight {
		t.Errorf("Clamp() = %v, want clamped to %dx%d", r, VRAMWidth, VRAMHeight)
	}
	if r.Width() != 24 || r.Height() != 12 {
		t.Errorf("clamped size = %dx%d, want 24x12", r.Width(), r.Height())
	}
}

func TestPageMapping(t *testing.T) {
	if n := VRAMCoordinateToPage(0, 0); n != 0 {
		t.Errorf("page of origin = %d, want 0", n)
	}
	if n := VRAMCoordinateToPage(VRAMWidth-1, VRAMHeight-1); n != NumVRAMPages-1 {
		t.Errorf("page of far corner = %d, want %d", n, NumVRAMPages-1)
	}
	// A second row page starts one page stride down.
	n := VRAMCoordinateToPage(0, VRAMPageHeight)
	if n != VRAMPagesWide {
		t.Errorf("page of second row = %d, want %d", n, VRAMPagesWide)
	}
	for pn := uint32(0); pn < NumVRAMPages; pn++ {
		if got := VRAMCoordinateToPage(PageStartX(pn), PageStartY(pn)); got != pn {
			t.Errorf("page %d round trip = %d", pn, got)
		}
	}
}
