// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import "fmt"

// Rect is an axis-aligned rectangle in VRAM coordinates. Left/Top are
// inclusive, Right/Bottom exclusive. The zero value is not valid; use
// InvalidRect for an empty accumulator that grows by Include.
type Rect struct {
	Left   uint32
	Top    uint32
	Right  uint32
	Bottom uint32
}

// NewRect builds a rectangle from an origin and size.
func NewRect(x, y, width, height uint32) Rect {
	return Rect{Left: x, Top: y, Right: x + width, Bottom: y + height}
}

// InvalidRect returns an empty rectangle positioned so that the first
// Include collapses to the included rectangle.
func InvalidRect() Rect {
	return Rect{Left: VRAMWidth, Top: VRAMHeight, Right: 0, Bottom: 0}
}

// Valid reports whether the rectangle has positive area.
func (r Rect) Valid() bool {
	return r.Right > r.Left && r.Bottom > r.Top
}

// Width returns the rectangle width, 0 if invalid.
func (r Rect) Width() uint32 {
	if r.Right <= r.Left {
		return 0
	}
	return r.Right - r.Left
}

// Height returns the rectangle height, 0 if invalid.
func (r Rect) Height() uint32 {
	if r.Bottom <= r.Top {
		return 0
	}
	return r.Bottom - r.Top
}

// Include grows the rectangle to the union with other.
func (r Rect) Include(other Rect) Rect {
	if other.Left < r.Left {
		r.Left = other.Left
	}
	if other.Top < r.Top {
		r.Top = other.Top
	}
	if other.Right > r.Right {
		r.Right = other.Right
	}
	if other.Bottom > r.Bottom {
		r.Bottom = other.Bottom
	}
	return r
}

// Intersects reports whether the two rectangles overlap.
func (r Rect) Intersects(other Rect) bool {
	return r.Left < other.Right && r.Right > other.Left &&
		r.Top < other.Bottom && r.Bottom > other.Top
}

// Contains reports whether other lies entirely inside r.
func (r Rect) Contains(other Rect) bool {
	return other.Left >= r.Left && other.Right <= r.Right &&
		other.Top >= r.Top && other.Bottom <= r.Bottom
}

// Clamp limits the rectangle to VRAM bounds.
func (r Rect) Clamp() Rect {
	if r.Right > VRAMWidth {
		r.Right = VRAMWidth
	}
	if r.Bottom > VRAMHeight {
		r.Bottom = VRAMHeight
	}
	return r
}

// String returns a compact representation for logging.
func (r Rect) String() string {
	return fmt.Sprintf("(%d,%d)-(%d,%d)", r.Left, r.Top, r.Right, r.Bottom)
}
