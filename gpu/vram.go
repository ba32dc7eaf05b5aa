// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

// VRAM is the shadow copy of video memory. Every write the renderer
// performs on the GPU is mirrored here so that texture decode and
// read-back observe the authoritative state without device round-trips.
//
// Coordinates wrap at the VRAM edges the way the hardware wraps them;
// callers may pass rectangles that exceed the right or bottom edge.
type VRAM struct {
	pixels []uint16
}

// NewVRAM allocates a cleared shadow buffer.
func NewVRAM() *VRAM {
	return &VRAM{pixels: make([]uint16, VRAMSizeInPixels)}
}

// Pixels exposes the backing pixel slice, row-major.
func (v *VRAM) Pixels() []uint16 {
	return v.pixels
}

// Get returns the pixel at (x, y) with wrap-around.
func (v *VRAM) Get(x, y uint32) uint16 {
	return v.pixels[(y&(VRAMHeight-1))*VRAMWidth+(x&(VRAMWidth-1))]
}

// Set stores the pixel at (x, y) with wrap-around.
func (v *VRAM) Set(x, y uint32, value uint16) {
	v.pixels[(y&(VRAMHeight-1))*VRAMWidth+(x&(VRAMWidth-1))] = value
}

// Clear zeroes the whole buffer.
func (v *VRAM) Clear() {
	clear(v.pixels)
}

// Fill writes the 15-bit equivalent of color into the rectangle. The
// mask bit is never set by fill. When interlaced is true, rows belonging
// to activeField are skipped, matching interlaced rendering where the
// inactive field must stay untouched.
func (v *VRAM) Fill(x, y, width, height uint32, color uint32, interlaced bool, activeField uint32) {
	c := RGBA8ToFill555(color)
	for row := uint32(0); row < height; row++ {
		dy := (y + row) & (VRAMHeight - 1)
		if interlaced && (dy&1) == activeField {
			continue
		}
		base := dy * VRAMWidth
		for col := uint32(0); col < width; col++ {
			v.pixels[base+((x+col)&(VRAMWidth-1))] = c
		}
	}
}

// Update copies data (row-major, width*height pixels) into the
// rectangle. When mask.SetWhileDrawing is set, the mask bit is forced on
// every written pixel; when mask.CheckBeforeDraw is set, destination
// pixels whose mask bit is already set are preserved.
func (v *VRAM) Update(x, y, width, height uint32, data []uint16, mask MaskFlags) {
	var orBits uint16
	if mask.SetWhileDrawing {
		orBits = MaskBit
	}
	for row := uint32(0); row < height; row++ {
		base := ((y + row) & (VRAMHeight - 1)) * VRAMWidth
		src := data[row*width : (row+1)*width]
		for col := uint32(0); col < width; col++ {
			idx := base + ((x + col) & (VRAMWidth - 1))
			if mask.CheckBeforeDraw && v.pixels[idx]&MaskBit != 0 {
				continue
			}
			v.pixels[idx] = src[col] | orBits
		}
	}
}

// Copy moves a rectangle within VRAM. Overlapping copies walk rows (and
// columns) in the direction that preserves the source, the same result
// the hardware's per-pixel copy produces. Mask semantics match Update.
func (v *VRAM) Copy(srcX, srcY, dstX, dstY, width, height uint32, mask MaskFlags) {
	var orBits uint16
	if mask.SetWhileDrawing {
		orBits = MaskBit
	}

	rowOrder := make([]uint32, height)
	for i := range rowOrder {
		rowOrder[i] = uint32(i)
	}
	if dstY > srcY {
		for i, j := 0, len(rowOrder)-1; i < j; i, j = i+1, j-1 {
			rowOrder[i], rowOrder[j] = rowOrder[j], rowOrder[i]
		}
	}
	backwardCols := dstX > srcX

	for _, row := range rowOrder {
		sbase := ((srcY + row) & (VRAMHeight - 1)) * VRAMWidth
		dbase := ((dstY + row) & (VRAMHeight - 1)) * VRAMWidth
		for i := uint32(0); i < width; i++ {
			col := i
			if backwardCols {
				col = width - 1 - i
			}
			sidx := sbase + ((srcX + col) & (VRAMWidth - 1))
			didx := dbase + ((dstX + col) & (VRAMWidth - 1))
			if mask.CheckBeforeDraw && v.pixels[didx]&MaskBit != 0 {
				continue
			}
			v.pixels[didx] = v.pixels[sidx] | orBits
		}
	}
}

// Read copies the rectangle out of the shadow, row-major.
func (v *VRAM) Read(x, y, width, height uint32) []uint16 {
	out := make([]uint16, width*height)
	for row := uint32(0); row < height; row++ {
		base := ((y + row) & (VRAMHeight - 1)) * VRAMWidth
		dst := out[row*width : (row+1)*width]
		for col := uint32(0); col < width; col++ {
			dst[col] = v.pixels[base+((x+col)&(VRAMWidth-1))]
		}
	}
	return out
}

// DirtyTracker bounds the VRAM region modified since the last read-back
// so synchronization can upload the smallest possible rectangle.
type DirtyTracker struct {
	rect Rect
}

// NewDirtyTracker returns a clean tracker.
func NewDirtyTracker() *DirtyTracker {
	return &DirtyTracker{rect: InvalidRect()}
}

// Include grows the dirty bounds by the given rectangle, clamped to VRAM.
func (t *DirtyTracker) Include(r Rect) {
	t.rect = t.rect.Include(r.Clamp())
}

// SetFull marks all of VRAM dirty.
func (t *DirtyTracker) SetFull() {
	t.rect = NewRect(0, 0, VRAMWidth, VRAMHeight)
}

// Clear resets the tracker after a read-back.
func (t *DirtyTracker) Clear() {
	t.rect = InvalidRect()
}

// IsDirty reports whether any region is pending.
func (t *DirtyTracker) IsDirty() bool {
	return t.rect.Valid()
}

// Rect returns the current dirty bounds; invalid when clean.
func (t *DirtyTracker) Rect() Rect {
	return t.rect
}

// Intersects reports whether the dirty region overlaps r.
func (t *DirtyTracker) Intersects(r Rect) bool {
	return t.rect.Valid() && t.rect.Intersects(r)
}
