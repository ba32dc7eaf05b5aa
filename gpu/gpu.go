// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

// VRAM geometry. The console exposes a single 1024x512 image of 16-bit
// pixels; all drawing, texture sampling and CPU transfers address it.
const (
	// VRAMWidth is the width of video memory in 16-bit pixels.
	VRAMWidth = 1024

	// VRAMHeight is the height of video memory in pixels.
	VRAMHeight = 512

	// VRAMSizeInPixels is the total pixel count of video memory.
	VRAMSizeInPixels = VRAMWidth * VRAMHeight

	// VRAMSizeInBytes is the byte size of video memory.
	VRAMSizeInBytes = VRAMSizeInPixels * 2
)

// Page grid. Pages are the granularity of texture-cache invalidation:
// 64x256 pixels, 16 pages across and 2 pages down.
const (
	// VRAMPageWidth is the width of one invalidation page in pixels.
	VRAMPageWidth = 64

	// VRAMPageHeight is the height of one invalidation page in pixels.
	VRAMPageHeight = 256

	// VRAMPagesWide is the number of page columns.
	VRAMPagesWide = VRAMWidth / VRAMPageWidth

	// VRAMPagesHigh is the number of page rows.
	VRAMPagesHigh = VRAMHeight / VRAMPageHeight

	// NumVRAMPages is the total page count.
	NumVRAMPages = VRAMPagesWide * VRAMPagesHigh
)

// Texture pages are the 256x256 sampling windows selected by the draw mode
// register. A texture page covers 4 invalidation pages in direct-color
// mode, 2 in 8-bit palette mode and 1 in 4-bit palette mode, because the
// narrower modes pack several texels per 16-bit VRAM word.
const (
	// TexturePageWidth is the width of a texture page in texels.
	TexturePageWidth = 256

	// TexturePageHeight is the height of a texture page in texels.
	TexturePageHeight = 256
)

// Primitive limits. Primitives wider or taller than these are culled by
// the hardware; rectangles up to the limits are tiled at texture-page
// granularity by the renderer.
const (
	// MaxPrimitiveWidth is the maximum renderable primitive width.
	MaxPrimitiveWidth = 1024

	// MaxPrimitiveHeight is the maximum renderable primitive height.
	MaxPrimitiveHeight = 512
)

// PageIndex returns the page number for page-grid coordinates (px, py).
func PageIndex(px, py uint32) uint32 {
	return py*VRAMPagesWide + px
}

// VRAMCoordinateToPage returns the page number containing the VRAM pixel
// at (x, y).
func VRAMCoordinateToPage(x, y uint32) uint32 {
	return PageIndex(x/VRAMPageWidth, y/VRAMPageHeight)
}

// PageStartX returns the left VRAM coordinate of page pn.
func PageStartX(pn uint32) uint32 {
	return (pn % VRAMPagesWide) * VRAMPageWidth
}

// PageStartY returns the top VRAM coordinate of page pn.
func PageStartY(pn uint32) uint32 {
	return (pn / VRAMPagesWide) * VRAMPageHeight
}
