// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

// RenderCommand is the first word of a draw command. Bits 29-31 select
// the primitive, the remaining attribute bits modify it; bits 0-23 carry
// the base color.
type RenderCommand uint32

// Primitive is the command's primitive class.
type Primitive uint8

const (
	// PrimitivePolygon draws a shaded or textured triangle/quad.
	PrimitivePolygon Primitive = 1

	// PrimitiveLine draws a line or polyline.
	PrimitiveLine Primitive = 2

	// PrimitiveRectangle draws an axis-aligned sprite rectangle.
	PrimitiveRectangle Primitive = 3
)

// RectangleSize is the fixed-size class of a rectangle command.
type RectangleSize uint8

const (
	// RectangleSizeVariable takes the size from the command stream.
	RectangleSizeVariable RectangleSize = 0

	// RectangleSize1x1 draws a single pixel.
	RectangleSize1x1 RectangleSize = 1

	// RectangleSize8x8 draws an 8x8 sprite.
	RectangleSize8x8 RectangleSize = 2

	// RectangleSize16x16 draws a 16x16 sprite.
	RectangleSize16x16 RectangleSize = 3
)

// Color returns the 24-bit base color in command word layout.
func (c RenderCommand) Color() uint32 {
	return uint32(c) & 0xFFFFFF
}

// Primitive returns the primitive class.
func (c RenderCommand) Primitive() Primitive {
	return Primitive((c >> 29) & 7)
}

// RawTextureEnable reports whether texel colors bypass modulation.
func (c RenderCommand) RawTextureEnable() bool {
	return c&(1<<24) != 0
}

// TransparencyEnable reports whether the primitive blends.
func (c RenderCommand) TransparencyEnable() bool {
	return c&(1<<25) != 0
}

// TextureEnable reports whether the primitive samples a texture.
func (c RenderCommand) TextureEnable() bool {
	return c&(1<<26) != 0
}

// QuadPolygon reports whether a polygon command carries four vertices.
func (c RenderCommand) QuadPolygon() bool {
	return c&(1<<27) != 0
}

// PolyLine reports whether a line command chains segments.
func (c RenderCommand) PolyLine() bool {
	return c&(1<<27) != 0
}

// ShadingEnable reports whether vertices carry individual colors.
func (c RenderCommand) ShadingEnable() bool {
	return c&(1<<28) != 0
}

// RectSize returns the fixed-size class of a rectangle command.
func (c RenderCommand) RectSize() RectangleSize {
	return RectangleSize((c >> 27) & 3)
}

// CommandVertex is one decoded vertex of a draw command: a signed
// position after the drawing offset has been applied, a packed color and
// raw texture coordinates.
type CommandVertex struct {
	X     int32
	Y     int32
	Color uint32
	U     uint8
	V     uint8
}

// DrawCommand is a fully decoded primitive handed to the renderer, with
// the draw state captured at decode time.
type DrawCommand struct {
	Command RenderCommand

	// Vertices holds 3 or 4 entries for polygons, 2 per line segment,
	// and 1 (the top-left corner) for rectangles.
	Vertices []CommandVertex

	// Width and Height carry the rectangle size for rectangle commands.
	Width  uint32
	Height uint32

	// DrawMode, Palette and Window capture the sampling state.
	DrawMode DrawModeReg
	Palette  PaletteReg
	Window   TextureWindow
}
