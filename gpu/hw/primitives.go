// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package hw

import (
	"math"

	"github.com/eltociear/duckstation/gpu"
)

// Primitive expansion. Every console primitive becomes a run of
// triangle-list vertices: polygons triangulate, lines grow into
// screen-space quads, rectangles split into texture-page-sized tiles so
// texture coordinates never wrap within one tile.

// buildVertex converts one command vertex, applying the drawing offset
// and the texture window.
func (r *Renderer) buildVertex(cv gpu.CommandVertex, cmd *gpu.DrawCommand, depth float32, uvLimits uint32) Vertex {
	u, v := cmd.Window.Apply(cv.U, cv.V)
	return Vertex{
		X:        float32(cv.X + r.offsetX),
		Y:        float32(cv.Y + r.offsetY),
		Z:        depth,
		W:        1,
		Color:    cv.Color & 0xFFFFFF,
		TexPage:  PackTexPage(cmd.DrawMode, cmd.Palette),
		U:        uint16(u),
		V:        uint16(v),
		UVLimits: uvLimits,
	}
}

// polygonUVLimits computes the packed UV clamp bounds over the polygon's
// vertices after the texture window is applied.
func polygonUVLimits(cmd *gpu.DrawCommand, vertices []gpu.CommandVertex) uint32 {
	minU, minV := uint8(0xFF), uint8(0xFF)
	maxU, maxV := uint8(0), uint8(0)
	for _, cv := range vertices {
		u, v := cmd.Window.Apply(cv.U, cv.V)
		minU = min(minU, u)
		minV = min(minV, v)
		maxU = max(maxU, u)
		maxV = max(maxV, v)
	}
	return PackUVLimits(minU, minV, maxU, maxV)
}

// primitiveBounds returns the clipped VRAM rectangle a vertex run
// covers, offset already applied. The second result is false when the
// primitive is culled for exceeding the renderable extent.
func (r *Renderer) primitiveBounds(vertices []Vertex) (gpu.Rect, bool) {
	minX, minY := int32(math.MaxInt32), int32(math.MaxInt32)
	maxX, maxY := int32(math.MinInt32), int32(math.MinInt32)
	for _, v := range vertices {
		x, y := int32(v.X), int32(v.Y)
		minX = min(minX, x)
		minY = min(minY, y)
		maxX = max(maxX, int32(math.Ceil(float64(v.X))))
		maxY = max(maxY, int32(math.Ceil(float64(v.Y))))
	}
	if maxX-minX > gpu.MaxPrimitiveWidth || maxY-minY > gpu.MaxPrimitiveHeight {
		return gpu.Rect{}, false
	}

	clip := gpu.Rect{
		Left:   r.drawingArea.Left,
		Top:    r.drawingArea.Top,
		Right:  r.drawingArea.Right + 1,
		Bottom: r.drawingArea.Bottom + 1,
	}
	minX = max(minX, 0)
	minY = max(minY, 0)
	bounds := gpu.Rect{
		Left:   uint32(minX),
		Top:    uint32(minY),
		Right:  uint32(max(maxX, 0)),
		Bottom: uint32(max(maxY, 0)),
	}
	bounds = bounds.Clamp()
	if !bounds.Intersects(clip) {
		return gpu.Rect{}, false
	}
	if bounds.Left < clip.Left {
		bounds.Left = clip.Left
	}
	if bounds.Top < clip.Top {
		bounds.Top = clip.Top
	}
	if bounds.Right > clip.Right {
		bounds.Right = clip.Right
	}
	if bounds.Bottom > clip.Bottom {
		bounds.Bottom = clip.Bottom
	}
	return bounds, bounds.Valid()
}

// expandPolygon appends the triangle-list vertices for a three or four
// vertex polygon. Quads triangulate as (0,1,2) and (2,1,3), matching the
// console's vertex submission order for flipped quads.
func (r *Renderer) expandPolygon(cmd *gpu.DrawCommand, depth float32, dst []Vertex) []Vertex {
	limits := polygonUVLimits(cmd, cmd.Vertices)
	v := func(i int) Vertex { return r.buildVertex(cmd.Vertices[i], cmd, depth, limits) }

	dst = append(dst, v(0), v(1), v(2))
	if cmd.Command.QuadPolygon() && len(cmd.Vertices) >= 4 {
		dst = append(dst, v(2), v(1), v(3))
	}
	return dst
}

// expandLine appends two triangles forming a unit-width quad along the
// line segment. Degenerate zero-length lines still produce one pixel.
func (r *Renderer) expandLine(cmd *gpu.DrawCommand, depth float32, dst []Vertex) []Vertex {
	p0 := r.buildVertex(cmd.Vertices[0], cmd, depth, 0)
	p1 := r.buildVertex(cmd.Vertices[1], cmd, depth, 0)

	dx := p1.X - p0.X
	dy := p1.Y - p0.Y
	var px, py float32
	if dx == 0 && dy == 0 {
		px, py = 0.5, 0.5
		p1.X += 1
		p1.Y += 1
	} else {
		length := float32(math.Hypot(float64(dx), float64(dy)))
		px = -dy / length * 0.5
		py = dx / length * 0.5
	}

	corner := func(base Vertex, ox, oy float32) Vertex {
		base.X += ox
		base.Y += oy
		return base
	}
	a := corner(p0, -px, -py)
	b := corner(p0, px, py)
	c := corner(p1, -px, -py)
	d := corner(p1, px, py)
	return append(dst, a, b, c, c, b, d)
}

// expandRectangle appends the tile set for a rectangle. Tiles stop at
// every 256-texel texture coordinate boundary so sampling never wraps
// inside one tile; each tile carries its own UV clamp.
func (r *Renderer) expandRectangle(cmd *gpu.DrawCommand, depth float32, dst []Vertex) []Vertex {
	width, height := cmd.Width, cmd.Height
	switch cmd.Command.RectSize() {
	case gpu.RectangleSize1x1:
		width, height = 1, 1
	case gpu.RectangleSize8x8:
		width, height = 8, 8
	case gpu.RectangleSize16x16:
		width, height = 16, 16
	}
	if width == 0 || height == 0 {
		return dst
	}

	origin := cmd.Vertices[0]
	for yo := uint32(0); yo < height; {
		v0 := uint32(origin.V) + yo
		tileH := min(height-yo, gpu.TexturePageHeight-(v0&0xFF))
		for xo := uint32(0); xo < width; {
			u0 := uint32(origin.U) + xo
			tileW := min(width-xo, gpu.TexturePageWidth-(u0&0xFF))

			cv := gpu.CommandVertex{
				X:     origin.X + int32(xo),
				Y:     origin.Y + int32(yo),
				Color: origin.Color,
				U:     uint8(u0),
				V:     uint8(v0),
			}
			limits := PackUVLimits(uint8(u0), uint8(v0),
				uint8(u0+tileW-1), uint8(v0+tileH-1))
			base := r.buildVertex(cv, cmd, depth, limits)

			tl := base
			tr := base
			tr.X += float32(tileW)
			tr.U += uint16(tileW)
			bl := base
			bl.Y += float32(tileH)
			bl.V += uint16(tileH)
			br := tr
			br.Y += float32(tileH)
			br.V += uint16(tileH)
			dst = append(dst, tl, tr, bl, bl, tr, br)

			xo += tileW
		}
		yo += tileH
	}
	return dst
}
