// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package hw

import (
	"encoding/binary"
	"math"

	"github.com/eltociear/duckstation/device"
	"github.com/eltociear/duckstation/gpu"
)

// VertexSize is the byte size of one encoded batch vertex.
const VertexSize = 32

// MaxBatchVertices is the capacity of the batch vertex buffer. Two slots
// are reserved so the depth counter can always assign a fresh value to a
// final primitive before wrapping.
const MaxBatchVertices = 65536 - 2

// Vertex is one batch vertex. Position is pre-divided for perspective,
// color is packed RGBA8, TexPage carries the texture page and palette
// registers, and UVLimits clamps bilinear sampling to the primitive's
// texture window.
type Vertex struct {
	X, Y, Z, W float32
	Color      uint32
	TexPage    uint32
	U, V       uint16
	UVLimits   uint32
}

// PackUVLimits packs per-primitive texture coordinate bounds into the
// vertex attribute: minU | minV<<8 | maxU<<16 | maxV<<24.
func PackUVLimits(minU, minV, maxU, maxV uint8) uint32 {
	return uint32(minU) | uint32(minV)<<8 | uint32(maxU)<<16 | uint32(maxV)<<24
}

// PackTexPage packs the draw mode and palette registers into the vertex
// texpage attribute. The low half carries the draw mode register, the
// high half the palette register.
func PackTexPage(mode gpu.DrawModeReg, palette gpu.PaletteReg) uint32 {
	return uint32(mode) | uint32(palette)<<16
}

// Encode appends the vertex in buffer layout order, little-endian.
func (v Vertex) Encode(dst []byte) []byte {
	var buf [VertexSize]byte
	binary.LittleEndian.PutUint32(buf[0:], math.Float32bits(v.X))
	binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(v.Y))
	binary.LittleEndian.PutUint32(buf[8:], math.Float32bits(v.Z))
	binary.LittleEndian.PutUint32(buf[12:], math.Float32bits(v.W))
	binary.LittleEndian.PutUint32(buf[16:], v.Color)
	binary.LittleEndian.PutUint32(buf[20:], v.TexPage)
	binary.LittleEndian.PutUint16(buf[24:], v.U)
	binary.LittleEndian.PutUint16(buf[26:], v.V)
	binary.LittleEndian.PutUint32(buf[28:], v.UVLimits)
	return append(dst, buf[:]...)
}

// batchVertexLayout describes the batch vertex buffer to pipeline
// creation. Kept in sync with Encode.
func batchVertexLayout() *device.VertexBufferLayout {
	return &device.VertexBufferLayout{
		Stride: VertexSize,
		Attributes: []device.VertexAttribute{
			{Format: device.VertexFormatFloat32x4, Offset: 0, ShaderLocation: 0},  // position
			{Format: device.VertexFormatUint32, Offset: 16, ShaderLocation: 1},    // color
			{Format: device.VertexFormatUint32, Offset: 20, ShaderLocation: 2},    // texpage
			{Format: device.VertexFormatUint32, Offset: 24, ShaderLocation: 3},    // packed uv
			{Format: device.VertexFormatUint32, Offset: 28, ShaderLocation: 4},    // uv limits
		},
	}
}
