// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package hw

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/eltociear/duckstation/gpu"
)

// Save state format: little-endian, a magic tag and version followed by
// the VRAM shadow and the register state needed to resume rendering.
// The texture cache and pipeline cache are derived state and are
// rebuilt, never persisted.

const (
	stateMagic   uint32 = 0x50475748 // "HWGP"
	stateVersion uint32 = 1

	// stateRegisterWords is the number of 32-bit register words following
	// the VRAM shadow. SaveState and LoadState change together.
	stateRegisterWords = 14
)

// ErrInvalidState is returned when LoadState reads data that is not a
// renderer save state or has an unsupported version.
var ErrInvalidState = errors.New("hw: invalid save state")

// SaveState writes the renderer state to w. The in-flight batch is
// flushed first so the shadow reflects every admitted primitive.
func (r *Renderer) SaveState(w io.Writer) error {
	r.FlushRender()

	buf := make([]byte, 0, 8+gpu.VRAMSizeInBytes+stateRegisterWords*4)
	u32 := func(v uint32) { buf = binary.LittleEndian.AppendUint32(buf, v) }

	u32(stateMagic)
	u32(stateVersion)
	for _, p := range r.vram.Pixels() {
		buf = binary.LittleEndian.AppendUint16(buf, p)
	}
	u32(r.currentDepth)
	u32(r.drawingArea.Left)
	u32(r.drawingArea.Top)
	u32(r.drawingArea.Right)
	u32(r.drawingArea.Bottom)
	u32(uint32(r.offsetX))
	u32(uint32(r.offsetY))
	u32(boolBits(r.mask.SetWhileDrawing) | boolBits(r.mask.CheckBeforeDraw)<<1)
	u32(r.display.VRAMStartX)
	u32(r.display.VRAMStartY)
	u32(r.display.Width)
	u32(r.display.Height)
	u32(boolBits(r.display.Interlaced) |
		boolBits(r.display.VerticalResolution480)<<1 |
		boolBits(r.display.Depth24)<<2)
	u32(r.display.ActiveField)

	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("hw: save state: %w", err)
	}
	return nil
}

// LoadState restores renderer state from rd. Derived state is discarded:
// the texture cache empties, the in-flight batch is dropped, and the
// whole framebuffer is marked dirty for re-upload.
func (r *Renderer) LoadState(rd io.Reader) error {
	size := 8 + gpu.VRAMSizeInBytes + stateRegisterWords*4
	buf := make([]byte, size)
	if _, err := io.ReadFull(rd, buf); err != nil {
		return fmt.Errorf("hw: load state: %w", err)
	}
	off := 0
	u32 := func() uint32 {
		v := binary.LittleEndian.Uint32(buf[off:])
		off += 4
		return v
	}

	if u32() != stateMagic {
		return fmt.Errorf("%w: bad magic", ErrInvalidState)
	}
	if v := u32(); v != stateVersion {
		return fmt.Errorf("%w: version %d", ErrInvalidState, v)
	}

	pixels := r.vram.Pixels()
	for i := range pixels {
		pixels[i] = binary.LittleEndian.Uint16(buf[off:])
		off += 2
	}
	r.currentDepth = u32()
	r.drawingArea = gpu.DrawingArea{
		Left: u32(), Top: u32(), Right: u32(), Bottom: u32(),
	}
	r.offsetX = int32(u32())
	r.offsetY = int32(u32())
	maskBits := u32()
	r.mask = gpu.MaskFlags{
		SetWhileDrawing: maskBits&1 != 0,
		CheckBeforeDraw: maskBits&2 != 0,
	}
	r.display.VRAMStartX = u32()
	r.display.VRAMStartY = u32()
	r.display.Width = u32()
	r.display.Height = u32()
	displayBits := u32()
	r.display.Interlaced = displayBits&1 != 0
	r.display.VerticalResolution480 = displayBits&2 != 0
	r.display.Depth24 = displayBits&4 != 0
	r.display.ActiveField = u32()

	r.batchVertexCount = 0
	r.batchBounds = gpu.InvalidRect()
	r.batchSource = nil
	r.staged = r.staged[:0]
	r.baseVertex = 0
	r.texCache.Clear()
	r.dirty.SetFull()
	return nil
}

func boolBits(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
