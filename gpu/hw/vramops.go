// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package hw

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"

	"github.com/eltociear/duckstation/device"
	"github.com/eltociear/duckstation/gpu"
)

// VRAM write operations. Each one flushes the in-flight batch, updates
// the shadow, invalidates every texture cache page the write touches,
// grows the dirty rectangle, and mirrors the change into the scaled
// framebuffer. Invalidation happens in the same program order as the
// shadow write, so no later lookup can decode stale data.

// writeRect bounds a VRAM write for invalidation and dirty tracking.
// Writes that wrap past the framebuffer edge dirty everything.
func writeRect(x, y, width, height uint32) (gpu.Rect, bool) {
	wrapped := x+width > gpu.VRAMWidth || y+height > gpu.VRAMHeight
	if wrapped {
		return gpu.NewRect(0, 0, gpu.VRAMWidth, gpu.VRAMHeight), true
	}
	return gpu.NewRect(x, y, width, height), false
}

// afterVRAMWrite performs the bookkeeping shared by all write paths.
// When mask emulation is active and the write lands in the drawing area,
// the depth buffer is rebuilt from the written mask bits so protection
// survives the write exactly per pixel.
func (r *Renderer) afterVRAMWrite(rect gpu.Rect) {
	r.texCache.InvalidatePages(rect)
	r.dirty.Include(rect)
	if (r.mask.SetWhileDrawing || r.mask.CheckBeforeDraw) && rect.Intersects(r.drawingAreaRect()) {
		r.updateDepthBufferFromMaskBits()
	}
}

// updateDepthBufferFromMaskBits replays the framebuffer's mask bits into
// the depth attachment. The read-back texture is synchronized first so
// the pass sees the shadow's post-write contents.
func (r *Renderer) updateDepthBufferFromMaskBits() {
	r.updateVRAMReadTexture()

	pipeline, err := r.pipelines.UpdateDepth()
	if err != nil {
		gpu.Logger().Warn("depth update pipeline failed", "error", err)
		return
	}
	pass, err := r.dev.BeginRenderPass(&device.RenderPassDescriptor{
		Label: "vram update depth",
		Color: device.ColorAttachment{Texture: r.vramTexture, Load: device.LoadOpLoad},
		Depth: &device.DepthAttachment{Texture: r.vramDepthTexture, Load: device.LoadOpLoad},
	})
	if err != nil {
		gpu.Logger().Warn("depth update pass failed", "error", err)
		return
	}
	pass.SetTexture(0, r.vramReadTexture, r.sampler)
	pass.SetPipeline(pipeline)
	pass.Draw(0, 3)
	pass.End()
}

// drawingAreaRect returns the drawing area as an exclusive rectangle.
func (r *Renderer) drawingAreaRect() gpu.Rect {
	if !r.drawingArea.Valid() {
		return gpu.InvalidRect()
	}
	return gpu.Rect{
		Left:   r.drawingArea.Left,
		Top:    r.drawingArea.Top,
		Right:  r.drawingArea.Right + 1,
		Bottom: r.drawingArea.Bottom + 1,
	}
}

// FillVRAM fills a rectangle with a 24-bit color, masked to 15 bits.
// Interlaced displays skip the inactive field's rows.
func (r *Renderer) FillVRAM(x, y, width, height uint32, color uint32) error {
	r.FlushRender()

	interlaced := r.interlacedRenderMode() == InterlacedRenderModeInterleavedFields
	r.vram.Fill(x, y, width, height, color, interlaced, uint32(r.display.ActiveField))

	rect, wrapped := writeRect(x, y, width, height)
	r.afterVRAMWrite(rect)

	pipeline, err := r.pipelines.Fill(FillPipelineKey{Wrapped: wrapped, Interlaced: interlaced})
	if err != nil {
		return err
	}
	pass, err := r.dev.BeginRenderPass(&device.RenderPassDescriptor{
		Label: "vram fill",
		Color: device.ColorAttachment{Texture: r.vramTexture, Load: device.LoadOpLoad},
	})
	if err != nil {
		return fmt.Errorf("%w: fill pass: %v", ErrAllocation, err)
	}
	scale := r.cfg.ResolutionScale
	if !wrapped {
		pass.SetScissor(device.ScissorRect{
			X: x * scale, Y: y * scale, Width: width * scale, Height: height * scale,
		})
	}
	pass.SetUniforms(r.fillUniforms(x, y, width, height, color))
	r.stats.UniformUpdates++
	pass.SetPipeline(pipeline)
	pass.Draw(0, 3)
	pass.End()
	return nil
}

// fillUniforms encodes the fill shader uniform block.
func (r *Renderer) fillUniforms(x, y, width, height uint32, color uint32) []byte {
	var buf [36]byte
	rgba := gpu.VRAMRGBA5551ToRGBA8888(gpu.RGBA8ToFill555(color))
	for i := 0; i < 4; i++ {
		f := float32((rgba>>(8*i))&0xFF) / 255
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	binary.LittleEndian.PutUint32(buf[16:], x)
	binary.LittleEndian.PutUint32(buf[20:], y)
	binary.LittleEndian.PutUint32(buf[24:], width)
	binary.LittleEndian.PutUint32(buf[28:], height)
	binary.LittleEndian.PutUint32(buf[32:], uint32(r.display.ActiveField))
	return buf[:]
}

// UpdateVRAM copies CPU pixels into a rectangle with the given mask
// behavior, and mirrors them into the scaled framebuffer through the
// write pipeline.
func (r *Renderer) UpdateVRAM(x, y, width, height uint32, data []uint16, mask gpu.MaskFlags) error {
	if uint32(len(data)) < width*height {
		return fmt.Errorf("hw: update needs %d pixels, got %d", width*height, len(data))
	}
	r.FlushRender()

	r.vram.Update(x, y, width, height, data, mask)
	rect, _ := writeRect(x, y, width, height)
	r.afterVRAMWrite(rect)

	// The updated region goes through a staging texture so the write
	// pipeline can scale it into the framebuffer. The staged pixels are
	// read back from the shadow, which has the mask semantics applied.
	region := r.vram.Read(x, y, width, height)
	staging, err := r.dev.CreateTexture(&device.TextureDescriptor{
		Label:         "vram write staging",
		Width:         width,
		Height:        height,
		MipLevelCount: 1,
		SampleCount:   1,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         device.TextureUsageTextureBinding | device.TextureUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("%w: staging texture: %v", ErrAllocation, err)
	}
	defer staging.Destroy()
	if err := staging.Write(0, 0, width, height, rgba8Bytes(region)); err != nil {
		return fmt.Errorf("%w: staging upload: %v", ErrAllocation, err)
	}

	pipeline, err := r.pipelines.Write(WritePipelineKey{DepthTest: mask.CheckBeforeDraw})
	if err != nil {
		return err
	}
	pass, err := r.dev.BeginRenderPass(&device.RenderPassDescriptor{
		Label: "vram write",
		Color: device.ColorAttachment{Texture: r.vramTexture, Load: device.LoadOpLoad},
	})
	if err != nil {
		return fmt.Errorf("%w: write pass: %v", ErrAllocation, err)
	}
	scale := r.cfg.ResolutionScale
	pass.SetScissor(device.ScissorRect{
		X: x * scale, Y: y * scale, Width: width * scale, Height: height * scale,
	})
	pass.SetTexture(0, staging, r.sampler)
	pass.SetPipeline(pipeline)
	pass.Draw(0, 3)
	pass.End()
	return nil
}

// CopyVRAM copies a rectangle inside VRAM with mask semantics. Overlaps
// behave like the hardware's per-pixel copy.
func (r *Renderer) CopyVRAM(srcX, srcY, dstX, dstY, width, height uint32) error {
	r.FlushRender()

	r.vram.Copy(srcX, srcY, dstX, dstY, width, height, r.mask)
	rect, _ := writeRect(dstX, dstY, width, height)

	// The GPU-side copy samples the read-back texture, which must hold
	// the source region's pre-copy contents.
	srcRect, _ := writeRect(srcX, srcY, width, height)
	if r.dirty.Intersects(srcRect) {
		r.updateVRAMReadTexture()
	}
	r.afterVRAMWrite(rect)

	pipeline, err := r.pipelines.Copy(CopyPipelineKey{DepthTest: r.mask.CheckBeforeDraw})
	if err != nil {
		return err
	}
	pass, err := r.dev.BeginRenderPass(&device.RenderPassDescriptor{
		Label: "vram copy",
		Color: device.ColorAttachment{Texture: r.vramTexture, Load: device.LoadOpLoad},
	})
	if err != nil {
		return fmt.Errorf("%w: copy pass: %v", ErrAllocation, err)
	}
	scale := r.cfg.ResolutionScale
	pass.SetScissor(device.ScissorRect{
		X: dstX * scale, Y: dstY * scale, Width: width * scale, Height: height * scale,
	})
	var buf [16]byte
	binary.LittleEndian.PutUint32(buf[0:], math.Float32bits(float32(srcX)/gpu.VRAMWidth))
	binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(float32(srcY)/gpu.VRAMHeight))
	binary.LittleEndian.PutUint32(buf[8:], math.Float32bits(float32(width)/gpu.VRAMWidth))
	binary.LittleEndian.PutUint32(buf[12:], math.Float32bits(float32(height)/gpu.VRAMHeight))
	pass.SetUniforms(buf[:])
	r.stats.UniformUpdates++
	pass.SetTexture(1, r.vramReadTexture, r.sampler)
	pass.SetPipeline(pipeline)
	pass.Draw(0, 3)
	pass.End()
	return nil
}

// ReadVRAM returns a rectangle of the framebuffer. The read-back texture
// is brought up to date first, clearing the dirty rectangle.
func (r *Renderer) ReadVRAM(x, y, width, height uint32) []uint16 {
	r.FlushRender()
	r.updateVRAMReadTexture()
	return r.vram.Read(x, y, width, height)
}

// updateVRAMReadTexture uploads the dirty region of the shadow into the
// read-back texture and clears the dirty rectangle.
func (r *Renderer) updateVRAMReadTexture() {
	if !r.dirty.IsDirty() {
		return
	}
	rect := r.dirty.Rect().Clamp()
	r.dirty.Clear()

	pixels := r.vram.Read(rect.Left, rect.Top, rect.Width(), rect.Height())
	if err := r.vramReadTexture.Write(rect.Left, rect.Top, rect.Width(), rect.Height(), rgba8Bytes(pixels)); err != nil {
		gpu.Logger().Warn("read texture update failed", "error", err)
		return
	}
	r.stats.VRAMReadTextureUpdates++
}

// rgba8Bytes converts native 16-bit pixels to packed RGBA8.
func rgba8Bytes(pixels []uint16) []byte {
	out := make([]byte, len(pixels)*4)
	for i, p := range pixels {
		rgba := gpu.VRAMRGBA5551ToRGBA8888(p)
		binary.LittleEndian.PutUint32(out[i*4:], rgba)
	}
	return out
}

// Reset returns the renderer to power-on state. The in-flight batch is
// discarded without drawing, and all draw state registers return to
// their power-on values.
func (r *Renderer) Reset(clearVRAM bool) {
	r.batchVertexCount = 0
	r.batchBounds = gpu.InvalidRect()
	r.batchSource = nil
	r.staged = r.staged[:0]
	r.baseVertex = 0
	r.batchConfig = BatchConfig{}

	r.drawingArea = gpu.DrawingArea{}
	r.offsetX, r.offsetY = 0, 0
	r.mask = gpu.MaskFlags{}
	r.display = gpu.DisplayConfig{}

	if clearVRAM {
		r.vram.Clear()
	}
	r.texCache.Clear()
	r.pipelines.Invalidate()
	r.dirty.SetFull()
	r.currentDepth = 1

	pass, err := r.dev.BeginRenderPass(&device.RenderPassDescriptor{
		Label: "reset clear",
		Color: device.ColorAttachment{Texture: r.vramTexture, Load: device.LoadOpClear},
		Depth: &device.DepthAttachment{Texture: r.vramDepthTexture, Load: device.LoadOpClear, Clear: 1},
	})
	if err != nil {
		gpu.Logger().Warn("reset clear failed", "error", err)
		return
	}
	pass.End()
}

// UpdateSettings applies a new configuration. Buffers and pipelines are
// torn down and rebuilt; this is a stop-the-world reconfiguration.
func (r *Renderer) UpdateSettings(cfg Config) error {
	r.FlushRender()
	cfg = cfg.withDefaults()

	r.destroyResources()
	r.cfg = cfg
	if err := r.createResources(); err != nil {
		return err
	}
	r.texCache.Clear()
	r.pipelines.Invalidate()
	r.dirty.SetFull()
	r.baseVertex = 0

	gpu.Logger().Info("renderer settings updated", "scale", cfg.ResolutionScale)
	return nil
}

// UpdateResolutionScale changes only the resolution multiplier.
func (r *Renderer) UpdateResolutionScale(scale uint32) error {
	cfg := r.cfg
	cfg.ResolutionScale = scale
	return r.UpdateSettings(cfg)
}
