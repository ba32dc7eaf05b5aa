// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package hw

import (
	"encoding/binary"
	"fmt"

	"github.com/eltociear/duckstation/device"
)

// UpdateDisplay presents the display area of the framebuffer into the
// display texture, selecting the scanout pipeline by color depth and
// interlace mode.
func (r *Renderer) UpdateDisplay() error {
	r.FlushRender()

	key := DisplayPipelineKey{
		Depth24:       r.display.Depth24,
		InterlaceMode: r.interlacedRenderMode(),
	}
	pipeline, err := r.pipelines.Display(key)
	if err != nil {
		return err
	}

	pass, err := r.dev.BeginRenderPass(&device.RenderPassDescriptor{
		Label: "display",
		Color: device.ColorAttachment{
			Texture: r.displayTexture,
			Load:    device.LoadOpClear,
			Clear:   device.ClearColor{0, 0, 0, 1},
		},
	})
	if err != nil {
		return fmt.Errorf("%w: display pass: %v", ErrAllocation, err)
	}

	var buf [16]byte
	binary.LittleEndian.PutUint32(buf[0:], r.display.VRAMStartX)
	binary.LittleEndian.PutUint32(buf[4:], r.display.VRAMStartY)
	binary.LittleEndian.PutUint32(buf[8:], r.display.ActiveField)
	binary.LittleEndian.PutUint32(buf[12:], r.cfg.ResolutionScale)
	pass.SetUniforms(buf[:])
	r.stats.UniformUpdates++
	pass.SetTexture(1, r.vramTexture, r.sampler)
	pass.SetPipeline(pipeline)
	pass.Draw(0, 3)
	pass.End()
	return nil
}

// DisplayTexture returns the scanout target of the last UpdateDisplay.
func (r *Renderer) DisplayTexture() device.Texture {
	return r.displayTexture
}

// EffectiveDisplayResolution returns the rendered display size in
// framebuffer pixels, including the resolution scale.
func (r *Renderer) EffectiveDisplayResolution() (uint32, uint32) {
	w, h := r.FullDisplayResolution()
	return w * r.cfg.ResolutionScale, h * r.cfg.ResolutionScale
}

// FullDisplayResolution returns the native display size. Separate-field
// interlacing doubles the effective height because each buffer row is
// one field line.
func (r *Renderer) FullDisplayResolution() (uint32, uint32) {
	w, h := r.display.Width, r.display.Height
	if w == 0 || h == 0 {
		w, h = 640, 480
	}
	if r.interlacedRenderMode() == InterlacedRenderModeSeparateFields {
		h *= 2
	}
	return w, h
}
