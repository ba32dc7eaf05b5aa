// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package hw

import (
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	xdraw "golang.org/x/image/draw"

	"github.com/eltociear/duckstation/device"
	"github.com/eltociear/duckstation/gpu"
)

// DownsampleFrame reduces a scaled frame read back from a render target
// to native resolution according to the configured mode. The input is
// tightly packed RGBA8 at width x height; the result is RGBA8 at
// width/scale x height/scale.
//
// The read-back value always comes from the CPU box filter over the
// supplied pixels. Adaptive mode additionally runs the edge-aware GPU
// pass chain against the display texture, and degrades to plain box
// filtering with a logged warning when any of its resources fail to
// allocate. Frames whose dimensions the scale does not divide evenly
// are resampled with a bilinear kernel instead of exact averaging.
func (r *Renderer) DownsampleFrame(pixels []byte, width, height uint32) ([]byte, uint32, uint32, error) {
	scale := r.cfg.DownsampleScale
	if scale == 0 {
		scale = r.cfg.ResolutionScale
	}
	if scale <= 1 || r.cfg.DownsampleMode == gpu.DownsampleDisabled {
		return pixels, width, height, nil
	}
	outW, outH := width/scale, height/scale
	if outW == 0 || outH == 0 {
		return nil, 0, 0, fmt.Errorf("hw: downsample scale %d exceeds frame size %dx%d", scale, width, height)
	}

	if r.cfg.DownsampleMode == gpu.DownsampleAdaptive {
		if err := r.adaptiveDownsample(width, height); err != nil {
			gpu.Logger().Warn("adaptive downsampling unavailable, using box filter", "error", err)
		}
	}
	if width%scale != 0 || height%scale != 0 {
		return r.resampleDownsample(pixels, width, height, outW, outH)
	}
	return r.boxDownsample(pixels, width, height, scale)
}

// boxDownsample averages scale x scale pixel blocks down to native size.
func (r *Renderer) boxDownsample(pixels []byte, width, height, scale uint32) ([]byte, uint32, uint32, error) {
	outW, outH := width/scale, height/scale
	out := make([]byte, outW*outH*4)
	area := scale * scale
	for oy := uint32(0); oy < outH; oy++ {
		for ox := uint32(0); ox < outW; ox++ {
			var sum [4]uint32
			for by := uint32(0); by < scale; by++ {
				row := ((oy*scale+by)*width + ox*scale) * 4
				for bx := uint32(0); bx < scale; bx++ {
					px := row + bx*4
					sum[0] += uint32(pixels[px])
					sum[1] += uint32(pixels[px+1])
					sum[2] += uint32(pixels[px+2])
					sum[3] += uint32(pixels[px+3])
				}
			}
			o := (oy*outW + ox) * 4
			out[o] = byte((sum[0] + area/2) / area)
			out[o+1] = byte((sum[1] + area/2) / area)
			out[o+2] = byte((sum[2] + area/2) / area)
			out[o+3] = byte((sum[3] + area/2) / area)
		}
	}
	return out, outW, outH, nil
}

// resampleDownsample handles frames the scale does not divide evenly.
// Block averaging has no exact answer there, so the frame is resampled
// with a bilinear kernel to the truncated output size.
func (r *Renderer) resampleDownsample(pixels []byte, width, height, outW, outH uint32) ([]byte, uint32, uint32, error) {
	src := &image.RGBA{
		Pix:    pixels,
		Stride: int(width) * 4,
		Rect:   image.Rect(0, 0, int(width), int(height)),
	}
	dst := image.NewRGBA(image.Rect(0, 0, int(outW), int(outH)))
	xdraw.BiLinear.Scale(dst, dst.Rect, src, src.Rect, xdraw.Src, nil)
	return dst.Pix, outW, outH, nil
}

// adaptiveDownsample runs the edge-aware pass chain: luminance
// extraction, mip reduction, weight blur, and the weighted composite.
func (r *Renderer) adaptiveDownsample(width, height uint32) error {
	intermediate := make([]device.Texture, 0, 3)
	defer func() {
		for _, t := range intermediate {
			t.Destroy()
		}
	}()
	newTarget := func(label string, w, h uint32) (device.Texture, error) {
		t, err := r.dev.CreateTexture(&device.TextureDescriptor{
			Label:         label,
			Width:         w,
			Height:        h,
			MipLevelCount: 1,
			SampleCount:   1,
			Format:        gputypes.TextureFormatRGBA8Unorm,
			Usage:         device.TextureUsageRenderAttachment | device.TextureUsageTextureBinding,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrAllocation, label, err)
		}
		intermediate = append(intermediate, t)
		return t, nil
	}

	luma, err := newTarget("downsample luma", width, height)
	if err != nil {
		return err
	}
	mip, err := newTarget("downsample mip", width/2, height/2)
	if err != nil {
		return err
	}
	weights, err := newTarget("downsample weights", width/2, height/2)
	if err != nil {
		return err
	}

	steps := []struct {
		pass   DownsamplePass
		target device.Texture
		source device.Texture
		weight device.Texture
	}{
		{DownsamplePassFirst, luma, r.displayTexture, nil},
		{DownsamplePassMid, mip, luma, nil},
		{DownsamplePassBlur, weights, mip, nil},
		{DownsamplePassComposite, r.displayTexture, mip, weights},
	}
	for _, step := range steps {
		pipeline, err := r.pipelines.Downsample(step.pass)
		if err != nil {
			return err
		}
		pass, err := r.dev.BeginRenderPass(&device.RenderPassDescriptor{
			Label: fmt.Sprintf("downsample %s", step.pass),
			Color: device.ColorAttachment{Texture: step.target, Load: device.LoadOpClear},
		})
		if err != nil {
			return fmt.Errorf("%w: downsample pass: %v", ErrAllocation, err)
		}
		pass.SetTexture(0, step.source, r.sampler)
		if step.weight != nil {
			pass.SetTexture(2, step.weight, nil)
		}
		pass.SetPipeline(pipeline)
		pass.Draw(0, 3)
		pass.End()
	}
	return nil
}
