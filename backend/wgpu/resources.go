// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/eltociear/duckstation/device"
)

// copyPitchAlignment is the BytesPerRow alignment required by
// texture-to-buffer copies.
const copyPitchAlignment = 256

// texture implements device.Texture on hal.Texture.
type texture struct {
	owner  *Device
	tex    hal.Texture
	view   hal.TextureView
	width  uint32
	height uint32
	format gputypes.TextureFormat
	usage  device.TextureUsage

	destroyed bool
}

func halTextureUsage(u device.TextureUsage) gputypes.TextureUsage {
	var out gputypes.TextureUsage
	if u&device.TextureUsageCopySrc != 0 {
		out |= gputypes.TextureUsageCopySrc
	}
	if u&device.TextureUsageCopyDst != 0 {
		out |= gputypes.TextureUsageCopyDst
	}
	if u&device.TextureUsageTextureBinding != 0 {
		out |= gputypes.TextureUsageTextureBinding
	}
	if u&device.TextureUsageRenderAttachment != 0 {
		out |= gputypes.TextureUsageRenderAttachment
	}
	return out
}

// CreateTexture creates a texture resource.
func (d *Device) CreateTexture(desc *device.TextureDescriptor) (device.Texture, error) {
	if desc.Width == 0 || desc.Height == 0 {
		return nil, fmt.Errorf("%w: texture %q has zero dimension", device.ErrInvalidDescriptor, desc.Label)
	}
	if desc.Width > d.caps.MaxTextureSize || desc.Height > d.caps.MaxTextureSize {
		return nil, fmt.Errorf("%w: texture %q exceeds device limit %d",
			device.ErrInvalidDescriptor, desc.Label, d.caps.MaxTextureSize)
	}
	mips := desc.MipLevelCount
	if mips == 0 {
		mips = 1
	}
	samples := desc.SampleCount
	if samples == 0 {
		samples = 1
	}

	tex, err := d.dev.CreateTexture(&hal.TextureDescriptor{
		Label:         desc.Label,
		Size:          hal.Extent3D{Width: desc.Width, Height: desc.Height, DepthOrArrayLayers: 1},
		MipLevelCount: mips,
		SampleCount:   samples,
		Dimension:     gputypes.TextureDimension2D,
		Format:        desc.Format,
		Usage:         halTextureUsage(desc.Usage),
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create texture %q: %w", desc.Label, err)
	}

	view, err := d.dev.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label: desc.Label + "_view",
	})
	if err != nil {
		d.dev.DestroyTexture(tex)
		return nil, fmt.Errorf("wgpu: create texture view %q: %w", desc.Label, err)
	}

	return &texture{
		owner:  d,
		tex:    tex,
		view:   view,
		width:  desc.Width,
		height: desc.Height,
		format: desc.Format,
		usage:  desc.Usage,
	}, nil
}

// Width returns the texture width in pixels.
func (t *texture) Width() uint32 { return t.width }

// Height returns the texture height in pixels.
func (t *texture) Height() uint32 { return t.height }

// Format returns the texture pixel format.
func (t *texture) Format() gputypes.TextureFormat { return t.format }

// bytesPerPixel returns the texel size of the formats the renderer uses.
func (t *texture) bytesPerPixel() uint32 {
	switch t.format {
	case gputypes.TextureFormatR16Uint:
		return 2
	default:
		return 4
	}
}

// Write uploads pixel data into the region (x, y, w, h) of mip level 0.
func (t *texture) Write(x, y, w, h uint32, data []byte) error {
	if t.destroyed {
		return device.ErrDestroyed
	}
	bpp := t.bytesPerPixel()
	if uint64(len(data)) < uint64(w)*uint64(h)*uint64(bpp) {
		return fmt.Errorf("%w: write %dx%d needs %d bytes, got %d",
			device.ErrInvalidDescriptor, w, h, uint64(w)*uint64(h)*uint64(bpp), len(data))
	}
	err := t.owner.queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  t.tex,
			MipLevel: 0,
			Origin:   hal.Origin3D{X: x, Y: y, Z: 0},
		},
		data,
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  w * bpp,
			RowsPerImage: h,
		},
		&hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	)
	if err != nil {
		return fmt.Errorf("wgpu: write texture: %w", err)
	}
	return nil
}

// Read downloads the region (x, y, w, h) of mip level 0 as tightly
// packed rows. The texture must have been created with
// TextureUsageCopySrc.
func (t *texture) Read(x, y, w, h uint32) ([]byte, error) {
	if t.destroyed {
		return nil, device.ErrDestroyed
	}
	if t.usage&device.TextureUsageCopySrc == 0 {
		return nil, fmt.Errorf("%w: texture readback without TextureUsageCopySrc", device.ErrNotImplemented)
	}
	d := t.owner

	bpp := t.bytesPerPixel()
	bytesPerRow := w * bpp
	alignedBytesPerRow := (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	stagingSize := uint64(alignedBytesPerRow) * uint64(h)

	staging, err := d.dev.CreateBuffer(&hal.BufferDescriptor{
		Label: "readback_staging",
		Size:  stagingSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create staging buffer: %w", err)
	}
	defer d.dev.DestroyBuffer(staging)

	encoder, err := d.dev.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "readback_encoder",
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create readback encoder: %w", err)
	}
	if err := encoder.BeginEncoding("readback"); err != nil {
		return nil, fmt.Errorf("wgpu: begin readback encoding: %w", err)
	}

	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: t.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})
	encoder.CopyTextureToBuffer(t.tex, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: alignedBytesPerRow, RowsPerImage: h},
		TextureBase: hal.ImageCopyTexture{
			Texture:  t.tex,
			MipLevel: 0,
			Origin:   hal.Origin3D{X: x, Y: y, Z: 0},
		},
		Size: hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: t.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("wgpu: end readback encoding: %w", err)
	}
	defer d.dev.FreeCommandBuffer(cmdBuf)

	if err := d.submitAndWait(cmdBuf); err != nil {
		return nil, err
	}

	mapping, err := d.dev.MapBuffer(staging, 0, stagingSize)
	if err != nil {
		return nil, fmt.Errorf("wgpu: map staging buffer: %w", err)
	}
	readback := make([]byte, stagingSize)
	copy(readback, unsafe.Slice((*byte)(mapping.Ptr), stagingSize))
	if err := d.dev.UnmapBuffer(staging); err != nil {
		return nil, fmt.Errorf("wgpu: unmap staging buffer: %w", err)
	}

	if alignedBytesPerRow == bytesPerRow {
		return readback[:uint64(bytesPerRow)*uint64(h)], nil
	}
	// Strip per-row padding from the aligned readback.
	tight := make([]byte, uint64(bytesPerRow)*uint64(h))
	for row := uint32(0); row < h; row++ {
		srcOff := uint64(row) * uint64(alignedBytesPerRow)
		dstOff := uint64(row) * uint64(bytesPerRow)
		copy(tight[dstOff:dstOff+uint64(bytesPerRow)], readback[srcOff:srcOff+uint64(bytesPerRow)])
	}
	return tight, nil
}

// Destroy releases the texture and its view.
func (t *texture) Destroy() {
	if t.destroyed {
		return
	}
	t.destroyed = true
	t.owner.dev.DestroyTextureView(t.view)
	t.owner.dev.DestroyTexture(t.tex)
}

// submitAndWait submits one command buffer and blocks until the GPU has
// drained. The hal manages submission fencing internally, so completion
// is observed through WaitIdle rather than an explicit fence.
func (d *Device) submitAndWait(cmdBuf hal.CommandBuffer) error {
	if _, err := d.queue.Submit([]hal.CommandBuffer{cmdBuf}); err != nil {
		return fmt.Errorf("wgpu: submit: %w", err)
	}
	if err := d.dev.WaitIdle(); err != nil {
		return fmt.Errorf("wgpu: wait for GPU: %w", err)
	}
	return nil
}

// buffer implements device.Buffer on hal.Buffer.
type buffer struct {
	owner *Device
	buf   hal.Buffer
	size  uint64

	destroyed bool
}

func halBufferUsage(u device.BufferUsage) gputypes.BufferUsage {
	var out gputypes.BufferUsage
	if u&device.BufferUsageVertex != 0 {
		out |= gputypes.BufferUsageVertex
	}
	if u&device.BufferUsageUniform != 0 {
		out |= gputypes.BufferUsageUniform
	}
	if u&device.BufferUsageCopyDst != 0 {
		out |= gputypes.BufferUsageCopyDst
	}
	return out
}

// CreateBuffer creates a buffer resource.
func (d *Device) CreateBuffer(desc *device.BufferDescriptor) (device.Buffer, error) {
	if desc.Size == 0 {
		return nil, fmt.Errorf("%w: buffer %q has zero size", device.ErrInvalidDescriptor, desc.Label)
	}
	buf, err := d.dev.CreateBuffer(&hal.BufferDescriptor{
		Label: desc.Label,
		Size:  desc.Size,
		Usage: halBufferUsage(desc.Usage),
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create buffer %q: %w", desc.Label, err)
	}
	return &buffer{owner: d, buf: buf, size: desc.Size}, nil
}

// Size returns the buffer size in bytes.
func (b *buffer) Size() uint64 { return b.size }

// Write uploads data at the given byte offset.
func (b *buffer) Write(offset uint64, data []byte) error {
	if b.destroyed {
		return device.ErrDestroyed
	}
	if offset+uint64(len(data)) > b.size {
		return fmt.Errorf("%w: write of %d bytes at %d exceeds buffer size %d",
			device.ErrInvalidDescriptor, len(data), offset, b.size)
	}
	if err := b.owner.queue.WriteBuffer(b.buf, offset, data); err != nil {
		return fmt.Errorf("wgpu: write buffer: %w", err)
	}
	return nil
}

// Destroy releases the buffer.
func (b *buffer) Destroy() {
	if b.destroyed {
		return
	}
	b.destroyed = true
	b.owner.dev.DestroyBuffer(b.buf)
}

// sampler implements device.Sampler on hal.Sampler.
type sampler struct {
	owner *Device
	smp   hal.Sampler

	destroyed bool
}

func halFilterMode(m device.FilterMode) gputypes.FilterMode {
	if m == device.FilterModeLinear {
		return gputypes.FilterModeLinear
	}
	return gputypes.FilterModeNearest
}

// CreateSampler creates a sampler. Addressing is clamp-to-edge; the
// renderer's shaders wrap texture coordinates themselves.
func (d *Device) CreateSampler(desc *device.SamplerDescriptor) (device.Sampler, error) {
	smp, err := d.dev.CreateSampler(&hal.SamplerDescriptor{
		Label:        desc.Label,
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    halFilterMode(desc.MagFilter),
		MinFilter:    halFilterMode(desc.MinFilter),
		MipmapFilter: halFilterMode(desc.MinFilter),
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create sampler %q: %w", desc.Label, err)
	}
	return &sampler{owner: d, smp: smp}, nil
}

// Destroy releases the sampler.
func (s *sampler) Destroy() {
	if s.destroyed {
		return
	}
	s.destroyed = true
	s.owner.dev.DestroySampler(s.smp)
}

// shaderModule implements device.ShaderModule on hal.ShaderModule.
type shaderModule struct {
	owner *Device
	mod   hal.ShaderModule

	destroyed bool
}

// CreateShaderModule compiles a WGSL shader module. The source is run
// through naga to SPIR-V up front so compile errors surface here rather
// than at pipeline creation.
func (d *Device) CreateShaderModule(desc *device.ShaderModuleDescriptor) (device.ShaderModule, error) {
	if desc.WGSL == "" {
		return nil, fmt.Errorf("%w: shader %q has empty source", device.ErrInvalidDescriptor, desc.Label)
	}
	spirv, err := compileWGSL(desc.WGSL)
	if err != nil {
		return nil, fmt.Errorf("wgpu: compile shader %q: %w", desc.Label, err)
	}
	mod, err := d.dev.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  desc.Label,
		Source: hal.ShaderSource{SPIRV: spirv},
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create shader module %q: %w", desc.Label, err)
	}
	return &shaderModule{owner: d, mod: mod}, nil
}

// compileWGSL translates WGSL source to SPIR-V words.
func compileWGSL(source string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(source)
	if err != nil {
		return nil, err
	}
	code := make([]uint32, len(spirvBytes)/4)
	for i := range code {
		code[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return code, nil
}

// Destroy releases the shader module.
func (m *shaderModule) Destroy() {
	if m.destroyed {
		return
	}
	m.destroyed = true
	m.owner.dev.DestroyShaderModule(m.mod)
}
