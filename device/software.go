// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package device

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// SoftwareDevice is a CPU-based Device implementation.
//
// Textures are plain byte slices, Write and Read copy rows, and render pass
// clears are applied to the target pixels. Draw commands are recorded, not
// rasterized, so tests can assert on the exact sequence of pipeline binds
// and draws a renderer produced without a GPU.
type SoftwareDevice struct {
	caps      Capabilities
	drawCalls []DrawCall
	destroyed bool
}

// DrawCall records one Draw on a software render pass, together with the
// state bound at the time of the call.
type DrawCall struct {
	// Pass is the label of the enclosing render pass.
	Pass string

	// Pipeline is the label of the bound pipeline.
	Pipeline string

	// First is the index of the first vertex drawn.
	First uint32

	// Count is the number of vertices drawn.
	Count uint32

	// Scissor is the scissor rectangle in effect.
	Scissor ScissorRect
}

// SoftwareDeviceOptions configures a SoftwareDevice.
type SoftwareDeviceOptions struct {
	// DualSourceBlend reports dual-source blending as supported.
	DualSourceBlend bool
}

// NewSoftwareDevice creates a CPU-based device with the given options.
func NewSoftwareDevice(opts SoftwareDeviceOptions) *SoftwareDevice {
	return &SoftwareDevice{
		caps: Capabilities{
			MaxTextureSize:  8192,
			DualSourceBlend: opts.DualSourceBlend,
			PerPixelDepth:   true,
			MaxMultisamples: 1,
			VendorName:      "gogpu",
			DeviceName:      "software",
		},
	}
}

// Capabilities returns the device feature set.
func (d *SoftwareDevice) Capabilities() Capabilities {
	return d.caps
}

// DrawCalls returns the draw commands recorded since the last reset.
func (d *SoftwareDevice) DrawCalls() []DrawCall {
	return d.drawCalls
}

// ResetDrawCalls discards the recorded draw commands.
func (d *SoftwareDevice) ResetDrawCalls() {
	d.drawCalls = d.drawCalls[:0]
}

// Destroy releases the device.
func (d *SoftwareDevice) Destroy() {
	d.destroyed = true
	d.drawCalls = nil
}

// formatBytesPerPixel returns the storage size of one pixel.
func formatBytesPerPixel(f gputypes.TextureFormat) uint32 {
	switch f {
	case gputypes.TextureFormatRGBA8Unorm, gputypes.TextureFormatBGRA8Unorm,
		gputypes.TextureFormatDepth24PlusStencil8:
		return 4
	default:
		return 4
	}
}

// CreateTexture creates an in-memory texture.
func (d *SoftwareDevice) CreateTexture(desc *TextureDescriptor) (Texture, error) {
	if desc == nil || desc.Width == 0 || desc.Height == 0 {
		return nil, fmt.Errorf("software texture %q: %w", labelOf(desc), ErrInvalidDescriptor)
	}
	bpp := formatBytesPerPixel(desc.Format)
	return &softwareTexture{
		label:  desc.Label,
		width:  desc.Width,
		height: desc.Height,
		format: desc.Format,
		bpp:    bpp,
		pixels: make([]byte, desc.Width*desc.Height*bpp),
	}, nil
}

func labelOf(desc *TextureDescriptor) string {
	if desc == nil {
		return ""
	}
	return desc.Label
}

type softwareTexture struct {
	label     string
	width     uint32
	height    uint32
	format    gputypes.TextureFormat
	bpp       uint32
	pixels    []byte
	destroyed bool
}

func (t *softwareTexture) Width() uint32                  { return t.width }
func (t *softwareTexture) Height() uint32                 { return t.height }
func (t *softwareTexture) Format() gputypes.TextureFormat { return t.format }

func (t *softwareTexture) Write(x, y, w, h uint32, data []byte) error {
	if t.destroyed {
		return ErrDestroyed
	}
	if x+w > t.width || y+h > t.height {
		return fmt.Errorf("software texture %q: write out of bounds: %w", t.label, ErrInvalidDescriptor)
	}
	rowBytes := w * t.bpp
	if uint32(len(data)) < rowBytes*h {
		return fmt.Errorf("software texture %q: short write data: %w", t.label, ErrInvalidDescriptor)
	}
	for row := uint32(0); row < h; row++ {
		dst := ((y+row)*t.width + x) * t.bpp
		src := row * rowBytes
		copy(t.pixels[dst:dst+rowBytes], data[src:src+rowBytes])
	}
	return nil
}

func (t *softwareTexture) Read(x, y, w, h uint32) ([]byte, error) {
	if t.destroyed {
		return nil, ErrDestroyed
	}
	if x+w > t.width || y+h > t.height {
		return nil, fmt.Errorf("software texture %q: read out of bounds: %w", t.label, ErrInvalidDescriptor)
	}
	rowBytes := w * t.bpp
	out := make([]byte, rowBytes*h)
	for row := uint32(0); row < h; row++ {
		src := ((y+row)*t.width + x) * t.bpp
		copy(out[row*rowBytes:(row+1)*rowBytes], t.pixels[src:src+rowBytes])
	}
	return out, nil
}

func (t *softwareTexture) Destroy() {
	t.destroyed = true
	t.pixels = nil
}

// CreateBuffer creates an in-memory buffer.
func (d *SoftwareDevice) CreateBuffer(desc *BufferDescriptor) (Buffer, error) {
	if desc == nil || desc.Size == 0 {
		return nil, fmt.Errorf("software buffer: %w", ErrInvalidDescriptor)
	}
	return &softwareBuffer{
		label: desc.Label,
		data:  make([]byte, desc.Size),
	}, nil
}

type softwareBuffer struct {
	label     string
	data      []byte
	destroyed bool
}

func (b *softwareBuffer) Size() uint64 { return uint64(len(b.data)) }

func (b *softwareBuffer) Write(offset uint64, data []byte) error {
	if b.destroyed {
		return ErrDestroyed
	}
	if offset+uint64(len(data)) > uint64(len(b.data)) {
		return fmt.Errorf("software buffer %q: write out of bounds: %w", b.label, ErrInvalidDescriptor)
	}
	copy(b.data[offset:], data)
	return nil
}

func (b *softwareBuffer) Destroy() {
	b.destroyed = true
	b.data = nil
}

// CreateSampler creates a sampler. Software samplers carry no state the
// recorder needs, so the descriptor is only validated.
func (d *SoftwareDevice) CreateSampler(desc *SamplerDescriptor) (Sampler, error) {
	if desc == nil {
		return nil, fmt.Errorf("software sampler: %w", ErrInvalidDescriptor)
	}
	return &softwareSampler{}, nil
}

type softwareSampler struct{}

func (s *softwareSampler) Destroy() {}

// CreateShaderModule validates and stores a WGSL module without compiling it.
func (d *SoftwareDevice) CreateShaderModule(desc *ShaderModuleDescriptor) (ShaderModule, error) {
	if desc == nil || desc.WGSL == "" {
		return nil, fmt.Errorf("software shader %q: %w", shaderLabelOf(desc), ErrInvalidDescriptor)
	}
	return &softwareShaderModule{label: desc.Label, wgsl: desc.WGSL}, nil
}

func shaderLabelOf(desc *ShaderModuleDescriptor) string {
	if desc == nil {
		return ""
	}
	return desc.Label
}

type softwareShaderModule struct {
	label string
	wgsl  string
}

func (m *softwareShaderModule) Destroy() {}

// CreateRenderPipeline creates a pipeline that records its descriptor.
func (d *SoftwareDevice) CreateRenderPipeline(desc *RenderPipelineDescriptor) (Pipeline, error) {
	if desc == nil || desc.VertexShader == nil || desc.FragmentShader == nil {
		return nil, fmt.Errorf("software pipeline: %w", ErrInvalidDescriptor)
	}
	if desc.Blend != nil {
		usesDual := desc.Blend.Color.SrcFactor == BlendFactorSrc1Alpha ||
			desc.Blend.Color.DstFactor == BlendFactorSrc1Alpha ||
			desc.Blend.Color.SrcFactor == BlendFactorOneMinusSrc1Alpha ||
			desc.Blend.Color.DstFactor == BlendFactorOneMinusSrc1Alpha
		if usesDual && !d.caps.DualSourceBlend {
			return nil, fmt.Errorf("software pipeline %q: dual-source blend: %w", desc.Label, ErrNotImplemented)
		}
	}
	return &softwarePipeline{label: desc.Label}, nil
}

type softwarePipeline struct {
	label string
}

func (p *softwarePipeline) Label() string { return p.label }
func (p *softwarePipeline) Destroy()      {}

// BeginRenderPass starts a recording pass. A clear load op is applied to
// the color attachment immediately.
func (d *SoftwareDevice) BeginRenderPass(desc *RenderPassDescriptor) (RenderPass, error) {
	if desc == nil || desc.Color.Texture == nil {
		return nil, fmt.Errorf("software pass: %w", ErrInvalidDescriptor)
	}
	target, ok := desc.Color.Texture.(*softwareTexture)
	if !ok {
		return nil, fmt.Errorf("software pass %q: foreign texture: %w", desc.Label, ErrInvalidDescriptor)
	}
	if desc.Color.Load == LoadOpClear {
		clearTexture(target, desc.Color.Clear)
	}
	return &softwarePass{device: d, label: desc.Label, target: target}, nil
}

func clearTexture(t *softwareTexture, c ClearColor) {
	px := [4]byte{
		floatToByte(c[0]),
		floatToByte(c[1]),
		floatToByte(c[2]),
		floatToByte(c[3]),
	}
	if t.format == gputypes.TextureFormatBGRA8Unorm {
		px[0], px[2] = px[2], px[0]
	}
	for i := 0; i+4 <= len(t.pixels); i += 4 {
		copy(t.pixels[i:i+4], px[:])
	}
}

func floatToByte(f float32) byte {
	if f <= 0 {
		return 0
	}
	if f >= 1 {
		return 255
	}
	return byte(f*255 + 0.5)
}

type softwarePass struct {
	device   *SoftwareDevice
	label    string
	target   *softwareTexture
	pipeline Pipeline
	scissor  ScissorRect
	ended    bool
}

func (p *softwarePass) SetPipeline(pl Pipeline) {
	if p.ended {
		return
	}
	p.pipeline = pl
}

func (p *softwarePass) SetVertexBuffer(b Buffer) {}

func (p *softwarePass) SetScissor(rect ScissorRect) {
	if p.ended {
		return
	}
	p.scissor = rect
}

func (p *softwarePass) SetTexture(slot uint32, t Texture, s Sampler) {}

func (p *softwarePass) SetUniforms(data []byte) {}

func (p *softwarePass) Draw(first, count uint32) {
	if p.ended || count == 0 {
		return
	}
	label := ""
	if p.pipeline != nil {
		label = p.pipeline.Label()
	}
	p.device.drawCalls = append(p.device.drawCalls, DrawCall{
		Pass:     p.label,
		Pipeline: label,
		First:    first,
		Count:    count,
		Scissor:  p.scissor,
	})
}

func (p *softwarePass) End() {
	p.ended = true
}

// Ensure SoftwareDevice implements Device.
var _ Device = (*SoftwareDevice)(nil)
