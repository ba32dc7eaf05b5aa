// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package hw

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/eltociear/duckstation/device"
	"github.com/eltociear/duckstation/gpu"
)

// BatchPipelineKey selects a batch draw pipeline. Every distinct value
// compiles at most one pipeline per cache lifetime.
type BatchPipelineKey struct {
	DepthTest        bool
	DepthWrite       bool
	RenderMode       BatchRenderMode
	TextureMode      gpu.TextureMode
	TransparencyMode gpu.TransparencyMode
	Dithering        bool
	Interlacing      bool
}

// FillPipelineKey selects a VRAM fill pipeline.
type FillPipelineKey struct {
	// Wrapped fills cross the right or bottom VRAM edge.
	Wrapped bool

	// Interlaced fills skip the inactive field.
	Interlaced bool
}

// WritePipelineKey selects a VRAM write pipeline.
type WritePipelineKey struct {
	DepthTest bool
}

// CopyPipelineKey selects a VRAM copy pipeline.
type CopyPipelineKey struct {
	DepthTest bool
}

// DisplayPipelineKey selects a scanout pipeline.
type DisplayPipelineKey struct {
	Depth24       bool
	InterlaceMode InterlacedRenderMode
}

// DownsamplePass identifies one pipeline of the downsample chain.
type DownsamplePass uint8

const (
	// DownsamplePassBox is the single-pass box filter.
	DownsamplePassBox DownsamplePass = iota

	// DownsamplePassFirst extracts color and luminance at full size.
	DownsamplePassFirst

	// DownsamplePassMid reduces one mip level to the next.
	DownsamplePassMid

	// DownsamplePassBlur smooths the luminance weights.
	DownsamplePassBlur

	// DownsamplePassComposite blends mip levels by smoothed weight.
	DownsamplePassComposite
)

// String returns the pass name.
func (p DownsamplePass) String() string {
	switch p {
	case DownsamplePassBox:
		return "Box"
	case DownsamplePassFirst:
		return "First"
	case DownsamplePassMid:
		return "Mid"
	case DownsamplePassBlur:
		return "Blur"
	case DownsamplePassComposite:
		return "Composite"
	default:
		return "Unknown"
	}
}

// PipelineCache lazily compiles and caches every pipeline variant the
// renderer can select. Entries live until Invalidate; settings changes
// and resets invalidate en masse, nothing is evicted per frame.
type PipelineCache struct {
	dev         device.Device
	colorFormat gputypes.TextureFormat

	batch      map[BatchPipelineKey]device.Pipeline
	fill       map[FillPipelineKey]device.Pipeline
	write      map[WritePipelineKey]device.Pipeline
	copy       map[CopyPipelineKey]device.Pipeline
	display    map[DisplayPipelineKey]device.Pipeline
	downsample map[DownsamplePass]device.Pipeline

	// updateDepth has a single variant.
	updateDepth device.Pipeline

	compiles int
}

// NewPipelineCache creates an empty cache compiling against dev.
func NewPipelineCache(dev device.Device, colorFormat gputypes.TextureFormat) *PipelineCache {
	return &PipelineCache{
		dev:         dev,
		colorFormat: colorFormat,
		batch:       make(map[BatchPipelineKey]device.Pipeline),
		fill:        make(map[FillPipelineKey]device.Pipeline),
		write:       make(map[WritePipelineKey]device.Pipeline),
		copy:        make(map[CopyPipelineKey]device.Pipeline),
		display:     make(map[DisplayPipelineKey]device.Pipeline),
		downsample:  make(map[DownsamplePass]device.Pipeline),
	}
}

// CompileCount returns the number of pipelines compiled since creation
// or the last Invalidate.
func (c *PipelineCache) CompileCount() int {
	return c.compiles
}

// Invalidate destroys every cached pipeline. The next request per key
// recompiles.
func (c *PipelineCache) Invalidate() {
	for k, p := range c.batch {
		p.Destroy()
		delete(c.batch, k)
	}
	for k, p := range c.fill {
		p.Destroy()
		delete(c.fill, k)
	}
	for k, p := range c.write {
		p.Destroy()
		delete(c.write, k)
	}
	for k, p := range c.copy {
		p.Destroy()
		delete(c.copy, k)
	}
	for k, p := range c.display {
		p.Destroy()
		delete(c.display, k)
	}
	for k, p := range c.downsample {
		p.Destroy()
		delete(c.downsample, k)
	}
	if c.updateDepth != nil {
		c.updateDepth.Destroy()
		c.updateDepth = nil
	}
	c.compiles = 0
}

// Binding sets per shader family. These mirror the @binding declarations
// the generators emit; shadergen.go and this table change together.
var (
	bindingsUniformOnly = []device.BindingLayoutEntry{
		{Binding: 0, Kind: device.BindingUniformBuffer},
	}
	bindingsTextured = []device.BindingLayoutEntry{
		{Binding: 0, Kind: device.BindingUniformBuffer},
		{Binding: 1, Kind: device.BindingTexture},
		{Binding: 2, Kind: device.BindingSampler},
	}
	bindingsTextureOnly = []device.BindingLayoutEntry{
		{Binding: 0, Kind: device.BindingTexture},
		{Binding: 1, Kind: device.BindingSampler},
	}
	bindingsComposite = []device.BindingLayoutEntry{
		{Binding: 0, Kind: device.BindingTexture},
		{Binding: 1, Kind: device.BindingSampler},
		{Binding: 2, Kind: device.BindingTexture},
	}
)

// compile builds one pipeline from a generated WGSL module.
func (c *PipelineCache) compile(label, wgsl string, layout *device.VertexBufferLayout,
	bindings []device.BindingLayoutEntry,
	blend *device.BlendState, depth *device.DepthState) (device.Pipeline, error) {
	module, err := c.dev.CreateShaderModule(&device.ShaderModuleDescriptor{
		Label: label,
		WGSL:  wgsl,
	})
	if err != nil {
		return nil, fmt.Errorf("pipeline %s: shader: %w", label, err)
	}
	p, err := c.dev.CreateRenderPipeline(&device.RenderPipelineDescriptor{
		Label:          label,
		VertexShader:   module,
		VertexEntry:    "vs_main",
		FragmentShader: module,
		FragmentEntry:  "fs_main",
		VertexLayout:   layout,
		Bindings:       bindings,
		Topology:       device.PrimitiveTopologyTriangleList,
		ColorFormat:    c.colorFormat,
		Blend:          blend,
		Depth:          depth,
		SampleCount:    1,
	})
	if err != nil {
		return nil, fmt.Errorf("pipeline %s: %w", label, err)
	}
	c.compiles++
	return p, nil
}

// batchBlendState maps a pipeline key to the fixed blend equation. The
// per-texel source and destination factors travel through the shader's
// color and alpha outputs, so the equation itself only varies in its
// operation.
func batchBlendState(key BatchPipelineKey) *device.BlendState {
	if key.RenderMode == BatchRenderModeTransparencyDisabled ||
		key.RenderMode == BatchRenderModeOnlyOpaque {
		return nil
	}
	op := device.BlendOperationAdd
	if key.TransparencyMode == gpu.TransparencyBackgroundMinusForeground {
		op = device.BlendOperationReverseSubtract
	}
	return &device.BlendState{
		Color: device.BlendComponent{
			SrcFactor: device.BlendFactorOne,
			DstFactor: device.BlendFactorSrcAlpha,
			Operation: op,
		},
		Alpha: device.BlendComponent{
			SrcFactor: device.BlendFactorOne,
			DstFactor: device.BlendFactorZero,
			Operation: device.BlendOperationAdd,
		},
	}
}

// batchDepthState maps a pipeline key to the mask-bit depth emulation.
// Depth writes mirror the set-mask flag and the greater-or-equal test
// mirrors the check-mask flag. Batches using neither draw without a
// depth attachment.
func batchDepthState(key BatchPipelineKey) *device.DepthState {
	if !key.DepthTest && !key.DepthWrite {
		return nil
	}
	compare := device.DepthCompareAlways
	if key.DepthTest {
		compare = device.DepthCompareGreaterEqual
	}
	return &device.DepthState{WriteEnabled: key.DepthWrite, Compare: compare}
}

// Batch returns the pipeline for a batch key, compiling on first use.
func (c *PipelineCache) Batch(key BatchPipelineKey) (device.Pipeline, error) {
	if p, ok := c.batch[key]; ok {
		return p, nil
	}
	label := fmt.Sprintf("batch/%s/%s/%s/depthtest=%t/depthwrite=%t/dither=%t/interlace=%t",
		key.RenderMode, key.TextureMode, key.TransparencyMode,
		key.DepthTest, key.DepthWrite, key.Dithering, key.Interlacing)
	bindings := bindingsUniformOnly
	if key.TextureMode != gpu.TextureModeDisabled {
		bindings = bindingsTextured
	}
	p, err := c.compile(label, batchShaderSource(key), batchVertexLayout(),
		bindings, batchBlendState(key), batchDepthState(key))
	if err != nil {
		return nil, err
	}
	c.batch[key] = p
	return p, nil
}

// Fill returns the pipeline for a VRAM fill key.
func (c *PipelineCache) Fill(key FillPipelineKey) (device.Pipeline, error) {
	if p, ok := c.fill[key]; ok {
		return p, nil
	}
	label := fmt.Sprintf("fill/wrapped=%t/interlaced=%t", key.Wrapped, key.Interlaced)
	p, err := c.compile(label, fillShaderSource(key), nil, bindingsUniformOnly, nil, nil)
	if err != nil {
		return nil, err
	}
	c.fill[key] = p
	return p, nil
}

// Write returns the pipeline for a VRAM write key.
func (c *PipelineCache) Write(key WritePipelineKey) (device.Pipeline, error) {
	if p, ok := c.write[key]; ok {
		return p, nil
	}
	label := fmt.Sprintf("vramwrite/depth=%t", key.DepthTest)
	p, err := c.compile(label, vramWriteShaderSource(key.DepthTest), nil, bindingsTextureOnly, nil, nil)
	if err != nil {
		return nil, err
	}
	c.write[key] = p
	return p, nil
}

// Copy returns the pipeline for a VRAM copy key.
func (c *PipelineCache) Copy(key CopyPipelineKey) (device.Pipeline, error) {
	if p, ok := c.copy[key]; ok {
		return p, nil
	}
	label := fmt.Sprintf("vramcopy/depth=%t", key.DepthTest)
	p, err := c.compile(label, vramCopyShaderSource(key.DepthTest), nil, bindingsTextured, nil, nil)
	if err != nil {
		return nil, err
	}
	c.copy[key] = p
	return p, nil
}

// Display returns the pipeline for a scanout key.
func (c *PipelineCache) Display(key DisplayPipelineKey) (device.Pipeline, error) {
	if p, ok := c.display[key]; ok {
		return p, nil
	}
	label := fmt.Sprintf("display/depth24=%t/%s", key.Depth24, key.InterlaceMode)
	p, err := c.compile(label, displayShaderSource(key), nil, bindingsTextured, nil, nil)
	if err != nil {
		return nil, err
	}
	c.display[key] = p
	return p, nil
}

// UpdateDepth returns the pipeline rebuilding the depth buffer from the
// framebuffer's mask bits. The pipeline writes only depth; color output
// is masked off.
func (c *PipelineCache) UpdateDepth() (device.Pipeline, error) {
	if c.updateDepth != nil {
		return c.updateDepth, nil
	}
	const label = "vramupdatedepth"
	module, err := c.dev.CreateShaderModule(&device.ShaderModuleDescriptor{
		Label: label,
		WGSL:  vramUpdateDepthShaderSource(),
	})
	if err != nil {
		return nil, fmt.Errorf("pipeline %s: shader: %w", label, err)
	}
	p, err := c.dev.CreateRenderPipeline(&device.RenderPipelineDescriptor{
		Label:          label,
		VertexShader:   module,
		VertexEntry:    "vs_main",
		FragmentShader: module,
		FragmentEntry:  "fs_main",
		Bindings:       bindingsTextureOnly,
		Topology:       device.PrimitiveTopologyTriangleList,
		ColorFormat:    c.colorFormat,
		Depth:          &device.DepthState{WriteEnabled: true, Compare: device.DepthCompareAlways},
		DepthOnly:      true,
		SampleCount:    1,
	})
	if err != nil {
		return nil, fmt.Errorf("pipeline %s: %w", label, err)
	}
	c.compiles++
	c.updateDepth = p
	return p, nil
}

// Downsample returns the pipeline for one downsample pass.
func (c *PipelineCache) Downsample(pass DownsamplePass) (device.Pipeline, error) {
	if p, ok := c.downsample[pass]; ok {
		return p, nil
	}
	label := fmt.Sprintf("downsample/%s", pass)
	bindings := bindingsTextureOnly
	if pass == DownsamplePassComposite {
		bindings = bindingsComposite
	}
	p, err := c.compile(label, downsampleShaderSource(pass), nil, bindings, nil, nil)
	if err != nil {
		return nil, err
	}
	c.downsample[pass] = p
	return p, nil
}
