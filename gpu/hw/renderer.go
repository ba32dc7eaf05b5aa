// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package hw

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"

	"github.com/eltociear/duckstation/device"
	"github.com/eltociear/duckstation/gpu"
)

// Renderer errors.
var (
	// ErrAllocation wraps render target, buffer, or pipeline creation
	// failures. The affected operation is skipped; the renderer stays
	// usable.
	ErrAllocation = errors.New("hw: resource allocation failed")

	// ErrTextureUnavailable is returned when the texture cache cannot
	// decode the source a draw needs.
	ErrTextureUnavailable = errors.New("hw: texture unavailable")
)

// maxDepthCounter is the mask-emulation depth counter value that forces
// a depth buffer clear.
const maxDepthCounter = 65535

// Stats counts renderer work per frame. Reset with ResetStats.
type Stats struct {
	// BatchesFlushed is the number of non-empty batch flushes.
	BatchesFlushed int

	// PrimitivesDrawn is the number of admitted primitives.
	PrimitivesDrawn int

	// VRAMReadTextureUpdates counts dirty-rectangle uploads into the
	// read-back texture.
	VRAMReadTextureUpdates int

	// UniformUpdates counts uniform block uploads.
	UniformUpdates int
}

// Renderer batches console draw commands into GPU draws against
// VRAM-backed render targets. All methods must be called from one
// goroutine; ordering between VRAM writes and texture lookups is
// guaranteed by program order alone.
type Renderer struct {
	cfg  Config
	dev  device.Device
	caps device.Capabilities

	vram      *gpu.VRAM
	dirty     *gpu.DirtyTracker
	texCache  *TextureCache
	pipelines *PipelineCache

	vramTexture      device.Texture // scaled color target
	vramDepthTexture device.Texture // scaled mask emulation depth
	vramReadTexture  device.Texture // native, sampled by copies and read-back
	displayTexture   device.Texture // native scanout target
	sampler          device.Sampler

	vertexBuffer device.Buffer
	staged       []byte // encoded vertices of the in-flight batch
	scratch      []Vertex

	batchConfig      BatchConfig
	batchSource      *Source
	batchBounds      gpu.Rect
	batchVertexCount uint32
	baseVertex       uint32

	drawingArea gpu.DrawingArea
	offsetX     int32
	offsetY     int32
	mask        gpu.MaskFlags
	display     gpu.DisplayConfig

	currentDepth uint32

	stats Stats
}

// NewRenderer creates a renderer on dev with the given configuration.
func NewRenderer(dev device.Device, cfg Config) (*Renderer, error) {
	cfg = cfg.withDefaults()
	caps := dev.Capabilities()
	if maxScale := caps.MaxTextureSize / gpu.VRAMWidth; cfg.ResolutionScale > maxScale && maxScale > 0 {
		gpu.Logger().Warn("resolution scale clamped to device limit",
			"requested", cfg.ResolutionScale, "max", maxScale)
		cfg.ResolutionScale = maxScale
	}

	r := &Renderer{
		cfg:          cfg,
		dev:          dev,
		caps:         caps,
		vram:         gpu.NewVRAM(),
		dirty:        gpu.NewDirtyTracker(),
		batchBounds:  gpu.InvalidRect(),
		currentDepth: 1,
	}
	r.texCache = NewTextureCache(dev, r.vram)
	r.pipelines = NewPipelineCache(dev, gputypes.TextureFormatRGBA8Unorm)

	if err := r.createResources(); err != nil {
		r.destroyResources()
		return nil, err
	}

	gpu.Logger().Info("hardware renderer created",
		"scale", cfg.ResolutionScale, "device", caps.DeviceName,
		"dual_source_blend", caps.DualSourceBlend)
	return r, nil
}

// createResources allocates the render targets, sampler, and vertex
// buffer for the current configuration.
func (r *Renderer) createResources() error {
	scale := r.cfg.ResolutionScale

	targets := []struct {
		out    *device.Texture
		label  string
		width  uint32
		height uint32
		format gputypes.TextureFormat
		usage  device.TextureUsage
	}{
		{&r.vramTexture, "vram", gpu.VRAMWidth * scale, gpu.VRAMHeight * scale,
			gputypes.TextureFormatRGBA8Unorm,
			device.TextureUsageRenderAttachment | device.TextureUsageTextureBinding | device.TextureUsageCopySrc},
		{&r.vramDepthTexture, "vram depth", gpu.VRAMWidth * scale, gpu.VRAMHeight * scale,
			gputypes.TextureFormatDepth24PlusStencil8,
			device.TextureUsageRenderAttachment},
		{&r.vramReadTexture, "vram read", gpu.VRAMWidth, gpu.VRAMHeight,
			gputypes.TextureFormatRGBA8Unorm,
			device.TextureUsageTextureBinding | device.TextureUsageCopyDst | device.TextureUsageCopySrc},
		{&r.displayTexture, "display", gpu.VRAMWidth * scale, gpu.VRAMHeight * scale,
			gputypes.TextureFormatRGBA8Unorm,
			device.TextureUsageRenderAttachment | device.TextureUsageTextureBinding | device.TextureUsageCopySrc},
	}
	for _, t := range targets {
		tex, err := r.dev.CreateTexture(&device.TextureDescriptor{
			Label:         t.label,
			Width:         t.width,
			Height:        t.height,
			MipLevelCount: 1,
			SampleCount:   1,
			Format:        t.format,
			Usage:         t.usage,
		})
		if err != nil {
			return fmt.Errorf("%w: %s texture: %v", ErrAllocation, t.label, err)
		}
		*t.out = tex
	}

	filter := device.FilterModeNearest
	if r.cfg.TextureFilter == gpu.TextureFilterBilinear {
		filter = device.FilterModeLinear
	}
	sampler, err := r.dev.CreateSampler(&device.SamplerDescriptor{
		Label:     "vram sampler",
		MagFilter: filter,
		MinFilter: filter,
	})
	if err != nil {
		return fmt.Errorf("%w: sampler: %v", ErrAllocation, err)
	}
	r.sampler = sampler

	buf, err := r.dev.CreateBuffer(&device.BufferDescriptor{
		Label: "batch vertices",
		Size:  uint64(MaxBatchVertices) * VertexSize,
		Usage: device.BufferUsageVertex | device.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("%w: vertex buffer: %v", ErrAllocation, err)
	}
	r.vertexBuffer = buf
	return nil
}

// destroyResources releases everything createResources allocated.
func (r *Renderer) destroyResources() {
	for _, t := range []*device.Texture{&r.vramTexture, &r.vramDepthTexture, &r.vramReadTexture, &r.displayTexture} {
		if *t != nil {
			(*t).Destroy()
			*t = nil
		}
	}
	if r.sampler != nil {
		r.sampler.Destroy()
		r.sampler = nil
	}
	if r.vertexBuffer != nil {
		r.vertexBuffer.Destroy()
		r.vertexBuffer = nil
	}
}

// Destroy releases the renderer's resources. The renderer must not be
// used afterwards.
func (r *Renderer) Destroy() {
	r.texCache.Clear()
	r.pipelines.Invalidate()
	r.destroyResources()
}

// ResolutionScale returns the active resolution multiplier.
func (r *Renderer) ResolutionScale() uint32 { return r.cfg.ResolutionScale }

// Stats returns the counters accumulated since the last ResetStats.
func (r *Renderer) Stats() Stats { return r.stats }

// ResetStats zeroes the frame counters.
func (r *Renderer) ResetStats() { r.stats = Stats{} }

// VRAM returns the shadow framebuffer. Callers must not mutate it
// directly; use FillVRAM, UpdateVRAM, and CopyVRAM.
func (r *Renderer) VRAM() *gpu.VRAM { return r.vram }

// TextureCache returns the renderer's texture cache.
func (r *Renderer) TextureCache() *TextureCache { return r.texCache }

// PipelineCache returns the renderer's pipeline cache.
func (r *Renderer) PipelineCache() *PipelineCache { return r.pipelines }

// DirtyRect returns the pending VRAM region not yet synchronized into
// the read-back texture.
func (r *Renderer) DirtyRect() gpu.Rect { return r.dirty.Rect() }

// CurrentDepth returns the mask emulation depth counter.
func (r *Renderer) CurrentDepth() uint32 { return r.currentDepth }

// CurrentNormalizedDepth returns the depth value the next primitive
// writes, in [0, 1].
func (r *Renderer) CurrentNormalizedDepth() float32 {
	return 1 - float32(r.currentDepth)/maxDepthCounter
}

// SetDrawingArea sets the clip rectangle. Flushes the in-flight batch
// because the scissor is pass state.
func (r *Renderer) SetDrawingArea(area gpu.DrawingArea) {
	if area == r.drawingArea {
		return
	}
	r.FlushRender()
	r.drawingArea = area
}

// SetDrawingOffset sets the vertex offset applied at admission.
func (r *Renderer) SetDrawingOffset(x, y int32) {
	r.offsetX, r.offsetY = x, y
}

// SetMaskFlags sets the mask-bit behavior for subsequent draws.
func (r *Renderer) SetMaskFlags(mask gpu.MaskFlags) {
	r.mask = mask
}

// SetDisplayConfig sets the scanout configuration.
func (r *Renderer) SetDisplayConfig(cfg gpu.DisplayConfig) {
	r.display = cfg
}

// interlacedRenderMode derives the interlacing behavior from the display
// configuration: 480i renders into interleaved rows of one buffer,
// 240-line interlaced modes render fields separately.
func (r *Renderer) interlacedRenderMode() InterlacedRenderMode {
	if !r.display.InterlacedDisplayEnabled() {
		return InterlacedRenderModeNone
	}
	if r.display.VerticalResolution480 {
		return InterlacedRenderModeInterleavedFields
	}
	return InterlacedRenderModeSeparateFields
}

// batchConfigFor derives the batch configuration for one command from
// the command word, its draw mode, and current renderer state.
func (r *Renderer) batchConfigFor(cmd *gpu.DrawCommand) BatchConfig {
	texMode := gpu.TextureModeDisabled
	if cmd.Command.TextureEnable() && !cmd.DrawMode.TextureDisable() {
		texMode = cmd.DrawMode.TextureMode()
		if texMode == gpu.TextureModeReservedDirect16Bit {
			texMode = gpu.TextureModeDirect16Bit
		}
	}
	transparency := gpu.TransparencyDisabled
	if cmd.Command.TransparencyEnable() {
		transparency = cmd.DrawMode.TransparencyMode()
	}
	dithering := cmd.DrawMode.DitherEnable() && !r.cfg.TrueColor &&
		(cmd.Command.ShadingEnable() || (texMode != gpu.TextureModeDisabled && !cmd.Command.RawTextureEnable()))

	return BatchConfig{
		TextureMode:         texMode,
		TransparencyMode:    transparency,
		Dithering:           dithering,
		Interlacing:         r.interlacedRenderMode() == InterlacedRenderModeInterleavedFields,
		SetMaskWhileDrawing: r.mask.SetWhileDrawing,
		CheckMaskBeforeDraw: r.mask.CheckBeforeDraw,
		UseDepthBuffer:      r.mask.SetWhileDrawing || r.mask.CheckBeforeDraw,
	}
}

// nextPrimitiveDepth assigns the depth value for one primitive. The
// counter increments per primitive so later primitives carry strictly
// smaller normalized depth and lose the greater-or-equal test against
// pixels whose mask bit is set. Counter exhaustion flushes, clears the
// depth buffer, and restarts the counter; this is the only mid-frame
// reset.
func (r *Renderer) nextPrimitiveDepth() float32 {
	r.currentDepth++
	if r.currentDepth >= maxDepthCounter {
		r.FlushRender()
		r.clearDepthBuffer()
	}
	return 1 - float32(r.currentDepth)/maxDepthCounter
}

// clearDepthBuffer resets the depth attachment to the far plane and
// restarts the counter.
func (r *Renderer) clearDepthBuffer() {
	r.currentDepth = 1
	pass, err := r.dev.BeginRenderPass(&device.RenderPassDescriptor{
		Label: "depth clear",
		Color: device.ColorAttachment{Texture: r.vramTexture, Load: device.LoadOpLoad},
		Depth: &device.DepthAttachment{
			Texture: r.vramDepthTexture,
			Load:    device.LoadOpClear,
			Clear:   1,
		},
	})
	if err != nil {
		gpu.Logger().Warn("depth clear pass failed", "error", err)
		return
	}
	pass.End()
}

// DispatchRenderCommand admits one primitive into the current batch,
// flushing first when its configuration differs. Oversized primitives
// are culled. A texture decode failure skips the draw and returns
// ErrTextureUnavailable; the renderer stays consistent.
func (r *Renderer) DispatchRenderCommand(cmd *gpu.DrawCommand) error {
	cfg := r.batchConfigFor(cmd)
	if r.batchVertexCount > 0 && cfg != r.batchConfig {
		r.FlushRender()
	}
	r.batchConfig = cfg

	if cfg.TextureMode != gpu.TextureModeDisabled {
		key := SourceKey{
			Page:    cmd.DrawMode.TexturePage(),
			Mode:    cfg.TextureMode,
			Palette: cmd.Palette,
		}
		src, err := r.texCache.Lookup(key)
		if err != nil {
			gpu.Logger().Warn("draw skipped", "error", err)
			return fmt.Errorf("%w: %v", ErrTextureUnavailable, err)
		}
		if r.batchSource != nil && r.batchSource != src {
			r.FlushRender()
		}
		r.batchSource = src
	}

	depth := r.nextPrimitiveDepth()
	r.scratch = r.scratch[:0]
	switch cmd.Command.Primitive() {
	case gpu.PrimitivePolygon:
		if len(cmd.Vertices) < 3 {
			return nil
		}
		r.scratch = r.expandPolygon(cmd, depth, r.scratch)
	case gpu.PrimitiveLine:
		if len(cmd.Vertices) < 2 {
			return nil
		}
		r.scratch = r.expandLine(cmd, depth, r.scratch)
	case gpu.PrimitiveRectangle:
		if len(cmd.Vertices) < 1 {
			return nil
		}
		r.scratch = r.expandRectangle(cmd, depth, r.scratch)
	default:
		return nil
	}
	if len(r.scratch) == 0 {
		return nil
	}

	bounds, ok := r.primitiveBounds(r.scratch)
	if !ok {
		return nil
	}

	needed := uint32(len(r.scratch))
	if r.baseVertex+r.batchVertexCount+needed > MaxBatchVertices {
		r.FlushRender()
		r.baseVertex = 0
	}

	for _, v := range r.scratch {
		r.staged = v.Encode(r.staged)
	}
	r.batchVertexCount += needed
	r.batchBounds = r.batchBounds.Include(bounds)
	r.stats.PrimitivesDrawn++
	return nil
}

// transparencyAlphaFactors returns the shader's source and destination
// scale factors for a blend mode.
func transparencyAlphaFactors(mode gpu.TransparencyMode) (src, dst float32) {
	switch mode {
	case gpu.TransparencyHalfBackgroundPlusHalfForeground:
		return 0.5, 0.5
	case gpu.TransparencyBackgroundPlusQuarterForeground:
		return 0.25, 1
	default:
		return 1, 1
	}
}

// scaledScissor converts the drawing area to a scaled scissor rect.
func (r *Renderer) scaledScissor() device.ScissorRect {
	scale := r.cfg.ResolutionScale
	if !r.drawingArea.Valid() {
		return device.ScissorRect{Width: gpu.VRAMWidth * scale, Height: gpu.VRAMHeight * scale}
	}
	return device.ScissorRect{
		X:      r.drawingArea.Left * scale,
		Y:      r.drawingArea.Top * scale,
		Width:  (r.drawingArea.Right - r.drawingArea.Left + 1) * scale,
		Height: (r.drawingArea.Bottom - r.drawingArea.Top + 1) * scale,
	}
}

// batchUniforms encodes the shader uniform block for the active batch.
func (r *Renderer) batchUniforms() []byte {
	src, dst := transparencyAlphaFactors(r.batchConfig.TransparencyMode)
	var buf [32]byte
	// texture_window slot is reserved; the window is folded into the
	// vertices at admission.
	binary.LittleEndian.PutUint32(buf[16:], math.Float32bits(src))
	binary.LittleEndian.PutUint32(buf[20:], math.Float32bits(dst))
	binary.LittleEndian.PutUint32(buf[24:], math.Float32bits(float32(r.cfg.ResolutionScale)))
	binary.LittleEndian.PutUint32(buf[28:], uint32(r.display.ActiveField))
	return buf[:]
}

// FlushRender draws the accumulated batch. An empty batch issues no
// draw and changes no state. After the draw, every texture cache page
// the batch wrote is invalidated and the dirty rectangle grows to cover
// the write.
func (r *Renderer) FlushRender() {
	if r.batchVertexCount == 0 {
		return
	}

	count := r.batchVertexCount
	bounds := r.batchBounds
	source := r.batchSource
	r.batchVertexCount = 0
	r.batchBounds = gpu.InvalidRect()
	r.batchSource = nil
	staged := r.staged
	r.staged = r.staged[:0]

	if err := r.vertexBuffer.Write(uint64(r.baseVertex)*VertexSize, staged); err != nil {
		gpu.Logger().Warn("batch dropped", "error", err)
		return
	}

	key := BatchPipelineKey{
		DepthTest:        r.batchConfig.CheckMaskBeforeDraw,
		DepthWrite:       r.batchConfig.SetMaskWhileDrawing,
		TextureMode:      r.batchConfig.TextureMode,
		TransparencyMode: r.batchConfig.TransparencyMode,
		Dithering:        r.batchConfig.Dithering,
		Interlacing:      r.batchConfig.Interlacing,
	}

	var modes []BatchRenderMode
	if r.batchConfig.NeedsTwoPassRendering(r.caps.DualSourceBlend) {
		modes = []BatchRenderMode{BatchRenderModeOnlyOpaque, BatchRenderModeOnlyTransparent}
	} else {
		modes = []BatchRenderMode{r.batchConfig.RenderMode()}
	}

	desc := device.RenderPassDescriptor{
		Label: "batch",
		Color: device.ColorAttachment{Texture: r.vramTexture, Load: device.LoadOpLoad},
	}
	if r.batchConfig.UseDepthBuffer {
		desc.Depth = &device.DepthAttachment{Texture: r.vramDepthTexture, Load: device.LoadOpLoad}
	}
	pass, err := r.dev.BeginRenderPass(&desc)
	if err != nil {
		gpu.Logger().Warn("batch dropped", "error", err)
		return
	}
	pass.SetVertexBuffer(r.vertexBuffer)
	pass.SetScissor(r.scaledScissor())
	pass.SetUniforms(r.batchUniforms())
	r.stats.UniformUpdates++
	if source != nil {
		pass.SetTexture(1, source.Texture, r.sampler)
	}
	for _, mode := range modes {
		key.RenderMode = mode
		pipeline, err := r.pipelines.Batch(key)
		if err != nil {
			gpu.Logger().Warn("batch pipeline unavailable", "error", err)
			continue
		}
		pass.SetPipeline(pipeline)
		pass.Draw(r.baseVertex, count)
	}
	pass.End()

	r.baseVertex += count
	r.texCache.InvalidatePages(bounds)
	r.dirty.Include(bounds)
	r.stats.BatchesFlushed++

	gpu.Logger().Debug("batch flushed",
		"vertices", count, "bounds", bounds.String(), "passes", len(modes))
}
