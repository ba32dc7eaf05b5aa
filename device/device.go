// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package device defines the GPU device abstraction used by the hardware
// renderer. It describes textures, buffers, pipelines and render passes in
// backend-neutral terms so the renderer core never talks to a concrete GPU
// API directly.
//
// The package ships a CPU-based SoftwareDevice for tests and headless use;
// the backend/wgpu package provides a pure-Go GPU implementation on top of
// gogpu/wgpu.
package device

import (
	"errors"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// Common device errors.
var (
	// ErrNotImplemented is returned by backends that do not support an
	// optional operation, such as texture readback on a GPU device.
	ErrNotImplemented = errors.New("device: not implemented")

	// ErrInvalidDescriptor is returned when a resource descriptor is
	// malformed (zero dimensions, empty shader source, and so on).
	ErrInvalidDescriptor = errors.New("device: invalid descriptor")

	// ErrDestroyed is returned when a resource is used after Destroy.
	ErrDestroyed = errors.New("device: resource destroyed")
)

// Handle provides GPU device access from the host application.
//
// The host (emulator frontend, test harness) implements Handle and passes it
// to the renderer, which RECEIVES the device rather than creating one. This
// keeps resource ownership with the host and lets the renderer share a device
// with other GPU users in the same process.
//
// Handle is an alias for gpucontext.DeviceProvider, providing a local name
// for the interface while maintaining full compatibility with the gpucontext
// ecosystem.
type Handle = gpucontext.DeviceProvider

// NullHandle is a Handle that provides nil implementations.
// Used for CPU-only rendering where no GPU is available.
type NullHandle struct{}

// Device returns nil for the null handle.
func (NullHandle) Device() gpucontext.Device { return nil }

// Queue returns nil for the null handle.
func (NullHandle) Queue() gpucontext.Queue { return nil }

// Adapter returns nil for the null handle.
func (NullHandle) Adapter() gpucontext.Adapter { return nil }

// AdapterInfo returns empty adapter information for the null handle.
func (NullHandle) AdapterInfo() gpucontext.AdapterInfo { return gpucontext.AdapterInfo{} }

// SurfaceFormat returns undefined format for the null handle.
func (NullHandle) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}

// Ensure NullHandle implements Handle.
var _ Handle = NullHandle{}

// Capabilities describes the features of a GPU device that the renderer
// adapts to at pipeline build time.
type Capabilities struct {
	// MaxTextureSize is the maximum texture dimension supported.
	MaxTextureSize uint32

	// DualSourceBlend indicates support for dual-source blending.
	// Without it, subtractive and quarter-strength transparency fall
	// back to two-pass rendering.
	DualSourceBlend bool

	// PerPixelDepth indicates support for a renderer-managed depth
	// attachment alongside the color target.
	PerPixelDepth bool

	// MaxMultisamples is the highest supported MSAA sample count.
	MaxMultisamples uint32

	// VendorName is the GPU vendor name.
	VendorName string

	// DeviceName is the GPU device name.
	DeviceName string
}

// TextureUsage specifies how a texture can be used.
// These flags can be combined with bitwise OR.
type TextureUsage uint32

const (
	// TextureUsageCopySrc allows the texture to be used as a copy source.
	TextureUsageCopySrc TextureUsage = 1 << iota

	// TextureUsageCopyDst allows the texture to be used as a copy destination.
	TextureUsageCopyDst

	// TextureUsageTextureBinding allows the texture to be used in a texture binding.
	TextureUsageTextureBinding

	// TextureUsageRenderAttachment allows the texture to be used as a render attachment.
	TextureUsageRenderAttachment
)

// TextureDescriptor describes parameters for creating a texture.
type TextureDescriptor struct {
	// Label is an optional debug label for the texture.
	Label string

	// Width is the texture width in pixels.
	Width uint32

	// Height is the texture height in pixels.
	Height uint32

	// MipLevelCount is the number of mipmap levels.
	// Use 1 for no mipmaps.
	MipLevelCount uint32

	// SampleCount is the number of samples for multisampling.
	// Use 1 for no multisampling.
	SampleCount uint32

	// Format is the texture pixel format.
	Format gputypes.TextureFormat

	// Usage specifies how the texture will be used.
	Usage TextureUsage
}

// DefaultTextureDescriptor returns a TextureDescriptor with sensible defaults.
// Only Width, Height, and Format need to be set.
func DefaultTextureDescriptor(width, height uint32, format gputypes.TextureFormat) TextureDescriptor {
	return TextureDescriptor{
		Width:         width,
		Height:        height,
		MipLevelCount: 1,
		SampleCount:   1,
		Format:        format,
		Usage:         TextureUsageTextureBinding | TextureUsageRenderAttachment,
	}
}

// Texture represents a GPU texture resource.
type Texture interface {
	// Width returns the texture width in pixels.
	Width() uint32

	// Height returns the texture height in pixels.
	Height() uint32

	// Format returns the texture pixel format.
	Format() gputypes.TextureFormat

	// Write uploads pixel data into the region (x, y, w, h) of mip
	// level 0. Data is tightly packed rows of w pixels.
	Write(x, y, w, h uint32, data []byte) error

	// Read downloads the region (x, y, w, h) of mip level 0 as tightly
	// packed rows. GPU backends may return ErrNotImplemented when the
	// texture was created without TextureUsageCopySrc.
	Read(x, y, w, h uint32) ([]byte, error)

	// Destroy releases GPU resources associated with this texture.
	Destroy()
}

// BufferUsage specifies how a buffer can be used.
// These flags can be combined with bitwise OR.
type BufferUsage uint32

const (
	// BufferUsageVertex allows the buffer to be bound as a vertex buffer.
	BufferUsageVertex BufferUsage = 1 << iota

	// BufferUsageUniform allows the buffer to be bound as a uniform buffer.
	BufferUsageUniform

	// BufferUsageCopyDst allows the buffer to be used as a copy destination.
	BufferUsageCopyDst
)

// BufferDescriptor describes parameters for creating a buffer.
type BufferDescriptor struct {
	// Label is an optional debug label for the buffer.
	Label string

	// Size is the buffer size in bytes.
	Size uint64

	// Usage specifies how the buffer will be used.
	Usage BufferUsage
}

// Buffer represents a GPU buffer resource.
type Buffer interface {
	// Size returns the buffer size in bytes.
	Size() uint64

	// Write uploads data at the given byte offset.
	Write(offset uint64, data []byte) error

	// Destroy releases GPU resources associated with this buffer.
	Destroy()
}

// FilterMode selects how a sampler interpolates between texels.
type FilterMode uint32

const (
	// FilterModeNearest samples the nearest texel.
	FilterModeNearest FilterMode = iota

	// FilterModeLinear interpolates between the four nearest texels.
	FilterModeLinear
)

// SamplerDescriptor describes parameters for creating a sampler.
// Addressing is always clamp-to-edge; texture coordinate wrapping is
// handled in the shaders instead.
type SamplerDescriptor struct {
	// Label is an optional debug label for the sampler.
	Label string

	// MagFilter is the filter used when magnifying.
	MagFilter FilterMode

	// MinFilter is the filter used when minifying.
	MinFilter FilterMode
}

// Sampler represents a GPU sampler.
type Sampler interface {
	// Destroy releases GPU resources associated with this sampler.
	Destroy()
}

// Device is the backend-neutral GPU device interface.
//
// All resource creation goes through Device so the renderer core can run
// unchanged on the SoftwareDevice in tests and on a wgpu device in
// production.
type Device interface {
	// Capabilities returns the device feature set.
	Capabilities() Capabilities

	// CreateTexture creates a texture resource.
	CreateTexture(desc *TextureDescriptor) (Texture, error)

	// CreateBuffer creates a buffer resource.
	CreateBuffer(desc *BufferDescriptor) (Buffer, error)

	// CreateSampler creates a sampler.
	CreateSampler(desc *SamplerDescriptor) (Sampler, error)

	// CreateShaderModule compiles a WGSL shader module.
	CreateShaderModule(desc *ShaderModuleDescriptor) (ShaderModule, error)

	// CreateRenderPipeline creates a render pipeline.
	CreateRenderPipeline(desc *RenderPipelineDescriptor) (Pipeline, error)

	// BeginRenderPass starts recording a render pass.
	// Only one pass may be open at a time.
	BeginRenderPass(desc *RenderPassDescriptor) (RenderPass, error)

	// Destroy releases the device and all resources created from it.
	Destroy()
}
