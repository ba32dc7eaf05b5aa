// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package device

import "github.com/gogpu/gputypes"

// ShaderModuleDescriptor describes a shader module.
type ShaderModuleDescriptor struct {
	// Label is an optional debug label for the module.
	Label string

	// WGSL is the shader source text.
	WGSL string
}

// ShaderModule represents a compiled shader module.
type ShaderModule interface {
	// Destroy releases resources associated with this module.
	Destroy()
}

// VertexFormat describes the data type of a single vertex attribute.
type VertexFormat uint32

const (
	// VertexFormatFloat32 is one 32-bit float.
	VertexFormatFloat32 VertexFormat = iota

	// VertexFormatFloat32x2 is two 32-bit floats.
	VertexFormatFloat32x2

	// VertexFormatFloat32x4 is four 32-bit floats.
	VertexFormatFloat32x4

	// VertexFormatUint32 is one unsigned 32-bit integer.
	VertexFormatUint32

	// VertexFormatUint32x2 is two unsigned 32-bit integers.
	VertexFormatUint32x2
)

// Size returns the attribute size in bytes.
func (f VertexFormat) Size() uint32 {
	switch f {
	case VertexFormatFloat32, VertexFormatUint32:
		return 4
	case VertexFormatFloat32x2, VertexFormatUint32x2:
		return 8
	case VertexFormatFloat32x4:
		return 16
	default:
		return 0
	}
}

// VertexAttribute describes one attribute within a vertex buffer layout.
type VertexAttribute struct {
	// Format is the attribute data type.
	Format VertexFormat

	// Offset is the byte offset from the start of the vertex.
	Offset uint32

	// ShaderLocation is the @location index in the vertex shader.
	ShaderLocation uint32
}

// VertexBufferLayout describes the memory layout of a vertex buffer.
type VertexBufferLayout struct {
	// Stride is the byte distance between consecutive vertices.
	Stride uint32

	// Attributes lists the attributes read from each vertex.
	Attributes []VertexAttribute
}

// BindingKind identifies the resource type declared at a shader binding.
type BindingKind uint32

const (
	// BindingUniformBuffer is a var<uniform> block.
	BindingUniformBuffer BindingKind = iota

	// BindingTexture is a texture_2d<f32>.
	BindingTexture

	// BindingSampler is a sampler.
	BindingSampler
)

// BindingLayoutEntry declares one binding of group 0 in the pipeline's
// shader module. GPU backends build their bind group layouts from these;
// the software device ignores them.
type BindingLayoutEntry struct {
	// Binding is the @binding index.
	Binding uint32

	// Kind is the bound resource type.
	Kind BindingKind
}

// BlendFactor selects a blending coefficient.
type BlendFactor uint32

const (
	// BlendFactorZero is the constant 0.
	BlendFactorZero BlendFactor = iota

	// BlendFactorOne is the constant 1.
	BlendFactorOne

	// BlendFactorSrcAlpha is the source alpha.
	BlendFactorSrcAlpha

	// BlendFactorOneMinusSrcAlpha is one minus the source alpha.
	BlendFactorOneMinusSrcAlpha

	// BlendFactorSrc1Alpha is the second fragment output alpha.
	// Requires Capabilities.DualSourceBlend.
	BlendFactorSrc1Alpha

	// BlendFactorOneMinusSrc1Alpha is one minus the second output alpha.
	// Requires Capabilities.DualSourceBlend.
	BlendFactorOneMinusSrc1Alpha
)

// BlendOperation combines the scaled source and destination colors.
type BlendOperation uint32

const (
	// BlendOperationAdd computes src*sf + dst*df.
	BlendOperationAdd BlendOperation = iota

	// BlendOperationSubtract computes src*sf - dst*df.
	BlendOperationSubtract

	// BlendOperationReverseSubtract computes dst*df - src*sf.
	BlendOperationReverseSubtract
)

// BlendComponent describes blending for one channel group.
type BlendComponent struct {
	// SrcFactor scales the source color.
	SrcFactor BlendFactor

	// DstFactor scales the destination color.
	DstFactor BlendFactor

	// Operation combines the scaled terms.
	Operation BlendOperation
}

// BlendState describes the color blending configuration.
type BlendState struct {
	// Color is the blend component for RGB.
	Color BlendComponent

	// Alpha is the blend component for alpha.
	Alpha BlendComponent
}

// DepthCompare selects the depth test function.
type DepthCompare uint32

const (
	// DepthCompareAlways passes every fragment.
	DepthCompareAlways DepthCompare = iota

	// DepthCompareGreaterEqual passes fragments with depth >= stored depth.
	DepthCompareGreaterEqual
)

// DepthState describes the depth attachment configuration.
type DepthState struct {
	// WriteEnabled stores fragment depth when the test passes.
	WriteEnabled bool

	// Compare is the depth test function.
	Compare DepthCompare
}

// PrimitiveTopology selects how vertices assemble into primitives.
// The renderer only ever draws triangle lists; the type exists so the
// descriptor reads like the rest of the WebGPU-shaped API.
type PrimitiveTopology uint32

const (
	// PrimitiveTopologyTriangleList assembles independent triangles.
	PrimitiveTopologyTriangleList PrimitiveTopology = iota
)

// RenderPipelineDescriptor describes a complete render pipeline.
type RenderPipelineDescriptor struct {
	// Label is an optional debug label for the pipeline.
	Label string

	// VertexShader is the compiled vertex stage module.
	VertexShader ShaderModule

	// VertexEntry is the vertex entry point name.
	VertexEntry string

	// FragmentShader is the compiled fragment stage module.
	FragmentShader ShaderModule

	// FragmentEntry is the fragment entry point name.
	FragmentEntry string

	// VertexLayout describes the vertex buffer, or nil for shaders that
	// generate their own geometry.
	VertexLayout *VertexBufferLayout

	// Bindings declares the shader's group 0 bindings.
	Bindings []BindingLayoutEntry

	// Topology is the primitive assembly mode.
	Topology PrimitiveTopology

	// ColorFormat is the color attachment format.
	ColorFormat gputypes.TextureFormat

	// Blend is the blending configuration, or nil for opaque output.
	Blend *BlendState

	// Depth is the depth configuration, or nil when the pass has no
	// depth attachment.
	Depth *DepthState

	// DepthOnly disables all color channel writes. The pipeline only
	// updates the depth attachment.
	DepthOnly bool

	// SampleCount is the MSAA sample count of the target.
	SampleCount uint32
}

// Pipeline represents a compiled render pipeline.
type Pipeline interface {
	// Label returns the debug label the pipeline was created with.
	Label() string

	// Destroy releases resources associated with this pipeline.
	Destroy()
}
