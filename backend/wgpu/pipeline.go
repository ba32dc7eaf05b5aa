// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/eltociear/duckstation/device"
)

// pipeline implements device.Pipeline on hal.RenderPipeline. Every
// pipeline owns its bind group layout and pipeline layout; the renderer
// caches pipelines, so layouts are not shared across them.
type pipeline struct {
	owner      *Device
	pipe       hal.RenderPipeline
	pipeLayout hal.PipelineLayout
	bindLayout hal.BindGroupLayout
	bindings   []device.BindingLayoutEntry
	label      string

	destroyed bool
}

func halBlendFactor(f device.BlendFactor) (gputypes.BlendFactor, error) {
	switch f {
	case device.BlendFactorZero:
		return gputypes.BlendFactorZero, nil
	case device.BlendFactorOne:
		return gputypes.BlendFactorOne, nil
	case device.BlendFactorSrcAlpha:
		return gputypes.BlendFactorSrcAlpha, nil
	case device.BlendFactorOneMinusSrcAlpha:
		return gputypes.BlendFactorOneMinusSrcAlpha, nil
	default:
		return 0, fmt.Errorf("%w: blend factor %d", device.ErrInvalidDescriptor, f)
	}
}

func halBlendOperation(op device.BlendOperation) (gputypes.BlendOperation, error) {
	switch op {
	case device.BlendOperationAdd:
		return gputypes.BlendOperationAdd, nil
	case device.BlendOperationSubtract:
		return gputypes.BlendOperationSubtract, nil
	case device.BlendOperationReverseSubtract:
		return gputypes.BlendOperationReverseSubtract, nil
	default:
		return 0, fmt.Errorf("%w: blend operation %d", device.ErrInvalidDescriptor, op)
	}
}

func halBlendState(blend *device.BlendState) (*gputypes.BlendState, error) {
	colorSrc, err := halBlendFactor(blend.Color.SrcFactor)
	if err != nil {
		return nil, err
	}
	colorDst, err := halBlendFactor(blend.Color.DstFactor)
	if err != nil {
		return nil, err
	}
	colorOp, err := halBlendOperation(blend.Color.Operation)
	if err != nil {
		return nil, err
	}
	alphaSrc, err := halBlendFactor(blend.Alpha.SrcFactor)
	if err != nil {
		return nil, err
	}
	alphaDst, err := halBlendFactor(blend.Alpha.DstFactor)
	if err != nil {
		return nil, err
	}
	alphaOp, err := halBlendOperation(blend.Alpha.Operation)
	if err != nil {
		return nil, err
	}
	return &gputypes.BlendState{
		Color: gputypes.BlendComponent{SrcFactor: colorSrc, DstFactor: colorDst, Operation: colorOp},
		Alpha: gputypes.BlendComponent{SrcFactor: alphaSrc, DstFactor: alphaDst, Operation: alphaOp},
	}, nil
}

func halVertexFormat(f device.VertexFormat) (gputypes.VertexFormat, error) {
	switch f {
	case device.VertexFormatFloat32:
		return gputypes.VertexFormatFloat32, nil
	case device.VertexFormatFloat32x2:
		return gputypes.VertexFormatFloat32x2, nil
	case device.VertexFormatFloat32x4:
		return gputypes.VertexFormatFloat32x4, nil
	case device.VertexFormatUint32:
		return gputypes.VertexFormatUint32, nil
	case device.VertexFormatUint32x2:
		return gputypes.VertexFormatUint32x2, nil
	default:
		return 0, fmt.Errorf("%w: vertex format %d", device.ErrInvalidDescriptor, f)
	}
}

func halVertexLayout(layout *device.VertexBufferLayout) ([]gputypes.VertexBufferLayout, error) {
	if layout == nil {
		return nil, nil
	}
	attrs := make([]gputypes.VertexAttribute, len(layout.Attributes))
	for i, a := range layout.Attributes {
		format, err := halVertexFormat(a.Format)
		if err != nil {
			return nil, err
		}
		attrs[i] = gputypes.VertexAttribute{
			Format:         format,
			Offset:         uint64(a.Offset),
			ShaderLocation: a.ShaderLocation,
		}
	}
	return []gputypes.VertexBufferLayout{{
		ArrayStride: uint64(layout.Stride),
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes:  attrs,
	}}, nil
}

func halDepthCompare(c device.DepthCompare) gputypes.CompareFunction {
	if c == device.DepthCompareGreaterEqual {
		return gputypes.CompareFunctionGreaterEqual
	}
	return gputypes.CompareFunctionAlways
}

// bindGroupLayoutEntries maps the pipeline's declared bindings to hal
// layout entries. Uniform blocks are visible to both stages; textures
// and samplers only to the fragment stage, matching the generated WGSL.
func bindGroupLayoutEntries(bindings []device.BindingLayoutEntry) []gputypes.BindGroupLayoutEntry {
	entries := make([]gputypes.BindGroupLayoutEntry, 0, len(bindings))
	for _, b := range bindings {
		switch b.Kind {
		case device.BindingUniformBuffer:
			entries = append(entries, gputypes.BindGroupLayoutEntry{
				Binding:    b.Binding,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			})
		case device.BindingTexture:
			entries = append(entries, gputypes.BindGroupLayoutEntry{
				Binding:    b.Binding,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			})
		case device.BindingSampler:
			entries = append(entries, gputypes.BindGroupLayoutEntry{
				Binding:    b.Binding,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			})
		}
	}
	return entries
}

// CreateRenderPipeline creates a render pipeline together with its
// layout objects.
func (d *Device) CreateRenderPipeline(desc *device.RenderPipelineDescriptor) (device.Pipeline, error) {
	vs, ok := desc.VertexShader.(*shaderModule)
	if !ok || vs == nil {
		return nil, fmt.Errorf("%w: pipeline %q has no vertex shader", device.ErrInvalidDescriptor, desc.Label)
	}
	fs, ok := desc.FragmentShader.(*shaderModule)
	if !ok || fs == nil {
		return nil, fmt.Errorf("%w: pipeline %q has no fragment shader", device.ErrInvalidDescriptor, desc.Label)
	}
	if desc.Blend != nil && !d.caps.DualSourceBlend {
		for _, f := range []device.BlendFactor{
			desc.Blend.Color.SrcFactor, desc.Blend.Color.DstFactor,
			desc.Blend.Alpha.SrcFactor, desc.Blend.Alpha.DstFactor,
		} {
			if f == device.BlendFactorSrc1Alpha || f == device.BlendFactorOneMinusSrc1Alpha {
				return nil, fmt.Errorf("%w: pipeline %q uses dual-source blending",
					device.ErrInvalidDescriptor, desc.Label)
			}
		}
	}

	bindLayout, err := d.dev.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   desc.Label + "_bind_layout",
		Entries: bindGroupLayoutEntries(desc.Bindings),
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create bind group layout %q: %w", desc.Label, err)
	}
	pipeLayout, err := d.dev.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            desc.Label + "_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{bindLayout},
	})
	if err != nil {
		d.dev.DestroyBindGroupLayout(bindLayout)
		return nil, fmt.Errorf("wgpu: create pipeline layout %q: %w", desc.Label, err)
	}

	vertexBuffers, err := halVertexLayout(desc.VertexLayout)
	if err != nil {
		d.dev.DestroyPipelineLayout(pipeLayout)
		d.dev.DestroyBindGroupLayout(bindLayout)
		return nil, err
	}

	var blend *gputypes.BlendState
	if desc.Blend != nil {
		blend, err = halBlendState(desc.Blend)
		if err != nil {
			d.dev.DestroyPipelineLayout(pipeLayout)
			d.dev.DestroyBindGroupLayout(bindLayout)
			return nil, err
		}
	}

	var depthStencil *hal.DepthStencilState
	if desc.Depth != nil {
		depthStencil = &hal.DepthStencilState{
			Format:            gputypes.TextureFormatDepth24PlusStencil8,
			DepthWriteEnabled: desc.Depth.WriteEnabled,
			DepthCompare:      halDepthCompare(desc.Depth.Compare),
			StencilFront: hal.StencilFaceState{
				Compare:     gputypes.CompareFunctionAlways,
				FailOp:      hal.StencilOperationKeep,
				DepthFailOp: hal.StencilOperationKeep,
				PassOp:      hal.StencilOperationKeep,
			},
			StencilBack: hal.StencilFaceState{
				Compare:     gputypes.CompareFunctionAlways,
				FailOp:      hal.StencilOperationKeep,
				DepthFailOp: hal.StencilOperationKeep,
				PassOp:      hal.StencilOperationKeep,
			},
			StencilReadMask:  0x00,
			StencilWriteMask: 0x00,
		}
	}

	sampleCount := desc.SampleCount
	if sampleCount == 0 {
		sampleCount = 1
	}

	writeMask := gputypes.ColorWriteMaskAll
	if desc.DepthOnly {
		writeMask = 0
	}

	pipe, err := d.dev.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  desc.Label,
		Layout: pipeLayout,
		Vertex: hal.VertexState{
			Module:     vs.mod,
			EntryPoint: desc.VertexEntry,
			Buffers:    vertexBuffers,
		},
		Fragment: &hal.FragmentState{
			Module:     fs.mod,
			EntryPoint: desc.FragmentEntry,
			Targets: []gputypes.ColorTargetState{{
				Format:    desc.ColorFormat,
				Blend:     blend,
				WriteMask: writeMask,
			}},
		},
		DepthStencil: depthStencil,
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: sampleCount,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		d.dev.DestroyPipelineLayout(pipeLayout)
		d.dev.DestroyBindGroupLayout(bindLayout)
		return nil, fmt.Errorf("wgpu: create pipeline %q: %w", desc.Label, err)
	}

	return &pipeline{
		owner:      d,
		pipe:       pipe,
		pipeLayout: pipeLayout,
		bindLayout: bindLayout,
		bindings:   desc.Bindings,
		label:      desc.Label,
	}, nil
}

// Label returns the debug label the pipeline was created with.
func (p *pipeline) Label() string { return p.label }

// Destroy releases the pipeline and its layouts.
func (p *pipeline) Destroy() {
	if p.destroyed {
		return
	}
	p.destroyed = true
	p.owner.dev.DestroyRenderPipeline(p.pipe)
	p.owner.dev.DestroyPipelineLayout(p.pipeLayout)
	p.owner.dev.DestroyBindGroupLayout(p.bindLayout)
}
