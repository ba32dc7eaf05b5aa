// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/eltociear/duckstation/device"
	"github.com/eltociear/duckstation/gpu"
)

// renderPass implements device.RenderPass. Draw state set between draws
// is materialized into a fresh bind group at each Draw, because hal bind
// groups are immutable once created. Transient bind groups and uniform
// buffers are released once End has drained the submission.
type renderPass struct {
	owner   *Device
	encoder hal.CommandEncoder
	rp      hal.RenderPassEncoder
	label   string

	pipeline *pipeline
	textures map[uint32]*texture
	samplers map[uint32]*sampler
	uniforms []byte

	// stateDirty forces a new bind group before the next draw.
	stateDirty bool

	transientBufs   []hal.Buffer
	transientGroups []hal.BindGroup

	ended  bool
	failed bool
}

// BeginRenderPass starts recording a render pass. Only one pass may be
// open at a time.
func (d *Device) BeginRenderPass(desc *device.RenderPassDescriptor) (device.RenderPass, error) {
	colorTex, ok := desc.Color.Texture.(*texture)
	if !ok || colorTex == nil {
		return nil, fmt.Errorf("%w: pass %q has no color attachment", device.ErrInvalidDescriptor, desc.Label)
	}

	encoder, err := d.dev.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: desc.Label + "_encoder",
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create encoder %q: %w", desc.Label, err)
	}
	if err := encoder.BeginEncoding(desc.Label); err != nil {
		return nil, fmt.Errorf("wgpu: begin encoding %q: %w", desc.Label, err)
	}

	colorLoad := gputypes.LoadOpLoad
	if desc.Color.Load == device.LoadOpClear {
		colorLoad = gputypes.LoadOpClear
	}
	rpDesc := &hal.RenderPassDescriptor{
		Label: desc.Label,
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:    colorTex.view,
			LoadOp:  colorLoad,
			StoreOp: gputypes.StoreOpStore,
			ClearValue: gputypes.Color{
				R: float64(desc.Color.Clear[0]),
				G: float64(desc.Color.Clear[1]),
				B: float64(desc.Color.Clear[2]),
				A: float64(desc.Color.Clear[3]),
			},
		}},
	}
	if desc.Depth != nil {
		depthTex, ok := desc.Depth.Texture.(*texture)
		if !ok || depthTex == nil {
			encoder.DiscardEncoding()
			return nil, fmt.Errorf("%w: pass %q depth attachment", device.ErrInvalidDescriptor, desc.Label)
		}
		depthLoad := gputypes.LoadOpLoad
		if desc.Depth.Load == device.LoadOpClear {
			depthLoad = gputypes.LoadOpClear
		}
		rpDesc.DepthStencilAttachment = &hal.RenderPassDepthStencilAttachment{
			View:              depthTex.view,
			DepthLoadOp:       depthLoad,
			DepthStoreOp:      gputypes.StoreOpStore,
			DepthClearValue:   desc.Depth.Clear,
			StencilLoadOp:     gputypes.LoadOpClear,
			StencilStoreOp:    gputypes.StoreOpDiscard,
			StencilClearValue: 0,
		}
	}

	rp := encoder.BeginRenderPass(rpDesc)
	return &renderPass{
		owner:      d,
		encoder:    encoder,
		rp:         rp,
		label:      desc.Label,
		textures:   make(map[uint32]*texture),
		samplers:   make(map[uint32]*sampler),
		stateDirty: true,
	}, nil
}

// SetPipeline binds a render pipeline for subsequent draws.
func (p *renderPass) SetPipeline(pl device.Pipeline) {
	if p.ended {
		return
	}
	wp, ok := pl.(*pipeline)
	if !ok {
		p.failed = true
		return
	}
	p.pipeline = wp
	p.rp.SetPipeline(wp.pipe)
	p.stateDirty = true
}

// SetVertexBuffer binds the vertex buffer at slot 0.
func (p *renderPass) SetVertexBuffer(b device.Buffer) {
	if p.ended {
		return
	}
	wb, ok := b.(*buffer)
	if !ok {
		p.failed = true
		return
	}
	p.rp.SetVertexBuffer(0, wb.buf, 0)
}

// SetScissor restricts rasterization to the given rectangle.
func (p *renderPass) SetScissor(rect device.ScissorRect) {
	if p.ended {
		return
	}
	p.rp.SetScissorRect(rect.X, rect.Y, rect.Width, rect.Height)
}

// SetTexture binds a texture at binding index slot, with the sampler at
// slot+1 when non-nil.
func (p *renderPass) SetTexture(slot uint32, t device.Texture, s device.Sampler) {
	if p.ended {
		return
	}
	wt, ok := t.(*texture)
	if !ok {
		p.failed = true
		return
	}
	p.textures[slot] = wt
	if s != nil {
		ws, ok := s.(*sampler)
		if !ok {
			p.failed = true
			return
		}
		p.samplers[slot+1] = ws
	}
	p.stateDirty = true
}

// SetUniforms uploads the uniform block for subsequent draws.
func (p *renderPass) SetUniforms(data []byte) {
	if p.ended {
		return
	}
	p.uniforms = append(p.uniforms[:0], data...)
	p.stateDirty = true
}

// bindGroupEntries assembles bind group entries for the current pipeline
// from the bound state.
func (p *renderPass) bindGroupEntries() ([]gputypes.BindGroupEntry, error) {
	entries := make([]gputypes.BindGroupEntry, 0, len(p.pipeline.bindings))
	for _, b := range p.pipeline.bindings {
		switch b.Kind {
		case device.BindingUniformBuffer:
			// Uniforms are uploaded with 16-byte padding so short
			// blocks still satisfy WGSL struct alignment.
			size := (uint64(len(p.uniforms)) + 15) &^ 15
			if size == 0 {
				size = 16
			}
			ub, err := p.owner.dev.CreateBuffer(&hal.BufferDescriptor{
				Label: p.label + "_uniforms",
				Size:  size,
				Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
			})
			if err != nil {
				return nil, fmt.Errorf("wgpu: create uniform buffer: %w", err)
			}
			p.transientBufs = append(p.transientBufs, ub)
			padded := make([]byte, size)
			copy(padded, p.uniforms)
			if err := p.owner.queue.WriteBuffer(ub, 0, padded); err != nil {
				return nil, fmt.Errorf("wgpu: write uniform buffer: %w", err)
			}
			entries = append(entries, gputypes.BindGroupEntry{
				Binding: b.Binding,
				Resource: gputypes.BufferBinding{
					Buffer: ub.NativeHandle(), Offset: 0, Size: size,
				},
			})
		case device.BindingTexture:
			t, ok := p.textures[b.Binding]
			if !ok {
				return nil, fmt.Errorf("wgpu: pipeline %q needs a texture at binding %d",
					p.pipeline.label, b.Binding)
			}
			entries = append(entries, gputypes.BindGroupEntry{
				Binding:  b.Binding,
				Resource: gputypes.TextureViewBinding{TextureView: t.view.NativeHandle()},
			})
		case device.BindingSampler:
			s, ok := p.samplers[b.Binding]
			if !ok {
				return nil, fmt.Errorf("wgpu: pipeline %q needs a sampler at binding %d",
					p.pipeline.label, b.Binding)
			}
			entries = append(entries, gputypes.BindGroupEntry{
				Binding:  b.Binding,
				Resource: gputypes.SamplerBinding{Sampler: s.smp.NativeHandle()},
			})
		}
	}
	return entries, nil
}

// Draw draws count vertices starting at first.
func (p *renderPass) Draw(first, count uint32) {
	if p.ended || p.failed || count == 0 {
		return
	}
	if p.pipeline == nil {
		p.failed = true
		return
	}
	if p.stateDirty {
		entries, err := p.bindGroupEntries()
		if err != nil {
			gpu.Logger().Warn("bind group assembly failed", "pass", p.label, "error", err)
			p.failed = true
			return
		}
		bg, err := p.owner.dev.CreateBindGroup(&hal.BindGroupDescriptor{
			Label:   p.label + "_bind",
			Layout:  p.pipeline.bindLayout,
			Entries: entries,
		})
		if err != nil {
			gpu.Logger().Warn("bind group creation failed", "pass", p.label, "error", err)
			p.failed = true
			return
		}
		p.transientGroups = append(p.transientGroups, bg)
		p.rp.SetBindGroup(0, bg, nil)
		p.stateDirty = false
	}
	p.rp.Draw(count, 1, first, 0)
}

// End finishes the pass, submits it and waits for completion.
func (p *renderPass) End() {
	if p.ended {
		return
	}
	p.ended = true
	p.rp.End()

	defer p.releaseTransients()

	if p.failed {
		p.encoder.DiscardEncoding()
		return
	}
	cmdBuf, err := p.encoder.EndEncoding()
	if err != nil {
		gpu.Logger().Warn("pass encoding failed", "pass", p.label, "error", err)
		return
	}
	defer p.owner.dev.FreeCommandBuffer(cmdBuf)

	if err := p.owner.submitAndWait(cmdBuf); err != nil {
		gpu.Logger().Warn("pass submit failed", "pass", p.label, "error", err)
	}
}

// releaseTransients destroys the per-pass bind groups and uniform
// buffers. Safe only after the submission has drained.
func (p *renderPass) releaseTransients() {
	for _, bg := range p.transientGroups {
		p.owner.dev.DestroyBindGroup(bg)
	}
	p.transientGroups = nil
	for _, buf := range p.transientBufs {
		p.owner.dev.DestroyBuffer(buf)
	}
	p.transientBufs = nil
}
