// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/eltociear/duckstation/device"
)

func TestHalTextureUsageMapping(t *testing.T) {
	u := halTextureUsage(device.TextureUsageCopySrc | device.TextureUsageRenderAttachment)
	if u&gputypes.TextureUsageCopySrc == 0 {
		t.Error("CopySrc not mapped")
	}
	if u&gputypes.TextureUsageRenderAttachment == 0 {
		t.Error("RenderAttachment not mapped")
	}
	if u&gputypes.TextureUsageCopyDst != 0 {
		t.Error("CopyDst mapped without being requested")
	}
}

func TestHalBufferUsageMapping(t *testing.T) {
	u := halBufferUsage(device.BufferUsageVertex | device.BufferUsageCopyDst)
	if u&gputypes.BufferUsageVertex == 0 {
		t.Error("Vertex not mapped")
	}
	if u&gputypes.BufferUsageCopyDst == 0 {
		t.Error("CopyDst not mapped")
	}
	if u&gputypes.BufferUsageUniform != 0 {
		t.Error("Uniform mapped without being requested")
	}
}

func TestHalBlendFactorRejectsDualSource(t *testing.T) {
	if _, err := halBlendFactor(device.BlendFactorSrc1Alpha); err == nil {
		t.Error("Src1Alpha should not map onto the hal blend factors")
	}
	if _, err := halBlendFactor(device.BlendFactorOne); err != nil {
		t.Errorf("One failed to map: %v", err)
	}
}

func TestHalBlendStateMapping(t *testing.T) {
	blend, err := halBlendState(&device.BlendState{
		Color: device.BlendComponent{
			SrcFactor: device.BlendFactorOne,
			DstFactor: device.BlendFactorSrcAlpha,
			Operation: device.BlendOperationReverseSubtract,
		},
		Alpha: device.BlendComponent{
			SrcFactor: device.BlendFactorOne,
			DstFactor: device.BlendFactorZero,
			Operation: device.BlendOperationAdd,
		},
	})
	if err != nil {
		t.Fatalf("halBlendState() error = %v", err)
	}
	if blend.Color.Operation != gputypes.BlendOperationReverseSubtract {
		t.Error("color operation not mapped to reverse subtract")
	}
	if blend.Alpha.DstFactor != gputypes.BlendFactorZero {
		t.Error("alpha destination factor not mapped to zero")
	}
}

func TestHalVertexLayout(t *testing.T) {
	layouts, err := halVertexLayout(&device.VertexBufferLayout{
		Stride: 28,
		Attributes: []device.VertexAttribute{
			{Format: device.VertexFormatFloat32x4, Offset: 0, ShaderLocation: 0},
			{Format: device.VertexFormatUint32, Offset: 16, ShaderLocation: 1},
		},
	})
	if err != nil {
		t.Fatalf("halVertexLayout() error = %v", err)
	}
	if len(layouts) != 1 {
		t.Fatalf("len(layouts) = %d, want 1", len(layouts))
	}
	if layouts[0].ArrayStride != 28 {
		t.Errorf("ArrayStride = %d, want 28", layouts[0].ArrayStride)
	}
	if layouts[0].Attributes[1].Offset != 16 {
		t.Errorf("attribute offset = %d, want 16", layouts[0].Attributes[1].Offset)
	}
}

func TestHalVertexLayoutNil(t *testing.T) {
	layouts, err := halVertexLayout(nil)
	if err != nil {
		t.Fatalf("halVertexLayout(nil) error = %v", err)
	}
	if layouts != nil {
		t.Error("halVertexLayout(nil) should return nil for fullscreen pipelines")
	}
}

func TestBindGroupLayoutEntries(t *testing.T) {
	entries := bindGroupLayoutEntries([]device.BindingLayoutEntry{
		{Binding: 0, Kind: device.BindingUniformBuffer},
		{Binding: 1, Kind: device.BindingTexture},
		{Binding: 2, Kind: device.BindingSampler},
	})
	if len(entries) != 3 {
		t.Fatalf("len(entries) = %d, want 3", len(entries))
	}
	if entries[0].Buffer == nil {
		t.Error("binding 0 missing buffer layout")
	}
	if entries[1].Texture == nil {
		t.Error("binding 1 missing texture layout")
	}
	if entries[2].Sampler == nil {
		t.Error("binding 2 missing sampler layout")
	}
	if entries[1].Visibility != gputypes.ShaderStageFragment {
		t.Error("texture binding should be fragment-only")
	}
}

func TestOpenWithoutGPU(t *testing.T) {
	// On machines without a usable Vulkan stack NewDevice must fail
	// cleanly rather than panic.
	dev, err := NewDevice()
	if err != nil {
		if !errors.Is(err, ErrNoAdapter) && dev != nil {
			t.Errorf("NewDevice() returned device alongside error %v", err)
		}
		t.Skipf("no GPU available: %v", err)
	}
	dev.Destroy()
}
