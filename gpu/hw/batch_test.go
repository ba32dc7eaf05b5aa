// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package hw

import (
	"testing"

	"github.com/eltociear/duckstation/gpu"
)

func TestNeedsTwoPassRendering(t *testing.T) {
	tests := []struct {
		name       string
		config     BatchConfig
		dualSource bool
		want       bool
	}{
		{
			name: "untextured transparent",
			config: BatchConfig{
				TextureMode:      gpu.TextureModeDisabled,
				TransparencyMode: gpu.TransparencyBackgroundPlusForeground,
			},
			want: false,
		},
		{
			name: "textured opaque",
			config: BatchConfig{
				TextureMode:      gpu.TextureModePalette4Bit,
				TransparencyMode: gpu.TransparencyDisabled,
			},
			dualSource: true,
			want:       false,
		},
		{
			name: "textured transparent with dual source",
			config: BatchConfig{
				TextureMode:      gpu.TextureModePalette8Bit,
				TransparencyMode: gpu.TransparencyBackgroundPlusForeground,
			},
			dualSource: true,
			want:       false,
		},
		{
			name: "textured transparent without dual source",
			config: BatchConfig{
				TextureMode:      gpu.TextureModePalette8Bit,
				TransparencyMode: gpu.TransparencyBackgroundPlusForeground,
			},
			want: true,
		},
		{
			name: "subtractive always splits",
			config: BatchConfig{
				TextureMode:      gpu.TextureModeDirect16Bit,
				TransparencyMode: gpu.TransparencyBackgroundMinusForeground,
			},
			dualSource: true,
			want:       true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.config.NeedsTwoPassRendering(tt.dualSource); got != tt.want {
				t.Errorf("NeedsTwoPassRendering(%v) = %v, want %v", tt.dualSource, got, tt.want)
			}
		})
	}
}

func TestRenderMode(t *testing.T) {
	opaque := BatchConfig{TransparencyMode: gpu.TransparencyDisabled}
	if got := opaque.RenderMode(); got != BatchRenderModeTransparencyDisabled {
		t.Errorf("opaque RenderMode() = %v", got)
	}
	blended := BatchConfig{TransparencyMode: gpu.TransparencyBackgroundPlusForeground}
	if got := blended.RenderMode(); got != BatchRenderModeTransparentAndOpaque {
		t.Errorf("blended RenderMode() = %v", got)
	}
}
