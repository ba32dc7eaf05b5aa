// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package hw

import (
	"strings"

	"github.com/eltociear/duckstation/gpu"
)

// Shader generation is deterministic: the same pipeline key always
// produces byte-identical WGSL, so compiled pipelines can be cached by
// key alone.

const shaderCommon = `const VRAM_WIDTH: f32 = 1024.0;
const VRAM_HEIGHT: f32 = 512.0;

fn rgba8_unpack(c: u32) -> vec4f {
  return vec4f(f32(c & 0xFFu), f32((c >> 8u) & 0xFFu),
               f32((c >> 16u) & 0xFFu), f32((c >> 24u) & 0xFFu)) / 255.0;
}

fn dither_offset(coords: vec2u) -> f32 {
  let matrix = array<f32, 16>(
    -4.0,  0.0, -3.0,  1.0,
     2.0, -2.0,  3.0, -1.0,
    -3.0,  1.0, -4.0,  0.0,
     3.0, -1.0,  2.0, -2.0);
  return matrix[(coords.y & 3u) * 4u + (coords.x & 3u)];
}
`

// batchShaderSource builds the WGSL module for a batch pipeline key.
// The module contains both vs_main and fs_main entry points.
func batchShaderSource(key BatchPipelineKey) string {
	var b strings.Builder
	b.WriteString(shaderCommon)

	b.WriteString(`
struct Uniforms {
  texture_window: vec4u,
  src_alpha_factor: f32,
  dst_alpha_factor: f32,
  resolution_scale: f32,
  active_field: u32,
};

@group(0) @binding(0) var<uniform> u: Uniforms;
`)
	if key.TextureMode != gpu.TextureModeDisabled {
		b.WriteString(`@group(0) @binding(1) var batch_texture: texture_2d<f32>;
@group(0) @binding(2) var batch_sampler: sampler;
`)
	}
	b.WriteString(`
struct VertexIn {
  @location(0) position: vec4f,
  @location(1) color: u32,
  @location(2) texpage: u32,
  @location(3) uv: u32,
  @location(4) uv_limits: u32,
};

struct VertexOut {
  @builtin(position) position: vec4f,
  @location(0) color: vec4f,
  @location(1) uv: vec2f,
  @location(2) @interpolate(flat) texpage: u32,
  @location(3) @interpolate(flat) uv_limits: u32,
};

@vertex
fn vs_main(in: VertexIn) -> VertexOut {
  var out: VertexOut;
  let x = in.position.x / VRAM_WIDTH * 2.0 - 1.0;
  let y = 1.0 - in.position.y / VRAM_HEIGHT * 2.0;
  out.position = vec4f(x * in.position.w, y * in.position.w, in.position.z, in.position.w);
  out.color = rgba8_unpack(in.color);
  out.uv = vec2f(f32(in.uv & 0xFFFFu), f32(in.uv >> 16u));
  out.texpage = in.texpage;
  out.uv_limits = in.uv_limits;
  return out;
}
`)

	// Fragment body assembled from the key's feature axes.
	b.WriteString(`
struct FragmentOut {
  @location(0) color: vec4f,
};

@fragment
fn fs_main(in: VertexOut) -> FragmentOut {
  var out: FragmentOut;
  var color = in.color;
`)
	if key.TextureMode != gpu.TextureModeDisabled {
		b.WriteString(`  let limits = in.uv_limits;
  let min_uv = vec2f(f32(limits & 0xFFu), f32((limits >> 8u) & 0xFFu));
  let max_uv = vec2f(f32((limits >> 16u) & 0xFFu), f32((limits >> 24u) & 0xFFu));
  let uv = clamp(in.uv, min_uv, max_uv) / 255.0;
  let texel = textureSampleLevel(batch_texture, batch_sampler, uv, 0.0);
  if (all(texel == vec4f(0.0))) {
    discard;
  }
  color = vec4f(color.rgb * texel.rgb * 2.0, texel.a);
`)
		switch key.RenderMode {
		case BatchRenderModeOnlyOpaque:
			b.WriteString(`  if (texel.a != 0.0) {
    discard;
  }
`)
		case BatchRenderModeOnlyTransparent:
			b.WriteString(`  if (texel.a == 0.0) {
    discard;
  }
`)
		}
	}
	if key.Interlacing {
		b.WriteString(`  if ((u32(in.position.y / u.resolution_scale) & 1u) == u.active_field) {
    discard;
  }
`)
	}
	if key.Dithering {
		b.WriteString(`  let dither = dither_offset(vec2u(in.position.xy)) / 255.0;
  color = vec4f(clamp(color.rgb + vec3f(dither), vec3f(0.0), vec3f(1.0)), color.a);
`)
	}
	switch key.RenderMode {
	case BatchRenderModeOnlyTransparent:
		b.WriteString(`  color = vec4f(color.rgb * u.src_alpha_factor, u.dst_alpha_factor);
`)
	case BatchRenderModeTransparentAndOpaque:
		if key.TextureMode != gpu.TextureModeDisabled {
			// The texel's mask bit selects blending per pixel. Opaque
			// texels write alpha 0 so the One/SrcAlpha equation leaves
			// the destination contribution at zero.
			b.WriteString(`  if (color.a != 0.0) {
    color = vec4f(color.rgb * u.src_alpha_factor, u.dst_alpha_factor);
  } else {
    color = vec4f(color.rgb, 0.0);
  }
`)
		} else {
			b.WriteString(`  color = vec4f(color.rgb * u.src_alpha_factor, u.dst_alpha_factor);
`)
		}
	}
	b.WriteString(`  out.color = color;
  return out;
}
`)
	return b.String()
}

// fillShaderSource builds the WGSL module for a VRAM fill pipeline.
func fillShaderSource(key FillPipelineKey) string {
	var b strings.Builder
	b.WriteString(shaderCommon)
	b.WriteString(`
struct FillUniforms {
  color: vec4f,
  dst_rect: vec4u,
  active_field: u32,
};

@group(0) @binding(0) var<uniform> u: FillUniforms;

@vertex
fn vs_main(@builtin(vertex_index) index: u32) -> @builtin(position) vec4f {
  let pos = vec2f(f32((index << 1u) & 2u), f32(index & 2u));
  return vec4f(pos * 2.0 - 1.0, 0.0, 1.0);
}

@fragment
fn fs_main(@builtin(position) position: vec4f) -> @location(0) vec4f {
`)
	if key.Interlaced {
		b.WriteString(`  if ((u32(position.y) & 1u) == u.active_field) {
    discard;
  }
`)
	}
	if key.Wrapped {
		b.WriteString(`  let coords = vec2u(position.xy);
  let wrapped = vec2u(coords.x % u32(VRAM_WIDTH), coords.y % u32(VRAM_HEIGHT));
  if (wrapped.x < u.dst_rect.x || wrapped.y < u.dst_rect.y) {
    discard;
  }
`)
	}
	b.WriteString(`  return u.color;
}
`)
	return b.String()
}

// vramWriteShaderSource builds the WGSL module for uploading CPU pixels
// into the scaled framebuffer.
func vramWriteShaderSource(depthTest bool) string {
	var b strings.Builder
	b.WriteString(shaderCommon)
	b.WriteString(`
@group(0) @binding(0) var write_texture: texture_2d<f32>;
@group(0) @binding(1) var write_sampler: sampler;

struct VertexOut {
  @builtin(position) position: vec4f,
  @location(0) uv: vec2f,
};

@vertex
fn vs_main(@builtin(vertex_index) index: u32) -> VertexOut {
  var out: VertexOut;
  let pos = vec2f(f32((index << 1u) & 2u), f32(index & 2u));
  out.position = vec4f(pos * 2.0 - 1.0, 0.0, 1.0);
  out.uv = vec2f(pos.x, 1.0 - pos.y);
  return out;
}

@fragment
fn fs_main(in: VertexOut) -> @location(0) vec4f {
  return textureSampleLevel(write_texture, write_sampler, in.uv, 0.0);
}
`)
	if depthTest {
		b.WriteString("// depth variant\n")
	}
	return b.String()
}

// vramCopyShaderSource builds the WGSL module for scaled VRAM-to-VRAM
// rectangle copies.
func vramCopyShaderSource(depthTest bool) string {
	var b strings.Builder
	b.WriteString(shaderCommon)
	b.WriteString(`
struct CopyUniforms {
  src_rect: vec4f,
};

@group(0) @binding(0) var<uniform> u: CopyUniforms;
@group(0) @binding(1) var copy_texture: texture_2d<f32>;
@group(0) @binding(2) var copy_sampler: sampler;

struct VertexOut {
  @builtin(position) position: vec4f,
  @location(0) uv: vec2f,
};

@vertex
fn vs_main(@builtin(vertex_index) index: u32) -> VertexOut {
  var out: VertexOut;
  let pos = vec2f(f32((index << 1u) & 2u), f32(index & 2u));
  out.position = vec4f(pos * 2.0 - 1.0, 0.0, 1.0);
  out.uv = u.src_rect.xy + pos * u.src_rect.zw;
  return out;
}

@fragment
fn fs_main(in: VertexOut) -> @location(0) vec4f {
  return textureSampleLevel(copy_texture, copy_sampler, in.uv, 0.0);
}
`)
	if depthTest {
		b.WriteString("// depth variant\n")
	}
	return b.String()
}

// vramUpdateDepthShaderSource builds the WGSL module rebuilding the
// depth buffer from the framebuffer's mask bits. The read-back texture
// carries the mask bit in alpha; protected pixels seed the far plane so
// the greater-or-equal test rejects every later primitive, unprotected
// pixels seed zero and accept anything.
func vramUpdateDepthShaderSource() string {
	var b strings.Builder
	b.WriteString(shaderCommon)
	b.WriteString(`
@group(0) @binding(0) var depth_texture: texture_2d<f32>;
@group(0) @binding(1) var depth_sampler: sampler;

struct VertexOut {
  @builtin(position) position: vec4f,
  @location(0) uv: vec2f,
};

@vertex
fn vs_main(@builtin(vertex_index) index: u32) -> VertexOut {
  var out: VertexOut;
  let pos = vec2f(f32((index << 1u) & 2u), f32(index & 2u));
  out.position = vec4f(pos * 2.0 - 1.0, 0.0, 1.0);
  out.uv = vec2f(pos.x, 1.0 - pos.y);
  return out;
}

struct FragmentOut {
  @builtin(frag_depth) depth: f32,
  @location(0) color: vec4f,
};

@fragment
fn fs_main(in: VertexOut) -> FragmentOut {
  var out: FragmentOut;
  let texel = textureSampleLevel(depth_texture, depth_sampler, in.uv, 0.0);
  out.depth = select(0.0, 1.0, texel.a != 0.0);
  out.color = vec4f(0.0);
  return out;
}
`)
	return b.String()
}

// displayShaderSource builds the WGSL module presenting the framebuffer.
func displayShaderSource(key DisplayPipelineKey) string {
	var b strings.Builder
	b.WriteString(shaderCommon)
	b.WriteString(`
struct DisplayUniforms {
  src_origin: vec2u,
  field_offset: u32,
  resolution_scale: u32,
};

@group(0) @binding(0) var<uniform> u: DisplayUniforms;
@group(0) @binding(1) var display_texture: texture_2d<f32>;
@group(0) @binding(2) var display_sampler: sampler;

struct VertexOut {
  @builtin(position) position: vec4f,
  @location(0) uv: vec2f,
};

@vertex
fn vs_main(@builtin(vertex_index) index: u32) -> VertexOut {
  var out: VertexOut;
  let pos = vec2f(f32((index << 1u) & 2u), f32(index & 2u));
  out.position = vec4f(pos * 2.0 - 1.0, 0.0, 1.0);
  out.uv = vec2f(pos.x, 1.0 - pos.y);
  return out;
}

@fragment
fn fs_main(in: VertexOut) -> @location(0) vec4f {
  var coords = vec2u(in.uv * vec2f(VRAM_WIDTH, VRAM_HEIGHT)) + u.src_origin;
`)
	switch key.InterlaceMode {
	case InterlacedRenderModeInterleavedFields:
		b.WriteString(`  coords.y = (coords.y & ~1u) | u.field_offset;
`)
	case InterlacedRenderModeSeparateFields:
		b.WriteString(`  coords.y = coords.y * 2u + u.field_offset;
`)
	}
	if key.Depth24 {
		// Three consecutive bytes per pixel, repacked from the 16-bit
		// framebuffer words.
		b.WriteString(`  let word_x = coords.x * 3u / 2u;
  let w0 = vec4u(textureLoad(display_texture, vec2u(word_x, coords.y), 0) * 255.0);
  let w1 = vec4u(textureLoad(display_texture, vec2u(word_x + 1u, coords.y), 0) * 255.0);
  var rgb: vec3u;
  if ((coords.x & 1u) == 0u) {
    rgb = vec3u(w0.r, w0.g, w1.r);
  } else {
    rgb = vec3u(w0.g, w1.r, w1.g);
  }
  return vec4f(vec3f(rgb) / 255.0, 1.0);
`)
	} else {
		b.WriteString(`  return vec4f(textureLoad(display_texture, coords, 0).rgb, 1.0);
`)
	}
	b.WriteString(`}
`)
	return b.String()
}

// downsampleShaderSource builds the WGSL module for one downsample pass.
func downsampleShaderSource(pass DownsamplePass) string {
	var b strings.Builder
	b.WriteString(shaderCommon)
	b.WriteString(`
@group(0) @binding(0) var down_texture: texture_2d<f32>;
@group(0) @binding(1) var down_sampler: sampler;

struct VertexOut {
  @builtin(position) position: vec4f,
  @location(0) uv: vec2f,
};

@vertex
fn vs_main(@builtin(vertex_index) index: u32) -> VertexOut {
  var out: VertexOut;
  let pos = vec2f(f32((index << 1u) & 2u), f32(index & 2u));
  out.position = vec4f(pos * 2.0 - 1.0, 0.0, 1.0);
  out.uv = vec2f(pos.x, 1.0 - pos.y);
  return out;
}
`)
	switch pass {
	case DownsamplePassBox:
		b.WriteString(`
@fragment
fn fs_main(in: VertexOut) -> @location(0) vec4f {
  return textureSampleLevel(down_texture, down_sampler, in.uv, 0.0);
}
`)
	case DownsamplePassFirst, DownsamplePassMid:
		// Luminance is carried in alpha for the weight estimation of
		// the following pass.
		b.WriteString(`
@fragment
fn fs_main(in: VertexOut) -> @location(0) vec4f {
  let color = textureSampleLevel(down_texture, down_sampler, in.uv, 0.0);
  let lum = dot(color.rgb, vec3f(0.299, 0.587, 0.114));
  return vec4f(color.rgb, lum);
}
`)
	case DownsamplePassBlur:
		b.WriteString(`
@fragment
fn fs_main(in: VertexOut) -> @location(0) vec4f {
  let size = vec2f(textureDimensions(down_texture));
  let step = 1.0 / size;
  var sum = 0.0;
  for (var dy = -1; dy <= 1; dy++) {
    for (var dx = -1; dx <= 1; dx++) {
      let offset = vec2f(f32(dx), f32(dy)) * step;
      sum += textureSampleLevel(down_texture, down_sampler, in.uv + offset, 0.0).a;
    }
  }
  return vec4f(vec3f(0.0), sum / 9.0);
}
`)
	case DownsamplePassComposite:
		b.WriteString(`
@group(0) @binding(2) var weight_texture: texture_2d<f32>;

@fragment
fn fs_main(in: VertexOut) -> @location(0) vec4f {
  let weight = textureSampleLevel(weight_texture, down_sampler, in.uv, 0.0).a;
  let level = clamp(weight * 4.0, 0.0, 3.0);
  let color = textureSampleLevel(down_texture, down_sampler, in.uv, level);
  return vec4f(color.rgb, 1.0);
}
`)
	}
	return b.String()
}
