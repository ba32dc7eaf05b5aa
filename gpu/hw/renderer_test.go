// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package hw

import (
	"strings"
	"testing"

	"github.com/eltociear/duckstation/device"
	"github.com/eltociear/duckstation/gpu"
)

func newTestRenderer(t *testing.T, opts device.SoftwareDeviceOptions, cfg Config) (*Renderer, *device.SoftwareDevice) {
	t.Helper()
	dev := device.NewSoftwareDevice(opts)
	r, err := NewRenderer(dev, cfg)
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	t.Cleanup(func() {
		r.Destroy()
		dev.Destroy()
	})
	r.SetDrawingArea(gpu.DrawingArea{Left: 0, Top: 0, Right: 1023, Bottom: 511})
	dev.ResetDrawCalls()
	return r, dev
}

// flatTriangle builds an untextured opaque triangle command.
func flatTriangle(x, y int32) *gpu.DrawCommand {
	return &gpu.DrawCommand{
		Command: gpu.RenderCommand(1 << 29),
		Vertices: []gpu.CommandVertex{
			{X: x, Y: y, Color: 0x0000FF},
			{X: x + 16, Y: y, Color: 0x0000FF},
			{X: x, Y: y + 16, Color: 0x0000FF},
		},
		Window: gpu.NewTextureWindow(0, 0, 0, 0),
	}
}

// texturedTriangle builds a direct-color textured triangle on the given
// page, optionally blended with the given equation.
func texturedTriangle(page uint16, transparent bool, mode gpu.TransparencyMode) *gpu.DrawCommand {
	command := gpu.RenderCommand(1<<29 | 1<<26)
	drawMode := gpu.DrawModeReg(page&0x1F) | gpu.DrawModeReg(2)<<7
	if transparent {
		command |= 1 << 25
		drawMode |= gpu.DrawModeReg(mode) << 5
	}
	return &gpu.DrawCommand{
		Command: command,
		Vertices: []gpu.CommandVertex{
			{X: 32, Y: 32, Color: 0x808080, U: 0, V: 0},
			{X: 96, Y: 32, Color: 0x808080, U: 64, V: 0},
			{X: 32, Y: 96, Color: 0x808080, U: 0, V: 64},
		},
		DrawMode: drawMode,
		Window:   gpu.NewTextureWindow(0, 0, 0, 0),
	}
}

func dispatch(t *testing.T, r *Renderer, cmd *gpu.DrawCommand) {
	t.Helper()
	if err := r.DispatchRenderCommand(cmd); err != nil {
		t.Fatalf("DispatchRenderCommand: %v", err)
	}
}

func TestEmptyFlushIsNoop(t *testing.T) {
	r, dev := newTestRenderer(t, device.SoftwareDeviceOptions{}, Config{})

	r.FlushRender()
	if n := len(dev.DrawCalls()); n != 0 {
		t.Errorf("empty flush recorded %d draws", n)
	}
	if r.Stats().BatchesFlushed != 0 {
		t.Errorf("empty flush counted as a batch")
	}
	if r.CurrentDepth() != 1 {
		t.Errorf("empty flush moved the depth counter")
	}
}

func TestBatchAccumulatesUntilFlush(t *testing.T) {
	r, dev := newTestRenderer(t, device.SoftwareDeviceOptions{}, Config{})

	dispatch(t, r, flatTriangle(10, 10))
	dispatch(t, r, flatTriangle(40, 10))
	dispatch(t, r, flatTriangle(70, 10))
	if n := len(dev.DrawCalls()); n != 0 {
		t.Fatalf("dispatch drew before flush: %d draws", n)
	}

	r.FlushRender()
	calls := dev.DrawCalls()
	if len(calls) != 1 {
		t.Fatalf("got %d draws, want 1", len(calls))
	}
	if calls[0].Pass != "batch" {
		t.Errorf("pass = %q, want %q", calls[0].Pass, "batch")
	}
	if calls[0].First != 0 || calls[0].Count != 9 {
		t.Errorf("draw range = (%d, %d), want (0, 9)", calls[0].First, calls[0].Count)
	}
	if got := r.Stats(); got.BatchesFlushed != 1 || got.PrimitivesDrawn != 3 {
		t.Errorf("stats = %+v", got)
	}
}

func TestConfigChangeForcesFlush(t *testing.T) {
	r, dev := newTestRenderer(t, device.SoftwareDeviceOptions{}, Config{})

	dispatch(t, r, flatTriangle(10, 10))
	// A transparent primitive has a different batch configuration.
	blended := flatTriangle(40, 10)
	blended.Command |= 1 << 25
	dispatch(t, r, blended)

	if n := len(dev.DrawCalls()); n != 1 {
		t.Fatalf("got %d draws after config change, want 1", n)
	}
	r.FlushRender()
	calls := dev.DrawCalls()
	if len(calls) != 2 {
		t.Fatalf("got %d draws, want 2", len(calls))
	}
	if !strings.Contains(calls[0].Pipeline, "TransparencyDisabled") {
		t.Errorf("first draw pipeline = %q", calls[0].Pipeline)
	}
	if !strings.Contains(calls[1].Pipeline, "TransparentAndOpaque") {
		t.Errorf("second draw pipeline = %q", calls[1].Pipeline)
	}
	// The second batch starts after the first batch's vertices.
	if calls[1].First != 3 {
		t.Errorf("second batch first vertex = %d, want 3", calls[1].First)
	}
}

func TestTwoPassTransparency(t *testing.T) {
	r, dev := newTestRenderer(t, device.SoftwareDeviceOptions{}, Config{})

	dispatch(t, r, texturedTriangle(0, true, gpu.TransparencyHalfBackgroundPlusHalfForeground))
	r.FlushRender()

	calls := dev.DrawCalls()
	if len(calls) != 2 {
		t.Fatalf("got %d draws, want 2", len(calls))
	}
	if !strings.Contains(calls[0].Pipeline, "OnlyOpaque") {
		t.Errorf("first pass pipeline = %q, want OnlyOpaque", calls[0].Pipeline)
	}
	if !strings.Contains(calls[1].Pipeline, "OnlyTransparent") {
		t.Errorf("second pass pipeline = %q, want OnlyTransparent", calls[1].Pipeline)
	}
	if calls[0].Pass != calls[1].Pass {
		t.Errorf("passes differ: %q vs %q", calls[0].Pass, calls[1].Pass)
	}
	if calls[0].First != calls[1].First || calls[0].Count != calls[1].Count {
		t.Errorf("both passes must draw the same range: %+v vs %+v", calls[0], calls[1])
	}
}

func TestDualSourceBlendSinglePass(t *testing.T) {
	r, dev := newTestRenderer(t, device.SoftwareDeviceOptions{DualSourceBlend: true}, Config{})

	dispatch(t, r, texturedTriangle(0, true, gpu.TransparencyHalfBackgroundPlusHalfForeground))
	r.FlushRender()

	calls := dev.DrawCalls()
	if len(calls) != 1 {
		t.Fatalf("got %d draws, want 1", len(calls))
	}
	if !strings.Contains(calls[0].Pipeline, "TransparentAndOpaque") {
		t.Errorf("pipeline = %q, want TransparentAndOpaque", calls[0].Pipeline)
	}
}

func TestSubtractiveBlendAlwaysTwoPass(t *testing.T) {
	r, dev := newTestRenderer(t, device.SoftwareDeviceOptions{DualSourceBlend: true}, Config{})

	dispatch(t, r, texturedTriangle(0, true, gpu.TransparencyBackgroundMinusForeground))
	r.FlushRender()

	if n := len(dev.DrawCalls()); n != 2 {
		t.Fatalf("got %d draws, want 2", n)
	}
}

func TestTextureSourceChangeForcesFlush(t *testing.T) {
	r, dev := newTestRenderer(t, device.SoftwareDeviceOptions{}, Config{})

	dispatch(t, r, texturedTriangle(0, false, 0))
	dispatch(t, r, texturedTriangle(5, false, 0))

	if n := len(dev.DrawCalls()); n != 1 {
		t.Fatalf("got %d draws after source change, want 1", n)
	}
	// The flush invalidated the pages the first batch drew over, which
	// destroyed the page 0 source; only the page 5 source survives.
	if r.TextureCache().Len() != 1 {
		t.Errorf("cache has %d sources, want 1", r.TextureCache().Len())
	}
	if r.batchSource == nil || r.batchSource.Key.Page != 5 {
		t.Errorf("batch source = %+v, want page 5", r.batchSource)
	}
}

func TestPrimitiveDepthStrictlyDecreases(t *testing.T) {
	r, _ := newTestRenderer(t, device.SoftwareDeviceOptions{}, Config{})

	prev := r.CurrentNormalizedDepth()
	for i := 1; i <= 3; i++ {
		dispatch(t, r, flatTriangle(10, 10))
		if got := r.CurrentDepth(); got != 1+uint32(i) {
			t.Fatalf("depth counter after %d primitives = %d, want %d", i, got, 1+uint32(i))
		}
		norm := r.CurrentNormalizedDepth()
		if norm < 0 || norm > 1 {
			t.Fatalf("normalized depth %v out of [0, 1]", norm)
		}
		// Later primitives must carry smaller depth so the
		// greater-or-equal test can reject them against protected
		// pixels.
		if norm >= prev {
			t.Fatalf("normalized depth %v did not decrease from %v", norm, prev)
		}
		prev = norm
	}
}

func TestDepthCounterExhaustion(t *testing.T) {
	r, _ := newTestRenderer(t, device.SoftwareDeviceOptions{}, Config{})

	dispatch(t, r, flatTriangle(10, 10))
	r.currentDepth = maxDepthCounter - 1

	dispatch(t, r, flatTriangle(40, 10))
	if got := r.CurrentDepth(); got != 1 {
		t.Errorf("depth counter after exhaustion = %d, want 1", got)
	}
	// The exhausted batch was flushed before the depth clear.
	if r.Stats().BatchesFlushed != 1 {
		t.Errorf("BatchesFlushed = %d, want 1", r.Stats().BatchesFlushed)
	}
}

func TestOversizedPrimitiveCulled(t *testing.T) {
	r, dev := newTestRenderer(t, device.SoftwareDeviceOptions{}, Config{})

	cmd := flatTriangle(0, 0)
	cmd.Vertices[1].X = 1200
	dispatch(t, r, cmd)

	r.FlushRender()
	if n := len(dev.DrawCalls()); n != 0 {
		t.Errorf("culled primitive produced %d draws", n)
	}
	if r.Stats().PrimitivesDrawn != 0 {
		t.Errorf("culled primitive counted as drawn")
	}
}

func TestPrimitiveOutsideDrawingAreaCulled(t *testing.T) {
	r, dev := newTestRenderer(t, device.SoftwareDeviceOptions{}, Config{})
	r.SetDrawingArea(gpu.DrawingArea{Left: 0, Top: 0, Right: 255, Bottom: 255})
	dev.ResetDrawCalls()

	dispatch(t, r, flatTriangle(400, 300))
	r.FlushRender()
	if n := len(dev.DrawCalls()); n != 0 {
		t.Errorf("clipped-out primitive produced %d draws", n)
	}
}

func TestRectangleTiling(t *testing.T) {
	r, dev := newTestRenderer(t, device.SoftwareDeviceOptions{}, Config{})

	// A 300x300 rectangle starting at texture coordinate (0, 0) crosses
	// one 256-texel boundary on each axis: four tiles, six vertices each.
	cmd := &gpu.DrawCommand{
		Command:  gpu.RenderCommand(3<<29 | 1<<26),
		Vertices: []gpu.CommandVertex{{X: 10, Y: 10, Color: 0xFFFFFF, U: 0, V: 0}},
		Width:    300,
		Height:   300,
		DrawMode: gpu.DrawModeReg(2) << 7,
		Window:   gpu.NewTextureWindow(0, 0, 0, 0),
	}
	dispatch(t, r, cmd)
	r.FlushRender()

	calls := dev.DrawCalls()
	if len(calls) != 1 {
		t.Fatalf("got %d draws, want 1", len(calls))
	}
	if calls[0].Count != 24 {
		t.Errorf("vertex count = %d, want 24", calls[0].Count)
	}
}

func TestFixedSizeRectangle(t *testing.T) {
	r, dev := newTestRenderer(t, device.SoftwareDeviceOptions{}, Config{})

	// The 16x16 size class overrides the command stream size.
	cmd := &gpu.DrawCommand{
		Command:  gpu.RenderCommand(3<<29) | gpu.RenderCommand(gpu.RectangleSize16x16)<<27,
		Vertices: []gpu.CommandVertex{{X: 10, Y: 10, Color: 0xFFFFFF}},
		Width:    999,
		Height:   999,
		Window:   gpu.NewTextureWindow(0, 0, 0, 0),
	}
	dispatch(t, r, cmd)
	r.FlushRender()

	calls := dev.DrawCalls()
	if len(calls) != 1 || calls[0].Count != 6 {
		t.Fatalf("calls = %+v, want one 6-vertex draw", calls)
	}
}

func TestScissorTracksDrawingArea(t *testing.T) {
	r, dev := newTestRenderer(t, device.SoftwareDeviceOptions{}, Config{})
	r.SetDrawingArea(gpu.DrawingArea{Left: 16, Top: 32, Right: 271, Bottom: 239})
	dev.ResetDrawCalls()

	dispatch(t, r, flatTriangle(20, 40))
	r.FlushRender()

	calls := dev.DrawCalls()
	if len(calls) != 1 {
		t.Fatalf("got %d draws, want 1", len(calls))
	}
	want := device.ScissorRect{X: 16, Y: 32, Width: 256, Height: 208}
	if calls[0].Scissor != want {
		t.Errorf("scissor = %+v, want %+v", calls[0].Scissor, want)
	}
}

func TestFillVRAM(t *testing.T) {
	r, dev := newTestRenderer(t, device.SoftwareDeviceOptions{}, Config{})

	if err := r.FillVRAM(8, 8, 16, 16, 0x0000FF); err != nil {
		t.Fatalf("FillVRAM: %v", err)
	}
	if got := r.VRAM().Get(8, 8); got != 0x001F {
		t.Errorf("shadow pixel = %#04x, want 0x001f", got)
	}
	if got := r.VRAM().Get(7, 8); got != 0 {
		t.Errorf("pixel outside fill = %#04x, want 0", got)
	}

	calls := dev.DrawCalls()
	if len(calls) != 1 || calls[0].Pass != "vram fill" {
		t.Fatalf("calls = %+v, want one vram fill draw", calls)
	}
	want := device.ScissorRect{X: 8, Y: 8, Width: 16, Height: 16}
	if calls[0].Scissor != want {
		t.Errorf("fill scissor = %+v, want %+v", calls[0].Scissor, want)
	}
	if !r.DirtyRect().Contains(gpu.NewRect(8, 8, 16, 16)) {
		t.Errorf("dirty rect %v does not cover the fill", r.DirtyRect())
	}
}

func TestFillInvalidatesTextureCache(t *testing.T) {
	r, _ := newTestRenderer(t, device.SoftwareDeviceOptions{}, Config{})

	key := SourceKey{Page: 0, Mode: gpu.TextureModeDirect16Bit}
	before, err := r.TextureCache().Lookup(key)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if err := r.FillVRAM(0, 0, 8, 8, 0xFFFFFF); err != nil {
		t.Fatalf("FillVRAM: %v", err)
	}
	after, err := r.TextureCache().Lookup(key)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	// The slab recycles slots, so the redecoded source can land at the
	// same address. Generations tell the two decodes apart.
	if before.Generation == after.Generation {
		t.Errorf("fill did not invalidate the overlapping source")
	}
}

func TestVRAMWriteRebuildsDepthFromMaskBits(t *testing.T) {
	r, dev := newTestRenderer(t, device.SoftwareDeviceOptions{}, Config{})
	r.SetMaskFlags(gpu.MaskFlags{CheckBeforeDraw: true})

	if err := r.FillVRAM(8, 8, 16, 16, 0); err != nil {
		t.Fatalf("FillVRAM: %v", err)
	}

	// The write must replay the mask bits into the depth attachment,
	// not wipe it: per-pixel protection comes from the rebuilt depth.
	var depthDraws int
	for _, call := range dev.DrawCalls() {
		if call.Pass == "vram update depth" {
			depthDraws++
			if call.Pipeline != "vramupdatedepth" {
				t.Errorf("depth update pipeline = %q", call.Pipeline)
			}
		}
	}
	if depthDraws != 1 {
		t.Fatalf("got %d depth update draws, want 1", depthDraws)
	}
	if r.Stats().VRAMReadTextureUpdates != 1 {
		t.Errorf("depth rebuild did not synchronize the read-back texture")
	}
}

func TestVRAMWriteOutsideDrawingAreaKeepsDepth(t *testing.T) {
	r, dev := newTestRenderer(t, device.SoftwareDeviceOptions{}, Config{})
	r.SetDrawingArea(gpu.DrawingArea{Left: 0, Top: 0, Right: 255, Bottom: 255})
	r.SetMaskFlags(gpu.MaskFlags{SetWhileDrawing: true})
	dev.ResetDrawCalls()

	if err := r.FillVRAM(512, 300, 16, 16, 0); err != nil {
		t.Fatalf("FillVRAM: %v", err)
	}
	for _, call := range dev.DrawCalls() {
		if call.Pass == "vram update depth" {
			t.Errorf("write outside the drawing area rebuilt the depth buffer")
		}
	}
}

func TestUpdateVRAM(t *testing.T) {
	r, dev := newTestRenderer(t, device.SoftwareDeviceOptions{}, Config{})

	data := []uint16{0x001F, 0x03E0, 0x7C00, 0xFFFF}
	if err := r.UpdateVRAM(100, 200, 2, 2, data, gpu.MaskFlags{}); err != nil {
		t.Fatalf("UpdateVRAM: %v", err)
	}
	got := r.VRAM().Read(100, 200, 2, 2)
	for i := range data {
		if got[i] != data[i] {
			t.Errorf("pixel %d = %#04x, want %#04x", i, got[i], data[i])
		}
	}
	calls := dev.DrawCalls()
	if len(calls) != 1 || calls[0].Pass != "vram write" {
		t.Fatalf("calls = %+v, want one vram write draw", calls)
	}
}

func TestUpdateVRAMShortData(t *testing.T) {
	r, _ := newTestRenderer(t, device.SoftwareDeviceOptions{}, Config{})

	if err := r.UpdateVRAM(0, 0, 4, 4, make([]uint16, 15), gpu.MaskFlags{}); err == nil {
		t.Fatalf("short update data accepted")
	}
}

func TestCopyVRAM(t *testing.T) {
	r, dev := newTestRenderer(t, device.SoftwareDeviceOptions{}, Config{})

	data := []uint16{0x001F, 0x03E0, 0x7C00, 0xFFFF}
	if err := r.UpdateVRAM(0, 0, 2, 2, data, gpu.MaskFlags{}); err != nil {
		t.Fatalf("UpdateVRAM: %v", err)
	}
	if err := r.CopyVRAM(0, 0, 500, 300, 2, 2); err != nil {
		t.Fatalf("CopyVRAM: %v", err)
	}
	got := r.VRAM().Read(500, 300, 2, 2)
	for i := range data {
		if got[i] != data[i] {
			t.Errorf("pixel %d = %#04x, want %#04x", i, got[i], data[i])
		}
	}

	// The source region was dirty, so the copy refreshed the read-back
	// texture before sampling it.
	if r.Stats().VRAMReadTextureUpdates != 1 {
		t.Errorf("VRAMReadTextureUpdates = %d, want 1", r.Stats().VRAMReadTextureUpdates)
	}
	calls := dev.DrawCalls()
	if len(calls) != 2 || calls[1].Pass != "vram copy" {
		t.Fatalf("calls = %+v, want write then copy", calls)
	}
	if !r.DirtyRect().Contains(gpu.NewRect(500, 300, 2, 2)) {
		t.Errorf("dirty rect %v does not cover the copy destination", r.DirtyRect())
	}
}

func TestReadVRAM(t *testing.T) {
	r, _ := newTestRenderer(t, device.SoftwareDeviceOptions{}, Config{})

	data := []uint16{0x1234, 0x5678}
	if err := r.UpdateVRAM(10, 20, 2, 1, data, gpu.MaskFlags{}); err != nil {
		t.Fatalf("UpdateVRAM: %v", err)
	}
	got := r.ReadVRAM(10, 20, 2, 1)
	for i := range data {
		if got[i] != data[i] {
			t.Errorf("pixel %d = %#04x, want %#04x", i, got[i], data[i])
		}
	}
	if r.DirtyRect().Valid() {
		t.Errorf("dirty rect still %v after read-back", r.DirtyRect())
	}
	if r.Stats().VRAMReadTextureUpdates != 1 {
		t.Errorf("VRAMReadTextureUpdates = %d, want 1", r.Stats().VRAMReadTextureUpdates)
	}
}

func TestWriteFlushesPendingBatch(t *testing.T) {
	r, dev := newTestRenderer(t, device.SoftwareDeviceOptions{}, Config{})

	dispatch(t, r, flatTriangle(10, 10))
	if err := r.FillVRAM(0, 0, 8, 8, 0); err != nil {
		t.Fatalf("FillVRAM: %v", err)
	}
	calls := dev.DrawCalls()
	if len(calls) != 2 {
		t.Fatalf("got %d draws, want batch then fill", len(calls))
	}
	if calls[0].Pass != "batch" || calls[1].Pass != "vram fill" {
		t.Errorf("pass order = %q, %q", calls[0].Pass, calls[1].Pass)
	}
}

func TestReset(t *testing.T) {
	r, _ := newTestRenderer(t, device.SoftwareDeviceOptions{}, Config{})

	dispatch(t, r, texturedTriangle(0, false, 0))
	r.VRAM().Set(0, 0, 0x1234)
	r.currentDepth = 5
	r.SetDrawingOffset(-4, 9)
	r.SetMaskFlags(gpu.MaskFlags{SetWhileDrawing: true, CheckBeforeDraw: true})
	r.SetDisplayConfig(gpu.DisplayConfig{Width: 320, Height: 240, Depth24: true})

	r.Reset(true)

	if got := r.VRAM().Get(0, 0); got != 0 {
		t.Errorf("VRAM not cleared: %#04x", got)
	}
	if r.TextureCache().Len() != 0 {
		t.Errorf("texture cache survived reset")
	}
	if r.PipelineCache().CompileCount() != 0 {
		t.Errorf("pipeline cache survived reset")
	}
	if r.CurrentDepth() != 1 {
		t.Errorf("depth counter = %d, want 1", r.CurrentDepth())
	}
	if !r.DirtyRect().Contains(gpu.NewRect(0, 0, gpu.VRAMWidth, gpu.VRAMHeight)) {
		t.Errorf("dirty rect %v not full after reset", r.DirtyRect())
	}
	// Draw state registers return to their power-on values.
	if r.drawingArea != (gpu.DrawingArea{}) {
		t.Errorf("drawing area %+v survived reset", r.drawingArea)
	}
	if r.offsetX != 0 || r.offsetY != 0 {
		t.Errorf("drawing offset (%d, %d) survived reset", r.offsetX, r.offsetY)
	}
	if r.mask != (gpu.MaskFlags{}) {
		t.Errorf("mask flags %+v survived reset", r.mask)
	}
	if r.display != (gpu.DisplayConfig{}) {
		t.Errorf("display config %+v survived reset", r.display)
	}
	// The discarded batch must not draw on the next flush.
	if r.Stats().BatchesFlushed != 0 {
		t.Errorf("reset flushed the pending batch")
	}
}

func TestUpdateSettings(t *testing.T) {
	r, dev := newTestRenderer(t, device.SoftwareDeviceOptions{}, Config{})

	if err := r.UpdateResolutionScale(2); err != nil {
		t.Fatalf("UpdateResolutionScale: %v", err)
	}
	if got := r.ResolutionScale(); got != 2 {
		t.Fatalf("ResolutionScale() = %d, want 2", got)
	}
	dev.ResetDrawCalls()

	dispatch(t, r, flatTriangle(10, 10))
	r.FlushRender()
	calls := dev.DrawCalls()
	if len(calls) != 1 {
		t.Fatalf("got %d draws, want 1", len(calls))
	}
	want := device.ScissorRect{Width: 2048, Height: 1024}
	if calls[0].Scissor != want {
		t.Errorf("scaled scissor = %+v, want %+v", calls[0].Scissor, want)
	}
}

func TestResolutionScaleClampedToDevice(t *testing.T) {
	dev := device.NewSoftwareDevice(device.SoftwareDeviceOptions{})
	t.Cleanup(dev.Destroy)

	r, err := NewRenderer(dev, Config{ResolutionScale: 64})
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	t.Cleanup(r.Destroy)

	// 8192 / 1024 = 8 is the device's largest representable scale.
	if got := r.ResolutionScale(); got != 8 {
		t.Errorf("ResolutionScale() = %d, want 8", got)
	}
}

func TestDownsampleFrameBox(t *testing.T) {
	r, _ := newTestRenderer(t, device.SoftwareDeviceOptions{}, Config{
		ResolutionScale: 2,
		DownsampleMode:  gpu.DownsampleBox,
	})

	// A gray frame with a single white pixel. Each output pixel must be
	// the exact rounded average of its 2x2 block, so the block holding
	// the white pixel lands on (0x80*3 + 0xFF + 2) / 4 = 0xA0 and every
	// other block stays untouched gray.
	pixels := make([]byte, 4*4*4)
	for i := range pixels {
		pixels[i] = 0x80
	}
	for c := 0; c < 4; c++ {
		pixels[c] = 0xFF
	}
	out, w, h, err := r.DownsampleFrame(pixels, 4, 4)
	if err != nil {
		t.Fatalf("DownsampleFrame: %v", err)
	}
	if w != 2 || h != 2 {
		t.Fatalf("output size = %dx%d, want 2x2", w, h)
	}
	for i, p := range out {
		want := byte(0x80)
		if i < 4 {
			want = 0xA0
		}
		if p != want {
			t.Fatalf("output byte %d = %#02x, want %#02x", i, p, want)
		}
	}
}

func TestDownsampleFrameDisabledPassthrough(t *testing.T) {
	r, _ := newTestRenderer(t, device.SoftwareDeviceOptions{}, Config{ResolutionScale: 2})

	pixels := make([]byte, 4*4*4)
	out, w, h, err := r.DownsampleFrame(pixels, 4, 4)
	if err != nil {
		t.Fatalf("DownsampleFrame: %v", err)
	}
	if w != 4 || h != 4 || len(out) != len(pixels) {
		t.Errorf("passthrough returned %dx%d", w, h)
	}
}

func TestDownsampleFrameIndivisibleResamples(t *testing.T) {
	r, _ := newTestRenderer(t, device.SoftwareDeviceOptions{}, Config{
		ResolutionScale: 3,
		DownsampleMode:  gpu.DownsampleBox,
	})

	// 3 does not divide 4, so the frame is resampled instead of block
	// averaged. A uniform frame survives any resampling kernel.
	pixels := make([]byte, 4*4*4)
	for i := range pixels {
		pixels[i] = 0x40
	}
	out, w, h, err := r.DownsampleFrame(pixels, 4, 4)
	if err != nil {
		t.Fatalf("DownsampleFrame: %v", err)
	}
	if w != 1 || h != 1 {
		t.Fatalf("output size = %dx%d, want 1x1", w, h)
	}
	for i, p := range out {
		if p != 0x40 {
			t.Errorf("output byte %d = %#02x, want 0x40", i, p)
		}
	}
}

func TestDownsampleFrameBadScale(t *testing.T) {
	r, _ := newTestRenderer(t, device.SoftwareDeviceOptions{}, Config{
		ResolutionScale: 3,
		DownsampleMode:  gpu.DownsampleBox,
	})

	if _, _, _, err := r.DownsampleFrame(make([]byte, 2*2*4), 2, 2); err == nil {
		t.Fatalf("scale larger than frame accepted")
	}
}
