// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Command gpudemo renders a small test scene through the hardware
// renderer and saves the scanout as a PNG.
package main

import (
	"flag"
	"image"
	"image/color"
	"image/png"
	"log"
	"os"

	"github.com/eltociear/duckstation/backend"
	_ "github.com/eltociear/duckstation/backend/wgpu"
	"github.com/eltociear/duckstation/device"
	"github.com/eltociear/duckstation/gpu"
	"github.com/eltociear/duckstation/gpu/hw"
)

func main() {
	var (
		backendName = flag.String("backend", "", "device backend (default: best available)")
		scale       = flag.Uint("scale", 1, "resolution scale")
		output      = flag.String("output", "display.png", "output file")
		vramDump    = flag.String("vram", "", "also dump the VRAM shadow to this file")
	)
	flag.Parse()

	dev, err := openDevice(*backendName)
	if err != nil {
		log.Fatalf("Failed to open device: %v", err)
	}
	defer dev.Destroy()

	renderer, err := hw.NewRenderer(dev, hw.Config{ResolutionScale: uint32(*scale)})
	if err != nil {
		log.Fatalf("Failed to create renderer: %v", err)
	}
	defer renderer.Destroy()

	if err := drawScene(renderer); err != nil {
		log.Fatalf("Failed to render scene: %v", err)
	}

	if err := saveDisplay(renderer, *output); err != nil {
		log.Fatalf("Failed to save display: %v", err)
	}
	w, h := renderer.EffectiveDisplayResolution()
	log.Printf("Display saved to %s (%dx%d)", *output, w, h)

	if *vramDump != "" {
		if err := saveVRAMShadow(renderer.VRAM(), *vramDump); err != nil {
			log.Fatalf("Failed to save VRAM dump: %v", err)
		}
		log.Printf("VRAM shadow saved to %s", *vramDump)
	}
}

func openDevice(name string) (device.Device, error) {
	if name != "" {
		b := backend.Get(name)
		if b == nil {
			return nil, backend.ErrBackendNotAvailable
		}
		return b.Open()
	}
	return backend.OpenDefault()
}

// drawScene fills the display area and draws a few shaded primitives.
func drawScene(r *hw.Renderer) error {
	r.SetDrawingArea(gpu.DrawingArea{Left: 0, Top: 0, Right: 319, Bottom: 239})
	r.SetDisplayConfig(gpu.DisplayConfig{Width: 320, Height: 240})

	if err := r.FillVRAM(0, 0, 320, 240, 0x202040); err != nil {
		return err
	}

	// Gouraud triangle.
	tri := &gpu.DrawCommand{
		Command: gpu.RenderCommand(1<<29 | 1<<28),
		Vertices: []gpu.CommandVertex{
			{X: 160, Y: 40, Color: 0x0000FF},
			{X: 60, Y: 200, Color: 0x00FF00},
			{X: 260, Y: 200, Color: 0xFF0000},
		},
	}
	if err := r.DispatchRenderCommand(tri); err != nil {
		return err
	}

	// Flat transparent quad overlapping the triangle.
	quad := &gpu.DrawCommand{
		Command: gpu.RenderCommand(1<<29 | 1<<27 | 1<<25 | 0x804040),
		Vertices: []gpu.CommandVertex{
			{X: 120, Y: 120, Color: 0x804040},
			{X: 280, Y: 120, Color: 0x804040},
			{X: 120, Y: 230, Color: 0x804040},
			{X: 280, Y: 230, Color: 0x804040},
		},
	}
	if err := r.DispatchRenderCommand(quad); err != nil {
		return err
	}

	// Small solid sprite in the corner.
	sprite := &gpu.DrawCommand{
		Command:  gpu.RenderCommand(3<<29 | 0xFFFFFF),
		Vertices: []gpu.CommandVertex{{X: 8, Y: 8, Color: 0xFFFFFF}},
		Width:    32,
		Height:   32,
	}
	if err := r.DispatchRenderCommand(sprite); err != nil {
		return err
	}

	return r.UpdateDisplay()
}

func saveDisplay(r *hw.Renderer, path string) error {
	w, h := r.EffectiveDisplayResolution()
	pixels, err := r.DisplayTexture().Read(0, 0, w, h)
	if err != nil {
		return err
	}
	img := &image.RGBA{
		Pix:    pixels,
		Stride: int(w) * 4,
		Rect:   image.Rect(0, 0, int(w), int(h)),
	}
	return savePNG(img, path)
}

// saveVRAMShadow converts the 16-bit VRAM shadow to RGBA.
func saveVRAMShadow(v *gpu.VRAM, path string) error {
	img := image.NewRGBA(image.Rect(0, 0, gpu.VRAMWidth, gpu.VRAMHeight))
	for y := uint32(0); y < gpu.VRAMHeight; y++ {
		for x := uint32(0); x < gpu.VRAMWidth; x++ {
			rgba := gpu.VRAMRGBA5551ToRGBA8888(v.Get(x, y))
			img.SetRGBA(int(x), int(y), color.RGBA{
				R: uint8(rgba),
				G: uint8(rgba >> 8),
				B: uint8(rgba >> 16),
				A: 0xFF,
			})
		}
	}
	return savePNG(img, path)
}

func savePNG(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
