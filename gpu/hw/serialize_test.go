// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package hw

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/eltociear/duckstation/device"
	"github.com/eltociear/duckstation/gpu"
)

func TestSaveLoadRoundtrip(t *testing.T) {
	r, _ := newTestRenderer(t, device.SoftwareDeviceOptions{}, Config{})

	r.VRAM().Set(12, 34, 0xABCD)
	r.VRAM().Set(1023, 511, 0x8001)
	r.SetDrawingArea(gpu.DrawingArea{Left: 16, Top: 32, Right: 335, Bottom: 271})
	r.SetDrawingOffset(-8, 12)
	r.SetMaskFlags(gpu.MaskFlags{SetWhileDrawing: true})
	r.SetDisplayConfig(gpu.DisplayConfig{
		VRAMStartX:  320,
		VRAMStartY:  240,
		Width:       320,
		Height:      240,
		Interlaced:  true,
		Depth24:     true,
		ActiveField: 1,
	})
	r.currentDepth = 4242

	var buf bytes.Buffer
	if err := r.SaveState(&buf); err != nil {
		t.Fatalf("SaveState: %v", err)
	}

	other, _ := newTestRenderer(t, device.SoftwareDeviceOptions{}, Config{})
	if err := other.LoadState(bytes.NewReader(buf.Bytes())); err != nil {
		t.Fatalf("LoadState: %v", err)
	}

	if got := other.VRAM().Get(12, 34); got != 0xABCD {
		t.Errorf("restored pixel = %#04x, want 0xabcd", got)
	}
	if got := other.VRAM().Get(1023, 511); got != 0x8001 {
		t.Errorf("restored pixel = %#04x, want 0x8001", got)
	}
	if other.CurrentDepth() != 4242 {
		t.Errorf("restored depth = %d, want 4242", other.CurrentDepth())
	}
	if other.drawingArea != r.drawingArea {
		t.Errorf("restored drawing area = %+v, want %+v", other.drawingArea, r.drawingArea)
	}
	if other.offsetX != -8 || other.offsetY != 12 {
		t.Errorf("restored offset = (%d, %d), want (-8, 12)", other.offsetX, other.offsetY)
	}
	if other.mask != r.mask {
		t.Errorf("restored mask = %+v, want %+v", other.mask, r.mask)
	}
	if other.display != r.display {
		t.Errorf("restored display = %+v, want %+v", other.display, r.display)
	}
}

func TestSaveStateSizeMatchesLoad(t *testing.T) {
	r, _ := newTestRenderer(t, device.SoftwareDeviceOptions{}, Config{})

	var buf bytes.Buffer
	if err := r.SaveState(&buf); err != nil {
		t.Fatalf("SaveState: %v", err)
	}
	want := 8 + gpu.VRAMSizeInBytes + stateRegisterWords*4
	if buf.Len() != want {
		t.Fatalf("SaveState wrote %d bytes, want %d", buf.Len(), want)
	}

	// LoadState must consume exactly the saved bytes, with none left
	// over and none missing.
	rd := bytes.NewReader(buf.Bytes())
	if err := r.LoadState(rd); err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	if rd.Len() != 0 {
		t.Errorf("LoadState left %d bytes unread", rd.Len())
	}
}

func TestLoadStateDiscardsDerivedState(t *testing.T) {
	r, _ := newTestRenderer(t, device.SoftwareDeviceOptions{}, Config{})

	var buf bytes.Buffer
	if err := r.SaveState(&buf); err != nil {
		t.Fatalf("SaveState: %v", err)
	}

	other, dev := newTestRenderer(t, device.SoftwareDeviceOptions{}, Config{})
	if _, err := other.TextureCache().Lookup(SourceKey{Page: 0, Mode: gpu.TextureModeDirect16Bit}); err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	dispatch(t, other, flatTriangle(10, 10))

	if err := other.LoadState(bytes.NewReader(buf.Bytes())); err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	if other.TextureCache().Len() != 0 {
		t.Errorf("texture cache survived load")
	}
	if !other.DirtyRect().Contains(gpu.NewRect(0, 0, gpu.VRAMWidth, gpu.VRAMHeight)) {
		t.Errorf("dirty rect %v not full after load", other.DirtyRect())
	}
	other.FlushRender()
	if n := len(dev.DrawCalls()); n != 0 {
		t.Errorf("pre-load batch drew after load: %d draws", n)
	}
}

func TestLoadStateBadMagic(t *testing.T) {
	r, _ := newTestRenderer(t, device.SoftwareDeviceOptions{}, Config{})

	var buf bytes.Buffer
	if err := r.SaveState(&buf); err != nil {
		t.Fatalf("SaveState: %v", err)
	}
	data := buf.Bytes()
	binary.LittleEndian.PutUint32(data, 0xDEADBEEF)

	if err := r.LoadState(bytes.NewReader(data)); !errors.Is(err, ErrInvalidState) {
		t.Errorf("LoadState = %v, want ErrInvalidState", err)
	}
}

func TestLoadStateBadVersion(t *testing.T) {
	r, _ := newTestRenderer(t, device.SoftwareDeviceOptions{}, Config{})

	var buf bytes.Buffer
	if err := r.SaveState(&buf); err != nil {
		t.Fatalf("SaveState: %v", err)
	}
	data := buf.Bytes()
	binary.LittleEndian.PutUint32(data[4:], stateVersion+1)

	if err := r.LoadState(bytes.NewReader(data)); !errors.Is(err, ErrInvalidState) {
		t.Errorf("LoadState = %v, want ErrInvalidState", err)
	}
}

func TestLoadStateTruncated(t *testing.T) {
	r, _ := newTestRenderer(t, device.SoftwareDeviceOptions{}, Config{})

	if err := r.LoadState(bytes.NewReader(make([]byte, 64))); err == nil {
		t.Fatalf("truncated state accepted")
	}
}
