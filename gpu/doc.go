// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gpu defines the console GPU data model shared by the renderer
// backends: video memory geometry and the page grid used for texture-cache
// invalidation, the native 16-bit 5-5-5-1 color format, draw-state
// registers, and the VRAM shadow buffer through which every read and write
// flows.
//
// The package is backend-agnostic: it knows nothing about the graphics
// device. The hardware renderer in gpu/hw builds on top of it.
package gpu
