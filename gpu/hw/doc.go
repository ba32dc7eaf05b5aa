// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package hw implements the hardware rendering pipeline of the console
// GPU on top of the backend-neutral device abstraction.
//
// The package is built around two cooperating subsystems. The batch
// renderer accumulates console primitives into vertex runs that share one
// render configuration and flushes each run as a single draw, emulating
// per-pixel mask-bit protection with a synthetic depth counter. The
// texture cache decodes palette and direct-color textures out of the VRAM
// shadow and discards them the moment any backing page is written.
//
// All operations are single-threaded by design: invalidation happens
// synchronously with the VRAM write that triggers it, so a lookup that
// follows a write in program order can never observe a stale texture.
package hw
