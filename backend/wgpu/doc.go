// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package wgpu implements the device abstraction on the pure Go
// gogpu/wgpu HAL.
//
// Importing the package registers the "wgpu" backend with the backend
// registry. Opening a device enumerates adapters through the Vulkan HAL
// backend and prefers a discrete GPU. A Device can also wrap an already
// open hal.Device and hal.Queue shared with another GPU user in the
// process.
//
// Each render pass submits its own command buffer and drains the queue
// with Device.WaitIdle, so texture readback through Texture.Read observes
// all previously ended passes.
package wgpu
