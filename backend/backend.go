// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package backend maintains the registry of GPU device backends.
//
// A backend knows how to open a device.Device. The software backend is
// always available and registers itself on import; the wgpu backend
// registers itself when its package is imported and a GPU is present.
// Frontends select a backend by name or take the best available one via
// Default.
package backend

import (
	"errors"

	"github.com/eltociear/duckstation/device"
)

// Backend name constants.
const (
	// BackendSoftware is the name of the CPU-based software backend.
	BackendSoftware = "software"
	// BackendWGPU is the name of the pure Go GPU backend (gogpu/wgpu).
	BackendWGPU = "wgpu"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not available.
	ErrBackendNotAvailable = errors.New("backend: not available")
)

// DeviceBackend opens GPU devices for the renderer.
//
// Backends must be registered via Register() and are selected via
// Get() or Default().
type DeviceBackend interface {
	// Name returns the backend identifier (e.g., "software", "wgpu").
	Name() string

	// Open creates a device. The caller owns the returned device and
	// must call its Destroy method.
	Open() (device.Device, error)
}
