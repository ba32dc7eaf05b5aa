// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package backend

import (
	"github.com/eltociear/duckstation/device"
)

// SoftwareBackend opens CPU-based devices. It is always available and
// serves as the fallback when no GPU backend is registered.
type SoftwareBackend struct{}

// init registers the software backend on package import.
func init() {
	Register(BackendSoftware, func() DeviceBackend {
		return &SoftwareBackend{}
	})
}

// NewSoftwareBackend creates a new software device backend.
func NewSoftwareBackend() *SoftwareBackend {
	return &SoftwareBackend{}
}

// Name returns the backend identifier.
func (b *SoftwareBackend) Name() string {
	return BackendSoftware
}

// Open creates a software device.
func (b *SoftwareBackend) Open() (device.Device, error) {
	return device.NewSoftwareDevice(device.SoftwareDeviceOptions{}), nil
}
