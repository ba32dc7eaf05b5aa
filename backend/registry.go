// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package backend

import (
	"sync"

	"github.com/eltociear/duckstation/device"
)

// BackendFactory creates a new backend instance.
type BackendFactory func() DeviceBackend

// registry holds registered device backends.
var (
	registryMu sync.RWMutex
	backends   = make(map[string]BackendFactory)
	// Selection order for Default. The wgpu backend registers only when
	// its package is imported; the software backend is always present.
	backendPriority = []string{BackendWGPU, BackendSoftware}
)

// Register registers a backend factory under the given name, replacing
// any previous registration. Backend packages call this from init().
func Register(name string, factory BackendFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	backends[name] = factory
}

// Unregister removes a backend registration. Tests use it to exercise
// selection with a controlled registry.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(backends, name)
}

// Available returns a list of registered backend names.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	return names
}

// IsRegistered checks if a backend with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := backends[name]
	return ok
}

// Get returns a backend instance by name.
// Returns nil if the backend is not registered.
func Get(name string) DeviceBackend {
	registryMu.RLock()
	defer registryMu.RUnlock()

	factory, ok := backends[name]
	if !ok {
		return nil
	}
	return factory()
}

// Default returns the most capable registered backend, preferring wgpu
// over the software fallback, then any other registration. Returns nil
// when the registry is empty.
func Default() DeviceBackend {
	registryMu.RLock()
	defer registryMu.RUnlock()

	for _, name := range backendPriority {
		if factory, ok := backends[name]; ok {
			b := factory()
			if b != nil {
				return b
			}
		}
	}

	// Fallback: return first available
	for _, factory := range backends {
		if b := factory(); b != nil {
			return b
		}
	}

	return nil
}

// MustDefault returns the default backend or panics.
func MustDefault() DeviceBackend {
	b := Default()
	if b == nil {
		panic("backend: no backend available")
	}
	return b
}

// OpenDefault opens a device from the default backend.
func OpenDefault() (device.Device, error) {
	b := Default()
	if b == nil {
		return nil, ErrBackendNotAvailable
	}
	return b.Open()
}
