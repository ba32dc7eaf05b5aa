// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/eltociear/duckstation/backend"
	"github.com/eltociear/duckstation/device"
	"github.com/eltociear/duckstation/gpu"
)

// ErrNoAdapter is returned when no GPU adapter can be opened.
var ErrNoAdapter = errors.New("wgpu: no GPU adapter available")

// init registers the wgpu backend on package import.
func init() {
	backend.Register(backend.BackendWGPU, func() backend.DeviceBackend {
		return &Backend{}
	})
}

// Backend opens devices on the gogpu/wgpu HAL.
type Backend struct{}

var (
	_ backend.DeviceBackend = (*Backend)(nil)
	_ device.Device         = (*Device)(nil)
)

// Name returns the backend identifier.
func (b *Backend) Name() string {
	return backend.BackendWGPU
}

// Open creates a GPU device.
func (b *Backend) Open() (device.Device, error) {
	return NewDevice()
}

// Device implements device.Device on hal.Device.
type Device struct {
	instance hal.Instance
	dev      hal.Device
	queue    hal.Queue
	caps     device.Capabilities

	// ownsDevice is false when the hal device was provided by the host
	// and must survive Destroy.
	ownsDevice bool

	destroyed bool
}

// NewDevice opens the best available GPU adapter and creates a device
// on it. Discrete GPUs are preferred over integrated ones.
func NewDevice() (*Device, error) {
	halBackend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, fmt.Errorf("%w: vulkan backend not registered", ErrNoAdapter)
	}
	instance, err := halBackend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoAdapter
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		for i := range adapters {
			if adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
				selected = &adapters[i]
				break
			}
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}

	limits := gputypes.DefaultLimits()
	openDev, err := selected.Adapter.Open(gputypes.Features(0), limits)
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("wgpu: open adapter: %w", err)
	}

	gpu.Logger().Info("wgpu device opened", "adapter", selected.Info.Name)

	return &Device{
		instance:   instance,
		dev:        openDev.Device,
		queue:      openDev.Queue,
		ownsDevice: true,
		caps: device.Capabilities{
			MaxTextureSize:  limits.MaxTextureDimension2D,
			DualSourceBlend: false,
			PerPixelDepth:   true,
			MaxMultisamples: 4,
			VendorName:      "gogpu",
			DeviceName:      selected.Info.Name,
		},
	}, nil
}

// NewDeviceFromHAL wraps an already open hal device and queue shared
// with another GPU user. Destroy leaves the hal device alive; the host
// retains ownership.
func NewDeviceFromHAL(dev hal.Device, queue hal.Queue) *Device {
	limits := gputypes.DefaultLimits()
	return &Device{
		dev:   dev,
		queue: queue,
		caps: device.Capabilities{
			MaxTextureSize:  limits.MaxTextureDimension2D,
			DualSourceBlend: false,
			PerPixelDepth:   true,
			MaxMultisamples: 4,
			VendorName:      "gogpu",
			DeviceName:      "shared",
		},
	}
}

// Capabilities returns the device feature set.
func (d *Device) Capabilities() device.Capabilities {
	return d.caps
}

// Destroy releases the device. Resources created from it must already
// be destroyed.
func (d *Device) Destroy() {
	if d.destroyed {
		return
	}
	d.destroyed = true
	if d.ownsDevice && d.dev != nil {
		d.dev.Destroy()
	}
	if d.instance != nil {
		d.instance.Destroy()
		d.instance = nil
	}
	d.dev = nil
	d.queue = nil
}
