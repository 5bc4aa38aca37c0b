// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpgpu

import (
	"slices"
	"sync"
)

// Device is a graphics device able to compile kernels and render them into
// off-screen targets. Implementations live in the backend packages.
type Device interface {
	// Name returns the registry name of the device ("wgpu", "cpu").
	Name() string

	// Init acquires the underlying device. It is called once by Start.
	Init() error

	// Close releases every device resource. Close is idempotent.
	Close()

	// CompileProgram compiles an assembled kernel. Rejected sources return
	// an error carrying the compiler diagnostic.
	CompileProgram(source string) (Program, error)

	// CreateTarget allocates an off-screen render target.
	CreateTarget(width, height int, format Format) (Target, error)
}

// Program is a compiled kernel with named input slots.
type Program interface {
	// UniformLocation returns the slot of the named input.
	UniformLocation(name string) (slot int, ok bool)

	// SetUniform uploads a scalar or vector value to slot.
	SetUniform(slot int, v Value) error

	// BindTexture uploads a matrix to slot as a float4 texture.
	BindTexture(slot int, m Matrix) error

	// Release frees the program. Release is idempotent.
	Release()
}

// Target is an off-screen render destination.
type Target interface {
	Width() int
	Height() int
	Format() Format

	// Begin binds the target as destination, clears it and activates p.
	Begin(p Program) error

	// Draw renders one full-screen rectangle with the active program.
	Draw() error

	// End finishes the pass started by Begin.
	End() error

	// Snapshot returns the target pixels, tightly packed in Format order,
	// row 0 first.
	Snapshot() ([]byte, error)

	// Release frees the target. Release is idempotent.
	Release()
}

// DeviceFactory creates a new, uninitialized device.
type DeviceFactory func() Device

// Registered device names.
const (
	DeviceWGPU = "wgpu"
	DeviceCPU  = "cpu"
)

var (
	deviceMu sync.RWMutex
	devices  = make(map[string]DeviceFactory)
	// Priority order for DefaultDevice. Anything else registered is tried
	// afterwards in name order.
	devicePriority = []string{DeviceWGPU, DeviceCPU}
)

// RegisterDevice registers a device factory under name, replacing any
// previous registration. Backend packages call it from init.
func RegisterDevice(name string, factory DeviceFactory) {
	deviceMu.Lock()
	defer deviceMu.Unlock()
	devices[name] = factory
}

// UnregisterDevice removes a device factory. Useful in tests.
func UnregisterDevice(name string) {
	deviceMu.Lock()
	defer deviceMu.Unlock()
	delete(devices, name)
}

// Devices returns the registered device names in sorted order.
func Devices() []string {
	deviceMu.RLock()
	defer deviceMu.RUnlock()

	names := make([]string, 0, len(devices))
	for name := range devices {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// NewDevice creates the device registered under name, or returns nil.
func NewDevice(name string) Device {
	deviceMu.RLock()
	factory, ok := devices[name]
	deviceMu.RUnlock()
	if !ok {
		return nil
	}
	return factory()
}

// DefaultDevice creates the best registered device: wgpu, then cpu, then
// anything else. It returns nil when nothing is registered.
func DefaultDevice() Device {
	for _, name := range devicePriority {
		if d := NewDevice(name); d != nil {
			return d
		}
	}
	for _, name := range Devices() {
		if slices.Contains(devicePriority, name) {
			continue
		}
		if d := NewDevice(name); d != nil {
			return d
		}
	}
	return nil
}
