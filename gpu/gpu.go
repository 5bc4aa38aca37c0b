//go:build !nogpu

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gpu registers the hardware device for gpgpu.
//
// Importing it compiles in every graphics API supported on the platform and
// registers backend/wgpu as the "wgpu" device, which DefaultDevice prefers:
//
//	import _ "github.com/gogpu/gpgpu/gpu" // run kernels on the GPU
//
// Build with the nogpu tag to leave the device out.
package gpu

import (
	"github.com/gogpu/gpucontext"

	"github.com/gogpu/gpgpu"
	"github.com/gogpu/gpgpu/backend/wgpu"

	_ "github.com/gogpu/wgpu/hal/allbackends"
)

func init() {
	gpgpu.RegisterDevice(gpgpu.DeviceWGPU, func() gpgpu.Device { return wgpu.New() })
}

// UseProvider starts the machine on the device of a host application, for
// example a gogpu window, instead of opening a device of its own.
func UseProvider(provider gpucontext.DeviceProvider, opts ...gpgpu.Option) (*gpgpu.Machine, error) {
	d, err := wgpu.NewFromProvider(provider)
	if err != nil {
		return nil, err
	}
	return gpgpu.Start(append([]gpgpu.Option{gpgpu.WithDevice(d)}, opts...)...)
}
