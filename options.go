// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpgpu

// Option configures Start.
//
// Example:
//
//	// Default device (wgpu when the gpu package is imported)
//	m, err := gpgpu.Start()
//
//	// Explicit device (dependency injection)
//	m, err := gpgpu.Start(gpgpu.WithDevice(cpu.New(shader)))
type Option func(*machineOptions)

type machineOptions struct {
	device   Device
	backend  string
	exitHook bool
}

func defaultMachineOptions() machineOptions {
	return machineOptions{exitHook: true}
}

// WithDevice runs the machine on d. It takes precedence over WithBackend.
func WithDevice(d Device) Option {
	return func(o *machineOptions) {
		o.device = d
	}
}

// WithBackend selects a registered device by name.
func WithBackend(name string) Option {
	return func(o *machineOptions) {
		o.backend = name
	}
}

// WithoutExitHook disables the SIGINT/SIGTERM handler that stops the machine.
// Tests and hosts that manage their own signals use it.
func WithoutExitHook() Option {
	return func(o *machineOptions) {
		o.exitHook = false
	}
}

// EngineOption configures New.
type EngineOption func(*engineOptions)

type engineOptions struct {
	label string
}

// WithLabel names the engine in log records.
func WithLabel(label string) EngineOption {
	return func(o *engineOptions) {
		o.label = label
	}
}
