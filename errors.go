// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpgpu

import "errors"

// Engine errors. All of them are returned synchronously by the call that
// caused them and can be matched with errors.Is.
var (
	// ErrInvalidName is returned when an input name is empty or does not
	// match [a-z_][a-z0-9_]*.
	ErrInvalidName = errors.New("gpgpu: invalid input name")

	// ErrUnsupportedType is returned when a value has no kernel type tag.
	ErrUnsupportedType = errors.New("gpgpu: unsupported value type")

	// ErrSizeMismatch is returned when a buffer does not match the declared
	// dimensions, or when a dimension is not positive.
	ErrSizeMismatch = errors.New("gpgpu: size mismatch")

	// ErrInvalidImage is returned when image bytes or files cannot be decoded.
	ErrInvalidImage = errors.New("gpgpu: invalid image")

	// ErrInvalidTexture is returned when an engine is invoked without an
	// output target.
	ErrInvalidTexture = errors.New("gpgpu: no output target")

	// ErrInvalidProgram is returned when binding against a program that was
	// never compiled or has been released.
	ErrInvalidProgram = errors.New("gpgpu: invalid program")

	// ErrInvalidShader is returned when the device rejects the kernel source.
	ErrInvalidShader = errors.New("gpgpu: invalid shader")

	// ErrNoKernelSource is returned when compiling an empty kernel body.
	ErrNoKernelSource = errors.New("gpgpu: no kernel source")

	// ErrEngineClosed is returned by every engine operation after Close.
	ErrEngineClosed = errors.New("gpgpu: engine closed")

	// ErrNoMachine is returned when an engine is created without a running
	// machine.
	ErrNoMachine = errors.New("gpgpu: machine not running")

	// ErrUnsupportedFormat is returned for unknown output formats.
	ErrUnsupportedFormat = errors.New("gpgpu: unsupported output format")

	// ErrDeviceNotAvailable is returned when no device can be created.
	ErrDeviceNotAvailable = errors.New("gpgpu: device not available")
)
