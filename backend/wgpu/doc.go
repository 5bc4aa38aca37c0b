// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package wgpu runs gpgpu kernels on a GPU through the pure Go gogpu/wgpu
// hardware abstraction layer.
//
// A kernel is compiled into a render pipeline with a single bind group: one
// 16-byte uniform buffer per scalar or vector input, one RGBA32Float texture
// per matrix input and a nearest, clamp-to-edge sampler. Every invocation
// clears the target, draws one full-screen rectangle (six vertices, no
// vertex buffers) and copies the target back through a staging buffer whose
// rows are padded to 256 bytes.
//
// # Device selection
//
// [New] opens the first usable adapter of the preferred graphics APIs
// (Vulkan, Metal, DX12, then GL). [WithBackends] overrides that order and
// [WithAdapterPreference] picks discrete or integrated adapters first. A host
// that already owns a device shares it through [NewFromProvider] or
// [NewFromHAL]; such devices are not destroyed by Close.
//
// The package does not register itself. Import github.com/gogpu/gpgpu/gpu to
// register it as the "wgpu" device together with every compiled-in graphics
// API.
package wgpu
