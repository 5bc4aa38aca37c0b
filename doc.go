// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gpgpu runs per-pixel kernels on a graphics device and reads the
// results back as float4 matrices.
//
// A kernel is the body of a WGSL function. gpgpu declares the named inputs
// registered on an engine, wraps the body in a full-screen render pass,
// compiles it once, renders it into an off-screen target of the requested
// size and format, and returns the pixels as a [Matrix].
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/gpgpu"
//	    _ "github.com/gogpu/gpgpu/gpu" // register the wgpu device
//	)
//
//	func main() {
//	    m, err := gpgpu.Start()
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    defer m.Stop()
//
//	    e, _ := gpgpu.New(m, `
//	        let c = aAt(uv).x * bAt(uv).x;
//	        return vec4<f32>(c, c, c, 1.0);
//	    `)
//	    defer e.Close()
//
//	    a, _ := gpgpu.NewMatrix(2, 2, []float32{10, 10, 10, 10})
//	    b, _ := gpgpu.NewMatrix(2, 2, []float32{.1, .2, .4, .3})
//	    _ = e.SetOutput(2, 2, gpgpu.FormatRGBA32F)
//	    _ = e.SetInput("a", a)
//	    _ = e.SetInput("b", b)
//	    out, _ := e.Invoke() // channel 0: 1, 2, 4, 3
//	}
//
// # Kernel Environment
//
// The body runs as
//
//	fn runKernel(uv: vec2<f32>, coord: vec2<f32>) -> vec4<f32>
//
// where uv is the normalized center of the output cell and coord its center
// in pixels. Scalar and vector inputs are uniforms of the same name. Boolean
// inputs are declared as u32 (0 or 1). Every matrix input NAME is a
// texture_2d<f32> with a helper NAMEAt(uv) that samples it with nearest
// filtering and clamp-to-edge addressing. Inputs named uv or coord are
// shadowed by the parameters inside the body.
//
// # Devices
//
// The wgpu device (package gpu, backend/wgpu) runs kernels on Vulkan, Metal,
// DX12 or GLES through gogpu/wgpu. The cpu device (backend/cpu) evaluates a
// Go function per cell against the same validated kernel and serves as a
// reference in tests and tooling.
//
// # Logging
//
// gpgpu is silent by default. Use [SetLogger] to enable structured logging.
package gpgpu
