// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cpu

import (
	"math"

	"github.com/gogpu/gpgpu"
)

// Fragment is the evaluation context of one output cell. It mirrors the
// kernel environment: UV and Coord match the uv and coord parameters of the
// kernel body, inputs are looked up by name.
type Fragment struct {
	// UV is the normalized cell center.
	UV gpgpu.Vec2
	// Coord is the cell center in pixels.
	Coord gpgpu.Vec2
	// X and Y are the integer cell coordinates.
	X, Y int
	// Width and Height are the output dimensions.
	Width, Height int

	inputs map[string]gpgpu.Value
}

// Input returns the value bound to name.
func (f *Fragment) Input(name string) (gpgpu.Value, bool) {
	v, ok := f.inputs[name]
	return v, ok
}

// Float returns the first component of a scalar or vector input as float32,
// or 0 when name is not a bound scalar or vector.
func (f *Fragment) Float(name string) float32 {
	return f.Vec(name)[0]
}

// Vec returns the components of a scalar or vector input as float32, zero
// padded.
func (f *Fragment) Vec(name string) gpgpu.Vec4 {
	v, ok := f.inputs[name]
	if !ok || v.Kind().IsMatrix() {
		return gpgpu.Vec4{}
	}
	return gpgpu.Floats(v)
}

// Sample reads a matrix input at uv with nearest filtering and
// clamp-to-edge addressing, as the NAMEAt helpers of a kernel do.
func (f *Fragment) Sample(name string, uv gpgpu.Vec2) gpgpu.Vec4 {
	m, ok := f.inputs[name].(gpgpu.Matrix)
	if !ok || m.Empty() {
		return gpgpu.Vec4{}
	}
	x := texel(uv[0], m.Width())
	y := texel(uv[1], m.Height())
	return m.At(x, y)
}

// Load reads a matrix input at integer cell (x, y), clamped to its edges.
func (f *Fragment) Load(name string, x, y int) gpgpu.Vec4 {
	m, ok := f.inputs[name].(gpgpu.Matrix)
	if !ok || m.Empty() {
		return gpgpu.Vec4{}
	}
	return m.At(min(max(x, 0), m.Width()-1), min(max(y, 0), m.Height()-1))
}

func texel(u float32, n int) int {
	i := int(math.Floor(float64(u) * float64(n)))
	return min(max(i, 0), n-1)
}
