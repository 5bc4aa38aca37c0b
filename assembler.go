// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpgpu

import (
	"fmt"
	"strings"
)

// Entry points and fixed identifiers of the kernel wrapper. Every one of them
// contains an upper-case letter, so no valid input name can collide with it.
const (
	VertexEntryPoint   = "vsMain"
	FragmentEntryPoint = "fsMain"
	SamplerName        = "nearestSampler"
)

// SampleHelper returns the name of the generated sampling helper of a matrix
// input: "img" -> "imgAt".
func SampleHelper(name string) string { return name + "At" }

const kernelHeader = "// Code generated by gpgpu. DO NOT EDIT.\n"

const kernelWrapper = `
struct VertexOut {
    @builtin(position) position: vec4<f32>,
    @location(0) uv: vec2<f32>,
}

@vertex
fn vsMain(@builtin(vertex_index) vertexIndex: u32) -> VertexOut {
    var quadPos = array<vec2<f32>, 6>(
        vec2<f32>(-1.0,  1.0),
        vec2<f32>(-1.0, -1.0),
        vec2<f32>( 1.0, -1.0),
        vec2<f32>(-1.0,  1.0),
        vec2<f32>( 1.0, -1.0),
        vec2<f32>( 1.0,  1.0)
    );
    var quadUV = array<vec2<f32>, 6>(
        vec2<f32>(0.0, 0.0),
        vec2<f32>(0.0, 1.0),
        vec2<f32>(1.0, 1.0),
        vec2<f32>(0.0, 0.0),
        vec2<f32>(1.0, 1.0),
        vec2<f32>(1.0, 0.0)
    );
    var out: VertexOut;
    out.position = vec4<f32>(quadPos[vertexIndex], 0.0, 1.0);
    out.uv = quadUV[vertexIndex];
    return out;
}
`

const kernelFragment = `
@fragment
fn fsMain(frag: VertexOut) -> @location(0) vec4<f32> {
    return runKernel(frag.uv, frag.position.xy);
}
`

// Assemble builds the complete WGSL kernel for body with one declaration per
// entry of decls. Binding i is assigned to decls[i]; when at least one matrix
// is declared, the nearest sampler takes binding len(decls).
//
// Inside body, uv is the normalized cell center ((x+0.5)/w, (y+0.5)/h) and
// coord the cell center in pixels. The body must return a vec4<f32>.
//
// Assemble is deterministic: equal arguments give byte-identical output.
func Assemble(decls []Declaration, body string) (string, error) {
	if strings.TrimSpace(body) == "" {
		return "", ErrNoKernelSource
	}

	var b strings.Builder
	b.WriteString(kernelHeader)
	b.WriteByte('\n')

	var matrices []string
	for i, d := range decls {
		if !ValidName(d.Name) {
			return "", fmt.Errorf("%w: %q", ErrInvalidName, d.Name)
		}
		if !d.Kind.Valid() {
			return "", fmt.Errorf("%w: %q has kind %v", ErrUnsupportedType, d.Name, d.Kind)
		}
		if d.Kind.IsMatrix() {
			fmt.Fprintf(&b, "@group(0) @binding(%d) var %s: %s;\n", i, d.Name, d.Kind.WGSL())
			matrices = append(matrices, d.Name)
			continue
		}
		fmt.Fprintf(&b, "@group(0) @binding(%d) var<uniform> %s: %s;\n", i, d.Name, d.Kind.WGSL())
	}

	if len(matrices) > 0 {
		fmt.Fprintf(&b, "@group(0) @binding(%d) var %s: sampler;\n", len(decls), SamplerName)
		for _, name := range matrices {
			fmt.Fprintf(&b, "\nfn %s(uv: vec2<f32>) -> vec4<f32> {\n", SampleHelper(name))
			fmt.Fprintf(&b, "    return textureSampleLevel(%s, %s, uv, 0.0);\n}\n", name, SamplerName)
		}
	}

	b.WriteString(kernelWrapper)
	b.WriteString("\nfn runKernel(uv: vec2<f32>, coord: vec2<f32>) -> vec4<f32> {\n")
	b.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		b.WriteByte('\n')
	}
	b.WriteString("}\n")
	b.WriteString(kernelFragment)
	return b.String(), nil
}

// SamplerBinding returns the binding index of the nearest sampler for decls
// and whether the kernel declares one.
func SamplerBinding(decls []Declaration) (int, bool) {
	for _, d := range decls {
		if d.Kind.IsMatrix() {
			return len(decls), true
		}
	}
	return 0, false
}
