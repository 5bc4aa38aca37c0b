// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Command kernelc assembles a gpgpu kernel and translates it.
//
// Usage:
//
//	kernelc [options] <body.wgsl>
//
// Examples:
//
//	kernelc -in a:matrix -in gain:float body.wgsl       # Print the assembled WGSL
//	kernelc -in a:matrix -target spirv -o k.spv body.wgsl
//	kernelc -in a:matrix -target glsl body.wgsl
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/gogpu/gpgpu"
	"github.com/gogpu/gpgpu/internal/shader"
)

// declList collects repeated -in name:kind flags.
type declList []gpgpu.Declaration

func (l *declList) String() string {
	parts := make([]string, len(*l))
	for i, d := range *l {
		parts[i] = d.Name + ":" + d.Kind.String()
	}
	return strings.Join(parts, ",")
}

func (l *declList) Set(s string) error {
	d, err := parseDecl(s)
	if err != nil {
		return err
	}
	*l = append(*l, d)
	return nil
}

func parseDecl(s string) (gpgpu.Declaration, error) {
	name, kind, ok := strings.Cut(s, ":")
	if !ok {
		return gpgpu.Declaration{}, fmt.Errorf("input %q: want name:kind", s)
	}
	if !gpgpu.ValidName(name) {
		return gpgpu.Declaration{}, fmt.Errorf("%w: %q", gpgpu.ErrInvalidName, name)
	}
	k, err := gpgpu.ParseKind(kind)
	if err != nil {
		return gpgpu.Declaration{}, err
	}
	return gpgpu.Declaration{Name: name, Kind: k}, nil
}

var (
	output = flag.String("o", "", "output file (default: stdout)")
	target = flag.String("target", "wgsl", "output language: wgsl, spirv, glsl, msl, hlsl")
	inputs declList
)

func main() {
	flag.Var(&inputs, "in", "declare an input as name:kind (repeatable)")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Error: no kernel body specified")
		usage()
		os.Exit(1)
	}

	out, err := compile(args[0], inputs, *target)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *output == "" {
		if _, err := os.Stdout.Write(out); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
			os.Exit(1)
		}
		return
	}
	if err := os.WriteFile(*output, out, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Compiled %s to %s (%s, %d bytes)\n", args[0], *output, *target, len(out))
}

// compile reads the kernel body at path, wraps it for decls, validates the
// result and translates it to the named target.
func compile(path string, decls []gpgpu.Declaration, targetName string) ([]byte, error) {
	t, err := shader.ParseTarget(targetName)
	if err != nil {
		return nil, err
	}
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	src, err := gpgpu.Assemble(decls, string(body))
	if err != nil {
		return nil, err
	}
	m, err := shader.Check(src)
	if err != nil {
		return nil, err
	}
	if err := m.RequireEntryPoints(gpgpu.VertexEntryPoint, gpgpu.FragmentEntryPoint); err != nil {
		return nil, err
	}
	return m.Translate(t, gpgpu.VertexEntryPoint, gpgpu.FragmentEntryPoint)
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: kernelc [options] <body.wgsl>\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nKinds: bool, bvec2..4, int, ivec2..4, uint, uvec2..4, float, vec2..4, matrix\n")
	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  kernelc -in a:matrix body.wgsl                 Print WGSL\n")
	fmt.Fprintf(os.Stderr, "  kernelc -in a:matrix -target spirv -o k.spv body.wgsl\n")
}
