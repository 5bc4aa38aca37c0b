// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package shader is the kernel front end: it parses, lowers and validates
// WGSL with naga, reflects resource bindings and translates kernels to the
// shading languages of the hardware backends.
package shader

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/glsl"
	"github.com/gogpu/naga/hlsl"
	"github.com/gogpu/naga/ir"
	"github.com/gogpu/naga/msl"
	"github.com/gogpu/naga/spirv"
)

// ErrInvalid is wrapped by every error caused by the kernel source itself.
var ErrInvalid = errors.New("shader: invalid source")

// Module is a validated kernel.
type Module struct {
	Source string
	IR     *ir.Module
}

// Check parses, lowers and validates WGSL source.
func Check(source string) (*Module, error) {
	ast, err := naga.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	m, err := naga.LowerWithSource(ast, source)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	verrs, err := naga.Validate(m)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if len(verrs) > 0 {
		errs := make([]error, len(verrs))
		for i, v := range verrs {
			errs[i] = v
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return &Module{Source: source, IR: m}, nil
}

// ResourceKind classifies a reflected binding.
type ResourceKind uint8

// Resource kinds.
const (
	ResourceUniform ResourceKind = iota
	ResourceTexture
	ResourceSampler
)

func (k ResourceKind) String() string {
	switch k {
	case ResourceUniform:
		return "uniform"
	case ResourceTexture:
		return "texture"
	case ResourceSampler:
		return "sampler"
	}
	return fmt.Sprintf("ResourceKind(%d)", k)
}

// Binding is one resource of bind group 0.
type Binding struct {
	Name    string
	Group   uint32
	Binding uint32
	Kind    ResourceKind
}

// Bindings returns the resource bindings of m ordered by group and binding.
// Globals without a binding or in other address spaces are skipped.
func (m *Module) Bindings() []Binding {
	var out []Binding
	for _, gv := range m.IR.GlobalVariables {
		if gv.Binding == nil {
			continue
		}
		b := Binding{Name: gv.Name, Group: gv.Binding.Group, Binding: gv.Binding.Binding}
		switch gv.Space {
		case ir.SpaceUniform:
			b.Kind = ResourceUniform
		case ir.SpaceHandle:
			if int(gv.Type) >= len(m.IR.Types) {
				continue
			}
			switch m.IR.Types[gv.Type].Inner.(type) {
			case ir.ImageType:
				b.Kind = ResourceTexture
			case ir.SamplerType:
				b.Kind = ResourceSampler
			default:
				continue
			}
		default:
			continue
		}
		out = append(out, b)
	}
	slices.SortFunc(out, func(a, b Binding) int {
		if a.Group != b.Group {
			return int(a.Group) - int(b.Group)
		}
		return int(a.Binding) - int(b.Binding)
	})
	return out
}

// Lookup returns the binding named name.
func (m *Module) Lookup(name string) (Binding, bool) {
	for _, b := range m.Bindings() {
		if b.Name == name {
			return b, true
		}
	}
	return Binding{}, false
}

// HasEntryPoint reports whether m declares an entry point name of stage.
func (m *Module) HasEntryPoint(name string, stage ir.ShaderStage) bool {
	for _, ep := range m.IR.EntryPoints {
		if ep.Name == name && ep.Stage == stage {
			return true
		}
	}
	return false
}

// RequireEntryPoints checks that m declares the vertex and fragment entry
// points of a render kernel.
func (m *Module) RequireEntryPoints(vertex, fragment string) error {
	if !m.HasEntryPoint(vertex, ir.StageVertex) {
		return fmt.Errorf("%w: missing vertex entry point %q", ErrInvalid, vertex)
	}
	if !m.HasEntryPoint(fragment, ir.StageFragment) {
		return fmt.Errorf("%w: missing fragment entry point %q", ErrInvalid, fragment)
	}
	return nil
}

// Target is a translation output language.
type Target string

// Translation targets.
const (
	TargetWGSL  Target = "wgsl"
	TargetSPIRV Target = "spirv"
	TargetGLSL  Target = "glsl"
	TargetMSL   Target = "msl"
	TargetHLSL  Target = "hlsl"
)

// Targets lists every supported target.
var Targets = []Target{TargetWGSL, TargetSPIRV, TargetGLSL, TargetMSL, TargetHLSL}

// ParseTarget parses a target name case-insensitively.
func ParseTarget(s string) (Target, error) {
	t := Target(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(Targets, t) {
		return t, nil
	}
	return "", fmt.Errorf("shader: unknown target %q", s)
}

// Translate converts m to target. GLSL output holds one translation unit per
// entry point; vertex and fragment units are given in entryPoints order and
// separated by a comment line naming the stage.
func (m *Module) Translate(target Target, entryPoints ...string) ([]byte, error) {
	switch target {
	case TargetWGSL:
		return []byte(m.Source), nil
	case TargetSPIRV:
		opts := naga.DefaultOptions()
		opts.Validate = false
		out, err := naga.GenerateSPIRV(m.IR, spirv.Options{Version: opts.SPIRVVersion, Debug: opts.Debug})
		if err != nil {
			return nil, fmt.Errorf("shader: spirv: %w", err)
		}
		return out, nil
	case TargetGLSL:
		var b strings.Builder
		for _, ep := range entryPoints {
			opts := glsl.DefaultOptions()
			opts.EntryPoint = ep
			src, _, err := glsl.Compile(m.IR, opts)
			if err != nil {
				return nil, fmt.Errorf("shader: glsl %s: %w", ep, err)
			}
			fmt.Fprintf(&b, "// entry point: %s\n%s\n", ep, src)
		}
		return []byte(b.String()), nil
	case TargetMSL:
		src, _, err := msl.Compile(m.IR, msl.DefaultOptions())
		if err != nil {
			return nil, fmt.Errorf("shader: msl: %w", err)
		}
		return []byte(src), nil
	case TargetHLSL:
		src, _, err := hlsl.Compile(m.IR, hlsl.DefaultOptions())
		if err != nil {
			return nil, fmt.Errorf("shader: hlsl: %w", err)
		}
		return []byte(src), nil
	}
	return nil, fmt.Errorf("shader: unknown target %q", target)
}
