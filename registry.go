// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpgpu

import (
	"fmt"
	"slices"
	"strings"
)

// Declaration is a named, typed kernel input as it appears in the assembled
// source.
type Declaration struct {
	Name string
	Kind Kind
}

type entry struct {
	kind  Kind
	value Value
}

// Registry maps input names to tagged values. The zero value is ready to use.
// A Registry is not safe for concurrent use.
type Registry struct {
	entries map[string]entry
}

// reservedNames are identifiers that cannot name a module-scope WGSL
// variable: keywords, reserved words and predeclared types.
var reservedNames = func() map[string]struct{} {
	words := strings.Fields(`
		alias break case const const_assert continue continuing default
		diagnostic discard else enable false fn for if let loop override
		requires return struct switch true var while

		array atomic bool f16 f32 i32 u32 ptr sampler sampler_comparison
		vec2 vec3 vec4 vec2i vec3i vec4i vec2u vec3u vec4u vec2f vec3f vec4f
		vec2h vec3h vec4h
		mat2x2 mat2x3 mat2x4 mat3x2 mat3x3 mat3x4 mat4x2 mat4x3 mat4x4
		mat2x2f mat2x3f mat2x4f mat3x2f mat3x3f mat3x4f mat4x2f mat4x3f mat4x4f
		mat2x2h mat2x3h mat2x4h mat3x2h mat3x3h mat3x4h mat4x2h mat4x3h mat4x4h
		texture_1d texture_2d texture_2d_array texture_3d texture_cube
		texture_cube_array texture_multisampled_2d texture_external
		texture_storage_1d texture_storage_2d texture_storage_2d_array
		texture_storage_3d texture_depth_2d texture_depth_2d_array
		texture_depth_cube texture_depth_cube_array
		texture_depth_multisampled_2d

		abstract active alignas alignof as asm asm_fragment async attribute
		auto await become binding_array cast catch class co_await co_return
		co_yield coherent column_major common compile compile_fragment concept
		const_cast consteval constexpr constinit crate debugger decltype
		delete demote demote_to_helper do dynamic_cast enum explicit export
		extends extern external fallthrough filter final finally friend from
		fxgroup get goto groupshared highp impl implements import inline
		instanceof interface layout lowp macro macro_rules match mediump meta
		mod module move mut mutable namespace new nil noexcept noinline
		nointerpolation noperspective null nullptr of operator package
		packoffset partition pass patch pixelfragment precise precision
		premerge priv protected pub public readonly ref regardless register
		reinterpret_cast require resource restrict self set shared sizeof
		smooth snorm static static_assert static_cast std subroutine super
		target template this thread_local throw trait try type typedef typeid
		typename typeof union unless unorm unsafe unsized use using varying
		virtual volatile wgsl where with writeonly yield`)
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}()

// ValidName reports whether name is a legal input name: a lower-case letter
// or underscore followed by lower-case letters, digits or underscores. The
// name "_", names starting with "__" and WGSL keywords, reserved words and
// type names are rejected.
func ValidName(name string) bool {
	if name == "" || name == "_" || strings.HasPrefix(name, "__") {
		return false
	}
	if _, ok := reservedNames[name]; ok {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c == '_':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// Set stores v under name, replacing any previous kind and value.
func (r *Registry) Set(name string, v any) error {
	if !ValidName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	val, err := ValueOf(v)
	if err != nil {
		return fmt.Errorf("input %q: %w", name, err)
	}
	if r.entries == nil {
		r.entries = make(map[string]entry)
	}
	r.entries[name] = entry{kind: val.Kind(), value: val}
	return nil
}

// Remove deletes name. Removing an absent name is not an error.
func (r *Registry) Remove(name string) {
	delete(r.entries, name)
}

// Get returns the value stored under name.
func (r *Registry) Get(name string) (Value, bool) {
	e, ok := r.entries[name]
	return e.value, ok
}

// Len returns the number of entries.
func (r *Registry) Len() int { return len(r.entries) }

// Names returns the entry names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Declared returns one declaration per entry, sorted by name.
func (r *Registry) Declared() []Declaration {
	decls := make([]Declaration, 0, len(r.entries))
	for _, name := range r.Names() {
		decls = append(decls, Declaration{Name: name, Kind: r.entries[name].kind})
	}
	return decls
}

// Shape returns a signature of the declared names and kinds. Registries with
// equal shapes assemble to the same kernel source.
func (r *Registry) Shape() string {
	var b strings.Builder
	for _, d := range r.Declared() {
		b.WriteString(d.Name)
		b.WriteByte(':')
		b.WriteString(d.Kind.String())
		b.WriteByte(';')
	}
	return b.String()
}

// BindAll uploads every entry to p. Scalars and vectors go through
// SetUniform, matrices through BindTexture.
func (r *Registry) BindAll(p Program) error {
	if p == nil {
		return fmt.Errorf("%w: nil program", ErrInvalidProgram)
	}
	for _, name := range r.Names() {
		e := r.entries[name]
		slot, ok := p.UniformLocation(name)
		if !ok {
			return fmt.Errorf("%w: no binding for %q", ErrInvalidProgram, name)
		}
		var err error
		if m, isMatrix := e.value.(Matrix); isMatrix {
			err = p.BindTexture(slot, m)
		} else {
			err = p.SetUniform(slot, e.value)
		}
		if err != nil {
			return fmt.Errorf("bind %q: %w", name, err)
		}
	}
	return nil
}
