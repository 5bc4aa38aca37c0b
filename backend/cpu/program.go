// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cpu

import (
	"fmt"

	"github.com/gogpu/gpgpu"
	"github.com/gogpu/gpgpu/internal/shader"
)

type program struct {
	device   *Device
	slots    map[string]int
	kinds    map[int]shader.ResourceKind
	names    map[int]string
	values   map[int]gpgpu.Value
	released bool
}

var _ gpgpu.Program = (*program)(nil)

func (p *program) UniformLocation(name string) (int, bool) {
	if p.released {
		return 0, false
	}
	slot, ok := p.slots[name]
	return slot, ok
}

func (p *program) SetUniform(slot int, v gpgpu.Value) error {
	if err := p.check(slot, shader.ResourceUniform); err != nil {
		return err
	}
	if v == nil || v.Kind().IsMatrix() {
		return fmt.Errorf("%w: uniform slot %d needs a scalar or vector", gpgpu.ErrUnsupportedType, slot)
	}
	p.values[slot] = v
	return nil
}

func (p *program) BindTexture(slot int, m gpgpu.Matrix) error {
	if err := p.check(slot, shader.ResourceTexture); err != nil {
		return err
	}
	if m.Empty() {
		return fmt.Errorf("%w: empty matrix for slot %d", gpgpu.ErrSizeMismatch, slot)
	}
	p.values[slot] = m
	return nil
}

func (p *program) check(slot int, want shader.ResourceKind) error {
	if p.released {
		return gpgpu.ErrInvalidProgram
	}
	kind, ok := p.kinds[slot]
	if !ok {
		return fmt.Errorf("%w: no slot %d", gpgpu.ErrInvalidProgram, slot)
	}
	if kind != want {
		return fmt.Errorf("%w: slot %d is a %v binding", gpgpu.ErrUnsupportedType, slot, kind)
	}
	return nil
}

func (p *program) inputs() map[string]gpgpu.Value {
	in := make(map[string]gpgpu.Value, len(p.values))
	for slot, v := range p.values {
		in[p.names[slot]] = v
	}
	return in
}

func (p *program) Release() {
	p.released = true
	p.values = nil
}
