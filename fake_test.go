// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpgpu

import (
	"errors"
	"log/slog"
)

// fakeDevice records calls for machine and registry tests.
type fakeDevice struct {
	name    string
	initErr error
	inits   int
	closes  int
	logger  *slog.Logger
}

func (d *fakeDevice) Name() string { return d.name }
func (d *fakeDevice) Init() error  { d.inits++; return d.initErr }
func (d *fakeDevice) Close()       { d.closes++ }

func (d *fakeDevice) SetLogger(l *slog.Logger) { d.logger = l }

func (d *fakeDevice) CompileProgram(string) (Program, error) {
	return newFakeProgram(), nil
}

func (d *fakeDevice) CreateTarget(int, int, Format) (Target, error) {
	return nil, errors.New("fake: no targets")
}

// fakeProgram records uploads by slot.
type fakeProgram struct {
	slots    map[string]int
	uniforms map[int]Value
	textures map[int]Matrix
	failSlot int
	released bool
}

func newFakeProgram(names ...string) *fakeProgram {
	p := &fakeProgram{
		slots:    make(map[string]int),
		uniforms: make(map[int]Value),
		textures: make(map[int]Matrix),
		failSlot: -1,
	}
	for i, n := range names {
		p.slots[n] = i
	}
	return p
}

func (p *fakeProgram) UniformLocation(name string) (int, bool) {
	slot, ok := p.slots[name]
	return slot, ok
}

func (p *fakeProgram) SetUniform(slot int, v Value) error {
	if slot == p.failSlot {
		return ErrUnsupportedType
	}
	p.uniforms[slot] = v
	return nil
}

func (p *fakeProgram) BindTexture(slot int, m Matrix) error {
	if slot == p.failSlot {
		return ErrUnsupportedType
	}
	p.textures[slot] = m
	return nil
}

func (p *fakeProgram) Release() { p.released = true }
