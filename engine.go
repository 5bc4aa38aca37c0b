// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpgpu

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Engine runs one kernel body over a two-dimensional grid.
//
// An Engine is a handle onto shared state. Clone returns another handle onto
// the same state; the state is closed when Close is called on any handle or
// when the last handle is released. All handles are safe for concurrent use.
//
// Typical use:
//
//	e, _ := gpgpu.New(m, `return vec4<f32>(aAt(uv).xyz * 2.0, 1.0);`)
//	defer e.Close()
//	_ = e.SetOutput(w, h, gpgpu.FormatRGBA32F)
//	_ = e.SetInput("a", img)
//	out, err := e.Invoke()
type Engine struct {
	s        *engineState
	released atomic.Bool
}

type engineState struct {
	mu      sync.Mutex
	machine *Machine
	label   string
	body    string
	refs    int

	registry Registry
	target   Target
	program  Program
	shape    string // registry shape of the current program
	compiles int
	closed   bool
}

// New creates an engine for body on the running machine m. An empty body is
// accepted; compiling it fails with ErrNoKernelSource.
func New(m *Machine, body string, opts ...EngineOption) (*Engine, error) {
	if m == nil {
		return nil, ErrNoMachine
	}
	var o engineOptions
	for _, opt := range opts {
		opt(&o)
	}
	s := &engineState{machine: m, label: o.label, body: body, refs: 1}
	if !m.attach(s) {
		return nil, ErrNoMachine
	}
	return &Engine{s: s}, nil
}

// Clone returns a new handle onto the same engine state.
func (e *Engine) Clone() *Engine {
	e.s.mu.Lock()
	e.s.refs++
	e.s.mu.Unlock()
	return &Engine{s: e.s}
}

// Release drops this handle. The engine is closed when the last handle is
// released. Releasing a handle twice has no further effect.
func (e *Engine) Release() {
	if !e.released.CompareAndSwap(false, true) {
		return
	}
	e.s.mu.Lock()
	e.s.refs--
	last := e.s.refs == 0
	e.s.mu.Unlock()
	if last {
		_ = e.Close()
	}
}

// Close releases the program and the target. Close is idempotent, never
// fails and affects every handle.
func (e *Engine) Close() error {
	e.s.close()
	e.s.machine.detach(e.s)
	return nil
}

// Closed reports whether the engine has been closed.
func (e *Engine) Closed() bool {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()
	return e.s.closed
}

func (s *engineState) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.releaseTarget()
	s.releaseProgram()
	s.logger().Debug("gpgpu: engine closed", "compiles", s.compiles)
}

func (s *engineState) releaseTarget() {
	if s.target != nil {
		s.target.Release()
		s.target = nil
	}
}

func (s *engineState) releaseProgram() {
	if s.program != nil {
		s.program.Release()
		s.program = nil
		s.shape = ""
	}
}

func (s *engineState) logger() *slog.Logger {
	l := Logger()
	if s.label != "" {
		return l.With("engine", s.label)
	}
	return l
}

// SetOutput replaces the output target with a width x height target of
// format f. A compiled program is kept.
func (e *Engine) SetOutput(width, height int, f Format) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: output %dx%d", ErrSizeMismatch, width, height)
	}
	if !f.Valid() {
		return fmt.Errorf("%w: %v", ErrUnsupportedFormat, f)
	}

	s := e.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrEngineClosed
	}

	s.releaseTarget()
	t, err := s.machine.Device().CreateTarget(width, height, f)
	if err != nil {
		return fmt.Errorf("gpgpu: create %dx%d %v target: %w", width, height, f, err)
	}
	s.target = t
	s.logger().Debug("gpgpu: output set", "width", width, "height", height, "format", f.String())
	return nil
}

// Output returns the size and format of the current target, or zeros when
// none is set.
func (e *Engine) Output() (width, height int, f Format) {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()
	if e.s.target == nil {
		return 0, 0, FormatInvalid
	}
	return e.s.target.Width(), e.s.target.Height(), e.s.target.Format()
}

// SetInput binds v to name. Setting an existing name replaces both its type
// and its value; a type change recompiles the kernel on the next Invoke.
func (e *Engine) SetInput(name string, v any) error {
	s := e.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrEngineClosed
	}
	return s.registry.Set(name, v)
}

// RemoveInput removes name from the inputs. Removing an absent name is not an
// error.
func (e *Engine) RemoveInput(name string) error {
	s := e.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrEngineClosed
	}
	s.registry.Remove(name)
	return nil
}

// Declared returns the current input declarations sorted by name.
func (e *Engine) Declared() []Declaration {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()
	return e.s.registry.Declared()
}

// Source returns the kernel source assembled from the current inputs.
func (e *Engine) Source() (string, error) {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()
	return Assemble(e.s.registry.Declared(), e.s.body)
}

// Compiles returns how many times the kernel has been compiled successfully.
func (e *Engine) Compiles() int {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()
	return e.s.compiles
}

// Compile assembles and compiles the kernel for the current inputs,
// replacing any previous program.
func (e *Engine) Compile() error {
	s := e.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrEngineClosed
	}
	return s.compile()
}

func (s *engineState) compile() error {
	decls := s.registry.Declared()
	src, err := Assemble(decls, s.body)
	if err != nil {
		return err
	}
	p, err := s.machine.Device().CompileProgram(src)
	if err != nil {
		if errors.Is(err, ErrInvalidShader) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrInvalidShader, err)
	}
	s.releaseProgram()
	s.program = p
	s.shape = s.registry.Shape()
	s.compiles++
	s.logger().Debug("gpgpu: kernel compiled", "inputs", len(decls), "compiles", s.compiles)
	return nil
}

// Invoke runs the kernel once over the output target and returns the result.
// The kernel is compiled first when it has not been compiled yet or when the
// declared inputs changed since the last compile. Every input is uploaded on
// every call. Invoke blocks until the result has been read back.
func (e *Engine) Invoke() (Matrix, error) {
	s := e.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Matrix{}, ErrEngineClosed
	}
	if s.target == nil {
		return Matrix{}, ErrInvalidTexture
	}
	if s.program == nil || s.shape != s.registry.Shape() {
		if err := s.compile(); err != nil {
			return Matrix{}, err
		}
	}

	t := s.target
	if err := t.Begin(s.program); err != nil {
		return Matrix{}, fmt.Errorf("gpgpu: begin pass: %w", err)
	}
	if err := s.registry.BindAll(s.program); err != nil {
		_ = t.End()
		return Matrix{}, err
	}
	if err := t.Draw(); err != nil {
		_ = t.End()
		return Matrix{}, fmt.Errorf("gpgpu: draw: %w", err)
	}
	if err := t.End(); err != nil {
		return Matrix{}, fmt.Errorf("gpgpu: end pass: %w", err)
	}

	raw, err := t.Snapshot()
	if err != nil {
		return Matrix{}, fmt.Errorf("gpgpu: snapshot: %w", err)
	}
	return matrixFromPixels(t.Width(), t.Height(), t.Format(), raw)
}
