// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package cpu provides a host-side reference device for gpgpu.
//
// The device validates every kernel with the same WGSL front end as the
// hardware device and checks its bindings, but evaluates a Go [Shader] per
// output cell instead of the kernel body. It is deterministic and needs no
// graphics driver, which makes it the device of choice for tests.
//
// Importing the package registers the device as "cpu" with a shader that
// returns zero for every cell:
//
//	m, _ := gpgpu.Start(gpgpu.WithDevice(cpu.New(func(f *cpu.Fragment) gpgpu.Vec4 {
//	    a := f.Sample("a", f.UV)
//	    return gpgpu.Vec4{a[0] * 2, 0, 0, 1}
//	})))
package cpu

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/gogpu/gpgpu"
	"github.com/gogpu/gpgpu/internal/parallel"
	"github.com/gogpu/gpgpu/internal/shader"
)

func init() {
	gpgpu.RegisterDevice(gpgpu.DeviceCPU, func() gpgpu.Device { return New(nil) })
}

// Shader computes the color of one output cell. Rows of a target are
// evaluated in parallel, so a Shader may run on several goroutines at once.
type Shader func(f *Fragment) gpgpu.Vec4

// Device is the host-side reference device.
type Device struct {
	mu       sync.Mutex
	shader   Shader
	logger   *slog.Logger
	open     bool
	compiles int
	source   string
	workers  *parallel.Pool
}

var _ gpgpu.Device = (*Device)(nil)

// New returns a device evaluating fn per cell. A nil fn yields zero cells.
func New(fn Shader) *Device {
	return &Device{shader: fn, logger: gpgpu.Logger()}
}

// Name returns "cpu".
func (d *Device) Name() string { return gpgpu.DeviceCPU }

// Init opens the device.
func (d *Device) Init() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.open {
		d.workers = parallel.NewPool(0)
		d.open = true
	}
	return nil
}

// Close closes the device. Close is idempotent.
func (d *Device) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.open {
		return
	}
	d.open = false
	d.workers.Close()
	d.workers = nil
}

// SetLogger sets the device logger.
func (d *Device) SetLogger(l *slog.Logger) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.logger = l
}

// SetShader replaces the per-cell function used by subsequent draws.
func (d *Device) SetShader(fn Shader) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.shader = fn
}

// Compiles returns the number of kernels compiled successfully.
func (d *Device) Compiles() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.compiles
}

// LastSource returns the most recently compiled kernel source.
func (d *Device) LastSource() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.source
}

// CompileProgram validates source and reflects its input bindings.
func (d *Device) CompileProgram(source string) (gpgpu.Program, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.open {
		return nil, gpgpu.ErrDeviceNotAvailable
	}

	m, err := shader.Check(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", gpgpu.ErrInvalidShader, err)
	}
	if err := m.RequireEntryPoints(gpgpu.VertexEntryPoint, gpgpu.FragmentEntryPoint); err != nil {
		return nil, fmt.Errorf("%w: %w", gpgpu.ErrInvalidShader, err)
	}

	p := &program{
		device: d,
		slots:  make(map[string]int),
		kinds:  make(map[int]shader.ResourceKind),
		names:  make(map[int]string),
		values: make(map[int]gpgpu.Value),
	}
	for _, b := range m.Bindings() {
		if b.Group != 0 || b.Kind == shader.ResourceSampler {
			continue
		}
		slot := int(b.Binding)
		p.slots[b.Name] = slot
		p.kinds[slot] = b.Kind
		p.names[slot] = b.Name
	}

	d.compiles++
	d.source = source
	d.logger.Debug("cpu: kernel compiled", "bindings", len(p.slots), "compiles", d.compiles)
	return p, nil
}

// CreateTarget allocates a host pixel buffer.
func (d *Device) CreateTarget(width, height int, f gpgpu.Format) (gpgpu.Target, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", gpgpu.ErrSizeMismatch, width, height)
	}
	if !f.Valid() {
		return nil, fmt.Errorf("%w: %v", gpgpu.ErrUnsupportedFormat, f)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.open {
		return nil, gpgpu.ErrDeviceNotAvailable
	}
	return &target{
		device: d,
		width:  width,
		height: height,
		format: f,
		pix:    make([]byte, width*height*f.BytesPerPixel()),
	}, nil
}

func (d *Device) currentShader() Shader {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.shader
}

// rows calls fn over bands of [0, height), in parallel while the device is
// open.
func (d *Device) rows(height int, fn func(y0, y1 int)) {
	d.mu.Lock()
	w := d.workers
	d.mu.Unlock()
	if w == nil {
		fn(0, height)
		return
	}
	w.Rows(height, fn)
}
