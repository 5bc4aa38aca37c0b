// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gpgpu"
)

// ErrNoAdapter is returned by Init when no graphics API yields an adapter.
var ErrNoAdapter = errors.New("wgpu: no usable adapter")

// DefaultBackends is the graphics API order tried by Init.
var DefaultBackends = []gputypes.Backend{
	gputypes.BackendVulkan,
	gputypes.BackendMetal,
	gputypes.BackendDX12,
	gputypes.BackendGL,
}

// Option configures New.
type Option func(*options)

type options struct {
	backends []gputypes.Backend
	power    gputypes.PowerPreference
}

// WithBackends sets the graphics APIs tried by Init, in order.
func WithBackends(backends ...gputypes.Backend) Option {
	return func(o *options) {
		o.backends = append([]gputypes.Backend(nil), backends...)
	}
}

// WithAdapterPreference selects discrete (high performance) or integrated
// (low power) adapters first.
func WithAdapterPreference(p gputypes.PowerPreference) Option {
	return func(o *options) {
		o.power = p
	}
}

// Device is a gpgpu device backed by a hal device.
type Device struct {
	opts options

	mu       sync.Mutex
	logger   *slog.Logger
	instance hal.Instance
	adapter  hal.Adapter
	device   hal.Device
	queue    hal.Queue
	info     gpucontext.AdapterInfo
	external bool
	open     bool
	compiles int

	// Serializes submissions and readbacks on the queue.
	queueMu sync.Mutex
}

var _ gpgpu.Device = (*Device)(nil)

// New returns an unopened device. Init selects the adapter.
func New(opts ...Option) *Device {
	o := options{backends: DefaultBackends}
	for _, opt := range opts {
		opt(&o)
	}
	return &Device{opts: o, logger: gpgpu.Logger()}
}

// NewFromHAL returns a device running on an existing hal device and queue.
// Close does not destroy them.
func NewFromHAL(device hal.Device, queue hal.Queue) (*Device, error) {
	if device == nil || queue == nil {
		return nil, fmt.Errorf("%w: nil hal device or queue", gpgpu.ErrDeviceNotAvailable)
	}
	return &Device{
		logger:   gpgpu.Logger(),
		device:   device,
		queue:    queue,
		external: true,
		info:     gpucontext.AdapterInfo{Name: "external", Type: gpucontext.AdapterTypeUnknown},
	}, nil
}

// NewFromProvider shares the device of a host application. The provider
// must also expose HalDevice() and HalQueue() returning the hal device and
// queue, as the gogpu application framework does.
func NewFromProvider(p gpucontext.DeviceProvider) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := p.(halProvider)
	if !ok {
		return nil, fmt.Errorf("%w: provider does not expose hal types", gpgpu.ErrDeviceNotAvailable)
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: provider HalDevice is not a hal.Device", gpgpu.ErrDeviceNotAvailable)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: provider HalQueue is not a hal.Queue", gpgpu.ErrDeviceNotAvailable)
	}
	d, err := NewFromHAL(device, queue)
	if err != nil {
		return nil, err
	}
	d.info = p.AdapterInfo()
	return d, nil
}

// Name returns "wgpu".
func (d *Device) Name() string { return gpgpu.DeviceWGPU }

// SetLogger sets the device logger.
func (d *Device) SetLogger(l *slog.Logger) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.logger = l
}

// AdapterInfo describes the adapter in use. It is valid after Init.
func (d *Device) AdapterInfo() gpucontext.AdapterInfo {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.info
}

// Compiles returns the number of kernels compiled successfully.
func (d *Device) Compiles() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.compiles
}

// Init opens the device. For devices created by New it walks the configured
// graphics APIs and opens the best adapter of the first one that has any.
func (d *Device) Init() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.open {
		return nil
	}
	if d.external {
		d.open = true
		return nil
	}

	var errs []error
	for _, variant := range d.opts.backends {
		err := d.openBackend(variant)
		if err == nil {
			d.open = true
			d.logger.Info("wgpu: adapter selected",
				"name", d.info.Name, "type", d.info.Type.String(), "backend", variant.String())
			return nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", variant, err))
	}
	if len(errs) == 0 {
		return ErrNoAdapter
	}
	return fmt.Errorf("%w: %w", ErrNoAdapter, errors.Join(errs...))
}

func (d *Device) openBackend(variant gputypes.Backend) error {
	backend, ok := hal.GetBackend(variant)
	if !ok {
		return errors.New("backend not compiled in")
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{
		Backends: gputypes.BackendsAll,
	})
	if err != nil {
		return fmt.Errorf("create instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return errors.New("no adapters")
	}
	selected := selectAdapter(adapters, d.opts.power)
	opened, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return fmt.Errorf("open device: %w", err)
	}
	d.instance = instance
	d.adapter = selected.Adapter
	d.device = opened.Device
	d.queue = opened.Queue
	d.info = gpucontext.AdapterInfo{Name: selected.Info.Name, Type: adapterType(selected.Info.DeviceType)}
	return nil
}

// selectAdapter ranks adapters by device type and returns the best one.
// Ties keep enumeration order.
func selectAdapter(adapters []hal.ExposedAdapter, power gputypes.PowerPreference) *hal.ExposedAdapter {
	best := 0
	for i := range adapters {
		if adapterRank(adapters[i].Info.DeviceType, power) > adapterRank(adapters[best].Info.DeviceType, power) {
			best = i
		}
	}
	return &adapters[best]
}

func adapterRank(t gputypes.DeviceType, power gputypes.PowerPreference) int {
	switch t {
	case gputypes.DeviceTypeDiscreteGPU:
		if power == gputypes.PowerPreferenceLowPower {
			return 3
		}
		return 4
	case gputypes.DeviceTypeIntegratedGPU:
		if power == gputypes.PowerPreferenceLowPower {
			return 4
		}
		return 3
	case gputypes.DeviceTypeVirtualGPU:
		return 2
	case gputypes.DeviceTypeOther:
		return 1
	}
	return 0
}

func adapterType(t gputypes.DeviceType) gpucontext.AdapterType {
	switch t {
	case gputypes.DeviceTypeDiscreteGPU:
		return gpucontext.AdapterTypeDiscrete
	case gputypes.DeviceTypeIntegratedGPU:
		return gpucontext.AdapterTypeIntegrated
	case gputypes.DeviceTypeCPU:
		return gpucontext.AdapterTypeSoftware
	}
	return gpucontext.AdapterTypeUnknown
}

// Close waits for outstanding work and destroys the device unless it is
// shared. Close is idempotent.
func (d *Device) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.open {
		return
	}
	d.open = false
	if err := d.device.WaitIdle(); err != nil {
		d.logger.Warn("wgpu: wait idle on close", "err", err)
	}
	if d.external {
		return
	}
	d.device.Destroy()
	if d.adapter != nil {
		d.adapter.Destroy()
	}
	if d.instance != nil {
		d.instance.Destroy()
	}
	d.device, d.queue, d.adapter, d.instance = nil, nil, nil, nil
}

// handles returns the open hal device and queue.
func (d *Device) handles() (hal.Device, hal.Queue, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.open {
		return nil, nil, gpgpu.ErrDeviceNotAvailable
	}
	return d.device, d.queue, nil
}
