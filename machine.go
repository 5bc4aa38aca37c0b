// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpgpu

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Machine is the process-wide graphics context. At most one machine runs at
// a time; engines are created against it and are closed when it stops.
type Machine struct {
	device Device

	mu      sync.Mutex
	running bool
	engines map[*engineState]struct{}

	signals chan os.Signal
	done    chan struct{}
}

var (
	currentMu sync.Mutex
	current   *Machine
)

// Start acquires the process-wide machine. If a machine is already running
// it is returned unchanged and opts are ignored.
//
// The device comes from WithDevice, else from WithBackend, else from
// DefaultDevice. Unless WithoutExitHook is given, SIGINT and SIGTERM stop the
// machine before the process exits.
func Start(opts ...Option) (*Machine, error) {
	currentMu.Lock()
	defer currentMu.Unlock()

	if current != nil {
		return current, nil
	}

	o := defaultMachineOptions()
	for _, opt := range opts {
		opt(&o)
	}

	d := o.device
	switch {
	case d != nil:
	case o.backend != "":
		if d = NewDevice(o.backend); d == nil {
			return nil, fmt.Errorf("%w: %q is not registered", ErrDeviceNotAvailable, o.backend)
		}
	default:
		if d = DefaultDevice(); d == nil {
			return nil, fmt.Errorf("%w: no device registered", ErrDeviceNotAvailable)
		}
	}

	propagateLogger(d, Logger())
	if err := d.Init(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDeviceNotAvailable, d.Name(), err)
	}

	m := &Machine{
		device:  d,
		running: true,
		engines: make(map[*engineState]struct{}),
	}
	if o.exitHook {
		m.installExitHook()
	}
	current = m

	Logger().Info("gpgpu: machine started", "device", d.Name())
	return m, nil
}

// Current returns the running machine, or nil.
func Current() *Machine {
	currentMu.Lock()
	defer currentMu.Unlock()
	return current
}

// Stop closes every engine created on m, closes the device and clears the
// process-wide slot so that a new machine can be started. Stop is idempotent.
func (m *Machine) Stop() {
	if m == nil {
		return
	}

	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	engines := m.engines
	m.engines = nil
	m.mu.Unlock()

	for s := range engines {
		s.close()
	}
	m.device.Close()
	m.removeExitHook()

	currentMu.Lock()
	if current == m {
		current = nil
	}
	currentMu.Unlock()

	Logger().Info("gpgpu: machine stopped", "device", m.device.Name())
}

// Running reports whether m has not been stopped.
func (m *Machine) Running() bool {
	if m == nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Device returns the device of m.
func (m *Machine) Device() Device {
	if m == nil {
		return nil
	}
	return m.device
}

func (m *Machine) attach(s *engineState) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return false
	}
	m.engines[s] = struct{}{}
	return true
}

func (m *Machine) detach(s *engineState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.engines, s)
}

func (m *Machine) installExitHook() {
	m.signals = make(chan os.Signal, 1)
	m.done = make(chan struct{})
	signal.Notify(m.signals, os.Interrupt, syscall.SIGTERM)

	go func(signals <-chan os.Signal, done <-chan struct{}) {
		select {
		case sig := <-signals:
			Logger().Info("gpgpu: stopping machine on signal", "signal", sig.String())
			m.Stop()
			code := 1
			if s, ok := sig.(syscall.Signal); ok {
				code = 128 + int(s)
			}
			os.Exit(code)
		case <-done:
		}
	}(m.signals, m.done)
}

func (m *Machine) removeExitHook() {
	if m.signals == nil {
		return
	}
	signal.Stop(m.signals)
	close(m.done)
	m.signals = nil
}
