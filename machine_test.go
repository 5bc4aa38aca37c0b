// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpgpu

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartStop(t *testing.T) {
	dev := &fakeDevice{name: "fake"}
	m, err := Start(WithDevice(dev), WithoutExitHook())
	require.NoError(t, err)
	assert.True(t, m.Running())
	assert.Same(t, m, Current())
	assert.Equal(t, Device(dev), m.Device())
	assert.Equal(t, 1, dev.inits)

	again, err := Start(WithDevice(&fakeDevice{name: "other"}))
	require.NoError(t, err)
	assert.Same(t, m, again, "acquiring twice returns the running machine")

	m.Stop()
	m.Stop()
	assert.False(t, m.Running())
	assert.Nil(t, Current())
	assert.Equal(t, 1, dev.closes)

	next, err := Start(WithDevice(&fakeDevice{name: "next"}), WithoutExitHook())
	require.NoError(t, err)
	assert.NotSame(t, m, next)
	next.Stop()
}

func TestStartExitHook(t *testing.T) {
	m, err := Start(WithDevice(&fakeDevice{name: "hooked"}))
	require.NoError(t, err)
	assert.NotNil(t, m.signals)
	m.Stop()
	assert.Nil(t, m.signals)
}

func TestStartErrors(t *testing.T) {
	_, err := Start(WithDevice(&fakeDevice{name: "broken", initErr: errors.New("no adapter")}), WithoutExitHook())
	assert.ErrorIs(t, err, ErrDeviceNotAvailable)
	assert.Nil(t, Current())

	_, err = Start(WithBackend("nonexistent"), WithoutExitHook())
	assert.ErrorIs(t, err, ErrDeviceNotAvailable)

	withDevices(t, make(map[string]DeviceFactory))
	_, err = Start(WithoutExitHook())
	assert.ErrorIs(t, err, ErrDeviceNotAvailable)
}

func TestStartWithBackend(t *testing.T) {
	withDevices(t, map[string]DeviceFactory{
		"fake": func() Device { return &fakeDevice{name: "fake"} },
	})
	m, err := Start(WithBackend("fake"), WithoutExitHook())
	require.NoError(t, err)
	defer m.Stop()
	assert.Equal(t, "fake", m.Device().Name())
}

func TestNilMachine(t *testing.T) {
	var m *Machine
	assert.False(t, m.Running())
	assert.Nil(t, m.Device())
	m.Stop()

	_, err := New(nil, "return vec4<f32>();")
	assert.ErrorIs(t, err, ErrNoMachine)
}

func TestNewOnStoppedMachine(t *testing.T) {
	m, err := Start(WithDevice(&fakeDevice{name: "fake"}), WithoutExitHook())
	require.NoError(t, err)
	m.Stop()
	_, err = New(m, "return vec4<f32>();")
	assert.ErrorIs(t, err, ErrNoMachine)
}

func TestStopClosesEngines(t *testing.T) {
	m, err := Start(WithDevice(&fakeDevice{name: "fake"}), WithoutExitHook())
	require.NoError(t, err)
	e, err := New(m, "return vec4<f32>();", WithLabel("stop-test"))
	require.NoError(t, err)

	m.Stop()
	assert.True(t, e.Closed())
	assert.ErrorIs(t, e.SetInput("x", Float(1)), ErrEngineClosed)
	assert.NoError(t, e.Close())
}
