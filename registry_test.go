// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpgpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidName(t *testing.T) {
	for _, name := range []string{"img2", "a_b", "_x9", "image", "z", "vec", "letter", "f32x"} {
		assert.True(t, ValidName(name), "%q", name)
	}
	for _, name := range []string{
		"2img", "Img", "a-b", "", "a b", "imgAt", "é",
		"_", "__x", "__",
		"vec4", "f32", "let", "array", "sampler", "texture_2d", "fn", "var",
		"mat4x4", "u32", "bool", "true", "struct", "self", "null",
	} {
		assert.False(t, ValidName(name), "%q", name)
	}
}

func TestRegistrySet(t *testing.T) {
	var r Registry
	require.NoError(t, r.Set("img2", Float(1)))
	require.NoError(t, r.Set("a_b", [2]float32{1, 2}))
	assert.Equal(t, 2, r.Len())

	for _, name := range []string{"2img", "Img", "a-b", "", "_", "vec4", "let"} {
		assert.ErrorIs(t, r.Set(name, Float(1)), ErrInvalidName, "%q", name)
	}
	assert.ErrorIs(t, r.Set("x", "text"), ErrUnsupportedType)
	assert.Equal(t, 2, r.Len(), "failed sets leave the registry unchanged")
}

func TestRegistrySetIdempotent(t *testing.T) {
	var r Registry
	require.NoError(t, r.Set("v", Float(1)))
	require.NoError(t, r.Set("v", Float(1)))
	assert.Equal(t, 1, r.Len())

	require.NoError(t, r.Set("v", IVec3{1, 2, 3}))
	v, ok := r.Get("v")
	require.True(t, ok)
	assert.Equal(t, IVec3{1, 2, 3}, v)
	assert.Equal(t, []Declaration{{Name: "v", Kind: KindIVec3}}, r.Declared())
}

func TestRegistryRemove(t *testing.T) {
	var r Registry
	r.Remove("missing")
	require.NoError(t, r.Set("a", Uint(1)))
	r.Remove("a")
	_, ok := r.Get("a")
	assert.False(t, ok)
	assert.Zero(t, r.Len())
}

func TestRegistryDeclaredSorted(t *testing.T) {
	var r Registry
	m, err := NewMatrix(1, 1, []float32{0})
	require.NoError(t, err)
	require.NoError(t, r.Set("zeta", Float(1)))
	require.NoError(t, r.Set("alpha", m))
	require.NoError(t, r.Set("mid", true))

	assert.Equal(t, []string{"alpha", "mid", "zeta"}, r.Names())
	assert.Equal(t, []Declaration{
		{Name: "alpha", Kind: KindMatrix},
		{Name: "mid", Kind: KindBool},
		{Name: "zeta", Kind: KindFloat},
	}, r.Declared())
}

func TestRegistryShape(t *testing.T) {
	var a, b Registry
	require.NoError(t, a.Set("x", Float(1)))
	require.NoError(t, a.Set("y", Int(2)))
	require.NoError(t, b.Set("y", Int(7)))
	require.NoError(t, b.Set("x", Float(9)))
	assert.Equal(t, a.Shape(), b.Shape(), "values do not change the shape")

	require.NoError(t, b.Set("x", Vec2{}))
	assert.NotEqual(t, a.Shape(), b.Shape(), "kinds do")
}

func TestRegistryBindAll(t *testing.T) {
	var r Registry
	m, err := NewMatrix(1, 1, []float32{3})
	require.NoError(t, err)
	require.NoError(t, r.Set("img", m))
	require.NoError(t, r.Set("gain", Float(2)))

	p := newFakeProgram("gain", "img")
	require.NoError(t, r.BindAll(p))
	assert.Equal(t, Float(2), p.uniforms[0])
	assert.Equal(t, Vec4{3}, p.textures[1].At(0, 0))

	assert.ErrorIs(t, r.BindAll(nil), ErrInvalidProgram)
	assert.ErrorIs(t, r.BindAll(newFakeProgram("gain")), ErrInvalidProgram)

	failing := newFakeProgram("gain", "img")
	failing.failSlot = 0
	assert.ErrorIs(t, r.BindAll(failing), ErrUnsupportedType)
}
