// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpgpu

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindTable(t *testing.T) {
	tests := []struct {
		kind   Kind
		name   string
		wgsl   string
		arity  int
		scalar Scalar
	}{
		{KindBool, "bool", "u32", 1, ScalarBool},
		{KindBVec3, "bvec3", "vec3<u32>", 3, ScalarBool},
		{KindInt, "int", "i32", 1, ScalarInt},
		{KindIVec2, "ivec2", "vec2<i32>", 2, ScalarInt},
		{KindUint, "uint", "u32", 1, ScalarUint},
		{KindUVec4, "uvec4", "vec4<u32>", 4, ScalarUint},
		{KindFloat, "float", "f32", 1, ScalarFloat},
		{KindVec3, "vec3", "vec3<f32>", 3, ScalarFloat},
		{KindVec4, "vec4", "vec4<f32>", 4, ScalarFloat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.kind.String())
			assert.Equal(t, tt.wgsl, tt.kind.WGSL())
			assert.Equal(t, tt.arity, tt.kind.Arity())
			assert.Equal(t, tt.scalar, tt.kind.Scalar())
			assert.True(t, tt.kind.Valid())
			assert.False(t, tt.kind.IsMatrix())

			k, err := ParseKind(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, k)
		})
	}

	assert.Equal(t, "texture_2d<f32>", KindMatrix.WGSL())
	assert.Equal(t, 0, KindMatrix.Arity())
	assert.True(t, KindMatrix.IsMatrix())
	assert.False(t, KindInvalid.Valid())
	assert.False(t, Kind(99).Valid())
	assert.Equal(t, "Kind(99)", Kind(99).String())

	_, err := ParseKind("double")
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestKindCount(t *testing.T) {
	n := 0
	for k := KindBool; k <= KindMatrix; k++ {
		if k.Valid() {
			n++
		}
	}
	assert.Equal(t, 17, n)
}

func TestValueOf(t *testing.T) {
	m, err := NewMatrix(1, 1, []float32{1})
	require.NoError(t, err)

	tests := []struct {
		in   any
		want Kind
	}{
		{true, KindBool},
		{int32(-3), KindInt},
		{7, KindInt},
		{uint32(3), KindUint},
		{uint(3), KindUint},
		{float32(1.5), KindFloat},
		{2.5, KindFloat},
		{[2]bool{true, false}, KindBVec2},
		{[4]bool{}, KindBVec4},
		{[3]int32{1, 2, 3}, KindIVec3},
		{[2]uint32{1, 2}, KindUVec2},
		{[3]float32{}, KindVec3},
		{[4]float32{}, KindVec4},
		{Vec2{1, 2}, KindVec2},
		{UVec3{}, KindUVec3},
		{m, KindMatrix},
		{&m, KindMatrix},
	}
	for _, tt := range tests {
		v, err := ValueOf(tt.in)
		require.NoError(t, err, "%T", tt.in)
		assert.Equal(t, tt.want, v.Kind(), "%T", tt.in)
	}

	for _, bad := range []any{nil, "text", []float32{1}, [5]float32{}, int64(1), (*Matrix)(nil)} {
		_, err := ValueOf(bad)
		assert.ErrorIs(t, err, ErrUnsupportedType, "%T", bad)
	}
}

func TestEncodeUniform(t *testing.T) {
	buf, err := EncodeUniform(Vec3{1, -2, 0.5})
	require.NoError(t, err)
	require.Len(t, buf, UniformSize)
	assert.Equal(t, float32(1), math.Float32frombits(binary.LittleEndian.Uint32(buf[0:])))
	assert.Equal(t, float32(-2), math.Float32frombits(binary.LittleEndian.Uint32(buf[4:])))
	assert.Equal(t, float32(0.5), math.Float32frombits(binary.LittleEndian.Uint32(buf[8:])))
	assert.Zero(t, binary.LittleEndian.Uint32(buf[12:]))

	buf, err = EncodeUniform(BVec2{false, true})
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 0, 1, 0, 0, 0}, buf[:8])

	buf, err = EncodeUniform(Int(-1))
	require.NoError(t, err)
	assert.Equal(t, uint32(0xFFFFFFFF), binary.LittleEndian.Uint32(buf))

	m, err := NewMatrix(1, 1, []float32{1})
	require.NoError(t, err)
	_, err = EncodeUniform(m)
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestFloats(t *testing.T) {
	assert.Equal(t, Vec4{-4, 5, 0, 0}, Floats(IVec2{-4, 5}))
	assert.Equal(t, Vec4{1, 0, 1, 0}, Floats(BVec3{true, false, true}))
	assert.Equal(t, Vec4{7, 0, 0, 0}, Floats(Uint(7)))
	assert.Equal(t, Vec4{1, 2, 3, 4}, Floats(Vec4{1, 2, 3, 4}))
}
