// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpgpu

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMatrixArity(t *testing.T) {
	m, err := NewMatrix(2, 2, []float32{1, 2, 3, 4})
	require.NoError(t, err)
	assert.Equal(t, 2, m.Width())
	assert.Equal(t, 2, m.Height())
	assert.Equal(t, 16, m.Size())
	assert.Equal(t, Vec4{3, 0, 0, 0}, m.At(0, 1))
	assert.Equal(t, []float32{1, 2, 3, 4}, m.Channel(0))

	m, err = NewMatrixChannels(1, 2, 3, []float32{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3, 0, 4, 5, 6, 0}, m.Data())

	m2, err := NewMatrixVec2(2, 1, []Vec2{{1, 2}, {3, 4}})
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 0, 0, 3, 4, 0, 0}, m2.Data())

	m3, err := NewMatrixVec3(1, 1, []Vec3{{1, 2, 3}})
	require.NoError(t, err)
	assert.Equal(t, Vec4{1, 2, 3, 0}, m3.At(0, 0))

	m4, err := NewMatrixVec4(1, 1, []Vec4{{1, 2, 3, 4}})
	require.NoError(t, err)
	assert.Equal(t, Vec4{1, 2, 3, 4}, m4.At(0, 0))
}

func TestNewMatrixSizeMismatch(t *testing.T) {
	_, err := NewMatrix(2, 2, []float32{1, 2, 3})
	assert.ErrorIs(t, err, ErrSizeMismatch)

	_, err = NewMatrix(0, 2, nil)
	assert.ErrorIs(t, err, ErrSizeMismatch)

	_, err = NewMatrixChannels(1, 1, 5, make([]float32, 5))
	assert.ErrorIs(t, err, ErrSizeMismatch)

	_, err = NewMatrixVec3(2, 2, []Vec3{{}, {}, {}})
	assert.ErrorIs(t, err, ErrSizeMismatch)

	_, err = NewMatrixVec4(-1, -1, []Vec4{{}})
	assert.ErrorIs(t, err, ErrSizeMismatch)
}

func TestMatrixSharing(t *testing.T) {
	m, err := NewMatrix(2, 1, []float32{1, 2})
	require.NoError(t, err)

	alias := m
	alias.Set(0, 0, Vec4{9, 9, 9, 9})
	assert.Equal(t, Vec4{9, 9, 9, 9}, m.At(0, 0), "assignment shares the buffer")

	c := m.Clone()
	c.Set(1, 0, Vec4{5})
	assert.Equal(t, Vec4{2}, m.At(1, 0), "clones are independent")
	assert.Equal(t, 4, m.Index(1, 0))

	sq, err := NewMatrix(2, 2, []float32{1, 2, 3, 4})
	require.NoError(t, err)
	assert.Equal(t, 12, sq.Index(1, 1))
	assert.Equal(t, float32(4), sq.Data()[sq.Index(1, 1)])

	assert.Panics(t, func() { m.At(2, 0) })
	assert.Panics(t, func() { m.Set(0, -1, Vec4{}) })
}

func encodeTestPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, G: 0, B: 0, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{R: 0, G: 0, B: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDecodeMatrix(t *testing.T) {
	m, err := DecodeMatrix(encodeTestPNG(t), "png")
	require.NoError(t, err)
	assert.Equal(t, 2, m.Width())
	assert.Equal(t, 1, m.Height())
	assert.Equal(t, Vec4{1, 0, 0, 1}, m.At(0, 0))
	assert.Equal(t, Vec4{0, 0, 1, 1}, m.At(1, 0))

	_, err = DecodeMatrix(nil, "png")
	assert.ErrorIs(t, err, ErrInvalidImage)
	_, err = DecodeMatrix(encodeTestPNG(t), "")
	assert.ErrorIs(t, err, ErrInvalidImage)
	_, err = DecodeMatrix([]byte("garbage"), "png")
	assert.ErrorIs(t, err, ErrInvalidImage)
}

func TestLoadMatrix(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.png")
	require.NoError(t, os.WriteFile(path, encodeTestPNG(t), 0o600))

	m, err := LoadMatrix(path)
	require.NoError(t, err)
	assert.Equal(t, Vec4{1, 0, 0, 1}, m.At(0, 0))

	_, err = LoadMatrix(filepath.Join(t.TempDir(), "missing.png"))
	assert.ErrorIs(t, err, ErrInvalidImage)
}

func TestMatrixFromImageRejectsEmpty(t *testing.T) {
	_, err := MatrixFromImage(nil)
	assert.ErrorIs(t, err, ErrInvalidImage)
	_, err = MatrixFromImage(image.NewGray(image.Rect(0, 0, 0, 0)))
	assert.ErrorIs(t, err, ErrInvalidImage)
}

func TestMatrixImageClamps(t *testing.T) {
	m, err := NewMatrixVec4(2, 1, []Vec4{{-1, 0.5, 2, 1}, {0, 0, 0, 0}})
	require.NoError(t, err)
	img := m.Image()
	c := img.NRGBA64At(0, 0)
	assert.Equal(t, uint16(0), c.R)
	assert.Equal(t, uint16(0x8000), c.G)
	assert.Equal(t, uint16(0xFFFF), c.B)
	assert.Equal(t, uint16(0xFFFF), c.A)
}

func TestMatrixFromPixels(t *testing.T) {
	m, err := matrixFromPixels(2, 1, FormatRG8, []byte{255, 0, 0, 51})
	require.NoError(t, err)
	assert.Equal(t, Vec4{1, 0, 0, 1}, m.At(0, 0))
	assert.InDelta(t, 0.2, m.At(1, 0)[1], 1e-6)

	_, err = matrixFromPixels(2, 1, FormatRG8, []byte{1})
	assert.ErrorIs(t, err, ErrSizeMismatch)
	_, err = matrixFromPixels(1, 1, FormatInvalid, nil)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
