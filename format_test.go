// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpgpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatLayout(t *testing.T) {
	tests := []struct {
		f        Format
		name     string
		channels int
		bpp      int
	}{
		{FormatR8, "r8", 1, 1},
		{FormatRG8, "rg8", 2, 2},
		{FormatRGBA8, "rgba8", 4, 4},
		{FormatR16F, "r16f", 1, 2},
		{FormatRG16F, "rg16f", 2, 4},
		{FormatRGBA16F, "rgba16f", 4, 8},
		{FormatR32F, "r32f", 1, 4},
		{FormatRG32F, "rg32f", 2, 8},
		{FormatRGBA32F, "rgba32f", 4, 16},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.f.String())
			assert.Equal(t, tt.channels, tt.f.Channels())
			assert.Equal(t, tt.bpp, tt.f.BytesPerPixel())
			assert.True(t, tt.f.Valid())

			f, err := ParseFormat(" " + tt.name + " ")
			require.NoError(t, err)
			assert.Equal(t, tt.f, f)
		})
	}

	_, err := ParseFormat("rgb8")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.False(t, FormatInvalid.Valid())
	assert.Equal(t, 0, FormatInvalid.BytesPerPixel())
}

func TestPixelRoundTrip(t *testing.T) {
	c := Vec4{0.25, 0.5, 0.75, 1}
	for f := FormatR8; f <= FormatRGBA32F; f++ {
		t.Run(f.String(), func(t *testing.T) {
			raw := EncodePixel(nil, f, c)
			require.Len(t, raw, f.BytesPerPixel())

			cell := make([]float32, 4)
			require.NoError(t, decodePixels(f, raw, cell))
			for i := range f.Channels() {
				assert.InDelta(t, c[i], cell[i], 1.0/255, "channel %d", i)
			}
			for i := f.Channels(); i < 3; i++ {
				assert.Zero(t, cell[i], "absent color channel %d", i)
			}
			if f.Channels() < 4 {
				assert.Equal(t, float32(1), cell[3], "absent alpha")
			}
		})
	}
}

func TestEncodePixelClampsUnorm(t *testing.T) {
	raw := EncodePixel(nil, FormatRGBA8, Vec4{-1, 2, 0.5, float32NaN()})
	assert.Equal(t, []byte{0, 255, 128, 0}, raw)

	raw = EncodePixel(nil, FormatR32F, Vec4{-3.5})
	cell := make([]float32, 4)
	require.NoError(t, decodePixels(FormatR32F, raw, cell))
	assert.Equal(t, float32(-3.5), cell[0], "float formats keep out-of-range values")
}

func TestDecodePixelsSizeMismatch(t *testing.T) {
	err := decodePixels(FormatRGBA8, make([]byte, 7), make([]float32, 8))
	assert.ErrorIs(t, err, ErrSizeMismatch)
}

func float32NaN() float32 {
	var zero float32
	return zero / zero
}
