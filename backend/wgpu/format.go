// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/gpgpu"
)

// copyPitchAlignment is the row alignment of texture-to-buffer copies.
const copyPitchAlignment = 256

// inputFormat is the texture format of every matrix input.
const inputFormat = gputypes.TextureFormatRGBA32Float

// inputTexelSize is the byte size of one inputFormat texel.
const inputTexelSize = 16

// TextureFormat returns the render target format for f.
func TextureFormat(f gpgpu.Format) (gputypes.TextureFormat, error) {
	switch f {
	case gpgpu.FormatR8:
		return gputypes.TextureFormatR8Unorm, nil
	case gpgpu.FormatRG8:
		return gputypes.TextureFormatRG8Unorm, nil
	case gpgpu.FormatRGBA8:
		return gputypes.TextureFormatRGBA8Unorm, nil
	case gpgpu.FormatR16F:
		return gputypes.TextureFormatR16Float, nil
	case gpgpu.FormatRG16F:
		return gputypes.TextureFormatRG16Float, nil
	case gpgpu.FormatRGBA16F:
		return gputypes.TextureFormatRGBA16Float, nil
	case gpgpu.FormatR32F:
		return gputypes.TextureFormatR32Float, nil
	case gpgpu.FormatRG32F:
		return gputypes.TextureFormatRG32Float, nil
	case gpgpu.FormatRGBA32F:
		return gputypes.TextureFormatRGBA32Float, nil
	}
	return gputypes.TextureFormatUndefined, fmt.Errorf("%w: %v", gpgpu.ErrUnsupportedFormat, f)
}

// alignedRowPitch rounds a row of rowBytes up to the copy alignment.
func alignedRowPitch(rowBytes uint32) uint32 {
	return (rowBytes + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
}

// stripRowPadding copies height rows of rowBytes out of src, whose rows are
// pitch bytes apart, into a tightly packed slice.
func stripRowPadding(src []byte, rowBytes, pitch, height int) []byte {
	out := make([]byte, rowBytes*height)
	if rowBytes == pitch {
		copy(out, src)
		return out
	}
	for row := range height {
		copy(out[row*rowBytes:(row+1)*rowBytes], src[row*pitch:row*pitch+rowBytes])
	}
	return out
}

// texels encodes a matrix as little-endian RGBA32Float texels.
func texels(m gpgpu.Matrix) []byte {
	data := m.Data()
	out := make([]byte, len(data)*4)
	for i, v := range data {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return out
}
