// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpgpu

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/gogpu/gpgpu/internal/half"
)

// Format is the channel layout and precision of an output target. The
// format is always chosen by the caller; the engine never converts a result
// to a different precision on its own.
type Format uint8

// Output formats.
const (
	FormatInvalid Format = iota
	FormatR8
	FormatRG8
	FormatRGBA8
	FormatR16F
	FormatRG16F
	FormatRGBA16F
	FormatR32F
	FormatRG32F
	FormatRGBA32F
)

var formatNames = [...]string{
	FormatInvalid: "invalid",
	FormatR8:      "r8",
	FormatRG8:     "rg8",
	FormatRGBA8:   "rgba8",
	FormatR16F:    "r16f",
	FormatRG16F:   "rg16f",
	FormatRGBA16F: "rgba16f",
	FormatR32F:    "r32f",
	FormatRG32F:   "rg32f",
	FormatRGBA32F: "rgba32f",
}

func (f Format) String() string {
	if int(f) < len(formatNames) {
		return formatNames[f]
	}
	return fmt.Sprintf("Format(%d)", f)
}

// ParseFormat parses a format name as returned by Format.String.
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for f := FormatR8; f <= FormatRGBA32F; f++ {
		if formatNames[f] == s {
			return f, nil
		}
	}
	return FormatInvalid, fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// Valid reports whether f is a known format.
func (f Format) Valid() bool { return f >= FormatR8 && f <= FormatRGBA32F }

// Channels returns the number of stored channels (1, 2 or 4).
func (f Format) Channels() int {
	switch f {
	case FormatR8, FormatR16F, FormatR32F:
		return 1
	case FormatRG8, FormatRG16F, FormatRG32F:
		return 2
	case FormatRGBA8, FormatRGBA16F, FormatRGBA32F:
		return 4
	}
	return 0
}

// ChannelSize returns the byte size of one channel.
func (f Format) ChannelSize() int {
	switch f {
	case FormatR8, FormatRG8, FormatRGBA8:
		return 1
	case FormatR16F, FormatRG16F, FormatRGBA16F:
		return 2
	case FormatR32F, FormatRG32F, FormatRGBA32F:
		return 4
	}
	return 0
}

// BytesPerPixel returns the tightly packed size of one pixel.
func (f Format) BytesPerPixel() int { return f.Channels() * f.ChannelSize() }

// decodePixels widens raw target pixels to float4 cells. Absent color
// channels are zero and an absent alpha channel is one.
func decodePixels(f Format, raw []byte, dst []float32) error {
	n := len(dst) / 4
	if len(raw) != n*f.BytesPerPixel() {
		return fmt.Errorf("%w: %d bytes of %v for %d pixels", ErrSizeMismatch, len(raw), f, n)
	}
	ch, cs := f.Channels(), f.ChannelSize()
	for i := range n {
		cell := dst[i*4 : i*4+4]
		cell[0], cell[1], cell[2], cell[3] = 0, 0, 0, 1
		px := raw[i*ch*cs:]
		for c := range ch {
			b := px[c*cs:]
			var v float32
			switch cs {
			case 1:
				v = float32(b[0]) / 255
			case 2:
				v = half.ToFloat32(binary.LittleEndian.Uint16(b))
			case 4:
				v = math.Float32frombits(binary.LittleEndian.Uint32(b))
			}
			cell[c] = v
		}
	}
	return nil
}

// EncodePixel narrows one float4 color to the raw layout of f and appends
// it to dst. Unorm channels are clamped to [0, 1] and rounded. Devices that
// render on the host use it to fill targets.
func EncodePixel(dst []byte, f Format, c Vec4) []byte {
	ch, cs := f.Channels(), f.ChannelSize()
	for i := range ch {
		v := c[i]
		switch cs {
		case 1:
			switch {
			case math.IsNaN(float64(v)) || v <= 0:
				v = 0
			case v >= 1:
				v = 1
			}
			dst = append(dst, byte(math.Round(float64(v)*255)))
		case 2:
			dst = binary.LittleEndian.AppendUint16(dst, half.FromFloat32(v))
		case 4:
			dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v))
		}
	}
	return dst
}
