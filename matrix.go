// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpgpu

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"

	imgio "github.com/gogpu/gpgpu/internal/image"
)

// Matrix is a dense two-dimensional buffer of float4 cells, stored row-major
// with interleaved channels. Row 0 is the top row.
//
// A Matrix is a small handle: assigning it copies the handle and both copies
// share one buffer. The buffer is reclaimed once the last handle is dropped.
// Use Clone for an independent copy.
type Matrix struct {
	width  int
	height int
	data   []float32
}

func (Matrix) Kind() Kind { return KindMatrix }
func (Matrix) isValue()   {}

// NewMatrix creates a matrix from one value per cell. The value lands in
// channel 0; the remaining channels are zero.
func NewMatrix(width, height int, data []float32) (Matrix, error) {
	return NewMatrixChannels(width, height, 1, data)
}

// NewMatrixChannels creates a matrix from a flat source with k values per
// cell, k in 1..4. Channels beyond k are zero.
func NewMatrixChannels(width, height, k int, data []float32) (Matrix, error) {
	if k < 1 || k > 4 {
		return Matrix{}, fmt.Errorf("%w: %d channels per cell", ErrSizeMismatch, k)
	}
	if width <= 0 || height <= 0 {
		return Matrix{}, fmt.Errorf("%w: %dx%d", ErrSizeMismatch, width, height)
	}
	if len(data) != width*height*k {
		return Matrix{}, fmt.Errorf("%w: matrix data length must be %d, got %d",
			ErrSizeMismatch, width*height*k, len(data))
	}
	m := newMatrix(width, height)
	for i := range width * height {
		copy(m.data[i*4:i*4+k], data[i*k:i*k+k])
	}
	return m, nil
}

// NewMatrixVec2 creates a matrix from one Vec2 per cell.
func NewMatrixVec2(width, height int, data []Vec2) (Matrix, error) {
	return fromVectors(width, height, data)
}

// NewMatrixVec3 creates a matrix from one Vec3 per cell.
func NewMatrixVec3(width, height int, data []Vec3) (Matrix, error) {
	return fromVectors(width, height, data)
}

// NewMatrixVec4 creates a matrix from one Vec4 per cell.
func NewMatrixVec4(width, height int, data []Vec4) (Matrix, error) {
	return fromVectors(width, height, data)
}

func fromVectors[V Vec2 | Vec3 | Vec4](width, height int, data []V) (Matrix, error) {
	if width <= 0 || height <= 0 || width*height != len(data) {
		return Matrix{}, fmt.Errorf("%w: matrix data length must be %d, got %d",
			ErrSizeMismatch, max(width*height, 0), len(data))
	}
	m := newMatrix(width, height)
	for i, v := range data {
		switch v := any(v).(type) {
		case Vec2:
			copy(m.data[i*4:], v[:])
		case Vec3:
			copy(m.data[i*4:], v[:])
		case Vec4:
			copy(m.data[i*4:], v[:])
		}
	}
	return m, nil
}

func newMatrix(width, height int) Matrix {
	return Matrix{width: width, height: height, data: make([]float32, width*height*4)}
}

// DecodeMatrix decodes encoded image bytes. ext names the format ("png",
// ".jpg", ...). Channels are normalized to [0, 1].
func DecodeMatrix(data []byte, ext string) (Matrix, error) {
	img, err := imgio.Decode(data, ext)
	if err != nil {
		return Matrix{}, fmt.Errorf("%w: %w", ErrInvalidImage, err)
	}
	return MatrixFromImage(img)
}

// LoadMatrix reads and decodes the image file at path. The format is taken
// from the file extension.
func LoadMatrix(path string) (Matrix, error) {
	img, err := imgio.Load(path)
	if err != nil {
		return Matrix{}, fmt.Errorf("%w: %w", ErrInvalidImage, err)
	}
	return MatrixFromImage(img)
}

// MatrixFromImage converts img into a matrix with non-premultiplied RGBA
// channels in [0, 1].
func MatrixFromImage(img image.Image) (Matrix, error) {
	if img == nil {
		return Matrix{}, fmt.Errorf("%w: nil image", ErrInvalidImage)
	}
	b := img.Bounds()
	if b.Empty() {
		return Matrix{}, fmt.Errorf("%w: empty image", ErrInvalidImage)
	}
	src := imgio.ToNRGBA64(img)
	m := newMatrix(b.Dx(), b.Dy())
	for y := range m.height {
		for x := range m.width {
			c := src.NRGBA64At(x, y)
			i := m.Index(x, y)
			m.data[i+0] = float32(c.R) / 0xFFFF
			m.data[i+1] = float32(c.G) / 0xFFFF
			m.data[i+2] = float32(c.B) / 0xFFFF
			m.data[i+3] = float32(c.A) / 0xFFFF
		}
	}
	return m, nil
}

// matrixFromPixels builds a matrix from a tightly packed target snapshot.
func matrixFromPixels(width, height int, f Format, raw []byte) (Matrix, error) {
	if !f.Valid() {
		return Matrix{}, fmt.Errorf("%w: %v", ErrUnsupportedFormat, f)
	}
	m := newMatrix(width, height)
	if err := decodePixels(f, raw, m.data); err != nil {
		return Matrix{}, err
	}
	return m, nil
}

// Width returns the number of columns.
func (m Matrix) Width() int { return m.width }

// Height returns the number of rows.
func (m Matrix) Height() int { return m.height }

// Size returns the buffer length, width*height*4.
func (m Matrix) Size() int { return len(m.data) }

// Data returns the shared cell buffer. Writes are visible to every handle.
func (m Matrix) Data() []float32 { return m.data }

// Empty reports whether m holds no cells.
func (m Matrix) Empty() bool { return len(m.data) == 0 }

// Index returns the buffer offset of channel 0 of cell (x, y).
func (m Matrix) Index(x, y int) int { return (y*m.width + x) * 4 }

// At returns cell (x, y). It panics if the cell is out of range.
func (m Matrix) At(x, y int) Vec4 {
	m.check(x, y)
	var c Vec4
	copy(c[:], m.data[m.Index(x, y):])
	return c
}

// Set stores c into cell (x, y). It panics if the cell is out of range.
func (m Matrix) Set(x, y int, c Vec4) {
	m.check(x, y)
	copy(m.data[m.Index(x, y):], c[:])
}

func (m Matrix) check(x, y int) {
	if x < 0 || y < 0 || x >= m.width || y >= m.height {
		panic(fmt.Sprintf("gpgpu: cell (%d, %d) out of range %dx%d", x, y, m.width, m.height))
	}
}

// Channel returns channel c of every cell in row-major order.
func (m Matrix) Channel(c int) []float32 {
	out := make([]float32, m.width*m.height)
	for i := range out {
		out[i] = m.data[i*4+c]
	}
	return out
}

// Clone returns a copy backed by its own buffer.
func (m Matrix) Clone() Matrix {
	return Matrix{width: m.width, height: m.height, data: append([]float32(nil), m.data...)}
}

// Image returns the matrix as a 16-bit non-premultiplied image. Channels are
// clamped to [0, 1].
func (m Matrix) Image() *image.NRGBA64 {
	img := image.NewNRGBA64(image.Rect(0, 0, m.width, m.height))
	q := func(v float32) uint16 {
		if math.IsNaN(float64(v)) || v <= 0 {
			return 0
		}
		if v >= 1 {
			return 0xFFFF
		}
		return uint16(math.Round(float64(v) * 0xFFFF))
	}
	for y := range m.height {
		for x := range m.width {
			c := m.At(x, y)
			img.SetNRGBA64(x, y, color.NRGBA64{R: q(c[0]), G: q(c[1]), B: q(c[2]), A: q(c[3])})
		}
	}
	return img
}

// Encode writes the matrix as an image in the format named by ext.
func (m Matrix) Encode(w io.Writer, ext string) error {
	if m.Empty() {
		return fmt.Errorf("%w: empty matrix", ErrInvalidImage)
	}
	if err := imgio.Encode(w, m.Image(), ext); err != nil {
		return codecError(err)
	}
	return nil
}

// Save writes the matrix to path. The format comes from the extension and
// defaults to PNG.
func (m Matrix) Save(path string) error {
	if m.Empty() {
		return fmt.Errorf("%w: empty matrix", ErrInvalidImage)
	}
	if err := imgio.Save(path, m.Image()); err != nil {
		return codecError(err)
	}
	return nil
}

func codecError(err error) error {
	if errors.Is(err, imgio.ErrUnsupportedFormat) {
		return fmt.Errorf("%w: %w", ErrInvalidImage, err)
	}
	return err
}
