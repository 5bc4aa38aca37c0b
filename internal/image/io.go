// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package image is the codec service behind Matrix construction and canvas
// export: it decodes encoded bytes with a format hint, encodes images by
// extension and loads files.
package image

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

// I/O errors.
var (
	// ErrUnsupportedFormat is returned when the format hint is unknown.
	ErrUnsupportedFormat = errors.New("image: unsupported format")

	// ErrEmptyData is returned when image data or the format hint is empty.
	ErrEmptyData = errors.New("image: empty data")
)

// JPEGQuality is the quality used when encoding JPEG output.
const JPEGQuality = 95

// NormalizeExt lowers the hint and strips a leading dot: ".PNG" -> "png".
func NormalizeExt(ext string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
}

// Decode decodes data using the format named by ext ("png", ".jpg", ...).
func Decode(data []byte, ext string) (image.Image, error) {
	if len(data) == 0 {
		return nil, ErrEmptyData
	}
	ext = NormalizeExt(ext)
	if ext == "" {
		return nil, fmt.Errorf("%w: no format hint", ErrEmptyData)
	}
	r := bytes.NewReader(data)

	var (
		img image.Image
		err error
	)
	switch ext {
	case "png":
		img, err = png.Decode(r)
	case "jpg", "jpeg":
		img, err = jpeg.Decode(r)
	case "gif":
		img, err = gif.Decode(r)
	case "bmp":
		img, err = bmp.Decode(r)
	case "tif", "tiff":
		img, err = tiff.Decode(r)
	case "webp":
		img, err = webp.Decode(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("image: decode %s: %w", ext, err)
	}
	return img, nil
}

// ReadFile returns the raw bytes of the file at path.
func ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("image: read file: %w", err)
	}
	return data, nil
}

// Load reads and decodes the file at path, taking the format from its
// extension.
func Load(path string) (image.Image, error) {
	data, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data, filepath.Ext(path))
}

// Encode writes img to w in the format named by ext.
func Encode(w io.Writer, img image.Image, ext string) error {
	var err error
	switch ext = NormalizeExt(ext); ext {
	case "png":
		err = png.Encode(w, img)
	case "jpg", "jpeg":
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: JPEGQuality})
	case "gif":
		err = gif.Encode(w, img, nil)
	case "bmp":
		err = bmp.Encode(w, img)
	case "tif", "tiff":
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return fmt.Errorf("image: encode %s: %w", ext, err)
	}
	return nil
}

// EncodeToBytes encodes img in the format named by ext.
func EncodeToBytes(img image.Image, ext string) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img, ext); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save encodes img into the file at path. The format comes from the path
// extension and defaults to PNG when there is none.
func Save(path string, img image.Image) error {
	ext := filepath.Ext(path)
	if ext == "" {
		ext = "png"
	}
	var buf bytes.Buffer
	if err := Encode(&buf, img, ext); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Clean(path), buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("image: write file: %w", err)
	}
	return nil
}

// ToNRGBA64 converts any image into a non-premultiplied 16-bit RGBA image
// with its origin at (0, 0).
func ToNRGBA64(img image.Image) *image.NRGBA64 {
	if n, ok := img.(*image.NRGBA64); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	b := img.Bounds()
	dst := image.NewNRGBA64(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(dst, dst.Rect, img, b.Min, xdraw.Src)
	return dst
}
