// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpgpu

import "bytes"

// SaveCanvas writes an engine result to path as an image. The format comes
// from the extension and defaults to PNG. Channels are clamped to [0, 1].
func SaveCanvas(m Matrix, path string) error {
	return m.Save(path)
}

// EncodeCanvas returns an engine result encoded as PNG.
func EncodeCanvas(m Matrix) ([]byte, error) {
	var buf bytes.Buffer
	if err := m.Encode(&buf, "png"); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
