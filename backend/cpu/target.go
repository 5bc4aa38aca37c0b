// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cpu

import (
	"fmt"

	"github.com/gogpu/gpgpu"
)

type target struct {
	device   *Device
	width    int
	height   int
	format   gpgpu.Format
	pix      []byte
	active   *program
	released bool
}

var _ gpgpu.Target = (*target)(nil)

func (t *target) Width() int           { return t.width }
func (t *target) Height() int          { return t.height }
func (t *target) Format() gpgpu.Format { return t.format }

func (t *target) Begin(p gpgpu.Program) error {
	if t.released {
		return gpgpu.ErrInvalidTexture
	}
	cp, ok := p.(*program)
	if !ok || cp.released || cp.device != t.device {
		return gpgpu.ErrInvalidProgram
	}
	clear(t.pix)
	t.active = cp
	return nil
}

func (t *target) Draw() error {
	if t.released {
		return gpgpu.ErrInvalidTexture
	}
	if t.active == nil || t.active.released {
		return fmt.Errorf("%w: no active program", gpgpu.ErrInvalidProgram)
	}

	fn := t.device.currentShader()
	if fn == nil {
		return nil
	}
	inputs := t.active.inputs()
	bpp := t.format.BytesPerPixel()
	t.device.rows(t.height, func(y0, y1 int) {
		f := &Fragment{Width: t.width, Height: t.height, inputs: inputs}
		for y := y0; y < y1; y++ {
			for x := range t.width {
				f.X, f.Y = x, y
				f.Coord = gpgpu.Vec2{float32(x) + 0.5, float32(y) + 0.5}
				f.UV = gpgpu.Vec2{f.Coord[0] / float32(t.width), f.Coord[1] / float32(t.height)}
				off := (y*t.width + x) * bpp
				gpgpu.EncodePixel(t.pix[off:off], t.format, fn(f))
			}
		}
	})
	return nil
}

func (t *target) End() error {
	t.active = nil
	return nil
}

func (t *target) Snapshot() ([]byte, error) {
	if t.released {
		return nil, gpgpu.ErrInvalidTexture
	}
	return append([]byte(nil), t.pix...), nil
}

func (t *target) Release() {
	t.released = true
	t.active = nil
	t.pix = nil
}
