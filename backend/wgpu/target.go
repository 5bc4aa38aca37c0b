// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gpgpu"
)

// fullScreenVertices is the vertex count of the kernel rectangle.
const fullScreenVertices = 6

type target struct {
	device *Device
	dev    hal.Device
	queue  hal.Queue

	width   int
	height  int
	format  gpgpu.Format
	texFmt  gputypes.TextureFormat
	texture hal.Texture
	view    hal.TextureView

	active    *program
	pipeline  hal.RenderPipeline
	bindGroup hal.BindGroup
	cmdBuf    hal.CommandBuffer
	released  bool
}

var _ gpgpu.Target = (*target)(nil)

// CreateTarget allocates a render attachment texture of format f that can be
// copied back to the host.
func (d *Device) CreateTarget(width, height int, f gpgpu.Format) (gpgpu.Target, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", gpgpu.ErrSizeMismatch, width, height)
	}
	texFmt, err := TextureFormat(f)
	if err != nil {
		return nil, err
	}
	dev, queue, err := d.handles()
	if err != nil {
		return nil, err
	}

	tex, err := dev.CreateTexture(&hal.TextureDescriptor{
		Label:         "gpgpu_target",
		Size:          hal.Extent3D{Width: uint32(width), Height: uint32(height), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        texFmt,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create target texture: %w", err)
	}
	view, err := dev.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "gpgpu_target_view",
		Format:        texFmt,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		dev.DestroyTexture(tex)
		return nil, fmt.Errorf("wgpu: create target view: %w", err)
	}

	return &target{
		device:  d,
		dev:     dev,
		queue:   queue,
		width:   width,
		height:  height,
		format:  f,
		texFmt:  texFmt,
		texture: tex,
		view:    view,
	}, nil
}

func (t *target) Width() int           { return t.width }
func (t *target) Height() int          { return t.height }
func (t *target) Format() gpgpu.Format { return t.format }

// Begin activates p and resolves its pipeline for the target format. The
// clear happens in the render pass recorded by Draw.
func (t *target) Begin(p gpgpu.Program) error {
	if t.released {
		return gpgpu.ErrInvalidTexture
	}
	wp, ok := p.(*program)
	if !ok || wp.released || wp.device != t.device {
		return gpgpu.ErrInvalidProgram
	}
	rp, err := wp.pipeline(t.texFmt)
	if err != nil {
		return err
	}
	t.active = wp
	t.pipeline = rp
	return nil
}

// Draw records and submits one render pass: clear to transparent black, then
// six vertices covering the target.
func (t *target) Draw() error {
	if t.released {
		return gpgpu.ErrInvalidTexture
	}
	if t.active == nil || t.active.released {
		return fmt.Errorf("%w: no active program", gpgpu.ErrInvalidProgram)
	}

	bg, err := t.active.bindGroup()
	if err != nil {
		return err
	}

	encoder, err := t.dev.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "gpgpu_kernel_encoder"})
	if err != nil {
		t.dev.DestroyBindGroup(bg)
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("gpgpu_kernel"); err != nil {
		t.dev.DestroyBindGroup(bg)
		return fmt.Errorf("begin encoding: %w", err)
	}

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "gpgpu_kernel_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       t.view,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: gputypes.Color{R: 0, G: 0, B: 0, A: 0},
		}},
	})
	rp.SetPipeline(t.pipeline)
	rp.SetBindGroup(0, bg, nil)
	rp.Draw(fullScreenVertices, 1, 0, 0)
	rp.End()

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		t.dev.DestroyBindGroup(bg)
		return fmt.Errorf("end encoding: %w", err)
	}

	t.device.queueMu.Lock()
	_, err = t.queue.Submit([]hal.CommandBuffer{cmdBuf})
	t.device.queueMu.Unlock()
	if err != nil {
		t.dev.FreeCommandBuffer(cmdBuf)
		t.dev.DestroyBindGroup(bg)
		return fmt.Errorf("submit: %w", err)
	}
	t.bindGroup = bg
	t.cmdBuf = cmdBuf
	return nil
}

// End waits for the submitted pass and frees its command buffer and bind
// group.
func (t *target) End() error {
	t.active = nil
	t.pipeline = nil
	if t.cmdBuf == nil && t.bindGroup == nil {
		return nil
	}
	err := t.dev.WaitIdle()
	if t.cmdBuf != nil {
		t.dev.FreeCommandBuffer(t.cmdBuf)
		t.cmdBuf = nil
	}
	if t.bindGroup != nil {
		t.dev.DestroyBindGroup(t.bindGroup)
		t.bindGroup = nil
	}
	if err != nil {
		return fmt.Errorf("wait idle: %w", err)
	}
	return nil
}

// Snapshot copies the target into a mappable staging buffer and returns its
// rows without the copy pitch padding.
func (t *target) Snapshot() ([]byte, error) {
	if t.released {
		return nil, gpgpu.ErrInvalidTexture
	}

	rowBytes := uint32(t.width * t.format.BytesPerPixel())
	pitch := alignedRowPitch(rowBytes)
	size := uint64(pitch) * uint64(t.height)

	staging, err := t.dev.CreateBuffer(&hal.BufferDescriptor{
		Label: "gpgpu_staging",
		Size:  size,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create staging buffer: %w", err)
	}
	defer t.dev.DestroyBuffer(staging)

	encoder, err := t.dev.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "gpgpu_readback_encoder"})
	if err != nil {
		return nil, fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("gpgpu_readback"); err != nil {
		return nil, fmt.Errorf("begin encoding: %w", err)
	}

	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: t.texture,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})
	encoder.CopyTextureToBuffer(t.texture, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: pitch, RowsPerImage: uint32(t.height)},
		TextureBase:  hal.ImageCopyTexture{Texture: t.texture, MipLevel: 0, Aspect: gputypes.TextureAspectAll},
		Size:         hal.Extent3D{Width: uint32(t.width), Height: uint32(t.height), DepthOrArrayLayers: 1},
	}})
	// Back to attachment usage so the next pass starts from a known state.
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: t.texture,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("end encoding: %w", err)
	}
	defer t.dev.FreeCommandBuffer(cmdBuf)

	t.device.queueMu.Lock()
	defer t.device.queueMu.Unlock()
	if _, err := t.queue.Submit([]hal.CommandBuffer{cmdBuf}); err != nil {
		return nil, fmt.Errorf("submit: %w", err)
	}
	if err := t.dev.WaitIdle(); err != nil {
		return nil, fmt.Errorf("wait idle: %w", err)
	}

	mapping, err := t.dev.MapBuffer(staging, 0, size)
	if err != nil {
		return nil, fmt.Errorf("map staging buffer: %w", err)
	}
	raw := unsafe.Slice((*byte)(mapping.Ptr), int(size))
	out := stripRowPadding(raw, int(rowBytes), int(pitch), t.height)
	if err := t.dev.UnmapBuffer(staging); err != nil {
		return nil, fmt.Errorf("unmap staging buffer: %w", err)
	}
	return out, nil
}

func (t *target) Release() {
	if t.released {
		return
	}
	_ = t.End()
	t.released = true
	if t.view != nil {
		t.dev.DestroyTextureView(t.view)
	}
	if t.texture != nil {
		t.dev.DestroyTexture(t.texture)
	}
	t.view, t.texture = nil, nil
}
