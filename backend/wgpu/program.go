// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gpgpu"
	"github.com/gogpu/gpgpu/internal/shader"
)

// inputTexture is the texture backing one matrix slot. It is recreated
// when the bound matrix changes size.
type inputTexture struct {
	texture hal.Texture
	view    hal.TextureView
	width   int
	height  int
}

type program struct {
	device *Device
	dev    hal.Device
	queue  hal.Queue

	bindings   []shader.Binding
	module     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipelines  map[gputypes.TextureFormat]hal.RenderPipeline
	sampler    hal.Sampler

	slots    map[string]int
	kinds    map[int]shader.ResourceKind
	buffers  map[int]hal.Buffer
	textures map[int]*inputTexture
	released bool
}

var _ gpgpu.Program = (*program)(nil)

// CompileProgram validates source with the WGSL front end, then creates the
// shader module, the bind group layout and one uniform buffer per scalar or
// vector input. Render pipelines are created per target format on first use.
func (d *Device) CompileProgram(source string) (gpgpu.Program, error) {
	dev, queue, err := d.handles()
	if err != nil {
		return nil, err
	}

	m, err := shader.Check(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", gpgpu.ErrInvalidShader, err)
	}
	if err := m.RequireEntryPoints(gpgpu.VertexEntryPoint, gpgpu.FragmentEntryPoint); err != nil {
		return nil, fmt.Errorf("%w: %w", gpgpu.ErrInvalidShader, err)
	}

	p := &program{
		device:    d,
		dev:       dev,
		queue:     queue,
		pipelines: make(map[gputypes.TextureFormat]hal.RenderPipeline),
		slots:     make(map[string]int),
		kinds:     make(map[int]shader.ResourceKind),
		buffers:   make(map[int]hal.Buffer),
		textures:  make(map[int]*inputTexture),
	}
	for _, b := range m.Bindings() {
		if b.Group == 0 {
			p.bindings = append(p.bindings, b)
		}
	}
	if err := p.create(source); err != nil {
		p.Release()
		return nil, fmt.Errorf("%w: %w", gpgpu.ErrInvalidShader, err)
	}

	d.mu.Lock()
	d.compiles++
	compiles := d.compiles
	logger := d.logger
	d.mu.Unlock()
	logger.Debug("wgpu: kernel compiled", "bindings", len(p.bindings), "compiles", compiles)
	return p, nil
}

func (p *program) create(source string) error {
	var err error
	p.module, err = p.dev.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "gpgpu_kernel",
		Source: hal.ShaderSource{WGSL: source},
	})
	if err != nil {
		return fmt.Errorf("create shader module: %w", err)
	}

	entries := make([]gputypes.BindGroupLayoutEntry, 0, len(p.bindings))
	for _, b := range p.bindings {
		e := gputypes.BindGroupLayoutEntry{Binding: b.Binding, Visibility: gputypes.ShaderStageFragment}
		switch b.Kind {
		case shader.ResourceUniform:
			e.Buffer = &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}
		case shader.ResourceTexture:
			e.Texture = &gputypes.TextureBindingLayout{
				SampleType:    gputypes.TextureSampleTypeUnfilterableFloat,
				ViewDimension: gputypes.TextureViewDimension2D,
			}
		case shader.ResourceSampler:
			e.Sampler = &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeNonFiltering}
		}
		entries = append(entries, e)
	}
	p.bindLayout, err = p.dev.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   "gpgpu_kernel_bind_layout",
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("create bind group layout: %w", err)
	}
	p.pipeLayout, err = p.dev.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "gpgpu_kernel_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}

	zero := make([]byte, gpgpu.UniformSize)
	for _, b := range p.bindings {
		slot := int(b.Binding)
		switch b.Kind {
		case shader.ResourceUniform:
			buf, err := p.dev.CreateBuffer(&hal.BufferDescriptor{
				Label: "gpgpu_uniform_" + b.Name,
				Size:  gpgpu.UniformSize,
				Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
			})
			if err != nil {
				return fmt.Errorf("create uniform buffer %q: %w", b.Name, err)
			}
			p.buffers[slot] = buf
			if err := p.queue.WriteBuffer(buf, 0, zero); err != nil {
				return fmt.Errorf("clear uniform buffer %q: %w", b.Name, err)
			}
		case shader.ResourceSampler:
			p.sampler, err = p.dev.CreateSampler(&hal.SamplerDescriptor{
				Label:        "gpgpu_nearest_sampler",
				AddressModeU: gputypes.AddressModeClampToEdge,
				AddressModeV: gputypes.AddressModeClampToEdge,
				AddressModeW: gputypes.AddressModeClampToEdge,
				MagFilter:    gputypes.FilterModeNearest,
				MinFilter:    gputypes.FilterModeNearest,
				MipmapFilter: gputypes.FilterModeNearest,
				LodMaxClamp:  32,
				Anisotropy:   1,
			})
			if err != nil {
				return fmt.Errorf("create sampler: %w", err)
			}
			continue
		}
		p.slots[b.Name] = slot
		p.kinds[slot] = b.Kind
	}
	return nil
}

// pipeline returns the render pipeline drawing into targets of format f.
func (p *program) pipeline(f gputypes.TextureFormat) (hal.RenderPipeline, error) {
	if rp, ok := p.pipelines[f]; ok {
		return rp, nil
	}
	rp, err := p.dev.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "gpgpu_kernel_pipeline",
		Layout: p.pipeLayout,
		Vertex: hal.VertexState{
			Module:     p.module,
			EntryPoint: gpgpu.VertexEntryPoint,
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
		},
		Multisample: gputypes.DefaultMultisampleState(),
		Fragment: &hal.FragmentState{
			Module:     p.module,
			EntryPoint: gpgpu.FragmentEntryPoint,
			Targets: []gputypes.ColorTargetState{{
				Format:    f,
				WriteMask: gputypes.ColorWriteMaskAll,
			}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create render pipeline for %v: %w", f, err)
	}
	p.pipelines[f] = rp
	return rp, nil
}

func (p *program) UniformLocation(name string) (int, bool) {
	if p.released {
		return 0, false
	}
	slot, ok := p.slots[name]
	return slot, ok
}

func (p *program) SetUniform(slot int, v gpgpu.Value) error {
	if err := p.check(slot, shader.ResourceUniform); err != nil {
		return err
	}
	if v == nil || v.Kind().IsMatrix() {
		return fmt.Errorf("%w: uniform slot %d needs a scalar or vector", gpgpu.ErrUnsupportedType, slot)
	}
	data, err := gpgpu.EncodeUniform(v)
	if err != nil {
		return err
	}
	p.device.queueMu.Lock()
	defer p.device.queueMu.Unlock()
	if err := p.queue.WriteBuffer(p.buffers[slot], 0, data); err != nil {
		return fmt.Errorf("wgpu: upload uniform slot %d: %w", slot, err)
	}
	return nil
}

func (p *program) BindTexture(slot int, m gpgpu.Matrix) error {
	if err := p.check(slot, shader.ResourceTexture); err != nil {
		return err
	}
	if m.Empty() {
		return fmt.Errorf("%w: empty matrix for slot %d", gpgpu.ErrSizeMismatch, slot)
	}
	in, err := p.inputTexture(slot, m.Width(), m.Height())
	if err != nil {
		return err
	}

	w, h := uint32(m.Width()), uint32(m.Height())
	p.device.queueMu.Lock()
	defer p.device.queueMu.Unlock()
	err = p.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: in.texture, MipLevel: 0, Aspect: gputypes.TextureAspectAll},
		texels(m),
		&hal.ImageDataLayout{Offset: 0, BytesPerRow: w * inputTexelSize, RowsPerImage: h},
		&hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	)
	if err != nil {
		return fmt.Errorf("wgpu: upload matrix slot %d: %w", slot, err)
	}
	return nil
}

// inputTexture returns the texture of slot, recreating it when the size
// differs from width x height.
func (p *program) inputTexture(slot, width, height int) (*inputTexture, error) {
	if in, ok := p.textures[slot]; ok {
		if in.width == width && in.height == height {
			return in, nil
		}
		p.destroyInput(in)
		delete(p.textures, slot)
	}

	tex, err := p.dev.CreateTexture(&hal.TextureDescriptor{
		Label:         fmt.Sprintf("gpgpu_input_%d", slot),
		Size:          hal.Extent3D{Width: uint32(width), Height: uint32(height), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        inputFormat,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create input texture %dx%d: %w", width, height, err)
	}
	view, err := p.dev.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         fmt.Sprintf("gpgpu_input_%d_view", slot),
		Format:        inputFormat,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		p.dev.DestroyTexture(tex)
		return nil, fmt.Errorf("wgpu: create input texture view: %w", err)
	}
	in := &inputTexture{texture: tex, view: view, width: width, height: height}
	p.textures[slot] = in
	return in, nil
}

func (p *program) check(slot int, want shader.ResourceKind) error {
	if p.released {
		return gpgpu.ErrInvalidProgram
	}
	kind, ok := p.kinds[slot]
	if !ok {
		return fmt.Errorf("%w: no slot %d", gpgpu.ErrInvalidProgram, slot)
	}
	if kind != want {
		return fmt.Errorf("%w: slot %d is a %v binding", gpgpu.ErrUnsupportedType, slot, kind)
	}
	return nil
}

// bindGroup creates the bind group for the current inputs. Every matrix
// slot must have been bound.
func (p *program) bindGroup() (hal.BindGroup, error) {
	entries := make([]gputypes.BindGroupEntry, 0, len(p.bindings))
	for _, b := range p.bindings {
		var res gputypes.BindingResource
		switch b.Kind {
		case shader.ResourceUniform:
			res = gputypes.BufferBinding{Buffer: p.buffers[int(b.Binding)].NativeHandle(), Size: gpgpu.UniformSize}
		case shader.ResourceTexture:
			in, ok := p.textures[int(b.Binding)]
			if !ok {
				return nil, fmt.Errorf("%w: matrix %q is not bound", gpgpu.ErrInvalidProgram, b.Name)
			}
			res = gputypes.TextureViewBinding{TextureView: in.view.NativeHandle()}
		case shader.ResourceSampler:
			res = gputypes.SamplerBinding{Sampler: p.sampler.NativeHandle()}
		}
		entries = append(entries, gputypes.BindGroupEntry{Binding: b.Binding, Resource: res})
	}
	bg, err := p.dev.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   "gpgpu_kernel_bind_group",
		Layout:  p.bindLayout,
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create bind group: %w", err)
	}
	return bg, nil
}

func (p *program) destroyInput(in *inputTexture) {
	if in.view != nil {
		p.dev.DestroyTextureView(in.view)
	}
	if in.texture != nil {
		p.dev.DestroyTexture(in.texture)
	}
}

func (p *program) Release() {
	if p.released {
		return
	}
	p.released = true
	for _, rp := range p.pipelines {
		p.dev.DestroyRenderPipeline(rp)
	}
	for _, in := range p.textures {
		p.destroyInput(in)
	}
	for _, buf := range p.buffers {
		p.dev.DestroyBuffer(buf)
	}
	if p.sampler != nil {
		p.dev.DestroySampler(p.sampler)
	}
	if p.pipeLayout != nil {
		p.dev.DestroyPipelineLayout(p.pipeLayout)
	}
	if p.bindLayout != nil {
		p.dev.DestroyBindGroupLayout(p.bindLayout)
	}
	if p.module != nil {
		p.dev.DestroyShaderModule(p.module)
	}
	p.pipelines, p.textures, p.buffers = nil, nil, nil
	p.sampler, p.pipeLayout, p.bindLayout, p.module = nil, nil, nil, nil
}
