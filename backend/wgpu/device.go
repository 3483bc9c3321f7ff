//go:build !nogpu

package wgpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/gpuviz/dtx"
	"github.com/gpuviz/dtx/render"
	"github.com/gpuviz/dtx/shader"
)

// samplerBindings maps generated sampler names to their group(1)
// binding indices in the WGSL dialect.
var samplerBindings = map[string]uint32{
	shader.SamplerObjectAttributes:       0,
	shader.SamplerObjectDecodeMatrices:   1,
	shader.SamplerObjectInstanceMatrices: 2,
	shader.SamplerVertexCoords:           3,
	shader.SamplerPolygonIndices:         4,
	shader.SamplerPortionIDs:             5,
	shader.SamplerObjectOffsets:          6,
}

const numSamplerBindings = 7

// wgpuTexture pairs a HAL texture with its view and format.
type wgpuTexture struct {
	texture hal.Texture
	view    hal.TextureView
	format  gputypes.TextureFormat
}

// wgpuProgram is one compiled pipeline plus the staging state for its
// packed uniform block.
type wgpuProgram struct {
	module   hal.ShaderModule
	pipeline hal.RenderPipeline

	uniformLayout hal.BindGroupLayout
	textureLayout hal.BindGroupLayout
	pipeLayout    hal.PipelineLayout

	uniformBuf   hal.Buffer
	uniformBind  hal.BindGroup
	block        []byte
	offsets      map[string]int
	uniformDirty bool
}

// Device implements render.Device over a shared HAL device and queue.
//
// WebGPU has no free-standing draw call: the host begins a render pass
// each frame and hands the encoder to BeginPass; DrawTriangles records
// into it. Uniform writes stage into a CPU block and flush once per
// draw.
type Device struct {
	device hal.Device
	queue  hal.Queue

	// colorFormat is the render target format pipelines are built for.
	colorFormat gputypes.TextureFormat

	nextProgram render.ProgramID
	nextTexture render.TextureID
	programs    map[render.ProgramID]*wgpuProgram
	textures    map[render.TextureID]*wgpuTexture

	current *wgpuProgram
	pass    hal.RenderPassEncoder

	bound       [numSamplerBindings]render.TextureID
	boundDirty  bool
	textureBind hal.BindGroup
	dummies     map[gputypes.TextureFormat]render.TextureID
}

// NewDevice creates a device from a host gpucontext provider. Pipelines
// target the provider's surface format. The provider's concrete type
// must expose the HalDevice()/HalQueue() handle-sharing convention.
func NewDevice(provider render.DeviceHandle) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, fmt.Errorf("wgpu: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("wgpu: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("wgpu: provider HalQueue is not hal.Queue")
	}
	return NewDeviceFromHAL(device, queue, provider.SurfaceFormat()), nil
}

// NewDeviceFromHAL creates a device over explicit HAL handles.
func NewDeviceFromHAL(device hal.Device, queue hal.Queue, colorFormat gputypes.TextureFormat) *Device {
	return &Device{
		device:      device,
		queue:       queue,
		colorFormat: colorFormat,
		programs:    make(map[render.ProgramID]*wgpuProgram),
		textures:    make(map[render.TextureID]*wgpuTexture),
	}
}

// Destroy releases every program and texture the device still tracks.
// The HAL device and queue stay with the host that shared them.
func (d *Device) Destroy() {
	for id := range d.programs {
		d.DeleteProgram(id)
	}
	for id := range d.textures {
		d.DeleteTexture(id)
	}
	d.dummies = nil
	d.textureBind = nil
	d.pass = nil
}

// BeginPass attaches the frame's render pass encoder. Draws before
// BeginPass or after EndPass are dropped with a warning.
func (d *Device) BeginPass(pass hal.RenderPassEncoder) {
	d.pass = pass
	d.boundDirty = true
}

// EndPass detaches the encoder. The host ends and submits the pass.
func (d *Device) EndPass() {
	d.pass = nil
}

// SourceDialect reports WGSL.
func (d *Device) SourceDialect() shader.Dialect { return shader.WGSL }

// CreateProgram translates generated WGSL to SPIR-V, builds the bind
// group layouts and render pipeline, and allocates the uniform staging
// buffer sized by the block layout that came with the source.
func (d *Device) CreateProgram(label string, src *shader.ProgramSource) (render.ProgramID, error) {
	spirvBytes, err := naga.Compile(src.Module)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: naga: %v", render.ErrProgramCompile, label, err)
	}
	spirv := make([]uint32, len(spirvBytes)/4)
	for i := range spirv {
		spirv[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}

	module, err := d.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  label,
		Source: hal.ShaderSource{SPIRV: spirv},
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %s: shader module: %v", render.ErrProgramCompile, label, err)
	}

	p := &wgpuProgram{
		module:  module,
		block:   make([]byte, src.BlockSize),
		offsets: make(map[string]int, len(src.Uniforms)),
	}
	for _, f := range src.Uniforms {
		p.offsets[f.Name] = f.Offset
	}

	cleanup := func() { d.destroyProgram(p) }

	p.uniformLayout, err = d.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: label + "_uniforms",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Buffer: &gputypes.BufferBindingLayout{
					Type:           gputypes.BufferBindingTypeUniform,
					MinBindingSize: uint64(src.BlockSize),
				},
			},
		},
	})
	if err != nil {
		cleanup()
		return 0, fmt.Errorf("%w: %s: uniform layout: %v", render.ErrProgramCompile, label, err)
	}

	// Layout entries the shader does not reference are permitted; the
	// offsets binding is declared unconditionally and fed a dummy
	// texture when the feature is off.
	texEntries := make([]gputypes.BindGroupLayoutEntry, 0, numSamplerBindings)
	for name, binding := range samplerBindings {
		sampleType := gputypes.TextureSampleTypeUint
		if name == shader.SamplerObjectDecodeMatrices ||
			name == shader.SamplerObjectInstanceMatrices ||
			name == shader.SamplerObjectOffsets {
			sampleType = gputypes.TextureSampleTypeUnfilterableFloat
		}
		texEntries = append(texEntries, gputypes.BindGroupLayoutEntry{
			Binding:    binding,
			Visibility: gputypes.ShaderStageVertex,
			Texture: &gputypes.TextureBindingLayout{
				SampleType:    sampleType,
				ViewDimension: gputypes.TextureViewDimension2D,
			},
		})
	}
	p.textureLayout, err = d.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   label + "_textures",
		Entries: texEntries,
	})
	if err != nil {
		cleanup()
		return 0, fmt.Errorf("%w: %s: texture layout: %v", render.ErrProgramCompile, label, err)
	}

	p.pipeLayout, err = d.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            label + "_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.uniformLayout, p.textureLayout},
	})
	if err != nil {
		cleanup()
		return 0, fmt.Errorf("%w: %s: pipeline layout: %v", render.ErrProgramCompile, label, err)
	}

	premulBlend := gputypes.BlendStatePremultiplied()
	p.pipeline, err = d.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  label,
		Layout: p.pipeLayout,
		Vertex: hal.VertexState{
			Module:     p.module,
			EntryPoint: "vs_main",
		},
		Fragment: &hal.FragmentState{
			Module:     p.module,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    d.colorFormat,
					Blend:     &premulBlend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		cleanup()
		return 0, fmt.Errorf("%w: %s: pipeline: %v", render.ErrProgramCompile, label, err)
	}

	p.uniformBuf, err = d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label + "_uniforms",
		Size:  uint64(src.BlockSize),
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		cleanup()
		return 0, fmt.Errorf("%w: %s: uniform buffer: %v", render.ErrProgramCompile, label, err)
	}

	p.uniformBind, err = d.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  label + "_uniform_bind",
		Layout: p.uniformLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: p.uniformBuf.NativeHandle(), Offset: 0, Size: uint64(src.BlockSize),
			}},
		},
	})
	if err != nil {
		cleanup()
		return 0, fmt.Errorf("%w: %s: uniform bind group: %v", render.ErrProgramCompile, label, err)
	}

	d.nextProgram++
	d.programs[d.nextProgram] = p
	return d.nextProgram, nil
}

func (d *Device) destroyProgram(p *wgpuProgram) {
	if p.uniformBuf != nil {
		d.device.DestroyBuffer(p.uniformBuf)
	}
	// Pipelines, layouts, and modules are released by the HAL when the
	// device drops their last reference.
	*p = wgpuProgram{}
}

// DeleteProgram releases a program; the zero ID is ignored.
func (d *Device) DeleteProgram(id render.ProgramID) {
	p, ok := d.programs[id]
	if !ok {
		return
	}
	if d.current == p {
		d.current = nil
	}
	d.destroyProgram(p)
	delete(d.programs, id)
}

// UseProgram selects the program whose pipeline and uniform block the
// next draws use.
func (d *Device) UseProgram(id render.ProgramID) {
	p, ok := d.programs[id]
	if !ok {
		return
	}
	d.current = p
	d.boundDirty = true
}

// CreateTexture uploads one layer data texture.
func (d *Device) CreateTexture(desc *render.TextureDescriptor) (render.TextureID, error) {
	tex, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label: desc.Label,
		Size: hal.Extent3D{
			Width:              uint32(desc.Width),
			Height:             uint32(desc.Height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        desc.Format,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return 0, fmt.Errorf("wgpu: create texture %s: %w", desc.Label, err)
	}

	if len(desc.Data) > 0 {
		bpt, ok := bytesPerTexel(desc.Format)
		if !ok {
			d.device.DestroyTexture(tex)
			return 0, fmt.Errorf("wgpu: unsupported texture format %v", desc.Format)
		}
		d.queue.WriteTexture(
			&hal.ImageCopyTexture{
				Texture:  tex,
				MipLevel: 0,
				Origin:   hal.Origin3D{},
				Aspect:   gputypes.TextureAspectAll,
			},
			desc.Data,
			&hal.ImageDataLayout{
				Offset:       0,
				BytesPerRow:  uint32(desc.Width * bpt),
				RowsPerImage: uint32(desc.Height),
			},
			&hal.Extent3D{
				Width:              uint32(desc.Width),
				Height:             uint32(desc.Height),
				DepthOrArrayLayers: 1,
			},
		)
	}

	view, err := d.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label: desc.Label + "_view",
	})
	if err != nil {
		d.device.DestroyTexture(tex)
		return 0, fmt.Errorf("wgpu: create texture view %s: %w", desc.Label, err)
	}

	d.nextTexture++
	d.textures[d.nextTexture] = &wgpuTexture{texture: tex, view: view, format: desc.Format}
	return d.nextTexture, nil
}

// DeleteTexture releases a texture; the zero ID is ignored.
func (d *Device) DeleteTexture(id render.TextureID) {
	t, ok := d.textures[id]
	if !ok {
		return
	}
	d.device.DestroyTexture(t.texture)
	delete(d.textures, id)
	for i, bound := range d.bound {
		if bound == id {
			d.bound[i] = 0
			d.boundDirty = true
		}
	}
}

// BindTexture points a sampler at a texture. The unit argument is a GL
// concept; WGSL bindings are resolved by name.
func (d *Device) BindTexture(_ int, name string, tex render.TextureID) {
	binding, ok := samplerBindings[name]
	if !ok {
		return
	}
	if d.bound[binding] != tex {
		d.bound[binding] = tex
		d.boundDirty = true
	}
}

func (d *Device) setUniform(name string, data []byte) {
	if d.current == nil {
		return
	}
	off, ok := d.current.offsets[name]
	if !ok {
		return
	}
	copy(d.current.block[off:], data)
	d.current.uniformDirty = true
}

func (d *Device) Uniform1i(name string, v int32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(v))
	d.setUniform(name, b[:])
}

func (d *Device) Uniform1f(name string, v float32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], math.Float32bits(v))
	d.setUniform(name, b[:])
}

func (d *Device) Uniform3f(name string, x, y, z float32) {
	var b [12]byte
	binary.LittleEndian.PutUint32(b[0:], math.Float32bits(x))
	binary.LittleEndian.PutUint32(b[4:], math.Float32bits(y))
	binary.LittleEndian.PutUint32(b[8:], math.Float32bits(z))
	d.setUniform(name, b[:])
}

// UniformBool writes 1.0 or 0.0; the block layout stores flags as f32.
func (d *Device) UniformBool(name string, v bool) {
	if v {
		d.Uniform1f(name, 1)
	} else {
		d.Uniform1f(name, 0)
	}
}

func (d *Device) UniformMatrix4fv(name string, m [16]float32) {
	var b [64]byte
	for i, v := range m {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(v))
	}
	d.setUniform(name, b[:])
}

// DrawTriangles flushes staged uniform and binding state and records a
// draw into the active render pass.
func (d *Device) DrawTriangles(first, count int) {
	if d.pass == nil || d.current == nil {
		dtx.Logger().Warn("draw dropped: no active render pass or program")
		return
	}
	p := d.current

	if p.uniformDirty {
		d.queue.WriteBuffer(p.uniformBuf, 0, p.block)
		p.uniformDirty = false
	}
	if d.boundDirty {
		bind, err := d.buildTextureBindGroup(p)
		if err != nil {
			dtx.Logger().Warn("draw dropped: texture bind group", "err", err)
			return
		}
		d.textureBind = bind
		d.boundDirty = false
	}

	d.pass.SetPipeline(p.pipeline)
	d.pass.SetBindGroup(0, p.uniformBind, nil)
	d.pass.SetBindGroup(1, d.textureBind, nil)
	d.pass.Draw(uint32(count), 1, uint32(first), 0)
}

// buildTextureBindGroup creates the group(1) bind group for the current
// bindings, substituting the dummy texture for unbound slots.
func (d *Device) buildTextureBindGroup(p *wgpuProgram) (hal.BindGroup, error) {
	entries := make([]gputypes.BindGroupEntry, 0, numSamplerBindings)
	for binding := uint32(0); binding < numSamplerBindings; binding++ {
		id := d.bound[binding]
		if id == 0 {
			var err error
			if id, err = d.ensureDummy(binding); err != nil {
				return nil, err
			}
		}
		t, ok := d.textures[id]
		if !ok {
			return nil, fmt.Errorf("wgpu: binding %d references a dead texture", binding)
		}
		entries = append(entries, gputypes.BindGroupEntry{
			Binding:  binding,
			Resource: gputypes.TextureViewBinding{TextureView: t.view.NativeHandle()},
		})
	}
	return d.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   "dtx_layer_textures",
		Layout:  p.textureLayout,
		Entries: entries,
	})
}

// ensureDummy lazily creates a 1x1 placeholder texture matching the
// slot's sample type, so unbound optional slots (offsets, empty
// buckets) still satisfy the bind group layout.
func (d *Device) ensureDummy(binding uint32) (render.TextureID, error) {
	format := gputypes.TextureFormatRGBA32Uint
	if binding == samplerBindings[shader.SamplerObjectDecodeMatrices] ||
		binding == samplerBindings[shader.SamplerObjectInstanceMatrices] ||
		binding == samplerBindings[shader.SamplerObjectOffsets] {
		format = gputypes.TextureFormatRGBA32Float
	} else if binding == samplerBindings[shader.SamplerPortionIDs] {
		format = gputypes.TextureFormatR16Uint
	}
	if id, ok := d.dummies[format]; ok {
		return id, nil
	}
	bpt, _ := bytesPerTexel(format)
	id, err := d.CreateTexture(&render.TextureDescriptor{
		Label:  "dtx_dummy",
		Width:  1,
		Height: 1,
		Format: format,
		Data:   make([]byte, bpt),
	})
	if err != nil {
		return 0, err
	}
	if d.dummies == nil {
		d.dummies = make(map[gputypes.TextureFormat]render.TextureID)
	}
	d.dummies[format] = id
	return id, nil
}

// bytesPerTexel returns the packed byte size of one texel.
func bytesPerTexel(f gputypes.TextureFormat) (int, bool) {
	switch f {
	case gputypes.TextureFormatRGBA32Uint, gputypes.TextureFormatRGBA32Float:
		return 16, true
	case gputypes.TextureFormatRGBA16Uint:
		return 8, true
	case gputypes.TextureFormatRGBA8Uint:
		return 4, true
	case gputypes.TextureFormatR16Uint:
		return 2, true
	default:
		return 0, false
	}
}
