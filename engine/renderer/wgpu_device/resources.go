package wgpu_device

import (
	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/handle"
	"github.com/Carmen-Shannon/oxy-render/engine/model"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer/texture"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/pkg/errors"
)

// gpuProgram is a program's compiled stages, layouts and CPU-side uniform block.
type gpuProgram struct {
	id     handle.ID
	name   string
	layout shader.UniformLayout
	block  []byte
	units  int

	vertexEntry   string
	fragmentEntry string

	vs, fs         *wgpu.ShaderModule
	uniformLayout  *wgpu.BindGroupLayout
	textureLayout  *wgpu.BindGroupLayout
	pipelineLayout *wgpu.PipelineLayout
	uniformGroup   *wgpu.BindGroup
	textureGroups  map[string]*wgpu.BindGroup
}

func (p *gpuProgram) releaseTextureGroups() {
	for k, g := range p.textureGroups {
		g.Release()
		delete(p.textureGroups, k)
	}
}

func (p *gpuProgram) release() {
	p.releaseTextureGroups()
	if p.uniformGroup != nil {
		p.uniformGroup.Release()
	}
	if p.pipelineLayout != nil {
		p.pipelineLayout.Release()
	}
	if p.textureLayout != nil {
		p.textureLayout.Release()
	}
	if p.uniformLayout != nil {
		p.uniformLayout.Release()
	}
	if p.fs != nil && p.fs != p.vs {
		p.fs.Release()
	}
	if p.vs != nil {
		p.vs.Release()
	}
}

// gpuGeometry is an uploaded vertex and index buffer pair.
type gpuGeometry struct {
	id          handle.ID
	vertex      *wgpu.Buffer
	index       *wgpu.Buffer
	vertexCount uint32
	indexCount  uint32
}

func (g *gpuGeometry) release() {
	if g.index != nil {
		g.index.Release()
	}
	if g.vertex != nil {
		g.vertex.Release()
	}
}

// gpuTexture is an uploaded 2D RGBA texture.
type gpuTexture struct {
	id      handle.ID
	texture *wgpu.Texture
	view    *wgpu.TextureView
}

func (t *gpuTexture) release() {
	if t.view != nil {
		t.view.Release()
	}
	if t.texture != nil {
		t.texture.Release()
	}
}

// compileProgram creates the shader modules, bind group layouts and uniform bind group of p.
// Caller must hold the mutex.
func (d *device) compileProgram(p shader.Program) (*gpuProgram, error) {
	gp := &gpuProgram{
		id:            p.ID(),
		name:          p.Name(),
		layout:        p.Layout(),
		units:         p.TextureUnits(),
		vertexEntry:   p.VertexEntry(),
		fragmentEntry: p.FragmentEntry(),
		textureGroups: make(map[string]*wgpu.BindGroup),
	}
	size := uniformBlockSize(gp.layout)
	gp.block = make([]byte, size)

	var err error
	gp.vs, err = d.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: gp.name + " Vertex",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: p.VertexSource(),
		},
	})
	if err != nil {
		return nil, errors.Wrapf(err, "compile vertex stage of %s", gp.name)
	}
	if p.FragmentSource() == p.VertexSource() {
		gp.fs = gp.vs
	} else {
		gp.fs, err = d.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
			Label: gp.name + " Fragment",
			WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
				Code: p.FragmentSource(),
			},
		})
		if err != nil {
			gp.release()
			return nil, errors.Wrapf(err, "compile fragment stage of %s", gp.name)
		}
	}

	uniformDesc := uniformLayoutDescriptor(gp.name, size)
	gp.uniformLayout, err = d.device.CreateBindGroupLayout(&uniformDesc)
	if err != nil {
		gp.release()
		return nil, errors.Wrapf(err, "create uniform layout for %s", gp.name)
	}
	layouts := []*wgpu.BindGroupLayout{gp.uniformLayout}
	if gp.units > 0 {
		textureDesc := textureLayoutDescriptor(gp.name, gp.units)
		gp.textureLayout, err = d.device.CreateBindGroupLayout(&textureDesc)
		if err != nil {
			gp.release()
			return nil, errors.Wrapf(err, "create texture layout for %s", gp.name)
		}
		layouts = append(layouts, gp.textureLayout)
	}

	gp.pipelineLayout, err = d.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            gp.name + " Pipeline Layout",
		BindGroupLayouts: layouts,
	})
	if err != nil {
		gp.release()
		return nil, errors.Wrapf(err, "create pipeline layout for %s", gp.name)
	}

	gp.uniformGroup, err = d.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  gp.name + " Uniforms",
		Layout: gp.uniformLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: d.ringBuffer, Offset: 0, Size: size},
		},
	})
	if err != nil {
		gp.release()
		return nil, errors.Wrapf(err, "create uniform bind group for %s", gp.name)
	}
	return gp, nil
}

// uploadGeometry creates and fills the vertex and index buffers of g. Caller must hold the mutex.
func (d *device) uploadGeometry(g model.GeometryBuffer) (*gpuGeometry, error) {
	vertices := g.Vertices()
	if len(vertices) == 0 {
		return nil, errors.Errorf("geometry %s has no vertices", g.Name())
	}
	gg := &gpuGeometry{id: g.ID(), vertexCount: uint32(len(vertices))}

	vertexData := model.MarshalVertices(vertices)
	buf, err := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            g.Name() + " Vertex Buffer",
		Size:             uint64(len(vertexData)),
		Usage:            wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "create vertex buffer for %s", g.Name())
	}
	d.queue.WriteBuffer(buf, 0, vertexData)
	gg.vertex = buf

	if indices := g.Indices(); len(indices) > 0 {
		indexData := model.MarshalIndices(indices)
		buf, err := d.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label:            g.Name() + " Index Buffer",
			Size:             uint64(len(indexData)),
			Usage:            wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
			MappedAtCreation: false,
		})
		if err != nil {
			gg.release()
			return nil, errors.Wrapf(err, "create index buffer for %s", g.Name())
		}
		d.queue.WriteBuffer(buf, 0, indexData)
		gg.index = buf
		gg.indexCount = uint32(len(indices))
	}
	return gg, nil
}

// uploadTexture creates a 2D RGBA texture from t's staging data. Caller must hold the mutex.
func (d *device) uploadTexture(t texture.Texture) (*gpuTexture, error) {
	staging := t.Staging()
	if staging == nil || !staging.Valid() {
		return nil, errors.Errorf("texture %s has no valid pixel data", t.Name())
	}
	return d.createTexture(t.ID(), t.Name(), *staging)
}

// createTexture uploads pixels into a new sampled texture. Caller must hold the mutex.
func (d *device) createTexture(id handle.ID, name string, staging common.TextureStagingData) (*gpuTexture, error) {
	size := wgpu.Extent3D{
		Width:              staging.Width,
		Height:             staging.Height,
		DepthOrArrayLayers: 1,
	}
	tex, err := d.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         name,
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatRGBA8UnormSrgb,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "create texture %s", name)
	}

	d.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		staging.Pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  staging.Width * 4,
			RowsPerImage: staging.Height,
		},
		&size,
	)

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, errors.Wrapf(err, "create view of texture %s", name)
	}
	return &gpuTexture{id: id, texture: tex, view: view}, nil
}

// createSampler builds the shared sampler, filling unset fields with repeat addressing and
// linear filtering. Caller must hold the mutex.
func (d *device) createSampler(data common.SamplerStagingData) (*wgpu.Sampler, error) {
	return d.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "Shared Sampler",
		AddressModeU:  common.Coalesce(data.AddressModeU, wgpu.AddressModeRepeat),
		AddressModeV:  common.Coalesce(data.AddressModeV, wgpu.AddressModeRepeat),
		AddressModeW:  common.Coalesce(data.AddressModeW, wgpu.AddressModeRepeat),
		MagFilter:     common.Coalesce(data.MagFilter, wgpu.FilterModeLinear),
		MinFilter:     common.Coalesce(data.MinFilter, wgpu.FilterModeLinear),
		MipmapFilter:  common.Coalesce(data.MipmapFilter, wgpu.MipmapFilterModeLinear),
		LodMinClamp:   data.LodMinClamp,
		LodMaxClamp:   common.Coalesce(data.LodMaxClamp, 32),
		MaxAnisotropy: common.Coalesce(data.MaxAnisotropy, 1),
	})
}

// textureGroup returns the bind group holding the textures currently bound to the first
// p.units units, creating it on first use. Unbound units sample the white fallback.
// Caller must hold the mutex.
func (d *device) textureGroup(p *gpuProgram) (*wgpu.BindGroup, error) {
	ids := make([]handle.ID, p.units)
	views := make([]*wgpu.TextureView, p.units)
	for i := 0; i < p.units; i++ {
		t := d.fallback
		if i < len(d.units) && d.units[i] != nil {
			t = d.units[i]
		}
		ids[i] = t.id
		views[i] = t.view
	}
	key := textureGroupKey(ids)
	if g, ok := p.textureGroups[key]; ok {
		return g, nil
	}

	entries := make([]wgpu.BindGroupEntry, 0, p.units+1)
	for i, view := range views {
		entries = append(entries, wgpu.BindGroupEntry{Binding: uint32(i), TextureView: view})
	}
	entries = append(entries, wgpu.BindGroupEntry{Binding: uint32(p.units), Sampler: d.sampler})
	g, err := d.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   p.name + " Textures",
		Layout:  p.textureLayout,
		Entries: entries,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "create texture bind group for %s", p.name)
	}
	p.textureGroups[key] = g
	return g, nil
}
