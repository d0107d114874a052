// Package wgpu_device implements renderer.Device on WebGPU, rendering into offscreen targets.
//
// Every program gets a uniform block at group 0 (see UniformBlockSource) and, when it samples
// textures, one texture per unit plus a shared sampler at group 1 (see TextureBlockSource).
// Vertex buffers follow model.Vertex at locations 0 to 3.
package wgpu_device

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/camera"
	"github.com/Carmen-Shannon/oxy-render/engine/handle"
	"github.com/Carmen-Shannon/oxy-render/engine/logger"
	"github.com/Carmen-Shannon/oxy-render/engine/model"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer/texture"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	depthFormat = wgpu.TextureFormatDepth24Plus

	defaultRingSize     = 4 << 20
	defaultRingAlign    = 256
	defaultTextureUnits = 16
)

// Device is a headless WebGPU implementation of renderer.Device.
type Device interface {
	renderer.Device

	// Screen returns the default target used when a camera has none.
	Screen() camera.RenderTarget

	// NewRenderTarget allocates an offscreen target cameras can render into.
	//
	// Parameters:
	//   - label: debug label of the attachments
	//   - width, height: size in pixels
	//
	// Returns:
	//   - camera.RenderTarget: the target
	//   - error: an error if the size is not positive or allocation fails
	NewRenderTarget(label string, width, height int) (camera.RenderTarget, error)

	// ReleaseRenderTarget frees a target created by NewRenderTarget.
	ReleaseRenderTarget(t camera.RenderTarget)

	// Resize reallocates the default target.
	//
	// Parameters:
	//   - width, height: the new size in pixels
	//
	// Returns:
	//   - error: an error if the size is not positive or allocation fails
	Resize(width, height int) error

	// Forget frees the GPU copy of the program, geometry or texture with the given ID. The next
	// bind uploads it again.
	Forget(id handle.ID)

	// Frames returns the number of submitted command buffers.
	Frames() uint64

	// Release frees every GPU resource. The device must not be used afterwards.
	Release()
}

type device struct {
	mu  *sync.Mutex
	log *zap.Logger

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	forceFallbackAdapter bool
	width, height        int
	colorFormat          wgpu.TextureFormat
	maxUnits             int
	ringSize             uint64
	samplerData          common.SamplerStagingData

	screen     *renderTarget
	sampler    *wgpu.Sampler
	fallback   *gpuTexture
	pipelines  *pipeline.Cache
	ring       *uniformRing
	ringBuffer *wgpu.Buffer

	programs   map[handle.ID]*gpuProgram
	geometries map[handle.ID]*gpuGeometry
	textures   map[handle.ID]*gpuTexture

	// Per-target state between BindRenderTarget and UnbindRenderTarget.
	target        *renderTarget
	encoder       *wgpu.CommandEncoder
	pass          *wgpu.RenderPassEncoder
	viewport      camera.Viewport
	clearColor    wgpu.Color
	state         material.ResolvedState
	program       *gpuProgram
	geometry      *gpuGeometry
	units         []*gpuTexture
	uniformOffset uint32

	frames uint64
}

var _ Device = &device{}

// New requests an adapter and device and allocates the default target, the uniform ring, the
// shared sampler and the fallback texture.
//
// Parameters:
//   - options: functional options to configure the device
//
// Returns:
//   - Device: the device
//   - error: an error if no adapter is available or any allocation fails
func New(options ...DeviceBuilderOption) (Device, error) {
	d := &device{
		mu:          &sync.Mutex{},
		log:         logger.Nop(),
		width:       1280,
		height:      720,
		colorFormat: wgpu.TextureFormatRGBA8Unorm,
		maxUnits:    defaultTextureUnits,
		ringSize:    defaultRingSize,
		clearColor:  wgpu.Color{R: 0, G: 0, B: 0, A: 1},
		state:       material.DefaultResolvedState,
		pipelines:   pipeline.NewCache(),
		programs:    make(map[handle.ID]*gpuProgram),
		geometries:  make(map[handle.ID]*gpuGeometry),
		textures:    make(map[handle.ID]*gpuTexture),
	}
	for _, opt := range options {
		opt(d)
	}
	d.units = make([]*gpuTexture, d.maxUnits)
	d.ring = newUniformRing(d.ringSize, defaultRingAlign)

	if err := d.init(); err != nil {
		d.Release()
		return nil, err
	}
	d.log.Info("device ready",
		zap.Int("width", d.width),
		zap.Int("height", d.height),
		zap.Int("texture_units", d.maxUnits),
		zap.Uint64("uniform_ring", d.ringSize),
	)
	return d, nil
}

func (d *device) init() error {
	d.instance = wgpu.CreateInstance(nil)

	a, err := d.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: d.forceFallbackAdapter,
	})
	if err != nil {
		return errors.Wrap(err, "request adapter")
	}
	d.adapter = a

	dev, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Render Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		return errors.Wrap(err, "request device")
	}
	d.device = dev
	d.queue = dev.GetQueue()

	d.ringBuffer, err = d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Uniform Ring",
		Size:  d.ringSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return errors.Wrap(err, "create uniform ring")
	}

	d.sampler, err = d.createSampler(d.samplerData)
	if err != nil {
		return errors.Wrap(err, "create sampler")
	}

	d.fallback, err = d.createTexture(handle.NextID(), "Fallback White", texture.Solid(255, 255, 255, 255))
	if err != nil {
		return err
	}

	d.screen, err = d.createRenderTarget("Screen", d.width, d.height)
	return err
}

func (d *device) ScreenSize() (int, int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.width, d.height
}

func (d *device) Screen() camera.RenderTarget {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.screen
}

func (d *device) NewRenderTarget(label string, width, height int) (camera.RenderTarget, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.createRenderTarget(label, width, height)
}

func (d *device) ReleaseRenderTarget(t camera.RenderTarget) {
	d.mu.Lock()
	defer d.mu.Unlock()
	rt, ok := t.(*renderTarget)
	if !ok || rt == d.screen || rt == d.target {
		return
	}
	rt.release()
}

func (d *device) Resize(width, height int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.target == d.screen && d.encoder != nil {
		return errors.New("cannot resize the screen while it is bound")
	}
	screen, err := d.createRenderTarget("Screen", width, height)
	if err != nil {
		return err
	}
	if d.screen != nil {
		d.screen.release()
	}
	d.screen = screen
	d.width, d.height = width, height
	d.log.Debug("resized screen", zap.Int("width", width), zap.Int("height", height))
	return nil
}

func (d *device) BindRenderTarget(t camera.RenderTarget) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	rt := d.screen
	if t != nil {
		var ok bool
		rt, ok = t.(*renderTarget)
		if !ok {
			return errors.Errorf("render target %d was not created by this device", t.ID())
		}
	}
	if d.encoder != nil {
		if err := d.submit(); err != nil {
			return err
		}
	}

	encoder, err := d.device.CreateCommandEncoder(nil)
	if err != nil {
		return errors.Wrap(err, "create command encoder")
	}
	d.encoder = encoder
	d.target = rt
	d.viewport = camera.Viewport{Width: rt.width, Height: rt.height}
	return nil
}

func (d *device) UnbindRenderTarget() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.encoder == nil {
		return nil
	}
	return d.submit()
}

// submit ends the active pass, submits the encoder and resets per-target state.
// Caller must hold the mutex.
func (d *device) submit() error {
	d.endPass()
	encoder := d.encoder
	d.encoder = nil
	d.target = nil
	d.program = nil
	d.geometry = nil
	clear(d.units)

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		encoder.Release()
		d.ring.reset()
		return errors.Wrap(err, "finish command encoder")
	}
	d.queue.Submit(commandBuffer)
	commandBuffer.Release()
	encoder.Release()
	d.ring.reset()
	d.frames++
	return nil
}

func (d *device) SetViewport(vp camera.Viewport) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.viewport = vp
	if d.pass != nil {
		d.applyViewport()
	}
}

// applyViewport sets the viewport on the active pass, clamped to the bound target.
// Caller must hold the mutex.
func (d *device) applyViewport() {
	x, y, w, h := clampViewport(d.viewport, d.target.width, d.target.height)
	d.pass.SetViewport(x, y, w, h, 0, 1)
}

// clampViewport intersects vp with a width x height target.
func clampViewport(vp camera.Viewport, width, height int) (x, y, w, h float32) {
	x0 := min(max(vp.X, 0), width)
	y0 := min(max(vp.Y, 0), height)
	x1 := min(max(vp.X+vp.Width, x0), width)
	y1 := min(max(vp.Y+vp.Height, y0), height)
	return float32(x0), float32(y0), float32(x1 - x0), float32(y1 - y0)
}

func (d *device) SetClearColor(c mgl32.Vec4) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.clearColor = wgpu.Color{R: float64(c[0]), G: float64(c[1]), B: float64(c[2]), A: float64(c[3])}
}

// Clear starts a new pass whose load operations clear the masked attachments. The depth
// attachment has no stencil aspect, so ClearStencilBuffer has no effect.
func (d *device) Clear(mask renderer.ClearMask) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.encoder == nil {
		return errors.New("clear without a bound render target")
	}
	d.endPass()
	d.beginPass(mask)
	return nil
}

// beginPass opens a render pass on the bound target, clearing the attachments in mask and
// loading the rest. Caller must hold the mutex.
func (d *device) beginPass(mask renderer.ClearMask) {
	colorLoad, depthLoad := passLoadOps(mask)
	d.pass = d.encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       d.target.colorView,
				LoadOp:     colorLoad,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: d.clearColor,
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            d.target.depthView,
			DepthLoadOp:     depthLoad,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: 1.0,
		},
	})
	d.applyViewport()
}

// passLoadOps returns the colour and depth load operations for a clear mask.
func passLoadOps(mask renderer.ClearMask) (color, depth wgpu.LoadOp) {
	color, depth = wgpu.LoadOpLoad, wgpu.LoadOpLoad
	if mask&renderer.ClearColorBuffer != 0 {
		color = wgpu.LoadOpClear
	}
	if mask&renderer.ClearDepthBuffer != 0 {
		depth = wgpu.LoadOpClear
	}
	return color, depth
}

// endPass closes the active pass, if any. Caller must hold the mutex.
func (d *device) endPass() {
	if d.pass == nil {
		return
	}
	d.pass.End()
	d.pass = nil
}

func (d *device) CommitState(s material.ResolvedState) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state = s
}

func (d *device) BindProgram(p shader.Program) error {
	if err := p.Status(); err != nil {
		return errors.Wrapf(err, "program %s", p.Name())
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	gp, ok := d.programs[p.ID()]
	if !ok {
		var err error
		gp, err = d.compileProgram(p)
		if err != nil {
			return err
		}
		d.programs[p.ID()] = gp
		d.log.Debug("compiled program", zap.String("program", gp.name), zap.Uint64("uniform_bytes", uint64(len(gp.block))))
	}
	d.program = gp
	return nil
}

func (d *device) BindGeometry(g model.GeometryBuffer) error {
	if err := g.Status(); err != nil {
		return errors.Wrapf(err, "geometry %s", g.Name())
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	gg, ok := d.geometries[g.ID()]
	if !ok {
		var err error
		gg, err = d.uploadGeometry(g)
		if err != nil {
			return err
		}
		d.geometries[g.ID()] = gg
	}
	d.geometry = gg
	return nil
}

// UnbindGeometry keeps the buffer current. Vertex and index buffers are attached per draw.
func (d *device) UnbindGeometry() {}

func (d *device) BindTexture(t texture.Texture, unit int) error {
	if !t.Alive() {
		return errors.Errorf("texture %s was released", t.Name())
	}
	if err := t.Status(); err != nil {
		return errors.Wrapf(err, "texture %s", t.Name())
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if unit < 0 || unit >= d.maxUnits {
		return errors.Errorf("texture unit %d out of range [0, %d)", unit, d.maxUnits)
	}

	gt, ok := d.textures[t.ID()]
	if !ok {
		var err error
		gt, err = d.uploadTexture(t)
		if err != nil {
			return err
		}
		d.textures[t.ID()] = gt
	}
	d.units[unit] = gt
	return nil
}

func (d *device) SetUniform(name string, value any) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.program == nil {
		return errors.Errorf("set uniform %s without a bound program", name)
	}
	slot, ok := d.program.layout.Slot(name)
	if !ok {
		return nil
	}
	return shader.Encode(d.program.block, slot, value)
}

func (d *device) CommitUniforms() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.program == nil {
		return errors.New("commit uniforms without a bound program")
	}
	offset, err := d.ring.alloc(uint64(len(d.program.block)))
	if err != nil {
		return err
	}
	d.queue.WriteBuffer(d.ringBuffer, offset, d.program.block)
	d.uniformOffset = uint32(offset)
	return nil
}

func (d *device) Draw() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch {
	case d.encoder == nil:
		return errors.New("draw without a bound render target")
	case d.program == nil:
		return errors.New("draw without a bound program")
	case d.geometry == nil:
		return errors.New("draw without bound geometry")
	}
	if d.pass == nil {
		d.beginPass(0)
	}

	p, err := d.renderPipeline(d.program)
	if err != nil {
		return err
	}
	d.pass.SetPipeline(p.Pipeline())
	d.pass.SetBindGroup(UniformGroup, d.program.uniformGroup, []uint32{d.uniformOffset})
	if d.program.units > 0 {
		group, err := d.textureGroup(d.program)
		if err != nil {
			return err
		}
		d.pass.SetBindGroup(TextureGroup, group, nil)
	}

	g := d.geometry
	d.pass.SetVertexBuffer(0, g.vertex, 0, wgpu.WholeSize)
	if g.index != nil {
		d.pass.SetIndexBuffer(g.index, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
		d.pass.DrawIndexed(g.indexCount, 1, 0, 0, 0)
	} else {
		d.pass.Draw(g.vertexCount, 1, 0, 0)
	}
	return nil
}

// renderPipeline returns the pipeline for p under the committed state and bound target format,
// creating it on first use. Caller must hold the mutex.
func (d *device) renderPipeline(p *gpuProgram) (pipeline.Pipeline, error) {
	key := pipeline.Key{Program: p.id, State: d.state, Format: d.target.format}
	pl, created, err := d.pipelines.GetOrCreate(key, func(k pipeline.Key) (pipeline.Pipeline, error) {
		pl := pipeline.FromState(k)
		if err := d.createRenderPipeline(p, pl); err != nil {
			return nil, err
		}
		return pl, nil
	})
	if err != nil {
		return nil, err
	}
	if created {
		d.log.Debug("created pipeline", zap.Stringer("key", key))
	}
	return pl, nil
}

// createRenderPipeline builds the WebGPU pipeline described by pl. Caller must hold the mutex.
func (d *device) createRenderPipeline(p *gpuProgram, pl pipeline.Pipeline) error {
	target := wgpu.ColorTargetState{
		Format:    pl.Key().Format,
		WriteMask: pl.WriteMask(),
	}
	if pl.BlendEnabled() {
		target.Blend = pl.BlendState()
	}

	created, err := d.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  p.name + " Render Pipeline",
		Layout: p.pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     p.vs,
			EntryPoint: p.vertexEntry,
			Buffers:    []wgpu.VertexBufferLayout{vertexBufferLayout()},
		},
		Fragment: &wgpu.FragmentState{
			Module:     p.fs,
			EntryPoint: p.fragmentEntry,
			Targets:    []wgpu.ColorTargetState{target},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  pl.Topology(),
			FrontFace: pl.FrontFace(),
			CullMode:  pl.CullMode(),
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:              depthFormat,
			DepthWriteEnabled:   pl.DepthWriteEnabled(),
			DepthCompare:        pl.DepthCompare(),
			DepthBias:           pl.DepthBias(),
			DepthBiasSlopeScale: pl.DepthBiasSlopeScale(),
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		},
	})
	if err != nil {
		return errors.Wrapf(err, "create pipeline %s", pl.Key())
	}
	pl.SetRenderPipeline(created)
	return nil
}

func (d *device) Forget(id handle.ID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if p, ok := d.programs[id]; ok && p != d.program {
		p.release()
		delete(d.programs, id)
	}
	if g, ok := d.geometries[id]; ok && g != d.geometry {
		g.release()
		delete(d.geometries, id)
	}
	if t, ok := d.textures[id]; ok {
		for i, u := range d.units {
			if u == t {
				d.units[i] = nil
			}
		}
		for _, p := range d.programs {
			p.releaseTextureGroups()
		}
		t.release()
		delete(d.textures, id)
	}
}

func (d *device) Frames() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.frames
}

func (d *device) Release() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.endPass()
	if d.encoder != nil {
		d.encoder.Release()
		d.encoder = nil
	}
	d.pipelines.Release()
	for id, p := range d.programs {
		p.release()
		delete(d.programs, id)
	}
	for id, g := range d.geometries {
		g.release()
		delete(d.geometries, id)
	}
	for id, t := range d.textures {
		t.release()
		delete(d.textures, id)
	}
	if d.fallback != nil {
		d.fallback.release()
		d.fallback = nil
	}
	if d.screen != nil {
		d.screen.release()
		d.screen = nil
	}
	if d.sampler != nil {
		d.sampler.Release()
		d.sampler = nil
	}
	if d.ringBuffer != nil {
		d.ringBuffer.Release()
		d.ringBuffer = nil
	}
	if d.queue != nil {
		d.queue.Release()
		d.queue = nil
	}
	if d.device != nil {
		d.device.Release()
		d.device = nil
	}
	if d.adapter != nil {
		d.adapter.Release()
		d.adapter = nil
	}
	if d.instance != nil {
		d.instance.Release()
		d.instance = nil
	}
}
