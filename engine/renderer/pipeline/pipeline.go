package pipeline

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-render/engine/handle"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer/material"
	"github.com/cogentcore/webgpu/wgpu"
)

// Key identifies one pipeline permutation: a program drawn with a resolved fixed-function state
// into a colour target format.
type Key struct {
	Program handle.ID
	State   material.ResolvedState
	Format  wgpu.TextureFormat
}

func (k Key) String() string {
	s := k.State
	return fmt.Sprintf("program %d %s depth-write=%t bias=%d/%g %s %s %s %s color-write=%t",
		k.Program, s.DepthTest, s.DepthWrite, s.DepthBias.Constant, s.DepthBias.SlopeScale,
		s.Blend, s.Cull, s.Winding, s.Topology, s.ColorWrite)
}

// pipeline is the implementation of the Pipeline interface.
// It holds the underlying WebGPU render pipeline and the fixed-function settings it was created with.
type pipeline struct {
	key Key

	renderPipeline *wgpu.RenderPipeline

	depthWriteEnabled   bool
	depthCompare        wgpu.CompareFunction
	depthBias           int32
	depthBiasSlopeScale float32
	blendEnabled        bool
	cullMode            wgpu.CullMode
	topology            wgpu.PrimitiveTopology
	frontFace           wgpu.FrontFace
	writeMask           wgpu.ColorWriteMask
	blendState          *wgpu.BlendState
}

// Pipeline describes a render pipeline permutation. The settings are fixed at construction; the GPU
// object is attached by the device once created.
type Pipeline interface {
	// Key returns the permutation this pipeline was built for.
	//
	// Returns:
	//   - Key: the pipeline key
	Key() Key

	// Pipeline returns the underlying render pipeline, or nil before the device created it.
	//
	// Returns:
	//   - *wgpu.RenderPipeline: the GPU pipeline
	Pipeline() *wgpu.RenderPipeline

	// DepthWriteEnabled returns whether depth writing is enabled for this pipeline.
	//
	// Returns:
	//   - bool: true if depth writing is enabled, false otherwise
	DepthWriteEnabled() bool

	// DepthCompare returns the depth comparison function.
	//
	// Returns:
	//   - wgpu.CompareFunction: the comparison used by the depth test
	DepthCompare() wgpu.CompareFunction

	// DepthBias returns the depth bias value configured for this pipeline.
	//
	// Returns:
	//   - int32: the depth bias value for this pipeline
	DepthBias() int32

	// DepthBiasSlopeScale returns the depth bias slope scale configured for this pipeline.
	//
	// Returns:
	//   - float32: the depth bias slope scale for this pipeline
	DepthBiasSlopeScale() float32

	// BlendEnabled returns whether blending is enabled for this pipeline.
	//
	// Returns:
	//   - bool: true if blending is enabled, false otherwise
	BlendEnabled() bool

	// CullMode returns the cull mode configured for this pipeline.
	//
	// Returns:
	//   - wgpu.CullMode: the cull mode for this pipeline
	CullMode() wgpu.CullMode

	// Topology returns the primitive topology configured for this pipeline.
	//
	// Returns:
	//   - wgpu.PrimitiveTopology: the primitive topology for this pipeline
	Topology() wgpu.PrimitiveTopology

	// FrontFace returns the front face winding order configured for this pipeline.
	//
	// Returns:
	//   - wgpu.FrontFace: the front face winding order for this pipeline
	FrontFace() wgpu.FrontFace

	// WriteMask returns the color write mask configured for this pipeline.
	//
	// Returns:
	//   - wgpu.ColorWriteMask: the color write mask for this pipeline
	WriteMask() wgpu.ColorWriteMask

	// BlendState returns the blend state configured for this pipeline.
	//
	// Returns:
	//   - *wgpu.BlendState: the blend state, or nil if blending is not enabled
	BlendState() *wgpu.BlendState

	// SetRenderPipeline attaches the GPU pipeline.
	//
	// Parameters:
	//   - p: the WebGPU render pipeline to set
	SetRenderPipeline(p *wgpu.RenderPipeline)

	// Release frees the GPU pipeline.
	Release()
}

var _ Pipeline = &pipeline{}

// NewPipeline creates a pipeline description with depth test Less, depth write on, back-face
// culling and no blending, then applies opts.
//
// Parameters:
//   - key: the permutation key
//   - opts: a variadic list of PipelineBuilderOption functions to configure the pipeline
//
// Returns:
//   - Pipeline: a new Pipeline instance
func NewPipeline(key Key, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		key:               key,
		depthWriteEnabled: true,
		depthCompare:      wgpu.CompareFunctionLess,
		cullMode:          wgpu.CullModeBack,
		topology:          wgpu.PrimitiveTopologyTriangleList,
		frontFace:         wgpu.FrontFaceCCW,
		writeMask:         wgpu.ColorWriteMaskAll,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// FromState creates the pipeline description for key, translating its resolved state.
//
// Parameters:
//   - key: the permutation key
//
// Returns:
//   - Pipeline: the pipeline description
func FromState(key Key) Pipeline {
	s := key.State
	opts := []PipelineBuilderOption{
		WithDepthWriteEnabled(s.DepthWrite),
		WithDepthCompare(CompareFunction(s.DepthTest)),
		WithCullMode(CullMode(s.Cull)),
		WithDepthBias(s.DepthBias.Constant, s.DepthBias.SlopeScale),
		WithFrontFace(FrontFace(s.Winding)),
		WithTopology(PrimitiveTopology(s.Topology)),
		WithWriteMask(WriteMask(s.ColorWrite)),
	}
	if bs := BlendState(s.Blend); bs != nil {
		opts = append(opts, WithBlendEnabled(true), WithBlendState(bs))
	}
	return NewPipeline(key, opts...)
}

func (p *pipeline) Key() Key {
	return p.key
}

func (p *pipeline) Pipeline() *wgpu.RenderPipeline {
	return p.renderPipeline
}

func (p *pipeline) DepthWriteEnabled() bool {
	return p.depthWriteEnabled
}

func (p *pipeline) DepthCompare() wgpu.CompareFunction {
	return p.depthCompare
}

func (p *pipeline) DepthBias() int32 {
	return p.depthBias
}

func (p *pipeline) DepthBiasSlopeScale() float32 {
	return p.depthBiasSlopeScale
}

func (p *pipeline) BlendEnabled() bool {
	return p.blendEnabled
}

func (p *pipeline) CullMode() wgpu.CullMode {
	return p.cullMode
}

func (p *pipeline) Topology() wgpu.PrimitiveTopology {
	return p.topology
}

func (p *pipeline) FrontFace() wgpu.FrontFace {
	return p.frontFace
}

func (p *pipeline) WriteMask() wgpu.ColorWriteMask {
	return p.writeMask
}

func (p *pipeline) BlendState() *wgpu.BlendState {
	return p.blendState
}

func (p *pipeline) SetRenderPipeline(rp *wgpu.RenderPipeline) {
	p.renderPipeline = rp
}

func (p *pipeline) Release() {
	if p.renderPipeline != nil {
		p.renderPipeline.Release()
		p.renderPipeline = nil
	}
}

// CompareFunction maps a depth function to its WebGPU comparison.
func CompareFunction(fn material.DepthFunc) wgpu.CompareFunction {
	switch fn {
	case material.DepthLessEqual:
		return wgpu.CompareFunctionLessEqual
	case material.DepthEqual:
		return wgpu.CompareFunctionEqual
	case material.DepthGreater:
		return wgpu.CompareFunctionGreater
	case material.DepthGreaterEqual:
		return wgpu.CompareFunctionGreaterEqual
	case material.DepthNotEqual:
		return wgpu.CompareFunctionNotEqual
	case material.DepthAlways:
		return wgpu.CompareFunctionAlways
	case material.DepthNever:
		return wgpu.CompareFunctionNever
	default:
		return wgpu.CompareFunctionLess
	}
}

// CullMode maps a material cull mode to its WebGPU equivalent.
func CullMode(mode material.CullMode) wgpu.CullMode {
	switch mode {
	case material.CullFront:
		return wgpu.CullModeFront
	case material.CullNone:
		return wgpu.CullModeNone
	default:
		return wgpu.CullModeBack
	}
}

// FrontFace maps a winding to its WebGPU front face.
func FrontFace(w material.Winding) wgpu.FrontFace {
	if w == material.WindingCW {
		return wgpu.FrontFaceCW
	}
	return wgpu.FrontFaceCCW
}

// PrimitiveTopology maps a material topology to its WebGPU list topology.
func PrimitiveTopology(t material.Topology) wgpu.PrimitiveTopology {
	switch t {
	case material.TopologyLines:
		return wgpu.PrimitiveTopologyLineList
	case material.TopologyPoints:
		return wgpu.PrimitiveTopologyPointList
	default:
		return wgpu.PrimitiveTopologyTriangleList
	}
}

// WriteMask returns the colour write mask for a material that does or does not write colour.
func WriteMask(colorWrite bool) wgpu.ColorWriteMask {
	if colorWrite {
		return wgpu.ColorWriteMaskAll
	}
	return wgpu.ColorWriteMaskNone
}

// BlendState returns the blend equation for mode, or nil when blending is off.
func BlendState(mode material.BlendMode) *wgpu.BlendState {
	switch mode {
	case material.BlendAlpha:
		return &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
		}
	case material.BlendAdditive:
		return &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOne,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOne,
				Operation: wgpu.BlendOperationAdd,
			},
		}
	default:
		return nil
	}
}
