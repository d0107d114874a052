package pipeline

import "github.com/cogentcore/webgpu/wgpu"

// PipelineBuilderOption is a functional option used to configure a pipeline during creation via NewPipeline.
type PipelineBuilderOption func(*pipeline)

// WithDepthWriteEnabled toggles depth writing for the pipeline.
//
// Parameters:
//   - enabled: true to enable depth writing, false to disable
//
// Returns:
//   - PipelineBuilderOption: a function that applies the depth write setting
func WithDepthWriteEnabled(enabled bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthWriteEnabled = enabled
	}
}

// WithDepthCompare sets the comparison used by the depth test. CompareFunctionAlways disables it.
//
// Parameters:
//   - fn: the comparison function
//
// Returns:
//   - PipelineBuilderOption: a function that applies the depth compare setting
func WithDepthCompare(fn wgpu.CompareFunction) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthCompare = fn
	}
}

// WithDepthBias sets the constant depth bias and slope-scaled depth bias for the pipeline.
//
// Parameters:
//   - bias: the constant depth bias added to each fragment's depth value
//   - slopeScale: the slope-scaled depth bias factor
//
// Returns:
//   - PipelineBuilderOption: a function that applies the depth bias settings
func WithDepthBias(bias int32, slopeScale float32) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthBias = bias
		p.depthBiasSlopeScale = slopeScale
	}
}

// WithBlendEnabled toggles color blending for the pipeline.
//
// Parameters:
//   - enabled: true to enable blending, false to disable
//
// Returns:
//   - PipelineBuilderOption: a function that applies the blend setting
func WithBlendEnabled(enabled bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.blendEnabled = enabled
	}
}

// WithCullMode sets the face culling mode for the pipeline.
//
// Parameters:
//   - mode: the wgpu.CullMode to use
//
// Returns:
//   - PipelineBuilderOption: a function that applies the cull mode
func WithCullMode(mode wgpu.CullMode) PipelineBuilderOption {
	return func(p *pipeline) {
		p.cullMode = mode
	}
}

// WithTopology sets the primitive topology for the pipeline.
//
// Parameters:
//   - topology: the wgpu.PrimitiveTopology to use
//
// Returns:
//   - PipelineBuilderOption: a function that applies the topology setting
func WithTopology(topology wgpu.PrimitiveTopology) PipelineBuilderOption {
	return func(p *pipeline) {
		p.topology = topology
	}
}

// WithFrontFace sets the front face winding order for the pipeline.
func WithFrontFace(frontFace wgpu.FrontFace) PipelineBuilderOption {
	return func(p *pipeline) {
		p.frontFace = frontFace
	}
}

// WithWriteMask sets the color write mask for the pipeline.
func WithWriteMask(writeMask wgpu.ColorWriteMask) PipelineBuilderOption {
	return func(p *pipeline) {
		p.writeMask = writeMask
	}
}

// WithBlendState sets the blend state used when blending is enabled.
//
// Parameters:
//   - blendState: the blend state
//
// Returns:
//   - PipelineBuilderOption: a function that applies the blend state
func WithBlendState(blendState *wgpu.BlendState) PipelineBuilderOption {
	return func(p *pipeline) {
		p.blendState = blendState
	}
}
