package shader

import "github.com/Carmen-Shannon/oxy-render/engine/asset"

// ProgramBuilderOption is a functional option for configuring a Program.
type ProgramBuilderOption func(*program)

// WithSource sets the WGSL source of both stages.
//
// Parameters:
//   - vertex: vertex stage source
//   - fragment: fragment stage source
//
// Returns:
//   - ProgramBuilderOption: option function to apply
func WithSource(vertex, fragment string) ProgramBuilderOption {
	return func(p *program) {
		p.vertexSrc = vertex
		p.fragmentSrc = fragment
	}
}

// WithEntryPoints overrides the default "vs_main" and "fs_main" entry points.
func WithEntryPoints(vertex, fragment string) ProgramBuilderOption {
	return func(p *program) {
		p.entriesSet = true
		if vertex != "" {
			p.vertexEntry = vertex
		}
		if fragment != "" {
			p.fragmentEntry = fragment
		}
	}
}

// WithUniform declares a uniform in the program's block. Declaration order is packing order.
//
// Parameters:
//   - name: the uniform name as set by the renderer, e.g. "uMVMatrix" or "uPointLights[0].color"
//   - typ: the uniform type
//
// Returns:
//   - ProgramBuilderOption: option function to apply
func WithUniform(name string, typ UniformType) ProgramBuilderOption {
	return func(p *program) {
		p.uniforms = append(p.uniforms, Uniform{Name: name, Type: typ})
	}
}

// WithUniforms declares several uniforms at once.
func WithUniforms(uniforms ...Uniform) ProgramBuilderOption {
	return func(p *program) {
		p.uniforms = append(p.uniforms, uniforms...)
	}
}

// WithTextureUnits sets how many texture units the fragment stage samples, overriding the count
// reflected from the source.
func WithTextureUnits(n int) ProgramBuilderOption {
	return func(p *program) {
		if n < 0 {
			n = 0
		}
		p.textureUnits = n
	}
}

// WithPending creates the program in the pending state. It becomes usable once MarkReady is called,
// typically by an asset.Streamer after the sources are fetched.
func WithPending() ProgramBuilderOption {
	return func(p *program) {
		p.State = &asset.State{}
	}
}
