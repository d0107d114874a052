package material

import (
	"github.com/Carmen-Shannon/oxy-render/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer/texture"
	"github.com/go-gl/mathgl/mgl32"
)

// MaterialBuilderOption is a function that configures a material instance during construction.
type MaterialBuilderOption func(*material)

// WithName is an option builder that sets the name of the material.
//
// Parameters:
//   - name: the identifier for the material
//
// Returns:
//   - MaterialBuilderOption: a function that applies the name option to a material
func WithName(name string) MaterialBuilderOption {
	return func(m *material) {
		m.name = name
	}
}

// WithQueue is an option builder that sets the render queue tag.
//
// Parameters:
//   - queue: the queue the material's surfaces are submitted in
//
// Returns:
//   - MaterialBuilderOption: a function that applies the queue option to a material
func WithQueue(queue RenderQueue) MaterialBuilderOption {
	return func(m *material) {
		m.queue = queue
	}
}

// WithProgram is an option builder that sets the shader program.
//
// Parameters:
//   - program: the program that shades the material
//
// Returns:
//   - MaterialBuilderOption: a function that applies the program option to a material
func WithProgram(program shader.Program) MaterialBuilderOption {
	return func(m *material) {
		m.program = program
	}
}

// WithParams appends parameters. A parameter with the same name as an earlier one replaces it in place.
//
// Parameters:
//   - params: the parameters to add
//
// Returns:
//   - MaterialBuilderOption: a function that applies the params option to a material
func WithParams(params ...Param) MaterialBuilderOption {
	return func(m *material) {
		for _, p := range params {
			m.setParam(p)
		}
	}
}

// WithBaseColor sets the "uBaseColor" vector parameter.
func WithBaseColor(color mgl32.Vec4) MaterialBuilderOption {
	return WithParams(Vec4("uBaseColor", color))
}

// WithTexture binds tex under the sampler uniform name.
func WithTexture(name string, tex texture.Texture) MaterialBuilderOption {
	return WithParams(Sampler(name, tex))
}

// WithState is an option builder that merges a partial state override into the material's.
//
// Parameters:
//   - state: the override to merge
//
// Returns:
//   - MaterialBuilderOption: a function that applies the state option to a material
func WithState(state State) MaterialBuilderOption {
	return func(m *material) {
		m.state = m.state.Merge(state)
	}
}

// WithDepthWrite overrides depth writes.
func WithDepthWrite(enabled bool) MaterialBuilderOption {
	return WithState(State{DepthWrite: Ptr(enabled)})
}

// WithDepthTest overrides the depth comparison.
func WithDepthTest(fn DepthFunc) MaterialBuilderOption {
	return WithState(State{DepthTest: Ptr(fn)})
}

// WithBlend overrides the blend mode.
func WithBlend(mode BlendMode) MaterialBuilderOption {
	return WithState(State{Blend: Ptr(mode)})
}

// WithCull overrides face culling.
func WithCull(mode CullMode) MaterialBuilderOption {
	return WithState(State{Cull: Ptr(mode)})
}

// WithDepthBias offsets the depth the material writes.
func WithDepthBias(constant int32, slopeScale float32) MaterialBuilderOption {
	return WithState(State{DepthBias: &DepthBias{Constant: constant, SlopeScale: slopeScale}})
}

// WithColorWrite toggles colour writes. Depth-only materials turn them off.
func WithColorWrite(enabled bool) MaterialBuilderOption {
	return WithState(State{ColorWrite: Ptr(enabled)})
}

// WithWinding sets which vertex order faces the camera.
func WithWinding(w Winding) MaterialBuilderOption {
	return WithState(State{Winding: Ptr(w)})
}

// WithTopology sets how the material's geometry is assembled.
func WithTopology(t Topology) MaterialBuilderOption {
	return WithState(State{Topology: Ptr(t)})
}

func (m *material) setParam(p Param) {
	for i := range m.params {
		if m.params[i].Name == p.Name {
			m.params[i] = p
			return
		}
	}
	m.params = append(m.params, p)
}
