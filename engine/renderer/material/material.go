package material

import (
	"github.com/Carmen-Shannon/oxy-render/engine/handle"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer/shader"
)

// material is the implementation of the Material interface.
type material struct {
	id      handle.ID
	name    string
	queue   RenderQueue
	program shader.Program
	params  []Param
	state   State
}

// Material describes how a surface is drawn: the queue it belongs to, the program that
// shades it, its parameters and a partial state override.
//
// Materials are immutable once built and are shared between surfaces. The binding cache
// compares them by ID.
type Material interface {
	// ID returns the material's identity token.
	//
	// Returns:
	//   - handle.ID: the unique identity of this material
	ID() handle.ID

	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// Queue returns the render queue tag that decides which bucket the material's surfaces go in.
	//
	// Returns:
	//   - RenderQueue: the queue tag
	Queue() RenderQueue

	// Program returns the shader program, or nil if none was set.
	//
	// Returns:
	//   - shader.Program: the program
	Program() shader.Program

	// Params returns the parameters in declaration order. The slice must not be modified.
	//
	// Returns:
	//   - []Param: the parameters
	Params() []Param

	// State returns the partial state override applied on top of the bucket defaults.
	//
	// Returns:
	//   - State: the override
	State() State
}

var _ Material = &material{}

// NewMaterial creates a new Material instance configured with the provided options.
// The default queue is QueueOpaque.
//
// Parameters:
//   - options: variadic list of MaterialBuilderOption functions to configure the material
//
// Returns:
//   - Material: a new Material instance
func NewMaterial(options ...MaterialBuilderOption) Material {
	m := &material{
		id:    handle.NextID(),
		queue: QueueOpaque,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *material) ID() handle.ID {
	return m.id
}

func (m *material) Name() string {
	return m.name
}

func (m *material) Queue() RenderQueue {
	return m.queue
}

func (m *material) Program() shader.Program {
	return m.program
}

func (m *material) Params() []Param {
	return m.params
}

func (m *material) State() State {
	return m.state
}

// Depth-only passes push their depth back by this much so a later pass testing with LessEqual
// against the same geometry does not fight it.
const (
	DepthOnlyBias       int32   = 2
	DepthOnlySlopeScale float32 = 1.5
)

// DepthOnly returns an override material that writes depth and no colour, for depth pre-passes
// through RenderPassWithMaterial.
//
// Parameters:
//   - program: a program whose fragment stage may output anything; colour writes are masked
//
// Returns:
//   - Material: the depth-only material
func DepthOnly(program shader.Program) Material {
	return NewMaterial(
		WithName("depth_only"),
		WithProgram(program),
		WithColorWrite(false),
		WithDepthWrite(true),
		WithDepthBias(DepthOnlyBias, DepthOnlySlopeScale),
	)
}
