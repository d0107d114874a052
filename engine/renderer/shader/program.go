package shader

import (
	"github.com/Carmen-Shannon/oxy-render/engine/asset"
	"github.com/Carmen-Shannon/oxy-render/engine/handle"
	"github.com/pkg/errors"
)

// Program is a compiled pair of vertex and fragment stages together with the
// uniform block they consume. Programs are identified by a process-unique ID so
// the binding cache can compare them without pointer identity.
type Program interface {
	asset.Loadable

	// ID returns the process-unique identifier of the program.
	ID() handle.ID

	// Name returns the human-readable program name.
	Name() string

	// VertexSource returns the WGSL source of the vertex stage.
	VertexSource() string

	// FragmentSource returns the WGSL source of the fragment stage.
	FragmentSource() string

	// VertexEntry returns the vertex stage entry point.
	VertexEntry() string

	// FragmentEntry returns the fragment stage entry point.
	FragmentEntry() string

	// Layout returns the packed layout of the program's uniform block.
	Layout() UniformLayout

	// HasUniform reports whether the program declares the named uniform.
	//
	// Parameters:
	//   - name: the uniform name
	//
	// Returns:
	//   - bool: true if the uniform is declared
	HasUniform(name string) bool

	// TextureUnits returns the number of texture units sampled by the fragment stage.
	TextureUnits() int
}

type program struct {
	*asset.State

	id            handle.ID
	name          string
	vertexSrc     string
	fragmentSrc   string
	vertexEntry   string
	fragmentEntry string
	entriesSet    bool
	uniforms      []Uniform
	layout        UniformLayout
	textureUnits  int
}

var _ Program = &program{}

// NewProgram creates a Program. Without WithPending the program is ready immediately.
//
// When WGSL source is given, the source is reflected: a program with no WithUniform declarations
// takes its uniform block from the struct bound at group 0 binding 0, and the texture unit count
// and entry points are read from the source unless set explicitly. A source that cannot be
// reflected leaves the program failed.
//
// Parameters:
//   - name: the program name
//   - options: builder options
//
// Returns:
//   - Program: the new program
func NewProgram(name string, options ...ProgramBuilderOption) Program {
	p := &program{
		State:         asset.NewReadyState(),
		id:            handle.NextID(),
		name:          name,
		vertexEntry:   "vs_main",
		fragmentEntry: "fs_main",
	}
	for _, opt := range options {
		opt(p)
	}
	if p.vertexSrc != "" || p.fragmentSrc != "" {
		if err := p.reflect(); err != nil {
			p.MarkFailed(errors.Wrapf(err, "program %s", name))
		}
	}
	p.layout = NewUniformLayout(p.uniforms)
	return p
}

func (p *program) reflect() error {
	r, err := Reflect(p.vertexSrc, p.fragmentSrc)
	if err != nil {
		// Declared uniforms do not depend on the source's block.
		if len(p.uniforms) > 0 {
			return nil
		}
		return err
	}
	if len(p.uniforms) == 0 {
		p.uniforms = r.Uniforms
	}
	if p.textureUnits == 0 {
		p.textureUnits = r.TextureUnits
	}
	if !p.entriesSet {
		if r.VertexEntry != "" {
			p.vertexEntry = r.VertexEntry
		}
		if r.FragmentEntry != "" {
			p.fragmentEntry = r.FragmentEntry
		}
	}
	return nil
}

func (p *program) ID() handle.ID {
	return p.id
}

func (p *program) Name() string {
	return p.name
}

func (p *program) Label() string {
	return "program " + p.name
}

func (p *program) VertexSource() string {
	return p.vertexSrc
}

func (p *program) FragmentSource() string {
	return p.fragmentSrc
}

func (p *program) VertexEntry() string {
	return p.vertexEntry
}

func (p *program) FragmentEntry() string {
	return p.fragmentEntry
}

func (p *program) Layout() UniformLayout {
	return p.layout
}

func (p *program) HasUniform(name string) bool {
	_, ok := p.layout.Slot(name)
	return ok
}

func (p *program) TextureUnits() int {
	return p.textureUnits
}
