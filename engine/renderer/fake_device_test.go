package renderer

import (
	"github.com/Carmen-Shannon/oxy-render/engine/camera"
	"github.com/Carmen-Shannon/oxy-render/engine/handle"
	"github.com/Carmen-Shannon/oxy-render/engine/model"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer/texture"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// drawRecord is what the fake device saw at a Draw call.
type drawRecord struct {
	Program  handle.ID
	Geometry handle.ID
	State    material.ResolvedState
	Model    mgl32.Mat4
}

// fakeDevice records every call the renderer makes. Bind calls check resource status the way
// a real device does.
type fakeDevice struct {
	width, height int

	calls      []string
	viewports  []camera.Viewport
	clearColor *mgl32.Vec4
	clears     []ClearMask
	targets    []camera.RenderTarget

	program  shader.Program
	geometry model.GeometryBuffer
	state    material.ResolvedState
	textures map[int]handle.ID
	uniforms map[string]any
	uploads  map[string]int

	draws []drawRecord

	failGeometry error
	failDraw     error
}

var _ Device = &fakeDevice{}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		width:    800,
		height:   600,
		textures: make(map[int]handle.ID),
		uniforms: make(map[string]any),
		uploads:  make(map[string]int),
	}
}

func (d *fakeDevice) ScreenSize() (int, int) {
	return d.width, d.height
}

func (d *fakeDevice) BindRenderTarget(target camera.RenderTarget) error {
	d.calls = append(d.calls, "bind_target")
	d.targets = append(d.targets, target)
	return nil
}

func (d *fakeDevice) UnbindRenderTarget() error {
	d.calls = append(d.calls, "unbind_target")
	return nil
}

func (d *fakeDevice) SetViewport(vp camera.Viewport) {
	d.calls = append(d.calls, "viewport")
	d.viewports = append(d.viewports, vp)
}

func (d *fakeDevice) SetClearColor(c mgl32.Vec4) {
	d.calls = append(d.calls, "clear_color")
	d.clearColor = &c
}

func (d *fakeDevice) Clear(mask ClearMask) error {
	d.calls = append(d.calls, "clear")
	d.clears = append(d.clears, mask)
	return nil
}

func (d *fakeDevice) CommitState(s material.ResolvedState) {
	d.state = s
}

func (d *fakeDevice) BindProgram(p shader.Program) error {
	if err := p.Status(); err != nil {
		return err
	}
	d.calls = append(d.calls, "bind_program")
	d.program = p
	return nil
}

func (d *fakeDevice) BindGeometry(g model.GeometryBuffer) error {
	if d.failGeometry != nil {
		return d.failGeometry
	}
	if err := g.Status(); err != nil {
		return err
	}
	d.calls = append(d.calls, "bind_geometry")
	d.geometry = g
	return nil
}

func (d *fakeDevice) UnbindGeometry() {
	d.calls = append(d.calls, "unbind_geometry")
}

func (d *fakeDevice) BindTexture(t texture.Texture, unit int) error {
	if err := t.Status(); err != nil {
		return err
	}
	d.calls = append(d.calls, "bind_texture")
	d.textures[unit] = t.ID()
	return nil
}

func (d *fakeDevice) SetUniform(name string, value any) error {
	if d.program == nil {
		return errors.New("no program bound")
	}
	d.uniforms[name] = value
	d.uploads[name]++
	return nil
}

func (d *fakeDevice) CommitUniforms() error {
	return nil
}

func (d *fakeDevice) Draw() error {
	if d.failDraw != nil {
		return d.failDraw
	}
	d.calls = append(d.calls, "draw")
	m, _ := d.uniforms[shader.UniformModel].(mgl32.Mat4)
	d.draws = append(d.draws, drawRecord{
		Program:  d.program.ID(),
		Geometry: d.geometry.ID(),
		State:    d.state,
		Model:    m,
	})
	return nil
}

func (d *fakeDevice) count(call string) int {
	n := 0
	for _, c := range d.calls {
		if c == call {
			n++
		}
	}
	return n
}

// fakeTarget is an offscreen render target.
type fakeTarget struct {
	id   handle.ID
	w, h int
}

func (t *fakeTarget) ID() handle.ID {
	return t.id
}

func (t *fakeTarget) Size() (int, int) {
	return t.w, t.h
}
