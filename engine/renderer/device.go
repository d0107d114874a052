package renderer

import (
	"github.com/Carmen-Shannon/oxy-render/engine/camera"
	"github.com/Carmen-Shannon/oxy-render/engine/model"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer/texture"
	"github.com/go-gl/mathgl/mgl32"
)

// ClearMask selects which buffers Clear resets.
type ClearMask uint8

const (
	ClearColorBuffer ClearMask = 1 << iota
	ClearDepthBuffer
	ClearStencilBuffer
)

// Device is the graphics device the renderer drives. It owns GPU objects and raw draw
// submission; the renderer decides what to bind and when.
//
// Bind methods check the resource's load status first and return an error wrapping
// asset.ErrNotReady while it is still loading. Any other error is treated as fatal for the
// draw that caused it.
type Device interface {
	// ScreenSize returns the size of the default target in pixels.
	ScreenSize() (width, height int)

	// BindRenderTarget directs subsequent clears and draws at target, or at the default target
	// when target is nil.
	BindRenderTarget(target camera.RenderTarget) error

	// UnbindRenderTarget finishes the work recorded since BindRenderTarget and submits it.
	UnbindRenderTarget() error

	// SetViewport restricts drawing to a rectangle of the bound target.
	SetViewport(vp camera.Viewport)

	// SetClearColor sets the colour used by the next colour clear.
	SetClearColor(c mgl32.Vec4)

	// Clear resets the selected buffers of the bound target.
	Clear(mask ClearMask) error

	// CommitState applies a fully resolved depth, blend and cull state to subsequent draws.
	CommitState(s material.ResolvedState)

	// BindProgram makes p the program for subsequent uniform writes and draws.
	BindProgram(p shader.Program) error

	// BindGeometry makes g the current vertex and index buffer, uploading it on first use.
	BindGeometry(g model.GeometryBuffer) error

	// UnbindGeometry detaches the current geometry's vertex attributes after a draw. The buffer
	// stays current, so a later Draw without an intervening BindGeometry re-attaches it.
	UnbindGeometry()

	// BindTexture binds t to a texture unit, uploading it on first use.
	BindTexture(t texture.Texture, unit int) error

	// SetUniform stages a uniform value on the bound program. Names the program does not
	// declare are ignored.
	SetUniform(name string, value any) error

	// CommitUniforms makes every staged uniform visible to the next draw.
	CommitUniforms() error

	// Draw draws the current geometry with the bound program and committed state.
	Draw() error
}
