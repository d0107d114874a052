package renderer

import (
	"github.com/Carmen-Shannon/oxy-render/engine/config"
	"github.com/go-gl/mathgl/mgl32"
)

// ClearOptions controls the clear at the start of a render pass. Each buffer is toggled
// independently; a nil Color keeps the device's current clear colour.
type ClearOptions struct {
	Color        *mgl32.Vec4
	ClearColor   bool
	ClearDepth   bool
	ClearStencil bool
}

// DefaultClearOptions clears colour to mid-grey and depth, leaving stencil untouched.
func DefaultClearOptions() ClearOptions {
	return ClearOptions{
		Color:      &mgl32.Vec4{0.3, 0.3, 0.3, 1},
		ClearColor: true,
		ClearDepth: true,
	}
}

// ClearOptionsFromConfig converts the render.clear configuration section.
func ClearOptionsFromConfig(c config.ClearConfig) ClearOptions {
	opts := ClearOptions{
		ClearColor:   c.ColorOn,
		ClearDepth:   c.DepthOn,
		ClearStencil: c.Stencil,
	}
	if c.Color != nil {
		col := mgl32.Vec4(*c.Color)
		opts.Color = &col
	}
	return opts
}

// Mask returns the device clear mask for the enabled buffers.
func (o ClearOptions) Mask() ClearMask {
	var m ClearMask
	if o.ClearColor {
		m |= ClearColorBuffer
	}
	if o.ClearDepth {
		m |= ClearDepthBuffer
	}
	if o.ClearStencil {
		m |= ClearStencilBuffer
	}
	return m
}
