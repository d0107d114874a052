package game_object

import (
	"github.com/Carmen-Shannon/oxy-render/engine/camera"
	"github.com/Carmen-Shannon/oxy-render/engine/light"
	"github.com/Carmen-Shannon/oxy-render/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// GameObjectBuilderOption is a functional option for configuring a GameObject.
type GameObjectBuilderOption func(*gameObject)

// WithName sets the debug name.
//
// Parameters:
//   - name: the name
//
// Returns:
//   - GameObjectBuilderOption: option function to apply
func WithName(name string) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.name = name
	}
}

// WithEnabled sets whether the object is enabled for rendering.
//
// Parameters:
//   - enabled: true to enable
//
// Returns:
//   - GameObjectBuilderOption: option function to apply
func WithEnabled(enabled bool) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.enabled.Store(enabled)
	}
}

// WithPosition sets the local translation.
//
// Parameters:
//   - p: the position
//
// Returns:
//   - GameObjectBuilderOption: option function to apply
func WithPosition(p mgl32.Vec3) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.position = p
	}
}

// WithScale sets the local per-axis scale.
//
// Parameters:
//   - s: the scale
//
// Returns:
//   - GameObjectBuilderOption: option function to apply
func WithScale(s mgl32.Vec3) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.scale = s
	}
}

// WithRotation sets the local orientation from Euler angles in radians.
//
// Parameters:
//   - rx, ry, rz: rotation around X, Y and Z
//
// Returns:
//   - GameObjectBuilderOption: option function to apply
func WithRotation(rx, ry, rz float32) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.rotation = eulerQuat(rx, ry, rz)
	}
}

// WithRotationSpeed sets the angular velocity applied by Update, in radians per second.
func WithRotationSpeed(speed mgl32.Vec3) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.rotationSpeed = speed
	}
}

// WithParent attaches the object to a parent.
func WithParent(parent GameObject) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.parent = parent
	}
}

// WithMesh attaches a mesh component.
func WithMesh(m *model.Mesh) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.mesh = m
	}
}

// WithLight attaches a light component.
func WithLight(l light.Light) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.attachedLight = l
	}
}

// WithCamera attaches a camera component.
func WithCamera(c camera.Camera) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.cam = c
	}
}
