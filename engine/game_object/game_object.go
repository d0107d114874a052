package game_object

import (
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/camera"
	"github.com/Carmen-Shannon/oxy-render/engine/light"
	"github.com/Carmen-Shannon/oxy-render/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

type gameObject struct {
	mu *sync.Mutex

	id      uint64
	name    string
	enabled atomic.Bool

	position      mgl32.Vec3
	rotation      mgl32.Quat
	scale         mgl32.Vec3
	rotationSpeed mgl32.Vec3
	parent        GameObject

	mesh          *model.Mesh
	attachedLight light.Light
	cam           camera.Camera
}

// GameObject is a scene entity with a local transform, an optional parent and up to one each of
// a mesh, light and camera component.
//
// The scene owns game objects; everything else refers to them through scene handles and must
// tolerate them disappearing between frames.
type GameObject interface {
	// ID returns the object's identifier, assigned by the scene.
	//
	// Returns:
	//   - uint64: the object ID
	ID() uint64

	// Name returns the object's debug name.
	//
	// Returns:
	//   - string: the name
	Name() string

	// Enabled returns whether this object takes part in rendering.
	//
	// Returns:
	//   - bool: true if enabled
	Enabled() bool

	// Position returns the local translation.
	//
	// Returns:
	//   - mgl32.Vec3: the position relative to the parent
	Position() mgl32.Vec3

	// Rotation returns the local orientation.
	//
	// Returns:
	//   - mgl32.Quat: the rotation relative to the parent
	Rotation() mgl32.Quat

	// Scale returns the local per-axis scale.
	//
	// Returns:
	//   - mgl32.Vec3: the scale relative to the parent
	Scale() mgl32.Vec3

	// RotationSpeed returns the Euler angular velocity applied by Update, in radians per second.
	//
	// Returns:
	//   - mgl32.Vec3: rotation speed around X, Y and Z
	RotationSpeed() mgl32.Vec3

	// Parent returns the parent object, or nil for a root.
	//
	// Returns:
	//   - GameObject: the parent or nil
	Parent() GameObject

	// LocalMatrix returns translation * rotation * scale.
	//
	// Returns:
	//   - mgl32.Mat4: the local transform
	LocalMatrix() mgl32.Mat4

	// WorldMatrix returns the local transform composed with every ancestor's.
	//
	// Returns:
	//   - mgl32.Mat4: the world transform
	WorldMatrix() mgl32.Mat4

	// WorldScale returns the per-axis product of this object's and its ancestors' scales.
	//
	// Returns:
	//   - mgl32.Vec3: the accumulated scale
	WorldScale() mgl32.Vec3

	// WorldPosition returns the translation of the world transform.
	//
	// Returns:
	//   - mgl32.Vec3: the world-space position
	WorldPosition() mgl32.Vec3

	// Mesh returns the mesh component, or nil.
	Mesh() *model.Mesh

	// Light returns the light component, or nil.
	Light() light.Light

	// Camera returns the camera component, or nil.
	Camera() camera.Camera

	// SetID sets the object's identifier.
	SetID(id uint64)

	// SetName sets the debug name.
	SetName(name string)

	// SetEnabled enables or disables the object.
	SetEnabled(enabled bool)

	// SetPosition sets the local translation.
	SetPosition(p mgl32.Vec3)

	// SetRotation sets the local orientation.
	SetRotation(q mgl32.Quat)

	// SetRotationEuler sets the local orientation from Euler angles in radians, applied X then Y then Z.
	SetRotationEuler(rx, ry, rz float32)

	// SetScale sets the local per-axis scale.
	SetScale(s mgl32.Vec3)

	// SetRotationSpeed sets the angular velocity applied by Update.
	SetRotationSpeed(speed mgl32.Vec3)

	// SetParent attaches the object to a parent; nil detaches it.
	SetParent(parent GameObject)

	// SetMesh attaches or, with nil, detaches the mesh component.
	SetMesh(m *model.Mesh)

	// SetLight attaches or, with nil, detaches the light component.
	SetLight(l light.Light)

	// SetCamera attaches or, with nil, detaches the camera component.
	SetCamera(c camera.Camera)

	// Update advances the object's rotation by its rotation speed.
	//
	// Parameters:
	//   - dt: elapsed time in seconds
	Update(dt float32)
}

var _ GameObject = &gameObject{}

// NewGameObject creates an enabled object at the origin with unit scale.
//
// Parameters:
//   - options: functional options to configure the object
//
// Returns:
//   - GameObject: the new object
func NewGameObject(options ...GameObjectBuilderOption) GameObject {
	g := &gameObject{
		mu:       &sync.Mutex{},
		rotation: mgl32.QuatIdent(),
		scale:    mgl32.Vec3{1, 1, 1},
	}
	g.enabled.Store(true)
	for _, opt := range options {
		opt(g)
	}
	return g
}

func (g *gameObject) ID() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.id
}

func (g *gameObject) Name() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.name
}

func (g *gameObject) Enabled() bool {
	return g.enabled.Load()
}

func (g *gameObject) Position() mgl32.Vec3 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.position
}

func (g *gameObject) Rotation() mgl32.Quat {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rotation
}

func (g *gameObject) Scale() mgl32.Vec3 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.scale
}

func (g *gameObject) RotationSpeed() mgl32.Vec3 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rotationSpeed
}

func (g *gameObject) Parent() GameObject {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.parent
}

func (g *gameObject) LocalMatrix() mgl32.Mat4 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return common.TRS(g.position, g.rotation, g.scale)
}

func (g *gameObject) WorldMatrix() mgl32.Mat4 {
	m := g.LocalMatrix()
	for p := g.Parent(); p != nil; p = p.Parent() {
		m = p.LocalMatrix().Mul4(m)
	}
	return m
}

func (g *gameObject) WorldScale() mgl32.Vec3 {
	s := g.Scale()
	for p := g.Parent(); p != nil; p = p.Parent() {
		ps := p.Scale()
		s = mgl32.Vec3{s[0] * ps[0], s[1] * ps[1], s[2] * ps[2]}
	}
	return s
}

func (g *gameObject) WorldPosition() mgl32.Vec3 {
	return common.Translation(g.WorldMatrix())
}

func (g *gameObject) Mesh() *model.Mesh {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.mesh
}

func (g *gameObject) Light() light.Light {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.attachedLight
}

func (g *gameObject) Camera() camera.Camera {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cam
}

func (g *gameObject) SetID(id uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.id = id
}

func (g *gameObject) SetName(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.name = name
}

func (g *gameObject) SetEnabled(enabled bool) {
	g.enabled.Store(enabled)
}

func (g *gameObject) SetPosition(p mgl32.Vec3) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.position = p
}

func (g *gameObject) SetRotation(q mgl32.Quat) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rotation = q.Normalize()
}

func (g *gameObject) SetRotationEuler(rx, ry, rz float32) {
	g.SetRotation(eulerQuat(rx, ry, rz))
}

func (g *gameObject) SetScale(s mgl32.Vec3) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.scale = s
}

func (g *gameObject) SetRotationSpeed(speed mgl32.Vec3) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rotationSpeed = speed
}

func (g *gameObject) SetParent(parent GameObject) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.parent = parent
}

func (g *gameObject) SetMesh(m *model.Mesh) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.mesh = m
}

func (g *gameObject) SetLight(l light.Light) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.attachedLight = l
}

func (g *gameObject) SetCamera(c camera.Camera) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cam = c
}

func (g *gameObject) Update(dt float32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.rotationSpeed == (mgl32.Vec3{}) {
		return
	}
	s := g.rotationSpeed.Mul(dt)
	g.rotation = g.rotation.Mul(eulerQuat(s[0], s[1], s[2])).Normalize()
}

// eulerQuat builds a rotation applying X, then Y, then Z.
func eulerQuat(rx, ry, rz float32) mgl32.Quat {
	return mgl32.AnglesToQuat(rz, ry, rx, mgl32.ZYX)
}
