package camera

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/handle"
	"github.com/go-gl/mathgl/mgl32"
)

// RenderTarget is an offscreen surface a camera renders into instead of the default target.
// Targets are created by a graphics device.
type RenderTarget interface {
	// ID returns the target's identity token.
	ID() handle.ID

	// Size returns the target's dimensions in pixels.
	Size() (width, height int)
}

// Viewport is a sub-rectangle of the bound target in pixels, origin top-left.
type Viewport struct {
	X, Y          int
	Width, Height int
}

// Empty reports whether the viewport has no area.
func (v Viewport) Empty() bool {
	return v.Width <= 0 || v.Height <= 0
}

type cameraImpl struct {
	mu *sync.Mutex

	eye    mgl32.Vec3
	target mgl32.Vec3
	up     mgl32.Vec3

	fov    float32
	aspect float32
	near   float32
	far    float32

	viewMatrix           mgl32.Mat4
	projectionMatrix     mgl32.Mat4
	viewProjectionMatrix mgl32.Mat4
	frustum              common.Frustum

	renderTarget RenderTarget
	viewport     *Viewport
	controller   Controller
}

// Camera holds perspective settings and an eye/target pair and derives the view, projection and
// frustum from them. It is the camera component of a game object.
//
// Matrices are recomputed eagerly on every setter, so reads are cheap and consistent within a frame.
type Camera interface {
	// Eye returns the world-space eye position.
	//
	// Returns:
	//   - mgl32.Vec3: the eye position
	Eye() mgl32.Vec3

	// Target returns the world-space look-at point.
	//
	// Returns:
	//   - mgl32.Vec3: the target position
	Target() mgl32.Vec3

	// Up returns the camera's up vector.
	//
	// Returns:
	//   - mgl32.Vec3: the up vector
	Up() mgl32.Vec3

	// Fov returns the vertical field of view in radians.
	//
	// Returns:
	//   - float32: field of view in radians
	Fov() float32

	// Aspect returns the aspect ratio (width / height).
	//
	// Returns:
	//   - float32: the aspect ratio
	Aspect() float32

	// Near returns the near clipping plane distance.
	//
	// Returns:
	//   - float32: near plane distance
	Near() float32

	// Far returns the far clipping plane distance.
	//
	// Returns:
	//   - float32: far plane distance
	Far() float32

	// ViewMatrix returns the current view matrix.
	//
	// Returns:
	//   - mgl32.Mat4: the view matrix
	ViewMatrix() mgl32.Mat4

	// ProjectionMatrix returns the current projection matrix, mapping depth to [0, 1].
	//
	// Returns:
	//   - mgl32.Mat4: the projection matrix
	ProjectionMatrix() mgl32.Mat4

	// ViewProjectionMatrix returns projection * view.
	//
	// Returns:
	//   - mgl32.Mat4: the view-projection matrix
	ViewProjectionMatrix() mgl32.Mat4

	// Frustum returns the world-space view frustum derived from the view-projection matrix.
	//
	// Returns:
	//   - common.Frustum: the normalised frustum planes
	Frustum() common.Frustum

	// RenderTarget returns the camera's output target, or nil for the default target.
	RenderTarget() RenderTarget

	// Viewport returns the camera's viewport rectangle, or false to use the full target.
	Viewport() (Viewport, bool)

	// SetEye sets the eye position.
	SetEye(eye mgl32.Vec3)

	// SetTarget sets the look-at point.
	SetTarget(target mgl32.Vec3)

	// LookAt sets eye and target together.
	LookAt(eye, target mgl32.Vec3)

	// SetUp sets the up vector.
	SetUp(up mgl32.Vec3)

	// SetFov sets the vertical field of view in radians.
	SetFov(fov float32)

	// SetAspect sets the aspect ratio.
	SetAspect(aspect float32)

	// SetNear sets the near plane distance.
	SetNear(near float32)

	// SetFar sets the far plane distance.
	SetFar(far float32)

	// SetRenderTarget sets the output target; nil selects the default target.
	SetRenderTarget(target RenderTarget)

	// SetViewport sets the viewport rectangle; nil selects the full target.
	SetViewport(vp *Viewport)

	// Controller returns the attached controller, or nil.
	Controller() Controller

	// SetController attaches a controller that drives eye and target on Update.
	SetController(ctrl Controller)

	// Update copies eye and target from the attached controller. It is a no-op without one.
	Update()
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new Camera looking down -Z from the origin with a 45 degree field of view.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:     &sync.Mutex{},
		eye:    mgl32.Vec3{0, 0, 0},
		target: mgl32.Vec3{0, 0, -1},
		up:     mgl32.Vec3{0, 1, 0},
		fov:    45.0 * (math.Pi / 180.0),
		aspect: 1.0,
		near:   0.1,
		far:    100.0,
	}
	for _, option := range options {
		option(c)
	}
	if c.controller != nil {
		c.eye, c.target = c.controller.Position(), c.controller.Target()
	}
	c.updateMatrices()
	return c
}

func (c *cameraImpl) Eye() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.eye
}

func (c *cameraImpl) Target() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

func (c *cameraImpl) Up() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.up
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) ViewMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix
}

func (c *cameraImpl) ProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionMatrix
}

func (c *cameraImpl) ViewProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProjectionMatrix
}

func (c *cameraImpl) Frustum() common.Frustum {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frustum
}

func (c *cameraImpl) RenderTarget() RenderTarget {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.renderTarget
}

func (c *cameraImpl) Viewport() (Viewport, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.viewport == nil {
		return Viewport{}, false
	}
	return *c.viewport, true
}

func (c *cameraImpl) SetEye(eye mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.eye = eye
	c.updateMatrices()
}

func (c *cameraImpl) SetTarget(target mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.target = target
	c.updateMatrices()
}

func (c *cameraImpl) LookAt(eye, target mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.eye = eye
	c.target = target
	c.updateMatrices()
}

func (c *cameraImpl) SetUp(up mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.up = up
	c.updateMatrices()
}

func (c *cameraImpl) SetFov(fov float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fov = fov
	c.updateMatrices()
}

func (c *cameraImpl) SetAspect(aspect float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
	c.updateMatrices()
}

func (c *cameraImpl) SetNear(near float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.near = near
	c.updateMatrices()
}

func (c *cameraImpl) SetFar(far float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.far = far
	c.updateMatrices()
}

func (c *cameraImpl) SetRenderTarget(target RenderTarget) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.renderTarget = target
}

func (c *cameraImpl) SetViewport(vp *Viewport) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if vp == nil {
		c.viewport = nil
		return
	}
	cp := *vp
	c.viewport = &cp
}

func (c *cameraImpl) Controller() Controller {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.controller
}

func (c *cameraImpl) SetController(ctrl Controller) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.controller = ctrl
}

func (c *cameraImpl) Update() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.controller == nil {
		return
	}
	c.eye, c.target = c.controller.Position(), c.controller.Target()
	c.updateMatrices()
}

// updateMatrices recalculates the view, projection, view-projection and frustum.
// Caller must hold the mutex.
func (c *cameraImpl) updateMatrices() {
	c.viewMatrix = mgl32.LookAtV(c.eye, c.target, c.up)
	c.projectionMatrix = common.PerspectiveZO(c.fov, c.aspect, c.near, c.far)
	c.viewProjectionMatrix = c.projectionMatrix.Mul4(c.viewMatrix)
	c.frustum = common.ExtractFrustum(c.viewProjectionMatrix)
}
