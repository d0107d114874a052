package renderer

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/asset"
	"github.com/Carmen-Shannon/oxy-render/engine/camera"
	"github.com/Carmen-Shannon/oxy-render/engine/game_object"
	"github.com/Carmen-Shannon/oxy-render/engine/handle"
	"github.com/Carmen-Shannon/oxy-render/engine/light"
	"github.com/Carmen-Shannon/oxy-render/engine/logger"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer/shader"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ObjectSource resolves scene object handles. A handle that no longer resolves is treated as
// an object that is gone.
type ObjectSource interface {
	Resolve(h handle.Handle) (game_object.GameObject, bool)
}

// AssetSystem is advanced once per frame in Begin.
type AssetSystem interface {
	Step()
}

// Overlay is a UI layer drawn on top of the scene.
type Overlay interface {
	// Begin resets input accumulated during the previous frame.
	Begin()

	// Resize tells the overlay the screen size changed.
	Resize(width, height int)
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	device  Device
	objects ObjectSource
	assets  AssetSystem
	overlay Overlay
	log     *zap.Logger

	queueOrder     []material.RenderQueue
	textureUnits   int
	maxPointLights int
	fatalThreshold int
	defaultDesc    light.Descriptor
	defaultLight   light.Light

	width, height int

	tracked    []handle.Handle
	trackedSet map[handle.Handle]struct{}

	mainCamera *mainCamera

	cache  *BindingCache
	queues *RenderQueues

	stats       FrameStats
	frameErrors []FrameError
	consecutive int

	pointLights []light.Light
}

// mainCamera is the cached main camera and the object that carries it.
type mainCamera struct {
	object handle.Handle
	camera camera.Camera
}

// frame is what one render pass binds for every command.
type frame struct {
	eye        mgl32.Vec3
	view       mgl32.Mat4
	projection mgl32.Mat4
	viewProj   mgl32.Mat4
	skyboxVP   mgl32.Mat4
	override   material.Material

	directional light.Light
	points      []light.Light
}

// Renderer turns the tracked scene objects into draw calls on a Device, one frame at a time.
//
// A frame is Begin, one or more render passes, then End. A pass gathers every visible surface
// into the four render queue buckets, sorts them and submits them in the configured queue order,
// eliding redundant program, geometry and texture binds through a BindingCache. Draws whose
// resources are still loading are skipped silently; other failures are recorded as FrameErrors
// and the pass carries on until the consecutive failure threshold is reached.
//
// The renderer holds handles, never objects, so the scene may despawn objects at any time.
type Renderer interface {
	// Begin advances the asset system one step and resets overlay input.
	Begin()

	// Render draws a pass with the main camera. With no camera in the scene it only clears the
	// full screen.
	//
	// Parameters:
	//   - opts: the clear options for the pass
	//
	// Returns:
	//   - error: ErrFrameAborted or a render target error
	Render(opts ClearOptions) error

	// RenderPass draws the tracked objects as seen by cam.
	//
	// Parameters:
	//   - cam: the camera to render with
	//   - opts: the clear options for the pass
	//
	// Returns:
	//   - error: ErrFrameAborted or a render target error
	RenderPass(cam camera.Camera, opts ClearOptions) error

	// RenderPassWithMaterial draws like RenderPass but binds override in place of every surface's
	// own material. Bucketing, culling and sorting still use the surface's material.
	//
	// Parameters:
	//   - cam: the camera to render with
	//   - override: the material forced onto every draw
	//   - opts: the clear options for the pass
	//
	// Returns:
	//   - error: ErrFrameAborted or a render target error
	RenderPassWithMaterial(cam camera.Camera, override material.Material, opts ClearOptions) error

	// End drops handles whose objects are gone and forgets the main camera if its object is gone
	// or no longer carries it.
	End()

	// Track adds a scene object to the set the renderer draws. Tracking a handle twice is a no-op.
	Track(h handle.Handle)

	// Untrack removes a scene object from the set the renderer draws.
	Untrack(h handle.Handle)

	// Tracked returns the number of tracked handles, live or not.
	Tracked() int

	// MainCamera returns the camera Render uses, discovering it if none is cached.
	MainCamera() (camera.Camera, bool)

	// Resize updates the full-screen viewport size and notifies the overlay.
	Resize(width, height int)

	// Stats returns the statistics of the last pass.
	Stats() FrameStats

	// FrameErrors returns the failed draws of the last pass.
	FrameErrors() []FrameError

	// Device returns the device the renderer draws with.
	Device() Device
}

var _ Renderer = &renderer{}

// NewRenderer creates a renderer drawing the objects resolved by objects onto device.
//
// Parameters:
//   - device: the graphics device
//   - objects: resolves tracked handles, usually the scene
//   - options: functional options to configure the renderer
//
// Returns:
//   - Renderer: the renderer
//   - error: an error if the configured queue order is invalid
func NewRenderer(device Device, objects ObjectSource, options ...RendererBuilderOption) (Renderer, error) {
	if device == nil {
		return nil, errors.New("renderer: nil device")
	}
	if objects == nil {
		return nil, errors.New("renderer: nil object source")
	}
	r := &renderer{
		mu:             &sync.Mutex{},
		device:         device,
		objects:        objects,
		log:            logger.Nop(),
		queueOrder:     material.DefaultQueueOrder,
		textureUnits:   DefaultTextureUnits,
		maxPointLights: 4,
		fatalThreshold: 8,
		defaultDesc:    light.DefaultDescriptor,
		trackedSet:     make(map[handle.Handle]struct{}),
	}
	r.width, r.height = device.ScreenSize()
	for _, opt := range options {
		opt(r)
	}

	queues, err := NewRenderQueues(r.queueOrder)
	if err != nil {
		return nil, errors.Wrap(err, "renderer")
	}
	r.queues = queues
	r.cache = NewBindingCache(r.textureUnits)
	if r.defaultLight == nil {
		if err := r.defaultDesc.Validate(); err != nil {
			return nil, errors.Wrap(err, "renderer: default light")
		}
		r.defaultLight = light.FromDescriptor(r.defaultDesc)
	}
	r.pointLights = make([]light.Light, 0, r.maxPointLights)

	r.log.Debug("renderer created",
		zap.Stringers("queue_order", r.queueOrder),
		zap.Int("texture_units", r.textureUnits),
		zap.Int("max_point_lights", r.maxPointLights),
		zap.Int("fatal_error_threshold", r.fatalThreshold),
	)
	return r, nil
}

func (r *renderer) Begin() {
	if r.assets != nil {
		r.assets.Step()
	}
	if r.overlay != nil {
		r.overlay.Begin()
	}
}

func (r *renderer) Render(opts ClearOptions) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cam, ok := r.findMainCamera()
	if !ok {
		return r.clearOnly(opts)
	}
	return r.renderPass(cam, nil, opts)
}

func (r *renderer) RenderPass(cam camera.Camera, opts ClearOptions) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.renderPass(cam, nil, opts)
}

func (r *renderer) RenderPassWithMaterial(cam camera.Camera, override material.Material, opts ClearOptions) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.renderPass(cam, override, opts)
}

func (r *renderer) End() {
	r.mu.Lock()
	defer r.mu.Unlock()

	live := r.tracked[:0]
	for _, h := range r.tracked {
		if _, ok := r.objects.Resolve(h); ok {
			live = append(live, h)
			continue
		}
		delete(r.trackedSet, h)
	}
	clear(r.tracked[len(live):])
	r.tracked = live

	if r.mainCamera != nil {
		obj, ok := r.objects.Resolve(r.mainCamera.object)
		if !ok || obj.Camera() != r.mainCamera.camera {
			r.log.Debug("main camera dropped", zap.Stringer("object", r.mainCamera.object))
			r.mainCamera = nil
		}
	}
}

func (r *renderer) Track(h handle.Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h.IsZero() {
		return
	}
	if _, ok := r.trackedSet[h]; ok {
		return
	}
	r.trackedSet[h] = struct{}{}
	r.tracked = append(r.tracked, h)
}

func (r *renderer) Untrack(h handle.Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.trackedSet[h]; !ok {
		return
	}
	delete(r.trackedSet, h)
	for i, t := range r.tracked {
		if t == h {
			r.tracked = append(r.tracked[:i], r.tracked[i+1:]...)
			break
		}
	}
	if r.mainCamera != nil && r.mainCamera.object == h {
		r.mainCamera = nil
	}
}

func (r *renderer) Tracked() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tracked)
}

func (r *renderer) MainCamera() (camera.Camera, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.findMainCamera()
}

func (r *renderer) Resize(width, height int) {
	r.mu.Lock()
	r.width, r.height = width, height
	r.mu.Unlock()
	if r.overlay != nil {
		r.overlay.Resize(width, height)
	}
}

func (r *renderer) Stats() FrameStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

func (r *renderer) FrameErrors() []FrameError {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]FrameError(nil), r.frameErrors...)
}

func (r *renderer) Device() Device {
	return r.device
}

// findMainCamera returns the cached main camera, or caches the first camera component found in
// tracking order. Caller must hold the mutex.
func (r *renderer) findMainCamera() (camera.Camera, bool) {
	if r.mainCamera != nil {
		return r.mainCamera.camera, true
	}
	for _, h := range r.tracked {
		obj, ok := r.objects.Resolve(h)
		if !ok {
			continue
		}
		if cam := obj.Camera(); cam != nil {
			r.mainCamera = &mainCamera{object: h, camera: cam}
			r.log.Debug("main camera found", zap.Stringer("object", h), zap.String("name", obj.Name()))
			return cam, true
		}
	}
	return nil, false
}

// clearOnly clears the full default target. Caller must hold the mutex.
func (r *renderer) clearOnly(opts ClearOptions) error {
	r.resetPass()
	if err := r.device.BindRenderTarget(nil); err != nil {
		return errors.Wrap(err, "bind default target")
	}
	r.device.SetViewport(camera.Viewport{Width: r.width, Height: r.height})
	err := r.clear(opts)
	if uerr := r.device.UnbindRenderTarget(); uerr != nil && err == nil {
		err = errors.Wrap(uerr, "unbind default target")
	}
	return err
}

// resetPass clears everything a previous pass left behind. Caller must hold the mutex.
func (r *renderer) resetPass() {
	r.cache.Reset()
	r.queues.Reset()
	clear(r.frameErrors)
	r.frameErrors = r.frameErrors[:0]
	r.stats = FrameStats{}
}

func (r *renderer) clear(opts ClearOptions) error {
	if opts.Color != nil {
		r.device.SetClearColor(*opts.Color)
	}
	mask := opts.Mask()
	if mask == 0 {
		return nil
	}
	return errors.Wrap(r.device.Clear(mask), "clear")
}

// renderPass runs one full pass with cam. Caller must hold the mutex.
func (r *renderer) renderPass(cam camera.Camera, override material.Material, opts ClearOptions) error {
	if cam == nil {
		return errors.New("renderer: nil camera")
	}
	r.resetPass()

	target := cam.RenderTarget()
	if err := r.device.BindRenderTarget(target); err != nil {
		return errors.Wrap(err, "bind render target")
	}
	vp, ok := cam.Viewport()
	if !ok {
		vp = camera.Viewport{Width: r.width, Height: r.height}
		if target != nil {
			vp.Width, vp.Height = target.Size()
		}
	}
	r.device.SetViewport(vp)

	err := r.clear(opts)
	if err == nil {
		view := cam.ViewMatrix()
		projection := cam.ProjectionMatrix()
		f := &frame{
			eye:        cam.Eye(),
			view:       view,
			projection: projection,
			viewProj:   cam.ViewProjectionMatrix(),
			skyboxVP:   projection.Mul4(common.RotationOnly(view)),
			override:   override,
		}
		f.directional, f.points = r.resolveLights()

		frustum := cam.Frustum()
		for _, h := range r.tracked {
			obj, ok := r.objects.Resolve(h)
			if !ok {
				continue
			}
			gather(h, obj, f.eye, frustum, r.queues)
		}
		r.queues.Sort()

		r.stats.Surfaces = r.queues.SurfaceCount()
		r.stats.Opaque = r.queues.Count(material.QueueOpaque)
		r.stats.Skybox = r.queues.Count(material.QueueSkybox)
		r.stats.Transparent = r.queues.Count(material.QueueTransparent)
		r.stats.UI = r.queues.Count(material.QueueUI)

		err = r.submit(f)

		switches := r.cache.Stats()
		r.stats.ProgramSwitches = switches.Program
		r.stats.TextureSwitches = switches.Texture
		r.stats.MeshSwitches = switches.Mesh
	}

	if uerr := r.device.UnbindRenderTarget(); uerr != nil && err == nil {
		err = errors.Wrap(uerr, "unbind render target")
	}
	return err
}

// resolveLights picks the first enabled directional light, or the default light, and the first
// enabled point lights up to the configured maximum, in tracking order. Caller must hold the mutex.
func (r *renderer) resolveLights() (light.Light, []light.Light) {
	var directional light.Light
	points := r.pointLights[:0]
	for _, h := range r.tracked {
		if directional != nil && len(points) >= r.maxPointLights {
			break
		}
		obj, ok := r.objects.Resolve(h)
		if !ok || !obj.Enabled() {
			continue
		}
		l := obj.Light()
		if l == nil || !l.Enabled() {
			continue
		}
		switch l.Type() {
		case light.LightTypeDirectional:
			if directional == nil {
				directional = l
			}
		case light.LightTypePoint:
			if len(points) < r.maxPointLights {
				points = append(points, l)
			}
		}
	}
	if directional == nil {
		directional = r.defaultLight
	}
	r.pointLights = points
	return directional, points
}

// submit draws every bucket in queue order. Caller must hold the mutex.
func (r *renderer) submit(f *frame) error {
	for _, b := range r.queues.Buckets() {
		for i := range b.Commands {
			cmd := &b.Commands[i]
			err := r.draw(f, b, cmd)
			switch {
			case err == nil:
				r.stats.Draws++
				r.consecutive = 0
			case asset.IsNotReady(err):
				r.stats.SkippedNotReady++
			default:
				stage, cause := splitStage(err)
				r.frameErrors = append(r.frameErrors, FrameError{
					Queue:   b.Kind,
					Object:  cmd.Object,
					Surface: cmd.Surface,
					Stage:   stage,
					Err:     cause,
				})
				r.stats.Errors++
				r.consecutive++
				r.log.Warn("draw failed",
					zap.Error(cause),
					zap.String("queue", b.Kind.String()),
					zap.String("stage", string(stage)),
					zap.Uint64("surface", uint64(cmd.Surface.Geometry.ID())),
					zap.Stringer("object", cmd.Object),
				)
				if r.fatalThreshold > 0 && r.consecutive >= r.fatalThreshold {
					n := r.consecutive
					r.consecutive = 0
					r.log.Error("frame aborted", zap.Int("consecutive_failures", n), zap.Error(cause))
					return errors.Wrapf(ErrFrameAborted, "%d consecutive draw failures, last: %v", n, cause)
				}
			}
		}
	}
	return nil
}

// draw submits one command. The returned error is tagged with the failing stage.
func (r *renderer) draw(f *frame, b *Bucket, cmd *DrawCommand) error {
	mat := cmd.Surface.Material
	if f.override != nil {
		mat = f.override
	}

	state := material.State{}.Merge(b.State).Merge(mat.State())
	r.device.CommitState(state.Resolve())

	if err := r.setupMaterial(f, mat); err != nil {
		return err
	}

	geom := cmd.Surface.Geometry
	if err := r.cache.EnsureGeometry(geom, func() error {
		return r.device.BindGeometry(geom)
	}); err != nil {
		return atStage(StageGeometry, errors.Wrapf(err, "geometry %s", geom.Name()))
	}

	if err := r.setCameraUniforms(f, cmd.Model); err != nil {
		return atStage(StageUniforms, err)
	}
	if err := r.device.CommitUniforms(); err != nil {
		return atStage(StageUniforms, errors.Wrap(err, "commit uniforms"))
	}
	if err := r.device.Draw(); err != nil {
		return atStage(StageDraw, err)
	}
	r.device.UnbindGeometry()
	return nil
}

// setupMaterial binds mat's program, textures and parameters, and the lights when the program
// has not received them yet this pass. It does nothing when mat is already set up.
func (r *renderer) setupMaterial(f *frame, mat material.Material) error {
	if r.cache.MaterialBound(mat) {
		return nil
	}
	r.cache.ForgetMaterial()
	prog := mat.Program()
	if prog == nil {
		return atStage(StageProgram, errors.Errorf("material %s has no program", mat.Name()))
	}
	if err := r.cache.EnsureProgram(prog, func() error {
		return r.device.BindProgram(prog)
	}); err != nil {
		return atStage(StageProgram, errors.Wrapf(err, "program %s", prog.Name()))
	}

	for _, p := range mat.Params() {
		if p.Kind != material.ParamTexture {
			if err := r.device.SetUniform(p.Name, p.Value); err != nil {
				return atStage(StageParams, errors.Wrapf(err, "param %s", p.Name))
			}
			continue
		}
		if p.Texture == nil {
			return atStage(StageTexture, errors.Errorf("param %s has no texture", p.Name))
		}
		tex := p.Texture
		unit, err := r.cache.EnsureTextureUnit(tex, func(unit int) error {
			return r.device.BindTexture(tex, unit)
		})
		if err != nil {
			return atStage(StageTexture, errors.Wrapf(err, "texture %s", tex.Name()))
		}
		if err := r.device.SetUniform(p.Name, int32(unit)); err != nil {
			return atStage(StageParams, errors.Wrapf(err, "param %s", p.Name))
		}
	}

	if !r.cache.LightsCurrent(prog) {
		if err := r.bindLights(f); err != nil {
			return atStage(StageLights, err)
		}
		r.cache.MarkLights(prog)
	}
	r.cache.MarkMaterial(mat)
	return nil
}

// bindLights uploads the frame's lights in world space and in view space.
func (r *renderer) bindLights(f *frame) error {
	set := r.device.SetUniform
	ident := mgl32.Ident4()
	if err := f.directional.Bind(shader.UniformDirectional, ident, set); err != nil {
		return err
	}
	if err := f.directional.Bind(shader.UniformDirectionalView, f.view, set); err != nil {
		return err
	}
	for i, pl := range f.points {
		if err := pl.Bind(shader.PointLightName(shader.UniformPointLights, i), ident, set); err != nil {
			return err
		}
		if err := pl.Bind(shader.PointLightName(shader.UniformPointLightsView, i), f.view, set); err != nil {
			return err
		}
	}
	return errors.Wrap(set(shader.UniformPointLightCount, int32(len(f.points))), "bind point light count")
}

// setCameraUniforms uploads the per-draw transforms for world matrix m.
func (r *renderer) setCameraUniforms(f *frame, m mgl32.Mat4) error {
	uniforms := [...]struct {
		name  string
		value any
	}{
		{shader.UniformModelView, f.view.Mul4(m)},
		{shader.UniformProjection, f.projection},
		{shader.UniformViewProjection, f.viewProj},
		{shader.UniformSkyboxViewProj, f.skyboxVP},
		{shader.UniformNormalMatrix, common.NormalMatrix(m)},
		{shader.UniformModel, m},
		{shader.UniformViewPosition, f.eye},
	}
	for _, u := range uniforms {
		if err := r.device.SetUniform(u.name, u.value); err != nil {
			return errors.Wrapf(err, "uniform %s", u.name)
		}
	}
	return nil
}
