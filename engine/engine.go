package engine

import (
	"context"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-render/engine/asset"
	"github.com/Carmen-Shannon/oxy-render/engine/config"
	"github.com/Carmen-Shannon/oxy-render/engine/game_object"
	"github.com/Carmen-Shannon/oxy-render/engine/handle"
	"github.com/Carmen-Shannon/oxy-render/engine/logger"
	"github.com/Carmen-Shannon/oxy-render/engine/profiler"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer"
	"github.com/Carmen-Shannon/oxy-render/engine/scene"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// resizer is implemented by devices that own their default target.
type resizer interface {
	Resize(width, height int) error
}

// engine implements the Engine interface.
type engine struct {
	quitChannel chan struct{}
	quitOnce    sync.Once

	cfg     config.Config
	log     *zap.Logger
	device  renderer.Device
	scene   scene.Scene
	assets  asset.Streamer
	render  renderer.Renderer
	overlay renderer.Overlay
	clear   renderer.ClearOptions

	profiler         *profiler.Profiler
	profilingEnabled bool

	tickCallback   func(deltaTime float32)
	renderCallback func(deltaTime float32)

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
	maxFrames        uint64
	frames           uint64

	ownsScene  bool
	ownsAssets bool
}

// Engine owns a scene, an asset streamer and a renderer and drives them one frame at a time:
// tick callback, scene update, asset promotion, render, render callback, profiling.
type Engine interface {
	// Scene returns the scene objects are spawned into.
	Scene() scene.Scene

	// Renderer returns the frame orchestrator.
	Renderer() renderer.Renderer

	// Assets returns the streamer that loads textures and geometry off the frame loop.
	Assets() asset.Streamer

	// Logger returns the engine's root logger.
	Logger() *zap.Logger

	// NewGameObject creates an object, spawns it into the scene and tracks it in the renderer.
	//
	// Parameters:
	//   - options: functional options for the object
	//
	// Returns:
	//   - handle.Handle: the object's handle
	//   - game_object.GameObject: the object
	NewGameObject(options ...game_object.GameObjectBuilderOption) (handle.Handle, game_object.GameObject)

	// Destroy untracks and despawns the object addressed by h.
	//
	// Returns:
	//   - bool: true if a live object was removed
	Destroy(h handle.Handle) bool

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickCallback registers the function called at the start of every frame, before the
	// scene is updated. Use it for game logic.
	//
	// Parameters:
	//   - callback: receives the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderCallback registers the function called after the scene is rendered and before
	// the frame ends. Use it for overlay drawing.
	//
	// Parameters:
	//   - callback: receives the delta time in seconds
	SetRenderCallback(callback func(deltaTime float32))

	// SetRenderFrameLimit sets an optional frame rate cap in frames per second.
	// Pass 0 to uncap the loop (default).
	SetRenderFrameLimit(fps float64)

	// SetClearOptions replaces the clear applied to the main camera's pass.
	SetClearOptions(opts renderer.ClearOptions)

	// Resize resizes the device's default target, the renderer and the main camera's aspect.
	//
	// Returns:
	//   - error: an error if the device cannot resize
	Resize(width, height int) error

	// Frame runs one frame with the given delta time.
	//
	// Parameters:
	//   - dt: elapsed time in seconds
	//
	// Returns:
	//   - error: the render error, if the pass was aborted
	Frame(dt float32) error

	// Frames returns the number of frames run.
	Frames() uint64

	// Run runs frames until ctx is cancelled, Quit is called or the configured frame count is
	// reached. Aborted passes are logged and the loop continues.
	//
	// Returns:
	//   - error: ctx's error if it was cancelled, or an error if a frame panicked
	Run(ctx context.Context) error

	// Quit stops Run. Safe to call multiple times; subsequent calls are no-ops.
	Quit()

	// Close stops the scene's update pool and the streamer if the engine created them.
	Close()
}

var _ Engine = &engine{}

// NewEngine creates an Engine drawing through device. Without WithScene or WithAssets the
// engine creates and owns them, sized from the configuration.
//
// Parameters:
//   - device: the graphics device
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
//   - error: an error if the configuration is invalid or the renderer cannot be built
func NewEngine(device renderer.Device, options ...EngineBuilderOption) (Engine, error) {
	if device == nil {
		return nil, errors.New("engine: nil device")
	}
	e := &engine{
		quitChannel: make(chan struct{}),
		cfg:         config.Default(),
		log:         logger.Nop(),
		device:      device,
	}
	for _, opt := range options {
		opt(e)
	}
	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}

	e.clear = renderer.ClearOptionsFromConfig(e.cfg.Render.Clear)
	e.profilingEnabled = e.profilingEnabled || e.cfg.Engine.Profiling
	if e.renderFrameLimit == 0 && e.cfg.Engine.FrameLimit > 0 {
		e.renderFrameLimit = time.Second / time.Duration(e.cfg.Engine.FrameLimit)
	}
	e.profiler = profiler.NewProfiler(
		profiler.WithInterval(e.cfg.Engine.ProfileInterval),
		profiler.WithLogger(e.log),
	)

	if e.scene == nil {
		e.scene = scene.NewScene(scene.WithLogger(e.log))
		e.ownsScene = true
	}
	if e.assets == nil {
		e.assets = asset.NewStreamer(
			asset.WithWorkers(e.cfg.Assets.Workers),
			asset.WithQueueSize(e.cfg.Assets.QueueSize),
			asset.WithLogger(e.log),
		)
		e.ownsAssets = true
	}

	rendererOptions := []renderer.RendererBuilderOption{
		renderer.WithConfig(e.cfg.Render),
		renderer.WithAssets(e.assets),
		renderer.WithLogger(e.log),
	}
	if e.overlay != nil {
		rendererOptions = append(rendererOptions, renderer.WithOverlay(e.overlay))
	}
	r, err := renderer.NewRenderer(device, e.scene, rendererOptions...)
	if err != nil {
		e.Close()
		return nil, errors.Wrap(err, "create renderer")
	}
	e.render = r

	e.log.Named("engine").Info("engine ready",
		zap.Duration("frame_limit", e.renderFrameLimit),
		zap.Bool("profiling", e.profilingEnabled),
		zap.Uint64("max_frames", e.maxFrames),
	)
	return e, nil
}

func (e *engine) Scene() scene.Scene {
	return e.scene
}

func (e *engine) Renderer() renderer.Renderer {
	return e.render
}

func (e *engine) Assets() asset.Streamer {
	return e.assets
}

func (e *engine) Logger() *zap.Logger {
	return e.log
}

func (e *engine) NewGameObject(options ...game_object.GameObjectBuilderOption) (handle.Handle, game_object.GameObject) {
	obj := game_object.NewGameObject(options...)
	h := e.scene.Spawn(obj)
	e.render.Track(h)
	return h, obj
}

func (e *engine) Destroy(h handle.Handle) bool {
	e.render.Untrack(h)
	return e.scene.Despawn(h)
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

func (e *engine) SetRenderCallback(callback func(deltaTime float32)) {
	e.renderCallback = callback
}

// SetRenderFrameLimit sets an optional render frame rate cap.
// Pass 0 to uncap the render loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}

func (e *engine) SetClearOptions(opts renderer.ClearOptions) {
	e.clear = opts
}

func (e *engine) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return errors.Errorf("resize to %dx%d: size must be positive", width, height)
	}
	if d, ok := e.device.(resizer); ok {
		if err := d.Resize(width, height); err != nil {
			return errors.Wrap(err, "resize device")
		}
	}
	e.render.Resize(width, height)
	if cam, ok := e.render.MainCamera(); ok && cam.RenderTarget() == nil {
		cam.SetAspect(float32(width) / float32(height))
	}
	return nil
}

func (e *engine) Frame(dt float32) error {
	if e.tickCallback != nil {
		e.tickCallback(dt)
	}
	e.scene.Update(dt)

	e.render.Begin()
	err := e.render.Render(e.clear)
	stats := e.render.Stats()
	if e.renderCallback != nil {
		e.renderCallback(dt)
	}
	e.render.End()
	e.frames++

	e.profiler.Record(stats)
	if e.profilingEnabled {
		e.profiler.Tick()
	}
	return err
}

func (e *engine) Frames() uint64 {
	return e.frames
}

func (e *engine) Run(ctx context.Context) (err error) {
	log := e.log.Named("engine")
	// Recover from panics inside a frame to shut down cleanly instead of crashing the process.
	defer func() {
		if r := recover(); r != nil {
			log.Error("frame loop recovered from panic", zap.Any("panic", r))
			e.signalQuit()
			err = errors.Errorf("frame loop panic: %v", r)
		}
	}()

	lastFrame := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-e.quitChannel:
			return nil
		default:
		}
		if e.maxFrames > 0 && e.frames >= e.maxFrames {
			log.Info("frame count reached", zap.Uint64("frames", e.frames))
			return nil
		}

		now := time.Now()
		dt := float32(now.Sub(lastFrame).Seconds())
		lastFrame = now

		if frameErr := e.Frame(dt); frameErr != nil {
			log.Warn("frame aborted", zap.Error(frameErr), zap.Uint64("frame", e.frames))
		}

		if e.renderFrameLimit > 0 {
			if remaining := e.renderFrameLimit - time.Since(lastFrame); remaining > 0 {
				timer := time.NewTimer(remaining)
				select {
				case <-ctx.Done():
					timer.Stop()
					return ctx.Err()
				case <-e.quitChannel:
					timer.Stop()
					return nil
				case <-timer.C:
				}
			}
		}
	}
}

// Quit signals Run to stop.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

func (e *engine) Close() {
	if e.ownsAssets && e.assets != nil {
		e.assets.Close()
	}
	if e.ownsScene && e.scene != nil {
		e.scene.Close()
	}
}
