package engine

import (
	"time"

	"github.com/Carmen-Shannon/oxy-render/engine/asset"
	"github.com/Carmen-Shannon/oxy-render/engine/config"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer"
	"github.com/Carmen-Shannon/oxy-render/engine/scene"
	"go.uber.org/zap"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithConfig sets the configuration. Defaults to config.Default().
//
// Parameters:
//   - cfg: the configuration, validated by NewEngine
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithConfig(cfg config.Config) EngineBuilderOption {
	return func(e *engine) {
		e.cfg = cfg
	}
}

// WithLogger sets the root logger handed to every component.
func WithLogger(l *zap.Logger) EngineBuilderOption {
	return func(e *engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithScene uses s instead of a scene the engine creates. The caller keeps ownership.
//
// Parameters:
//   - s: the Scene to render
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithScene(s scene.Scene) EngineBuilderOption {
	return func(e *engine) {
		e.scene = s
	}
}

// WithAssets uses s instead of a streamer the engine creates. The caller keeps ownership.
func WithAssets(s asset.Streamer) EngineBuilderOption {
	return func(e *engine) {
		e.assets = s
	}
}

// WithOverlay sets the UI overlay the renderer resets every frame.
func WithOverlay(o renderer.Overlay) EngineBuilderOption {
	return func(e *engine) {
		e.overlay = o
	}
}

// WithRenderFrameLimit sets an optional render frame rate cap in frames per second,
// overriding engine.frame_limit. Pass 0 to keep the configured limit.
//
// Parameters:
//   - fps: maximum render frames per second
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			e.renderFrameLimit = 0
			return
		}
		e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
	}
}

// WithMaxFrames makes Run return after n frames. 0 runs until cancelled.
func WithMaxFrames(n uint64) EngineBuilderOption {
	return func(e *engine) {
		e.maxFrames = n
	}
}
