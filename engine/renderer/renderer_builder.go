package renderer

import (
	"github.com/Carmen-Shannon/oxy-render/engine/config"
	"github.com/Carmen-Shannon/oxy-render/engine/light"
	"go.uber.org/zap"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithConfig applies the render section of the engine configuration: queue order, texture unit
// capacity, point light limit, fatal error threshold and default light.
//
// Build cfg from config.Default().Render. Fields with no usable zero value (queue order, texture
// units, default light) keep the renderer's defaults when zero. A zero point light limit or fatal
// error threshold is applied as given: no point lights, never abort.
//
// Parameters:
//   - cfg: the render configuration
//
// Returns:
//   - RendererBuilderOption: a function that applies the configuration to a renderer
func WithConfig(cfg config.RenderConfig) RendererBuilderOption {
	return func(r *renderer) {
		if len(cfg.QueueOrder) > 0 {
			r.queueOrder = cfg.QueueOrder
		}
		if cfg.TextureUnits > 0 {
			r.textureUnits = cfg.TextureUnits
		}
		if cfg.MaxPointLights >= 0 {
			r.maxPointLights = cfg.MaxPointLights
		}
		if cfg.FatalErrorThreshold >= 0 {
			r.fatalThreshold = cfg.FatalErrorThreshold
		}
		if cfg.DefaultLight != (light.Descriptor{}) {
			r.defaultDesc = cfg.DefaultLight
		}
	}
}

// WithDefaultLight sets the directional light used when the scene has none, replacing the one
// built from the configured descriptor.
func WithDefaultLight(l light.Light) RendererBuilderOption {
	return func(r *renderer) {
		r.defaultLight = l
	}
}

// WithFatalErrorThreshold sets how many draws in a row may fail before a pass is aborted.
// Zero never aborts.
func WithFatalErrorThreshold(n int) RendererBuilderOption {
	return func(r *renderer) {
		r.fatalThreshold = max(n, 0)
	}
}

// WithTextureUnits sets the binding cache's texture unit capacity.
func WithTextureUnits(n int) RendererBuilderOption {
	return func(r *renderer) {
		if n > 0 {
			r.textureUnits = n
		}
	}
}

// WithAssets sets the asset system advanced in Begin.
//
// Parameters:
//   - assets: the asset system, usually an asset.Streamer
//
// Returns:
//   - RendererBuilderOption: a function that applies the option to a renderer
func WithAssets(assets AssetSystem) RendererBuilderOption {
	return func(r *renderer) {
		r.assets = assets
	}
}

// WithOverlay sets the UI overlay reset in Begin and resized in Resize.
func WithOverlay(o Overlay) RendererBuilderOption {
	return func(r *renderer) {
		r.overlay = o
	}
}

// WithScreenSize overrides the full-screen size reported by the device.
func WithScreenSize(width, height int) RendererBuilderOption {
	return func(r *renderer) {
		r.width, r.height = width, height
	}
}

// WithLogger sets the logger for draw failures and frame aborts.
func WithLogger(log *zap.Logger) RendererBuilderOption {
	return func(r *renderer) {
		if log != nil {
			r.log = log.Named("renderer")
		}
	}
}
