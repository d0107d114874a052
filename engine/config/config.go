// Package config loads the engine's YAML configuration.
package config

import (
	"bytes"
	"io"
	"os"
	"time"

	"github.com/Carmen-Shannon/oxy-render/engine/light"
	"github.com/Carmen-Shannon/oxy-render/engine/logger"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer/material"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid")

// Config is the root of the YAML document.
type Config struct {
	Engine EngineConfig  `yaml:"engine"`
	Render RenderConfig  `yaml:"render"`
	Assets AssetConfig   `yaml:"assets"`
	Log    logger.Config `yaml:"log"`
}

// EngineConfig controls the main loop.
type EngineConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	// FrameLimit caps frames per second; 0 runs uncapped.
	FrameLimit int `yaml:"frame_limit"`
	// Profiling logs frame rate, memory and frame statistics every ProfileInterval.
	Profiling       bool          `yaml:"profiling"`
	ProfileInterval time.Duration `yaml:"profile_interval"`
}

// RenderConfig controls the frame orchestrator.
type RenderConfig struct {
	// QueueOrder is the bucket submission order. It must list every queue exactly once.
	QueueOrder []material.RenderQueue `yaml:"queue_order"`
	// TextureUnits is the capacity of the binding cache's texture unit ring.
	TextureUnits int `yaml:"texture_units"`
	// MaxPointLights is how many point lights are bound per pass.
	MaxPointLights int `yaml:"max_point_lights"`
	// FatalErrorThreshold aborts a pass after this many consecutive failed draws; 0 never aborts.
	FatalErrorThreshold int              `yaml:"fatal_error_threshold"`
	Clear               ClearConfig      `yaml:"clear"`
	DefaultLight        light.Descriptor `yaml:"default_light"`
}

// ClearConfig is the default clear applied by Render.
type ClearConfig struct {
	// Color is the clear colour; nil leaves the device's current clear colour.
	Color   *[4]float32 `yaml:"color"`
	ColorOn bool        `yaml:"clear_color"`
	DepthOn bool        `yaml:"clear_depth"`
	Stencil bool        `yaml:"clear_stencil"`
}

// AssetConfig sizes the asset streamer's worker pool.
type AssetConfig struct {
	Workers   int `yaml:"workers"`
	QueueSize int `yaml:"queue_size"`
}

// Default returns the configuration used for any field a document leaves out.
func Default() Config {
	return Config{
		Engine: EngineConfig{
			Width:           1280,
			Height:          720,
			ProfileInterval: time.Second,
		},
		Render: RenderConfig{
			QueueOrder:          append([]material.RenderQueue(nil), material.DefaultQueueOrder...),
			TextureUnits:        8,
			MaxPointLights:      4,
			FatalErrorThreshold: 8,
			Clear: ClearConfig{
				Color:   &[4]float32{0.3, 0.3, 0.3, 1},
				ColorOn: true,
				DepthOn: true,
			},
			DefaultLight: light.DefaultDescriptor,
		},
		Assets: AssetConfig{
			Workers:   2,
			QueueSize: 256,
		},
		Log: logger.Config{Level: "info"},
	}
}

// Load reads and validates the YAML file at path.
//
// Parameters:
//   - path: the file to read
//
// Returns:
//   - Config: the configuration, defaults filled in
//   - error: an error if the file cannot be read, parsed or validated
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "read config %s", path)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Parse decodes a YAML document over Default and validates the result. Unknown keys are rejected.
//
// Parameters:
//   - data: the YAML document
//
// Returns:
//   - Config: the configuration
//   - error: an error if decoding or validation fails
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, errors.Wrap(err, "decode yaml")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every section. Failures wrap ErrInvalid.
func (c Config) Validate() error {
	if c.Engine.Width <= 0 || c.Engine.Height <= 0 {
		return errors.Wrapf(ErrInvalid, "engine size %dx%d must be positive", c.Engine.Width, c.Engine.Height)
	}
	if c.Engine.FrameLimit < 0 {
		return errors.Wrapf(ErrInvalid, "engine.frame_limit %d is negative", c.Engine.FrameLimit)
	}
	if c.Engine.Profiling && c.Engine.ProfileInterval <= 0 {
		return errors.Wrap(ErrInvalid, "engine.profile_interval must be positive when profiling")
	}
	if err := material.ValidateOrder(c.Render.QueueOrder); err != nil {
		return errors.Wrapf(ErrInvalid, "render.queue_order: %v", err)
	}
	if c.Render.TextureUnits < 1 {
		return errors.Wrapf(ErrInvalid, "render.texture_units %d must be at least 1", c.Render.TextureUnits)
	}
	if c.Render.MaxPointLights < 0 {
		return errors.Wrapf(ErrInvalid, "render.max_point_lights %d is negative", c.Render.MaxPointLights)
	}
	if c.Render.FatalErrorThreshold < 0 {
		return errors.Wrapf(ErrInvalid, "render.fatal_error_threshold %d is negative", c.Render.FatalErrorThreshold)
	}
	if err := c.Render.DefaultLight.Validate(); err != nil {
		return errors.Wrapf(ErrInvalid, "render.default_light: %v", err)
	}
	if c.Assets.Workers < 1 || c.Assets.QueueSize < 1 {
		return errors.Wrap(ErrInvalid, "assets.workers and assets.queue_size must be at least 1")
	}
	return nil
}
