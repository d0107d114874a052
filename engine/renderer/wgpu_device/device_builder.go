package wgpu_device

import (
	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

// DeviceBuilderOption is a functional option for configuring a Device.
type DeviceBuilderOption func(*device)

// WithSize sets the size of the default target. Defaults to 1280x720.
//
// Parameters:
//   - width, height: size in pixels
//
// Returns:
//   - DeviceBuilderOption: option function to apply
func WithSize(width, height int) DeviceBuilderOption {
	return func(d *device) {
		d.width = width
		d.height = height
	}
}

// WithForceFallbackAdapter requests the software adapter, for machines without a GPU.
func WithForceFallbackAdapter(force bool) DeviceBuilderOption {
	return func(d *device) {
		d.forceFallbackAdapter = force
	}
}

// WithColorFormat sets the colour format of render targets. Defaults to RGBA8Unorm.
func WithColorFormat(format wgpu.TextureFormat) DeviceBuilderOption {
	return func(d *device) {
		d.colorFormat = format
	}
}

// WithTextureUnits sets how many texture units BindTexture accepts. Defaults to 16.
//
// Parameters:
//   - n: the number of units (minimum 1)
//
// Returns:
//   - DeviceBuilderOption: option function to apply
func WithTextureUnits(n int) DeviceBuilderOption {
	return func(d *device) {
		d.maxUnits = max(n, 1)
	}
}

// WithUniformRingSize sets the bytes of uniform data one target binding can commit. Every
// CommitUniforms takes a 256-byte aligned region. Defaults to 4 MiB.
func WithUniformRingSize(size uint64) DeviceBuilderOption {
	return func(d *device) {
		if size > 0 {
			d.ringSize = size
		}
	}
}

// WithSampler configures the shared sampler. Zero fields keep the defaults.
func WithSampler(data common.SamplerStagingData) DeviceBuilderOption {
	return func(d *device) {
		d.samplerData = data
	}
}

// WithLogger sets the logger for device events.
func WithLogger(l *zap.Logger) DeviceBuilderOption {
	return func(d *device) {
		if l != nil {
			d.log = l.Named("wgpu")
		}
	}
}
