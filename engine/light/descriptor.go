package light

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// Descriptor is the configuration form of the fallback directional light used when a scene
// has none.
type Descriptor struct {
	Direction [3]float32 `yaml:"direction"`
	Color     [3]float32 `yaml:"color"`
	Intensity float32    `yaml:"intensity"`
}

// DefaultDescriptor is a white light angled down and slightly to the side.
var DefaultDescriptor = Descriptor{
	Direction: [3]float32{-0.3, -1, -0.5},
	Color:     [3]float32{1, 1, 1},
	Intensity: 1,
}

// Validate checks that the descriptor describes a usable light.
func (d Descriptor) Validate() error {
	if mgl32.Vec3(d.Direction).Len() == 0 {
		return errors.New("default light direction must be non-zero")
	}
	if d.Intensity < 0 {
		return errors.Errorf("default light intensity %v is negative", d.Intensity)
	}
	return nil
}

// FromDescriptor builds a directional light from its configuration form.
//
// Parameters:
//   - d: the descriptor
//
// Returns:
//   - Light: a new directional light
func FromDescriptor(d Descriptor) Light {
	return NewLight(LightTypeDirectional,
		WithDirection(mgl32.Vec3(d.Direction)),
		WithColor(mgl32.Vec3(d.Color)),
		WithIntensity(d.Intensity),
	)
}
