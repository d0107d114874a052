package light

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// LightType identifies the kind of light source.
type LightType int

const (
	// LightTypeDirectional represents a light with no position, only direction.
	// Used for large distant sources like the sun or moon.
	LightTypeDirectional LightType = iota

	// LightTypePoint represents a light that emits in all directions from a position and
	// attenuates with distance up to a configurable range.
	LightTypePoint
)

func (t LightType) String() string {
	switch t {
	case LightTypeDirectional:
		return "directional"
	case LightTypePoint:
		return "point"
	default:
		return "unknown"
	}
}

// UniformSetter writes one named uniform value on the active program.
type UniformSetter func(name string, value any) error

// lightImpl is the implementation of the Light interface.
type lightImpl struct {
	lightType  LightType
	position   mgl32.Vec3
	direction  mgl32.Vec3
	color      mgl32.Vec3
	intensity  float32
	lightRange float32
	enabled    bool
}

// Light is the light component of a game object.
//
// The renderer picks the first enabled directional light and the first few enabled point lights
// in scene order each frame and binds them as program uniforms. Type-specific properties return
// zero values when not applicable.
type Light interface {
	// Type returns the kind of light source.
	//
	// Returns:
	//   - LightType: the light type (directional or point)
	Type() LightType

	// Position returns the world-space position of the light.
	// Meaningless for directional lights.
	//
	// Returns:
	//   - mgl32.Vec3: the position
	Position() mgl32.Vec3

	// Direction returns the normalized direction the light travels in.
	// Meaningless for point lights.
	//
	// Returns:
	//   - mgl32.Vec3: the direction
	Direction() mgl32.Vec3

	// Color returns the RGB color of the light.
	//
	// Returns:
	//   - mgl32.Vec3: color as (r, g, b)
	Color() mgl32.Vec3

	// Intensity returns the scalar intensity multiplier for the light.
	//
	// Returns:
	//   - float32: the intensity value
	Intensity() float32

	// Range returns the maximum attenuation distance of a point light.
	//
	// Returns:
	//   - float32: the range value
	Range() float32

	// Enabled returns whether this light participates in rendering.
	//
	// Returns:
	//   - bool: true if the light is enabled
	Enabled() bool

	// SetPosition sets the world-space position of the light.
	SetPosition(p mgl32.Vec3)

	// SetDirection sets the direction of the light and normalizes it.
	SetDirection(d mgl32.Vec3)

	// SetColor sets the RGB color of the light.
	SetColor(c mgl32.Vec3)

	// SetIntensity sets the scalar intensity multiplier.
	SetIntensity(intensity float32)

	// SetRange sets the maximum attenuation distance.
	SetRange(lightRange float32)

	// SetEnabled enables or disables the light for rendering.
	SetEnabled(enabled bool)

	// Bind writes the light's fields as uniforms under name, e.g. "uDirectionalLight.direction".
	// Positions and directions are transformed by xform first, so passing the view matrix binds
	// the light in view space and passing the identity binds it in world space.
	//
	// Parameters:
	//   - name: the struct uniform name
	//   - xform: transform applied to position and direction
	//   - set: writes one uniform
	//
	// Returns:
	//   - error: the first error returned by set
	Bind(name string, xform mgl32.Mat4, set UniformSetter) error
}

var _ Light = &lightImpl{}

// NewLight creates a new Light of the specified type with sensible defaults and
// any provided options applied.
//
// Parameters:
//   - lightType: the kind of light to create
//   - opts: variadic list of LightBuilderOption functions to configure the light
//
// Returns:
//   - Light: a new Light instance
func NewLight(lightType LightType, opts ...LightBuilderOption) Light {
	l := &lightImpl{
		lightType:  lightType,
		direction:  mgl32.Vec3{0, -1, 0},
		color:      mgl32.Vec3{1, 1, 1},
		intensity:  1.0,
		lightRange: 10.0,
		enabled:    true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *lightImpl) Type() LightType {
	return l.lightType
}

func (l *lightImpl) Position() mgl32.Vec3 {
	return l.position
}

func (l *lightImpl) Direction() mgl32.Vec3 {
	return l.direction
}

func (l *lightImpl) Color() mgl32.Vec3 {
	return l.color
}

func (l *lightImpl) Intensity() float32 {
	return l.intensity
}

func (l *lightImpl) Range() float32 {
	return l.lightRange
}

func (l *lightImpl) Enabled() bool {
	return l.enabled
}

func (l *lightImpl) SetPosition(p mgl32.Vec3) {
	l.position = p
}

func (l *lightImpl) SetDirection(d mgl32.Vec3) {
	l.direction = normalize3(d)
}

func (l *lightImpl) SetColor(c mgl32.Vec3) {
	l.color = c
}

func (l *lightImpl) SetIntensity(intensity float32) {
	l.intensity = intensity
}

func (l *lightImpl) SetRange(lightRange float32) {
	l.lightRange = lightRange
}

func (l *lightImpl) SetEnabled(enabled bool) {
	l.enabled = enabled
}

func (l *lightImpl) Bind(name string, xform mgl32.Mat4, set UniformSetter) error {
	type field struct {
		name  string
		value any
	}
	var fields []field
	switch l.lightType {
	case LightTypeDirectional:
		dir := normalize3(xform.Mul4x1(l.direction.Vec4(0)).Vec3())
		fields = []field{
			{"direction", dir},
			{"color", l.color},
			{"intensity", l.intensity},
		}
	case LightTypePoint:
		pos := mgl32.TransformCoordinate(l.position, xform)
		fields = []field{
			{"position", pos},
			{"color", l.color},
			{"intensity", l.intensity},
			{"range", l.lightRange},
		}
	default:
		return errors.Errorf("cannot bind light of type %d", l.lightType)
	}

	for _, f := range fields {
		if err := set(name+"."+f.name, f.value); err != nil {
			return errors.Wrapf(err, "bind %s", name)
		}
	}
	return nil
}
