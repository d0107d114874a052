package light

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordSetter(into map[string]any) UniformSetter {
	return func(name string, value any) error {
		into[name] = value
		return nil
	}
}

func TestNewLightDefaults(t *testing.T) {
	l := NewLight(LightTypePoint)
	assert.Equal(t, LightTypePoint, l.Type())
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, l.Color())
	assert.Equal(t, float32(1), l.Intensity())
	assert.Equal(t, float32(10), l.Range())
	assert.True(t, l.Enabled())
	assert.Equal(t, "point", l.Type().String())
}

func TestSetDirectionNormalizes(t *testing.T) {
	l := NewLight(LightTypeDirectional, WithDirection(mgl32.Vec3{0, -4, 0}))
	assert.Equal(t, mgl32.Vec3{0, -1, 0}, l.Direction())

	l.SetDirection(mgl32.Vec3{})
	assert.Equal(t, mgl32.Vec3{}, l.Direction())
}

func TestBindDirectional(t *testing.T) {
	l := NewLight(LightTypeDirectional,
		WithDirection(mgl32.Vec3{1, 0, 0}),
		WithColor(mgl32.Vec3{1, 0.5, 0}),
		WithIntensity(2),
	)

	got := map[string]any{}
	require.NoError(t, l.Bind("uDirectionalLight", mgl32.Ident4(), recordSetter(got)))
	assert.Equal(t, map[string]any{
		"uDirectionalLight.direction": mgl32.Vec3{1, 0, 0},
		"uDirectionalLight.color":     mgl32.Vec3{1, 0.5, 0},
		"uDirectionalLight.intensity": float32(2),
	}, got)

	// a translation must not move a direction
	got = map[string]any{}
	require.NoError(t, l.Bind("uDirectionalLightVS", mgl32.Translate3D(5, 5, 5), recordSetter(got)))
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, got["uDirectionalLightVS.direction"])
}

func TestBindPoint(t *testing.T) {
	l := NewLight(LightTypePoint, WithPosition(mgl32.Vec3{1, 2, 3}), WithRange(7))

	got := map[string]any{}
	require.NoError(t, l.Bind("uPointLightsVS[0]", mgl32.Translate3D(0, 0, -10), recordSetter(got)))
	assert.Equal(t, mgl32.Vec3{1, 2, -7}, got["uPointLightsVS[0].position"])
	assert.Equal(t, float32(7), got["uPointLightsVS[0].range"])
	assert.Len(t, got, 4)
}

func TestBindPropagatesSetterError(t *testing.T) {
	l := NewLight(LightTypePoint)
	err := l.Bind("uPointLights[0]", mgl32.Ident4(), func(string, any) error {
		return errors.New("rejected")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "uPointLights[0]")
	assert.Contains(t, err.Error(), "rejected")
}

func TestDescriptor(t *testing.T) {
	require.NoError(t, DefaultDescriptor.Validate())

	l := FromDescriptor(DefaultDescriptor)
	assert.Equal(t, LightTypeDirectional, l.Type())
	assert.InDelta(t, 1, l.Direction().Len(), 1e-6)
	assert.Less(t, l.Direction().Y(), float32(0))

	assert.Error(t, Descriptor{Intensity: 1}.Validate())
	assert.Error(t, Descriptor{Direction: [3]float32{0, -1, 0}, Intensity: -1}.Validate())
}
