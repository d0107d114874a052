package game_object

import (
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-render/engine/camera"
	"github.com/Carmen-Shannon/oxy-render/engine/light"
	"github.com/Carmen-Shannon/oxy-render/engine/model"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestNewGameObjectDefaults(t *testing.T) {
	g := NewGameObject()
	assert.True(t, g.Enabled())
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, g.Scale())
	assert.True(t, g.WorldMatrix().ApproxEqual(mgl32.Ident4()))
	assert.Nil(t, g.Mesh())
	assert.Nil(t, g.Light())
	assert.Nil(t, g.Camera())
	assert.Nil(t, g.Parent())
}

func TestWorldTransformFollowsParent(t *testing.T) {
	parent := NewGameObject(
		WithPosition(mgl32.Vec3{10, 0, 0}),
		WithScale(mgl32.Vec3{2, 2, 2}),
	)
	child := NewGameObject(
		WithParent(parent),
		WithPosition(mgl32.Vec3{1, 0, 0}),
		WithScale(mgl32.Vec3{1, 3, 1}),
	)

	assert.True(t, child.WorldPosition().ApproxEqual(mgl32.Vec3{12, 0, 0}))
	assert.Equal(t, mgl32.Vec3{2, 6, 2}, child.WorldScale())

	child.SetParent(nil)
	assert.True(t, child.WorldPosition().ApproxEqual(mgl32.Vec3{1, 0, 0}))
}

func TestRotationAndUpdate(t *testing.T) {
	g := NewGameObject(WithRotation(0, math.Pi/2, 0))
	// +X rotated a quarter turn around Y points to -Z
	v := g.Rotation().Rotate(mgl32.Vec3{1, 0, 0})
	assert.True(t, v.ApproxEqualThreshold(mgl32.Vec3{0, 0, -1}, 1e-5))

	g.SetRotation(mgl32.QuatIdent())
	g.SetRotationSpeed(mgl32.Vec3{0, math.Pi, 0})
	g.Update(0.5)
	v = g.Rotation().Rotate(mgl32.Vec3{1, 0, 0})
	assert.True(t, v.ApproxEqualThreshold(mgl32.Vec3{0, 0, -1}, 1e-5))
}

func TestComponents(t *testing.T) {
	m := model.NewMesh()
	l := light.NewLight(light.LightTypePoint)
	c := camera.NewCamera()

	g := NewGameObject(WithMesh(m), WithLight(l), WithCamera(c), WithName("thing"), WithEnabled(false))
	assert.Same(t, m, g.Mesh())
	assert.Equal(t, l, g.Light())
	assert.Equal(t, c, g.Camera())
	assert.Equal(t, "thing", g.Name())
	assert.False(t, g.Enabled())

	g.SetCamera(nil)
	assert.Nil(t, g.Camera())
}
