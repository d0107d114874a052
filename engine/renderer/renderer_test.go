package renderer

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-render/engine/camera"
	"github.com/Carmen-Shannon/oxy-render/engine/config"
	"github.com/Carmen-Shannon/oxy-render/engine/game_object"
	"github.com/Carmen-Shannon/oxy-render/engine/handle"
	"github.com/Carmen-Shannon/oxy-render/engine/light"
	"github.com/Carmen-Shannon/oxy-render/engine/model"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer/texture"
	"github.com/Carmen-Shannon/oxy-render/engine/scene"
	"github.com/davecgh/go-spew/spew"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fixture struct {
	t      *testing.T
	scene  scene.Scene
	device *fakeDevice
	r      Renderer
}

func newFixture(t *testing.T, opts ...RendererBuilderOption) *fixture {
	t.Helper()
	s := scene.NewScene(scene.WithUpdateWorkers(1))
	t.Cleanup(s.Close)
	d := newFakeDevice()
	opts = append([]RendererBuilderOption{WithLogger(zaptest.NewLogger(t))}, opts...)
	r, err := NewRenderer(d, s, opts...)
	require.NoError(t, err)
	return &fixture{t: t, scene: s, device: d, r: r}
}

func (f *fixture) spawn(opts ...game_object.GameObjectBuilderOption) handle.Handle {
	h := f.scene.Spawn(game_object.NewGameObject(opts...))
	f.r.Track(h)
	return h
}

func (f *fixture) spawnCamera(opts ...camera.CameraBuilderOption) camera.Camera {
	cam := camera.NewCamera(opts...)
	f.spawn(game_object.WithName("camera"), game_object.WithCamera(cam))
	return cam
}

func (f *fixture) render() {
	f.t.Helper()
	require.NoError(f.t, f.r.Render(DefaultClearOptions()))
}

func newMaterial(q material.RenderQueue, opts ...material.MaterialBuilderOption) material.Material {
	opts = append([]material.MaterialBuilderOption{
		material.WithQueue(q),
		material.WithProgram(shader.NewProgram(q.String())),
	}, opts...)
	return material.NewMaterial(opts...)
}

func cubeMesh(mat material.Material, geomOpts ...model.GeometryBuilderOption) *model.Mesh {
	geomOpts = append(geomOpts, model.WithVertices(model.Cube(1)))
	return model.NewMesh(&model.Surface{
		Geometry: model.NewGeometry("cube", geomOpts...),
		Material: mat,
	})
}

func drawZ(draws []drawRecord) []float32 {
	out := make([]float32, len(draws))
	for i, d := range draws {
		out[i] = d.Model[14]
	}
	return out
}

func TestRenderer_SingleOpaqueObject(t *testing.T) {
	f := newFixture(t)
	f.spawnCamera()
	f.spawn(
		game_object.WithMesh(cubeMesh(newMaterial(material.QueueOpaque))),
		game_object.WithPosition(mgl32.Vec3{0, 0, -10}),
	)

	f.render()

	stats := f.r.Stats()
	assert.Equal(t, 1, stats.Surfaces)
	assert.Equal(t, 1, stats.Opaque)
	assert.Equal(t, 0, stats.Transparent)
	assert.Equal(t, 1, stats.Draws)
	assert.Equal(t, 1, stats.ProgramSwitches)
	assert.Equal(t, 1, stats.MeshSwitches)
	assert.Empty(t, f.r.FrameErrors())

	want := mgl32.Vec3(light.DefaultDescriptor.Direction).Normalize()
	got, ok := f.device.uniforms[shader.Field(shader.UniformDirectional, "direction")].(mgl32.Vec3)
	require.True(t, ok, spew.Sdump(f.device.uniforms))
	assert.True(t, want.ApproxEqual(got), "default light direction %v, got %v", want, got)
	assert.Equal(t, int32(0), f.device.uniforms[shader.UniformPointLightCount])

	require.NotEmpty(t, f.device.calls)
	assert.Equal(t, []string{"bind_target", "viewport", "clear_color", "clear"}, f.device.calls[:4])
	assert.Equal(t, "unbind_target", f.device.calls[len(f.device.calls)-1])
	assert.Equal(t, camera.Viewport{Width: 800, Height: 600}, f.device.viewports[0])
	assert.Equal(t, []ClearMask{ClearColorBuffer | ClearDepthBuffer}, f.device.clears)
}

func TestRenderer_InactiveObject(t *testing.T) {
	f := newFixture(t)
	f.spawnCamera()
	f.spawn(
		game_object.WithEnabled(false),
		game_object.WithMesh(cubeMesh(newMaterial(material.QueueOpaque))),
		game_object.WithPosition(mgl32.Vec3{0, 0, -10}),
	)

	f.render()

	assert.Zero(t, f.r.Stats().Surfaces)
	assert.Empty(t, f.device.draws)
}

func TestRenderer_QueueSubmissionOrder(t *testing.T) {
	kinds := []material.RenderQueue{material.QueueUI, material.QueueTransparent, material.QueueSkybox, material.QueueOpaque}

	t.Run("default order", func(t *testing.T) {
		f := newFixture(t)
		f.spawnCamera()
		programs := make(map[material.RenderQueue]handle.ID)
		for _, k := range kinds {
			mat := newMaterial(k)
			programs[k] = mat.Program().ID()
			f.spawn(game_object.WithMesh(cubeMesh(mat)), game_object.WithPosition(mgl32.Vec3{0, 0, -5}))
		}

		f.render()

		require.Len(t, f.device.draws, 4, spew.Sdump(f.device.draws))
		for i, k := range material.DefaultQueueOrder {
			assert.Equal(t, programs[k], f.device.draws[i].Program, "draw %d should be %s", i, k)
		}

		sky := f.device.draws[1].State
		assert.False(t, sky.DepthWrite)
		assert.Equal(t, material.DepthLessEqual, sky.DepthTest)
		assert.False(t, f.device.draws[2].State.DepthWrite)
		assert.True(t, f.device.draws[0].State.DepthWrite)
	})

	t.Run("configured order", func(t *testing.T) {
		cfg := config.Default().Render
		cfg.QueueOrder = []material.RenderQueue{material.QueueUI, material.QueueTransparent, material.QueueSkybox, material.QueueOpaque}
		f := newFixture(t, WithConfig(cfg))
		f.spawnCamera()
		programs := make(map[material.RenderQueue]handle.ID)
		for _, k := range material.DefaultQueueOrder {
			mat := newMaterial(k)
			programs[k] = mat.Program().ID()
			f.spawn(game_object.WithMesh(cubeMesh(mat)), game_object.WithPosition(mgl32.Vec3{0, 0, -5}))
		}

		f.render()

		require.Len(t, f.device.draws, 4)
		for i, k := range cfg.QueueOrder {
			assert.Equal(t, programs[k], f.device.draws[i].Program, "draw %d should be %s", i, k)
		}
	})
}

func TestRenderer_DistanceOrdering(t *testing.T) {
	f := newFixture(t)
	f.spawnCamera()
	opaque := newMaterial(material.QueueOpaque)
	trans := newMaterial(material.QueueTransparent)
	for _, z := range []float32{-20, -5, -12} {
		f.spawn(game_object.WithMesh(cubeMesh(opaque)), game_object.WithPosition(mgl32.Vec3{0, 0, z}))
		f.spawn(game_object.WithMesh(cubeMesh(trans)), game_object.WithPosition(mgl32.Vec3{0, 0, z}))
	}

	f.render()

	require.Len(t, f.device.draws, 6, spew.Sdump(f.device.draws))
	assert.Equal(t, []float32{-5, -12, -20, -20, -12, -5}, drawZ(f.device.draws))
}

func TestRenderer_Culling(t *testing.T) {
	behind := mgl32.Vec3{0, 0, 10}

	tests := []struct {
		name     string
		queue    material.RenderQueue
		position mgl32.Vec3
		scale    float32
		noBounds bool
		drawn    bool
	}{
		{name: "inside frustum", queue: material.QueueOpaque, position: mgl32.Vec3{0, 0, -10}, drawn: true},
		{name: "behind camera", queue: material.QueueOpaque, position: behind},
		{name: "beyond far plane", queue: material.QueueTransparent, position: mgl32.Vec3{0, 0, -200}},
		{name: "skybox is never culled", queue: material.QueueSkybox, position: behind, drawn: true},
		{name: "ui is never culled", queue: material.QueueUI, position: behind, drawn: true},
		{name: "no bounds is never culled", queue: material.QueueOpaque, position: behind, noBounds: true, drawn: true},
		{name: "small object just behind near plane", queue: material.QueueOpaque, position: mgl32.Vec3{0, 0, 2}},
		{name: "world scale grows the sphere", queue: material.QueueOpaque, position: mgl32.Vec3{0, 0, 2}, scale: 10, drawn: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.spawnCamera()
			var geomOpts []model.GeometryBuilderOption
			if tt.noBounds {
				geomOpts = append(geomOpts, model.WithoutBounds())
			}
			opts := []game_object.GameObjectBuilderOption{
				game_object.WithMesh(cubeMesh(newMaterial(tt.queue), geomOpts...)),
				game_object.WithPosition(tt.position),
			}
			if tt.scale != 0 {
				opts = append(opts, game_object.WithScale(mgl32.Vec3{tt.scale, tt.scale, tt.scale}))
			}
			f.spawn(opts...)

			f.render()

			want := 0
			if tt.drawn {
				want = 1
			}
			assert.Equal(t, want, f.r.Stats().Surfaces)
			assert.Len(t, f.device.draws, want)
		})
	}
}

func TestRenderer_BindElision(t *testing.T) {
	t.Run("shared material binds program once", func(t *testing.T) {
		f := newFixture(t)
		f.spawnCamera()
		mat := newMaterial(material.QueueOpaque)
		f.spawn(game_object.WithMesh(cubeMesh(mat)), game_object.WithPosition(mgl32.Vec3{0, 0, -5}))
		f.spawn(game_object.WithMesh(cubeMesh(mat)), game_object.WithPosition(mgl32.Vec3{0, 0, -8}))

		f.render()

		stats := f.r.Stats()
		assert.Equal(t, 2, stats.Draws)
		assert.Equal(t, 1, stats.ProgramSwitches)
		assert.Equal(t, 2, stats.MeshSwitches)
		assert.Equal(t, 1, f.device.count("bind_program"))
	})

	t.Run("distinct programs bind twice", func(t *testing.T) {
		f := newFixture(t)
		f.spawnCamera()
		f.spawn(game_object.WithMesh(cubeMesh(newMaterial(material.QueueOpaque))), game_object.WithPosition(mgl32.Vec3{0, 0, -5}))
		f.spawn(game_object.WithMesh(cubeMesh(newMaterial(material.QueueOpaque))), game_object.WithPosition(mgl32.Vec3{0, 0, -8}))

		f.render()

		assert.Equal(t, 2, f.r.Stats().ProgramSwitches)
	})

	t.Run("shared mesh binds geometry once", func(t *testing.T) {
		f := newFixture(t)
		f.spawnCamera()
		mesh := cubeMesh(newMaterial(material.QueueOpaque))
		f.spawn(game_object.WithMesh(mesh), game_object.WithPosition(mgl32.Vec3{0, 0, -5}))
		f.spawn(game_object.WithMesh(mesh), game_object.WithPosition(mgl32.Vec3{0, 0, -8}))

		f.render()

		stats := f.r.Stats()
		assert.Equal(t, 2, stats.Draws)
		assert.Equal(t, 1, stats.MeshSwitches)
		assert.Equal(t, 1, f.device.count("bind_geometry"))
		assert.Equal(t, 2, f.device.count("unbind_geometry"))
	})

	t.Run("texture params bind once per material", func(t *testing.T) {
		f := newFixture(t)
		f.spawnCamera()
		tex := solidTexture("albedo")
		mat := newMaterial(material.QueueOpaque, material.WithTexture("uAlbedo", tex))
		f.spawn(game_object.WithMesh(cubeMesh(mat)), game_object.WithPosition(mgl32.Vec3{0, 0, -5}))
		f.spawn(game_object.WithMesh(cubeMesh(mat)), game_object.WithPosition(mgl32.Vec3{0, 0, -8}))

		f.render()

		assert.Equal(t, 1, f.r.Stats().TextureSwitches)
		assert.Equal(t, 1, f.device.count("bind_texture"))
		assert.Equal(t, int32(0), f.device.uniforms["uAlbedo"])
		assert.Equal(t, tex.ID(), f.device.textures[0])
	})

	t.Run("cache is reset every pass", func(t *testing.T) {
		f := newFixture(t)
		f.spawnCamera()
		f.spawn(game_object.WithMesh(cubeMesh(newMaterial(material.QueueOpaque))), game_object.WithPosition(mgl32.Vec3{0, 0, -5}))

		f.render()
		f.render()

		assert.Equal(t, 2, f.device.count("bind_program"))
		assert.Equal(t, 1, f.r.Stats().ProgramSwitches)
	})
}

func TestRenderer_MaterialSetup(t *testing.T) {
	red := mgl32.Vec4{1, 0, 0, 1}
	green := mgl32.Vec4{0, 1, 0, 1}
	at := func(z float32) game_object.GameObjectBuilderOption {
		return game_object.WithPosition(mgl32.Vec3{0, 0, z})
	}

	t.Run("same material is set up once", func(t *testing.T) {
		f := newFixture(t)
		f.spawnCamera()
		mat := newMaterial(material.QueueOpaque,
			material.WithBaseColor(red),
			material.WithTexture("uAlbedo", solidTexture("albedo")),
		)
		f.spawn(game_object.WithMesh(cubeMesh(mat)), at(-5))
		f.spawn(game_object.WithMesh(cubeMesh(mat)), at(-6))

		f.render()

		assert.Equal(t, 2, f.r.Stats().Draws)
		assert.Equal(t, 1, f.device.uploads["uBaseColor"])
		assert.Equal(t, 1, f.device.uploads["uAlbedo"])
		assert.Equal(t, 1, f.device.uploads[shader.UniformPointLightCount])
		assert.Equal(t, 1, f.device.count("bind_texture"))
		assert.Equal(t, 2, f.device.uploads[shader.UniformModel])
	})

	t.Run("materials sharing a program upload lights once", func(t *testing.T) {
		f := newFixture(t)
		f.spawnCamera()
		prog := shader.NewProgram("lit")
		a := material.NewMaterial(material.WithProgram(prog), material.WithBaseColor(red))
		b := material.NewMaterial(material.WithProgram(prog), material.WithBaseColor(green))
		f.spawn(game_object.WithMesh(cubeMesh(a)), at(-5))
		f.spawn(game_object.WithMesh(cubeMesh(b)), at(-6))

		f.render()

		assert.Equal(t, 2, f.r.Stats().Draws)
		assert.Equal(t, 1, f.r.Stats().ProgramSwitches)
		assert.Equal(t, 2, f.device.uploads["uBaseColor"])
		assert.Equal(t, 1, f.device.uploads[shader.UniformPointLightCount])
	})

	t.Run("returning to a program uploads lights again", func(t *testing.T) {
		f := newFixture(t)
		f.spawnCamera()
		a := newMaterial(material.QueueOpaque)
		b := newMaterial(material.QueueOpaque)
		f.spawn(game_object.WithMesh(cubeMesh(a)), at(-5))
		f.spawn(game_object.WithMesh(cubeMesh(b)), at(-6))
		f.spawn(game_object.WithMesh(cubeMesh(a)), at(-7))

		f.render()

		assert.Equal(t, 3, f.r.Stats().ProgramSwitches)
		assert.Equal(t, 3, f.device.uploads[shader.UniformPointLightCount])
	})

	t.Run("half set up material is set up again", func(t *testing.T) {
		f := newFixture(t)
		f.spawnCamera()
		a := newMaterial(material.QueueOpaque, material.WithBaseColor(red))
		b := newMaterial(material.QueueOpaque,
			material.WithBaseColor(green),
			material.WithTexture("uAlbedo", texture.NewTexture("streaming")),
		)
		f.spawn(game_object.WithMesh(cubeMesh(a)), at(-5))
		f.spawn(game_object.WithMesh(cubeMesh(b)), at(-6))
		f.spawn(game_object.WithMesh(cubeMesh(a)), at(-7))

		f.render()

		stats := f.r.Stats()
		assert.Equal(t, 1, stats.SkippedNotReady)
		require.Len(t, f.device.draws, 2, spew.Sdump(f.device.calls))
		for _, d := range f.device.draws {
			assert.Equal(t, a.Program().ID(), d.Program)
		}
		assert.Equal(t, 3, f.device.count("bind_program"))
		assert.Equal(t, red, f.device.uniforms["uBaseColor"])
	})

	t.Run("half set up material on a shared program is set up again", func(t *testing.T) {
		f := newFixture(t)
		f.spawnCamera()
		prog := shader.NewProgram("lit")
		a := material.NewMaterial(material.WithProgram(prog), material.WithBaseColor(red))
		b := material.NewMaterial(material.WithProgram(prog),
			material.WithBaseColor(green),
			material.WithTexture("uAlbedo", texture.NewTexture("streaming")),
		)
		f.spawn(game_object.WithMesh(cubeMesh(a)), at(-5))
		f.spawn(game_object.WithMesh(cubeMesh(b)), at(-6))
		f.spawn(game_object.WithMesh(cubeMesh(a)), at(-7))

		f.render()

		assert.Equal(t, 1, f.r.Stats().SkippedNotReady)
		assert.Len(t, f.device.draws, 2)
		assert.Equal(t, 3, f.device.uploads["uBaseColor"])
		assert.Equal(t, red, f.device.uniforms["uBaseColor"])
	})
}

func TestRenderer_NotReadySkipped(t *testing.T) {
	f := newFixture(t)
	f.spawnCamera()
	pending := material.NewMaterial(material.WithProgram(shader.NewProgram("pending", shader.WithPending())))
	f.spawn(game_object.WithMesh(cubeMesh(pending)), game_object.WithPosition(mgl32.Vec3{0, 0, -5}))
	f.spawn(
		game_object.WithMesh(model.NewMesh(&model.Surface{
			Geometry: model.NewGeometry("loading", model.WithBounds(model.Sphere{Radius: 1})),
			Material: newMaterial(material.QueueOpaque),
		})),
		game_object.WithPosition(mgl32.Vec3{0, 0, -6}),
	)
	f.spawn(game_object.WithMesh(cubeMesh(newMaterial(material.QueueOpaque))), game_object.WithPosition(mgl32.Vec3{0, 0, -7}))

	f.render()

	stats := f.r.Stats()
	assert.Equal(t, 3, stats.Surfaces)
	assert.Equal(t, 2, stats.SkippedNotReady)
	assert.Equal(t, 1, stats.Draws)
	assert.Zero(t, stats.Errors)
	assert.Empty(t, f.r.FrameErrors())
}

func TestRenderer_FatalErrors(t *testing.T) {
	spawnThree := func(f *fixture) {
		f.spawnCamera()
		for _, z := range []float32{-5, -6, -7} {
			f.spawn(game_object.WithMesh(cubeMesh(newMaterial(material.QueueOpaque))), game_object.WithPosition(mgl32.Vec3{0, 0, z}))
		}
	}
	deviceLost := errors.New("device lost")

	t.Run("errors are collected and the pass continues", func(t *testing.T) {
		f := newFixture(t, WithFatalErrorThreshold(0))
		spawnThree(f)
		f.device.failDraw = deviceLost

		f.render()

		errs := f.r.FrameErrors()
		require.Len(t, errs, 3)
		for _, fe := range errs {
			assert.Equal(t, StageDraw, fe.Stage)
			assert.Equal(t, material.QueueOpaque, fe.Queue)
			assert.ErrorIs(t, fe, deviceLost)
			assert.NotNil(t, fe.Surface)
		}
		assert.Equal(t, 3, f.r.Stats().Errors)
	})

	t.Run("threshold aborts the pass", func(t *testing.T) {
		f := newFixture(t, WithFatalErrorThreshold(2))
		spawnThree(f)
		f.device.failGeometry = deviceLost

		err := f.r.Render(DefaultClearOptions())
		require.ErrorIs(t, err, ErrFrameAborted)
		assert.Len(t, f.r.FrameErrors(), 2)
		assert.Equal(t, StageGeometry, f.r.FrameErrors()[0].Stage)
		assert.Equal(t, "unbind_target", f.device.calls[len(f.device.calls)-1])
	})

	t.Run("successful draw resets the counter", func(t *testing.T) {
		f := newFixture(t, WithFatalErrorThreshold(2))
		f.spawnCamera()
		f.spawn(game_object.WithMesh(cubeMesh(material.NewMaterial())), game_object.WithPosition(mgl32.Vec3{0, 0, -5}))
		f.spawn(game_object.WithMesh(cubeMesh(newMaterial(material.QueueOpaque))), game_object.WithPosition(mgl32.Vec3{0, 0, -6}))
		f.spawn(game_object.WithMesh(cubeMesh(material.NewMaterial())), game_object.WithPosition(mgl32.Vec3{0, 0, -7}))

		f.render()

		errs := f.r.FrameErrors()
		require.Len(t, errs, 2)
		assert.Equal(t, StageProgram, errs[0].Stage)
		assert.Equal(t, 1, f.r.Stats().Draws)
	})
}

func TestRenderer_OverrideMaterial(t *testing.T) {
	f := newFixture(t)
	cam := f.spawnCamera()
	f.spawn(game_object.WithMesh(cubeMesh(newMaterial(material.QueueOpaque))), game_object.WithPosition(mgl32.Vec3{0, 0, -5}))
	f.spawn(game_object.WithMesh(cubeMesh(newMaterial(material.QueueTransparent))), game_object.WithPosition(mgl32.Vec3{0, 0, -6}))
	f.spawn(game_object.WithMesh(cubeMesh(newMaterial(material.QueueOpaque))), game_object.WithPosition(mgl32.Vec3{0, 0, 50}))

	depth := material.NewMaterial(material.WithName("depth"), material.WithProgram(shader.NewProgram("depth")))
	require.NoError(t, f.r.RenderPassWithMaterial(cam, depth, DefaultClearOptions()))

	stats := f.r.Stats()
	assert.Equal(t, 1, stats.Opaque)
	assert.Equal(t, 1, stats.Transparent)
	require.Len(t, f.device.draws, 2)
	for _, d := range f.device.draws {
		assert.Equal(t, depth.Program().ID(), d.Program)
	}
	assert.Equal(t, 1, stats.ProgramSwitches)
	assert.False(t, f.device.draws[1].State.DepthWrite, "transparent bucket state still applies")
}

func TestRenderer_DepthOnlyPass(t *testing.T) {
	f := newFixture(t)
	cam := f.spawnCamera()
	f.spawn(game_object.WithMesh(cubeMesh(newMaterial(material.QueueOpaque))), game_object.WithPosition(mgl32.Vec3{0, 0, -5}))
	f.spawn(game_object.WithMesh(cubeMesh(newMaterial(material.QueueTransparent))), game_object.WithPosition(mgl32.Vec3{0, 0, -6}))

	depth := material.DepthOnly(shader.NewProgram("depth"))
	require.NoError(t, f.r.RenderPassWithMaterial(cam, depth, DefaultClearOptions()))

	require.Len(t, f.device.draws, 2)
	for _, d := range f.device.draws {
		assert.False(t, d.State.ColorWrite)
		assert.Equal(t, material.DepthBias{Constant: material.DepthOnlyBias, SlopeScale: material.DepthOnlySlopeScale}, d.State.DepthBias)
	}
	assert.True(t, f.device.draws[0].State.DepthWrite)
	assert.True(t, f.device.draws[1].State.DepthWrite, "override depth write beats the transparent bucket")
}

func TestRenderer_Lights(t *testing.T) {
	cfg := config.Default().Render
	cfg.MaxPointLights = 2
	f := newFixture(t, WithConfig(cfg))
	f.spawnCamera()
	f.spawn(game_object.WithLight(light.NewLight(light.LightTypeDirectional, light.WithDirection(mgl32.Vec3{1, 0, 0}), light.WithEnabled(false))))
	f.spawn(game_object.WithLight(light.NewLight(light.LightTypeDirectional, light.WithDirection(mgl32.Vec3{0, -2, 0}))))
	f.spawn(game_object.WithLight(light.NewLight(light.LightTypeDirectional, light.WithDirection(mgl32.Vec3{0, 0, -1}))))
	for i := 0; i < 3; i++ {
		f.spawn(game_object.WithLight(light.NewLight(light.LightTypePoint, light.WithPosition(mgl32.Vec3{float32(i), 0, 0}))))
	}
	f.spawn(game_object.WithMesh(cubeMesh(newMaterial(material.QueueOpaque))), game_object.WithPosition(mgl32.Vec3{0, 0, -5}))

	f.render()

	u := f.device.uniforms
	dir, ok := u["uDirectionalLight.direction"].(mgl32.Vec3)
	require.True(t, ok, spew.Sdump(u))
	assert.True(t, dir.ApproxEqual(mgl32.Vec3{0, -1, 0}), "got %v", dir)
	assert.Equal(t, int32(2), u[shader.UniformPointLightCount])
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, u["uPointLights[1].position"])
	assert.NotContains(t, u, "uPointLights[2].position")
	assert.Contains(t, u, "uPointLightsVS[1].position")
	assert.Contains(t, u, "uDirectionalLightVS.direction")
}

func TestRenderer_CameraUniforms(t *testing.T) {
	f := newFixture(t)
	cam := f.spawnCamera(camera.WithEye(mgl32.Vec3{0, 0, 5}), camera.WithTarget(mgl32.Vec3{0, 0, 0}))
	f.spawn(game_object.WithMesh(cubeMesh(newMaterial(material.QueueOpaque))), game_object.WithPosition(mgl32.Vec3{1, 2, -3}))

	f.render()

	m := mgl32.Translate3D(1, 2, -3)
	u := f.device.uniforms
	gotModel, ok := u[shader.UniformModel].(mgl32.Mat4)
	require.True(t, ok)
	assert.True(t, m.ApproxEqual(gotModel), "model %v", gotModel)
	gotMV, ok := u[shader.UniformModelView].(mgl32.Mat4)
	require.True(t, ok)
	assert.True(t, cam.ViewMatrix().Mul4(m).ApproxEqual(gotMV), "model-view %v", gotMV)
	assert.Equal(t, cam.ProjectionMatrix(), u[shader.UniformProjection])
	assert.Equal(t, cam.ViewProjectionMatrix(), u[shader.UniformViewProjection])
	assert.Equal(t, mgl32.Vec3{0, 0, 5}, u[shader.UniformViewPosition])
	assert.Contains(t, u, shader.UniformNormalMatrix)
	assert.Contains(t, u, shader.UniformSkyboxViewProj)
}

func TestRenderer_MaterialState(t *testing.T) {
	f := newFixture(t)
	f.spawnCamera()
	f.spawn(game_object.WithMesh(cubeMesh(newMaterial(material.QueueOpaque, material.WithCull(material.CullNone)))), game_object.WithPosition(mgl32.Vec3{0, 0, -5}))
	f.spawn(game_object.WithMesh(cubeMesh(newMaterial(material.QueueTransparent, material.WithDepthWrite(true), material.WithBlend(material.BlendAlpha)))), game_object.WithPosition(mgl32.Vec3{0, 0, -5}))

	f.render()

	require.Len(t, f.device.draws, 2)
	assert.Equal(t, material.CullNone, f.device.draws[0].State.Cull)
	assert.True(t, f.device.draws[0].State.DepthWrite)
	assert.True(t, f.device.draws[1].State.DepthWrite, "material overrides bucket default")
	assert.Equal(t, material.BlendAlpha, f.device.draws[1].State.Blend)
}

func TestRenderer_TargetAndViewport(t *testing.T) {
	t.Run("render target size", func(t *testing.T) {
		f := newFixture(t)
		target := &fakeTarget{id: handle.NextID(), w: 256, h: 128}
		f.spawnCamera(camera.WithRenderTarget(target))

		f.render()

		require.Len(t, f.device.targets, 1)
		assert.Equal(t, camera.RenderTarget(target), f.device.targets[0])
		assert.Equal(t, camera.Viewport{Width: 256, Height: 128}, f.device.viewports[0])
	})

	t.Run("camera viewport", func(t *testing.T) {
		f := newFixture(t)
		vp := camera.Viewport{X: 10, Y: 20, Width: 100, Height: 50}
		f.spawnCamera(camera.WithViewport(vp))

		f.render()

		assert.Equal(t, vp, f.device.viewports[0])
	})

	t.Run("resize changes the full screen viewport", func(t *testing.T) {
		f := newFixture(t)
		f.spawnCamera()
		f.r.Resize(1024, 768)

		f.render()

		assert.Equal(t, camera.Viewport{Width: 1024, Height: 768}, f.device.viewports[0])
	})
}

func TestRenderer_ClearOptions(t *testing.T) {
	t.Run("depth only keeps the clear colour", func(t *testing.T) {
		f := newFixture(t)
		f.spawnCamera()
		require.NoError(t, f.r.Render(ClearOptions{ClearDepth: true}))
		assert.Zero(t, f.device.count("clear_color"))
		assert.Equal(t, []ClearMask{ClearDepthBuffer}, f.device.clears)
	})

	t.Run("nothing to clear", func(t *testing.T) {
		f := newFixture(t)
		f.spawnCamera()
		require.NoError(t, f.r.Render(ClearOptions{}))
		assert.Zero(t, f.device.count("clear"))
	})

	t.Run("from config", func(t *testing.T) {
		opts := ClearOptionsFromConfig(config.Default().Render.Clear)
		assert.Equal(t, DefaultClearOptions(), opts)
		assert.Equal(t, ClearColorBuffer|ClearDepthBuffer, opts.Mask())
	})
}

func TestRenderer_MainCamera(t *testing.T) {
	t.Run("no camera clears the full screen", func(t *testing.T) {
		f := newFixture(t)
		f.spawn(game_object.WithMesh(cubeMesh(newMaterial(material.QueueOpaque))))

		f.render()

		assert.Equal(t, []string{"bind_target", "viewport", "clear_color", "clear", "unbind_target"}, f.device.calls)
		assert.Equal(t, camera.Viewport{Width: 800, Height: 600}, f.device.viewports[0])
		_, ok := f.r.MainCamera()
		assert.False(t, ok)
	})

	t.Run("first camera in tracking order", func(t *testing.T) {
		f := newFixture(t)
		first := f.spawnCamera()
		f.spawnCamera()

		cam, ok := f.r.MainCamera()
		require.True(t, ok)
		assert.Same(t, first, cam)
	})

	t.Run("dropped when the object loses its camera", func(t *testing.T) {
		f := newFixture(t)
		cam := camera.NewCamera()
		h := f.spawn(game_object.WithCamera(cam))
		_, ok := f.r.MainCamera()
		require.True(t, ok)

		obj, ok := f.scene.Resolve(h)
		require.True(t, ok)
		obj.SetCamera(nil)
		f.r.End()

		_, ok = f.r.MainCamera()
		assert.False(t, ok)
	})

	t.Run("dropped when the object is despawned", func(t *testing.T) {
		f := newFixture(t)
		first := camera.NewCamera()
		h := f.spawn(game_object.WithCamera(first))
		second := f.spawnCamera()
		_, ok := f.r.MainCamera()
		require.True(t, ok)

		f.scene.Despawn(h)
		f.r.End()

		cam, ok := f.r.MainCamera()
		require.True(t, ok)
		assert.Same(t, second, cam)
	})
}

func TestRenderer_TrackAndEnd(t *testing.T) {
	f := newFixture(t)
	f.spawnCamera()
	mat := newMaterial(material.QueueOpaque)
	a := f.spawn(game_object.WithMesh(cubeMesh(mat)), game_object.WithPosition(mgl32.Vec3{0, 0, -5}))
	f.spawn(game_object.WithMesh(cubeMesh(mat)), game_object.WithPosition(mgl32.Vec3{0, 0, -6}))
	f.r.Track(a)
	assert.Equal(t, 3, f.r.Tracked())

	require.True(t, f.scene.Despawn(a))
	f.render()
	assert.Equal(t, 1, f.r.Stats().Surfaces, "dead handles are skipped")
	assert.Equal(t, 3, f.r.Tracked(), "dead handles are pruned in End")

	f.r.End()
	assert.Equal(t, 2, f.r.Tracked())
}

type countingAssets struct{ steps int }

func (a *countingAssets) Step() { a.steps++ }

type recordingOverlay struct {
	begins int
	size   [2]int
}

func (o *recordingOverlay) Begin() { o.begins++ }

func (o *recordingOverlay) Resize(w, h int) { o.size = [2]int{w, h} }

func TestRenderer_Begin(t *testing.T) {
	assets := &countingAssets{}
	overlay := &recordingOverlay{}
	f := newFixture(t, WithAssets(assets), WithOverlay(overlay))

	f.r.Begin()
	f.r.Begin()
	f.r.Resize(640, 480)

	assert.Equal(t, 2, assets.steps)
	assert.Equal(t, 2, overlay.begins)
	assert.Equal(t, [2]int{640, 480}, overlay.size)
}

func TestNewRenderer_InvalidConfig(t *testing.T) {
	cfg := config.Default().Render
	cfg.QueueOrder = []material.RenderQueue{material.QueueOpaque}
	s := scene.NewScene()
	t.Cleanup(s.Close)
	_, err := NewRenderer(newFakeDevice(), s, WithConfig(cfg))
	require.Error(t, err)
}

func TestWithConfig_ZeroValues(t *testing.T) {
	f := newFixture(t, WithConfig(config.RenderConfig{}))
	f.spawnCamera()
	f.spawn(game_object.WithLight(light.NewLight(light.LightTypePoint)))
	f.spawn(game_object.WithMesh(cubeMesh(newMaterial(material.QueueOpaque))), game_object.WithPosition(mgl32.Vec3{0, 0, -5}))

	f.render()

	assert.Equal(t, 1, f.r.Stats().Draws)
	assert.Equal(t, int32(0), f.device.uniforms[shader.UniformPointLightCount])
	want := mgl32.Vec3(light.DefaultDescriptor.Direction).Normalize()
	got, ok := f.device.uniforms[shader.Field(shader.UniformDirectional, "direction")].(mgl32.Vec3)
	require.True(t, ok)
	assert.True(t, want.ApproxEqual(got), "default light kept, got %v", got)
}
