package wgpu_device

import (
	"os"
	"testing"

	"github.com/Carmen-Shannon/oxy-render/engine/asset"
	"github.com/Carmen-Shannon/oxy-render/engine/camera"
	"github.com/Carmen-Shannon/oxy-render/engine/model"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer/texture"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const testShaderBody = `
struct VertexOut {
    @builtin(position) position: vec4<f32>,
    @location(0) uv: vec2<f32>,
};

@vertex
fn vs_main(@location(0) position: vec3<f32>, @location(1) normal: vec3<f32>, @location(2) uv: vec2<f32>, @location(3) color: vec4<f32>) -> VertexOut {
    var out: VertexOut;
    out.position = u.uPVMatrix * u.uMMatrix * vec4<f32>(position, 1.0);
    out.uv = uv;
    return out;
}

@fragment
fn fs_main(in: VertexOut) -> @location(0) vec4<f32> {
    return textureSample(t0, s, in.uv) * u.uTint;
}
`

// newTestDevice creates a device on the fallback adapter. GPU tests only run when OXY_GPU_TESTS
// is set because CI machines usually have no adapter at all.
func newTestDevice(t *testing.T) Device {
	t.Helper()
	if os.Getenv("OXY_GPU_TESTS") == "" {
		t.Skip("set OXY_GPU_TESTS=1 to run tests that need a WebGPU adapter")
	}
	d, err := New(
		WithSize(64, 64),
		WithForceFallbackAdapter(true),
		WithUniformRingSize(64<<10),
		WithLogger(zaptest.NewLogger(t)),
	)
	require.NoError(t, err)
	t.Cleanup(d.Release)
	return d
}

func testProgram() shader.Program {
	uniforms := []shader.Uniform{
		{Name: "uPVMatrix", Type: shader.UniformMat4},
		{Name: "uMMatrix", Type: shader.UniformMat4},
		{Name: "uTint", Type: shader.UniformVec4},
	}
	src := UniformBlockSource(shader.NewUniformLayout(uniforms)) + TextureBlockSource(1) + testShaderBody
	return shader.NewProgram("textured",
		shader.WithSource(src, src),
		shader.WithEntryPoints("vs_main", "fs_main"),
		shader.WithUniforms(uniforms...),
		shader.WithTextureUnits(1),
	)
}

func TestDeviceDrawsQuad(t *testing.T) {
	d := newTestDevice(t)
	prog := testProgram()
	quad := model.NewGeometry("quad", model.WithVertices(model.Quad()))
	tex := texture.NewTexture("red", texture.WithPixels(texture.Solid(255, 0, 0, 255)))

	require.NoError(t, d.BindRenderTarget(nil))
	d.SetClearColor(mgl32.Vec4{0, 0, 0, 1})
	require.NoError(t, d.Clear(renderer.ClearColorBuffer|renderer.ClearDepthBuffer))
	d.CommitState(material.DefaultResolvedState)
	require.NoError(t, d.BindProgram(prog))
	require.NoError(t, d.BindTexture(tex, 0))
	require.NoError(t, d.BindGeometry(quad))
	require.NoError(t, d.SetUniform("uPVMatrix", mgl32.Ident4()))
	require.NoError(t, d.SetUniform("uMMatrix", mgl32.Ident4()))
	require.NoError(t, d.SetUniform("uTint", mgl32.Vec4{1, 1, 1, 1}))
	require.NoError(t, d.SetUniform("uUndeclared", float32(1)), "undeclared uniforms are ignored")
	require.NoError(t, d.CommitUniforms())
	require.NoError(t, d.Draw())
	d.UnbindGeometry()
	require.NoError(t, d.UnbindRenderTarget())

	assert.Equal(t, uint64(1), d.Frames())
}

func TestDeviceRenderTargets(t *testing.T) {
	d := newTestDevice(t)

	w, h := d.ScreenSize()
	assert.Equal(t, []int{64, 64}, []int{w, h})

	rt, err := d.NewRenderTarget("offscreen", 32, 16)
	require.NoError(t, err)
	w, h = rt.Size()
	assert.Equal(t, []int{32, 16}, []int{w, h})

	_, err = d.NewRenderTarget("broken", 0, 16)
	assert.Error(t, err)

	require.NoError(t, d.BindRenderTarget(rt))
	d.SetViewport(camera.Viewport{X: 8, Y: 0, Width: 64, Height: 64})
	require.NoError(t, d.Clear(renderer.ClearColorBuffer))
	require.NoError(t, d.UnbindRenderTarget())
	d.ReleaseRenderTarget(rt)

	require.NoError(t, d.Resize(128, 32))
	w, h = d.ScreenSize()
	assert.Equal(t, []int{128, 32}, []int{w, h})
}

func TestDeviceRejectsPendingResources(t *testing.T) {
	d := newTestDevice(t)

	pending := shader.NewProgram("pending", shader.WithPending())
	assert.True(t, asset.IsNotReady(d.BindProgram(pending)))

	geom := model.NewGeometry("pending")
	assert.True(t, asset.IsNotReady(d.BindGeometry(geom)))

	tex := texture.NewTexture("pending")
	assert.True(t, asset.IsNotReady(d.BindTexture(tex, 0)))
}

func TestDeviceErrorsWithoutState(t *testing.T) {
	d := newTestDevice(t)

	assert.Error(t, d.Draw(), "no target")
	assert.Error(t, d.Clear(renderer.ClearColorBuffer), "no target")
	assert.Error(t, d.SetUniform("uTint", mgl32.Vec4{}), "no program")
	assert.Error(t, d.CommitUniforms(), "no program")

	require.NoError(t, d.BindRenderTarget(nil))
	assert.Error(t, d.Draw(), "no program")
	tex := texture.NewTexture("red", texture.WithPixels(texture.Solid(255, 0, 0, 255)))
	assert.Error(t, d.BindTexture(tex, 99))
	require.NoError(t, d.UnbindRenderTarget())
}
