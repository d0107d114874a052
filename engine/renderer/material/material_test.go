package material

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-render/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer/texture"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseRenderQueue(t *testing.T) {
	tests := []struct {
		in      string
		want    RenderQueue
		wantErr bool
	}{
		{"opaque", QueueOpaque, false},
		{"Skybox", QueueSkybox, false},
		{" transparent ", QueueTransparent, false},
		{"UI", QueueUI, false},
		{"overlay", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRenderQueue(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderQueue_YAML(t *testing.T) {
	var order []RenderQueue
	require.NoError(t, yaml.Unmarshal([]byte("[ui, opaque, transparent, skybox]"), &order))
	assert.Equal(t, []RenderQueue{QueueUI, QueueOpaque, QueueTransparent, QueueSkybox}, order)

	out, err := yaml.Marshal(order)
	require.NoError(t, err)
	assert.Equal(t, "- ui\n- opaque\n- transparent\n- skybox\n", string(out))

	assert.Error(t, yaml.Unmarshal([]byte("[bogus]"), &order))
}

func TestValidateOrder(t *testing.T) {
	assert.NoError(t, ValidateOrder(DefaultQueueOrder))
	assert.Error(t, ValidateOrder(DefaultQueueOrder[:3]))
	assert.Error(t, ValidateOrder([]RenderQueue{QueueOpaque, QueueOpaque, QueueUI, QueueSkybox}))
	assert.Error(t, ValidateOrder([]RenderQueue{QueueOpaque, QueueSkybox, QueueUI, RenderQueue(9)}))
}

func TestState_MergeResolve(t *testing.T) {
	bucket := State{DepthWrite: Ptr(false), DepthTest: Ptr(DepthLessEqual)}
	mat := State{DepthTest: Ptr(DepthAlways), Blend: Ptr(BlendAlpha)}

	merged := State{}.Merge(bucket).Merge(mat)
	got := merged.Resolve()

	want := DefaultResolvedState
	want.DepthWrite = false
	want.DepthTest = DepthAlways
	want.Blend = BlendAlpha
	assert.Equal(t, want, got)
	assert.Equal(t, DefaultResolvedState, State{}.Resolve())
	assert.True(t, State{}.IsZero())
	assert.False(t, mat.IsZero())
}

func TestState_DepthOnly(t *testing.T) {
	m := NewMaterial(
		WithColorWrite(false),
		WithDepthBias(2, 1.5),
		WithWinding(WindingCW),
		WithTopology(TopologyLines),
	)
	bucket := State{DepthWrite: Ptr(false), ColorWrite: Ptr(true)}

	got := State{}.Merge(bucket).Merge(m.State()).Resolve()
	assert.False(t, got.ColorWrite)
	assert.False(t, got.DepthWrite, "bucket depth write survives")
	assert.Equal(t, DepthBias{Constant: 2, SlopeScale: 1.5}, got.DepthBias)
	assert.Equal(t, WindingCW, got.Winding)
	assert.Equal(t, TopologyLines, got.Topology)
	assert.Equal(t, "cw", got.Winding.String())
	assert.Equal(t, "lines", got.Topology.String())
	assert.False(t, m.State().IsZero())
}

func TestDepthOnly(t *testing.T) {
	prog := shader.NewProgram("depth")
	m := DepthOnly(prog)
	got := m.State().Resolve()
	assert.Equal(t, prog, m.Program())
	assert.False(t, got.ColorWrite)
	assert.True(t, got.DepthWrite)
	assert.Equal(t, DepthBias{Constant: DepthOnlyBias, SlopeScale: DepthOnlySlopeScale}, got.DepthBias)
}

func TestNewMaterial(t *testing.T) {
	prog := shader.NewProgram("unlit")
	tex := texture.NewTexture("albedo")

	m := NewMaterial(
		WithName("crate"),
		WithProgram(prog),
		WithBaseColor(mgl32.Vec4{1, 0, 0, 1}),
		WithTexture("uDiffuse", tex),
		WithParams(Scalar("uRoughness", 0.5)),
		WithBaseColor(mgl32.Vec4{0, 1, 0, 1}),
		WithDepthWrite(false),
	)

	assert.NotZero(t, m.ID())
	assert.Equal(t, "crate", m.Name())
	assert.Equal(t, QueueOpaque, m.Queue())
	assert.Equal(t, prog, m.Program())

	params := m.Params()
	require.Len(t, params, 3)
	assert.Equal(t, "uBaseColor", params[0].Name)
	assert.Equal(t, mgl32.Vec4{0, 1, 0, 1}, params[0].Value)
	assert.Equal(t, ParamTexture, params[1].Kind)
	assert.Equal(t, tex, params[1].Texture)
	assert.Equal(t, ParamScalar, params[2].Kind)

	require.NotNil(t, m.State().DepthWrite)
	assert.False(t, *m.State().DepthWrite)
	assert.Nil(t, m.State().Blend)

	other := NewMaterial(WithQueue(QueueTransparent))
	assert.NotEqual(t, m.ID(), other.ID())
	assert.Equal(t, QueueTransparent, other.Queue())
}
