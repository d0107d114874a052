package wgpu_device

import (
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-render/engine/handle"
	"github.com/Carmen-Shannon/oxy-render/engine/model"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

const (
	// UniformGroup is the bind group index of a program's uniform block.
	UniformGroup = shader.UniformGroup
	// TextureGroup is the bind group index of a program's textures and sampler.
	TextureGroup = shader.TextureGroup

	// minUniformBlock is the smallest uniform binding size the device allocates.
	minUniformBlock = 16
)

// vertexBufferLayout describes model.Vertex: position, normal, texcoord and colour at shader
// locations 0 to 3.
func vertexBufferLayout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: model.VertexStride,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
			{Format: wgpu.VertexFormatFloat32x2, Offset: 24, ShaderLocation: 2},
			{Format: wgpu.VertexFormatFloat32x4, Offset: 32, ShaderLocation: 3},
		},
	}
}

// uniformBlockSize returns the binding size of a program's uniform block.
func uniformBlockSize(layout shader.UniformLayout) uint64 {
	return max(layout.Size(), minUniformBlock)
}

// uniformLayoutDescriptor describes group 0: one uniform buffer bound with a dynamic offset.
func uniformLayoutDescriptor(label string, size uint64) wgpu.BindGroupLayoutDescriptor {
	entry := wgpu.BindGroupLayoutEntry{
		Binding:    0,
		Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
	}
	entry.Buffer.Type = wgpu.BufferBindingTypeUniform
	entry.Buffer.HasDynamicOffset = true
	entry.Buffer.MinBindingSize = size
	return wgpu.BindGroupLayoutDescriptor{
		Label:   label + " Uniform Layout",
		Entries: []wgpu.BindGroupLayoutEntry{entry},
	}
}

// textureLayoutDescriptor describes group 1: one 2D texture per unit at bindings 0..units-1
// followed by a filtering sampler at binding units.
func textureLayoutDescriptor(label string, units int) wgpu.BindGroupLayoutDescriptor {
	entries := make([]wgpu.BindGroupLayoutEntry, 0, units+1)
	for i := 0; i < units; i++ {
		entry := wgpu.BindGroupLayoutEntry{
			Binding:    uint32(i),
			Visibility: wgpu.ShaderStageFragment,
		}
		entry.Texture.SampleType = wgpu.TextureSampleTypeFloat
		entry.Texture.ViewDimension = wgpu.TextureViewDimension2D
		entries = append(entries, entry)
	}
	sampler := wgpu.BindGroupLayoutEntry{
		Binding:    uint32(units),
		Visibility: wgpu.ShaderStageFragment,
	}
	sampler.Sampler.Type = wgpu.SamplerBindingTypeFiltering
	entries = append(entries, sampler)
	return wgpu.BindGroupLayoutDescriptor{
		Label:   label + " Texture Layout",
		Entries: entries,
	}
}

// textureGroupKey identifies the textures bound to a program's units.
func textureGroupKey(ids []handle.ID) string {
	var b strings.Builder
	for i, id := range ids {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatUint(uint64(id), 10))
	}
	return b.String()
}

// UniformBlockSource returns the WGSL declaration of a program's uniform block: a struct with one
// member per uniform in declaration order, bound at group 0 binding 0 as variable u. Members are
// named by shader.FieldName. Prepend it to both stages of the program's source.
//
// Parameters:
//   - layout: the program's uniform layout
//
// Returns:
//   - string: the WGSL source
func UniformBlockSource(layout shader.UniformLayout) string {
	var b strings.Builder
	b.WriteString("struct Uniforms {\n")
	slots := layout.Slots()
	for _, s := range slots {
		b.WriteString("    ")
		b.WriteString(shader.FieldName(s.Name))
		b.WriteString(": ")
		b.WriteString(s.Type.WGSL())
		b.WriteString(",\n")
	}
	if len(slots) == 0 {
		b.WriteString("    _pad: vec4<f32>,\n")
	}
	b.WriteString("};\n")
	b.WriteString("@group(0) @binding(0) var<uniform> u: Uniforms;\n")
	return b.String()
}

// TextureBlockSource returns the WGSL declarations of a program's texture units, named
// t0..t{units-1}, the shared sampler s at group 1 and a function
// sample_unit(unit: i32, uv: vec2<f32>) -> vec4<f32> that samples the unit a material's
// texture uniform holds. Out of range units sample t0.
func TextureBlockSource(units int) string {
	if units <= 0 {
		return ""
	}
	var b strings.Builder
	for i := 0; i < units; i++ {
		b.WriteString("@group(1) @binding(")
		b.WriteString(strconv.Itoa(i))
		b.WriteString(") var t")
		b.WriteString(strconv.Itoa(i))
		b.WriteString(": texture_2d<f32>;\n")
	}
	b.WriteString("@group(1) @binding(")
	b.WriteString(strconv.Itoa(units))
	b.WriteString(") var s: sampler;\n")

	b.WriteString("fn sample_unit(unit: i32, uv: vec2<f32>) -> vec4<f32> {\n    switch unit {\n")
	for i := 1; i < units; i++ {
		b.WriteString("        case ")
		b.WriteString(strconv.Itoa(i))
		b.WriteString(": { return textureSampleLevel(t")
		b.WriteString(strconv.Itoa(i))
		b.WriteString(", s, uv, 0.0); }\n")
	}
	b.WriteString("        default: { return textureSampleLevel(t0, s, uv, 0.0); }\n    }\n}\n")
	return b.String()
}
