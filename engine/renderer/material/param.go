package material

import (
	"github.com/Carmen-Shannon/oxy-render/engine/renderer/texture"
	"github.com/go-gl/mathgl/mgl32"
)

// ParamKind is the value category of a material parameter.
type ParamKind uint8

const (
	ParamScalar ParamKind = iota
	ParamVec3
	ParamVec4
	ParamMat4
	ParamTexture
)

// Param is one named material input. Exactly one of Value or Texture is meaningful, selected by Kind.
type Param struct {
	Name    string
	Kind    ParamKind
	Value   any
	Texture texture.Texture
}

// Scalar builds a float parameter.
func Scalar(name string, v float32) Param {
	return Param{Name: name, Kind: ParamScalar, Value: v}
}

// Vec3 builds a three-component vector parameter.
func Vec3(name string, v mgl32.Vec3) Param {
	return Param{Name: name, Kind: ParamVec3, Value: v}
}

// Vec4 builds a four-component vector parameter.
func Vec4(name string, v mgl32.Vec4) Param {
	return Param{Name: name, Kind: ParamVec4, Value: v}
}

// Mat4 builds a matrix parameter.
func Mat4(name string, v mgl32.Mat4) Param {
	return Param{Name: name, Kind: ParamMat4, Value: v}
}

// Sampler builds a texture parameter. When bound, the uniform named name receives the texture unit.
func Sampler(name string, tex texture.Texture) Param {
	return Param{Name: name, Kind: ParamTexture, Texture: tex}
}
