package shader

import "fmt"

// Uniform names written by the renderer. A program only receives the ones it declares.
const (
	UniformModelView       = "uMVMatrix"
	UniformProjection      = "uPMatrix"
	UniformViewProjection  = "uPVMatrix"
	UniformSkyboxViewProj  = "uPVSkyboxMatrix"
	UniformNormalMatrix    = "uNMatrix"
	UniformModel           = "uMMatrix"
	UniformViewPosition    = "uViewPos"
	UniformDirectional     = "uDirectionalLight"
	UniformDirectionalView = "uDirectionalLightVS"
	UniformPointLights     = "uPointLights"
	UniformPointLightsView = "uPointLightsVS"
	UniformPointLightCount = "uPointLightCount"
)

// PointLightName returns the array element name of point light i, e.g. "uPointLights[2]".
func PointLightName(base string, i int) string {
	return fmt.Sprintf("%s[%d]", base, i)
}

// Field joins a struct uniform name and a field, e.g. "uDirectionalLight.color".
func Field(base, field string) string {
	return base + "." + field
}

// CameraUniforms returns the declarations for every per-draw camera uniform.
func CameraUniforms() []Uniform {
	return []Uniform{
		{UniformModelView, UniformMat4},
		{UniformProjection, UniformMat4},
		{UniformViewProjection, UniformMat4},
		{UniformSkyboxViewProj, UniformMat4},
		{UniformNormalMatrix, UniformMat3},
		{UniformModel, UniformMat4},
		{UniformViewPosition, UniformVec3},
	}
}

// DirectionalLightUniforms declares the fields a directional light binds under base.
func DirectionalLightUniforms(base string) []Uniform {
	return []Uniform{
		{Field(base, "direction"), UniformVec3},
		{Field(base, "color"), UniformVec3},
		{Field(base, "intensity"), UniformFloat},
	}
}

// PointLightUniforms declares the fields of count point lights under base, in array order.
func PointLightUniforms(base string, count int) []Uniform {
	out := make([]Uniform, 0, count*4)
	for i := range count {
		name := PointLightName(base, i)
		out = append(out,
			Uniform{Field(name, "position"), UniformVec3},
			Uniform{Field(name, "color"), UniformVec3},
			Uniform{Field(name, "intensity"), UniformFloat},
			Uniform{Field(name, "range"), UniformFloat},
		)
	}
	return out
}

// LightUniforms declares the world-space and view-space light blocks for up to maxPoint point lights.
func LightUniforms(maxPoint int) []Uniform {
	var out []Uniform
	out = append(out, DirectionalLightUniforms(UniformDirectional)...)
	out = append(out, DirectionalLightUniforms(UniformDirectionalView)...)
	out = append(out, PointLightUniforms(UniformPointLights, maxPoint)...)
	out = append(out, PointLightUniforms(UniformPointLightsView, maxPoint)...)
	out = append(out, Uniform{UniformPointLightCount, UniformInt})
	return out
}
