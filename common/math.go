package common

import (
	"math"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

// PerspectiveZO creates a right-handed perspective projection matrix that maps view depth
// into the WebGPU clip space range [0, 1]. mgl32.Perspective targets the OpenGL [-1, 1] range,
// which the wgpu device cannot consume directly.
//
// Parameters:
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance (must be > 0)
//   - far: far clipping plane distance (must be > near)
//
// Returns:
//   - mgl32.Mat4: the column-major projection matrix
func PerspectiveZO(fovY, aspect, near, far float32) mgl32.Mat4 {
	f := 1.0 / float32(math.Tan(float64(fovY)/2.0))
	if aspect == 0 {
		aspect = 1
	}

	var out mgl32.Mat4
	out[0] = f / aspect
	out[5] = f
	out[10] = far / (near - far)
	out[11] = -1.0
	out[14] = (near * far) / (near - far)
	return out
}

// TRS composes a model matrix from translation, rotation and scale (T * R * S).
//
// Parameters:
//   - position: translation in world space
//   - rotation: orientation quaternion
//   - scale: per-axis scale factors
//
// Returns:
//   - mgl32.Mat4: the composed column-major model matrix
func TRS(position mgl32.Vec3, rotation mgl32.Quat, scale mgl32.Vec3) mgl32.Mat4 {
	t := mgl32.Translate3D(position[0], position[1], position[2])
	s := mgl32.Scale3D(scale[0], scale[1], scale[2])
	return t.Mul4(rotation.Normalize().Mat4()).Mul4(s)
}

// MaxComponent returns the largest of the three components of v.
func MaxComponent(v mgl32.Vec3) float32 {
	return max(v[0], v[1], v[2])
}

// NormalMatrix returns the inverse-transpose of a model matrix, used to carry normals
// into world space under non-uniform scale. A singular matrix yields the zero matrix.
func NormalMatrix(m mgl32.Mat4) mgl32.Mat4 {
	return m.Inv().Transpose()
}

// RotationOnly strips the translation from a view matrix, keeping its upper 3x3 block.
// Skybox geometry is drawn with this so it stays centred on the eye.
func RotationOnly(view mgl32.Mat4) mgl32.Mat4 {
	return view.Mat3().Mat4()
}

// Translation returns the translation column of a column-major affine matrix.
func Translation(m mgl32.Mat4) mgl32.Vec3 {
	return mgl32.Vec3{m[12], m[13], m[14]}
}
