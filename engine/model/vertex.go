package model

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// VertexStride is the size in bytes of one marshalled Vertex.
const VertexStride = 48

// Vertex is a single static mesh vertex. Marshal produces the interleaved layout the
// wgpu device declares for its vertex buffer.
type Vertex struct {
	Position [3]float32 // offset  0
	Normal   [3]float32 // offset 12
	TexCoord [2]float32 // offset 24
	Color    [4]float32 // offset 32
}

// Marshal serializes the vertex into a VertexStride byte buffer.
func (v *Vertex) Marshal() []byte {
	buf := make([]byte, VertexStride)
	v.put(buf)
	return buf
}

func (v *Vertex) put(buf []byte) {
	fields := [...]float32{
		v.Position[0], v.Position[1], v.Position[2],
		v.Normal[0], v.Normal[1], v.Normal[2],
		v.TexCoord[0], v.TexCoord[1],
		v.Color[0], v.Color[1], v.Color[2], v.Color[3],
	}
	for i, f := range fields {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
}

// MarshalVertices serializes vertices back to back.
func MarshalVertices(vertices []Vertex) []byte {
	buf := make([]byte, len(vertices)*VertexStride)
	for i := range vertices {
		vertices[i].put(buf[i*VertexStride:])
	}
	return buf
}

// MarshalIndices serializes 32-bit indices in little-endian order.
func MarshalIndices(indices []uint32) []byte {
	buf := make([]byte, len(indices)*4)
	for i, idx := range indices {
		binary.LittleEndian.PutUint32(buf[i*4:], idx)
	}
	return buf
}

// Sphere is a bounding sphere in the geometry's local space.
type Sphere struct {
	Center mgl32.Vec3
	Radius float32
}

// ComputeBoundingSphere returns a sphere centred on the vertices' axis-aligned bounds that
// contains every vertex. It returns false for an empty slice.
//
// Parameters:
//   - vertices: the vertex data to bound
//
// Returns:
//   - Sphere: the bounding sphere
//   - bool: false if there were no vertices
func ComputeBoundingSphere(vertices []Vertex) (Sphere, bool) {
	if len(vertices) == 0 {
		return Sphere{}, false
	}

	lo := mgl32.Vec3(vertices[0].Position)
	hi := lo
	for _, v := range vertices[1:] {
		for i := range 3 {
			lo[i] = min(lo[i], v.Position[i])
			hi[i] = max(hi[i], v.Position[i])
		}
	}
	center := lo.Add(hi).Mul(0.5)

	var maxDistSq float32
	for _, v := range vertices {
		d := mgl32.Vec3(v.Position).Sub(center)
		maxDistSq = max(maxDistSq, d.Dot(d))
	}
	return Sphere{Center: center, Radius: float32(math.Sqrt(float64(maxDistSq)))}, true
}
