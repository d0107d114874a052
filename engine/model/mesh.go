package model

import (
	"github.com/Carmen-Shannon/oxy-render/engine/renderer/material"
)

// Surface pairs a geometry buffer with the material that draws it. Surfaces are immutable
// and may be shared between meshes.
type Surface struct {
	Geometry GeometryBuffer
	Material material.Material
}

// Bounds returns the surface's local bounding sphere, or false if it has none.
func (s *Surface) Bounds() (Sphere, bool) {
	if s.Geometry == nil {
		return Sphere{}, false
	}
	return s.Geometry.Bounds()
}

// Mesh is the mesh component of a game object: an ordered list of surfaces.
type Mesh struct {
	surfaces []*Surface
}

// NewMesh creates a mesh from surfaces.
//
// Parameters:
//   - surfaces: the surfaces in draw order
//
// Returns:
//   - *Mesh: the mesh
func NewMesh(surfaces ...*Surface) *Mesh {
	return &Mesh{surfaces: surfaces}
}

// Surfaces returns the surfaces in draw order. The slice must not be modified.
func (m *Mesh) Surfaces() []*Surface {
	if m == nil {
		return nil
	}
	return m.surfaces
}

// AddSurface appends a surface.
func (m *Mesh) AddSurface(s *Surface) {
	m.surfaces = append(m.surfaces, s)
}
