package model

// GeometryBuilderOption is a function that configures a geometry buffer during construction.
type GeometryBuilderOption func(*geometry)

// WithVertices sets the vertex and index data and marks the buffer ready.
//
// Parameters:
//   - vertices: the vertex data
//   - indices: the triangle indices, or nil for non-indexed drawing
//
// Returns:
//   - GeometryBuilderOption: a function that applies the data to a buffer
func WithVertices(vertices []Vertex, indices []uint32) GeometryBuilderOption {
	return func(g *geometry) {
		g.SetData(vertices, indices)
		g.MarkReady()
	}
}

// WithBounds fixes the bounding sphere instead of computing it from the vertices.
// Apply it before WithVertices.
func WithBounds(s Sphere) GeometryBuilderOption {
	return func(g *geometry) {
		g.bounds = s
		g.hasBounds = true
		g.fixedBounds = true
	}
}

// WithoutBounds removes the bounding volume so the buffer is never frustum culled.
// Apply it before WithVertices.
func WithoutBounds() GeometryBuilderOption {
	return func(g *geometry) {
		g.bounds = Sphere{}
		g.hasBounds = false
		g.noBounds = true
	}
}
