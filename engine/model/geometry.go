package model

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-render/engine/asset"
	"github.com/Carmen-Shannon/oxy-render/engine/handle"
	"github.com/pkg/errors"
)

// geometry is the implementation of the GeometryBuffer interface.
type geometry struct {
	*asset.State

	mu *sync.RWMutex

	id          handle.ID
	name        string
	vertices    []Vertex
	indices     []uint32
	bounds      Sphere
	hasBounds   bool
	fixedBounds bool
	noBounds    bool
}

// GeometryBuffer is a vertex and index buffer pair. The device uploads it on first bind; until
// its data is set it reports asset.ErrNotReady.
type GeometryBuffer interface {
	asset.Loadable

	// ID returns the buffer's identity token.
	//
	// Returns:
	//   - handle.ID: the unique identity of this buffer
	ID() handle.ID

	// Name returns the debug name.
	//
	// Returns:
	//   - string: the name
	Name() string

	// Vertices returns the vertex data. The slice must not be modified.
	//
	// Returns:
	//   - []Vertex: the vertices
	Vertices() []Vertex

	// Indices returns the triangle list indices. Empty means non-indexed drawing.
	//
	// Returns:
	//   - []uint32: the indices
	Indices() []uint32

	// VertexCount returns the number of vertices.
	VertexCount() int

	// IndexCount returns the number of indices.
	IndexCount() int

	// Bounds returns the local bounding sphere. The second result is false when the buffer has
	// no bounding volume, in which case it is never culled.
	//
	// Returns:
	//   - Sphere: the local bounding sphere
	//   - bool: whether a bounding volume exists
	Bounds() (Sphere, bool)

	// SetData replaces the vertex and index data and recomputes bounds unless they were fixed
	// by WithBounds or disabled by WithoutBounds. The caller is responsible for marking the
	// buffer ready.
	//
	// Parameters:
	//   - vertices: the new vertices
	//   - indices: the new indices
	SetData(vertices []Vertex, indices []uint32)
}

var _ GeometryBuffer = &geometry{}

// NewGeometry creates a pending geometry buffer. Use WithVertices to create one that is
// ready immediately, or LoadGeometry to build it on a streamer.
//
// Parameters:
//   - name: debug name of the buffer
//   - options: functional options to configure the buffer
//
// Returns:
//   - GeometryBuffer: the new buffer
func NewGeometry(name string, options ...GeometryBuilderOption) GeometryBuffer {
	g := &geometry{
		State: &asset.State{},
		mu:    &sync.RWMutex{},
		id:    handle.NextID(),
		name:  name,
	}
	for _, opt := range options {
		opt(g)
	}
	return g
}

func (g *geometry) ID() handle.ID {
	return g.id
}

func (g *geometry) Name() string {
	return g.name
}

func (g *geometry) Label() string {
	return "geometry " + g.name
}

func (g *geometry) Vertices() []Vertex {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.vertices
}

func (g *geometry) Indices() []uint32 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.indices
}

func (g *geometry) VertexCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.vertices)
}

func (g *geometry) IndexCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.indices)
}

func (g *geometry) Bounds() (Sphere, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.bounds, g.hasBounds
}

func (g *geometry) SetData(vertices []Vertex, indices []uint32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.vertices = vertices
	g.indices = indices
	if g.fixedBounds || g.noBounds {
		return
	}
	g.bounds, g.hasBounds = ComputeBoundingSphere(vertices)
}

// LoadGeometry builds a geometry buffer's data on the streamer. The buffer becomes ready on the
// first Step after build returns.
//
// Parameters:
//   - s: the streamer to load on
//   - g: the buffer to fill
//   - build: produces the vertices and indices, typically from a file or a generator
//
// Returns:
//   - error: an error if the streamer rejects the work
func LoadGeometry(s asset.Streamer, g GeometryBuffer, build func() ([]Vertex, []uint32, error)) error {
	return s.Enqueue(g, func() error {
		vertices, indices, err := build()
		if err != nil {
			return err
		}
		if len(vertices) == 0 {
			return errors.Errorf("%s: no vertices", g.Label())
		}
		g.SetData(vertices, indices)
		return nil
	})
}
