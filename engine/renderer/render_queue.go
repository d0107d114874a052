package renderer

import (
	"slices"

	"github.com/Carmen-Shannon/oxy-render/engine/handle"
	"github.com/Carmen-Shannon/oxy-render/engine/model"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
)

// DrawCommand is one surface to draw with one world transform. Commands live for a single
// render pass.
type DrawCommand struct {
	Surface *model.Surface
	Object  handle.Handle
	Model   mgl32.Mat4
	// Distance is the squared distance from the camera eye to the object's world translation.
	Distance float32
}

// Bucket holds the draw commands of one render queue and the state every command in it
// starts from.
type Bucket struct {
	Kind     material.RenderQueue
	State    material.State
	Commands []DrawCommand
}

// Len returns the number of commands in the bucket.
func (b *Bucket) Len() int {
	return len(b.Commands)
}

// RenderQueues is the set of four buckets a pass gathers into, in submission order.
type RenderQueues struct {
	order   []material.RenderQueue
	buckets [material.QueueCount]*Bucket
}

// NewRenderQueues creates one bucket per queue kind, submitted in the given order.
// An empty order selects material.DefaultQueueOrder.
//
// Parameters:
//   - order: the submission order, a permutation of the four queue kinds
//
// Returns:
//   - *RenderQueues: the buckets
//   - error: an error if order is not a permutation
func NewRenderQueues(order []material.RenderQueue) (*RenderQueues, error) {
	if len(order) == 0 {
		order = material.DefaultQueueOrder
	}
	if err := material.ValidateOrder(order); err != nil {
		return nil, err
	}
	q := &RenderQueues{order: slices.Clone(order)}
	for i := range q.buckets {
		kind := material.RenderQueue(i)
		q.buckets[i] = &Bucket{Kind: kind, State: DefaultQueueState(kind)}
	}
	return q, nil
}

// DefaultQueueState returns the state a bucket applies before material overrides.
// Skybox draws behind everything without writing depth; Transparent tests depth but does
// not write it.
func DefaultQueueState(kind material.RenderQueue) material.State {
	switch kind {
	case material.QueueSkybox:
		return material.State{
			DepthWrite: material.Ptr(false),
			DepthTest:  material.Ptr(material.DepthLessEqual),
		}
	case material.QueueTransparent:
		return material.State{DepthWrite: material.Ptr(false)}
	default:
		return material.State{}
	}
}

// Push appends cmd to the bucket of its surface material's queue.
func (q *RenderQueues) Push(cmd DrawCommand) {
	kind := cmd.Surface.Material.Queue()
	if !kind.Valid() {
		kind = material.QueueOpaque
	}
	b := q.buckets[kind]
	b.Commands = append(b.Commands, cmd)
}

// Sort orders Opaque front to back and Transparent back to front. The sort is stable, so
// equal distances keep gather order and sorting twice changes nothing.
func (q *RenderQueues) Sort() {
	slices.SortStableFunc(q.buckets[material.QueueOpaque].Commands, func(a, b DrawCommand) int {
		return compareDistance(a.Distance, b.Distance)
	})
	slices.SortStableFunc(q.buckets[material.QueueTransparent].Commands, func(a, b DrawCommand) int {
		return compareDistance(b.Distance, a.Distance)
	})
}

func compareDistance(a, b float32) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Bucket returns the bucket for kind.
func (q *RenderQueues) Bucket(kind material.RenderQueue) *Bucket {
	return q.buckets[kind]
}

// Buckets returns the buckets in submission order.
func (q *RenderQueues) Buckets() []*Bucket {
	out := make([]*Bucket, len(q.order))
	for i, kind := range q.order {
		out[i] = q.buckets[kind]
	}
	return out
}

// Order returns the submission order.
func (q *RenderQueues) Order() []material.RenderQueue {
	return slices.Clone(q.order)
}

// Count returns the number of commands in the bucket for kind.
func (q *RenderQueues) Count(kind material.RenderQueue) int {
	return len(q.buckets[kind].Commands)
}

// SurfaceCount returns the number of commands across all buckets.
func (q *RenderQueues) SurfaceCount() int {
	n := 0
	for _, b := range q.buckets {
		n += len(b.Commands)
	}
	return n
}

// Reset empties every bucket, keeping allocated capacity.
func (q *RenderQueues) Reset() {
	for _, b := range q.buckets {
		clear(b.Commands)
		b.Commands = b.Commands[:0]
	}
}
