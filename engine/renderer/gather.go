package renderer

import (
	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/game_object"
	"github.com/Carmen-Shannon/oxy-render/engine/handle"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
)

// cullExempt reports whether surfaces in queue kind are drawn without a frustum test.
func cullExempt(kind material.RenderQueue) bool {
	return kind == material.QueueSkybox || kind == material.QueueUI
}

// gather pushes a draw command for every visible surface of obj.
//
// Inactive objects and objects without a mesh contribute nothing. The world matrix is computed
// once per object. A surface is culled when its bounding sphere, moved to world space and
// scaled by the largest world scale axis, lies entirely outside the frustum. Skybox and UI
// surfaces, and surfaces without bounds, are never culled.
//
// Parameters:
//   - h: the object's handle, carried on each command
//   - obj: the object to gather
//   - eye: the camera eye in world space
//   - frustum: the camera frustum
//   - queues: the buckets to push into
//
// Returns:
//   - int: the number of commands pushed
func gather(h handle.Handle, obj game_object.GameObject, eye mgl32.Vec3, frustum common.Frustum, queues *RenderQueues) int {
	if obj == nil || !obj.Enabled() {
		return 0
	}
	mesh := obj.Mesh()
	surfaces := mesh.Surfaces()
	if len(surfaces) == 0 {
		return 0
	}

	world := obj.WorldMatrix()
	var (
		scale    float32
		scaled   bool
		distance = common.Translation(world).Sub(eye).LenSqr()
		pushed   int
	)
	for _, surf := range surfaces {
		if surf == nil || surf.Geometry == nil || surf.Material == nil {
			continue
		}
		if bounds, ok := surf.Bounds(); ok && !cullExempt(surf.Material.Queue()) {
			if !scaled {
				scale = common.MaxComponent(obj.WorldScale())
				scaled = true
			}
			center := mgl32.TransformCoordinate(bounds.Center, world)
			if !frustum.IntersectsSphere(center, bounds.Radius*scale) {
				continue
			}
		}
		queues.Push(DrawCommand{
			Surface:  surf,
			Object:   h,
			Model:    world,
			Distance: distance,
		})
		pushed++
	}
	return pushed
}
