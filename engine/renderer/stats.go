package renderer

// FrameStats is a read-only snapshot of the last render pass.
type FrameStats struct {
	// Surfaces is the number of draw commands gathered across all buckets.
	Surfaces    int
	Opaque      int
	Skybox      int
	Transparent int
	UI          int

	ProgramSwitches int
	TextureSwitches int
	MeshSwitches    int

	// Draws is the number of commands that reached the device.
	Draws int
	// SkippedNotReady counts commands skipped because a resource was still loading.
	SkippedNotReady int
	// Errors counts commands that failed for any other reason.
	Errors int
}
