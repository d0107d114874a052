// Package handle provides stable generational handles into an owning arena and monotonically
// assigned identity tokens for GPU resources.
//
// A Handle never keeps its target alive: the arena is the sole owner and liveness is a single
// generation comparison. Resources compare by ID rather than by pointer so caches keyed on
// identity stay valid regardless of how the resource itself is held.
package handle

import (
	"fmt"
	"sync/atomic"
)

// ID is a process-unique identity token. Zero is never assigned and means "no resource".
type ID uint64

var lastID atomic.Uint64

// NextID returns a fresh identity token. Tokens increase monotonically and are never reused.
func NextID() ID {
	return ID(lastID.Add(1))
}

// Handle addresses a slot in an Arena. The zero Handle is invalid.
type Handle struct {
	index      uint32
	generation uint32
}

// Index returns the slot index addressed by the handle.
func (h Handle) Index() uint32 {
	return h.index
}

// Generation returns the slot generation captured when the handle was issued.
func (h Handle) Generation() uint32 {
	return h.generation
}

// IsZero reports whether h is the zero (never issued) handle.
func (h Handle) IsZero() bool {
	return h.generation == 0
}

func (h Handle) String() string {
	return fmt.Sprintf("%d:%d", h.index, h.generation)
}
