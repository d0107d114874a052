package handle

type slot[T any] struct {
	value      T
	generation uint32
	occupied   bool
}

// Arena owns values of type T and hands out generational handles to them.
// Removing a value bumps its slot generation so every outstanding handle to it stops resolving.
// Freed slots are reused. An Arena is not safe for concurrent use.
type Arena[T any] struct {
	slots []slot[T]
	free  []uint32
	count int
}

// NewArena creates an empty arena with room for capacity values before growing.
//
// Parameters:
//   - capacity: initial slot capacity hint
//
// Returns:
//   - *Arena[T]: the new arena
func NewArena[T any](capacity int) *Arena[T] {
	return &Arena[T]{
		slots: make([]slot[T], 0, capacity),
	}
}

// Insert stores value and returns a handle addressing it.
//
// Parameters:
//   - value: the value to store
//
// Returns:
//   - Handle: a handle that resolves until the value is removed
func (a *Arena[T]) Insert(value T) Handle {
	a.count++
	if n := len(a.free); n > 0 {
		idx := a.free[n-1]
		a.free = a.free[:n-1]
		s := &a.slots[idx]
		s.value = value
		s.occupied = true
		return Handle{index: idx, generation: s.generation}
	}

	a.slots = append(a.slots, slot[T]{value: value, generation: 1, occupied: true})
	return Handle{index: uint32(len(a.slots) - 1), generation: 1}
}

// Get resolves h. The boolean is false when h was never issued by this arena or its value has
// since been removed.
//
// Parameters:
//   - h: the handle to resolve
//
// Returns:
//   - T: the stored value, or the zero value if h is dead
//   - bool: true if h is live
func (a *Arena[T]) Get(h Handle) (T, bool) {
	if !a.Alive(h) {
		var zero T
		return zero, false
	}
	return a.slots[h.index].value, true
}

// Alive reports whether h still resolves.
func (a *Arena[T]) Alive(h Handle) bool {
	if h.IsZero() || int(h.index) >= len(a.slots) {
		return false
	}
	s := &a.slots[h.index]
	return s.occupied && s.generation == h.generation
}

// Remove drops the value addressed by h and invalidates every handle to it.
//
// Parameters:
//   - h: the handle whose value should be removed
//
// Returns:
//   - bool: true if a live value was removed
func (a *Arena[T]) Remove(h Handle) bool {
	if !a.Alive(h) {
		return false
	}
	s := &a.slots[h.index]
	var zero T
	s.value = zero
	s.occupied = false
	s.generation++
	if s.generation == 0 {
		// skip zero so a wrapped slot can never produce the invalid handle
		s.generation = 1
	}
	a.free = append(a.free, h.index)
	a.count--
	return true
}

// Len returns the number of live values.
func (a *Arena[T]) Len() int {
	return a.count
}

// Each calls fn for every live value in slot order until fn returns false.
func (a *Arena[T]) Each(fn func(Handle, T) bool) {
	for i := range a.slots {
		s := &a.slots[i]
		if !s.occupied {
			continue
		}
		if !fn(Handle{index: uint32(i), generation: s.generation}, s.value) {
			return
		}
	}
}
