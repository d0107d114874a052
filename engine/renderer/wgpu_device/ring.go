package wgpu_device

import "github.com/pkg/errors"

// ErrUniformRingFull is returned when a frame commits more uniform data than the ring holds.
var ErrUniformRingFull = errors.New("wgpu_device: uniform ring full")

// uniformRing hands out aligned, non-overlapping regions of the per-frame uniform buffer.
// Every CommitUniforms takes a fresh region so earlier draws in the same submission keep
// their values.
type uniformRing struct {
	size   uint64
	align  uint64
	offset uint64
}

func newUniformRing(size, align uint64) *uniformRing {
	if align == 0 {
		align = 256
	}
	return &uniformRing{size: size, align: align}
}

// alloc reserves n bytes and returns their offset.
func (r *uniformRing) alloc(n uint64) (uint64, error) {
	start := (r.offset + r.align - 1) / r.align * r.align
	if start+n > r.size {
		return 0, errors.Wrapf(ErrUniformRingFull, "need %d bytes at %d of %d", n, start, r.size)
	}
	r.offset = start + n
	return start, nil
}

// used returns the number of bytes handed out since the last reset.
func (r *uniformRing) used() uint64 {
	return r.offset
}

// reset makes the whole ring available again. Call only after the work using it was submitted.
func (r *uniformRing) reset() {
	r.offset = 0
}
