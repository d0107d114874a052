// Package asset tracks the load state of streamed resources and publishes completed loads at
// frame boundaries.
package asset

import (
	"sync"

	"github.com/pkg/errors"
)

// ErrNotReady reports that a resource is still loading. Callers treat it as "skip this use and
// try again next frame", never as a failure.
var ErrNotReady = errors.New("asset: not ready")

// IsNotReady reports whether err is, or wraps, ErrNotReady.
func IsNotReady(err error) bool {
	return errors.Is(err, ErrNotReady)
}

// Status is the load state of a resource.
type Status int

const (
	// StatusPending means the resource has not finished loading.
	StatusPending Status = iota
	// StatusReady means the resource can be used.
	StatusReady
	// StatusFailed means loading failed permanently.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Loadable is a resource whose readiness is driven by a Streamer.
type Loadable interface {
	// Label names the resource in logs and errors.
	Label() string
	// Status returns nil when ready, ErrNotReady while loading, or the load failure.
	Status() error
	// MarkReady publishes the resource as usable.
	MarkReady()
	// MarkFailed publishes a permanent load failure.
	MarkFailed(err error)
}

// State is an embeddable, goroutine-safe load state. The zero value is pending.
type State struct {
	mu     sync.RWMutex
	status Status
	err    error
}

// NewReadyState returns a State that is already ready, for resources built synchronously.
func NewReadyState() *State {
	return &State{status: StatusReady}
}

// Status returns nil when ready, ErrNotReady while pending, or the wrapped load failure.
func (s *State) Status() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch s.status {
	case StatusReady:
		return nil
	case StatusFailed:
		return s.err
	default:
		return ErrNotReady
	}
}

// Current returns the raw status value.
func (s *State) Current() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// MarkReady transitions the state to ready and clears any previous failure.
func (s *State) MarkReady() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = StatusReady
	s.err = nil
}

// MarkFailed transitions the state to failed. A nil err is recorded as a generic failure.
func (s *State) MarkFailed(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		err = errors.New("asset: load failed")
	}
	s.status = StatusFailed
	s.err = err
}

// MarkPending returns the state to pending, e.g. before a reload.
func (s *State) MarkPending() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = StatusPending
	s.err = nil
}
