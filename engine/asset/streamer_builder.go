package asset

import (
	"time"

	"go.uber.org/zap"
)

// StreamerBuilderOption is a functional option applied to a streamer during construction via NewStreamer.
type StreamerBuilderOption func(*streamer)

// WithWorkers sets the maximum number of concurrent load workers. Values below 1 are clamped to 1.
//
// Parameters:
//   - n: worker count
//
// Returns:
//   - StreamerBuilderOption: option function to apply
func WithWorkers(n int) StreamerBuilderOption {
	return func(s *streamer) {
		s.workers = max(n, 1)
	}
}

// WithQueueSize sets the task queue capacity of the worker pool.
//
// Parameters:
//   - n: queue capacity
//
// Returns:
//   - StreamerBuilderOption: option function to apply
func WithQueueSize(n int) StreamerBuilderOption {
	return func(s *streamer) {
		if n > 0 {
			s.queueSize = n
		}
	}
}

// WithIdleTimeout sets how long an idle worker lingers before exiting.
//
// Parameters:
//   - d: idle timeout
//
// Returns:
//   - StreamerBuilderOption: option function to apply
func WithIdleTimeout(d time.Duration) StreamerBuilderOption {
	return func(s *streamer) {
		if d > 0 {
			s.idleTimeout = d
		}
	}
}

// WithLogger sets the logger used to report load outcomes.
//
// Parameters:
//   - l: the logger
//
// Returns:
//   - StreamerBuilderOption: option function to apply
func WithLogger(l *zap.Logger) StreamerBuilderOption {
	return func(s *streamer) {
		if l != nil {
			s.log = l.Named("asset")
		}
	}
}
