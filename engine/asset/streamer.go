package asset

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-render/engine/logger"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ErrStreamerClosed is returned by Enqueue after Close.
var ErrStreamerClosed = errors.New("asset: streamer closed")

// completion is a finished load waiting to be published on the next Step.
type completion struct {
	target Loadable
	err    error
}

// streamer is the implementation of the Streamer interface.
type streamer struct {
	mu        *sync.Mutex
	completed []completion
	closed    bool

	pool        worker.DynamicWorkerPool
	workers     int
	queueSize   int
	idleTimeout time.Duration

	taskID   atomic.Int64
	inFlight atomic.Int64
	wg       sync.WaitGroup

	log *zap.Logger
}

// Streamer loads resources on a bounded worker pool and publishes their readiness on the render
// thread. Loads run concurrently, but a resource only flips to ready (or failed) inside Step, so
// readiness can never change in the middle of a frame.
type Streamer interface {
	// Step publishes every load that finished since the previous Step. Call once per frame
	// before any rendering.
	Step()

	// Enqueue marks target pending and schedules load on a worker. The load function must not
	// touch the GPU; it prepares CPU-side data that the device uploads on first bind.
	//
	// Parameters:
	//   - target: the resource whose state the load drives
	//   - load: the work to run; a nil return marks target ready, an error marks it failed
	//
	// Returns:
	//   - error: ErrStreamerClosed if the streamer has been closed
	Enqueue(target Loadable, load func() error) error

	// Pending returns the number of loads that have been enqueued but not yet published.
	//
	// Returns:
	//   - int: loads still running or awaiting Step
	Pending() int

	// Close stops accepting work and blocks until every running load has finished. Finished
	// loads are still published by a final Step call.
	Close()
}

var _ Streamer = &streamer{}

// NewStreamer creates a Streamer backed by a dynamic worker pool.
//
// Parameters:
//   - options: functional options to configure the streamer
//
// Returns:
//   - Streamer: the new streamer
func NewStreamer(options ...StreamerBuilderOption) Streamer {
	s := &streamer{
		mu:          &sync.Mutex{},
		workers:     max(runtime.NumCPU()/2, 1),
		queueSize:   256,
		idleTimeout: 2 * time.Second,
		log:         logger.Nop(),
	}
	for _, opt := range options {
		opt(s)
	}

	s.pool = worker.NewDynamicWorkerPool(s.workers, s.queueSize, s.idleTimeout)
	return s
}

func (s *streamer) Enqueue(target Loadable, load func() error) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrStreamerClosed
	}
	s.wg.Add(1)
	s.mu.Unlock()

	if p, ok := target.(interface{ MarkPending() }); ok {
		p.MarkPending()
	}
	s.inFlight.Add(1)

	id := int(s.taskID.Add(1))
	s.pool.SubmitTask(worker.Task{
		ID: id,
		Do: func() (any, error) {
			defer s.wg.Done()

			err := runLoad(load)
			if err != nil {
				err = errors.Wrapf(err, "load %s", target.Label())
			}

			s.mu.Lock()
			s.completed = append(s.completed, completion{target: target, err: err})
			s.mu.Unlock()
			return nil, nil
		},
	})
	return nil
}

func (s *streamer) Step() {
	s.mu.Lock()
	done := s.completed
	s.completed = nil
	s.mu.Unlock()

	for _, c := range done {
		if c.err != nil {
			s.log.Warn("asset load failed", zap.String("asset", c.target.Label()), zap.Error(c.err))
			c.target.MarkFailed(c.err)
		} else {
			s.log.Debug("asset ready", zap.String("asset", c.target.Label()))
			c.target.MarkReady()
		}
		s.inFlight.Add(-1)
	}
}

func (s *streamer) Pending() int {
	return int(s.inFlight.Load())
}

func (s *streamer) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()
	s.wg.Wait()
	s.pool.Stop()
}

// runLoad converts a panicking load into an error so one bad asset cannot take down a worker.
func runLoad(load func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("panic during load: %v", r)
		}
	}()
	return load()
}
