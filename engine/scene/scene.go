package scene

import (
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-render/engine/game_object"
	"github.com/Carmen-Shannon/oxy-render/engine/handle"
	"github.com/Carmen-Shannon/oxy-render/engine/logger"
	"go.uber.org/zap"
)

// minChunk is the smallest number of objects handed to one update worker.
const minChunk = 64

// Scene owns the game objects of a level and hands out generational handles to them.
// Everything outside the scene, the renderer included, refers to objects only by handle and
// treats a handle that no longer resolves as absence.
// Thread-safe for concurrent access.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// SetName sets the scene's identifier.
	SetName(name string)

	// Active returns whether this scene is currently active for rendering.
	Active() bool

	// SetActive sets whether this scene is active for rendering.
	SetActive(active bool)

	// Spawn takes ownership of obj, assigns it an ID if it has none and returns its handle.
	//
	// Parameters:
	//   - obj: the object to add
	//
	// Returns:
	//   - handle.Handle: the handle addressing obj
	Spawn(obj game_object.GameObject) handle.Handle

	// Despawn removes the object addressed by h. Outstanding handles to it stop resolving.
	//
	// Parameters:
	//   - h: the object's handle
	//
	// Returns:
	//   - bool: true if a live object was removed
	Despawn(h handle.Handle) bool

	// Resolve looks up the object addressed by h.
	//
	// Parameters:
	//   - h: the handle to resolve
	//
	// Returns:
	//   - game_object.GameObject: the object, or nil
	//   - bool: false if h is dead
	Resolve(h handle.Handle) (game_object.GameObject, bool)

	// Alive reports whether h still resolves.
	Alive(h handle.Handle) bool

	// Each calls fn for every live object in slot order until fn returns false.
	// fn must not spawn or despawn.
	Each(fn func(handle.Handle, game_object.GameObject) bool)

	// Len returns the number of live objects.
	Len() int

	// Update advances every enabled object by dt, spreading the work over the update pool
	// when the scene is large.
	//
	// Parameters:
	//   - dt: elapsed time in seconds
	Update(dt float32)

	// Close stops the update pool.
	Close()
}

type scene struct {
	mu *sync.Mutex

	name    string
	active  bool
	objects *handle.Arena[game_object.GameObject]
	nextID  uint64

	pool    worker.DynamicWorkerPool
	workers int
	taskID  int

	log *zap.Logger
}

var _ Scene = &scene{}

// NewScene creates an empty, active scene.
//
// Parameters:
//   - options: functional options to configure the scene
//
// Returns:
//   - Scene: the new scene
func NewScene(options ...SceneBuilderOption) Scene {
	s := &scene{
		mu:      &sync.Mutex{},
		active:  true,
		objects: handle.NewArena[game_object.GameObject](64),
		nextID:  1,
		workers: max(runtime.NumCPU()-1, 1),
		log:     logger.Nop(),
	}
	for _, opt := range options {
		opt(s)
	}
	s.pool = worker.NewDynamicWorkerPool(s.workers, 256, 1*time.Second)
	return s
}

func (s *scene) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

func (s *scene) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

func (s *scene) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *scene) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

func (s *scene) Spawn(obj game_object.GameObject) handle.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spawn(obj)
}

// spawn inserts obj. Caller must hold the mutex.
func (s *scene) spawn(obj game_object.GameObject) handle.Handle {
	if obj.ID() == 0 {
		obj.SetID(s.nextID)
		s.nextID++
	}
	h := s.objects.Insert(obj)
	s.log.Debug("spawned object", zap.Uint64("id", obj.ID()), zap.Stringer("handle", h))
	return h
}

func (s *scene) Despawn(h handle.Handle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.objects.Get(h)
	if !ok {
		return false
	}
	s.objects.Remove(h)
	s.log.Debug("despawned object", zap.Uint64("id", obj.ID()), zap.Stringer("handle", h))
	return true
}

func (s *scene) Resolve(h handle.Handle) (game_object.GameObject, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.objects.Get(h)
}

func (s *scene) Alive(h handle.Handle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.objects.Alive(h)
}

func (s *scene) Each(fn func(handle.Handle, game_object.GameObject) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects.Each(fn)
}

func (s *scene) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.objects.Len()
}

func (s *scene) Update(dt float32) {
	s.mu.Lock()
	objs := make([]game_object.GameObject, 0, s.objects.Len())
	s.objects.Each(func(_ handle.Handle, obj game_object.GameObject) bool {
		if obj.Enabled() {
			objs = append(objs, obj)
		}
		return true
	})
	s.mu.Unlock()

	if len(objs) <= minChunk || s.workers == 1 {
		for _, obj := range objs {
			obj.Update(dt)
		}
		return
	}

	// Workers are reused across frames; the WaitGroup is the per-frame barrier since
	// pool.Wait only returns once workers idle out.
	chunk := max((len(objs)+s.workers-1)/s.workers, minChunk)
	var wg sync.WaitGroup
	for start := 0; start < len(objs); start += chunk {
		part := objs[start:min(start+chunk, len(objs))]
		wg.Add(1)
		s.taskID++
		s.pool.SubmitTask(worker.Task{
			ID: s.taskID,
			Do: func() (any, error) {
				defer wg.Done()
				for _, obj := range part {
					obj.Update(dt)
				}
				return nil, nil
			},
		})
	}
	wg.Wait()
}

func (s *scene) Close() {
	s.pool.Stop()
}
