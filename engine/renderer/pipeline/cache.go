package pipeline

import "sync"

// Cache holds one Pipeline per Key. Safe for concurrent use.
type Cache struct {
	mu        *sync.Mutex
	pipelines map[Key]Pipeline
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{
		mu:        &sync.Mutex{},
		pipelines: make(map[Key]Pipeline),
	}
}

// GetOrCreate returns the pipeline for key, calling create to build it on a miss.
// A failed create caches nothing.
//
// Parameters:
//   - key: the permutation key
//   - create: builds and initialises the pipeline
//
// Returns:
//   - Pipeline: the cached or new pipeline
//   - bool: true if the pipeline was created by this call
//   - error: the create error, if any
func (c *Cache) GetOrCreate(key Key, create func(Key) (Pipeline, error)) (Pipeline, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.pipelines[key]; ok {
		return p, false, nil
	}
	p, err := create(key)
	if err != nil {
		return nil, false, err
	}
	c.pipelines[key] = p
	return p, true, nil
}

// Get returns the pipeline for key.
func (c *Cache) Get(key Key) (Pipeline, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.pipelines[key]
	return p, ok
}

// Len returns the number of cached pipelines.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pipelines)
}

// Release frees every cached pipeline and empties the cache.
func (c *Cache) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, p := range c.pipelines {
		p.Release()
		delete(c.pipelines, k)
	}
}
