package gpustate

import (
	"sync"
	"sync/atomic"

	"github.com/gogpu/gputypes"
)

// StateCache canonicalizes immutable state objects. Equal values always map
// to the same pointer, which lets the evaluator compare state objects by
// identity.
//
// Thread Safety:
// StateCache is safe for concurrent use. It uses RWMutex with double-check
// locking for efficient reads and safe writes.
//
// Usage:
//
//	cache := gpustate.NewStateCache()
//	raster := cache.Raster(gpustate.DefaultRasterState())
//	pipeline := &gpustate.PipelineState{Raster: raster}
//
// The cache tracks hit/miss statistics for performance monitoring.
type StateCache struct {
	mu sync.RWMutex

	raster       map[RasterState]*RasterState
	blend        map[BlendState]*BlendState
	depthStencil map[DepthStencilState]*DepthStencilState
	samplers     map[gputypes.SamplerDescriptor]*Sampler

	// newSampler creates native samplers. nil creates samplers without a
	// native handle.
	newSampler func(gputypes.SamplerDescriptor) (*Sampler, error)

	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewStateCache returns an empty cache.
func NewStateCache() *StateCache {
	return &StateCache{
		raster:       make(map[RasterState]*RasterState),
		blend:        make(map[BlendState]*BlendState),
		depthStencil: make(map[DepthStencilState]*DepthStencilState),
		samplers:     make(map[gputypes.SamplerDescriptor]*Sampler),
	}
}

// NewSamplerCache returns a cache that creates samplers through factory.
func NewSamplerCache(factory ResourceFactory) *StateCache {
	c := NewStateCache()
	c.newSampler = factory.CreateSampler
	return c
}

// getOrCreate implements the "get or create" pattern with double-check
// locking:
//  1. Fast path: RLock, check map, return if found
//  2. Slow path: Lock, double-check, create if needed
func getOrCreate[K comparable, V any](c *StateCache, m map[K]*V, key K, create func() (*V, error)) (*V, error) {
	c.mu.RLock()
	if v, ok := m[key]; ok {
		c.mu.RUnlock()
		c.hits.Add(1)
		return v, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	if v, ok := m[key]; ok {
		c.hits.Add(1)
		return v, nil
	}
	v, err := create()
	if err != nil {
		return nil, err
	}
	m[key] = v
	c.misses.Add(1)
	return v, nil
}

func clone[T any](v T) func() (*T, error) {
	return func() (*T, error) { return &v, nil }
}

// Raster returns the canonical pointer for s.
func (c *StateCache) Raster(s RasterState) *RasterState {
	v, _ := getOrCreate(c, c.raster, s, clone(s))
	return v
}

// Blend returns the canonical pointer for s.
func (c *StateCache) Blend(s BlendState) *BlendState {
	v, _ := getOrCreate(c, c.blend, s, clone(s))
	return v
}

// DepthStencil returns the canonical pointer for s.
func (c *StateCache) DepthStencil(s DepthStencilState) *DepthStencilState {
	v, _ := getOrCreate(c, c.depthStencil, s, clone(s))
	return v
}

// Sampler returns the canonical sampler for desc, creating it on first use.
func (c *StateCache) Sampler(desc gputypes.SamplerDescriptor) (*Sampler, error) {
	return getOrCreate(c, c.samplers, desc, func() (*Sampler, error) {
		if c.newSampler == nil {
			return NewSampler(desc, nil, nil), nil
		}
		return c.newSampler(desc)
	})
}

// Stats returns cache hit and miss counts.
func (c *StateCache) Stats() (hits, misses uint64) {
	return c.hits.Load(), c.misses.Load()
}

// Size returns the number of cached objects.
func (c *StateCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.raster) + len(c.blend) + len(c.depthStencil) + len(c.samplers)
}

// Clear drops every cached object and resets the statistics. Cached
// samplers are not released; they belong to whoever created them.
func (c *StateCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.raster)
	clear(c.blend)
	clear(c.depthStencil)
	clear(c.samplers)
	c.hits.Store(0)
	c.misses.Store(0)
}
