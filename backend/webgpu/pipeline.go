// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package webgpu

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gpustate"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// ErrNilPipelineBuilder is returned by NewPipelineCache without a builder.
var ErrNilPipelineBuilder = errors.New("webgpu: pipeline builder is nil")

// PipelineKey identifies a render pipeline. WebGPU bakes shaders, fixed
// function state and the attachment formats into one immutable object, so
// every field is part of the key. State objects are compared by identity;
// use a gpustate.StateCache to make equal states share a pointer.
type PipelineKey struct {
	Topology     gputypes.PrimitiveTopology
	InputLayout  *gpustate.InputLayout
	Vertex       *gpustate.Shader
	Pixel        *gpustate.Shader
	Raster       *gpustate.RasterState
	Blend        *gpustate.BlendState
	DepthStencil *gpustate.DepthStencilState

	ColorFormats [gpustate.MaxRenderTargets]gputypes.TextureFormat
	DepthFormat  gputypes.TextureFormat
	SampleCount  uint32
}

// PipelineBuilder creates the render pipeline for a key. Returning nil
// leaves the current pipeline bound.
type PipelineBuilder func(key PipelineKey) (hal.RenderPipeline, error)

// ComputePipelineBuilder creates the compute pipeline for a shader.
type ComputePipelineBuilder func(shader *gpustate.Shader) (hal.ComputePipeline, error)

// PipelineCache caches render and compute pipelines by key.
//
// Thread Safety:
// PipelineCache is safe for concurrent use. It uses RWMutex with
// double-check locking for efficient reads and safe writes.
type PipelineCache struct {
	mu sync.RWMutex

	render  map[PipelineKey]hal.RenderPipeline
	compute map[*gpustate.Shader]hal.ComputePipeline

	buildRender  PipelineBuilder
	buildCompute ComputePipelineBuilder

	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewPipelineCache returns an empty cache. buildCompute may be nil when no
// compute pass is used.
func NewPipelineCache(build PipelineBuilder, buildCompute ComputePipelineBuilder) (*PipelineCache, error) {
	if build == nil {
		return nil, ErrNilPipelineBuilder
	}
	return &PipelineCache{
		render:       make(map[PipelineKey]hal.RenderPipeline),
		compute:      make(map[*gpustate.Shader]hal.ComputePipeline),
		buildRender:  build,
		buildCompute: buildCompute,
	}, nil
}

// Render returns the cached pipeline for key or builds it.
func (c *PipelineCache) Render(key PipelineKey) (hal.RenderPipeline, error) {
	c.mu.RLock()
	if p, ok := c.render[key]; ok {
		c.mu.RUnlock()
		c.hits.Add(1)
		return p, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.render[key]; ok {
		c.hits.Add(1)
		return p, nil
	}
	p, err := c.buildRender(key)
	if err != nil {
		return nil, err
	}
	c.render[key] = p
	c.misses.Add(1)
	return p, nil
}

// Compute returns the cached compute pipeline for shader or builds it.
func (c *PipelineCache) Compute(shader *gpustate.Shader) (hal.ComputePipeline, error) {
	if c.buildCompute == nil {
		return nil, nil
	}

	c.mu.RLock()
	if p, ok := c.compute[shader]; ok {
		c.mu.RUnlock()
		c.hits.Add(1)
		return p, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.compute[shader]; ok {
		c.hits.Add(1)
		return p, nil
	}
	p, err := c.buildCompute(shader)
	if err != nil {
		return nil, err
	}
	c.compute[shader] = p
	c.misses.Add(1)
	return p, nil
}

// Stats returns the number of cache hits and misses.
func (c *PipelineCache) Stats() (hits, misses uint64) {
	return c.hits.Load(), c.misses.Load()
}

// Size returns the number of cached pipelines.
func (c *PipelineCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.render) + len(c.compute)
}

// Destroy destroys every cached pipeline and empties the cache.
func (c *PipelineCache) Destroy() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, p := range c.render {
		if p != nil {
			p.Destroy()
		}
		delete(c.render, k)
	}
	for k, p := range c.compute {
		if p != nil {
			p.Destroy()
		}
		delete(c.compute, k)
	}
}
