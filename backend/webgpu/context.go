// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package webgpu

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gpustate"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Option configures a Context.
type Option func(*Context)

// WithComputePass enables Dispatch on pass.
func WithComputePass(pass hal.ComputePassEncoder) Option {
	return func(c *Context) {
		c.compute = pass
	}
}

// WithPipelines resolves pipeline state through cache. Without it the
// caller sets pipelines on the pass itself.
func WithPipelines(cache *PipelineCache) Option {
	return func(c *Context) {
		c.pipelines = cache
	}
}

// WithAdapterInfo sets the adapter the context reports.
func WithAdapterInfo(info gpucontext.AdapterInfo) Option {
	return func(c *Context) {
		c.adapter = info
	}
}

// Context drives a HAL render pass through the gpustate.NativeContext
// interface.
//
// Per-slot resource binding, stream-out (and so DrawAuto), geometry and
// tessellation stages and multiple viewports do not exist in WebGPU and are
// reported missing, so the applicator skips them. Shaders and fixed-function state are
// collected into a PipelineKey and resolved to a pipeline before the next
// draw.
type Context struct {
	pass      hal.RenderPassEncoder
	compute   hal.ComputePassEncoder
	pipelines *PipelineCache
	adapter   gpucontext.AdapterInfo

	key       PipelineKey
	keyDirty  bool
	computeCS *gpustate.Shader
	csDirty   bool

	err error
}

var _ gpustate.NativeContext = (*Context)(nil)

// New returns a context that records into pass.
func New(pass hal.RenderPassEncoder, opts ...Option) *Context {
	c := &Context{
		pass:    pass,
		adapter: gpucontext.AdapterInfo{Name: "wgpu HAL", Type: gpucontext.AdapterTypeUnknown},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.ClearState()
	return c
}

// AdapterInfo returns the adapter the context runs on.
func (c *Context) AdapterInfo() gpucontext.AdapterInfo {
	return c.adapter
}

// PipelineKey returns the key of the pipeline the next draw uses.
func (c *Context) PipelineKey() PipelineKey {
	return c.key
}

// Err returns the first pipeline creation error, if any. Draws are skipped
// while the pipeline cannot be created.
func (c *Context) Err() error {
	return c.err
}

// Capabilities implements gpustate.NativeContext.
func (c *Context) Capabilities() gpustate.Capabilities {
	caps := gpustate.CapIndirectDraw
	if c.compute != nil {
		caps |= gpustate.CapCompute
	}
	return caps
}

// SetTopology implements gpustate.NativeContext.
func (c *Context) SetTopology(t gpustate.Topology) {
	pt, ok := t.PrimitiveTopology()
	if !ok {
		pt = gputypes.PrimitiveTopologyTriangleList
	}
	c.setKey(func(k *PipelineKey) { k.Topology = pt })
}

// SetInputLayout implements gpustate.NativeContext.
func (c *Context) SetInputLayout(l *gpustate.InputLayout) {
	c.setKey(func(k *PipelineKey) { k.InputLayout = l })
}

// SetShader implements gpustate.NativeContext.
func (c *Context) SetShader(stage gpustate.Stage, s *gpustate.Shader) {
	switch stage {
	case gpustate.StageVertex:
		c.setKey(func(k *PipelineKey) { k.Vertex = s })
	case gpustate.StagePixel:
		c.setKey(func(k *PipelineKey) { k.Pixel = s })
	case gpustate.StageCompute:
		c.computeCS = s
		c.csDirty = true
	}
}

// SetRasterState implements gpustate.NativeContext.
func (c *Context) SetRasterState(s *gpustate.RasterState) {
	c.setKey(func(k *PipelineKey) { k.Raster = s })
}

// SetBlendState implements gpustate.NativeContext. The blend factor is
// dynamic pass state; the sample mask is part of the pipeline and is taken
// from the render targets instead.
func (c *Context) SetBlendState(s *gpustate.BlendState, factor gputypes.Color, _ uint32) {
	c.setKey(func(k *PipelineKey) { k.Blend = s })
	c.pass.SetBlendConstant(&factor)
}

// SetDepthStencilState implements gpustate.NativeContext.
func (c *Context) SetDepthStencilState(s *gpustate.DepthStencilState, stencilRef uint32) {
	c.setKey(func(k *PipelineKey) { k.DepthStencil = s })
	c.pass.SetStencilReference(stencilRef)
}

func (c *Context) setKey(update func(*PipelineKey)) {
	prev := c.key
	update(&c.key)
	if c.key != prev {
		c.keyDirty = true
	}
}

// SetConstantBuffers implements gpustate.NativeContext. WebGPU binds
// through bind groups; never called because CapStageResources is unset.
func (c *Context) SetConstantBuffers(gpustate.Stage, int, []gpustate.ConstantBufferBinding) {}

// SetShaderResources implements gpustate.NativeContext.
func (c *Context) SetShaderResources(gpustate.Stage, int, []*gpustate.ShaderResourceView) {}

// SetSamplers implements gpustate.NativeContext.
func (c *Context) SetSamplers(gpustate.Stage, int, []*gpustate.Sampler) {}

// SetStreamOutTargets implements gpustate.NativeContext.
func (c *Context) SetStreamOutTargets([]gpustate.StreamOutBinding) {}

// SetUnorderedAccessViews implements gpustate.NativeContext.
func (c *Context) SetUnorderedAccessViews(int, []gpustate.UnorderedAccessBinding) {}

// SetComputeUnorderedAccessViews implements gpustate.NativeContext.
func (c *Context) SetComputeUnorderedAccessViews(int, []gpustate.UnorderedAccessBinding) {}

// SetVertexBuffers implements gpustate.NativeContext. A render pass cannot
// unbind a vertex buffer, so nil entries keep the previous buffer.
func (c *Context) SetVertexBuffers(start int, buffers []gpustate.VertexBufferBinding) {
	for i, b := range buffers {
		if buf := halBuffer(b.Buffer); buf != nil {
			c.pass.SetVertexBuffer(uint32(start+i), buf, uint64(b.Offset))
		}
	}
}

// SetIndexBuffer implements gpustate.NativeContext.
func (c *Context) SetIndexBuffer(b gpustate.IndexBufferBinding) {
	if buf := halBuffer(b.Buffer); buf != nil {
		c.pass.SetIndexBuffer(buf, b.Format, uint64(b.Offset))
	}
}

func halBuffer(b *gpustate.Buffer) hal.Buffer {
	if b == nil {
		return nil
	}
	buf, _ := b.Native().(hal.Buffer)
	return buf
}

// SetRenderTargets implements gpustate.NativeContext. Attachments are fixed
// when the pass begins; the formats select the pipeline.
func (c *Context) SetRenderTargets(targets []*gpustate.RenderTargetView, depth *gpustate.DepthStencilView) {
	c.setKey(func(k *PipelineKey) {
		k.ColorFormats = [gpustate.MaxRenderTargets]gputypes.TextureFormat{}
		k.SampleCount = 1
		for i, v := range targets {
			if v == nil {
				continue
			}
			k.ColorFormats[i] = v.Format
			k.SampleCount = v.Texture.Multisample.Count
		}
		k.DepthFormat = gputypes.TextureFormatUndefined
		if depth != nil {
			k.DepthFormat = depth.Format
			k.SampleCount = depth.Texture.Multisample.Count
		}
	})
}

// SetViewports implements gpustate.NativeContext.
func (c *Context) SetViewports(viewports []gpustate.Viewport) {
	if len(viewports) == 0 {
		return
	}
	v := viewports[0]
	c.pass.SetViewport(v.X, v.Y, v.Width, v.Height, v.MinDepth, v.MaxDepth)
}

// SetScissorRects implements gpustate.NativeContext.
func (c *Context) SetScissorRects(rects []gpustate.Rect) {
	if len(rects) == 0 {
		return
	}
	r := rects[0]
	left, top := max(r.Left, 0), max(r.Top, 0)
	width, height := max(r.Right-left, 0), max(r.Bottom-top, 0)
	c.pass.SetScissorRect(uint32(left), uint32(top), uint32(width), uint32(height))
}

// ClearState implements gpustate.NativeContext. WebGPU has no state reset;
// the pending pipeline key returns to its defaults.
func (c *Context) ClearState() {
	c.key = PipelineKey{Topology: gputypes.PrimitiveTopologyTriangleList, SampleCount: 1}
	c.keyDirty = true
	c.computeCS = nil
	c.csDirty = true
}

func (c *Context) flushRender() bool {
	if c.pipelines == nil || !c.keyDirty {
		return true
	}
	p, err := c.pipelines.Render(c.key)
	if err != nil {
		if c.err == nil {
			c.err = err
			gpustate.Logger().Warn("webgpu: render pipeline creation failed", "error", err)
		}
		return false
	}
	c.err = nil
	c.keyDirty = false
	if p != nil {
		c.pass.SetPipeline(p)
	}
	return true
}

// Draw implements gpustate.NativeContext.
func (c *Context) Draw(vertexCount, startVertex uint32) {
	if c.flushRender() {
		c.pass.Draw(vertexCount, 1, startVertex, 0)
	}
}

// DrawIndexed implements gpustate.NativeContext.
func (c *Context) DrawIndexed(indexCount, startIndex uint32, baseVertex int32) {
	if c.flushRender() {
		c.pass.DrawIndexed(indexCount, 1, startIndex, baseVertex, 0)
	}
}

// DrawInstanced implements gpustate.NativeContext.
func (c *Context) DrawInstanced(vertexCount, instanceCount, startVertex, startInstance uint32) {
	if c.flushRender() {
		c.pass.Draw(vertexCount, instanceCount, startVertex, startInstance)
	}
}

// DrawIndexedInstanced implements gpustate.NativeContext.
func (c *Context) DrawIndexedInstanced(indexCount, instanceCount, startIndex uint32, baseVertex int32, startInstance uint32) {
	if c.flushRender() {
		c.pass.DrawIndexed(indexCount, instanceCount, startIndex, baseVertex, startInstance)
	}
}

// Dispatch implements gpustate.NativeContext.
func (c *Context) Dispatch(x, y, z uint32) {
	if c.flushCompute() {
		c.compute.Dispatch(x, y, z)
	}
}

// DrawAuto implements gpustate.NativeContext. WebGPU has no stream-out, so
// it is never called.
func (c *Context) DrawAuto() {}

// DrawInstancedIndirect implements gpustate.NativeContext. The argument
// layout matches WebGPU's draw indirect arguments.
func (c *Context) DrawInstancedIndirect(args *gpustate.Buffer, offset uint32) {
	if buf := halBuffer(args); buf != nil && c.flushRender() {
		c.pass.DrawIndirect(buf, uint64(offset))
	}
}

// DrawIndexedInstancedIndirect implements gpustate.NativeContext.
func (c *Context) DrawIndexedInstancedIndirect(args *gpustate.Buffer, offset uint32) {
	if buf := halBuffer(args); buf != nil && c.flushRender() {
		c.pass.DrawIndexedIndirect(buf, uint64(offset))
	}
}

// DispatchIndirect implements gpustate.NativeContext.
func (c *Context) DispatchIndirect(args *gpustate.Buffer, offset uint32) {
	if buf := halBuffer(args); buf != nil && c.flushCompute() {
		c.compute.DispatchIndirect(buf, uint64(offset))
	}
}

// flushCompute sets the compute pipeline if the shader changed. It reports
// whether a dispatch may be issued.
func (c *Context) flushCompute() bool {
	if c.compute == nil {
		return false
	}
	if c.csDirty && c.pipelines != nil && c.computeCS != nil {
		p, err := c.pipelines.Compute(c.computeCS)
		if err != nil {
			gpustate.Logger().Warn("webgpu: compute pipeline creation failed", "error", err)
			return false
		}
		if p != nil {
			c.compute.SetPipeline(p)
		}
		c.csDirty = false
	}
	return true
}
