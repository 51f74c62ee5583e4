// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build windows

package d3d11

import (
	"syscall"
	"unsafe"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gpustate"
	"github.com/gogpu/gputypes"
)

// Context drives an ID3D11DeviceContext.
//
// Shaders, views, samplers, input layouts and buffers must carry their COM
// pointer as native handle. Raster, blend and depth-stencil state objects
// are created on first use and cached by pointer, so pass states through a
// gpustate.StateCache.
type Context struct {
	dev  *device
	ctx  *deviceContext
	ctx1 *deviceContext

	caps    gpustate.Capabilities
	adapter gpucontext.AdapterInfo

	setShader [gpustate.StageCount]uintptr
	setCB     [gpustate.StageCount]uintptr
	setCB1    [gpustate.StageCount]uintptr
	setSRV    [gpustate.StageCount]uintptr
	setSamp   [gpustate.StageCount]uintptr

	raster map[*gpustate.RasterState]uintptr
	blend  map[*gpustate.BlendState]uintptr
	depth  map[*gpustate.DepthStencilState]uintptr

	ptrs    []uintptr
	u32a    []uint32
	u32b    []uint32
	counts  []uint32
	ports   []viewport
	scissor []rect
}

var _ gpustate.NativeContext = (*Context)(nil)

// Open creates a device on the default adapter. It tries the hardware
// driver first and falls back to WARP.
func Open() (*Context, error) {
	dev, ctx, err := createDevice(driverTypeHardware)
	info := gpucontext.AdapterInfo{Name: "Direct3D 11", Type: gpucontext.AdapterTypeUnknown}
	if err != nil {
		gpustate.Logger().Debug("d3d11: hardware device unavailable", "error", err)
		if dev, ctx, err = createDevice(driverTypeWARP); err != nil {
			return nil, err
		}
		info = gpucontext.AdapterInfo{Name: "Direct3D 11 WARP", Type: gpucontext.AdapterTypeSoftware}
	}
	return newContext(dev, ctx, info), nil
}

func newContext(dev *device, ctx *deviceContext, info gpucontext.AdapterInfo) *Context {
	c := &Context{
		dev:     dev,
		ctx:     ctx,
		ctx1:    ctx.queryContext1(),
		adapter: info,
		raster:  make(map[*gpustate.RasterState]uintptr),
		blend:   make(map[*gpustate.BlendState]uintptr),
		depth:   make(map[*gpustate.DepthStencilState]uintptr),
	}
	c.caps = capabilitiesFor(dev.featureLevel(), c.ctx1 != nil)

	v := ctx.Vtbl
	c.setShader = [...]uintptr{v.VSSetShader, v.PSSetShader, v.GSSetShader, v.HSSetShader, v.DSSetShader, v.CSSetShader}
	c.setCB = [...]uintptr{v.VSSetConstantBuffers, v.PSSetConstantBuffers, v.GSSetConstantBuffers, v.HSSetConstantBuffers, v.DSSetConstantBuffers, v.CSSetConstantBuffers}
	c.setSRV = [...]uintptr{v.VSSetShaderResources, v.PSSetShaderResources, v.GSSetShaderResources, v.HSSetShaderResources, v.DSSetShaderResources, v.CSSetShaderResources}
	c.setSamp = [...]uintptr{v.VSSetSamplers, v.PSSetSamplers, v.GSSetSamplers, v.HSSetSamplers, v.DSSetSamplers, v.CSSetSamplers}
	if c.ctx1 != nil {
		v1 := c.ctx1.Vtbl
		c.setCB1 = [...]uintptr{v1.VSSetConstantBuffers1, v1.PSSetConstantBuffers1, v1.GSSetConstantBuffers1, v1.HSSetConstantBuffers1, v1.DSSetConstantBuffers1, v1.CSSetConstantBuffers1}
	}
	return c
}

// AdapterInfo returns the adapter the device was created on.
func (c *Context) AdapterInfo() gpucontext.AdapterInfo {
	return c.adapter
}

// Close releases cached state objects, the immediate context and the
// device.
func (c *Context) Close() {
	for k, h := range c.raster {
		release(unsafe.Pointer(h))
		delete(c.raster, k)
	}
	for k, h := range c.blend {
		release(unsafe.Pointer(h))
		delete(c.blend, k)
	}
	for k, h := range c.depth {
		release(unsafe.Pointer(h))
		delete(c.depth, k)
	}
	release(unsafe.Pointer(c.ctx1))
	release(unsafe.Pointer(c.ctx))
	release(unsafe.Pointer(c.dev))
}

func ptr[T any](s []T) uintptr {
	if len(s) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&s[0]))
}

// Capabilities implements gpustate.NativeContext.
func (c *Context) Capabilities() gpustate.Capabilities {
	return c.caps
}

// SetTopology implements gpustate.NativeContext.
func (c *Context) SetTopology(t gpustate.Topology) {
	syscall.SyscallN(c.ctx.Vtbl.IASetPrimitiveTopology, c.ctx.this(), uintptr(primitiveTopology(t)))
}

// SetInputLayout implements gpustate.NativeContext.
func (c *Context) SetInputLayout(l *gpustate.InputLayout) {
	var h uintptr
	if l != nil {
		h = l.NativeHandle()
	}
	syscall.SyscallN(c.ctx.Vtbl.IASetInputLayout, c.ctx.this(), h)
}

// SetShader implements gpustate.NativeContext.
func (c *Context) SetShader(stage gpustate.Stage, s *gpustate.Shader) {
	var h uintptr
	if s != nil {
		h = s.NativeHandle()
	}
	syscall.SyscallN(c.setShader[stage], c.ctx.this(), h, 0, 0)
}

// SetRasterState implements gpustate.NativeContext.
func (c *Context) SetRasterState(s *gpustate.RasterState) {
	var h uintptr
	if s != nil {
		h = lazyState(c.raster, s, func() (uintptr, error) {
			d := newRasterizerDesc(s)
			return c.dev.createRasterizerState(&d)
		})
	}
	syscall.SyscallN(c.ctx.Vtbl.RSSetState, c.ctx.this(), h)
}

// SetBlendState implements gpustate.NativeContext.
func (c *Context) SetBlendState(s *gpustate.BlendState, factor gputypes.Color, sampleMask uint32) {
	var h uintptr
	if s != nil {
		h = lazyState(c.blend, s, func() (uintptr, error) {
			d := newBlendDesc(s)
			return c.dev.createBlendState(&d)
		})
	}
	f := [4]float32{float32(factor.R), float32(factor.G), float32(factor.B), float32(factor.A)}
	syscall.SyscallN(c.ctx.Vtbl.OMSetBlendState, c.ctx.this(), h, uintptr(unsafe.Pointer(&f)), uintptr(sampleMask))
}

// SetDepthStencilState implements gpustate.NativeContext.
func (c *Context) SetDepthStencilState(s *gpustate.DepthStencilState, stencilRef uint32) {
	var h uintptr
	if s != nil {
		h = lazyState(c.depth, s, func() (uintptr, error) {
			d := newDepthStencilDesc(s)
			return c.dev.createDepthStencilState(&d)
		})
	}
	syscall.SyscallN(c.ctx.Vtbl.OMSetDepthStencilState, c.ctx.this(), h, uintptr(stencilRef))
}

// lazyState returns the native object for key, creating it on first use.
// A failed creation binds the default state.
func lazyState[K comparable](cache map[K]uintptr, key K, create func() (uintptr, error)) uintptr {
	if h, ok := cache[key]; ok {
		return h
	}
	h, err := create()
	if err != nil {
		gpustate.Logger().Warn("d3d11: state object creation failed", "error", err)
		return 0
	}
	cache[key] = h
	return h
}

// SetConstantBuffers implements gpustate.NativeContext.
func (c *Context) SetConstantBuffers(stage gpustate.Stage, start int, buffers []gpustate.ConstantBufferBinding) {
	c.ptrs = c.ptrs[:0]
	offsets := false
	for _, b := range buffers {
		c.ptrs = append(c.ptrs, bufferHandle(b.Buffer))
		offsets = offsets || b.HasOffset()
	}
	if !offsets || c.ctx1 == nil {
		syscall.SyscallN(c.setCB[stage], c.ctx.this(), uintptr(start), uintptr(len(buffers)), ptr(c.ptrs))
		return
	}

	c.u32a, c.u32b = c.u32a[:0], c.u32b[:0]
	for _, b := range buffers {
		num := b.NumConstants
		if num == 0 && b.Buffer != nil {
			num = uint32(b.Buffer.Size / 16)
		}
		c.u32a = append(c.u32a, b.FirstConstant)
		c.u32b = append(c.u32b, num)
	}
	syscall.SyscallN(c.setCB1[stage], c.ctx1.this(),
		uintptr(start), uintptr(len(buffers)), ptr(c.ptrs), ptr(c.u32a), ptr(c.u32b))
}

// SetShaderResources implements gpustate.NativeContext.
func (c *Context) SetShaderResources(stage gpustate.Stage, start int, views []*gpustate.ShaderResourceView) {
	c.ptrs = handles(c.ptrs[:0], views)
	syscall.SyscallN(c.setSRV[stage], c.ctx.this(), uintptr(start), uintptr(len(views)), ptr(c.ptrs))
}

// SetSamplers implements gpustate.NativeContext.
func (c *Context) SetSamplers(stage gpustate.Stage, start int, samplers []*gpustate.Sampler) {
	c.ptrs = handles(c.ptrs[:0], samplers)
	syscall.SyscallN(c.setSamp[stage], c.ctx.this(), uintptr(start), uintptr(len(samplers)), ptr(c.ptrs))
}

// SetVertexBuffers implements gpustate.NativeContext.
func (c *Context) SetVertexBuffers(start int, buffers []gpustate.VertexBufferBinding) {
	c.ptrs, c.u32a, c.u32b = c.ptrs[:0], c.u32a[:0], c.u32b[:0]
	for _, b := range buffers {
		c.ptrs = append(c.ptrs, bufferHandle(b.Buffer))
		c.u32a = append(c.u32a, b.Stride)
		c.u32b = append(c.u32b, b.Offset)
	}
	syscall.SyscallN(c.ctx.Vtbl.IASetVertexBuffers, c.ctx.this(), uintptr(start), uintptr(len(buffers)), ptr(c.ptrs), ptr(c.u32a), ptr(c.u32b))
}

// SetIndexBuffer implements gpustate.NativeContext.
func (c *Context) SetIndexBuffer(b gpustate.IndexBufferBinding) {
	syscall.SyscallN(c.ctx.Vtbl.IASetIndexBuffer, c.ctx.this(), bufferHandle(b.Buffer), uintptr(indexFormat(b.Format)), uintptr(b.Offset))
}

// SetStreamOutTargets implements gpustate.NativeContext.
func (c *Context) SetStreamOutTargets(targets []gpustate.StreamOutBinding) {
	c.ptrs, c.u32a = c.ptrs[:0], c.u32a[:0]
	for _, t := range targets {
		c.ptrs = append(c.ptrs, bufferHandle(t.Buffer))
		c.u32a = append(c.u32a, t.Offset)
	}
	syscall.SyscallN(c.ctx.Vtbl.SOSetTargets, c.ctx.this(), uintptr(len(targets)), ptr(c.ptrs), ptr(c.u32a))
}

// SetRenderTargets implements gpustate.NativeContext.
func (c *Context) SetRenderTargets(targets []*gpustate.RenderTargetView, depth *gpustate.DepthStencilView) {
	c.ptrs = handles(c.ptrs[:0], targets)
	var d uintptr
	if depth != nil {
		d = depth.NativeHandle()
	}
	syscall.SyscallN(c.ctx.Vtbl.OMSetRenderTargets, c.ctx.this(), uintptr(len(targets)), ptr(c.ptrs), d)
}

func (c *Context) uavs(uavs []gpustate.UnorderedAccessBinding) {
	c.ptrs, c.counts = c.ptrs[:0], c.counts[:0]
	for _, u := range uavs {
		var h uintptr
		if u.View != nil {
			h = u.View.NativeHandle()
		}
		c.ptrs = append(c.ptrs, h)
		c.counts = append(c.counts, uint32(u.InitialCount))
	}
}

// SetUnorderedAccessViews implements gpustate.NativeContext. Render targets
// and the depth buffer are kept.
func (c *Context) SetUnorderedAccessViews(start int, uavs []gpustate.UnorderedAccessBinding) {
	c.uavs(uavs)
	syscall.SyscallN(c.ctx.Vtbl.OMSetRenderTargetsAndUnorderedAccessViews, c.ctx.this(),
		keepRenderTargets, 0, 0, uintptr(start), uintptr(len(uavs)), ptr(c.ptrs), ptr(c.counts))
}

// SetComputeUnorderedAccessViews implements gpustate.NativeContext.
func (c *Context) SetComputeUnorderedAccessViews(start int, uavs []gpustate.UnorderedAccessBinding) {
	c.uavs(uavs)
	syscall.SyscallN(c.ctx.Vtbl.CSSetUnorderedAccessViews, c.ctx.this(), uintptr(start), uintptr(len(uavs)), ptr(c.ptrs), ptr(c.counts))
}

// SetViewports implements gpustate.NativeContext.
func (c *Context) SetViewports(viewports []gpustate.Viewport) {
	c.ports = c.ports[:0]
	for _, v := range viewports {
		c.ports = append(c.ports, viewport{v.X, v.Y, v.Width, v.Height, v.MinDepth, v.MaxDepth})
	}
	syscall.SyscallN(c.ctx.Vtbl.RSSetViewports, c.ctx.this(), uintptr(len(c.ports)), ptr(c.ports))
}

// SetScissorRects implements gpustate.NativeContext.
func (c *Context) SetScissorRects(rects []gpustate.Rect) {
	c.scissor = c.scissor[:0]
	for _, r := range rects {
		c.scissor = append(c.scissor, rect(r))
	}
	syscall.SyscallN(c.ctx.Vtbl.RSSetScissorRects, c.ctx.this(), uintptr(len(c.scissor)), ptr(c.scissor))
}

// ClearState implements gpustate.NativeContext.
func (c *Context) ClearState() {
	syscall.SyscallN(c.ctx.Vtbl.ClearState, c.ctx.this())
}

// Draw implements gpustate.NativeContext.
func (c *Context) Draw(vertexCount, startVertex uint32) {
	syscall.SyscallN(c.ctx.Vtbl.Draw, c.ctx.this(), uintptr(vertexCount), uintptr(startVertex))
}

// DrawIndexed implements gpustate.NativeContext.
func (c *Context) DrawIndexed(indexCount, startIndex uint32, baseVertex int32) {
	syscall.SyscallN(c.ctx.Vtbl.DrawIndexed, c.ctx.this(), uintptr(indexCount), uintptr(startIndex), uintptr(baseVertex))
}

// DrawInstanced implements gpustate.NativeContext.
func (c *Context) DrawInstanced(vertexCount, instanceCount, startVertex, startInstance uint32) {
	syscall.SyscallN(c.ctx.Vtbl.DrawInstanced, c.ctx.this(), uintptr(vertexCount), uintptr(instanceCount), uintptr(startVertex), uintptr(startInstance))
}

// DrawIndexedInstanced implements gpustate.NativeContext.
func (c *Context) DrawIndexedInstanced(indexCount, instanceCount, startIndex uint32, baseVertex int32, startInstance uint32) {
	syscall.SyscallN(c.ctx.Vtbl.DrawIndexedInstanced, c.ctx.this(),
		uintptr(indexCount), uintptr(instanceCount), uintptr(startIndex), uintptr(baseVertex), uintptr(startInstance))
}

// Dispatch implements gpustate.NativeContext.
func (c *Context) Dispatch(x, y, z uint32) {
	syscall.SyscallN(c.ctx.Vtbl.Dispatch, c.ctx.this(), uintptr(x), uintptr(y), uintptr(z))
}

// DrawAuto implements gpustate.NativeContext.
func (c *Context) DrawAuto() {
	syscall.SyscallN(c.ctx.Vtbl.DrawAuto, c.ctx.this())
}

// DrawInstancedIndirect implements gpustate.NativeContext.
func (c *Context) DrawInstancedIndirect(args *gpustate.Buffer, offset uint32) {
	syscall.SyscallN(c.ctx.Vtbl.DrawInstancedIndirect, c.ctx.this(), bufferHandle(args), uintptr(offset))
}

// DrawIndexedInstancedIndirect implements gpustate.NativeContext.
func (c *Context) DrawIndexedInstancedIndirect(args *gpustate.Buffer, offset uint32) {
	syscall.SyscallN(c.ctx.Vtbl.DrawIndexedInstancedIndirect, c.ctx.this(), bufferHandle(args), uintptr(offset))
}

// DispatchIndirect implements gpustate.NativeContext.
func (c *Context) DispatchIndirect(args *gpustate.Buffer, offset uint32) {
	syscall.SyscallN(c.ctx.Vtbl.DispatchIndirect, c.ctx.this(), bufferHandle(args), uintptr(offset))
}
