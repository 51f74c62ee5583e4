// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package webgpu

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gpustate"
	"github.com/gogpu/gpustate/backend"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

// init registers a headless context on the noop HAL. It validates bind
// sequences without a GPU; real applications build a Context over the
// render pass of their own device with New.
func init() {
	backend.Register(backend.NameWebGPU, func() gpustate.NativeContext {
		return NewHeadless()
	})
}

// NewHeadless returns a context over render and compute passes of the noop
// HAL.
func NewHeadless() *Context {
	enc := &noop.CommandEncoder{}
	if err := enc.BeginEncoding("gpustate"); err != nil {
		gpustate.Logger().Warn("webgpu: headless encoder", "error", err)
	}
	pass := enc.BeginRenderPass(&hal.RenderPassDescriptor{Label: "gpustate"})
	compute := enc.BeginComputePass(&hal.ComputePassDescriptor{Label: "gpustate"})
	return New(pass,
		WithComputePass(compute),
		WithAdapterInfo(gpucontext.AdapterInfo{Name: "wgpu noop HAL", Type: gpucontext.AdapterTypeSoftware}),
	)
}

// NewHeadlessFactory returns a resource factory on the noop HAL device.
func NewHeadlessFactory() *Factory {
	return &Factory{device: &noop.Device{}}
}
