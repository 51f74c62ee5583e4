// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package webgpu implements gpustate.NativeContext over a gogpu/wgpu HAL
// render pass.
//
// WebGPU has no per-slot binding model and no way to change fixed-function
// state outside a pipeline. The context therefore reports only the compute
// capability; gpustate skips the binds WebGPU cannot express and the
// context folds shaders, state objects, topology and attachment formats
// into a PipelineKey. A PipelineCache turns keys into pipelines before each
// draw that follows a change:
//
//	cache, _ := webgpu.NewPipelineCache(buildPipeline, nil)
//	native := webgpu.New(pass, webgpu.WithPipelines(cache))
//	ctx, _ := gpustate.NewContext(native,
//	    gpustate.WithResourceFactory(factory))
//
// Factory.CreateShader compiles WGSL with naga into a shader module; a
// pipeline builder gets the module back with ShaderModule.
//
// Importing the package registers a headless context on the noop HAL under
// backend.NameWebGPU.
package webgpu
