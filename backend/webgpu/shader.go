// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package webgpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpustate"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

var (
	// ErrEmptyShaderSource is returned when a shader has no WGSL source.
	ErrEmptyShaderSource = errors.New("webgpu: empty shader source")

	// ErrUnsupportedStage is returned for stages WebGPU has no equivalent for.
	ErrUnsupportedStage = errors.New("webgpu: unsupported shader stage")
)

// moduleHandle adapts a HAL shader module to gpustate.Handle.
type moduleHandle struct {
	hal.ShaderModule
}

func (moduleHandle) NativeHandle() uintptr { return 0 }

// CompileWGSL compiles WGSL source to SPIR-V words.
func CompileWGSL(source string) ([]uint32, error) {
	if source == "" {
		return nil, ErrEmptyShaderSource
	}
	spirv, err := naga.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("webgpu: compile shader: %w", err)
	}

	// SPIR-V is a stream of little-endian 32-bit words.
	words := make([]uint32, len(spirv)/4)
	for i := range words {
		words[i] = uint32(spirv[i*4]) |
			uint32(spirv[i*4+1])<<8 |
			uint32(spirv[i*4+2])<<16 |
			uint32(spirv[i*4+3])<<24
	}
	return words, nil
}

// CreateShader compiles WGSL source and wraps the module as a gpustate
// shader for stage. Release destroys the module.
func (f *Factory) CreateShader(name string, stage gpustate.Stage, source string) (*gpustate.Shader, error) {
	switch stage {
	case gpustate.StageVertex, gpustate.StagePixel, gpustate.StageCompute:
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedStage, stage)
	}
	code, err := CompileWGSL(source)
	if err != nil {
		return nil, fmt.Errorf("shader %q: %w", name, err)
	}
	module, err := f.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  name,
		Source: hal.ShaderSource{SPIRV: code},
	})
	if err != nil {
		return nil, fmt.Errorf("webgpu: create shader module %q: %w", name, err)
	}
	return gpustate.NewShader(name, stage, moduleHandle{module}, func() { f.device.DestroyShaderModule(module) }), nil
}

// ShaderModule returns the HAL module behind a shader made by CreateShader.
// Pipeline builders use it to fill the stage descriptors.
func ShaderModule(s *gpustate.Shader) (hal.ShaderModule, bool) {
	if s == nil {
		return nil, false
	}
	h, ok := s.Native().(moduleHandle)
	if !ok {
		return nil, false
	}
	return h.ShaderModule, true
}
