// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package webgpu

import (
	"errors"
	"testing"

	"github.com/gogpu/gpustate"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

// countingDevice counts destroyed objects.
type countingDevice struct {
	noop.Device
	destroyed int
}

func (d *countingDevice) DestroyBuffer(hal.Buffer)             { d.destroyed++ }
func (d *countingDevice) DestroyTexture(hal.Texture)           { d.destroyed++ }
func (d *countingDevice) DestroyTextureView(hal.TextureView)   { d.destroyed++ }
func (d *countingDevice) DestroySampler(hal.Sampler)           { d.destroyed++ }
func (d *countingDevice) DestroyShaderModule(hal.ShaderModule) { d.destroyed++ }

func TestNewFactoryNilDevice(t *testing.T) {
	if _, err := NewFactory(nil); !errors.Is(err, ErrNilDevice) {
		t.Errorf("NewFactory(nil) error = %v, want %v", err, ErrNilDevice)
	}
}

func TestFactoryReleasedByArena(t *testing.T) {
	dev := &countingDevice{}
	f, err := NewFactory(dev)
	if err != nil {
		t.Fatalf("NewFactory() error = %v", err)
	}
	ctx, err := gpustate.NewContext(New(&fakePass{}), gpustate.WithResourceFactory(f))
	if err != nil {
		t.Fatalf("NewContext() error = %v", err)
	}
	res := ctx.Resources()

	tex, err := res.CreateTexture(gpustate.TextureDesc{
		Label:  "albedo",
		Size:   gputypes.Extent3D{Width: 16, Height: 16},
		Format: gputypes.TextureFormatRGBA8Unorm,
		Usage:  gputypes.TextureUsageTextureBinding,
	})
	if err != nil {
		t.Fatalf("CreateTexture() error = %v", err)
	}
	if tex.MipLevels != 1 || tex.Multisample.Count != 1 {
		t.Errorf("texture defaults = %d mips %d samples, want 1 and 1", tex.MipLevels, tex.Multisample.Count)
	}
	srv, err := res.CreateShaderResourceView(tex, gpustate.ViewDesc{})
	if err != nil {
		t.Fatalf("CreateShaderResourceView() error = %v", err)
	}
	if srv.Format != gputypes.TextureFormatRGBA8Unorm {
		t.Errorf("SRV format = %v, want RGBA8Unorm", srv.Format)
	}
	if _, err := res.CreateBuffer(gpustate.BufferDesc{Size: 64, Usage: gputypes.BufferUsageUniform}); err != nil {
		t.Fatalf("CreateBuffer() error = %v", err)
	}
	if _, err := res.CreateSampler(gputypes.DefaultSamplerDescriptor()); err != nil {
		t.Fatalf("CreateSampler() error = %v", err)
	}

	if got := ctx.Arena().Len(); got != 4 {
		t.Fatalf("Arena().Len() = %d, want 4", got)
	}
	if err := ctx.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if dev.destroyed != 4 {
		t.Errorf("destroyed = %d, want 4", dev.destroyed)
	}
	if !srv.Released() {
		t.Error("SRV not released")
	}
}

func TestCreateViewNeedsHALTexture(t *testing.T) {
	f := NewHeadlessFactory()
	tex := gpustate.NewTexture(gpustate.TextureDesc{Label: "cpu", Size: gputypes.Extent3D{Width: 1, Height: 1}}, nil, nil)
	if _, err := f.CreateRenderTargetView(tex, gpustate.ViewDesc{}); err == nil {
		t.Error("CreateRenderTargetView() on a texture without HAL handle succeeded")
	}
}

func TestPipelineCache(t *testing.T) {
	if _, err := NewPipelineCache(nil, nil); !errors.Is(err, ErrNilPipelineBuilder) {
		t.Fatalf("NewPipelineCache(nil) error = %v, want %v", err, ErrNilPipelineBuilder)
	}

	built := 0
	cache := countingCache(t, &built)
	a := PipelineKey{Topology: gputypes.PrimitiveTopologyTriangleList, SampleCount: 1}
	b := PipelineKey{Topology: gputypes.PrimitiveTopologyLineList, SampleCount: 1}

	for _, k := range []PipelineKey{a, a, b, a} {
		if _, err := cache.Render(k); err != nil {
			t.Fatalf("Render() error = %v", err)
		}
	}
	hits, misses := cache.Stats()
	if hits != 2 || misses != 2 {
		t.Errorf("Stats() = %d hits %d misses, want 2 and 2", hits, misses)
	}
	if cache.Size() != 2 {
		t.Errorf("Size() = %d, want 2", cache.Size())
	}
	cache.Destroy()
	if cache.Size() != 0 {
		t.Errorf("Size() after Destroy = %d, want 0", cache.Size())
	}
}

func TestHeadlessRegistered(t *testing.T) {
	native := NewHeadless()
	if native.Capabilities() != gpustate.CapCompute {
		t.Errorf("Capabilities() = %v, want compute", native.Capabilities())
	}
	ctx, err := gpustate.NewContext(native)
	if err != nil {
		t.Fatalf("NewContext() error = %v", err)
	}
	if err := ctx.Submit(gpustate.NewDrawCall(nil, nil, 3)); err != nil {
		t.Errorf("Submit() error = %v", err)
	}
}
