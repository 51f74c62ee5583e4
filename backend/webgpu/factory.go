// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package webgpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpustate"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// ErrNilDevice is returned by NewFactory without a device.
var ErrNilDevice = errors.New("webgpu: HAL device is nil")

// Factory creates gpustate resources on a HAL device. Every object's
// Release destroys the HAL object.
type Factory struct {
	device hal.Device
}

var _ gpustate.ResourceFactory = (*Factory)(nil)

// NewFactory returns a factory over device.
func NewFactory(device hal.Device) (*Factory, error) {
	if device == nil {
		return nil, ErrNilDevice
	}
	return &Factory{device: device}, nil
}

// CreateBuffer implements gpustate.ResourceFactory.
func (f *Factory) CreateBuffer(desc gpustate.BufferDesc) (*gpustate.Buffer, error) {
	buf, err := f.device.CreateBuffer(&hal.BufferDescriptor{
		Label: desc.Label,
		Size:  desc.Size,
		Usage: desc.Usage,
	})
	if err != nil {
		return nil, fmt.Errorf("webgpu: create buffer %q: %w", desc.Label, err)
	}
	return gpustate.NewBuffer(desc, buf, func() { f.device.DestroyBuffer(buf) }), nil
}

// CreateTexture implements gpustate.ResourceFactory.
func (f *Factory) CreateTexture(desc gpustate.TextureDesc) (*gpustate.Texture, error) {
	// Resolve defaults before building the HAL descriptor.
	shape := gpustate.NewTexture(desc, nil, nil)
	tex, err := f.device.CreateTexture(&hal.TextureDescriptor{
		Label: desc.Label,
		Size: hal.Extent3D{
			Width:              shape.Size.Width,
			Height:             shape.Size.Height,
			DepthOrArrayLayers: shape.Size.DepthOrArrayLayers,
		},
		MipLevelCount: shape.MipLevels,
		SampleCount:   shape.Multisample.Count,
		Dimension:     shape.Dimension,
		Format:        shape.Format,
		Usage:         shape.Usage,
	})
	if err != nil {
		return nil, fmt.Errorf("webgpu: create texture %q: %w", desc.Label, err)
	}
	return gpustate.NewTexture(desc, tex, func() { f.device.DestroyTexture(tex) }), nil
}

func (f *Factory) createView(tex *gpustate.Texture, desc gpustate.ViewDesc, aspect gputypes.TextureAspect, mips uint32) (hal.TextureView, error) {
	native, ok := tex.Native().(hal.Texture)
	if !ok {
		return nil, fmt.Errorf("webgpu: texture %q has no HAL texture", tex.Name)
	}
	dim := gputypes.TextureViewDimension2D
	switch {
	case tex.Dimension == gputypes.TextureDimension1D:
		dim = gputypes.TextureViewDimension1D
	case tex.Dimension == gputypes.TextureDimension3D:
		dim = gputypes.TextureViewDimension3D
	case desc.ArrayCount != 1 && tex.ArrayCount() > 1:
		dim = gputypes.TextureViewDimension2DArray
	}
	view, err := f.device.CreateTextureView(native, &hal.TextureViewDescriptor{
		Label:           desc.Label,
		Format:          desc.Format,
		Dimension:       dim,
		Aspect:          aspect,
		BaseMipLevel:    desc.MipSlice,
		MipLevelCount:   mips,
		BaseArrayLayer:  desc.FirstArraySlice,
		ArrayLayerCount: desc.ArrayCount,
	})
	if err != nil {
		return nil, fmt.Errorf("webgpu: create view of %q: %w", tex.Name, err)
	}
	return view, nil
}

// CreateShaderResourceView implements gpustate.ResourceFactory. The view
// covers every mip level from desc.MipSlice.
func (f *Factory) CreateShaderResourceView(tex *gpustate.Texture, desc gpustate.ViewDesc) (*gpustate.ShaderResourceView, error) {
	aspect := gputypes.TextureAspectAll
	if tex.Format.IsDepthStencil() {
		aspect = gputypes.TextureAspectDepthOnly
	}
	view, err := f.createView(tex, desc, aspect, 0)
	if err != nil {
		return nil, err
	}
	format := desc.Format
	if format == gputypes.TextureFormatUndefined {
		format = tex.Format
	}
	return gpustate.NewShaderResourceView(tex.Resource, format, view, func() { f.device.DestroyTextureView(view) }), nil
}

// CreateRenderTargetView implements gpustate.ResourceFactory.
func (f *Factory) CreateRenderTargetView(tex *gpustate.Texture, desc gpustate.ViewDesc) (*gpustate.RenderTargetView, error) {
	view, err := f.createView(tex, desc, gputypes.TextureAspectAll, 1)
	if err != nil {
		return nil, err
	}
	return gpustate.NewRenderTargetView(tex, desc, view, func() { f.device.DestroyTextureView(view) }), nil
}

// CreateDepthStencilView implements gpustate.ResourceFactory.
func (f *Factory) CreateDepthStencilView(tex *gpustate.Texture, desc gpustate.ViewDesc) (*gpustate.DepthStencilView, error) {
	view, err := f.createView(tex, desc, gputypes.TextureAspectAll, 1)
	if err != nil {
		return nil, err
	}
	return gpustate.NewDepthStencilView(tex, desc, view, func() { f.device.DestroyTextureView(view) }), nil
}

// CreateSampler implements gpustate.ResourceFactory.
func (f *Factory) CreateSampler(desc gputypes.SamplerDescriptor) (*gpustate.Sampler, error) {
	s, err := f.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        desc.Label,
		AddressModeU: desc.AddressModeU,
		AddressModeV: desc.AddressModeV,
		AddressModeW: desc.AddressModeW,
		MagFilter:    desc.MagFilter,
		MinFilter:    desc.MinFilter,
		MipmapFilter: gputypes.FilterMode(desc.MipmapFilter),
		LodMinClamp:  desc.LodMinClamp,
		LodMaxClamp:  desc.LodMaxClamp,
		Compare:      desc.Compare,
		Anisotropy:   max(desc.MaxAnisotropy, 1),
	})
	if err != nil {
		return nil, fmt.Errorf("webgpu: create sampler %q: %w", desc.Label, err)
	}
	return gpustate.NewSampler(desc, s, func() { f.device.DestroySampler(s) }), nil
}
