// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package d3d11

import (
	"testing"

	"github.com/gogpu/gpustate"
	"github.com/gogpu/gpustate/backend"
	"github.com/gogpu/gputypes"
)

func TestCapabilitiesFor(t *testing.T) {
	tests := []struct {
		name     string
		level    uint32
		context1 bool
		want     gpustate.Capabilities
	}{
		{
			name:  "9_3",
			level: 0x9300,
			want:  gpustate.CapStageResources | gpustate.CapMultipleViewports,
		},
		{
			name:  "10_1",
			level: featureLevel10_1,
			want:  gpustate.CapStageResources | gpustate.CapMultipleViewports | gpustate.CapGeometryShader | gpustate.CapStreamOut,
		},
		{
			name:     "11_0 with context1",
			level:    featureLevel11_0,
			context1: true,
			want:     gpustate.CapAll,
		},
		{
			name:  "11_0 without context1",
			level: featureLevel11_0,
			want:  gpustate.CapAll &^ gpustate.CapConstantBufferOffsets,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := capabilitiesFor(tt.level, tt.context1); got != tt.want {
				t.Errorf("capabilitiesFor(%#x, %v) = %v, want %v", tt.level, tt.context1, got, tt.want)
			}
		})
	}
}

func TestPrimitiveTopology(t *testing.T) {
	tests := []struct {
		in   gpustate.Topology
		want uint32
	}{
		{gpustate.TopologyNone, topologyUndefined},
		{gpustate.TopologyPointList, topologyPointList},
		{gpustate.TopologyLineStrip, topologyLineStrip},
		{gpustate.TopologyTriangleList, topologyTriangleList},
		{gpustate.TopologyTriangleStrip, topologyTriangleStrip},
	}
	for _, tt := range tests {
		if got := primitiveTopology(tt.in); got != tt.want {
			t.Errorf("primitiveTopology(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestIndexFormat(t *testing.T) {
	if got := indexFormat(gputypes.IndexFormatUint32); got != dxgiFormatR32Uint {
		t.Errorf("indexFormat(Uint32) = %d, want %d", got, dxgiFormatR32Uint)
	}
	if got := indexFormat(gputypes.IndexFormatUint16); got != dxgiFormatR16Uint {
		t.Errorf("indexFormat(Uint16) = %d, want %d", got, dxgiFormatR16Uint)
	}
}

func TestRasterizerDesc(t *testing.T) {
	s := gpustate.DefaultRasterState()
	d := newRasterizerDesc(&s)
	if d.FillMode != fillSolid || d.CullMode != cullBack {
		t.Errorf("fill/cull = %d/%d, want %d/%d", d.FillMode, d.CullMode, fillSolid, cullBack)
	}
	if d.FrontCounterClockwise != 1 || d.DepthClipEnable != 1 {
		t.Errorf("FrontCounterClockwise/DepthClipEnable = %d/%d, want 1/1", d.FrontCounterClockwise, d.DepthClipEnable)
	}

	s.Fill = gpustate.FillWireframe
	s.Cull = gputypes.CullModeNone
	s.FrontFace = gputypes.FrontFaceCW
	s.Scissor = true
	d = newRasterizerDesc(&s)
	if d.FillMode != fillWireframe || d.CullMode != cullNone || d.FrontCounterClockwise != 0 || d.ScissorEnable != 1 {
		t.Errorf("newRasterizerDesc(wireframe) = %+v", d)
	}
}

func TestBlendDesc(t *testing.T) {
	s := gpustate.DefaultBlendState()
	s.Targets[0] = gpustate.TargetBlend{
		Enabled: true,
		Blend: gputypes.BlendState{
			Color: gputypes.BlendComponent{
				SrcFactor: gputypes.BlendFactorSrcAlpha,
				DstFactor: gputypes.BlendFactorOneMinusSrcAlpha,
				Operation: gputypes.BlendOperationAdd,
			},
			Alpha: gputypes.BlendComponent{
				SrcFactor: gputypes.BlendFactorOne,
				DstFactor: gputypes.BlendFactorOneMinusSrc,
				Operation: gputypes.BlendOperationMax,
			},
		},
		WriteMask: gputypes.ColorWriteMaskRed | gputypes.ColorWriteMaskAlpha,
	}
	d := newBlendDesc(&s)
	rt := d.RenderTarget[0]
	want := renderTargetBlendDesc{
		BlendEnable:           1,
		SrcBlend:              blendSrcAlpha,
		DestBlend:             blendInvSrcAlpha,
		BlendOp:               blendOpAdd,
		SrcBlendAlpha:         blendOne,
		DestBlendAlpha:        blendInvSrcAlpha,
		BlendOpAlpha:          5,
		RenderTargetWriteMask: 0x9,
	}
	if rt != want {
		t.Errorf("RenderTarget[0] = %+v, want %+v", rt, want)
	}
	if d.RenderTarget[1].BlendEnable != 0 || d.RenderTarget[1].RenderTargetWriteMask != 0xF {
		t.Errorf("RenderTarget[1] = %+v, want disabled with full write mask", d.RenderTarget[1])
	}
}

func TestBlendFactorColorVsAlpha(t *testing.T) {
	tests := []struct {
		f     gputypes.BlendFactor
		color uint32
		alpha uint32
	}{
		{gputypes.BlendFactorSrc, blendSrcColor, blendSrcAlpha},
		{gputypes.BlendFactorDst, blendDestColor, blendDestAlpha},
		{gputypes.BlendFactorOneMinusDst, blendInvDestColor, blendInvDestAlpha},
		{gputypes.BlendFactorConstant, blendBlendFactor, blendBlendFactor},
		{gputypes.BlendFactorUndefined, blendOne, blendOne},
	}
	for _, tt := range tests {
		if got := blendFactor(tt.f, false); got != tt.color {
			t.Errorf("blendFactor(%v, color) = %d, want %d", tt.f, got, tt.color)
		}
		if got := blendFactor(tt.f, true); got != tt.alpha {
			t.Errorf("blendFactor(%v, alpha) = %d, want %d", tt.f, got, tt.alpha)
		}
	}
}

func TestDepthStencilDesc(t *testing.T) {
	s := gpustate.DefaultDepthStencilState()
	s.StencilEnabled = true
	s.StencilFront.PassOp = gputypes.StencilOperationIncrementClamp
	s.StencilFront.Compare = gputypes.CompareFunctionEqual
	s.StencilBack.FailOp = gputypes.StencilOperationDecrementWrap

	d := newDepthStencilDesc(&s)
	if d.DepthEnable != 1 || d.DepthWriteMask != depthWriteMaskAll || d.DepthFunc != 2 {
		t.Errorf("depth = %d/%d/%d, want 1/%d/2", d.DepthEnable, d.DepthWriteMask, d.DepthFunc, depthWriteMaskAll)
	}
	if d.FrontFace.StencilPassOp != stencilOpIncrSat || d.FrontFace.StencilFunc != 3 {
		t.Errorf("FrontFace = %+v, want IncrSat pass and Equal", d.FrontFace)
	}
	if d.BackFace.StencilFailOp != stencilOpDecr {
		t.Errorf("BackFace.StencilFailOp = %d, want %d", d.BackFace.StencilFailOp, stencilOpDecr)
	}

	s.DepthWrite = false
	s.DepthCompare = gputypes.CompareFunctionUndefined
	d = newDepthStencilDesc(&s)
	if d.DepthWriteMask != depthWriteMaskZero || d.DepthFunc != comparisonAlways {
		t.Errorf("depth write/func = %d/%d, want %d/%d", d.DepthWriteMask, d.DepthFunc, depthWriteMaskZero, comparisonAlways)
	}
}

type fakeHandle uintptr

func (h fakeHandle) NativeHandle() uintptr { return uintptr(h) }

func TestHandles(t *testing.T) {
	a := gpustate.NewSampler(gputypes.DefaultSamplerDescriptor(), fakeHandle(0x10), nil)
	b := gpustate.NewSampler(gputypes.DefaultSamplerDescriptor(), fakeHandle(0x20), nil)

	got := handles(nil, []*gpustate.Sampler{a, nil, b})
	want := []uintptr{0x10, 0, 0x20}
	if len(got) != len(want) {
		t.Fatalf("handles() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("handles()[%d] = %#x, want %#x", i, got[i], want[i])
		}
	}
	if bufferHandle(nil) != 0 {
		t.Error("bufferHandle(nil) != 0")
	}
}

func TestRegistered(t *testing.T) {
	if !backend.IsRegistered(backend.NameD3D11) {
		t.Errorf("IsRegistered(%q) = false, want true", backend.NameD3D11)
	}
}
