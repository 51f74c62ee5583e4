// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package d3d11

import (
	"github.com/gogpu/gpustate"
	"github.com/gogpu/gputypes"
)

// Feature levels.
const (
	featureLevel10_0 = 0xa000
	featureLevel10_1 = 0xa100
	featureLevel11_0 = 0xb000
)

const (
	fillWireframe = 2
	fillSolid     = 3

	cullNone  = 1
	cullFront = 2
	cullBack  = 3

	comparisonAlways = 8

	stencilOpKeep    = 1
	stencilOpZero    = 2
	stencilOpReplace = 3
	stencilOpIncrSat = 4
	stencilOpDecrSat = 5
	stencilOpInvert  = 6
	stencilOpIncr    = 7
	stencilOpDecr    = 8

	blendZero           = 1
	blendOne            = 2
	blendSrcColor       = 3
	blendInvSrcColor    = 4
	blendSrcAlpha       = 5
	blendInvSrcAlpha    = 6
	blendDestAlpha      = 7
	blendInvDestAlpha   = 8
	blendDestColor      = 9
	blendInvDestColor   = 10
	blendSrcAlphaSat    = 11
	blendBlendFactor    = 14
	blendInvBlendFactor = 15

	blendOpAdd = 1

	depthWriteMaskZero = 0
	depthWriteMaskAll  = 1

	dxgiFormatR32Uint = 42
	dxgiFormatR16Uint = 57

	// keepRenderTargets passed as the target count of
	// OMSetRenderTargetsAndUnorderedAccessViews binds only UAVs.
	keepRenderTargets = 0xffffffff
)

// Primitive topologies.
const (
	topologyUndefined     = 0
	topologyPointList     = 1
	topologyLineList      = 2
	topologyLineStrip     = 3
	topologyTriangleList  = 4
	topologyTriangleStrip = 5
)

// capabilitiesFor maps a device feature level to gpustate capabilities.
// Constant buffer offsets need ID3D11DeviceContext1.
func capabilitiesFor(featureLevel uint32, context1 bool) gpustate.Capabilities {
	caps := gpustate.CapStageResources | gpustate.CapMultipleViewports
	if featureLevel >= featureLevel10_0 {
		caps |= gpustate.CapGeometryShader | gpustate.CapStreamOut
	}
	if featureLevel >= featureLevel11_0 {
		caps |= gpustate.CapTessellation | gpustate.CapCompute | gpustate.CapUnorderedAccess |
			gpustate.CapIndirectDraw
	}
	if context1 {
		caps |= gpustate.CapConstantBufferOffsets
	}
	return caps
}

func primitiveTopology(t gpustate.Topology) uint32 {
	switch t {
	case gpustate.TopologyPointList:
		return topologyPointList
	case gpustate.TopologyLineList:
		return topologyLineList
	case gpustate.TopologyLineStrip:
		return topologyLineStrip
	case gpustate.TopologyTriangleList:
		return topologyTriangleList
	case gpustate.TopologyTriangleStrip:
		return topologyTriangleStrip
	default:
		return topologyUndefined
	}
}

func indexFormat(f gputypes.IndexFormat) uint32 {
	if f == gputypes.IndexFormatUint32 {
		return dxgiFormatR32Uint
	}
	return dxgiFormatR16Uint
}

func boolToUint32(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

// rasterizerDesc mirrors D3D11_RASTERIZER_DESC.
type rasterizerDesc struct {
	FillMode              uint32
	CullMode              uint32
	FrontCounterClockwise uint32
	DepthBias             int32
	DepthBiasClamp        float32
	SlopeScaledDepthBias  float32
	DepthClipEnable       uint32
	ScissorEnable         uint32
	MultisampleEnable     uint32
	AntialiasedLineEnable uint32
}

// newRasterizerDesc translates s. Conservative rasterization and forced
// sample counts need ID3D11Device3 and are ignored.
func newRasterizerDesc(s *gpustate.RasterState) rasterizerDesc {
	d := rasterizerDesc{
		FillMode:              fillSolid,
		CullMode:              cullBack,
		FrontCounterClockwise: boolToUint32(s.FrontFace == gputypes.FrontFaceCCW),
		DepthBias:             s.DepthBias,
		DepthBiasClamp:        s.DepthBiasClamp,
		SlopeScaledDepthBias:  s.SlopeScaledDepthBias,
		DepthClipEnable:       boolToUint32(s.DepthClip),
		ScissorEnable:         boolToUint32(s.Scissor),
		MultisampleEnable:     boolToUint32(s.Multisample),
		AntialiasedLineEnable: boolToUint32(s.AntialiasedLines),
	}
	if s.Fill == gpustate.FillWireframe {
		d.FillMode = fillWireframe
	}
	switch s.Cull {
	case gputypes.CullModeNone:
		d.CullMode = cullNone
	case gputypes.CullModeFront:
		d.CullMode = cullFront
	}
	return d
}

// renderTargetBlendDesc mirrors D3D11_RENDER_TARGET_BLEND_DESC.
type renderTargetBlendDesc struct {
	BlendEnable           uint32
	SrcBlend              uint32
	DestBlend             uint32
	BlendOp               uint32
	SrcBlendAlpha         uint32
	DestBlendAlpha        uint32
	BlendOpAlpha          uint32
	RenderTargetWriteMask uint8
}

// blendDesc mirrors D3D11_BLEND_DESC.
type blendDesc struct {
	AlphaToCoverageEnable  uint32
	IndependentBlendEnable uint32
	RenderTarget           [gpustate.MaxRenderTargets]renderTargetBlendDesc
}

func blendFactor(f gputypes.BlendFactor, alpha bool) uint32 {
	switch f {
	case gputypes.BlendFactorZero:
		return blendZero
	case gputypes.BlendFactorSrc:
		if alpha {
			return blendSrcAlpha
		}
		return blendSrcColor
	case gputypes.BlendFactorOneMinusSrc:
		if alpha {
			return blendInvSrcAlpha
		}
		return blendInvSrcColor
	case gputypes.BlendFactorSrcAlpha:
		return blendSrcAlpha
	case gputypes.BlendFactorOneMinusSrcAlpha:
		return blendInvSrcAlpha
	case gputypes.BlendFactorDst:
		if alpha {
			return blendDestAlpha
		}
		return blendDestColor
	case gputypes.BlendFactorOneMinusDst:
		if alpha {
			return blendInvDestAlpha
		}
		return blendInvDestColor
	case gputypes.BlendFactorDstAlpha:
		return blendDestAlpha
	case gputypes.BlendFactorOneMinusDstAlpha:
		return blendInvDestAlpha
	case gputypes.BlendFactorSrcAlphaSaturated:
		return blendSrcAlphaSat
	case gputypes.BlendFactorConstant:
		return blendBlendFactor
	case gputypes.BlendFactorOneMinusConstant:
		return blendInvBlendFactor
	default:
		return blendOne
	}
}

// blendOp maps a blend operation. The D3D11 values match gputypes; an
// undefined operation adds.
func blendOp(op gputypes.BlendOperation) uint32 {
	if op == gputypes.BlendOperationUndefined {
		return blendOpAdd
	}
	return uint32(op)
}

func newBlendDesc(s *gpustate.BlendState) blendDesc {
	d := blendDesc{
		AlphaToCoverageEnable:  boolToUint32(s.AlphaToCoverage),
		IndependentBlendEnable: boolToUint32(s.IndependentBlend),
	}
	for i, t := range s.Targets {
		d.RenderTarget[i] = renderTargetBlendDesc{
			BlendEnable:           boolToUint32(t.Enabled),
			SrcBlend:              blendFactor(t.Blend.Color.SrcFactor, false),
			DestBlend:             blendFactor(t.Blend.Color.DstFactor, false),
			BlendOp:               blendOp(t.Blend.Color.Operation),
			SrcBlendAlpha:         blendFactor(t.Blend.Alpha.SrcFactor, true),
			DestBlendAlpha:        blendFactor(t.Blend.Alpha.DstFactor, true),
			BlendOpAlpha:          blendOp(t.Blend.Alpha.Operation),
			RenderTargetWriteMask: uint8(t.WriteMask),
		}
	}
	return d
}

// depthStencilOpDesc mirrors D3D11_DEPTH_STENCILOP_DESC.
type depthStencilOpDesc struct {
	StencilFailOp      uint32
	StencilDepthFailOp uint32
	StencilPassOp      uint32
	StencilFunc        uint32
}

// depthStencilDesc mirrors D3D11_DEPTH_STENCIL_DESC.
type depthStencilDesc struct {
	DepthEnable      uint32
	DepthWriteMask   uint32
	DepthFunc        uint32
	StencilEnable    uint32
	StencilReadMask  uint8
	StencilWriteMask uint8
	FrontFace        depthStencilOpDesc
	BackFace         depthStencilOpDesc
}

// comparison maps a compare function. The D3D11 values match gputypes; an
// undefined function always passes.
func comparison(f gputypes.CompareFunction) uint32 {
	if f == gputypes.CompareFunctionUndefined {
		return comparisonAlways
	}
	return uint32(f)
}

func stencilOp(op gputypes.StencilOperation) uint32 {
	switch op {
	case gputypes.StencilOperationZero:
		return stencilOpZero
	case gputypes.StencilOperationReplace:
		return stencilOpReplace
	case gputypes.StencilOperationInvert:
		return stencilOpInvert
	case gputypes.StencilOperationIncrementClamp:
		return stencilOpIncrSat
	case gputypes.StencilOperationDecrementClamp:
		return stencilOpDecrSat
	case gputypes.StencilOperationIncrementWrap:
		return stencilOpIncr
	case gputypes.StencilOperationDecrementWrap:
		return stencilOpDecr
	default:
		return stencilOpKeep
	}
}

func newStencilOpDesc(f gputypes.StencilFaceState) depthStencilOpDesc {
	return depthStencilOpDesc{
		StencilFailOp:      stencilOp(f.FailOp),
		StencilDepthFailOp: stencilOp(f.DepthFailOp),
		StencilPassOp:      stencilOp(f.PassOp),
		StencilFunc:        comparison(f.Compare),
	}
}

func newDepthStencilDesc(s *gpustate.DepthStencilState) depthStencilDesc {
	d := depthStencilDesc{
		DepthEnable:      boolToUint32(s.DepthEnabled),
		DepthWriteMask:   depthWriteMaskZero,
		DepthFunc:        comparison(s.DepthCompare),
		StencilEnable:    boolToUint32(s.StencilEnabled),
		StencilReadMask:  s.StencilReadMask,
		StencilWriteMask: s.StencilWriteMask,
		FrontFace:        newStencilOpDesc(s.StencilFront),
		BackFace:         newStencilOpDesc(s.StencilBack),
	}
	if s.DepthWrite {
		d.DepthWriteMask = depthWriteMaskAll
	}
	return d
}

// viewport mirrors D3D11_VIEWPORT.
type viewport struct {
	TopLeftX, TopLeftY float32
	Width, Height      float32
	MinDepth, MaxDepth float32
}

// rect mirrors D3D11_RECT.
type rect struct {
	Left, Top, Right, Bottom int32
}

// handles appends the native handle of every object to dst. Nil objects
// become 0, which unbinds the slot.
func handles[T interface {
	comparable
	NativeHandle() uintptr
}](dst []uintptr, objs []T) []uintptr {
	var zero T
	for _, o := range objs {
		if o == zero {
			dst = append(dst, 0)
			continue
		}
		dst = append(dst, o.NativeHandle())
	}
	return dst
}

func bufferHandle(b *gpustate.Buffer) uintptr {
	if b == nil {
		return 0
	}
	return b.NativeHandle()
}
