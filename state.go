package gpustate

import "github.com/gogpu/gputypes"

// Topology is the input assembler primitive topology.
type Topology uint8

// Primitive topologies. TopologyNone is the reset value and binds nothing.
const (
	TopologyNone Topology = iota
	TopologyPointList
	TopologyLineList
	TopologyLineStrip
	TopologyTriangleList
	TopologyTriangleStrip
)

// String returns the topology name.
func (t Topology) String() string {
	switch t {
	case TopologyNone:
		return "none"
	case TopologyPointList:
		return "point-list"
	case TopologyLineList:
		return "line-list"
	case TopologyLineStrip:
		return "line-strip"
	case TopologyTriangleList:
		return "triangle-list"
	case TopologyTriangleStrip:
		return "triangle-strip"
	default:
		return "unknown"
	}
}

// PrimitiveTopology converts to the WebGPU topology. ok is false for
// TopologyNone, which has no WebGPU equivalent.
func (t Topology) PrimitiveTopology() (pt gputypes.PrimitiveTopology, ok bool) {
	switch t {
	case TopologyPointList:
		return gputypes.PrimitiveTopologyPointList, true
	case TopologyLineList:
		return gputypes.PrimitiveTopologyLineList, true
	case TopologyLineStrip:
		return gputypes.PrimitiveTopologyLineStrip, true
	case TopologyTriangleList:
		return gputypes.PrimitiveTopologyTriangleList, true
	case TopologyTriangleStrip:
		return gputypes.PrimitiveTopologyTriangleStrip, true
	default:
		return 0, false
	}
}

// FillMode selects how polygons are rasterized.
type FillMode uint8

// Fill modes.
const (
	FillSolid FillMode = iota
	FillWireframe
)

// RasterState configures the rasterizer. State objects are compared by
// pointer identity; use a [StateCache] to share one pointer per value.
type RasterState struct {
	Fill                 FillMode
	Cull                 gputypes.CullMode
	FrontFace            gputypes.FrontFace
	DepthBias            int32
	DepthBiasClamp       float32
	SlopeScaledDepthBias float32
	DepthClip            bool
	Scissor              bool
	Multisample          bool
	AntialiasedLines     bool
	ConservativeRaster   bool
	ForcedSampleCount    uint32
}

// DefaultRasterState returns solid fill, back-face culling, CCW front faces
// and depth clipping.
func DefaultRasterState() RasterState {
	return RasterState{
		Fill:      FillSolid,
		Cull:      gputypes.CullModeBack,
		FrontFace: gputypes.FrontFaceCCW,
		DepthClip: true,
	}
}

// TargetBlend is the blend configuration of one render target slot.
type TargetBlend struct {
	Enabled   bool
	Blend     gputypes.BlendState
	WriteMask gputypes.ColorWriteMask
}

// BlendState configures output merger blending for all render targets.
type BlendState struct {
	AlphaToCoverage  bool
	IndependentBlend bool
	Targets          [MaxRenderTargets]TargetBlend
}

// DefaultBlendState returns blending disabled with every channel writable.
func DefaultBlendState() BlendState {
	var b BlendState
	for i := range b.Targets {
		b.Targets[i] = TargetBlend{
			Blend:     gputypes.BlendStateReplace(),
			WriteMask: gputypes.ColorWriteMaskAll,
		}
	}
	return b
}

// UsesConstant reports whether any enabled target reads the blend factor.
func (b *BlendState) UsesConstant() bool {
	n := 1
	if b.IndependentBlend {
		n = MaxRenderTargets
	}
	for _, t := range b.Targets[:n] {
		if t.Enabled && (t.Blend.Color.UsesConstant() || t.Blend.Alpha.UsesConstant()) {
			return true
		}
	}
	return false
}

// DepthStencilState configures depth and stencil testing.
type DepthStencilState struct {
	DepthEnabled bool
	DepthWrite   bool
	DepthCompare gputypes.CompareFunction

	StencilEnabled   bool
	StencilReadMask  uint8
	StencilWriteMask uint8
	StencilFront     gputypes.StencilFaceState
	StencilBack      gputypes.StencilFaceState
}

// DefaultDepthStencilState returns depth testing with Less and writes on,
// stencil off.
func DefaultDepthStencilState() DepthStencilState {
	return DepthStencilState{
		DepthEnabled:     true,
		DepthWrite:       true,
		DepthCompare:     gputypes.CompareFunctionLess,
		StencilReadMask:  0xFF,
		StencilWriteMask: 0xFF,
		StencilFront:     gputypes.DefaultStencilFaceState(),
		StencilBack:      gputypes.DefaultStencilFaceState(),
	}
}

// PipelineState is the desired shader and fixed-function configuration for
// a draw or dispatch. A nil field means "nothing bound".
type PipelineState struct {
	VertexShader   *Shader
	PixelShader    *Shader
	GeometryShader *Shader
	HullShader     *Shader
	DomainShader   *Shader
	ComputeShader  *Shader

	Raster       *RasterState
	Blend        *BlendState
	DepthStencil *DepthStencilState
	Topology     Topology
}

// Shader returns the shader bound to stage.
func (p *PipelineState) Shader(stage Stage) *Shader {
	switch stage {
	case StageVertex:
		return p.VertexShader
	case StagePixel:
		return p.PixelShader
	case StageGeometry:
		return p.GeometryShader
	case StageHull:
		return p.HullShader
	case StageDomain:
		return p.DomainShader
	case StageCompute:
		return p.ComputeShader
	default:
		return nil
	}
}

// SetShader binds s to stage.
func (p *PipelineState) SetShader(stage Stage, s *Shader) {
	switch stage {
	case StageVertex:
		p.VertexShader = s
	case StagePixel:
		p.PixelShader = s
	case StageGeometry:
		p.GeometryShader = s
	case StageHull:
		p.HullShader = s
	case StageDomain:
		p.DomainShader = s
	case StageCompute:
		p.ComputeShader = s
	}
}

// DefaultSampleMask enables every sample.
const DefaultSampleMask uint32 = 0xFFFFFFFF

// DefaultBlendFactor is opaque white.
var DefaultBlendFactor = gputypes.ColorWhite
