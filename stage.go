package gpustate

// Slot capacities of the binding tables. They match the D3D11 feature level
// 11 limits and never change at run time.
const (
	MaxConstantBuffers      = 14
	MaxShaderResources      = 128
	MaxSamplers             = 16
	MaxVertexBuffers        = 32
	MaxStreamOutTargets     = 4
	MaxUnorderedAccessViews = 64
	MaxRenderTargets        = 8
	MaxViewports            = 16
	MaxScissorRects         = 16
)

// Stage identifies a programmable pipeline stage.
type Stage uint8

// Pipeline stages in binding order.
const (
	StageVertex Stage = iota
	StagePixel
	StageGeometry
	StageHull
	StageDomain
	StageCompute
)

// StageCount is the number of programmable stages.
const StageCount = 6

// graphicsStages lists the stages that take part in a draw call.
var graphicsStages = [...]Stage{StageVertex, StagePixel, StageGeometry, StageHull, StageDomain}

// String returns the stage name.
func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StagePixel:
		return "pixel"
	case StageGeometry:
		return "geometry"
	case StageHull:
		return "hull"
	case StageDomain:
		return "domain"
	case StageCompute:
		return "compute"
	default:
		return "unknown"
	}
}

// IsGraphics reports whether the stage belongs to the draw pipeline.
func (s Stage) IsGraphics() bool {
	return s < StageCompute
}
