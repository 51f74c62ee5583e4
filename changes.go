package gpustate

import (
	"fmt"
	"strings"
)

// PipelineChanges flags the pipeline fields that differ from the applied
// state.
type PipelineChanges uint32

// Pipeline change flags.
const (
	PipelineTopology PipelineChanges = 1 << iota
	PipelineRaster
	PipelineBlend
	PipelineDepthStencil
	PipelineVertexShader
	PipelinePixelShader
	PipelineGeometryShader
	PipelineHullShader
	PipelineDomainShader
	PipelineComputeShader
	PipelineBlendFactor
	PipelineSampleMask
	PipelineStencilRef

	// PipelineAll is every pipeline flag.
	PipelineAll = PipelineStencilRef<<1 - 1
)

var pipelineChangeNames = [...]string{
	"topology", "raster", "blend", "depth-stencil",
	"vs", "ps", "gs", "hs", "ds", "cs",
	"blend-factor", "sample-mask", "stencil-ref",
}

// ShaderChange returns the flag for the shader of stage.
func ShaderChange(stage Stage) PipelineChanges {
	return PipelineVertexShader << stage
}

// Has reports whether any bit of flag is set.
func (c PipelineChanges) Has(flag PipelineChanges) bool {
	return c&flag != 0
}

// String returns the set flags joined with '|'.
func (c PipelineChanges) String() string {
	return flagString(uint32(c), pipelineChangeNames[:])
}

// ResourceChanges flags the resource categories that differ from the applied
// state.
type ResourceChanges uint32

// Resource change flags. Per-stage flags are built with
// [ConstantBufferChange], [ShaderResourceChange] and [SamplerChange].
const (
	ResourceInputLayout ResourceChanges = 1 << iota
	ResourceIndexBuffer
	ResourceVertexBuffers
	ResourceStreamOut
	ResourceUnorderedAccess
	ResourceComputeUnorderedAccess

	resourceStageBase = iota
)

// ConstantBufferChange returns the constant buffer flag of stage.
func ConstantBufferChange(stage Stage) ResourceChanges {
	return 1 << (resourceStageBase + 3*int(stage))
}

// ShaderResourceChange returns the shader resource view flag of stage.
func ShaderResourceChange(stage Stage) ResourceChanges {
	return 1 << (resourceStageBase + 3*int(stage) + 1)
}

// SamplerChange returns the sampler flag of stage.
func SamplerChange(stage Stage) ResourceChanges {
	return 1 << (resourceStageBase + 3*int(stage) + 2)
}

var resourceChangeNames = func() []string {
	names := []string{"input-layout", "index-buffer", "vertex-buffers", "stream-out", "uav", "cs-uav"}
	for s := range Stage(StageCount) {
		names = append(names, s.String()+"-cb", s.String()+"-srv", s.String()+"-sampler")
	}
	return names
}()

// Has reports whether any bit of flag is set.
func (c ResourceChanges) Has(flag ResourceChanges) bool {
	return c&flag != 0
}

// String returns the set flags joined with '|'.
func (c ResourceChanges) String() string {
	return flagString(uint32(c), resourceChangeNames)
}

func flagString(v uint32, names []string) string {
	if v == 0 {
		return "none"
	}
	var b strings.Builder
	for i, name := range names {
		if v&(1<<i) == 0 {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('|')
		}
		b.WriteString(name)
	}
	return b.String()
}

// Range is a contiguous slot span. Count zero means empty.
type Range struct {
	Start int
	Count int
}

// Empty reports whether the range covers no slots.
func (r Range) Empty() bool {
	return r.Count == 0
}

// End returns one past the last slot.
func (r Range) End() int {
	return r.Start + r.Count
}

func (r Range) String() string {
	return fmt.Sprintf("[%d,+%d)", r.Start, r.Count)
}

// ResourceRanges is the output of resource evaluation: which categories
// changed and the slot span to rebind for each.
type ResourceRanges struct {
	Changes ResourceChanges

	VertexBuffers          Range
	StreamOut              Range
	UnorderedAccess        Range
	ComputeUnorderedAccess Range

	ConstantBuffers [StageCount]Range
	ShaderResources [StageCount]Range
	Samplers        [StageCount]Range
}

// Reset empties all ranges.
func (r *ResourceRanges) Reset() {
	*r = ResourceRanges{}
}

// TargetChanges is the output of render target evaluation.
type TargetChanges struct {
	RenderTargets bool
	DepthStencil  bool

	// Unbound lists, per stage, the shader resource slots that were cleared
	// because they referenced an incoming render target or depth buffer.
	// They must be unbound before the targets are bound.
	Unbound [StageCount]Range
}

// Changed reports whether anything needs to be applied.
func (c *TargetChanges) Changed() bool {
	if c.RenderTargets || c.DepthStencil {
		return true
	}
	for _, r := range c.Unbound {
		if !r.Empty() {
			return true
		}
	}
	return false
}
