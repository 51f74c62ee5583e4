package gpustate

import (
	"log/slog"

	"github.com/gogpu/gputypes"
)

// Empty tables used to unbind a whole category in one call.
var (
	emptyConstantBuffers [MaxConstantBuffers]ConstantBufferBinding
	emptyShaderResources [MaxShaderResources]*ShaderResourceView
	emptySamplers        [MaxSamplers]*Sampler
	emptyVertexBuffers   [MaxVertexBuffers]VertexBufferBinding
	emptyUAVs            [MaxUnorderedAccessViews]UnorderedAccessBinding
)

// Applicator translates evaluated changes into native bind calls. It binds
// only the flagged categories and only the reported slot ranges.
//
// The native capabilities are read once at construction. A bind that needs
// a missing capability is skipped, and the first skip per capability is
// logged as a warning.
//
// An Applicator is not safe for concurrent use.
type Applicator struct {
	native NativeContext
	caps   Capabilities
	warned Capabilities

	calls uint64

	// scratch for the whole-buffer constant buffer path.
	cbScratch [MaxConstantBuffers]ConstantBufferBinding
}

// NewApplicator queries native capabilities once and returns an applicator for it.
func NewApplicator(native NativeContext) *Applicator {
	caps := native.Capabilities()
	Logger().Debug("gpustate: native capabilities queried", "capabilities", caps)
	return &Applicator{native: native, caps: caps}
}

// Native returns the wrapped native context.
func (a *Applicator) Native() NativeContext {
	return a.native
}

// Capabilities returns the capabilities read at construction.
func (a *Applicator) Capabilities() Capabilities {
	return a.caps
}

// Calls returns the number of native calls issued so far.
func (a *Applicator) Calls() uint64 {
	return a.calls
}

// supports reports whether c is available, warning once per capability
// when it is not.
func (a *Applicator) supports(c Capabilities, op string) bool {
	if a.caps.Has(c) {
		return true
	}
	if missing := c &^ a.caps &^ a.warned; missing != 0 {
		a.warned |= missing
		Logger().Warn("gpustate: native entry point unavailable, call skipped",
			slog.String("op", op), slog.Any("capability", missing))
	}
	return false
}

// ApplyPipelineState binds the shaders and state objects flagged in changes.
func (a *Applicator) ApplyPipelineState(state *PipelineState, changes PipelineChanges, blendFactor gputypes.Color, sampleMask, stencilRef uint32) {
	if changes == 0 {
		return
	}
	if state == nil {
		state = &PipelineState{}
	}

	if changes.Has(PipelineTopology) {
		a.native.SetTopology(state.Topology)
		a.calls++
	}
	for stage := range Stage(StageCount) {
		if !changes.Has(ShaderChange(stage)) {
			continue
		}
		if a.supports(stageCapability(stage), "SetShader") {
			a.native.SetShader(stage, state.Shader(stage))
			a.calls++
		}
	}
	if changes.Has(PipelineRaster) {
		a.native.SetRasterState(state.Raster)
		a.calls++
	}
	if changes.Has(PipelineBlend | PipelineBlendFactor | PipelineSampleMask) {
		a.native.SetBlendState(state.Blend, blendFactor, sampleMask)
		a.calls++
	}
	if changes.Has(PipelineDepthStencil | PipelineStencilRef) {
		a.native.SetDepthStencilState(state.DepthStencil, stencilRef)
		a.calls++
	}
}

// BindResourceState binds the categories flagged in ranges from rs, which is
// normally the snapshot the ranges were computed against.
func (a *Applicator) BindResourceState(ranges *ResourceRanges, rs *ResourceState) {
	c := ranges.Changes
	if c == 0 {
		return
	}

	if c.Has(ResourceStreamOut) && a.supports(CapStreamOut, "SetStreamOutTargets") {
		a.native.SetStreamOutTargets(rs.StreamOut.Slice(0, MaxStreamOutTargets))
		a.calls++
	}
	if c.Has(ResourceInputLayout) {
		a.native.SetInputLayout(rs.InputLayout)
		a.calls++
	}
	if c.Has(ResourceVertexBuffers) {
		if r := ranges.VertexBuffers; r.Empty() {
			a.native.SetVertexBuffers(0, emptyVertexBuffers[:])
		} else {
			a.native.SetVertexBuffers(r.Start, rs.VertexBuffers.Slice(r.Start, r.Count))
		}
		a.calls++
	}
	if c.Has(ResourceIndexBuffer) {
		a.native.SetIndexBuffer(rs.IndexBuffer)
		a.calls++
	}
	if c.Has(ResourceUnorderedAccess) && a.supports(CapUnorderedAccess, "SetUnorderedAccessViews") {
		if r := ranges.UnorderedAccess; r.Empty() {
			a.native.SetUnorderedAccessViews(0, emptyUAVs[:])
		} else {
			a.native.SetUnorderedAccessViews(r.Start, rs.UnorderedAccess.Slice(r.Start, r.Count))
		}
		a.calls++
	}

	for stage := range Stage(StageCount) {
		if c.Has(SamplerChange(stage)) && a.stageBindable(stage, "SetSamplers") {
			if r := ranges.Samplers[stage]; r.Empty() {
				a.native.SetSamplers(stage, 0, emptySamplers[:])
			} else {
				a.native.SetSamplers(stage, r.Start, rs.Stages[stage].Samplers.Slice(r.Start, r.Count))
			}
			a.calls++
		}
	}
	for stage := range Stage(StageCount) {
		if c.Has(ConstantBufferChange(stage)) && a.stageBindable(stage, "SetConstantBuffers") {
			if r := ranges.ConstantBuffers[stage]; r.Empty() {
				a.native.SetConstantBuffers(stage, 0, emptyConstantBuffers[:])
			} else {
				a.native.SetConstantBuffers(stage, r.Start, a.constantBuffers(rs.Stages[stage].ConstantBuffers.Slice(r.Start, r.Count)))
			}
			a.calls++
		}
	}
	for stage := range Stage(StageCount) {
		if c.Has(ShaderResourceChange(stage)) && a.stageBindable(stage, "SetShaderResources") {
			if r := ranges.ShaderResources[stage]; r.Empty() {
				a.native.SetShaderResources(stage, 0, emptyShaderResources[:])
			} else {
				a.native.SetShaderResources(stage, r.Start, rs.Stages[stage].ShaderResources.Slice(r.Start, r.Count))
			}
			a.calls++
		}
	}

	if c.Has(ResourceComputeUnorderedAccess) && a.supports(CapCompute|CapStageResources, "SetComputeUnorderedAccessViews") {
		if r := ranges.ComputeUnorderedAccess; r.Empty() {
			a.native.SetComputeUnorderedAccessViews(0, emptyUAVs[:])
		} else {
			a.native.SetComputeUnorderedAccessViews(r.Start, rs.ComputeUnorderedAccess.Slice(r.Start, r.Count))
		}
		a.calls++
	}
}

func (a *Applicator) stageBindable(stage Stage, op string) bool {
	return a.supports(stageCapability(stage)|CapStageResources, op)
}

// constantBuffers returns bindings suitable for the native context. Without
// offset support the windows are dropped and whole buffers are bound.
func (a *Applicator) constantBuffers(b []ConstantBufferBinding) []ConstantBufferBinding {
	if a.caps.Has(CapConstantBufferOffsets) {
		return b
	}
	legacy := false
	for _, cb := range b {
		if cb.HasOffset() {
			legacy = true
			break
		}
	}
	if !legacy {
		return b
	}
	a.supports(CapConstantBufferOffsets, "SetConstantBuffers")
	out := a.cbScratch[:len(b)]
	for i, cb := range b {
		out[i] = ConstantBufferBinding{Buffer: cb.Buffer}
	}
	return out
}

// BindRenderTargets unbinds the shader resource slots reported in
// changes.Unbound from rs, then binds the output merger if the targets or
// the depth buffer changed.
func (a *Applicator) BindRenderTargets(targets []*RenderTargetView, depth *DepthStencilView, changes TargetChanges, rs *ResourceState) {
	for stage, r := range changes.Unbound {
		if r.Empty() || !a.caps.Has(stageCapability(Stage(stage))) {
			continue
		}
		if a.supports(CapStageResources, "SetShaderResources") {
			a.native.SetShaderResources(Stage(stage), r.Start, rs.Stages[stage].ShaderResources.Slice(r.Start, r.Count))
			a.calls++
		}
	}
	if changes.RenderTargets || changes.DepthStencil {
		a.native.SetRenderTargets(targets, depth)
		a.calls++
	}
}

// BindViewports binds viewports. Without multiple viewport support only
// the first one is bound.
func (a *Applicator) BindViewports(viewports []Viewport) {
	if len(viewports) > 1 && !a.supports(CapMultipleViewports, "SetViewports") {
		viewports = viewports[:1]
	}
	a.native.SetViewports(viewports)
	a.calls++
}

// BindScissorRects binds scissor rectangles. Without multiple viewport
// support only the first one is bound.
func (a *Applicator) BindScissorRects(rects []Rect) {
	if len(rects) > 1 && !a.supports(CapMultipleViewports, "SetScissorRects") {
		rects = rects[:1]
	}
	a.native.SetScissorRects(rects)
	a.calls++
}

// ClearState resets the native context.
func (a *Applicator) ClearState() {
	a.native.ClearState()
	a.calls++
}
