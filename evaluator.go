package gpustate

import (
	"math"

	"github.com/gogpu/gpustate/dirty"
	"github.com/gogpu/gputypes"
)

// scope limits an evaluation to the draw or the dispatch half of the state.
type scope uint8

const (
	scopeGraphics scope = 1 << iota
	scopeCompute

	scopeAll = scopeGraphics | scopeCompute
)

// blendFactorEpsilon is the tolerance used when comparing blend factors.
const blendFactorEpsilon = 1e-6

// Evaluator diffs desired pipeline, resource and output state against a
// Snapshot. Every Evaluate call copies the differing values into the
// snapshot and reports what changed, so an Applicator can bind exactly that.
//
// Before resource tables are diffed, resources that are about to be written
// (render targets, depth buffer, UAVs, stream-out targets) are removed from
// the input tables of the incoming state. Outputs always win.
//
// An Evaluator is not safe for concurrent use.
type Evaluator struct {
	snap *Snapshot

	// synced records which ResourceState each category was last diffed
	// against. A different object means its dirty ranges are meaningless
	// relative to the snapshot and the written extents are used instead.
	synced        [StageCount]*ResourceState
	syncedCommon  *ResourceState
	syncedCompute *ResourceState

	// allowTargetReads keeps shader resource views that alias a bound
	// render target.
	allowTargetReads bool

	ranges  ResourceRanges
	empty   *ResourceState
	outputs []output
}

// NewEvaluator returns an evaluator over snap. A nil snap creates a fresh
// one.
func NewEvaluator(snap *Snapshot) *Evaluator {
	if snap == nil {
		snap = NewSnapshot()
	}
	return &Evaluator{
		snap:    snap,
		empty:   NewResourceState(),
		outputs: make([]output, 0, MaxRenderTargets+1+MaxStreamOutTargets+MaxUnorderedAccessViews),
	}
}

// Snapshot returns the snapshot the evaluator maintains.
func (e *Evaluator) Snapshot() *Snapshot {
	return e.snap
}

// SetRenderTargetReads controls whether a shader resource view may alias a
// bound render target. It is off by default, in which case the view is
// unbound. Depth buffers, UAVs and stream-out targets are never exempt.
func (e *Evaluator) SetRenderTargetReads(allow bool) {
	e.allowTargetReads = allow
}

// Reset clears the snapshot to defaults and forgets all synced state. Use it
// after the native context has been cleared or lost.
func (e *Evaluator) Reset() {
	e.snap.reset()
	e.synced = [StageCount]*ResourceState{}
	e.syncedCommon = nil
	e.syncedCompute = nil
}

// EvaluatePipeline diffs state and the fixed-function constants against the
// snapshot. A nil state unbinds every shader and state object.
func (e *Evaluator) EvaluatePipeline(state *PipelineState, blendFactor gputypes.Color, sampleMask, stencilRef uint32) PipelineChanges {
	return e.evaluatePipeline(state, blendFactor, sampleMask, stencilRef, scopeAll)
}

// EvaluateCompute diffs only the compute shader.
func (e *Evaluator) EvaluateCompute(shader *Shader) PipelineChanges {
	if e.snap.pipeline.ComputeShader == shader {
		return 0
	}
	e.snap.pipeline.ComputeShader = shader
	return PipelineComputeShader
}

func (e *Evaluator) evaluatePipeline(state *PipelineState, blendFactor gputypes.Color, sampleMask, stencilRef uint32, sc scope) PipelineChanges {
	if state == nil {
		state = &PipelineState{}
	}
	p := &e.snap.pipeline
	var c PipelineChanges

	if p.Topology != state.Topology {
		p.Topology = state.Topology
		c |= PipelineTopology
	}
	if p.Raster != state.Raster {
		p.Raster = state.Raster
		c |= PipelineRaster
	}
	if p.Blend != state.Blend {
		p.Blend = state.Blend
		c |= PipelineBlend
	}
	if p.DepthStencil != state.DepthStencil {
		p.DepthStencil = state.DepthStencil
		c |= PipelineDepthStencil
	}

	for stage := range Stage(StageCount) {
		if stage == StageCompute && sc&scopeCompute == 0 {
			continue
		}
		if s := state.Shader(stage); p.Shader(stage) != s {
			p.SetShader(stage, s)
			c |= ShaderChange(stage)
		}
	}

	if !colorEqual(e.snap.blendFactor, blendFactor) {
		e.snap.blendFactor = blendFactor
		c |= PipelineBlendFactor
	}
	if e.snap.sampleMask != sampleMask {
		e.snap.sampleMask = sampleMask
		c |= PipelineSampleMask
	}
	if e.snap.stencilRef != stencilRef {
		e.snap.stencilRef = stencilRef
		c |= PipelineStencilRef
	}
	return c
}

func colorEqual(a, b gputypes.Color) bool {
	return math.Abs(a.R-b.R) <= blendFactorEpsilon &&
		math.Abs(a.G-b.G) <= blendFactorEpsilon &&
		math.Abs(a.B-b.B) <= blendFactorEpsilon &&
		math.Abs(a.A-b.A) <= blendFactorEpsilon
}

// EvaluateResources resolves hazards in rs, diffs it against the snapshot
// and returns the ranges to rebind. pch is the result of the pipeline
// evaluation for the same call: a stage's tables are only diffed when the
// stage has a shader bound or its shader just changed.
//
// A nil rs unbinds everything. The returned value is owned by the evaluator
// and valid until the next call.
func (e *Evaluator) EvaluateResources(rs *ResourceState, pch PipelineChanges) *ResourceRanges {
	return e.evaluateResources(rs, pch, scopeAll)
}

func (e *Evaluator) evaluateResources(rs *ResourceState, pch PipelineChanges, sc scope) *ResourceRanges {
	r := &e.ranges
	r.Reset()
	if rs == nil {
		rs = e.empty
	}
	snap := e.snap.resources

	e.resolveHazards(rs, sc)

	if sc&scopeGraphics != 0 {
		switched := e.syncedCommon != rs
		e.syncedCommon = rs

		if snap.InputLayout != rs.InputLayout {
			snap.InputLayout = rs.InputLayout
			r.Changes |= ResourceInputLayout
		}
		if snap.IndexBuffer != rs.IndexBuffer {
			snap.IndexBuffer = rs.IndexBuffer
			r.Changes |= ResourceIndexBuffer
		}
		r.VertexBuffers = diffInto(&r.Changes, ResourceVertexBuffers, snap.VertexBuffers, rs.VertexBuffers, switched)
		r.StreamOut = diffInto(&r.Changes, ResourceStreamOut, snap.StreamOut, rs.StreamOut, switched)

		for _, stage := range graphicsStages {
			if e.stageActive(stage, pch) {
				e.diffStage(stage, rs, r)
			}
		}

		r.UnorderedAccess = diffInto(&r.Changes, ResourceUnorderedAccess, snap.UnorderedAccess, rs.UnorderedAccess, switched)
	}

	if sc&scopeCompute != 0 && e.stageActive(StageCompute, pch) {
		switched := e.syncedCompute != rs
		e.syncedCompute = rs
		e.diffStage(StageCompute, rs, r)
		r.ComputeUnorderedAccess = diffInto(&r.Changes, ResourceComputeUnorderedAccess,
			snap.ComputeUnorderedAccess, rs.ComputeUnorderedAccess, switched)
	}

	return r
}

func (e *Evaluator) stageActive(stage Stage, pch PipelineChanges) bool {
	return e.snap.pipeline.Shader(stage) != nil || pch.Has(ShaderChange(stage))
}

func (e *Evaluator) diffStage(stage Stage, rs *ResourceState, r *ResourceRanges) {
	switched := e.synced[stage] != rs
	e.synced[stage] = rs

	prev, next := &e.snap.resources.Stages[stage], &rs.Stages[stage]
	r.ConstantBuffers[stage] = diffInto(&r.Changes, ConstantBufferChange(stage), prev.ConstantBuffers, next.ConstantBuffers, switched)
	r.ShaderResources[stage] = diffInto(&r.Changes, ShaderResourceChange(stage), prev.ShaderResources, next.ShaderResources, switched)
	r.Samplers[stage] = diffInto(&r.Changes, SamplerChange(stage), prev.Samplers, next.Samplers, switched)
}

func diffInto[T comparable](changes *ResourceChanges, flag ResourceChanges, prev, next *dirty.Array[T], switched bool) Range {
	rng := diffArray(prev, next, switched)
	if !rng.Empty() {
		*changes |= flag
	}
	return rng
}

// diffArray copies next into prev over the union of both pending dirty
// ranges and returns the span of prev that actually changed. Both trackers
// are consumed.
func diffArray[T comparable](prev, next *dirty.Array[T], switched bool) Range {
	ps, pc := prev.Consume()

	var ns, nc int
	if switched {
		es, ec := next.Extent()
		ss, sc := prev.Extent()
		ns, nc = dirty.Union(es, ec, ss, sc)
		next.Consume()
	} else {
		ns, nc = next.Consume()
	}

	start, count := dirty.Union(ps, pc, ns, nc)
	for i := start; i < start+count; i++ {
		prev.Set(i, next.At(i))
	}

	s, c := prev.Consume()
	return Range{Start: s, Count: c}
}

// EvaluateTargets diffs the output merger targets. Slots past len(targets)
// are treated as unbound. When the outputs change, shader resource views in
// the snapshot that alias an incoming target are cleared and reported in
// TargetChanges.Unbound; they stay dirty so the next resource evaluation
// restores whatever the caller's state still asks for.
func (e *Evaluator) EvaluateTargets(targets []*RenderTargetView, depth *DepthStencilView) TargetChanges {
	var c TargetChanges
	for i := range MaxRenderTargets {
		var v *RenderTargetView
		if i < len(targets) {
			v = targets[i]
		}
		if e.snap.targets[i] != v {
			e.snap.targets[i] = v
			c.RenderTargets = true
		}
	}
	if e.snap.depth != depth {
		e.snap.depth = depth
		c.DepthStencil = true
	}

	if c.RenderTargets || c.DepthStencil {
		e.unbindTargetReads(&c)
	}
	return c
}

// EvaluateViewports diffs viewports element-wise. A change in count is a
// change.
func (e *Evaluator) EvaluateViewports(viewports []Viewport) bool {
	n := min(len(viewports), MaxViewports)
	changed := n != e.snap.viewportCount
	for i := range MaxViewports {
		var v Viewport
		if i < n {
			v = viewports[i]
		}
		if e.snap.viewports[i] != v {
			e.snap.viewports[i] = v
			changed = true
		}
	}
	e.snap.viewportCount = n
	return changed
}

// EvaluateScissors diffs scissor rectangles element-wise. A change in count
// is a change.
func (e *Evaluator) EvaluateScissors(rects []Rect) bool {
	n := min(len(rects), MaxScissorRects)
	changed := n != e.snap.scissorCount
	for i := range MaxScissorRects {
		var r Rect
		if i < n {
			r = rects[i]
		}
		if e.snap.scissors[i] != r {
			e.snap.scissors[i] = r
			changed = true
		}
	}
	e.snap.scissorCount = n
	return changed
}
