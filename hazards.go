package gpustate

import "github.com/gogpu/gpustate/dirty"

// outputKind names the way a resource is written.
type outputKind uint8

const (
	outputRenderTarget outputKind = iota
	outputDepthStencil
	outputUnorderedAccess
	outputStreamOut
)

func (k outputKind) String() string {
	switch k {
	case outputRenderTarget:
		return "render-target"
	case outputDepthStencil:
		return "depth-stencil"
	case outputUnorderedAccess:
		return "unordered-access"
	case outputStreamOut:
		return "stream-out"
	default:
		return "unknown"
	}
}

type output struct {
	res  *Resource
	kind outputKind
}

func findOutput(outs []output, res *Resource) (outputKind, bool) {
	for _, o := range outs {
		if o.res == res {
			return o.kind, true
		}
	}
	return 0, false
}

// resolveHazards removes inputs of rs that alias an output. The caller's
// state is modified; the cleared slots become dirty and are diffed like any
// other change.
func (e *Evaluator) resolveHazards(rs *ResourceState, sc scope) {
	if sc&scopeGraphics != 0 {
		switched := e.syncedCommon != rs
		e.resolveStreamOutInputs(rs, switched)

		outs := e.graphicsOutputs(rs)
		full := switched || rs.UnorderedAccess.IsDirty() || rs.StreamOut.IsDirty()
		for _, stage := range graphicsStages {
			e.resolveShaderInputs(rs, stage, outs, full)
		}
	}

	if sc&scopeCompute != 0 {
		e.outputs = appendUAVOutputs(e.outputs[:0], rs.ComputeUnorderedAccess)
		full := e.syncedCompute != rs || rs.ComputeUnorderedAccess.IsDirty()
		e.resolveShaderInputs(rs, StageCompute, e.outputs, full)
	}
}

// graphicsOutputs collects every resource written by a draw: the bound
// render targets and depth buffer from the snapshot, plus the UAVs and
// stream-out targets of rs.
func (e *Evaluator) graphicsOutputs(rs *ResourceState) []output {
	outs := e.outputs[:0]
	if !e.allowTargetReads {
		for _, v := range e.snap.targets {
			if v != nil {
				outs = append(outs, output{v.Resource(), outputRenderTarget})
			}
		}
	}
	if d := e.snap.depth; d != nil {
		outs = append(outs, output{d.Resource(), outputDepthStencil})
	}
	outs = appendUAVOutputs(outs, rs.UnorderedAccess)

	start, count := rs.StreamOut.Extent()
	for i := start; i < start+count; i++ {
		if b := rs.StreamOut.At(i).Buffer; b != nil {
			outs = append(outs, output{b.Resource, outputStreamOut})
		}
	}
	e.outputs = outs
	return outs
}

func appendUAVOutputs(outs []output, uavs *dirty.Array[UnorderedAccessBinding]) []output {
	start, count := uavs.Extent()
	for i := start; i < start+count; i++ {
		if v := uavs.At(i).View; v != nil {
			outs = append(outs, output{v.Resource(), outputUnorderedAccess})
		}
	}
	return outs
}

// resolveStreamOutInputs clears vertex buffers and the index buffer that
// alias a stream-out target. A buffer in the stream-out table is an output
// whether or not it was created with the stream-out flag. Every stream-out
// binding of rs is checked, so a vertex buffer change is caught even when
// the stream-out table itself did not change.
func (e *Evaluator) resolveStreamOutInputs(rs *ResourceState, switched bool) {
	var targets [MaxStreamOutTargets]*Resource
	n := 0
	start, count := rs.StreamOut.Extent()
	for i := start; i < start+count; i++ {
		if b := rs.StreamOut.At(i).Buffer; b != nil {
			targets[n] = b.Resource
			n++
		}
	}
	if n == 0 {
		return
	}
	isTarget := func(b *Buffer) bool {
		if b == nil {
			return false
		}
		for _, t := range targets[:n] {
			if t == b.Resource {
				return true
			}
		}
		return false
	}

	vbs := rs.VertexBuffers
	vs, vc := inputRange(vbs, e.snap.resources.VertexBuffers, switched || rs.StreamOut.IsDirty())
	for i := vs; i < vs+vc; i++ {
		if b := vbs.At(i).Buffer; isTarget(b) {
			vbs.Set(i, VertexBufferBinding{})
			logHazard("vertex-buffer", i, b.Resource, outputStreamOut, -1)
		}
	}

	if b := rs.IndexBuffer.Buffer; isTarget(b) {
		rs.IndexBuffer = IndexBufferBinding{}
		logHazard("index-buffer", 0, b.Resource, outputStreamOut, -1)
	}
}

// resolveShaderInputs clears shader resource views of stage that alias an
// output. Only the slots about to be diffed are checked unless full is set,
// in which case the outputs changed and every bound slot is checked.
func (e *Evaluator) resolveShaderInputs(rs *ResourceState, stage Stage, outs []output, full bool) {
	if len(outs) == 0 {
		return
	}
	srvs := rs.Stages[stage].ShaderResources
	full = full || e.synced[stage] != rs
	start, count := inputRange(srvs, e.snap.resources.Stages[stage].ShaderResources, full)
	for i := start; i < start+count; i++ {
		v := srvs.At(i)
		if v == nil {
			continue
		}
		if kind, ok := findOutput(outs, v.Resource()); ok {
			srvs.Set(i, nil)
			logHazard("shader-resource", i, v.Resource(), kind, int(stage))
		}
	}
}

// inputRange returns the slots of next that may be bound after the coming
// diff: its whole extent when full is set, otherwise its pending changes,
// plus slots the snapshot still has to restore.
func inputRange[T comparable](next, prev *dirty.Array[T], full bool) (start, count int) {
	ps, pc := prev.DirtyItems()
	ns, nc := next.DirtyItems()
	if full {
		ns, nc = next.Extent()
	}
	return dirty.Union(ns, nc, ps, pc)
}

// unbindTargetReads clears snapshot shader resource views that alias the
// newly bound outputs and records the cleared spans in c.
func (e *Evaluator) unbindTargetReads(c *TargetChanges) {
	outs := e.outputs[:0]
	if !e.allowTargetReads {
		for _, v := range e.snap.targets {
			if v != nil {
				outs = append(outs, output{v.Resource(), outputRenderTarget})
			}
		}
	}
	if d := e.snap.depth; d != nil {
		outs = append(outs, output{d.Resource(), outputDepthStencil})
	}
	e.outputs = outs
	if len(outs) == 0 {
		return
	}

	for stage := range Stage(StageCount) {
		srvs := e.snap.resources.Stages[stage].ShaderResources
		start, count := srvs.Extent()
		lo, hi := -1, -1
		for i := start; i < start+count; i++ {
			v := srvs.At(i)
			if v == nil {
				continue
			}
			if kind, ok := findOutput(outs, v.Resource()); ok {
				srvs.Set(i, nil)
				if lo < 0 {
					lo = i
				}
				hi = i
				logHazard("shader-resource", i, v.Resource(), kind, int(stage))
			}
		}
		if lo >= 0 {
			c.Unbound[stage] = Range{Start: lo, Count: hi - lo + 1}
		}
	}
}

func logHazard(input string, slot int, res *Resource, kind outputKind, stage int) {
	if !Debug() {
		return
	}
	args := []any{"input", input, "slot", slot, "output", kind}
	if res != nil {
		args = append(args, "resource", res.Name)
	}
	if stage >= 0 {
		args = append(args, "stage", Stage(stage))
	}
	Logger().Debug("gpustate: hazard resolved, input unbound", args...)
}
