// Package recorder provides a gpustate.NativeContext that executes nothing
// and records every call.
//
// A Recorder keeps two views of what it was asked to do: the ordered call
// log, and a mirror of the native binding tables with the calls applied.
// Tests compare the mirror with the desired state to prove that the minimal
// bind sequence still produces the right result; tools print the log.
package recorder

import (
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gpustate"
	"github.com/gogpu/gputypes"
)

// Op identifies a native entry point.
type Op uint8

// Native entry points.
const (
	OpSetTopology Op = iota
	OpSetInputLayout
	OpSetShader
	OpSetRasterState
	OpSetBlendState
	OpSetDepthStencilState
	OpSetConstantBuffers
	OpSetShaderResources
	OpSetSamplers
	OpSetVertexBuffers
	OpSetIndexBuffer
	OpSetStreamOutTargets
	OpSetRenderTargets
	OpSetUnorderedAccessViews
	OpSetComputeUnorderedAccessViews
	OpSetViewports
	OpSetScissorRects
	OpClearState
	OpDraw
	OpDrawIndexed
	OpDrawInstanced
	OpDrawIndexedInstanced
	OpDispatch
	OpDrawAuto
	OpDrawInstancedIndirect
	OpDrawIndexedInstancedIndirect
	OpDispatchIndirect

	opCount
)

var opNames = [opCount]string{
	"SetTopology", "SetInputLayout", "SetShader", "SetRasterState", "SetBlendState",
	"SetDepthStencilState", "SetConstantBuffers", "SetShaderResources", "SetSamplers",
	"SetVertexBuffers", "SetIndexBuffer", "SetStreamOutTargets", "SetRenderTargets",
	"SetUnorderedAccessViews", "SetComputeUnorderedAccessViews", "SetViewports",
	"SetScissorRects", "ClearState", "Draw", "DrawIndexed", "DrawInstanced",
	"DrawIndexedInstanced", "Dispatch", "DrawAuto", "DrawInstancedIndirect",
	"DrawIndexedInstancedIndirect", "DispatchIndirect",
}

func (op Op) String() string {
	if op < opCount {
		return opNames[op]
	}
	return fmt.Sprintf("Op(%d)", uint8(op))
}

// IsDraw reports whether op submits work.
func (op Op) IsDraw() bool {
	return op >= OpDraw
}

// Call is one recorded native call. Stage is meaningful for per-stage
// entry points; Start and Count describe the slot span for table binds and
// the element count for draws. Indirect calls carry the argument buffer in
// Args and its offset in Start.
type Call struct {
	Op    Op
	Stage gpustate.Stage
	Start int
	Count int
	Args  *gpustate.Buffer
}

func (c Call) String() string {
	switch c.Op {
	case OpSetShader:
		return fmt.Sprintf("%v(%v)", c.Op, c.Stage)
	case OpSetConstantBuffers, OpSetShaderResources, OpSetSamplers:
		return fmt.Sprintf("%v(%v, %d, %d)", c.Op, c.Stage, c.Start, c.Count)
	case OpSetVertexBuffers, OpSetUnorderedAccessViews, OpSetComputeUnorderedAccessViews:
		return fmt.Sprintf("%v(%d, %d)", c.Op, c.Start, c.Count)
	case OpSetRenderTargets, OpSetStreamOutTargets, OpSetViewports, OpSetScissorRects, OpDraw,
		OpDrawIndexed, OpDrawInstanced, OpDrawIndexedInstanced, OpDispatch:
		return fmt.Sprintf("%v(%d)", c.Op, c.Count)
	case OpDrawInstancedIndirect, OpDrawIndexedInstancedIndirect, OpDispatchIndirect:
		name := "<nil>"
		if c.Args != nil {
			name = c.Args.Name
		}
		return fmt.Sprintf("%v(%s, %d)", c.Op, name, c.Start)
	default:
		return c.Op.String() + "()"
	}
}

// Bound mirrors the native binding tables.
type Bound struct {
	Topology     gpustate.Topology
	InputLayout  *gpustate.InputLayout
	Shaders      [gpustate.StageCount]*gpustate.Shader
	Raster       *gpustate.RasterState
	Blend        *gpustate.BlendState
	BlendFactor  gputypes.Color
	SampleMask   uint32
	DepthStencil *gpustate.DepthStencilState
	StencilRef   uint32

	ConstantBuffers [gpustate.StageCount][gpustate.MaxConstantBuffers]gpustate.ConstantBufferBinding
	ShaderResources [gpustate.StageCount][gpustate.MaxShaderResources]*gpustate.ShaderResourceView
	Samplers        [gpustate.StageCount][gpustate.MaxSamplers]*gpustate.Sampler

	VertexBuffers [gpustate.MaxVertexBuffers]gpustate.VertexBufferBinding
	IndexBuffer   gpustate.IndexBufferBinding
	StreamOut     [gpustate.MaxStreamOutTargets]gpustate.StreamOutBinding

	RenderTargets [gpustate.MaxRenderTargets]*gpustate.RenderTargetView
	DepthBuffer   *gpustate.DepthStencilView
	UAVs          [gpustate.MaxUnorderedAccessViews]gpustate.UnorderedAccessBinding
	ComputeUAVs   [gpustate.MaxUnorderedAccessViews]gpustate.UnorderedAccessBinding

	Viewports    []gpustate.Viewport
	ScissorRects []gpustate.Rect
}

func (b *Bound) reset() {
	*b = Bound{
		BlendFactor: gpustate.DefaultBlendFactor,
		SampleMask:  gpustate.DefaultSampleMask,
	}
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithCapabilities sets the capabilities the recorder reports. The default
// is gpustate.CapAll.
func WithCapabilities(caps gpustate.Capabilities) Option {
	return func(r *Recorder) {
		r.caps = caps
	}
}

// Recorder implements gpustate.NativeContext.
type Recorder struct {
	caps    gpustate.Capabilities
	queries int
	calls   []Call
	bound   Bound
}

var _ gpustate.NativeContext = (*Recorder)(nil)

// New returns a recorder in the native default state.
func New(opts ...Option) *Recorder {
	r := &Recorder{caps: gpustate.CapAll}
	for _, opt := range opts {
		opt(r)
	}
	r.bound.reset()
	return r
}

// AdapterInfo describes the recorder as a software adapter.
func (r *Recorder) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{Name: "gpustate call recorder", Type: gpucontext.AdapterTypeSoftware}
}

// Calls returns the call log.
func (r *Recorder) Calls() []Call {
	return r.calls
}

// Count returns how many calls of op were recorded.
func (r *Recorder) Count(op Op) int {
	n := 0
	for _, c := range r.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// BindCalls returns the number of recorded calls that are not draws or
// dispatches.
func (r *Recorder) BindCalls() int {
	n := 0
	for _, c := range r.calls {
		if !c.Op.IsDraw() {
			n++
		}
	}
	return n
}

// ResetCalls clears the call log and keeps the mirrored state.
func (r *Recorder) ResetCalls() {
	r.calls = r.calls[:0]
}

// Bound returns the mirrored binding tables.
func (r *Recorder) Bound() *Bound {
	return &r.bound
}

// CapabilityQueries returns how many times Capabilities was called.
func (r *Recorder) CapabilityQueries() int {
	return r.queries
}

func (r *Recorder) record(op Op, stage gpustate.Stage, start, count int) {
	r.calls = append(r.calls, Call{Op: op, Stage: stage, Start: start, Count: count})
}

// Capabilities implements gpustate.NativeContext.
func (r *Recorder) Capabilities() gpustate.Capabilities {
	r.queries++
	return r.caps
}

// SetTopology implements gpustate.NativeContext.
func (r *Recorder) SetTopology(t gpustate.Topology) {
	r.record(OpSetTopology, 0, 0, 0)
	r.bound.Topology = t
}

// SetInputLayout implements gpustate.NativeContext.
func (r *Recorder) SetInputLayout(l *gpustate.InputLayout) {
	r.record(OpSetInputLayout, 0, 0, 0)
	r.bound.InputLayout = l
}

// SetShader implements gpustate.NativeContext.
func (r *Recorder) SetShader(stage gpustate.Stage, s *gpustate.Shader) {
	r.record(OpSetShader, stage, 0, 0)
	r.bound.Shaders[stage] = s
}

// SetRasterState implements gpustate.NativeContext.
func (r *Recorder) SetRasterState(s *gpustate.RasterState) {
	r.record(OpSetRasterState, 0, 0, 0)
	r.bound.Raster = s
}

// SetBlendState implements gpustate.NativeContext.
func (r *Recorder) SetBlendState(s *gpustate.BlendState, factor gputypes.Color, sampleMask uint32) {
	r.record(OpSetBlendState, 0, 0, 0)
	r.bound.Blend = s
	r.bound.BlendFactor = factor
	r.bound.SampleMask = sampleMask
}

// SetDepthStencilState implements gpustate.NativeContext.
func (r *Recorder) SetDepthStencilState(s *gpustate.DepthStencilState, stencilRef uint32) {
	r.record(OpSetDepthStencilState, 0, 0, 0)
	r.bound.DepthStencil = s
	r.bound.StencilRef = stencilRef
}

// SetConstantBuffers implements gpustate.NativeContext.
func (r *Recorder) SetConstantBuffers(stage gpustate.Stage, start int, buffers []gpustate.ConstantBufferBinding) {
	r.record(OpSetConstantBuffers, stage, start, len(buffers))
	copy(r.bound.ConstantBuffers[stage][start:], buffers)
}

// SetShaderResources implements gpustate.NativeContext.
func (r *Recorder) SetShaderResources(stage gpustate.Stage, start int, views []*gpustate.ShaderResourceView) {
	r.record(OpSetShaderResources, stage, start, len(views))
	copy(r.bound.ShaderResources[stage][start:], views)
}

// SetSamplers implements gpustate.NativeContext.
func (r *Recorder) SetSamplers(stage gpustate.Stage, start int, samplers []*gpustate.Sampler) {
	r.record(OpSetSamplers, stage, start, len(samplers))
	copy(r.bound.Samplers[stage][start:], samplers)
}

// SetVertexBuffers implements gpustate.NativeContext.
func (r *Recorder) SetVertexBuffers(start int, buffers []gpustate.VertexBufferBinding) {
	r.record(OpSetVertexBuffers, 0, start, len(buffers))
	copy(r.bound.VertexBuffers[start:], buffers)
}

// SetIndexBuffer implements gpustate.NativeContext.
func (r *Recorder) SetIndexBuffer(b gpustate.IndexBufferBinding) {
	r.record(OpSetIndexBuffer, 0, 0, 0)
	r.bound.IndexBuffer = b
}

// SetStreamOutTargets implements gpustate.NativeContext.
func (r *Recorder) SetStreamOutTargets(targets []gpustate.StreamOutBinding) {
	r.record(OpSetStreamOutTargets, 0, 0, len(targets))
	r.bound.StreamOut = [gpustate.MaxStreamOutTargets]gpustate.StreamOutBinding{}
	copy(r.bound.StreamOut[:], targets)
}

// SetRenderTargets implements gpustate.NativeContext.
func (r *Recorder) SetRenderTargets(targets []*gpustate.RenderTargetView, depth *gpustate.DepthStencilView) {
	r.record(OpSetRenderTargets, 0, 0, len(targets))
	r.bound.RenderTargets = [gpustate.MaxRenderTargets]*gpustate.RenderTargetView{}
	copy(r.bound.RenderTargets[:], targets)
	r.bound.DepthBuffer = depth
}

// SetUnorderedAccessViews implements gpustate.NativeContext.
func (r *Recorder) SetUnorderedAccessViews(start int, uavs []gpustate.UnorderedAccessBinding) {
	r.record(OpSetUnorderedAccessViews, 0, start, len(uavs))
	copy(r.bound.UAVs[start:], uavs)
}

// SetComputeUnorderedAccessViews implements gpustate.NativeContext.
func (r *Recorder) SetComputeUnorderedAccessViews(start int, uavs []gpustate.UnorderedAccessBinding) {
	r.record(OpSetComputeUnorderedAccessViews, gpustate.StageCompute, start, len(uavs))
	copy(r.bound.ComputeUAVs[start:], uavs)
}

// SetViewports implements gpustate.NativeContext.
func (r *Recorder) SetViewports(viewports []gpustate.Viewport) {
	r.record(OpSetViewports, 0, 0, len(viewports))
	r.bound.Viewports = append(r.bound.Viewports[:0], viewports...)
}

// SetScissorRects implements gpustate.NativeContext.
func (r *Recorder) SetScissorRects(rects []gpustate.Rect) {
	r.record(OpSetScissorRects, 0, 0, len(rects))
	r.bound.ScissorRects = append(r.bound.ScissorRects[:0], rects...)
}

// ClearState implements gpustate.NativeContext.
func (r *Recorder) ClearState() {
	r.record(OpClearState, 0, 0, 0)
	r.bound.reset()
}

// Draw implements gpustate.NativeContext.
func (r *Recorder) Draw(vertexCount, startVertex uint32) {
	r.record(OpDraw, 0, int(startVertex), int(vertexCount))
}

// DrawIndexed implements gpustate.NativeContext.
func (r *Recorder) DrawIndexed(indexCount, startIndex uint32, _ int32) {
	r.record(OpDrawIndexed, 0, int(startIndex), int(indexCount))
}

// DrawInstanced implements gpustate.NativeContext.
func (r *Recorder) DrawInstanced(vertexCount, _, startVertex, _ uint32) {
	r.record(OpDrawInstanced, 0, int(startVertex), int(vertexCount))
}

// DrawIndexedInstanced implements gpustate.NativeContext.
func (r *Recorder) DrawIndexedInstanced(indexCount, _, startIndex uint32, _ int32, _ uint32) {
	r.record(OpDrawIndexedInstanced, 0, int(startIndex), int(indexCount))
}

// Dispatch implements gpustate.NativeContext.
func (r *Recorder) Dispatch(x, y, z uint32) {
	r.record(OpDispatch, gpustate.StageCompute, 0, int(x*y*z))
}

// DrawAuto implements gpustate.NativeContext.
func (r *Recorder) DrawAuto() {
	r.record(OpDrawAuto, 0, 0, 0)
}

// DrawInstancedIndirect implements gpustate.NativeContext.
func (r *Recorder) DrawInstancedIndirect(args *gpustate.Buffer, offset uint32) {
	r.recordIndirect(OpDrawInstancedIndirect, 0, args, offset)
}

// DrawIndexedInstancedIndirect implements gpustate.NativeContext.
func (r *Recorder) DrawIndexedInstancedIndirect(args *gpustate.Buffer, offset uint32) {
	r.recordIndirect(OpDrawIndexedInstancedIndirect, 0, args, offset)
}

// DispatchIndirect implements gpustate.NativeContext.
func (r *Recorder) DispatchIndirect(args *gpustate.Buffer, offset uint32) {
	r.recordIndirect(OpDispatchIndirect, gpustate.StageCompute, args, offset)
}

func (r *Recorder) recordIndirect(op Op, stage gpustate.Stage, args *gpustate.Buffer, offset uint32) {
	r.calls = append(r.calls, Call{Op: op, Stage: stage, Start: int(offset), Args: args})
}
