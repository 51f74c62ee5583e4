package gpustate

import (
	"github.com/gogpu/gpustate/dirty"
	"github.com/gogpu/gputypes"
)

// ConstantBufferBinding binds a window of a constant buffer. NumConstants
// counts 16-byte constants; zero binds the whole buffer.
type ConstantBufferBinding struct {
	Buffer        *Buffer
	FirstConstant uint32
	NumConstants  uint32
}

// HasOffset reports whether the binding needs offset-capable binding.
func (b ConstantBufferBinding) HasOffset() bool {
	return b.FirstConstant != 0 || b.NumConstants != 0
}

// VertexBufferBinding binds a vertex buffer with a stride and byte offset.
type VertexBufferBinding struct {
	Buffer *Buffer
	Stride uint32
	Offset uint32
}

// IndexBufferBinding binds the index buffer.
type IndexBufferBinding struct {
	Buffer *Buffer
	Format gputypes.IndexFormat
	Offset uint32
}

// StreamOutBinding binds a stream-out target buffer.
type StreamOutBinding struct {
	Buffer *Buffer
	Offset uint32
}

// UnorderedAccessBinding binds a read-write view. InitialCount resets the
// hidden append/consume counter; -1 keeps the current value.
type UnorderedAccessBinding struct {
	View         *UnorderedAccessView
	InitialCount int32
}

// StageResources holds the per-stage binding tables.
type StageResources struct {
	ConstantBuffers *dirty.Array[ConstantBufferBinding]
	ShaderResources *dirty.Array[*ShaderResourceView]
	Samplers        *dirty.Array[*Sampler]
}

func newStageResources() StageResources {
	return StageResources{
		ConstantBuffers: dirty.New[ConstantBufferBinding](MaxConstantBuffers),
		ShaderResources: dirty.New[*ShaderResourceView](MaxShaderResources),
		Samplers:        dirty.New[*Sampler](MaxSamplers),
	}
}

func (s *StageResources) reset() {
	s.ConstantBuffers.Clear()
	s.ShaderResources.Clear()
	s.Samplers.Clear()
}

func (s *StageResources) unbind() {
	unbindAll(s.ConstantBuffers)
	unbindAll(s.ShaderResources)
	unbindAll(s.Samplers)
}

// unbindAll writes the zero value over every slot that may hold a binding,
// leaving the change visible in the dirty range.
func unbindAll[T comparable](a *dirty.Array[T]) {
	var zero T
	start, count := a.Extent()
	for i := start; i < start+count; i++ {
		a.Set(i, zero)
	}
}

// ResourceState is the desired set of resource bindings for a draw or
// dispatch. Callers typically keep one per material or pass and only write
// the slots that change; the tracked dirty ranges let the evaluator skip
// everything else.
type ResourceState struct {
	Stages [StageCount]StageResources

	VertexBuffers *dirty.Array[VertexBufferBinding]
	StreamOut     *dirty.Array[StreamOutBinding]

	// UnorderedAccess is bound at the output merger and visible to every
	// graphics stage. ComputeUnorderedAccess is visible to the compute stage.
	UnorderedAccess        *dirty.Array[UnorderedAccessBinding]
	ComputeUnorderedAccess *dirty.Array[UnorderedAccessBinding]

	InputLayout *InputLayout
	IndexBuffer IndexBufferBinding
}

// NewResourceState returns an empty resource state with every table at its
// fixed capacity.
func NewResourceState() *ResourceState {
	rs := &ResourceState{
		VertexBuffers:          dirty.New[VertexBufferBinding](MaxVertexBuffers),
		StreamOut:              dirty.New[StreamOutBinding](MaxStreamOutTargets),
		UnorderedAccess:        dirty.New[UnorderedAccessBinding](MaxUnorderedAccessViews),
		ComputeUnorderedAccess: dirty.New[UnorderedAccessBinding](MaxUnorderedAccessViews),
	}
	for i := range rs.Stages {
		rs.Stages[i] = newStageResources()
	}
	return rs
}

// Stage returns the binding tables of stage.
func (rs *ResourceState) Stage(stage Stage) *StageResources {
	return &rs.Stages[stage]
}

// SetConstantBuffer binds b to slot of stage.
func (rs *ResourceState) SetConstantBuffer(stage Stage, slot int, b ConstantBufferBinding) {
	rs.Stages[stage].ConstantBuffers.Set(slot, b)
}

// SetShaderResource binds v to slot of stage.
func (rs *ResourceState) SetShaderResource(stage Stage, slot int, v *ShaderResourceView) {
	rs.Stages[stage].ShaderResources.Set(slot, v)
}

// SetSampler binds s to slot of stage.
func (rs *ResourceState) SetSampler(stage Stage, slot int, s *Sampler) {
	rs.Stages[stage].Samplers.Set(slot, s)
}

// SetVertexBuffer binds b to slot.
func (rs *ResourceState) SetVertexBuffer(slot int, b VertexBufferBinding) {
	rs.VertexBuffers.Set(slot, b)
}

// SetStreamOut binds b to slot.
func (rs *ResourceState) SetStreamOut(slot int, b StreamOutBinding) {
	rs.StreamOut.Set(slot, b)
}

// SetUnorderedAccess binds b to slot of the graphics read-write table, or
// of the compute table when stage is StageCompute.
func (rs *ResourceState) SetUnorderedAccess(stage Stage, slot int, b UnorderedAccessBinding) {
	if stage == StageCompute {
		rs.ComputeUnorderedAccess.Set(slot, b)
		return
	}
	rs.UnorderedAccess.Set(slot, b)
}

// Clear unbinds everything. The unbinds are tracked like any other write,
// so the next evaluation of this state releases the previous bindings.
func (rs *ResourceState) Clear() {
	for i := range rs.Stages {
		rs.Stages[i].unbind()
	}
	unbindAll(rs.VertexBuffers)
	unbindAll(rs.StreamOut)
	unbindAll(rs.UnorderedAccess)
	unbindAll(rs.ComputeUnorderedAccess)
	rs.InputLayout = nil
	rs.IndexBuffer = IndexBufferBinding{}
}

// reset zeroes every table and forgets all tracking.
func (rs *ResourceState) reset() {
	for i := range rs.Stages {
		rs.Stages[i].reset()
	}
	rs.VertexBuffers.Clear()
	rs.StreamOut.Clear()
	rs.UnorderedAccess.Clear()
	rs.ComputeUnorderedAccess.Clear()
	rs.InputLayout = nil
	rs.IndexBuffer = IndexBufferBinding{}
}

// Viewport is a rasterizer viewport in render target pixels.
type Viewport struct {
	X, Y          float32
	Width, Height float32
	MinDepth      float32
	MaxDepth      float32
}

// Rect is a scissor rectangle, right and bottom exclusive.
type Rect struct {
	Left, Top     int32
	Right, Bottom int32
}
