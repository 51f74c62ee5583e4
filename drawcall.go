package gpustate

import "github.com/gogpu/gputypes"

// DrawCall is one draw with the complete state it needs. The context diffs
// the state against what is bound and only rebinds the differences.
//
// IndexCount > 0 selects an indexed draw; InstanceCount > 0 selects an
// instanced one.
type DrawCall struct {
	Pipeline  *PipelineState
	Resources *ResourceState

	BlendFactor gputypes.Color
	SampleMask  uint32
	StencilRef  uint32

	VertexCount   uint32
	StartVertex   uint32
	IndexCount    uint32
	StartIndex    uint32
	BaseVertex    int32
	InstanceCount uint32
	StartInstance uint32
}

// NewDrawCall returns a non-indexed draw of vertexCount vertices with the
// default blend factor and sample mask.
func NewDrawCall(pipeline *PipelineState, resources *ResourceState, vertexCount uint32) *DrawCall {
	return &DrawCall{
		Pipeline:    pipeline,
		Resources:   resources,
		BlendFactor: DefaultBlendFactor,
		SampleMask:  DefaultSampleMask,
		VertexCount: vertexCount,
	}
}

// NewIndexedDrawCall returns an indexed draw of indexCount indices with the
// default blend factor and sample mask.
func NewIndexedDrawCall(pipeline *PipelineState, resources *ResourceState, indexCount uint32) *DrawCall {
	return &DrawCall{
		Pipeline:    pipeline,
		Resources:   resources,
		BlendFactor: DefaultBlendFactor,
		SampleMask:  DefaultSampleMask,
		IndexCount:  indexCount,
	}
}

// IndirectDrawCall is an instanced draw whose vertex or index counts are
// read from Args at ArgsOffset, typically written by a compute pass.
type IndirectDrawCall struct {
	Pipeline  *PipelineState
	Resources *ResourceState

	BlendFactor gputypes.Color
	SampleMask  uint32
	StencilRef  uint32

	Args       *Buffer
	ArgsOffset uint32
	// Indexed selects DrawIndexedInstancedIndirect.
	Indexed bool
}

// NewIndirectDrawCall returns an indirect draw reading its arguments from
// the start of args, with the default blend factor and sample mask.
func NewIndirectDrawCall(pipeline *PipelineState, resources *ResourceState, args *Buffer, indexed bool) *IndirectDrawCall {
	return &IndirectDrawCall{
		Pipeline:    pipeline,
		Resources:   resources,
		BlendFactor: DefaultBlendFactor,
		SampleMask:  DefaultSampleMask,
		Args:        args,
		Indexed:     indexed,
	}
}

// DispatchCall is one compute dispatch.
type DispatchCall struct {
	Shader    *Shader
	Resources *ResourceState

	GroupsX, GroupsY, GroupsZ uint32
}

// Stats counts work submitted through a Context.
type Stats struct {
	DrawCalls     uint64
	Dispatches    uint64
	TargetChanges uint64
	NativeCalls   uint64
}
