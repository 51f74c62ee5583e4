package gpustate

import "github.com/gogpu/gputypes"

// Capabilities lists the optional entry points a native context provides.
type Capabilities uint32

// Capability flags. Anything not listed here is mandatory.
const (
	// CapGeometryShader allows binding the geometry stage.
	CapGeometryShader Capabilities = 1 << iota
	// CapTessellation allows binding the hull and domain stages.
	CapTessellation
	// CapCompute allows binding the compute stage and dispatching.
	CapCompute
	// CapStreamOut allows binding stream-out targets.
	CapStreamOut
	// CapUnorderedAccess allows binding output merger UAVs.
	CapUnorderedAccess
	// CapStageResources allows per-slot binding of constant buffers,
	// shader resource views and samplers. Backends that bind through
	// descriptor groups leave it unset.
	CapStageResources
	// CapConstantBufferOffsets allows binding a window of a constant
	// buffer. Without it the whole buffer is bound.
	CapConstantBufferOffsets
	// CapMultipleViewports allows more than one viewport and scissor rect.
	CapMultipleViewports
	// CapIndirectDraw allows draws and dispatches that read their
	// arguments from a buffer.
	CapIndirectDraw

	// CapAll is every capability.
	CapAll = CapIndirectDraw<<1 - 1
)

var capabilityNames = [...]string{
	"geometry-shader", "tessellation", "compute", "stream-out", "unordered-access",
	"stage-resources", "constant-buffer-offsets", "multiple-viewports", "indirect-draw",
}

// Has reports whether every bit of c is set.
func (c Capabilities) Has(flag Capabilities) bool {
	return c&flag == flag
}

// String returns the set capabilities joined with '|'.
func (c Capabilities) String() string {
	return flagString(uint32(c), capabilityNames[:])
}

// stageCapability returns the capability required to bind a shader to
// stage. Vertex and pixel shaders are always available.
func stageCapability(stage Stage) Capabilities {
	switch stage {
	case StageGeometry:
		return CapGeometryShader
	case StageHull, StageDomain:
		return CapTessellation
	case StageCompute:
		return CapCompute
	default:
		return 0
	}
}

// NativeContext is the stateful GPU command context that bind calls are
// issued to. Slices passed to the Set methods alias internal tables and are
// only valid for the duration of the call; nil entries unbind their slot.
//
// Implementations translate the calls into their API. They must not retain
// the slices and need not be safe for concurrent use.
type NativeContext interface {
	// Capabilities is queried once, when an Applicator is built.
	Capabilities() Capabilities

	SetTopology(t Topology)
	SetInputLayout(l *InputLayout)
	SetShader(stage Stage, s *Shader)
	SetRasterState(s *RasterState)
	SetBlendState(s *BlendState, factor gputypes.Color, sampleMask uint32)
	SetDepthStencilState(s *DepthStencilState, stencilRef uint32)

	SetConstantBuffers(stage Stage, start int, buffers []ConstantBufferBinding)
	SetShaderResources(stage Stage, start int, views []*ShaderResourceView)
	SetSamplers(stage Stage, start int, samplers []*Sampler)

	SetVertexBuffers(start int, buffers []VertexBufferBinding)
	SetIndexBuffer(b IndexBufferBinding)
	SetStreamOutTargets(targets []StreamOutBinding)

	// SetRenderTargets replaces every output merger color target and the
	// depth buffer. An empty targets slice with a nil depth unbinds all.
	SetRenderTargets(targets []*RenderTargetView, depth *DepthStencilView)
	SetUnorderedAccessViews(start int, uavs []UnorderedAccessBinding)
	SetComputeUnorderedAccessViews(start int, uavs []UnorderedAccessBinding)

	SetViewports(viewports []Viewport)
	SetScissorRects(rects []Rect)

	// ClearState resets the native context to its defaults.
	ClearState()

	Draw(vertexCount, startVertex uint32)
	DrawIndexed(indexCount, startIndex uint32, baseVertex int32)
	DrawInstanced(vertexCount, instanceCount, startVertex, startInstance uint32)
	DrawIndexedInstanced(indexCount, instanceCount, startIndex uint32, baseVertex int32, startInstance uint32)
	Dispatch(x, y, z uint32)

	// DrawAuto draws the vertices the previous stream-out pass wrote to
	// the buffer now bound at vertex slot 0.
	DrawAuto()
	// The indirect variants read their arguments from args at offset.
	DrawInstancedIndirect(args *Buffer, offset uint32)
	DrawIndexedInstancedIndirect(args *Buffer, offset uint32)
	DispatchIndirect(args *Buffer, offset uint32)
}
