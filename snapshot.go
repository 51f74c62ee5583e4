package gpustate

import "github.com/gogpu/gputypes"

// Snapshot is the binding state last applied to a native context. Only the
// Evaluator mutates it; everything else reads it through the accessors.
type Snapshot struct {
	pipeline    PipelineState
	blendFactor gputypes.Color
	sampleMask  uint32
	stencilRef  uint32

	resources *ResourceState

	targets [MaxRenderTargets]*RenderTargetView
	depth   *DepthStencilView

	viewports     [MaxViewports]Viewport
	viewportCount int
	scissors      [MaxScissorRects]Rect
	scissorCount  int
}

// NewSnapshot returns a snapshot in the reset state.
func NewSnapshot() *Snapshot {
	s := &Snapshot{resources: NewResourceState()}
	s.reset()
	return s
}

func (s *Snapshot) reset() {
	s.pipeline = PipelineState{}
	s.blendFactor = DefaultBlendFactor
	s.sampleMask = DefaultSampleMask
	s.stencilRef = 0
	s.resources.reset()
	s.targets = [MaxRenderTargets]*RenderTargetView{}
	s.depth = nil
	s.viewports = [MaxViewports]Viewport{}
	s.viewportCount = 0
	s.scissors = [MaxScissorRects]Rect{}
	s.scissorCount = 0
}

// Pipeline returns a copy of the applied pipeline state.
func (s *Snapshot) Pipeline() PipelineState {
	return s.pipeline
}

// BlendFactor returns the applied blend factor.
func (s *Snapshot) BlendFactor() gputypes.Color {
	return s.blendFactor
}

// SampleMask returns the applied sample mask.
func (s *Snapshot) SampleMask() uint32 {
	return s.sampleMask
}

// StencilRef returns the applied stencil reference.
func (s *Snapshot) StencilRef() uint32 {
	return s.stencilRef
}

// Resources returns the applied resource bindings. The result must be
// treated as read-only.
func (s *Snapshot) Resources() *ResourceState {
	return s.resources
}

// RenderTargets returns the bound targets up to the last non-nil slot.
func (s *Snapshot) RenderTargets() []*RenderTargetView {
	return s.targets[:s.targetCount()]
}

func (s *Snapshot) targetCount() int {
	for i := MaxRenderTargets - 1; i >= 0; i-- {
		if s.targets[i] != nil {
			return i + 1
		}
	}
	return 0
}

// DepthStencil returns the bound depth-stencil view.
func (s *Snapshot) DepthStencil() *DepthStencilView {
	return s.depth
}

// Viewports returns the applied viewports.
func (s *Snapshot) Viewports() []Viewport {
	return s.viewports[:s.viewportCount]
}

// ScissorRects returns the applied scissor rectangles.
func (s *Snapshot) ScissorRects() []Rect {
	return s.scissors[:s.scissorCount]
}
