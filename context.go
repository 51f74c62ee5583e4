package gpustate

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// Context caches the binding state of one native command context. It owns
// the snapshot of what is bound, the evaluator that diffs against it, the
// applicator that issues native calls and the arena for objects created on
// its behalf.
//
// A Context is bound to the goroutine that records commands; it is not safe
// for concurrent use.
type Context struct {
	native    NativeContext
	eval      *Evaluator
	apply     *Applicator
	validator Validator
	arena     *Arena
	factory   ResourceFactory

	explicitViewport bool
	targetsChanged   func()
	viewportsChanged func()

	stats    Stats
	callBase uint64
	closed   bool
}

// NewContext creates a Context over native. The native context is assumed
// to be in its default state.
func NewContext(native NativeContext, opts ...ContextOption) (*Context, error) {
	if native == nil {
		return nil, ErrNilNativeContext
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	c := &Context{
		native:           native,
		eval:             NewEvaluator(nil),
		apply:            NewApplicator(native),
		validator:        o.validator,
		arena:            NewArena(),
		targetsChanged:   o.targetsChanged,
		viewportsChanged: o.viewportsChanged,
	}
	c.eval.SetRenderTargetReads(o.renderTargetRead)
	if o.factory != nil {
		c.factory = TrackResources(o.factory, c.arena)
	}
	return c, nil
}

// Native returns the wrapped native context.
func (c *Context) Native() NativeContext {
	return c.native
}

// Snapshot returns the state currently bound. It must be treated as
// read-only.
func (c *Context) Snapshot() *Snapshot {
	return c.eval.snap
}

// Capabilities returns the native capabilities read at construction.
func (c *Context) Capabilities() Capabilities {
	return c.apply.Capabilities()
}

// Arena returns the arena that owns objects created through Resources.
func (c *Context) Arena() *Arena {
	return c.arena
}

// Resources returns the tracked resource factory, or nil if the context was
// created without WithResourceFactory.
func (c *Context) Resources() ResourceFactory {
	return c.factory
}

// SetRenderTarget binds a single color target and a depth buffer.
func (c *Context) SetRenderTarget(target *RenderTargetView, depth *DepthStencilView) error {
	if target == nil {
		return c.SetRenderTargets(nil, depth)
	}
	targets := [1]*RenderTargetView{target}
	return c.SetRenderTargets(targets[:], depth)
}

// SetRenderTargets binds color targets and a depth buffer. The
// configuration is validated first; on error nothing is changed.
//
// Binding no color targets resets the whole context: every binding is
// cleared, including the depth buffer. Otherwise, unless SetViewports was
// called, the viewport is reset to cover the first target.
func (c *Context) SetRenderTargets(targets []*RenderTargetView, depth *DepthStencilView) error {
	if c.closed {
		return ErrContextClosed
	}
	if len(targets) > MaxRenderTargets {
		return fmt.Errorf("%w: %d > %d", ErrTooManyTargets, len(targets), MaxRenderTargets)
	}
	if err := c.validator.ValidateTargets(targets, depth); err != nil {
		return err
	}

	if firstTarget(targets) == nil {
		hadTargets := len(c.eval.snap.RenderTargets()) > 0 || c.eval.snap.depth != nil
		c.ClearState()
		if hadTargets && c.targetsChanged != nil {
			c.targetsChanged()
		}
		return nil
	}

	c.bindTargets(targets, depth)
	return nil
}

// SetDepthStencil replaces the depth buffer and keeps the color targets.
func (c *Context) SetDepthStencil(depth *DepthStencilView) error {
	if c.closed {
		return ErrContextClosed
	}
	targets := c.eval.snap.RenderTargets()
	if err := c.validator.ValidateTargets(targets, depth); err != nil {
		return err
	}
	c.bindTargets(targets, depth)
	return nil
}

func firstTarget(targets []*RenderTargetView) *RenderTargetView {
	for _, v := range targets {
		if v != nil {
			return v
		}
	}
	return nil
}

func (c *Context) bindTargets(targets []*RenderTargetView, depth *DepthStencilView) {
	changes := c.eval.EvaluateTargets(targets, depth)
	if !changes.Changed() {
		return
	}
	snap := c.eval.snap
	c.apply.BindRenderTargets(snap.RenderTargets(), snap.depth, changes, snap.resources)
	if !changes.RenderTargets && !changes.DepthStencil {
		return
	}
	c.stats.TargetChanges++

	if first := firstTarget(snap.RenderTargets()); first != nil && !c.explicitViewport {
		w, h := first.Size()
		vp := [1]Viewport{{Width: float32(w), Height: float32(h), MaxDepth: 1}}
		c.setViewports(vp[:])
	}
	if c.targetsChanged != nil {
		c.targetsChanged()
	}
}

// RenderTargets returns the bound color targets.
func (c *Context) RenderTargets() []*RenderTargetView {
	return c.eval.snap.RenderTargets()
}

// DepthStencil returns the bound depth buffer.
func (c *Context) DepthStencil() *DepthStencilView {
	return c.eval.snap.depth
}

// SetViewports binds viewports. Once called with at least one viewport,
// binding render targets no longer replaces the viewport; calling it with
// none restores that behavior.
func (c *Context) SetViewports(viewports ...Viewport) error {
	if c.closed {
		return ErrContextClosed
	}
	if len(viewports) > MaxViewports {
		return fmt.Errorf("%w: %d viewports", ErrTooManyViewports, len(viewports))
	}
	c.explicitViewport = len(viewports) > 0
	c.setViewports(viewports)
	return nil
}

func (c *Context) setViewports(viewports []Viewport) {
	if !c.eval.EvaluateViewports(viewports) {
		return
	}
	c.apply.BindViewports(c.eval.snap.Viewports())
	if c.viewportsChanged != nil {
		c.viewportsChanged()
	}
}

// Viewports returns the bound viewports.
func (c *Context) Viewports() []Viewport {
	return c.eval.snap.Viewports()
}

// SetScissorRects binds scissor rectangles.
func (c *Context) SetScissorRects(rects ...Rect) error {
	if c.closed {
		return ErrContextClosed
	}
	if len(rects) > MaxScissorRects {
		return fmt.Errorf("%w: %d scissor rectangles", ErrTooManyViewports, len(rects))
	}
	if c.eval.EvaluateScissors(rects) {
		c.apply.BindScissorRects(c.eval.snap.ScissorRects())
	}
	return nil
}

// Submit binds the state of call and draws.
func (c *Context) Submit(call *DrawCall) error {
	if c.closed {
		return ErrContextClosed
	}
	if call == nil {
		return ErrNilDrawCall
	}

	c.bindDraw(call.Pipeline, call.Resources, call.BlendFactor, call.SampleMask, call.StencilRef)

	switch {
	case call.IndexCount > 0 && call.InstanceCount > 0:
		c.native.DrawIndexedInstanced(call.IndexCount, call.InstanceCount, call.StartIndex, call.BaseVertex, call.StartInstance)
	case call.IndexCount > 0:
		c.native.DrawIndexed(call.IndexCount, call.StartIndex, call.BaseVertex)
	case call.InstanceCount > 0:
		c.native.DrawInstanced(call.VertexCount, call.InstanceCount, call.StartVertex, call.StartInstance)
	default:
		c.native.Draw(call.VertexCount, call.StartVertex)
	}
	c.stats.DrawCalls++
	return nil
}

// Dispatch binds the compute state of call and dispatches it. Draw state is
// left alone. Without compute support the call is skipped.
func (c *Context) Dispatch(call *DispatchCall) error {
	if c.closed {
		return ErrContextClosed
	}
	if call == nil {
		return ErrNilDrawCall
	}
	if !c.apply.supports(CapCompute, "Dispatch") {
		return nil
	}

	c.bindCompute(call.Shader, call.Resources)
	c.native.Dispatch(call.GroupsX, call.GroupsY, call.GroupsZ)
	c.stats.Dispatches++
	return nil
}

// SubmitIndirect binds the state of call and draws with the arguments
// stored in call.Args. Without indirect draw support the call is skipped.
func (c *Context) SubmitIndirect(call *IndirectDrawCall) error {
	if c.closed {
		return ErrContextClosed
	}
	if call == nil {
		return ErrNilDrawCall
	}
	if err := checkIndirectArgs(call.Args, call.ArgsOffset); err != nil {
		return err
	}
	if !c.apply.supports(CapIndirectDraw, "SubmitIndirect") {
		return nil
	}

	c.bindDraw(call.Pipeline, call.Resources, call.BlendFactor, call.SampleMask, call.StencilRef)
	if call.Indexed {
		c.native.DrawIndexedInstancedIndirect(call.Args, call.ArgsOffset)
	} else {
		c.native.DrawInstancedIndirect(call.Args, call.ArgsOffset)
	}
	c.stats.DrawCalls++
	return nil
}

// SubmitStreamOut binds the state of call and draws the vertices a previous
// stream-out pass wrote into the buffer at vertex slot 0. The vertex and
// index counts of call are ignored. Without stream-out support the call is
// skipped.
func (c *Context) SubmitStreamOut(call *DrawCall) error {
	if c.closed {
		return ErrContextClosed
	}
	if call == nil {
		return ErrNilDrawCall
	}
	if call.Pipeline == nil || call.Pipeline.VertexShader == nil {
		return ErrNoVertexShader
	}
	if !c.apply.supports(CapStreamOut, "SubmitStreamOut") {
		return nil
	}

	c.bindDraw(call.Pipeline, call.Resources, call.BlendFactor, call.SampleMask, call.StencilRef)
	c.native.DrawAuto()
	c.stats.DrawCalls++
	return nil
}

// DispatchIndirect binds the compute state of call and dispatches with the
// group counts stored in args at offset. The group counts of call are
// ignored.
func (c *Context) DispatchIndirect(call *DispatchCall, args *Buffer, offset uint32) error {
	if c.closed {
		return ErrContextClosed
	}
	if call == nil {
		return ErrNilDrawCall
	}
	if err := checkIndirectArgs(args, offset); err != nil {
		return err
	}
	if !c.apply.supports(CapCompute|CapIndirectDraw, "DispatchIndirect") {
		return nil
	}

	c.bindCompute(call.Shader, call.Resources)
	c.native.DispatchIndirect(args, offset)
	c.stats.Dispatches++
	return nil
}

func (c *Context) bindDraw(p *PipelineState, rs *ResourceState, blendFactor gputypes.Color, sampleMask, stencilRef uint32) {
	snap := c.eval.snap
	pch := c.eval.evaluatePipeline(p, blendFactor, sampleMask, stencilRef, scopeGraphics)
	c.apply.ApplyPipelineState(&snap.pipeline, pch, snap.blendFactor, snap.sampleMask, snap.stencilRef)
	ranges := c.eval.evaluateResources(rs, pch, scopeGraphics)
	c.apply.BindResourceState(ranges, snap.resources)
}

func (c *Context) bindCompute(shader *Shader, rs *ResourceState) {
	snap := c.eval.snap
	pch := c.eval.EvaluateCompute(shader)
	c.apply.ApplyPipelineState(&snap.pipeline, pch, snap.blendFactor, snap.sampleMask, snap.stencilRef)
	ranges := c.eval.evaluateResources(rs, pch, scopeCompute)
	c.apply.BindResourceState(ranges, snap.resources)
}

func checkIndirectArgs(args *Buffer, offset uint32) error {
	switch {
	case args == nil:
		return fmt.Errorf("%w: no buffer", ErrIndirectArgs)
	case !args.Bind.Has(BindIndirectArgs):
		return fmt.Errorf("%w: buffer %q lacks the indirect usage", ErrIndirectArgs, args.Name)
	case offset%4 != 0:
		return fmt.Errorf("%w: offset %d is not 4-byte aligned", ErrIndirectArgs, offset)
	}
	return nil
}

// ClearState resets the native context and forgets everything bound. Use it
// at frame boundaries that hand the context to foreign code, or after the
// device was lost.
func (c *Context) ClearState() {
	c.apply.ClearState()
	c.eval.Reset()
	c.explicitViewport = false
}

// Stats returns work counters since creation or the last ResetStats.
func (c *Context) Stats() Stats {
	s := c.stats
	s.NativeCalls = c.apply.Calls() - c.callBase
	return s
}

// ResetStats zeroes the counters.
func (c *Context) ResetStats() {
	c.stats = Stats{}
	c.callBase = c.apply.Calls()
}

// Close releases every object in the arena. The context cannot be used
// afterwards. Close is idempotent.
func (c *Context) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	n := c.arena.ReleaseAll()
	Logger().Debug("gpustate: context closed", "released", n)
	return nil
}
