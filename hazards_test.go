package gpustate

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/gogpu/gputypes"
)

func streamOutBuffer(label string) *Buffer {
	return NewBuffer(BufferDesc{Label: label, Size: 4096, Usage: gputypes.BufferUsageVertex, StreamOutput: true}, nil, nil)
}

func TestHazardVertexBufferStreamOut(t *testing.T) {
	e := NewEvaluator(nil)
	pch := evaluatePipeline(e, testPipeline(StageVertex, StageGeometry))
	so := streamOutBuffer("particles")
	other := streamOutBuffer("static")

	rs := NewResourceState()
	rs.SetVertexBuffer(0, VertexBufferBinding{Buffer: so, Stride: 16})
	rs.SetVertexBuffer(1, VertexBufferBinding{Buffer: other, Stride: 16})
	rs.SetStreamOut(0, StreamOutBinding{Buffer: so})

	r := e.EvaluateResources(rs, pch)
	if b := rs.VertexBuffers.At(0).Buffer; b != nil {
		t.Errorf("vertex slot 0 = %v, want unbound", b.Name)
	}
	if b := rs.VertexBuffers.At(1).Buffer; b != other {
		t.Error("vertex slot 1 should keep the unrelated buffer")
	}
	if got := r.VertexBuffers; got != (Range{Start: 1, Count: 1}) {
		t.Errorf("VertexBuffers = %v, want [1,+1)", got)
	}
	if !r.Changes.Has(ResourceStreamOut) {
		t.Errorf("Changes = %v, want stream-out", r.Changes)
	}
	if got := e.Snapshot().Resources().StreamOut.At(0).Buffer; got != so {
		t.Error("stream-out target not in the snapshot")
	}
}

func TestHazardVertexBufferBecomesStreamOut(t *testing.T) {
	e := NewEvaluator(nil)
	pch := evaluatePipeline(e, testPipeline(StageVertex, StageGeometry))
	buf := streamOutBuffer("feedback")

	rs := NewResourceState()
	rs.SetVertexBuffer(0, VertexBufferBinding{Buffer: buf, Stride: 16})
	e.EvaluateResources(rs, pch)

	// Only the stream-out table changes, but the bound vertex buffer must
	// still be released.
	rs.SetStreamOut(0, StreamOutBinding{Buffer: buf})
	r := e.EvaluateResources(rs, 0)
	if got := r.VertexBuffers; got != (Range{Start: 0, Count: 1}) {
		t.Errorf("VertexBuffers = %v, want [0,+1)", got)
	}
	if b := e.Snapshot().Resources().VertexBuffers.At(0).Buffer; b != nil {
		t.Error("snapshot still binds the stream-out target as a vertex buffer")
	}
}

func TestHazardIndexBufferStreamOut(t *testing.T) {
	e := NewEvaluator(nil)
	pch := evaluatePipeline(e, testPipeline(StageVertex))
	so := NewBuffer(BufferDesc{Label: "indices", Usage: gputypes.BufferUsageIndex, StreamOutput: true}, nil, nil)

	rs := NewResourceState()
	rs.IndexBuffer = IndexBufferBinding{Buffer: so, Format: gputypes.IndexFormatUint32}
	rs.SetStreamOut(1, StreamOutBinding{Buffer: so})

	r := e.EvaluateResources(rs, pch)
	if rs.IndexBuffer.Buffer != nil {
		t.Error("index buffer aliasing a stream-out target was not unbound")
	}
	if r.Changes.Has(ResourceIndexBuffer) {
		t.Errorf("Changes = %v, want no index buffer change", r.Changes)
	}
}

func TestHazardUnflaggedStreamOut(t *testing.T) {
	e := NewEvaluator(nil)
	pch := evaluatePipeline(e, testPipeline(StageVertex, StageGeometry))
	buf := NewBuffer(BufferDesc{Label: "plain", Size: 1024, Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageIndex}, nil, nil)
	if buf.Bind.Has(BindStreamOutput) {
		t.Fatal("buffer unexpectedly carries the stream-out flag")
	}

	rs := NewResourceState()
	rs.SetVertexBuffer(0, VertexBufferBinding{Buffer: buf, Stride: 16})
	rs.IndexBuffer = IndexBufferBinding{Buffer: buf, Format: gputypes.IndexFormatUint16}
	rs.SetStreamOut(0, StreamOutBinding{Buffer: buf})
	e.EvaluateResources(rs, pch)

	snap := e.Snapshot().Resources()
	if got := snap.StreamOut.At(0).Buffer; got != buf {
		t.Fatal("stream-out target not in the snapshot")
	}
	if got := snap.VertexBuffers.At(0).Buffer; got != nil {
		t.Errorf("vertex slot 0 = %v, want unbound", got.Name)
	}
	if got := snap.IndexBuffer.Buffer; got != nil {
		t.Errorf("index buffer = %v, want unbound", got.Name)
	}
}

func TestHazardShaderResourceOutputs(t *testing.T) {
	color := testTexture("color", gputypes.TextureUsageRenderAttachment|gputypes.TextureUsageTextureBinding, gputypes.TextureFormatRGBA8Unorm)
	depth := testTexture("depth", gputypes.TextureUsageRenderAttachment|gputypes.TextureUsageTextureBinding, gputypes.TextureFormatDepth32Float)
	storage := NewBuffer(BufferDesc{Label: "storage", Usage: gputypes.BufferUsageStorage}, nil, nil)
	so := streamOutBuffer("so")

	tests := []struct {
		name   string
		allow  bool
		setup  func(e *Evaluator, rs *ResourceState)
		input  *ShaderResourceView
		remove bool
	}{
		{
			name:   "render target",
			setup:  func(e *Evaluator, _ *ResourceState) { e.EvaluateTargets([]*RenderTargetView{color.TargetView()}, nil) },
			input:  color.ShaderView(),
			remove: true,
		},
		{
			name:   "render target read allowed",
			allow:  true,
			setup:  func(e *Evaluator, _ *ResourceState) { e.EvaluateTargets([]*RenderTargetView{color.TargetView()}, nil) },
			input:  color.ShaderView(),
			remove: false,
		},
		{
			name:   "depth buffer",
			allow:  true,
			setup:  func(e *Evaluator, _ *ResourceState) { e.EvaluateTargets(nil, depth.DepthView()) },
			input:  depth.ShaderView(),
			remove: true,
		},
		{
			name: "unordered access",
			setup: func(_ *Evaluator, rs *ResourceState) {
				rs.SetUnorderedAccess(StagePixel, 1, UnorderedAccessBinding{View: storage.UnorderedView(), InitialCount: -1})
			},
			input:  storage.ShaderView(),
			remove: true,
		},
		{
			name: "stream-out",
			setup: func(_ *Evaluator, rs *ResourceState) {
				rs.SetStreamOut(0, StreamOutBinding{Buffer: so})
			},
			input:  so.ShaderView(),
			remove: true,
		},
		{
			name: "unrelated",
			setup: func(e *Evaluator, _ *ResourceState) {
				e.EvaluateTargets([]*RenderTargetView{color.TargetView()}, depth.DepthView())
			},
			input:  storage.ShaderView(),
			remove: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEvaluator(nil)
			e.SetRenderTargetReads(tt.allow)
			pch := evaluatePipeline(e, testPipeline(StageVertex, StagePixel))
			rs := NewResourceState()
			tt.setup(e, rs)
			rs.SetShaderResource(StagePixel, 7, tt.input)

			e.EvaluateResources(rs, pch)
			got := e.Snapshot().Resources().Stage(StagePixel).ShaderResources.At(7)
			if tt.remove && got != nil {
				t.Error("shader resource aliasing an output is still bound")
			}
			if !tt.remove && got != tt.input {
				t.Errorf("shader resource = %p, want %p", got, tt.input)
			}
		})
	}
}

func TestHazardTargetsUnbindSnapshot(t *testing.T) {
	e := NewEvaluator(nil)
	pch := evaluatePipeline(e, testPipeline(StageVertex, StagePixel))
	color := testTexture("color", gputypes.TextureUsageRenderAttachment|gputypes.TextureUsageTextureBinding, gputypes.TextureFormatRGBA8Unorm)
	other := testTexture("other", gputypes.TextureUsageTextureBinding, gputypes.TextureFormatRGBA8Unorm)

	rs := NewResourceState()
	rs.SetShaderResource(StageVertex, 0, color.ShaderView())
	rs.SetShaderResource(StagePixel, 2, color.ShaderView())
	rs.SetShaderResource(StagePixel, 3, other.ShaderView())
	rs.SetShaderResource(StagePixel, 5, color.ShaderView())
	e.EvaluateResources(rs, pch)

	c := e.EvaluateTargets([]*RenderTargetView{color.TargetView()}, nil)
	if got := c.Unbound[StagePixel]; got != (Range{Start: 2, Count: 4}) {
		t.Errorf("Unbound[pixel] = %v, want [2,+4)", got)
	}
	if got := c.Unbound[StageVertex]; got != (Range{Start: 0, Count: 1}) {
		t.Errorf("Unbound[vertex] = %v, want [0,+1)", got)
	}
	srvs := e.Snapshot().Resources().Stage(StagePixel).ShaderResources
	if srvs.At(2) != nil || srvs.At(5) != nil || srvs.At(3) == nil {
		t.Errorf("snapshot slots 2, 3, 5 = %p, %p, %p", srvs.At(2), srvs.At(3), srvs.At(5))
	}

	// The caller's state still asks for the views; the next evaluation
	// drops them from it without producing a change.
	r := e.EvaluateResources(rs, 0)
	if r.Changes != 0 {
		t.Errorf("Changes = %v, want none", r.Changes)
	}
	if rs.Stage(StagePixel).ShaderResources.At(5) != nil {
		t.Error("resource state still reads the render target")
	}
}

func TestHazardComputeScope(t *testing.T) {
	e := NewEvaluator(nil)
	tex := testTexture("image", gputypes.TextureUsageStorageBinding|gputypes.TextureUsageTextureBinding, gputypes.TextureFormatRGBA8Unorm)

	rs := NewResourceState()
	rs.SetShaderResource(StageCompute, 0, tex.ShaderView())
	rs.SetShaderResource(StagePixel, 0, tex.ShaderView())
	rs.SetUnorderedAccess(StageCompute, 0, UnorderedAccessBinding{View: tex.UnorderedView(), InitialCount: -1})

	pch := e.EvaluateCompute(NewShader("cs", StageCompute, nil, nil))
	r := e.evaluateResources(rs, pch, scopeCompute)
	if rs.Stage(StageCompute).ShaderResources.At(0) != nil {
		t.Error("compute input aliasing a compute UAV was not unbound")
	}
	if rs.Stage(StagePixel).ShaderResources.At(0) == nil {
		t.Error("dispatch touched a graphics stage")
	}
	if !r.Changes.Has(ResourceComputeUnorderedAccess) {
		t.Errorf("Changes = %v, want cs-uav", r.Changes)
	}
	if r.Changes.Has(ShaderResourceChange(StageCompute)) {
		t.Errorf("Changes = %v, want no compute shader resource change", r.Changes)
	}
}

func TestHazardDebugLog(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() {
		SetLogger(orig)
		SetDebug(false)
	})
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	SetDebug(true)

	e := NewEvaluator(nil)
	pch := evaluatePipeline(e, testPipeline(StageVertex, StagePixel))
	color := testTexture("gbuffer", gputypes.TextureUsageRenderAttachment|gputypes.TextureUsageTextureBinding, gputypes.TextureFormatRGBA8Unorm)
	e.EvaluateTargets([]*RenderTargetView{color.TargetView()}, nil)
	rs := NewResourceState()
	rs.SetShaderResource(StagePixel, 4, color.ShaderView())
	e.EvaluateResources(rs, pch)

	out := buf.String()
	for _, want := range []string{"hazard resolved", "resource=gbuffer", "output=render-target", "stage=pixel", "slot=4"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}
