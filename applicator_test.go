package gpustate_test

import (
	"log/slog"
	"slices"
	"strings"
	"testing"

	"github.com/gogpu/gpustate"
	"github.com/gogpu/gpustate/backend/recorder"
	"github.com/gogpu/gputypes"
)

func TestApplicatorSkipsMissingStage(t *testing.T) {
	logs := captureLogs(t, slog.LevelWarn)
	ctx, rec := newContextWith(t, recorder.New(recorder.WithCapabilities(gpustate.CapAll&^gpustate.CapGeometryShader)))

	s := newBasicScene()
	s.rs.SetShaderResource(gpustate.StageGeometry, 0, s.albedo.ShaderView())
	for _, name := range []string{"gs_a", "gs_b"} {
		p := *s.pipeline
		p.GeometryShader = gpustate.NewShader(name, gpustate.StageGeometry, nil, nil)
		if err := ctx.Submit(gpustate.NewDrawCall(&p, s.rs, 3)); err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
	}

	for _, c := range rec.Calls() {
		if c.Stage == gpustate.StageGeometry {
			t.Errorf("unexpected geometry call %v", c)
		}
	}
	if n := rec.Count(recorder.OpDraw); n != 2 {
		t.Errorf("Count(Draw) = %d, want 2", n)
	}
	if n := strings.Count(logs.String(), "capability=geometry-shader"); n != 1 {
		t.Errorf("geometry warning logged %d times, want 1:\n%s", n, logs)
	}
}

func TestApplicatorWithoutStageResources(t *testing.T) {
	logs := captureLogs(t, slog.LevelWarn)
	ctx, rec := newContextWith(t, recorder.New(recorder.WithCapabilities(gpustate.CapAll&^gpustate.CapStageResources)))

	s := newBasicScene()
	if err := ctx.Submit(s.draw()); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	for _, op := range []recorder.Op{recorder.OpSetConstantBuffers, recorder.OpSetShaderResources, recorder.OpSetSamplers} {
		if n := rec.Count(op); n != 0 {
			t.Errorf("Count(%v) = %d, want 0", op, n)
		}
	}
	if n := rec.Count(recorder.OpSetVertexBuffers); n != 1 {
		t.Errorf("Count(SetVertexBuffers) = %d, want 1", n)
	}
	if n := strings.Count(logs.String(), "level=WARN"); n != 1 {
		t.Errorf("logged %d warnings, want 1:\n%s", n, logs)
	}
	if !strings.Contains(logs.String(), "capability=stage-resources") {
		t.Errorf("warning does not name the capability:\n%s", logs)
	}
}

func TestApplicatorConstantBufferOffsets(t *testing.T) {
	cb := gpustate.NewBuffer(gpustate.BufferDesc{Label: "frame", Size: 4096, Usage: gputypes.BufferUsageUniform}, nil, nil)
	window := gpustate.ConstantBufferBinding{Buffer: cb, FirstConstant: 16, NumConstants: 16}

	tests := []struct {
		name     string
		caps     gpustate.Capabilities
		want     gpustate.ConstantBufferBinding
		warnings int
	}{
		{"supported", gpustate.CapAll, window, 0},
		{"whole buffer", gpustate.CapAll &^ gpustate.CapConstantBufferOffsets, gpustate.ConstantBufferBinding{Buffer: cb}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs := captureLogs(t, slog.LevelWarn)
			ctx, rec := newContextWith(t, recorder.New(recorder.WithCapabilities(tt.caps)))

			s := newBasicScene()
			s.rs.SetConstantBuffer(gpustate.StageVertex, 1, window)
			if err := ctx.Submit(s.draw()); err != nil {
				t.Fatalf("Submit() error = %v", err)
			}
			s.rs.SetConstantBuffer(gpustate.StagePixel, 0, window)
			if err := ctx.Submit(s.draw()); err != nil {
				t.Fatalf("Submit() error = %v", err)
			}

			b := rec.Bound().ConstantBuffers
			if got := b[gpustate.StageVertex][1]; got != tt.want {
				t.Errorf("vertex slot 1 = %+v, want %+v", got, tt.want)
			}
			if got := b[gpustate.StagePixel][0]; got != tt.want {
				t.Errorf("pixel slot 0 = %+v, want %+v", got, tt.want)
			}
			if got := b[gpustate.StageVertex][0]; got.Buffer != s.cb {
				t.Error("whole-buffer binding in the same call was lost")
			}
			if n := strings.Count(logs.String(), "level=WARN"); n != tt.warnings {
				t.Errorf("logged %d warnings, want %d:\n%s", n, tt.warnings, logs)
			}
		})
	}
}

func TestApplicatorSingleViewport(t *testing.T) {
	ctx, rec := newContextWith(t, recorder.New(recorder.WithCapabilities(gpustate.CapAll&^gpustate.CapMultipleViewports)))

	a := gpustate.Viewport{Width: 64, Height: 64, MaxDepth: 1}
	b := gpustate.Viewport{X: 64, Width: 64, Height: 64, MaxDepth: 1}
	if err := ctx.SetViewports(a, b); err != nil {
		t.Fatalf("SetViewports() error = %v", err)
	}
	if got := rec.Bound().Viewports; !slices.Equal(got, []gpustate.Viewport{a}) {
		t.Errorf("bound viewports = %v, want [%v]", got, a)
	}
	if err := ctx.SetScissorRects(gpustate.Rect{Right: 1, Bottom: 1}, gpustate.Rect{Right: 2, Bottom: 2}); err != nil {
		t.Fatalf("SetScissorRects() error = %v", err)
	}
	if n := len(rec.Bound().ScissorRects); n != 1 {
		t.Errorf("len(bound scissors) = %d, want 1", n)
	}
}

func TestApplicatorPipelineConstants(t *testing.T) {
	tests := []struct {
		name string
		edit func(*gpustate.DrawCall)
		want []string
	}{
		{"none", func(*gpustate.DrawCall) {}, nil},
		{"blend factor", func(d *gpustate.DrawCall) { d.BlendFactor = gputypes.ColorBlack }, []string{"SetBlendState()"}},
		{"sample mask", func(d *gpustate.DrawCall) { d.SampleMask = 0x1 }, []string{"SetBlendState()"}},
		{"stencil ref", func(d *gpustate.DrawCall) { d.StencilRef = 3 }, []string{"SetDepthStencilState()"}},
		{"topology", func(d *gpustate.DrawCall) {
			p := *d.Pipeline
			p.Topology = gpustate.TopologyLineList
			d.Pipeline = &p
		}, []string{"SetTopology()"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, rec := newContext(t)
			s := newBasicScene()
			if err := ctx.Submit(s.draw()); err != nil {
				t.Fatalf("Submit() error = %v", err)
			}
			rec.ResetCalls()

			d := s.draw()
			tt.edit(d)
			if err := ctx.Submit(d); err != nil {
				t.Fatalf("Submit() error = %v", err)
			}
			want := append(tt.want, "Draw(3)")
			if got := callStrings(rec.Calls()); !slices.Equal(got, want) {
				t.Errorf("calls = %v, want %v", got, want)
			}
		})
	}
}

func TestApplicatorDirect(t *testing.T) {
	rec := recorder.New()
	a := gpustate.NewApplicator(rec)
	if a.Native() != rec {
		t.Error("Native() did not return the wrapped context")
	}

	// A flagged category with an empty range unbinds the whole table.
	rs := gpustate.NewResourceState()
	a.BindResourceState(&gpustate.ResourceRanges{Changes: gpustate.ResourceVertexBuffers | gpustate.SamplerChange(gpustate.StagePixel)}, rs)
	want := []string{
		"SetVertexBuffers(0, 32)",
		"SetSamplers(pixel, 0, 16)",
	}
	if got := callStrings(rec.Calls()); !slices.Equal(got, want) {
		t.Errorf("calls = %v, want %v", got, want)
	}

	a.ApplyPipelineState(nil, 0, gpustate.DefaultBlendFactor, gpustate.DefaultSampleMask, 0)
	a.BindResourceState(&gpustate.ResourceRanges{}, rs)
	a.ClearState()
	if got := a.Calls(); got != 3 {
		t.Errorf("Calls() = %d, want 3", got)
	}
}
