package gpustate_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/gogpu/gpustate"
	"github.com/gogpu/gpustate/backend/recorder"
	"github.com/gogpu/gputypes"
)

const targetUsage = gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageTextureBinding

func colorTexture(label string, w, h uint32) *gpustate.Texture {
	return gpustate.NewTexture(gpustate.TextureDesc{
		Label:  label,
		Size:   gputypes.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		Format: gputypes.TextureFormatRGBA8Unorm,
		Usage:  targetUsage,
	}, nil, nil)
}

func msaaTexture(label string, w, h, samples uint32) *gpustate.Texture {
	return gpustate.NewTexture(gpustate.TextureDesc{
		Label:       label,
		Size:        gputypes.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		Format:      gputypes.TextureFormatRGBA8Unorm,
		Multisample: gpustate.Multisample{Count: samples},
		Usage:       gputypes.TextureUsageRenderAttachment,
	}, nil, nil)
}

func depthTexture(label string, w, h uint32) *gpustate.Texture {
	return gpustate.NewTexture(gpustate.TextureDesc{
		Label:  label,
		Size:   gputypes.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		Format: gputypes.TextureFormatDepth32Float,
		Usage:  targetUsage,
	}, nil, nil)
}

// newContext returns a context over a fresh recorder.
func newContext(t *testing.T, opts ...gpustate.ContextOption) (*gpustate.Context, *recorder.Recorder) {
	t.Helper()
	return newContextWith(t, recorder.New(), opts...)
}

func newContextWith(t *testing.T, rec *recorder.Recorder, opts ...gpustate.ContextOption) (*gpustate.Context, *recorder.Recorder) {
	t.Helper()
	ctx, err := gpustate.NewContext(rec, opts...)
	if err != nil {
		t.Fatalf("NewContext() error = %v", err)
	}
	t.Cleanup(func() { _ = ctx.Close() })
	return ctx, rec
}

// basicScene is one textured triangle: vertex and pixel shader, a vertex
// buffer, a constant buffer, one texture and one sampler.
type basicScene struct {
	pipeline *gpustate.PipelineState
	rs       *gpustate.ResourceState
	albedo   *gpustate.Texture
	vb       *gpustate.Buffer
	cb       *gpustate.Buffer
	sampler  *gpustate.Sampler
}

func newBasicScene() *basicScene {
	cache := gpustate.NewStateCache()
	s := &basicScene{
		pipeline: &gpustate.PipelineState{
			VertexShader: gpustate.NewShader("vs_main", gpustate.StageVertex, nil, nil),
			PixelShader:  gpustate.NewShader("ps_main", gpustate.StagePixel, nil, nil),
			Raster:       cache.Raster(gpustate.DefaultRasterState()),
			Blend:        cache.Blend(gpustate.DefaultBlendState()),
			DepthStencil: cache.DepthStencil(gpustate.DefaultDepthStencilState()),
			Topology:     gpustate.TopologyTriangleList,
		},
		rs:     gpustate.NewResourceState(),
		albedo: colorTexture("albedo", 256, 256),
		vb: gpustate.NewBuffer(gpustate.BufferDesc{
			Label: "vertices", Size: 3 * 32, Usage: gputypes.BufferUsageVertex,
		}, nil, nil),
		cb: gpustate.NewBuffer(gpustate.BufferDesc{
			Label: "camera", Size: 256, Usage: gputypes.BufferUsageUniform,
		}, nil, nil),
	}
	s.sampler, _ = cache.Sampler(gputypes.DefaultSamplerDescriptor())

	s.rs.SetVertexBuffer(0, gpustate.VertexBufferBinding{Buffer: s.vb, Stride: 32})
	s.rs.SetConstantBuffer(gpustate.StageVertex, 0, gpustate.ConstantBufferBinding{Buffer: s.cb})
	s.rs.SetShaderResource(gpustate.StagePixel, 0, s.albedo.ShaderView())
	s.rs.SetSampler(gpustate.StagePixel, 0, s.sampler)
	return s
}

func (s *basicScene) draw() *gpustate.DrawCall {
	return gpustate.NewDrawCall(s.pipeline, s.rs, 3)
}

// captureLogs routes gpustate logging at level into the returned buffer
// for the duration of the test.
func captureLogs(t *testing.T, level slog.Level) *bytes.Buffer {
	t.Helper()
	orig := gpustate.Logger()
	t.Cleanup(func() { gpustate.SetLogger(orig) })

	var buf bytes.Buffer
	gpustate.SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: level})))
	return &buf
}

func findCall(calls []recorder.Call, want recorder.Call) int {
	for i, c := range calls {
		if c == want {
			return i
		}
	}
	return -1
}
