// Command gpustatetrace runs a scripted multi-pass frame through a gpustate
// context and prints the native calls it issued.
//
// The frame renders a scene into an offscreen target, samples it while
// compositing to the back buffer, blurs it with a compute shader and then
// renders into it again while it is still bound as a shader input. The
// trace shows the minimal bind sequence and the hazard unbinds.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/gogpu/gpustate"
	"github.com/gogpu/gpustate/backend"
	_ "github.com/gogpu/gpustate/backend/d3d11"
	"github.com/gogpu/gpustate/backend/recorder"
	_ "github.com/gogpu/gpustate/backend/webgpu"
	"github.com/gogpu/gputypes"
)

func main() {
	var (
		name    = flag.String("backend", backend.NameRecorder, "native backend (empty selects the best available)")
		frames  = flag.Int("frames", 2, "number of frames to run")
		verbose = flag.Bool("v", false, "log hazards and capability fallbacks")
		list    = flag.Bool("list", false, "list registered backends and exit")
	)
	flag.Parse()

	if *list {
		for _, n := range backend.Available() {
			fmt.Println(n)
		}
		return
	}

	if *verbose {
		gpustate.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
		gpustate.SetDebug(true)
	}

	ctx, err := backend.Open(*name)
	if err != nil {
		log.Fatalf("open backend: %v", err)
	}
	defer ctx.Close()

	fmt.Printf("backend %q adapter %q caps %v\n", *name, backend.Describe(ctx.Native()).Name, ctx.Capabilities())

	s := newScene()
	rec, _ := ctx.Native().(*recorder.Recorder)
	for i := range *frames {
		ctx.ResetStats()
		if rec != nil {
			rec.ResetCalls()
		}
		if err := s.frame(ctx); err != nil {
			log.Fatalf("frame %d: %v", i, err)
		}
		st := ctx.Stats()
		fmt.Printf("frame %d: %d draws, %d dispatches, %d target changes, %d native calls\n",
			i, st.DrawCalls, st.Dispatches, st.TargetChanges, st.NativeCalls)
		if rec != nil {
			for _, c := range rec.Calls() {
				fmt.Printf("  %v\n", c)
			}
		}
	}
}

// scene holds the objects of the scripted frame.
type scene struct {
	backbuffer *gpustate.RenderTargetView
	depth      *gpustate.DepthStencilView
	offscreen  *gpustate.Texture
	offRTV     *gpustate.RenderTargetView
	offSRV     *gpustate.ShaderResourceView
	offUAV     *gpustate.UnorderedAccessView

	geometry  *gpustate.PipelineState
	composite *gpustate.PipelineState
	blur      *gpustate.Shader

	geometryRes  *gpustate.ResourceState
	compositeRes *gpustate.ResourceState
	blurRes      *gpustate.ResourceState
}

func newScene() *scene {
	const w, h = 1280, 720
	states := gpustate.NewStateCache()

	back := gpustate.NewTexture(gpustate.TextureDesc{
		Label:  "backbuffer",
		Size:   gputypes.Extent3D{Width: w, Height: h},
		Format: gputypes.TextureFormatBGRA8Unorm,
		Usage:  gputypes.TextureUsageRenderAttachment,
	}, nil, nil)
	depth := gpustate.NewTexture(gpustate.TextureDesc{
		Label:  "depth",
		Size:   gputypes.Extent3D{Width: w, Height: h},
		Format: gputypes.TextureFormatDepth24PlusStencil8,
		Usage:  gputypes.TextureUsageRenderAttachment,
	}, nil, nil)
	off := gpustate.NewTexture(gpustate.TextureDesc{
		Label:  "offscreen",
		Size:   gputypes.Extent3D{Width: w, Height: h},
		Format: gputypes.TextureFormatRGBA8Unorm,
		Usage:  gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageTextureBinding | gputypes.TextureUsageStorageBinding,
	}, nil, nil)
	albedo := gpustate.NewTexture(gpustate.TextureDesc{
		Label:  "albedo",
		Size:   gputypes.Extent3D{Width: 512, Height: 512},
		Format: gputypes.TextureFormatRGBA8Unorm,
		Usage:  gputypes.TextureUsageTextureBinding,
	}, nil, nil)
	vertices := gpustate.NewBuffer(gpustate.BufferDesc{Label: "vertices", Size: 4096, Usage: gputypes.BufferUsageVertex}, nil, nil)
	constants := gpustate.NewBuffer(gpustate.BufferDesc{Label: "constants", Size: 256, Usage: gputypes.BufferUsageUniform}, nil, nil)
	linear := gpustate.NewSampler(gputypes.DefaultSamplerDescriptor(), nil, nil)

	raster := states.Raster(gpustate.DefaultRasterState())
	blend := states.Blend(gpustate.DefaultBlendState())
	ds := states.DepthStencil(gpustate.DefaultDepthStencilState())

	s := &scene{
		backbuffer: back.TargetView(),
		depth:      depth.DepthView(),
		offscreen:  off,
		offRTV:     off.TargetView(),
		offSRV:     off.ShaderView(),
		offUAV:     off.UnorderedView(),
		geometry: &gpustate.PipelineState{
			VertexShader: gpustate.NewShader("geometry.vs", gpustate.StageVertex, nil, nil),
			PixelShader:  gpustate.NewShader("geometry.ps", gpustate.StagePixel, nil, nil),
			Raster:       raster,
			Blend:        blend,
			DepthStencil: ds,
			Topology:     gpustate.TopologyTriangleList,
		},
		composite: &gpustate.PipelineState{
			VertexShader: gpustate.NewShader("fullscreen.vs", gpustate.StageVertex, nil, nil),
			PixelShader:  gpustate.NewShader("composite.ps", gpustate.StagePixel, nil, nil),
			Raster:       raster,
			Blend:        blend,
			Topology:     gpustate.TopologyTriangleStrip,
		},
		blur:         gpustate.NewShader("blur.cs", gpustate.StageCompute, nil, nil),
		geometryRes:  gpustate.NewResourceState(),
		compositeRes: gpustate.NewResourceState(),
		blurRes:      gpustate.NewResourceState(),
	}

	s.geometryRes.SetVertexBuffer(0, gpustate.VertexBufferBinding{Buffer: vertices, Stride: 32})
	s.geometryRes.SetConstantBuffer(gpustate.StageVertex, 0, gpustate.ConstantBufferBinding{Buffer: constants})
	s.geometryRes.SetShaderResource(gpustate.StagePixel, 0, albedo.ShaderView())
	s.geometryRes.SetSampler(gpustate.StagePixel, 0, linear)

	s.compositeRes.SetShaderResource(gpustate.StagePixel, 0, s.offSRV)
	s.compositeRes.SetSampler(gpustate.StagePixel, 0, linear)

	s.blurRes.SetUnorderedAccess(gpustate.StageCompute, 0, gpustate.UnorderedAccessBinding{View: s.offUAV, InitialCount: -1})
	return s
}

func (s *scene) frame(ctx *gpustate.Context) error {
	// Scene into the offscreen target.
	if err := ctx.SetRenderTarget(s.offRTV, s.depth); err != nil {
		return err
	}
	for range 3 {
		if err := ctx.Submit(gpustate.NewDrawCall(s.geometry, s.geometryRes, 36)); err != nil {
			return err
		}
	}

	// Blur in place.
	if err := ctx.Dispatch(&gpustate.DispatchCall{Shader: s.blur, Resources: s.blurRes, GroupsX: 80, GroupsY: 45, GroupsZ: 1}); err != nil {
		return err
	}

	// Composite to the back buffer, sampling the offscreen target.
	if err := ctx.SetRenderTarget(s.backbuffer, nil); err != nil {
		return err
	}
	if err := ctx.Submit(gpustate.NewDrawCall(s.composite, s.compositeRes, 4)); err != nil {
		return err
	}

	// Back to the offscreen target; its shader view is unbound first.
	return ctx.SetRenderTarget(s.offRTV, s.depth)
}
