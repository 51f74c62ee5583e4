// Package gpustate caches the binding state of a stateful GPU command
// context and issues only the bind calls needed to reach a desired state.
//
// # Overview
//
// Immediate-mode GPU APIs such as Direct3D 11 keep shaders, state objects,
// constant buffers, shader resource views, samplers, vertex buffers and
// output targets bound between draws. Rebinding everything per draw is
// expensive, and binding a resource as an input while it is still bound as
// an output is an error the driver resolves silently and unpredictably.
//
// gpustate keeps a [Snapshot] of what is bound. For every draw the
// [Evaluator] diffs the desired [PipelineState] and [ResourceState] against
// it, removes input bindings that alias an output, and reports the changed
// slot ranges. The [Applicator] then binds exactly those ranges on a
// [NativeContext].
//
// # Quick Start
//
//	import "github.com/gogpu/gpustate"
//
//	ctx, err := gpustate.NewContext(native)
//	if err != nil {
//	    return err
//	}
//	defer ctx.Close()
//
//	if err := ctx.SetRenderTarget(backbuffer, depth); err != nil {
//	    return err
//	}
//
//	rs := gpustate.NewResourceState()
//	rs.SetShaderResource(gpustate.StagePixel, 0, albedo)
//	rs.SetSampler(gpustate.StagePixel, 0, linear)
//
//	draw := gpustate.NewDrawCall(pipeline, rs, 3)
//	ctx.Submit(draw) // binds everything
//	ctx.Submit(draw) // binds nothing
//
// # Dirty tracking
//
// Binding tables are [dirty.Array] values with a fixed slot count. Writing a
// slot with the value it already holds is free; writing anything else
// widens the table's dirty range. The evaluator consumes the ranges, so a
// ResourceState that is reused across frames and only partially rewritten
// costs only its changes.
//
// # Hazards
//
// Outputs always win. Before a resource state is diffed:
//   - vertex buffers and the index buffer that are stream-out targets are
//     unbound
//   - shader resource views that alias a bound render target, depth buffer,
//     UAV or stream-out target are unbound, per stage
//
// When render targets change, shader resource views that alias the new
// targets are unbound before the targets are bound. [WithRenderTargetReads]
// relaxes the render target rule for intentional feedback effects.
//
// # Backends
//
// Native contexts live in sub-packages: backend/recorder records calls for
// tests and tools, backend/webgpu drives a gogpu/wgpu HAL render pass and
// backend/d3d11 drives a Direct3D 11 immediate context on Windows. Missing
// native features are queried once; binds that need them are skipped with a
// single warning through [Logger].
package gpustate
