// Package backend selects the native context a gpustate.Context drives.
//
// # Backend Registration
//
// Backends are registered via init() functions and selected at runtime.
// The recorder backend is registered on import of this package; the others
// register when their package is imported:
//
//	import (
//		"github.com/gogpu/gpustate/backend"
//		_ "github.com/gogpu/gpustate/backend/d3d11"
//		_ "github.com/gogpu/gpustate/backend/webgpu"
//	)
//
// A backend package that cannot run on the current platform registers a
// factory that returns nil, so IsRegistered reports it while Get and
// Default skip it.
//
// # Backend Selection
//
// Use Default to get the best available native context, Get to request a
// backend by name, or Open to get a ready gpustate.Context:
//
//	ctx, err := backend.Open("") // best available
//	ctx, err := backend.Open(backend.NameRecorder)
//
// # Available Backends
//
//   - "d3d11": Direct3D 11 immediate context (Windows)
//   - "webgpu": gogpu/wgpu HAL render pass, headless through the noop HAL
//     unless an encoder is supplied
//   - "recorder": records calls and executes nothing (always available)
package backend
