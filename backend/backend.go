package backend

import (
	"errors"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gpustate"
)

// Backend name constants.
const (
	// NameRecorder is the name of the call-recording backend. It executes
	// nothing and is always available.
	NameRecorder = "recorder"
	// NameWebGPU is the name of the backend that drives a gogpu/wgpu HAL
	// render pass.
	NameWebGPU = "webgpu"
	// NameD3D11 is the name of the Direct3D 11 immediate context backend.
	// It is only available on Windows.
	NameD3D11 = "d3d11"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not
	// registered or cannot run on this platform.
	ErrBackendNotAvailable = errors.New("backend: not available")
)

// Factory creates a native context. A factory registered for a platform
// that cannot run the backend returns nil.
type Factory func() gpustate.NativeContext

// Describer is implemented by native contexts that can describe the adapter
// they run on.
type Describer interface {
	AdapterInfo() gpucontext.AdapterInfo
}

// Describe returns the adapter info of native, or an unknown adapter if it
// does not implement Describer.
func Describe(native gpustate.NativeContext) gpucontext.AdapterInfo {
	if d, ok := native.(Describer); ok {
		return d.AdapterInfo()
	}
	return gpucontext.AdapterInfo{Name: "unknown", Type: gpucontext.AdapterTypeUnknown}
}
