package backend

import (
	"fmt"
	"sort"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gpustate"
)

// Priority order for backend selection (first available wins).
// D3D11 > WebGPU > Recorder (the recorder draws nothing).
var backendPriority = []string{NameD3D11, NameWebGPU, NameRecorder}

var backends = gpucontext.NewRegistry[gpustate.NativeContext](
	gpucontext.WithPriority(backendPriority...),
)

// Register registers a backend factory with the given name.
// This is typically called from init() functions in backend packages.
// If a backend with the same name is already registered, it will be replaced.
func Register(name string, factory Factory) {
	backends.Register(name, factory)
}

// Unregister removes a backend from the registry.
// This is useful for testing.
func Unregister(name string) {
	backends.Unregister(name)
}

// Available returns the sorted names of registered backends.
func Available() []string {
	names := backends.Available()
	sort.Strings(names)
	return names
}

// IsRegistered checks if a backend with the given name is registered.
func IsRegistered(name string) bool {
	return backends.Has(name)
}

// Get returns a native context created by the named backend.
// Returns nil if the backend is not registered or cannot run here.
func Get(name string) gpustate.NativeContext {
	return backends.Get(name)
}

// Default returns a native context from the best available backend based on
// priority. Returns nil if no registered backend can run.
func Default() gpustate.NativeContext {
	_, native := best()
	return native
}

// DefaultName returns the name of the backend Default would use, or an
// empty string.
func DefaultName() string {
	name, _ := best()
	return name
}

func best() (string, gpustate.NativeContext) {
	for _, name := range backendPriority {
		if native := backends.Get(name); native != nil {
			return name, native
		}
	}
	// Fallback: any other registered backend
	for _, name := range Available() {
		if native := backends.Get(name); native != nil {
			return name, native
		}
	}
	return "", nil
}

// Open creates a gpustate.Context over the named backend, or over the
// default backend if name is empty.
func Open(name string, opts ...gpustate.ContextOption) (*gpustate.Context, error) {
	var native gpustate.NativeContext
	if name == "" {
		name, native = best()
	} else {
		native = Get(name)
	}
	if native == nil {
		if name == "" {
			return nil, ErrBackendNotAvailable
		}
		return nil, fmt.Errorf("%w: %s", ErrBackendNotAvailable, name)
	}
	gpustate.Logger().Debug("backend: opened", "backend", name, "adapter", Describe(native).Name)
	return gpustate.NewContext(native, opts...)
}
