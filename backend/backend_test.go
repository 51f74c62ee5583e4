package backend

import (
	"errors"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gpustate"
	"github.com/gogpu/gpustate/backend/recorder"
)

func TestRecorderRegistered(t *testing.T) {
	if !IsRegistered(NameRecorder) {
		t.Fatalf("IsRegistered(%q) = false, want true", NameRecorder)
	}
	if _, ok := Get(NameRecorder).(*recorder.Recorder); !ok {
		t.Errorf("Get(%q) = %T, want *recorder.Recorder", NameRecorder, Get(NameRecorder))
	}
}

func TestGetUnknown(t *testing.T) {
	if got := Get("metal"); got != nil {
		t.Errorf("Get(metal) = %T, want nil", got)
	}
}

func TestDefaultSkipsUnavailable(t *testing.T) {
	// A platform stub registers a factory that returns nil.
	Register(NameD3D11, func() gpustate.NativeContext { return nil })
	t.Cleanup(func() { Unregister(NameD3D11) })

	if !IsRegistered(NameD3D11) {
		t.Fatal("stub backend not registered")
	}
	if got := DefaultName(); got != NameRecorder {
		t.Errorf("DefaultName() = %q, want %q", got, NameRecorder)
	}
	if Default() == nil {
		t.Error("Default() = nil, want recorder")
	}
}

func TestDefaultPriority(t *testing.T) {
	want := recorder.New(recorder.WithCapabilities(gpustate.CapStageResources))
	Register(NameWebGPU, func() gpustate.NativeContext { return want })
	t.Cleanup(func() { Unregister(NameWebGPU) })

	if got := DefaultName(); got != NameWebGPU {
		t.Errorf("DefaultName() = %q, want %q", got, NameWebGPU)
	}
	if got := Default(); got != want {
		t.Errorf("Default() = %p, want %p", got, want)
	}
}

func TestAvailableSorted(t *testing.T) {
	Register("zz-test", func() gpustate.NativeContext { return nil })
	Register("aa-test", func() gpustate.NativeContext { return nil })
	t.Cleanup(func() {
		Unregister("zz-test")
		Unregister("aa-test")
	})

	names := Available()
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Fatalf("Available() = %v, not sorted", names)
		}
	}
	if len(names) < 3 {
		t.Errorf("Available() = %v, want at least 3 names", names)
	}
}

func TestOpen(t *testing.T) {
	tests := []struct {
		name    string
		backend string
		wantErr error
	}{
		{"default", "", nil},
		{"by name", NameRecorder, nil},
		{"unknown", "metal", ErrBackendNotAvailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, err := Open(tt.backend)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Open(%q) error = %v, want %v", tt.backend, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			defer ctx.Close()
			if ctx.Capabilities() != gpustate.CapAll {
				t.Errorf("Capabilities() = %v, want %v", ctx.Capabilities(), gpustate.CapAll)
			}
		})
	}
}

type plainNative struct {
	gpustate.NativeContext
}

func TestDescribe(t *testing.T) {
	if got := Describe(recorder.New()).Type; got != gpucontext.AdapterTypeSoftware {
		t.Errorf("Describe(recorder).Type = %v, want Software", got)
	}
	if got := Describe(plainNative{}).Type; got != gpucontext.AdapterTypeUnknown {
		t.Errorf("Describe(plain).Type = %v, want Unknown", got)
	}
}
