package backend

import (
	"github.com/gogpu/gpustate"
	"github.com/gogpu/gpustate/backend/recorder"
)

// init registers the recorder backend on package import.
func init() {
	Register(NameRecorder, func() gpustate.NativeContext {
		return recorder.New()
	})
}
