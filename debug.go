package gpustate

import "sync/atomic"

var debugEnabled atomic.Bool

// SetDebug toggles the process-wide debug mode. In debug mode the validator
// runs additional format and duplicate checks, and every hazard resolution
// is logged at debug level.
func SetDebug(on bool) {
	debugEnabled.Store(on)
}

// Debug reports whether debug mode is on.
func Debug() bool {
	return debugEnabled.Load()
}
