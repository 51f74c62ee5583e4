// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !windows

package d3d11

import (
	"github.com/gogpu/gpustate"
	"github.com/gogpu/gpustate/backend"
)

// init registers a stub so the backend is listed on every platform. The
// factory returns nil; backend.Default skips it.
func init() {
	backend.Register(backend.NameD3D11, func() gpustate.NativeContext {
		return nil
	})
}
