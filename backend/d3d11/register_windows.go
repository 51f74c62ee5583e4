// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build windows

package d3d11

import (
	"github.com/gogpu/gpustate"
	"github.com/gogpu/gpustate/backend"
)

// init registers the Direct3D 11 backend on package import.
func init() {
	backend.Register(backend.NameD3D11, func() gpustate.NativeContext {
		c, err := Open()
		if err != nil {
			gpustate.Logger().Debug("d3d11: device creation failed", "error", err)
			return nil
		}
		return c
	})
}
