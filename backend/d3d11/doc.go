// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package d3d11 implements gpustate.NativeContext over a Direct3D 11
// immediate context.
//
// D3D11 is the binding model gpustate is shaped after: every table maps to
// one XXSet call with a start slot and a count. Capabilities follow the
// device feature level; constant buffer windows need
// ID3D11DeviceContext1.
//
// The package is only functional on Windows. Elsewhere it registers a
// backend.NameD3D11 factory that returns nil.
package d3d11
