package gpustate

import (
	"errors"
	"fmt"
)

// Configuration error kinds. A *ConfigError matches its kind with
// errors.Is, and every kind matches ErrConfiguration.
var (
	// ErrConfiguration is the parent of every configuration error.
	ErrConfiguration = errors.New("gpustate: invalid configuration")

	// ErrTargetMismatch is returned when render targets or the depth buffer
	// differ in width, height or dimension.
	ErrTargetMismatch = errors.New("gpustate: render target size mismatch")

	// ErrMultisampleMismatch is returned when bound targets use different
	// multisample settings.
	ErrMultisampleMismatch = errors.New("gpustate: multisample mismatch")

	// ErrArrayCountMismatch is returned when bound targets have different
	// array layer counts.
	ErrArrayCountMismatch = errors.New("gpustate: array count mismatch")

	// ErrResourceTypeMismatch is returned when bound targets are of
	// different resource kinds.
	ErrResourceTypeMismatch = errors.New("gpustate: resource type mismatch")

	// ErrUnsupportedFormat is returned when a view format cannot be bound
	// where it was requested.
	ErrUnsupportedFormat = errors.New("gpustate: unsupported format")

	// ErrTargetAlreadyBound is returned when the same view occupies two
	// render target slots.
	ErrTargetAlreadyBound = errors.New("gpustate: render target bound twice")
)

// Usage errors.
var (
	// ErrNilNativeContext is returned by NewContext without a native context.
	ErrNilNativeContext = errors.New("gpustate: native context is nil")

	// ErrNilDrawCall is returned when Submit or Dispatch receives nil.
	ErrNilDrawCall = errors.New("gpustate: draw call is nil")

	// ErrTooManyTargets is returned when more than MaxRenderTargets views
	// are bound at once.
	ErrTooManyTargets = errors.New("gpustate: too many render targets")

	// ErrTooManyViewports is returned when more than MaxViewports viewports
	// or MaxScissorRects rectangles are set at once.
	ErrTooManyViewports = errors.New("gpustate: too many viewports")

	// ErrContextClosed is returned by operations on a closed Context.
	ErrContextClosed = errors.New("gpustate: context is closed")

	// ErrIndirectArgs is returned for an indirect draw or dispatch whose
	// argument buffer is missing, lacks the indirect usage or is read at an
	// offset that is not a multiple of 4.
	ErrIndirectArgs = errors.New("gpustate: invalid indirect argument buffer")

	// ErrNoVertexShader is returned by SubmitStreamOut without a vertex
	// shader.
	ErrNoVertexShader = errors.New("gpustate: no vertex shader bound")
)

// ConfigError describes an invalid output configuration detected before
// any state was changed.
type ConfigError struct {
	// Op is the operation that failed, for example "SetRenderTargets".
	Op string
	// Kind is one of the ErrXxx configuration sentinels.
	Kind error
	// Resource names the offending resource, if known.
	Resource string
	// Detail is a human-readable explanation.
	Detail string
}

func (e *ConfigError) Error() string {
	msg := e.Kind.Error()
	if e.Op != "" {
		msg = fmt.Sprintf("%s: %s", e.Op, msg)
	}
	if e.Resource != "" {
		msg = fmt.Sprintf("%s (resource %q)", msg, e.Resource)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Unwrap returns the kind and ErrConfiguration.
func (e *ConfigError) Unwrap() []error {
	return []error{e.Kind, ErrConfiguration}
}

func configErr(op string, kind error, res *Resource, format string, args ...any) *ConfigError {
	e := &ConfigError{Op: op, Kind: kind, Detail: fmt.Sprintf(format, args...)}
	if res != nil {
		e.Resource = res.Name
	}
	return e
}
