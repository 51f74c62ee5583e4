package gpustate

// ContextOption configures a Context during creation.
// Use functional options to customize Context behavior.
//
// Example:
//
//	// Default validation, no resource factory
//	ctx, err := gpustate.NewContext(native)
//
//	// Resource creation through the WebGPU HAL, tracked by the context arena
//	ctx, err := gpustate.NewContext(native, gpustate.WithResourceFactory(factory))
type ContextOption func(*contextOptions)

// contextOptions holds optional configuration for Context creation.
type contextOptions struct {
	validator        Validator
	factory          ResourceFactory
	renderTargetRead bool
	targetsChanged   func()
	viewportsChanged func()
}

// defaultOptions returns the default context options.
func defaultOptions() contextOptions {
	return contextOptions{
		validator: TargetValidator{},
	}
}

// WithValidator replaces the output configuration validator. Passing nil
// restores the default TargetValidator.
func WithValidator(v Validator) ContextOption {
	return func(o *contextOptions) {
		if v == nil {
			v = TargetValidator{}
		}
		o.validator = v
	}
}

// WithResourceFactory sets the factory returned by Context.Resources. Every
// object it creates is tracked by the context arena and released on Close.
func WithResourceFactory(f ResourceFactory) ContextOption {
	return func(o *contextOptions) {
		o.factory = f
	}
}

// WithRenderTargetReads lets a shader resource view stay bound while the
// same resource is a render target. Reads then return undefined data on most
// hardware, which some feedback effects accept. Depth buffers, UAVs and
// stream-out targets are always unbound from the inputs.
func WithRenderTargetReads(allow bool) ContextOption {
	return func(o *contextOptions) {
		o.renderTargetRead = allow
	}
}

// WithTargetsChanged registers fn to run after the bound render targets or
// depth buffer change.
func WithTargetsChanged(fn func()) ContextOption {
	return func(o *contextOptions) {
		o.targetsChanged = fn
	}
}

// WithViewportsChanged registers fn to run after the bound viewports change.
func WithViewportsChanged(fn func()) ContextOption {
	return func(o *contextOptions) {
		o.viewportsChanged = fn
	}
}
