package gpustate

// Validator checks an output configuration before anything is evaluated or
// bound. Implementations return a *ConfigError.
type Validator interface {
	ValidateTargets(targets []*RenderTargetView, depth *DepthStencilView) error
}

// ValidatorFunc adapts a function to the Validator interface.
type ValidatorFunc func(targets []*RenderTargetView, depth *DepthStencilView) error

// ValidateTargets calls f.
func (f ValidatorFunc) ValidateTargets(targets []*RenderTargetView, depth *DepthStencilView) error {
	return f(targets, depth)
}

// TargetValidator is the default Validator. Every bound view must agree with
// the first color target on resource kind, size, array count and
// multisampling. In debug mode it also rejects duplicate views and formats
// that do not fit the slot.
type TargetValidator struct{}

const opSetRenderTargets = "SetRenderTargets"

// ValidateTargets implements Validator.
func (TargetValidator) ValidateTargets(targets []*RenderTargetView, depth *DepthStencilView) error {
	debug := Debug()

	var ref *RenderTargetView
	for i, v := range targets {
		if v == nil {
			continue
		}
		if debug {
			if v.Format.IsDepthStencil() {
				return configErr(opSetRenderTargets, ErrUnsupportedFormat, v.Resource(),
					"slot %d: depth format %v bound as color target", i, v.Format)
			}
			for j := range i {
				if targets[j] == v {
					return configErr(opSetRenderTargets, ErrTargetAlreadyBound, v.Resource(),
						"slots %d and %d", j, i)
				}
			}
		}
		if ref == nil {
			ref = v
			continue
		}
		if err := matchTarget(ref, v, i); err != nil {
			return err
		}
	}

	if depth == nil {
		return nil
	}
	if debug && !depth.Format.IsDepthStencil() {
		return configErr(opSetRenderTargets, ErrUnsupportedFormat, depth.Resource(),
			"format %v bound as depth-stencil", depth.Format)
	}
	if ref == nil {
		return nil
	}
	return matchDepth(ref, depth)
}

func matchTarget(ref, v *RenderTargetView, slot int) error {
	rt, vt := ref.Texture, v.Texture
	if rt.Kind != vt.Kind {
		return configErr(opSetRenderTargets, ErrResourceTypeMismatch, v.Resource(),
			"slot %d is %v, slot 0 is %v", slot, vt.Kind, rt.Kind)
	}
	rw, rh := ref.Size()
	vw, vh := v.Size()
	if rw != vw || rh != vh {
		return configErr(opSetRenderTargets, ErrTargetMismatch, v.Resource(),
			"slot %d is %dx%d, expected %dx%d", slot, vw, vh, rw, rh)
	}
	if ref.ArrayCount != v.ArrayCount {
		return configErr(opSetRenderTargets, ErrArrayCountMismatch, v.Resource(),
			"slot %d has %d layers, expected %d", slot, v.ArrayCount, ref.ArrayCount)
	}
	if rt.Multisample != vt.Multisample {
		return configErr(opSetRenderTargets, ErrMultisampleMismatch, v.Resource(),
			"slot %d uses %+v, expected %+v", slot, vt.Multisample, rt.Multisample)
	}
	return nil
}

func matchDepth(ref *RenderTargetView, d *DepthStencilView) error {
	rt, dt := ref.Texture, d.Texture
	if rt.Kind != dt.Kind {
		return configErr(opSetRenderTargets, ErrResourceTypeMismatch, d.Resource(),
			"depth buffer is %v, render target is %v", dt.Kind, rt.Kind)
	}
	if ref.ArrayCount != d.ArrayCount {
		return configErr(opSetRenderTargets, ErrArrayCountMismatch, d.Resource(),
			"depth buffer has %d layers, render target has %d", d.ArrayCount, ref.ArrayCount)
	}
	if rt.Multisample != dt.Multisample {
		return configErr(opSetRenderTargets, ErrMultisampleMismatch, d.Resource(),
			"depth buffer uses %+v, render target uses %+v", dt.Multisample, rt.Multisample)
	}
	rw, rh := ref.Size()
	dw, dh := d.Size()
	if rw != dw || rh != dh {
		return configErr(opSetRenderTargets, ErrTargetMismatch, d.Resource(),
			"depth buffer is %dx%d, render target is %dx%d", dw, dh, rw, rh)
	}
	return nil
}
