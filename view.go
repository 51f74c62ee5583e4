package gpustate

import "github.com/gogpu/gputypes"

// ViewDesc selects the subresources a view covers. Zero counts mean "all
// remaining" and an undefined format inherits the texture format.
type ViewDesc struct {
	Label           string
	Format          gputypes.TextureFormat
	MipSlice        uint32
	FirstArraySlice uint32
	ArrayCount      uint32
}

func (d ViewDesc) resolve(tex *Texture) ViewDesc {
	if d.Format == gputypes.TextureFormatUndefined {
		d.Format = tex.Format
	}
	if d.ArrayCount == 0 {
		d.ArrayCount = tex.ArrayCount() - min(d.FirstArraySlice, tex.ArrayCount())
	}
	return d
}

// ShaderResourceView exposes a resource for reading from a shader stage.
type ShaderResourceView struct {
	object

	resource *Resource
	Format   gputypes.TextureFormat
}

// NewShaderResourceView wraps a native view of res.
func NewShaderResourceView(res *Resource, format gputypes.TextureFormat, native Handle, release func()) *ShaderResourceView {
	return &ShaderResourceView{object: object{native: native, release: release}, resource: res, Format: format}
}

// Resource returns the viewed allocation.
func (v *ShaderResourceView) Resource() *Resource {
	if v == nil {
		return nil
	}
	return v.resource
}

// RenderTargetView exposes one mip level of a texture as a color target.
type RenderTargetView struct {
	object

	Texture *Texture
	ViewDesc
}

// NewRenderTargetView wraps a native color target view of tex.
func NewRenderTargetView(tex *Texture, desc ViewDesc, native Handle, release func()) *RenderTargetView {
	return &RenderTargetView{object: object{native: native, release: release}, Texture: tex, ViewDesc: desc.resolve(tex)}
}

// Resource returns the viewed allocation.
func (v *RenderTargetView) Resource() *Resource {
	if v == nil {
		return nil
	}
	return v.Texture.Resource
}

// Size returns the width and height of the viewed mip level.
func (v *RenderTargetView) Size() (width, height uint32) {
	return v.Texture.MipSize(v.MipSlice)
}

// DepthStencilView exposes one mip level of a depth texture.
type DepthStencilView struct {
	object

	Texture *Texture
	ViewDesc
	ReadOnly bool
}

// NewDepthStencilView wraps a native depth-stencil view of tex.
func NewDepthStencilView(tex *Texture, desc ViewDesc, native Handle, release func()) *DepthStencilView {
	return &DepthStencilView{object: object{native: native, release: release}, Texture: tex, ViewDesc: desc.resolve(tex)}
}

// Resource returns the viewed allocation.
func (v *DepthStencilView) Resource() *Resource {
	if v == nil {
		return nil
	}
	return v.Texture.Resource
}

// Size returns the width and height of the viewed mip level.
func (v *DepthStencilView) Size() (width, height uint32) {
	return v.Texture.MipSize(v.MipSlice)
}

// UnorderedAccessView exposes a resource for random-access writes.
type UnorderedAccessView struct {
	object

	resource *Resource
	Format   gputypes.TextureFormat
}

// NewUnorderedAccessView wraps a native read-write view of res.
func NewUnorderedAccessView(res *Resource, format gputypes.TextureFormat, native Handle, release func()) *UnorderedAccessView {
	return &UnorderedAccessView{object: object{native: native, release: release}, resource: res, Format: format}
}

// Resource returns the viewed allocation.
func (v *UnorderedAccessView) Resource() *Resource {
	if v == nil {
		return nil
	}
	return v.resource
}

// Sampler is an immutable sampler state object.
type Sampler struct {
	object

	Desc gputypes.SamplerDescriptor
}

// NewSampler wraps a native sampler.
func NewSampler(desc gputypes.SamplerDescriptor, native Handle, release func()) *Sampler {
	return &Sampler{object: object{native: native, release: release}, Desc: desc}
}

// Shader is a compiled program for one stage.
type Shader struct {
	object

	Name  string
	Stage Stage
}

// NewShader wraps a native shader.
func NewShader(name string, stage Stage, native Handle, release func()) *Shader {
	return &Shader{object: object{native: native, release: release}, Name: name, Stage: stage}
}

// InputLayout maps vertex buffer contents to vertex shader inputs.
type InputLayout struct {
	object

	Name string
}

// NewInputLayout wraps a native input layout.
func NewInputLayout(name string, native Handle, release func()) *InputLayout {
	return &InputLayout{object: object{native: native, release: release}, Name: name}
}

// ShaderView returns a shader resource view of the whole texture with no
// native handle. Useful for backends that bind by resource.
func (t *Texture) ShaderView() *ShaderResourceView {
	return NewShaderResourceView(t.Resource, t.Format, nil, nil)
}

// TargetView returns a render target view of mip 0 with no native handle.
func (t *Texture) TargetView() *RenderTargetView {
	return NewRenderTargetView(t, ViewDesc{}, nil, nil)
}

// DepthView returns a depth-stencil view of mip 0 with no native handle.
func (t *Texture) DepthView() *DepthStencilView {
	return NewDepthStencilView(t, ViewDesc{}, nil, nil)
}

// ShaderView returns a shader resource view of the buffer with no native
// handle.
func (b *Buffer) ShaderView() *ShaderResourceView {
	return NewShaderResourceView(b.Resource, gputypes.TextureFormatUndefined, nil, nil)
}

// UnorderedView returns a read-write view of the buffer with no native
// handle.
func (b *Buffer) UnorderedView() *UnorderedAccessView {
	return NewUnorderedAccessView(b.Resource, gputypes.TextureFormatUndefined, nil, nil)
}

// UnorderedView returns a read-write view of the texture with no native
// handle.
func (t *Texture) UnorderedView() *UnorderedAccessView {
	return NewUnorderedAccessView(t.Resource, t.Format, nil, nil)
}
