package gpustate

import "github.com/gogpu/gputypes"

// ResourceFactory creates native resources, views and samplers. Creation is
// outside the binding cache proper; the factory only has to hand back
// objects whose Release frees the native allocation.
type ResourceFactory interface {
	CreateBuffer(desc BufferDesc) (*Buffer, error)
	CreateTexture(desc TextureDesc) (*Texture, error)
	CreateShaderResourceView(tex *Texture, desc ViewDesc) (*ShaderResourceView, error)
	CreateRenderTargetView(tex *Texture, desc ViewDesc) (*RenderTargetView, error)
	CreateDepthStencilView(tex *Texture, desc ViewDesc) (*DepthStencilView, error)
	CreateSampler(desc gputypes.SamplerDescriptor) (*Sampler, error)
}

// trackingFactory records every object it creates in an Arena.
type trackingFactory struct {
	ResourceFactory
	arena *Arena
}

// TrackResources wraps f so that everything it creates is tracked by arena
// and released by arena.ReleaseAll.
func TrackResources(f ResourceFactory, arena *Arena) ResourceFactory {
	return &trackingFactory{ResourceFactory: f, arena: arena}
}

func track[T Releaser](a *Arena, v T, err error) (T, error) {
	if err == nil {
		a.Track(v)
	}
	return v, err
}

func (f *trackingFactory) CreateBuffer(desc BufferDesc) (*Buffer, error) {
	b, err := f.ResourceFactory.CreateBuffer(desc)
	return track(f.arena, b, err)
}

func (f *trackingFactory) CreateTexture(desc TextureDesc) (*Texture, error) {
	t, err := f.ResourceFactory.CreateTexture(desc)
	return track(f.arena, t, err)
}

func (f *trackingFactory) CreateShaderResourceView(tex *Texture, desc ViewDesc) (*ShaderResourceView, error) {
	v, err := f.ResourceFactory.CreateShaderResourceView(tex, desc)
	return track(f.arena, v, err)
}

func (f *trackingFactory) CreateRenderTargetView(tex *Texture, desc ViewDesc) (*RenderTargetView, error) {
	v, err := f.ResourceFactory.CreateRenderTargetView(tex, desc)
	return track(f.arena, v, err)
}

func (f *trackingFactory) CreateDepthStencilView(tex *Texture, desc ViewDesc) (*DepthStencilView, error) {
	v, err := f.ResourceFactory.CreateDepthStencilView(tex, desc)
	return track(f.arena, v, err)
}

func (f *trackingFactory) CreateSampler(desc gputypes.SamplerDescriptor) (*Sampler, error) {
	s, err := f.ResourceFactory.CreateSampler(desc)
	return track(f.arena, s, err)
}
