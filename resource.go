package gpustate

import (
	"strings"
	"sync/atomic"

	"github.com/gogpu/gputypes"
)

// Handle is an opaque native API object. hal.Buffer, hal.TextureView and
// hal.Sampler satisfy it directly; the D3D11 backend wraps COM pointers.
type Handle interface {
	NativeHandle() uintptr
}

// Releaser is implemented by every object that owns a native allocation.
type Releaser interface {
	Release()
}

// object carries the native handle and the release hook shared by resources,
// views, samplers and shaders.
type object struct {
	native   Handle
	release  func()
	released atomic.Bool
}

// Native returns the backend handle, or nil for objects created without one.
func (o *object) Native() Handle {
	return o.native
}

// NativeHandle returns the raw backend handle value, 0 when there is none.
func (o *object) NativeHandle() uintptr {
	if o.native == nil {
		return 0
	}
	return o.native.NativeHandle()
}

// Release frees the native allocation. Calling it more than once is safe.
func (o *object) Release() {
	if o.released.Swap(true) {
		return
	}
	if o.release != nil {
		o.release()
	}
}

// Released reports whether Release has been called.
func (o *object) Released() bool {
	return o.released.Load()
}

// ResourceKind describes the shape of an allocation.
type ResourceKind uint8

// Resource kinds.
const (
	KindBuffer ResourceKind = iota
	KindTexture1D
	KindTexture2D
	KindTexture3D
)

// String returns the resource kind name.
func (k ResourceKind) String() string {
	switch k {
	case KindBuffer:
		return "buffer"
	case KindTexture1D:
		return "texture1d"
	case KindTexture2D:
		return "texture2d"
	case KindTexture3D:
		return "texture3d"
	default:
		return "unknown"
	}
}

// BindFlags lists the pipeline locations a resource may be bound to.
type BindFlags uint32

// Bind flags.
const (
	BindVertexBuffer BindFlags = 1 << iota
	BindIndexBuffer
	BindConstantBuffer
	BindShaderResource
	BindStreamOutput
	BindRenderTarget
	BindDepthStencil
	BindUnorderedAccess
	BindIndirectArgs
)

// Has reports whether all bits of flag are set.
func (f BindFlags) Has(flag BindFlags) bool {
	return f&flag == flag
}

var bindFlagNames = [...]string{
	"vertex", "index", "constant", "shader-resource",
	"stream-output", "render-target", "depth-stencil", "unordered-access",
	"indirect-args",
}

// String returns the set flags joined with '|'.
func (f BindFlags) String() string {
	if f == 0 {
		return "none"
	}
	var b strings.Builder
	for i, name := range bindFlagNames {
		if f&(1<<i) == 0 {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('|')
		}
		b.WriteString(name)
	}
	return b.String()
}

// BufferBindFlags maps WebGPU buffer usage to bind flags. Stream output has
// no WebGPU equivalent and must be requested separately.
func BufferBindFlags(u gputypes.BufferUsage, streamOutput bool) BindFlags {
	var f BindFlags
	if u.Contains(gputypes.BufferUsageVertex) {
		f |= BindVertexBuffer
	}
	if u.Contains(gputypes.BufferUsageIndex) {
		f |= BindIndexBuffer
	}
	if u.Contains(gputypes.BufferUsageUniform) {
		f |= BindConstantBuffer
	}
	if u.Contains(gputypes.BufferUsageStorage) {
		f |= BindShaderResource | BindUnorderedAccess
	}
	if u.Contains(gputypes.BufferUsageIndirect) {
		f |= BindIndirectArgs
	}
	if streamOutput {
		f |= BindStreamOutput
	}
	return f
}

// TextureBindFlags maps WebGPU texture usage to bind flags. A render
// attachment with a depth or stencil format becomes a depth-stencil target.
func TextureBindFlags(u gputypes.TextureUsage, format gputypes.TextureFormat) BindFlags {
	var f BindFlags
	if u.Contains(gputypes.TextureUsageTextureBinding) {
		f |= BindShaderResource
	}
	if u.Contains(gputypes.TextureUsageStorageBinding) {
		f |= BindUnorderedAccess
	}
	if u.Contains(gputypes.TextureUsageRenderAttachment) {
		if format.IsDepthStencil() {
			f |= BindDepthStencil
		} else {
			f |= BindRenderTarget
		}
	}
	return f
}

// Resource is an underlying GPU allocation. Hazard detection compares
// resources by pointer identity, so every view of the same allocation must
// refer to the same *Resource.
type Resource struct {
	object

	Name string
	Kind ResourceKind
	Bind BindFlags
}

// NewResource wraps a native allocation. release, if non-nil, runs once on
// the first Release call.
func NewResource(name string, kind ResourceKind, bind BindFlags, native Handle, release func()) *Resource {
	return &Resource{
		object: object{native: native, release: release},
		Name:   name,
		Kind:   kind,
		Bind:   bind,
	}
}

// BufferDesc describes a buffer allocation.
type BufferDesc struct {
	Label        string
	Size         uint64
	Usage        gputypes.BufferUsage
	StreamOutput bool
}

// Buffer is a linear allocation.
type Buffer struct {
	*Resource

	Size  uint64
	Usage gputypes.BufferUsage
}

// NewBuffer wraps a native buffer.
func NewBuffer(desc BufferDesc, native Handle, release func()) *Buffer {
	return &Buffer{
		Resource: NewResource(desc.Label, KindBuffer, BufferBindFlags(desc.Usage, desc.StreamOutput), native, release),
		Size:     desc.Size,
		Usage:    desc.Usage,
	}
}

// Multisample describes per-pixel sampling of a texture.
type Multisample struct {
	Count   uint32
	Quality uint32
}

// NoMultisample is single-sample rendering.
var NoMultisample = Multisample{Count: 1}

// TextureDesc describes a texture allocation.
type TextureDesc struct {
	Label       string
	Dimension   gputypes.TextureDimension
	Size        gputypes.Extent3D
	Format      gputypes.TextureFormat
	MipLevels   uint32
	Multisample Multisample
	Usage       gputypes.TextureUsage
}

// Texture is an image allocation.
type Texture struct {
	*Resource

	Dimension   gputypes.TextureDimension
	Size        gputypes.Extent3D
	Format      gputypes.TextureFormat
	MipLevels   uint32
	Multisample Multisample
	Usage       gputypes.TextureUsage
}

// NewTexture wraps a native texture. Zero mip and sample counts are
// normalized to 1 and an undefined dimension is treated as 2D.
func NewTexture(desc TextureDesc, native Handle, release func()) *Texture {
	if desc.Dimension == gputypes.TextureDimensionUndefined {
		desc.Dimension = gputypes.TextureDimension2D
	}
	if desc.MipLevels == 0 {
		desc.MipLevels = 1
	}
	if desc.Multisample.Count == 0 {
		desc.Multisample.Count = 1
	}
	if desc.Size.DepthOrArrayLayers == 0 {
		desc.Size.DepthOrArrayLayers = 1
	}

	kind := KindTexture2D
	switch desc.Dimension {
	case gputypes.TextureDimension1D:
		kind = KindTexture1D
	case gputypes.TextureDimension3D:
		kind = KindTexture3D
	}

	return &Texture{
		Resource:    NewResource(desc.Label, kind, TextureBindFlags(desc.Usage, desc.Format), native, release),
		Dimension:   desc.Dimension,
		Size:        desc.Size,
		Format:      desc.Format,
		MipLevels:   desc.MipLevels,
		Multisample: desc.Multisample,
		Usage:       desc.Usage,
	}
}

// ArrayCount returns the number of array layers. 3D textures have one.
func (t *Texture) ArrayCount() uint32 {
	if t.Dimension == gputypes.TextureDimension3D {
		return 1
	}
	return t.Size.DepthOrArrayLayers
}

// MipSize returns the width and height of mip level.
func (t *Texture) MipSize(level uint32) (width, height uint32) {
	return max(t.Size.Width>>level, 1), max(t.Size.Height>>level, 1)
}
