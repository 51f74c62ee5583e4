package gpustate

import (
	"errors"
	"sync"
	"testing"

	"github.com/gogpu/gputypes"
)

func TestStateCacheCanonical(t *testing.T) {
	c := NewStateCache()

	r1 := c.Raster(DefaultRasterState())
	r2 := c.Raster(DefaultRasterState())
	if r1 != r2 {
		t.Error("equal raster states returned different pointers")
	}
	wire := DefaultRasterState()
	wire.Fill = FillWireframe
	if c.Raster(wire) == r1 {
		t.Error("different raster states share a pointer")
	}

	if c.Blend(DefaultBlendState()) != c.Blend(DefaultBlendState()) {
		t.Error("equal blend states returned different pointers")
	}
	if c.DepthStencil(DefaultDepthStencilState()) != c.DepthStencil(DefaultDepthStencilState()) {
		t.Error("equal depth-stencil states returned different pointers")
	}

	hits, misses := c.Stats()
	if hits != 3 || misses != 4 {
		t.Errorf("Stats() = (%d, %d), want (3, 4)", hits, misses)
	}
	if n := c.Size(); n != 4 {
		t.Errorf("Size() = %d, want 4", n)
	}

	// Mutating the argument after the call does not touch the cached copy.
	wire.Cull = gputypes.CullModeNone
	if got := c.Raster(DefaultRasterState()); got.Cull != gputypes.CullModeBack {
		t.Errorf("cached raster Cull = %v, want %v", got.Cull, gputypes.CullModeBack)
	}

	c.Clear()
	if n := c.Size(); n != 0 {
		t.Errorf("Size() after Clear = %d, want 0", n)
	}
	if hits, misses := c.Stats(); hits != 0 || misses != 0 {
		t.Errorf("Stats() after Clear = (%d, %d), want (0, 0)", hits, misses)
	}
}

type samplerFactory struct {
	ResourceFactory
	created int
	err     error
}

func (f *samplerFactory) CreateSampler(desc gputypes.SamplerDescriptor) (*Sampler, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created++
	return NewSampler(desc, nil, nil), nil
}

func TestStateCacheSampler(t *testing.T) {
	f := &samplerFactory{}
	c := NewSamplerCache(f)

	linear := gputypes.LinearSamplerDescriptor()
	nearest := gputypes.DefaultSamplerDescriptor()

	s1, err := c.Sampler(linear)
	if err != nil {
		t.Fatalf("Sampler() error = %v", err)
	}
	s2, _ := c.Sampler(linear)
	s3, _ := c.Sampler(nearest)
	if s1 != s2 {
		t.Error("equal descriptors returned different samplers")
	}
	if s1 == s3 {
		t.Error("different descriptors share a sampler")
	}
	if f.created != 2 {
		t.Errorf("factory created %d samplers, want 2", f.created)
	}

	f.err = errors.New("device lost")
	aniso := linear
	aniso.MaxAnisotropy = 16
	if _, err := c.Sampler(aniso); !errors.Is(err, f.err) {
		t.Errorf("Sampler() error = %v, want %v", err, f.err)
	}
	if n := c.Size(); n != 2 {
		t.Errorf("failed creation was cached: Size() = %d, want 2", n)
	}
}

func TestStateCacheSamplerWithoutFactory(t *testing.T) {
	c := NewStateCache()
	s, err := c.Sampler(gputypes.DefaultSamplerDescriptor())
	if err != nil {
		t.Fatalf("Sampler() error = %v", err)
	}
	if s.Native() != nil {
		t.Error("sampler without a factory should have no native handle")
	}
}

func TestStateCacheConcurrent(t *testing.T) {
	c := NewStateCache()
	const goroutines = 64

	results := make([]*BlendState, goroutines)
	var wg sync.WaitGroup
	for i := range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = c.Blend(DefaultBlendState())
		}()
	}
	wg.Wait()

	for i, r := range results {
		if r != results[0] {
			t.Fatalf("goroutine %d got a different pointer", i)
		}
	}
	if hits, misses := c.Stats(); misses != 1 || hits != goroutines-1 {
		t.Errorf("Stats() = (%d, %d), want (%d, 1)", hits, misses, goroutines-1)
	}
}

func BenchmarkStateCacheHit(b *testing.B) {
	c := NewStateCache()
	s := DefaultBlendState()
	c.Blend(s)
	b.ReportAllocs()
	for b.Loop() {
		c.Blend(s)
	}
}
