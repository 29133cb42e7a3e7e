package synth

import (
	"sync"

	"github.com/viterin/vek"

	"github.com/lixenwraith/gallop/parameter"
)

// NoiseCache holds one brown noise buffer per sample rate
// Buffers are built on first use and shared read-only afterwards
type NoiseCache struct {
	mu    sync.RWMutex
	store map[int][]float64
	seed  uint32
}

// NewNoiseCache creates an empty cache; every buffer is generated from seed
func NewNoiseCache(seed uint32) *NoiseCache {
	return &NoiseCache{
		store: make(map[int][]float64),
		seed:  seed,
	}
}

// Get returns the buffer for rate, generating it on demand
func (c *NoiseCache) Get(rate int) []float64 {
	c.mu.RLock()
	if buf, ok := c.store[rate]; ok {
		c.mu.RUnlock()
		return buf
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Double-check after acquiring write lock
	if buf, ok := c.store[rate]; ok {
		return buf
	}

	n := int(float64(rate) * parameter.NoiseBufferSeconds)
	buf := BrownNoise(n, NewMulberry32(c.seed).White)
	c.store[rate] = buf
	return buf
}

// BrownNoise integrates white noise through a leaky integrator and restores its level
func BrownNoise(n int, white func() float64) []float64 {
	buf := make([]float64, n)
	last := 0.0
	for i := range buf {
		last = (last + parameter.NoiseLeak*white()) / (1 + parameter.NoiseLeak)
		buf[i] = last
	}
	vek.MulNumber_Inplace(buf, parameter.NoiseGain)
	return buf
}
