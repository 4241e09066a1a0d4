package cache

import "time"

// VectorCache is a typed view over a Cache for embedding vectors. Cached
// vectors are copied on both sides so callers can never mutate an entry
// in place.
type VectorCache struct {
	inner Cache
}

// NewVectorCache wraps a Cache for vector storage.
func NewVectorCache(inner Cache) *VectorCache {
	return &VectorCache{inner: inner}
}

// Get returns a copy of the cached vector for key.
func (c *VectorCache) Get(key string) ([]float32, bool) {
	v, ok := c.inner.Get(key)
	if !ok {
		return nil, false
	}
	vec, ok := v.([]float32)
	if !ok {
		return nil, false
	}
	out := make([]float32, len(vec))
	copy(out, vec)
	return out, true
}

// Set stores a copy of the vector under key.
func (c *VectorCache) Set(key string, vec []float32, ttl time.Duration) {
	stored := make([]float32, len(vec))
	copy(stored, vec)
	c.inner.Set(key, stored, ttl)
}
