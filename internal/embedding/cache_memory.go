package embedding

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache keeps vectors in process memory with expiration
type MemoryCache struct {
	store *gocache.Cache
	ttl   time.Duration
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		store: gocache.New(ttl, 2*ttl),
		ttl:   ttl,
	}
}

func (c *MemoryCache) GetMany(_ context.Context, keys []string) ([][]float32, error) {
	out := make([][]float32, len(keys))
	for i, key := range keys {
		if v, ok := c.store.Get(key); ok {
			vec := v.([]float32)
			// Callers normalise in place, so never hand out the stored slice
			out[i] = append([]float32(nil), vec...)
		}
	}
	return out, nil
}

func (c *MemoryCache) SetMany(_ context.Context, keys []string, vectors [][]float32) error {
	for i, key := range keys {
		c.store.Set(key, append([]float32(nil), vectors[i]...), c.ttl)
	}
	return nil
}

// Len returns the number of cached vectors, including expired ones not yet evicted
func (c *MemoryCache) Len() int {
	return c.store.ItemCount()
}
