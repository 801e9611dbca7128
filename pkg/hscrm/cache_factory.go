package hscrm

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/fivetwenty-io/hscrm/internal/constants"
)

// CacheType represents the type of cache backend.
type CacheType string

const (
	// CacheTypeMemory represents in-memory cache.
	CacheTypeMemory CacheType = "memory"

	// CacheTypeNATS represents NATS KV cache.
	CacheTypeNATS CacheType = "nats"

	// CacheTypeNone represents no caching.
	CacheTypeNone CacheType = "none"
)

// CacheConfig configures the cache backend.
type CacheConfig struct {
	// Type is the cache backend type
	Type CacheType

	// MaxSize bounds the memory cache.
	MaxSize int

	// NATS KV cache configuration
	NATS *NATSKVConfig
}

// DefaultCacheConfig returns default cache configuration.
func DefaultCacheConfig() *CacheConfig {
	return &CacheConfig{
		Type:    CacheTypeMemory,
		MaxSize: constants.DefaultCacheSize,
	}
}

// ParseCacheType parses a cache type name. An empty name means memory.
func ParseCacheType(name string) (CacheType, error) {
	switch CacheType(name) {
	case "", CacheTypeMemory:
		return CacheTypeMemory, nil
	case CacheTypeNATS, CacheTypeNone:
		return CacheType(name), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedCacheType, name)
	}
}

// NewCacheFromConfig creates a cache backend from configuration. The NATS
// backend is fronted by an in-memory layer of MaxSize entries.
func NewCacheFromConfig(ctx context.Context, config *CacheConfig) (Cache, error) {
	if config == nil {
		config = DefaultCacheConfig()
	}

	size := config.MaxSize
	if size <= 0 {
		size = constants.DefaultCacheSize
	}

	switch config.Type {
	case CacheTypeMemory, "":
		return NewMemoryCache(size), nil

	case CacheTypeNATS:
		if config.NATS == nil {
			return nil, ErrNATSConfigRequired
		}

		shared, err := NewNATSKVCache(ctx, config.NATS)
		if err != nil {
			return nil, err
		}

		return withLocalLayer(size, shared), nil

	case CacheTypeNone:
		return NewNoOpCache(), nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCacheType, config.Type)
	}
}

// NoOpCache is a cache that does nothing (no caching).
type NoOpCache struct{}

// NewNoOpCache creates a new no-op cache.
func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

// Get always returns an error (nothing cached).
func (c *NoOpCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	return nil, ErrCacheDisabled
}

// Set does nothing.
func (c *NoOpCache) Set(ctx context.Context, key string, entry *CacheEntry) error {
	return nil
}

// Delete does nothing.
func (c *NoOpCache) Delete(ctx context.Context, key string) error {
	return nil
}

// Clear does nothing.
func (c *NoOpCache) Clear(ctx context.Context) error {
	return nil
}

// Has always returns false.
func (c *NoOpCache) Has(ctx context.Context, key string) bool {
	return false
}

// CacheChain layers cache backends, fastest first. A hit in a deeper layer
// is copied into the layers above it. Writes and removals reach every
// layer.
type CacheChain struct {
	layers []Cache
}

// NewCacheChain creates a cache chain over the given layers.
func NewCacheChain(layers ...Cache) *CacheChain {
	return &CacheChain{layers: layers}
}

// withLocalLayer fronts a shared cache with a bounded in-process cache.
// Copied entries keep their ExpiresAt, so the local copy never outlives the
// shared one.
func withLocalLayer(size int, shared Cache) *CacheChain {
	return NewCacheChain(NewMemoryCache(size), shared)
}

// Get returns the entry from the first layer that has it.
func (c *CacheChain) Get(ctx context.Context, key string) (*CacheEntry, error) {
	for depth, layer := range c.layers {
		entry, err := layer.Get(ctx, key)
		if err != nil {
			continue
		}

		for _, upper := range c.layers[:depth] {
			_ = upper.Set(ctx, key, entry)
		}

		return entry, nil
	}

	return nil, ErrKeyNotFoundInAnyCache
}

// Set stores the entry in every layer.
func (c *CacheChain) Set(ctx context.Context, key string, entry *CacheEntry) error {
	return c.each(func(layer Cache) error { return layer.Set(ctx, key, entry) })
}

// Delete removes the key from every layer.
func (c *CacheChain) Delete(ctx context.Context, key string) error {
	return c.each(func(layer Cache) error { return layer.Delete(ctx, key) })
}

// Clear empties every layer.
func (c *CacheChain) Clear(ctx context.Context) error {
	return c.each(func(layer Cache) error { return layer.Clear(ctx) })
}

// Has reports whether any layer holds the key.
func (c *CacheChain) Has(ctx context.Context, key string) bool {
	return slices.ContainsFunc(c.layers, func(layer Cache) bool { return layer.Has(ctx, key) })
}

// each applies fn to every layer and joins the failures.
func (c *CacheChain) each(fn func(layer Cache) error) error {
	errs := make([]error, 0, len(c.layers))
	for _, layer := range c.layers {
		errs = append(errs, fn(layer))
	}

	return errors.Join(errs...)
}
