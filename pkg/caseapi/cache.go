package caseapi

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Cache is a key/value store for short-lived client state such as tokens.
type Cache interface {
	Get(ctx context.Context, key string) (*CacheEntry, error)
	Set(ctx context.Context, key string, entry *CacheEntry) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Has(ctx context.Context, key string) bool
}

// CacheEntry is a cached value with its expiry.
type CacheEntry struct {
	Data      []byte    `json:"data"`
	ExpiresAt time.Time `json:"expires_at"`
	ETag      string    `json:"etag,omitempty"`
}

// Expired reports whether the entry has a deadline in the past.
func (e *CacheEntry) Expired() bool {
	return !e.ExpiresAt.IsZero() && time.Now().After(e.ExpiresAt)
}

// CacheOptions are applied to any backend.
type CacheOptions struct {
	// DefaultTTL is used for entries stored without an expiry.
	DefaultTTL time.Duration
	// KeyPrefix is prepended to every key by remote backends.
	KeyPrefix string
}

// MemoryCache is an in-process Cache bounded to maxSize entries. When full, the
// entry closest to expiry is evicted.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]*CacheEntry
	maxSize int
}

// NewMemoryCache creates a memory cache holding at most maxSize entries.
func NewMemoryCache(maxSize int) *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]*CacheEntry),
		maxSize: maxSize,
	}
}

// Get returns a live entry.
func (c *MemoryCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCacheKeyNotFound, key)
	}

	if entry.Expired() {
		_ = c.Delete(ctx, key)

		return nil, fmt.Errorf("%w: %s", ErrCacheEntryExpired, key)
	}

	return entry, nil
}

// Set stores an entry, evicting one if the cache is full.
func (c *MemoryCache) Set(ctx context.Context, key string, entry *CacheEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && c.maxSize > 0 && len(c.entries) >= c.maxSize {
		c.evictLocked()
	}

	c.entries[key] = entry

	return nil
}

// Delete removes an entry.
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()

	return nil
}

// Clear removes all entries.
func (c *MemoryCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	c.entries = make(map[string]*CacheEntry)
	c.mu.Unlock()

	return nil
}

// Has reports whether a live entry exists.
func (c *MemoryCache) Has(ctx context.Context, key string) bool {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	return ok && !entry.Expired()
}

// Cleanup drops expired entries.
func (c *MemoryCache) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, entry := range c.entries {
		if entry.Expired() {
			delete(c.entries, key)
		}
	}
}

// StartCleanup sweeps expired entries every interval until ctx is done.
func (c *MemoryCache) StartCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.Cleanup()
			}
		}
	}()
}

func (c *MemoryCache) evictLocked() {
	var (
		victim   string
		earliest time.Time
	)

	for key, entry := range c.entries {
		if victim == "" || entry.ExpiresAt.Before(earliest) {
			victim = key
			earliest = entry.ExpiresAt
		}
	}

	delete(c.entries, victim)
}

// TieredCache reads from an in-process near cache and falls back to a shared
// far cache (NATS or Redis). Far hits are copied into the near cache so later
// reads skip the network.
type TieredCache struct {
	near Cache
	far  Cache
}

// NewTieredCache puts near in front of far.
func NewTieredCache(near, far Cache) *TieredCache {
	return &TieredCache{near: near, far: far}
}

// Get returns the near entry, or the far entry after copying it near.
func (c *TieredCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	entry, err := c.near.Get(ctx, key)
	if err == nil {
		return entry, nil
	}

	entry, err = c.far.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	_ = c.near.Set(ctx, key, entry)

	return entry, nil
}

// Set writes far then near. The near copy is kept even when the far write
// fails, so an unreachable far cache still serves this process.
func (c *TieredCache) Set(ctx context.Context, key string, entry *CacheEntry) error {
	return errors.Join(c.far.Set(ctx, key, entry), c.near.Set(ctx, key, entry))
}

// Delete removes the entry from both tiers.
func (c *TieredCache) Delete(ctx context.Context, key string) error {
	return errors.Join(c.near.Delete(ctx, key), c.far.Delete(ctx, key))
}

// Clear empties both tiers.
func (c *TieredCache) Clear(ctx context.Context) error {
	return errors.Join(c.near.Clear(ctx), c.far.Clear(ctx))
}

// Has reports whether either tier holds a live entry.
func (c *TieredCache) Has(ctx context.Context, key string) bool {
	return c.near.Has(ctx, key) || c.far.Has(ctx, key)
}
