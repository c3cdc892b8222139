package cache

import (
	"sync"
	"time"

	"github.com/kreso2/costwise/pkg/provider"
)

// MemoryCache implements ExchangeRateCache using in-memory storage.
//
// Writes are last-write-wins; a fresher fetch always replaces an older one.
// There is no background eviction: staleness is checked by readers, and
// expired entries are kept around so the exchange service can serve them
// when every provider is down.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]provider.Snapshot
}

// NewMemoryCache creates a new in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]provider.Snapshot)}
}

// Get retrieves a snapshot from cache. A nil snapshot with nil error means
// the key is absent.
func (c *MemoryCache) Get(key string) (*provider.Snapshot, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[key]
	if !exists {
		return nil, nil
	}
	snap := entry
	return &snap, nil
}

// Set stores a snapshot with the given TTL.
func (c *MemoryCache) Set(key string, snapshot *provider.Snapshot, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := *snapshot
	entry.ExpiresAt = time.Now().Add(ttl)
	c.entries[key] = entry
	return nil
}

// Delete removes a snapshot from cache.
func (c *MemoryCache) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
	return nil
}

// Clear drops every cached snapshot.
func (c *MemoryCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]provider.Snapshot)
	return nil
}
