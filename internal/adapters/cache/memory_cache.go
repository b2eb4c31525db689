package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/zatekoja/dentalbooking/backend/internal/domain/providers"
)

// DefaultMemoryCacheEntries bounds a MemoryCache built by NewMemoryCache
const DefaultMemoryCacheEntries = 10000

// MemoryCache is a process-local CacheProvider used when Redis is disabled
// or unreachable. It holds at most maxEntries keys; when full, expired keys
// are dropped first, then the key closest to expiry.
type MemoryCache struct {
	mu         sync.Mutex
	entries    map[string]memoryEntry
	maxEntries int
	now        func() time.Time
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// NewMemoryCache creates an empty in-process cache
func NewMemoryCache() *MemoryCache {
	return NewBoundedMemoryCache(DefaultMemoryCacheEntries)
}

// NewBoundedMemoryCache creates an in-process cache holding at most maxEntries keys
func NewBoundedMemoryCache(maxEntries int) *MemoryCache {
	if maxEntries <= 0 {
		maxEntries = DefaultMemoryCacheEntries
	}
	return &MemoryCache{
		entries:    make(map[string]memoryEntry),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

var _ providers.CacheProvider = (*MemoryCache)(nil)

func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if ok && entry.expired(c.now()) {
		delete(c.entries, key)
		ok = false
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", providers.ErrCacheMiss, key)
	}
	out := make([]byte, len(entry.value))
	copy(out, entry.value)
	return out, nil
}

func (c *MemoryCache) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	entry := memoryEntry{value: append([]byte(nil), value...)}
	if expirationSeconds > 0 {
		entry.expiresAt = now.Add(time.Duration(expirationSeconds) * time.Second)
	}

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		c.sweepLocked(now)
		if len(c.entries) >= c.maxEntries {
			c.evictOneLocked()
		}
	}
	c.entries[key] = entry
	return nil
}

func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

// Len returns the number of stored keys, expired or not
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Sweep drops every expired key and returns how many were removed
func (c *MemoryCache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sweepLocked(c.now())
}

// Run sweeps expired keys every interval until ctx is done
func (c *MemoryCache) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Sweep()
		}
	}
}

func (c *MemoryCache) sweepLocked(now time.Time) int {
	removed := 0
	for key, entry := range c.entries {
		if entry.expired(now) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// evictOneLocked removes the key that expires soonest; keys without expiry go last
func (c *MemoryCache) evictOneLocked() {
	var victim string
	var victimExpiry time.Time
	found := false
	for key, entry := range c.entries {
		switch {
		case !found:
		case entry.expiresAt.IsZero():
			continue
		case !victimExpiry.IsZero() && !entry.expiresAt.Before(victimExpiry):
			continue
		}
		victim, victimExpiry, found = key, entry.expiresAt, true
	}
	if found {
		delete(c.entries, victim)
	}
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}
