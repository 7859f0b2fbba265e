package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	domainprompt "github.com/outflowhq/prompt-engine/internal/domain/prompt"
	portcache "github.com/outflowhq/prompt-engine/internal/port/cache"
)

// DefaultTTL is how long a resolved prompt is trusted before the store is
// re-queried.
const DefaultTTL = 5 * time.Minute

type cacheEntry struct {
	resolved  domainprompt.Resolved
	expiresAt time.Time
}

// Cache implements port/cache.ResolutionCache as a process-local map with
// lazy expiry — expired entries are detected and dropped on access, there is
// no sweeper goroutine. The clock is injected so tests control time instead
// of sleeping.
type Cache struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.RWMutex
	entries map[string]cacheEntry
}

// NewCache creates a cache with the given TTL. A nil clock uses time.Now.
func NewCache(ttl time.Duration, now func() time.Time) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Cache{
		ttl:     ttl,
		now:     now,
		entries: make(map[string]cacheEntry),
	}
}

// Get returns the live entry for the key. An entry created at T is live
// strictly before T+TTL and expired from T+TTL onward.
func (c *Cache) Get(_ context.Context, key string) (domainprompt.Resolved, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return domainprompt.Resolved{}, portcache.ErrMiss
	}
	if !c.now().Before(entry.expiresAt) {
		c.mu.Lock()
		// Re-check under the write lock: a concurrent Set may have refreshed it.
		if cur, ok := c.entries[key]; ok && !c.now().Before(cur.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return domainprompt.Resolved{}, portcache.ErrMiss
	}
	return entry.resolved, nil
}

func (c *Cache) Set(_ context.Context, key string, r domainprompt.Resolved) error {
	c.mu.Lock()
	c.entries[key] = cacheEntry{
		resolved:  r,
		expiresAt: c.now().Add(c.ttl),
	}
	c.mu.Unlock()
	return nil
}

func (c *Cache) Invalidate(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

// InvalidateOwner removes every entry whose key belongs to the owner prefix.
func (c *Cache) InvalidateOwner(_ context.Context, ownerPrefix string) error {
	prefix := ownerPrefix + "_"
	c.mu.Lock()
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
	c.mu.Unlock()
	return nil
}

func (c *Cache) Clear(_ context.Context) error {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()
	return nil
}

// Len reports the number of entries, expired ones included. Test helper.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
