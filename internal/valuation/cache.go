package valuation

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// cacheKey derives the cache key for an item payload.
func cacheKey(item string) string {
	sum := sha256.Sum256([]byte(item))
	return hex.EncodeToString(sum[:])
}

type cacheEntry struct {
	result     Result
	obtainedAt time.Time
}

// resultCache is a TTL-bounded result cache keyed by payload hash.
// Entries are valid strictly less than ttl after they were obtained.
type resultCache struct {
	mu         sync.RWMutex
	entries    map[string]cacheEntry
	ttl        time.Duration
	maxEntries int
}

func newResultCache(ttl time.Duration, maxEntries int) *resultCache {
	return &resultCache{
		entries:    make(map[string]cacheEntry),
		ttl:        ttl,
		maxEntries: maxEntries,
	}
}

// get returns the cached result for key if still fresh at now.
func (c *resultCache) get(key string, now time.Time) (Result, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok {
		return Result{}, false
	}
	if now.Sub(entry.obtainedAt) >= c.ttl {
		return Result{}, false
	}
	return entry.result, true
}

// put stores a result, purging expired entries synchronously when the
// entry bound is exceeded.
func (c *resultCache) put(key string, result Result, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{result: result, obtainedAt: now}

	if c.maxEntries > 0 && len(c.entries) > c.maxEntries {
		for k, e := range c.entries {
			if now.Sub(e.obtainedAt) >= c.ttl {
				delete(c.entries, k)
			}
		}
	}
}

// len returns the current entry count.
func (c *resultCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
