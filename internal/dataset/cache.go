package dataset

import (
	"sync"
	"time"
)

type cacheEntry struct {
	body    []byte
	expires time.Time
}

// cache holds fetched documents by path. The dataset is static, so whole
// documents are kept rather than decoded records.
type cache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

func newCache(ttl time.Duration, now func() time.Time) *cache {
	return &cache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     now,
	}
}

func (c *cache) get(path string) ([]byte, bool) {
	if c.ttl <= 0 {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[path]
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expires) {
		return nil, false
	}
	return entry.body, true
}

func (c *cache) set(path string, body []byte) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[path] = cacheEntry{
		body:    body,
		expires: c.now().Add(c.ttl),
	}
}
