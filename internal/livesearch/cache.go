package livesearch

import (
	"sync"
	"time"

	"github.com/vmunix/reelcat/internal/film"
)

type cacheEntry struct {
	films []film.Film
	// fallback is the word that produced films when the query alone found
	// nothing.
	fallback string
	expires  time.Time
}

// cache keeps search results per folded query.
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

func (c *cache) get(query string) (cacheEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[query]
	if !ok || !c.now().Before(entry.expires) {
		return cacheEntry{}, false
	}
	return entry, true
}

func (c *cache) set(query string, films []film.Film, fallback string) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[query] = cacheEntry{
		films:    films,
		fallback: fallback,
		expires:  c.now().Add(c.ttl),
	}
}
