package quote

import (
	"sync"
	"time"
)

// DefaultTTL is how long a fetched price stays fresh.
const DefaultTTL = 2 * time.Hour

type cacheEntry struct {
	fetchedAt time.Time
	price     float64
}

// Cache stores the last price fetched per symbol.
// Entries are overwritten on refresh and never evicted.
type Cache struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]cacheEntry
}

// NewCache builds a cache with the given freshness window. A nil clock uses time.Now.
func NewCache(ttl time.Duration, now func() time.Time) *Cache {
	if now == nil {
		now = time.Now
	}
	return &Cache{
		ttl:     ttl,
		now:     now,
		entries: make(map[string]cacheEntry),
	}
}

// Get returns the cached price for symbol if it is not older than the TTL.
func (c *Cache) Get(symbol string) (float64, bool) {
	c.mu.Lock()
	entry, ok := c.entries[symbol]
	c.mu.Unlock()
	if !ok {
		return 0, false
	}
	if c.now().Sub(entry.fetchedAt) > c.ttl {
		return 0, false
	}
	return entry.price, true
}

// Set stores price for symbol stamped with the current time.
func (c *Cache) Set(symbol string, price float64) {
	c.mu.Lock()
	c.entries[symbol] = cacheEntry{fetchedAt: c.now(), price: price}
	c.mu.Unlock()
}
