package dao

import (
	"sync"
	"time"
)

// DefaultCacheTTL is the default time-to-live for cached documents.
const DefaultCacheTTL = 10 * time.Minute

// cacheEntry holds a raw document body with its timestamp.
type cacheEntry struct {
	raw       []byte
	timestamp time.Time
}

// DocumentCache provides TTL-based caching of raw store document bodies,
// keyed by their storage location. Expired entries are evicted on access.
type DocumentCache struct {
	data map[string]cacheEntry
	ttl  time.Duration
	now  func() time.Time
	mx   sync.Mutex
}

// NewDocumentCache creates a new DocumentCache with the specified TTL.
func NewDocumentCache(ttl time.Duration) *DocumentCache {
	return &DocumentCache{
		data: make(map[string]cacheEntry),
		ttl:  ttl,
		now:  time.Now,
	}
}

// Get retrieves a cached document body for the given key.
// Returns false if the key is not found or the entry has expired.
func (c *DocumentCache) Get(key string) ([]byte, bool) {
	c.mx.Lock()
	defer c.mx.Unlock()

	entry, exists := c.data[key]
	if !exists {
		return nil, false
	}
	if c.expired(entry) {
		delete(c.data, key)
		return nil, false
	}

	return entry.raw, true
}

// Set stores a document body under the given key and drops expired entries.
func (c *DocumentCache) Set(key string, raw []byte) {
	c.mx.Lock()
	defer c.mx.Unlock()

	for k, e := range c.data {
		if c.expired(e) {
			delete(c.data, k)
		}
	}
	c.data[key] = cacheEntry{
		raw:       raw,
		timestamp: c.now(),
	}
}

func (c *DocumentCache) expired(e cacheEntry) bool {
	return c.now().Sub(e.timestamp) > c.ttl
}

// size returns the number of retained entries.
func (c *DocumentCache) size() int {
	c.mx.Lock()
	defer c.mx.Unlock()
	return len(c.data)
}
