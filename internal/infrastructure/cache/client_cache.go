// Package cache holds in-process caches shared across import runs.
package cache

import (
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

// ClientIDCache maps exact client names to their registry IDs.
// Entries expire after the configured TTL; it is safe for concurrent use.
type ClientIDCache struct {
	store *gocache.Cache
}

// NewClientIDCache creates a cache whose entries live for ttl.
// A non-positive ttl keeps entries until Flush.
func NewClientIDCache(ttl time.Duration) *ClientIDCache {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	cleanup := ttl * 2
	if ttl == gocache.NoExpiration {
		cleanup = 0
	}
	return &ClientIDCache{store: gocache.New(ttl, cleanup)}
}

// Get returns the ID cached for name
func (c *ClientIDCache) Get(name string) (uuid.UUID, bool) {
	v, ok := c.store.Get(name)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// Set caches id for name using the default TTL
func (c *ClientIDCache) Set(name string, id uuid.UUID) {
	c.store.SetDefault(name, id)
}

// Lookup splits names into cached IDs and the names still missing, keeping
// their order. Each name is read once, so every name lands in exactly one of
// the two results even while other runs fill the cache.
func (c *ClientIDCache) Lookup(names []string) (map[string]uuid.UUID, []string) {
	found := make(map[string]uuid.UUID, len(names))
	var missing []string
	for _, name := range names {
		if id, ok := c.Get(name); ok {
			found[name] = id
			continue
		}
		missing = append(missing, name)
	}
	return found, missing
}

// Len returns the number of cached entries, including expired ones not yet evicted
func (c *ClientIDCache) Len() int {
	return c.store.ItemCount()
}

// Flush removes every entry
func (c *ClientIDCache) Flush() {
	c.store.Flush()
}
