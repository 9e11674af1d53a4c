package route

import (
	"sync"
	"time"
)

// Cache holds the most recently fetched route list. Every Replace overwrites
// the previous list wholesale; nothing expires on its own.
type Cache struct {
	mu        sync.RWMutex
	routes    []Route
	fetchedAt time.Time
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{}
}

// Replace stores routes as the current list.
func (c *Cache) Replace(routes []Route, at time.Time) {
	cp := make([]Route, len(routes))
	copy(cp, routes)

	c.mu.Lock()
	c.routes = cp
	c.fetchedAt = at
	c.mu.Unlock()
}

// Find scans the current list for id. First match wins.
func (c *Cache) Find(id string) (Route, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Find(c.routes, id)
}

// Snapshot returns a copy of the current list.
func (c *Cache) Snapshot() []Route {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Route, len(c.routes))
	copy(out, c.routes)
	return out
}

// FetchedAt returns when the current list was stored; zero if never.
func (c *Cache) FetchedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fetchedAt
}
