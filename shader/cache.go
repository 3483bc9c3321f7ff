package shader

import (
	"sync"

	"github.com/gpuviz/dtx"
)

// SourceCache memoizes generated program source by configuration hash
// and dialect. Safe for concurrent use. Generation is deterministic, so
// a cached entry is interchangeable with a fresh Build for the same
// key.
type SourceCache struct {
	mu      sync.Mutex
	entries map[cacheKey]*ProgramSource

	hits   uint64
	misses uint64
}

type cacheKey struct {
	hash    string
	dialect Dialect
}

// NewSourceCache creates an empty cache.
func NewSourceCache() *SourceCache {
	return &SourceCache{entries: make(map[cacheKey]*ProgramSource)}
}

// Get returns the program source for the configuration snapshot,
// generating and caching it on first use. Callers must not mutate the
// returned source.
func (c *SourceCache) Get(cfg dtx.Config, dialect Dialect) *ProgramSource {
	key := cacheKey{hash: cfg.Hash(), dialect: dialect}

	c.mu.Lock()
	if src, ok := c.entries[key]; ok {
		c.hits++
		c.mu.Unlock()
		return src
	}
	c.misses++
	c.mu.Unlock()

	// Build outside the lock; duplicate builds for the same key are
	// byte-identical, last writer wins.
	src := Build(cfg, dialect)

	c.mu.Lock()
	c.entries[key] = src
	c.mu.Unlock()
	return src
}

// Len returns the number of cached entries.
func (c *SourceCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns cumulative hit and miss counts.
func (c *SourceCache) Stats() (hits, misses uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// Purge drops all cached entries.
func (c *SourceCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[cacheKey]*ProgramSource)
}
