package server

import (
	"sync"
	"time"

	"github.com/mj1618/uitree/internal/model"
)

// cacheKey identifies a unique capture scope.
type cacheKey struct {
	Window string
	Depth  int
	DOM    bool
}

// cacheEntry holds a cached snapshot with the generation it was captured at.
type cacheEntry struct {
	state      *model.TreeState
	generation int64
	timestamp  time.Time
}

// StateCache is a TTL cache for capture snapshots. An entry is also
// invalidated when the capture generation moves past the one it was taken
// at, so a focus or structure change forces a fresh capture regardless of
// TTL.
type StateCache struct {
	mu      sync.Mutex
	entries map[cacheKey]cacheEntry
	ttl     time.Duration
}

// NewStateCache creates a cache. A ttl of 0 disables caching entirely.
func NewStateCache(ttl time.Duration) *StateCache {
	return &StateCache{
		entries: make(map[cacheKey]cacheEntry),
		ttl:     ttl,
	}
}

// Get returns a cached snapshot still valid at the given generation, or nil.
func (c *StateCache) Get(key cacheKey, generation int64) *model.TreeState {
	if c.ttl == 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return nil
	}
	if entry.generation != generation || time.Since(entry.timestamp) >= c.ttl {
		delete(c.entries, key)
		return nil
	}
	return entry.state
}

// Put stores a snapshot. TreeStates are immutable, so the cache can hand
// the same pointer to every reader.
func (c *StateCache) Put(key cacheKey, state *model.TreeState) {
	if c.ttl == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{
		state:      state,
		generation: state.Generation,
		timestamp:  time.Now(),
	}
}

// InvalidateAll clears the cache.
func (c *StateCache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[cacheKey]cacheEntry)
}
