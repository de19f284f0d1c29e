package divergence

import "sync"

// Result holds the divergence counts for one branch pair.
// Ahead counts commits only reachable from the left side of the pair's
// range, Behind commits only reachable from the right side.
type Result struct {
	Ahead  int
	Behind int
}

// Cache maps a symmetric-difference range key to a previously computed
// divergence result. Entries are write-once: the first value stored under a
// key wins, so a stale recomputation can never clobber a fresher value that
// arrived through another path.
//
// Reads and writes come from both the queue worker and the scheduler
// goroutine, so all access goes through a mutex.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]Result
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]Result)}
}

// Has returns true if a result is cached under key.
func (c *Cache) Has(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.entries[key]
	return ok
}

// Get returns the cached result for key.
func (c *Cache) Get(key string) (Result, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.entries[key]
	return r, ok
}

// Set stores value under key. No-ops and returns false if the key is
// already present (first write wins).
func (c *Cache) Set(key string, value Result) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; ok {
		return false
	}
	c.entries[key] = value
	return true
}

// Len returns the number of cached results.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Snapshot returns a copy of all cached entries.
func (c *Cache) Snapshot() map[string]Result {
	c.mu.RLock()
	defer c.mu.RUnlock()
	snap := make(map[string]Result, len(c.entries))
	for k, v := range c.entries {
		snap[k] = v
	}
	return snap
}
