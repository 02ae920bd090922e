package sample

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// Cache memoises sampled paths by key. Concurrent misses for the same key
// share one sampling run. Eviction is first-in first-out once the cache
// holds capacity entries.
type Cache struct {
	mu       sync.Mutex
	entries  map[string]Path
	order    []string
	capacity int

	group  singleflight.Group
	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewCache returns a cache holding at most capacity paths. A capacity
// below one disables storage but still coalesces concurrent requests.
func NewCache(capacity int) *Cache {
	return &Cache{
		entries:  make(map[string]Path),
		capacity: capacity,
	}
}

// Key builds a cache key from a curve identity, its domain and the
// options that affect the output.
func Key(id string, domain [2]float64, opts Options) string {
	clip := "-"
	if opts.Clip != nil {
		c := opts.Clip
		clip = fmt.Sprintf("%g,%g,%g,%g", c.XMin, c.XMax, c.YMin, c.YMax)
	}
	return fmt.Sprintf("%s|%g,%g|%d,%d,%g|%s",
		id, domain[0], domain[1], opts.MinDepth, opts.MaxDepth, opts.ErrorThreshold, clip)
}

// Get returns the cached path for key or computes and stores it.
// Failed computations are not cached.
func (c *Cache) Get(key string, compute func() (Path, error)) (Path, error) {
	c.mu.Lock()
	if p, ok := c.entries[key]; ok {
		c.mu.Unlock()
		c.hits.Add(1)
		return p, nil
	}
	c.mu.Unlock()
	c.misses.Add(1)

	v, err, _ := c.group.Do(key, func() (any, error) {
		p, err := compute()
		if err != nil {
			return Path{}, err
		}
		c.store(key, p)
		return p, nil
	})
	if err != nil {
		return Path{}, err
	}
	return v.(Path), nil
}

func (c *Cache) store(key string, p Path) {
	if c.capacity < 1 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; ok {
		c.entries[key] = p
		return
	}
	for len(c.order) >= c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
	c.entries[key] = p
	c.order = append(c.order, key)
}

// Invalidate drops every entry whose key starts with prefix.
func (c *Cache) Invalidate(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.order[:0]
	for _, k := range c.order {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
			continue
		}
		kept = append(kept, k)
	}
	c.order = kept
}

// Len returns the number of stored paths.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns the hit and miss counters.
func (c *Cache) Stats() (hits, misses uint64) {
	return c.hits.Load(), c.misses.Load()
}
