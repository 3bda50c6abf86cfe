package transform

import (
	"fmt"
	"sync"

	"github.com/cwbudde/algo-cwt/internal/logging"
)

// DefaultCacheLengths is the number of distinct lengths a Cache keeps.
const DefaultCacheLengths = 4

// CacheStats reports cache activity.
type CacheStats struct {
	Hits      int // acquisitions served from an idle instance
	Misses    int // acquisitions that prepared a new instance
	Evictions int // lengths dropped to respect the capacity
	Lengths   int // lengths currently cached
}

// Cache keeps prepared transforms keyed by length.
//
// Acquire hands out an idle instance (or prepares a new one) that belongs to
// the caller until Release. A Cache is safe for concurrent use; the
// transforms it hands out are not.
type Cache struct {
	backend  Backend
	capacity int
	opts     []Option
	logger   logging.Logger

	mu      sync.Mutex
	entries map[int]*cacheEntry
	tick    uint64
	stats   CacheStats
}

type cacheEntry struct {
	idle     []Transform
	lastUsed uint64
}

// NewCache returns a cache preparing transforms on backend and keeping up to
// capacity distinct lengths. capacity <= 0 selects DefaultCacheLengths.
func NewCache(backend Backend, capacity int, opts ...Option) *Cache {
	if capacity <= 0 {
		capacity = DefaultCacheLengths
	}
	o := applyOptions(opts)
	return &Cache{
		backend:  backend,
		capacity: capacity,
		opts:     opts,
		logger:   o.logger,
		entries:  make(map[int]*cacheEntry),
	}
}

// Backend returns the backend new instances are prepared on.
func (c *Cache) Backend() Backend {
	return c.backend
}

// Acquire returns a transform of length n owned by the caller until Release.
func (c *Cache) Acquire(n int) (Transform, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLength, n)
	}

	c.mu.Lock()
	c.tick++
	e := c.entries[n]
	if e == nil {
		e = &cacheEntry{}
		c.entries[n] = e
		c.evictLocked(n)
	}
	e.lastUsed = c.tick
	if k := len(e.idle); k > 0 {
		t := e.idle[k-1]
		e.idle[k-1] = nil
		e.idle = e.idle[:k-1]
		c.stats.Hits++
		c.mu.Unlock()
		return t, nil
	}
	c.stats.Misses++
	c.mu.Unlock()

	// Planning happens outside the lock so other lengths are not blocked.
	t, err := New(c.backend, n, c.opts...)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("prepared transform", logging.Fields{
		"length":  n,
		"backend": t.Backend().String(),
	})
	return t, nil
}

// Release returns t to the cache. Instances of evicted lengths are dropped.
func (c *Cache) Release(t Transform) {
	if t == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if e := c.entries[t.Len()]; e != nil {
		e.idle = append(e.idle, t)
	}
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.stats
	s.Lengths = len(c.entries)
	return s
}

// evictLocked drops least recently used lengths other than keep until the
// cache is within capacity.
func (c *Cache) evictLocked(keep int) {
	for len(c.entries) > c.capacity {
		victim, oldest := 0, uint64(0)
		found := false
		for n, e := range c.entries {
			if n == keep {
				continue
			}
			if !found || e.lastUsed < oldest {
				victim, oldest, found = n, e.lastUsed, true
			}
		}
		if !found {
			return
		}
		delete(c.entries, victim)
		c.stats.Evictions++
		c.logger.Debug("evicted transform length", logging.Fields{"length": victim})
	}
}
