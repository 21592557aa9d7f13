package packs

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// CachedFetcher caches pack bytes with TTL to avoid refetching on every session.
// Concurrent misses for the same path share one fetch.
type CachedFetcher struct {
	next  Fetcher
	ttl   time.Duration
	clock func() time.Time
	sf    singleflight.Group

	mu    sync.RWMutex
	rnd   *rand.Rand
	cache map[string]cachedPack
}

type cachedPack struct {
	data      []byte
	expiresAt time.Time
}

func NewCachedFetcher(next Fetcher, ttl time.Duration) *CachedFetcher {
	return &CachedFetcher{
		next:  next,
		ttl:   ttl,
		clock: time.Now,
		rnd:   rand.New(rand.NewSource(time.Now().UnixNano())),
		cache: make(map[string]cachedPack),
	}
}

func (c *CachedFetcher) Fetch(ctx context.Context, path string) ([]byte, error) {
	if data, ok := c.lookup(path); ok {
		return data, nil
	}

	result, err, _ := c.sf.Do(path, func() (interface{}, error) {
		// Re-check in case another caller filled it.
		if data, ok := c.lookup(path); ok {
			return data, nil
		}

		data, err := c.next.Fetch(ctx, path)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		if ttl := c.ttlWithJitter(); ttl > 0 {
			c.cache[path] = cachedPack{data: data, expiresAt: c.clock().Add(ttl)}
		}
		c.mu.Unlock()
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

// Invalidate drops every cached pack.
func (c *CachedFetcher) Invalidate() {
	c.mu.Lock()
	c.cache = make(map[string]cachedPack)
	c.mu.Unlock()
}

func (c *CachedFetcher) lookup(path string) ([]byte, bool) {
	now := c.clock()
	c.mu.RLock()
	defer c.mu.RUnlock()
	if entry, ok := c.cache[path]; ok && entry.expiresAt.After(now) {
		return entry.data, true
	}
	return nil, false
}

// ttlWithJitter must be called with mu held.
func (c *CachedFetcher) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
