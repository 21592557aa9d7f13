package redis

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"creed-trivia/internal/packs"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// PackCache shares downloaded pack bytes between processes.
// Packs are stored as: SET packs:cache:{path} {json} EX {ttl}
type PackCache struct {
	client *redis.Client
	next   packs.Fetcher
	ttl    time.Duration
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewPackCache(client *redis.Client, next packs.Fetcher, ttl time.Duration) *PackCache {
	return &PackCache{
		client: client,
		next:   next,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *PackCache) Fetch(ctx context.Context, path string) ([]byte, error) {
	key := c.key(path)
	if data, err := c.client.Get(ctx, key).Bytes(); err == nil {
		return data, nil
	}

	result, err, _ := c.sf.Do(path, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if data, err := c.client.Get(ctx, key).Bytes(); err == nil {
			return data, nil
		}

		data, err := c.next.Fetch(ctx, path)
		if err != nil {
			return nil, err
		}
		// a failed cache write only costs a refetch next time
		_ = c.client.Set(ctx, key, data, c.ttlWithJitter()).Err()
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

// Invalidate drops one cached pack.
func (c *PackCache) Invalidate(ctx context.Context, path string) error {
	return c.client.Del(ctx, c.key(path)).Err()
}

func (c *PackCache) key(path string) string {
	return "packs:cache:" + path
}

func (c *PackCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
