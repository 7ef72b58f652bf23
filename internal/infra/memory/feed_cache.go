package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/htlin222/gkahoot/internal/feed"
	"golang.org/x/sync/singleflight"
)

// FeedCache wraps a feed source with a short TTL cache so back-to-back
// triggers for the same question do not refetch the export. Concurrent
// misses for one link collapse into a single upstream fetch.
type FeedCache struct {
	source feed.Source
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedFeed
}

type cachedFeed struct {
	rows      []feed.RawRow
	expiresAt time.Time
}

func NewFeedCache(source feed.Source, ttl time.Duration) *FeedCache {
	return &FeedCache{
		source: source,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedFeed),
	}
}

func (c *FeedCache) Fetch(ctx context.Context, link string) ([]feed.RawRow, error) {
	now := c.clock()

	c.mu.RLock()
	if entry, ok := c.cache[link]; ok && entry.expiresAt.After(now) {
		c.mu.RUnlock()
		return entry.rows, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do(link, func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if entry, ok := c.cache[link]; ok && entry.expiresAt.After(now) {
			c.mu.RUnlock()
			return entry.rows, nil
		}
		c.mu.RUnlock()

		rows, err := c.source.Fetch(ctx, link)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.cache[link] = cachedFeed{
			rows:      rows,
			expiresAt: now.Add(c.ttlWithJitter()),
		}
		c.mu.Unlock()
		return rows, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]feed.RawRow), nil
}

func (c *FeedCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
