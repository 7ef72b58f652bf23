package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/htlin222/gkahoot/internal/feed"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// FeedCache caches parsed feed rows in Redis, keyed by link, and falls back
// to the wrapped source on a miss. Rows are stored as a JSON blob:
// SET feed:{link} {json} EX {ttl}
// Useful when several presenter instances share one Redis and should not
// each hammer the same spreadsheet export.
type FeedCache struct {
	client *redis.Client
	source feed.Source
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewFeedCache(client *redis.Client, source feed.Source, ttl time.Duration) *FeedCache {
	return &FeedCache{
		client: client,
		source: source,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *FeedCache) Fetch(ctx context.Context, link string) ([]feed.RawRow, error) {
	key := c.key(link)

	if rows, ok := c.lookup(ctx, key); ok {
		return rows, nil
	}

	result, err, _ := c.sf.Do(link, func() (interface{}, error) {
		// Re-check in case another goroutine filled the key.
		if rows, ok := c.lookup(ctx, key); ok {
			return rows, nil
		}

		rows, err := c.source.Fetch(ctx, link)
		if err != nil {
			return nil, err
		}

		if payload, err := json.Marshal(rows); err == nil {
			// best-effort: a failed cache write must not fail the fetch
			_ = c.client.Set(ctx, key, payload, c.ttlWithJitter()).Err()
		}
		return rows, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]feed.RawRow), nil
}

func (c *FeedCache) lookup(ctx context.Context, key string) ([]feed.RawRow, bool) {
	payload, err := c.client.Get(ctx, key).Bytes()
	if err != nil || len(payload) == 0 {
		return nil, false
	}
	var rows []feed.RawRow
	if err := json.Unmarshal(payload, &rows); err != nil {
		return nil, false
	}
	return rows, true
}

func (c *FeedCache) key(link string) string {
	return "feed:" + link
}

func (c *FeedCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
