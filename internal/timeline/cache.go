package timeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"flock/internal/constants"
)

//go:generate go run go.uber.org/mock/mockgen -source=cache.go -destination=../mocks/timeline_cache_mock.go -package=mocks -mock_names=Cache=MockTimelineCache

// cacheVersion is bumped whenever the cached page layout changes. Entries
// written with another version are treated as misses.
const cacheVersion = 1

const invalidateBatchSize = 100

type Cache interface {
	Get(ctx context.Context, key string) (*Page, bool, error)
	Set(ctx context.Context, key string, page *Page, ttl time.Duration) error
	Invalidate(ctx context.Context, ownerID string) error
}

type cachedPage struct {
	Version int   `json:"v"`
	Page    *Page `json:"page"`
}

type RedisCache struct {
	client redis.UniversalClient
	mode   string
}

// NewRedisCache builds a page cache. mode selects what Invalidate does:
// "pattern" deletes every cached page of the owner, "none" leaves entries to
// expire by TTL.
func NewRedisCache(client redis.UniversalClient, mode string) *RedisCache {
	if mode == "" {
		mode = constants.InvalidationPattern
	}
	return &RedisCache{client: client, mode: mode}
}

func (c *RedisCache) Mode() string {
	return c.mode
}

func (c *RedisCache) Get(ctx context.Context, key string) (*Page, bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis GET failed: %w", err)
	}

	var cached cachedPage
	if err := json.Unmarshal(raw, &cached); err != nil || cached.Version != cacheVersion || cached.Page == nil {
		return nil, false, nil
	}
	if cached.Page.Items == nil {
		cached.Page.Items = []Item{}
	}
	return cached.Page, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, page *Page, ttl time.Duration) error {
	body, err := json.Marshal(cachedPage{Version: cacheVersion, Page: page})
	if err != nil {
		return fmt.Errorf("failed to marshal timeline page: %w", err)
	}
	if err := c.client.Set(ctx, key, body, ttl).Err(); err != nil {
		return fmt.Errorf("redis SET failed: %w", err)
	}
	return nil
}

// Invalidate drops every cached page of ownerID. SCAN is used instead of KEYS
// so large keyspaces never block the server.
func (c *RedisCache) Invalidate(ctx context.Context, ownerID string) error {
	if c.mode == constants.InvalidationNone {
		return nil
	}

	iter := c.client.Scan(ctx, 0, OwnerKeyPattern(ownerID), invalidateBatchSize).Iterator()
	batch := make([]string, 0, invalidateBatchSize)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == invalidateBatchSize {
			if err := c.client.Del(ctx, batch...).Err(); err != nil {
				return fmt.Errorf("redis DEL failed: %w", err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan failed: %w", err)
	}
	if len(batch) > 0 {
		if err := c.client.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("redis DEL failed: %w", err)
		}
	}
	return nil
}
