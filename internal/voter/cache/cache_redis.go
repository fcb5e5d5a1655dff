package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"voterdata/internal/voter/models"
	id "voterdata/pkg/domain"
	"voterdata/pkg/platform/sentinel"
)

// RedisCache stores JSON record snapshots under "voter:<epic>" with a TTL.
type RedisCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisCache constructs a Redis-backed accelerator cache.
func NewRedisCache(client redis.UniversalClient, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, epic id.EPICNumber) (*models.VoterRecord, error) {
	raw, err := c.client.Get(ctx, epic.CacheKey()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get cached voter: %w", err)
	}
	var record models.VoterRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		// An undecodable snapshot is evicted and treated as a miss.
		_ = c.client.Del(ctx, epic.CacheKey()).Err()
		return nil, sentinel.ErrNotFound
	}
	return &record, nil
}

func (c *RedisCache) Set(ctx context.Context, record *models.VoterRecord) error {
	if record == nil {
		return nil
	}
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode cached voter: %w", err)
	}
	if err := c.client.Set(ctx, record.EPICNo.CacheKey(), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("set cached voter: %w", err)
	}
	return nil
}

func (c *RedisCache) Delete(ctx context.Context, epic id.EPICNumber) error {
	if err := c.client.Del(ctx, epic.CacheKey()).Err(); err != nil {
		return fmt.Errorf("evict cached voter: %w", err)
	}
	return nil
}
