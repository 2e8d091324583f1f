package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "token-news-monitor:notified:"

// RedisCache stores entries as JSON strings that Redis expires on its own
type RedisCache struct {
	client    *redis.Client
	duration  time.Duration
	hitCount  atomic.Int64
	missCount atomic.Int64
}

// NewRedisCache connects to Redis. redisURL may be a redis:// URL or a plain host:port.
func NewRedisCache(ctx context.Context, redisURL string, duration time.Duration) (*RedisCache, error) {
	if redisURL == "" {
		return nil, errors.New("redis URL is required")
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		opt = &redis.Options{Addr: redisURL}
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	return &RedisCache{client: client, duration: duration}, nil
}

// Get retrieves an entry from Redis
func (c *RedisCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	data, err := c.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		c.missCount.Add(1)
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("getting %s: %w", key, err)
	}

	var entry CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("unmarshaling cache entry: %w", err)
	}
	c.hitCount.Add(1)
	return &entry, nil
}

// Set stores an entry with the cache duration as its TTL
func (c *RedisCache) Set(ctx context.Context, key string, entry *CacheEntry) error {
	now := time.Now()
	entry.Key = key
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	entry.ExpiresAt = now.Add(c.duration)
	entry.AccessedAt = now

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshaling cache entry: %w", err)
	}

	if err := c.client.Set(ctx, redisKeyPrefix+key, data, c.duration).Err(); err != nil {
		return fmt.Errorf("setting %s: %w", key, err)
	}
	return nil
}

// Delete removes an entry from Redis
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, redisKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	return nil
}

// Exists checks if an entry exists in Redis
func (c *RedisCache) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Exists(ctx, redisKeyPrefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("checking %s: %w", key, err)
	}
	return n > 0, nil
}

// Clear removes every key under the cache prefix
func (c *RedisCache) Clear(ctx context.Context) error {
	keys, err := c.keys(ctx)
	if err != nil {
		return err
	}
	if len(keys) > 0 {
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("deleting keys: %w", err)
		}
	}
	c.hitCount.Store(0)
	c.missCount.Store(0)
	return nil
}

// GetStats returns cache statistics. Ages are derived from each key's remaining TTL.
func (c *RedisCache) GetStats(ctx context.Context) (*Stats, error) {
	keys, err := c.keys(ctx)
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		TotalEntries: len(keys),
		HitCount:     c.hitCount.Load(),
		MissCount:    c.missCount.Load(),
	}
	if total := stats.HitCount + stats.MissCount; total > 0 {
		stats.HitRate = float64(stats.HitCount) / float64(total)
	}

	var totalAge time.Duration
	now := time.Now()
	for _, key := range keys {
		ttl, err := c.client.TTL(ctx, key).Result()
		if err != nil {
			return nil, fmt.Errorf("reading TTL of %s: %w", key, err)
		}
		if ttl < 0 {
			continue
		}
		age := c.duration - ttl
		totalAge += age
		if created := now.Add(-age); stats.OldestEntry.IsZero() || created.Before(stats.OldestEntry) {
			stats.OldestEntry = created
		}
		if size, err := c.client.StrLen(ctx, key).Result(); err == nil {
			stats.MemoryUsage += size
		}
	}
	if len(keys) > 0 {
		stats.AverageAge = totalAge / time.Duration(len(keys))
	}

	return stats, nil
}

func (c *RedisCache) keys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := c.client.Scan(ctx, 0, redisKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scanning keys: %w", err)
	}
	return keys, nil
}

// Close closes the Redis client
func (c *RedisCache) Close() error {
	return c.client.Close()
}
