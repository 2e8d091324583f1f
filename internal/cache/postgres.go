package cache

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createNotifiedTokensTable = `
CREATE TABLE IF NOT EXISTS notified_tokens (
	key          TEXT PRIMARY KEY,
	token_key    TEXT NOT NULL,
	token_name   TEXT NOT NULL,
	chain        TEXT NOT NULL DEFAULT '',
	article_ids  TEXT[] NOT NULL DEFAULT '{}',
	created_at   TIMESTAMPTZ NOT NULL,
	expires_at   TIMESTAMPTZ NOT NULL,
	accessed_at  TIMESTAMPTZ NOT NULL,
	access_count INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS notified_tokens_expires_at_idx ON notified_tokens (expires_at);
`

// PostgresCache keeps entries in the notified_tokens table
type PostgresCache struct {
	pool      *pgxpool.Pool
	duration  time.Duration
	hitCount  atomic.Int64
	missCount atomic.Int64
}

// NewPostgresCache connects to Postgres and creates the table if needed.
func NewPostgresCache(ctx context.Context, dsn string, duration time.Duration) (*PostgresCache, error) {
	if dsn == "" {
		return nil, errors.New("database URL is required")
	}

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := pool.Exec(ctx, createNotifiedTokensTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create notified_tokens table: %w", err)
	}

	return &PostgresCache{pool: pool, duration: duration}, nil
}

// Get retrieves an unexpired entry and bumps its access counters
func (c *PostgresCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	const query = `
		UPDATE notified_tokens
		SET accessed_at = now(), access_count = access_count + 1
		WHERE key = $1 AND expires_at > now()
		RETURNING key, token_key, token_name, chain, article_ids, created_at, expires_at, accessed_at, access_count`

	var entry CacheEntry
	err := c.pool.QueryRow(ctx, query, key).Scan(
		&entry.Key,
		&entry.TokenKey,
		&entry.TokenName,
		&entry.Chain,
		&entry.ArticleIDs,
		&entry.CreatedAt,
		&entry.ExpiresAt,
		&entry.AccessedAt,
		&entry.AccessCount,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		c.missCount.Add(1)
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("select entry %s: %w", key, err)
	}

	c.hitCount.Add(1)
	return &entry, nil
}

// Set upserts an entry, restarting its lifetime. Expired rows are purged first; a row that
// expired in between is replaced as a new entry.
func (c *PostgresCache) Set(ctx context.Context, key string, entry *CacheEntry) error {
	const query = `
		INSERT INTO notified_tokens (key, token_key, token_name, chain, article_ids, created_at, expires_at, accessed_at, access_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0)
		ON CONFLICT (key) DO UPDATE SET
			token_key = EXCLUDED.token_key,
			token_name = EXCLUDED.token_name,
			chain = EXCLUDED.chain,
			article_ids = EXCLUDED.article_ids,
			created_at = CASE WHEN notified_tokens.expires_at <= now()
				THEN EXCLUDED.created_at ELSE notified_tokens.created_at END,
			access_count = CASE WHEN notified_tokens.expires_at <= now()
				THEN 0 ELSE notified_tokens.access_count END,
			expires_at = EXCLUDED.expires_at,
			accessed_at = EXCLUDED.accessed_at`

	if _, err := c.purgeExpired(ctx); err != nil {
		return err
	}

	now := time.Now()
	entry.Key = key
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	entry.ExpiresAt = now.Add(c.duration)
	entry.AccessedAt = now

	articleIDs := entry.ArticleIDs
	if articleIDs == nil {
		articleIDs = []string{}
	}

	_, err := c.pool.Exec(ctx, query,
		key,
		entry.TokenKey,
		entry.TokenName,
		entry.Chain,
		articleIDs,
		entry.CreatedAt,
		entry.ExpiresAt,
		entry.AccessedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert entry %s: %w", key, err)
	}
	return nil
}

// purgeExpired deletes every expired row and reports how many were removed.
func (c *PostgresCache) purgeExpired(ctx context.Context) (int64, error) {
	tag, err := c.pool.Exec(ctx, `DELETE FROM notified_tokens WHERE expires_at <= now()`)
	if err != nil {
		return 0, fmt.Errorf("purge expired entries: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Delete removes an entry
func (c *PostgresCache) Delete(ctx context.Context, key string) error {
	if _, err := c.pool.Exec(ctx, `DELETE FROM notified_tokens WHERE key = $1`, key); err != nil {
		return fmt.Errorf("delete entry %s: %w", key, err)
	}
	return nil
}

// Exists checks if an unexpired entry exists
func (c *PostgresCache) Exists(ctx context.Context, key string) (bool, error) {
	var exists bool
	err := c.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM notified_tokens WHERE key = $1 AND expires_at > now())`, key,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check entry %s: %w", key, err)
	}
	return exists, nil
}

// Clear removes all entries
func (c *PostgresCache) Clear(ctx context.Context) error {
	if _, err := c.pool.Exec(ctx, `TRUNCATE notified_tokens`); err != nil {
		return fmt.Errorf("truncate notified_tokens: %w", err)
	}
	c.hitCount.Store(0)
	c.missCount.Store(0)
	return nil
}

// GetStats returns cache statistics
func (c *PostgresCache) GetStats(ctx context.Context) (*Stats, error) {
	const query = `
		SELECT
			count(*),
			count(*) FILTER (WHERE expires_at <= now()),
			min(created_at),
			COALESCE(avg(EXTRACT(EPOCH FROM now() - created_at)), 0)::float8,
			COALESCE(sum(pg_column_size(article_ids)), 0)::bigint
		FROM notified_tokens`

	stats := &Stats{
		HitCount:  c.hitCount.Load(),
		MissCount: c.missCount.Load(),
	}
	if total := stats.HitCount + stats.MissCount; total > 0 {
		stats.HitRate = float64(stats.HitCount) / float64(total)
	}

	var oldest *time.Time
	var avgAgeSeconds float64
	err := c.pool.QueryRow(ctx, query).Scan(
		&stats.TotalEntries,
		&stats.ExpiredEntries,
		&oldest,
		&avgAgeSeconds,
		&stats.MemoryUsage,
	)
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	if oldest != nil {
		stats.OldestEntry = *oldest
	}
	stats.AverageAge = time.Duration(avgAgeSeconds * float64(time.Second))

	return stats, nil
}

// Close closes the connection pool
func (c *PostgresCache) Close() error {
	c.pool.Close()
	return nil
}
