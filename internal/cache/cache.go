package cache

import (
	"context"
	"crypto/md5"
	"errors"
	"fmt"
	"time"

	"github.com/dexradar/token-news-monitor/internal/matcher"
	"github.com/dexradar/token-news-monitor/internal/news"
	"github.com/dexradar/token-news-monitor/internal/tokens"
)

// Cache interface defines cache operations
type Cache interface {
	Get(ctx context.Context, key string) (*CacheEntry, error)
	Set(ctx context.Context, key string, entry *CacheEntry) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Clear(ctx context.Context) error
	GetStats(ctx context.Context) (*Stats, error)
	Close() error
}

// CacheEntry records which articles were already notified for one token
type CacheEntry struct {
	Key         string    `json:"key"`
	TokenKey    string    `json:"token_key"`
	TokenName   string    `json:"token_name"`
	Chain       string    `json:"chain"`
	ArticleIDs  []string  `json:"article_ids"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
	AccessedAt  time.Time `json:"accessed_at"`
	AccessCount int       `json:"access_count"`
}

// HasArticle reports whether the article ID was already notified.
func (e *CacheEntry) HasArticle(id string) bool {
	for _, existing := range e.ArticleIDs {
		if existing == id {
			return true
		}
	}
	return false
}

// Stats represents cache statistics
type Stats struct {
	Backend        string        `json:"backend"`
	TotalEntries   int           `json:"total_entries"`
	HitCount       int64         `json:"hit_count"`
	MissCount      int64         `json:"miss_count"`
	HitRate        float64       `json:"hit_rate"`
	MemoryUsage    int64         `json:"memory_usage_bytes"`
	OldestEntry    time.Time     `json:"oldest_entry"`
	AverageAge     time.Duration `json:"average_age"`
	ExpiredEntries int           `json:"expired_entries"`
}

// Options selects and configures a backend.
type Options struct {
	Type        string
	Duration    time.Duration
	Bucket      string
	RedisURL    string
	DatabaseURL string
}

// Manager handles notification bookkeeping on top of a Cache
type Manager struct {
	cache   Cache
	backend string
}

// NewManager creates a new cache manager
func NewManager(ctx context.Context, options Options) (*Manager, error) {
	var cache Cache
	var err error

	switch options.Type {
	case "memory":
		cache = NewMemoryCache(options.Duration)
	case "cloud-storage":
		cache, err = NewCloudStorageCache(ctx, options.Bucket, options.Duration)
		if err != nil {
			return nil, fmt.Errorf("creating cloud storage cache: %w", err)
		}
	case "redis":
		cache, err = NewRedisCache(ctx, options.RedisURL, options.Duration)
		if err != nil {
			return nil, fmt.Errorf("creating redis cache: %w", err)
		}
	case "postgres":
		cache, err = NewPostgresCache(ctx, options.DatabaseURL, options.Duration)
		if err != nil {
			return nil, fmt.Errorf("creating postgres cache: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", options.Type)
	}

	return &Manager{cache: cache, backend: options.Type}, nil
}

// NewManagerWithCache wraps an existing cache.
func NewManagerWithCache(cache Cache, backend string) *Manager {
	return &Manager{cache: cache, backend: backend}
}

// FilterNotified drops the articles already notified for the match's token. The result is nil
// when nothing new is left.
func (m *Manager) FilterNotified(ctx context.Context, match matcher.Match) (*matcher.Match, error) {
	entry, err := m.cache.Get(ctx, GenerateKey(match.Token))
	if errors.Is(err, ErrCacheMiss) {
		return &match, nil
	}
	if err != nil {
		return nil, err
	}

	fresh := make([]news.Article, 0, len(match.Articles))
	for _, article := range match.Articles {
		if !entry.HasArticle(article.ID()) {
			fresh = append(fresh, article)
		}
	}
	if len(fresh) == 0 {
		return nil, nil
	}

	match.Articles = fresh
	match.ArticleCount = len(fresh)
	return &match, nil
}

// MarkNotified records the match's articles as notified. Previously notified articles of the
// same token are kept and the entry's lifetime starts over.
func (m *Manager) MarkNotified(ctx context.Context, match matcher.Match) error {
	key := GenerateKey(match.Token)

	entry, err := m.cache.Get(ctx, key)
	if errors.Is(err, ErrCacheMiss) {
		entry = &CacheEntry{}
	} else if err != nil {
		return err
	}

	entry.TokenKey = match.Token.Key()
	entry.TokenName = match.Token.Name
	entry.Chain = match.Token.Chain
	for _, article := range match.Articles {
		if id := article.ID(); !entry.HasArticle(id) {
			entry.ArticleIDs = append(entry.ArticleIDs, id)
		}
	}

	return m.cache.Set(ctx, key, entry)
}

// GetStats returns cache statistics
func (m *Manager) GetStats(ctx context.Context) (*Stats, error) {
	stats, err := m.cache.GetStats(ctx)
	if err != nil {
		return nil, err
	}
	stats.Backend = m.backend
	return stats, nil
}

// Clear clears all cached entries
func (m *Manager) Clear(ctx context.Context) error {
	return m.cache.Clear(ctx)
}

// Close closes the cache and stops background goroutines
func (m *Manager) Close() error {
	return m.cache.Close()
}

// GenerateKey generates a cache key for a token
func GenerateKey(token tokens.Token) string {
	// Create MD5 hash for consistent key length
	hash := md5.Sum([]byte(token.Key()))
	return fmt.Sprintf("token:%x", hash)
}

// estimateMemoryUsage estimates memory usage of a cache entry without JSON marshaling
func estimateMemoryUsage(entry *CacheEntry) int64 {
	size := int64(len(entry.Key) + len(entry.TokenKey) + len(entry.TokenName) + len(entry.Chain))
	for _, id := range entry.ArticleIDs {
		size += int64(len(id))
	}

	// Add estimated overhead for time.Time fields and slice headers
	size += 128

	return size
}

// Common cache errors
var (
	ErrCacheMiss = errors.New("cache miss")
)
