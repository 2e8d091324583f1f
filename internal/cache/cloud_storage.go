package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// CloudStorageCache keeps one JSON object per token in a Google Cloud Storage bucket
type CloudStorageCache struct {
	client     *storage.Client
	bucketName string
	duration   time.Duration
	prefix     string
}

// NewCloudStorageCache creates a new Cloud Storage cache
func NewCloudStorageCache(ctx context.Context, bucketName string, duration time.Duration) (*CloudStorageCache, error) {
	if bucketName == "" {
		return nil, errors.New("bucket name is required")
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating storage client: %w", err)
	}

	return &CloudStorageCache{
		client:     client,
		bucketName: bucketName,
		duration:   duration,
		prefix:     "notified/",
	}, nil
}

func (c *CloudStorageCache) object(key string) *storage.ObjectHandle {
	return c.client.Bucket(c.bucketName).Object(c.prefix + key + ".json")
}

// Get retrieves an entry from Cloud Storage
func (c *CloudStorageCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	reader, err := c.object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("opening object reader: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading object data: %w", err)
	}

	var entry CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("unmarshaling cache entry: %w", err)
	}

	if time.Now().After(entry.ExpiresAt) {
		if err := c.Delete(ctx, key); err != nil {
			return nil, fmt.Errorf("deleting expired entry: %w", err)
		}
		return nil, ErrCacheMiss
	}

	return &entry, nil
}

// Set stores an entry in Cloud Storage
func (c *CloudStorageCache) Set(ctx context.Context, key string, entry *CacheEntry) error {
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

	writer := c.object(key).NewWriter(ctx)
	writer.ContentType = "application/json"

	if _, err := writer.Write(data); err != nil {
		writer.Close()
		return fmt.Errorf("writing object data: %w", err)
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("closing object writer: %w", err)
	}

	return nil
}

// Delete removes an entry from Cloud Storage
func (c *CloudStorageCache) Delete(ctx context.Context, key string) error {
	if err := c.object(key).Delete(ctx); err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("deleting object: %w", err)
	}
	return nil
}

// Exists checks if an unexpired entry exists in Cloud Storage
func (c *CloudStorageCache) Exists(ctx context.Context, key string) (bool, error) {
	attrs, err := c.object(key).Attrs(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("getting object attributes: %w", err)
	}

	return time.Since(attrs.Updated) < c.duration, nil
}

// Clear removes all entries from Cloud Storage with the cache prefix
func (c *CloudStorageCache) Clear(ctx context.Context) error {
	bucket := c.client.Bucket(c.bucketName)
	it := bucket.Objects(ctx, &storage.Query{Prefix: c.prefix})

	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return fmt.Errorf("listing objects: %w", err)
		}

		if err := bucket.Object(attrs.Name).Delete(ctx); err != nil {
			return fmt.Errorf("deleting object %s: %w", attrs.Name, err)
		}
	}

	return nil
}

// GetStats returns cache statistics for Cloud Storage. Hits and misses are not tracked.
func (c *CloudStorageCache) GetStats(ctx context.Context) (*Stats, error) {
	it := c.client.Bucket(c.bucketName).Objects(ctx, &storage.Query{Prefix: c.prefix})

	stats := &Stats{}
	var totalAge time.Duration
	now := time.Now()

	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("listing objects: %w", err)
		}

		stats.TotalEntries++
		stats.MemoryUsage += attrs.Size

		if stats.OldestEntry.IsZero() || attrs.Created.Before(stats.OldestEntry) {
			stats.OldestEntry = attrs.Created
		}
		totalAge += now.Sub(attrs.Created)

		if now.Sub(attrs.Updated) >= c.duration {
			stats.ExpiredEntries++
		}
	}

	if stats.TotalEntries > 0 {
		stats.AverageAge = totalAge / time.Duration(stats.TotalEntries)
	}

	return stats, nil
}

// Close closes the Cloud Storage client
func (c *CloudStorageCache) Close() error {
	return c.client.Close()
}
