package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pet-doctor/internal/common/logger"
	"pet-doctor/internal/common/metrics"
	"pet-doctor/internal/models"

	"github.com/redis/go-redis/v9"
)

var _ SupplementCatalog = (*CachedCatalog)(nil)

// CachedCatalog serves TopRated lookups from Redis. Cache errors are logged
// and bypassed; they never fail a lookup.
type CachedCatalog struct {
	inner  SupplementCatalog
	redis  *redis.Client
	ttl    time.Duration
	prefix string
	logger logger.Logger
}

func NewCachedCatalog(inner SupplementCatalog, rdb *redis.Client, ttl time.Duration, prefix string, log logger.Logger) *CachedCatalog {
	return &CachedCatalog{
		inner:  inner,
		redis:  rdb,
		ttl:    ttl,
		prefix: prefix,
		logger: log.WithFields(map[string]interface{}{"component": "catalog-cache"}),
	}
}

func (c *CachedCatalog) topRatedKey(category models.Category, limit int) string {
	return fmt.Sprintf("%s:top:%s:%d", c.prefix, category, limit)
}

func (c *CachedCatalog) TopRated(ctx context.Context, category models.Category, limit int) ([]models.Supplement, error) {
	key := c.topRatedKey(category, limit)

	cached, err := c.redis.Get(ctx, key).Result()
	switch {
	case err == nil:
		var items []models.Supplement
		if jsonErr := json.Unmarshal([]byte(cached), &items); jsonErr == nil {
			metrics.CatalogCacheRequests.WithLabelValues("hit").Inc()
			return items, nil
		}
		c.logger.Warn("discarding corrupt cache entry", map[string]interface{}{"key": key})
	case errors.Is(err, redis.Nil):
	default:
		c.logger.Warn("catalog cache read failed", map[string]interface{}{"key": key, "error": err.Error()})
	}
	metrics.CatalogCacheRequests.WithLabelValues("miss").Inc()

	items, err := c.inner.TopRated(ctx, category, limit)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(items); err == nil {
		if err := c.redis.Set(ctx, key, string(payload), c.ttl).Err(); err != nil {
			c.logger.Warn("catalog cache write failed", map[string]interface{}{"key": key, "error": err.Error()})
		}
	}
	return items, nil
}

func (c *CachedCatalog) List(ctx context.Context, filter models.SupplementFilter) ([]models.Supplement, error) {
	return c.inner.List(ctx, filter)
}

func (c *CachedCatalog) Seed(ctx context.Context) error {
	return c.inner.Seed(ctx)
}

// Reset reseeds the underlying catalog and drops every cached lookup.
func (c *CachedCatalog) Reset(ctx context.Context) error {
	if err := c.inner.Reset(ctx); err != nil {
		return err
	}
	if err := c.Flush(ctx); err != nil {
		c.logger.Warn("catalog cache flush failed", map[string]interface{}{"error": err.Error()})
	}
	return nil
}

// Flush deletes every key under the cache prefix.
func (c *CachedCatalog) Flush(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := c.redis.Scan(ctx, cursor, c.prefix+":*", 100).Result()
		if err != nil {
			return fmt.Errorf("scan cache keys: %w", err)
		}
		if len(keys) > 0 {
			if err := c.redis.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("delete cache keys: %w", err)
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}
