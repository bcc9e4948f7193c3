// Package cache provides the read-through cache in front of the resource
// store. Values are cached as JSON under fully qualified "namespace:key"
// slots; mutations clear slots with exact deletes or a glob when the affected
// key family is unbounded. The cache is an optimization only: any backend
// failure degrades to the producer, never to a failed request.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Metrics is the slice of observability the cache reports into.
type Metrics interface {
	RecordCache(namespace, outcome string)
}

// Cache is the invalidation-driven read-through layer.
type Cache struct {
	store   Store
	ttl     time.Duration
	logger  *zap.Logger
	metrics Metrics
}

// New builds a cache over the given store. ttl is a safety net; zero disables
// expiry entirely and correctness is carried by invalidation alone.
func New(store Store, ttl time.Duration, logger *zap.Logger, metrics Metrics) *Cache {
	return &Cache{store: store, ttl: ttl, logger: logger, metrics: metrics}
}

// Key builds the fully qualified cache key.
func Key(namespace, key string) string {
	return namespace + ":" + key
}

// Fetch returns the cached value for (namespace, key), or runs the producer,
// stores its result and returns it. A producer failure stores nothing; a
// store failure falls through to the producer.
func Fetch[T any](ctx context.Context, c *Cache, namespace, key string, producer func(context.Context) (T, error)) (T, error) {
	var zero T
	fullKey := Key(namespace, key)

	raw, err := c.store.Get(ctx, fullKey)
	switch {
	case err == nil:
		var cached T
		if err := json.Unmarshal(raw, &cached); err == nil {
			c.record(namespace, "hit")
			return cached, nil
		}
		// Undecodable entry: drop it and fall through to the producer.
		_ = c.store.Del(ctx, fullKey)
	case errors.Is(err, ErrMiss):
		c.record(namespace, "miss")
	default:
		c.record(namespace, "bypass")
		c.logger.Warn("cache read failed, falling back to store", zap.String("key", fullKey), zap.Error(err))
	}

	value, err := producer(ctx)
	if err != nil {
		return zero, err
	}

	if encoded, err := json.Marshal(value); err == nil {
		if err := c.store.Set(ctx, fullKey, encoded, c.ttl); err != nil {
			c.logger.Warn("cache write failed", zap.String("key", fullKey), zap.Error(err))
		}
	}
	return value, nil
}

// InvalidateKeys removes an exact list of fully qualified keys.
func (c *Cache) InvalidateKeys(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := c.store.Del(ctx, keys...); err != nil {
		c.logger.Warn("cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

// InvalidatePattern removes every key matching the glob. Used when a mutation
// touches an unbounded family of derived keys, e.g. paginated admin listings.
func (c *Cache) InvalidatePattern(ctx context.Context, pattern string) {
	if err := c.store.DelPattern(ctx, pattern); err != nil {
		c.logger.Warn("cache pattern invalidation failed", zap.String("pattern", pattern), zap.Error(err))
	}
}

func (c *Cache) record(namespace, outcome string) {
	if c.metrics != nil {
		c.metrics.RecordCache(namespace, outcome)
	}
}
