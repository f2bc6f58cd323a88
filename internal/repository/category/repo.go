package category

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/marketsearch/internal/db"
	"github.com/kailas-cloud/marketsearch/internal/domain"
	domcat "github.com/kailas-cloud/marketsearch/internal/domain/category"
)

// DefaultTTL bounds how stale the category tree (and its counts) may get.
const DefaultTTL = 10 * time.Minute

var treeKey = domain.KeyPrefix + "categories:tree"

// Source fetches the category tree from the backend.
type Source interface {
	Categories(ctx context.Context) ([]*domcat.Category, error)
}

// store is the consumer interface for the category cache (ISP).
type store interface {
	GetCached(ctx context.Context, key string, ttl time.Duration) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// CachedSource serves the category tree from Redis, refreshing it from the backend on miss.
type CachedSource struct {
	inner      Source
	store      store
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator around a category source.
// cacheTotal carries a "result" label ("hit"/"miss"); nil disables counting.
func New(inner Source, s store, cacheTotal *prometheus.CounterVec, logger *zap.Logger) *CachedSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedSource{inner: inner, store: s, ttl: DefaultTTL, cacheTotal: cacheTotal, logger: logger}
}

// WithTTL overrides the cache lifetime.
func (c *CachedSource) WithTTL(ttl time.Duration) *CachedSource {
	if ttl > 0 {
		c.ttl = ttl
	}
	return c
}

// Categories returns the cached tree or fetches a fresh one.
func (c *CachedSource) Categories(ctx context.Context) ([]*domcat.Category, error) {
	data, err := c.store.GetCached(ctx, treeKey, c.ttl)
	switch {
	case err == nil:
		roots, decErr := domcat.Decode(data)
		if decErr == nil {
			c.incCache("hit")
			return roots, nil
		}
		c.logger.Warn("Failed to parse cached categories", zap.Error(decErr))
	case !errors.Is(err, db.ErrKeyNotFound):
		c.logger.Warn("Failed to get cached categories", zap.Error(err))
	}
	c.incCache("miss")

	roots, err := c.inner.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch categories: %w", err)
	}

	if data, err = json.Marshal(roots); err != nil {
		c.logger.Warn("Failed to encode categories", zap.Error(err))
		return roots, nil
	}
	if err = c.store.SetWithTTL(ctx, treeKey, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache categories", zap.Error(err))
	}
	return roots, nil
}

// Invalidate drops the cached tree.
func (c *CachedSource) Invalidate(ctx context.Context) error {
	if err := c.store.Del(ctx, treeKey); err != nil {
		return fmt.Errorf("invalidate categories: %w", err)
	}
	return nil
}

func (c *CachedSource) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}
