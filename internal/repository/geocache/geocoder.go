package geocache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mmcloughlin/geohash"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/marketsearch/internal/db"
	"github.com/kailas-cloud/marketsearch/internal/domain"
	"github.com/kailas-cloud/marketsearch/internal/domain/location"
)

// DefaultTTL keeps geocoding answers for 30 days; addresses rarely move.
const DefaultTTL = 30 * 24 * time.Hour

var (
	forwardPrefix = domain.KeyPrefix + "geo:fwd:"
	reversePrefix = domain.KeyPrefix + "geo:rev:"
)

// store is the consumer interface for the geocode cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedGeocoder caches geocoding results in a key-value store.
type CachedGeocoder struct {
	inner      domain.Geocoder
	store      store
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with labels "kind" ("forward"/"reverse") and
// "result" ("hit"/"miss"), passed explicitly; nil disables counting.
func New(
	inner domain.Geocoder,
	s store,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedGeocoder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedGeocoder{
		inner:      inner,
		store:      s,
		ttl:        DefaultTTL,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// WithTTL overrides the cache lifetime.
func (c *CachedGeocoder) WithTTL(ttl time.Duration) *CachedGeocoder {
	if ttl > 0 {
		c.ttl = ttl
	}
	return c
}

// Geocode returns a cached lookup or asks the inner geocoder.
func (c *CachedGeocoder) Geocode(ctx context.Context, address string) (*location.Info, error) {
	key := forwardKey(address)
	if info, ok := c.getFromCache(ctx, key); ok {
		c.incCache("forward", "hit")
		return info, nil
	}
	c.incCache("forward", "miss")

	info, err := c.inner.Geocode(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("geocode address: %w", err)
	}
	if info.HasCoordinates() {
		c.putToCache(ctx, key, info)
	}
	return info, nil
}

// ReverseGeocode returns a cached address or asks the inner geocoder.
func (c *CachedGeocoder) ReverseGeocode(ctx context.Context, lat, lng float64) (*location.Info, error) {
	key := reverseKey(lat, lng)
	if info, ok := c.getFromCache(ctx, key); ok {
		c.incCache("reverse", "hit")
		return info, nil
	}
	c.incCache("reverse", "miss")

	info, err := c.inner.ReverseGeocode(ctx, lat, lng)
	if err != nil {
		return nil, fmt.Errorf("reverse geocode: %w", err)
	}
	if info.DisplayAddress() != "" {
		c.putToCache(ctx, key, info)
	}
	return info, nil
}

func (c *CachedGeocoder) incCache(kind, result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(kind, result).Inc()
	}
}

// forwardKey hashes the normalized address: case and whitespace do not matter.
func forwardKey(address string) string {
	norm := strings.Join(strings.Fields(strings.ToLower(address)), " ")
	h := sha256.Sum256([]byte(norm))
	return forwardPrefix + hex.EncodeToString(h[:])
}

// reversePrecision is a geohash cell of roughly 5x5 m, so jittery fixes share an entry.
const reversePrecision = 9

func reverseKey(lat, lng float64) string {
	return reversePrefix + geohash.EncodeWithPrecision(lat, lng, reversePrecision)
}

func (c *CachedGeocoder) getFromCache(ctx context.Context, key string) (*location.Info, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached location", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}

	var info location.Info
	if err = json.Unmarshal(data, &info); err != nil {
		c.logger.Warn("Failed to parse cached location", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return &info, true
}

func (c *CachedGeocoder) putToCache(ctx context.Context, key string, info *location.Info) {
	data, err := json.Marshal(info)
	if err != nil {
		c.logger.Warn("Failed to encode location", zap.String("key", key), zap.Error(err))
		return
	}
	if err = c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache location", zap.String("key", key), zap.Error(err))
	}
}
