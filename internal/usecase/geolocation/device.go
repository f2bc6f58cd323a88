package geolocation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kailas-cloud/marketsearch/internal/domain"
	"github.com/kailas-cloud/marketsearch/internal/domain/geo"
)

// CachedDeviceLocator reuses the last fix while it is younger than MaximumAge.
type CachedDeviceLocator struct {
	inner DeviceLocator
	now   func() time.Time

	mu   sync.Mutex
	last *Position
}

// NewCachedDeviceLocator wraps a device locator with a position cache.
func NewCachedDeviceLocator(inner DeviceLocator) *CachedDeviceLocator {
	return &CachedDeviceLocator{inner: inner, now: time.Now}
}

// CurrentPosition returns the cached fix when fresh enough, otherwise asks the device.
func (c *CachedDeviceLocator) CurrentPosition(ctx context.Context, opts PositionOptions) (Position, error) {
	c.mu.Lock()
	if c.last != nil && opts.MaximumAge > 0 && c.now().Sub(c.last.Timestamp) <= opts.MaximumAge {
		p := *c.last
		c.mu.Unlock()
		return p, nil
	}
	c.mu.Unlock()

	p, err := c.inner.CurrentPosition(ctx, opts)
	if err != nil {
		return Position{}, err
	}
	if p.Timestamp.IsZero() {
		p.Timestamp = c.now()
	}

	c.mu.Lock()
	c.last = &p
	c.mu.Unlock()
	return p, nil
}

// Forget drops the cached fix.
func (c *CachedDeviceLocator) Forget() {
	c.mu.Lock()
	c.last = nil
	c.mu.Unlock()
}

// StaticLocator always reports the same position. Used for hosts with a
// configured fixed location (CLI flags, server config).
type StaticLocator struct {
	Coordinates geo.Coordinates
}

// CurrentPosition implements DeviceLocator.
func (s StaticLocator) CurrentPosition(_ context.Context, _ PositionOptions) (Position, error) {
	if !s.Coordinates.Valid() {
		return Position{}, fmt.Errorf("%w: invalid static coordinates", domain.ErrGeolocationUnavailable)
	}
	return Position{Coordinates: s.Coordinates, Timestamp: time.Now()}, nil
}
