package geolocation

import (
	"context"
	"time"

	"github.com/kailas-cloud/marketsearch/internal/domain/geo"
)

// Device position request defaults.
const (
	DefaultTimeout    = 10 * time.Second
	DefaultMaximumAge = 5 * time.Minute
)

// PositionOptions mirrors the platform geolocation request options.
type PositionOptions struct {
	HighAccuracy bool
	Timeout      time.Duration
	// MaximumAge is how old a cached position may be and still be returned.
	MaximumAge time.Duration
}

// DefaultPositionOptions returns high accuracy, 10 s timeout, 5 min cache.
func DefaultPositionOptions() PositionOptions {
	return PositionOptions{HighAccuracy: true, Timeout: DefaultTimeout, MaximumAge: DefaultMaximumAge}
}

// Position is a device fix.
type Position struct {
	Coordinates geo.Coordinates
	// AccuracyM is the reported accuracy radius in meters, 0 if unknown.
	AccuracyM float64
	Timestamp time.Time
}

// DeviceLocator is the platform geolocation capability.
// Implementations return domain.ErrGeolocationDenied or domain.ErrGeolocationUnavailable.
type DeviceLocator interface {
	CurrentPosition(ctx context.Context, opts PositionOptions) (Position, error)
}
