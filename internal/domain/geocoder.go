package domain

import (
	"context"

	"github.com/kailas-cloud/marketsearch/internal/domain/location"
)

// KeyPrefix namespaces every key this client writes to Redis.
const KeyPrefix = "marketsearch:"

// Geocoder is the shared address lookup contract between layers.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*location.Info, error)
	ReverseGeocode(ctx context.Context, lat, lng float64) (*location.Info, error)
}

// IPLocator resolves the caller's approximate location from its IP address.
type IPLocator interface {
	LocationFromIP(ctx context.Context) (*location.Info, error)
}
