// Package geolocation turns the caller's environment into a search location:
// device fix first, IP lookup as fallback, never a made-up default.
package geolocation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/marketsearch/internal/domain"
	"github.com/kailas-cloud/marketsearch/internal/domain/geo"
	"github.com/kailas-cloud/marketsearch/internal/domain/location"
)

// Resolver resolves, geocodes and reverse-geocodes locations.
type Resolver struct {
	device   DeviceLocator
	ip       domain.IPLocator
	geocoder domain.Geocoder
	opts     PositionOptions
	logger   *zap.Logger
}

// New creates a resolver. device may be nil on hosts without a positioning capability.
func New(device DeviceLocator, ip domain.IPLocator, geocoder domain.Geocoder, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		device:   device,
		ip:       ip,
		geocoder: geocoder,
		opts:     DefaultPositionOptions(),
		logger:   logger,
	}
}

// WithPositionOptions overrides the device request options.
func (r *Resolver) WithPositionOptions(opts PositionOptions) *Resolver {
	r.opts = opts
	return r
}

// CurrentLocation asks the device for a high-accuracy fix within the timeout.
// Denial is ErrGeolocationDenied; everything else, timeout included, is ErrGeolocationUnavailable.
func (r *Resolver) CurrentLocation(ctx context.Context) (geo.Coordinates, error) {
	if r.device == nil {
		return geo.Coordinates{}, fmt.Errorf("%w: no device locator", domain.ErrGeolocationUnavailable)
	}

	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}

	pos, err := r.device.CurrentPosition(ctx, r.opts)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrGeolocationDenied), errors.Is(err, domain.ErrGeolocationUnavailable):
		return geo.Coordinates{}, err
	case errors.Is(err, context.DeadlineExceeded):
		return geo.Coordinates{}, fmt.Errorf("%w: timed out after %s", domain.ErrGeolocationUnavailable, r.opts.Timeout)
	default:
		return geo.Coordinates{}, fmt.Errorf("%w: %w", domain.ErrGeolocationUnavailable, err)
	}

	if !pos.Coordinates.Valid() {
		return geo.Coordinates{}, fmt.Errorf("%w: position out of range", domain.ErrGeolocationUnavailable)
	}
	return pos.Coordinates, nil
}

// LocationFromIP asks the backend where the caller's IP is.
// The result may carry coordinates without an address.
func (r *Resolver) LocationFromIP(ctx context.Context) (*location.Info, error) {
	if r.ip == nil {
		return nil, domain.ErrLocationUnavailable
	}
	info, err := r.ip.LocationFromIP(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrLocationUnavailable, err)
	}
	if info == nil || (!info.HasCoordinates() && info.DisplayAddress() == "") {
		return nil, domain.ErrLocationUnavailable
	}
	if info.Source == "" {
		info.Source = location.SourceIP
	}
	return info, nil
}

// ReverseGeocode returns a display address for a point.
// On failure it still returns the coordinates rounded to 4 decimals,
// together with an ErrGeocodingFailed error the caller may ignore.
func (r *Resolver) ReverseGeocode(ctx context.Context, lat, lng float64) (string, error) {
	fallback := geo.FormatCoordinates(lat, lng)
	if r.geocoder == nil {
		return fallback, fmt.Errorf("%w: no geocoder", domain.ErrGeocodingFailed)
	}
	info, err := r.geocoder.ReverseGeocode(ctx, lat, lng)
	if err != nil {
		return fallback, fmt.Errorf("%w: %w", domain.ErrGeocodingFailed, err)
	}
	addr := info.DisplayAddress()
	if addr == "" {
		return fallback, fmt.Errorf("%w: empty address", domain.ErrGeocodingFailed)
	}
	return addr, nil
}

// Geocode resolves an address to a location with coordinates.
func (r *Resolver) Geocode(ctx context.Context, address string) (*location.Info, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, fmt.Errorf("%w: empty address", domain.ErrGeocodingFailed)
	}
	if r.geocoder == nil {
		return nil, fmt.Errorf("%w: no geocoder", domain.ErrGeocodingFailed)
	}
	info, err := r.geocoder.Geocode(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrGeocodingFailed, err)
	}
	if !info.HasCoordinates() {
		return nil, fmt.Errorf("%w: no coordinates for %q", domain.ErrGeocodingFailed, address)
	}
	if info.Address == "" {
		info.Address = address
	}
	info.Source = location.SourceManual
	return info, nil
}

// Resolve tries the device, then the IP lookup. When both fail the result is
// ErrLocationUnavailable and the caller must ask for manual entry.
func (r *Resolver) Resolve(ctx context.Context) (*location.Info, error) {
	coords, devErr := r.CurrentLocation(ctx)
	if devErr == nil {
		lat, lng := coords.Latitude, coords.Longitude
		addr, err := r.ReverseGeocode(ctx, lat, lng)
		if err != nil {
			r.logger.Warn("Reverse geocoding failed, showing coordinates",
				zap.String("coordinates", addr), zap.Error(err))
		}
		return &location.Info{Latitude: &lat, Longitude: &lng, Address: addr, Source: location.SourceDevice}, nil
	}

	r.logger.Debug("Device location failed, falling back to IP", zap.Error(devErr))

	info, ipErr := r.LocationFromIP(ctx)
	if ipErr != nil {
		r.logger.Info("Unable to detect location", zap.NamedError("device", devErr), zap.NamedError("ip", ipErr))
		return nil, fmt.Errorf("%w: device: %w; ip: %w", domain.ErrLocationUnavailable, devErr, ipErr)
	}
	return info, nil
}
