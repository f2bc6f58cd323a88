package marketsearch

import (
	"context"
	"fmt"
	"time"
)

// Locate resolves where the user is: the device position (reverse geocoded)
// first, then the backend's IP lookup. Both failing is ErrLocationUnavailable.
func (c *Client) Locate(ctx context.Context) (_ *LocationInfo, err error) {
	start := time.Now()
	defer func() { c.obs.observe("locate", start, err) }()

	info, err := c.locator.Resolve(ctx)
	if err != nil {
		return nil, fmt.Errorf("locate: %w", err)
	}
	return info, nil
}

// CurrentLocation asks the device for a position.
// Fails with ErrGeolocationDenied or ErrGeolocationUnavailable.
func (c *Client) CurrentLocation(ctx context.Context) (_ Coordinates, err error) {
	start := time.Now()
	defer func() { c.obs.observe("current_location", start, err) }()

	coords, err := c.locator.CurrentLocation(ctx)
	if err != nil {
		return Coordinates{}, fmt.Errorf("current location: %w", err)
	}
	return coords, nil
}

// LocationFromIP asks the backend where the caller's IP is.
func (c *Client) LocationFromIP(ctx context.Context) (_ *LocationInfo, err error) {
	start := time.Now()
	defer func() { c.obs.observe("location_from_ip", start, err) }()

	info, err := c.locator.LocationFromIP(ctx)
	if err != nil {
		return nil, fmt.Errorf("location from ip: %w", err)
	}
	return info, nil
}

// Geocode turns an address into a location.
func (c *Client) Geocode(ctx context.Context, address string) (_ *LocationInfo, err error) {
	start := time.Now()
	defer func() { c.obs.observe("geocode", start, err) }()

	info, err := c.locator.Geocode(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("geocode: %w", err)
	}
	return info, nil
}

// ReverseGeocode returns a readable address for a point. On failure it still
// returns a coordinate label alongside ErrGeocodingFailed, so callers can show it.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lng float64) (_ string, err error) {
	start := time.Now()
	defer func() { c.obs.observe("reverse_geocode", start, err) }()

	addr, err := c.locator.ReverseGeocode(ctx, lat, lng)
	if err != nil {
		return addr, fmt.Errorf("reverse geocode: %w", err)
	}
	return addr, nil
}
