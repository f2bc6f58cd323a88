package rest

import (
	"context"
	"encoding/json"

	"github.com/kailas-cloud/marketsearch/internal/domain"
	"github.com/kailas-cloud/marketsearch/internal/domain/location"
)

// Compile-time checks.
var (
	_ domain.Geocoder  = (*Client)(nil)
	_ domain.IPLocator = (*Client)(nil)
)

type geocodeBody struct {
	Address string `json:"address"`
}

type reverseGeocodeBody struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// LocationFromIP asks the backend to locate the caller by IP.
// A null payload yields a nil Info and no error.
func (c *Client) LocationFromIP(ctx context.Context) (*location.Info, error) {
	data, err := c.get(ctx, "location_ip", "/services/location/ip", nil)
	if err != nil {
		return nil, err
	}
	return decodeInfo(data)
}

// Geocode resolves an address to a location.
func (c *Client) Geocode(ctx context.Context, address string) (*location.Info, error) {
	data, err := c.post(ctx, "geocode", "/services/location/geocode", geocodeBody{Address: address})
	if err != nil {
		return nil, err
	}
	return decodeInfo(data)
}

// ReverseGeocode resolves coordinates to an address.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lng float64) (*location.Info, error) {
	data, err := c.post(ctx, "reverse_geocode", "/services/location/reverse-geocode",
		reverseGeocodeBody{Latitude: lat, Longitude: lng})
	if err != nil {
		return nil, err
	}
	return decodeInfo(data)
}

func decodeInfo(data json.RawMessage) (*location.Info, error) {
	if isNull(data) {
		return nil, nil //nolint:nilnil // null data means "no location", not a failure
	}
	var info location.Info
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, malformed(err)
	}
	return &info, nil
}
