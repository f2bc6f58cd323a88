package location

import (
	"strings"

	"github.com/kailas-cloud/marketsearch/internal/domain/geo"
)

// Source tells where a location came from.
type Source string

// Location source constants.
const (
	SourceDevice Source = "device"
	SourceIP     Source = "ip"
	SourceManual Source = "manual"
)

// Filter narrows a search geographically.
// Coordinates may be absent while an address still awaits geocoding.
type Filter struct {
	Latitude  *float64
	Longitude *float64
	Address   string
	// RadiusKm nil means no geographic limit.
	RadiusKm *float64
}

// HasCoordinates reports whether both latitude and longitude are set.
func (f *Filter) HasCoordinates() bool {
	return f != nil && f.Latitude != nil && f.Longitude != nil
}

// Coordinates returns the filter's point. ok is false for address-only filters.
func (f *Filter) Coordinates() (geo.Coordinates, bool) {
	if !f.HasCoordinates() {
		return geo.Coordinates{}, false
	}
	return geo.Coordinates{Latitude: *f.Latitude, Longitude: *f.Longitude}, true
}

// Radius returns the radius only when it is meaningful (coordinates present).
func (f *Filter) Radius() (float64, bool) {
	if !f.HasCoordinates() || f.RadiusKm == nil {
		return 0, false
	}
	return *f.RadiusKm, true
}

// IsEmpty reports whether the filter carries neither coordinates nor an address.
func (f *Filter) IsEmpty() bool {
	return f == nil || (!f.HasCoordinates() && strings.TrimSpace(f.Address) == "")
}

// NewFilter builds a filter around a point.
func NewFilter(lat, lng float64, address string, radiusKm *float64) *Filter {
	return &Filter{Latitude: &lat, Longitude: &lng, Address: address, RadiusKm: radiusKm}
}

// Info is the location payload returned by the backend's location endpoints.
// Every field is optional: an IP lookup may yield coordinates without an address.
type Info struct {
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Address   string   `json:"address,omitempty"`
	City      string   `json:"city,omitempty"`
	Region    string   `json:"region,omitempty"`
	Country   string   `json:"country,omitempty"`
	Source    Source   `json:"source,omitempty"`
}

// HasCoordinates reports whether both latitude and longitude are set.
func (i *Info) HasCoordinates() bool {
	return i != nil && i.Latitude != nil && i.Longitude != nil
}

// DisplayAddress returns the best human-readable label:
// address, then "city, region, country", then rounded coordinates.
func (i *Info) DisplayAddress() string {
	if i == nil {
		return ""
	}
	if a := strings.TrimSpace(i.Address); a != "" {
		return a
	}
	parts := make([]string, 0, 3)
	for _, p := range []string{i.City, i.Region, i.Country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) > 0 {
		return strings.Join(parts, ", ")
	}
	if i.HasCoordinates() {
		return geo.FormatCoordinates(*i.Latitude, *i.Longitude)
	}
	return ""
}

// ToFilter converts resolved info into a search filter with the given radius.
func (i *Info) ToFilter(radiusKm *float64) *Filter {
	f := &Filter{Address: i.DisplayAddress(), RadiusKm: radiusKm}
	if i.HasCoordinates() {
		lat, lng := *i.Latitude, *i.Longitude
		f.Latitude, f.Longitude = &lat, &lng
	}
	return f
}
