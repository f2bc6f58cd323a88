package chi

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/kailas-cloud/marketsearch/internal/domain"
	"github.com/kailas-cloud/marketsearch/internal/domain/location"
	"github.com/kailas-cloud/marketsearch/internal/domain/search/query"
	"github.com/kailas-cloud/marketsearch/internal/domain/search/sortby"
	searchuc "github.com/kailas-cloud/marketsearch/internal/usecase/search"
)

// SearchDefaults are applied to /v1/search when the caller leaves a value unset.
type SearchDefaults struct {
	Threshold float64
	// RadiusKm is used with coordinates and no explicit radius. 0 means unlimited.
	RadiusKm float64
}

// searchFromValues maps /v1/search query parameters to a query and view options.
func searchFromValues(v url.Values, defaults SearchDefaults) (query.Query, searchuc.Options, error) {
	q := query.Query{
		Text:       v.Get("q"),
		CategoryID: strings.TrimSpace(v.Get("category")),
		ProviderID: strings.TrimSpace(v.Get("provider")),
	}

	var err error
	if q.MinPrice, err = optFloat(v, "minPrice"); err != nil {
		return query.Query{}, searchuc.Options{}, err
	}
	if q.MaxPrice, err = optFloat(v, "maxPrice"); err != nil {
		return query.Query{}, searchuc.Options{}, err
	}
	if q.Threshold, err = optFloat(v, "threshold"); err != nil {
		return query.Query{}, searchuc.Options{}, err
	}
	if q.Threshold == nil && defaults.Threshold > 0 {
		t := defaults.Threshold
		q.Threshold = &t
	}
	if q.Limit, err = optInt(v, "limit"); err != nil {
		return query.Query{}, searchuc.Options{}, err
	}
	if q.IncludeWithoutLocation, err = optBool(v, "includeWithoutLocation"); err != nil {
		return query.Query{}, searchuc.Options{}, err
	}
	if q.Location, err = locationFromValues(v, defaults.RadiusKm); err != nil {
		return query.Query{}, searchuc.Options{}, err
	}

	var opts searchuc.Options
	if opts.Sort, err = sortby.Parse(v.Get("sort")); err != nil {
		return query.Query{}, searchuc.Options{}, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
	}
	visible, err := optInt(v, "visible")
	if err != nil {
		return query.Query{}, searchuc.Options{}, err
	}
	if visible != nil {
		if *visible < 0 {
			return query.Query{}, searchuc.Options{}, fmt.Errorf("%w: visible must not be negative", domain.ErrInvalidQuery)
		}
		opts.Visible = *visible
	}
	return q, opts, nil
}

func locationFromValues(v url.Values, defaultRadius float64) (*location.Filter, error) {
	lat, err := optFloat(v, "lat")
	if err != nil {
		return nil, err
	}
	lng, err := optFloat(v, "lng")
	if err != nil {
		return nil, err
	}
	if (lat == nil) != (lng == nil) {
		return nil, fmt.Errorf("%w: lat and lng must be set together", domain.ErrInvalidQuery)
	}
	radius, err := optFloat(v, "radius")
	if err != nil {
		return nil, err
	}
	address := strings.TrimSpace(v.Get("address"))

	if lat == nil && address == "" {
		return nil, nil
	}
	f := &location.Filter{Latitude: lat, Longitude: lng, Address: address, RadiusKm: radius}
	if f.RadiusKm == nil && defaultRadius > 0 {
		r := defaultRadius
		f.RadiusKm = &r
	}
	return f, nil
}

func optFloat(v url.Values, key string) (*float64, error) {
	s := strings.TrimSpace(v.Get(key))
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("%w: %s must be a number", domain.ErrInvalidQuery, key)
	}
	return &f, nil
}

func optInt(v url.Values, key string) (*int, error) {
	s := strings.TrimSpace(v.Get(key))
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidQuery, key)
	}
	return &n, nil
}

func optBool(v url.Values, key string) (bool, error) {
	s := strings.TrimSpace(v.Get(key))
	if s == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("%w: %s must be a boolean", domain.ErrInvalidQuery, key)
	}
	return b, nil
}
