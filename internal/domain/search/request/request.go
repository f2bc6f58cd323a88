package request

import (
	"fmt"
	"net/url"

	"github.com/oapi-codegen/runtime"

	"github.com/kailas-cloud/marketsearch/internal/domain"
	"github.com/kailas-cloud/marketsearch/internal/domain/search/query"
)

// Endpoint is a backend path the request targets.
type Endpoint string

// Backend search endpoints.
const (
	EndpointSemantic Endpoint = "/services/search"
	EndpointHybrid   Endpoint = "/services/search/hybrid"
	EndpointBrowse   Endpoint = "/services"
)

// Query parameter names as the backend spells them.
const (
	ParamQuery                  = "query"
	ParamLatitude               = "latitude"
	ParamLongitude              = "longitude"
	ParamAddress                = "address"
	ParamRadius                 = "radius"
	ParamLimit                  = "limit"
	ParamThreshold              = "threshold"
	ParamCategoryID             = "categoryId"
	ParamProviderID             = "providerId"
	ParamMinPrice               = "minPrice"
	ParamMaxPrice               = "maxPrice"
	ParamIncludeWithoutLocation = "includeWithoutLocation"
)

type param struct {
	name  string
	value any
}

// Request is a backend search call: an endpoint plus the parameters explicitly set.
type Request struct {
	endpoint Endpoint
	params   []param
}

// Build translates a query into a backend request.
// Coordinates select the hybrid endpoint; text alone selects the semantic one.
// No defaults are injected: an unset numeric parameter is simply absent.
func Build(q *query.Query) (Request, error) {
	if !q.IsSearch() {
		return Request{}, fmt.Errorf("%w: neither text nor location", domain.ErrInvalidQuery)
	}
	if err := q.Validate(); err != nil {
		return Request{}, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
	}

	text := q.SemanticText()
	hasCoords := q.Location.HasCoordinates()

	// Semantic-only: text long enough and nothing geographic.
	if !hasCoords && q.Location.IsEmpty() && text != "" {
		r := Request{endpoint: EndpointSemantic}
		r.add(ParamQuery, text)
		r.addCommon(q)
		return r, nil
	}

	r := Request{endpoint: EndpointHybrid}
	if text != "" {
		r.add(ParamQuery, text)
	}
	if hasCoords {
		r.add(ParamLatitude, *q.Location.Latitude)
		r.add(ParamLongitude, *q.Location.Longitude)
	}
	// An address without coordinates is a label for the backend to resolve,
	// never a substitute for lat/lng.
	if q.Location != nil && q.Location.Address != "" {
		r.add(ParamAddress, q.Location.Address)
	}
	if radius, ok := q.Location.Radius(); ok {
		r.add(ParamRadius, radius)
	}
	r.addCommon(q)
	if q.IncludeWithoutLocation {
		r.add(ParamIncludeWithoutLocation, true)
	}
	return r, nil
}

// BuildBrowse creates the unfiltered listing request used when there is nothing to search for.
// Category, provider, price and limit still apply.
func BuildBrowse(q *query.Query) (Request, error) {
	if _, err := q.PriceRange(); err != nil {
		return Request{}, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
	}
	r := Request{endpoint: EndpointBrowse}
	if q.Limit != nil {
		r.add(ParamLimit, *q.Limit)
	}
	r.addFilters(q)
	return r, nil
}

func (r *Request) addCommon(q *query.Query) {
	if q.Limit != nil {
		r.add(ParamLimit, *q.Limit)
	}
	if q.Threshold != nil {
		r.add(ParamThreshold, *q.Threshold)
	}
	r.addFilters(q)
}

func (r *Request) addFilters(q *query.Query) {
	if q.CategoryID != "" {
		r.add(ParamCategoryID, q.CategoryID)
	}
	if q.ProviderID != "" {
		r.add(ParamProviderID, q.ProviderID)
	}
	if q.MinPrice != nil {
		r.add(ParamMinPrice, *q.MinPrice)
	}
	if q.MaxPrice != nil {
		r.add(ParamMaxPrice, *q.MaxPrice)
	}
}

func (r *Request) add(name string, value any) {
	r.params = append(r.params, param{name: name, value: value})
}

// Endpoint returns the backend path.
func (r *Request) Endpoint() Endpoint { return r.endpoint }

// Has reports whether a parameter was set.
func (r *Request) Has(name string) bool {
	for _, p := range r.params {
		if p.name == name {
			return true
		}
	}
	return false
}

// Values serialises the parameters with form style, explode=true,
// the encoding oapi-codegen clients use for query parameters.
func (r *Request) Values() (url.Values, error) {
	out := make(url.Values, len(r.params))
	for _, p := range r.params {
		frag, err := runtime.StyleParamWithLocation("form", true, p.name, runtime.ParamLocationQuery, p.value)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", p.name, err)
		}
		parsed, err := url.ParseQuery(frag)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", p.name, err)
		}
		for k, vs := range parsed {
			for _, v := range vs {
				out.Add(k, v)
			}
		}
	}
	return out, nil
}

// URL joins the endpoint and encoded parameters onto base.
func (r *Request) URL(base *url.URL) (*url.URL, error) {
	vals, err := r.Values()
	if err != nil {
		return nil, err
	}
	u := base.JoinPath(string(r.endpoint))
	u.RawQuery = vals.Encode()
	return u, nil
}
