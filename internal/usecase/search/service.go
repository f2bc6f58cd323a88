package search

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/kailas-cloud/marketsearch/internal/domain"
	"github.com/kailas-cloud/marketsearch/internal/domain/location"
	"github.com/kailas-cloud/marketsearch/internal/domain/search/mode"
	"github.com/kailas-cloud/marketsearch/internal/domain/search/query"
	"github.com/kailas-cloud/marketsearch/internal/domain/search/request"
	"github.com/kailas-cloud/marketsearch/internal/domain/search/response"
	"github.com/kailas-cloud/marketsearch/internal/domain/search/sortby"
	"github.com/kailas-cloud/marketsearch/internal/metrics"
	"github.com/kailas-cloud/marketsearch/internal/usecase/ranking"
)

// Service composes a query into a backend call and ranks the answer into a View.
type Service struct {
	backend  Backend
	resolver AddressResolver
	logger   *zap.Logger
}

// New creates a search service. resolver may be nil: address-only filters
// are then sent as a label and the backend does the geocoding.
func New(backend Backend, resolver AddressResolver, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{backend: backend, resolver: resolver, logger: logger}
}

// Search runs one query. A query with neither text nor location browses the
// listing instead of issuing a search. An empty result set is not an error.
func (s *Service) Search(ctx context.Context, q query.Query, opts Options) (View, error) {
	if opts.Sort == "" {
		opts.Sort = sortby.Default
	}
	if !opts.Sort.IsValid() {
		return View{}, fmt.Errorf("%w: sort criterion %q", domain.ErrInvalidQuery, opts.Sort)
	}

	if !q.IsSearch() {
		return s.browse(ctx, q, opts)
	}

	q = s.geocodeAddress(ctx, q)

	req, err := request.Build(&q)
	if err != nil {
		return View{}, fmt.Errorf("build request: %w", err)
	}

	variant, err := s.backend.Search(ctx, req)
	if err != nil {
		return View{}, fmt.Errorf("search services: %w", err)
	}

	batch, err := response.Transform(variant)
	if err != nil {
		return View{}, fmt.Errorf("transform results: %w", err)
	}
	return s.present(q, opts, batch, batch.Mode)
}

func (s *Service) browse(ctx context.Context, q query.Query, opts Options) (View, error) {
	req, err := request.BuildBrowse(&q)
	if err != nil {
		return View{}, fmt.Errorf("build browse request: %w", err)
	}
	listing, err := s.backend.Browse(ctx, req)
	if err != nil {
		return View{}, fmt.Errorf("browse services: %w", err)
	}
	batch, err := response.Transform(listing)
	if err != nil {
		return View{}, fmt.Errorf("transform listing: %w", err)
	}
	return s.present(q, opts, batch, mode.Browse)
}

// geocodeAddress fills coordinates for an address-only filter when a resolver is wired.
// On failure the address travels as typed.
func (s *Service) geocodeAddress(ctx context.Context, q query.Query) query.Query {
	loc := q.Location
	if s.resolver == nil || loc == nil || loc.HasCoordinates() || loc.IsEmpty() {
		return q
	}
	info, err := s.resolver.Geocode(ctx, loc.Address)
	if err != nil || !info.HasCoordinates() {
		s.logger.Info("Address not geocoded, sending as typed",
			zap.String("address", loc.Address), zap.Error(err))
		return q
	}
	lat, lng := *info.Latitude, *info.Longitude
	q.Location = &location.Filter{Latitude: &lat, Longitude: &lng, Address: loc.Address, RadiusKm: loc.RadiusKm}
	return q
}

func (s *Service) present(q query.Query, opts Options, batch response.Batch, m mode.Mode) (View, error) {
	if len(batch.Drops) > 0 {
		for _, d := range batch.Drops {
			s.logger.Warn("Dropped result", zap.String("id", d.ID), zap.Error(d.Err))
		}
		metrics.ResultsDroppedTotal.WithLabelValues("invalid_price").Add(float64(len(batch.Drops)))
	}
	metrics.SearchesTotal.WithLabelValues(string(m)).Inc()

	price, err := q.PriceRange()
	if err != nil {
		return View{}, fmt.Errorf("price range: %w", err)
	}
	rankOpts := ranking.Options{
		Sort:                   opts.Sort,
		Price:                  price,
		IncludeWithoutLocation: q.IncludeWithoutLocation,
	}
	if r, ok := q.Location.Radius(); ok {
		rankOpts.RadiusKm = &r
	}

	filtered := ranking.Filter(batch.Results, rankOpts)
	ranked := slices.Clone(filtered)
	ranking.Sort(ranked, opts.Sort)
	visible, more := ranking.Page(ranked, opts.Visible)

	total := batch.Count
	if total == 0 {
		total = len(batch.Results)
	}

	return View{
		Mode:                    m,
		Query:                   batch.Query,
		Location:                batch.Location,
		Sort:                    opts.Sort,
		Results:                 visible,
		Matched:                 len(ranked),
		Total:                   total,
		Dropped:                 len(batch.Drops),
		HasMore:                 more,
		HasServicesWithinRadius: batch.HasServicesWithinRadius,
		Message:                 batch.Message,
		all:                     ranked,
		backendOrder:            filtered,
	}, nil
}
