package search

import (
	"context"

	"github.com/kailas-cloud/marketsearch/internal/domain/location"
	"github.com/kailas-cloud/marketsearch/internal/domain/search/request"
	"github.com/kailas-cloud/marketsearch/internal/domain/search/response"
)

// Backend issues search and listing calls to the marketplace.
type Backend interface {
	Search(ctx context.Context, req request.Request) (response.Variant, error)
	Browse(ctx context.Context, req request.Request) (response.General, error)
}

// AddressResolver turns a typed address into coordinates.
type AddressResolver interface {
	Geocode(ctx context.Context, address string) (*location.Info, error)
}
