package rest

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/kailas-cloud/marketsearch/internal/domain/category"
	"github.com/kailas-cloud/marketsearch/internal/domain/search/request"
	"github.com/kailas-cloud/marketsearch/internal/domain/search/response"
)

// Search runs a semantic or hybrid search and decodes the tagged payload.
func (c *Client) Search(ctx context.Context, req request.Request) (response.Variant, error) {
	if req.Endpoint() == request.EndpointBrowse {
		return nil, fmt.Errorf("search: browse request sent to search")
	}
	u, err := req.URL(c.base)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	data, err := c.call(ctx, endpointLabel(req.Endpoint()), http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	v, err := response.Decode(data)
	if err != nil {
		return nil, malformed(err)
	}
	return v, nil
}

// Browse lists services without a search filter.
func (c *Client) Browse(ctx context.Context, req request.Request) (response.General, error) {
	u, err := req.URL(c.base)
	if err != nil {
		return response.General{}, fmt.Errorf("browse: %w", err)
	}
	data, err := c.call(ctx, "browse", http.MethodGet, u, nil)
	if err != nil {
		return response.General{}, err
	}
	if isNull(data) {
		return response.General{}, nil
	}
	g, err := response.DecodeBrowse(data)
	if err != nil {
		return response.General{}, malformed(err)
	}
	return g, nil
}

// Categories fetches root categories with nested children and service counts.
func (c *Client) Categories(ctx context.Context) ([]*category.Category, error) {
	data, err := c.get(ctx, "categories", "/categories", url.Values{"includeChildren": {"true"}})
	if err != nil {
		return nil, err
	}
	if isNull(data) {
		return nil, nil
	}
	roots, err := category.Decode(data)
	if err != nil {
		return nil, malformed(err)
	}
	return roots, nil
}

func endpointLabel(e request.Endpoint) string {
	switch e {
	case request.EndpointSemantic:
		return "search_semantic"
	case request.EndpointHybrid:
		return "search_hybrid"
	default:
		return "search"
	}
}

// Ping checks that the backend answers with a well-formed envelope.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.get(ctx, "ping", "/categories", nil); err != nil {
		return fmt.Errorf("ping backend: %w", err)
	}
	return nil
}
