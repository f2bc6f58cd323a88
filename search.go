package marketsearch

import (
	"context"
	"fmt"
	"time"
)

// Search runs one query and returns its ranked view.
// A query with neither text nor location lists services instead (ModeBrowse).
// An empty result is a View with Empty() true, not an error.
func (c *Client) Search(ctx context.Context, q Query, opts ViewOptions) (_ View, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", start, err) }()

	view, err := c.searchSvc.Search(ctx, q, opts)
	if err != nil {
		return View{}, fmt.Errorf("search: %w", err)
	}
	return view, nil
}

// Browse lists services without a search filter.
func (c *Client) Browse(ctx context.Context, opts ViewOptions) (View, error) {
	return c.Search(ctx, Query{}, opts)
}
