package marketsearch

import (
	"context"
)

// SearchBuilder is a fluent builder for one search.
type SearchBuilder struct {
	client *Client

	q    Query
	loc  LocationFilter
	opts ViewOptions
}

// NewSearch starts a search with the default similarity threshold.
func (c *Client) NewSearch() *SearchBuilder {
	t := DefaultThreshold
	return &SearchBuilder{client: c, q: Query{Threshold: &t}}
}

// Text sets the free-text query.
func (b *SearchBuilder) Text(text string) *SearchBuilder {
	b.q.Text = text
	return b
}

// Near sets the point to search around.
func (b *SearchBuilder) Near(lat, lng float64) *SearchBuilder {
	b.loc.Latitude = &lat
	b.loc.Longitude = &lng
	return b
}

// Km limits results to a radius around the Near point.
// Without Near the radius is ignored.
func (b *SearchBuilder) Km(radius float64) *SearchBuilder {
	b.loc.RadiusKm = &radius
	return b
}

// Address sets a typed address. Without Near it is geocoded before searching.
func (b *SearchBuilder) Address(address string) *SearchBuilder {
	b.loc.Address = address
	return b
}

// At uses a resolved location (e.g. from Client.Locate) as the search point.
func (b *SearchBuilder) At(info *LocationInfo) *SearchBuilder {
	if info == nil {
		return b
	}
	f := info.ToFilter(b.loc.RadiusKm)
	b.loc = *f
	return b
}

// MinPrice sets the lower price bound.
func (b *SearchBuilder) MinPrice(p float64) *SearchBuilder {
	b.q.MinPrice = &p
	return b
}

// MaxPrice sets the upper price bound.
func (b *SearchBuilder) MaxPrice(p float64) *SearchBuilder {
	b.q.MaxPrice = &p
	return b
}

// Price sets both price bounds.
func (b *SearchBuilder) Price(minPrice, maxPrice float64) *SearchBuilder {
	return b.MinPrice(minPrice).MaxPrice(maxPrice)
}

// Category restricts results to a category ID.
func (b *SearchBuilder) Category(id string) *SearchBuilder {
	b.q.CategoryID = id
	return b
}

// Provider restricts results to a provider ID.
func (b *SearchBuilder) Provider(id string) *SearchBuilder {
	b.q.ProviderID = id
	return b
}

// Limit caps how many results the backend returns.
func (b *SearchBuilder) Limit(n int) *SearchBuilder {
	b.q.Limit = &n
	return b
}

// Threshold sets the minimum similarity (0..1).
func (b *SearchBuilder) Threshold(t float64) *SearchBuilder {
	b.q.Threshold = &t
	return b
}

// IncludeWithoutLocation keeps services without a fixed location in radius searches.
func (b *SearchBuilder) IncludeWithoutLocation() *SearchBuilder {
	b.q.IncludeWithoutLocation = true
	return b
}

// SortBy sets the result ordering.
func (b *SearchBuilder) SortBy(s SortBy) *SearchBuilder {
	b.opts.Sort = s
	return b
}

// Visible sets the "show more" window.
func (b *SearchBuilder) Visible(n int) *SearchBuilder {
	b.opts.Visible = n
	return b
}

// Query returns the composed query.
func (b *SearchBuilder) Query() Query {
	q := b.q
	if !b.loc.IsEmpty() {
		loc := b.loc
		q.Location = &loc
	}
	return q
}

// Options returns the composed view options.
func (b *SearchBuilder) Options() ViewOptions {
	return b.opts
}

// Do executes the search.
func (b *SearchBuilder) Do(ctx context.Context) (View, error) {
	return b.client.Search(ctx, b.Query(), b.opts)
}
