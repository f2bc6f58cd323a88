package search

import (
	"slices"

	"github.com/kailas-cloud/marketsearch/internal/domain/location"
	"github.com/kailas-cloud/marketsearch/internal/domain/search/mode"
	"github.com/kailas-cloud/marketsearch/internal/domain/search/result"
	"github.com/kailas-cloud/marketsearch/internal/domain/search/sortby"
	"github.com/kailas-cloud/marketsearch/internal/usecase/ranking"
)

// Options are the view settings that live outside the query.
type Options struct {
	Sort sortby.Criterion
	// Visible is the "show more" window; 0 shows the first page.
	Visible int
}

// View is the presentation model of one search.
type View struct {
	Mode     mode.Mode
	Query    string
	Location *location.Info
	Sort     sortby.Criterion
	// Results is the visible window after filtering and sorting.
	Results []result.Result
	// Matched counts results that passed the client-side filters.
	Matched int
	// Total is the backend's count.
	Total   int
	Dropped int
	HasMore bool
	// HasServicesWithinRadius is nil when the backend did not say.
	HasServicesWithinRadius *bool
	Message                 string

	// all is the full ranked list behind the window.
	all []result.Result
	// backendOrder is the filtered list as the backend returned it; every re-sort starts from it.
	backendOrder []result.Result
}

// Empty reports a valid search with nothing to show.
func (v View) Empty() bool {
	return v.Matched == 0
}

// IsBrowse reports whether the view is the unfiltered listing.
func (v View) IsBrowse() bool {
	return v.Mode == mode.Browse
}

// Visible returns the window size currently shown.
func (v View) Visible() int {
	return len(v.Results)
}

// WithVisible re-windows the ranked list without another backend call.
func (v View) WithVisible(visible int) View {
	v.Results, v.HasMore = ranking.Page(v.all, visible)
	return v
}

// ShowMore grows the window by one page.
func (v View) ShowMore() View {
	return v.WithVisible(ranking.NextVisible(v.Visible()))
}

// Resorted reorders the ranked list by another criterion, keeping the window size.
func (v View) Resorted(c sortby.Criterion) View {
	if !c.IsValid() {
		return v
	}
	visible := v.Visible()
	v.all = slices.Clone(v.backendOrder)
	ranking.Sort(v.all, c)
	v.Sort = c
	return v.WithVisible(visible)
}
