// Package ranking filters, orders and windows a normalized result batch.
package ranking

import (
	"cmp"
	"slices"

	"github.com/kailas-cloud/marketsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/marketsearch/internal/domain/search/result"
	"github.com/kailas-cloud/marketsearch/internal/domain/search/sortby"
)

// PageStep is how many more results "show more" reveals.
const PageStep = 12

// Options controls Apply.
type Options struct {
	Sort                   sortby.Criterion
	Price                  filter.PriceRange
	RadiusKm               *float64
	IncludeWithoutLocation bool
}

// Apply runs the radius filter, then the price filter, then the sort.
// The input slice is not modified.
func Apply(results []result.Result, opts Options) []result.Result {
	out := Filter(results, opts)
	Sort(out, opts.Sort)
	return out
}

// Filter runs the radius and price filters on a copy, keeping backend order.
func Filter(results []result.Result, opts Options) []result.Result {
	out := slices.Clone(results)
	if opts.RadiusKm != nil {
		out = FilterByRadius(out, *opts.RadiusKm, opts.IncludeWithoutLocation)
	}
	return FilterByPrice(out, opts.Price)
}

// FilterByPrice keeps results whose price lies inside the range.
// An inactive range keeps everything.
func FilterByPrice(results []result.Result, r filter.PriceRange) []result.Result {
	if !r.IsActive() {
		return results
	}
	return slices.DeleteFunc(results, func(res result.Result) bool {
		return !r.Contains(res.Price().Amount)
	})
}

// FilterByRadius drops located results farther than radiusKm.
// Results without a location are kept only when includeWithoutLocation is set;
// the flag never lets a located result past the radius.
func FilterByRadius(results []result.Result, radiusKm float64, includeWithoutLocation bool) []result.Result {
	return slices.DeleteFunc(results, func(res result.Result) bool {
		d, ok := res.DistanceKm()
		if !ok {
			return !includeWithoutLocation
		}
		return d > radiusKm
	})
}

// Sort orders results in place by the criterion. The sort is stable.
func Sort(results []result.Result, c sortby.Criterion) {
	switch c.Effective() {
	case sortby.Distance:
		slices.SortStableFunc(results, compareDistance)
	case sortby.Price:
		slices.SortStableFunc(results, func(a, b result.Result) int {
			return cmp.Compare(a.Price().Amount, b.Price().Amount)
		})
	default:
		slices.SortStableFunc(results, func(a, b result.Result) int {
			return cmp.Compare(b.Similarity(), a.Similarity())
		})
	}
}

// compareDistance sorts ascending with locationless results last.
func compareDistance(a, b result.Result) int {
	da, okA := a.DistanceKm()
	db, okB := b.DistanceKm()
	switch {
	case !okA && !okB:
		return 0
	case !okA:
		return 1
	case !okB:
		return -1
	default:
		return cmp.Compare(da, db)
	}
}

// Page returns the first visible results and whether more remain.
// A non-positive visible count shows one PageStep.
func Page(results []result.Result, visible int) ([]result.Result, bool) {
	if visible <= 0 {
		visible = PageStep
	}
	if visible >= len(results) {
		return results, false
	}
	return results[:visible], true
}

// NextVisible grows the window by one PageStep.
func NextVisible(visible int) int {
	if visible <= 0 {
		return 2 * PageStep
	}
	return visible + PageStep
}
