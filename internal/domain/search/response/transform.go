package response

import (
	"fmt"

	"github.com/kailas-cloud/marketsearch/internal/domain/location"
	"github.com/kailas-cloud/marketsearch/internal/domain/search/mode"
	"github.com/kailas-cloud/marketsearch/internal/domain/search/result"
)

// Drop records a result excluded during normalization.
type Drop struct {
	ID  string
	Err error
}

// Batch is the normalized outcome of one backend round trip.
type Batch struct {
	Mode                    mode.Mode
	Query                   string
	Location                *location.Info
	Results                 []result.Result
	Count                   int
	Drops                   []Drop
	HasServicesWithinRadius *bool
	Message                 string
}

// Transform normalizes any variant into a Batch.
// Results with an unparseable price are dropped and reported in Drops.
func Transform(v Variant) (Batch, error) {
	switch v := v.(type) {
	case Semantic:
		return transformSemantic(v), nil
	case Hybrid:
		return transformHybrid(v), nil
	case Location:
		return transformLocation(v), nil
	case General:
		return transformGeneral(v), nil
	case nil:
		return Batch{}, fmt.Errorf("transform: nil variant")
	default:
		return Batch{}, fmt.Errorf("transform: unsupported variant %T", v)
	}
}

// Semantic responses never carry a meaningful distance: there was no location filter.
func transformSemantic(v Semantic) Batch {
	results, drops := normalize(v.Items, false)
	return Batch{Mode: mode.Semantic, Query: v.Query, Results: results, Count: v.Count, Drops: drops}
}

func transformHybrid(v Hybrid) Batch {
	results, drops := normalize(v.Items, true)
	return Batch{
		Mode: mode.Hybrid, Query: v.Query, Location: v.Location,
		Results: results, Count: v.Count, Drops: drops,
		HasServicesWithinRadius: v.HasServicesWithinRadius, Message: v.Message,
	}
}

func transformLocation(v Location) Batch {
	results, drops := normalize(v.Items, true)
	return Batch{
		Mode: mode.Location, Location: v.Location,
		Results: results, Count: v.Count, Drops: drops,
		HasServicesWithinRadius: v.HasServicesWithinRadius, Message: v.Message,
	}
}

func transformGeneral(v General) Batch {
	results, drops := normalize(v.Items, false)
	return Batch{Mode: mode.General, Results: results, Count: v.Count, Drops: drops, Message: v.Message}
}

func normalize(items []Item, keepDistance bool) ([]result.Result, []Drop) {
	out := make([]result.Result, 0, len(items))
	var drops []Drop
	for i := range items {
		it := &items[i]
		amount, err := result.ParsePrice(it.Price)
		if err != nil {
			drops = append(drops, Drop{ID: it.ID, Err: err})
			continue
		}
		var dist *float64
		if keepDistance {
			dist = it.DistanceKm
		}
		var sim float64
		if it.Similarity != nil {
			sim = *it.Similarity
		}
		out = append(out, result.New(result.Fields{
			ID:           it.ID,
			Title:        it.Title,
			Description:  it.Description,
			Price:        result.Price{Amount: amount, Currency: it.Currency},
			Tags:         it.Tags,
			Images:       it.Images,
			Similarity:   sim,
			DistanceKm:   dist,
			ProviderName: it.Provider.DisplayName(),
			CategoryName: categoryName(it.Category),
		}))
	}
	return out, drops
}

func categoryName(c *NamedRef) string {
	if c == nil {
		return ""
	}
	return c.Name
}
