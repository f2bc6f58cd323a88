package chi

import (
	"github.com/kailas-cloud/marketsearch/internal/domain/location"
	"github.com/kailas-cloud/marketsearch/internal/domain/search/result"
	searchuc "github.com/kailas-cloud/marketsearch/internal/usecase/search"
)

// envelope is the response shape of every route, mirroring the marketplace backend.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type resultItem struct {
	ID            string       `json:"id"`
	Title         string       `json:"title"`
	Description   string       `json:"description,omitempty"`
	Price         result.Price `json:"price"`
	PriceLabel    string       `json:"priceLabel"`
	Tags          []string     `json:"tags"`
	Images        []string     `json:"images"`
	Similarity    float64      `json:"similarity"`
	DistanceKm    *float64     `json:"distanceKm"`
	DistanceLabel string       `json:"distanceLabel"`
	ProviderName  string       `json:"providerName,omitempty"`
	CategoryName  string       `json:"categoryName,omitempty"`
}

type searchView struct {
	Mode                    string         `json:"mode"`
	Query                   string         `json:"query,omitempty"`
	Sort                    string         `json:"sort"`
	Location                *location.Info `json:"location,omitempty"`
	Results                 []resultItem   `json:"results"`
	Visible                 int            `json:"visible"`
	Matched                 int            `json:"matched"`
	Total                   int            `json:"total"`
	Dropped                 int            `json:"dropped"`
	HasMore                 bool           `json:"hasMore"`
	Empty                   bool           `json:"empty"`
	HasServicesWithinRadius *bool          `json:"hasServicesWithinRadius,omitempty"`
}

type locationView struct {
	*location.Info
	Label string `json:"label"`
}

func viewToDTO(v searchuc.View) searchView {
	items := make([]resultItem, len(v.Results))
	for i := range v.Results {
		items[i] = resultToDTO(&v.Results[i])
	}
	return searchView{
		Mode:                    string(v.Mode),
		Query:                   v.Query,
		Sort:                    string(v.Sort),
		Location:                v.Location,
		Results:                 items,
		Visible:                 v.Visible(),
		Matched:                 v.Matched,
		Total:                   v.Total,
		Dropped:                 v.Dropped,
		HasMore:                 v.HasMore,
		Empty:                   v.Empty(),
		HasServicesWithinRadius: v.HasServicesWithinRadius,
	}
}

func resultToDTO(r *result.Result) resultItem {
	item := resultItem{
		ID:           r.ID(),
		Title:        r.Title(),
		Description:  r.Description(),
		Price:        r.Price(),
		PriceLabel:   result.FormatPrice(r.Price()),
		Tags:         r.Tags(),
		Images:       r.Images(),
		Similarity:   r.Similarity(),
		ProviderName: r.ProviderName(),
		CategoryName: r.CategoryName(),
	}
	if d, ok := r.DistanceKm(); ok {
		item.DistanceKm = &d
	}
	item.DistanceLabel = result.FormatDistance(item.DistanceKm)
	if item.Tags == nil {
		item.Tags = []string{}
	}
	return item
}
