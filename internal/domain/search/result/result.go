package result

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/kailas-cloud/marketsearch/internal/domain"
)

// PlaceholderImageURL is the image template for results without images.
// The seed makes the picture stable across renders of the same result.
const PlaceholderImageURL = "https://picsum.photos/seed/%s/400/300"

// AvailableEverywhere is the distance label for results without a fixed location.
const AvailableEverywhere = "Available everywhere"

// Price is a normalized numeric price.
type Price struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency,omitempty"`
}

// Fields holds the raw values a Result is built from.
type Fields struct {
	ID           string
	Title        string
	Description  string
	Price        Price
	Tags         []string
	Images       []string
	Similarity   float64
	DistanceKm   *float64
	ProviderName string
	CategoryName string
}

// Result is a single search hit. Built once per response, never mutated.
type Result struct {
	id           string
	title        string
	description  string
	price        Price
	tags         []string
	images       []string
	similarity   float64
	distanceKm   *float64
	providerName string
	categoryName string
}

// New creates a search result, filling display defaults:
// a seeded placeholder when there are no images and the category name
// as the only tag when there are no tags.
func New(f Fields) Result {
	images := slices.Clone(f.Images)
	if len(images) == 0 {
		images = []string{PlaceholderImage(f.ID)}
	}
	tags := slices.Clone(f.Tags)
	if len(tags) == 0 && f.CategoryName != "" {
		tags = []string{f.CategoryName}
	}
	var dist *float64
	if f.DistanceKm != nil {
		d := *f.DistanceKm
		dist = &d
	}
	return Result{
		id: f.ID, title: f.Title, description: f.Description,
		price: f.Price, tags: tags, images: images,
		similarity: f.Similarity, distanceKm: dist,
		providerName: f.ProviderName, categoryName: f.CategoryName,
	}
}

// ID returns the service identifier.
func (r *Result) ID() string { return r.id }

// Title returns the listing title.
func (r *Result) Title() string { return r.title }

// Description returns the listing description.
func (r *Result) Description() string { return r.description }

// Price returns the normalized price.
func (r *Result) Price() Price { return r.price }

// Tags returns a copy of the tag list.
func (r *Result) Tags() []string { return slices.Clone(r.tags) }

// Images returns a copy of the image URL list.
func (r *Result) Images() []string { return slices.Clone(r.images) }

// Similarity returns the 0-1 relevance to the text query.
func (r *Result) Similarity() float64 { return r.similarity }

// DistanceKm returns the distance from the filter location.
// ok is false when the service has no fixed location.
func (r *Result) DistanceKm() (float64, bool) {
	if r.distanceKm == nil {
		return 0, false
	}
	return *r.distanceKm, true
}

// ProviderName returns the provider display name snapshot.
func (r *Result) ProviderName() string { return r.providerName }

// CategoryName returns the category display name snapshot.
func (r *Result) CategoryName() string { return r.categoryName }

// PlaceholderImage returns the deterministic placeholder for a result ID.
func PlaceholderImage(id string) string {
	return fmt.Sprintf(PlaceholderImageURL, url.PathEscape(id))
}

// FormatDistance renders a distance: meters under 1 km, one decimal in km otherwise.
func FormatDistance(km *float64) string {
	if km == nil {
		return AvailableEverywhere
	}
	if *km < 1 {
		return fmt.Sprintf("%d m", int(math.Round(*km*1000)))
	}
	return fmt.Sprintf("%.1f km", *km)
}

// FormatPrice renders a price with two decimals and its currency code.
func FormatPrice(p Price) string {
	s := strconv.FormatFloat(p.Amount, 'f', 2, 64)
	if p.Currency == "" {
		return s
	}
	return s + " " + p.Currency
}

// ParsePrice coerces a JSON number or numeric string to a float.
// Anything else (null, bool, garbage text, NaN, Inf) is ErrInvalidPriceFormat.
func ParsePrice(raw json.RawMessage) (float64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, fmt.Errorf("%w: missing", domain.ErrInvalidPriceFormat)
	}

	var v float64
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, fmt.Errorf("%w: %s", domain.ErrInvalidPriceFormat, raw)
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", domain.ErrInvalidPriceFormat, s)
		}
		v = f
	} else if err := json.Unmarshal(raw, &v); err != nil {
		return 0, fmt.Errorf("%w: %s", domain.ErrInvalidPriceFormat, raw)
	}

	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: not finite", domain.ErrInvalidPriceFormat)
	}
	return v, nil
}
