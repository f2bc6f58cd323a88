package query

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/kailas-cloud/marketsearch/internal/domain/geo"
	"github.com/kailas-cloud/marketsearch/internal/domain/location"
	"github.com/kailas-cloud/marketsearch/internal/domain/search/filter"
)

// Search parameter constants.
const (
	// DefaultThreshold is the similarity threshold call sites use when the user sets none.
	DefaultThreshold = 0.4
	// MinSemanticLength is the shortest trimmed text that is matched semantically.
	MinSemanticLength = 3
	MaxTextLength     = 500
	MaxLimit          = 100
)

// Query is one search request as the user composed it.
type Query struct {
	Text                   string
	Location               *location.Filter
	MinPrice               *float64
	MaxPrice               *float64
	CategoryID             string
	ProviderID             string
	Limit                  *int
	Threshold              *float64
	IncludeWithoutLocation bool
}

// TrimmedText returns the text without surrounding whitespace.
func (q *Query) TrimmedText() string {
	return strings.TrimSpace(q.Text)
}

// SemanticText returns the text used for similarity matching.
// Texts shorter than MinSemanticLength runes yield "" (no text filter).
func (q *Query) SemanticText() string {
	t := q.TrimmedText()
	if utf8.RuneCountInString(t) < MinSemanticLength {
		return ""
	}
	return t
}

// IsSearch reports whether the query has text or a location.
// Otherwise the caller falls back to an unfiltered browse.
func (q *Query) IsSearch() bool {
	return q.TrimmedText() != "" || !q.Location.IsEmpty()
}

// PriceRange returns the validated price window.
func (q *Query) PriceRange() (filter.PriceRange, error) {
	r, err := filter.NewPriceRange(q.MinPrice, q.MaxPrice)
	if err != nil {
		return filter.PriceRange{}, fmt.Errorf("price range: %w", err)
	}
	return r, nil
}

// Validate checks bounds the backend would reject anyway.
func (q *Query) Validate() error {
	if utf8.RuneCountInString(q.TrimmedText()) > MaxTextLength {
		return fmt.Errorf("query too long (max %d chars)", MaxTextLength)
	}
	if _, err := q.PriceRange(); err != nil {
		return err
	}
	if q.Limit != nil && (*q.Limit <= 0 || *q.Limit > MaxLimit) {
		return fmt.Errorf("limit must be between 1 and %d, got %d", MaxLimit, *q.Limit)
	}
	if q.Threshold != nil && (!finite(*q.Threshold) || *q.Threshold < 0 || *q.Threshold > 1) {
		return fmt.Errorf("threshold must be between 0 and 1")
	}
	if q.Location.HasCoordinates() {
		if !geo.ValidateCoordinates(*q.Location.Latitude, *q.Location.Longitude) {
			return fmt.Errorf("coordinates out of range")
		}
	}
	if q.Location != nil && q.Location.RadiusKm != nil {
		if r := *q.Location.RadiusKm; !finite(r) || r <= 0 {
			return fmt.Errorf("radius must be a positive finite number")
		}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
