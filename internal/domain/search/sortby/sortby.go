package sortby

import (
	"fmt"
	"strings"
)

// Criterion is the active ordering of a results view.
type Criterion string

// Sort criteria.
const (
	Relevance Criterion = "relevance"
	Distance  Criterion = "distance"
	Price     Criterion = "price"
	// Rating orders by relevance: results carry no rating yet.
	Rating Criterion = "rating"
)

// Default is the criterion used when none is chosen.
const Default = Relevance

// IsValid checks if the criterion is one of the supported values.
func (c Criterion) IsValid() bool {
	return c == Relevance || c == Distance || c == Price || c == Rating
}

// Effective resolves aliases: rating sorts as relevance.
func (c Criterion) Effective() Criterion {
	if c == Rating {
		return Relevance
	}
	return c
}

// Parse reads a criterion case-insensitively. Empty input yields Default.
func Parse(s string) (Criterion, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Default, nil
	}
	c := Criterion(s)
	if !c.IsValid() {
		return "", fmt.Errorf("invalid sort criterion: %q", s)
	}
	return c, nil
}
