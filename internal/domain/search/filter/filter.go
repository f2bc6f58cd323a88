package filter

import (
	"fmt"
	"math"
)

// PriceRange is an optional inclusive [min, max] price window.
// A nil bound is inactive.
type PriceRange struct {
	min *float64
	max *float64
}

// NewPriceRange validates and creates a PriceRange.
// Bounds must be finite and non-negative; min may not exceed max.
func NewPriceRange(minPrice, maxPrice *float64) (PriceRange, error) {
	for _, b := range []*float64{minPrice, maxPrice} {
		if b == nil {
			continue
		}
		if math.IsNaN(*b) || math.IsInf(*b, 0) {
			return PriceRange{}, fmt.Errorf("price bound must be finite")
		}
		if *b < 0 {
			return PriceRange{}, fmt.Errorf("price bound must be non-negative, got %v", *b)
		}
	}
	if minPrice != nil && maxPrice != nil && *minPrice > *maxPrice {
		return PriceRange{}, fmt.Errorf("min price %v exceeds max price %v", *minPrice, *maxPrice)
	}
	return PriceRange{min: minPrice, max: maxPrice}, nil
}

// Min returns the lower bound.
func (r PriceRange) Min() *float64 { return r.min }

// Max returns the upper bound.
func (r PriceRange) Max() *float64 { return r.max }

// IsActive reports whether at least one bound is set.
func (r PriceRange) IsActive() bool { return r.min != nil || r.max != nil }

// Contains reports whether price falls inside the window.
func (r PriceRange) Contains(price float64) bool {
	if r.min != nil && price < *r.min {
		return false
	}
	if r.max != nil && price > *r.max {
		return false
	}
	return true
}
