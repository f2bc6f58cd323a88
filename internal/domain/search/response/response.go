package response

import (
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/marketsearch/internal/domain/location"
	"github.com/kailas-cloud/marketsearch/internal/domain/search/mode"
)

// Variant is one of Semantic, Hybrid, Location or General.
// The set is closed: only this package implements it.
type Variant interface {
	Mode() mode.Mode
	variant()
}

// Item is a result as the backend sent it, before normalization.
type Item struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       json.RawMessage `json:"price"`
	Currency    string          `json:"currency"`
	Tags        []string        `json:"tags"`
	Images      []string        `json:"images"`
	Similarity  *float64        `json:"similarity"`
	DistanceKm  *float64        `json:"distance_km"`
	Provider    *NamedRef       `json:"provider"`
	Category    *NamedRef       `json:"category"`
}

// NamedRef is a denormalized provider or category snapshot.
type NamedRef struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	BusinessName string `json:"businessName"`
}

// DisplayName prefers the business name when present.
func (n *NamedRef) DisplayName() string {
	if n == nil {
		return ""
	}
	if n.BusinessName != "" {
		return n.BusinessName
	}
	return n.Name
}

// Semantic is a text-only response ranked by similarity.
type Semantic struct {
	Query string
	Items []Item
	Count int
}

// Hybrid combines text relevance with a geographic filter.
type Hybrid struct {
	Query                   string
	Location                *location.Info
	Items                   []Item
	Count                   int
	HasServicesWithinRadius *bool
	Message                 string
}

// Location is a location-only response (no text, or text too short).
type Location struct {
	Location                *location.Info
	Items                   []Item
	Count                   int
	HasServicesWithinRadius *bool
	Message                 string
}

// General is a broad response with neither usable text nor location,
// also used for the browse listing.
type General struct {
	Items   []Item
	Count   int
	Message string
}

// Mode implements Variant.
func (Semantic) Mode() mode.Mode { return mode.Semantic }

// Mode implements Variant.
func (Hybrid) Mode() mode.Mode { return mode.Hybrid }

// Mode implements Variant.
func (Location) Mode() mode.Mode { return mode.Location }

// Mode implements Variant.
func (General) Mode() mode.Mode { return mode.General }

func (Semantic) variant() {}
func (Hybrid) variant()   {}
func (Location) variant() {}
func (General) variant()  {}

// wireSearch is the union of every search payload shape.
type wireSearch struct {
	Query                   string         `json:"query"`
	Location                *location.Info `json:"location"`
	SearchType              string         `json:"searchType"`
	Results                 []Item         `json:"results"`
	Count                   int            `json:"count"`
	HasServicesWithinRadius *bool          `json:"hasServicesWithinRadius"`
	Message                 string         `json:"message"`
}

// Decode turns a search payload (the envelope's data) into its variant.
// A missing searchType means the semantic-only endpoint answered.
func Decode(data json.RawMessage) (Variant, error) {
	var w wireSearch
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode search payload: %w", err)
	}
	m, err := mode.Parse(w.SearchType)
	if err != nil {
		return nil, fmt.Errorf("decode search payload: %w", err)
	}

	switch m {
	case mode.Semantic:
		return Semantic{Query: w.Query, Items: w.Results, Count: w.Count}, nil
	case mode.Hybrid:
		return Hybrid{
			Query: w.Query, Location: w.Location, Items: w.Results, Count: w.Count,
			HasServicesWithinRadius: w.HasServicesWithinRadius, Message: w.Message,
		}, nil
	case mode.Location:
		return Location{
			Location: w.Location, Items: w.Results, Count: w.Count,
			HasServicesWithinRadius: w.HasServicesWithinRadius, Message: w.Message,
		}, nil
	case mode.General:
		return General{Items: w.Results, Count: w.Count, Message: w.Message}, nil
	default:
		return nil, fmt.Errorf("decode search payload: unsupported search type %q", m)
	}
}

type wireBrowse struct {
	Services []Item `json:"services"`
	Total    int    `json:"total"`
}

// DecodeBrowse turns the listing payload into a General variant.
// The payload is either {"services": [...], "total": n} or a bare array.
func DecodeBrowse(data json.RawMessage) (General, error) {
	var items []Item
	if err := json.Unmarshal(data, &items); err == nil {
		return General{Items: items, Count: len(items)}, nil
	}
	var w wireBrowse
	if err := json.Unmarshal(data, &w); err != nil {
		return General{}, fmt.Errorf("decode browse payload: %w", err)
	}
	count := w.Total
	if count == 0 {
		count = len(w.Services)
	}
	return General{Items: w.Services, Count: count}, nil
}
