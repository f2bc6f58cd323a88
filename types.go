package marketsearch

import (
	"github.com/kailas-cloud/marketsearch/internal/domain/category"
	"github.com/kailas-cloud/marketsearch/internal/domain/geo"
	"github.com/kailas-cloud/marketsearch/internal/domain/location"
	"github.com/kailas-cloud/marketsearch/internal/domain/preferences"
	"github.com/kailas-cloud/marketsearch/internal/domain/search/mode"
	"github.com/kailas-cloud/marketsearch/internal/domain/search/query"
	"github.com/kailas-cloud/marketsearch/internal/domain/search/result"
	"github.com/kailas-cloud/marketsearch/internal/domain/search/sortby"
	"github.com/kailas-cloud/marketsearch/internal/usecase/geolocation"
	searchuc "github.com/kailas-cloud/marketsearch/internal/usecase/search"
	"github.com/kailas-cloud/marketsearch/internal/usecase/session"
)

// Query is one search as the user composed it.
type Query = query.Query

// LocationFilter narrows a search to a point (and radius) or an address.
type LocationFilter = location.Filter

// LocationInfo is a resolved location as the backend reports it.
type LocationInfo = location.Info

// Coordinates is a latitude/longitude pair in degrees.
type Coordinates = geo.Coordinates

// Result is one service in a result list.
type Result = result.Result

// Price is a normalized numeric price.
type Price = result.Price

// View is a ranked, windowed result list ready to render.
type View = searchuc.View

// ViewOptions are the sort and "show more" window of a search.
type ViewOptions = searchuc.Options

// SortBy is the ordering of a View.
type SortBy = sortby.Criterion

// Sort criteria.
const (
	SortRelevance = sortby.Relevance
	SortDistance  = sortby.Distance
	SortPrice     = sortby.Price
	// SortRating currently orders by relevance.
	SortRating = sortby.Rating
)

// Mode tells which backend search produced a View.
type Mode = mode.Mode

// Search modes.
const (
	ModeSemantic = mode.Semantic
	ModeHybrid   = mode.Hybrid
	ModeLocation = mode.Location
	ModeGeneral  = mode.General
	ModeBrowse   = mode.Browse
)

// Category is a node of the category tree.
type Category = category.Category

// CategorySummary is a category with its aggregated service count.
type CategorySummary = category.Summary

// CategoryEntry is one row of a flattened category tree.
type CategoryEntry = category.Entry

// Preferences are the persisted UI preferences of one owner.
type Preferences = preferences.UI

// DeviceLocator provides the device position (GPS, OS location service).
type DeviceLocator = geolocation.DeviceLocator

// Position is a device fix.
type Position = geolocation.Position

// PositionOptions tune a device position request.
type PositionOptions = geolocation.PositionOptions

// SessionState is a snapshot of an interactive search session.
type SessionState = session.State

// Session is an interactive search surface with debounced input.
type Session = session.Session

// DefaultThreshold is the similarity threshold used when a query sets none.
const DefaultThreshold = query.DefaultThreshold

// FormatDistance renders a result distance ("400 m", "2.5 km", "Available everywhere").
func FormatDistance(km *float64) string { return result.FormatDistance(km) }

// FormatPrice renders a price with two decimals and its currency.
func FormatPrice(p Price) string { return result.FormatPrice(p) }

// TotalServices returns a category's own count plus all descendants'.
func TotalServices(c *Category) int { return category.TotalServices(c) }

// ParseSortBy reads a sort criterion case-insensitively. Empty input yields SortRelevance.
func ParseSortBy(s string) (SortBy, error) { return sortby.Parse(s) } //nolint:wrapcheck // message is user-facing

// FlattenCategories lists a category tree depth-first with each node's depth.
func FlattenCategories(roots []*Category) []CategoryEntry { return category.Flatten(roots) }
