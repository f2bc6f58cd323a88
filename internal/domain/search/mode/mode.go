package mode

import "fmt"

// Mode is the searchType tag the backend attaches to a response.
type Mode string

// Search mode constants.
const (
	// Semantic is free-text search ranked by embedding similarity.
	Semantic Mode = "semantic"
	// Hybrid combines text relevance with a geographic radius.
	Hybrid   Mode = "hybrid"
	Location Mode = "location"
	General  Mode = "general"
	// Browse is the unfiltered listing used when there is nothing to search for.
	Browse Mode = "browse"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Semantic || m == Hybrid || m == Location || m == General || m == Browse
}

// Parse converts a wire tag to a Mode. An empty tag means the semantic-only endpoint.
func Parse(s string) (Mode, error) {
	if s == "" {
		return Semantic, nil
	}
	m := Mode(s)
	if !m.IsValid() || m == Browse {
		return "", fmt.Errorf("unknown search type %q", s)
	}
	return m, nil
}
