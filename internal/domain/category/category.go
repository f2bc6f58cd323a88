package category

import (
	"encoding/json"
	"fmt"
)

// Category is a node of the backend's category tree.
type Category struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Slug        string      `json:"slug,omitempty"`
	Description string      `json:"description,omitempty"`
	ParentID    string      `json:"parentId,omitempty"`
	Count       *Count      `json:"_count,omitempty"`
	Children    []*Category `json:"children,omitempty"`
}

// Count is the backend's _count metadata. Nested children often omit it.
type Count struct {
	Services int `json:"services"`
}

// DirectCount returns the services attached to this category itself (0 when _count is missing).
func (c *Category) DirectCount() int {
	if c == nil || c.Count == nil {
		return 0
	}
	return c.Count.Services
}

// TotalServices returns the direct count plus the totals of all descendants.
// A category ID seen twice contributes nothing the second time,
// so a malformed tree with a cycle still terminates without double counting.
func TotalServices(c *Category) int {
	return total(c, make(map[string]struct{}), make(map[*Category]struct{}))
}

func total(c *Category, seenIDs map[string]struct{}, seenNodes map[*Category]struct{}) int {
	if c == nil {
		return 0
	}
	if _, ok := seenNodes[c]; ok {
		return 0
	}
	seenNodes[c] = struct{}{}
	if c.ID != "" {
		if _, ok := seenIDs[c.ID]; ok {
			return 0
		}
		seenIDs[c.ID] = struct{}{}
	}

	sum := c.DirectCount()
	for _, child := range c.Children {
		sum += total(child, seenIDs, seenNodes)
	}
	return sum
}

// Summary is a category with its aggregated total, as shown on browse pages.
type Summary struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Slug     string     `json:"slug,omitempty"`
	Direct   int        `json:"direct"`
	Total    int        `json:"total"`
	Children []*Summary `json:"children,omitempty"`
}

// Summarize computes totals for every node of the forest.
func Summarize(roots []*Category) []*Summary {
	seen := make(map[*Category]struct{})
	out := make([]*Summary, 0, len(roots))
	for _, r := range roots {
		if s := summarize(r, seen); s != nil {
			out = append(out, s)
		}
	}
	return out
}

func summarize(c *Category, seen map[*Category]struct{}) *Summary {
	if c == nil {
		return nil
	}
	if _, ok := seen[c]; ok {
		return nil
	}
	seen[c] = struct{}{}

	s := &Summary{ID: c.ID, Name: c.Name, Slug: c.Slug, Direct: c.DirectCount(), Total: TotalServices(c)}
	for _, child := range c.Children {
		if cs := summarize(child, seen); cs != nil {
			s.Children = append(s.Children, cs)
		}
	}
	return s
}

// Find returns the first node with the given ID or slug.
func Find(roots []*Category, key string) *Category {
	var found *Category
	Walk(roots, func(c *Category, _ int) bool {
		if c.ID == key || (c.Slug != "" && c.Slug == key) {
			found = c
			return false
		}
		return true
	})
	return found
}

// Entry is one row of a flattened tree.
type Entry struct {
	Category *Category
	Depth    int
}

// Flatten lists the tree depth-first, e.g. for an indented category picker.
func Flatten(roots []*Category) []Entry {
	var out []Entry
	Walk(roots, func(c *Category, depth int) bool {
		out = append(out, Entry{Category: c, Depth: depth})
		return true
	})
	return out
}

// Walk visits nodes depth-first with their depth (roots are 0).
// Returning false from fn stops the walk. Each node is visited at most once.
func Walk(roots []*Category, fn func(c *Category, depth int) bool) {
	seen := make(map[*Category]struct{})
	var visit func(c *Category, depth int) bool
	visit = func(c *Category, depth int) bool {
		if c == nil {
			return true
		}
		if _, ok := seen[c]; ok {
			return true
		}
		seen[c] = struct{}{}
		if !fn(c, depth) {
			return false
		}
		for _, child := range c.Children {
			if !visit(child, depth+1) {
				return false
			}
		}
		return true
	}
	for _, r := range roots {
		if !visit(r, 0) {
			return
		}
	}
}

// Decode parses the /categories payload (an array of root categories).
func Decode(data json.RawMessage) ([]*Category, error) {
	var roots []*Category
	if err := json.Unmarshal(data, &roots); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	return roots, nil
}
