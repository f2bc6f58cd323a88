package category

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
)

func leaf(id string, n int) *Category {
	return &Category{ID: id, Name: id, Count: &Count{Services: n}}
}

func TestTotalServices_Leaf(t *testing.T) {
	if got := TotalServices(leaf("a", 5)); got != 5 {
		t.Fatalf("TotalServices(leaf) = %d, want 5", got)
	}
}

func TestTotalServices_RootWithChild(t *testing.T) {
	root := leaf("root", 2)
	root.Children = []*Category{leaf("child", 3)}
	if got := TotalServices(root); got != 5 {
		t.Fatalf("TotalServices = %d, want 5", got)
	}
}

func TestTotalServices_MissingCountStillDescends(t *testing.T) {
	// child has no _count, grandchild does.
	root := leaf("root", 1)
	child := &Category{ID: "child"}
	child.Children = []*Category{leaf("grandchild", 4), leaf("grandchild-2", 6)}
	root.Children = []*Category{child}

	if got := TotalServices(child); got != 10 {
		t.Errorf("TotalServices(child) = %d, want 10", got)
	}
	if got := TotalServices(root); got != 11 {
		t.Errorf("TotalServices(root) = %d, want 11", got)
	}
}

func TestTotalServices_RecursiveDefinition(t *testing.T) {
	root := leaf("r", 7)
	a := leaf("a", 1)
	a.Children = []*Category{leaf("a1", 2), leaf("a2", 3)}
	b := leaf("b", 0)
	b.Children = []*Category{leaf("b1", 9)}
	root.Children = []*Category{a, b}

	want := root.DirectCount()
	for _, c := range root.Children {
		want += TotalServices(c)
	}
	if got := TotalServices(root); got != want || got != 22 {
		t.Fatalf("TotalServices = %d, want %d (22)", got, want)
	}
}

func TestTotalServices_CycleTerminates(t *testing.T) {
	a := leaf("a", 1)
	b := leaf("b", 2)
	a.Children = []*Category{b}
	b.Children = []*Category{a}

	if got := TotalServices(a); got != 3 {
		t.Fatalf("TotalServices with cycle = %d, want 3", got)
	}
}

func TestTotalServices_DuplicateIDNotDoubleCounted(t *testing.T) {
	root := leaf("root", 0)
	root.Children = []*Category{leaf("dup", 4), leaf("dup", 4)}
	if got := TotalServices(root); got != 4 {
		t.Fatalf("TotalServices = %d, want 4", got)
	}
}

func TestTotalServices_Nil(t *testing.T) {
	if TotalServices(nil) != 0 {
		t.Fatal("nil category must total 0")
	}
}

func TestDecodeAndSummarize(t *testing.T) {
	payload := `[
		{"id":"home","name":"Home","slug":"home","_count":{"services":2},
		 "children":[{"id":"clean","name":"Cleaning","_count":{"services":3}},
		             {"id":"repair","name":"Repair","children":[{"id":"pipes","name":"Pipes","_count":{"services":4}}]}]},
		{"id":"beauty","name":"Beauty"}
	]`
	roots, err := Decode(json.RawMessage(payload))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	sums := Summarize(roots)
	if len(sums) != 2 {
		t.Fatalf("expected 2 roots, got %d", len(sums))
	}
	if sums[0].Total != 9 || sums[0].Direct != 2 {
		t.Errorf("home summary = %+v", sums[0])
	}
	if sums[0].Children[1].Total != 4 {
		t.Errorf("repair total = %d, want 4", sums[0].Children[1].Total)
	}
	if sums[1].Total != 0 {
		t.Errorf("beauty total = %d, want 0", sums[1].Total)
	}
}

func TestFind(t *testing.T) {
	root := leaf("home", 0)
	root.Children = []*Category{{ID: "c1", Slug: "cleaning"}}
	if c := Find([]*Category{root}, "cleaning"); c == nil || c.ID != "c1" {
		t.Fatalf("Find by slug = %+v", c)
	}
	if c := Find([]*Category{root}, "missing"); c != nil {
		t.Fatalf("expected nil, got %+v", c)
	}
}

func TestFlatten(t *testing.T) {
	child := &Category{ID: "plumbing"}
	root := leaf("home", 0)
	root.Children = []*Category{child, child}

	entries := Flatten([]*Category{root, leaf("beauty", 1)})
	var got []string
	for _, e := range entries {
		got = append(got, fmt.Sprintf("%s@%d", e.Category.ID, e.Depth))
	}
	want := "home@0 plumbing@1 beauty@0"
	if strings.Join(got, " ") != want {
		t.Fatalf("Flatten = %v, want %s", got, want)
	}
}
