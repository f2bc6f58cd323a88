package search

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"testing"

	"github.com/kailas-cloud/marketsearch/internal/domain"
	"github.com/kailas-cloud/marketsearch/internal/domain/location"
	"github.com/kailas-cloud/marketsearch/internal/domain/search/mode"
	"github.com/kailas-cloud/marketsearch/internal/domain/search/query"
	"github.com/kailas-cloud/marketsearch/internal/domain/search/request"
	"github.com/kailas-cloud/marketsearch/internal/domain/search/response"
	"github.com/kailas-cloud/marketsearch/internal/domain/search/sortby"
)

// --- Mocks ---

type mockBackend struct {
	variant     response.Variant
	searchErr   error
	listing     response.General
	browseErr   error
	searchCalls int
	browseCalls int
	lastReq     request.Request
}

func (m *mockBackend) Search(_ context.Context, req request.Request) (response.Variant, error) {
	m.searchCalls++
	m.lastReq = req
	return m.variant, m.searchErr
}

func (m *mockBackend) Browse(_ context.Context, req request.Request) (response.General, error) {
	m.browseCalls++
	m.lastReq = req
	return m.listing, m.browseErr
}

type mockResolver struct {
	info  *location.Info
	err   error
	calls int
}

func (m *mockResolver) Geocode(_ context.Context, _ string) (*location.Info, error) {
	m.calls++
	return m.info, m.err
}

func ptr[T any](v T) *T { return &v }

func item(id string, price string, sim float64, dist *float64) response.Item {
	return response.Item{ID: id, Title: id, Price: json.RawMessage(price), Similarity: &sim, DistanceKm: dist}
}

func resultIDs(v View) []string {
	out := make([]string, len(v.Results))
	for i := range v.Results {
		out[i] = v.Results[i].ID()
	}
	return out
}

// --- Tests ---

func TestSearch_EmptyQueryBrowses(t *testing.T) {
	for _, text := range []string{"", "   ", "\t\n"} {
		be := &mockBackend{listing: response.General{Items: []response.Item{item("a", "10", 0, nil)}, Count: 1}}
		svc := New(be, nil, nil)

		v, err := svc.Search(context.Background(), query.Query{Text: text}, Options{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if be.searchCalls != 0 {
			t.Fatalf("text %q: search must not be called", text)
		}
		if be.browseCalls != 1 || be.lastReq.Endpoint() != request.EndpointBrowse {
			t.Fatalf("text %q: expected one browse call", text)
		}
		if !v.IsBrowse() || len(v.Results) != 1 {
			t.Fatalf("unexpected view: %+v", v)
		}
	}
}

func TestSearch_SemanticRankedBySimilarity(t *testing.T) {
	be := &mockBackend{variant: response.Semantic{
		Query: "plumber",
		Count: 3,
		Items: []response.Item{
			item("low", "10", 0.41, nil),
			item("high", "10", 0.95, nil),
			item("mid", `"12.5"`, 0.7, nil),
		},
	}}
	v, err := New(be, nil, nil).Search(context.Background(), query.Query{Text: "plumber"}, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Mode != mode.Semantic || v.Sort != sortby.Relevance {
		t.Fatalf("mode = %s sort = %s", v.Mode, v.Sort)
	}
	got := resultIDs(v)
	want := []string{"high", "mid", "low"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
	if be.lastReq.Endpoint() != request.EndpointSemantic {
		t.Fatalf("endpoint = %s", be.lastReq.Endpoint())
	}
}

func TestSearch_InvalidPriceDropped(t *testing.T) {
	be := &mockBackend{variant: response.Semantic{Items: []response.Item{
		item("ok", "10", 0.5, nil),
		item("bad", `"call us"`, 0.9, nil),
	}}}
	v, err := New(be, nil, nil).Search(context.Background(), query.Query{Text: "tutor"}, Options{})
	if err != nil {
		t.Fatalf("a bad price must not fail the batch: %v", err)
	}
	if v.Dropped != 1 || len(v.Results) != 1 || v.Results[0].ID() != "ok" {
		t.Fatalf("unexpected view: %+v", v)
	}
}

func TestSearch_RadiusExclusion(t *testing.T) {
	items := []response.Item{
		item("near", "10", 0.5, ptr(3.0)),
		item("far", "10", 0.9, ptr(15.0)),
		item("anywhere", "10", 0.7, nil),
	}
	tests := []struct {
		name    string
		include bool
		want    []string
	}{
		{"flag off", false, []string{"near"}},
		{"flag on", true, []string{"near", "anywhere"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			be := &mockBackend{variant: response.Hybrid{Items: items, Count: 3}}
			q := query.Query{
				Text:                   "yoga",
				Location:               location.NewFilter(50.45, 30.52, "", ptr(10.0)),
				IncludeWithoutLocation: tt.include,
			}
			v, err := New(be, nil, nil).Search(context.Background(), q, Options{Sort: sortby.Distance})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got := resultIDs(v)
			if len(got) != len(tt.want) {
				t.Fatalf("results = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("results = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestSearch_AddressGeocoded(t *testing.T) {
	be := &mockBackend{variant: response.Location{}}
	res := &mockResolver{info: &location.Info{Latitude: ptr(1.0), Longitude: ptr(2.0)}}
	q := query.Query{Location: &location.Filter{Address: "Main St 1", RadiusKm: ptr(5.0)}}

	v, err := New(be, res, nil).Search(context.Background(), q, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.calls != 1 {
		t.Fatalf("resolver calls = %d", res.calls)
	}
	for _, p := range []string{request.ParamLatitude, request.ParamLongitude, request.ParamRadius} {
		if !be.lastReq.Has(p) {
			t.Errorf("expected %s after geocoding", p)
		}
	}
	if !v.Empty() {
		t.Fatal("expected empty view")
	}
}

func TestSearch_AddressNotGeocodedStillSearches(t *testing.T) {
	be := &mockBackend{variant: response.Location{}}
	res := &mockResolver{err: domain.ErrGeocodingFailed}
	q := query.Query{Location: &location.Filter{Address: "Atlantis"}}

	if _, err := New(be, res, nil).Search(context.Background(), q, Options{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if be.lastReq.Has(request.ParamLatitude) {
		t.Fatal("address-only filter must not be sent as coordinates")
	}
	if !be.lastReq.Has(request.ParamAddress) {
		t.Fatal("expected address param")
	}
}

func TestSearch_BackendError(t *testing.T) {
	be := &mockBackend{searchErr: domain.NewBackendError(503, "down")}
	_, err := New(be, nil, nil).Search(context.Background(), query.Query{Text: "cleaning"}, Options{})
	if !errors.Is(err, domain.ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
}

func TestSearch_InvalidQuery(t *testing.T) {
	be := &mockBackend{}
	q := query.Query{Text: "cleaning", MinPrice: ptr(100.0), MaxPrice: ptr(10.0)}
	_, err := New(be, nil, nil).Search(context.Background(), q, Options{})
	if !errors.Is(err, domain.ErrInvalidQuery) {
		t.Fatalf("expected ErrInvalidQuery, got %v", err)
	}
	if be.searchCalls != 0 {
		t.Fatal("invalid query must not reach the backend")
	}
}

func TestSearch_InvalidSort(t *testing.T) {
	_, err := New(&mockBackend{}, nil, nil).Search(context.Background(), query.Query{Text: "x"}, Options{Sort: "stars"})
	if !errors.Is(err, domain.ErrInvalidQuery) {
		t.Fatal("expected error for unknown sort")
	}
}

func TestSearch_ShowMore(t *testing.T) {
	items := make([]response.Item, 30)
	for i := range items {
		items[i] = item(string(rune('a'+i%26))+string(rune('0'+i/26)), "10", 0.5, nil)
	}
	be := &mockBackend{variant: response.Semantic{Items: items, Count: 30}}
	svc := New(be, nil, nil)

	v, err := svc.Search(context.Background(), query.Query{Text: "tutor"}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(v.Results) != 12 || !v.HasMore || v.Matched != 30 || v.Total != 30 {
		t.Fatalf("first page: len=%d more=%v matched=%d total=%d", len(v.Results), v.HasMore, v.Matched, v.Total)
	}

	v, err = svc.Search(context.Background(), query.Query{Text: "tutor"}, Options{Visible: 36})
	if err != nil {
		t.Fatal(err)
	}
	if len(v.Results) != 30 || v.HasMore {
		t.Fatalf("full page: len=%d more=%v", len(v.Results), v.HasMore)
	}
}

func TestView_ShowMoreAndResort(t *testing.T) {
	items := make([]response.Item, 20)
	for i := range items {
		price := json.RawMessage([]byte{byte('1' + i%9)})
		items[i] = item(string(rune('a'+i)), string(price), float64(i)/20, nil)
	}
	be := &mockBackend{variant: response.Semantic{Items: items}}

	v, err := New(be, nil, nil).Search(context.Background(), query.Query{Text: "tutor"}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if v.Visible() != 12 || !v.HasMore {
		t.Fatalf("first window = %d more = %v", v.Visible(), v.HasMore)
	}
	if v.Results[0].ID() != "t" {
		t.Fatalf("top result = %s, want t (highest similarity)", v.Results[0].ID())
	}

	more := v.ShowMore()
	if more.Visible() != 20 || more.HasMore {
		t.Fatalf("after show more = %d more = %v", more.Visible(), more.HasMore)
	}

	byPrice := v.Resorted(sortby.Price)
	if byPrice.Visible() != 12 || byPrice.Sort != sortby.Price {
		t.Fatalf("resorted window = %d sort = %s", byPrice.Visible(), byPrice.Sort)
	}
	if byPrice.Results[0].Price().Amount != 1 {
		t.Fatalf("cheapest first, got %v", byPrice.Results[0].Price().Amount)
	}
	if v.Results[0].ID() != "t" {
		t.Fatal("resort must not mutate the original view")
	}
	if be.searchCalls != 1 {
		t.Fatalf("backend calls = %d, want 1", be.searchCalls)
	}
}

func TestView_ResortRestoresBackendOrder(t *testing.T) {
	be := &mockBackend{variant: response.Semantic{Items: []response.Item{
		item("a", "30", 0.5, nil),
		item("b", "10", 0.5, nil),
		item("c", "20", 0.5, nil),
	}}}

	v, err := New(be, nil, nil).Search(context.Background(), query.Query{Text: "tutor"}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if got := resultIDs(v.Resorted(sortby.Price)); !slices.Equal(got, []string{"b", "c", "a"}) {
		t.Fatalf("by price = %v", got)
	}

	back := v.Resorted(sortby.Price).Resorted(sortby.Relevance)
	if got := resultIDs(back); !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Errorf("relevance after price = %v, want backend order [a b c]", got)
	}
}
