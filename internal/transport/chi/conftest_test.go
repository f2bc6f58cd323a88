package chi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kailas-cloud/marketsearch/internal/domain"
	"github.com/kailas-cloud/marketsearch/internal/domain/category"
	"github.com/kailas-cloud/marketsearch/internal/domain/location"
	"github.com/kailas-cloud/marketsearch/internal/domain/preferences"
	"github.com/kailas-cloud/marketsearch/internal/domain/search/query"
	healthuc "github.com/kailas-cloud/marketsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/marketsearch/internal/usecase/search"
)

// --- Mocks ---

type mockSearcher struct {
	searchFn func(ctx context.Context, q query.Query, opts searchuc.Options) (searchuc.View, error)
	lastQ    query.Query
	lastOpts searchuc.Options
	calls    int
}

func (m *mockSearcher) Search(ctx context.Context, q query.Query, opts searchuc.Options) (searchuc.View, error) {
	m.calls++
	m.lastQ, m.lastOpts = q, opts
	if m.searchFn != nil {
		return m.searchFn(ctx, q, opts)
	}
	return searchuc.View{}, nil
}

type mockCategories struct {
	roots []*category.Category
	err   error
}

func (m *mockCategories) Categories(_ context.Context) ([]*category.Category, error) {
	return m.roots, m.err
}

type mockLocator struct {
	ipFn      func(ctx context.Context) (*location.Info, error)
	geocodeFn func(ctx context.Context, address string) (*location.Info, error)
	reverseFn func(ctx context.Context, lat, lng float64) (string, error)
}

func (m *mockLocator) LocationFromIP(ctx context.Context) (*location.Info, error) {
	if m.ipFn != nil {
		return m.ipFn(ctx)
	}
	return nil, domain.ErrLocationUnavailable
}

func (m *mockLocator) Geocode(ctx context.Context, address string) (*location.Info, error) {
	if m.geocodeFn != nil {
		return m.geocodeFn(ctx, address)
	}
	return nil, domain.ErrGeocodingFailed
}

func (m *mockLocator) ReverseGeocode(ctx context.Context, lat, lng float64) (string, error) {
	if m.reverseFn != nil {
		return m.reverseFn(ctx, lat, lng)
	}
	return "", domain.ErrGeocodingFailed
}

type memPrefs struct {
	data map[string]preferences.UI
}

func (m *memPrefs) Get(_ context.Context, owner string) (preferences.UI, error) {
	ui, ok := m.data[owner]
	if !ok {
		return preferences.UI{}, domain.ErrNotFound
	}
	return ui, nil
}

func (m *memPrefs) Put(_ context.Context, owner string, ui preferences.UI) error {
	m.data[owner] = ui
	return nil
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(_ context.Context) healthuc.Report { return m.report }

// --- Helpers ---

type fixture struct {
	search     *mockSearcher
	categories *mockCategories
	locator    *mockLocator
	prefs      *memPrefs
	health     *mockHealth
	handler    http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		search:     &mockSearcher{},
		categories: &mockCategories{},
		locator:    &mockLocator{},
		prefs:      &memPrefs{data: map[string]preferences.UI{}},
		health:     &mockHealth{report: healthuc.Report{Status: healthuc.Healthy}},
	}
	srv := NewServer(f.search, f.categories, f.locator, f.prefs, f.health, nil)
	f.handler = NewRouter(srv, RouterConfig{})
	return f
}

func (f *fixture) do(t *testing.T, method, target, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, http.NoBody)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)

	var env envelope
	if strings.HasPrefix(rr.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode envelope: %v (body %s)", err, rr.Body.String())
		}
	}
	return rr, env
}

// dataAs re-decodes the envelope's data into out.
func dataAs(t *testing.T, env envelope, out any) {
	t.Helper()
	raw, err := json.Marshal(env.Data)
	if err != nil {
		t.Fatalf("marshal data: %v", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		t.Fatalf("unmarshal data: %v", err)
	}
}

func ptr[T any](v T) *T { return &v }
