package chi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/kailas-cloud/marketsearch/internal/domain"
	"github.com/kailas-cloud/marketsearch/internal/domain/category"
	"github.com/kailas-cloud/marketsearch/internal/domain/location"
	"github.com/kailas-cloud/marketsearch/internal/domain/preferences"
	"github.com/kailas-cloud/marketsearch/internal/domain/search/mode"
	"github.com/kailas-cloud/marketsearch/internal/domain/search/query"
	"github.com/kailas-cloud/marketsearch/internal/domain/search/result"
	"github.com/kailas-cloud/marketsearch/internal/domain/search/sortby"
	healthuc "github.com/kailas-cloud/marketsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/marketsearch/internal/usecase/search"
)

func TestSearch_MapsParamsAndView(t *testing.T) {
	f := newFixture(t)
	f.search.searchFn = func(_ context.Context, q query.Query, opts searchuc.Options) (searchuc.View, error) {
		return searchuc.View{
			Mode:    mode.Hybrid,
			Query:   q.Text,
			Sort:    opts.Sort,
			Matched: 1,
			Total:   1,
			Message: "Found 1 service",
			Results: []result.Result{result.New(result.Fields{
				ID: "s1", Title: "Plumber", Price: result.Price{Amount: 150.5, Currency: "USD"},
				DistanceKm: ptr(0.4),
			})},
		}, nil
	}

	rr, env := f.do(t, "GET",
		"/v1/search?q=plumber&lat=50.45&lng=30.52&radius=5&minPrice=10&sort=distance&visible=24&includeWithoutLocation=true", "")
	if rr.Code != http.StatusOK || !env.Success {
		t.Fatalf("status = %d, env = %+v", rr.Code, env)
	}
	if env.Message != "Found 1 service" {
		t.Errorf("message = %q", env.Message)
	}

	q := f.search.lastQ
	if q.Text != "plumber" || !q.Location.HasCoordinates() || *q.Location.RadiusKm != 5 {
		t.Errorf("query = %+v", q)
	}
	if q.MinPrice == nil || *q.MinPrice != 10 || q.MaxPrice != nil {
		t.Errorf("price = %v..%v", q.MinPrice, q.MaxPrice)
	}
	if !q.IncludeWithoutLocation {
		t.Error("includeWithoutLocation not mapped")
	}
	if q.Threshold == nil || *q.Threshold != query.DefaultThreshold {
		t.Errorf("threshold = %v, want default", q.Threshold)
	}
	if f.search.lastOpts.Sort != sortby.Distance || f.search.lastOpts.Visible != 24 {
		t.Errorf("opts = %+v", f.search.lastOpts)
	}

	var view searchView
	dataAs(t, env, &view)
	if view.Mode != "hybrid" || len(view.Results) != 1 {
		t.Fatalf("view = %+v", view)
	}
	item := view.Results[0]
	if item.PriceLabel != "150.50 USD" || item.DistanceLabel != "400 m" {
		t.Errorf("labels = %q, %q", item.PriceLabel, item.DistanceLabel)
	}
	if len(item.Images) != 1 || item.Images[0] != result.PlaceholderImage("s1") {
		t.Errorf("images = %v", item.Images)
	}
}

func TestSearch_EmptyIsBrowseNotError(t *testing.T) {
	f := newFixture(t)
	f.search.searchFn = func(_ context.Context, _ query.Query, _ searchuc.Options) (searchuc.View, error) {
		return searchuc.View{Mode: mode.Browse}, nil
	}

	rr, env := f.do(t, "GET", "/v1/search", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var view searchView
	dataAs(t, env, &view)
	if !view.Empty || view.Mode != "browse" || view.Results == nil {
		t.Errorf("view = %+v", view)
	}
	if f.search.lastQ.Location != nil {
		t.Errorf("location = %+v, want nil", f.search.lastQ.Location)
	}
}

func TestSearch_BadParams(t *testing.T) {
	f := newFixture(t)
	for _, target := range []string{
		"/v1/search?lat=50",
		"/v1/search?lat=x&lng=1",
		"/v1/search?limit=ten",
		"/v1/search?sort=stars",
		"/v1/search?visible=-1",
		"/v1/search?includeWithoutLocation=maybe",
		"/v1/search?lat=1&lng=2&radius=NaN",
		"/v1/search?q=plumber&threshold=NaN",
		"/v1/search?lat=1&lng=2&radius=Inf",
	} {
		rr, env := f.do(t, "GET", target, "")
		if rr.Code != http.StatusBadRequest || env.Success {
			t.Errorf("%s: status = %d, env = %+v", target, rr.Code, env)
		}
	}
	if f.search.calls != 0 {
		t.Errorf("search called %d times for invalid params", f.search.calls)
	}
}

func TestSearch_ErrorTable(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"invalid query", fmt.Errorf("build: %w", domain.ErrInvalidQuery), http.StatusBadRequest, "invalid query"},
		{"backend 4xx", fmt.Errorf("search: %w", domain.NewBackendError(422, "Query too short")),
			http.StatusUnprocessableEntity, "Query too short"},
		{"backend success=false", domain.NewBackendError(200, ""), http.StatusBadRequest, "backend rejected request"},
		{"backend 5xx", domain.NewBackendError(503, "down"), http.StatusBadGateway, "network error"},
		{"network", fmt.Errorf("call: %w", domain.ErrNetwork), http.StatusBadGateway, "network error"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.search.searchFn = func(context.Context, query.Query, searchuc.Options) (searchuc.View, error) {
				return searchuc.View{}, tt.err
			}
			rr, env := f.do(t, "GET", "/v1/search?q=plumber", "")
			if rr.Code != tt.status {
				t.Errorf("status = %d, want %d", rr.Code, tt.status)
			}
			if env.Success || env.Message != tt.message {
				t.Errorf("env = %+v, want message %q", env, tt.message)
			}
		})
	}
}

func TestCategories_Totals(t *testing.T) {
	f := newFixture(t)
	f.categories.roots = []*category.Category{{
		ID: "home", Name: "Home", Slug: "home", Count: &category.Count{Services: 2},
		Children: []*category.Category{
			{ID: "plumbing", Name: "Plumbing", Slug: "plumbing", Count: &category.Count{Services: 3}},
			{ID: "garden", Name: "Garden"},
		},
	}}

	rr, env := f.do(t, "GET", "/v1/categories", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var got []category.Summary
	dataAs(t, env, &got)
	if len(got) != 1 || got[0].Total != 5 || got[0].Direct != 2 || len(got[0].Children) != 2 {
		t.Fatalf("summaries = %+v", got)
	}

	rr, env = f.do(t, "GET", "/v1/categories/plumbing", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var one category.Summary
	dataAs(t, env, &one)
	if one.ID != "plumbing" || one.Total != 3 {
		t.Errorf("summary = %+v", one)
	}

	if rr, _ = f.do(t, "GET", "/v1/categories/missing", ""); rr.Code != http.StatusNotFound {
		t.Errorf("missing category status = %d", rr.Code)
	}
}

func TestCategories_BackendDown(t *testing.T) {
	f := newFixture(t)
	f.categories.err = fmt.Errorf("categories: %w", domain.ErrNetwork)
	if rr, _ := f.do(t, "GET", "/v1/categories", ""); rr.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rr.Code)
	}
}

func TestLocate_ByIP(t *testing.T) {
	f := newFixture(t)
	f.locator.ipFn = func(context.Context) (*location.Info, error) {
		return &location.Info{Latitude: ptr(50.45), Longitude: ptr(30.52), City: "Kyiv", Country: "Ukraine",
			Source: location.SourceIP}, nil
	}

	rr, env := f.do(t, "GET", "/v1/location", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var got struct {
		Label  string `json:"label"`
		Source string `json:"source"`
	}
	dataAs(t, env, &got)
	if got.Label != "Kyiv, Ukraine" || got.Source != "ip" {
		t.Errorf("location = %+v", got)
	}
}

func TestLocate_IPUnavailable(t *testing.T) {
	f := newFixture(t)
	rr, env := f.do(t, "GET", "/v1/location", "")
	if rr.Code != http.StatusNotFound || env.Message != domain.ErrLocationUnavailable.Error() {
		t.Errorf("status = %d, env = %+v", rr.Code, env)
	}
}

func TestLocate_ReverseFallsBackToCoordinates(t *testing.T) {
	f := newFixture(t)
	f.locator.reverseFn = func(_ context.Context, lat, lng float64) (string, error) {
		return "50.4500, 30.5200", domain.ErrGeocodingFailed
	}

	rr, env := f.do(t, "GET", "/v1/location?lat=50.45&lng=30.52", "")
	if rr.Code != http.StatusOK || !env.Success {
		t.Fatalf("status = %d, env = %+v", rr.Code, env)
	}
	if env.Message != domain.ErrGeocodingFailed.Error() {
		t.Errorf("message = %q", env.Message)
	}
	var got struct {
		Label string `json:"label"`
	}
	dataAs(t, env, &got)
	if got.Label != "50.4500, 30.5200" {
		t.Errorf("label = %q", got.Label)
	}
}

func TestLocate_Geocode(t *testing.T) {
	f := newFixture(t)
	f.locator.geocodeFn = func(_ context.Context, address string) (*location.Info, error) {
		if address != "Khreshchatyk 1" {
			t.Errorf("address = %q", address)
		}
		return &location.Info{Latitude: ptr(50.45), Longitude: ptr(30.52), Address: address}, nil
	}
	if rr, _ := f.do(t, "GET", "/v1/location?address=Khreshchatyk%201", ""); rr.Code != http.StatusOK {
		t.Errorf("status = %d", rr.Code)
	}

	f.locator.geocodeFn = nil
	if rr, _ := f.do(t, "GET", "/v1/location?address=nowhere", ""); rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("failed geocode status = %d", rr.Code)
	}
}

func TestLocate_BadCoordinates(t *testing.T) {
	f := newFixture(t)
	for _, target := range []string{"/v1/location?lat=91&lng=0", "/v1/location?lat=1", "/v1/location?lat=a&lng=b"} {
		if rr, _ := f.do(t, "GET", target, ""); rr.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d", target, rr.Code)
		}
	}
}

func TestPreferences_RoundTrip(t *testing.T) {
	f := newFixture(t)

	rr, env := f.do(t, "GET", "/v1/preferences/u1", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var ui preferences.UI
	dataAs(t, env, &ui)
	if ui != preferences.Default() {
		t.Errorf("first visit = %+v, want defaults", ui)
	}

	rr, _ = f.do(t, "PUT", "/v1/preferences/u1",
		`{"iconRight":40,"iconBottom":120,"iconVisible":false,"language":"uk"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("put status = %d", rr.Code)
	}
	if got := f.prefs.data["u1"]; got.IconRight != 40 || got.Language != "uk" || got.IconVisible {
		t.Errorf("stored = %+v", got)
	}
}

func TestPreferences_Invalid(t *testing.T) {
	f := newFixture(t)
	for _, body := range []string{
		`{"iconRight":-1,"iconBottom":0,"language":"en"}`,
		`{"iconRight":1,"iconBottom":1,"language":"English"}`,
		`{"iconRight":1,"unknown":true}`,
		`not json`,
	} {
		rr, env := f.do(t, "PUT", "/v1/preferences/u1", body)
		if rr.Code != http.StatusBadRequest || env.Success {
			t.Errorf("%s: status = %d", body, rr.Code)
		}
	}
	if len(f.prefs.data) != 0 {
		t.Errorf("invalid preferences stored: %+v", f.prefs.data)
	}
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	if rr, env := f.do(t, "GET", "/health", ""); rr.Code != http.StatusOK || !env.Success {
		t.Errorf("healthy: status = %d", rr.Code)
	}

	f.health.report = healthuc.Report{Status: healthuc.Degraded}
	if rr, _ := f.do(t, "GET", "/health", ""); rr.Code != http.StatusOK {
		t.Errorf("degraded: status = %d", rr.Code)
	}

	f.health.report = healthuc.Report{Status: healthuc.Unhealthy}
	if rr, env := f.do(t, "GET", "/health", ""); rr.Code != http.StatusServiceUnavailable || env.Success {
		t.Errorf("unhealthy: status = %d", rr.Code)
	}
}

func TestRouter_NotFoundEnvelope(t *testing.T) {
	f := newFixture(t)
	rr, env := f.do(t, "GET", "/v1/nope", "")
	if rr.Code != http.StatusNotFound || env.Success || env.Message == "" {
		t.Errorf("status = %d, env = %+v", rr.Code, env)
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID")
	}
}

func TestRouter_RecoversPanics(t *testing.T) {
	f := newFixture(t)
	f.search.searchFn = func(context.Context, query.Query, searchuc.Options) (searchuc.View, error) {
		panic("boom")
	}
	rr, env := f.do(t, "GET", "/v1/search?q=x", "")
	if rr.Code != http.StatusInternalServerError || env.Message != "internal error" {
		t.Errorf("status = %d, env = %+v", rr.Code, env)
	}
}
