package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/marketsearch/internal/domain"
	"github.com/kailas-cloud/marketsearch/internal/domain/category"
	"github.com/kailas-cloud/marketsearch/internal/domain/geo"
	"github.com/kailas-cloud/marketsearch/internal/domain/location"
	"github.com/kailas-cloud/marketsearch/internal/domain/preferences"
	"github.com/kailas-cloud/marketsearch/internal/domain/search/query"
	logpkg "github.com/kailas-cloud/marketsearch/internal/logger"
	healthuc "github.com/kailas-cloud/marketsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/marketsearch/internal/usecase/search"
)

// maxBodyBytes caps request bodies; preferences are a few dozen bytes.
const maxBodyBytes = 16 << 10

type searcher interface {
	Search(ctx context.Context, q query.Query, opts searchuc.Options) (searchuc.View, error)
}

type categorySource interface {
	Categories(ctx context.Context) ([]*category.Category, error)
}

type locator interface {
	LocationFromIP(ctx context.Context) (*location.Info, error)
	Geocode(ctx context.Context, address string) (*location.Info, error)
	ReverseGeocode(ctx context.Context, lat, lng float64) (string, error)
}

type healthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server is the backend-for-frontend: it serves the ranked view model
// so thin clients render results without reimplementing the pipeline.
type Server struct {
	search        searcher
	categories    categorySource
	locator       locator
	prefs         preferences.Store
	health        healthChecker
	defaults      SearchDefaults
	metrics       http.Handler
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates the BFF server.
func NewServer(
	search searcher,
	categories categorySource,
	locator locator,
	prefs preferences.Store,
	health healthChecker,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		search:     search,
		categories: categories,
		locator:    locator,
		prefs:      prefs,
		health:     health,
		defaults:   SearchDefaults{Threshold: query.DefaultThreshold},
		metrics:    promhttp.Handler(),
		logger:     logger,
	}
	// Order matters: the typed backend error goes before the sentinels it unwraps to.
	s.errorHandlers = []errorHandler{
		backendRejectedHandler,
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest),
		sentinelHandler(domain.ErrInvalidPreferences, http.StatusBadRequest),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound),
		sentinelHandler(domain.ErrGeocodingFailed, http.StatusUnprocessableEntity),
		sentinelHandler(domain.ErrLocationUnavailable, http.StatusNotFound),
		sentinelHandler(domain.ErrBackendRejected, http.StatusBadRequest),
		sentinelHandler(domain.ErrNetwork, http.StatusBadGateway),
	}
	return s
}

// WithSearchDefaults overrides the threshold and radius applied to /v1/search.
func (s *Server) WithSearchDefaults(d SearchDefaults) *Server {
	s.defaults = d
	return s
}

// WithMetricsHandler replaces the promhttp handler (e.g. for a custom registry).
func (s *Server) WithMetricsHandler(h http.Handler) *Server {
	if h != nil {
		s.metrics = h
	}
	return s
}

// Routes registers the BFF routes on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/search", s.Search)
		r.Get("/categories", s.ListCategories)
		r.Get("/categories/{key}", s.GetCategory)
		r.Get("/location", s.Locate)
		r.Get("/preferences/{owner}", s.GetPreferences)
		r.Put("/preferences/{owner}", s.PutPreferences)
	})
}

// Search handles GET /v1/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	q, opts, err := searchFromValues(r.URL.Query(), s.defaults)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	r = r.WithContext(logpkg.With(r.Context(),
		zap.String("search_text", q.Text),
		zap.String("sort", string(opts.Sort)),
	))
	view, err := s.search.Search(r.Context(), q, opts)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, view.Message, viewToDTO(view))
}

// ListCategories handles GET /v1/categories.
func (s *Server) ListCategories(w http.ResponseWriter, r *http.Request) {
	roots, err := s.categories.Categories(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "", category.Summarize(roots))
}

// GetCategory handles GET /v1/categories/{key}, where key is an ID or a slug.
func (s *Server) GetCategory(w http.ResponseWriter, r *http.Request) {
	roots, err := s.categories.Categories(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	c := category.Find(roots, chi.URLParam(r, "key"))
	if c == nil {
		writeError(w, http.StatusNotFound, "category not found")
		return
	}
	writeData(w, http.StatusOK, "", category.Summarize([]*category.Category{c})[0])
}

// Locate handles GET /v1/location.
// With lat/lng it reverse geocodes, with address it geocodes, otherwise it resolves by IP.
func (s *Server) Locate(w http.ResponseWriter, r *http.Request) {
	v := r.URL.Query()

	lat, err := optFloat(v, "lat")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	lng, err := optFloat(v, "lng")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	switch {
	case lat != nil && lng != nil:
		if !geo.ValidateCoordinates(*lat, *lng) {
			writeError(w, http.StatusBadRequest, "coordinates out of range")
			return
		}
		// A failed lookup still yields a coordinate label, so it is not an error here.
		addr, err := s.locator.ReverseGeocode(r.Context(), *lat, *lng)
		msg := ""
		if err != nil {
			logpkg.FromContextOr(r.Context(), s.logger).Info("Reverse geocoding failed, using coordinates", zap.Error(err))
			msg = domain.ErrGeocodingFailed.Error()
		}
		info := &location.Info{Latitude: lat, Longitude: lng, Address: addr, Source: location.SourceDevice}
		writeData(w, http.StatusOK, msg, locationView{Info: info, Label: info.DisplayAddress()})
	case lat != nil || lng != nil:
		writeError(w, http.StatusBadRequest, "lat and lng must be set together")
	case strings.TrimSpace(v.Get("address")) != "":
		info, err := s.locator.Geocode(r.Context(), v.Get("address"))
		if err != nil {
			s.handleDomainError(w, r, err)
			return
		}
		writeData(w, http.StatusOK, "", locationView{Info: info, Label: info.DisplayAddress()})
	default:
		info, err := s.locator.LocationFromIP(r.Context())
		if err != nil {
			s.handleDomainError(w, r, err)
			return
		}
		writeData(w, http.StatusOK, "", locationView{Info: info, Label: info.DisplayAddress()})
	}
}

// GetPreferences handles GET /v1/preferences/{owner}. Unknown owners get defaults.
func (s *Server) GetPreferences(w http.ResponseWriter, r *http.Request) {
	ui, err := preferences.Load(r.Context(), s.prefs, chi.URLParam(r, "owner"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "", ui)
}

// PutPreferences handles PUT /v1/preferences/{owner}.
func (s *Server) PutPreferences(w http.ResponseWriter, r *http.Request) {
	var ui preferences.UI
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&ui); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	owner := chi.URLParam(r, "owner")
	r = r.WithContext(logpkg.With(r.Context(), zap.String("owner", owner)))
	if err := preferences.Save(r.Context(), s.prefs, owner, ui); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "", ui)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, envelope{
		Success: report.Status != healthuc.Unhealthy,
		Message: string(report.Status),
		Data:    report,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	s.metrics.ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, envelope{Success: true, Message: message, Data: data})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Success: false, Message: message})
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
// The client sees the sentinel's text, never the wrapped chain.
func sentinelHandler(sentinel error, status int) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, sentinel.Error())
		return true
	}
}

// backendRejectedHandler forwards the backend's own 4xx status and message.
func backendRejectedHandler(w http.ResponseWriter, err error) bool {
	var be *domain.BackendError
	if !errors.As(err, &be) || !errors.Is(be, domain.ErrBackendRejected) {
		return false
	}
	status := be.Status
	if status < http.StatusBadRequest || status >= http.StatusInternalServerError {
		status = http.StatusBadRequest
	}
	msg := be.Message
	if msg == "" {
		msg = domain.ErrBackendRejected.Error()
	}
	writeError(w, status, msg)
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	logger := logpkg.FromContextOr(r.Context(), s.logger)
	logger.Warn("domain error", zap.Error(err))
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}
