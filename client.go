package marketsearch

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/marketsearch/internal/db"
	dbRedis "github.com/kailas-cloud/marketsearch/internal/db/redis"
	"github.com/kailas-cloud/marketsearch/internal/domain"
	"github.com/kailas-cloud/marketsearch/internal/domain/category"
	"github.com/kailas-cloud/marketsearch/internal/domain/geo"
	"github.com/kailas-cloud/marketsearch/internal/domain/location"
	"github.com/kailas-cloud/marketsearch/internal/domain/preferences"
	"github.com/kailas-cloud/marketsearch/internal/domain/search/query"
	"github.com/kailas-cloud/marketsearch/internal/metrics"
	categoryrepo "github.com/kailas-cloud/marketsearch/internal/repository/category"
	"github.com/kailas-cloud/marketsearch/internal/repository/geocache"
	prefrepo "github.com/kailas-cloud/marketsearch/internal/repository/preferences"
	"github.com/kailas-cloud/marketsearch/internal/transport/rest"
	"github.com/kailas-cloud/marketsearch/internal/usecase/geolocation"
	healthuc "github.com/kailas-cloud/marketsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/marketsearch/internal/usecase/search"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces, swapped out in tests.
type searchUseCase interface {
	Search(ctx context.Context, q query.Query, opts searchuc.Options) (searchuc.View, error)
}

type locationUseCase interface {
	CurrentLocation(ctx context.Context) (geo.Coordinates, error)
	LocationFromIP(ctx context.Context) (*location.Info, error)
	Geocode(ctx context.Context, address string) (*location.Info, error)
	ReverseGeocode(ctx context.Context, lat, lng float64) (string, error)
	Resolve(ctx context.Context) (*location.Info, error)
}

type categorySource interface {
	Categories(ctx context.Context) ([]*category.Category, error)
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// cacheStore is what the caches and the preference repository need from Redis.
type cacheStore interface {
	db.Store
	db.CachedReader
}

// Client is the marketsearch SDK entry point.
type Client struct {
	store      db.Store
	searchSvc  searchUseCase
	locator    locationUseCase
	categories categorySource
	prefs      preferences.Store
	healthSvc  healthUseCase
	debounce   time.Duration
	logger     *zap.Logger
	obs        *observer
}

// New creates a Client for the marketplace API at baseURL (e.g. "https://host/api").
// With WithRedis the provided context bounds the initial readiness check.
func New(ctx context.Context, baseURL string, opts ...Option) (*Client, error) {
	cfg := &clientConfig{readinessTimeout: defaultReadinessTimeout}
	for _, o := range opts {
		o.apply(cfg)
	}
	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	backend, err := rest.New(rest.Config{
		BaseURL:    baseURL,
		HTTPClient: cfg.httpClient,
		Timeout:    cfg.timeout,
		UserAgent:  cfg.userAgent,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("marketsearch: %w", err)
	}

	if cfg.metricsReg != nil {
		if err := metrics.Register(cfg.metricsReg); err != nil {
			return nil, fmt.Errorf("marketsearch: register metrics: %w", err)
		}
	}
	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	// Pass a nil interface (not a typed nil pointer) when Redis is not configured.
	var store cacheStore
	if len(cfg.redisAddrs) > 0 {
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:       cfg.redisAddrs,
			Username:    cfg.redisUsername,
			Password:    cfg.redisPassword,
			DB:          cfg.redisDB,
			ClientCache: cfg.clientCache,
		})
		if err != nil {
			return nil, fmt.Errorf("marketsearch: create redis store: %w", err)
		}
		if err := s.WaitForReady(ctx, cfg.readinessTimeout); err != nil {
			s.Close()
			return nil, fmt.Errorf("marketsearch: redis not ready: %w", err)
		}
		store = s
	}

	return wireClient(backend, store, cfg, logger, obs), nil
}

func wireClient(backend *rest.Client, store cacheStore, cfg *clientConfig, logger *zap.Logger, obs *observer) *Client {
	var (
		geocoder   domain.Geocoder = backend
		categories categorySource  = backend
		prefs      preferences.Store
		cache      healthuc.Pinger
	)
	if store != nil {
		geocoder = geocache.New(backend, store, metrics.GeocodeCacheTotal, logger).WithTTL(cfg.geocodeTTL)
		categories = categoryrepo.New(backend, store, metrics.CategoryCacheTotal, logger).WithTTL(cfg.categoryTTL)
		prefs = prefrepo.New(store)
		cache = store
	} else {
		prefs = prefrepo.NewMemory()
	}

	resolver := geolocation.New(cfg.device, backend, geocoder, logger)
	if cfg.positionOpts != nil {
		resolver = resolver.WithPositionOptions(*cfg.positionOpts)
	}

	return &Client{
		store:      store,
		searchSvc:  searchuc.New(backend, resolver, logger),
		locator:    resolver,
		categories: categories,
		prefs:      prefs,
		healthSvc:  healthuc.New(backend, cache),
		debounce:   cfg.debounce,
		logger:     logger,
		obs:        obs,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// HealthStatus is the aggregated state of the backend and the cache.
type HealthStatus struct {
	Status string
	Checks map[string]string
}

// Health checks the marketplace backend and, when configured, Redis.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.healthSvc.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{Status: string(report.Status), Checks: checks}
}

// Categories returns the category tree with its service counts.
func (c *Client) Categories(ctx context.Context) (_ []*Category, err error) {
	start := time.Now()
	defer func() { c.obs.observe("categories", start, err) }()

	roots, err := c.categories.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("categories: %w", err)
	}
	return roots, nil
}

// CategorySummaries returns the category tree with totals aggregated over descendants.
func (c *Client) CategorySummaries(ctx context.Context) ([]*CategorySummary, error) {
	roots, err := c.Categories(ctx)
	if err != nil {
		return nil, err
	}
	return category.Summarize(roots), nil
}

// LoadPreferences reads the owner's UI preferences. Unknown owners get defaults.
func (c *Client) LoadPreferences(ctx context.Context, owner string) (_ Preferences, err error) {
	start := time.Now()
	defer func() { c.obs.observe("load_preferences", start, err) }()

	return preferences.Load(ctx, c.prefs, owner) //nolint:wrapcheck // already wrapped by the domain
}

// SavePreferences validates and stores the owner's UI preferences.
func (c *Client) SavePreferences(ctx context.Context, owner string, ui Preferences) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("save_preferences", start, err) }()

	return preferences.Save(ctx, c.prefs, owner, ui) //nolint:wrapcheck // already wrapped by the domain
}

// DefaultPreferences returns preferences for a first visit.
func DefaultPreferences() Preferences {
	return preferences.Default()
}
