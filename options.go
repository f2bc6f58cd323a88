package marketsearch

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/marketsearch/internal/usecase/geolocation"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	httpClient *http.Client
	timeout    time.Duration
	userAgent  string

	redisAddrs       []string
	redisUsername    string
	redisPassword    string
	redisDB          int
	clientCache      bool
	readinessTimeout time.Duration

	geocodeTTL  time.Duration
	categoryTTL time.Duration

	device       geolocation.DeviceLocator
	positionOpts *geolocation.PositionOptions
	debounce     time.Duration

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

// WithHTTPClient sets the HTTP client used for backend calls.
// Its own timeout applies; WithTimeout is ignored.
func WithHTTPClient(hc *http.Client) Option {
	return optionFunc(func(c *clientConfig) {
		c.httpClient = hc
	})
}

// WithTimeout sets the per-request backend timeout. Default: 15s.
func WithTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.timeout = d
	})
}

// WithUserAgent sets the User-Agent sent to the backend.
func WithUserAgent(ua string) Option {
	return optionFunc(func(c *clientConfig) {
		c.userAgent = ua
	})
}

// WithRedis enables the geocode and category caches and persistent preferences.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.redisAddrs = []string{addr}
		c.redisPassword = password
	})
}

// WithRedisCluster is WithRedis for several seed addresses and ACL credentials.
func WithRedisCluster(addrs []string, username, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.redisAddrs = addrs
		c.redisUsername = username
		c.redisPassword = password
	})
}

// WithReadinessTimeout bounds how long New waits for Redis. Default: 10s.
func WithReadinessTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		if d > 0 {
			c.readinessTimeout = d
		}
	})
}

// WithRedisDB selects the logical database.
func WithRedisDB(db int) Option {
	return optionFunc(func(c *clientConfig) {
		c.redisDB = db
	})
}

// WithClientCache enables RESP3 client-side caching for the category tree.
func WithClientCache() Option {
	return optionFunc(func(c *clientConfig) {
		c.clientCache = true
	})
}

// WithCacheTTL overrides the geocode and category cache lifetimes. Zero keeps the default.
func WithCacheTTL(geocode, categories time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.geocodeTTL = geocode
		c.categoryTTL = categories
	})
}

// WithDeviceLocator sets the device position capability.
// Without it, location resolution falls back to the backend's IP lookup.
func WithDeviceLocator(d DeviceLocator) Option {
	return optionFunc(func(c *clientConfig) {
		c.device = d
	})
}

// WithStaticLocation uses a fixed position as the device location.
func WithStaticLocation(lat, lng float64) Option {
	return WithDeviceLocator(geolocation.StaticLocator{
		Coordinates: Coordinates{Latitude: lat, Longitude: lng},
	})
}

// WithPositionOptions overrides the device position request (accuracy, timeout, cache age).
func WithPositionOptions(o PositionOptions) Option {
	return optionFunc(func(c *clientConfig) {
		c.positionOpts = &o
	})
}

// WithDebounce sets the default keystroke quiescence for sessions. Default: 500ms.
func WithDebounce(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.debounce = d
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations,
// backend calls, caches, stale responses) on the given registerer.
// Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
