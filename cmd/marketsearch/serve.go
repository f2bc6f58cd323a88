package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/kailas-cloud/marketsearch/internal/config"
	dbRedis "github.com/kailas-cloud/marketsearch/internal/db/redis"
	"github.com/kailas-cloud/marketsearch/internal/domain"
	"github.com/kailas-cloud/marketsearch/internal/domain/category"
	"github.com/kailas-cloud/marketsearch/internal/domain/preferences"
	logpkg "github.com/kailas-cloud/marketsearch/internal/logger"
	"github.com/kailas-cloud/marketsearch/internal/metrics"
	categoryrepo "github.com/kailas-cloud/marketsearch/internal/repository/category"
	"github.com/kailas-cloud/marketsearch/internal/repository/geocache"
	prefrepo "github.com/kailas-cloud/marketsearch/internal/repository/preferences"
	chiTransport "github.com/kailas-cloud/marketsearch/internal/transport/chi"
	"github.com/kailas-cloud/marketsearch/internal/transport/rest"
	"github.com/kailas-cloud/marketsearch/internal/usecase/geolocation"
	healthuc "github.com/kailas-cloud/marketsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/marketsearch/internal/usecase/search"
	"github.com/kailas-cloud/marketsearch/internal/version"
)

type categorySource interface {
	Categories(ctx context.Context) ([]*category.Category, error)
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the search API for thin clients",
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			env := c.String("env")
			level := cfg.Logging.Level
			if c.Bool("debug") {
				level = "debug"
			}
			logger, err := logpkg.NewLogger(env, level)
			if err != nil {
				return fmt.Errorf("creating logger: %w", err)
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, env, logger)
		},
	}
}

// serve is the composition root of the HTTP server. It returns after a graceful shutdown.
func serve(ctx context.Context, cfg config.Config, env string, logger *zap.Logger) error {
	logger.Info("Starting marketsearch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("backend", cfg.Backend.BaseURL),
		zap.Bool("redis", cfg.Redis.Enabled),
	)

	// Register metrics explicitly (no init())
	if err := metrics.Register(nil); err != nil {
		return fmt.Errorf("registering metrics: %w", err)
	}

	backend, err := rest.New(rest.Config{
		BaseURL:   cfg.Backend.BaseURL,
		Timeout:   cfg.BackendTimeout(),
		UserAgent: userAgent(cfg),
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("creating backend client: %w", err)
	}

	// Caches and persistent preferences only with Redis; pass nil interfaces otherwise.
	var (
		geocoder   domain.Geocoder = backend
		categories categorySource  = backend
		prefs      preferences.Store
		cache      healthuc.Pinger
	)
	if cfg.Redis.Enabled {
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:       cfg.Redis.Addrs,
			Username:    cfg.Redis.Username,
			Password:    cfg.Redis.Password,
			DB:          cfg.Redis.DB,
			ClientCache: cfg.Redis.ClientCache,
		})
		if err != nil {
			return fmt.Errorf("creating redis store: %w", err)
		}
		defer store.Close()

		if err := store.WaitForReady(ctx, cfg.ReadinessTimeout()); err != nil {
			return fmt.Errorf("redis not ready: %w", err)
		}
		logger.Info("Connected to redis", zap.Strings("addrs", cfg.Redis.Addrs))

		geocoder = geocache.New(backend, store, metrics.GeocodeCacheTotal, logger).WithTTL(cfg.GeocodeTTL())
		categories = categoryrepo.New(backend, store, metrics.CategoryCacheTotal, logger).WithTTL(cfg.CategoryTTL())
		prefs = prefrepo.New(store)
		cache = store
	} else {
		logger.Warn("Redis disabled: no caches, preferences kept in memory")
		prefs = prefrepo.NewMemory()
	}

	// A server has no device; the resolver uses the IP lookup and the geocoder.
	resolver := geolocation.New(nil, backend, geocoder, logger)
	searchSvc := searchuc.New(backend, resolver, logger)
	healthSvc := healthuc.New(backend, cache)

	server := chiTransport.NewServer(searchSvc, categories, resolver, prefs, healthSvc, logger).
		WithSearchDefaults(chiTransport.SearchDefaults{
			Threshold: cfg.Search.Threshold,
			RadiusKm:  cfg.Search.DefaultRadiusKm,
		})
	handler := chiTransport.NewRouter(server, chiTransport.RouterConfig{
		Logger:         logger,
		APIKeys:        cfg.Auth.APIKeys,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
	})

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		ReadHeaderTimeout: time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("Server stopped gracefully")
	return nil
}
