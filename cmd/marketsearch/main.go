package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/kailas-cloud/marketsearch"
	"github.com/kailas-cloud/marketsearch/internal/config"
	logpkg "github.com/kailas-cloud/marketsearch/internal/logger"
	"github.com/kailas-cloud/marketsearch/internal/version"
)

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "marketsearch",
		Usage:   "Search the service marketplace from the terminal, or serve the search API",
		Version: fmt.Sprintf("%s (%s, %s)", version.Version, version.Commit, version.Date),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "env",
				Usage:   "Environment name selecting config/<env>.yaml",
				Value:   "local",
				Sources: cli.EnvVars("ENV"),
			},
			&cli.StringFlag{
				Name:    "config",
				Usage:   "Explicit configuration file path (overrides --env)",
				Sources: cli.EnvVars("MARKETSEARCH_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "base-url",
				Usage:   "Marketplace API base URL (overrides backend.base_url)",
				Sources: cli.EnvVars("BACKEND_URL"),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Commands: []*cli.Command{
			searchCommand(),
			watchCommand(),
			categoriesCommand(),
			locateCommand(),
			healthCommand(),
			serveCommand(),
		},
	}
}

// loadConfig reads the configuration the global flags point at.
func loadConfig(c *cli.Command) (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if path := c.String("config"); path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load(c.String("env"))
	}
	if err != nil {
		return config.Config{}, fmt.Errorf("loading config: %w", err)
	}
	if u := strings.TrimSpace(c.String("base-url")); u != "" {
		cfg.Backend.BaseURL = u
	}
	return cfg, nil
}

// cliLogger logs warnings only, unless --debug is set.
func cliLogger(c *cli.Command, cfg config.Config) (*zap.Logger, error) {
	level := ""
	if c.Bool("debug") {
		level = "debug"
	}
	logger, err := logpkg.NewLogger("cli", level)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	return logger.With(zap.String("backend", cfg.Backend.BaseURL)), nil
}

// newClient builds an SDK client from the configuration.
func newClient(ctx context.Context, cfg config.Config, logger *zap.Logger) (*marketsearch.Client, error) {
	opts := []marketsearch.Option{
		marketsearch.WithTimeout(cfg.BackendTimeout()),
		marketsearch.WithUserAgent(userAgent(cfg)),
		marketsearch.WithCacheTTL(cfg.GeocodeTTL(), cfg.CategoryTTL()),
		marketsearch.WithDebounce(cfg.Debounce()),
		marketsearch.WithLogger(logger),
	}
	if cfg.Redis.Enabled {
		opts = append(opts,
			marketsearch.WithRedisCluster(cfg.Redis.Addrs, cfg.Redis.Username, cfg.Redis.Password),
			marketsearch.WithRedisDB(cfg.Redis.DB),
			marketsearch.WithReadinessTimeout(cfg.ReadinessTimeout()),
		)
		if cfg.Redis.ClientCache {
			opts = append(opts, marketsearch.WithClientCache())
		}
	}
	if lat, lng := cfg.Location.Latitude, cfg.Location.Longitude; lat != nil && lng != nil {
		opts = append(opts, marketsearch.WithStaticLocation(*lat, *lng))
	}

	client, err := marketsearch.New(ctx, cfg.Backend.BaseURL, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating client: %w", err)
	}
	return client, nil
}

// withClient runs fn with a configured client and closes it afterwards.
func withClient(ctx context.Context, c *cli.Command, fn func(*marketsearch.Client, config.Config) error) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	logger, err := cliLogger(c, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	client, err := newClient(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer client.Close()
	return fn(client, cfg)
}

func userAgent(cfg config.Config) string {
	return cfg.Backend.UserAgent + "/" + version.Version
}
