package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/marketsearch/internal/db"
)

var (
	_ db.Store        = (*Store)(nil)
	_ db.CachedReader = (*Store)(nil)
)

// clientName tags our connections in CLIENT LIST.
const clientName = "marketsearch"

// readyPollInterval is the pause between PINGs while waiting for the server.
const readyPollInterval = 100 * time.Millisecond

// Config holds connection parameters for the cache store.
type Config struct {
	Addrs    []string
	Username string
	Password string
	DB       int
	// ClientCache enables RESP3 server-assisted caching for GetCached.
	// Leave it off for servers without CLIENT TRACKING.
	ClientCache bool
	// WriteTimeout bounds a single socket write; zero keeps the rueidis default.
	WriteTimeout time.Duration
}

// Store backs the geocode, category and preference caches.
type Store struct {
	client rueidis.Client
}

// NewStore dials the configured addresses.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, errors.New("redis: at least one address is required")
	}

	opt := rueidis.ClientOption{
		InitAddress:      cfg.Addrs,
		Username:         cfg.Username,
		Password:         cfg.Password,
		SelectDB:         cfg.DB,
		ClientName:       clientName,
		ConnWriteTimeout: cfg.WriteTimeout,
		DisableCache:     !cfg.ClientCache,
	}
	// Tracking is the only RESP3 feature we use.
	if !cfg.ClientCache {
		opt.AlwaysRESP2 = true
	}

	client, err := rueidis.NewClient(opt)
	if err != nil {
		return nil, fmt.Errorf("redis: connect %v: %w", cfg.Addrs, err)
	}
	return &Store{client: client}, nil
}

// Ping reports whether the server answers.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.do(ctx, s.b().Ping().Build()).Error(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Close releases all connections.
func (s *Store) Close() {
	s.client.Close()
}

// WaitForReady pings until the server answers or timeout elapses.
// The returned error carries the last ping failure.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	for {
		lastErr := s.Ping(ctx)
		if lastErr == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("redis not ready after %s: %w", timeout, lastErr)
		case <-time.After(readyPollInterval):
		}
	}
}

func (s *Store) do(ctx context.Context, cmd rueidis.Completed) rueidis.RedisResult {
	return s.client.Do(ctx, cmd)
}

func (s *Store) b() rueidis.Builder {
	return s.client.B()
}
