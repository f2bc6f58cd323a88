package geocache

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/marketsearch/internal/db"
	"github.com/kailas-cloud/marketsearch/internal/domain/location"
)

type mockGeocoder struct {
	forward      *location.Info
	reverse      *location.Info
	err          error
	forwardCalls int
	reverseCalls int
}

func (m *mockGeocoder) Geocode(_ context.Context, _ string) (*location.Info, error) {
	m.forwardCalls++
	return m.forward, m.err
}

func (m *mockGeocoder) ReverseGeocode(_ context.Context, _, _ float64) (*location.Info, error) {
	m.reverseCalls++
	return m.reverse, m.err
}

// mockKVStore implements the consumer interface for tests.
type mockKVStore struct {
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockKVStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value, ttl)
	}
	return nil
}

func newTestCachedGeocoder(t *testing.T, inner *mockGeocoder) (*CachedGeocoder, *mockKVStore) {
	t.Helper()
	ms := &mockKVStore{}
	return New(inner, ms, nil, zap.NewNop()), ms
}

func ptr(v float64) *float64 { return &v }
