package category

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/kailas-cloud/marketsearch/internal/db"
	"github.com/kailas-cloud/marketsearch/internal/domain"
	domcat "github.com/kailas-cloud/marketsearch/internal/domain/category"
)

type mockSource struct {
	roots []*domcat.Category
	err   error
	calls int
}

func (m *mockSource) Categories(_ context.Context) ([]*domcat.Category, error) {
	m.calls++
	return m.roots, m.err
}

// memStore implements the consumer interface for tests.
type memStore struct {
	data   map[string][]byte
	ttls   map[string]time.Duration
	getErr error
}

func newMemStore() *memStore {
	return &memStore{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *memStore) GetCached(_ context.Context, key string, _ time.Duration) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *memStore) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *memStore) Del(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func tree() []*domcat.Category {
	return []*domcat.Category{{
		ID: "home", Name: "Home", Count: &domcat.Count{Services: 2},
		Children: []*domcat.Category{{ID: "plumbing", Name: "Plumbing", Count: &domcat.Count{Services: 3}}},
	}}
}

func TestCategories_MissThenHit(t *testing.T) {
	src := &mockSource{roots: tree()}
	ms := newMemStore()
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_category_cache_total"}, []string{"result"})
	cs := New(src, ms, counter, zap.NewNop())

	for range 2 {
		roots, err := cs.Categories(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := domcat.TotalServices(roots[0]); got != 5 {
			t.Fatalf("total = %d, want 5", got)
		}
	}
	if src.calls != 1 {
		t.Fatalf("source calls = %d, want 1", src.calls)
	}
	if ms.ttls["marketsearch:categories:tree"] != DefaultTTL {
		t.Fatalf("ttl = %v", ms.ttls)
	}
	if testutil.ToFloat64(counter.WithLabelValues("hit")) != 1 || testutil.ToFloat64(counter.WithLabelValues("miss")) != 1 {
		t.Fatal("unexpected hit/miss counts")
	}
}

func TestCategories_CorruptCacheRefetches(t *testing.T) {
	src := &mockSource{roots: tree()}
	ms := newMemStore()
	ms.data[treeKey] = []byte("not json")

	if _, err := New(src, ms, nil, nil).Categories(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src.calls != 1 {
		t.Fatalf("source calls = %d, want 1", src.calls)
	}
}

func TestCategories_RedisDownStillServes(t *testing.T) {
	src := &mockSource{roots: tree()}
	ms := newMemStore()
	ms.getErr = errors.New("connection refused")

	roots, err := New(src, ms, nil, nil).Categories(context.Background())
	if err != nil || len(roots) != 1 {
		t.Fatalf("roots = %v, err = %v", roots, err)
	}
}

func TestCategories_SourceError(t *testing.T) {
	src := &mockSource{err: domain.ErrNetwork}
	if _, err := New(src, newMemStore(), nil, nil).Categories(context.Background()); !errors.Is(err, domain.ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
}

func TestInvalidate(t *testing.T) {
	src := &mockSource{roots: tree()}
	ms := newMemStore()
	cs := New(src, ms, nil, nil)

	_, _ = cs.Categories(context.Background())
	if err := cs.Invalidate(context.Background()); err != nil {
		t.Fatal(err)
	}
	_, _ = cs.Categories(context.Background())
	if src.calls != 2 {
		t.Fatalf("source calls = %d, want 2", src.calls)
	}
}
