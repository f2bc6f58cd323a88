package health

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

// --- Mocks ---

type mockPinger struct {
	err   error
	calls atomic.Int32
}

func (m *mockPinger) Ping(_ context.Context) error {
	m.calls.Add(1)
	return m.err
}

// hangingPinger blocks until its context is done.
type hangingPinger struct{}

func (hangingPinger) Ping(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

// --- Tests ---

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(&mockPinger{}, &mockPinger{})
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if r.Checks["backend"] != CheckOK {
		t.Errorf("expected backend %q, got %q", CheckOK, r.Checks["backend"])
	}
	if r.Checks["cache"] != CheckOK {
		t.Errorf("expected cache %q, got %q", CheckOK, r.Checks["cache"])
	}
}

func TestCheck_BackendError(t *testing.T) {
	svc := New(&mockPinger{err: errors.New("conn refused")}, &mockPinger{})
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
	if r.Checks["backend"] != CheckError {
		t.Errorf("expected backend %q, got %q", CheckError, r.Checks["backend"])
	}
}

func TestCheck_CacheError(t *testing.T) {
	svc := New(&mockPinger{}, &mockPinger{err: errors.New("timeout")})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["cache"] != CheckError {
		t.Errorf("expected cache %q, got %q", CheckError, r.Checks["cache"])
	}
}

func TestCheck_BothDown(t *testing.T) {
	svc := New(&mockPinger{err: errors.New("down")}, &mockPinger{err: errors.New("down")})
	if r := svc.Check(context.Background()); r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
}

func TestCheck_NoCache(t *testing.T) {
	svc := New(&mockPinger{}, nil)
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if _, ok := r.Checks["cache"]; ok {
		t.Error("cache check should be absent without a store")
	}
}

func TestCheck_PingsEachComponentOnce(t *testing.T) {
	backend, cache := &mockPinger{}, &mockPinger{}
	New(backend, cache).Check(context.Background())

	if backend.calls.Load() != 1 || cache.calls.Load() != 1 {
		t.Errorf("calls: backend=%d cache=%d", backend.calls.Load(), cache.calls.Load())
	}
}

func TestCheck_HungCacheTimesOut(t *testing.T) {
	svc := New(&mockPinger{}, hangingPinger{}).WithTimeout(20 * time.Millisecond)

	start := time.Now()
	r := svc.Check(context.Background())

	if time.Since(start) > time.Second {
		t.Fatal("probe deadline not applied")
	}
	if r.Status != Degraded || r.Checks["cache"] != CheckError {
		t.Errorf("got %q / cache %q", r.Status, r.Checks["cache"])
	}
}
