package health

import (
	"context"
	"sync"
	"time"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates the backend is up but an auxiliary store is not.
	Degraded Status = "degraded"
	// Unhealthy indicates the marketplace backend is unreachable.
	Unhealthy Status = "error"
)

// CheckResult is the outcome of one component probe.
type CheckResult string

const (
	CheckOK    CheckResult = "ok"
	CheckError CheckResult = "error"
)

// DefaultCheckTimeout bounds each probe so a hung dependency cannot stall /health.
const DefaultCheckTimeout = 2 * time.Second

// Report aggregates probe results.
type Report struct {
	Status Status                 `json:"status"`
	Checks map[string]CheckResult `json:"checks"`
}

type probe struct {
	name string
	p    Pinger
	// critical probes turn the report Unhealthy, the rest only Degraded.
	critical bool
}

// Service probes the backend and the optional cache.
type Service struct {
	probes  []probe
	timeout time.Duration
}

// New creates a Service. cache can be nil when Redis is disabled.
func New(backend, cache Pinger) *Service {
	probes := []probe{{name: "backend", p: backend, critical: true}}
	if cache != nil {
		probes = append(probes, probe{name: "cache", p: cache})
	}
	return &Service{probes: probes, timeout: DefaultCheckTimeout}
}

// WithTimeout overrides the per-probe deadline. Non-positive values are ignored.
func (s *Service) WithTimeout(d time.Duration) *Service {
	if d > 0 {
		s.timeout = d
	}
	return s
}

// Check probes every component concurrently.
func (s *Service) Check(ctx context.Context) Report {
	results := make([]CheckResult, len(s.probes))

	var wg sync.WaitGroup
	for i, pr := range s.probes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pctx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()
			results[i] = CheckOK
			if err := pr.p.Ping(pctx); err != nil {
				results[i] = CheckError
			}
		}()
	}
	wg.Wait()

	report := Report{Status: Healthy, Checks: make(map[string]CheckResult, len(s.probes))}
	for i, pr := range s.probes {
		report.Checks[pr.name] = results[i]
		if results[i] == CheckOK {
			continue
		}
		switch {
		case pr.critical:
			report.Status = Unhealthy
		case report.Status == Healthy:
			report.Status = Degraded
		}
	}
	return report
}
