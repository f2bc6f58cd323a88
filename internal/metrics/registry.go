package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Register adds every collector of this package to reg.
// Registering twice on the same registry is a no-op.
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{
		BackendRequestsTotal,
		BackendRequestDuration,
		SearchesTotal,
		ResultsDroppedTotal,
		StaleResponsesTotal,
		GeocodeCacheTotal,
		CategoryCacheTotal,
		httpRequestDuration,
		httpRequestsTotal,
		httpInFlight,
	} {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err //nolint:wrapcheck // registry errors are self-describing
		}
	}
	return nil
}
