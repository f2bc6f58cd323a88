package health

import "context"

// Pinger checks availability of a dependency (marketplace backend, Redis).
type Pinger interface {
	Ping(ctx context.Context) error
}
