package marketsearch

import (
	"context"
	"time"

	"github.com/kailas-cloud/marketsearch/internal/usecase/session"
)

// SessionOptions configure an interactive search session.
type SessionOptions struct {
	// Delay is the keystroke quiescence before a search fires. Default: the client's debounce (500ms).
	Delay time.Duration
	// OnChange receives every state change: loading, applied results, failures.
	// Calls are serialized.
	OnChange func(SessionState)
}

// NewSession opens a search surface. Close it when done; cancelling ctx
// abandons its in-flight searches.
func (c *Client) NewSession(ctx context.Context, opts SessionOptions) *Session {
	delay := opts.Delay
	if delay <= 0 {
		delay = c.debounce
	}
	return session.New(ctx, c, session.Config{
		Delay:    delay,
		Logger:   c.logger,
		OnChange: opts.OnChange,
	})
}
