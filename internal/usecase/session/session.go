// Package session holds one search surface's state: debounced input,
// sequence-tagged requests and the latest applied view.
package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/marketsearch/internal/domain/search/query"
	"github.com/kailas-cloud/marketsearch/internal/domain/search/sortby"
	"github.com/kailas-cloud/marketsearch/internal/metrics"
	"github.com/kailas-cloud/marketsearch/internal/usecase/search"
)

// Searcher runs one search.
type Searcher interface {
	Search(ctx context.Context, q query.Query, opts search.Options) (search.View, error)
}

// State is a snapshot of the session.
type State struct {
	// Seq is the sequence of the search the view belongs to (0 before the first result).
	Seq     uint64
	Query   query.Query
	View    search.View
	Loading bool
	// Err is the last failure; View still holds the previous results.
	Err error
}

// Config holds session settings.
type Config struct {
	Delay    time.Duration
	Clock    Clock
	Logger   *zap.Logger
	OnChange func(State)
}

// Session is one search surface. Only the response to the most recently
// issued search is ever applied; earlier responses are discarded.
type Session struct {
	searcher Searcher
	debounce *Debouncer
	logger   *zap.Logger
	onChange func(State)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	query  query.Query
	sort   sortby.Criterion
	issued uint64
	state  State

	notifyMu sync.Mutex
}

// New creates a session bound to ctx; cancelling ctx abandons in-flight searches.
func New(ctx context.Context, searcher Searcher, cfg Config) *Session {
	if cfg.Delay <= 0 {
		cfg.Delay = DefaultDelay
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(ctx)
	return &Session{
		searcher: searcher,
		debounce: NewDebouncer(cfg.Delay, cfg.Clock),
		logger:   cfg.Logger,
		onChange: cfg.OnChange,
		ctx:      ctx,
		cancel:   cancel,
		sort:     sortby.Default,
	}
}

// Input records a keystroke. The search fires after the debounce delay with
// the text current at that moment; the other filters are kept.
func (s *Session) Input(text string) {
	s.mu.Lock()
	s.query.Text = text
	s.mu.Unlock()

	s.debounce.Trigger(func() {
		s.mu.Lock()
		q := s.query
		s.mu.Unlock()
		s.Submit(q)
	})
}

// Submit replaces the whole query and searches immediately,
// cancelling any pending debounced search. It returns the request's sequence.
func (s *Session) Submit(q query.Query) uint64 {
	s.debounce.Cancel()

	s.mu.Lock()
	s.issued++
	seq := s.issued
	s.query = q
	opts := search.Options{Sort: s.sort}
	s.state.Loading = true
	snap := s.state
	s.mu.Unlock()

	s.notify(snap)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		view, err := s.searcher.Search(s.ctx, q, opts)
		s.resolve(seq, q, view, err)
	}()
	return seq
}

func (s *Session) resolve(seq uint64, q query.Query, view search.View, err error) {
	s.mu.Lock()
	if seq != s.issued {
		latest := s.issued
		s.mu.Unlock()
		metrics.StaleResponsesTotal.Inc()
		s.logger.Debug("Discarding stale search response",
			zap.Uint64("seq", seq), zap.Uint64("latest", latest))
		return
	}

	s.state.Loading = false
	if err != nil {
		s.state.Err = err
		s.logger.Warn("Search failed, keeping previous results", zap.Uint64("seq", seq), zap.Error(err))
	} else {
		// SetSort may have run while the search was in flight.
		if view.Sort != s.sort {
			view = view.Resorted(s.sort)
		}
		s.state = State{Seq: seq, Query: q, View: view}
	}
	snap := s.state
	s.mu.Unlock()

	s.notify(snap)
}

// SetSort reorders the current results client-side; later searches use it too.
func (s *Session) SetSort(c sortby.Criterion) {
	if !c.IsValid() {
		return
	}
	s.mu.Lock()
	s.sort = c
	s.state.View = s.state.View.Resorted(c)
	snap := s.state
	s.mu.Unlock()
	s.notify(snap)
}

// ShowMore reveals the next page of the current results.
func (s *Session) ShowMore() {
	s.mu.Lock()
	if !s.state.View.HasMore {
		s.mu.Unlock()
		return
	}
	s.state.View = s.state.View.ShowMore()
	snap := s.state
	s.mu.Unlock()
	s.notify(snap)
}

// State returns the current snapshot.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Wait blocks until every issued search has resolved.
func (s *Session) Wait() {
	s.wg.Wait()
}

// Close cancels pending input and in-flight searches.
func (s *Session) Close() {
	s.debounce.Cancel()
	s.cancel()
	s.wg.Wait()
}

func (s *Session) notify(st State) {
	if s.onChange == nil {
		return
	}
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	s.onChange(st)
}
