package preferences

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kailas-cloud/marketsearch/internal/db"
	"github.com/kailas-cloud/marketsearch/internal/domain"
	dompref "github.com/kailas-cloud/marketsearch/internal/domain/preferences"
)

var keyPrefix = domain.KeyPrefix + "prefs:"

// Compile-time check: Repo implements the domain store.
var _ dompref.Store = (*Repo)(nil)

// store is the consumer interface for preferences (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Del(ctx context.Context, key string) error
}

// Repo keeps one JSON blob per owner.
type Repo struct {
	store store
}

// New creates a preferences repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Get returns the owner's preferences.
// A missing or undecodable entry is domain.ErrNotFound.
func (r *Repo) Get(ctx context.Context, owner string) (dompref.UI, error) {
	data, err := r.store.Get(ctx, key(owner))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return dompref.UI{}, domain.ErrNotFound
		}
		return dompref.UI{}, fmt.Errorf("get preferences: %w", err)
	}

	var ui dompref.UI
	if err = json.Unmarshal(data, &ui); err != nil {
		return dompref.UI{}, fmt.Errorf("%w: corrupt preferences for %q", domain.ErrNotFound, owner)
	}
	return ui, nil
}

// Put overwrites the owner's preferences.
func (r *Repo) Put(ctx context.Context, owner string, ui dompref.UI) error {
	data, err := json.Marshal(ui)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}
	if err = r.store.Set(ctx, key(owner), data); err != nil {
		return fmt.Errorf("put preferences: %w", err)
	}
	return nil
}

// Delete forgets the owner's preferences.
func (r *Repo) Delete(ctx context.Context, owner string) error {
	if err := r.store.Del(ctx, key(owner)); err != nil {
		return fmt.Errorf("delete preferences: %w", err)
	}
	return nil
}

func key(owner string) string {
	return keyPrefix + owner
}
