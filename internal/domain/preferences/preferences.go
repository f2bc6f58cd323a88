package preferences

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"golang.org/x/text/language"

	"github.com/kailas-cloud/marketsearch/internal/domain"
)

// Bounds for the floating icon offsets, in CSS pixels from the bottom-right corner.
const (
	MaxOffset     = 10000
	DefaultRight  = 24
	DefaultBottom = 96
	DefaultLang   = "en"
)

var langRe = regexp.MustCompile(`^[a-z]{2,3}(-[A-Z]{2})?$`)

// UI holds the client's persisted UI preferences: where the floating
// translate icon sits, whether it is shown, and the target language.
type UI struct {
	IconRight   int    `json:"iconRight"`
	IconBottom  int    `json:"iconBottom"`
	IconVisible bool   `json:"iconVisible"`
	Language    string `json:"language"`
}

// Default returns preferences for a first visit.
func Default() UI {
	return UI{
		IconRight:   DefaultRight,
		IconBottom:  DefaultBottom,
		IconVisible: true,
		Language:    DefaultLang,
	}
}

// Validate checks offsets and the language tag.
func (u UI) Validate() error {
	if u.IconRight < 0 || u.IconRight > MaxOffset || u.IconBottom < 0 || u.IconBottom > MaxOffset {
		return fmt.Errorf("%w: icon offset out of range [0,%d]", domain.ErrInvalidPreferences, MaxOffset)
	}
	if !langRe.MatchString(u.Language) {
		return fmt.Errorf("%w: invalid language %q", domain.ErrInvalidPreferences, u.Language)
	}
	if _, err := language.Parse(u.Language); err != nil {
		return fmt.Errorf("%w: unknown language %q", domain.ErrInvalidPreferences, u.Language)
	}
	return nil
}

// WithIconOffset returns a copy with the icon moved, clamped to the valid range.
func (u UI) WithIconOffset(right, bottom int) UI {
	u.IconRight = clamp(right)
	u.IconBottom = clamp(bottom)
	return u
}

func clamp(v int) int {
	return max(0, min(v, MaxOffset))
}

// Store persists preferences per owner (a user or device key).
type Store interface {
	Get(ctx context.Context, owner string) (UI, error)
	Put(ctx context.Context, owner string, ui UI) error
}

// Load reads preferences at mount time. Missing or corrupt entries yield defaults;
// only store failures are returned.
func Load(ctx context.Context, s Store, owner string) (UI, error) {
	ui, err := s.Get(ctx, owner)
	if errors.Is(err, domain.ErrNotFound) {
		return Default(), nil
	}
	if err != nil {
		return Default(), fmt.Errorf("load preferences: %w", err)
	}
	if ui.Validate() != nil {
		return Default(), nil
	}
	return ui, nil
}

// Save validates and writes preferences at unmount time.
func Save(ctx context.Context, s Store, owner string, ui UI) error {
	if owner == "" {
		return fmt.Errorf("%w: owner is required", domain.ErrInvalidPreferences)
	}
	if err := ui.Validate(); err != nil {
		return err
	}
	if err := s.Put(ctx, owner, ui); err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}
