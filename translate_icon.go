package marketsearch

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/marketsearch/internal/domain/widget"
)

// IconPoint is a position in CSS pixels.
type IconPoint = widget.Point

// IconSize is a width and height in CSS pixels.
type IconSize = widget.Size

// IconAction tells the UI what to do after a pointer event.
type IconAction = widget.Action

// IconState is the translate icon's interaction state.
type IconState = widget.State

// Icon actions.
const (
	IconNone  = widget.ActionNone
	IconOpen  = widget.ActionOpen
	IconMove  = widget.ActionMove
	IconPlace = widget.ActionPlace
	IconHide  = widget.ActionHide
)

// TranslateIcon drives the floating translate icon of one owner.
// A finished drag and a dismissal are written to the owner's preferences.
// It is driven by a single UI event loop and is not safe for concurrent use.
type TranslateIcon struct {
	client   *Client
	owner    string
	icon     *widget.Icon
	ui       Preferences
	size     IconSize
	viewport IconSize
}

// NewTranslateIcon loads the owner's preferences and places the icon where it was left.
func (c *Client) NewTranslateIcon(ctx context.Context, owner string, size, viewport IconSize) (*TranslateIcon, error) {
	ui, err := c.LoadPreferences(ctx, owner)
	if err != nil {
		return nil, err
	}
	return &TranslateIcon{
		client:   c,
		owner:    owner,
		icon:     widget.NewIcon(widget.DefaultConfig(), widget.PositionFor(ui, size, viewport)),
		ui:       ui,
		size:     size,
		viewport: viewport,
	}, nil
}

// Visible reports whether the icon should be drawn.
func (t *TranslateIcon) Visible() bool { return t.ui.IconVisible }

// Position returns where the icon is drawn.
func (t *TranslateIcon) Position() IconPoint { return t.icon.Position() }

// State returns the interaction state.
func (t *TranslateIcon) State() IconState { return t.icon.State() }

// Preferences returns the owner's preferences as last applied.
func (t *TranslateIcon) Preferences() Preferences { return t.ui }

// Language is the translator's target language.
func (t *TranslateIcon) Language() string { return t.ui.Language }

// PointerDown starts a press on the icon.
func (t *TranslateIcon) PointerDown(p IconPoint) IconAction { return t.icon.PointerDown(p) }

// PointerMove drags the icon once the press has travelled far enough.
func (t *TranslateIcon) PointerMove(p IconPoint) IconAction { return t.icon.PointerMove(p) }

// PointerUp ends a press. A released drag stores the new offsets.
func (t *TranslateIcon) PointerUp(ctx context.Context, now time.Time) (IconAction, error) {
	a := t.icon.PointerUp(now)
	return a, t.persist(ctx, a)
}

// Click opens the translator, or hides the icon while it is armed.
// Hiding is stored so the icon stays hidden on the next visit.
func (t *TranslateIcon) Click(ctx context.Context, now time.Time) (IconAction, error) {
	a := t.icon.Click(now)
	return a, t.persist(ctx, a)
}

// Tick disarms the icon after its timeout.
func (t *TranslateIcon) Tick(now time.Time) { t.icon.Tick(now) }

// Resize keeps the stored offsets and redraws the icon for a new viewport.
func (t *TranslateIcon) Resize(viewport IconSize) {
	t.viewport = viewport
	t.icon = widget.NewIcon(widget.DefaultConfig(), widget.PositionFor(t.ui, t.size, viewport))
}

func (t *TranslateIcon) persist(ctx context.Context, a IconAction) error {
	if a.Kind != widget.ActionPlace && a.Kind != widget.ActionHide {
		return nil
	}
	next := widget.Apply(t.ui, a, t.size, t.viewport)
	if next == t.ui {
		return nil
	}
	if err := t.client.SavePreferences(ctx, t.owner, next); err != nil {
		return fmt.Errorf("translate icon: %w", err)
	}
	t.ui = next
	return nil
}

