package widget

import (
	"math"

	"github.com/kailas-cloud/marketsearch/internal/domain/preferences"
)

// Size is a width and height in CSS pixels.
type Size struct {
	W, H float64
}

// Offset converts the icon's top-left position to right/bottom offsets
// within the viewport, which is how the position is persisted: offsets
// from the bottom-right corner survive viewport resizes.
func Offset(pos Point, icon, viewport Size) (right, bottom int) {
	right = int(math.Round(viewport.W - pos.X - icon.W))
	bottom = int(math.Round(viewport.H - pos.Y - icon.H))
	return max(0, right), max(0, bottom)
}

// PositionFor is the inverse of Offset: where to draw an icon stored with ui's offsets.
// The result is clamped so the icon stays inside the viewport.
func PositionFor(ui preferences.UI, icon, viewport Size) Point {
	x := viewport.W - float64(ui.IconRight) - icon.W
	y := viewport.H - float64(ui.IconBottom) - icon.H
	return Point{
		X: math.Max(0, math.Min(x, viewport.W-icon.W)),
		Y: math.Max(0, math.Min(y, viewport.H-icon.H)),
	}
}

// Apply records a placed icon in the preferences. Non-place actions leave ui unchanged.
func Apply(ui preferences.UI, a Action, icon, viewport Size) preferences.UI {
	switch a.Kind {
	case ActionPlace:
		return ui.WithIconOffset(Offset(a.Position, icon, viewport))
	case ActionHide:
		ui.IconVisible = false
		return ui
	default:
		return ui
	}
}
