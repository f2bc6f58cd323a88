package widget

import (
	"testing"
	"time"

	"github.com/kailas-cloud/marketsearch/internal/domain/preferences"
)

var (
	iconSize = Size{W: 48, H: 48}
	viewport = Size{W: 1280, H: 800}
)

func TestOffset_RoundTrip(t *testing.T) {
	pos := Point{X: 1000.4, Y: 600}
	right, bottom := Offset(pos, iconSize, viewport)
	if right != 232 || bottom != 152 {
		t.Fatalf("offset = %d,%d, want 232,152", right, bottom)
	}

	ui := preferences.Default().WithIconOffset(right, bottom)
	got := PositionFor(ui, iconSize, viewport)
	if got.X != 1000 || got.Y != 600 {
		t.Errorf("position = %+v, want {1000 600}", got)
	}
}

func TestOffset_ClampsOffscreen(t *testing.T) {
	right, bottom := Offset(Point{X: 1270, Y: 790}, iconSize, viewport)
	if right != 0 || bottom != 0 {
		t.Errorf("offset = %d,%d, want 0,0", right, bottom)
	}
}

func TestPositionFor_SmallerViewport(t *testing.T) {
	ui := preferences.Default().WithIconOffset(2000, 10)
	got := PositionFor(ui, iconSize, Size{W: 400, H: 300})
	if got.X != 0 {
		t.Errorf("x = %v, want clamped to 0", got.X)
	}
	if got.Y != 242 {
		t.Errorf("y = %v, want 242", got.Y)
	}
}

func TestApply_DragThenDismiss(t *testing.T) {
	now := time.Unix(0, 0)
	icon := NewIcon(DefaultConfig(), Point{X: 100, Y: 100})
	ui := preferences.Default()

	icon.PointerDown(Point{X: 110, Y: 110})
	icon.PointerMove(Point{X: 310, Y: 210})
	ui = Apply(ui, icon.PointerUp(now), iconSize, viewport)
	if ui.IconRight != 1280-300-48 || ui.IconBottom != 800-200-48 {
		t.Fatalf("after place = %+v", ui)
	}

	ui = Apply(ui, icon.Click(now.Add(time.Second)), iconSize, viewport)
	if ui.IconVisible {
		t.Error("click while armed should hide the icon")
	}
}

func TestApply_IgnoresMoves(t *testing.T) {
	ui := preferences.Default()
	if got := Apply(ui, Action{Kind: ActionMove, Position: Point{X: 1, Y: 1}}, iconSize, viewport); got != ui {
		t.Errorf("move changed preferences: %+v", got)
	}
}
