package widget

import (
	"math"
	"time"
)

// State is the floating translate icon's interaction state.
type State int

// Icon states.
const (
	Idle State = iota
	// Pressed: pointer is down but has not moved past the drag threshold.
	Pressed
	Dragging
	// Armed: a drag just ended; the dismiss control is shown until timeout or click.
	Armed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pressed:
		return "pressed"
	case Dragging:
		return "dragging"
	case Armed:
		return "armed"
	default:
		return "unknown"
	}
}

// ActionKind is what the UI must do after an event.
type ActionKind int

// Actions.
const (
	ActionNone ActionKind = iota
	// ActionOpen opens the translator panel.
	ActionOpen
	// ActionMove repositions the icon (during a drag).
	ActionMove
	// ActionPlace persists the final position (drag released).
	ActionPlace
	// ActionHide hides the icon (click while armed).
	ActionHide
)

// Point is a position in CSS pixels.
type Point struct {
	X, Y float64
}

// Action is the outcome of an event.
type Action struct {
	Kind     ActionKind
	Position Point
}

// Config holds interaction thresholds.
type Config struct {
	// DragThreshold is the pointer travel that turns a press into a drag.
	DragThreshold float64
	// ArmTimeout auto-disarms the icon.
	ArmTimeout time.Duration
	// ClickGrace swallows the click the browser fires right after a drag release.
	ClickGrace time.Duration
}

// DefaultConfig returns the production thresholds.
func DefaultConfig() Config {
	return Config{
		DragThreshold: 5,
		ArmTimeout:    5 * time.Second,
		ClickGrace:    300 * time.Millisecond,
	}
}

// Icon is the drag-then-click state machine. Not safe for concurrent use;
// it is driven by a single UI event loop.
type Icon struct {
	cfg        Config
	state      State
	pos        Point
	pressAt    Point
	grabOffset Point
	armedAt    time.Time
}

// NewIcon creates an idle icon at pos.
func NewIcon(cfg Config, pos Point) *Icon {
	return &Icon{cfg: cfg, pos: pos}
}

// State returns the current state.
func (i *Icon) State() State { return i.state }

// Position returns the icon's current position.
func (i *Icon) Position() Point { return i.pos }

// PointerDown starts a press. An armed icon is re-grabbed.
func (i *Icon) PointerDown(p Point) Action {
	if i.state != Idle && i.state != Armed {
		return Action{}
	}
	i.state = Pressed
	i.pressAt = p
	i.grabOffset = Point{X: p.X - i.pos.X, Y: p.Y - i.pos.Y}
	return Action{}
}

// PointerMove promotes a press to a drag once past the threshold and moves the icon.
func (i *Icon) PointerMove(p Point) Action {
	switch i.state {
	case Pressed:
		if math.Hypot(p.X-i.pressAt.X, p.Y-i.pressAt.Y) < i.cfg.DragThreshold {
			return Action{}
		}
		i.state = Dragging
		fallthrough
	case Dragging:
		i.pos = Point{X: p.X - i.grabOffset.X, Y: p.Y - i.grabOffset.Y}
		return Action{Kind: ActionMove, Position: i.pos}
	default:
		return Action{}
	}
}

// PointerUp ends a press or a drag. A released drag arms the icon.
// A release without a drag is left for Click to handle.
func (i *Icon) PointerUp(now time.Time) Action {
	switch i.state {
	case Dragging:
		i.state = Armed
		i.armedAt = now
		return Action{Kind: ActionPlace, Position: i.pos}
	case Pressed:
		i.state = Idle
		return Action{}
	default:
		return Action{}
	}
}

// Click handles the browser click event.
// Idle opens the translator; armed hides the icon, except for the click
// that trails a drag release, which is swallowed.
func (i *Icon) Click(now time.Time) Action {
	i.Tick(now)
	switch i.state {
	case Idle:
		return Action{Kind: ActionOpen}
	case Armed:
		if now.Sub(i.armedAt) < i.cfg.ClickGrace {
			return Action{}
		}
		i.state = Idle
		return Action{Kind: ActionHide}
	default:
		return Action{}
	}
}

// Tick disarms the icon once ArmTimeout has passed.
func (i *Icon) Tick(now time.Time) {
	if i.state == Armed && now.Sub(i.armedAt) >= i.cfg.ArmTimeout {
		i.state = Idle
	}
}

// Deadline returns when an armed icon will disarm; ok is false in other states.
func (i *Icon) Deadline() (time.Time, bool) {
	if i.state != Armed {
		return time.Time{}, false
	}
	return i.armedAt.Add(i.cfg.ArmTimeout), true
}
