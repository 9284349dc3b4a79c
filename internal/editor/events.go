package editor

import (
	"fmt"

	"github.com/MeKo-Tech/seglabel/internal/utils"
)

// EventKind enumerates surface input.
type EventKind int

const (
	EventPointerDown EventKind = iota + 1
	EventPointerMove
	EventPointerUp
	EventSecondary
	EventDouble
	EventModifier
)

var eventNames = map[EventKind]string{
	EventPointerDown: "pointer_down",
	EventPointerMove: "pointer_move",
	EventPointerUp:   "pointer_up",
	EventSecondary:   "secondary",
	EventDouble:      "double",
	EventModifier:    "modifier",
}

func (k EventKind) String() string {
	if n, ok := eventNames[k]; ok {
		return n
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// ParseEventKind maps a wire name such as "pointer_down" to its kind.
func ParseEventKind(s string) (EventKind, bool) {
	for k, n := range eventNames {
		if n == s {
			return k, true
		}
	}
	return 0, false
}

// Event is one input from the surface. Pos is in surface pixels; Held is
// only meaningful for EventModifier.
type Event struct {
	Kind EventKind
	Pos  utils.Point
	Held bool
}

// PointerDown builds a primary press at (x, y).
func PointerDown(x, y float64) Event { return Event{Kind: EventPointerDown, Pos: utils.Point{X: x, Y: y}} }

// PointerMove builds a pointer motion to (x, y).
func PointerMove(x, y float64) Event { return Event{Kind: EventPointerMove, Pos: utils.Point{X: x, Y: y}} }

// PointerUp builds a primary release at (x, y).
func PointerUp(x, y float64) Event { return Event{Kind: EventPointerUp, Pos: utils.Point{X: x, Y: y}} }

// Secondary builds a secondary action (right click) at (x, y).
func Secondary(x, y float64) Event { return Event{Kind: EventSecondary, Pos: utils.Point{X: x, Y: y}} }

// Double builds a double action at (x, y).
func Double(x, y float64) Event { return Event{Kind: EventDouble, Pos: utils.Point{X: x, Y: y}} }

// Modifier builds a modifier key press or release.
func Modifier(held bool) Event { return Event{Kind: EventModifier, Held: held} }

// Handle applies one input event. Precondition failures return the session
// unchanged together with one of the Err* values, except that pointer-up and
// the secondary action always end a freehand stroke.
func (s Session) Handle(ev Event) (Session, Outcome, error) {
	if ev.Kind == EventModifier {
		s.Modifier = ev.Held
		if !ev.Held {
			s.Drag = noDrag
		}
		return s, none(), nil
	}
	if !s.View.Ready() {
		return s, none(), ErrNoImage
	}

	switch ev.Kind {
	case EventPointerDown:
		return s.pointerDown(ev.Pos)
	case EventPointerMove:
		return s.pointerMove(ev.Pos)
	case EventPointerUp:
		return s.pointerUp(ev.Pos)
	case EventSecondary:
		return s.secondary(ev.Pos)
	case EventDouble:
		return s.double(ev.Pos)
	}
	return s, none(), fmt.Errorf("unsupported event %v", ev.Kind)
}

func (s Session) pointerDown(pos utils.Point) (Session, Outcome, error) {
	s.Cursor, s.HasCursor = pos, true
	if s.Modifier {
		return s.startDrag(pos)
	}
	if s.Mode == ModeFreehand {
		return s.startStroke(pos)
	}
	if _, ok := s.HitVertex(pos); ok {
		return s, none(), nil
	}
	if id, ok := s.HitPolygon(pos); ok {
		s.Selected = id
		return s, redraw(), nil
	}
	return s.addPoint(pos)
}

func (s Session) pointerMove(pos utils.Point) (Session, Outcome, error) {
	s.Cursor, s.HasCursor = pos, true
	switch {
	case s.Dragging():
		return s.dragTo(pos)
	case s.Tracing:
		return s.extendStroke(pos), redraw(), nil
	case len(s.Pending) > 0:
		return s, redraw(), nil
	}
	return s, none(), nil
}

func (s Session) pointerUp(pos utils.Point) (Session, Outcome, error) {
	s.Cursor, s.HasCursor = pos, true
	wasDragging := s.Dragging()
	s.Drag = noDrag
	if s.Tracing {
		return s.finishStroke()
	}
	if wasDragging {
		return s, redraw(), nil
	}
	return s, none(), nil
}

func (s Session) secondary(pos utils.Point) (Session, Outcome, error) {
	s.Cursor, s.HasCursor = pos, true
	if s.Mode == ModeFreehand {
		return s.finishStroke()
	}
	return s.commitPending()
}

func (s Session) double(pos utils.Point) (Session, Outcome, error) {
	s.Cursor, s.HasCursor = pos, true
	if s.Mode != ModePoint {
		return s, none(), nil
	}
	if len(s.Pending) >= 3 {
		return s.commitPending()
	}
	if s.HasSelection() {
		return s.insertVertex(pos)
	}
	return s, none(), nil
}
