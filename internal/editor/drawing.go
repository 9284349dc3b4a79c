package editor

import (
	"math"
	"slices"

	"github.com/MeKo-Tech/seglabel/internal/annotation"
	"github.com/MeKo-Tech/seglabel/internal/utils"
)

// addPoint appends a vertex to the polygon under construction.
func (s Session) addPoint(pos utils.Point) (Session, Outcome, error) {
	norm, inside := s.View.ToNormalized(pos)
	if !inside {
		return s, none(), nil
	}
	if s.Armed == NoClass {
		return s, none(), ErrNoClass
	}
	s.Pending = append(slices.Clip(s.Pending), norm)
	s.Selected = annotation.NoID
	return s, redraw(), nil
}

// commitPending moves a buffer of three or more points into the store.
func (s Session) commitPending() (Session, Outcome, error) {
	if len(s.Pending) < annotation.MinVertices {
		return s, none(), nil
	}
	if s.Armed == NoClass {
		return s, none(), ErrNoClass
	}
	next := s.mutable()
	id, err := next.Store.Create(s.Armed, s.Pending)
	if err != nil {
		return s, none(), err
	}
	next.Pending = nil
	out := persisted()
	out.Created = id
	return next, out, nil
}

func (s Session) startStroke(pos utils.Point) (Session, Outcome, error) {
	norm, inside := s.View.ToNormalized(pos)
	if !inside {
		return s, none(), nil
	}
	if s.Armed == NoClass {
		return s, none(), ErrNoClass
	}
	s.Stroke = []utils.Point{norm}
	s.Tracing = true
	s.Selected = annotation.NoID
	return s, redraw(), nil
}

// extendStroke records pos when it is on the image and has moved more than
// FreehandMinStep on either axis since the last recorded point.
func (s Session) extendStroke(pos utils.Point) Session {
	norm, inside := s.View.ToNormalized(pos)
	if !inside {
		return s
	}
	if n := len(s.Stroke); n > 0 {
		last := s.Stroke[n-1]
		step := s.Settings.FreehandMinStep
		if math.Abs(norm.X-last.X) <= step && math.Abs(norm.Y-last.Y) <= step {
			return s
		}
	}
	s.Stroke = append(slices.Clip(s.Stroke), norm)
	return s
}

// finishStroke ends tracing. Two or more points are simplified, closed and
// committed; shorter strokes are dropped. The returned session has stopped
// tracing even when an error is returned.
func (s Session) finishStroke() (Session, Outcome, error) {
	stroke := s.Stroke
	s.Tracing = false
	s.Stroke = nil
	if len(stroke) < 2 {
		return s, redraw(), nil
	}
	if s.Armed == NoClass {
		return s, redraw(), ErrNoClass
	}
	outline := utils.ClosedOutline(stroke)
	next := s.mutable()
	id, err := next.Store.Create(s.Armed, outline)
	if err != nil {
		return s, redraw(), err
	}
	out := persisted()
	out.Created = id
	return next, out, nil
}
