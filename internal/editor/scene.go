package editor

import (
	"github.com/MeKo-Tech/seglabel/internal/annotation"
	"github.com/MeKo-Tech/seglabel/internal/utils"
)

// ShapeKind says how the surface should draw a shape.
type ShapeKind string

const (
	ShapePolygon ShapeKind = "polygon"
	ShapeVertex  ShapeKind = "vertex"
	ShapePreview ShapeKind = "preview"
	ShapeStroke  ShapeKind = "stroke"
)

// Ref ties a drawn shape back to the annotation (and vertex) it shows.
// Vertex is -1 for whole-polygon shapes; Annotation is NoID for transient
// geometry.
type Ref struct {
	Annotation annotation.ID `json:"annotation"`
	Vertex     int           `json:"vertex"`
}

// Shape is one drawable element in surface pixels.
type Shape struct {
	Kind     ShapeKind     `json:"kind"`
	Ref      Ref           `json:"ref"`
	ClassID  int           `json:"class_id"`
	Points   []utils.Point `json:"points"`
	Selected bool          `json:"selected,omitempty"`
}

// Rect is an axis-aligned rectangle in surface pixels.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Scene is everything the surface needs to redraw.
type Scene struct {
	Image    Rect          `json:"image"`
	Mode     string        `json:"mode"`
	Armed    int           `json:"armed_class"`
	Selected annotation.ID `json:"selected"`
	Shapes   []Shape       `json:"shapes"`
}

// Scene projects the session into surface coordinates: polygons with their
// vertices in id order, then the polygon under construction (ending at the
// pointer) or the freehand stroke.
func (s Session) Scene() Scene {
	sc := Scene{
		Mode:     s.Mode.String(),
		Armed:    s.Armed,
		Selected: s.Selected,
		Shapes:   []Shape{},
	}
	if !s.View.Ready() {
		return sc
	}
	lo, hi := s.View.DisplayRect()
	sc.Image = Rect{X: lo.X, Y: lo.Y, W: hi.X - lo.X, H: hi.Y - lo.Y}

	for _, a := range s.Store.All() {
		disp := s.View.ToDisplayAll(a.Vertices)
		sel := a.ID == s.Selected
		sc.Shapes = append(sc.Shapes, Shape{
			Kind:     ShapePolygon,
			Ref:      Ref{Annotation: a.ID, Vertex: -1},
			ClassID:  a.ClassID,
			Points:   disp,
			Selected: sel,
		})
		for i, p := range disp {
			sc.Shapes = append(sc.Shapes, Shape{
				Kind:     ShapeVertex,
				Ref:      Ref{Annotation: a.ID, Vertex: i},
				ClassID:  a.ClassID,
				Points:   []utils.Point{p},
				Selected: sel,
			})
		}
	}

	if len(s.Pending) > 0 {
		pts := s.View.ToDisplayAll(s.Pending)
		if s.HasCursor {
			pts = append(pts, s.Cursor)
		}
		sc.Shapes = append(sc.Shapes, Shape{
			Kind:    ShapePreview,
			Ref:     Ref{Annotation: annotation.NoID, Vertex: -1},
			ClassID: s.Armed,
			Points:  pts,
		})
	}
	if len(s.Stroke) > 0 {
		sc.Shapes = append(sc.Shapes, Shape{
			Kind:    ShapeStroke,
			Ref:     Ref{Annotation: annotation.NoID, Vertex: -1},
			ClassID: s.Armed,
			Points:  s.View.ToDisplayAll(s.Stroke),
		})
	}
	return sc
}
