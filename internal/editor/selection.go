package editor

import (
	"slices"

	"github.com/MeKo-Tech/seglabel/internal/annotation"
	"github.com/MeKo-Tech/seglabel/internal/utils"
)

func (s Session) startDrag(pos utils.Point) (Session, Outcome, error) {
	hit, ok := s.HitVertex(pos)
	if !ok {
		return s, none(), nil
	}
	s.Drag = DragTarget{Annotation: hit.Annotation, Vertex: hit.Vertex}
	s.Selected = hit.Annotation
	return s, redraw(), nil
}

// dragTo moves the dragged vertex to pos, clamped to the image. Each move is
// a persisted change.
func (s Session) dragTo(pos utils.Point) (Session, Outcome, error) {
	norm, _ := s.View.ToNormalized(pos)
	target := s.Drag
	next := s.mutable()
	err := next.Store.Update(target.Annotation, func(a *annotation.Annotation) {
		if target.Vertex >= 0 && target.Vertex < len(a.Vertices) {
			a.Vertices[target.Vertex] = norm
		}
	})
	if err != nil {
		s.Drag = noDrag
		return s, redraw(), nil
	}
	return next, persisted(), nil
}

// insertVertex adds a vertex to the selected polygon at the point of its
// nearest edge, if that edge is within InsertThreshold of pos.
func (s Session) insertVertex(pos utils.Point) (Session, Outcome, error) {
	a, ok := s.Store.Get(s.Selected)
	if !ok {
		s.Selected = annotation.NoID
		return s, none(), nil
	}
	edge, dist, closest := utils.NearestEdge(pos, s.View.ToDisplayAll(a.Vertices))
	if edge < 0 || dist >= s.Settings.InsertThreshold {
		return s, none(), nil
	}
	norm, _ := s.View.ToNormalized(closest)
	next := s.mutable()
	err := next.Store.Update(a.ID, func(a *annotation.Annotation) {
		a.Vertices = slices.Insert(a.Vertices, edge+1, norm)
	})
	if err != nil {
		return s, none(), err
	}
	return next, persisted(), nil
}
