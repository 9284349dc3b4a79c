package editor

import (
	"math"

	"github.com/MeKo-Tech/seglabel/internal/annotation"
	"github.com/MeKo-Tech/seglabel/internal/utils"
)

// VertexHit is a vertex near a queried position.
type VertexHit struct {
	Annotation annotation.ID
	Vertex     int
	Distance   float64
}

// HitVertex returns the vertex nearest to pos (surface pixels) within
// VertexHitRadius, searching every annotation in the store.
func (s Session) HitVertex(pos utils.Point) (VertexHit, bool) {
	best := VertexHit{Annotation: annotation.NoID, Vertex: -1, Distance: math.Inf(1)}
	for _, a := range s.Store.All() {
		for i, v := range a.Vertices {
			d := utils.Distance(pos, s.View.ToDisplay(v))
			if d <= s.Settings.VertexHitRadius && d < best.Distance {
				best = VertexHit{Annotation: a.ID, Vertex: i, Distance: d}
			}
		}
	}
	return best, best.Annotation != annotation.NoID
}

// HitPolygon returns the annotation under pos. Outlines within
// VertexHitRadius win, nearest first; otherwise the smallest polygon whose
// interior contains pos.
func (s Session) HitPolygon(pos utils.Point) (annotation.ID, bool) {
	edgeID, edgeDist := annotation.NoID, math.Inf(1)
	fillID, fillArea := annotation.NoID, math.Inf(1)

	for _, a := range s.Store.All() {
		disp := s.View.ToDisplayAll(a.Vertices)
		if _, d, _ := utils.NearestEdge(pos, disp); d <= s.Settings.VertexHitRadius && d < edgeDist {
			edgeID, edgeDist = a.ID, d
		}
		if utils.PointInPolygon(pos, disp) {
			if area := utils.PolygonArea(disp); area < fillArea {
				fillID, fillArea = a.ID, area
			}
		}
	}
	if edgeID != annotation.NoID {
		return edgeID, true
	}
	return fillID, fillID != annotation.NoID
}
