package utils

import "math"

// Point represents a 2D coordinate in float space. Depending on the caller it
// holds normalized [0,1] image fractions, image pixels or display pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Box represents an axis-aligned bounding box in float coordinates.
type Box struct {
	MinX float64
	MinY float64
	MaxX float64
	MaxY float64
}

// NewBox constructs a Box from min/max coordinates ensuring ordering.
func NewBox(x1, y1, x2, y2 float64) Box {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	return Box{MinX: x1, MinY: y1, MaxX: x2, MaxY: y2}
}

// Width returns the box width.
func (b Box) Width() float64 { return b.MaxX - b.MinX }

// Height returns the box height.
func (b Box) Height() float64 { return b.MaxY - b.MinY }

// Area returns the box area.
func (b Box) Area() float64 { return b.Width() * b.Height() }

// Contains reports whether p lies inside the box, edges included.
func (b Box) Contains(p Point) bool {
	return p.X >= b.MinX && p.X <= b.MaxX && p.Y >= b.MinY && p.Y <= b.MaxY
}

// IoU returns the intersection-over-union of two boxes.
func (b Box) IoU(o Box) float64 {
	ix := math.Min(b.MaxX, o.MaxX) - math.Max(b.MinX, o.MinX)
	iy := math.Min(b.MaxY, o.MaxY) - math.Max(b.MinY, o.MinY)
	if ix <= 0 || iy <= 0 {
		return 0
	}
	inter := ix * iy
	union := b.Area() + o.Area() - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

// BoundingBox returns the axis-aligned bounding box for a set of points.
func BoundingBox(pts []Point) Box {
	if len(pts) == 0 {
		return Box{}
	}
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := pts[0].X, pts[0].Y
	for _, p := range pts[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return Box{MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY}
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Distance returns the Euclidean distance between two points.
func Distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// PointToSegmentDistance projects p onto the segment a-b and returns the
// distance to the projection together with the projected point. The
// projection parameter is clamped to the segment, so the closest point is
// always one of the segment's own points. A zero-length segment yields the
// distance to a.
func PointToSegmentDistance(p, a, b Point) (float64, Point) {
	vx, vy := b.X-a.X, b.Y-a.Y
	lenSq := vx*vx + vy*vy
	if lenSq == 0 {
		return Distance(p, a), a
	}
	t := ((p.X-a.X)*vx + (p.Y-a.Y)*vy) / lenSq
	t = Clamp(t, 0, 1)
	closest := Point{X: a.X + t*vx, Y: a.Y + t*vy}
	return Distance(p, closest), closest
}

// NearestEdge returns the index i of the polygon edge (i, i+1 mod n) closest
// to p, the distance to it and the projected point. The closing edge from the
// last vertex back to the first is included. It returns -1 for polygons with
// fewer than two vertices.
func NearestEdge(p Point, poly []Point) (int, float64, Point) {
	if len(poly) < 2 {
		return -1, math.Inf(1), Point{}
	}
	best := -1
	bestDist := math.Inf(1)
	var bestPt Point
	for i := range poly {
		d, c := PointToSegmentDistance(p, poly[i], poly[(i+1)%len(poly)])
		if d < bestDist {
			best, bestDist, bestPt = i, d, c
		}
	}
	return best, bestDist, bestPt
}

// PointInPolygon reports whether p lies inside the polygon using the even-odd
// ray casting rule. The ring is closed implicitly.
func PointInPolygon(p Point, poly []Point) bool {
	if len(poly) < 3 {
		return false
	}
	inside := false
	j := len(poly) - 1
	for i := range poly {
		a, b := poly[i], poly[j]
		if (a.Y > p.Y) != (b.Y > p.Y) {
			x := (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y) + a.X
			if p.X < x {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}

// PolygonArea returns the unsigned shoelace area of the implicitly closed ring.
func PolygonArea(poly []Point) float64 {
	if len(poly) < 3 {
		return 0
	}
	sum := 0.0
	for i := range poly {
		a, b := poly[i], poly[(i+1)%len(poly)]
		sum += a.X*b.Y - b.X*a.Y
	}
	return math.Abs(sum) / 2
}
