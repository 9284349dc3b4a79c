package utils

import (
	"math"

	"gonum.org/v1/gonum/interp"
)

// MinResampleCount is the smallest number of vertices Simplify produces when
// the spline fit succeeds.
const MinResampleCount = 20

// decimateStep is the stride of the fallback used when no spline can be fit.
const decimateStep = 3

// Simplify turns a dense stroke or boundary into a compact polygon.
//
// Inputs of three or fewer points come back as a copy. Otherwise an
// interpolating cubic spline is fit through every point, parameterized by
// cumulative chord length, and resampled at max(20, len/3) evenly spaced
// parameter values. The first and last output points are pinned to the
// input's endpoints. When no spline can be fit (repeated consecutive points,
// non-finite coordinates) every third point plus the final point is kept.
func Simplify(pts []Point) []Point {
	if len(pts) <= 3 {
		return append([]Point(nil), pts...)
	}
	n := max(MinResampleCount, len(pts)/3)
	out, ok := splineResample(pts, n)
	if !ok {
		return decimate(pts, decimateStep)
	}
	out[0] = pts[0]
	out[len(out)-1] = pts[len(pts)-1]
	return out
}

// ClosedOutline runs Simplify, clamps the result to the unit square and
// closes the ring by appending the first vertex when the last one differs.
// Freehand strokes and model boundaries both pass through here before they
// become annotations.
func ClosedOutline(pts []Point) []Point {
	out := Simplify(pts)
	for i := range out {
		out[i] = ClampUnit(out[i])
	}
	if len(out) > 0 && out[len(out)-1] != out[0] {
		out = append(out, out[0])
	}
	return out
}

// ClampUnit clamps both coordinates of p to [0, 1].
func ClampUnit(p Point) Point {
	return Point{X: Clamp(p.X, 0, 1), Y: Clamp(p.Y, 0, 1)}
}

func splineResample(pts []Point, n int) ([]Point, bool) {
	u, ok := chordParams(pts)
	if !ok {
		return nil, false
	}
	xs := make([]float64, len(pts))
	ys := make([]float64, len(pts))
	for i, p := range pts {
		xs[i], ys[i] = p.X, p.Y
	}

	var fx, fy interp.NotAKnotCubic
	if err := fx.Fit(u, xs); err != nil {
		return nil, false
	}
	if err := fy.Fit(u, ys); err != nil {
		return nil, false
	}

	out := make([]Point, n)
	for k := range n {
		t := float64(k) / float64(n-1)
		p := Point{X: fx.Predict(t), Y: fy.Predict(t)}
		if !finite(p) {
			return nil, false
		}
		out[k] = p
	}
	return out, true
}

// chordParams returns the cumulative chord length of pts normalized to [0, 1].
// It fails unless the parameters are strictly increasing, which is also what
// the interpolators require.
func chordParams(pts []Point) ([]float64, bool) {
	u := make([]float64, len(pts))
	for i := 1; i < len(pts); i++ {
		if !finite(pts[i]) || !finite(pts[i-1]) {
			return nil, false
		}
		u[i] = u[i-1] + Distance(pts[i], pts[i-1])
	}
	total := u[len(u)-1]
	if total <= 0 || math.IsInf(total, 0) {
		return nil, false
	}
	for i := 1; i < len(u); i++ {
		u[i] /= total
		if u[i] <= u[i-1] {
			return nil, false
		}
	}
	u[len(u)-1] = 1
	return u, true
}

// decimate keeps pts[0], pts[step], pts[2*step], ... followed by the final
// point.
func decimate(pts []Point, step int) []Point {
	out := make([]Point, 0, len(pts)/step+2)
	for i := 0; i < len(pts); i += step {
		out = append(out, pts[i])
	}
	return append(out, pts[len(pts)-1])
}

func finite(p Point) bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}
