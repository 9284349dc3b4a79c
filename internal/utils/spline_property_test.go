package utils

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func genUnitPoint() gopter.Gen {
	return gopter.CombineGens(
		gen.Float64Range(0, 1),
		gen.Float64Range(0, 1),
	).Map(func(vals []interface{}) Point {
		return Point{X: vals[0].(float64), Y: vals[1].(float64)}
	})
}

// TestSimplify_PreservesEndpoints verifies the first and last input points
// survive either the spline path or the decimation fallback.
func TestSimplify_PreservesEndpoints(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("first and last point are kept", prop.ForAll(
		func(points []Point) bool {
			if len(points) < 4 {
				return true
			}
			out := Simplify(points)
			return len(out) >= 2 &&
				out[0] == points[0] &&
				out[len(out)-1] == points[len(points)-1]
		},
		gen.SliceOfN(40, genUnitPoint()),
	))

	properties.Property("short inputs are returned unchanged", prop.ForAll(
		func(points []Point) bool {
			out := Simplify(points)
			if len(out) != len(points) {
				return false
			}
			for i := range points {
				if out[i] != points[i] {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(3, genUnitPoint()),
	))

	properties.TestingRun(t)
}

// TestClosedOutline_IsClosedAndInUnitSquare verifies the ring contract every
// stroke and model boundary relies on.
func TestClosedOutline_IsClosedAndInUnitSquare(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("ring is closed and clamped", prop.ForAll(
		func(points []Point) bool {
			out := ClosedOutline(points)
			if len(out) < 3 || out[0] != out[len(out)-1] {
				return false
			}
			for _, p := range out {
				if p.X < 0 || p.X > 1 || p.Y < 0 || p.Y > 1 {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(25, genUnitPoint()),
	))

	properties.TestingRun(t)
}

// TestPointToSegmentDistance_Degenerate verifies a zero-length segment
// measures straight to its single point.
func TestPointToSegmentDistance_Degenerate(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("distance to a == distance to segment a-a", prop.ForAll(
		func(p, a Point) bool {
			d, c := PointToSegmentDistance(p, a, a)
			return c == a && d == Distance(p, a)
		},
		genUnitPoint(),
		genUnitPoint(),
	))

	properties.Property("closest point never farther than either endpoint", prop.ForAll(
		func(p, a, b Point) bool {
			d, _ := PointToSegmentDistance(p, a, b)
			return d <= Distance(p, a)+1e-12 && d <= Distance(p, b)+1e-12
		},
		genUnitPoint(),
		genUnitPoint(),
		genUnitPoint(),
	))

	properties.TestingRun(t)
}
