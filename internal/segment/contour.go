package segment

import "github.com/MeKo-Tech/seglabel/internal/utils"

// Clockwise 8-neighbourhood: E, SE, S, SW, W, NW, N, NE.
var (
	mooreDX = [8]int{1, 1, 0, -1, -1, -1, 0, 1}
	mooreDY = [8]int{0, 1, 1, 1, 0, -1, -1, -1}
)

// traceBoundary walks the outer boundary of component r with Moore-neighbour
// tracing and returns pixel coordinates in order. Collinear runs are
// collapsed and the ring is left open.
func traceBoundary(labels []int, w, h int, r region) []utils.Point {
	if r.label <= 0 || len(labels) != w*h {
		return nil
	}
	in := func(x, y int) bool {
		return x >= 0 && y >= 0 && x < w && y < h && labels[y*w+x] == r.label
	}

	// The first labelled pixel in scan order always has its west neighbour
	// outside the component.
	sx, sy := -1, -1
	for y := r.minY; y <= r.maxY && sx < 0; y++ {
		for x := r.minX; x <= r.maxX; x++ {
			if in(x, y) {
				sx, sy = x, y
				break
			}
		}
	}
	if sx < 0 {
		return nil
	}

	pts := make([]utils.Point, 0, 64)
	add := func(x, y int) {
		p := utils.Point{X: float64(x), Y: float64(y)}
		n := len(pts)
		if n > 0 && pts[n-1] == p {
			return
		}
		// Drop the middle of three points on a straight run.
		if n >= 2 {
			a, b := pts[n-2], pts[n-1]
			ux, uy := b.X-a.X, b.Y-a.Y
			vx, vy := p.X-b.X, p.Y-b.Y
			if ux*vy-uy*vx == 0 && ux*vx+uy*vy > 0 {
				pts = pts[:n-1]
			}
		}
		pts = append(pts, p)
	}
	add(sx, sy)

	// Jacob's stopping criterion: done when the start pixel is entered again
	// from the same backtrack pixel.
	startBx, startBy := sx-1, sy
	cx, cy := sx, sy
	bx, by := startBx, startBy
	for steps := w*h*4 + 8; steps > 0; steps-- {
		first := (direction(bx-cx, by-cy) + 1) % 8
		lastBx, lastBy := bx, by
		found := false
		for k := range 8 {
			i := (first + k) % 8
			tx, ty := cx+mooreDX[i], cy+mooreDY[i]
			if in(tx, ty) {
				bx, by = lastBx, lastBy
				cx, cy = tx, ty
				found = true
				break
			}
			lastBx, lastBy = tx, ty
		}
		if !found {
			break
		}
		if cx == sx && cy == sy && bx == startBx && by == startBy {
			break
		}
		add(cx, cy)
	}

	if n := len(pts); n >= 2 && pts[0] == pts[n-1] {
		pts = pts[:n-1]
	}
	return pts
}

func direction(dx, dy int) int {
	for i := range 8 {
		if mooreDX[i] == dx && mooreDY[i] == dy {
			return i
		}
	}
	return 0
}
