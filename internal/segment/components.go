package segment

// region is the bounding box and size of one 4-connected mask component.
type region struct {
	label int
	count int
	minX  int
	minY  int
	maxX  int
	maxY  int
}

// labelComponents labels the 4-connected foreground components of a w×h
// mask. labels[i] is 0 for background and the component label (from 1)
// otherwise.
func labelComponents(mask []bool, w, h int) ([]region, []int) {
	labels := make([]int, w*h)
	var regions []region
	queue := make([]int, 0, 64)

	for start, on := range mask {
		if !on || labels[start] != 0 {
			continue
		}
		label := len(regions) + 1
		sx, sy := start%w, start/w
		r := region{label: label, minX: sx, minY: sy, maxX: sx, maxY: sy}

		labels[start] = label
		queue = append(queue[:0], start)
		for len(queue) > 0 {
			ci := queue[0]
			queue = queue[1:]
			cx, cy := ci%w, ci/w
			r.grow(cx, cy)

			for _, d := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
				nx, ny := cx+d[0], cy+d[1]
				if nx < 0 || ny < 0 || nx >= w || ny >= h {
					continue
				}
				ni := ny*w + nx
				if mask[ni] && labels[ni] == 0 {
					labels[ni] = label
					queue = append(queue, ni)
				}
			}
		}
		regions = append(regions, r)
	}
	return regions, labels
}

func (r *region) grow(x, y int) {
	r.count++
	r.minX = min(r.minX, x)
	r.minY = min(r.minY, y)
	r.maxX = max(r.maxX, x)
	r.maxY = max(r.maxY, y)
}

// largestRegion returns the component with the most pixels.
func largestRegion(regions []region) (region, bool) {
	if len(regions) == 0 {
		return region{}, false
	}
	best := regions[0]
	for _, r := range regions[1:] {
		if r.count > best.count {
			best = r
		}
	}
	return best, true
}
