package segment

import (
	"cmp"
	"slices"

	"github.com/MeKo-Tech/seglabel/internal/utils"
)

// candidate is a decoded anchor above the confidence threshold. Box is in
// model input pixels.
type candidate struct {
	classID int
	score   float64
	box     utils.Box
	coeffs  []float32
}

// nonMaxSuppression keeps the highest scoring candidates and drops any
// candidate of the same class whose box overlaps a kept one by more than
// iouThreshold. The result is ordered by descending score and holds at most
// limit entries.
func nonMaxSuppression(cands []candidate, iouThreshold float64, limit int) []candidate {
	order := slices.Clone(cands)
	slices.SortStableFunc(order, func(a, b candidate) int { return cmp.Compare(b.score, a.score) })

	suppressed := make([]bool, len(order))
	kept := make([]candidate, 0, min(len(order), limit))
	for i := range order {
		if suppressed[i] {
			continue
		}
		kept = append(kept, order[i])
		if len(kept) == limit {
			break
		}
		for j := i + 1; j < len(order); j++ {
			if suppressed[j] || order[j].classID != order[i].classID {
				continue
			}
			if order[i].box.IoU(order[j].box) > iouThreshold {
				suppressed[j] = true
			}
		}
	}
	return kept
}
