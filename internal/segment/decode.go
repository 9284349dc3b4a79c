package segment

import (
	"fmt"
	"math"

	"github.com/MeKo-Tech/seglabel/internal/mempool"
	"github.com/MeKo-Tech/seglabel/internal/onnx"
	"github.com/MeKo-Tech/seglabel/internal/utils"
)

// Decode turns raw YOLO-seg outputs into detections in source pixels.
//
// preds has shape [1, 4+nc+nm, N]: per anchor a centre-size box in input
// pixels, nc class scores and nm mask coefficients. protos has shape
// [1, nm, mh, mw]. lb describes how the source image was letterboxed into
// the input.
func Decode(preds, protos onnx.Output, lb utils.Letterbox, cfg Config) ([]Detection, error) {
	if len(preds.Shape) != 3 || len(protos.Shape) != 4 {
		return nil, fmt.Errorf("unexpected output ranks %v and %v", preds.Shape, protos.Shape)
	}
	nm := protos.Dim(1)
	rows, anchors := preds.Dim(1), preds.Dim(2)
	nc := rows - 4 - nm
	if nc <= 0 {
		return nil, fmt.Errorf("prediction rows %d leave no room for classes with %d mask coefficients", rows, nm)
	}
	if len(preds.Data) < rows*anchors {
		return nil, fmt.Errorf("prediction data length %d < %d", len(preds.Data), rows*anchors)
	}
	mh, mw := protos.Dim(2), protos.Dim(3)
	if len(protos.Data) < nm*mh*mw {
		return nil, fmt.Errorf("proto data length %d < %d", len(protos.Data), nm*mh*mw)
	}

	cands := decodeCandidates(preds.Data, anchors, nc, nm, cfg.ConfThreshold)
	kept := nonMaxSuppression(cands, cfg.IOUThreshold, max(cfg.MaxDetections, 1))

	out := make([]Detection, 0, len(kept))
	for _, c := range kept {
		boundary := maskBoundary(c, protos.Data, nm, mh, mw, lb, cfg)
		if len(boundary) < 3 {
			continue
		}
		out = append(out, Detection{ClassID: c.classID, Confidence: c.score, Boundary: boundary})
	}
	return out, nil
}

func decodeCandidates(data []float32, anchors, nc, nm int, conf float64) []candidate {
	at := func(row, i int) float32 { return data[row*anchors+i] }

	var cands []candidate
	for i := range anchors {
		best, score := -1, float32(0)
		for c := range nc {
			if s := at(4+c, i); s > score {
				best, score = c, s
			}
		}
		if best < 0 || float64(score) < conf {
			continue
		}
		cx, cy, bw, bh := at(0, i), at(1, i), at(2, i), at(3, i)
		coeffs := make([]float32, nm)
		for k := range nm {
			coeffs[k] = at(4+nc+k, i)
		}
		cands = append(cands, candidate{
			classID: best,
			score:   float64(score),
			box:     utils.NewBox(float64(cx-bw/2), float64(cy-bh/2), float64(cx+bw/2), float64(cy+bh/2)),
			coeffs:  coeffs,
		})
	}
	return cands
}

// maskBoundary assembles the instance mask of c on the prototype grid,
// keeps its largest component and traces it back to source pixels.
func maskBoundary(c candidate, protos []float32, nm, mh, mw int, lb utils.Letterbox, cfg Config) []utils.Point {
	sx := float64(mw) / float64(lb.Size)
	sy := float64(mh) / float64(lb.Size)
	x0 := max(int(math.Floor(c.box.MinX*sx)), 0)
	y0 := max(int(math.Floor(c.box.MinY*sy)), 0)
	x1 := min(int(math.Ceil(c.box.MaxX*sx)), mw)
	y1 := min(int(math.Ceil(c.box.MaxY*sy)), mh)
	if x0 >= x1 || y0 >= y1 {
		return nil
	}

	plane := mh * mw
	mask := mempool.Bool.Get(plane)
	defer mempool.Bool.Put(mask)
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			idx := y*mw + x
			var sum float64
			for k := range nm {
				sum += float64(c.coeffs[k]) * float64(protos[k*plane+idx])
			}
			if sigmoid(sum) > cfg.MaskThreshold {
				mask[idx] = true
			}
		}
	}

	regions, labels := labelComponents(mask, mw, mh)
	r, ok := largestRegion(regions)
	if !ok {
		return nil
	}
	cells := traceBoundary(labels, mw, mh, r)
	if len(cells) < 3 {
		return nil
	}

	out := make([]utils.Point, len(cells))
	for i, p := range cells {
		in := utils.Point{X: (p.X + 0.5) / sx, Y: (p.Y + 0.5) / sy}
		out[i] = lb.ToSource(in)
	}
	return utils.SimplifyPolygon(out, cfg.ContourEpsilon)
}

func sigmoid(v float64) float64 { return 1 / (1 + math.Exp(-v)) }
