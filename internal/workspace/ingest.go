package workspace

import (
	"context"
	"log/slog"
	"time"

	"github.com/MeKo-Tech/seglabel/internal/annotation"
	"github.com/MeKo-Tech/seglabel/internal/editor"
	"github.com/MeKo-Tech/seglabel/internal/segment"
	"github.com/MeKo-Tech/seglabel/internal/utils"
	"github.com/MeKo-Tech/seglabel/internal/viewport"
)

// IngestModelResult replaces the current image's annotations with model
// detections. Detections below the accept threshold or with an unknown class
// are skipped, as are boundaries of fewer than three points. Each boundary is clamped to the image, normalized, simplified
// and closed; outlines that end up with fewer than three vertices are
// dropped. The result is saved once, even when nothing was accepted. It
// returns the number of annotations created.
func (w *Workspace) IngestModelResult(dets []segment.Detection) (int, error) {
	if w.current == "" {
		return 0, editor.ErrNoImage
	}
	store := annotation.NewStore()
	for _, d := range dets {
		if d.Confidence < w.opts.AcceptThreshold || d.ClassID < 0 || d.ClassID >= w.classes.Len() ||
			len(d.Boundary) < annotation.MinVertices {
			continue
		}
		norm := make([]utils.Point, len(d.Boundary))
		for i, p := range d.Boundary {
			norm[i] = viewport.NormalizePixel(p, w.imageW, w.imageH)
		}
		outline := utils.ClosedOutline(norm)
		if len(outline) < annotation.MinVertices {
			continue
		}
		if _, err := store.Create(d.ClassID, outline); err != nil {
			slog.Warn("Dropped detection", "class", d.ClassID, "error", err)
		}
	}
	w.session = w.session.WithStore(store)
	slog.Info("Model result ingested", "image", w.current, "detections", len(dets), "annotations", store.Len())
	return store.Len(), w.Save()
}

// AutoAnnotate runs the segmenter on the current image and ingests the
// result. It needs a segmenter, a loaded image and at least one class.
func (w *Workspace) AutoAnnotate(ctx context.Context) (int, error) {
	seg := w.opts.Segmenter
	if seg == nil {
		return 0, ErrNoModel
	}
	if w.current == "" {
		return 0, editor.ErrNoImage
	}
	if w.classes.Len() == 0 {
		return 0, ErrNoClasses
	}

	start := time.Now()
	n, err := w.autoAnnotate(ctx, seg)
	if w.opts.Hooks.AutoAnnotated != nil {
		w.opts.Hooks.AutoAnnotated(n, time.Since(start), err)
	}
	return n, err
}

func (w *Workspace) autoAnnotate(ctx context.Context, seg segment.Segmenter) (int, error) {
	dets, err := seg.Segment(ctx, w.current)
	if err != nil {
		return 0, err
	}
	return w.IngestModelResult(dets)
}
