// Package batch runs an operation over many images and reports per-image
// results.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Config controls file discovery and failure handling.
type Config struct {
	Recursive       bool
	IncludePatterns []string
	ExcludePatterns []string

	// ContinueOnError records a failed image and moves on instead of
	// stopping the run.
	ContinueOnError bool

	// Progress, when set, is called after every image.
	Progress func(done, total int, item Item)
}

// Item is the outcome for one image.
type Item struct {
	Image    string        `json:"image"`
	Created  int           `json:"created"`
	Duration time.Duration `json:"-"`
	Error    string        `json:"error,omitempty"`
}

// Failed reports whether the image could not be processed.
func (i Item) Failed() bool { return i.Error != "" }

// Result holds every item of a run in processing order.
type Result struct {
	Items    []Item
	Duration time.Duration
}

// Failed counts failed items.
func (r *Result) Failed() int {
	n := 0
	for _, it := range r.Items {
		if it.Failed() {
			n++
		}
	}
	return n
}

// Created sums the annotations created across all items.
func (r *Result) Created() int {
	n := 0
	for _, it := range r.Items {
		n += it.Created
	}
	return n
}

// Func processes one image and returns the number of annotations it wrote.
type Func func(ctx context.Context, imagePath string) (int, error)

// ErrNoImages is returned when discovery finds nothing to process.
var ErrNoImages = errors.New("no image files found")

// Run discovers the images named by args and calls fn on each in turn.
// Cancelling ctx stops the run before the next image.
func Run(ctx context.Context, args []string, config Config, fn Func) (*Result, error) {
	files, err := Discover(args, config.Recursive, config.IncludePatterns, config.ExcludePatterns)
	if err != nil {
		return nil, fmt.Errorf("failed to discover image files: %w", err)
	}
	if len(files) == 0 {
		return nil, ErrNoImages
	}

	start := time.Now()
	res := &Result{Items: make([]Item, 0, len(files))}
	for i, path := range files {
		if err := ctx.Err(); err != nil {
			res.Duration = time.Since(start)
			return res, err
		}

		itemStart := time.Now()
		n, err := fn(ctx, path)
		item := Item{Image: path, Created: n, Duration: time.Since(itemStart)}
		if err != nil {
			if !config.ContinueOnError {
				res.Duration = time.Since(start)
				return res, fmt.Errorf("%s: %w", path, err)
			}
			slog.Warn("Image failed", "image", path, "error", err)
			item.Error = err.Error()
		}
		res.Items = append(res.Items, item)
		if config.Progress != nil {
			config.Progress(i+1, len(files), item)
		}
	}
	res.Duration = time.Since(start)
	slog.Info("Batch completed",
		"images", len(files),
		"failed", res.Failed(),
		"annotations", res.Created(),
		"duration_ms", res.Duration.Milliseconds())
	return res, nil
}
