// Package annotation holds the per-image polygon store, the class list and
// the flat text format annotations are persisted in.
package annotation

import (
	"errors"
	"slices"

	"github.com/MeKo-Tech/seglabel/internal/utils"
)

// MinVertices is the smallest vertex count a stored polygon may have.
const MinVertices = 3

// ID identifies an annotation within the currently loaded image.
type ID int

// NoID marks the absence of an annotation reference.
const NoID ID = -1

var (
	// ErrTooFewVertices is returned when a polygon would drop below MinVertices.
	ErrTooFewVertices = errors.New("polygon needs at least 3 vertices")
	// ErrInvalidClass is returned for negative class ids.
	ErrInvalidClass = errors.New("invalid class id")
	// ErrNotFound is returned for unknown annotation ids.
	ErrNotFound = errors.New("annotation not found")
)

// Annotation is one classed polygon in normalized [0,1] image coordinates.
type Annotation struct {
	ID       ID            `json:"id"`
	ClassID  int           `json:"class_id"`
	Vertices []utils.Point `json:"vertices"`
}

// Clone returns a deep copy.
func (a Annotation) Clone() Annotation {
	a.Vertices = slices.Clone(a.Vertices)
	return a
}

func (a Annotation) validate() error {
	if a.ClassID < 0 {
		return ErrInvalidClass
	}
	if len(a.Vertices) < MinVertices {
		return ErrTooFewVertices
	}
	return nil
}
