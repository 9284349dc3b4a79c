package annotation

import (
	"maps"
	"slices"

	"github.com/MeKo-Tech/seglabel/internal/utils"
)

// Store owns the annotations of one loaded image. Ids start at 0 and only
// ever grow until Reset. Every stored entry has at least MinVertices
// vertices; polygons still being drawn live outside the store.
//
// A Store is not safe for concurrent use.
type Store struct {
	items map[ID]Annotation
	next  ID
}

// NewStore returns an empty store whose first id is 0.
func NewStore() *Store {
	return &Store{items: make(map[ID]Annotation)}
}

// Reset drops every annotation and restarts id allocation at 0.
func (s *Store) Reset() {
	s.items = make(map[ID]Annotation)
	s.next = 0
}

// Clone returns an independent deep copy, id counter included.
func (s *Store) Clone() *Store {
	c := &Store{items: make(map[ID]Annotation, len(s.items)), next: s.next}
	for id, a := range s.items {
		c.items[id] = a.Clone()
	}
	return c
}

// NextID returns the id the next Create will assign.
func (s *Store) NextID() ID { return s.next }

// Len returns the number of stored annotations.
func (s *Store) Len() int { return len(s.items) }

// Create stores a new polygon and returns its id. The vertices are copied.
func (s *Store) Create(classID int, vertices []utils.Point) (ID, error) {
	a := Annotation{ID: s.next, ClassID: classID, Vertices: slices.Clone(vertices)}
	if err := a.validate(); err != nil {
		return NoID, err
	}
	s.items[a.ID] = a
	s.next++
	return a.ID, nil
}

// Get returns a copy of the annotation with the given id.
func (s *Store) Get(id ID) (Annotation, bool) {
	a, ok := s.items[id]
	if !ok {
		return Annotation{}, false
	}
	return a.Clone(), true
}

// Update applies mutate to a copy of the annotation and stores the result.
// If the mutation leaves an invalid polygon the store is left unchanged and
// the validation error is returned. The id cannot be changed.
func (s *Store) Update(id ID, mutate func(*Annotation)) error {
	a, ok := s.items[id]
	if !ok {
		return ErrNotFound
	}
	c := a.Clone()
	mutate(&c)
	c.ID = id
	if err := c.validate(); err != nil {
		return err
	}
	s.items[id] = c
	return nil
}

// Delete removes an annotation and reports whether it existed.
func (s *Store) Delete(id ID) bool {
	if _, ok := s.items[id]; !ok {
		return false
	}
	delete(s.items, id)
	return true
}

// DeleteAll removes every annotation. Id allocation continues where it was.
func (s *Store) DeleteAll() {
	clear(s.items)
}

// MaxID returns the highest stored id.
func (s *Store) MaxID() (ID, bool) {
	if len(s.items) == 0 {
		return NoID, false
	}
	return slices.Max(slices.Collect(maps.Keys(s.items))), true
}

// IDs returns the stored ids in ascending order.
func (s *Store) IDs() []ID {
	return slices.Sorted(maps.Keys(s.items))
}

// All returns copies of every annotation in ascending id order.
func (s *Store) All() []Annotation {
	ids := s.IDs()
	out := make([]Annotation, len(ids))
	for i, id := range ids {
		out[i] = s.items[id].Clone()
	}
	return out
}

// ReassignClass moves every annotation of class oldID to newID and returns
// how many changed. Negative ids change nothing.
func (s *Store) ReassignClass(oldID, newID int) int {
	if oldID < 0 || newID < 0 {
		return 0
	}
	n := 0
	for id, a := range s.items {
		if a.ClassID == oldID {
			a.ClassID = newID
			s.items[id] = a
			n++
		}
	}
	return n
}

// RemoveClass deletes every annotation of class index and shifts higher class
// ids down by one so they keep pointing at the same names. It returns the
// number of deleted annotations.
func (s *Store) RemoveClass(index int) int {
	if index < 0 {
		return 0
	}
	removed := 0
	for id, a := range s.items {
		switch {
		case a.ClassID == index:
			delete(s.items, id)
			removed++
		case a.ClassID > index:
			a.ClassID--
			s.items[id] = a
		}
	}
	return removed
}

// SwapClasses exchanges class ids a and b on every annotation carrying
// either. Negative ids are ignored.
func (s *Store) SwapClasses(a, b int) {
	if a == b || a < 0 || b < 0 {
		return
	}
	for id, ann := range s.items {
		switch ann.ClassID {
		case a:
			ann.ClassID = b
		case b:
			ann.ClassID = a
		default:
			continue
		}
		s.items[id] = ann
	}
}
