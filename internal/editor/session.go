// Package editor implements interactive polygon editing as pure transitions
// over an explicit Session value: point-by-point and freehand drawing,
// selection, vertex dragging and insertion, deletion and undo.
//
// Every transition takes a Session and returns a new one. The store is
// cloned before it is mutated, so a Session held by the caller never changes
// underneath it.
package editor

import (
	"fmt"
	"slices"

	"github.com/MeKo-Tech/seglabel/internal/annotation"
	"github.com/MeKo-Tech/seglabel/internal/utils"
	"github.com/MeKo-Tech/seglabel/internal/viewport"
)

// NoClass marks that no class is armed.
const NoClass = -1

// Mode selects how primary pointer input draws.
type Mode int

const (
	// ModePoint builds a polygon one click per vertex.
	ModePoint Mode = iota
	// ModeFreehand traces a polygon while the pointer is held down.
	ModeFreehand
)

func (m Mode) String() string {
	switch m {
	case ModePoint:
		return "point"
	case ModeFreehand:
		return "freehand"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode converts "point" or "freehand" into a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "point", "":
		return ModePoint, nil
	case "freehand":
		return ModeFreehand, nil
	}
	return ModePoint, fmt.Errorf("unknown drawing mode %q", s)
}

// Settings are the fixed hit and sampling tolerances.
type Settings struct {
	VertexHitRadius float64 // display pixels
	InsertThreshold float64 // display pixels
	FreehandMinStep float64 // normalized units, per axis
}

// DefaultSettings returns the stock tolerances.
func DefaultSettings() Settings {
	return Settings{VertexHitRadius: 5, InsertThreshold: 10, FreehandMinStep: 0.005}
}

// DragTarget names the vertex being dragged.
type DragTarget struct {
	Annotation annotation.ID `json:"annotation"`
	Vertex     int           `json:"vertex"`
}

var noDrag = DragTarget{Annotation: annotation.NoID, Vertex: -1}

// Session is the editing state of one loaded image.
type Session struct {
	Store    *annotation.Store
	View     viewport.Mapper
	Settings Settings

	Mode     Mode
	Armed    int
	Selected annotation.ID
	Drag     DragTarget
	Modifier bool

	// Pending is the point-by-point buffer, Stroke the freehand buffer. Both
	// hold normalized points and are moved into Store on commit.
	Pending []utils.Point
	Stroke  []utils.Point
	Tracing bool

	Cursor    utils.Point
	HasCursor bool
}

// NewSession starts a session over store with nothing armed or selected.
func NewSession(store *annotation.Store, view viewport.Mapper, settings Settings) Session {
	if store == nil {
		store = annotation.NewStore()
	}
	return Session{
		Store:    store,
		View:     view,
		Settings: settings,
		Armed:    NoClass,
		Selected: annotation.NoID,
		Drag:     noDrag,
	}
}

// Reload swaps in the store and view of a newly loaded image. Mode, armed
// class and settings carry over; everything transient is dropped.
func (s Session) Reload(store *annotation.Store, view viewport.Mapper) Session {
	next := NewSession(store, view, s.Settings)
	next.Mode = s.Mode
	next.Armed = s.Armed
	next.Modifier = s.Modifier
	return next
}

// WithStore swaps in store, keeping buffers, mode and class. Selection and
// drag are dropped if they point at annotations store does not hold.
func (s Session) WithStore(store *annotation.Store) Session {
	if store == nil {
		store = annotation.NewStore()
	}
	s.Store = store
	return s.forget()
}

// WithView replaces the coordinate mapping, as after a surface resize.
func (s Session) WithView(view viewport.Mapper) Session {
	s.View = view
	return s
}

// Dragging reports whether a vertex drag is in progress.
func (s Session) Dragging() bool { return s.Drag.Annotation != annotation.NoID }

// HasSelection reports whether an annotation is selected.
func (s Session) HasSelection() bool { return s.Selected != annotation.NoID }

// Outcome tells the caller what a transition did.
type Outcome struct {
	Persist bool          // the store changed and should be saved
	Redraw  bool          // the scene changed
	Created annotation.ID // id of a newly committed polygon, or NoID
	Notice  string        // user-facing note for no-op commands
}

func none() Outcome { return Outcome{Created: annotation.NoID} }

func redraw() Outcome { return Outcome{Redraw: true, Created: annotation.NoID} }

func persisted() Outcome { return Outcome{Persist: true, Redraw: true, Created: annotation.NoID} }

func notice(msg string) Outcome { return Outcome{Created: annotation.NoID, Notice: msg} }

// mutable returns s with a private copy of the store.
func (s Session) mutable() Session {
	s.Store = s.Store.Clone()
	return s
}

// forget clears selection and drag references to annotations that no longer
// exist.
func (s Session) forget() Session {
	if _, ok := s.Store.Get(s.Selected); s.Selected != annotation.NoID && !ok {
		s.Selected = annotation.NoID
	}
	if _, ok := s.Store.Get(s.Drag.Annotation); s.Dragging() && !ok {
		s.Drag = noDrag
	}
	return s
}

// SetMode switches drawing mode. Both transient buffers are discarded
// without committing.
func (s Session) SetMode(m Mode) (Session, Outcome) {
	s.Mode = m
	return s.DiscardBuffers(), redraw()
}

// DiscardBuffers drops the polygon under construction and any freehand
// stroke without committing them.
func (s Session) DiscardBuffers() Session {
	s.Pending = nil
	s.Stroke = nil
	s.Tracing = false
	return s
}

// ToggleMode flips between point-by-point and freehand drawing.
func (s Session) ToggleMode() (Session, Outcome) {
	if s.Mode == ModePoint {
		return s.SetMode(ModeFreehand)
	}
	return s.SetMode(ModePoint)
}

// ArmClass sets the class new polygons receive. Pass NoClass to disarm.
func (s Session) ArmClass(id int) (Session, Outcome) {
	if id < 0 {
		id = NoClass
	}
	s.Armed = id
	return s, redraw()
}

// Undo pops the last point of a polygon under construction or, when none is
// being built, deletes the most recently created annotation.
func (s Session) Undo() (Session, Outcome) {
	if len(s.Pending) > 0 {
		s.Pending = slices.Clip(s.Pending[:len(s.Pending)-1])
		return s, redraw()
	}
	id, ok := s.Store.MaxID()
	if !ok {
		return s, notice("Nothing to undo")
	}
	s = s.mutable()
	s.Store.Delete(id)
	return s.forget(), persisted()
}

// DeleteSelected removes the selected annotation.
func (s Session) DeleteSelected() (Session, Outcome) {
	if !s.HasSelection() {
		return s, notice("No polygon selected")
	}
	s = s.mutable()
	s.Store.Delete(s.Selected)
	s.Selected = annotation.NoID
	return s.forget(), persisted()
}

// ChangeSelectedClass moves the selected annotation to the armed class.
func (s Session) ChangeSelectedClass() (Session, Outcome, error) {
	if !s.HasSelection() {
		return s, none(), ErrNoSelection
	}
	if s.Armed == NoClass {
		return s, none(), ErrNoClass
	}
	next := s.mutable()
	if err := next.Store.Update(s.Selected, func(a *annotation.Annotation) { a.ClassID = s.Armed }); err != nil {
		return s, none(), err
	}
	return next, persisted(), nil
}

// ClearAll deletes every annotation and any polygon under construction.
func (s Session) ClearAll() (Session, Outcome) {
	s = s.mutable()
	s.Store.DeleteAll()
	s.Pending = nil
	s.Stroke = nil
	s.Tracing = false
	s.Selected = annotation.NoID
	s.Drag = noDrag
	return s, persisted()
}

// FlushPending commits a point-by-point polygon with at least three vertices,
// as done before switching images. Shorter buffers are dropped.
func (s Session) FlushPending() (Session, Outcome) {
	if len(s.Pending) < annotation.MinVertices || s.Armed == NoClass {
		s.Pending = nil
		return s, none()
	}
	next, out, err := s.commitPending()
	if err != nil {
		s.Pending = nil
		return s, none()
	}
	return next, out
}
