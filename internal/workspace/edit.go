package workspace

import (
	"github.com/MeKo-Tech/seglabel/internal/annotation"
	"github.com/MeKo-Tech/seglabel/internal/editor"
)

// Dispatch feeds one surface event to the session. Rejected events save
// nothing; the session they return is still installed so an aborted stroke
// stops tracing.
func (w *Workspace) Dispatch(ev editor.Event) (editor.Outcome, error) {
	next, out, err := w.session.Handle(ev)
	if err != nil {
		w.session = next
		return out, err
	}
	return w.apply(next, out)
}

// Undo pops the last pending point or removes the newest annotation.
func (w *Workspace) Undo() (editor.Outcome, error) {
	return w.apply(w.session.Undo())
}

// DeleteSelected removes the selected annotation.
func (w *Workspace) DeleteSelected() (editor.Outcome, error) {
	return w.apply(w.session.DeleteSelected())
}

// ToggleMode switches between point-by-point and freehand drawing.
func (w *Workspace) ToggleMode() (editor.Outcome, error) {
	return w.apply(w.session.ToggleMode())
}

// SetMode selects a drawing mode.
func (w *Workspace) SetMode(m editor.Mode) (editor.Outcome, error) {
	return w.apply(w.session.SetMode(m))
}

// ChangeSelectedClass gives the selected annotation the armed class.
func (w *Workspace) ChangeSelectedClass() (editor.Outcome, error) {
	next, out, err := w.session.ChangeSelectedClass()
	if err != nil {
		return out, err
	}
	return w.apply(next, out)
}

// ClearAll deletes every annotation of the current image.
func (w *Workspace) ClearAll() (editor.Outcome, error) {
	if w.current == "" {
		return editor.Outcome{Created: annotation.NoID}, editor.ErrNoImage
	}
	return w.apply(w.session.ClearAll())
}
