package workspace

import (
	"fmt"
	"log/slog"

	"github.com/MeKo-Tech/seglabel/internal/annotation"
	"github.com/MeKo-Tech/seglabel/internal/editor"
)

// Classes returns the class names in id order.
func (w *Workspace) Classes() []string { return w.classes.Names() }

// ArmClass selects the class new polygons receive; editor.NoClass disarms.
func (w *Workspace) ArmClass(i int) error {
	if i != editor.NoClass && (i < 0 || i >= w.classes.Len()) {
		return fmt.Errorf("%w: %d", annotation.ErrClassIndex, i)
	}
	w.session, _ = w.session.ArmClass(i)
	return nil
}

// ArmNextClass arms the following class, wrapping to the first. With
// nothing armed it arms class 0.
func (w *Workspace) ArmNextClass() error {
	return w.armStep(1)
}

// ArmPrevClass arms the preceding class, wrapping to the last. With nothing
// armed it arms class 0.
func (w *Workspace) ArmPrevClass() error {
	return w.armStep(-1)
}

func (w *Workspace) armStep(delta int) error {
	n := w.classes.Len()
	if n == 0 {
		return ErrNoClasses
	}
	next := 0
	if w.session.Armed != editor.NoClass {
		next = ((w.session.Armed+delta)%n + n) % n
	}
	return w.ArmClass(next)
}

// AddClass appends a class and returns its id.
func (w *Workspace) AddClass(name string) (int, error) {
	id, err := w.classes.Add(name)
	if err != nil {
		return -1, err
	}
	return id, w.persistClasses()
}

// RenameClass renames class i.
func (w *Workspace) RenameClass(i int, name string) error {
	if err := w.classes.Rename(i, name); err != nil {
		return err
	}
	return w.persistClasses()
}

// RemoveClass deletes class i together with the current image's annotations
// of that class. Higher class ids shift down by one in the store and in the
// armed class.
func (w *Workspace) RemoveClass(i int) error {
	name, err := w.classes.Remove(i)
	if err != nil {
		return err
	}
	store := w.session.Store.Clone()
	removed := store.RemoveClass(i)
	w.session = w.session.WithStore(store)

	switch armed := w.session.Armed; {
	case armed == i:
		w.session, _ = w.session.DiscardBuffers().ArmClass(editor.NoClass)
	case armed > i:
		w.session, _ = w.session.ArmClass(armed - 1)
	}
	slog.Info("Class removed", "class", name, "annotations", removed)

	if err := w.persistClasses(); err != nil {
		return err
	}
	if w.current == "" {
		return nil
	}
	return w.Save()
}

// MoveClass swaps class i with its neighbour above (up) or below. Annotations
// and the armed class follow their names.
func (w *Workspace) MoveClass(i int, up bool) error {
	j, err := w.classes.Move(i, up)
	if err != nil {
		return err
	}
	store := w.session.Store.Clone()
	store.SwapClasses(i, j)
	w.session = w.session.WithStore(store)

	switch w.session.Armed {
	case i:
		w.session, _ = w.session.ArmClass(j)
	case j:
		w.session, _ = w.session.ArmClass(i)
	}

	if err := w.persistClasses(); err != nil {
		return err
	}
	if w.current == "" {
		return nil
	}
	return w.Save()
}

// ImportClasses replaces the class list with the JSON list at path and
// reloads the current image so annotations with out-of-range classes drop
// out.
func (w *Workspace) ImportClasses(path string) error {
	names, err := annotation.LoadClassFile(path)
	if err != nil {
		return err
	}
	if err := w.classes.Replace(names); err != nil {
		return fmt.Errorf("import %s: %w", path, err)
	}
	if w.session.Armed >= w.classes.Len() {
		w.session, _ = w.session.DiscardBuffers().ArmClass(editor.NoClass)
	}
	slog.Info("Classes imported", "path", path, "classes", w.classes.Len())

	if err := w.persistClasses(); err != nil {
		return err
	}
	if w.current == "" {
		return nil
	}
	store, err := w.readStore(w.current)
	if err != nil {
		return err
	}
	w.session = w.session.Reload(store, w.session.View)
	return nil
}

// ExportClasses writes the class list to path as indented JSON.
func (w *Workspace) ExportClasses(path string) error {
	if w.classes.Len() == 0 {
		return ErrNoClasses
	}
	return annotation.SaveClassFile(path, w.classes.Names())
}

func (w *Workspace) persistClasses() error {
	if w.opts.ClassesFile == "" {
		return nil
	}
	return annotation.SaveClassFile(w.opts.ClassesFile, w.classes.Names())
}
