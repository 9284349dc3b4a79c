package workspace

import (
	"context"
	"strings"

	"github.com/MeKo-Tech/seglabel/internal/annotation"
	"github.com/MeKo-Tech/seglabel/internal/editor"
)

// HandleKey runs the command bound to key:
//
//	1-9          arm class 1-9
//	up, down     previous / next class
//	left, right  previous / next image
//	ctrl+z       undo
//	delete       delete selected polygon
//	m            toggle drawing mode
//	a            auto-annotate
//	c            change selected polygon's class
//
// Unbound keys are ignored.
func (w *Workspace) HandleKey(ctx context.Context, key string) (editor.Outcome, error) {
	redraw := editor.Outcome{Redraw: true, Created: annotation.NoID}
	key = strings.ToLower(strings.TrimSpace(key))

	if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
		i := int(key[0] - '1')
		if i >= w.classes.Len() {
			return editor.Outcome{Created: annotation.NoID}, nil
		}
		return redraw, w.ArmClass(i)
	}

	switch key {
	case "up":
		return redraw, w.ArmPrevClass()
	case "down":
		return redraw, w.ArmNextClass()
	case "left":
		return redraw, w.Prev()
	case "right":
		return redraw, w.Next()
	case "ctrl+z":
		return w.Undo()
	case "delete":
		return w.DeleteSelected()
	case "m":
		return w.ToggleMode()
	case "a":
		_, err := w.AutoAnnotate(ctx)
		out := redraw
		out.Persist = err == nil
		return out, err
	case "c":
		return w.ChangeSelectedClass()
	}
	return editor.Outcome{Created: annotation.NoID}, nil
}
