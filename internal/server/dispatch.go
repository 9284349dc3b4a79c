package server

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MeKo-Tech/seglabel/internal/annotation"
	"github.com/MeKo-Tech/seglabel/internal/editor"
	"github.com/MeKo-Tech/seglabel/internal/workspace"
)

// errBadRequest marks malformed client messages.
var errBadRequest = errors.New("invalid request")

// process applies msg to the workspace and builds the reply. quiet reports
// that nothing visible changed, so streaming clients need not be sent a
// scene.
func (s *Server) process(ctx context.Context, msg ClientMessage) (reply ServerMessage, quiet bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out, created, err := s.apply(ctx, msg)
	status := "ok"
	if err != nil {
		status = "rejected"
	}
	editorMessagesTotal.WithLabelValues(messageLabel(msg), status).Inc()

	state := s.ws.State()
	if err != nil {
		return ServerMessage{
			Type:      MessageError,
			State:     &state,
			Error:     err.Error(),
			ErrorType: errorType(err),
		}, false
	}
	quiet = !out.Redraw && !out.Persist && out.Notice == "" && created == 0
	return ServerMessage{Type: MessageScene, State: &state, Notice: out.Notice, Created: created}, quiet
}

// snapshot returns the current state under the lock.
func (s *Server) snapshot() workspace.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ws.State()
}

func (s *Server) apply(ctx context.Context, msg ClientMessage) (editor.Outcome, int, error) {
	redraw := editor.Outcome{Redraw: true, Created: annotation.NoID}

	if kind, ok := editor.ParseEventKind(msg.Type); ok {
		ev := editor.Event{Kind: kind}
		ev.Pos.X, ev.Pos.Y = msg.X, msg.Y
		ev.Held = msg.Held
		out, err := s.ws.Dispatch(ev)
		return out, 0, err
	}

	switch msg.Type {
	case "resize":
		if msg.Width <= 0 || msg.Height <= 0 {
			return redraw, 0, fmt.Errorf("%w: surface size %dx%d", errBadRequest, msg.Width, msg.Height)
		}
		s.ws.SetSurface(msg.Width, msg.Height)
		return redraw, 0, nil
	case "key":
		if strings.EqualFold(strings.TrimSpace(msg.Key), "a") {
			n, err := s.ws.AutoAnnotate(ctx)
			return redraw, n, err
		}
		out, err := s.ws.HandleKey(ctx, msg.Key)
		return out, 0, err
	case "command":
		return s.command(ctx, msg)
	}
	return redraw, 0, fmt.Errorf("%w: unknown message type %q", errBadRequest, msg.Type)
}

// command runs a named workspace operation.
func (s *Server) command(ctx context.Context, msg ClientMessage) (editor.Outcome, int, error) {
	redraw := editor.Outcome{Redraw: true, Created: annotation.NoID}
	done := func(err error) (editor.Outcome, int, error) { return redraw, 0, err }
	outcome := func(out editor.Outcome, err error) (editor.Outcome, int, error) { return out, 0, err }

	switch msg.Command {
	case "undo":
		return outcome(s.ws.Undo())
	case "delete_selected":
		return outcome(s.ws.DeleteSelected())
	case "toggle_mode":
		return outcome(s.ws.ToggleMode())
	case "set_mode":
		mode, err := editor.ParseMode(msg.Mode)
		if err != nil {
			return done(fmt.Errorf("%w: %w", errBadRequest, err))
		}
		return outcome(s.ws.SetMode(mode))
	case "change_class":
		return outcome(s.ws.ChangeSelectedClass())
	case "clear_all":
		return outcome(s.ws.ClearAll())
	case "save":
		return done(s.ws.Save())
	case "arm_class":
		return done(s.ws.ArmClass(msg.Index))
	case "arm_next":
		return done(s.ws.ArmNextClass())
	case "arm_prev":
		return done(s.ws.ArmPrevClass())
	case "next_image":
		return done(s.ws.Next())
	case "prev_image":
		return done(s.ws.Prev())
	case "jump":
		return done(s.ws.Jump(msg.Index))
	case "auto_annotate":
		n, err := s.ws.AutoAnnotate(ctx)
		return redraw, n, err
	case "add_class":
		_, err := s.ws.AddClass(msg.Name)
		return done(err)
	case "rename_class":
		return done(s.ws.RenameClass(msg.Index, msg.Name))
	case "remove_class":
		return done(s.ws.RemoveClass(msg.Index))
	case "move_class":
		return done(s.ws.MoveClass(msg.Index, msg.Up))
	case "import_classes":
		return done(s.ws.ImportClasses(msg.Path))
	case "export_classes":
		return done(s.ws.ExportClasses(msg.Path))
	case "rename_image":
		return done(s.ws.RenameImage(msg.Name))
	case "delete_image":
		return done(s.ws.DeleteImage())
	}
	return done(fmt.Errorf("%w: unknown command %q", errBadRequest, msg.Command))
}

func messageLabel(msg ClientMessage) string {
	if msg.Type == "command" {
		return "command:" + msg.Command
	}
	if _, ok := editor.ParseEventKind(msg.Type); ok || msg.Type == "resize" || msg.Type == "key" {
		return msg.Type
	}
	return "unknown"
}

// errorType classifies err for the client.
func errorType(err error) string {
	switch {
	case errors.Is(err, errBadRequest):
		return ErrorInvalidRequest
	case errors.Is(err, editor.ErrNoClass),
		errors.Is(err, editor.ErrNoImage),
		errors.Is(err, editor.ErrNoSelection),
		errors.Is(err, workspace.ErrNoModel),
		errors.Is(err, workspace.ErrNoImages),
		errors.Is(err, workspace.ErrNoClasses),
		errors.Is(err, workspace.ErrImageExists),
		errors.Is(err, annotation.ErrClassIndex),
		errors.Is(err, annotation.ErrDuplicateClass),
		errors.Is(err, annotation.ErrEmptyClassName):
		return ErrorPrecondition
	}
	return ErrorOperation
}
