package support

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/MeKo-Tech/seglabel/internal/editor"
	"github.com/cucumber/godog"
)

// RegisterEditorSteps registers pointer, key and class actions.
func (testCtx *TestContext) RegisterEditorSteps(sc *godog.ScenarioContext) {
	sc.Step(`^class (\d+) is armed$`, testCtx.classIsArmed)
	sc.Step(`^the drawing mode is (point|freehand)$`, testCtx.theDrawingModeIs)
	sc.Step(`^I click at (\d+),(\d+)$`, testCtx.iClickAt)
	sc.Step(`^I right-click$`, testCtx.iRightClick)
	sc.Step(`^I double-click at (\d+),(\d+)$`, testCtx.iDoubleClickAt)
	sc.Step(`^I drag the vertex at (\d+),(\d+) to (\d+),(\d+) with the modifier held$`, testCtx.iDragTheVertex)
	sc.Step(`^I draw a stroke through "([^"]*)"$`, testCtx.iDrawAStrokeThrough)
	sc.Step(`^I press "([^"]*)"$`, testCtx.iPress)
	sc.Step(`^I remove class (\d+)$`, testCtx.iRemoveClass)
	sc.Step(`^I move class (\d+) (up|down)$`, testCtx.iMoveClass)
	sc.Step(`^the last action fails with "([^"]*)"$`, testCtx.theLastActionFailsWith)
	sc.Step(`^the last action succeeds$`, testCtx.theLastActionSucceeds)
}

// dispatch sends events in order, stopping at the first error.
func (testCtx *TestContext) dispatch(events ...editor.Event) error {
	ws, err := testCtx.ws()
	if err != nil {
		return err
	}
	var out editor.Outcome
	for _, ev := range events {
		out, err = ws.Dispatch(ev)
		if err != nil {
			break
		}
	}
	return testCtx.record(out, err)
}

func (testCtx *TestContext) classIsArmed(id int) error {
	ws, err := testCtx.ws()
	if err != nil {
		return err
	}
	return ws.ArmClass(id)
}

func (testCtx *TestContext) theDrawingModeIs(name string) error {
	ws, err := testCtx.ws()
	if err != nil {
		return err
	}
	mode, err := editor.ParseMode(name)
	if err != nil {
		return err
	}
	_, err = ws.SetMode(mode)
	return err
}

func (testCtx *TestContext) iClickAt(x, y int) error {
	fx, fy := float64(x), float64(y)
	return testCtx.dispatch(editor.PointerDown(fx, fy), editor.PointerUp(fx, fy))
}

func (testCtx *TestContext) iRightClick() error {
	return testCtx.dispatch(editor.Secondary(0, 0))
}

func (testCtx *TestContext) iDoubleClickAt(x, y int) error {
	return testCtx.dispatch(editor.Double(float64(x), float64(y)))
}

func (testCtx *TestContext) iDragTheVertex(x1, y1, x2, y2 int) error {
	return testCtx.dispatch(
		editor.Modifier(true),
		editor.PointerDown(float64(x1), float64(y1)),
		editor.PointerMove(float64(x2), float64(y2)),
		editor.PointerUp(float64(x2), float64(y2)),
		editor.Modifier(false),
	)
}

// iDrawAStrokeThrough presses at the first "x,y" pair, moves through the
// rest and releases at the last.
func (testCtx *TestContext) iDrawAStrokeThrough(path string) error {
	var events []editor.Event
	pairs := strings.Fields(path)
	for i, pair := range pairs {
		xs, ys, ok := strings.Cut(pair, ",")
		if !ok {
			return fmt.Errorf("bad point %q", pair)
		}
		x, errX := strconv.ParseFloat(xs, 64)
		y, errY := strconv.ParseFloat(ys, 64)
		if errX != nil || errY != nil {
			return fmt.Errorf("bad point %q", pair)
		}
		switch i {
		case 0:
			events = append(events, editor.PointerDown(x, y))
		default:
			events = append(events, editor.PointerMove(x, y))
		}
		if i == len(pairs)-1 {
			events = append(events, editor.PointerUp(x, y))
		}
	}
	return testCtx.dispatch(events...)
}

func (testCtx *TestContext) iPress(key string) error {
	ws, err := testCtx.ws()
	if err != nil {
		return err
	}
	return testCtx.record(ws.HandleKey(context.Background(), key))
}

func (testCtx *TestContext) iRemoveClass(id int) error {
	ws, err := testCtx.ws()
	if err != nil {
		return err
	}
	testCtx.LastError = ws.RemoveClass(id)
	return nil
}

func (testCtx *TestContext) iMoveClass(id int, dir string) error {
	ws, err := testCtx.ws()
	if err != nil {
		return err
	}
	testCtx.LastError = ws.MoveClass(id, dir == "up")
	return nil
}

func (testCtx *TestContext) theLastActionFailsWith(msg string) error {
	if testCtx.LastError == nil {
		return fmt.Errorf("expected an error containing %q, got none", msg)
	}
	if !strings.Contains(testCtx.LastError.Error(), msg) {
		return fmt.Errorf("expected an error containing %q, got %q", msg, testCtx.LastError)
	}
	return nil
}

func (testCtx *TestContext) theLastActionSucceeds() error {
	if testCtx.LastError != nil {
		return fmt.Errorf("unexpected error: %w", testCtx.LastError)
	}
	return nil
}
