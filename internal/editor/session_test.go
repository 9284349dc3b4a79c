package editor

import (
	"math"
	"testing"

	"github.com/MeKo-Tech/seglabel/internal/annotation"
	"github.com/MeKo-Tech/seglabel/internal/utils"
	"github.com/MeKo-Tech/seglabel/internal/viewport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestSession maps a 1000x1000 image one-to-one onto the surface, so a
// surface position of (100, 200) is the normalized point (0.1, 0.2).
func newTestSession(t *testing.T) Session {
	t.Helper()
	s := NewSession(annotation.NewStore(), viewport.Fit(1000, 1000, 1000, 1000), DefaultSettings())
	s, _ = s.ArmClass(2)
	return s
}

func run(t *testing.T, s Session, events ...Event) (Session, Outcome) {
	t.Helper()
	var out Outcome
	var err error
	for _, ev := range events {
		s, out, err = s.Handle(ev)
		require.NoError(t, err, "event %v", ev.Kind)
	}
	return s, out
}

func near(t *testing.T, want, got utils.Point) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1e-9)
	assert.InDelta(t, want.Y, got.Y, 1e-9)
}

func TestPointMode_ThreeClicksThenSecondaryCommits(t *testing.T) {
	s := newTestSession(t)
	s, out := run(t, s, PointerDown(100, 100), PointerDown(200, 100), PointerDown(200, 200))
	assert.False(t, out.Persist)
	require.Len(t, s.Pending, 3)

	s, out = run(t, s, Secondary(500, 500))
	assert.True(t, out.Persist)
	assert.Equal(t, annotation.ID(0), out.Created)
	assert.Empty(t, s.Pending)

	require.Equal(t, 1, s.Store.Len())
	a, ok := s.Store.Get(0)
	require.True(t, ok)
	assert.Equal(t, 2, a.ClassID)
	require.Len(t, a.Vertices, 3)
	near(t, utils.Point{X: 0.1, Y: 0.1}, a.Vertices[0])
	near(t, utils.Point{X: 0.2, Y: 0.1}, a.Vertices[1])
	near(t, utils.Point{X: 0.2, Y: 0.2}, a.Vertices[2])
}

func TestPointMode_CommitNeedsThreePoints(t *testing.T) {
	s := newTestSession(t)
	s, out := run(t, s, PointerDown(100, 100), PointerDown(200, 100), Secondary(0, 0))
	assert.False(t, out.Persist)
	assert.Len(t, s.Pending, 2)
	assert.Zero(t, s.Store.Len())
}

func TestPointMode_DoubleCommits(t *testing.T) {
	s := newTestSession(t)
	s, out := run(t, s, PointerDown(100, 100), PointerDown(300, 100), PointerDown(300, 300), Double(300, 300))
	assert.True(t, out.Persist)
	assert.Equal(t, 1, s.Store.Len())
}

func TestPointMode_OutsideImageIgnored(t *testing.T) {
	s := NewSession(annotation.NewStore(), viewport.Fit(1000, 500, 500, 500), DefaultSettings())
	s, _ = s.ArmClass(0)
	s, out := run(t, s, PointerDown(100, 100))
	assert.Empty(t, s.Pending, "left letterbox band is not image")
	assert.False(t, out.Redraw)
}

func TestPreconditions(t *testing.T) {
	t.Run("no class armed", func(t *testing.T) {
		s := NewSession(annotation.NewStore(), viewport.Fit(1000, 1000, 1000, 1000), DefaultSettings())
		next, _, err := s.Handle(PointerDown(100, 100))
		require.ErrorIs(t, err, ErrNoClass)
		assert.Empty(t, next.Pending)

		s, _ = s.SetMode(ModeFreehand)
		next, _, err = s.Handle(PointerDown(100, 100))
		require.ErrorIs(t, err, ErrNoClass)
		assert.False(t, next.Tracing)
	})

	t.Run("no image", func(t *testing.T) {
		s := NewSession(nil, viewport.Mapper{}, DefaultSettings())
		s, _ = s.ArmClass(0)
		_, _, err := s.Handle(PointerDown(10, 10))
		require.ErrorIs(t, err, ErrNoImage)
	})

	t.Run("change class needs selection and class", func(t *testing.T) {
		s := newTestSession(t)
		_, _, err := s.ChangeSelectedClass()
		require.ErrorIs(t, err, ErrNoSelection)

		s, _ = run(t, s, PointerDown(100, 100), PointerDown(300, 100), PointerDown(200, 300), Secondary(0, 0))
		s, _ = run(t, s, PointerDown(200, 160))
		require.True(t, s.HasSelection())
		s, _ = s.ArmClass(NoClass)
		_, _, err = s.ChangeSelectedClass()
		require.ErrorIs(t, err, ErrNoClass)
	})
}

func TestSelection_HitOrder(t *testing.T) {
	s := newTestSession(t)
	s, _ = run(t, s, PointerDown(100, 100), PointerDown(300, 100), PointerDown(300, 300), PointerDown(100, 300), Secondary(0, 0))

	// Near a vertex: click-through, nothing happens.
	next, out := run(t, s, PointerDown(103, 102))
	assert.False(t, out.Redraw)
	assert.Empty(t, next.Pending)
	assert.False(t, next.HasSelection())

	// Inside the fill: selects.
	next, out = run(t, s, PointerDown(200, 200))
	assert.True(t, out.Redraw)
	assert.Equal(t, annotation.ID(0), next.Selected)
	assert.Empty(t, next.Pending)

	// On the outline away from vertices: selects.
	next, _ = run(t, s, PointerDown(200, 97))
	assert.Equal(t, annotation.ID(0), next.Selected)

	// Empty space: starts a new polygon and clears the selection.
	next, _ = run(t, next, PointerDown(600, 600))
	assert.False(t, next.HasSelection())
	assert.Len(t, next.Pending, 1)
}

func TestSelection_PrefersSmallestContainingPolygon(t *testing.T) {
	// Clicking inside an existing polygon selects it, so nested shapes are
	// seeded directly.
	store := annotation.NewStore()
	_, err := store.Create(0, []utils.Point{{X: 0.1, Y: 0.1}, {X: 0.9, Y: 0.1}, {X: 0.9, Y: 0.9}, {X: 0.1, Y: 0.9}})
	require.NoError(t, err)
	_, err = store.Create(1, []utils.Point{{X: 0.4, Y: 0.4}, {X: 0.6, Y: 0.4}, {X: 0.6, Y: 0.6}, {X: 0.4, Y: 0.6}})
	require.NoError(t, err)
	s := NewSession(store, viewport.Fit(1000, 1000, 1000, 1000), DefaultSettings())

	next, _ := run(t, s, PointerDown(500, 500))
	assert.Equal(t, annotation.ID(1), next.Selected)
	next, _ = run(t, s, PointerDown(200, 200))
	assert.Equal(t, annotation.ID(0), next.Selected)
	next, _ = run(t, s, PointerDown(500, 403))
	assert.Equal(t, annotation.ID(1), next.Selected, "outline hit")
}

func TestFreehand_FiftyPointStroke(t *testing.T) {
	s := newTestSession(t)
	s, _ = s.SetMode(ModeFreehand)

	arc := func(i int) (float64, float64) {
		a := 1.8 * math.Pi * float64(i) / 49
		return 500 + 200*math.Cos(a), 500 + 200*math.Sin(a)
	}
	x, y := arc(0)
	s, _ = run(t, s, PointerDown(x, y))
	require.True(t, s.Tracing)
	for i := 1; i < 50; i++ {
		x, y = arc(i)
		s, _ = run(t, s, PointerMove(x, y))
	}
	require.Len(t, s.Stroke, 50)

	s, out := run(t, s, PointerUp(x, y))
	require.True(t, out.Persist)
	assert.False(t, s.Tracing)
	assert.Empty(t, s.Stroke)

	a, ok := s.Store.Get(out.Created)
	require.True(t, ok)
	assert.LessOrEqual(t, len(a.Vertices), 21)
	assert.GreaterOrEqual(t, len(a.Vertices), 3)
	assert.Equal(t, a.Vertices[0], a.Vertices[len(a.Vertices)-1], "ring is closed")
	near(t, utils.Point{X: 0.7, Y: 0.5}, a.Vertices[0])
}

func TestFreehand_JitterIsIgnored(t *testing.T) {
	s := newTestSession(t)
	s, _ = s.SetMode(ModeFreehand)
	s, _ = run(t, s, PointerDown(500, 500), PointerMove(503, 504), PointerMove(504, 504), PointerMove(506, 500))
	assert.Len(t, s.Stroke, 2, "only the 6px move exceeds 0.005 of 1000px")
}

func TestFreehand_ShortStrokeDiscarded(t *testing.T) {
	s := newTestSession(t)
	s, _ = s.SetMode(ModeFreehand)
	s, out := run(t, s, PointerDown(500, 500), PointerUp(500, 500))
	assert.False(t, out.Persist)
	assert.Zero(t, s.Store.Len())
	assert.False(t, s.Tracing)
}

func TestFreehand_DisarmedStrokeStillEnds(t *testing.T) {
	s := newTestSession(t)
	s, _ = s.SetMode(ModeFreehand)
	s, _ = run(t, s, PointerDown(100, 100), PointerMove(300, 100), PointerMove(300, 300))
	require.True(t, s.Tracing)
	s, _ = s.ArmClass(NoClass)

	next, _, err := s.Handle(PointerUp(300, 300))
	require.ErrorIs(t, err, ErrNoClass)
	assert.False(t, next.Tracing)
	assert.Empty(t, next.Stroke)
	assert.Zero(t, next.Store.Len())

	next, _, err = next.Handle(PointerMove(500, 500))
	require.NoError(t, err)
	assert.Empty(t, next.Stroke, "moves after the stroke ended record nothing")
}

func TestFreehand_CommitFailureIsReported(t *testing.T) {
	s := newTestSession(t)
	s, _ = s.SetMode(ModeFreehand)
	p := utils.Point{X: 0.3, Y: 0.3}
	s.Stroke = []utils.Point{p, p}
	s.Tracing = true

	next, out, err := s.Handle(PointerUp(300, 300))
	require.ErrorIs(t, err, annotation.ErrTooFewVertices)
	assert.False(t, out.Persist)
	assert.False(t, next.Tracing)
	assert.Empty(t, next.Stroke)
	assert.Zero(t, next.Store.Len())
}

func TestDiscardBuffers(t *testing.T) {
	s := newTestSession(t)
	s, _ = run(t, s, PointerDown(100, 100), PointerDown(300, 100))
	require.Len(t, s.Pending, 2)
	s = s.DiscardBuffers()
	assert.Empty(t, s.Pending)
	assert.Equal(t, ModePoint, s.Mode)
}

func TestFreehand_SecondaryCompletes(t *testing.T) {
	s := newTestSession(t)
	s, _ = s.SetMode(ModeFreehand)
	s, out := run(t, s, PointerDown(100, 100), PointerMove(300, 100), PointerMove(300, 300), Secondary(300, 300))
	assert.True(t, out.Persist)
	a, _ := s.Store.Get(out.Created)
	assert.Len(t, a.Vertices, 4, "three points plus closure")
}

func TestModifierDrag(t *testing.T) {
	s := newTestSession(t)
	s, _ = run(t, s, PointerDown(100, 100), PointerDown(300, 100), PointerDown(300, 300), Secondary(0, 0))

	s, out := run(t, s, Modifier(true), PointerDown(302, 98))
	assert.True(t, out.Redraw)
	require.True(t, s.Dragging())
	assert.Equal(t, DragTarget{Annotation: 0, Vertex: 1}, s.Drag)
	assert.Equal(t, annotation.ID(0), s.Selected)

	s, out = run(t, s, PointerMove(400, 150))
	assert.True(t, out.Persist, "every drag step is saved")
	a, _ := s.Store.Get(0)
	near(t, utils.Point{X: 0.4, Y: 0.15}, a.Vertices[1])

	s, _ = run(t, s, PointerMove(1500, -20))
	a, _ = s.Store.Get(0)
	near(t, utils.Point{X: 1, Y: 0}, a.Vertices[1])

	s, _ = run(t, s, Modifier(false))
	assert.False(t, s.Dragging())
	s, out = run(t, s, PointerMove(500, 500))
	assert.False(t, out.Persist)
}

func TestModifierDown_AwayFromVerticesDoesNothing(t *testing.T) {
	s := newTestSession(t)
	s, out := run(t, s, Modifier(true), PointerDown(500, 500))
	assert.False(t, s.Dragging())
	assert.Empty(t, s.Pending, "modifier clicks never draw")
	assert.False(t, out.Redraw)
}

func TestDoubleInsertsVertexOnSelectedEdge(t *testing.T) {
	s := newTestSession(t)
	s, _ = run(t, s, PointerDown(100, 100), PointerDown(300, 100), PointerDown(300, 300), PointerDown(100, 300), Secondary(0, 0))
	s, _ = run(t, s, PointerDown(200, 200))
	require.Equal(t, annotation.ID(0), s.Selected)

	next, out := run(t, s, Double(200, 105))
	require.True(t, out.Persist)
	a, _ := next.Store.Get(0)
	require.Len(t, a.Vertices, 5)
	near(t, utils.Point{X: 0.2, Y: 0.1}, a.Vertices[1])

	// The closing edge (last -> first) counts too.
	next, _ = run(t, s, Double(95, 200))
	a, _ = next.Store.Get(0)
	require.Len(t, a.Vertices, 5)
	near(t, utils.Point{X: 0.1, Y: 0.2}, a.Vertices[4])

	// Too far from every edge.
	next, out = run(t, s, Double(200, 200))
	assert.False(t, out.Persist)
	a, _ = next.Store.Get(0)
	assert.Len(t, a.Vertices, 4)
}

func TestUndo(t *testing.T) {
	s := newTestSession(t)

	s, out := s.Undo()
	assert.Equal(t, "Nothing to undo", out.Notice)

	s, _ = run(t, s, PointerDown(100, 100), PointerDown(300, 100), PointerDown(300, 300), Secondary(0, 0))
	s, _ = run(t, s, PointerDown(600, 600), PointerDown(700, 600))

	s, out = s.Undo()
	assert.False(t, out.Persist)
	assert.Len(t, s.Pending, 1, "pops the pending point first")

	s, _ = s.Undo()
	assert.Empty(t, s.Pending)
	assert.Equal(t, 1, s.Store.Len())

	s, out = s.Undo()
	assert.True(t, out.Persist)
	assert.Zero(t, s.Store.Len(), "removes annotation 0")
}

func TestDeleteSelected(t *testing.T) {
	s := newTestSession(t)
	_, out := s.DeleteSelected()
	assert.Equal(t, "No polygon selected", out.Notice)
	assert.False(t, out.Persist)

	s, _ = run(t, s, PointerDown(100, 100), PointerDown(300, 100), PointerDown(300, 300), Secondary(0, 0))
	s, _ = run(t, s, PointerDown(250, 150))
	require.True(t, s.HasSelection())

	s, out = s.DeleteSelected()
	assert.True(t, out.Persist)
	assert.False(t, s.HasSelection())
	assert.Zero(t, s.Store.Len())
}

func TestToggleModeDiscardsBuffers(t *testing.T) {
	s := newTestSession(t)
	s, _ = run(t, s, PointerDown(100, 100), PointerDown(300, 100), PointerDown(300, 300))
	s, _ = s.ToggleMode()
	assert.Equal(t, ModeFreehand, s.Mode)
	assert.Empty(t, s.Pending)
	assert.Zero(t, s.Store.Len(), "no implicit commit")

	s, _ = run(t, s, PointerDown(100, 100), PointerMove(200, 200))
	s, _ = s.ToggleMode()
	assert.Equal(t, ModePoint, s.Mode)
	assert.Empty(t, s.Stroke)
	assert.False(t, s.Tracing)
}

func TestTransitionsDoNotMutateTheirInput(t *testing.T) {
	s := newTestSession(t)
	s, _ = run(t, s, PointerDown(100, 100), PointerDown(300, 100), PointerDown(300, 300))
	before := s

	after, _ := run(t, before, Secondary(0, 0))
	assert.Equal(t, 1, after.Store.Len())
	assert.Zero(t, before.Store.Len())
	assert.Len(t, before.Pending, 3)

	cleared, _ := after.ClearAll()
	assert.Zero(t, cleared.Store.Len())
	assert.Equal(t, 1, after.Store.Len())

	popped, _ := before.Undo()
	extended, _ := run(t, popped, PointerDown(900, 900))
	assert.Len(t, before.Pending, 3)
	near(t, utils.Point{X: 0.3, Y: 0.3}, before.Pending[2])
	assert.Len(t, extended.Pending, 3)
}

func TestChangeSelectedClass(t *testing.T) {
	s := newTestSession(t)
	s, _ = run(t, s, PointerDown(100, 100), PointerDown(300, 100), PointerDown(300, 300), Secondary(0, 0))
	s, _ = run(t, s, PointerDown(250, 150))
	s, _ = s.ArmClass(5)

	s, out, err := s.ChangeSelectedClass()
	require.NoError(t, err)
	assert.True(t, out.Persist)
	a, _ := s.Store.Get(0)
	assert.Equal(t, 5, a.ClassID)
}

func TestFlushPending(t *testing.T) {
	s := newTestSession(t)
	s, _ = run(t, s, PointerDown(100, 100), PointerDown(300, 100))
	next, out := s.FlushPending()
	assert.False(t, out.Persist)
	assert.Empty(t, next.Pending)
	assert.Zero(t, next.Store.Len())

	s, _ = run(t, s, PointerDown(300, 300))
	next, out = s.FlushPending()
	assert.True(t, out.Persist)
	assert.Equal(t, 1, next.Store.Len())
}

func TestReloadKeepsModeAndClass(t *testing.T) {
	s := newTestSession(t)
	s, _ = s.SetMode(ModeFreehand)
	s, _ = run(t, s, PointerDown(100, 100))

	next := s.Reload(annotation.NewStore(), viewport.Fit(800, 600, 400, 300))
	assert.Equal(t, ModeFreehand, next.Mode)
	assert.Equal(t, 2, next.Armed)
	assert.Empty(t, next.Stroke)
	assert.False(t, next.Tracing)
	assert.False(t, next.HasSelection())
}

func TestParseModeAndEventKind(t *testing.T) {
	m, err := ParseMode("freehand")
	require.NoError(t, err)
	assert.Equal(t, ModeFreehand, m)
	_, err = ParseMode("lasso")
	require.Error(t, err)

	k, ok := ParseEventKind("pointer_move")
	require.True(t, ok)
	assert.Equal(t, EventPointerMove, k)
	_, ok = ParseEventKind("scroll")
	assert.False(t, ok)
	assert.Equal(t, "double", EventDouble.String())
}
