package workspace

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/MeKo-Tech/seglabel/internal/editor"
	"github.com/MeKo-Tech/seglabel/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleKey(t *testing.T) {
	ctx := context.Background()
	w, dir := newWorkspace(t, []string{"x", "y"})

	press := func(key string) editor.Outcome {
		t.Helper()
		out, err := w.HandleKey(ctx, key)
		require.NoError(t, err, key)
		return out
	}

	press("2")
	assert.Equal(t, 1, w.Session().Armed)
	press("9")
	assert.Equal(t, 1, w.Session().Armed, "keys past the class count are ignored")
	press("Down")
	assert.Equal(t, 0, w.Session().Armed)
	press("up")
	assert.Equal(t, 1, w.Session().Armed)

	press("m")
	assert.Equal(t, editor.ModeFreehand, w.Session().Mode)
	press("m")
	assert.Equal(t, editor.ModePoint, w.Session().Mode)

	dispatch(t, w, editor.PointerDown(10, 10), editor.PointerDown(50, 10))
	press("ctrl+z")
	assert.Len(t, w.Session().Pending, 1)

	dispatch(t, w, editor.PointerDown(50, 10), editor.PointerDown(50, 50), editor.Secondary(0, 0))
	dispatch(t, w, editor.PointerDown(40, 20))
	press("1")
	assert.True(t, press("c").Persist)
	assert.Equal(t, []string{"0 0.1 0.1 0.5 0.1 0.5 0.5"}, testutil.ReadAnnotationLines(t, filepath.Join(dir, "a.png")))

	assert.True(t, press("delete").Persist)
	assert.Empty(t, w.Annotations())

	press("right")
	_, idx, _ := w.Current()
	assert.Equal(t, 1, idx)
	press("left")
	_, idx, _ = w.Current()
	assert.Equal(t, 0, idx)

	assert.Equal(t, editor.Outcome{Created: -1}, press("f12"))

	_, err := w.HandleKey(ctx, "a")
	require.ErrorIs(t, err, ErrNoModel)
}
