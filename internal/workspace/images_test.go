package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/MeKo-Tech/seglabel/internal/editor"
	"github.com/MeKo-Tech/seglabel/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenameImage(t *testing.T) {
	w, dir := newWorkspace(t, []string{"a"}, "a.png", "b.png")
	testutil.WriteAnnotations(t, filepath.Join(dir, "a.png"), lineA)

	require.NoError(t, w.RenameImage("zebra"))
	path, idx, _ := w.Current()
	assert.Equal(t, filepath.Join(dir, "zebra.png"), path)
	assert.Equal(t, 0, idx)
	assert.FileExists(t, filepath.Join(dir, "zebra.png"))
	assert.NoFileExists(t, filepath.Join(dir, "a.png"))
	assert.Equal(t, []string{lineA}, testutil.ReadAnnotationLines(t, path))

	require.ErrorIs(t, w.RenameImage("b.png"), ErrImageExists)
	require.Error(t, w.RenameImage("../escape.png"))
	require.Error(t, w.RenameImage("notes.txt"))
	require.NoError(t, w.RenameImage("zebra.png"), "same name is a no-op")
}

func TestRenameImageWithoutAnnotations(t *testing.T) {
	w, dir := newWorkspace(t, nil, "a.png")
	require.NoError(t, w.RenameImage("c.png"))
	assert.FileExists(t, filepath.Join(dir, "c.png"))
	assert.NoFileExists(t, filepath.Join(dir, "c.txt"))
}

func TestDeleteImage(t *testing.T) {
	w, dir := newWorkspace(t, []string{"a"}, "a.png", "b.png")
	testutil.WriteAnnotations(t, filepath.Join(dir, "a.png"), lineA)
	testutil.WriteAnnotations(t, filepath.Join(dir, "b.png"), lineA, lineA)

	require.NoError(t, w.DeleteImage())
	assert.NoFileExists(t, filepath.Join(dir, "a.png"))
	assert.NoFileExists(t, filepath.Join(dir, "a.txt"))

	path, idx, count := w.Current()
	assert.Equal(t, filepath.Join(dir, "b.png"), path)
	assert.Equal(t, 0, idx)
	assert.Equal(t, 1, count)
	assert.Len(t, w.Annotations(), 2)

	require.NoError(t, w.DeleteImage())
	path, idx, count = w.Current()
	assert.Empty(t, path)
	assert.Equal(t, -1, idx)
	assert.Zero(t, count)
	require.ErrorIs(t, w.DeleteImage(), editor.ErrNoImage)
}

func TestDeleteLastImageMovesBack(t *testing.T) {
	w, dir := newWorkspace(t, nil, "a.png", "b.png")
	require.NoError(t, w.Next())
	require.NoError(t, w.DeleteImage())
	path, _, _ := w.Current()
	assert.Equal(t, filepath.Join(dir, "a.png"), path)
}

func TestDeleteImageFailureKeepsState(t *testing.T) {
	w, dir := newWorkspace(t, nil, "a.png", "b.png")
	require.NoError(t, os.Remove(filepath.Join(dir, "a.png")))

	require.Error(t, w.DeleteImage())
	_, _, count := w.Current()
	assert.Equal(t, 2, count)
}
