package testutil

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "images")
	require.NoError(t, EnsureDir(dir))
	assert.DirExists(t, dir)
	require.NoError(t, EnsureDir(dir))
}

func TestNewImageFolder(t *testing.T) {
	dir := NewImageFolder(t,
		ImageSpec{Name: "a.png", Width: 40, Height: 30},
		ImageSpec{Name: "b.bmp", Width: 20, Height: 10},
		ImageSpec{Name: "c.jpg", Width: 16, Height: 16},
	)
	img := LoadImage(t, filepath.Join(dir, "a.png"))
	assert.Equal(t, 40, img.Bounds().Dx())
	assert.Equal(t, 30, img.Bounds().Dy())
	assert.FileExists(t, filepath.Join(dir, "b.bmp"))
	assert.FileExists(t, filepath.Join(dir, "c.jpg"))
}

func TestAnnotationFixtures(t *testing.T) {
	dir := t.TempDir()
	imgPath := filepath.Join(dir, "photo.final.jpg")
	assert.Equal(t, filepath.Join(dir, "photo.final.txt"), AnnotationPathFor(imgPath))

	assert.Nil(t, ReadAnnotationLines(t, imgPath))
	WriteAnnotations(t, imgPath, "0 0.1 0.1 0.2 0.1 0.2 0.2", "", "1 0.5 0.5 0.6 0.5 0.6 0.6")
	assert.Len(t, ReadAnnotationLines(t, imgPath), 2)
}

func TestCreateShapeImage(t *testing.T) {
	img := CreateShapeImage(20, 20, image.Rect(5, 5, 10, 10), color.Black)
	r, _, _, _ := img.At(7, 7).RGBA()
	assert.Zero(t, r)
	r, _, _, _ = img.At(1, 1).RGBA()
	assert.NotZero(t, r)
}
