package testutil

import (
	"encoding/json"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// ImageSpec describes one image to place into a fixture folder.
type ImageSpec struct {
	Name   string
	Width  int
	Height int
}

// NewImageFolder writes the given images into a fresh temp directory and
// returns its path. Images are plain gray canvases.
func NewImageFolder(t *testing.T, specs ...ImageSpec) string {
	t.Helper()

	dir := t.TempDir()
	WriteImages(t, dir, specs...)
	return dir
}

// WriteImages writes gray canvases for specs into dir.
func WriteImages(t *testing.T, dir string, specs ...ImageSpec) {
	t.Helper()

	for _, s := range specs {
		SaveImage(t, CreateTestImage(s.Width, s.Height, color.Gray{Y: 128}), filepath.Join(dir, s.Name))
	}
}

// AnnotationPathFor returns the sibling .txt path of an image.
func AnnotationPathFor(imagePath string) string {
	return strings.TrimSuffix(imagePath, filepath.Ext(imagePath)) + ".txt"
}

// WriteAnnotations writes raw annotation lines next to imagePath.
func WriteAnnotations(t *testing.T, imagePath string, lines ...string) string {
	t.Helper()

	path := AnnotationPathFor(imagePath)
	content := strings.Join(lines, "\n")
	if len(lines) > 0 {
		content += "\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// ReadAnnotationLines returns the non-empty lines of the annotation file next
// to imagePath, or nil when it does not exist.
func ReadAnnotationLines(t *testing.T, imagePath string) []string {
	t.Helper()

	data, err := os.ReadFile(AnnotationPathFor(imagePath))
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)

	var out []string
	for _, l := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	return out
}

// WriteClasses writes a JSON class list into dir and returns its path.
func WriteClasses(t *testing.T, dir string, names ...string) string {
	t.Helper()

	data, err := json.Marshal(names)
	require.NoError(t, err)
	path := filepath.Join(dir, "classes.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}
