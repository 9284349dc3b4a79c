package models

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetModelsDir(t *testing.T) {
	tests := []struct {
		name        string
		explicitDir string
		envVar      string
		expected    string
	}{
		{name: "explicit directory takes precedence", explicitDir: "/explicit/path", envVar: "/env/path", expected: "/explicit/path"},
		{name: "environment variable used when no explicit dir", envVar: "/env/path", expected: "/env/path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvModelsDir, tt.envVar)
			assert.Equal(t, tt.expected, GetModelsDir(tt.explicitDir))
		})
	}

	t.Run("default used when neither provided", func(t *testing.T) {
		t.Setenv(EnvModelsDir, "")
		got := GetModelsDir("")
		assert.Equal(t, DefaultModelsDir, filepath.Base(got))
	})
}

func TestResolveModelPath(t *testing.T) {
	dir := t.TempDir()

	flat := ResolveModelPath(dir, TypeSegmentation, SegmentationNano)
	assert.Equal(t, filepath.Join(dir, SegmentationNano), flat, "falls back to flat layout")

	organized := filepath.Join(dir, TypeSegmentation, SegmentationNano)
	require.NoError(t, os.MkdirAll(filepath.Dir(organized), 0o750))
	require.NoError(t, os.WriteFile(organized, []byte("onnx"), 0o600))
	assert.Equal(t, organized, ResolveModelPath(dir, TypeSegmentation, SegmentationNano))
}

func TestGetSegmentationModelPath(t *testing.T) {
	dir := t.TempDir()

	assert.Equal(t, filepath.Join(dir, SegmentationNano), GetSegmentationModelPath(dir, ""))
	assert.Equal(t, filepath.Join(dir, SegmentationSmall), GetSegmentationModelPath(dir, SegmentationSmall))
	assert.Equal(t, "/abs/custom.onnx", GetSegmentationModelPath(dir, "/abs/custom.onnx"))
	assert.Equal(t, filepath.Join("rel", "m.onnx"), GetSegmentationModelPath(dir, filepath.Join("rel", "m.onnx")))
}

func TestValidateModelExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "m.onnx")

	err := ValidateModelExists(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model file not found")

	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
	require.NoError(t, ValidateModelExists(path))
}

func TestListAvailableModels(t *testing.T) {
	list := ListAvailableModels()
	require.Len(t, list, 2)
	for _, m := range list {
		assert.Equal(t, TypeSegmentation, m.Type)
		assert.NotEmpty(t, m.Filename)
	}
}
