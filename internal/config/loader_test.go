package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoader(t *testing.T) {
	loader := NewLoader()
	require.NotNil(t, loader)
	assert.Same(t, viper.GetViper(), loader.Viper())
}

func TestLoadWithNoConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := NewLoaderWith(viper.New()).Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), *cfg)
}

func TestLoadWithFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "seglabel.yaml")
	content := `
log_level: debug
classes_file: /data/classes.json
editor:
  default_mode: freehand
  vertex_hit_radius: 8
segmenter:
  model_path: /models/custom-seg.onnx
  conf_threshold: 0.4
  accept_threshold: 0.7
  gpu:
    enabled: false
    device_id: 1
server:
  port: 9090
`
	require.NoError(t, os.WriteFile(file, []byte(content), 0o600))

	loader := NewLoaderWith(viper.New())
	cfg, err := loader.LoadWithFile(file)
	require.NoError(t, err)
	assert.Equal(t, file, loader.ConfigFileUsed())

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/data/classes.json", cfg.ClassesFile)
	assert.Equal(t, "freehand", cfg.Editor.DefaultMode)
	assert.InDelta(t, 8.0, cfg.Editor.VertexHitRadius, 1e-12)
	assert.InDelta(t, 10.0, cfg.Editor.InsertThreshold, 1e-12, "unset keys keep defaults")
	assert.Equal(t, "/models/custom-seg.onnx", cfg.Segmenter.ModelPath)
	assert.InDelta(t, 0.4, cfg.Segmenter.ConfThreshold, 1e-12)
	assert.InDelta(t, 0.7, cfg.Segmenter.AcceptThreshold, 1e-12)
	assert.Equal(t, 1, cfg.Segmenter.GPU.DeviceID)
	assert.Equal(t, 640, cfg.Segmenter.InputSize)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestLoadWithFile_Errors(t *testing.T) {
	_, err := NewLoaderWith(viper.New()).LoadWithFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")

	bad := filepath.Join(t.TempDir(), "seglabel.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("server:\n  port: 0\n"), 0o600))
	_, err = NewLoaderWith(viper.New()).LoadWithFile(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("SEGLABEL_LOG_LEVEL", "warn")
	t.Setenv("SEGLABEL_SEGMENTER_IOU_THRESHOLD", "0.3")
	t.Setenv("SEGLABEL_SERVER_PORT", "7000")

	cfg, err := NewLoaderWith(viper.New()).Load()
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.InDelta(t, 0.3, cfg.Segmenter.IOUThreshold, 1e-12)
	assert.Equal(t, 7000, cfg.Server.Port)
}

func TestSearchPathDiscovery(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	require.NoError(t, os.WriteFile(filepath.Join(dir, "seglabel.yaml"), []byte("verbose: true\n"), 0o600))

	cfg, err := NewLoaderWith(viper.New()).Load()
	require.NoError(t, err)
	assert.True(t, cfg.Verbose)
}

func TestGetConfigSearchPaths(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	assert.Equal(t, []string{".", filepath.Join(xdg, "seglabel"), "/etc/seglabel"}, GetConfigSearchPaths())
}
