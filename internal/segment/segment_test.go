package segment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"input size not multiple of 32", func(c *Config) { c.InputSize = 600 }},
		{"conf threshold above one", func(c *Config) { c.ConfThreshold = 1.5 }},
		{"negative iou", func(c *Config) { c.IOUThreshold = -0.1 }},
		{"mask threshold", func(c *Config) { c.MaskThreshold = 2 }},
		{"mask coeffs", func(c *Config) { c.NumMaskCoeffs = 0 }},
		{"max detections", func(c *Config) { c.MaxDetections = 0 }},
		{"negative epsilon", func(c *Config) { c.ContourEpsilon = -1 }},
		{"gpu device", func(c *Config) { c.GPU.UseGPU = true; c.GPU.DeviceID = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestFuncAdapter(t *testing.T) {
	var s Segmenter = Func(func(_ context.Context, path string) ([]Detection, error) {
		return []Detection{{ClassID: 1, Confidence: 0.8}}, nil
	})
	dets, err := s.Segment(context.Background(), "x.png")
	require.NoError(t, err)
	assert.Equal(t, 1, dets[0].ClassID)
}

func TestNewYOLOSegmenter_MissingModel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ModelPath = "/nonexistent/model.onnx"
	_, err := NewYOLOSegmenter(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model file not found")
}
