// Package segment runs an instance-segmentation model over an image and
// reports one outline per detected object, in source image pixels.
package segment

import (
	"context"
	"errors"
	"fmt"

	"github.com/MeKo-Tech/seglabel/internal/onnx"
	"github.com/MeKo-Tech/seglabel/internal/utils"
)

// Detection is one object found by a Segmenter. Boundary is in original
// image pixels and is neither closed nor simplified to the editor's format.
type Detection struct {
	ClassID    int           `json:"class_id"`
	Confidence float64       `json:"confidence"`
	Boundary   []utils.Point `json:"boundary"`
}

// Segmenter maps an image file to detections.
type Segmenter interface {
	Segment(ctx context.Context, imagePath string) ([]Detection, error)
}

// Func adapts a plain function to Segmenter.
type Func func(ctx context.Context, imagePath string) ([]Detection, error)

// Segment calls f.
func (f Func) Segment(ctx context.Context, imagePath string) ([]Detection, error) {
	return f(ctx, imagePath)
}

// Config configures YOLOSegmenter.
type Config struct {
	ModelPath      string         `mapstructure:"model_path" yaml:"model_path"`
	ModelsDir      string         `mapstructure:"models_dir" yaml:"models_dir"`
	InputSize      int            `mapstructure:"input_size" yaml:"input_size"`
	ConfThreshold  float64        `mapstructure:"conf_threshold" yaml:"conf_threshold"`
	IOUThreshold   float64        `mapstructure:"iou_threshold" yaml:"iou_threshold"`
	MaskThreshold  float64        `mapstructure:"mask_threshold" yaml:"mask_threshold"`
	NumMaskCoeffs  int            `mapstructure:"num_mask_coeffs" yaml:"num_mask_coeffs"`
	MaxDetections  int            `mapstructure:"max_detections" yaml:"max_detections"`
	ContourEpsilon float64        `mapstructure:"contour_epsilon" yaml:"contour_epsilon"` // source pixels
	NumThreads     int            `mapstructure:"num_threads" yaml:"num_threads"`
	GPU            onnx.GPUConfig `mapstructure:"gpu" yaml:"gpu"`
}

// DefaultConfig returns settings for a stock 640px YOLO-seg export.
func DefaultConfig() Config {
	return Config{
		InputSize:      640,
		ConfThreshold:  0.25,
		IOUThreshold:   0.45,
		MaskThreshold:  0.5,
		NumMaskCoeffs:  32,
		MaxDetections:  100,
		ContourEpsilon: 1.0,
		GPU:            onnx.DefaultGPUConfig(),
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.InputSize <= 0 || c.InputSize%32 != 0 {
		return fmt.Errorf("input_size must be a positive multiple of 32, got %d", c.InputSize)
	}
	for name, v := range map[string]float64{
		"conf_threshold": c.ConfThreshold,
		"iou_threshold":  c.IOUThreshold,
		"mask_threshold": c.MaskThreshold,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s must be in [0,1], got %g", name, v)
		}
	}
	if c.NumMaskCoeffs <= 0 {
		return errors.New("num_mask_coeffs must be positive")
	}
	if c.MaxDetections <= 0 {
		return errors.New("max_detections must be positive")
	}
	if c.ContourEpsilon < 0 {
		return errors.New("contour_epsilon must not be negative")
	}
	return onnx.ValidateGPUConfig(c.GPU)
}
