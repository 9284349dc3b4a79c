// Package models resolves where segmentation model files live on disk.
package models

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Model file names shipped for auto-annotation.
const (
	SegmentationNano  = "yolo11n-seg.onnx"
	SegmentationSmall = "yolo11s-seg.onnx"
)

// TypeSegmentation is the subdirectory of the models dir holding
// segmentation exports.
const TypeSegmentation = "segmentation"

// DefaultModelsDir is used below the project root when nothing else is set.
const DefaultModelsDir = "models"

// EnvModelsDir overrides the models directory.
const EnvModelsDir = "SEGLABEL_MODELS_DIR"

// ModelInfo describes a known model file.
type ModelInfo struct {
	Name        string
	Type        string
	Description string
	Filename    string
}

// findProjectRoot walks up from the working directory to the first go.mod.
func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", errors.New("could not find project root (go.mod not found)")
}

// GetModelsDir returns the models directory.
// Priority: 1. explicit modelsDir, 2. SEGLABEL_MODELS_DIR, 3. project root + "models".
func GetModelsDir(modelsDir string) string {
	if modelsDir != "" {
		return modelsDir
	}
	if envDir := os.Getenv(EnvModelsDir); envDir != "" {
		return envDir
	}
	if projectRoot, err := findProjectRoot(); err == nil {
		return filepath.Join(projectRoot, DefaultModelsDir)
	}
	return DefaultModelsDir
}

// ResolveModelPath finds filename under the models directory, preferring
// <dir>/<modelType>/<filename> and falling back to the flat <dir>/<filename>.
func ResolveModelPath(modelsDir, modelType, filename string) string {
	baseDir := GetModelsDir(modelsDir)
	if modelType != "" {
		organized := filepath.Join(baseDir, modelType, filename)
		if _, err := os.Stat(organized); err == nil {
			return organized
		}
	}
	return filepath.Join(baseDir, filename)
}

// GetSegmentationModelPath resolves a segmentation model. An explicit path
// wins; an empty filename selects the nano export.
func GetSegmentationModelPath(modelsDir, modelPath string) string {
	if modelPath != "" {
		if filepath.IsAbs(modelPath) || filepath.Dir(modelPath) != "." {
			return modelPath
		}
		return ResolveModelPath(modelsDir, TypeSegmentation, modelPath)
	}
	return ResolveModelPath(modelsDir, TypeSegmentation, SegmentationNano)
}

// ValidateModelExists checks that a model file is present.
func ValidateModelExists(modelPath string) error {
	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		return fmt.Errorf("model file not found: %s", modelPath)
	}
	return nil
}

// ListAvailableModels returns the models the tool knows by name.
func ListAvailableModels() []ModelInfo {
	return []ModelInfo{
		{
			Name:        "yolo11n-seg",
			Type:        TypeSegmentation,
			Description: "YOLO11 nano instance segmentation",
			Filename:    SegmentationNano,
		},
		{
			Name:        "yolo11s-seg",
			Type:        TypeSegmentation,
			Description: "YOLO11 small instance segmentation",
			Filename:    SegmentationSmall,
		},
	}
}
