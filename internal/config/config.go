package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/MeKo-Tech/seglabel/internal/editor"
	"github.com/MeKo-Tech/seglabel/internal/models"
	"github.com/MeKo-Tech/seglabel/internal/segment"
	"github.com/MeKo-Tech/seglabel/internal/workspace"
)

// ValidLogLevels are the accepted log_level values.
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	settings := editor.DefaultSettings()
	seg := segment.DefaultConfig()
	seg.ModelsDir = models.DefaultModelsDir
	return Config{
		LogLevel: "info",
		Editor: EditorConfig{
			VertexHitRadius: settings.VertexHitRadius,
			InsertThreshold: settings.InsertThreshold,
			FreehandMinStep: settings.FreehandMinStep,
			DefaultMode:     editor.ModePoint.String(),
		},
		Segmenter: SegmenterConfig{
			Config:          seg,
			AcceptThreshold: workspace.DefaultAcceptThreshold,
		},
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8080,
			CORSOrigin:      "*",
			TimeoutSec:      30,
			ShutdownTimeout: 10,
			SurfaceWidth:    workspace.DefaultSurfaceWidth,
			SurfaceHeight:   workspace.DefaultSurfaceHeight,
		},
	}
}

// Validate validates the configuration and returns the first problem found.
func (c *Config) Validate() error {
	if !slices.Contains(ValidLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.LogLevel, strings.Join(ValidLogLevels, ", "))
	}

	if c.Editor.VertexHitRadius <= 0 {
		return fmt.Errorf("invalid editor.vertex_hit_radius: %g (must be positive)", c.Editor.VertexHitRadius)
	}
	if c.Editor.InsertThreshold <= 0 {
		return fmt.Errorf("invalid editor.insert_threshold: %g (must be positive)", c.Editor.InsertThreshold)
	}
	if err := validateThreshold(c.Editor.FreehandMinStep, "editor.freehand_min_step"); err != nil {
		return err
	}
	if _, err := editor.ParseMode(c.Editor.DefaultMode); err != nil {
		return fmt.Errorf("invalid editor.default_mode: %w", err)
	}

	if err := validateThreshold(c.Segmenter.AcceptThreshold, "segmenter.accept_threshold"); err != nil {
		return err
	}
	if err := c.Segmenter.Validate(); err != nil {
		return fmt.Errorf("invalid segmenter config: %w", err)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be between 1 and 65535)", c.Server.Port)
	}
	if c.Server.TimeoutSec <= 0 {
		return fmt.Errorf("invalid timeout: %d (must be positive)", c.Server.TimeoutSec)
	}
	if c.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("invalid shutdown timeout: %d (must not be negative)", c.Server.ShutdownTimeout)
	}
	if c.Server.SurfaceWidth <= 0 || c.Server.SurfaceHeight <= 0 {
		return fmt.Errorf("invalid surface size: %dx%d (must be positive)", c.Server.SurfaceWidth, c.Server.SurfaceHeight)
	}
	return nil
}

// ToEditorSettings converts the editor section.
func (c *Config) ToEditorSettings() editor.Settings {
	return editor.Settings{
		VertexHitRadius: c.Editor.VertexHitRadius,
		InsertThreshold: c.Editor.InsertThreshold,
		FreehandMinStep: c.Editor.FreehandMinStep,
	}
}

// ToSegmentConfig returns the segmenter settings with the model path
// resolved against the models directory.
func (c *Config) ToSegmentConfig() segment.Config {
	cfg := c.Segmenter.Config
	cfg.ModelPath = models.GetSegmentationModelPath(cfg.ModelsDir, cfg.ModelPath)
	return cfg
}

// ToWorkspaceOptions builds workspace options without a segmenter; callers
// attach one once the model has loaded.
func (c *Config) ToWorkspaceOptions() (workspace.Options, error) {
	mode, err := editor.ParseMode(c.Editor.DefaultMode)
	if err != nil {
		return workspace.Options{}, err
	}
	return workspace.Options{
		Settings:        c.ToEditorSettings(),
		Mode:            mode,
		AcceptThreshold: c.Segmenter.AcceptThreshold,
		SurfaceWidth:    c.Server.SurfaceWidth,
		SurfaceHeight:   c.Server.SurfaceHeight,
		ClassesFile:     c.ClassesFile,
	}, nil
}

// validateThreshold validates that a value is between 0.0 and 1.0.
func validateThreshold(value float64, name string) error {
	if value < 0.0 || value > 1.0 {
		return fmt.Errorf("invalid %s: %.2f (must be between 0.0 and 1.0)", name, value)
	}
	return nil
}
