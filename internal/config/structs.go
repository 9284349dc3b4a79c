//nolint:lll
package config

import "github.com/MeKo-Tech/seglabel/internal/segment"

// Config represents the complete configuration for seglabel. It is loaded
// from a YAML file, SEGLABEL_ environment variables and command-line flags.
type Config struct {
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	// ClassesFile is the JSON class list loaded at startup and rewritten
	// after every class edit.
	ClassesFile string `mapstructure:"classes_file" yaml:"classes_file" json:"classes_file"`

	Editor    EditorConfig    `mapstructure:"editor" yaml:"editor" json:"editor"`
	Segmenter SegmenterConfig `mapstructure:"segmenter" yaml:"segmenter" json:"segmenter"`
	Server    ServerConfig    `mapstructure:"server" yaml:"server" json:"server"`
}

// EditorConfig contains the interaction tolerances.
type EditorConfig struct {
	VertexHitRadius float64 `mapstructure:"vertex_hit_radius" yaml:"vertex_hit_radius" json:"vertex_hit_radius"`
	InsertThreshold float64 `mapstructure:"insert_threshold" yaml:"insert_threshold" json:"insert_threshold"`
	FreehandMinStep float64 `mapstructure:"freehand_min_step" yaml:"freehand_min_step" json:"freehand_min_step"`
	DefaultMode     string  `mapstructure:"default_mode" yaml:"default_mode" json:"default_mode"`
}

// SegmenterConfig contains the auto-annotation model settings.
type SegmenterConfig struct {
	segment.Config `mapstructure:",squash" yaml:",inline"`

	// AcceptThreshold is the minimum confidence a detection needs to become
	// an annotation.
	AcceptThreshold float64 `mapstructure:"accept_threshold" yaml:"accept_threshold" json:"accept_threshold"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string `mapstructure:"host" yaml:"host" json:"host"`
	Port            int    `mapstructure:"port" yaml:"port" json:"port"`
	CORSOrigin      string `mapstructure:"cors_origin" yaml:"cors_origin" json:"cors_origin"`
	TimeoutSec      int    `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`
	SurfaceWidth    int    `mapstructure:"surface_width" yaml:"surface_width" json:"surface_width"`
	SurfaceHeight   int    `mapstructure:"surface_height" yaml:"surface_height" json:"surface_height"`
}
