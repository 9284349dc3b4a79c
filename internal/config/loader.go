package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the base name for configuration files (without extension).
	ConfigFileName = "seglabel"

	// EnvPrefix is the prefix for environment variables.
	EnvPrefix = "SEGLABEL"
)

// Loader handles loading configuration from various sources.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a loader over the global viper instance, which is where
// cobra flags are bound.
func NewLoader() *Loader {
	return &Loader{v: viper.GetViper()}
}

// NewLoaderWith creates a loader over v.
func NewLoaderWith(v *viper.Viper) *Loader {
	return &Loader{v: v}
}

// Load reads the first seglabel.yaml found on the search paths, applies
// environment overrides and defaults, and validates the result. A missing
// file is not an error.
func (l *Loader) Load() (*Config, error) {
	cfg, err := l.LoadWithoutValidation()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// LoadWithoutValidation is Load without the final Validate.
func (l *Loader) LoadWithoutValidation() (*Config, error) {
	l.v.SetConfigName(ConfigFileName)
	l.v.SetConfigType("yaml")
	l.addConfigPaths()
	l.setupEnvironmentVariables()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return l.unmarshal()
}

// LoadWithFile loads configuration from a specific file path. An empty path
// falls back to Load.
func (l *Loader) LoadWithFile(configFile string) (*Config, error) {
	if configFile == "" {
		return l.Load()
	}
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configFile)
	}

	l.v.SetConfigFile(configFile)
	l.setupEnvironmentVariables()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", configFile, err)
	}
	cfg, err := l.unmarshal()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func (l *Loader) unmarshal() (*Config, error) {
	var config Config
	if err := l.v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &config, nil
}

// ConfigFileUsed returns the path of the config file that was read, if any.
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// Viper returns the underlying viper instance.
func (l *Loader) Viper() *viper.Viper {
	return l.v
}

func (l *Loader) addConfigPaths() {
	for _, p := range GetConfigSearchPaths() {
		l.v.AddConfigPath(p)
	}
}

func (l *Loader) setupEnvironmentVariables() {
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.AutomaticEnv()
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

// setDefaults registers every key so environment variables can override
// keys that appear in no file.
func (l *Loader) setDefaults() {
	d := DefaultConfig()

	l.v.SetDefault("log_level", d.LogLevel)
	l.v.SetDefault("verbose", d.Verbose)
	l.v.SetDefault("classes_file", d.ClassesFile)

	l.v.SetDefault("editor.vertex_hit_radius", d.Editor.VertexHitRadius)
	l.v.SetDefault("editor.insert_threshold", d.Editor.InsertThreshold)
	l.v.SetDefault("editor.freehand_min_step", d.Editor.FreehandMinStep)
	l.v.SetDefault("editor.default_mode", d.Editor.DefaultMode)

	s := d.Segmenter
	l.v.SetDefault("segmenter.model_path", s.ModelPath)
	l.v.SetDefault("segmenter.models_dir", s.ModelsDir)
	l.v.SetDefault("segmenter.input_size", s.InputSize)
	l.v.SetDefault("segmenter.conf_threshold", s.ConfThreshold)
	l.v.SetDefault("segmenter.iou_threshold", s.IOUThreshold)
	l.v.SetDefault("segmenter.mask_threshold", s.MaskThreshold)
	l.v.SetDefault("segmenter.num_mask_coeffs", s.NumMaskCoeffs)
	l.v.SetDefault("segmenter.max_detections", s.MaxDetections)
	l.v.SetDefault("segmenter.contour_epsilon", s.ContourEpsilon)
	l.v.SetDefault("segmenter.num_threads", s.NumThreads)
	l.v.SetDefault("segmenter.accept_threshold", s.AcceptThreshold)
	l.v.SetDefault("segmenter.gpu.enabled", s.GPU.UseGPU)
	l.v.SetDefault("segmenter.gpu.device_id", s.GPU.DeviceID)
	l.v.SetDefault("segmenter.gpu.mem_limit", s.GPU.GPUMemLimit)
	l.v.SetDefault("segmenter.gpu.arena_extend_strategy", s.GPU.ArenaExtendStrategy)
	l.v.SetDefault("segmenter.gpu.cudnn_conv_algo_search", s.GPU.CUDNNConvAlgoSearch)
	l.v.SetDefault("segmenter.gpu.copy_in_default_stream", s.GPU.DoCopyInDefaultStream)

	l.v.SetDefault("server.host", d.Server.Host)
	l.v.SetDefault("server.port", d.Server.Port)
	l.v.SetDefault("server.cors_origin", d.Server.CORSOrigin)
	l.v.SetDefault("server.timeout_sec", d.Server.TimeoutSec)
	l.v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)
	l.v.SetDefault("server.surface_width", d.Server.SurfaceWidth)
	l.v.SetDefault("server.surface_height", d.Server.SurfaceHeight)
}

// GetConfigSearchPaths returns the directories searched for seglabel.yaml,
// in order.
func GetConfigSearchPaths() []string {
	paths := []string{"."}
	if configDir, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok {
		paths = append(paths, filepath.Join(configDir, "seglabel"))
	} else if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "seglabel"))
	}
	return append(paths, "/etc/seglabel")
}
