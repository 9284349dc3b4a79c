package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/MeKo-Tech/seglabel/internal/annotation"
	"github.com/MeKo-Tech/seglabel/internal/config"
	"github.com/MeKo-Tech/seglabel/internal/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	outputFormatJSON = "json"
	outputFormatText = "text"
)

var (
	// Global configuration loader.
	configLoader *config.Loader
	// Global configuration.
	globalConfig *config.Config
	// Configuration file path.
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "seglabel",
	Short: "Interactive polygon labeling for segmentation datasets",
	Long: `seglabel builds polygon-segmentation datasets from a folder of images.

Each image gets a sibling .txt file with one line per polygon:
"<class> <x1> <y1> ... <xn> <yn>" in coordinates normalized to [0,1].

This tool provides:
- A labeling server with a live WebSocket surface (serve)
- Point-by-point and freehand polygon drawing with vertex editing
- Auto-annotation with YOLO segmentation models via ONNX Runtime
- Dataset checks and overlay previews

Examples:
  seglabel serve ./images --classes classes.json
  seglabel annotate photo.jpg --classes classes.json
  seglabel check ./images`,
	Version:      version.String(),
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// GetRootCommand returns the root command for testing purposes.
// This allows tests to execute commands without calling os.Exit().
func GetRootCommand() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		setupLogging(cfg, os.Stderr)
		return nil
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is search in ., $HOME/.config/seglabel, /etc/seglabel)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output (equivalent to --log-level=debug)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("models-dir", "",
		"directory containing ONNX models (can also be set via SEGLABEL_MODELS_DIR)")
	rootCmd.PersistentFlags().String("classes", "", "JSON class list file")
}

// newViper returns a viper instance with the global flags bound.
func newViper() *viper.Viper {
	v := viper.New()
	flags := rootCmd.PersistentFlags()
	_ = v.BindPFlag("verbose", flags.Lookup("verbose"))
	_ = v.BindPFlag("log_level", flags.Lookup("log-level"))
	_ = v.BindPFlag("segmenter.models_dir", flags.Lookup("models-dir"))
	_ = v.BindPFlag("classes_file", flags.Lookup("classes"))
	return v
}

// loadConfig reads the config file, environment and bound flags.
func loadConfig() (*config.Config, error) {
	configLoader = config.NewLoaderWith(newViper())
	cfg, err := configLoader.LoadWithFile(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("error loading configuration: %w", err)
	}
	globalConfig = cfg
	return cfg, nil
}

// GetConfig returns the global configuration, loading it on first use.
func GetConfig() *config.Config {
	if globalConfig == nil {
		if _, err := loadConfig(); err != nil {
			slog.Warn("Falling back to default configuration", "error", err)
			cfg := config.DefaultConfig()
			globalConfig = &cfg
		}
	}
	return globalConfig
}

// setupLogging installs a JSON slog handler at the configured level.
func setupLogging(cfg *config.Config, w io.Writer) {
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: logLevel(cfg),
	}))
	slog.SetDefault(logger)
}

func logLevel(cfg *config.Config) slog.Level {
	if cfg.Verbose {
		return slog.LevelDebug
	}
	switch cfg.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// loadClasses reads the class list at path. An empty path or a file that
// does not exist yet gives an empty list.
func loadClasses(path string) (*annotation.ClassList, error) {
	if path == "" {
		return annotation.NewClassList()
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		slog.Info("Class list not found, starting empty", "path", path)
		return annotation.NewClassList()
	}
	names, err := annotation.LoadClassFile(path)
	if err != nil {
		return nil, err
	}
	return annotation.NewClassList(names...)
}
