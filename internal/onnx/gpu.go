// Package onnx locates the ONNX Runtime shared library and builds sessions
// for the segmentation model, optionally on a CUDA device.
package onnx

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/yalue/onnxruntime_go"
)

// EnvLibraryPath points at an explicit onnxruntime shared library.
const EnvLibraryPath = "SEGLABEL_ONNXRUNTIME_LIB"

// GPUConfig holds CUDA execution provider settings.
type GPUConfig struct {
	UseGPU                bool   `mapstructure:"enabled" yaml:"enabled"`
	DeviceID              int    `mapstructure:"device_id" yaml:"device_id"`
	GPUMemLimit           uint64 `mapstructure:"mem_limit" yaml:"mem_limit"` // bytes, 0 = unlimited
	ArenaExtendStrategy   string `mapstructure:"arena_extend_strategy" yaml:"arena_extend_strategy"`
	CUDNNConvAlgoSearch   string `mapstructure:"cudnn_conv_algo_search" yaml:"cudnn_conv_algo_search"`
	DoCopyInDefaultStream bool   `mapstructure:"copy_in_default_stream" yaml:"copy_in_default_stream"`
}

// DefaultGPUConfig returns a CPU-only configuration with CUDA defaults filled
// in for when the GPU is switched on.
func DefaultGPUConfig() GPUConfig {
	return GPUConfig{
		ArenaExtendStrategy:   "kNextPowerOfTwo",
		CUDNNConvAlgoSearch:   "DEFAULT",
		DoCopyInDefaultStream: true,
	}
}

// ValidateGPUConfig checks the CUDA settings. CPU-only configs always pass.
func ValidateGPUConfig(config GPUConfig) error {
	if !config.UseGPU {
		return nil
	}
	if config.DeviceID < 0 {
		return fmt.Errorf("device ID must be non-negative, got %d", config.DeviceID)
	}
	switch config.ArenaExtendStrategy {
	case "", "kNextPowerOfTwo", "kSameAsRequested":
	default:
		return fmt.Errorf("invalid arena extend strategy: %s", config.ArenaExtendStrategy)
	}
	switch config.CUDNNConvAlgoSearch {
	case "", "EXHAUSTIVE", "HEURISTIC", "DEFAULT":
	default:
		return fmt.Errorf("invalid CUDNN conv algo search: %s", config.CUDNNConvAlgoSearch)
	}
	return nil
}

// cudaSettings renders config as CUDA provider options.
func cudaSettings(config GPUConfig) map[string]string {
	s := map[string]string{
		"device_id":                 strconv.Itoa(config.DeviceID),
		"do_copy_in_default_stream": "0",
	}
	if config.GPUMemLimit > 0 {
		s["gpu_mem_limit"] = strconv.FormatUint(config.GPUMemLimit, 10)
	}
	if config.ArenaExtendStrategy != "" {
		s["arena_extend_strategy"] = config.ArenaExtendStrategy
	}
	if config.CUDNNConvAlgoSearch != "" {
		s["cudnn_conv_algo_search"] = config.CUDNNConvAlgoSearch
	}
	if config.DoCopyInDefaultStream {
		s["do_copy_in_default_stream"] = "1"
	}
	return s
}

// ConfigureSessionForGPU appends the CUDA provider to sessionOptions when the
// GPU is enabled.
func ConfigureSessionForGPU(sessionOptions *onnxruntime_go.SessionOptions, config GPUConfig) error {
	if !config.UseGPU {
		return nil
	}
	cudaOpts, err := onnxruntime_go.NewCUDAProviderOptions()
	if err != nil {
		return fmt.Errorf("failed to create CUDA provider options (GPU may not be available): %w", err)
	}
	defer func() {
		if err := cudaOpts.Destroy(); err != nil {
			slog.Warn("failed to destroy CUDA provider options", "error", err)
		}
	}()

	if err := cudaOpts.Update(cudaSettings(config)); err != nil {
		return fmt.Errorf("failed to update CUDA provider options: %w", err)
	}
	if err := sessionOptions.AppendExecutionProviderCUDA(cudaOpts); err != nil {
		return fmt.Errorf("failed to append CUDA execution provider: %w", err)
	}
	return nil
}

// libraryCandidates lists where the shared library is looked for, in order.
func libraryCandidates(useGPU bool, projectRoot, libName string) []string {
	var paths []string
	if env := os.Getenv(EnvLibraryPath); env != "" {
		paths = append(paths, env)
	}
	if useGPU {
		paths = append(paths, "/opt/onnxruntime/gpu/lib/"+libName)
	}
	paths = append(paths,
		"/usr/local/lib/"+libName,
		"/usr/lib/"+libName,
		"/opt/onnxruntime/cpu/lib/"+libName,
	)
	if projectRoot != "" {
		if useGPU {
			paths = append(paths, filepath.Join(projectRoot, "onnxruntime", "gpu", "lib", libName))
		}
		paths = append(paths, filepath.Join(projectRoot, "onnxruntime", "lib", libName))
	}
	return paths
}

func libraryName() (string, error) {
	switch runtime.GOOS {
	case "linux":
		return "libonnxruntime.so", nil
	case "darwin":
		return "libonnxruntime.dylib", nil
	case "windows":
		return "onnxruntime.dll", nil
	default:
		return "", fmt.Errorf("unsupported operating system: %s", runtime.GOOS)
	}
}

func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// FindLibrary returns the first onnxruntime shared library that exists.
func FindLibrary(useGPU bool) (string, error) {
	libName, err := libraryName()
	if err != nil {
		return "", err
	}
	for _, p := range libraryCandidates(useGPU, findProjectRoot(), libName) {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", errors.New("ONNX Runtime library not found; set " + EnvLibraryPath)
}

// InitEnvironment points onnxruntime_go at the shared library and
// initializes the runtime once per process.
func InitEnvironment(useGPU bool) error {
	if onnxruntime_go.IsInitialized() {
		return nil
	}
	lib, err := FindLibrary(useGPU)
	if err != nil {
		return err
	}
	onnxruntime_go.SetSharedLibraryPath(lib)
	if err := onnxruntime_go.InitializeEnvironment(); err != nil {
		return fmt.Errorf("failed to initialize ONNX Runtime: %w", err)
	}
	slog.Debug("ONNX Runtime initialized", "library", lib, "gpu", useGPU)
	return nil
}
