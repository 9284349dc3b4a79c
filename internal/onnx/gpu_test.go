package onnx

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultGPUConfig(t *testing.T) {
	config := DefaultGPUConfig()
	assert.False(t, config.UseGPU)
	assert.Equal(t, 0, config.DeviceID)
	assert.Equal(t, "kNextPowerOfTwo", config.ArenaExtendStrategy)
	assert.Equal(t, "DEFAULT", config.CUDNNConvAlgoSearch)
	assert.True(t, config.DoCopyInDefaultStream)
}

func TestValidateGPUConfig(t *testing.T) {
	tests := []struct {
		name    string
		config  GPUConfig
		wantErr bool
	}{
		{name: "cpu config", config: DefaultGPUConfig()},
		{name: "cpu ignores bad values", config: GPUConfig{DeviceID: -3, ArenaExtendStrategy: "nope"}},
		{name: "gpu defaults", config: GPUConfig{UseGPU: true, ArenaExtendStrategy: "kSameAsRequested", CUDNNConvAlgoSearch: "HEURISTIC"}},
		{name: "negative device", config: GPUConfig{UseGPU: true, DeviceID: -1}, wantErr: true},
		{name: "bad arena strategy", config: GPUConfig{UseGPU: true, ArenaExtendStrategy: "grow"}, wantErr: true},
		{name: "bad algo search", config: GPUConfig{UseGPU: true, CUDNNConvAlgoSearch: "FAST"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateGPUConfig(tt.config)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCudaSettings(t *testing.T) {
	s := cudaSettings(GPUConfig{UseGPU: true, DeviceID: 2, GPUMemLimit: 1 << 30, CUDNNConvAlgoSearch: "EXHAUSTIVE"})
	assert.Equal(t, "2", s["device_id"])
	assert.Equal(t, "1073741824", s["gpu_mem_limit"])
	assert.Equal(t, "EXHAUSTIVE", s["cudnn_conv_algo_search"])
	assert.Equal(t, "0", s["do_copy_in_default_stream"])
	_, ok := s["arena_extend_strategy"]
	assert.False(t, ok)
}

func TestLibraryCandidates(t *testing.T) {
	t.Setenv(EnvLibraryPath, "/custom/libonnxruntime.so")

	cpu := libraryCandidates(false, "/proj", "libonnxruntime.so")
	require.NotEmpty(t, cpu)
	assert.Equal(t, "/custom/libonnxruntime.so", cpu[0])
	assert.Equal(t, filepath.Join("/proj", "onnxruntime", "lib", "libonnxruntime.so"), cpu[len(cpu)-1])
	assert.NotContains(t, cpu, "/opt/onnxruntime/gpu/lib/libonnxruntime.so")

	gpu := libraryCandidates(true, "", "libonnxruntime.so")
	assert.Equal(t, "/opt/onnxruntime/gpu/lib/libonnxruntime.so", gpu[1])
}

func TestFindLibrary_EnvOverride(t *testing.T) {
	lib := filepath.Join(t.TempDir(), "libonnxruntime.so")
	require.NoError(t, writeEmpty(lib))
	t.Setenv(EnvLibraryPath, lib)

	got, err := FindLibrary(false)
	require.NoError(t, err)
	assert.Equal(t, lib, got)
}
