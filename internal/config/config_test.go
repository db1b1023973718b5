package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, 48000, cfg.SampleRate)
	require.Equal(t, 512, cfg.BlockSize)
	require.Equal(t, 2, cfg.Channels)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, 1024, cfg.CommandQueue)
	require.Equal(t, 1024, cfg.EventQueue)
	require.Equal(t, "./recordings", cfg.RecordingDir)
}

func TestLoadConfigFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	contents := "sample_rate: 44100\nblock_size: 256\nlog_level: debug\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 44100, cfg.SampleRate)
	require.Equal(t, 256, cfg.BlockSize)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, 2, cfg.Channels, "unset fields keep their default")
}

func TestLoadMissingConfigFileReturnsError(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	require.Error(t, err)
}
