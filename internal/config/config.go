// Package config loads engine and device settings via viper, with
// sensible defaults so the engine runs unconfigured.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config is the engine's resolved runtime configuration.
type Config struct {
	SampleRate    int    `mapstructure:"sample_rate"`
	BlockSize     int    `mapstructure:"block_size"`
	Channels      int    `mapstructure:"channels"`
	DeviceName    string `mapstructure:"device_name"`
	LogLevel      string `mapstructure:"log_level"`
	CommandQueue  int    `mapstructure:"command_queue_capacity"`
	EventQueue    int    `mapstructure:"event_queue_capacity"`
	RecordingDir  string `mapstructure:"recording_dir"`
}

func defaults() Config {
	return Config{
		SampleRate:   48000,
		BlockSize:    512,
		Channels:     2,
		LogLevel:     "info",
		CommandQueue: 1024,
		EventQueue:   1024,
		RecordingDir: "./recordings",
	}
}

// Load reads configuration from configPath (if non-empty) and the
// LIGHTNINGBEAM_ environment prefix, falling back to the values from
// defaults for anything unset.
func Load(configPath string) (Config, error) {
	v := viper.New()
	d := defaults()
	v.SetDefault("sample_rate", d.SampleRate)
	v.SetDefault("block_size", d.BlockSize)
	v.SetDefault("channels", d.Channels)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("command_queue_capacity", d.CommandQueue)
	v.SetDefault("event_queue_capacity", d.EventQueue)
	v.SetDefault("recording_dir", d.RecordingDir)

	v.SetEnvPrefix("LIGHTNINGBEAM")
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	return cfg, nil
}
