// Package config provides configuration management for mediapress using Viper.
// It supports configuration from files, environment variables, and defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Default configuration values.
const (
	defaultOutputSuffix       = "_prores.mov"
	defaultMinimumItems       = 2
	defaultContiguousOnly     = true
	defaultEnginePollInterval = 200 * time.Millisecond
	defaultDetailsStyle       = "long"
	defaultScanUpdateInterval = 300 * time.Millisecond
	defaultThumbnailHeight    = 256
)

// Config holds all configuration for the application.
type Config struct {
	Engine  EngineConfig  `mapstructure:"engine"`
	Clique  CliqueConfig  `mapstructure:"clique"`
	UI      UIConfig      `mapstructure:"ui"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// EngineConfig holds worker engine configuration.
type EngineConfig struct {
	// OutputSuffix marks engine-produced outputs; the scanner refuses to
	// re-ingest files that carry it.
	OutputSuffix string `mapstructure:"output_suffix"`
	// FFmpegPath is a directory holding the ffmpeg/ffprobe/ffplay binaries
	// (empty = auto-detect).
	FFmpegPath string `mapstructure:"ffmpeg_path"`
	// ScanUpdateInterval throttles scan_update events.
	ScanUpdateInterval time.Duration `mapstructure:"scan_update_interval"`
	// ThumbnailHeight is the pixel height of extracted thumbnails.
	ThumbnailHeight int `mapstructure:"thumbnail_height"`
}

// CliqueConfig holds image-sequence assembly configuration.
type CliqueConfig struct {
	// MinimumItems is the smallest member count accepted as a sequence.
	MinimumItems int `mapstructure:"minimum_items"`
	// ContiguousOnly discards sequences with gaps in their frame numbering.
	ContiguousOnly bool `mapstructure:"contiguous_only"`
}

// UIConfig holds viewer-side configuration.
type UIConfig struct {
	// EnginePollInterval is how often the viewer drains worker events.
	EnginePollInterval time.Duration `mapstructure:"engine_poll_interval"`
	// DetailsStyle selects the item details rendering ("long" or "short").
	DetailsStyle string `mapstructure:"details_style"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`  // debug, info, warn, error
	Format     string `mapstructure:"format"` // json, text
	AddSource  bool   `mapstructure:"add_source"`
	TimeFormat string `mapstructure:"time_format"`
}

// Load reads configuration from file and environment variables.
// Environment variables take precedence over file configuration.
// Environment variables are prefixed with MEDIAPRESS_ and use underscores
// for nesting. Example: MEDIAPRESS_ENGINE_OUTPUT_SUFFIX=_prores.mov.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	SetDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.mediapress")
	}

	v.SetEnvPrefix("MEDIAPRESS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Config file not found is OK - we'll use defaults and env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// SetDefaults configures default values for all configuration options.
// This should be called before reading the config file to ensure defaults
// are in place.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("engine.output_suffix", defaultOutputSuffix)
	v.SetDefault("engine.ffmpeg_path", "")
	v.SetDefault("engine.scan_update_interval", defaultScanUpdateInterval)
	v.SetDefault("engine.thumbnail_height", defaultThumbnailHeight)

	v.SetDefault("clique.minimum_items", defaultMinimumItems)
	v.SetDefault("clique.contiguous_only", defaultContiguousOnly)

	v.SetDefault("ui.engine_poll_interval", defaultEnginePollInterval)
	v.SetDefault("ui.details_style", defaultDetailsStyle)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.add_source", false)
	v.SetDefault("logging.time_format", time.RFC3339)
}

// Default returns the built-in configuration without consulting files or
// the environment.
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Engine.OutputSuffix == "" {
		return fmt.Errorf("engine.output_suffix is required")
	}
	if c.Engine.ThumbnailHeight < 1 {
		return fmt.Errorf("engine.thumbnail_height must be at least 1")
	}
	if c.Clique.MinimumItems < 2 {
		return fmt.Errorf("clique.minimum_items must be at least 2")
	}
	if c.UI.EnginePollInterval <= 0 {
		return fmt.Errorf("ui.engine_poll_interval must be positive")
	}

	validStyles := map[string]bool{"long": true, "short": true}
	if !validStyles[c.UI.DetailsStyle] {
		return fmt.Errorf("ui.details_style must be one of: long, short")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	return nil
}
