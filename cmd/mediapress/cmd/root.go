// Package cmd implements the CLI commands for mediapress.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jmylchreest/mediapress/internal/config"
	"github.com/jmylchreest/mediapress/internal/observability"
	"github.com/jmylchreest/mediapress/internal/version"
)

// cfgFile holds the config file path from CLI flag.
var cfgFile string

// appCfg is the loaded configuration, available to all commands after
// PersistentPreRunE has run.
var appCfg *config.Config

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:     "mediapress",
	Short:   "Batch ProRes transcoder for videos and image sequences",
	Version: version.Short(),
	Long: `mediapress scans directories for video files and numbered image
sequences, probes them with ffprobe, and batch-transcodes them to Apple
ProRes with ffmpeg.

The heavy lifting runs in a separate worker process driven over a pipe,
so scans and encodes never block the caller and can be cancelled at any
point.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		return fmt.Errorf("executing root command: %w", err)
	}
	return nil
}

func init() {
	// Set PersistentPreRunE here to avoid an initialization cycle
	// (initApp references rootCmd.PersistentFlags).
	rootCmd.PersistentPreRunE = func(_ *cobra.Command, _ []string) error {
		return initApp()
	}

	// Global flags. These are NOT bound to viper: we check Changed() and
	// only then override config/env values, preserving the priority
	// CLI flag > env var > config > default.
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.mediapress/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")
}

// initApp loads configuration and wires the default logger. The logger
// always writes to stderr: in worker mode stdout carries the event
// stream and must stay clean.
func initApp() error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if v, ok := changedString(rootCmd.PersistentFlags(), "log-level"); ok {
		cfg.Logging.Level = v
	}
	if v, ok := changedString(rootCmd.PersistentFlags(), "log-format"); ok {
		cfg.Logging.Format = v
	}

	cfg.Logging.Level = strings.ToLower(cfg.Logging.Level)
	if cfg.Logging.Level == "warning" {
		cfg.Logging.Level = "warn"
	}

	logger := observability.NewLoggerWithWriter(cfg.Logging, os.Stderr)
	logger = observability.WithApp(logger, "mediapress")
	observability.SetDefault(logger)

	appCfg = cfg
	return nil
}

// changedString returns a flag's value only when the user set it, so flag
// defaults never shadow env or config values.
func changedString(fs *pflag.FlagSet, name string) (string, bool) {
	if !fs.Changed(name) {
		return "", false
	}
	v, _ := fs.GetString(name)
	return v, true
}
