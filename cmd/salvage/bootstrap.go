package main

import (
	"fmt"

	"github.com/salvagekit/salvage/pkg/salvage/config"
	"github.com/salvagekit/salvage/pkg/salvage/logging"
	"github.com/salvagekit/salvage/pkg/salvage/types"
	"github.com/spf13/cobra"
)

// initializeLogging is the PersistentPreRunE hook for all commands. It
// creates the XDG directories and points the logging system at the
// configured log file before any command logic runs.
func initializeLogging(_ *cobra.Command, _ []string) error {
	if err := config.EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := config.EnsureDataDir(); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := config.EnsureStateDir(); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	return logging.Init(buildLoggingConfig(cfg, false))
}

// initTUILogging re-initializes logging for TUI mode, which disables
// console output so the TUI owns the terminal.
func initTUILogging() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	return logging.Init(buildLoggingConfig(cfg, true))
}

// buildLoggingConfig maps the file config onto the logging package config.
// Console verbosity follows the --verbose and --quiet flags.
func buildLoggingConfig(cfg *config.Config, tuiMode bool) logging.Config {
	var consoleLevel string
	switch {
	case tuiMode || getQuiet():
		consoleLevel = ""
	case getVerbose():
		consoleLevel = "debug"
	default:
		consoleLevel = "warn"
	}

	return logging.Config{
		Level:        cfg.Logging.Level,
		Path:         cfg.Logging.Path,
		Rotation:     parseRotationConfig(cfg.Logging.Rotation),
		ConsoleLevel: consoleLevel,
		TUIMode:      tuiMode,
	}
}

// parseRotationConfig converts the string-based file config into the
// logging package's byte-count form. Unparseable sizes fall back to the
// default.
func parseRotationConfig(rc config.RotationConfig) logging.RotationConfig {
	out := logging.DefaultRotationConfig()
	if rc.MaxSize != "" {
		if size, err := types.ParseSize(rc.MaxSize); err == nil && size > 0 {
			out.MaxSize = size
		}
	}
	if rc.MaxBackups > 0 {
		out.MaxBackups = rc.MaxBackups
	}
	return out
}
