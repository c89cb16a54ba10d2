package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// RotationConfig configures log file rotation.
type RotationConfig struct {
	MaxSize    string `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level    string         `mapstructure:"level"`
	Path     string         `mapstructure:"path"`
	Rotation RotationConfig `mapstructure:"rotation"`
}

// HistoryConfig configures the session history store.
type HistoryConfig struct {
	Limit int `mapstructure:"limit"`
}

// Config represents the application configuration.
type Config struct {
	Profile         string        `mapstructure:"profile"`
	Strategies      string        `mapstructure:"strategies"`
	Types           string        `mapstructure:"types"`
	Pattern         string        `mapstructure:"pattern"`
	FilterSystem    bool          `mapstructure:"filter_system"`
	Preview         bool          `mapstructure:"preview"`
	PreviewCap      string        `mapstructure:"preview_cap"`
	OutputDir       string        `mapstructure:"output_dir"`
	Compress        bool          `mapstructure:"compress"`
	MaxReadFailures int           `mapstructure:"max_read_failures"`
	Format          string        `mapstructure:"format"`
	History         HistoryConfig `mapstructure:"history"`
	Logging         LoggingConfig `mapstructure:"logging"`
}

// Load loads configuration from file and environment variables.
// Config file locations (in order of precedence):
//   - $XDG_CONFIG_HOME/salvage/config.yaml
//   - $HOME/.config/salvage/config.yaml
//
// Environment variables are prefixed with SALVAGE_ (e.g., SALVAGE_PROFILE).
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		v.AddConfigPath(filepath.Join(xdgConfigHome, "salvage"))
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}
	v.AddConfigPath(filepath.Join(homeDir, ".config", "salvage"))

	v.SetEnvPrefix("SALVAGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("profile", DefaultProfile)
	v.SetDefault("strategies", DefaultStrategies)
	v.SetDefault("types", "")
	v.SetDefault("pattern", "")
	v.SetDefault("filter_system", true)
	v.SetDefault("preview", false)
	v.SetDefault("preview_cap", DefaultPreviewCap)
	v.SetDefault("output_dir", DefaultOutputDir)
	v.SetDefault("compress", false)
	v.SetDefault("max_read_failures", DefaultMaxReadFailures)
	v.SetDefault("format", DefaultFormat)

	v.SetDefault("history.limit", DefaultHistoryLimit)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.path", "") // Empty means use the default XDG state path
	v.SetDefault("logging.rotation.max_size", "10MB")
	v.SetDefault("logging.rotation.max_backups", 5)

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is acceptable; we use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Expand ~ in the output directory if present
	if strings.HasPrefix(cfg.OutputDir, "~") {
		cfg.OutputDir = filepath.Join(homeDir, cfg.OutputDir[1:])
	}

	return &cfg, nil
}

// ConfigDir returns the configuration directory path, expanding ~ to the user's home directory.
func ConfigDir() (string, error) {
	// Check XDG_CONFIG_HOME first
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, "salvage"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", "salvage"), nil
}

// EnsureConfigDir creates the config directory if it doesn't exist.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return nil
}

// WriteDefault writes a default config file if none exists.
// Returns nil if a config file already exists.
func WriteDefault() error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}

	configDir, err := ConfigDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(configDir, "config.yaml")

	// Check if config file already exists
	if _, err := os.Stat(configPath); err == nil {
		// Config file exists, do nothing
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to check config file: %w", err)
	}

	defaultConfig := fmt.Sprintf(`# Salvage File Recovery Configuration

# Memory profile: low, balanced, or performance
profile: %s

# Scan strategies applied on top of the direct signature pass.
# Comma-separated list of: direct, sliding, fragments, offset, all
strategies: %s

# Restrict recovery to these types or groups (comma-separated; empty means all).
# Groups: image, document, office, spreadsheet, presentation, archive, markup, text
types: ""

# Only keep files whose recovered name matches this glob pattern
pattern: ""

# Drop system and temporary artifacts (caches, thumbnails, lock files)
filter_system: true

# Preview mode: report recoverable files without writing them out
preview: false

# Maximum bytes of content captured per file in preview mode
preview_cap: %s

# Directory where recovered files are written
output_dir: %s

# Compress recovered files with zstd (adds a .zst suffix)
compress: false

# Abort the scan after this many consecutive unreadable regions
max_read_failures: %d

# Report format: pretty, plain, json, jsonl, yaml
format: %s

# Session history retention
history:
  limit: %d

# Logging configuration
logging:
  # Log level: debug, info, warn, error
  level: info
  # Log file path (empty means use default: $XDG_STATE_HOME/salvage/salvage.log)
  path: ""
  # Log rotation settings
  rotation:
    max_size: 10MB
    max_backups: 5
`, DefaultProfile, DefaultStrategies, DefaultPreviewCap, DefaultOutputDir,
		DefaultMaxReadFailures, DefaultFormat, DefaultHistoryLimit)

	if err := os.WriteFile(configPath, []byte(defaultConfig), 0o644); err != nil {
		return fmt.Errorf("failed to write default config: %w", err)
	}

	return nil
}

// ExpandPath expands ~ in a path to the user's home directory.
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, path[1:]), nil
}

// DataDir returns $XDG_DATA_HOME/salvage/ for the session history store.
func DataDir() string {
	return filepath.Join(xdg.DataHome, "salvage")
}

// StateDir returns $XDG_STATE_HOME/salvage/ for log files.
func StateDir() string {
	return filepath.Join(xdg.StateHome, "salvage")
}

// DefaultHistoryDir returns the default session history store path.
func DefaultHistoryDir() string {
	return filepath.Join(DataDir(), "history")
}

// EnsureDataDir creates the data directory if it doesn't exist.
func EnsureDataDir() error {
	if err := os.MkdirAll(DataDir(), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	return nil
}

// EnsureStateDir creates the state directory if it doesn't exist.
func EnsureStateDir() error {
	if err := os.MkdirAll(StateDir(), 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}
	return nil
}
