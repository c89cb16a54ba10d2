package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/salvagekit/salvage/pkg/salvage/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Manage salvage configuration settings.

Configuration is loaded from:
  1. $XDG_CONFIG_HOME/salvage/config.yaml (if set)
  2. ~/.config/salvage/config.yaml

Environment variables can override config file settings using the SALVAGE_ prefix:
  SALVAGE_PROFILE=performance
  SALVAGE_OUTPUT_DIR=/mnt/rescue
  SALVAGE_TYPES=image,document`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the current configuration settings from all sources.`,
	RunE:  runConfigShow,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit configuration file",
	Long: `Open the configuration file in your default editor.

The editor is determined by:
  1. $VISUAL environment variable
  2. $EDITOR environment variable
  3. Falls back to 'vi'

If the config file doesn't exist, a default one will be created first.`,
	RunE: runConfigEdit,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default configuration file",
	Long:  `Create a default configuration file if one doesn't exist.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	Long:  `Display the path to the configuration file.`,
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

// runConfigShow displays the current configuration.
func runConfigShow(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		printError("Failed to load configuration: %v", err)
		// Show defaults anyway
		cfg = &config.Config{
			Profile:         config.DefaultProfile,
			Strategies:      config.DefaultStrategies,
			FilterSystem:    true,
			PreviewCap:      config.DefaultPreviewCap,
			OutputDir:       config.DefaultOutputDir,
			MaxReadFailures: config.DefaultMaxReadFailures,
			Format:          config.DefaultFormat,
		}
		cfg.History.Limit = config.DefaultHistoryLimit
	}

	// Show config file being used
	if configFile := viper.ConfigFileUsed(); configFile != "" {
		fmt.Printf("Config file: %s\n\n", configFile)
	} else {
		fmt.Println("Config file: (using defaults, no file found)")
		fmt.Println()
	}

	// Display configuration
	fmt.Println("Current Configuration:")
	fmt.Println("----------------------")
	fmt.Printf("profile:              %s\n", cfg.Profile)
	fmt.Printf("strategies:           %s\n", cfg.Strategies)
	fmt.Printf("types:                %s\n", orNone(cfg.Types))
	fmt.Printf("pattern:              %s\n", orNone(cfg.Pattern))
	fmt.Printf("filter_system:        %t\n", cfg.FilterSystem)
	fmt.Printf("preview:              %t\n", cfg.Preview)
	fmt.Printf("preview_cap:          %s\n", cfg.PreviewCap)
	fmt.Printf("output_dir:           %s\n", cfg.OutputDir)
	fmt.Printf("compress:             %t\n", cfg.Compress)
	fmt.Printf("max_read_failures:    %d\n", cfg.MaxReadFailures)
	fmt.Printf("format:               %s\n", cfg.Format)
	fmt.Printf("history.limit:        %d\n", cfg.History.Limit)
	fmt.Printf("logging.level:        %s\n", cfg.Logging.Level)
	fmt.Printf("logging.path:         %s\n", orNone(cfg.Logging.Path))

	// Show any environment overrides
	fmt.Println("\nEnvironment Overrides:")
	fmt.Println("----------------------")
	envVars := []string{
		"SALVAGE_PROFILE",
		"SALVAGE_STRATEGIES",
		"SALVAGE_TYPES",
		"SALVAGE_PATTERN",
		"SALVAGE_FILTER_SYSTEM",
		"SALVAGE_PREVIEW",
		"SALVAGE_PREVIEW_CAP",
		"SALVAGE_OUTPUT_DIR",
		"SALVAGE_COMPRESS",
		"SALVAGE_MAX_READ_FAILURES",
		"SALVAGE_FORMAT",
		"SALVAGE_HISTORY_LIMIT",
		"SALVAGE_LOGGING_LEVEL",
	}

	anyOverrides := false
	for _, name := range envVars {
		if val := os.Getenv(name); val != "" {
			fmt.Printf("%s=%s\n", name, val)
			anyOverrides = true
		}
	}
	if !anyOverrides {
		fmt.Println("(none)")
	}

	return nil
}

// runConfigEdit opens the config file in an editor.
func runConfigEdit(cmd *cobra.Command, args []string) error {
	// Ensure config file exists
	if err := config.WriteDefault(); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	configPath, err := configFilePath()
	if err != nil {
		return err
	}

	// Determine editor
	editor := os.Getenv("VISUAL")
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}
	if editor == "" {
		editor = "vi"
	}

	printVerbose("Opening %s with %s", configPath, editor)

	editorCmd := exec.Command(editor, configPath)
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr

	if err := editorCmd.Run(); err != nil {
		return fmt.Errorf("editor command failed: %w", err)
	}

	return nil
}

// runConfigInit creates a default config file.
func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath, err := configFilePath()
	if err != nil {
		return err
	}

	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil {
		printInfo("Config file already exists: %s", configPath)
		printInfo("Use 'salvage config edit' to modify it.")
		return nil
	}

	// Create default config
	if err := config.WriteDefault(); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	printInfo("Created default config file: %s", configPath)
	return nil
}

// runConfigPath shows the config file path.
func runConfigPath(cmd *cobra.Command, args []string) error {
	configPath, err := configFilePath()
	if err != nil {
		return err
	}

	fmt.Println(configPath)

	// Show if file exists
	if _, err := os.Stat(configPath); err == nil {
		printVerbose("File exists")
	} else if os.IsNotExist(err) {
		printVerbose("File does not exist (will use defaults)")
	}

	return nil
}

// configFilePath returns the path of the YAML config file.
func configFilePath() (string, error) {
	configDir, err := config.ConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config directory: %w", err)
	}
	return filepath.Join(configDir, "config.yaml"), nil
}

// orNone substitutes "(none)" for empty settings in the show listing.
func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
