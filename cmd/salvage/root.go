package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/salvagekit/salvage/pkg/salvage/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// errCancelled marks a scan stopped by the user. main translates it into
// exit code 130 without printing anything; partial results have already
// been shown.
var errCancelled = errors.New("scan cancelled")

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "salvage [device]",
		Short: "Recover deleted files from drives and disk images",
		Long: `Salvage scans raw drives and disk images for deleted files and carves
them out by content signature. It reads the device directly, so files
can be recovered even after the filesystem that held them is gone.

By default, salvage launches an interactive TUI showing scan progress.
Use --no-interactive or a machine output format for scripted use.

Examples:
  salvage /dev/sdb1                 # Scan a partition with the TUI
  salvage backup.img -t image       # Carve only images from a disk image
  salvage /dev/sdc1 --preview       # List recoverable files, write nothing
  salvage /dev/sdb1 -d ~/rescued    # Recover into a specific directory
  salvage drives                    # List attached drives
  salvage history                   # View past recovery sessions`,
		Args:              cobra.MaximumNArgs(1),
		RunE:              runScan,
		PersistentPreRunE: initializeLogging,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/salvage/config.yaml)")
	rootCmd.PersistentFlags().StringP("profile", "p", "", "memory profile: low, balanced, performance")
	rootCmd.PersistentFlags().StringP("strategies", "s", "", "scan strategies (e.g., sliding,fragments,offset)")
	rootCmd.PersistentFlags().StringP("types", "t", "", "file types or groups to recover (e.g., image,pdf)")
	rootCmd.PersistentFlags().String("pattern", "", "only keep names matching pattern (* and % wildcards)")
	rootCmd.PersistentFlags().StringP("output-dir", "d", "", "directory for recovered files")
	rootCmd.PersistentFlags().StringP("output", "o", "", "output format (pretty, plain, json, jsonl, yaml, paths, null, tsv, csv, markdown, template)")
	rootCmd.PersistentFlags().String("template", "", "Go template for -o template")
	rootCmd.PersistentFlags().Bool("preview", false, "list recoverable files without writing them")
	rootCmd.PersistentFlags().String("preview-cap", "", "max preview bytes per file (e.g., 1MiB)")
	rootCmd.PersistentFlags().BoolP("compress", "z", false, "zstd-compress recovered files")
	rootCmd.PersistentFlags().Int("max-read-failures", 0, "abort after this many consecutive unreadable buffers (0=default)")
	rootCmd.PersistentFlags().Bool("filter-system", true, "drop well-known operating system files")
	rootCmd.PersistentFlags().BoolP("no-interactive", "n", false, "disable TUI, use text output")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "minimal output")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug output")

	// Bind flags to viper
	_ = viper.BindPFlag("profile", rootCmd.PersistentFlags().Lookup("profile"))
	_ = viper.BindPFlag("strategies", rootCmd.PersistentFlags().Lookup("strategies"))
	_ = viper.BindPFlag("types", rootCmd.PersistentFlags().Lookup("types"))
	_ = viper.BindPFlag("pattern", rootCmd.PersistentFlags().Lookup("pattern"))
	_ = viper.BindPFlag("output_dir", rootCmd.PersistentFlags().Lookup("output-dir"))
	_ = viper.BindPFlag("format", rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("template", rootCmd.PersistentFlags().Lookup("template"))
	_ = viper.BindPFlag("preview", rootCmd.PersistentFlags().Lookup("preview"))
	_ = viper.BindPFlag("preview_cap", rootCmd.PersistentFlags().Lookup("preview-cap"))
	_ = viper.BindPFlag("compress", rootCmd.PersistentFlags().Lookup("compress"))
	_ = viper.BindPFlag("max_read_failures", rootCmd.PersistentFlags().Lookup("max-read-failures"))
	_ = viper.BindPFlag("filter_system", rootCmd.PersistentFlags().Lookup("filter-system"))
	_ = viper.BindPFlag("no_interactive", rootCmd.PersistentFlags().Lookup("no-interactive"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig reads in config file and environment variables.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Set config name and type
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")

		// Add config paths in order of precedence
		if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
			viper.AddConfigPath(filepath.Join(xdgConfigHome, "salvage"))
		}

		homeDir, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(homeDir, ".config", "salvage"))
		}
	}

	// Set environment variable prefix and enable auto env binding
	viper.SetEnvPrefix("SALVAGE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	// Set defaults from config package
	viper.SetDefault("profile", config.DefaultProfile)
	viper.SetDefault("strategies", config.DefaultStrategies)
	viper.SetDefault("preview_cap", config.DefaultPreviewCap)
	viper.SetDefault("output_dir", config.DefaultOutputDir)
	viper.SetDefault("filter_system", true)
	viper.SetDefault("max_read_failures", config.DefaultMaxReadFailures)
	viper.SetDefault("format", config.DefaultFormat)
	viper.SetDefault("history.limit", config.DefaultHistoryLimit)

	// Read config file (ignore if not found)
	_ = viper.ReadInConfig()
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, errCancelled) {
		printError("%v", err)
	}
	return err
}

// getVerbose returns true if verbose mode is enabled.
func getVerbose() bool {
	return viper.GetBool("verbose")
}

// getQuiet returns true if quiet mode is enabled.
func getQuiet() bool {
	return viper.GetBool("quiet")
}

// printVerbose prints a message if verbose mode is enabled.
func printVerbose(format string, args ...interface{}) {
	if getVerbose() && !getQuiet() {
		fmt.Fprintf(os.Stderr, "[DEBUG] "+format+"\n", args...)
	}
}

// printInfo prints a message if quiet mode is not enabled.
func printInfo(format string, args ...interface{}) {
	if !getQuiet() {
		fmt.Printf(format+"\n", args...)
	}
}

// printError prints an error message to stderr.
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
