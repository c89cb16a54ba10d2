package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/salvagekit/salvage/cmd/salvage/tui"
	"github.com/salvagekit/salvage/pkg/salvage/config"
	"github.com/salvagekit/salvage/pkg/salvage/engine"
	"github.com/salvagekit/salvage/pkg/salvage/history"
	"github.com/salvagekit/salvage/pkg/salvage/logging"
	"github.com/salvagekit/salvage/pkg/salvage/output"
	"github.com/salvagekit/salvage/pkg/salvage/types"
	"github.com/salvagekit/salvage/pkg/salvage/writer"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var scanCmd = &cobra.Command{
	Use:   "scan [device]",
	Short: "Scan a drive or image for recoverable files",
	Long: `Scan a drive or disk image for recoverable files.

This is the same as running salvage with a device argument.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

// runScan is the main scan command handler.
func runScan(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}

	// Expand ~ in the device path
	expandedPath, err := config.ExpandPath(args[0])
	if err != nil {
		return fmt.Errorf("failed to expand path: %w", err)
	}

	// Convert to absolute path
	absPath, err := filepath.Abs(expandedPath)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	// Verify the device or image exists and is accessible
	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("device does not exist: %s", absPath)
		}
		return fmt.Errorf("cannot access device: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("expected a drive or image, got a directory: %s", absPath)
	}

	cfg, err := buildEngineConfig(absPath)
	if err != nil {
		return err
	}

	printVerbose("Device: %s", cfg.Device)
	printVerbose("Profile: %s, strategies: %s", cfg.Profile, cfg.Strategies)

	// Determine output mode
	noInteractive := viper.GetBool("no_interactive")
	outFormat := viper.GetString("format")

	// A machine output format forces non-interactive mode
	if outFormat != "" && outFormat != "pretty" {
		noInteractive = true
	}
	if !isTerminal(os.Stdout) {
		noInteractive = true
	}

	if noInteractive {
		return runNonInteractiveScan(cfg)
	}

	return runInteractiveTUI(cfg)
}

// runNonInteractiveScan runs the scan with plain stderr progress and the
// selected formatter on stdout.
func runNonInteractiveScan(cfg engine.Config) error {
	outFormat := viper.GetString("format")
	if outFormat == "" {
		outFormat = "pretty"
	}

	var formatter output.Formatter
	if outFormat == "template" {
		// Handle custom template format
		tmplStr := viper.GetString("template")
		if tmplStr == "" {
			return fmt.Errorf("--template is required when using -o template")
		}
		formatter = output.NewTemplateFormatter(tmplStr)
	} else {
		var err error
		formatter, err = output.Get(outFormat)
		if err != nil {
			return fmt.Errorf("unknown output format %q: available formats are %v", outFormat, output.Available())
		}
	}

	// Progress goes to stderr so machine output on stdout stays clean.
	showProgress := !getQuiet() && isTerminal(os.Stderr)
	if showProgress {
		cfg.OnProgress = printProgress
	}

	session, err := engine.New(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// On interrupt the engine stops at the next buffer boundary and
	// reports partial results.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		<-sigChan
		fmt.Fprintf(os.Stderr, "\nInterrupted, stopping scan...\n")
		session.Cancel()
	}()

	if !getQuiet() {
		fmt.Fprintf(os.Stderr, "Scanning %s...\n", cfg.Device)
	}

	report, err := session.Start(ctx)
	if showProgress {
		fmt.Fprint(os.Stderr, "\n")
	}
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	result := buildResult(report, cfg.OutputDir)

	// Output results
	var buf bytes.Buffer
	if err := formatter.Format(&buf, result); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	fmt.Print(buf.String())

	finishSession(report, cfg)

	if report.Cancelled {
		return errCancelled
	}
	return nil
}

// runInteractiveTUI runs the TUI application.
func runInteractiveTUI(cfg engine.Config) error {
	// Re-initialize logging for TUI mode (disables console output)
	if err := initTUILogging(); err != nil {
		return fmt.Errorf("failed to initialize TUI logging: %w", err)
	}

	report, err := tui.Run(tui.Options{
		Config:  cfg,
		Version: version,
	})
	if err != nil {
		return err
	}
	if report == nil {
		return nil
	}

	finishSession(report, cfg)

	if report.Cancelled {
		return errCancelled
	}
	return nil
}

// printProgress rewrites one stderr status line per engine update.
func printProgress(p types.ScanProgress) {
	fmt.Fprintf(os.Stderr, "\r%s / %s (%3.0f%%)  found %d  recovered %d   ",
		types.FormatSize(p.BytesScanned), types.FormatSize(p.TotalBytes),
		p.Percent(), p.CandidatesFound, p.Recovered)
}

// buildResult converts an engine report into the output package's
// format-neutral result.
func buildResult(report *engine.Report, outputDir string) *output.Result {
	files := make([]output.FileInfo, 0, len(report.Files))
	for i := range report.Files {
		rf := &report.Files[i]
		files = append(files, output.FileInfo{
			Name:       rf.Name,
			Path:       rf.Path,
			Type:       rf.Type.String(),
			Offset:     rf.Offset,
			Size:       rf.ContentLength(),
			SizeHuman:  rf.HumanSize(),
			Confidence: rf.Confidence.String(),
			Fragmented: rf.Fragmented,
			Fragments:  len(rf.Fragments),
		})
	}

	warnings := append([]string(nil), report.Warnings...)
	if n := len(report.Errors); n > 0 {
		var skipped int64
		for _, e := range report.Errors {
			skipped += e.Length
		}
		warnings = append(warnings, fmt.Sprintf("%d unreadable regions skipped (%s)", n, types.FormatSize(skipped)))
	}

	return &output.Result{
		Files: files,
		Stats: output.ScanStats{
			BytesScanned:    report.Stats.BytesScanned,
			Detected:        report.Stats.Detected,
			Found:           report.Stats.Found,
			Recovered:       report.Stats.Recovered,
			Duplicates:      report.Stats.Duplicates,
			RejectedType:    report.Stats.RejectedType,
			RejectedSystem:  report.Stats.RejectedSystem,
			RejectedPattern: report.Stats.RejectedPattern,
			ReadFailures:    report.Stats.ReadFailures,
			Duration:        report.Elapsed,
		},
		Device:     report.Device,
		Profile:    report.Profile.String(),
		Strategies: report.Strategies.String(),
		OutputDir:  outputDir,
		Preview:    report.Preview,
		Cancelled:  report.Cancelled,
		TotalFiles: len(files),
		Warnings:   warnings,
	}
}

// finishSession records the session in history and drops a manifest next
// to the recovered files. Both are best-effort; failures only log.
func finishSession(report *engine.Report, cfg engine.Config) {
	logger := logging.Get("cli")

	store, err := history.Open(config.DefaultHistoryDir())
	if err != nil {
		logger.Warn("failed to open history store", "error", err)
	} else {
		defer store.Close()
		rec := history.Record{
			ID:           report.ID,
			Device:       report.Device,
			Profile:      report.Profile.String(),
			Strategies:   report.Strategies.String(),
			StartedAt:    report.StartedAt,
			Duration:     report.Elapsed,
			BytesScanned: report.Stats.BytesScanned,
			Found:        report.Stats.Found,
			Recovered:    report.Stats.Recovered,
			Skipped:      report.Stats.Duplicates + report.Stats.RejectedType + report.Stats.RejectedSystem + report.Stats.RejectedPattern,
			Errors:       int64(len(report.Errors)),
			OutputDir:    cfg.OutputDir,
			Preview:      report.Preview,
			Cancelled:    report.Cancelled,
		}
		if err := store.Append(rec); err != nil {
			logger.Warn("failed to record session history", "error", err)
		} else if limit := viper.GetInt("history.limit"); limit > 0 {
			if err := store.Prune(limit); err != nil {
				logger.Warn("failed to prune session history", "error", err)
			}
		}
	}

	if !report.Preview && len(report.Files) > 0 {
		m := writer.NewManifest(report.ID, report.Device, report.Files)
		if err := writer.WriteManifest(cfg.OutputDir, m); err != nil {
			logger.Warn("failed to write recovery manifest", "error", err)
		}
	}
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
