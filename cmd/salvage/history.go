package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/salvagekit/salvage/pkg/salvage/config"
	"github.com/salvagekit/salvage/pkg/salvage/history"
	"github.com/salvagekit/salvage/pkg/salvage/types"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View past recovery sessions",
	Long: `View the history of recovery sessions, newest first.

Each scan records what was scanned, how many files were recovered and
where they were written.`,
	RunE: runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show details of a recovery session",
	Long:  `Display detailed information about a recovery session by its ID. A unique ID prefix is enough.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all recorded sessions",
	Long:  `Remove every recorded recovery session. Recovered files are not touched.`,
	RunE:  runHistoryClear,
}

var (
	historyLimit int
)

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 20, "maximum number of sessions to show")

	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}

// openHistory opens the session store in the data directory.
func openHistory() (*history.Store, error) {
	store, err := history.Open(config.DefaultHistoryDir())
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	return store, nil
}

// runHistory lists recent recovery sessions.
func runHistory(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.List(historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}

	if len(records) == 0 {
		printInfo("No recovery sessions recorded.")
		printInfo("Run 'salvage [device]' to scan a drive or image.")
		return nil
	}

	// Print header
	fmt.Printf("\n%-10s  %-16s  %-20s  %9s  %10s  %8s  %s\n",
		"ID", "STARTED", "DEVICE", "RECOVERED", "SCANNED", "TIME", "NOTES")
	fmt.Println(strings.Repeat("-", 92))

	for _, r := range records {
		fmt.Printf("%-10s  %-16s  %-20s  %9d  %10s  %8s  %s\n",
			shortID(r.ID),
			r.StartedAt.Format("2006-01-02 15:04"),
			truncateString(r.Device, 20),
			r.Recovered,
			types.FormatSize(r.BytesScanned),
			r.Duration.Round(time.Second),
			recordNotes(r),
		)
	}

	fmt.Println(strings.Repeat("-", 92))
	fmt.Printf("\nShowing %d sessions. Use --limit to see more.\n", len(records))
	fmt.Println("Use 'salvage history show <id>' for details on a specific session.")

	return nil
}

// runHistoryShow displays details of a specific session.
func runHistoryShow(cmd *cobra.Command, args []string) error {
	id := args[0]

	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.List(0)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}

	var found *history.Record
	for i := range records {
		if strings.HasPrefix(records[i].ID, id) {
			if found != nil {
				return fmt.Errorf("ambiguous session ID %q, give more characters", id)
			}
			found = &records[i]
		}
	}
	if found == nil {
		return fmt.Errorf("no session with ID %q", id)
	}

	fmt.Println("\nSession Details")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("ID:          %s\n", found.ID)
	fmt.Printf("Started:     %s\n", found.StartedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Printf("Device:      %s\n", found.Device)
	fmt.Printf("Profile:     %s\n", found.Profile)
	fmt.Printf("Strategies:  %s\n", found.Strategies)
	fmt.Printf("Duration:    %s\n", found.Duration.Round(time.Millisecond))
	fmt.Printf("Scanned:     %s\n", types.FormatSize(found.BytesScanned))
	fmt.Printf("Found:       %d\n", found.Found)
	fmt.Printf("Recovered:   %d\n", found.Recovered)
	fmt.Printf("Skipped:     %d\n", found.Skipped)
	fmt.Printf("Errors:      %d\n", found.Errors)
	if found.OutputDir != "" {
		fmt.Printf("Output:      %s\n", found.OutputDir)
	}
	if found.Preview {
		fmt.Println("Mode:        preview (nothing written)")
	}
	if found.Cancelled {
		fmt.Println("Note:        cancelled before completion")
	}

	return nil
}

// runHistoryClear removes every recorded session.
func runHistoryClear(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Clear(); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}

	printInfo("Recovery history cleared.")
	return nil
}

// recordNotes summarizes the session flags for the listing.
func recordNotes(r history.Record) string {
	var notes []string
	if r.Preview {
		notes = append(notes, "preview")
	}
	if r.Cancelled {
		notes = append(notes, "cancelled")
	}
	if r.Errors > 0 {
		notes = append(notes, fmt.Sprintf("%d errors", r.Errors))
	}
	return strings.Join(notes, ", ")
}

// shortID returns the leading segment of a session UUID.
func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return truncateString(id, 10)
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
