package output

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// PrettyFormatter formats output with colors and styling using lipgloss.
// It produces a visually appealing output suitable for terminal display.
type PrettyFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PrettyFormatter) Format(w *bytes.Buffer, r *Result) error {
	header := f.formatHeader(r)
	w.WriteString(header)
	w.WriteString("\n")

	table := f.formatTable(r)
	w.WriteString(table)

	footer := f.formatFooter(r)
	w.WriteString(footer)

	if len(r.Warnings) > 0 {
		warnings := f.formatWarnings(r.Warnings)
		w.WriteString("\n")
		w.WriteString(warnings)
	}

	return nil
}

// formatHeader builds the header box with session metadata.
func (f *PrettyFormatter) formatHeader(r *Result) string {
	var lines []string

	deviceLabel := LabelStyle.Render("Device:")
	deviceValue := ValueStyle.Render(r.Device)
	lines = append(lines, fmt.Sprintf("%s %s", deviceLabel, deviceValue))

	var infoParts []string

	scannedLabel := LabelStyle.Render("Scanned:")
	scannedValue := ValueStyle.Render(fmt.Sprintf("%s in %s",
		humanize.IBytes(uint64(r.Stats.BytesScanned)), formatDuration(r.Stats.Duration)))
	infoParts = append(infoParts, fmt.Sprintf("%s %s", scannedLabel, scannedValue))

	if r.Strategies != "" {
		strategiesLabel := LabelStyle.Render("Strategies:")
		strategiesValue := MutedStyle.Render(r.Strategies)
		infoParts = append(infoParts, fmt.Sprintf("%s %s", strategiesLabel, strategiesValue))
	}

	infoParts = append(infoParts, f.formatMode(r))

	lines = append(lines, strings.Join(infoParts, "  "))

	if r.Cancelled {
		cancelledStyle := WarningStyle.Bold(true)
		lines = append(lines, cancelledStyle.Render("Scan cancelled, partial results below"))
	}

	content := strings.Join(lines, "\n")
	return HeaderBox.Render(content)
}

// formatMode returns a styled string describing where recovered
// content went.
func (f *PrettyFormatter) formatMode(r *Result) string {
	if r.Preview {
		return WarningStyle.Render("preview (nothing written)")
	}
	return LabelStyle.Render("Output: ") + ValueStyle.Render(r.OutputDir)
}

// formatTable builds the recovered file table.
func (f *PrettyFormatter) formatTable(r *Result) string {
	if len(r.Files) == 0 {
		return MutedStyle.Render("  No recoverable files found\n")
	}

	var sb strings.Builder

	typeHeader := TableHeaderStyle.Render("TYPE")
	sizeHeader := TableHeaderStyle.Render("SIZE")
	confHeader := TableHeaderStyle.Render("CONF")
	nameHeader := TableHeaderStyle.Render("NAME")
	sb.WriteString(fmt.Sprintf("  %s  %s  %s  %s\n", typeHeader, sizeHeader, confHeader, nameHeader))

	// Calculate column widths for alignment
	typeWidth, sizeWidth := 4, 8
	for _, file := range r.Files {
		if len(file.Type) > typeWidth {
			typeWidth = len(file.Type)
		}
		if len(file.SizeHuman) > sizeWidth {
			sizeWidth = len(file.SizeHuman)
		}
	}

	for _, file := range r.Files {
		typeStr := MutedStyle.Render(padRight(file.Type, typeWidth))
		sizeStr := SizeStyle.Render(padLeft(file.SizeHuman, sizeWidth))
		confStr := confidenceStyle(file.Confidence).Render(padRight(file.Confidence, 6))
		nameStr := NameStyle.Render(file.Display())
		if file.Fragmented {
			nameStr += " " + WarningStyle.Render(fmt.Sprintf("(%d fragments)", file.Fragments))
		}
		sb.WriteString(fmt.Sprintf("  %s  %s  %s  %s\n", typeStr, sizeStr, confStr, nameStr))
	}

	return sb.String()
}

// formatFooter builds the footer box with summary information.
func (f *PrettyFormatter) formatFooter(r *Result) string {
	var parts []string

	fileCountLabel := LabelStyle.Render("Files:")
	fileCountValue := ValueStyle.Render(fmt.Sprintf("%d", r.TotalFiles))
	parts = append(parts, fmt.Sprintf("%s %s", fileCountLabel, fileCountValue))

	totalSizeLabel := LabelStyle.Render("Total:")
	totalSizeValue := SizeStyle.Render(humanize.IBytes(uint64(r.TotalSize())))
	parts = append(parts, fmt.Sprintf("%s %s", totalSizeLabel, totalSizeValue))

	if skipped := r.Stats.Skipped(); skipped > 0 {
		skippedLabel := LabelStyle.Render("Skipped:")
		skippedValue := MutedStyle.Render(fmt.Sprintf("%d", skipped))
		parts = append(parts, fmt.Sprintf("%s %s", skippedLabel, skippedValue))
	}

	hint := MutedStyle.Render("Use -o plain for unformatted output")
	parts = append(parts, hint)

	content := strings.Join(parts, "  ")
	return FooterBox.Render(content)
}

// formatWarnings builds a warning block.
func (f *PrettyFormatter) formatWarnings(warnings []string) string {
	var sb strings.Builder

	titleStyle := WarningStyle.Bold(true)
	sb.WriteString(titleStyle.Render("Warnings:"))
	sb.WriteString("\n")

	for _, warning := range warnings {
		sb.WriteString(WarningStyle.Render("  " + warning))
		sb.WriteString("\n")
	}

	return sb.String()
}

// padLeft pads a string with spaces on the left to achieve the desired width.
func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}

// padRight pads a string with spaces on the right to achieve the desired width.
func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// formatDuration formats a duration in a human-friendly way.
func formatDuration(d time.Duration) string {
	sec := d.Seconds()
	if sec < 1 {
		return fmt.Sprintf("%.0fms", sec*1000)
	}
	if sec < 60 {
		return fmt.Sprintf("%.1fs", sec)
	}
	minutes := int(sec) / 60
	seconds := int(sec) % 60
	if minutes < 60 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	hours := minutes / 60
	minutes = minutes % 60
	return fmt.Sprintf("%dh %dm", hours, minutes)
}

func init() {
	Register("pretty", func() Formatter {
		return &PrettyFormatter{}
	})
}

// Ensure PrettyFormatter implements Formatter.
var _ Formatter = (*PrettyFormatter)(nil)
