package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/salvagekit/salvage/pkg/salvage/engine"
	"github.com/salvagekit/salvage/pkg/salvage/types"
)

// SummaryModel renders the post-scan summary view.
type SummaryModel struct {
	report    *engine.Report
	outputDir string
	version   string
	width     int
	height    int
}

// NewSummaryModel creates a summary model for a completed scan.
func NewSummaryModel(report *engine.Report, outputDir, version string) SummaryModel {
	return SummaryModel{
		report:    report,
		outputDir: outputDir,
		version:   version,
		width:     80,
		height:    24,
	}
}

// SetDimensions updates the window dimensions.
func (m *SummaryModel) SetDimensions(width, height int) {
	m.width = width
	m.height = height
}

// View renders the summary.
func (m SummaryModel) View() string {
	var b strings.Builder

	contentWidth := m.width - 4
	if contentWidth < 40 {
		contentWidth = 40
	}

	b.WriteString("\n")
	b.WriteString(m.renderHeader(contentWidth))
	b.WriteString("\n")
	b.WriteString(renderDivider(contentWidth))
	b.WriteString("\n\n")

	r := m.report

	// Scan facts
	b.WriteString(fmt.Sprintf("  Device: %s\n", truncatePath(r.Device, contentWidth-12)))
	b.WriteString(mutedTextStyle.Render(fmt.Sprintf("  Scanned %s in %s",
		types.FormatSize(r.Stats.BytesScanned),
		formatDuration(r.Elapsed))))
	b.WriteString("\n\n")

	// File table
	b.WriteString(m.renderFiles(contentWidth))
	b.WriteString("\n")

	// Totals
	b.WriteString(m.renderTotals(contentWidth))

	// Warnings
	if len(r.Warnings) > 0 {
		b.WriteString("\n")
		maxWarnings := 3
		for i, w := range r.Warnings {
			if i >= maxWarnings {
				b.WriteString(warningTextStyle.Render(
					fmt.Sprintf("  ... and %d more warnings", len(r.Warnings)-maxWarnings)))
				b.WriteString("\n")
				break
			}
			b.WriteString(warningTextStyle.Render("  ⚠ " + truncatePath(w, contentWidth-6)))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(center(keyStyle.Render("[q]")+" "+keyDescStyle.Render("Quit"), contentWidth))
	b.WriteString("\n")

	// Pad to full height
	content := b.String()
	contentLines := strings.Count(content, "\n") + 1
	availableLines := m.height - 2
	if availableLines > contentLines {
		content += strings.Repeat("\n", availableLines-contentLines)
	}

	return outerBoxStyle.Width(m.width - 2).Height(m.height - 2).Render(content)
}

// renderHeader renders the title line with the completion status.
func (m SummaryModel) renderHeader(width int) string {
	title := titleStyle.Render("  salvage " + m.version)

	var status string
	if m.report.Cancelled {
		status = warningTextStyle.Render("Partial results (cancelled)")
	} else {
		status = successTextStyle.Render("Scan complete")
	}

	spacing := width - lipgloss.Width(title) - lipgloss.Width(status)
	if spacing < 1 {
		spacing = 1
	}

	return title + strings.Repeat(" ", spacing) + status
}

// renderFiles renders the recovered file table, capped to the window.
func (m SummaryModel) renderFiles(width int) string {
	files := m.report.Files
	if len(files) == 0 {
		return mutedTextStyle.Render("  No recoverable files found") + "\n"
	}

	var b strings.Builder
	b.WriteString(mutedTextStyle.Render(fmt.Sprintf("  %-6s %9s  %-6s %s",
		"TYPE", "SIZE", "CONF", "NAME")))
	b.WriteString("\n")

	// Reserve lines for the surrounding chrome.
	maxRows := m.height - 14
	if maxRows < 5 {
		maxRows = 5
	}

	shown := len(files)
	if shown > maxRows {
		shown = maxRows
	}

	nameWidth := width - 28
	if nameWidth < 12 {
		nameWidth = 12
	}

	for i := 0; i < shown; i++ {
		f := &files[i]
		name := truncatePath(f.Name, nameWidth)
		if f.Fragmented {
			name += warningTextStyle.Render(fmt.Sprintf(" (%d fragments)", len(f.Fragments)))
		}
		b.WriteString(fmt.Sprintf("  %-6s %s  %s %s",
			f.Type.String(),
			sizeStyle.Render(fmt.Sprintf("%9s", f.HumanSize())),
			confidenceStyle(f.Confidence.String()).Render(padRight(f.Confidence.String(), 6)),
			name))
		b.WriteString("\n")
	}

	if len(files) > shown {
		b.WriteString(mutedTextStyle.Render(fmt.Sprintf("  ... and %d more", len(files)-shown)))
		b.WriteString("\n")
	}

	return b.String()
}

// renderTotals renders the recovery outcome line.
func (m SummaryModel) renderTotals(width int) string {
	r := m.report

	var total int64
	for i := range r.Files {
		total += r.Files[i].ContentLength()
	}

	if r.Preview {
		return warningTextStyle.Render(fmt.Sprintf("  Previewed %d files (%s), nothing written",
			len(r.Files), types.FormatSize(total))) + "\n"
	}

	line := successTextStyle.Render(fmt.Sprintf("  Recovered %d files (%s)",
		len(r.Files), types.FormatSize(total)))
	if m.outputDir != "" {
		line += mutedTextStyle.Render(" → " + truncatePath(m.outputDir, width-40))
	}
	return line + "\n"
}
