package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/salvagekit/salvage/pkg/salvage/engine"
	"github.com/salvagekit/salvage/pkg/salvage/types"
)

// ScanModel represents the scanning phase of the TUI.
type ScanModel struct {
	progress   types.ScanProgress
	spinner    spinner.Model
	bar        progress.Model
	startTime  time.Time
	width      int
	height     int
	device     string
	version    string
	cancelling bool
	done       bool
	err        error
}

// ProgressMsg is sent when scan progress is updated.
type ProgressMsg types.ScanProgress

// ScanCompleteMsg is sent when the scan is complete.
type ScanCompleteMsg struct {
	Report *engine.Report
	Err    error
}

// NewScanModel creates a new scanning model.
func NewScanModel(device, version string) ScanModel {
	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = lipgloss.NewStyle().Foreground(primaryColor)

	bar := progress.New(progress.WithDefaultGradient())

	return ScanModel{
		spinner:   s,
		bar:       bar,
		startTime: time.Now(),
		width:     80,
		height:    24,
		device:    device,
		version:   version,
	}
}

// Init initializes the scanning model.
func (m ScanModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles messages for the scanning model.
func (m ScanModel) Update(msg tea.Msg) (ScanModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = msg.Width - 10
		return m, nil

	case ProgressMsg:
		m.progress = types.ScanProgress(msg)
		return m, nil

	case ScanCompleteMsg:
		m.done = true
		m.err = msg.Err
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the scanning model.
func (m ScanModel) View() string {
	var b strings.Builder

	// Calculate content width (accounting for border padding)
	contentWidth := m.width - 4
	if contentWidth < 40 {
		contentWidth = 40
	}

	// Add top margin for visual spacing
	b.WriteString("\n")

	// Header
	b.WriteString(m.renderHeader(contentWidth))
	b.WriteString("\n")
	b.WriteString(renderDivider(contentWidth))
	b.WriteString("\n\n")

	// Scanning status
	switch {
	case m.done && m.err != nil:
		b.WriteString(errorTextStyle.Render(fmt.Sprintf("  Error: %v", m.err)))
	case m.done:
		b.WriteString(successTextStyle.Render("  Scan complete!"))
	case m.cancelling:
		b.WriteString(warningTextStyle.Render(
			fmt.Sprintf("  %s Stopping, keeping partial results...", m.spinner.View())))
	default:
		b.WriteString(fmt.Sprintf("  %s Carving %s",
			m.spinner.View(),
			truncatePath(m.device, contentWidth-20)))
	}
	b.WriteString("\n")

	// Progress bar
	b.WriteString("\n")
	b.WriteString(m.renderProgressBar(contentWidth))
	b.WriteString("\n\n")

	// Stats boxes
	b.WriteString(m.renderStats(contentWidth))
	b.WriteString("\n")

	if m.done && m.err != nil {
		b.WriteString("\n")
		b.WriteString(center(keyStyle.Render("[q]")+" "+keyDescStyle.Render("Exit"), contentWidth))
		b.WriteString("\n")
	}

	// Build content and calculate padding needed to fill screen
	content := b.String()
	contentLines := strings.Count(content, "\n") + 1

	// Account for outer box border (2 lines: top and bottom)
	availableLines := m.height - 2
	if availableLines > contentLines {
		padding := availableLines - contentLines
		content += strings.Repeat("\n", padding)
	}

	// Wrap in outer box with full height
	return outerBoxStyle.Width(m.width - 2).Height(m.height - 2).Render(content)
}

// renderHeader renders the header section.
func (m ScanModel) renderHeader(width int) string {
	title := titleStyle.Render("  salvage " + m.version)
	hint := mutedTextStyle.Render("[q to stop]")

	// Calculate spacing
	spacing := width - lipgloss.Width(title) - lipgloss.Width(hint)
	if spacing < 1 {
		spacing = 1
	}

	return title + strings.Repeat(" ", spacing) + hint
}

// renderProgressBar renders the determinate progress bar. The drive
// extent is known up front, so the bar tracks bytes scanned directly.
func (m ScanModel) renderProgressBar(width int) string {
	bar := m.bar
	bar.Width = width - 4
	if bar.Width < 10 {
		bar.Width = 10
	}

	return "  " + bar.ViewAs(m.progress.Percent()/100)
}

// renderStats renders the statistics boxes.
func (m ScanModel) renderStats(totalWidth int) string {
	// Calculate box width (5 boxes with spacing)
	boxWidth := (totalWidth - 12) / 5
	if boxWidth < 10 {
		boxWidth = 10
	}

	// Format values
	scannedVal := types.FormatSize(m.progress.BytesScanned)
	foundVal := humanize.Comma(m.progress.CandidatesFound)
	recoveredVal := humanize.Comma(m.progress.Recovered)
	memVal := "-"
	if m.progress.MemoryUsed > 0 {
		memVal = types.FormatSize(m.progress.MemoryUsed)
	}
	elapsedVal := formatDuration(time.Since(m.startTime))

	// Create stats boxes
	scannedBox := m.renderStatBox("Scanned", scannedVal, boxWidth)
	foundBox := m.renderStatBox("Found", foundVal, boxWidth)
	recoveredBox := m.renderStatBox("Saved", recoveredVal, boxWidth)
	memBox := m.renderStatBox("Memory", memVal, boxWidth)
	elapsedBox := m.renderStatBox("Time", elapsedVal, boxWidth)

	// Join horizontally
	return lipgloss.JoinHorizontal(lipgloss.Top,
		"  ", scannedBox, " ", foundBox, " ", recoveredBox, " ", memBox, " ", elapsedBox)
}

// renderStatBox renders a single stat box.
func (m ScanModel) renderStatBox(label, value string, width int) string {
	labelStr := statsLabelStyle.Render(label)
	valueStr := statsValueStyle.Render(value)

	content := lipgloss.JoinVertical(lipgloss.Center,
		center(labelStr, width-4),
		center(valueStr, width-4))

	return statsBoxStyle.Width(width).Render(content)
}

// formatDuration formats a duration as M:SS.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	m := d / time.Minute
	s := (d % time.Minute) / time.Second
	return fmt.Sprintf("%d:%02d", m, s)
}

// SetProgress updates the progress.
func (m *ScanModel) SetProgress(p types.ScanProgress) {
	m.progress = p
}

// SetCancelling marks the scan as stopping after a cancel request.
func (m *ScanModel) SetCancelling() {
	m.cancelling = true
}

// SetDone marks the scan as complete.
func (m *ScanModel) SetDone(err error) {
	m.done = true
	m.err = err
}

// IsDone returns true if the scan is complete.
func (m ScanModel) IsDone() bool {
	return m.done
}

// Error returns any error from the scan.
func (m ScanModel) Error() error {
	return m.err
}
