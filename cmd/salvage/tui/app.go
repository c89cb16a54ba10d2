package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/salvagekit/salvage/pkg/salvage/engine"
	"github.com/salvagekit/salvage/pkg/salvage/types"
)

// AppState represents the current state of the application.
type AppState int

const (
	StateScanning AppState = iota
	StateSummary
)

// Options configures the TUI application.
type Options struct {
	// Config is the validated engine configuration. Run installs its
	// own progress callback.
	Config engine.Config

	// Version is shown in the header.
	Version string
}

// Model is the main Bubble Tea model for the salvage TUI.
type Model struct {
	state        AppState
	scanModel    ScanModel
	summaryModel SummaryModel
	options      Options

	// Scanning state
	ctx          context.Context
	cancel       context.CancelFunc
	session      *engine.Session
	report       *engine.Report
	scanErr      error
	scanDone     bool
	cancelling   bool
	progressChan chan types.ScanProgress

	// Window dimensions
	width  int
	height int
}

// NewModel creates a new TUI model around a prepared session.
func NewModel(session *engine.Session, opts Options, progressChan chan types.ScanProgress) Model {
	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:        StateScanning,
		scanModel:    NewScanModel(opts.Config.Device, opts.Version),
		options:      opts,
		ctx:          ctx,
		cancel:       cancel,
		session:      session,
		progressChan: progressChan,
		width:        80,
		height:       24,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.scanModel.Init(),
		m.startScan(),
		m.listenForProgress(),
		m.tickUI(),
	)
}

// tickUIMsg triggers a UI refresh.
type tickUIMsg struct{}

// tickUI returns a command that periodically triggers UI updates.
func (m Model) tickUI() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(time.Time) tea.Msg {
		return tickUIMsg{}
	})
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		var cmd tea.Cmd
		m.scanModel, cmd = m.scanModel.Update(msg)
		m.summaryModel.SetDimensions(msg.Width, msg.Height)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tickUIMsg:
		// Keep the elapsed clock fresh while scanning
		if m.state == StateScanning && !m.scanDone {
			return m, m.tickUI()
		}
		return m, nil

	case ProgressMsg:
		m.scanModel.SetProgress(types.ScanProgress(msg))
		// Keep listening for more progress
		return m, m.listenForProgress()

	case ScanCompleteMsg:
		m.scanDone = true
		m.scanErr = msg.Err
		m.report = msg.Report
		m.scanModel.SetDone(msg.Err)

		if msg.Err == nil && msg.Report != nil {
			m.state = StateSummary
			m.summaryModel = NewSummaryModel(msg.Report, m.options.Config.OutputDir, m.options.Version)
			m.summaryModel.SetDimensions(m.width, m.height)
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.scanModel, cmd = m.scanModel.Update(msg)
		return m, cmd
	}

	return m, nil
}

// handleKey handles keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch m.state {
	case StateScanning:
		switch key {
		case "q", "esc", "ctrl+c":
			if m.scanDone {
				// Scan already failed; nothing left to stop.
				return m, tea.Quit
			}
			if m.cancelling {
				// Second press force-quits without waiting.
				m.cancel()
				return m, tea.Quit
			}
			m.cancelling = true
			m.scanModel.SetCancelling()
			m.session.Cancel()
		}

	case StateSummary:
		switch key {
		case "q", "esc", "enter", "ctrl+c":
			return m, tea.Quit
		}
	}

	return m, nil
}

// View renders the current state.
func (m Model) View() string {
	switch m.state {
	case StateScanning:
		return m.scanModel.View()
	case StateSummary:
		return m.summaryModel.View()
	}
	return ""
}

// startScan runs the session in the background.
func (m Model) startScan() tea.Cmd {
	session := m.session
	ctx := m.ctx
	progressChan := m.progressChan
	return func() tea.Msg {
		report, err := session.Start(ctx)
		close(progressChan)
		return ScanCompleteMsg{Report: report, Err: err}
	}
}

// listenForProgress returns a command that waits for progress updates.
func (m Model) listenForProgress() tea.Cmd {
	progressChan := m.progressChan
	return func() tea.Msg {
		p, ok := <-progressChan
		if !ok {
			// Channel closed, scan is done
			return nil
		}
		return ProgressMsg(p)
	}
}

// Run starts the TUI application and returns the scan report. A nil
// report with a nil error means the user quit before the scan finished.
func Run(opts Options) (*engine.Report, error) {
	progressChan := make(chan types.ScanProgress, 100)

	cfg := opts.Config
	cfg.OnProgress = func(p types.ScanProgress) {
		select {
		case progressChan <- p:
		default:
			// Channel full, skip this update
		}
	}

	session, err := engine.New(cfg)
	if err != nil {
		return nil, err
	}

	model := NewModel(session, opts, progressChan)

	p := tea.NewProgram(model, tea.WithAltScreen())

	finalModel, err := p.Run()
	if err != nil {
		return nil, err
	}

	m, ok := finalModel.(Model)
	if !ok {
		return nil, nil
	}
	if m.scanErr != nil {
		return nil, m.scanErr
	}
	return m.report, nil
}
