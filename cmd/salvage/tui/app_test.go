package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/salvagekit/salvage/pkg/salvage/engine"
	"github.com/salvagekit/salvage/pkg/salvage/types"
)

// testModel builds a model around a session that is never started.
func testModel(t *testing.T) Model {
	t.Helper()
	cfg := engine.Config{Device: "/dev/sdz9", PreviewOnly: true}
	session, err := engine.New(cfg)
	if err != nil {
		t.Fatalf("engine.New() error = %v", err)
	}
	return NewModel(session, Options{Config: cfg, Version: "v1.0.0"}, make(chan types.ScanProgress, 1))
}

func TestNewModel(t *testing.T) {
	m := testModel(t)

	if m.state != StateScanning {
		t.Errorf("expected initial state StateScanning, got %d", m.state)
	}
	if m.scanDone {
		t.Error("expected scanDone to be false initially")
	}
	if m.report != nil {
		t.Error("expected report to be nil initially")
	}
}

func TestModelWindowSize(t *testing.T) {
	m := testModel(t)

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m2 := updated.(Model)

	if m2.width != 100 || m2.height != 30 {
		t.Errorf("expected dimensions 100x30, got %dx%d", m2.width, m2.height)
	}
}

func TestModelCancelKey(t *testing.T) {
	m := testModel(t)

	// First press requests a cooperative stop, no quit yet.
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	m2 := updated.(Model)

	if !m2.cancelling {
		t.Error("expected cancelling after first q press")
	}
	if cmd != nil {
		if _, quit := cmd().(tea.QuitMsg); quit {
			t.Error("first q press should not quit")
		}
	}

	// Second press force-quits.
	_, cmd = m2.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("expected quit command on second q press")
	}
	if _, quit := cmd().(tea.QuitMsg); !quit {
		t.Error("second q press should quit")
	}
}

func TestModelScanComplete(t *testing.T) {
	m := testModel(t)

	updated, _ := m.Update(ScanCompleteMsg{Report: testReport()})
	m2 := updated.(Model)

	if m2.state != StateSummary {
		t.Errorf("expected StateSummary after completion, got %d", m2.state)
	}
	if m2.report == nil {
		t.Error("expected report to be stored")
	}
	if !m2.scanDone {
		t.Error("expected scanDone after completion")
	}
}

func TestModelScanCompleteError(t *testing.T) {
	m := testModel(t)

	updated, _ := m.Update(ScanCompleteMsg{Err: &testError{"device vanished"}})
	m2 := updated.(Model)

	if m2.state != StateScanning {
		t.Error("errors should keep the scanning view to display them")
	}
	if m2.scanErr == nil {
		t.Error("expected scanErr to be stored")
	}
}

func TestModelSummaryQuitKey(t *testing.T) {
	m := testModel(t)

	updated, _ := m.Update(ScanCompleteMsg{Report: testReport()})
	m2 := updated.(Model)

	_, cmd := m2.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("expected quit command from summary")
	}
	if _, quit := cmd().(tea.QuitMsg); !quit {
		t.Error("q in summary should quit")
	}
}

func TestModelProgressMsg(t *testing.T) {
	m := testModel(t)

	updated, cmd := m.Update(ProgressMsg(types.ScanProgress{BytesScanned: 42}))
	m2 := updated.(Model)

	if m2.scanModel.progress.BytesScanned != 42 {
		t.Errorf("expected progress to reach the scan model, got %d", m2.scanModel.progress.BytesScanned)
	}
	if cmd == nil {
		t.Error("expected a follow-up listen command")
	}
}
