package logging_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/salvagekit/salvage/pkg/salvage/logging"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    logging.Level
		wantErr bool
	}{
		{input: "debug", want: logging.LevelDebug},
		{input: "info", want: logging.LevelInfo},
		{input: "warn", want: logging.LevelWarn},
		{input: "warning", want: logging.LevelWarn},
		{input: "error", want: logging.LevelError},
		{input: "ERROR", want: logging.LevelError},
		{input: "verbose", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		got, err := logging.ParseLevel(tt.input)
		if tt.wantErr {
			if !errors.Is(err, logging.ErrInvalidLevel) {
				t.Errorf("ParseLevel(%q) error = %v, want ErrInvalidLevel", tt.input, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseLevel(%q) error = %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestGetBeforeInitIsSilent(t *testing.T) {
	logger := logging.Get("uninitialized-component")
	logger.Debug("dropped")
	logger.Info("dropped")
	logger.Error("dropped")
}

func TestInitWritesToFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "salvage.log")
	err := logging.Init(logging.Config{Level: "info", Path: logPath})
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	logger := logging.Get("engine")
	logger.Info("scan started", "device", "/dev/sdz")

	if err := logging.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "scan started") {
		t.Errorf("log file missing message: %q", content)
	}
	if !strings.Contains(content, "engine") {
		t.Errorf("log file missing component prefix: %q", content)
	}
}

func TestInitInvalidLevel(t *testing.T) {
	err := logging.Init(logging.Config{
		Level: "loud",
		Path:  filepath.Join(t.TempDir(), "salvage.log"),
	})
	if !errors.Is(err, logging.ErrInvalidLevel) {
		t.Errorf("Init() error = %v, want ErrInvalidLevel", err)
	}
}

func TestLevelFiltering(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "salvage.log")
	if err := logging.Init(logging.Config{Level: "warn", Path: logPath}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	logger := logging.Get("filter-check")
	logger.Info("below threshold")
	logger.Error("above threshold")

	if err := logging.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	content := string(data)
	if strings.Contains(content, "below threshold") {
		t.Error("info message logged at warn level")
	}
	if !strings.Contains(content, "above threshold") {
		t.Error("error message missing at warn level")
	}
}

func TestWithContext(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "salvage.log")
	if err := logging.Init(logging.Config{Level: "info", Path: logPath}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	logging.Get("session").With("id", "abc-123").Info("started")

	if err := logging.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, _ := os.ReadFile(logPath)
	if !strings.Contains(string(data), "abc-123") {
		t.Errorf("context field missing: %q", data)
	}
}

func TestCloseWithoutInit(t *testing.T) {
	if err := logging.Close(); err != nil {
		t.Errorf("Close() before Init error = %v", err)
	}
}

func TestDefaultLogPath(t *testing.T) {
	path := logging.DefaultLogPath()
	if !strings.Contains(path, "salvage") {
		t.Errorf("DefaultLogPath() = %q, want a salvage-scoped path", path)
	}
	if filepath.Base(path) != "salvage.log" {
		t.Errorf("DefaultLogPath() base = %q", filepath.Base(path))
	}
}
