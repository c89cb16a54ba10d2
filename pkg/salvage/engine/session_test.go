package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/salvagekit/salvage/pkg/salvage/types"
)

type persistedFile struct {
	name    string
	content []byte
}

// captureWriter records persisted files in memory.
type captureWriter struct {
	persisted []persistedFile
	failWith  error
}

func (w *captureWriter) Persist(rf *types.RecoveredFile, r io.Reader, root string) (string, error) {
	if w.failWith != nil {
		return "", w.failWith
	}
	content, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	w.persisted = append(w.persisted, persistedFile{name: rf.Name, content: content})
	return filepath.Join(root, rf.Name), nil
}

// cancelAfterSource cancels the session during the Nth full-buffer read.
// Smaller reads (content prefixes, previews) are not counted.
type cancelAfterSource struct {
	*memSource
	bufSize int
	limit   int
	reads   int
	cancel  func()
}

func (c *cancelAfterSource) ReadAt(p []byte, off int64) (int, error) {
	if len(p) == c.bufSize {
		c.reads++
		if c.reads == c.limit {
			c.cancel()
		}
	}
	return c.memSource.ReadAt(p, off)
}

func TestConfigValidate(t *testing.T) {
	src := &memSource{data: make([]byte, 16)}

	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{
			name:    "no source or device",
			cfg:     Config{PreviewOnly: true},
			wantErr: ErrNoSource,
		},
		{
			name: "preview needs no writer",
			cfg:  Config{Source: src, PreviewOnly: true},
		},
		{
			name: "device alone is enough",
			cfg:  Config{Device: "/dev/sdz", PreviewOnly: true},
		},
		{
			name:    "persisting needs a writer",
			cfg:     Config{Source: src, OutputDir: "out"},
			wantErr: ErrNoWriter,
		},
		{
			name:    "persisting needs an output dir",
			cfg:     Config{Source: src, Writer: &captureWriter{}},
			wantErr: ErrNoOutput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigValidate_Defaults(t *testing.T) {
	cfg := Config{Source: &memSource{}, PreviewOnly: true}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cfg.Strategies != DefaultStrategies {
		t.Errorf("Strategies = %v, want defaults", cfg.Strategies)
	}
	if cfg.PreviewCap != DefaultPreviewCap {
		t.Errorf("PreviewCap = %d, want %d", cfg.PreviewCap, DefaultPreviewCap)
	}
	if cfg.MaxReadFailures != DefaultMaxReadFailures {
		t.Errorf("MaxReadFailures = %d, want %d", cfg.MaxReadFailures, DefaultMaxReadFailures)
	}
	if cfg.Catalog == nil {
		t.Error("Catalog not defaulted")
	}
}

func TestConfigValidate_DirectAlwaysOn(t *testing.T) {
	cfg := Config{Source: &memSource{}, PreviewOnly: true, Strategies: StrategyOffset}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if !cfg.Strategies.Has(StrategyDirect) {
		t.Error("direct pass not forced on")
	}
}

func TestSession_PersistWritesThroughWriter(t *testing.T) {
	data := []byte("\x00\x00\x00JJHHdataKK\x00\x00")
	w := &captureWriter{}
	cfg := Config{
		Source:    &memSource{data: data},
		Catalog:   testCatalog(),
		Budget:    testBudget(64),
		Writer:    w,
		OutputDir: "/out",
	}
	report := runSession(t, cfg)

	if len(report.Files) != 1 {
		t.Fatalf("got %d files, want 1", len(report.Files))
	}
	f := report.Files[0]
	if want := filepath.Join("/out", "recovered_jpg_3.jpg"); f.Path != want {
		t.Errorf("path = %q, want %q", f.Path, want)
	}
	if len(f.Preview) != 0 {
		t.Error("preview populated outside preview mode")
	}
	if len(w.persisted) != 1 {
		t.Fatalf("writer saw %d files, want 1", len(w.persisted))
	}
	if !bytes.Equal(w.persisted[0].content, []byte("JJHHdataKK")) {
		t.Errorf("persisted content = %q", w.persisted[0].content)
	}
}

func TestSession_PersistAccessDeniedAborts(t *testing.T) {
	data := []byte("JJHHdataKK")
	cfg := Config{
		Source:    &memSource{data: data},
		Catalog:   testCatalog(),
		Budget:    testBudget(64),
		Writer:    &captureWriter{failWith: fmt.Errorf("output root: %w", types.ErrAccessDenied)},
		OutputDir: "/out",
	}
	sess, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	_, err = sess.Start(context.Background())
	if !errors.Is(err, types.ErrAccessDenied) {
		t.Errorf("Start() error = %v, want ErrAccessDenied", err)
	}
}

func TestSession_PersistErrorRecordedNonFatal(t *testing.T) {
	data := []byte("JJHHdataKK")
	cfg := Config{
		Source:    &memSource{data: data},
		Catalog:   testCatalog(),
		Budget:    testBudget(64),
		Writer:    &captureWriter{failWith: errors.New("device full")},
		OutputDir: "/out",
	}
	report := runSession(t, cfg)

	if len(report.Files) != 0 {
		t.Errorf("got %d files, want 0", len(report.Files))
	}
	if len(report.Errors) != 1 {
		t.Fatalf("errors = %+v, want one persist failure", report.Errors)
	}
	if report.Stats.Found != 1 || report.Stats.Recovered != 0 {
		t.Errorf("stats = %+v, want found 1 recovered 0", report.Stats)
	}
}

func TestSession_CancelMidScan(t *testing.T) {
	// Three files in three disjoint buffers; cancellation lands during
	// the second read, so the second buffer still completes and the third
	// is never read.
	data := make([]byte, 48)
	copy(data[0:], "JJHHxxxxKK")
	copy(data[16:], "JJHHyyyyKK")
	copy(data[32:], "JJHHzzzzKK")

	var sess *Session
	src := &cancelAfterSource{
		memSource: &memSource{data: data},
		bufSize:   16,
		limit:     2,
		cancel:    func() { sess.Cancel() },
	}
	cfg := Config{
		Source:      src,
		Catalog:     testCatalog(),
		Budget:      testBudget(16),
		Strategies:  StrategyDirect,
		PreviewOnly: true,
	}
	sess, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	report, err := sess.Start(context.Background())
	if err != nil {
		t.Fatalf("Start() error = %v, cancellation must not be an error", err)
	}

	if !report.Cancelled {
		t.Error("Cancelled = false")
	}
	if len(report.Files) != 2 {
		t.Fatalf("got %d files, want 2", len(report.Files))
	}
	if report.Files[0].Offset != 0 || report.Files[1].Offset != 16 {
		t.Errorf("offsets = %d, %d, want 0, 16", report.Files[0].Offset, report.Files[1].Offset)
	}
	if report.Stats.BytesScanned != 32 {
		t.Errorf("BytesScanned = %d, want 32", report.Stats.BytesScanned)
	}
}

func TestSession_ContextCancelledBeforeScan(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sess, err := New(previewConfig(&memSource{data: make([]byte, 64)}, 16))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	report, err := sess.Start(ctx)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !report.Cancelled {
		t.Error("Cancelled = false")
	}
	if len(report.Files) != 0 {
		t.Errorf("got %d files, want 0", len(report.Files))
	}
}

func TestSession_Deterministic(t *testing.T) {
	data := make([]byte, 128)
	copy(data[0:], "JJHHaaaaKK")
	copy(data[32:], "JJHHaaaaKK") // exact duplicate, deduplicated
	copy(data[64:], "QQpayload")
	copy(data[100:], "JJHHbbbbKK")

	run := func() *Report {
		return runSession(t, previewConfig(&memSource{data: data}, 16))
	}
	first, second := run(), run()

	if len(first.Files) != 3 {
		t.Fatalf("got %d files, want 3", len(first.Files))
	}
	if !reflect.DeepEqual(first.Files, second.Files) {
		t.Errorf("runs disagree:\n%+v\n%+v", first.Files, second.Files)
	}
	if first.Stats != second.Stats {
		t.Errorf("stats disagree: %+v vs %+v", first.Stats, second.Stats)
	}
	if first.Stats.Duplicates != 1 {
		t.Errorf("Duplicates = %d, want 1", first.Stats.Duplicates)
	}
}

func TestSession_ProgressReporting(t *testing.T) {
	var snaps []types.ScanProgress
	cfg := previewConfig(&memSource{data: make([]byte, 48)}, 16)
	cfg.OnProgress = func(p types.ScanProgress) { snaps = append(snaps, p) }

	sess, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if sess.ID() == "" {
		t.Error("ID() empty")
	}
	if _, err := sess.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if len(snaps) < 2 {
		t.Fatalf("got %d progress reports, want at least start and end", len(snaps))
	}
	if snaps[0].TotalBytes != 48 || snaps[0].BytesScanned != 0 {
		t.Errorf("first snapshot = %+v", snaps[0])
	}
	if last := snaps[len(snaps)-1]; last.BytesScanned != 48 {
		t.Errorf("final BytesScanned = %d, want 48", last.BytesScanned)
	}
	for i := 1; i < len(snaps); i++ {
		if snaps[i].BytesScanned < snaps[i-1].BytesScanned {
			t.Errorf("progress moved backwards: %d after %d",
				snaps[i].BytesScanned, snaps[i-1].BytesScanned)
		}
	}
}

func TestSession_EmbeddedNamesGetUniqueSuffix(t *testing.T) {
	// Two PDFs carrying the same document title but different content:
	// both survive deduplication and the second name gets a suffix.
	data := make([]byte, 200)
	copy(data[0:], "%PDF-1.4 /Title (Report) body-A %%EOF")
	copy(data[100:], "%PDF-1.4 /Title (Report) body-B %%EOF")

	cfg := Config{
		Source:      &memSource{data: data},
		Budget:      testBudget(4096),
		PreviewOnly: true,
	}
	report := runSession(t, cfg)

	if len(report.Files) != 2 {
		t.Fatalf("got %d files, want 2", len(report.Files))
	}
	if report.Files[0].Name != "Report.pdf" {
		t.Errorf("first name = %q, want Report.pdf", report.Files[0].Name)
	}
	if report.Files[1].Name != "Report_1.pdf" {
		t.Errorf("second name = %q, want Report_1.pdf", report.Files[1].Name)
	}
}
