package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/salvagekit/salvage/pkg/salvage/engine"
	"github.com/salvagekit/salvage/pkg/salvage/types"
)

func testReport() *engine.Report {
	return &engine.Report{
		ID:     "11111111-2222-3333-4444-555555555555",
		Device: "/dev/sdb1",
		Files: []types.RecoveredFile{
			{
				Candidate: types.Candidate{
					Type:       types.TypeJpeg,
					Offset:     4096,
					Length:     2 * types.MiB,
					Confidence: types.ConfidenceHigh,
				},
				Name: "photo_1.jpg",
				Path: "/mnt/rescue/photo_1.jpg",
			},
			{
				Candidate: types.Candidate{
					Type:       types.TypePDF,
					Offset:     8 * types.MiB,
					Length:     512 * types.KiB,
					Confidence: types.ConfidenceMedium,
					Fragmented: true,
					Fragments: []types.Fragment{
						{Offset: 8 * types.MiB, Length: 256 * types.KiB},
						{Offset: 9 * types.MiB, Length: 256 * types.KiB},
					},
				},
				Name: "report_1.pdf",
				Path: "/mnt/rescue/report_1.pdf",
			},
		},
		Stats: engine.Stats{
			BytesScanned: 2 * types.GiB,
			Found:        2,
			Recovered:    2,
		},
		StartedAt: time.Now(),
		Elapsed:   42 * time.Second,
	}
}

func TestNewSummaryModel(t *testing.T) {
	report := testReport()
	m := NewSummaryModel(report, "/mnt/rescue", "v1.0.0")

	if m.report != report {
		t.Error("expected model to hold the report")
	}
	if m.outputDir != "/mnt/rescue" {
		t.Errorf("expected outputDir '/mnt/rescue', got %s", m.outputDir)
	}
}

func TestSummaryModelView(t *testing.T) {
	m := NewSummaryModel(testReport(), "/mnt/rescue", "v1.0.0")
	m.SetDimensions(100, 30)

	view := m.View()
	if view == "" {
		t.Fatal("expected non-empty view")
	}
	if !strings.Contains(view, "/dev/sdb1") {
		t.Error("view should contain the device")
	}
	if !strings.Contains(view, "photo_1.jpg") {
		t.Error("view should list recovered files")
	}
	if !strings.Contains(view, "Recovered 2 files") {
		t.Error("view should show the recovery total")
	}
	if !strings.Contains(view, "Scan complete") {
		t.Error("view should show the completion status")
	}
}

func TestSummaryModelViewFragments(t *testing.T) {
	m := NewSummaryModel(testReport(), "/mnt/rescue", "v1.0.0")
	m.SetDimensions(100, 30)

	view := m.View()
	if !strings.Contains(view, "2 fragments") {
		t.Error("view should annotate fragmented files")
	}
}

func TestSummaryModelViewCancelled(t *testing.T) {
	report := testReport()
	report.Cancelled = true
	m := NewSummaryModel(report, "/mnt/rescue", "v1.0.0")
	m.SetDimensions(100, 30)

	view := m.View()
	if !strings.Contains(view, "cancelled") {
		t.Error("view should flag a cancelled scan")
	}
}

func TestSummaryModelViewPreview(t *testing.T) {
	report := testReport()
	report.Preview = true
	for i := range report.Files {
		report.Files[i].Path = ""
	}
	m := NewSummaryModel(report, "", "v1.0.0")
	m.SetDimensions(100, 30)

	view := m.View()
	if !strings.Contains(view, "nothing written") {
		t.Error("preview view should say nothing was written")
	}
}

func TestSummaryModelViewEmpty(t *testing.T) {
	report := testReport()
	report.Files = nil
	m := NewSummaryModel(report, "/mnt/rescue", "v1.0.0")
	m.SetDimensions(100, 30)

	view := m.View()
	if !strings.Contains(view, "No recoverable files found") {
		t.Error("empty view should say no files were found")
	}
}

func TestSummaryModelViewCapsRows(t *testing.T) {
	report := testReport()
	report.Files = nil
	for i := 0; i < 100; i++ {
		report.Files = append(report.Files, types.RecoveredFile{
			Candidate: types.Candidate{
				Type:       types.TypePNG,
				Offset:     int64(i) * types.MiB,
				Length:     types.MiB,
				Confidence: types.ConfidenceHigh,
			},
			Name: "image_" + strings.Repeat("x", i%5) + ".png",
			Path: "/mnt/rescue/image.png",
		})
	}
	m := NewSummaryModel(report, "/mnt/rescue", "v1.0.0")
	m.SetDimensions(100, 24)

	view := m.View()
	if !strings.Contains(view, "more") {
		t.Error("long file lists should be truncated with a count")
	}
}
