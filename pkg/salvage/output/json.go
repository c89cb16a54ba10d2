package output

import (
	"bytes"
	"encoding/json"
	"time"
)

// jsonOutput represents the full JSON output structure.
type jsonOutput struct {
	Files []jsonFile `json:"files"`
	Stats jsonStats  `json:"stats"`
	Meta  jsonMeta   `json:"meta"`
}

// jsonFile represents a recovered file in JSON output.
type jsonFile struct {
	Name       string `json:"name"`
	Path       string `json:"path,omitempty"`
	Type       string `json:"type"`
	Offset     int64  `json:"offset"`
	Size       int64  `json:"size"`
	SizeHuman  string `json:"size_human"`
	Confidence string `json:"confidence"`
	Fragmented bool   `json:"fragmented,omitempty"`
	Fragments  int    `json:"fragments,omitempty"`
}

// jsonStats represents scan statistics in JSON output.
type jsonStats struct {
	BytesScanned    int64  `json:"bytes_scanned"`
	Detected        int64  `json:"detected"`
	Found           int64  `json:"found"`
	Recovered       int64  `json:"recovered"`
	Duplicates      int64  `json:"duplicates"`
	RejectedType    int64  `json:"rejected_type"`
	RejectedSystem  int64  `json:"rejected_system"`
	RejectedPattern int64  `json:"rejected_pattern"`
	ReadFailures    int64  `json:"read_failures"`
	Duration        string `json:"duration"`
}

// jsonMeta represents session metadata in JSON output.
type jsonMeta struct {
	Device     string   `json:"device"`
	Profile    string   `json:"profile"`
	Strategies string   `json:"strategies"`
	OutputDir  string   `json:"output_dir,omitempty"`
	Preview    bool     `json:"preview"`
	Cancelled  bool     `json:"cancelled"`
	TotalFiles int      `json:"total_files"`
	TotalSize  int64    `json:"total_size"`
	Warnings   []string `json:"warnings,omitempty"`
}

// JSONFormatter formats output as a single indented JSON object.
// It produces a complete JSON document with files, stats, and meta sections.
type JSONFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *JSONFormatter) Format(w *bytes.Buffer, r *Result) error {
	output := f.buildOutput(r)

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

// buildOutput converts Result to the JSON output structure.
func (f *JSONFormatter) buildOutput(r *Result) jsonOutput {
	files := make([]jsonFile, len(r.Files))
	for i, file := range r.Files {
		files[i] = newJSONFile(file)
	}

	stats := jsonStats{
		BytesScanned:    r.Stats.BytesScanned,
		Detected:        r.Stats.Detected,
		Found:           r.Stats.Found,
		Recovered:       r.Stats.Recovered,
		Duplicates:      r.Stats.Duplicates,
		RejectedType:    r.Stats.RejectedType,
		RejectedSystem:  r.Stats.RejectedSystem,
		RejectedPattern: r.Stats.RejectedPattern,
		ReadFailures:    r.Stats.ReadFailures,
		Duration:        formatDurationString(r.Stats.Duration),
	}

	meta := jsonMeta{
		Device:     r.Device,
		Profile:    r.Profile,
		Strategies: r.Strategies,
		OutputDir:  r.OutputDir,
		Preview:    r.Preview,
		Cancelled:  r.Cancelled,
		TotalFiles: r.TotalFiles,
		TotalSize:  r.TotalSize(),
		Warnings:   r.Warnings,
	}

	return jsonOutput{
		Files: files,
		Stats: stats,
		Meta:  meta,
	}
}

// newJSONFile converts a FileInfo to its JSON representation.
func newJSONFile(file FileInfo) jsonFile {
	return jsonFile{
		Name:       file.Name,
		Path:       file.Path,
		Type:       file.Type,
		Offset:     file.Offset,
		Size:       file.Size,
		SizeHuman:  file.SizeHuman,
		Confidence: file.Confidence,
		Fragmented: file.Fragmented,
		Fragments:  file.Fragments,
	}
}

// formatDurationString formats a duration as a string for structured output.
func formatDurationString(d time.Duration) string {
	if d == 0 {
		return ""
	}
	return d.String()
}

func init() {
	Register("json", func() Formatter {
		return &JSONFormatter{}
	})
}

// Ensure JSONFormatter implements Formatter.
var _ Formatter = (*JSONFormatter)(nil)

// JSONLFormatter formats output as newline-delimited JSON (one object per line).
// Each recovered file is written as a compact JSON object on its own line.
// This format is suitable for streaming processing with tools like jq.
type JSONLFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *JSONLFormatter) Format(w *bytes.Buffer, r *Result) error {
	for _, file := range r.Files {
		data, err := json.Marshal(newJSONFile(file))
		if err != nil {
			return err
		}
		w.Write(data)
		w.WriteByte('\n')
	}
	return nil
}

func init() {
	Register("jsonl", func() Formatter {
		return &JSONLFormatter{}
	})
}

// Ensure JSONLFormatter implements Formatter.
var _ Formatter = (*JSONLFormatter)(nil)
