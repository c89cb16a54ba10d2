package output

import (
	"bytes"

	"gopkg.in/yaml.v3"
)

// yamlOutput represents the full YAML output structure.
type yamlOutput struct {
	Files []yamlFile `yaml:"files"`
	Stats yamlStats  `yaml:"stats"`
	Meta  yamlMeta   `yaml:"meta"`
}

// yamlFile represents a recovered file in YAML output.
type yamlFile struct {
	Name       string `yaml:"name"`
	Path       string `yaml:"path,omitempty"`
	Type       string `yaml:"type"`
	Offset     int64  `yaml:"offset"`
	Size       int64  `yaml:"size"`
	SizeHuman  string `yaml:"size_human"`
	Confidence string `yaml:"confidence"`
	Fragmented bool   `yaml:"fragmented,omitempty"`
	Fragments  int    `yaml:"fragments,omitempty"`
}

// yamlStats represents scan statistics in YAML output.
type yamlStats struct {
	BytesScanned    int64  `yaml:"bytes_scanned"`
	Detected        int64  `yaml:"detected"`
	Found           int64  `yaml:"found"`
	Recovered       int64  `yaml:"recovered"`
	Duplicates      int64  `yaml:"duplicates"`
	RejectedType    int64  `yaml:"rejected_type"`
	RejectedSystem  int64  `yaml:"rejected_system"`
	RejectedPattern int64  `yaml:"rejected_pattern"`
	ReadFailures    int64  `yaml:"read_failures"`
	Duration        string `yaml:"duration"`
}

// yamlMeta represents session metadata in YAML output.
type yamlMeta struct {
	Device     string   `yaml:"device"`
	Profile    string   `yaml:"profile"`
	Strategies string   `yaml:"strategies"`
	OutputDir  string   `yaml:"output_dir,omitempty"`
	Preview    bool     `yaml:"preview"`
	Cancelled  bool     `yaml:"cancelled"`
	TotalFiles int      `yaml:"total_files"`
	TotalSize  int64    `yaml:"total_size"`
	Warnings   []string `yaml:"warnings,omitempty"`
}

// YAMLFormatter formats output as YAML.
// It produces the same structure as JSONFormatter but in YAML format.
type YAMLFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *YAMLFormatter) Format(w *bytes.Buffer, r *Result) error {
	output := f.buildOutput(r)

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(output); err != nil {
		return err
	}
	return encoder.Close()
}

// buildOutput converts Result to the YAML output structure.
func (f *YAMLFormatter) buildOutput(r *Result) yamlOutput {
	files := make([]yamlFile, len(r.Files))
	for i, file := range r.Files {
		files[i] = yamlFile{
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

	stats := yamlStats{
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

	meta := yamlMeta{
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

	return yamlOutput{
		Files: files,
		Stats: stats,
		Meta:  meta,
	}
}

func init() {
	Register("yaml", func() Formatter {
		return &YAMLFormatter{}
	})
}

// Ensure YAMLFormatter implements Formatter.
var _ Formatter = (*YAMLFormatter)(nil)
