// Package output provides formatters for displaying recovery results
// in various output formats (pretty, plain, json, yaml, etc.).
//
// The package uses a registry pattern to allow registration of multiple
// formatter implementations that can be selected at runtime.
//
// Basic usage:
//
//	formatter, err := output.Get("pretty")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	var buf bytes.Buffer
//	if err := formatter.Format(&buf, result); err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(buf.String())
package output

import (
	"bytes"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/salvagekit/salvage/pkg/salvage/logging"
)

// logger is the package-level logger for output operations.
var logger = logging.Get("output")

// FileInfo describes one recovered file for output formatting.
type FileInfo struct {
	// Name is the resolved filename of the recovered file.
	Name string `json:"name" yaml:"name"`

	// Path is the absolute output path. Empty in preview mode.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`

	// Type is the detected file type label (e.g., "jpg", "pdf").
	Type string `json:"type" yaml:"type"`

	// Offset is the absolute byte offset where the file was found.
	Offset int64 `json:"offset" yaml:"offset"`

	// Size is the number of recovered content bytes.
	Size int64 `json:"size" yaml:"size"`

	// SizeHuman is the human-readable size (e.g., "1.5 MiB").
	SizeHuman string `json:"size_human" yaml:"size_human"`

	// Confidence is the detection confidence: "high", "medium" or "low".
	Confidence string `json:"confidence" yaml:"confidence"`

	// Fragmented is true when the content was reassembled from
	// non-contiguous regions.
	Fragmented bool `json:"fragmented" yaml:"fragmented"`

	// Fragments is the number of regions the content was pieced from.
	// Zero for contiguous files.
	Fragments int `json:"fragments,omitempty" yaml:"fragments,omitempty"`
}

// Display returns the output path when the file was written, falling
// back to the resolved name in preview mode.
func (f FileInfo) Display() string {
	if f.Path != "" {
		return f.Path
	}
	return f.Name
}

// ScanStats contains statistics about a recovery scan.
type ScanStats struct {
	// BytesScanned is the total number of drive bytes examined.
	BytesScanned int64 `json:"bytes_scanned" yaml:"bytes_scanned"`

	// Detected is the number of raw detections before filtering.
	Detected int64 `json:"detected" yaml:"detected"`

	// Found is the number of candidates surviving filters and dedup.
	Found int64 `json:"found" yaml:"found"`

	// Recovered is the number of files written (or previewed).
	Recovered int64 `json:"recovered" yaml:"recovered"`

	// Duplicates is the number of candidates dropped as duplicate content.
	Duplicates int64 `json:"duplicates" yaml:"duplicates"`

	// RejectedType counts candidates outside the requested type groups.
	RejectedType int64 `json:"rejected_type" yaml:"rejected_type"`

	// RejectedSystem counts system and temporary artifacts dropped.
	RejectedSystem int64 `json:"rejected_system" yaml:"rejected_system"`

	// RejectedPattern counts names that missed the glob pattern.
	RejectedPattern int64 `json:"rejected_pattern" yaml:"rejected_pattern"`

	// ReadFailures counts unreadable regions that were skipped.
	ReadFailures int64 `json:"read_failures" yaml:"read_failures"`

	// Duration is the total time taken by the scan.
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// Skipped returns the total number of candidates dropped by filters
// and deduplication.
func (s ScanStats) Skipped() int64 {
	return s.Duplicates + s.RejectedType + s.RejectedSystem + s.RejectedPattern
}

// Result contains the complete output data for formatting.
// It includes all recovered files, scan statistics, and metadata about
// the recovery session.
type Result struct {
	// Files contains all recovered files in the order they were found.
	Files []FileInfo `json:"files" yaml:"files"`

	// Stats contains scan statistics.
	Stats ScanStats `json:"stats" yaml:"stats"`

	// Device is the drive or image path that was scanned.
	Device string `json:"device" yaml:"device"`

	// Profile is the memory profile the scan ran under.
	Profile string `json:"profile" yaml:"profile"`

	// Strategies is the comma-separated list of scan strategies used.
	Strategies string `json:"strategies" yaml:"strategies"`

	// OutputDir is where recovered files were written. Empty in preview
	// mode.
	OutputDir string `json:"output_dir,omitempty" yaml:"output_dir,omitempty"`

	// Preview indicates the scan reported files without writing them.
	Preview bool `json:"preview" yaml:"preview"`

	// Cancelled indicates the scan was stopped before completion.
	Cancelled bool `json:"cancelled" yaml:"cancelled"`

	// TotalFiles is the total number of files in the result.
	TotalFiles int `json:"total_files" yaml:"total_files"`

	// Warnings contains any warning messages generated during the scan.
	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// TotalSize returns the sum of all recovered file sizes in the result.
func (r *Result) TotalSize() int64 {
	var total int64
	for _, f := range r.Files {
		total += f.Size
	}
	return total
}

// Formatter is the interface that all output formatters must implement.
type Formatter interface {
	// Format writes the formatted output to the buffer.
	// It returns an error if formatting fails.
	Format(w *bytes.Buffer, r *Result) error
}

// FormatterFactory is a function that creates a new Formatter instance.
type FormatterFactory func() Formatter

// Registry manages formatter registration and lookup.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]FormatterFactory
}

// NewRegistry creates a new formatter registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]FormatterFactory),
	}
}

// Register adds a formatter factory to the registry.
// It will replace any existing formatter with the same name.
func (r *Registry) Register(name string, factory FormatterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get returns a new formatter instance by name.
// It returns an error if the formatter is not found.
func (r *Registry) Get(name string) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown formatter: %s", name)
	}
	return factory(), nil
}

// Available returns a sorted list of all registered formatter names.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the global formatter registry.
var DefaultRegistry = NewRegistry()

// Register adds a formatter factory to the default registry.
func Register(name string, factory FormatterFactory) {
	DefaultRegistry.Register(name, factory)
}

// Get returns a new formatter instance from the default registry.
func Get(name string) (Formatter, error) {
	return DefaultRegistry.Get(name)
}

// Available returns all formatter names from the default registry.
func Available() []string {
	return DefaultRegistry.Available()
}
