// Package types provides core data types for the salvage recovery engine.
// It includes structures for recovery candidates, scan progress, and scan
// errors, along with utility functions for parsing and formatting byte sizes.
package types

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Size constants for binary (IEC) units.
const (
	KiB int64 = 1024
	MiB int64 = 1024 * KiB
	GiB int64 = 1024 * MiB
	TiB int64 = 1024 * GiB
)

// BlockSize is the granularity used for text carving. Many filesystems
// allocate in 4 KiB clusters, so text content tends to start on these
// boundaries even when the surrounding metadata is gone.
const BlockSize = 4 * KiB

// Sentinel errors for the failure modes a recovery session can hit.
// ErrAccessDenied and ErrTooManyReadFailures are fatal; the others are
// recorded or recovered from and never abort a session on their own.
var (
	// ErrAccessDenied indicates the drive source or output root could not
	// be opened with the required permissions.
	ErrAccessDenied = errors.New("access denied")

	// ErrUnreadableRegion indicates a region of the drive could not be read.
	// The region is skipped and the scan continues.
	ErrUnreadableRegion = errors.New("unreadable region")

	// ErrTooManyReadFailures indicates the scan aborted because too many
	// consecutive regions were unreadable.
	ErrTooManyReadFailures = errors.New("too many consecutive read failures")

	// ErrResourceProbe indicates system memory could not be measured and a
	// conservative default budget was used instead.
	ErrResourceProbe = errors.New("system memory probe failed")
)

// Confidence expresses how certain the engine is that a candidate is a
// real recoverable file.
type Confidence uint8

// Confidence levels, ordered from least to most certain.
const (
	// ConfidenceLow marks candidates found by content heuristics alone,
	// such as printable-text runs.
	ConfidenceLow Confidence = iota

	// ConfidenceMedium marks candidates with a matching header signature
	// but no terminating footer.
	ConfidenceMedium

	// ConfidenceHigh marks candidates bounded by both a header and a
	// footer signature.
	ConfidenceHigh
)

// String returns the lowercase name of the confidence level.
func (c Confidence) String() string {
	switch c {
	case ConfidenceHigh:
		return "high"
	case ConfidenceMedium:
		return "medium"
	default:
		return "low"
	}
}

// Fragment is a contiguous byte range on the drive, identified by its
// absolute offset and length.
type Fragment struct {
	// Offset is the absolute byte offset of the range on the drive.
	Offset int64 `json:"offset"`

	// Length is the number of bytes in the range.
	Length int64 `json:"length"`
}

// End returns the exclusive end offset of the fragment.
func (f Fragment) End() int64 {
	return f.Offset + f.Length
}

// Candidate is a region of the drive the engine believes holds a
// recoverable file.
type Candidate struct {
	// Type is the detected file type.
	Type FileType `json:"type"`

	// Offset is the absolute byte offset where the file content starts.
	Offset int64 `json:"offset"`

	// Length is the total span of the candidate in bytes, measured from
	// Offset. It never extends past the drive extent.
	Length int64 `json:"length"`

	// Confidence reflects how the candidate was detected.
	Confidence Confidence `json:"confidence"`

	// Hash is the 64-bit content-prefix hash used for deduplication,
	// zero until the candidate passes through the pipeline.
	Hash uint64 `json:"hash,omitempty"`

	// Fragmented is true when the content spans non-contiguous regions or
	// when footer reassembly was abandoned at the distance cap.
	Fragmented bool `json:"fragmented,omitempty"`

	// Fragments lists the readable ranges making up the candidate, sorted
	// by offset and non-overlapping. Empty for contiguous candidates.
	Fragments []Fragment `json:"fragments,omitempty"`
}

// End returns the exclusive end offset of the candidate's span.
func (c Candidate) End() int64 {
	return c.Offset + c.Length
}

// ContentLength returns the number of recoverable bytes: the sum of the
// fragment lengths when the candidate is fragmented, otherwise Length.
func (c Candidate) ContentLength() int64 {
	if len(c.Fragments) == 0 {
		return c.Length
	}
	var total int64
	for _, f := range c.Fragments {
		total += f.Length
	}
	return total
}

// RecoveredFile is a candidate that survived filtering and deduplication,
// carrying its resolved name and, when persisted, its output path.
type RecoveredFile struct {
	Candidate

	// Name is the session-unique resolved filename.
	Name string `json:"name"`

	// Path is the absolute output path, empty in preview mode.
	Path string `json:"path,omitempty"`

	// Preview holds up to the configured preview cap of leading content
	// bytes. Only populated in preview mode.
	Preview []byte `json:"-"`
}

// HumanSize returns the recoverable size formatted as a human-readable
// string using binary (IEC) units.
func (r *RecoveredFile) HumanSize() string {
	return FormatSize(r.ContentLength())
}

// ScanProgress reports real-time recovery progress.
// It provides a snapshot of the current session state for progress reporting.
type ScanProgress struct {
	// BytesScanned is the number of drive bytes examined so far.
	BytesScanned int64 `json:"bytes_scanned"`

	// TotalBytes is the drive extent in bytes.
	TotalBytes int64 `json:"total_bytes"`

	// CandidatesFound is the number of candidates that passed filtering
	// and deduplication so far.
	CandidatesFound int64 `json:"candidates_found"`

	// Recovered is the number of files persisted (or previewed) so far.
	Recovered int64 `json:"recovered"`

	// MemoryUsed is the engine's current heap usage in bytes.
	MemoryUsed int64 `json:"memory_used"`

	// Elapsed is the time since the session started.
	Elapsed time.Duration `json:"elapsed"`
}

// Percent returns scan completion in the range [0, 100].
func (p ScanProgress) Percent() float64 {
	if p.TotalBytes <= 0 {
		return 0
	}
	return float64(p.BytesScanned) / float64(p.TotalBytes) * 100
}

// ScanError records a non-fatal error encountered during scanning.
// It pairs the affected drive region with the error message.
type ScanError struct {
	// Offset is the absolute byte offset of the region.
	Offset int64 `json:"offset"`

	// Length is the length of the skipped region in bytes.
	Length int64 `json:"length"`

	// Error is the error message describing what went wrong.
	Error string `json:"error"`
}

// sizePattern matches size strings like "100M", "2G", "500K", "1.5GB", etc.
var sizePattern = regexp.MustCompile(`(?i)^\s*([0-9]+(?:\.[0-9]+)?)\s*([KMGT]?(?:i?B)?)\s*$`)

// ErrInvalidSize indicates that the size string could not be parsed.
var ErrInvalidSize = errors.New("invalid size format")

// ErrNegativeSize indicates that a negative size value was provided.
var ErrNegativeSize = errors.New("size cannot be negative")

// ParseSize parses a human-readable size string and returns the size in bytes.
// It supports the following formats:
//   - Plain bytes: "1024", "0"
//   - With byte suffix: "512B", "512b"
//   - Kilobytes: "100K", "100k", "100KB", "100KiB"
//   - Megabytes: "50M", "50m", "50MB", "50MiB"
//   - Gigabytes: "2G", "2g", "2GB", "2GiB"
//   - Terabytes: "1T", "1t", "1TB", "1TiB"
//
// Decimal values are supported and truncated to the nearest byte.
// Leading and trailing whitespace is ignored.
//
// Returns ErrInvalidSize if the format is not recognized.
// Returns ErrNegativeSize if the value is negative.
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty string", ErrInvalidSize)
	}

	// Check for negative values
	if strings.HasPrefix(s, "-") {
		return 0, ErrNegativeSize
	}

	matches := sizePattern.FindStringSubmatch(s)
	if matches == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}

	// Parse the numeric value
	value, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}

	// Determine the multiplier based on the suffix
	suffix := strings.ToUpper(matches[2])
	// Remove 'B' or 'IB' suffix to get just the unit letter
	suffix = strings.TrimSuffix(suffix, "IB")
	suffix = strings.TrimSuffix(suffix, "B")

	var multiplier int64
	switch suffix {
	case "":
		multiplier = 1
	case "K":
		multiplier = KiB
	case "M":
		multiplier = MiB
	case "G":
		multiplier = GiB
	case "T":
		multiplier = TiB
	default:
		return 0, fmt.Errorf("%w: unknown suffix %q", ErrInvalidSize, suffix)
	}

	return int64(value * float64(multiplier)), nil
}

// FormatSize converts a size in bytes to a human-readable string.
// It uses binary (IEC) units (KiB, MiB, GiB, TiB) for consistency
// with common filesystem tools.
//
// Examples:
//   - FormatSize(0) returns "0 B"
//   - FormatSize(1024) returns "1.0 KiB"
//   - FormatSize(1536*1024) returns "1.5 MiB"
func FormatSize(bytes int64) string {
	return humanize.IBytes(uint64(bytes))
}
