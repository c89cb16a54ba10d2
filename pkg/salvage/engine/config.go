package engine

import (
	"errors"
	"io"

	"github.com/salvagekit/salvage/pkg/salvage/signature"
	"github.com/salvagekit/salvage/pkg/salvage/source"
	"github.com/salvagekit/salvage/pkg/salvage/tuner"
	"github.com/salvagekit/salvage/pkg/salvage/types"
)

// Defaults applied by Config.Validate.
const (
	// DefaultPreviewCap bounds preview bytes captured per file.
	DefaultPreviewCap = types.MiB

	// DefaultMaxReadFailures is how many consecutive unreadable buffers
	// are tolerated before the session aborts.
	DefaultMaxReadFailures = 8
)

// Validation sentinels.
var (
	ErrNoSource = errors.New("no drive or image to scan")
	ErrNoWriter = errors.New("writer required unless previewing")
	ErrNoOutput = errors.New("output directory required unless previewing")
)

// Writer persists one recovered file under an output root and returns the
// path written. Implementations handle on-disk name collisions themselves;
// preview sessions never invoke one.
type Writer interface {
	Persist(rf *types.RecoveredFile, r io.Reader, root string) (string, error)
}

// Config describes one recovery session.
type Config struct {
	// Device is the drive node or image path to scan. Ignored when
	// Source is set.
	Device string

	// Source overrides Device with an already-open drive source. The
	// caller keeps ownership and closes it.
	Source source.DriveSource

	// Profile selects the memory budget tier.
	Profile tuner.Profile

	// Budget overrides the probed memory budget when non-nil.
	Budget *tuner.MemoryBudget

	// Catalog overrides the builtin signature catalog when non-nil.
	Catalog *signature.Catalog

	// Types restricts recovery to the listed file types. Empty recovers
	// every type.
	Types []types.FileType

	// Pattern filters resolved names with * (any run) and % (exactly
	// one) wildcards, case-insensitively. Empty admits all.
	Pattern string

	// FilterSystem drops well-known operating system files.
	FilterSystem bool

	// PreviewOnly skips persistence and captures bounded content
	// previews instead.
	PreviewOnly bool

	// PreviewCap bounds preview bytes per file.
	PreviewCap int64

	// OutputDir receives recovered files when persisting.
	OutputDir string

	// Writer persists recovered files. Required unless PreviewOnly.
	Writer Writer

	// Strategies composes the scan passes. Zero selects
	// DefaultStrategies.
	Strategies Strategy

	// MaxReadFailures aborts the session after this many consecutive
	// unreadable buffers.
	MaxReadFailures int

	// OnProgress receives throttled progress snapshots. It is called
	// from the scanning goroutine and must return quickly.
	OnProgress func(types.ScanProgress)
}

// Validate applies defaults and checks that the configuration can run.
func (c *Config) Validate() error {
	if c.Device == "" && c.Source == nil {
		return ErrNoSource
	}
	if c.Strategies == 0 {
		c.Strategies = DefaultStrategies
	}
	c.Strategies |= StrategyDirect
	if c.PreviewCap <= 0 {
		c.PreviewCap = DefaultPreviewCap
	}
	if c.MaxReadFailures <= 0 {
		c.MaxReadFailures = DefaultMaxReadFailures
	}
	if c.Catalog == nil {
		c.Catalog = signature.Default()
	}
	if !c.PreviewOnly {
		if c.Writer == nil {
			return ErrNoWriter
		}
		if c.OutputDir == "" {
			return ErrNoOutput
		}
	}
	return nil
}
