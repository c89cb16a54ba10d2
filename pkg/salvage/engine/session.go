// Package engine implements the signature-driven recovery scan. A Session
// reads a drive source in budgeted buffers, matches signature headers at
// every byte offset, reassembles footer-bearing candidates across buffers,
// and feeds survivors of the filter and dedup stages to a writer or a
// preview collector. Execution is single-threaded and cooperative:
// cancellation and progress reporting happen only at buffer boundaries, so
// no partially built candidate is ever exposed.
package engine

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/salvagekit/salvage/pkg/salvage/dedup"
	"github.com/salvagekit/salvage/pkg/salvage/filter"
	"github.com/salvagekit/salvage/pkg/salvage/namer"
	"github.com/salvagekit/salvage/pkg/salvage/pattern"
	"github.com/salvagekit/salvage/pkg/salvage/signature"
	"github.com/salvagekit/salvage/pkg/salvage/source"
	"github.com/salvagekit/salvage/pkg/salvage/tuner"
	"github.com/salvagekit/salvage/pkg/salvage/types"
)

// Stats aggregates the session counters reported alongside results.
type Stats struct {
	// BytesScanned is the number of drive bytes examined, including
	// skipped unreadable regions.
	BytesScanned int64 `json:"bytes_scanned"`

	// Detected counts raw signature and text detections before
	// filtering.
	Detected int64 `json:"detected"`

	// Found counts candidates that survived filtering and dedup.
	Found int64 `json:"found"`

	// Recovered counts files persisted or previewed.
	Recovered int64 `json:"recovered"`

	// Rejection counters, one per filter stage.
	RejectedType    int64 `json:"rejected_type"`
	RejectedSystem  int64 `json:"rejected_system"`
	RejectedPattern int64 `json:"rejected_pattern"`

	// Duplicates counts candidates dropped by the content-hash set.
	Duplicates int64 `json:"duplicates"`

	// ReadFailures counts unreadable buffers that were skipped.
	ReadFailures int64 `json:"read_failures"`
}

// Report is the outcome of a completed or cancelled session.
type Report struct {
	ID         string             `json:"id"`
	Device     string             `json:"device"`
	Profile    tuner.Profile      `json:"profile"`
	Strategies Strategy           `json:"-"`
	Budget     tuner.MemoryBudget `json:"budget"`
	Preview    bool               `json:"preview"`

	Files    []types.RecoveredFile `json:"files"`
	Stats    Stats                 `json:"stats"`
	Errors   []types.ScanError     `json:"errors,omitempty"`
	Warnings []string              `json:"warnings,omitempty"`

	Cancelled bool          `json:"cancelled"`
	StartedAt time.Time     `json:"started_at"`
	Elapsed   time.Duration `json:"elapsed"`
}

// Session runs one recovery scan over one drive source. Create it with
// New, run it with Start, poll Progress from any goroutine, and request a
// cooperative stop with Cancel.
type Session struct {
	id      string
	cfg     Config
	catalog *signature.Catalog
	filt    *filter.Filter
	names   *namer.Resolver

	// Set during Start.
	src    source.DriveSource
	budget tuner.MemoryBudget
	seen   *dedup.Set

	// Atomic counters so Progress can be polled concurrently.
	bytesScanned atomic.Int64
	totalBytes   atomic.Int64
	found        atomic.Int64
	recovered    atomic.Int64
	memoryUsed   atomic.Int64
	startNano    atomic.Int64
	lastProgress atomic.Int64
	cancelled    atomic.Bool

	// Scan state owned by the loop goroutine.
	files      []types.RecoveredFile
	errs       []types.ScanError
	stats      Stats
	warnings   []string
	pend       []*pending
	detections map[detectionKey]struct{}
	covered    []types.Fragment
	unreadable []types.Fragment
	gapPhase   bool
	fatal      error
}

// detectionKey identifies a detection by type and absolute offset, so the
// overlap between adjacent buffers cannot emit the same candidate twice.
type detectionKey struct {
	t   types.FileType
	off int64
}

// New validates the configuration and prepares a session. The drive is not
// opened until Start.
func New(cfg Config) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("session config: %w", err)
	}

	pat, err := pattern.Compile(cfg.Pattern)
	if err != nil {
		return nil, fmt.Errorf("session config: %w", err)
	}

	return &Session{
		id:      uuid.NewString(),
		cfg:     cfg,
		catalog: cfg.Catalog,
		filt: filter.New(
			filter.WithTypes(cfg.Types),
			filter.WithSystemFiles(cfg.FilterSystem),
			filter.WithPattern(pat),
		),
		names:      namer.New(),
		detections: make(map[detectionKey]struct{}),
	}, nil
}

// ID returns the session identifier used in reports and history.
func (s *Session) ID() string {
	return s.id
}

// Cancel requests a cooperative stop. The in-flight buffer completes and
// the session returns the candidates accumulated so far.
func (s *Session) Cancel() {
	s.cancelled.Store(true)
}

// Progress returns a consistent snapshot of the session counters. Safe to
// call from any goroutine at any time.
func (s *Session) Progress() types.ScanProgress {
	var elapsed time.Duration
	if start := s.startNano.Load(); start > 0 {
		elapsed = time.Duration(time.Now().UnixNano() - start)
	}
	return types.ScanProgress{
		BytesScanned:    s.bytesScanned.Load(),
		TotalBytes:      s.totalBytes.Load(),
		CandidatesFound: s.found.Load(),
		Recovered:       s.recovered.Load(),
		MemoryUsed:      s.memoryUsed.Load(),
		Elapsed:         elapsed,
	}
}

// Start runs the session to completion and returns its report. Fatal
// errors (inaccessible drive, too many consecutive read failures, an
// unwritable output root) abort with an error; cancellation is not an
// error and returns the accumulated results with Cancelled set.
func (s *Session) Start(ctx context.Context) (*Report, error) {
	startedAt := time.Now()
	s.startNano.Store(startedAt.UnixNano())

	src := s.cfg.Source
	if src == nil {
		f, err := source.Open(s.cfg.Device)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		src = f
	}
	s.src = src

	if s.cfg.Budget != nil {
		s.budget = *s.cfg.Budget
	} else {
		b, err := tuner.NewManager(nil).Budget(s.cfg.Profile)
		if err != nil {
			// Probe failures fall back to a conservative budget and
			// the session proceeds.
			s.warnings = append(s.warnings, err.Error())
		}
		s.budget = b
	}
	s.seen = dedup.New(int(s.budget.HashCapacity))

	if err := s.run(ctx); err != nil {
		return nil, err
	}

	s.stats.BytesScanned = s.bytesScanned.Load()
	return &Report{
		ID:         s.id,
		Device:     s.cfg.Device,
		Profile:    s.cfg.Profile,
		Strategies: s.cfg.Strategies,
		Budget:     s.budget,
		Preview:    s.cfg.PreviewOnly,
		Files:      s.files,
		Stats:      s.stats,
		Errors:     s.errs,
		Warnings:   s.warnings,
		Cancelled:  s.cancelled.Load(),
		StartedAt:  startedAt,
		Elapsed:    time.Since(startedAt),
	}, nil
}

// cleanup runs on the cleanup cadence: trims the dedup set and refreshes
// the memory gauge.
func (s *Session) cleanup() {
	s.seen.Trim()
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	s.memoryUsed.Store(int64(ms.HeapAlloc))
}

// reportProgress invokes the progress callback, throttled to one call per
// 10ms.
func (s *Session) reportProgress() {
	if s.cfg.OnProgress == nil {
		return
	}
	now := time.Now().UnixMilli()
	last := s.lastProgress.Load()
	if now-last < 10 {
		return
	}
	if !s.lastProgress.CompareAndSwap(last, now) {
		return
	}
	s.cfg.OnProgress(s.Progress())
}

// reportProgressForce bypasses the throttle for state changes like session
// start and completion.
func (s *Session) reportProgressForce() {
	if s.cfg.OnProgress == nil {
		return
	}
	s.lastProgress.Store(time.Now().UnixMilli())
	s.cfg.OnProgress(s.Progress())
}
