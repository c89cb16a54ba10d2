// Package tuner derives memory budgets for recovery sessions. It detects
// system RAM and turns a recovery profile into concrete buffer, hash-table,
// and cleanup-cadence limits so a scan behaves itself on anything from a
// laptop to a workstation with hundreds of gigabytes.
package tuner

import (
	"errors"
	"fmt"
	"strings"

	"github.com/salvagekit/salvage/pkg/salvage/types"
)

// ErrInvalidProfile indicates that a profile name was not recognized.
var ErrInvalidProfile = errors.New("unknown recovery profile")

// Profile selects how aggressively a session may use system memory.
type Profile uint8

// Recovery profiles.
const (
	// ProfileBalanced targets half of available RAM. The default.
	ProfileBalanced Profile = iota

	// ProfilePerformance targets three quarters of available RAM.
	ProfilePerformance

	// ProfileLowResources targets a quarter of available RAM, for recovery
	// on the machine that is also in day-to-day use.
	ProfileLowResources
)

// String returns the lowercase name of the profile.
func (p Profile) String() string {
	switch p {
	case ProfilePerformance:
		return "performance"
	case ProfileLowResources:
		return "low-resources"
	default:
		return "balanced"
	}
}

// ParseProfile parses a profile name. "low" is accepted as shorthand for
// "low-resources".
func ParseProfile(s string) (Profile, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "performance", "perf":
		return ProfilePerformance, nil
	case "balanced", "":
		return ProfileBalanced, nil
	case "low-resources", "lowresources", "low":
		return ProfileLowResources, nil
	default:
		return ProfileBalanced, fmt.Errorf("%w: %q", ErrInvalidProfile, s)
	}
}

// profileParams holds the sizing knobs for one profile.
type profileParams struct {
	// fraction of available RAM to target.
	fraction float64

	// floor is the minimum target regardless of how little RAM is free.
	floor int64

	// totalCap bounds the target as a fraction of total RAM so a machine
	// with little hardware is never driven into swap.
	totalCap float64
}

func (p Profile) params() profileParams {
	switch p {
	case ProfilePerformance:
		return profileParams{fraction: 0.75, floor: types.GiB, totalCap: 0.80}
	case ProfileLowResources:
		return profileParams{fraction: 0.25, floor: 256 * types.MiB, totalCap: 0.30}
	default:
		return profileParams{fraction: 0.50, floor: 512 * types.MiB, totalCap: 0.60}
	}
}

// SystemMemory contains detected system memory figures.
type SystemMemory struct {
	// Total is the total physical RAM in bytes.
	Total int64

	// Available is the RAM available for use in bytes.
	// This may be an estimate based on platform heuristics.
	Available int64
}

// MemoryBudget is the concrete resource plan for one session.
type MemoryBudget struct {
	// Profile the budget was derived from.
	Profile Profile `json:"profile"`

	// Target is the overall memory target in bytes.
	Target int64 `json:"target"`

	// BufferSize is the drive read buffer size in bytes.
	BufferSize int64 `json:"buffer_size"`

	// HashCapacity is the maximum number of deduplication hashes held.
	HashCapacity int `json:"hash_capacity"`

	// CleanupInterval is the number of scanned bytes between maintenance
	// passes. Smaller budgets clean up more often.
	CleanupInterval int64 `json:"cleanup_interval"`

	// TotalRAM and AvailableRAM record the inputs for logging.
	TotalRAM     int64 `json:"total_ram"`
	AvailableRAM int64 `json:"available_ram"`
}

// ComputeBudget derives a memory budget from a profile and measured RAM.
// It is pure: the same inputs always produce the same budget.
//
// The target is fraction×availableRAM raised to the profile floor, then
// capped at the profile's share of total RAM. Buffer size, hash capacity,
// and cleanup cadence all derive from the target with their own clamps.
func ComputeBudget(profile Profile, totalRAM, availableRAM int64) MemoryBudget {
	if totalRAM < 0 {
		totalRAM = 0
	}
	if availableRAM < 0 {
		availableRAM = 0
	}

	p := profile.params()
	target := int64(float64(availableRAM) * p.fraction)
	if target < p.floor {
		target = p.floor
	}
	if hardCap := int64(float64(totalRAM) * p.totalCap); target > hardCap {
		target = hardCap
	}

	return MemoryBudget{
		Profile:         profile,
		Target:          target,
		BufferSize:      clamp(target, MinBufferSize, MaxBufferSize),
		HashCapacity:    int(clamp(target/hashBytesPerEntry, minHashCapacity, maxHashCapacity)),
		CleanupInterval: clamp(target/cleanupDivisor, minCleanupInterval, maxCleanupInterval),
		TotalRAM:        totalRAM,
		AvailableRAM:    availableRAM,
	}
}

// MemoryProber measures system memory. The platform implementation is the
// default; tests and constrained environments inject their own.
type MemoryProber interface {
	Probe() (SystemMemory, error)
}

// platformProber uses the build-tag selected Detect implementation.
type platformProber struct{}

func (platformProber) Probe() (SystemMemory, error) {
	return Detect()
}

// StaticProber reports fixed figures. Useful in tests and when callers
// already know the machine.
type StaticProber struct {
	Memory SystemMemory
}

// Probe returns the configured figures.
func (p StaticProber) Probe() (SystemMemory, error) {
	return p.Memory, nil
}

// Manager turns profiles into budgets using a memory prober.
type Manager struct {
	prober MemoryProber
}

// NewManager creates a Manager. A nil prober selects the platform prober.
func NewManager(prober MemoryProber) *Manager {
	if prober == nil {
		prober = platformProber{}
	}
	return &Manager{prober: prober}
}

// Budget probes system memory and computes the budget for the profile.
// When the probe fails a conservative fallback budget is computed from
// assumed figures and returned together with a non-fatal error wrapping
// types.ErrResourceProbe; the session can proceed on the fallback.
func (m *Manager) Budget(profile Profile) (MemoryBudget, error) {
	mem, err := m.prober.Probe()
	if err != nil {
		budget := ComputeBudget(profile, fallbackTotalRAM, fallbackAvailableRAM)
		return budget, fmt.Errorf("%w: %v", types.ErrResourceProbe, err)
	}
	return ComputeBudget(profile, mem.Total, mem.Available), nil
}

func clamp(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
