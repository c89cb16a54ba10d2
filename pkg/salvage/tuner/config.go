package tuner

import "github.com/salvagekit/salvage/pkg/salvage/types"

// Buffer sizing limits.
const (
	// MinBufferSize is the smallest drive read buffer. Below this the
	// per-read syscall overhead dominates scanning.
	MinBufferSize = 256 * types.KiB

	// MaxBufferSize is the hard ceiling for the drive read buffer. Reads
	// larger than this stop improving throughput and only add latency
	// between cancellation checks.
	MaxBufferSize = 64 * types.MiB
)

// Deduplication table sizing.
const (
	// hashBytesPerEntry estimates memory per deduplication entry:
	// the 8-byte hash in the ring plus map bucket overhead.
	hashBytesPerEntry = 128

	// minHashCapacity keeps deduplication useful even on tiny machines.
	minHashCapacity = 100_000

	// maxHashCapacity bounds the table no matter how much RAM exists.
	maxHashCapacity = 50_000_000
)

// Cleanup cadence.
const (
	// cleanupDivisor sets the maintenance interval as a fraction of the
	// memory target: smaller budgets trim state more often.
	cleanupDivisor = 4

	// minCleanupInterval is the most frequent maintenance cadence.
	minCleanupInterval = 64 * types.MiB

	// maxCleanupInterval is the least frequent maintenance cadence.
	maxCleanupInterval = 4 * types.GiB
)

// Fallback figures used when the system memory probe fails.
// 8 GiB total with half available is a reasonable assumption for the
// machines this tool runs on.
const (
	fallbackTotalRAM     = 8 * types.GiB
	fallbackAvailableRAM = 4 * types.GiB
)
