//go:build linux

package tuner

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Detect measures system memory. On linux it uses the sysinfo syscall,
// which reports sizes in units of mem_unit bytes.
func Detect() (SystemMemory, error) {
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return SystemMemory{}, fmt.Errorf("sysinfo: %w", err)
	}

	unit := int64(info.Unit)
	if unit == 0 {
		unit = 1
	}

	// Freeram excludes page cache, so it understates what the kernel
	// would hand us under pressure. Counting buffers back in gets closer
	// to the /proc/meminfo "available" figure without parsing it.
	total := int64(info.Totalram) * unit
	available := (int64(info.Freeram) + int64(info.Bufferram)) * unit
	if available > total {
		available = total
	}

	return SystemMemory{Total: total, Available: available}, nil
}
