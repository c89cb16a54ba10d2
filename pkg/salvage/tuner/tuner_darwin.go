//go:build darwin

package tuner

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Detect measures system memory. On darwin (macOS) total physical memory
// comes from the hw.memsize sysctl.
func Detect() (SystemMemory, error) {
	memsize, err := unix.SysctlUint64("hw.memsize")
	if err != nil {
		return SystemMemory{}, fmt.Errorf("sysctl hw.memsize: %w", err)
	}

	total := int64(memsize)

	// Precise available memory on macOS requires host_statistics or
	// parsing vm_stat. Half of total is a conservative estimate that
	// accounts for the OS, other applications, and the file cache macOS
	// holds onto aggressively.
	return SystemMemory{Total: total, Available: total / 2}, nil
}
