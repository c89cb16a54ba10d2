//go:build !linux && !darwin

package tuner

import (
	"errors"
	"fmt"
)

// Detect measures system memory. No probe is implemented for this
// platform; callers fall back to the conservative default budget.
func Detect() (SystemMemory, error) {
	return SystemMemory{}, fmt.Errorf("memory detection: %w", errors.ErrUnsupported)
}
