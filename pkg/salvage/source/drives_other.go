//go:build !linux

package source

import (
	"errors"
	"fmt"
)

func listDrives() ([]Drive, error) {
	return nil, fmt.Errorf("drive enumeration: %w", errors.ErrUnsupported)
}
