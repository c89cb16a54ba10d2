//go:build linux

package source

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

const sysBlockDir = "/sys/block"

// sectorSize is the unit /sys/block/<dev>/size counts in, independent of
// the device's logical sector size.
const sectorSize = 512

// listDrives enumerates block devices from sysfs. Virtual devices that
// cannot hold recoverable data are skipped.
func listDrives() ([]Drive, error) {
	entries, err := os.ReadDir(sysBlockDir)
	if err != nil {
		return nil, err
	}

	var drives []Drive
	for _, e := range entries {
		name := e.Name()
		if skipDevice(name) {
			continue
		}

		d := Drive{Path: "/dev/" + name}
		if b, err := os.ReadFile(filepath.Join(sysBlockDir, name, "size")); err == nil {
			if sectors, err := strconv.ParseInt(strings.TrimSpace(string(b)), 10, 64); err == nil {
				d.Size = sectors * sectorSize
			}
		}
		if b, err := os.ReadFile(filepath.Join(sysBlockDir, name, "device", "model")); err == nil {
			d.Model = strings.TrimSpace(string(b))
		}
		if b, err := os.ReadFile(filepath.Join(sysBlockDir, name, "removable")); err == nil {
			d.Removable = strings.TrimSpace(string(b)) == "1"
		}
		drives = append(drives, d)
	}

	sort.Slice(drives, func(i, j int) bool { return drives[i].Path < drives[j].Path })
	return drives, nil
}

// skipDevice filters loopback, ramdisk, and device-mapper entries.
func skipDevice(name string) bool {
	for _, prefix := range []string{"loop", "ram", "zram", "dm-"} {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}
