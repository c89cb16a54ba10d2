package filter

import (
	"path/filepath"
	"strings"
)

// Windows system artifacts show up constantly on recovered consumer drives
// and are almost never what the user is looking for. The catalogs below
// drive the system-file exclusion stage.

// systemFileNames lists well-known system file names, lowercased.
var systemFileNames = map[string]bool{
	"desktop.ini":  true,
	"thumbs.db":    true,
	"$mft":         true,
	"$mftmirr":     true,
	"$logfile":     true,
	"$volume":      true,
	"$attrdef":     true,
	"$bitmap":      true,
	"$boot":        true,
	"$badclus":     true,
	"$secure":      true,
	"$upcase":      true,
	"$extend":      true,
	"pagefile.sys": true,
	"hiberfil.sys": true,
	"swapfile.sys": true,
	"bootmgr":      true,
	"ntldr":        true,
	"ntdetect.com": true,
	"boot.ini":     true,
	"io.sys":       true,
	"msdos.sys":    true,
	"autoexec.bat": true,
	"config.sys":   true,
	"ntuser.dat":   true,
	"usrclass.dat": true,
}

// systemExtensions lists extensions that mark executables and drivers.
var systemExtensions = map[string]bool{
	".sys": true,
	".dll": true,
	".exe": true,
	".drv": true,
	".vxd": true,
	".386": true,
}

// systemDirNames lists directory names whose contents are system files,
// lowercased. Matched against path components of raw extracted names.
var systemDirNames = map[string]bool{
	"windows":                   true,
	"winnt":                     true,
	"system32":                  true,
	"syswow64":                  true,
	"program files":             true,
	"program files (x86)":       true,
	"programdata":               true,
	"$recycle.bin":              true,
	"recycler":                  true,
	"system volume information": true,
	"recovery":                  true,
	"boot":                      true,
	"efi":                       true,
}

// IsSystemName reports whether a bare filename is a system artifact:
// a known system file, a system extension, or an NTFS metadata name
// (leading '$').
func IsSystemName(name string) bool {
	lower := strings.ToLower(strings.TrimSpace(name))
	if lower == "" {
		return false
	}
	if systemFileNames[lower] {
		return true
	}
	if systemExtensions[strings.ToLower(filepath.Ext(lower))] {
		return true
	}
	return strings.HasPrefix(lower, "$")
}

// IsSystemPath reports whether a raw extracted name carries path components
// that place it inside a system directory. Both slash styles are handled
// because extracted names frequently come from Windows content.
func IsSystemPath(raw string) bool {
	lower := strings.ToLower(strings.TrimSpace(raw))
	if lower == "" {
		return false
	}
	// Strip a drive letter so "c:\windows" splits cleanly.
	if len(lower) >= 2 && lower[1] == ':' {
		lower = lower[2:]
	}
	for _, part := range strings.FieldsFunc(lower, func(r rune) bool {
		return r == '/' || r == '\\'
	}) {
		if systemDirNames[strings.TrimSpace(part)] {
			return true
		}
	}
	return false
}
