package source

// Drive describes a block device available for scanning.
type Drive struct {
	// Path is the device node, for example /dev/sda.
	Path string `json:"path"`

	// Size is the device capacity in bytes, zero when unknown.
	Size int64 `json:"size"`

	// Model is the hardware model string when the platform exposes one.
	Model string `json:"model,omitempty"`

	// Removable reports whether the platform flags the device removable.
	Removable bool `json:"removable"`
}

// ListDrives enumerates the block devices attached to this machine.
// Platforms without an enumeration implementation return
// errors.ErrUnsupported; scanning an explicit path still works there.
func ListDrives() ([]Drive, error) {
	return listDrives()
}
