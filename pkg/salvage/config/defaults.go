// Package config provides configuration management for the salvage
// recovery tool.
package config

// Default configuration values for salvage.
const (
	// DefaultProfile is the memory profile used when none is configured.
	DefaultProfile = "balanced"

	// DefaultStrategies is the scan strategy list. The direct pass is
	// always on; this adds boundary sliding and fragment reassembly.
	DefaultStrategies = "sliding,fragments"

	// DefaultPreviewCap is the per-file preview size limit.
	DefaultPreviewCap = "1MiB"

	// DefaultOutputDir is where recovered files land when no directory
	// is given.
	DefaultOutputDir = "./recovered"

	// DefaultMaxReadFailures is how many consecutive unreadable regions
	// abort a scan.
	DefaultMaxReadFailures = 8

	// DefaultFormat is the report output format.
	DefaultFormat = "pretty"

	// DefaultHistoryLimit is how many session records the history store
	// retains.
	DefaultHistoryLimit = 50
)
