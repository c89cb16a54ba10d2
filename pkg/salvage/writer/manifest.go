package writer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/salvagekit/salvage/pkg/salvage/types"
)

// ManifestName is the filename of the per-run recovery manifest written
// into the output directory.
const ManifestName = "salvage_manifest.json"

// Manifest records what one recovery session wrote, so a later look at the
// output directory can tell which drive the files came from and where on
// it they sat.
type Manifest struct {
	SessionID string    `json:"session_id"`
	Device    string    `json:"device,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	TotalFiles int64 `json:"total_files"`
	TotalBytes int64 `json:"total_bytes"`

	Files []types.RecoveredFile `json:"files"`
}

// NewManifest builds a manifest for a set of persisted files.
func NewManifest(sessionID, device string, files []types.RecoveredFile) Manifest {
	m := Manifest{
		SessionID: sessionID,
		Device:    device,
		CreatedAt: time.Now().UTC(),
		Files:     files,
	}
	for _, f := range files {
		m.TotalFiles++
		m.TotalBytes += f.ContentLength()
	}
	return m
}

// WriteManifest writes the manifest into root atomically, via a temp file
// and rename, so a crash never leaves a truncated manifest behind.
func WriteManifest(root string, m Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}

	path := filepath.Join(root, ManifestName)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, filePerm); err != nil {
		return classify("write manifest", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename manifest: %w", err)
	}
	return nil
}

// ReadManifest loads a previously written manifest from root.
func ReadManifest(root string) (Manifest, error) {
	data, err := os.ReadFile(filepath.Join(root, ManifestName))
	if err != nil {
		return Manifest{}, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("parse manifest: %w", err)
	}
	return m, nil
}
