// Package writer persists recovered files to the local filesystem.
// Recovered content arrives as a stream because fragmented candidates are
// stitched together while reading; the writer never needs the whole file
// in memory.
package writer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/salvagekit/salvage/pkg/salvage/types"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// DirWriter writes recovered files into a flat output directory.
// Names are session-unique already; on-disk collisions come from earlier
// runs into the same directory and are resolved with numeric suffixes.
type DirWriter struct {
	// Compress wraps each file in a zstd stream and appends ".zst" to
	// its name.
	Compress bool
}

// Persist writes one recovered file under root and returns its path.
// The output directory is created on first use. Permission failures wrap
// ErrAccessDenied; a partially written file is removed on error.
func (w *DirWriter) Persist(rf *types.RecoveredFile, r io.Reader, root string) (string, error) {
	if err := os.MkdirAll(root, dirPerm); err != nil {
		return "", classify("create output directory", err)
	}

	f, path, err := w.create(root, rf.Name)
	if err != nil {
		return "", err
	}

	if err := w.copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// create opens the first non-colliding output file for name. The numeric
// suffix goes before the original extension, so "report.pdf" becomes
// "report_1.pdf" and, compressed, "report_1.pdf.zst".
func (w *DirWriter) create(root, name string) (*os.File, string, error) {
	for i := 0; ; i++ {
		candidate := name
		if i > 0 {
			ext := filepath.Ext(name)
			candidate = fmt.Sprintf("%s_%d%s", strings.TrimSuffix(name, ext), i, ext)
		}
		if w.Compress {
			candidate += ".zst"
		}

		path := filepath.Join(root, candidate)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePerm)
		if err == nil {
			return f, path, nil
		}
		if errors.Is(err, os.ErrExist) {
			continue
		}
		return nil, "", classify("create "+path, err)
	}
}

// copy streams content into the file, through a zstd encoder when
// compression is on.
func (w *DirWriter) copy(f *os.File, r io.Reader) error {
	if !w.Compress {
		_, err := io.Copy(f, r)
		return err
	}

	zw, err := zstd.NewWriter(f)
	if err != nil {
		return err
	}
	if _, err := io.Copy(zw, r); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}

// classify maps permission failures to the fatal sentinel so the session
// aborts instead of logging one error per file.
func classify(op string, err error) error {
	if errors.Is(err, os.ErrPermission) {
		return fmt.Errorf("%w: %s: %v", types.ErrAccessDenied, op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
