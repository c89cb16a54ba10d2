// Package source provides read access to the drives and disk images a
// recovery scan reads from. Sources are positional readers with a known
// extent; the engine never seeks them, it reads buffer-sized windows at
// explicit offsets.
package source

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/salvagekit/salvage/pkg/salvage/types"
)

// DriveSource is the read surface the scan engine consumes.
type DriveSource interface {
	io.ReaderAt

	// Extent returns the total addressable size in bytes.
	Extent() int64
}

// File is a DriveSource backed by an opened file or block device.
type File struct {
	f      *os.File
	path   string
	extent int64
}

// Open opens a regular file, disk image, or block device for scanning.
// Permission failures are wrapped so callers can distinguish fatal access
// problems from transient read errors.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrPermission) {
			return nil, fmt.Errorf("open %s: %w", path, types.ErrAccessDenied)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	extent, err := extentOf(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("size %s: %w", path, err)
	}
	return &File{f: f, path: path, extent: extent}, nil
}

// extentOf determines the addressable size. Regular files report it from
// Stat; block devices report zero there, so seek to the end instead.
func extentOf(f *os.File) (int64, error) {
	info, err := f.Stat()
	if err != nil {
		return 0, err
	}
	if info.Mode().IsRegular() {
		return info.Size(), nil
	}

	end, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}
	return end, nil
}

// ReadAt implements io.ReaderAt.
func (s *File) ReadAt(p []byte, off int64) (int, error) {
	return s.f.ReadAt(p, off)
}

// Extent returns the total addressable size in bytes.
func (s *File) Extent() int64 {
	return s.extent
}

// Path returns the path the source was opened from.
func (s *File) Path() string {
	return s.path
}

// Close releases the underlying file.
func (s *File) Close() error {
	return s.f.Close()
}

// NewCandidateReader returns a reader over a candidate's recoverable
// content. Contiguous candidates read one range; fragmented candidates
// read each readable fragment in order, skipping the gaps between them.
func NewCandidateReader(src DriveSource, c types.Candidate) io.Reader {
	frags := c.Fragments
	if len(frags) == 0 {
		frags = []types.Fragment{{Offset: c.Offset, Length: c.Length}}
	}

	readers := make([]io.Reader, 0, len(frags))
	for _, fr := range frags {
		readers = append(readers, io.NewSectionReader(src, fr.Offset, fr.Length))
	}
	return io.MultiReader(readers...)
}
