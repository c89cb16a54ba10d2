package source

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/salvagekit/salvage/pkg/salvage/types"
)

func writeImage(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "image.bin")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("writing image: %v", err)
	}
	return path
}

func TestOpen(t *testing.T) {
	data := []byte("0123456789abcdef")
	path := writeImage(t, data)

	src, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer src.Close()

	if src.Extent() != int64(len(data)) {
		t.Errorf("Extent() = %d, want %d", src.Extent(), len(data))
	}
	if src.Path() != path {
		t.Errorf("Path() = %q, want %q", src.Path(), path)
	}

	buf := make([]byte, 4)
	n, err := src.ReadAt(buf, 6)
	if err != nil {
		t.Fatalf("ReadAt() error = %v", err)
	}
	if n != 4 || string(buf) != "6789" {
		t.Errorf("ReadAt() = %q (%d bytes), want %q", buf[:n], n, "6789")
	}
}

func TestOpen_Missing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "absent.img"))
	if err == nil {
		t.Fatal("Open() succeeded on missing path")
	}
}

func TestOpen_PermissionDenied(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("running as root, permission checks are bypassed")
	}

	path := filepath.Join(t.TempDir(), "locked.img")
	if err := os.WriteFile(path, []byte("data"), 0o000); err != nil {
		t.Fatalf("writing image: %v", err)
	}

	_, err := Open(path)
	if !errors.Is(err, types.ErrAccessDenied) {
		t.Errorf("Open() error = %v, want ErrAccessDenied", err)
	}
}

func TestFile_ReadAtPastEnd(t *testing.T) {
	src, err := Open(writeImage(t, []byte("short")))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer src.Close()

	buf := make([]byte, 16)
	n, err := src.ReadAt(buf, 3)
	if n != 2 || !errors.Is(err, io.EOF) {
		t.Errorf("ReadAt() = %d, %v; want 2, EOF", n, err)
	}
}

func TestNewCandidateReader_Contiguous(t *testing.T) {
	src, err := Open(writeImage(t, []byte("0123456789abcdef")))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer src.Close()

	c := types.Candidate{Type: types.TypeText, Offset: 4, Length: 8}
	got, err := io.ReadAll(NewCandidateReader(src, c))
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(got) != "456789ab" {
		t.Errorf("content = %q, want %q", got, "456789ab")
	}
}

func TestNewCandidateReader_Fragmented(t *testing.T) {
	src, err := Open(writeImage(t, []byte("0123456789abcdef")))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer src.Close()

	c := types.Candidate{
		Type:       types.TypePDF,
		Offset:     0,
		Length:     16,
		Fragmented: true,
		Fragments: []types.Fragment{
			{Offset: 0, Length: 4},
			{Offset: 12, Length: 4},
		},
	}

	got, err := io.ReadAll(NewCandidateReader(src, c))
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(got) != "0123cdef" {
		t.Errorf("content = %q, want %q", got, "0123cdef")
	}
}
