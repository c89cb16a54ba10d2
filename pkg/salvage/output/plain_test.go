package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlainFormatter_Format_BasicOutput(t *testing.T) {
	formatter := &PlainFormatter{}
	var buf bytes.Buffer

	result := &Result{
		Files: []FileInfo{
			{Name: "recovered_jpg_0.jpg", Path: "/mnt/rescue/recovered_jpg_0.jpg", Type: "jpg", Size: 1073741824, SizeHuman: "1.0 GiB", Confidence: "high"},
			{Name: "notes.txt", Path: "/mnt/rescue/notes.txt", Type: "txt", Size: 4096, SizeHuman: "4.0 KiB", Confidence: "low"},
		},
		Stats: ScanStats{
			Duration: 2 * time.Second,
		},
		Device:     "/dev/sdb1",
		TotalFiles: 2,
	}

	err := formatter.Format(&buf, result)
	require.NoError(t, err)

	output := buf.String()
	lines := strings.Split(strings.TrimRight(output, "\n"), "\n")

	// Header plus one line per file
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "TYPE")
	assert.Contains(t, lines[0], "SIZE")
	assert.Contains(t, lines[0], "CONF")
	assert.Contains(t, lines[0], "FILE")

	assert.Contains(t, lines[1], "jpg")
	assert.Contains(t, lines[1], "1.0 GiB")
	assert.Contains(t, lines[1], "/mnt/rescue/recovered_jpg_0.jpg")

	assert.Contains(t, lines[2], "txt")
	assert.Contains(t, lines[2], "low")
}

func TestPlainFormatter_Format_NoStyling(t *testing.T) {
	formatter := &PlainFormatter{}
	var buf bytes.Buffer

	result := &Result{
		Files: []FileInfo{
			{Name: "a.jpg", Type: "jpg", Size: 1024, SizeHuman: "1.0 KiB", Confidence: "high"},
		},
		TotalFiles: 1,
	}

	err := formatter.Format(&buf, result)
	require.NoError(t, err)

	// No ANSI escape sequences in plain output
	assert.NotContains(t, buf.String(), "\x1b[")
}

func TestPlainFormatter_Format_PreviewUsesNames(t *testing.T) {
	formatter := &PlainFormatter{}
	var buf bytes.Buffer

	result := &Result{
		Files: []FileInfo{
			{Name: "a.jpg", Type: "jpg", Size: 1024, SizeHuman: "1.0 KiB", Confidence: "high"},
		},
		Preview:    true,
		TotalFiles: 1,
	}

	err := formatter.Format(&buf, result)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "a.jpg")
}

func TestPlainFormatter_Format_Empty(t *testing.T) {
	formatter := &PlainFormatter{}
	var buf bytes.Buffer

	err := formatter.Format(&buf, &Result{})
	require.NoError(t, err)

	// Just the header
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
}

func TestPlainFormatter_Registration(t *testing.T) {
	formatter, err := Get("plain")
	require.NoError(t, err)
	assert.IsType(t, &PlainFormatter{}, formatter)
}
