package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathsFormatter_Format(t *testing.T) {
	formatter := &PathsFormatter{}
	var buf bytes.Buffer

	result := &Result{
		Files: []FileInfo{
			{Name: "a.jpg", Path: "/mnt/rescue/a.jpg"},
			{Name: "b.png", Path: "/mnt/rescue/b.png"},
		},
		TotalFiles: 2,
	}

	err := formatter.Format(&buf, result)
	require.NoError(t, err)

	expected := "/mnt/rescue/a.jpg\n/mnt/rescue/b.png\n"
	assert.Equal(t, expected, buf.String())
}

func TestPathsFormatter_Format_PreviewFallsBackToNames(t *testing.T) {
	formatter := &PathsFormatter{}
	var buf bytes.Buffer

	result := &Result{
		Files: []FileInfo{
			{Name: "a.jpg"},
			{Name: "b.png"},
		},
		Preview:    true,
		TotalFiles: 2,
	}

	err := formatter.Format(&buf, result)
	require.NoError(t, err)

	assert.Equal(t, "a.jpg\nb.png\n", buf.String())
}

func TestPathsFormatter_Format_Empty(t *testing.T) {
	formatter := &PathsFormatter{}
	var buf bytes.Buffer

	err := formatter.Format(&buf, &Result{})
	require.NoError(t, err)
	assert.Empty(t, buf.String())
}

func TestPathsFormatter_Registration(t *testing.T) {
	formatter, err := Get("paths")
	require.NoError(t, err)
	assert.IsType(t, &PathsFormatter{}, formatter)
}

func TestNullFormatter_Format(t *testing.T) {
	formatter := &NullFormatter{}
	var buf bytes.Buffer

	result := &Result{
		Files: []FileInfo{
			{Name: "a.jpg", Path: "/mnt/rescue/a.jpg"},
			{Name: "with space.png", Path: "/mnt/rescue/with space.png"},
		},
		TotalFiles: 2,
	}

	err := formatter.Format(&buf, result)
	require.NoError(t, err)

	parts := strings.Split(strings.TrimRight(buf.String(), "\x00"), "\x00")
	require.Len(t, parts, 2)
	assert.Equal(t, "/mnt/rescue/a.jpg", parts[0])
	assert.Equal(t, "/mnt/rescue/with space.png", parts[1])
}

func TestNullFormatter_Registration(t *testing.T) {
	formatter, err := Get("null")
	require.NoError(t, err)
	assert.IsType(t, &NullFormatter{}, formatter)
}
