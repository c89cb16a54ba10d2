package signature

import (
	"bytes"
	"strings"
	"testing"

	"github.com/salvagekit/salvage/pkg/salvage/types"
)

func TestDetectText(t *testing.T) {
	tests := []struct {
		name  string
		block []byte
		want  types.FileType
		ok    bool
	}{
		{
			name:  "plain prose",
			block: []byte(strings.Repeat("The quick brown fox jumps over the lazy dog. ", 10)),
			want:  types.TypeText,
			ok:    true,
		},
		{
			name:  "json object",
			block: []byte(`{"name": "report", "size": 1024, "tags": ["a", "b"], "note": "` + strings.Repeat("x", 200) + `"}`),
			want:  types.TypeJSON,
			ok:    true,
		},
		{
			name:  "json array",
			block: []byte(`[{"id": 1}, {"id": 2}, {"note": "` + strings.Repeat("y", 200) + `"}]`),
			want:  types.TypeJSON,
			ok:    true,
		},
		{
			name: "ini file",
			block: []byte("[general]\n" +
				"name = salvage\n" +
				"retries = 3\n" +
				"comment = " + strings.Repeat("z", 200) + "\n"),
			want: types.TypeINI,
			ok:   true,
		},
		{
			name: "csv rows",
			block: []byte("id,name,size\n" +
				strings.Repeat("1,alpha,1000\n", 30)),
			want: types.TypeCSV,
			ok:   true,
		},
		{
			name: "timestamped log",
			block: []byte(strings.Repeat(
				"2024-01-15 10:23:45 request served in 12ms status 200 path /index\n", 5)),
			want: types.TypeLog,
			ok:   true,
		},
		{
			name: "log level words",
			block: []byte(strings.Repeat("INFO starting worker pool\n", 5) +
				strings.Repeat("ERROR connection refused retrying\n", 5)),
			want: types.TypeLog,
			ok:   true,
		},
		{
			name:  "too short",
			block: []byte("short"),
			ok:    false,
		},
		{
			name:  "nul bytes disqualify",
			block: append([]byte(strings.Repeat("clean text ", 30)), 0x00),
			ok:    false,
		},
		{
			name:  "mostly binary",
			block: append([]byte(strings.Repeat("A", MinTextRun)), bytes.Repeat([]byte{0x01}, 100)...),
			ok:    false,
		},
		{
			name:  "printable bytes without a long run",
			block: bytes.Repeat(append([]byte(strings.Repeat("a", 50)), 0x01), 20),
			ok:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DetectText(tt.block)
			if ok != tt.ok {
				t.Fatalf("DetectText() ok = %v, want %v", ok, tt.ok)
			}
			if !tt.ok {
				return
			}
			if got != tt.want {
				t.Errorf("DetectText() = %v, want %v", got, tt.want)
			}
		})
	}
}
