package main

import (
	"testing"

	"github.com/salvagekit/salvage/pkg/salvage/history"
)

func TestRecordNotes(t *testing.T) {
	tests := []struct {
		name   string
		record history.Record
		want   string
	}{
		{
			name:   "clean run",
			record: history.Record{},
			want:   "",
		},
		{
			name:   "preview",
			record: history.Record{Preview: true},
			want:   "preview",
		},
		{
			name:   "cancelled",
			record: history.Record{Cancelled: true},
			want:   "cancelled",
		},
		{
			name:   "errors",
			record: history.Record{Errors: 4},
			want:   "4 errors",
		},
		{
			name:   "everything at once",
			record: history.Record{Preview: true, Cancelled: true, Errors: 1},
			want:   "preview, cancelled, 1 errors",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := recordNotes(tt.record); got != tt.want {
				t.Errorf("recordNotes() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestShortID(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want string
	}{
		{
			name: "uuid",
			id:   "f3b0c442-98fc-4c14-9afb-4c8996fb9242",
			want: "f3b0c442",
		},
		{
			name: "no dash",
			id:   "abc123",
			want: "abc123",
		},
		{
			name: "long without dash",
			id:   "abcdefghijklmnop",
			want: "abcdefg...",
		},
		{
			name: "leading dash",
			id:   "-abc",
			want: "-abc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shortID(tt.id); got != tt.want {
				t.Errorf("shortID(%q) = %q, want %q", tt.id, got, tt.want)
			}
		})
	}
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{
			name:   "short string unchanged",
			input:  "short",
			maxLen: 10,
			want:   "short",
		},
		{
			name:   "exact length unchanged",
			input:  "exactly10!",
			maxLen: 10,
			want:   "exactly10!",
		},
		{
			name:   "long string truncated",
			input:  "/dev/disk/by-id/usb-SanDisk_Ultra",
			maxLen: 20,
			want:   "/dev/disk/by-id/u...",
		},
		{
			name:   "tiny max length",
			input:  "abcdef",
			maxLen: 2,
			want:   "ab",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncateString(tt.input, tt.maxLen); got != tt.want {
				t.Errorf("truncateString(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
			}
		})
	}
}
