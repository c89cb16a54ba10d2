package pattern

import (
	"testing"
)

func TestPattern_Match(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		input   string
		want    bool
	}{
		// Star matches zero or more characters.
		{name: "star suffix", pattern: "*.pdf", input: "report.pdf", want: true},
		{name: "star matches empty", pattern: "*.pdf", input: ".pdf", want: true},
		{name: "star rejects other extension", pattern: "*.pdf", input: "report.doc", want: false},
		{name: "star in middle", pattern: "report*.txt", input: "report_final_v2.txt", want: true},
		{name: "bare star", pattern: "*", input: "anything.bin", want: true},
		{name: "bare star matches empty", pattern: "*", input: "", want: true},

		// Percent matches exactly one character.
		{name: "percent one char", pattern: "doc_%.txt", input: "doc_1.txt", want: true},
		{name: "percent not two chars", pattern: "doc_%.txt", input: "doc_12.txt", want: false},
		{name: "percent not zero chars", pattern: "doc_%.txt", input: "doc_.txt", want: false},
		{name: "two percents", pattern: "img_%%.png", input: "img_42.png", want: true},

		// Case insensitivity.
		{name: "uppercase name", pattern: "*.pdf", input: "REPORT.PDF", want: true},
		{name: "uppercase pattern", pattern: "*.PDF", input: "report.pdf", want: true},

		// Match-all forms.
		{name: "empty pattern", pattern: "", input: "whatever", want: true},
		{name: "ALL keyword", pattern: "ALL", input: "whatever", want: true},
		{name: "all lowercase keyword", pattern: "all", input: "whatever", want: true},

		// Glob metacharacters are literal.
		{name: "literal question mark", pattern: "what?.txt", input: "what?.txt", want: true},
		{name: "literal question mark no wildcard", pattern: "what?.txt", input: "whatx.txt", want: false},
		{name: "literal brackets", pattern: "file[1].txt", input: "file[1].txt", want: true},
		{name: "literal brackets no class", pattern: "file[1].txt", input: "file1.txt", want: false},
		{name: "literal braces", pattern: "a{b}.log", input: "a{b}.log", want: true},

		// Exact names.
		{name: "exact match", pattern: "notes.txt", input: "notes.txt", want: true},
		{name: "exact mismatch", pattern: "notes.txt", input: "notes.txt.bak", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Compile(tt.pattern)
			if err != nil {
				t.Fatalf("Compile(%q) error = %v", tt.pattern, err)
			}
			if got := p.Match(tt.input); got != tt.want {
				t.Errorf("Compile(%q).Match(%q) = %v, want %v", tt.pattern, tt.input, got, tt.want)
			}
		})
	}
}

func TestPattern_NilMatchesAll(t *testing.T) {
	var p *Pattern
	if !p.Match("anything") {
		t.Error("nil pattern must match every name")
	}
	if !p.All() {
		t.Error("nil pattern must report All()")
	}
	if p.String() != "ALL" {
		t.Errorf("nil pattern String() = %q, want %q", p.String(), "ALL")
	}
}

func TestPattern_All(t *testing.T) {
	p, err := Compile("*.pdf")
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if p.All() {
		t.Error("real pattern must not report All()")
	}

	all, err := Compile("  ALL  ")
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if !all.All() {
		t.Error("ALL keyword must report All()")
	}
}
