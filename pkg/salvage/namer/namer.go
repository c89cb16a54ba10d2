// Package namer resolves output filenames for recovery candidates. Raw
// carved bytes have no directory entry, so names are recovered from format
// metadata when possible, guessed from nearby content when not, and
// synthesized from the candidate's type and offset as a last resort. Names
// are unique within a session.
package namer

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/salvagekit/salvage/pkg/salvage/types"
)

// maxNameLength caps resolved filenames. Longer names are truncated while
// preserving the extension.
const maxNameLength = 200

// Source records how a name was obtained.
type Source uint8

// Name sources, from most to least trustworthy.
const (
	// SourceEmbedded names come from format metadata: archive entry
	// names, PDF titles, HTML titles.
	SourceEmbedded Source = iota

	// SourceHeuristic names were guessed from filename-like tokens in the
	// candidate's content.
	SourceHeuristic

	// SourceSynthesized names are built from the type and offset.
	SourceSynthesized
)

// String returns the lowercase name of the source.
func (s Source) String() string {
	switch s {
	case SourceEmbedded:
		return "embedded"
	case SourceHeuristic:
		return "heuristic"
	default:
		return "synthesized"
	}
}

// Resolution is the outcome of resolving one candidate's name.
type Resolution struct {
	// Raw is the extracted name before sanitization, empty for
	// synthesized names. The system-file filter inspects it because path
	// components are stripped from Name.
	Raw string

	// Name is the sanitized filename, guaranteed non-empty and carrying
	// an extension.
	Name string

	// Source records how the name was obtained.
	Source Source
}

// Resolver resolves and uniquifies names for one session. It is not safe
// for concurrent use; the engine is single-threaded.
type Resolver struct {
	used map[string]int
}

// New creates a Resolver with no allocated names.
func New() *Resolver {
	return &Resolver{used: make(map[string]int)}
}

// Resolve determines the base name for a candidate from its leading bytes.
// Resolution is deterministic: identical candidates with identical content
// always resolve to the same name.
func (r *Resolver) Resolve(c types.Candidate, data []byte) Resolution {
	if raw, ok := extractEmbedded(c.Type, data); ok {
		if name, ok := cleanName(raw, c.Type); ok {
			return Resolution{Raw: raw, Name: name, Source: SourceEmbedded}
		}
	}
	if heuristicEligible(c.Type) {
		if raw, ok := extractHeuristic(data); ok {
			if name, ok := cleanName(raw, c.Type); ok {
				return Resolution{Raw: raw, Name: name, Source: SourceHeuristic}
			}
		}
	}
	return Resolution{Name: Synthesize(c), Source: SourceSynthesized}
}

// heuristicEligible reports whether content-token guessing makes sense for
// a type. Compressed and binary formats produce coincidental matches, so
// only classes with readable content are scanned.
func heuristicEligible(t types.FileType) bool {
	switch t.Class() {
	case types.ClassText, types.ClassMarkup, types.ClassDocument:
		return true
	}
	return false
}

// Synthesize builds the fallback name for a candidate.
func Synthesize(c types.Candidate) string {
	return fmt.Sprintf("recovered_%s_%d.%s", c.Type, c.Offset, c.Type.Ext())
}

// Unique returns name, adjusted with a numeric suffix before the extension
// if the session already allocated it. Every returned name is recorded.
func (r *Resolver) Unique(name string) string {
	if r.used[name] == 0 {
		r.used[name] = 1
		return name
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for {
		n := r.used[name]
		r.used[name] = n + 1
		candidate := fmt.Sprintf("%s_%d%s", stem, n, ext)
		if r.used[candidate] == 0 {
			r.used[candidate] = 1
			return candidate
		}
	}
}

// cleanName sanitizes a raw extracted name and ensures it carries an
// extension matching something recoverable. Returns false when nothing
// usable survives sanitization.
func cleanName(raw string, t types.FileType) (string, bool) {
	name := Sanitize(raw)
	if !validName(name) {
		return "", false
	}
	if filepath.Ext(name) == "" {
		name = name + "." + t.Ext()
	}
	return name, true
}

// Sanitize strips path components, replaces characters that are invalid in
// filenames, trims leading and trailing dots and spaces, and truncates to
// a sane length while keeping the extension.
func Sanitize(raw string) string {
	name := raw
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}

	var b strings.Builder
	for _, r := range name {
		switch {
		case r < 0x20 || r == 0x7F:
			// Control characters are dropped outright.
		case strings.ContainsRune(`<>:"/\|?*`, r):
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}

	out := strings.Trim(b.String(), ". ")
	runes := []rune(out)
	if len(runes) > maxNameLength {
		ext := filepath.Ext(out)
		if len(ext) > 12 {
			ext = ""
		}
		keep := maxNameLength - len([]rune(ext))
		out = string(runes[:keep]) + ext
	}
	return out
}

// validName reports whether a sanitized name is worth keeping: non-empty
// and containing at least one letter or digit.
func validName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
