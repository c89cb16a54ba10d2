// Package pattern implements the wildcard name matching used to narrow
// recovery to specific filenames. Two metacharacters are supported: '*'
// matches zero or more characters and '%' matches exactly one. Matching is
// case-insensitive.
package pattern

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

// ErrInvalidPattern indicates that a wildcard expression could not be
// compiled.
var ErrInvalidPattern = errors.New("invalid name pattern")

// Pattern is a compiled wildcard expression. A nil Pattern matches every
// name, as does the expression "ALL" or an empty string.
type Pattern struct {
	expr string
	all  bool
	g    glob.Glob
}

// Compile builds a Pattern from a wildcard expression. Every character
// except '*' and '%' matches literally, so glob metacharacters in the
// expression are escaped before compiling.
func Compile(expr string) (*Pattern, error) {
	trimmed := strings.TrimSpace(expr)
	if trimmed == "" || strings.EqualFold(trimmed, "all") {
		return &Pattern{expr: trimmed, all: true}, nil
	}

	var b strings.Builder
	for _, r := range strings.ToLower(trimmed) {
		switch r {
		case '*':
			b.WriteRune('*')
		case '%':
			// Exactly one character.
			b.WriteRune('?')
		case '?', '[', ']', '{', '}', ',', '!', '\\':
			b.WriteRune('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}

	g, err := glob.Compile(b.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPattern, expr)
	}
	return &Pattern{expr: trimmed, g: g}, nil
}

// Match reports whether name matches the pattern. A nil or match-all
// pattern accepts every name, including the empty string.
func (p *Pattern) Match(name string) bool {
	if p == nil || p.all {
		return true
	}
	return p.g.Match(strings.ToLower(name))
}

// All reports whether the pattern accepts every name. Filters use this to
// skip name resolution when no real pattern is configured.
func (p *Pattern) All() bool {
	return p == nil || p.all
}

// String returns the original expression.
func (p *Pattern) String() string {
	if p == nil || p.all {
		return "ALL"
	}
	return p.expr
}
