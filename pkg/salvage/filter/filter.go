// Package filter decides which recovery candidates are worth keeping. It
// runs a fixed admission chain: type allow-list, then system-file
// exclusion, then the user's name pattern. The first failing stage rejects
// the candidate, and name resolution is only paid for when a name-dependent
// stage actually runs.
package filter

import (
	"github.com/salvagekit/salvage/pkg/salvage/pattern"
	"github.com/salvagekit/salvage/pkg/salvage/types"
)

// Reason explains an admission decision.
type Reason uint8

// Admission decision reasons.
const (
	Admitted Reason = iota
	RejectedType
	RejectedSystem
	RejectedPattern
)

// String returns the lowercase name of the reason.
func (r Reason) String() string {
	switch r {
	case RejectedType:
		return "rejected-type"
	case RejectedSystem:
		return "rejected-system"
	case RejectedPattern:
		return "rejected-pattern"
	default:
		return "admitted"
	}
}

// Filter is a configured admission chain. The zero filter admits
// everything.
type Filter struct {
	allowed       map[types.FileType]bool
	excludeSystem bool
	pattern       *pattern.Pattern
}

// Option configures a Filter.
type Option func(*Filter)

// WithTypes restricts admission to the given types. A nil or empty slice
// means no restriction.
func WithTypes(allowed []types.FileType) Option {
	return func(f *Filter) {
		if len(allowed) == 0 {
			f.allowed = nil
			return
		}
		f.allowed = make(map[types.FileType]bool, len(allowed))
		for _, t := range allowed {
			f.allowed[t] = true
		}
	}
}

// WithSystemFiles controls whether Windows system files are excluded.
func WithSystemFiles(exclude bool) Option {
	return func(f *Filter) {
		f.excludeSystem = exclude
	}
}

// WithPattern restricts admission to names matching the pattern. A nil or
// match-all pattern means no restriction.
func WithPattern(p *pattern.Pattern) Option {
	return func(f *Filter) {
		f.pattern = p
	}
}

// New creates a Filter from the given options.
func New(opts ...Option) *Filter {
	f := &Filter{}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Admit runs the admission chain for a candidate. The resolve thunk
// produces the candidate's raw extracted name and its sanitized form; it is
// invoked at most once, and only when a name-dependent stage runs.
func (f *Filter) Admit(t types.FileType, resolve func() (raw, name string)) (bool, Reason) {
	if f.allowed != nil && !f.allowed[t] {
		return false, RejectedType
	}

	if !f.excludeSystem && f.pattern.All() {
		return true, Admitted
	}

	raw, name := resolve()
	if f.excludeSystem && (IsSystemPath(raw) || IsSystemName(name)) {
		return false, RejectedSystem
	}
	if !f.pattern.Match(name) {
		return false, RejectedPattern
	}
	return true, Admitted
}

// WantsType reports whether the type allow-list admits t.
func (f *Filter) WantsType(t types.FileType) bool {
	return f.allowed == nil || f.allowed[t]
}

// WantsClass reports whether any type in the class passes the allow-list.
// The engine uses this to skip text carving entirely when no text type can
// be admitted.
func (f *Filter) WantsClass(c types.Class) bool {
	if f.allowed == nil {
		return true
	}
	for t := range f.allowed {
		if t.Class() == c {
			return true
		}
	}
	return false
}
