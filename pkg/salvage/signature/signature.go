// Package signature provides the catalog of byte signatures used to detect
// recoverable files in raw drive content. A signature pairs a header magic
// with an optional footer and a maximum plausible length; the catalog is
// built once at session start and is immutable afterwards.
package signature

import (
	"bytes"
	"sort"

	"github.com/salvagekit/salvage/pkg/salvage/types"
)

// Signature describes how to recognize one file format in raw bytes.
type Signature struct {
	// Type is the file type this signature detects. Several signatures may
	// share a type (GIF87a and GIF89a both map to TypeGIF).
	Type types.FileType

	// Header is the magic byte sequence that starts the format.
	Header []byte

	// Footer is the byte sequence that terminates the format, or nil when
	// the format has no reliable terminator.
	Footer []byte

	// FooterSlack is the number of trailing bytes that belong to the file
	// after the footer match (the ZIP end-of-central-directory record
	// continues for 18 bytes past its magic).
	FooterSlack int

	// MaxLength is the largest plausible file size for the format. It
	// bounds footer searches and sizes footer-less candidates.
	MaxLength int64
}

// HasFooter reports whether the format has a terminating byte sequence.
func (s *Signature) HasFooter() bool {
	return len(s.Footer) > 0
}

// FindFooter returns the offset just past the footer (including slack) for
// the first footer occurrence in data, or -1 when the footer is absent.
// The search starts at the given offset. The returned end may lie past
// len(data) when the footer sits near the window's edge: the slack bytes
// are sized, not matched, so they need not be present. Callers clamp to
// the drive extent.
func (s *Signature) FindFooter(data []byte, from int) int {
	if !s.HasFooter() || from < 0 || from >= len(data) {
		return -1
	}
	i := bytes.Index(data[from:], s.Footer)
	if i < 0 {
		return -1
	}
	return from + i + len(s.Footer) + s.FooterSlack
}

// Match pairs a signature with the window offset where its header matched.
type Match struct {
	Sig    *Signature
	Offset int
}

// Catalog is an immutable collection of signatures supporting best-match
// lookups. Construct it once with NewCatalog; concurrent readers are safe
// because nothing mutates after construction.
type Catalog struct {
	sigs      []*Signature
	byFirst   [256][]*Signature
	maxHeader int
	minHeader int
}

// NewCatalog builds a catalog from the given signatures. Registration order
// is significant: when two headers of equal length match at the same offset,
// the earlier registration wins.
func NewCatalog(sigs ...Signature) *Catalog {
	c := &Catalog{minHeader: int(^uint(0) >> 1)}
	for i := range sigs {
		sig := sigs[i]
		if len(sig.Header) == 0 {
			continue
		}
		s := &sig
		c.sigs = append(c.sigs, s)
		c.byFirst[sig.Header[0]] = append(c.byFirst[sig.Header[0]], s)
		if len(sig.Header) > c.maxHeader {
			c.maxHeader = len(sig.Header)
		}
		if len(sig.Header) < c.minHeader {
			c.minHeader = len(sig.Header)
		}
	}
	if len(c.sigs) == 0 {
		c.minHeader = 0
	}

	// Longest header first within each bucket; stable sort preserves
	// registration order between equal lengths, which makes best-match
	// selection a linear scan stopping at the first hit.
	for b := range c.byFirst {
		bucket := c.byFirst[b]
		sort.SliceStable(bucket, func(i, j int) bool {
			return len(bucket[i].Header) > len(bucket[j].Header)
		})
	}
	return c
}

// Default returns a catalog of the built-in signatures.
func Default() *Catalog {
	return NewCatalog(Builtin()...)
}

// Len returns the number of registered signatures.
func (c *Catalog) Len() int {
	return len(c.sigs)
}

// MaxHeaderLen returns the length of the longest registered header.
// Sliding scans overlap adjacent buffers by MaxHeaderLen()-1 bytes so a
// header straddling a buffer boundary is still seen whole.
func (c *Catalog) MaxHeaderLen() int {
	return c.maxHeader
}

// MinHeaderLen returns the length of the shortest registered header.
func (c *Catalog) MinHeaderLen() int {
	return c.minHeader
}

// Match returns the best signature whose header matches at the start of the
// window: the longest matching header wins, ties broken by registration
// order. A header that would extend past the window does not match. Returns
// nil when nothing matches.
func (c *Catalog) Match(window []byte) *Signature {
	if len(window) == 0 {
		return nil
	}
	for _, s := range c.byFirst[window[0]] {
		if len(s.Header) <= len(window) && bytes.HasPrefix(window, s.Header) {
			return s
		}
	}
	return nil
}

// Lookup scans every offset of the window in ascending order and returns
// the first offset with a header match, with the best signature at that
// offset. The boolean is false when no offset matches.
func (c *Catalog) Lookup(window []byte) (Match, bool) {
	for off := 0; off < len(window); off++ {
		if s := c.Match(window[off:]); s != nil {
			return Match{Sig: s, Offset: off}, true
		}
	}
	return Match{}, false
}
