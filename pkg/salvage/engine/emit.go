package engine

import (
	"errors"
	"fmt"
	"io"

	"github.com/salvagekit/salvage/pkg/salvage/dedup"
	"github.com/salvagekit/salvage/pkg/salvage/filter"
	"github.com/salvagekit/salvage/pkg/salvage/namer"
	"github.com/salvagekit/salvage/pkg/salvage/source"
	"github.com/salvagekit/salvage/pkg/salvage/types"
)

// emit runs one candidate through the admission pipeline: type filter,
// lazy name resolution, system and pattern filters, content-prefix dedup,
// session-unique naming, then preview capture or persistence. Name
// resolution happens at most once, and duplicates never consume a unique
// name suffix.
func (s *Session) emit(c types.Candidate) {
	s.stats.Detected++
	s.cover(c.Offset, c.End())

	var prefix []byte
	loadPrefix := func() []byte {
		if prefix == nil {
			prefix = s.readPrefix(c)
		}
		return prefix
	}

	// Office containers detect as ZIP; refine before the type stage so
	// allow-lists see the real type.
	if c.Type == types.TypeZip {
		c.Type = namer.RefineType(c.Type, loadPrefix())
	}

	var res namer.Resolution
	resolved := false
	admitted, reason := s.filt.Admit(c.Type, func() (string, string) {
		res = s.names.Resolve(c, loadPrefix())
		resolved = true
		return res.Raw, res.Name
	})
	if !admitted {
		switch reason {
		case filter.RejectedType:
			s.stats.RejectedType++
		case filter.RejectedSystem:
			s.stats.RejectedSystem++
		case filter.RejectedPattern:
			s.stats.RejectedPattern++
		}
		return
	}

	sum := dedup.Hash(loadPrefix())
	if s.seen.Seen(sum) {
		s.stats.Duplicates++
		return
	}
	c.Hash = sum

	if !resolved {
		res = s.names.Resolve(c, loadPrefix())
	}
	rf := types.RecoveredFile{Candidate: c, Name: s.names.Unique(res.Name)}

	s.stats.Found++
	s.found.Add(1)

	if s.cfg.PreviewOnly {
		rf.Preview = s.readPreview(c)
	} else {
		path, err := s.cfg.Writer.Persist(&rf, source.NewCandidateReader(s.src, c), s.cfg.OutputDir)
		if err != nil {
			if errors.Is(err, types.ErrAccessDenied) {
				s.fatal = fmt.Errorf("persisting %s: %w", rf.Name, err)
				return
			}
			s.errs = append(s.errs, types.ScanError{
				Offset: c.Offset,
				Length: c.Length,
				Error:  fmt.Sprintf("persist %s: %v", rf.Name, err),
			})
			return
		}
		rf.Path = path
	}

	s.files = append(s.files, rf)
	s.stats.Recovered++
	s.recovered.Add(1)
}

// readPrefix reads the content prefix hashed for deduplication and used
// for name extraction.
func (s *Session) readPrefix(c types.Candidate) []byte {
	return s.readContent(c, dedup.HashPrefixSize)
}

// readPreview reads bounded content for preview sessions.
func (s *Session) readPreview(c types.Candidate) []byte {
	return s.readContent(c, s.cfg.PreviewCap)
}

// readContent reads up to limit bytes of a candidate's recoverable
// content. Unreadable stretches shorten the result.
func (s *Session) readContent(c types.Candidate, limit int64) []byte {
	n := min(limit, c.ContentLength())
	if n <= 0 {
		return nil
	}
	buf := make([]byte, n)
	got, _ := io.ReadFull(source.NewCandidateReader(s.src, c), buf)
	return buf[:got]
}
