package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/salvagekit/salvage/pkg/salvage/signature"
	"github.com/salvagekit/salvage/pkg/salvage/types"
)

// pending is a footer-bearing candidate whose footer was not inside the
// buffer that held its header. It accumulates readable ranges until the
// footer turns up, the byte-distance cap is exceeded, or the drive ends.
type pending struct {
	sig *signature.Signature
	off int64

	// frags are the readable ranges seen since the header, merged while
	// contiguous. Skipped unreadable regions open a new fragment.
	frags []types.Fragment

	// searched is the absolute offset up to which the footer search has
	// run.
	searched int64
}

// run executes the scan: the main buffered pass, pending finalization, and
// the optional gap re-scan.
func (s *Session) run(ctx context.Context) error {
	extent := s.src.Extent()
	s.totalBytes.Store(extent)
	s.reportProgressForce()
	if extent <= 0 {
		return nil
	}

	bufSize := s.budget.BufferSize
	if bufSize <= 0 {
		bufSize = types.MiB
	}
	var overlap int64
	if s.cfg.Strategies.Has(StrategySliding) {
		overlap = int64(s.catalog.MaxHeaderLen() - 1)
		if overlap < 0 || overlap >= bufSize {
			overlap = 0
		}
	}
	advance := bufSize - overlap

	buf := make([]byte, bufSize)
	var pos, sinceCleanup int64
	consecutive := 0

	for pos < extent {
		if s.cancelRequested(ctx) {
			return nil
		}

		want := min(bufSize, extent-pos)
		n, err := s.src.ReadAt(buf[:want], pos)
		if n == 0 {
			if err == nil || errors.Is(err, io.EOF) {
				break
			}
			// Unreadable region: record it, skip one buffer, and abort
			// only when failures run back to back.
			s.recordRegionError(pos, want, err)
			s.noteUnreadable(pos, want)
			s.stats.ReadFailures++
			consecutive++
			if consecutive > s.cfg.MaxReadFailures {
				return fmt.Errorf("%d consecutive unreadable regions ending at offset %d: %w",
					consecutive, pos+want, types.ErrTooManyReadFailures)
			}
			pos += want
			sinceCleanup += want
			s.advanceScanned(pos)
			s.reportProgress()
			continue
		}
		consecutive = 0

		s.scanWindow(pos, buf[:n])
		if s.fatal != nil {
			return s.fatal
		}
		s.advanceScanned(pos + int64(n))

		step := advance
		if int64(n) < want {
			// Partial read: resume at the failure boundary so the next
			// attempt classifies the region.
			step = int64(n)
		}
		pos += step
		sinceCleanup += step
		if s.budget.CleanupInterval > 0 && sinceCleanup >= s.budget.CleanupInterval {
			s.cleanup()
			sinceCleanup = 0
		}
		s.reportProgress()
	}

	if !s.cancelled.Load() {
		s.finalizePendings(extent)
		if s.cfg.Strategies.Has(StrategyOffset) {
			s.gapPass(ctx, extent)
		}
		if s.fatal != nil {
			return s.fatal
		}
	}
	s.reportProgressForce()
	return nil
}

// cancelRequested folds context cancellation into the cooperative flag.
// Checked only between buffers.
func (s *Session) cancelRequested(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		s.cancelled.Store(true)
	default:
	}
	return s.cancelled.Load()
}

// advanceScanned raises the bytes-scanned high-water mark. Progress never
// moves backwards even though overlapping reads revisit bytes.
func (s *Session) advanceScanned(abs int64) {
	if abs > s.bytesScanned.Load() {
		s.bytesScanned.Store(abs)
	}
}

// scanWindow processes one buffer: feeds parked candidates first so their
// footers are found before new headers at later offsets, then matches
// signatures at every offset, then carves printable text.
func (s *Session) scanWindow(base int64, window []byte) {
	s.advancePendings(base, window)
	s.matchWindow(base, window)
	s.carveText(base, window)
}

// matchWindow signature-matches every byte offset of the window.
func (s *Session) matchWindow(base int64, window []byte) {
	for i := 0; i < len(window); i++ {
		sig := s.catalog.Match(window[i:])
		if sig == nil {
			continue
		}
		off := base + int64(i)
		key := detectionKey{sig.Type, off}
		if _, dup := s.detections[key]; dup {
			continue
		}
		s.detections[key] = struct{}{}
		s.sizeCandidate(sig, off, base, window, i)
	}
}

// sizeCandidate determines a matched candidate's length and either emits
// it or parks it for cross-buffer footer reassembly.
func (s *Session) sizeCandidate(sig *signature.Signature, off, base int64, window []byte, i int) {
	extent := s.src.Extent()

	if !sig.HasFooter() {
		s.emit(types.Candidate{
			Type:       sig.Type,
			Offset:     off,
			Length:     min(sig.MaxLength, extent-off),
			Confidence: types.ConfidenceMedium,
		})
		return
	}

	// Search forward for the footer, bounded by the signature's max
	// length within this window.
	limit := len(window)
	if capRel := int64(i) + sig.MaxLength; capRel < int64(limit) {
		limit = int(capRel)
	}
	if end := sig.FindFooter(window[i:limit], len(sig.Header)); end > 0 {
		s.emit(types.Candidate{
			Type:       sig.Type,
			Offset:     off,
			Length:     min(int64(end), extent-off),
			Confidence: types.ConfidenceHigh,
		})
		return
	}

	if int64(limit)-int64(i) >= sig.MaxLength {
		// The whole allowed span was visible and held no footer.
		s.emitAbandoned(sig, off, extent)
		return
	}

	if s.cfg.Strategies.Has(StrategyFragments) && !s.gapPhase {
		windowEnd := base + int64(len(window))
		s.pend = append(s.pend, &pending{
			sig:      sig,
			off:      off,
			frags:    []types.Fragment{{Offset: off, Length: windowEnd - off}},
			searched: windowEnd,
		})
		return
	}

	// No reassembly: the candidate truncates at the window edge.
	s.emit(types.Candidate{
		Type:       sig.Type,
		Offset:     off,
		Length:     base + int64(len(window)) - off,
		Confidence: types.ConfidenceMedium,
	})
}

// emitAbandoned emits a footer-bearing candidate whose footer never
// appeared within the byte-distance cap: truncated at the cap and flagged
// fragmented.
func (s *Session) emitAbandoned(sig *signature.Signature, off, extent int64) {
	length := min(sig.MaxLength, extent-off)
	s.emit(types.Candidate{
		Type:       sig.Type,
		Offset:     off,
		Length:     length,
		Confidence: types.ConfidenceMedium,
		Fragmented: true,
		Fragments:  []types.Fragment{{Offset: off, Length: length}},
	})
}

// advancePendings extends and resolves parked candidates against a new
// window.
func (s *Session) advancePendings(base int64, window []byte) {
	if len(s.pend) == 0 {
		return
	}
	windowEnd := base + int64(len(window))
	kept := s.pend[:0]
	for _, p := range s.pend {
		if !s.feedPending(p, base, window, windowEnd) {
			kept = append(kept, p)
		}
	}
	s.pend = kept
}

// feedPending advances one parked candidate. Returns true when the pending
// was resolved (footer found or cap exceeded) and emitted.
func (s *Session) feedPending(p *pending, base int64, window []byte, windowEnd int64) bool {
	// Accumulate readable coverage. A window starting past the last
	// fragment means an unreadable region was skipped in between.
	last := &p.frags[len(p.frags)-1]
	if base > last.End() {
		p.frags = append(p.frags, types.Fragment{Offset: base})
		last = &p.frags[len(p.frags)-1]
	}
	if windowEnd > last.End() {
		last.Length = windowEnd - last.Offset
	}

	// Resume the footer search just before the previous search end so a
	// footer straddling the seam is still seen.
	from := max(p.searched-int64(len(p.sig.Footer))+1, base) - base
	if end := p.sig.FindFooter(window, int(from)); end >= 0 {
		absEnd := base + int64(end)
		if absEnd-p.off <= p.sig.MaxLength+int64(p.sig.FooterSlack) {
			s.closePending(p, absEnd, types.ConfidenceHigh, false)
			return true
		}
	}
	p.searched = windowEnd

	if windowEnd-p.off >= p.sig.MaxLength {
		// Cap exceeded without a footer.
		s.closePending(p, p.off+p.sig.MaxLength, types.ConfidenceMedium, true)
		return true
	}
	return false
}

// finalizePendings emits every still-parked candidate truncated at the
// drive extent. Runs only on natural completion, never on cancellation.
func (s *Session) finalizePendings(extent int64) {
	for _, p := range s.pend {
		s.closePending(p, min(p.off+p.sig.MaxLength, extent), types.ConfidenceMedium, false)
	}
	s.pend = nil
}

// closePending trims a pending's fragments to the final end offset and
// emits the candidate.
func (s *Session) closePending(p *pending, absEnd int64, conf types.Confidence, capAbandoned bool) {
	extent := s.src.Extent()
	absEnd = min(absEnd, extent)

	frags := trimFragments(p.frags, absEnd)
	fragmented := capAbandoned || len(frags) > 1

	c := types.Candidate{
		Type:       p.sig.Type,
		Offset:     p.off,
		Length:     absEnd - p.off,
		Confidence: conf,
		Fragmented: fragmented,
	}
	if fragmented {
		c.Fragments = frags
	}
	s.emit(c)
}

// trimFragments drops or shortens fragments so none extends past end.
func trimFragments(frags []types.Fragment, end int64) []types.Fragment {
	out := make([]types.Fragment, 0, len(frags))
	for _, f := range frags {
		if f.Offset >= end {
			break
		}
		if f.End() > end {
			f.Length = end - f.Offset
		}
		if f.Length > 0 {
			out = append(out, f)
		}
	}
	return out
}

// carveText detects printable-text regions block-wise inside the window.
// Blocks are aligned to absolute drive offsets so overlapping reads agree
// on block boundaries; consecutive text blocks merge into one candidate,
// truncated at the window edge and at the text length cap.
func (s *Session) carveText(base int64, window []byte) {
	if !s.filt.WantsClass(types.ClassText) {
		return
	}

	start := base
	if rem := start % types.BlockSize; rem != 0 {
		start += types.BlockSize - rem
	}
	windowEnd := base + int64(len(window))

	var runStart, runEnd int64 = -1, 0
	var runType types.FileType

	flush := func() {
		if runStart < 0 {
			return
		}
		key := detectionKey{runType, runStart}
		if _, dup := s.detections[key]; !dup {
			s.detections[key] = struct{}{}
			s.emit(types.Candidate{
				Type:       runType,
				Offset:     runStart,
				Length:     runEnd - runStart,
				Confidence: types.ConfidenceLow,
			})
		}
		runStart = -1
	}

	for b := start; b+types.BlockSize <= windowEnd; b += types.BlockSize {
		if s.overlapsCovered(b, b+types.BlockSize) {
			flush()
			continue
		}
		t, ok := signature.DetectText(window[b-base : b-base+types.BlockSize])
		if !ok {
			flush()
			continue
		}
		if runStart < 0 {
			runStart, runEnd, runType = b, b+types.BlockSize, t
		} else {
			runEnd = b + types.BlockSize
		}
		if runEnd-runStart >= signature.TextMaxLength {
			flush()
		}
	}
	flush()
}

// gapPass re-scans regions no candidate covered, extended by one byte less
// than the longest header on each side and chunked with the same overlap,
// so headers missed at buffer seams during a non-sliding main pass are
// found. The detection set suppresses duplicates. Gaps are visited in
// ascending order.
func (s *Session) gapPass(ctx context.Context, extent int64) {
	s.gapPhase = true
	defer func() { s.gapPhase = false }()

	slack := int64(s.catalog.MaxHeaderLen() - 1)
	bufSize := s.budget.BufferSize
	buf := make([]byte, bufSize)

	for _, g := range s.gapRegions(extent) {
		start := max(g.Offset-slack, 0)
		end := min(g.End()+slack, extent)

		for pos := start; pos < end; {
			if s.cancelRequested(ctx) {
				return
			}
			want := min(bufSize, end-pos)
			n, err := s.src.ReadAt(buf[:want], pos)
			if n == 0 {
				if err != nil && !errors.Is(err, io.EOF) {
					s.recordRegionError(pos, want, err)
				}
				break
			}
			s.matchWindow(pos, buf[:n])
			if s.fatal != nil {
				return
			}
			step := int64(n)
			if pos+step < end {
				step = max(step-slack, 1)
			}
			pos += step
		}
	}
}

// gapRegions returns the complement of candidate coverage and unreadable
// regions over [0, extent), sorted ascending.
func (s *Session) gapRegions(extent int64) []types.Fragment {
	blocked := make([]types.Fragment, 0, len(s.covered)+len(s.unreadable))
	blocked = append(blocked, s.covered...)
	blocked = append(blocked, s.unreadable...)
	sort.Slice(blocked, func(i, j int) bool { return blocked[i].Offset < blocked[j].Offset })

	var gaps []types.Fragment
	var pos int64
	for _, b := range blocked {
		if b.Offset > pos {
			gaps = append(gaps, types.Fragment{Offset: pos, Length: b.Offset - pos})
		}
		if b.End() > pos {
			pos = b.End()
		}
	}
	if pos < extent {
		gaps = append(gaps, types.Fragment{Offset: pos, Length: extent - pos})
	}
	return gaps
}

// cover merges a candidate's span into the coverage list, kept sorted and
// non-overlapping.
func (s *Session) cover(start, end int64) {
	if end <= start {
		return
	}
	i := sort.Search(len(s.covered), func(j int) bool { return s.covered[j].End() >= start })
	j := i
	for j < len(s.covered) && s.covered[j].Offset <= end {
		if s.covered[j].Offset < start {
			start = s.covered[j].Offset
		}
		if s.covered[j].End() > end {
			end = s.covered[j].End()
		}
		j++
	}
	merged := types.Fragment{Offset: start, Length: end - start}
	s.covered = append(s.covered[:i], append([]types.Fragment{merged}, s.covered[j:]...)...)
}

// overlapsCovered reports whether any covered span intersects [start, end).
func (s *Session) overlapsCovered(start, end int64) bool {
	i := sort.Search(len(s.covered), func(j int) bool { return s.covered[j].End() > start })
	return i < len(s.covered) && s.covered[i].Offset < end
}

// noteUnreadable records a skipped region so the gap pass does not re-read
// it.
func (s *Session) noteUnreadable(off, length int64) {
	s.unreadable = append(s.unreadable, types.Fragment{Offset: off, Length: length})
}

// recordRegionError appends a scan error for an unreadable region.
func (s *Session) recordRegionError(off, length int64, err error) {
	s.errs = append(s.errs, types.ScanError{
		Offset: off,
		Length: length,
		Error:  fmt.Sprintf("%v: %v", types.ErrUnreadableRegion, err),
	})
}
