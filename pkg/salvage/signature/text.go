package signature

import (
	"bytes"
	"regexp"

	"github.com/salvagekit/salvage/pkg/salvage/types"
)

// Text carving parameters. Plain text has no magic bytes, so blocks are
// classified by printable-content heuristics instead of the catalog.
const (
	// MinTextRun is the minimum run of printable bytes a block needs to be
	// considered text.
	MinTextRun = 200

	// printableThreshold is the minimum fraction of printable bytes.
	printableThreshold = 0.85

	// TextMaxLength caps a merged run of text blocks.
	TextMaxLength = 10 * types.MiB
)

var (
	logLinePattern = regexp.MustCompile(`(?m)^\[?\d{4}[-/]\d{2}[-/]\d{2}[ T]\d{2}:\d{2}`)
	logLevelWords  = [][]byte{[]byte("ERROR"), []byte("WARN"), []byte("INFO"), []byte("DEBUG"), []byte("FATAL")}
	iniSection     = regexp.MustCompile(`(?m)^\[[^\]\r\n]+\]\s*$`)
	iniAssignment  = regexp.MustCompile(`(?m)^[A-Za-z0-9_.-]+\s*=`)
)

// DetectText classifies a block of raw bytes as recoverable text content.
// A block qualifies when it contains no NUL bytes, is mostly printable, and
// has at least one long printable run. The returned type refines plain text
// into JSON, INI, CSV, or log content when the structure is recognizable.
func DetectText(block []byte) (types.FileType, bool) {
	if len(block) < MinTextRun {
		return types.TypeUnknown, false
	}
	if bytes.IndexByte(block, 0x00) >= 0 {
		return types.TypeUnknown, false
	}

	printable := 0
	run := 0
	longestRun := 0
	for _, b := range block {
		if isPrintable(b) {
			printable++
			run++
			if run > longestRun {
				longestRun = run
			}
		} else {
			run = 0
		}
	}
	if longestRun < MinTextRun {
		return types.TypeUnknown, false
	}
	if float64(printable)/float64(len(block)) < printableThreshold {
		return types.TypeUnknown, false
	}

	return classifyText(block), true
}

// isPrintable reports whether b is a printable ASCII byte or common
// whitespace. High-bit bytes count as printable so Latin-1 and UTF-8
// continuation bytes do not disqualify otherwise clean text.
func isPrintable(b byte) bool {
	return (b >= 0x20 && b <= 0x7E) || b == '\t' || b == '\n' || b == '\r' || b >= 0x80
}

// classifyText refines a text block into a concrete text type. Checks run
// from most to least structured so JSON is not misread as CSV just because
// it contains commas.
func classifyText(block []byte) types.FileType {
	trimmed := bytes.TrimLeft(block, " \t\r\n")
	if len(trimmed) == 0 {
		return types.TypeText
	}

	if looksJSON(trimmed) {
		return types.TypeJSON
	}
	if looksINI(block) {
		return types.TypeINI
	}
	if looksCSV(block) {
		return types.TypeCSV
	}
	if looksLog(block) {
		return types.TypeLog
	}
	return types.TypeText
}

func looksJSON(trimmed []byte) bool {
	if trimmed[0] != '{' && trimmed[0] != '[' {
		return false
	}
	probe := trimmed
	if len(probe) > 512 {
		probe = probe[:512]
	}
	return bytes.Contains(probe, []byte(`":`)) || bytes.Contains(probe, []byte(`",`)) ||
		bytes.Contains(probe, []byte(`{"`)) || bytes.Contains(probe, []byte(`["`))
}

func looksINI(block []byte) bool {
	probe := block
	if len(probe) > 1024 {
		probe = probe[:1024]
	}
	return iniSection.Match(probe) && iniAssignment.Match(probe)
}

func looksCSV(block []byte) bool {
	lines := bytes.Split(block, []byte{'\n'})
	if len(lines) < 3 {
		return false
	}
	checked := 0
	fields := -1
	for _, line := range lines[:len(lines)-1] {
		line = bytes.TrimRight(line, "\r")
		if len(line) == 0 {
			continue
		}
		n := bytes.Count(line, []byte{','})
		if n == 0 {
			return false
		}
		if fields == -1 {
			fields = n
		} else if n != fields {
			return false
		}
		checked++
		if checked == 5 {
			break
		}
	}
	return checked >= 3
}

func looksLog(block []byte) bool {
	probe := block
	if len(probe) > 2048 {
		probe = probe[:2048]
	}
	if logLinePattern.Match(probe) {
		return true
	}
	hits := 0
	for _, w := range logLevelWords {
		if bytes.Contains(probe, w) {
			hits++
		}
	}
	return hits >= 2
}
