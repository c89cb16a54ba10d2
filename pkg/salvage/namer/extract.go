package namer

import (
	"bytes"
	"encoding/binary"
	"regexp"
	"strings"

	"github.com/salvagekit/salvage/pkg/salvage/types"
)

// nameScanWindow bounds how far into a candidate the extractors look.
const nameScanWindow = 4096

// extractEmbedded pulls a filename out of format metadata near the header.
func extractEmbedded(t types.FileType, data []byte) (string, bool) {
	if len(data) > nameScanWindow {
		data = data[:nameScanWindow]
	}
	switch t {
	case types.TypeZip, types.TypeDocx, types.TypeXlsx, types.TypePptx:
		return zipEntryName(data)
	case types.TypePDF:
		return pdfTitle(data)
	case types.TypeHTML:
		return htmlTitle(data)
	}
	return "", false
}

// officeInternals are archive entry prefixes that belong to the container
// format rather than the user's document. They make poor filenames.
var officeInternals = []string{
	"[content_types].xml",
	"_rels/",
	"docprops/",
	"word/",
	"xl/",
	"ppt/",
	"meta-inf/",
}

// zipEntryName reads the first local file header entry name. Office
// containers store internal part names there, which are skipped.
func zipEntryName(data []byte) (string, bool) {
	if len(data) < 30 || !bytes.HasPrefix(data, []byte("PK\x03\x04")) {
		return "", false
	}
	nameLen := int(binary.LittleEndian.Uint16(data[26:28]))
	if nameLen == 0 || 30+nameLen > len(data) {
		return "", false
	}
	name := string(data[30 : 30+nameLen])
	lower := strings.ToLower(name)
	for _, p := range officeInternals {
		if strings.HasPrefix(lower, p) {
			return "", false
		}
	}
	// Directory entries have no basename to use.
	if strings.HasSuffix(name, "/") {
		return "", false
	}
	return name, true
}

var pdfTitlePattern = regexp.MustCompile(`/Title\s*\(([^)\r\n]{1,200})\)`)

// pdfTitle extracts the document title from the PDF info dictionary.
func pdfTitle(data []byte) (string, bool) {
	m := pdfTitlePattern.FindSubmatch(data)
	if m == nil {
		return "", false
	}
	title := strings.TrimSpace(string(m[1]))
	if title == "" {
		return "", false
	}
	return title, true
}

var htmlTitlePattern = regexp.MustCompile(`(?is)<title[^>]*>\s*(.{1,200}?)\s*</title>`)

// htmlTitle extracts the page title.
func htmlTitle(data []byte) (string, bool) {
	m := htmlTitlePattern.FindSubmatch(data)
	if m == nil {
		return "", false
	}
	title := strings.TrimSpace(string(m[1]))
	if title == "" {
		return "", false
	}
	return title, true
}

// heuristicPatterns match filename-like tokens in content. All patterns
// contribute to a single frequency count; the most frequent token wins,
// ties going to the first seen.
var heuristicPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)filename\*?[=:]\s*"([^"\r\n]{3,200})"`),
	regexp.MustCompile(`(?i)filename\*?[=:]\s*([^"\s;,]{3,200})`),
	regexp.MustCompile(`(?i)\bsaved\s+as\s+"([^"\r\n]{3,200})"`),
	regexp.MustCompile(`[A-Za-z]:\\(?:[^\\/:*?"<>|\r\n]+\\)*([^\\/:*?"<>|\r\n]{3,200}\.\w{2,5})`),
	regexp.MustCompile(`"([^"\r\n]{3,120}\.\w{2,5})"`),
	regexp.MustCompile(`\b([\w\-.]{2,120}\.(?i:pdf|docx?|xlsx?|pptx?|zip|rar|jpe?g|png|gif|txt|csv|log|ini|html?|xml|json))\b`),
}

// extractHeuristic scans the candidate's leading bytes for filename-like
// tokens and returns the most frequent one.
func extractHeuristic(data []byte) (string, bool) {
	if len(data) > nameScanWindow {
		data = data[:nameScanWindow]
	}

	counts := make(map[string]int)
	var order []string
	for _, p := range heuristicPatterns {
		for _, m := range p.FindAllSubmatch(data, -1) {
			token := strings.TrimSpace(string(m[1]))
			if !plausibleFilename(token) {
				continue
			}
			if counts[token] == 0 {
				order = append(order, token)
			}
			counts[token]++
		}
	}
	if len(order) == 0 {
		return "", false
	}

	best := order[0]
	for _, token := range order[1:] {
		if counts[token] > counts[best] {
			best = token
		}
	}
	return best, true
}

// plausibleFilename rejects tokens that match the patterns but cannot be
// filenames: URLs, bare extensions, oversized strings.
func plausibleFilename(token string) bool {
	if len(token) < 3 || len(token) > 255 {
		return false
	}
	if strings.Contains(token, "://") {
		return false
	}
	if strings.HasPrefix(token, ".") {
		return false
	}
	return true
}

// officeMarkers map container-internal part prefixes to the office type
// they identify.
var officeMarkers = []struct {
	marker []byte
	t      types.FileType
}{
	{[]byte("word/"), types.TypeDocx},
	{[]byte("xl/"), types.TypeXlsx},
	{[]byte("ppt/"), types.TypePptx},
}

// RefineType narrows a generic archive detection using content markers.
// Office documents are ZIP containers; the part names inside distinguish
// Word, Excel, and PowerPoint. Other types pass through unchanged.
func RefineType(t types.FileType, data []byte) types.FileType {
	if t != types.TypeZip {
		return t
	}
	if len(data) > nameScanWindow {
		data = data[:nameScanWindow]
	}
	for _, m := range officeMarkers {
		if bytes.Contains(data, m.marker) {
			return m.t
		}
	}
	return t
}
