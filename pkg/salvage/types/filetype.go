package types

import (
	"errors"
	"fmt"
	"strings"
)

// FileType identifies the detected format of a recovery candidate.
// The set is closed: adding a format means adding a constant here and a
// signature (or text heuristic) for it.
type FileType uint8

// Known file types.
const (
	TypeUnknown FileType = iota
	TypeText
	TypeCSV
	TypeLog
	TypeINI
	TypeJSON
	TypeHTML
	TypeXML
	TypePDF
	TypeDoc
	TypeXLS
	TypePPT
	TypeDocx
	TypeXlsx
	TypePptx
	TypeZip
	TypeRar
	TypeJpeg
	TypePNG
	TypeGIF
)

// Class groups file types into broad categories for filtering and display.
type Class uint8

// File type classes.
const (
	ClassUnknown Class = iota
	ClassText
	ClassMarkup
	ClassDocument
	ClassSpreadsheet
	ClassPresentation
	ClassArchive
	ClassImage
)

// ErrInvalidType indicates that a file type or type group name was not
// recognized.
var ErrInvalidType = errors.New("unknown file type")

// typeNames maps each type to its canonical lowercase name.
var typeNames = map[FileType]string{
	TypeUnknown: "unknown",
	TypeText:    "txt",
	TypeCSV:     "csv",
	TypeLog:     "log",
	TypeINI:     "ini",
	TypeJSON:    "json",
	TypeHTML:    "html",
	TypeXML:     "xml",
	TypePDF:     "pdf",
	TypeDoc:     "doc",
	TypeXLS:     "xls",
	TypePPT:     "ppt",
	TypeDocx:    "docx",
	TypeXlsx:    "xlsx",
	TypePptx:    "pptx",
	TypeZip:     "zip",
	TypeRar:     "rar",
	TypeJpeg:    "jpg",
	TypePNG:     "png",
	TypeGIF:     "gif",
}

// typeAliases maps alternative spellings to canonical types.
var typeAliases = map[string]FileType{
	"text": TypeText,
	"jpeg": TypeJpeg,
	"htm":  TypeHTML,
}

// TypeGroups maps group aliases to the types they expand to.
// Groups are accepted anywhere a type list is parsed, so users can ask for
// "image" instead of enumerating jpg, png, and gif.
var TypeGroups = map[string][]FileType{
	"text":         {TypeText, TypeCSV, TypeLog, TypeINI},
	"markup":       {TypeHTML, TypeXML, TypeJSON},
	"document":     {TypePDF, TypeDoc, TypeDocx},
	"office":       {TypeDoc, TypeXLS, TypePPT, TypeDocx, TypeXlsx, TypePptx},
	"spreadsheet":  {TypeXLS, TypeXlsx, TypeCSV},
	"presentation": {TypePPT, TypePptx},
	"archive":      {TypeZip, TypeRar},
	"image":        {TypeJpeg, TypePNG, TypeGIF},
}

// String returns the canonical lowercase name of the type.
func (t FileType) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "unknown"
}

// Ext returns the filename extension for the type, without the leading dot.
// Unknown types use "bin".
func (t FileType) Ext() string {
	if t == TypeUnknown {
		return "bin"
	}
	return t.String()
}

// Class returns the broad category the type belongs to.
func (t FileType) Class() Class {
	switch t {
	case TypeText, TypeCSV, TypeLog, TypeINI:
		return ClassText
	case TypeJSON, TypeHTML, TypeXML:
		return ClassMarkup
	case TypePDF, TypeDoc, TypeDocx:
		return ClassDocument
	case TypeXLS, TypeXlsx:
		return ClassSpreadsheet
	case TypePPT, TypePptx:
		return ClassPresentation
	case TypeZip, TypeRar:
		return ClassArchive
	case TypeJpeg, TypePNG, TypeGIF:
		return ClassImage
	default:
		return ClassUnknown
	}
}

// String returns the lowercase name of the class.
func (c Class) String() string {
	switch c {
	case ClassText:
		return "text"
	case ClassMarkup:
		return "markup"
	case ClassDocument:
		return "document"
	case ClassSpreadsheet:
		return "spreadsheet"
	case ClassPresentation:
		return "presentation"
	case ClassArchive:
		return "archive"
	case ClassImage:
		return "image"
	default:
		return "unknown"
	}
}

// AllTypes returns every known file type except TypeUnknown, in declaration
// order.
func AllTypes() []FileType {
	types := make([]FileType, 0, len(typeNames)-1)
	for t := TypeText; t <= TypeGIF; t++ {
		types = append(types, t)
	}
	return types
}

// ParseFileType parses a single type name. A leading dot is ignored, so
// both "pdf" and ".pdf" are accepted.
func ParseFileType(s string) (FileType, error) {
	name := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "."))
	if name == "" {
		return TypeUnknown, fmt.Errorf("%w: empty name", ErrInvalidType)
	}
	if t, ok := typeAliases[name]; ok {
		return t, nil
	}
	for t, n := range typeNames {
		if n == name && t != TypeUnknown {
			return t, nil
		}
	}
	return TypeUnknown, fmt.Errorf("%w: %q", ErrInvalidType, s)
}

// ParseTypeList parses a comma-separated list of type names and group
// aliases into a deduplicated slice, preserving first-seen order.
// An empty list, or any entry equal to "all", selects every type and
// returns nil, which downstream components treat as no restriction.
func ParseTypeList(s string) ([]FileType, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	var out []FileType
	seen := make(map[FileType]bool)
	add := func(t FileType) {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}

	for _, part := range strings.Split(s, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		if name == "" {
			continue
		}
		if name == "all" {
			return nil, nil
		}
		if group, ok := TypeGroups[name]; ok {
			for _, t := range group {
				add(t)
			}
			continue
		}
		t, err := ParseFileType(name)
		if err != nil {
			return nil, err
		}
		add(t)
	}
	return out, nil
}
