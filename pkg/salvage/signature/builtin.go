package signature

import "github.com/salvagekit/salvage/pkg/salvage/types"

// Builtin returns the built-in signature table. Slice order is the
// registration order used to break ties between headers of equal length.
//
// Office Open XML containers (docx, xlsx, pptx) share the ZIP local file
// header and are detected as TypeZip here; the name resolver refines the
// name from the archive's first entry. Legacy Office formats (doc, xls,
// ppt) share the OLE2 compound-document magic and surface as TypeDoc.
func Builtin() []Signature {
	return []Signature{
		{
			Type:      types.TypePDF,
			Header:    []byte("%PDF"),
			Footer:    []byte("%%EOF"),
			MaxLength: 64 * types.MiB,
		},
		{
			Type:      types.TypeDoc,
			Header:    []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1},
			MaxLength: 64 * types.MiB,
		},
		{
			// ZIP local file header. The footer is the end-of-central-directory
			// magic, whose record runs 18 more bytes before the comment.
			Type:        types.TypeZip,
			Header:      []byte{0x50, 0x4B, 0x03, 0x04},
			Footer:      []byte{0x50, 0x4B, 0x05, 0x06},
			FooterSlack: 18,
			MaxLength:   256 * types.MiB,
		},
		{
			// Empty ZIP archives are just an end-of-central-directory record.
			Type:      types.TypeZip,
			Header:    []byte{0x50, 0x4B, 0x05, 0x06},
			MaxLength: 4 * types.KiB,
		},
		{
			Type:      types.TypeRar,
			Header:    []byte("Rar!\x1a\x07\x00"),
			MaxLength: 256 * types.MiB,
		},
		{
			// RAR 5.x adds a format-version byte to the marker.
			Type:      types.TypeRar,
			Header:    []byte("Rar!\x1a\x07\x01\x00"),
			MaxLength: 256 * types.MiB,
		},
		{
			Type:      types.TypeJpeg,
			Header:    []byte{0xFF, 0xD8, 0xFF},
			Footer:    []byte{0xFF, 0xD9},
			MaxLength: 32 * types.MiB,
		},
		{
			Type:      types.TypePNG,
			Header:    []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A},
			Footer:    []byte{0x49, 0x45, 0x4E, 0x44, 0xAE, 0x42, 0x60, 0x82},
			MaxLength: 32 * types.MiB,
		},
		{
			Type:      types.TypeGIF,
			Header:    []byte("GIF87a"),
			Footer:    []byte{0x00, 0x3B},
			MaxLength: 16 * types.MiB,
		},
		{
			Type:      types.TypeGIF,
			Header:    []byte("GIF89a"),
			Footer:    []byte{0x00, 0x3B},
			MaxLength: 16 * types.MiB,
		},
		{
			Type:      types.TypeHTML,
			Header:    []byte("<!DOCTYPE html"),
			Footer:    []byte("</html>"),
			MaxLength: 4 * types.MiB,
		},
		{
			Type:      types.TypeHTML,
			Header:    []byte("<html"),
			Footer:    []byte("</html>"),
			MaxLength: 4 * types.MiB,
		},
		{
			Type:      types.TypeXML,
			Header:    []byte("<?xml"),
			MaxLength: 16 * types.MiB,
		},
	}
}
