// internal/parser/detector.go
package parser

import (
	"bytes"
	"path/filepath"
	"strings"
)

type FileType string

const (
	FileTypeFIT     FileType = "fit"
	FileTypeGPX     FileType = "gpx"
	FileTypeUnknown FileType = "unknown"
)

// DetectFileTypeFromData sniffs the first bytes of a trace file.
func DetectFileTypeFromData(data []byte) FileType {
	// FIT header: size byte, protocol, profile(2), data size(4), ".FIT"
	if len(data) >= 12 && bytes.Equal(data[8:12], []byte(".FIT")) {
		return FileTypeFIT
	}

	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	head = bytes.TrimSpace(bytes.TrimPrefix(head, []byte("\xef\xbb\xbf")))
	if bytes.HasPrefix(head, []byte("<?xml")) || bytes.HasPrefix(head, []byte("<gpx")) {
		if bytes.Contains(head, []byte("<gpx")) || bytes.Contains(head, []byte("topografix.com/GPX")) {
			return FileTypeGPX
		}
	}

	return FileTypeUnknown
}

// DetectFileType prefers content sniffing and falls back to the extension.
func DetectFileType(filename string, data []byte) FileType {
	if ft := DetectFileTypeFromData(data); ft != FileTypeUnknown {
		return ft
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".fit":
		return FileTypeFIT
	case ".gpx":
		return FileTypeGPX
	default:
		return FileTypeUnknown
	}
}
