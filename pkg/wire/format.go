package wire

import (
	"bytes"
	"path/filepath"
	"strings"

	cellerr "github.com/vango-dev/cells/internal/errors"
)

// Format is a document encoding.
type Format int

const (
	FormatJSON Format = iota
	FormatMsgpack
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatMsgpack:
		return "msgpack"
	default:
		return "unknown"
	}
}

// Ext returns the preferred file extension, including the dot.
func (f Format) Ext() string {
	if f == FormatMsgpack {
		return ".msgpack"
	}
	return ".json"
}

// ParseFormat parses a format name as accepted on the command line.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "msgpack", "mp":
		return FormatMsgpack, nil
	}
	return 0, cellerr.New("E021").WithDetail("Unknown format " + s + "; use json or msgpack.")
}

// DetectFormat picks a format from the file name, falling back to
// sniffing the content. JSON documents start with '{' after whitespace
// and msgpack documents with a map header byte. Empty or unrecognized
// content returns E021.
func DetectFormat(name string, data []byte) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return FormatJSON, nil
	case ".msgpack", ".mp":
		return FormatMsgpack, nil
	}

	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 {
		return 0, cellerr.New("E021").WithPath(name).WithDetail("The document is empty.")
	}
	if trimmed[0] == '{' {
		return FormatJSON, nil
	}
	// msgpack maps start with a fixmap (0x80-0x8f), map16 or map32 byte
	if b := trimmed[0]; (b >= 0x80 && b <= 0x8f) || b == 0xde || b == 0xdf {
		return FormatMsgpack, nil
	}
	return 0, cellerr.New("E021").WithPath(name)
}
