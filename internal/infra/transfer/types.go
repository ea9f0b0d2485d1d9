package transfer

import (
	"errors"
	"path/filepath"
	"strings"

	"toolcatalog/internal/domain"
)

// Format identifies a record file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// RecordsKey names the top-level list in object-shaped files. TOML files
// always use it as an array of tables.
const RecordsKey = "tools"

const (
	// IssueInvalid indicates an entry that is not a record object.
	IssueInvalid = "invalid"
)

var (
	// ErrNotFound indicates the source file is missing.
	ErrNotFound = errors.New("transfer file not found")
	// ErrUnknownFormat indicates an unsupported encoding.
	ErrUnknownFormat = errors.New("unknown transfer format")
)

// Issue describes an entry skipped while reading.
type Issue struct {
	Index   int
	Kind    string
	Message string
}

// Result holds the raw records read from a file and the skipped entries.
type Result struct {
	Path    string
	Format  Format
	Records []domain.RawRecord
	Issues  []Issue
}

// ParseFormat converts a raw string into a Format.
func ParseFormat(raw string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(FormatJSON):
		return FormatJSON, nil
	case string(FormatYAML), "yml":
		return FormatYAML, nil
	case string(FormatTOML):
		return FormatTOML, nil
	default:
		return "", ErrUnknownFormat
	}
}

// FormatFromPath infers the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", ErrUnknownFormat
	}
	return ParseFormat(ext)
}
