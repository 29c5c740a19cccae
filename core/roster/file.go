package roster

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileReader reads a roster from a YAML or JSON file on every Load so
// edits are picked up without a restart.
type FileReader struct {
	Path string
}

// NewFileReader returns a reader for path.
func NewFileReader(path string) *FileReader { return &FileReader{Path: path} }

// Load reads and decodes the file.
func (f *FileReader) Load(ctx context.Context) (Roster, error) {
	if err := ctx.Err(); err != nil {
		return Roster{}, err
	}
	file, err := os.Open(f.Path)
	if err != nil {
		return Roster{}, fmt.Errorf("open roster: %w", err)
	}
	defer func() { _ = file.Close() }()
	r, err := DecodeRoster(file, FormatFromPath(f.Path))
	if err != nil {
		return Roster{}, fmt.Errorf("decode roster %s: %w", f.Path, err)
	}
	return r, nil
}

// FormatFromPath returns "yaml" or "json" depending on the file extension.
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".json":
		return "json"
	default:
		return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}
}

// DecodeRoster reads a Roster from r in the given format.
func DecodeRoster(r io.Reader, format string) (Roster, error) {
	var out Roster
	switch strings.ToLower(format) {
	case "yaml", "yml":
		if err := yaml.NewDecoder(r).Decode(&out); err != nil && err != io.EOF {
			return out, err
		}
	case "json":
		if err := json.NewDecoder(r).Decode(&out); err != nil {
			return out, err
		}
	default:
		return out, fmt.Errorf("unsupported format: %s", format)
	}
	return out, nil
}

// Static is a Reader over an in-memory roster.
type Static Roster

// Load returns the roster.
func (s Static) Load(ctx context.Context) (Roster, error) {
	if err := ctx.Err(); err != nil {
		return Roster{}, err
	}
	return Roster(s), nil
}
