package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/couchcryptid/dwd-warncodes/internal/domain"
)

// Load reads, validates and parses a catalog document.
func Load(r io.Reader, f Format) (*domain.Catalog, error) {
	doc, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return LoadBytes(doc, f)
}

// LoadBytes validates and parses an in-memory catalog document.
func LoadBytes(doc []byte, f Format) (*domain.Catalog, error) {
	if problems := Validate(doc, f); len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}

	normalized, err := toJSON(doc, f)
	if err != nil {
		return nil, err
	}
	var raw rawDocument
	if err := json.Unmarshal(normalized, &raw); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return raw.toCatalog(), nil
}

// LoadFile loads a catalog document from disk, picking the format from the
// file extension.
func LoadFile(path string) (*domain.Catalog, error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	doc, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load catalog %q: %w", path, err)
	}
	cat, err := LoadBytes(doc, f)
	if err != nil {
		return nil, fmt.Errorf("load catalog %q: %w", path, err)
	}
	return cat, nil
}

// LoadOrDefault loads the catalog at path, or the bundled one when path is
// empty.
func LoadOrDefault(path string) (*domain.Catalog, error) {
	if path == "" {
		return Default()
	}
	return LoadFile(path)
}
