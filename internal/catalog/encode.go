package catalog

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/dwd-warncodes/internal/domain"
)

// Encode writes the catalog in the given format, preserving category and
// entry order.
func Encode(w io.Writer, cat *domain.Catalog, f Format) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(fromCatalog(cat)); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(fromCatalog(cat)); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case FormatCSV:
		return encodeCSV(w, cat)
	default:
		return fmt.Errorf("unsupported format %q", f)
	}
}

func encodeCSV(w io.Writer, cat *domain.Catalog) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"category", "code", "event", "level", "remark"}); err != nil {
		return fmt.Errorf("encode csv: %w", err)
	}
	for _, c := range domain.Categories() {
		for _, e := range cat.Entries(c) {
			level := ""
			if e.Level != domain.LevelNone {
				level = strconv.Itoa(int(e.Level))
			}
			if err := cw.Write([]string{string(c), e.Code, e.Event, level, e.Remark}); err != nil {
				return fmt.Errorf("encode csv: %w", err)
			}
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("encode csv: %w", err)
	}
	return nil
}
