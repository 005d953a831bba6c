package catalog

import (
	_ "embed"
	"sync"

	"github.com/couchcryptid/dwd-warncodes/internal/domain"
)

// document is the bundled DWD warning-code table.
//
//go:embed data/warncodes.json
var document []byte

//go:embed data/schema.json
var schemaJSON []byte

var loadDefault = sync.OnceValues(func() (*domain.Catalog, error) {
	return LoadBytes(document, FormatJSON)
})

// Default returns the catalog bundled with the binary. The document is parsed
// and validated once per process.
func Default() (*domain.Catalog, error) {
	return loadDefault()
}

// Document returns a copy of the bundled catalog document.
func Document() []byte {
	out := make([]byte, len(document))
	copy(out, document)
	return out
}
