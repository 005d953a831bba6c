package domain

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Catalog is the immutable, in-memory warning-code table.
type Catalog struct {
	entries map[Category][]WarningEntry
	index   map[Category]map[string]int
	total   int
}

// NewCatalog builds a Catalog from per-category entries. The input is copied;
// categories missing from the map are empty. Entries for unknown categories are
// dropped. When a code repeats within a category, Lookup returns the first one.
func NewCatalog(entries map[Category][]WarningEntry) *Catalog {
	c := &Catalog{
		entries: make(map[Category][]WarningEntry, len(categories)),
		index:   make(map[Category]map[string]int, len(categories)),
	}
	for _, cat := range categories {
		src := entries[cat]
		dst := make([]WarningEntry, len(src))
		idx := make(map[string]int, len(src))
		for i, e := range src {
			e.Category = cat
			dst[i] = e
			if _, dup := idx[e.Code]; !dup {
				idx[e.Code] = i
			}
		}
		c.entries[cat] = dst
		c.index[cat] = idx
		c.total += len(dst)
	}
	return c
}

// Entries returns the entries of a category in document order.
func (c *Catalog) Entries(cat Category) []WarningEntry {
	src := c.entries[cat]
	out := make([]WarningEntry, len(src))
	copy(out, src)
	return out
}

// Lookup finds the entry with the given code in one category.
func (c *Catalog) Lookup(cat Category, code string) (WarningEntry, bool) {
	i, ok := c.index[cat][code]
	if !ok {
		return WarningEntry{}, false
	}
	return c.entries[cat][i], true
}

// LookupAll returns every entry carrying code, in category order.
func (c *Catalog) LookupAll(code string) []WarningEntry {
	var out []WarningEntry
	for _, cat := range categories {
		if e, ok := c.Lookup(cat, code); ok {
			out = append(out, e)
		}
	}
	return out
}

// Search matches query against codes (exact) and event names (folded
// substring). Results follow category then document order.
func (c *Catalog) Search(query string) []WarningEntry {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	needle := foldText(query)

	var out []WarningEntry
	for _, cat := range categories {
		for _, e := range c.entries[cat] {
			if e.Code == query || strings.Contains(foldText(e.Event), needle) {
				out = append(out, e)
			}
		}
	}
	return out
}

// SortedByEvent returns the entries of a category ordered by event name
// using German collation, ties broken by code.
func (c *Catalog) SortedByEvent(cat Category) []WarningEntry {
	out := c.Entries(cat)
	col := collate.New(language.German)
	sort.SliceStable(out, func(i, j int) bool {
		if r := col.CompareString(out[i].Event, out[j].Event); r != 0 {
			return r < 0
		}
		return out[i].Code < out[j].Code
	})
	return out
}

// Len is the total number of entries across all categories.
func (c *Catalog) Len() int {
	return c.total
}

// Counts returns the number of entries per category.
func (c *Catalog) Counts() map[Category]int {
	out := make(map[Category]int, len(categories))
	for _, cat := range categories {
		out[cat] = len(c.entries[cat])
	}
	return out
}

// foldText normalises s for case-insensitive comparison. ß folds to ss and
// composed and decomposed umlauts compare equal.
func foldText(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}
