package catalog

import (
	"github.com/couchcryptid/dwd-warncodes/internal/domain"
)

// rawDocument mirrors the on-disk layout. Field order is category order, so
// encoders that follow struct order keep the document stable.
type rawDocument struct {
	Warnungen        []rawEntry `json:"warnungen" yaml:"warnungen"`
	Vorabwarnungen   []rawEntry `json:"vorabwarnungen" yaml:"vorabwarnungen"`
	Kuestenwarnungen []rawEntry `json:"kuestenwarnungen" yaml:"kuestenwarnungen"`
	Hochseewarnungen []rawEntry `json:"hochseewarnungen" yaml:"hochseewarnungen"`
	Binnenwarnungen  []rawEntry `json:"binnenwarnungen" yaml:"binnenwarnungen"`
	Testwarnungen    []rawEntry `json:"testwarnungen" yaml:"testwarnungen"`
}

type rawEntry struct {
	Code   string `json:"code" yaml:"code"`
	Event  string `json:"event" yaml:"event"`
	Level  *int   `json:"level" yaml:"level"`
	Remark string `json:"remark" yaml:"remark"`
}

func (d *rawDocument) slot(c domain.Category) *[]rawEntry {
	switch c {
	case domain.CategoryWarnungen:
		return &d.Warnungen
	case domain.CategoryVorabwarnungen:
		return &d.Vorabwarnungen
	case domain.CategoryKuestenwarnungen:
		return &d.Kuestenwarnungen
	case domain.CategoryHochseewarnungen:
		return &d.Hochseewarnungen
	case domain.CategoryBinnenwarnungen:
		return &d.Binnenwarnungen
	case domain.CategoryTestwarnungen:
		return &d.Testwarnungen
	}
	return nil
}

func (d *rawDocument) toCatalog() *domain.Catalog {
	entries := make(map[domain.Category][]domain.WarningEntry)
	for _, c := range domain.Categories() {
		raws := *d.slot(c)
		out := make([]domain.WarningEntry, len(raws))
		for i, r := range raws {
			out[i] = r.toEntry()
		}
		entries[c] = out
	}
	return domain.NewCatalog(entries)
}

func fromCatalog(cat *domain.Catalog) rawDocument {
	var d rawDocument
	for _, c := range domain.Categories() {
		src := cat.Entries(c)
		out := make([]rawEntry, len(src))
		for i, e := range src {
			out[i] = fromEntry(e)
		}
		*d.slot(c) = out
	}
	return d
}

func (r rawEntry) toEntry() domain.WarningEntry {
	e := domain.WarningEntry{Code: r.Code, Event: r.Event, Remark: r.Remark}
	if r.Level != nil {
		e.Level = domain.Level(*r.Level)
	}
	return e
}

func fromEntry(e domain.WarningEntry) rawEntry {
	r := rawEntry{Code: e.Code, Event: e.Event, Remark: e.Remark}
	if e.Level != domain.LevelNone {
		l := int(e.Level)
		r.Level = &l
	}
	return r
}
