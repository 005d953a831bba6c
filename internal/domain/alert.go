package domain

import (
	"strings"
	"time"
)

// Area is one affected region of a CAP alert.
type Area struct {
	Desc       string `json:"area_desc"`
	WarnCellID string `json:"warncell_id"`
	HasPolygon bool   `json:"has_polygon"`
}

// AGS returns the municipality key derived from the area's warncell id.
func (a Area) AGS() string {
	return WarnCellToAGS(a.WarnCellID)
}

// Alert is a German-language CAP warning as published in the DWD feed.
type Alert struct {
	Identifier  string    `json:"identifier"`
	MsgType     string    `json:"msg_type"`
	Event       string    `json:"event"`
	EventCode   string    `json:"event_code"`
	Headline    string    `json:"headline"`
	Description string    `json:"description"`
	Instruction string    `json:"instruction,omitempty"`
	Severity    string    `json:"severity"`
	Language    string    `json:"language"`
	Onset       time.Time `json:"onset,omitzero"`
	Expires     time.Time `json:"expires,omitzero"`
	Areas       []Area    `json:"areas"`
}

// WarnCellToAGS strips the leading "1" that COMMUNEUNION warncell ids put in
// front of the AGS. Other ids are returned unchanged.
func WarnCellToAGS(id string) string {
	if len(id) > 1 && id[0] == '1' {
		return id[1:]
	}
	return id
}

// AffectsAGS reports whether the alert covers the municipality ags. A warning
// for a district applies to every municipality whose key starts with the
// district's key.
func (a Alert) AffectsAGS(ags string) bool {
	ags = strings.TrimSpace(ags)
	if ags == "" {
		return false
	}
	for _, area := range a.Areas {
		code := area.AGS()
		if code != "" && strings.HasPrefix(ags, code) {
			return true
		}
	}
	return false
}

// resolveOrder is the category search order for CAP event codes. The feed
// carries land warnings; advance information and tests share its code space.
var (
	resolveOrder        = []Category{CategoryWarnungen, CategoryVorabwarnungen, CategoryTestwarnungen}
	advanceResolveOrder = []Category{CategoryVorabwarnungen, CategoryWarnungen, CategoryTestwarnungen}
)

// ResolveAlert looks up the catalog entry for the alert's event code. Events
// named "VORABINFORMATION ..." are resolved against advance information first
// because their codes overlap with land warnings.
func ResolveAlert(c *Catalog, a Alert) (WarningEntry, bool) {
	code := strings.TrimSpace(a.EventCode)
	if code == "" {
		return WarningEntry{}, false
	}
	order := resolveOrder
	if strings.HasPrefix(strings.ToUpper(strings.TrimSpace(a.Event)), "VORABINFORMATION") {
		order = advanceResolveOrder
	}
	for _, cat := range order {
		if e, ok := c.Lookup(cat, code); ok {
			return e, true
		}
	}
	return WarningEntry{}, false
}

// FilterByAGS returns the alerts affecting ags, preserving order.
func FilterByAGS(alerts []Alert, ags string) []Alert {
	var out []Alert
	for _, a := range alerts {
		if a.AffectsAGS(ags) {
			out = append(out, a)
		}
	}
	return out
}

// ResolvedAlert pairs an alert with its catalog entry, if the code is known.
type ResolvedAlert struct {
	Alert Alert         `json:"alert"`
	Entry *WarningEntry `json:"entry"`
}

// ResolveAlerts resolves every alert against the catalog, preserving order.
func ResolveAlerts(c *Catalog, alerts []Alert) []ResolvedAlert {
	out := make([]ResolvedAlert, len(alerts))
	for i, a := range alerts {
		out[i] = ResolvedAlert{Alert: a}
		if e, ok := ResolveAlert(c, a); ok {
			out[i].Entry = &e
		}
	}
	return out
}
