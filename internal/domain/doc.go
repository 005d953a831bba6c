// Package domain models the Deutscher Wetterdienst (DWD) warning-code catalog.
//
// # Data Source
//
// DWD publishes its warnings with a numeric event code (the CAP eventCode with
// value name "II"), a German event name and a warning level. The catalog in
// this repository is a static reference table of those codes. It is never
// mutated at runtime: it is loaded, looked up, and discarded.
//
// # Categories
//
// Codes are grouped into six fixed categories. Order matters for listings and
// for cross-category lookups, so [Categories] always returns them as:
//
//	warnungen          land warnings for districts and municipalities
//	vorabwarnungen     advance information ahead of severe weather
//	kuestenwarnungen   coastal warnings (North Sea and Baltic coast)
//	hochseewarnungen   high-seas warnings
//	binnenwarnungen    inland lake warnings (Bodensee, Chiemsee, ...)
//	testwarnungen      test and drill codes
//
// Codes are not globally unique: "57" is STARKWIND on the coast and on inland
// lakes. Within a single category a code appears at most once.
//
// # Severity Levels
//
// DWD ranks warnings on a four-step scale, matching the map colours:
//
//	1  Wetterwarnung           yellow
//	2  Markante Wetterwarnung  orange
//	3  Unwetterwarnung         red
//	4  Extremes Unwetter       dark red
//
// Test entries carry no level; the document encodes that as null and the Go
// model as [LevelNone].
//
// # CAP Alerts
//
// The open-data feed delivers CAP 1.2 documents. Each affected area carries a
// WARNCELLID; for COMMUNEUNION cells the id is a leading "1" followed by the
// AGS (Amtlicher Gemeindeschlüssel) of the area, see [WarnCellToAGS]. A warning
// for a district therefore covers every municipality whose AGS starts with the
// district's AGS, see [Alert.AffectsAGS].
package domain
