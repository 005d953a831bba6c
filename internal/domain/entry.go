package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// ErrUnknownCategory is returned when a category name is not one of the six
// fixed catalog categories.
var ErrUnknownCategory = errors.New("unknown category")

// Category is one of the fixed catalog buckets.
type Category string

const (
	CategoryWarnungen        Category = "warnungen"
	CategoryVorabwarnungen   Category = "vorabwarnungen"
	CategoryKuestenwarnungen Category = "kuestenwarnungen"
	CategoryHochseewarnungen Category = "hochseewarnungen"
	CategoryBinnenwarnungen  Category = "binnenwarnungen"
	CategoryTestwarnungen    Category = "testwarnungen"
)

var categories = []Category{
	CategoryWarnungen,
	CategoryVorabwarnungen,
	CategoryKuestenwarnungen,
	CategoryHochseewarnungen,
	CategoryBinnenwarnungen,
	CategoryTestwarnungen,
}

var categoryTitles = map[Category]string{
	CategoryWarnungen:        "Warnungen",
	CategoryVorabwarnungen:   "Vorabinformationen",
	CategoryKuestenwarnungen: "Küstenwarnungen",
	CategoryHochseewarnungen: "Hochseewarnungen",
	CategoryBinnenwarnungen:  "Binnenseewarnungen",
	CategoryTestwarnungen:    "Testwarnungen",
}

// Categories returns all categories in document order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// ParseCategory maps a category name to a Category.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if _, ok := categoryTitles[c]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
	return c, nil
}

// Title returns the German display title of the category.
func (c Category) Title() string {
	return categoryTitles[c]
}

// Level is the DWD severity ranking. LevelNone marks entries without a level.
type Level int

const (
	LevelNone Level = iota
	LevelWarning
	LevelMarkedWarning
	LevelSevereWarning
	LevelExtremeWarning
)

var levelNames = map[Level]string{
	LevelWarning:        "Wetterwarnung",
	LevelMarkedWarning:  "Markante Wetterwarnung",
	LevelSevereWarning:  "Unwetterwarnung",
	LevelExtremeWarning: "Extremes Unwetter",
}

// Valid reports whether l is one of the four DWD levels.
func (l Level) Valid() bool {
	return l >= LevelWarning && l <= LevelExtremeWarning
}

// Name returns the DWD name of the level, or "" for LevelNone.
func (l Level) Name() string {
	return levelNames[l]
}

// MarshalJSON encodes LevelNone as null.
func (l Level) MarshalJSON() ([]byte, error) {
	if l == LevelNone {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(int(l))), nil
}

// UnmarshalJSON accepts null or an integer.
func (l *Level) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*l = LevelNone
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("parse level: %w", err)
	}
	*l = Level(n)
	return nil
}

// WarningEntry is one row of the catalog.
type WarningEntry struct {
	Category Category `json:"category,omitempty"`
	Code     string   `json:"code"`
	Event    string   `json:"event"`
	Level    Level    `json:"level"`
	Remark   string   `json:"remark"`
}

// IsNumericCode reports whether s is a non-empty string of ASCII digits.
func IsNumericCode(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
