package model

import "time"

// StatCategory names one measured column of a StatEntry.
type StatCategory string

const (
	CategoryWeight  StatCategory = "weight"
	CategoryBodyFat StatCategory = "body_fat"
	CategoryWater   StatCategory = "water"
	CategoryMuscles StatCategory = "muscles"
)

// AllStatCategories lists the categories in display order.
var AllStatCategories = []StatCategory{
	CategoryWeight, CategoryBodyFat, CategoryWater, CategoryMuscles,
}

// categoryInfo holds per-category presentation data.
var categoryInfo = map[StatCategory]struct {
	label  string
	unit   string
	margin float64
}{
	CategoryWeight:  {"Weight", "kg", 5},
	CategoryBodyFat: {"Body fat", "%", 2},
	CategoryWater:   {"Water", "%", 5},
	CategoryMuscles: {"Muscles", "%", 5},
}

// ParseStatCategory maps a request string onto a known category.
// The second result is false for anything not in AllStatCategories.
func ParseStatCategory(s string) (StatCategory, bool) {
	c := StatCategory(s)
	_, ok := categoryInfo[c]
	return c, ok
}

// Label is the human-readable category name.
func (c StatCategory) Label() string { return categoryInfo[c].label }

// Unit is the display suffix for values of this category.
func (c StatCategory) Unit() string { return categoryInfo[c].unit }

// Margin is the chart axis step used by fitness.AxisBounds.
func (c StatCategory) Margin() float64 { return categoryInfo[c].margin }

// StatEntry is one dated body-composition snapshot, stored in natural units:
// weight in kg, the rest in percent.
type StatEntry struct {
	Username string    `json:"-"        yaml:"-"`
	Date     time.Time `json:"date"     yaml:"date"` // second precision
	Weight   float64   `json:"weight"   yaml:"weight"`
	BodyFat  float64   `json:"bodyFat"  yaml:"body_fat"`
	Water    float64   `json:"water"    yaml:"water"`
	Muscles  float64   `json:"muscles"  yaml:"muscles"`
}

// Value returns the field selected by c.
func (s *StatEntry) Value(c StatCategory) float64 {
	switch c {
	case CategoryWeight:
		return s.Weight
	case CategoryBodyFat:
		return s.BodyFat
	case CategoryWater:
		return s.Water
	case CategoryMuscles:
		return s.Muscles
	}
	return 0
}

// Datapoint is a single (date, value) pair of a category series.
type Datapoint struct {
	Date  time.Time
	Value float64
}
