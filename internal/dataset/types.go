package dataset

import "math"

// Sex is the demographic subgroup retained by the loader.
type Sex string

const (
	SexMale   Sex = "Male"
	SexFemale Sex = "Female"
)

// Sexes lists the retained subgroups in display order.
var Sexes = []Sex{SexMale, SexFemale}

// Record is one normalized observation from a source workbook.
// Value is NaN when the source estimate was missing or non-numeric;
// such records stay in the set but never contribute to a mean.
type Record struct {
	Country     string  `json:"country"`
	Year        int     `json:"year"`
	Sex         Sex     `json:"sex"`
	Indicator   string  `json:"indicator"`
	Value       float64 `json:"value"`
	ISO3        string  `json:"iso3,omitempty"`
	IncomeGroup string  `json:"income_group,omitempty"`
}

// HasValue reports whether the record carries a usable estimate.
func (r Record) HasValue() bool {
	return !math.IsNaN(r.Value)
}
