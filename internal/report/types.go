package report

import "whodash/internal/dataset"

// PointKind distinguishes observed series points from model outputs.
type PointKind string

const (
	KindActual   PointKind = "Actual"
	KindForecast PointKind = "Forecast"
)

// KPISet holds the four per-sex country means shown as key metrics.
// A nil field means no records exist for that combination; it is
// never substituted with zero.
type KPISet struct {
	MalePrevalence   *float64 `json:"male_prevalence"`
	FemalePrevalence *float64 `json:"female_prevalence"`
	MaleMortality    *float64 `json:"male_mortality"`
	FemaleMortality  *float64 `json:"female_mortality"`
}

// MapPoint is the mean mortality for one country, keyed by its ISO3
// code for choropleth rendering.
type MapPoint struct {
	Country string  `json:"country"`
	ISO3    string  `json:"iso3"`
	Mean    float64 `json:"mean"`
}

// IncomeSlice is the mean value for one income group.
type IncomeSlice struct {
	Group string  `json:"group"`
	Mean  float64 `json:"mean"`
}

// RankEntry is one row of a top-N country ranking.
type RankEntry struct {
	Country string  `json:"country"`
	Mean    float64 `json:"mean"`
}

// SeriesPoint is one actual or forecast value of a per-sex yearly
// series.
type SeriesPoint struct {
	Year  int         `json:"year"`
	Sex   dataset.Sex `json:"sex"`
	Value float64     `json:"value"`
	Kind  PointKind   `json:"kind"`
}

// BreakdownRow is one raw filtered record of the multi-indicator
// breakdown. The presentation layer stacks these by indicator, so
// they are not aggregated further.
type BreakdownRow struct {
	Year      int         `json:"year"`
	Sex       dataset.Sex `json:"sex"`
	Indicator string      `json:"indicator"`
	Value     float64     `json:"value"`
}

// Dashboard is the complete set of tabular outputs for one selected
// country.
type Dashboard struct {
	Country            string        `json:"country"`
	KPIs               KPISet        `json:"kpis"`
	MortalityMap       []MapPoint    `json:"mortality_map"`
	PrevalenceByIncome []IncomeSlice `json:"prevalence_by_income"`
	MortalityByIncome  []IncomeSlice `json:"mortality_by_income"`
	TopPrevalence      []RankEntry   `json:"top_prevalence"`
	TopMortality       []RankEntry   `json:"top_mortality"`
	PrevalenceSeries   []SeriesPoint `json:"prevalence_series"`
	MortalitySeries    []SeriesPoint `json:"mortality_series"`
	Breakdown          []BreakdownRow `json:"breakdown"`

	forecastFailures int
}

// ForecastFailureCount reports how many per-sex series could not be
// forecast while building this dashboard.
func (d *Dashboard) ForecastFailureCount() int {
	return d.forecastFailures
}
