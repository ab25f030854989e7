package report

import (
	"context"
	"log/slog"
	"sort"
	"strconv"

	"whodash/internal/analytics"
	"whodash/internal/dataset"
)

// topCountries is the ranking size of the "highest tobacco use" and
// "highest mortality" charts.
const topCountries = 5

// Assembler builds Dashboard outputs from already-loaded records. It
// holds no dataset state; every Build is a pure function of its
// arguments plus the configured future years.
type Assembler struct {
	logger      *slog.Logger
	futureYears []int
}

// NewAssembler creates an assembler forecasting the given future
// years. A nil logger falls back to slog.Default.
func NewAssembler(logger *slog.Logger, futureYears []int) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{logger: logger, futureYears: futureYears}
}

// Build assembles the dashboard for country. prevalence and mortality
// are the two whole datasets; breakdown is the prevalence workbook
// loaded with the broader indicator set. Per-series forecast failures
// are logged and counted but never abort the build.
func (a *Assembler) Build(ctx context.Context, country string, prevalence, mortality, breakdown []dataset.Record) (*Dashboard, error) {
	d := &Dashboard{Country: country}

	d.KPIs = KPISet{
		MalePrevalence:   a.countryMean(prevalence, country, dataset.SexMale),
		FemalePrevalence: a.countryMean(prevalence, country, dataset.SexFemale),
		MaleMortality:    a.countryMean(mortality, country, dataset.SexMale),
		FemaleMortality:  a.countryMean(mortality, country, dataset.SexFemale),
	}

	// Whole-dataset aggregates, independent of the selected country.
	d.MortalityMap = a.mortalityMap(mortality)
	d.PrevalenceByIncome = a.incomeSlices(prevalence)
	d.MortalityByIncome = a.incomeSlices(mortality)

	var err error
	if d.TopPrevalence, err = a.topRanking(prevalence); err != nil {
		return nil, err
	}
	if d.TopMortality, err = a.topRanking(mortality); err != nil {
		return nil, err
	}

	d.PrevalenceSeries = a.series(ctx, d, country, prevalence, "prevalence")
	d.MortalitySeries = a.series(ctx, d, country, mortality, "mortality")

	d.Breakdown = a.breakdownRows(country, breakdown)

	return d, nil
}

// Countries returns the distinct country names in records, sorted.
// It feeds the frontend's country selector.
func Countries(records []dataset.Record) []string {
	seen := make(map[string]struct{})
	var countries []string
	for _, rec := range records {
		if _, ok := seen[rec.Country]; ok {
			continue
		}
		seen[rec.Country] = struct{}{}
		countries = append(countries, rec.Country)
	}
	sort.Strings(countries)
	return countries
}

// countryMean computes the mean value for one (country, sex) across
// all years, or nil when no usable records exist.
func (a *Assembler) countryMean(records []dataset.Record, country string, sex dataset.Sex) *float64 {
	aggs := analytics.MeanBy(records, func(r dataset.Record) []string {
		if r.Country != country || r.Sex != sex {
			return nil
		}
		return []string{string(sex)}
	})
	if len(aggs) == 0 {
		return nil
	}
	mean := aggs[0].Mean
	return &mean
}

// mortalityMap aggregates mean mortality per (country, iso3) over the
// whole dataset. Records without an ISO3 code cannot be placed on the
// map and are excluded.
func (a *Assembler) mortalityMap(records []dataset.Record) []MapPoint {
	aggs := analytics.MeanBy(records, func(r dataset.Record) []string {
		if r.ISO3 == "" {
			return nil
		}
		return []string{r.Country, r.ISO3}
	})

	points := make([]MapPoint, 0, len(aggs))
	for _, agg := range aggs {
		points = append(points, MapPoint{Country: agg.Key[0], ISO3: agg.Key[1], Mean: agg.Mean})
	}
	return points
}

// incomeSlices aggregates mean value per income group. The two
// datasets carry their own income-group vintages, so each is keyed
// independently here.
func (a *Assembler) incomeSlices(records []dataset.Record) []IncomeSlice {
	aggs := analytics.MeanBy(records, func(r dataset.Record) []string {
		if r.IncomeGroup == "" {
			return nil
		}
		return []string{r.IncomeGroup}
	})

	slices := make([]IncomeSlice, 0, len(aggs))
	for _, agg := range aggs {
		slices = append(slices, IncomeSlice{Group: agg.Key[0], Mean: agg.Mean})
	}
	return slices
}

// topRanking returns the top countries by mean value over the whole
// dataset.
func (a *Assembler) topRanking(records []dataset.Record) ([]RankEntry, error) {
	aggs := analytics.MeanBy(records, func(r dataset.Record) []string {
		return []string{r.Country}
	})
	top, err := analytics.TopN(aggs, topCountries)
	if err != nil {
		return nil, err
	}

	entries := make([]RankEntry, 0, len(top))
	for _, agg := range top {
		entries = append(entries, RankEntry{Country: agg.Key[0], Mean: agg.Mean})
	}
	return entries, nil
}

// series builds the per-sex yearly means for country plus forecast
// points for the configured future years. Each sex fails or succeeds
// independently.
func (a *Assembler) series(ctx context.Context, d *Dashboard, country string, records []dataset.Record, metricName string) []SeriesPoint {
	var out []SeriesPoint

	for _, sex := range dataset.Sexes {
		points := a.yearlyMeans(records, country, sex)
		for _, p := range points {
			out = append(out, SeriesPoint{Year: p.Year, Sex: sex, Value: p.Value, Kind: KindActual})
		}

		if len(a.futureYears) == 0 {
			continue
		}
		forecast, err := analytics.Forecast(points, a.futureYears)
		if err != nil {
			d.forecastFailures++
			a.logger.WarnContext(ctx, "series forecast skipped",
				slog.String("country", country),
				slog.String("metric", metricName),
				slog.String("sex", string(sex)),
				slog.String("error", err.Error()))
			continue
		}
		for _, p := range forecast {
			out = append(out, SeriesPoint{Year: p.Year, Sex: sex, Value: p.Value, Kind: KindForecast})
		}
	}

	return out
}

// yearlyMeans computes the per-year means for one (country, sex),
// sorted by year. Duplicate source rows for a year average into that
// year's point.
func (a *Assembler) yearlyMeans(records []dataset.Record, country string, sex dataset.Sex) []analytics.Point {
	aggs := analytics.MeanBy(records, func(r dataset.Record) []string {
		if r.Country != country || r.Sex != sex {
			return nil
		}
		return []string{strconv.Itoa(r.Year)}
	})

	points := make([]analytics.Point, 0, len(aggs))
	for _, agg := range aggs {
		year, _ := strconv.Atoi(agg.Key[0])
		points = append(points, analytics.Point{Year: year, Value: agg.Mean})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Year < points[j].Year })
	return points
}

// breakdownRows returns the raw filtered breakdown records for the
// selected country. Rows without a usable value are dropped; a
// stacked bar cannot render them.
func (a *Assembler) breakdownRows(country string, records []dataset.Record) []BreakdownRow {
	var rows []BreakdownRow
	for _, rec := range records {
		if rec.Country != country || !rec.HasValue() {
			continue
		}
		rows = append(rows, BreakdownRow{
			Year:      rec.Year,
			Sex:       rec.Sex,
			Indicator: rec.Indicator,
			Value:     rec.Value,
		})
	}
	return rows
}
