package analytics

import (
	apperrors "whodash/internal/errors"
)

// Point is one (year, value) observation of a series.
type Point struct {
	Year  int     `json:"year"`
	Value float64 `json:"value"`
}

// Fit computes the ordinary least-squares line value = slope*year +
// intercept over points. Every point weighs equally; duplicate years
// therefore pull the fit toward that year, which mirrors the source
// data's revised-estimate rows. At least two distinct years are
// required.
func Fit(points []Point) (slope, intercept float64, err error) {
	distinct := make(map[int]struct{}, len(points))
	for _, p := range points {
		distinct[p.Year] = struct{}{}
	}
	if len(distinct) < 2 {
		return 0, 0, apperrors.NewInsufficientDataError(
			"linear fit needs at least 2 points with distinct years")
	}

	n := float64(len(points))
	var sx, sy, sxy, sxx float64
	for _, p := range points {
		x := float64(p.Year)
		sx += x
		sy += p.Value
		sxy += x * p.Value
		sxx += x * x
	}

	slope = (n*sxy - sx*sy) / (n*sxx - sx*sx)
	intercept = (sy - slope*sx) / n
	return slope, intercept, nil
}

// Forecast fits a line through points and evaluates it at each
// requested year, in request order. No bounds are applied; a
// downward trend may produce negative values and display-time
// clamping is the caller's concern.
func Forecast(points []Point, years []int) ([]Point, error) {
	slope, intercept, err := Fit(points)
	if err != nil {
		return nil, err
	}

	out := make([]Point, 0, len(years))
	for _, year := range years {
		out = append(out, Point{
			Year:  year,
			Value: slope*float64(year) + intercept,
		})
	}
	return out, nil
}
