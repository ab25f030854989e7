package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "whodash/internal/errors"
)

func TestFit(t *testing.T) {
	points := []Point{
		{Year: 2018, Value: 20.0},
		{Year: 2019, Value: 22.0},
		{Year: 2020, Value: 24.0},
	}

	slope, intercept, err := Fit(points)
	require.NoError(t, err)

	// Collinear points fit exactly.
	assert.InDelta(t, 2.0, slope, 1e-9)
	assert.InDelta(t, 20.0, slope*2018+intercept, 1e-9)
}

func TestFit_InsufficientData(t *testing.T) {
	tests := []struct {
		name   string
		points []Point
	}{
		{name: "empty series", points: nil},
		{name: "single point", points: []Point{{Year: 2020, Value: 5.0}}},
		{
			name: "duplicate years only",
			points: []Point{
				{Year: 2020, Value: 5.0},
				{Year: 2020, Value: 7.0},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Fit(tt.points)
			require.Error(t, err)
			assert.Equal(t, apperrors.ErrTypeInsufficientData, apperrors.TypeOf(err))
		})
	}
}

func TestFit_DuplicateYearsWeightTheFit(t *testing.T) {
	base := []Point{
		{Year: 2018, Value: 10.0},
		{Year: 2020, Value: 20.0},
	}
	weighted := append([]Point{}, base...)
	// A second, lower 2020 estimate pulls the slope down.
	weighted = append(weighted, Point{Year: 2020, Value: 10.0})

	baseSlope, _, err := Fit(base)
	require.NoError(t, err)
	weightedSlope, _, err := Fit(weighted)
	require.NoError(t, err)

	assert.Less(t, weightedSlope, baseSlope)
}

func TestForecast(t *testing.T) {
	points := []Point{
		{Year: 2018, Value: 20.0},
		{Year: 2019, Value: 22.0},
		{Year: 2020, Value: 24.0},
	}

	forecast, err := Forecast(points, []int{2025, 2030})
	require.NoError(t, err)

	require.Len(t, forecast, 2)
	assert.Equal(t, 2025, forecast[0].Year)
	assert.InDelta(t, 34.0, forecast[0].Value, 1e-9)
	assert.Equal(t, 2030, forecast[1].Year)
	assert.InDelta(t, 44.0, forecast[1].Value, 1e-9)
}

func TestForecast_RequestOrderPreserved(t *testing.T) {
	points := []Point{
		{Year: 2018, Value: 20.0},
		{Year: 2020, Value: 24.0},
	}

	forecast, err := Forecast(points, []int{2030, 2025})
	require.NoError(t, err)

	require.Len(t, forecast, 2)
	assert.Equal(t, 2030, forecast[0].Year)
	assert.Equal(t, 2025, forecast[1].Year)
}

func TestForecast_SlopeIndependentOfRequestedYears(t *testing.T) {
	points := []Point{
		{Year: 2015, Value: 31.2},
		{Year: 2017, Value: 28.9},
		{Year: 2019, Value: 27.4},
		{Year: 2020, Value: 26.1},
	}

	slope, _, err := Fit(points)
	require.NoError(t, err)

	forecast, err := Forecast(points, []int{2026, 2033})
	require.NoError(t, err)
	require.Len(t, forecast, 2)

	between := (forecast[1].Value - forecast[0].Value) / float64(forecast[1].Year-forecast[0].Year)
	assert.InDelta(t, slope, between, 1e-9)
}

func TestForecast_NoClamping(t *testing.T) {
	// A steep decline extrapolates below zero; the forecaster must not
	// clamp it.
	points := []Point{
		{Year: 2018, Value: 10.0},
		{Year: 2019, Value: 5.0},
		{Year: 2020, Value: 0.0},
	}

	forecast, err := Forecast(points, []int{2030})
	require.NoError(t, err)
	require.Len(t, forecast, 1)
	assert.Negative(t, forecast[0].Value)
}
