package analytics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whodash/internal/dataset"
	apperrors "whodash/internal/errors"
)

func byCountry(r dataset.Record) []string {
	return []string{r.Country}
}

func TestMeanBy(t *testing.T) {
	records := []dataset.Record{
		{Country: "A", Year: 2020, Sex: dataset.SexMale, Value: 10.0},
		{Country: "A", Year: 2020, Sex: dataset.SexFemale, Value: 30.0},
		{Country: "B", Year: 2020, Sex: dataset.SexMale, Value: 50.0},
	}

	aggs := MeanBy(records, byCountry)

	// One group per distinct key, in first-encounter order.
	require.Len(t, aggs, 2)
	assert.Equal(t, []string{"A"}, aggs[0].Key)
	assert.Equal(t, 20.0, aggs[0].Mean)
	assert.Equal(t, 2, aggs[0].Count)
	assert.Equal(t, []string{"B"}, aggs[1].Key)
	assert.Equal(t, 50.0, aggs[1].Mean)
}

func TestMeanBy_SingleValueGroup(t *testing.T) {
	records := []dataset.Record{
		{Country: "A", Value: 42.5},
	}

	aggs := MeanBy(records, byCountry)
	require.Len(t, aggs, 1)
	assert.Equal(t, 42.5, aggs[0].Mean)
}

func TestMeanBy_MissingValuesExcluded(t *testing.T) {
	records := []dataset.Record{
		{Country: "A", Value: 10.0},
		{Country: "A", Value: math.NaN()},
	}

	aggs := MeanBy(records, byCountry)

	// The NaN record joins the group but never the mean.
	require.Len(t, aggs, 1)
	assert.Equal(t, 10.0, aggs[0].Mean)
	assert.Equal(t, 1, aggs[0].Count)
}

func TestMeanBy_AllMissingGroupOmitted(t *testing.T) {
	records := []dataset.Record{
		{Country: "A", Value: math.NaN()},
		{Country: "B", Value: 5.0},
	}

	aggs := MeanBy(records, byCountry)

	// No NaN rows reach consumers.
	require.Len(t, aggs, 1)
	assert.Equal(t, []string{"B"}, aggs[0].Key)
}

func TestMeanBy_NilKeyExcludesRecord(t *testing.T) {
	records := []dataset.Record{
		{Country: "A", IncomeGroup: "High income", Value: 10.0},
		{Country: "B", IncomeGroup: "", Value: 99.0},
	}

	aggs := MeanBy(records, func(r dataset.Record) []string {
		if r.IncomeGroup == "" {
			return nil
		}
		return []string{r.IncomeGroup}
	})

	require.Len(t, aggs, 1)
	assert.Equal(t, []string{"High income"}, aggs[0].Key)
}

func TestMeanBy_MultiDimensionKey(t *testing.T) {
	records := []dataset.Record{
		{Country: "A", ISO3: "AAA", Value: 10.0},
		{Country: "A", ISO3: "AAA", Value: 20.0},
		{Country: "B", ISO3: "BBB", Value: 30.0},
	}

	aggs := MeanBy(records, func(r dataset.Record) []string {
		return []string{r.Country, r.ISO3}
	})

	require.Len(t, aggs, 2)
	assert.Equal(t, []string{"A", "AAA"}, aggs[0].Key)
	assert.Equal(t, 15.0, aggs[0].Mean)
}

func TestTopN(t *testing.T) {
	records := []dataset.Record{
		{Country: "A", Sex: dataset.SexMale, Year: 2020, Value: 10.0},
		{Country: "A", Sex: dataset.SexFemale, Year: 2020, Value: 30.0},
		{Country: "B", Sex: dataset.SexMale, Year: 2020, Value: 50.0},
	}

	top, err := TopN(MeanBy(records, byCountry), 2)
	require.NoError(t, err)

	require.Len(t, top, 2)
	assert.Equal(t, []string{"B"}, top[0].Key)
	assert.Equal(t, 50.0, top[0].Mean)
	assert.Equal(t, []string{"A"}, top[1].Key)
	assert.Equal(t, 20.0, top[1].Mean)
}

func TestTopN_InvalidCount(t *testing.T) {
	_, err := TopN(nil, 0)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrTypeValidation, apperrors.TypeOf(err))

	_, err = TopN(nil, -3)
	require.Error(t, err)
}

func TestTopN_CountExceedsGroups(t *testing.T) {
	aggs := []Aggregate{
		{Key: []string{"A"}, Mean: 1.0},
		{Key: []string{"B"}, Mean: 2.0},
	}

	top, err := TopN(aggs, 5)
	require.NoError(t, err)
	assert.Len(t, top, 2)
}

func TestTopN_TiesKeepInputOrder(t *testing.T) {
	aggs := []Aggregate{
		{Key: []string{"first"}, Mean: 7.0},
		{Key: []string{"second"}, Mean: 7.0},
		{Key: []string{"third"}, Mean: 9.0},
	}

	top, err := TopN(aggs, 3)
	require.NoError(t, err)

	assert.Equal(t, []string{"third"}, top[0].Key)
	assert.Equal(t, []string{"first"}, top[1].Key)
	assert.Equal(t, []string{"second"}, top[2].Key)
}

func TestTopN_DoesNotMutateInput(t *testing.T) {
	aggs := []Aggregate{
		{Key: []string{"low"}, Mean: 1.0},
		{Key: []string{"high"}, Mean: 2.0},
	}

	_, err := TopN(aggs, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"low"}, aggs[0].Key)
}
