package dataset

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apperrors "whodash/internal/errors"
)

// defaultHeader mirrors the WHO workbook layout.
var defaultHeader = []string{"setting", "date", "subgroup", "indicator_name", "estimate", "iso3", "wbincome2024"}

// writeWorkbook builds a minimal xlsx fixture and returns its path.
func writeWorkbook(t *testing.T, name string, header []string, rows [][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	hdr := make([]interface{}, len(header))
	for i, h := range header {
		hdr[i] = h
	}
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &hdr))

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestLoader_Load(t *testing.T) {
	path := writeWorkbook(t, "data.xlsx", defaultHeader, [][]interface{}{
		{"Lebanon", 2018, "Male", "prev", 20.0, "LBN", "Upper middle income"},
		{"Lebanon", 2018, "Female", "prev", 25.5, "LBN", "Upper middle income"},
		{"Lebanon", 2018, "Both sexes", "prev", 22.7, "LBN", "Upper middle income"},
		{"Lebanon", 2018, "Male", "other indicator", 99.0, "LBN", "Upper middle income"},
		{"Iraq", 2019, "Male", "prev", 30.0, "IRQ", "Upper middle income"},
	})

	loader := NewLoader(nil)
	records, err := loader.Load(path, []string{"prev"})
	require.NoError(t, err)

	// Both sexes and the off-list indicator are dropped.
	require.Len(t, records, 3)
	for _, rec := range records {
		assert.Contains(t, []Sex{SexMale, SexFemale}, rec.Sex)
		assert.Equal(t, "prev", rec.Indicator)
	}

	first := records[0]
	assert.Equal(t, "Lebanon", first.Country)
	assert.Equal(t, 2018, first.Year)
	assert.Equal(t, SexMale, first.Sex)
	assert.Equal(t, 20.0, first.Value)
	assert.Equal(t, "LBN", first.ISO3)
	assert.Equal(t, "Upper middle income", first.IncomeGroup)
}

func TestLoader_Load_YearTruncation(t *testing.T) {
	path := writeWorkbook(t, "data.xlsx", defaultHeader, [][]interface{}{
		{"Lebanon", "2019.7", "Male", "prev", 20.0, "LBN", ""},
	})

	records, err := NewLoader(nil).Load(path, []string{"prev"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 2019, records[0].Year)
}

func TestLoader_Load_MissingColumns(t *testing.T) {
	header := []string{"setting", "date", "subgroup", "indicator_name"} // no estimate
	path := writeWorkbook(t, "data.xlsx", header, [][]interface{}{
		{"Lebanon", 2018, "Male", "prev"},
	})

	_, err := NewLoader(nil).Load(path, []string{"prev"})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrTypeDataFormat, apperrors.TypeOf(err))
	assert.Contains(t, err.Error(), "estimate")
}

func TestLoader_Load_NoMatchingRows(t *testing.T) {
	path := writeWorkbook(t, "data.xlsx", defaultHeader, [][]interface{}{
		{"Lebanon", 2018, "Male", "prev", 20.0, "LBN", ""},
	})

	records, err := NewLoader(nil).Load(path, []string{"does not exist"})
	require.Error(t, err)
	assert.True(t, apperrors.IsNoRows(err))
	assert.Empty(t, records)
}

func TestLoader_Load_EmptyIndicatorSet(t *testing.T) {
	path := writeWorkbook(t, "data.xlsx", defaultHeader, nil)

	_, err := NewLoader(nil).Load(path, nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrTypeValidation, apperrors.TypeOf(err))
}

func TestLoader_Load_MissingEstimateBecomesNaN(t *testing.T) {
	path := writeWorkbook(t, "data.xlsx", defaultHeader, [][]interface{}{
		{"Lebanon", 2018, "Male", "prev", "", "LBN", ""},
		{"Lebanon", 2019, "Male", "prev", "n/a", "LBN", ""},
		{"Lebanon", 2020, "Male", "prev", 24.0, "LBN", ""},
	})

	records, err := NewLoader(nil).Load(path, []string{"prev"})
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.False(t, records[0].HasValue())
	assert.False(t, records[1].HasValue())
	assert.True(t, records[2].HasValue())
}

func TestLoader_Load_DuplicateRowsPreserved(t *testing.T) {
	// Revised estimates appear as duplicate (country, year, sex) rows;
	// the loader must not deduplicate them.
	path := writeWorkbook(t, "data.xlsx", defaultHeader, [][]interface{}{
		{"Lebanon", 2018, "Male", "prev", 20.0, "LBN", ""},
		{"Lebanon", 2018, "Male", "prev", 21.0, "LBN", ""},
	})

	records, err := NewLoader(nil).Load(path, []string{"prev"})
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestLoader_Load_IncomeVintageColumn(t *testing.T) {
	// The mortality workbook uses a different income vintage column.
	header := []string{"setting", "date", "subgroup", "indicator_name", "estimate", "iso3", "wbincome2023"}
	path := writeWorkbook(t, "data.xlsx", header, [][]interface{}{
		{"Iraq", 2019, "Female", "mort", 40.0, "IRQ", "Low income"},
	})

	records, err := NewLoader(nil).Load(path, []string{"mort"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Low income", records[0].IncomeGroup)
}

func TestLoader_Load_StableOrder(t *testing.T) {
	path := writeWorkbook(t, "data.xlsx", defaultHeader, [][]interface{}{
		{"Lebanon", 2018, "Male", "prev", 20.0, "LBN", ""},
		{"Iraq", 2019, "Female", "prev", 30.0, "IRQ", ""},
		{"Jordan", 2020, "Male", "prev", 25.0, "JOR", ""},
	})

	loader := NewLoader(nil)
	first, err := loader.Load(path, []string{"prev"})
	require.NoError(t, err)
	second, err := loader.Load(path, []string{"prev"})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
