package dataset

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "whodash/internal/errors"
)

// preferredSheet is the sheet name the WHO workbooks use. When it is
// absent the loader falls back to the first sheet carrying the
// expected header.
const preferredSheet = "Sheet1"

// Logical column names in the source workbooks.
const (
	colSetting   = "setting"
	colDate      = "date"
	colSubgroup  = "subgroup"
	colIndicator = "indicator_name"
	colEstimate  = "estimate"
	colISO3      = "iso3"
	// Income-group columns carry a vintage suffix (wbincome2024,
	// wbincome2023); the two workbooks do not agree on it.
	colIncomePrefix = "wbincome"
	colIncomeExact  = "income_group"
)

var requiredColumns = []string{colSetting, colDate, colSubgroup, colIndicator, colEstimate}

// Loader reads source workbooks and produces normalized Records.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a loader. A nil logger falls back to slog.Default.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// Load reads the workbook at path and returns the normalized records
// whose indicator is in indicators and whose subgroup is Male or
// Female. The output order follows the source row order. A filter
// that matches nothing returns an empty slice together with a
// NO_ROWS error wrapping errors.ErrNoRows.
func (l *Loader) Load(path string, indicators []string) ([]Record, error) {
	if len(indicators) == 0 {
		return nil, apperrors.NewValidationError("indicator set must not be empty")
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewDataFormatError(fmt.Sprintf("failed to open workbook %s", path), err)
	}
	defer f.Close()

	rows, err := l.sheetRows(f)
	if err != nil {
		return nil, err
	}

	headerRow, columns, err := mapColumns(rows)
	if err != nil {
		return nil, err
	}

	allowed := make(map[string]struct{}, len(indicators))
	for _, name := range indicators {
		allowed[name] = struct{}{}
	}

	var records []Record
	for i := headerRow + 1; i < len(rows); i++ {
		row := rows[i]

		indicator := cell(row, columns[colIndicator])
		if _, ok := allowed[indicator]; !ok {
			continue
		}

		sex := Sex(cell(row, columns[colSubgroup]))
		if sex != SexMale && sex != SexFemale {
			continue
		}

		year, ok := parseYear(cell(row, columns[colDate]))
		if !ok {
			l.logger.Debug("skipping row with unparsable date",
				slog.Int("row", i+1),
				slog.String("date", cell(row, columns[colDate])))
			continue
		}

		rec := Record{
			Country:   cell(row, columns[colSetting]),
			Year:      year,
			Sex:       sex,
			Indicator: indicator,
			Value:     parseEstimate(cell(row, columns[colEstimate])),
		}
		if idx, ok := columns[colISO3]; ok {
			rec.ISO3 = cell(row, idx)
		}
		if idx, ok := columns[colIncomeExact]; ok {
			rec.IncomeGroup = cell(row, idx)
		}
		records = append(records, rec)
	}

	l.logger.Debug("workbook loaded",
		slog.String("path", path),
		slog.Int("indicators", len(indicators)),
		slog.Int("records", len(records)))

	if len(records) == 0 {
		return []Record{}, apperrors.NewNoRowsError(
			fmt.Sprintf("no rows in %s match the indicator and subgroup filter", path))
	}

	return records, nil
}

// sheetRows returns the rows of the preferred sheet, or of the first
// sheet whose header carries the required columns.
func (l *Loader) sheetRows(f *excelize.File) ([][]string, error) {
	if rows, err := f.GetRows(preferredSheet); err == nil && len(rows) > 0 {
		return rows, nil
	}

	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil || len(rows) == 0 {
			continue
		}
		if _, _, err := mapColumns(rows); err == nil {
			l.logger.Debug("using fallback sheet", slog.String("sheet", name))
			return rows, nil
		}
	}

	return nil, apperrors.NewDataFormatError("no sheet with the expected columns found", nil)
}

// mapColumns locates the header row and maps logical column names to
// their positions. Income-group columns are normalized to
// colIncomeExact regardless of vintage suffix.
func mapColumns(rows [][]string) (int, map[string]int, error) {
	for i, row := range rows {
		columns := make(map[string]int)
		for j, header := range row {
			name := strings.ToLower(strings.TrimSpace(header))
			switch {
			case name == colSetting, name == colDate, name == colSubgroup,
				name == colIndicator, name == colEstimate, name == colISO3:
				columns[name] = j
			case name == colIncomeExact, strings.HasPrefix(name, colIncomePrefix):
				columns[colIncomeExact] = j
			}
		}

		var missing []string
		for _, name := range requiredColumns {
			if _, ok := columns[name]; !ok {
				missing = append(missing, name)
			}
		}
		if len(missing) == 0 {
			return i, columns, nil
		}
		// Only the first non-empty row is a header candidate.
		if len(row) > 0 {
			return 0, nil, apperrors.NewDataFormatError(
				fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", ")), nil)
		}
	}
	return 0, nil, apperrors.NewDataFormatError("workbook has no header row", nil)
}

// cell returns the trimmed cell at idx, tolerating short rows.
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseYear casts the date field to an integer year by truncation.
func parseYear(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return int(v), true
}

// parseEstimate parses the estimate field; missing or non-numeric
// values become NaN so downstream means can skip them.
func parseEstimate(s string) float64 {
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
