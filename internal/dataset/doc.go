// Package dataset loads the WHO health equity workbooks and normalizes
// their rows into Records.
//
// A workbook carries one row per (setting, date, subgroup, indicator)
// observation. The loader keeps only the rows whose indicator is on
// the caller's allow-list and whose subgroup is Male or Female, and
// renames the columns to the dashboard's vocabulary: setting becomes
// country, date becomes year, estimate becomes value. Rows are never
// deduplicated; revised estimates for the same (country, year, sex)
// are averaged downstream.
//
// Cache memoizes Load results by (path, indicator set) so repeated
// dashboard requests do not re-read the workbooks.
package dataset
