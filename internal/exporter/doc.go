// Package exporter writes the monthly new-sustainer CSV.
//
// CSVWriter writes a header row followed by the data rows with minimal
// quoting, optionally prefixed with a UTF-8 BOM for Excel. WriteMonthlyCSV
// names the file "<MonthName> New EN Monthly Donors.csv" and overwrites any
// existing file; EncodeCSV produces the same bytes in memory for downloads.
//
// Example usage:
//
//	writer := exporter.NewCSVWriter(paths, cfg.Export.BOM, logger)
//	path, err := writer.WriteMonthlyCSV(result, domain.March, "")
package exporter
