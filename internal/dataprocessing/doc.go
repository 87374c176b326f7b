// Package dataprocessing turns an Engaging Networks donor export into the
// monthly new-sustainer table.
//
// # Architecture
//
// The package is organized into three parts:
//
// 1. Parser: reads CSV or XLSX exports into a domain.Table
// 2. Dates: the strict D/M/Y reader used for rewriting and the lenient
// day-first reader used for filtering
// 3. Processor: filters by month, sorts, projects and renames columns
//
// # Usage
//
//	table, err := dataprocessing.LoadFile("export.csv", dataprocessing.LoadOptions{})
//	if err != nil {
//	    return err
//	}
//	result, stats, err := dataprocessing.FilterAndProject(table, domain.March)
//
// # Data Flow
//
//	Export File → Parser → Table → FilterAndProject → Table (renamed columns)
//
// # Date Readers
//
// Rows are selected with ParseDayFirst, which accepts many layouts. The
// output date is produced by ReformatToMonthDayYear, which only accepts
// "D/M/Y". A row can therefore be selected and still have an empty output
// date; FilterStats.StrictMismatch counts those rows.
package dataprocessing
