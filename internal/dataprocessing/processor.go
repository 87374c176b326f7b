package dataprocessing

import (
	"sort"
	"time"

	"sustainers/pkg/contracts/domain"
)

// FilterStats counts what happened to the input rows in one run
type FilterStats struct {
	InputRows   int `json:"input_rows"`
	Unparseable int `json:"unparseable"`
	Matched     int `json:"matched"`
	// StrictMismatch counts matched rows whose rewritten start date is empty
	// because the strict D/M/Y reader rejected a value the filter accepted
	StrictMismatch int `json:"strict_mismatch"`
}

type datedRow struct {
	date time.Time
	row  []string
}

// FilterAndProject keeps the rows whose donation start date falls in month,
// orders them chronologically, projects them onto the output columns and
// rewrites the start date as MM/DD/YYYY.
func FilterAndProject(table *domain.Table, month domain.Month) (*domain.Table, *FilterStats, error) {
	dateIdx := table.ColumnIndex(domain.DonationStartDateColumn)
	if dateIdx < 0 {
		return nil, nil, &MissingColumnError{Columns: []string{domain.DonationStartDateColumn}}
	}

	projection, err := projectionIndexes(table)
	if err != nil {
		return nil, nil, err
	}

	stats := &FilterStats{InputRows: table.Len()}
	matched := make([]datedRow, 0)
	for _, row := range table.Rows {
		parsed, ok := ParseDayFirst(row[dateIdx])
		if !ok {
			stats.Unparseable++
			continue
		}
		if parsed.Month() != time.Month(month) {
			continue
		}
		matched = append(matched, datedRow{date: parsed, row: row})
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].date.Before(matched[j].date)
	})

	out := domain.NewTable(domain.OutputColumns(), nil)
	outDateIdx := out.ColumnIndex(domain.ColumnMonthlyStartDate)
	for _, m := range matched {
		projected := make([]string, len(projection))
		for i, src := range projection {
			projected[i] = m.row[src]
		}
		projected[outDateIdx] = ReformatToMonthDayYear(projected[outDateIdx])
		if projected[outDateIdx] == "" {
			stats.StrictMismatch++
		}
		out.AppendRow(projected)
	}
	stats.Matched = out.Len()

	return out, stats, nil
}

// projectionIndexes maps each required input column to its position in table
func projectionIndexes(table *domain.Table) ([]int, error) {
	indexes := make([]int, len(domain.RequiredColumns))
	var missing []string
	for i, col := range domain.RequiredColumns {
		idx := table.ColumnIndex(col)
		if idx < 0 {
			missing = append(missing, col)
			continue
		}
		indexes[i] = idx
	}
	if len(missing) > 0 {
		return nil, &MissingColumnError{Columns: missing}
	}
	return indexes, nil
}
