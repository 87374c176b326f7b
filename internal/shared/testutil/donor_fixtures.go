package testutil

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"sustainers/pkg/contracts/domain"
)

// DonorRow is one export row keyed by column name. Required columns absent
// from the map are written as empty cells.
type DonorRow map[string]string

// Donor builds a row with the given supporter ID and start date
func Donor(id, startDate string) DonorRow {
	return DonorRow{
		domain.ColumnSupporterID:    id,
		domain.ColumnSupporterEmail: "donor" + id + "@example.org",
		domain.ColumnCampaignID:     "CMP-" + id,
		domain.ColumnFirstName:      "First" + id,
		domain.ColumnLastName:       "Last" + id,
		domain.ColumnCity:           "Springfield",
		domain.ColumnState:          "IL",
		domain.ColumnZIPCode:        "62701",
		domain.ColumnCampaignData4:  "25.00",
		domain.ColumnCampaignData16: startDate,
	}
}

// DonorHeader is the required input column list followed by one extra column
// that the pipeline must ignore
func DonorHeader() []string {
	return append(append([]string(nil), domain.RequiredColumns...), "Campaign Data 1")
}

// DonorRecords renders rows under header
func DonorRecords(header []string, rows ...DonorRow) [][]string {
	records := make([][]string, 0, len(rows)+1)
	records = append(records, header)
	for _, row := range rows {
		record := make([]string, len(header))
		for i, col := range header {
			record[i] = row[col]
		}
		records = append(records, record)
	}
	return records
}

// DonorCSVWithHeader renders rows as CSV bytes under an explicit header
func DonorCSVWithHeader(t *testing.T, header []string, rows ...DonorRow) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(DonorRecords(header, rows...)); err != nil {
		t.Fatalf("failed to render donor CSV: %v", err)
	}
	return buf.Bytes()
}

// DonorCSV renders rows as CSV bytes under DonorHeader
func DonorCSV(t *testing.T, rows ...DonorRow) []byte {
	t.Helper()
	return DonorCSVWithHeader(t, DonorHeader(), rows...)
}

// WriteDonorCSV writes rows to dir/export.csv and returns the path
func WriteDonorCSV(t *testing.T, dir string, rows ...DonorRow) string {
	t.Helper()

	path := filepath.Join(dir, "export.csv")
	if err := os.WriteFile(path, DonorCSV(t, rows...), 0644); err != nil {
		t.Fatalf("failed to write donor CSV: %v", err)
	}
	return path
}

// WriteDonorWorkbook writes rows to dir/export.xlsx on the named sheet
func WriteDonorWorkbook(t *testing.T, dir, sheet string, rows ...DonorRow) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	if sheet == "" {
		sheet = f.GetSheetName(0)
	} else {
		f.SetSheetName(f.GetSheetName(0), sheet)
	}

	for i, record := range DonorRecords(DonorHeader(), rows...) {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("failed to build cell name: %v", err)
		}
		values := make([]interface{}, len(record))
		for j, v := range record {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			t.Fatalf("failed to write workbook row: %v", err)
		}
	}

	path := filepath.Join(dir, "export.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("failed to save workbook: %v", err)
	}
	return path
}

// March2024Donors is the three-row export used across package tests:
// two March start dates out of order and one April start date
func March2024Donors() []DonorRow {
	return []DonorRow{
		Donor("101", "20/3/2024"),
		Donor("102", "1/4/2024"),
		Donor("103", "5/3/2024"),
	}
}
