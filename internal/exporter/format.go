package exporter

import (
	"fmt"
	"mime"

	"sustainers/pkg/contracts/domain"
)

// MonthlyFileSuffix follows the month name in every output file name
const MonthlyFileSuffix = " New EN Monthly Donors.csv"

// MonthlyFileName returns "<MonthName> New EN Monthly Donors.csv"
func MonthlyFileName(month domain.Month) string {
	return month.Name() + MonthlyFileSuffix
}

// ContentDisposition returns an attachment header value for filename
func ContentDisposition(filename string) string {
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": filename}); v != "" {
		return v
	}
	return fmt.Sprintf("attachment; filename=%q", filename)
}
