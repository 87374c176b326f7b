package api

import (
	"sustainers/pkg/contracts/domain"
)

// MonthOption is one entry of the month picker
type MonthOption struct {
	Number int    `json:"number"`
	Name   string `json:"name"`
	Label  string `json:"label"`
}

// MonthOptions lists January through December
func MonthOptions() []MonthOption {
	months := domain.AllMonths()
	out := make([]MonthOption, 0, len(months))
	for _, m := range months {
		out = append(out, MonthOption{Number: int(m), Name: m.Name(), Label: m.Label()})
	}
	return out
}

// ProcessStats reports row counts for one run
type ProcessStats struct {
	InputRows      int `json:"input_rows"`
	Unparseable    int `json:"unparseable"`
	Matched        int `json:"matched"`
	StrictMismatch int `json:"strict_mismatch"`
}

// ProcessResponse is returned by POST /api/process
type ProcessResponse struct {
	Status      string              `json:"status"`
	Month       int                 `json:"month"`
	MonthName   string              `json:"month_name"`
	Records     int                 `json:"records"`
	Filename    string              `json:"filename"`
	Columns     []string            `json:"columns"`
	Preview     []map[string]string `json:"preview"`
	DownloadURL string              `json:"download_url,omitempty"`
	Stats       ProcessStats        `json:"stats"`
}

const (
	StatusSuccess = "success"
	StatusEmpty   = "empty"
)
