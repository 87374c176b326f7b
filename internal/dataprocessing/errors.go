package dataprocessing

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingColumn is matched by every *MissingColumnError
	ErrMissingColumn = errors.New("required column missing")

	// ErrNoHeader is returned when the input has no header row
	ErrNoHeader = errors.New("input has no header row")

	// ErrUnsupportedFormat is returned for file extensions other than .csv and .xlsx
	ErrUnsupportedFormat = errors.New("unsupported input format")

	// ErrUnsupportedEncoding is returned for unknown input encodings
	ErrUnsupportedEncoding = errors.New("unsupported input encoding")
)

// MissingColumnError names the required columns absent from the input
type MissingColumnError struct {
	Columns []string
}

func (e *MissingColumnError) Error() string {
	if len(e.Columns) == 1 {
		return fmt.Sprintf("Column '%s' not found in CSV file", e.Columns[0])
	}
	quoted := make([]string, len(e.Columns))
	for i, c := range e.Columns {
		quoted[i] = "'" + c + "'"
	}
	return fmt.Sprintf("Columns %s not found in CSV file", strings.Join(quoted, ", "))
}

// Is lets errors.Is(err, ErrMissingColumn) match
func (e *MissingColumnError) Is(target error) bool {
	return target == ErrMissingColumn
}
