package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Month is a calendar month number in the range 1..12
type Month int

const (
	January Month = iota + 1
	February
	March
	April
	May
	June
	July
	August
	September
	October
	November
	December
)

var monthNames = [...]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// ErrInvalidMonth is returned when a month is not a number in 1..12
var ErrInvalidMonth = errors.New("month must be a number between 1-12")

// Valid reports whether m is in 1..12
func (m Month) Valid() bool {
	return m >= January && m <= December
}

// Name returns the English month name, or an empty string for invalid months
func (m Month) Name() string {
	if !m.Valid() {
		return ""
	}
	return monthNames[m-1]
}

// Label returns the "N - MonthName" form used by the upload form
func (m Month) Label() string {
	return fmt.Sprintf("%d - %s", int(m), m.Name())
}

// String implements fmt.Stringer
func (m Month) String() string {
	if !m.Valid() {
		return fmt.Sprintf("Month(%d)", int(m))
	}
	return m.Name()
}

// AllMonths returns January through December in order
func AllMonths() []Month {
	months := make([]Month, 0, 12)
	for m := January; m <= December; m++ {
		months = append(months, m)
	}
	return months
}

// ParseMonth parses a decimal month number. It does not check the range;
// callers use Valid for that so the two failures can be reported separately.
func ParseMonth(s string) (Month, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%q is not a number: %w", s, ErrInvalidMonth)
	}
	return Month(n), nil
}
