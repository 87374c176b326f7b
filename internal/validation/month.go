package validation

import (
	"errors"

	"sustainers/pkg/contracts/domain"
)

var (
	// ErrUnparseableMonth is matched by every month argument failure
	ErrUnparseableMonth = errors.New("unparseable month argument")

	// ErrMonthNotNumber is returned for non-integer month input
	ErrMonthNotNumber = &MonthError{reason: "not a number"}

	// ErrMonthOutOfRange is returned for integers outside 1..12
	ErrMonthOutOfRange = &MonthError{reason: "out of range"}
)

// MonthError describes why a month argument was rejected
type MonthError struct {
	reason string
}

func (e *MonthError) Error() string {
	return "month " + e.reason + ": must be a number between 1 and 12"
}

// Is lets errors.Is(err, ErrUnparseableMonth) match both failures
func (e *MonthError) Is(target error) bool {
	return target == ErrUnparseableMonth
}

// ParseMonthArgument parses a month number typed by a user. Surrounding
// whitespace is ignored. The returned error is ErrMonthNotNumber or
// ErrMonthOutOfRange.
func ParseMonthArgument(raw string) (domain.Month, error) {
	m, err := domain.ParseMonth(raw)
	if err != nil {
		return 0, ErrMonthNotNumber
	}
	return ValidateMonth(int(m))
}

// ValidateMonth range-checks an integer month
func ValidateMonth(n int) (domain.Month, error) {
	m := domain.Month(n)
	if !m.Valid() {
		return 0, ErrMonthOutOfRange
	}
	return m, nil
}
