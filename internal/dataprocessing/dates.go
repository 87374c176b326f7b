package dataprocessing

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// MissingValueMarker is the text spreadsheet exports use for an empty cell
const MissingValueMarker = "nan"

// isMissing reports whether a trimmed cell holds no date at all
func isMissing(s string) bool {
	return s == "" || strings.EqualFold(s, MissingValueMarker)
}

// splitDayMonthYear performs the strict "D/M/Y" split shared by ExtractMonth
// and ReformatToMonthDayYear. Each field must be an unsigned decimal integer.
func splitDayMonthYear(raw string) (day, month, year string, ok bool) {
	s := strings.TrimSpace(raw)
	if isMissing(s) {
		return "", "", "", false
	}

	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return "", "", "", false
	}

	for i, p := range parts {
		p = strings.TrimSpace(p)
		if _, err := strconv.Atoi(p); err != nil || strings.HasPrefix(p, "+") || strings.HasPrefix(p, "-") {
			return "", "", "", false
		}
		parts[i] = p
	}

	return parts[0], parts[1], parts[2], true
}

// ExtractMonth reads the month field of a "D/M/Y" string.
// ok is false for empty input, the missing-value marker, a field count other
// than three, or any non-numeric field.
func ExtractMonth(raw string) (month int, ok bool) {
	_, m, _, ok := splitDayMonthYear(raw)
	if !ok {
		return 0, false
	}
	month, _ = strconv.Atoi(m)
	return month, true
}

// ReformatToMonthDayYear rewrites "D/M/Y" as "MM/DD/Y". Month and day are
// left-padded with zeros to two characters and the year is kept as written.
// Any parse failure yields an empty string.
func ReformatToMonthDayYear(raw string) string {
	d, m, y, ok := splitDayMonthYear(raw)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s/%s/%s", zeroPad(m, 2), zeroPad(d, 2), y)
}

func zeroPad(s string, width int) string {
	if len(s) < width {
		s = strings.Repeat("0", width-len(s)) + s
	}
	return s
}

// numericDayFirst matches "D-M-Y" and "D.M.Y" so they can be read like "D/M/Y"
var numericDayFirst = regexp.MustCompile(`^(\d{1,2})[-.](\d{1,2})[-.](\d{2}|\d{4})(\s.*)?$`)

// ParseDayFirst is the permissive date reader used to select rows by month.
// Numeric day/month pairs are read day first; when that reading is impossible
// (month > 12) the pair is read month first instead. ISO 8601 with or without
// a zone, compact "YYYYMMDD", textual months, weekdays and trailing times are
// handled by dateparse. Two-digit years follow the 69 pivot of Go's "06".
func ParseDayFirst(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if isMissing(s) {
		return time.Time{}, false
	}
	s = numericDayFirst.ReplaceAllString(s, "$1/$2/$3$4")

	t, err := dateparse.ParseIn(s, time.UTC,
		dateparse.PreferMonthFirst(false),
		dateparse.RetryAmbiguousDateWithSwap(true),
	)
	if err != nil || t.Year() == 0 {
		return time.Time{}, false
	}
	return t, true
}
