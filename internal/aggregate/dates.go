// Package aggregate turns a user's habits and logs into calendar, checklist and
// statistics views. Nothing here touches the database or the wall clock: callers
// pass the data and the reference date in.
package aggregate

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// DateLayout is the wire and storage format of a calendar date.
	DateLayout = "2006-01-02"
	// MonthLayout is the wire format of a calendar month.
	MonthLayout = "2006-01"
)

// ErrInvalidInput marks malformed dates, months and ranges.
var ErrInvalidInput = errors.New("invalid input")

var weekdayNames = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// WeekdayAbbrev returns the English three-letter weekday name of t.
func WeekdayAbbrev(t time.Time) string {
	return weekdayNames[(int(t.Weekday())+6)%7]
}

// ParseDate parses a YYYY-MM-DD string into midnight UTC of that date.
func ParseDate(raw string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q must use YYYY-MM-DD", ErrInvalidInput, raw)
	}
	return t, nil
}

// FormatDate renders t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// DateOf returns the calendar date of t, as observed in t's own location,
// expressed as midnight UTC. All date arithmetic in this package happens on
// such values so that DST transitions never shift a day.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysInclusive counts the calendar days from start to end, both included.
// It returns 0 when end is before start.
func DaysInclusive(start, end time.Time) int {
	start, end = DateOf(start), DateOf(end)
	if end.Before(start) {
		return 0
	}
	return int(end.Sub(start).Hours()/24) + 1
}

// Month identifies a calendar month.
type Month struct {
	Year  int
	Month time.Month
}

// ParseMonth parses a YYYY-MM string.
func ParseMonth(raw string) (Month, error) {
	t, err := time.Parse(MonthLayout, strings.TrimSpace(raw))
	if err != nil {
		return Month{}, fmt.Errorf("%w: month %q must use YYYY-MM", ErrInvalidInput, raw)
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

// First is the first day of the month.
func (m Month) First() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Last is the last day of the month.
func (m Month) Last() time.Time {
	return m.First().AddDate(0, 1, -1)
}

// Days is the number of days in the month.
func (m Month) Days() int {
	return m.Last().Day()
}

func (m Month) String() string {
	return m.First().Format(MonthLayout)
}
