package daterange

import (
	"fmt"
	"strings"
	"time"
)

// DayLayout is the wire format of calendar dates.
const DayLayout = "2006-01-02"

// Range is a closed time interval [Start, End].
type Range struct {
	Start time.Time
	End   time.Time
}

// Valid reports whether the range can contain any instant.
func (r Range) Valid() bool {
	return !r.Start.IsZero() && !r.End.IsZero() && !r.End.Before(r.Start)
}

// Contains reports whether t lies in [Start, End].
func (r Range) Contains(t time.Time) bool {
	return r.Valid() && !t.Before(r.Start) && !t.After(r.End)
}

// DayRange spans from 00:00:00.000 of startDay to 23:59:59.999 of endDay,
// both taken in startDay's location.
func DayRange(startDay, endDay time.Time) Range {
	loc := startDay.Location()
	endDay = endDay.In(loc)
	return Range{
		Start: time.Date(startDay.Year(), startDay.Month(), startDay.Day(), 0, 0, 0, 0, loc),
		End:   time.Date(endDay.Year(), endDay.Month(), endDay.Day(), 23, 59, 59, int(999*time.Millisecond), loc),
	}
}

// ParseDay parses a YYYY-MM-DD date as local midnight in loc.
func ParseDay(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	d, err := time.ParseInLocation(DayLayout, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", s, err)
	}
	return d, nil
}

// Lenient turns two date strings into a day range without reporting errors:
// an unparseable date yields the zero Range, which matches nothing.
func Lenient(startStr, endStr string, loc *time.Location) Range {
	start, err := ParseDay(startStr, loc)
	if err != nil {
		return Range{}
	}
	end, err := ParseDay(endStr, loc)
	if err != nil {
		return Range{}
	}
	return DayRange(start, end)
}

// Midnight truncates t to the start of its day in loc.
func Midnight(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

func addDays(day time.Time, n int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day()+n, 0, 0, 0, 0, day.Location())
}
