package daterange

import (
	"time"
)

// Policy is the single place where requested date ranges are normalised.
//
// start is clamped into [today-LookbackDays, today]; end snaps forward to
// start when earlier and is capped at min(start+MaxSpanDays-1, today).
// A zero LookbackDays or MaxSpanDays disables that bound.
type Policy struct {
	LookbackDays int
	MaxSpanDays  int
	Location     *time.Location
}

// Resolved is a normalised request.
type Resolved struct {
	Range    Range  `json:"-"`
	StartDay string `json:"start"`
	EndDay   string `json:"end"`
	Adjusted bool   `json:"adjusted"`
}

// Bounds are the limits a date picker should enforce.
type Bounds struct {
	Today       string `json:"today"`
	MinStart    string `json:"minStart,omitempty"`
	MaxEnd      string `json:"maxEnd"`
	MaxSpanDays int    `json:"maxSpanDays,omitempty"`
}

func (p Policy) location() *time.Location {
	if p.Location == nil {
		return time.Local
	}
	return p.Location
}

// Resolve parses and normalises a requested range. Empty strings default to
// today; malformed dates are an error.
func (p Policy) Resolve(startStr, endStr string, now time.Time) (Resolved, error) {
	loc := p.location()
	today := Midnight(now, loc)

	start, end := today, today
	var err error
	if startStr != "" {
		if start, err = ParseDay(startStr, loc); err != nil {
			return Resolved{}, err
		}
	}
	if endStr != "" {
		if end, err = ParseDay(endStr, loc); err != nil {
			return Resolved{}, err
		}
	}

	reqStart, reqEnd := start, end

	if start.After(today) {
		start = today
	}
	if p.LookbackDays > 0 {
		if floor := addDays(today, -p.LookbackDays); start.Before(floor) {
			start = floor
		}
	}
	if end.Before(start) {
		end = start
	}
	if p.MaxSpanDays > 0 {
		if maxEnd := addDays(start, p.MaxSpanDays-1); end.After(maxEnd) {
			end = maxEnd
		}
	}
	if end.After(today) {
		end = today
	}

	return Resolved{
		Range:    DayRange(start, end),
		StartDay: start.Format(DayLayout),
		EndDay:   end.Format(DayLayout),
		Adjusted: !start.Equal(reqStart) || !end.Equal(reqEnd),
	}, nil
}

// Bounds returns the picker limits for the day containing now.
func (p Policy) Bounds(now time.Time) Bounds {
	today := Midnight(now, p.location())
	b := Bounds{
		Today:       today.Format(DayLayout),
		MaxEnd:      today.Format(DayLayout),
		MaxSpanDays: p.MaxSpanDays,
	}
	if p.LookbackDays > 0 {
		b.MinStart = addDays(today, -p.LookbackDays).Format(DayLayout)
	}
	return b
}
