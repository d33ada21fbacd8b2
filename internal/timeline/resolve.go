// Package timeline turns civil birth moments into astronomical time. Every
// function here is a pure map of its arguments: no wall clock, randomness, or
// locale is consulted, so identical input always yields identical output.
package timeline

import (
	"fmt"
	"strings"
	"time"
)

// Date is a proleptic Gregorian calendar date without a zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate parses YYYY-MM-DD and rejects impossible days such as 2023-02-30.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d Date) valid() bool {
	if d.Month < time.January || d.Month > time.December {
		return false
	}
	t := time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
	return t.Year() == d.Year && t.Month() == d.Month && t.Day() == d.Day
}

func (d Date) at(c Clock) time.Time {
	return time.Date(d.Year, d.Month, d.Day, c.Hour, c.Minute, 0, 0, time.UTC)
}

// Clock is a 24-hour wall clock reading with minute precision.
type Clock struct {
	Hour   int
	Minute int
}

// ParseClock accepts exactly "HH:MM" with two digits on each side,
// 00 <= HH <= 23 and 00 <= MM <= 59.
func ParseClock(s string) (Clock, error) {
	if len(s) != 5 || s[2] != ':' {
		return Clock{}, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}
	hh, ok1 := twoDigits(s[0:2])
	mm, ok2 := twoDigits(s[3:5])
	if !ok1 || !ok2 || hh > 23 || mm > 59 {
		return Clock{}, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}
	return Clock{Hour: hh, Minute: mm}, nil
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

func twoDigits(s string) (int, bool) {
	if s[0] < '0' || s[0] > '9' || s[1] < '0' || s[1] > '9' {
		return 0, false
	}
	return int(s[0]-'0')*10 + int(s[1]-'0'), true
}

// ResolvedInstant is an exact birth moment.
type ResolvedInstant struct {
	HasExactTime bool      `json:"has_exact_time"`
	UTC          time.Time `json:"utc_instant"`
	JulianDayUT  float64   `json:"julian_day_ut"`
}

// ResolvedInterval is the local calendar day [00:00, 24:00) expressed in UT.
type ResolvedInterval struct {
	HasExactTime     bool      `json:"has_exact_time"`
	StartUTC         time.Time `json:"start_utc"`
	EndUTC           time.Time `json:"end_utc"`
	JulianDayStartUT float64   `json:"julian_day_start_ut"`
	JulianDayEndUT   float64   `json:"julian_day_end_ut"`
}

// ResolveInstant converts a civil date and HH:MM in tzID into UTC and a
// Julian Day. Times skipped by a spring-forward transition fail with
// ErrTimeNonExistent; times repeated by a fall-back transition resolve to
// their first occurrence.
func ResolveInstant(date Date, hhmm string, tzID string) (ResolvedInstant, error) {
	clock, err := ParseClock(hhmm)
	if err != nil {
		return ResolvedInstant{}, err
	}
	if !date.valid() {
		return ResolvedInstant{}, fmt.Errorf("%w: %s", ErrInvalidDate, date)
	}
	loc, err := LoadZone(tzID)
	if err != nil {
		return ResolvedInstant{}, err
	}

	wall := date.at(clock)
	instants := wallInstants(wall, loc)
	if len(instants) == 0 {
		return ResolvedInstant{}, fmt.Errorf("%w: %s %s in %s", ErrTimeNonExistent, date, clock, loc)
	}
	utc := instants[firstOccurrence]

	return ResolvedInstant{
		HasExactTime: true,
		UTC:          utc,
		JulianDayUT:  JulianDayFromTime(utc),
	}, nil
}

// ResolveInterval converts the local day of date in tzID into a UT interval.
// Each boundary resolves independently: a repeated midnight takes its first
// occurrence and a skipped midnight maps to the instant the gap ends, which
// is when that local day actually begins.
func ResolveInterval(date Date, tzID string) (ResolvedInterval, error) {
	if !date.valid() {
		return ResolvedInterval{}, fmt.Errorf("%w: %s", ErrInvalidDate, date)
	}
	loc, err := LoadZone(tzID)
	if err != nil {
		return ResolvedInterval{}, err
	}

	startWall := date.at(Clock{})
	endWall := startWall.AddDate(0, 0, 1)

	start := resolveEdge(startWall, loc)
	end := resolveEdge(endWall, loc)

	return ResolvedInterval{
		HasExactTime:     false,
		StartUTC:         start,
		EndUTC:           end,
		JulianDayStartUT: JulianDayFromTime(start),
		JulianDayEndUT:   JulianDayFromTime(end),
	}, nil
}

// resolveEdge resolves a day boundary. A skipped midnight is the first
// skipped minute of its gap, so it maps to the instant the gap closes.
func resolveEdge(wall time.Time, loc *time.Location) time.Time {
	instants := wallInstants(wall, loc)
	if len(instants) == 0 {
		return preTransitionInstant(wall, loc)
	}
	return instants[firstOccurrence]
}
