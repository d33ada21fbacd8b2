package timeline

import "time"

// JulianDay converts a proleptic Gregorian calendar date plus a fractional
// hour of day (UT) into a Julian Day number. Month must be in 1..12; day
// range validity is the caller's concern.
func JulianDay(year, month, day int, hour float64) float64 {
	a := floorDiv(14-month, 12)
	y := year + 4800 - a
	m := month + 12*a - 3

	jdn := day + floorDiv(153*m+2, 5) + 365*y + floorDiv(y, 4) - floorDiv(y, 100) + floorDiv(y, 400) - 32045

	// JDN is counted from noon, JD from the preceding midnight.
	return float64(jdn) - 0.5 + hour/24.0
}

// JulianDayFromTime returns the Julian Day (UT) of t.
func JulianDayFromTime(t time.Time) float64 {
	u := t.UTC()
	return JulianDay(u.Year(), int(u.Month()), u.Day(), HourOfDay(u))
}

// HourOfDay returns the fractional hour of t in its own location.
func HourOfDay(t time.Time) float64 {
	return float64(t.Hour()) +
		float64(t.Minute())/60.0 +
		float64(t.Second())/3600.0 +
		float64(t.Nanosecond())/3.6e12
}

// floorDiv rounds toward negative infinity so the algorithm stays valid for
// proleptic dates before year -4800.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
