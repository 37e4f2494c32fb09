package models

import "time"

// DateLayout is the wire and storage format for civil dates.
const DateLayout = "2006-01-02"

// CivilDate drops the clock and zone of t, keeping its calendar date as midnight UTC.
func CivilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateIn returns the calendar date of instant t as observed in loc.
func DateIn(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return CivilDate(t.In(loc))
}

// ParseDate parses a yyyy-MM-dd civil date.
func ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, value, time.UTC)
}

// FormatDate renders t's calendar date as yyyy-MM-dd.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
