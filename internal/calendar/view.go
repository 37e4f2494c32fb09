// Package calendar builds week and month grids from dated lessons. Every
// function is pure: the current day is always passed in by the caller.
package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/noah-isme/tutor-schedule-api/internal/models"
)

// View is the calendar granularity.
type View string

const (
	Weekly  View = "weekly"
	Monthly View = "monthly"
)

// ParseView accepts "weekly"/"week" and "monthly"/"month"; empty means weekly.
func ParseView(value string) (View, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "weekly", "week":
		return Weekly, nil
	case "monthly", "month":
		return Monthly, nil
	default:
		return "", fmt.Errorf("unknown calendar view %q", value)
	}
}

// ToggleView flips between weekly and monthly. The anchor is left to the caller unchanged.
func ToggleView(view View) View {
	if view == Monthly {
		return Weekly
	}
	return Monthly
}

// DateRange is an inclusive span of civil dates.
type DateRange struct {
	Start time.Time `json:"startDate"`
	End   time.Time `json:"endDate"`
}

// Days counts the dates in the range, both ends included.
func (r DateRange) Days() int {
	return int(r.End.Sub(r.Start).Hours()/24) + 1
}

// Contains reports whether day lies inside the range.
func (r DateRange) Contains(day time.Time) bool {
	day = models.CivilDate(day)
	return !day.Before(r.Start) && !day.After(r.End)
}

// Dates enumerates every civil date in the range.
func (r DateRange) Dates() []time.Time {
	out := make([]time.Time, 0, r.Days())
	for d := r.Start; !d.After(r.End); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out
}

// DateRangeForView returns the visible dates for anchor: Monday to Sunday of its
// week, or for months the whole weeks covering the anchor's month.
func DateRangeForView(anchor time.Time, view View) (DateRange, error) {
	anchor = models.CivilDate(anchor)
	switch view {
	case Weekly:
		start := StartOfWeek(anchor)
		return DateRange{Start: start, End: start.AddDate(0, 0, 6)}, nil
	case Monthly:
		first := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, time.UTC)
		last := first.AddDate(0, 1, -1)
		return DateRange{Start: StartOfWeek(first), End: StartOfWeek(last).AddDate(0, 0, 6)}, nil
	default:
		return DateRange{}, fmt.Errorf("unknown calendar view %q", view)
	}
}

// StartOfWeek returns the Monday on or before day.
func StartOfWeek(day time.Time) time.Time {
	day = models.CivilDate(day)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// NavigatePrevious steps the anchor back one week or one calendar month.
func NavigatePrevious(anchor time.Time, view View) (time.Time, error) {
	return step(anchor, view, -1)
}

// NavigateNext steps the anchor forward one week or one calendar month.
func NavigateNext(anchor time.Time, view View) (time.Time, error) {
	return step(anchor, view, 1)
}

func step(anchor time.Time, view View, dir int) (time.Time, error) {
	anchor = models.CivilDate(anchor)
	switch view {
	case Weekly:
		return anchor.AddDate(0, 0, 7*dir), nil
	case Monthly:
		return addMonthsClamped(anchor, dir), nil
	default:
		return time.Time{}, fmt.Errorf("unknown calendar view %q", view)
	}
}

// addMonthsClamped moves by n months keeping the day of month where possible;
// days past the end of the target month clamp to its last day.
func addMonthsClamped(day time.Time, n int) time.Time {
	y, m, d := day.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	if last := first.AddDate(0, 1, -1).Day(); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, time.UTC)
}

// Today returns the current civil date in loc.
func Today(now time.Time, loc *time.Location) time.Time {
	return models.DateIn(now, loc)
}
