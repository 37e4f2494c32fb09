package service

import (
	"time"

	"github.com/noah-isme/tutor-schedule-api/internal/models"
	"github.com/noah-isme/tutor-schedule-api/pkg/config"
)

// ScheduleRules bound the suggestion search and pin the clock used for "today".
type ScheduleRules struct {
	Location       *time.Location
	DayStart       models.TimeOfDay
	DayEnd         models.TimeOfDay
	Step           time.Duration
	MaxSuggestions int
	Now            func() time.Time
}

// RulesFromConfig converts scheduling configuration into rules, falling back to defaults
// for values that do not parse.
func RulesFromConfig(cfg config.SchedulingConfig) ScheduleRules {
	rules := ScheduleRules{
		Location:       cfg.Location(),
		Step:           cfg.SuggestionStep,
		MaxSuggestions: cfg.MaxSuggestions,
	}
	if start, err := models.ParseTimeOfDay(cfg.DayStart); err == nil {
		rules.DayStart = start
	}
	if end, err := models.ParseTimeOfDay(cfg.DayEnd); err == nil {
		rules.DayEnd = end
	}
	return rules.withDefaults()
}

func (r ScheduleRules) withDefaults() ScheduleRules {
	if r.Location == nil {
		r.Location = time.UTC
	}
	if r.DayEnd <= r.DayStart {
		r.DayStart = models.NewTimeOfDay(8, 0)
		r.DayEnd = models.NewTimeOfDay(21, 0)
	}
	if r.Step < time.Minute {
		r.Step = 30 * time.Minute
	}
	if r.MaxSuggestions <= 0 {
		r.MaxSuggestions = 5
	}
	if r.Now == nil {
		r.Now = time.Now
	}
	return r
}

// Today is the current civil date in the scheduling timezone.
func (r ScheduleRules) Today() time.Time {
	return models.DateIn(r.Now(), r.Location)
}

// nextOnOrAfter returns the first date on or after from falling on day.
func nextOnOrAfter(from time.Time, day models.DayOfWeek) time.Time {
	from = models.CivilDate(from)
	offset := (int(day.Weekday()) - int(from.Weekday()) + 7) % 7
	return from.AddDate(0, 0, offset)
}

// occurrences lists every date in [from, to] falling on day.
func occurrences(day models.DayOfWeek, from, to time.Time) []time.Time {
	to = models.CivilDate(to)
	var dates []time.Time
	for d := nextOnOrAfter(from, day); !d.After(to); d = d.AddDate(0, 0, 7) {
		dates = append(dates, d)
	}
	return dates
}

func laterOf(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
