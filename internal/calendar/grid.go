package calendar

import (
	"time"

	"github.com/noah-isme/tutor-schedule-api/internal/models"
)

// MonthDayData is one grid cell.
type MonthDayData struct {
	Date           time.Time        `json:"date"`
	DateKey        string           `json:"dateKey"`
	DayNumber      int              `json:"dayNumber"`
	IsCurrentMonth bool             `json:"isCurrentMonth"`
	IsToday        bool             `json:"isToday"`
	Lessons        []CalendarLesson `json:"lessons"`
	StatusCounts   StatusCounts     `json:"statusCounts"`
}

// GenerateMonthGridData emits one cell per date of the padded month range.
func GenerateMonthGridData(r DateRange, anchorMonth time.Time, byDate map[string][]CalendarLesson, today time.Time) ([]MonthDayData, error) {
	return buildCells(r, anchorMonth, byDate, today)
}

// GenerateWeekGridData emits the seven cells of a weekly range.
func GenerateWeekGridData(r DateRange, anchor time.Time, byDate map[string][]CalendarLesson, today time.Time) ([]MonthDayData, error) {
	return buildCells(r, anchor, byDate, today)
}

func buildCells(r DateRange, anchor time.Time, byDate map[string][]CalendarLesson, today time.Time) ([]MonthDayData, error) {
	today = models.CivilDate(today)
	anchorYear, anchorMonth, _ := anchor.Date()

	cells := make([]MonthDayData, 0, r.Days())
	for _, day := range r.Dates() {
		key := models.FormatDate(day)
		lessons := byDate[key]
		if lessons == nil {
			lessons = []CalendarLesson{}
		}
		counts, err := CalculateStatusCounts(lessons)
		if err != nil {
			return nil, err
		}
		cells = append(cells, MonthDayData{
			Date:           day,
			DateKey:        key,
			DayNumber:      day.Day(),
			IsCurrentMonth: day.Year() == anchorYear && day.Month() == anchorMonth,
			IsToday:        day.Equal(today),
			Lessons:        lessons,
			StatusCounts:   counts,
		})
	}
	return cells, nil
}
