package calendar

import (
	"fmt"
	"sort"
	"time"

	"github.com/noah-isme/tutor-schedule-api/internal/models"
)

// Lesson is the raw lesson record as delivered by the lesson store.
type Lesson struct {
	ID            string              `json:"id"`
	ClassID       string              `json:"classId"`
	ClassName     string              `json:"className"`
	ScheduledDate string              `json:"scheduledDate"`
	StartTime     string              `json:"startTime"`
	EndTime       string              `json:"endTime"`
	Status        models.LessonStatus `json:"status"`
}

// CalendarLesson is a Lesson with its parsed local date.
type CalendarLesson struct {
	Lesson
	Date      time.Time `json:"date"`
	DayOfWeek int       `json:"dayOfWeek"` // Monday=0 .. Sunday=6
	startHour float64
}

// StartHours is the start time in decimal hours.
func (l CalendarLesson) StartHours() float64 { return l.startHour }

// ToCalendarLessons parses each scheduled date as a calendar date in loc.
// Malformed dates or times fail the whole batch.
func ToCalendarLessons(raw []Lesson, loc *time.Location) ([]CalendarLesson, error) {
	if loc == nil {
		loc = time.UTC
	}
	out := make([]CalendarLesson, 0, len(raw))
	for _, l := range raw {
		date, err := time.ParseInLocation(models.DateLayout, l.ScheduledDate, loc)
		if err != nil {
			return nil, fmt.Errorf("lesson %s: invalid scheduled date %q: %w", l.ID, l.ScheduledDate, err)
		}
		start, err := models.ParseTimeOfDay(l.StartTime)
		if err != nil {
			return nil, fmt.Errorf("lesson %s: %w", l.ID, err)
		}
		out = append(out, CalendarLesson{
			Lesson:    l,
			Date:      date,
			DayOfWeek: (int(date.Weekday()) + 6) % 7,
			startHour: start.Hours(),
		})
	}
	return out, nil
}

// GroupLessonsByDate buckets lessons by their own scheduled date string, each
// bucket ordered by start time with ties kept in input order.
func GroupLessonsByDate(lessons []CalendarLesson) map[string][]CalendarLesson {
	grouped := make(map[string][]CalendarLesson)
	for _, l := range lessons {
		grouped[l.ScheduledDate] = append(grouped[l.ScheduledDate], l)
	}
	for key := range grouped {
		bucket := grouped[key]
		sort.SliceStable(bucket, func(i, j int) bool {
			return bucket[i].startHour < bucket[j].startHour
		})
	}
	return grouped
}
