package calendar

import (
	"fmt"

	"github.com/noah-isme/tutor-schedule-api/internal/models"
)

// StatusCounts tallies lessons by status. Total always equals the number of lessons counted.
type StatusCounts struct {
	Scheduled int `json:"scheduled"`
	Conducted int `json:"conducted"`
	Cancelled int `json:"cancelled"`
	MakeUp    int `json:"makeUp"`
	NoShow    int `json:"noShow"`
	Total     int `json:"total"`
}

// Add tallies one status.
func (s *StatusCounts) Add(status models.LessonStatus) error {
	switch status {
	case models.LessonScheduled:
		s.Scheduled++
	case models.LessonConducted:
		s.Conducted++
	case models.LessonCancelled:
		s.Cancelled++
	case models.LessonMakeUp:
		s.MakeUp++
	case models.LessonNoShow:
		s.NoShow++
	default:
		return fmt.Errorf("unknown lesson status %q", status)
	}
	s.Total++
	return nil
}

// Merge adds o into s.
func (s *StatusCounts) Merge(o StatusCounts) {
	s.Scheduled += o.Scheduled
	s.Conducted += o.Conducted
	s.Cancelled += o.Cancelled
	s.MakeUp += o.MakeUp
	s.NoShow += o.NoShow
	s.Total += o.Total
}

// CalculateStatusCounts tallies lessons. An unknown status aborts with an error
// naming it rather than producing a total that disagrees with len(lessons).
func CalculateStatusCounts(lessons []CalendarLesson) (StatusCounts, error) {
	var counts StatusCounts
	for _, l := range lessons {
		if err := counts.Add(l.Status); err != nil {
			return StatusCounts{}, fmt.Errorf("lesson %s: %w", l.ID, err)
		}
	}
	return counts, nil
}

// PeriodStats tallies every bucket of a grouped lesson map.
func PeriodStats(byDate map[string][]CalendarLesson) (StatusCounts, error) {
	var total StatusCounts
	for _, bucket := range byDate {
		counts, err := CalculateStatusCounts(bucket)
		if err != nil {
			return StatusCounts{}, err
		}
		total.Merge(counts)
	}
	return total, nil
}
