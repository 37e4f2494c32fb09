package dto

import (
	"time"

	"github.com/noah-isme/tutor-schedule-api/internal/calendar"
	"github.com/noah-isme/tutor-schedule-api/internal/models"
)

// TeacherLessonsQuery selects a teacher's lessons over a date range.
type TeacherLessonsQuery struct {
	TeacherID      string `validate:"required"`
	From           time.Time
	To             time.Time
	AcademicYearID *string
	Take           int `validate:"min=0,max=1000"`
}

// TeacherLessonResponse is a lesson as rendered on the teacher calendar.
type TeacherLessonResponse struct {
	ID             string              `json:"id"`
	ClassID        string              `json:"classId"`
	ClassName      string              `json:"className"`
	ScheduleSlotID *string             `json:"scheduleSlotId,omitempty"`
	ClassroomID    *string             `json:"classroomId,omitempty"`
	ScheduledDate  string              `json:"scheduledDate"`
	StartTime      models.TimeOfDay    `json:"startTime"`
	EndTime        models.TimeOfDay    `json:"endTime"`
	Status         models.LessonStatus `json:"statusName"`
}

// TeacherLessonsResponse wraps the lessons with their period statistics.
type TeacherLessonsResponse struct {
	Lessons []TeacherLessonResponse `json:"lessons"`
	Stats   calendar.StatusCounts   `json:"stats"`
}

// CalendarGridQuery asks for a rendered week or month.
type CalendarGridQuery struct {
	TeacherID      string `validate:"required"`
	View           calendar.View
	Anchor         time.Time
	AcademicYearID *string
}

// CalendarGridResponse is a complete grid with navigation anchors.
type CalendarGridResponse struct {
	View           calendar.View           `json:"view"`
	AlternateView  calendar.View           `json:"alternateView"`
	Anchor         string                  `json:"anchor"`
	Range          CalendarRange           `json:"range"`
	PreviousAnchor string                  `json:"previousAnchor"`
	NextAnchor     string                  `json:"nextAnchor"`
	Days           []calendar.MonthDayData `json:"days"`
	Stats          calendar.StatusCounts   `json:"stats"`
}

// CalendarRange is a date range rendered as yyyy-MM-dd strings.
type CalendarRange struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// CalendarExportQuery selects lessons to download.
type CalendarExportQuery struct {
	TeacherID string `validate:"required"`
	From      time.Time
	To        time.Time
	Format    string `validate:"omitempty,oneof=csv pdf"`
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}
