package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/tutor-schedule-api/internal/calendar"
	"github.com/noah-isme/tutor-schedule-api/internal/dto"
	"github.com/noah-isme/tutor-schedule-api/internal/models"
	appErrors "github.com/noah-isme/tutor-schedule-api/pkg/errors"
	"github.com/noah-isme/tutor-schedule-api/pkg/export"
)

type teacherLessonReader interface {
	ListTeacherLessons(ctx context.Context, filter models.LessonFilter) ([]models.TeacherLesson, error)
}

// CalendarService serves the teacher calendar: lesson lists, week and month grids, and downloads.
type CalendarService struct {
	lessons   teacherLessonReader
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	rules     ScheduleRules
}

// NewCalendarService constructs the service.
func NewCalendarService(lessons teacherLessonReader, cache *CacheService, validate *validator.Validate, logger *zap.Logger, rules ScheduleRules) *CalendarService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CalendarService{lessons: lessons, cache: cache, validator: validate, logger: logger, rules: rules.withDefaults()}
}

// TeacherLessons lists a teacher's lessons with status totals. The second return
// value reports whether the payload came from cache.
func (s *CalendarService) TeacherLessons(ctx context.Context, q dto.TeacherLessonsQuery) (*dto.TeacherLessonsResponse, bool, error) {
	if err := s.validator.Struct(q); err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid lesson query")
	}
	if !q.From.IsZero() && !q.To.IsZero() && q.To.Before(q.From) {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "to must not be before from")
	}

	yearID := ""
	if q.AcademicYearID != nil {
		yearID = *q.AcademicYearID
	}
	key := TeacherCalendarKey(q.TeacherID, formatOptionalDate(q.From), formatOptionalDate(q.To), yearID, q.Take)

	var cached dto.TeacherLessonsResponse
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return &cached, true, nil
	}

	rows, err := s.lessons.ListTeacherLessons(ctx, models.LessonFilter{
		TeacherID:      q.TeacherID,
		AcademicYearID: q.AcademicYearID,
		From:           q.From,
		To:             q.To,
		Limit:          q.Take,
	})
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lessons")
	}

	resp := &dto.TeacherLessonsResponse{Lessons: make([]dto.TeacherLessonResponse, 0, len(rows))}
	for _, row := range rows {
		resp.Lessons = append(resp.Lessons, dto.TeacherLessonResponse{
			ID:             row.ID,
			ClassID:        row.ClassID,
			ClassName:      row.ClassName,
			ScheduleSlotID: row.ScheduleSlotID,
			ClassroomID:    row.ClassroomID,
			ScheduledDate:  models.FormatDate(row.ScheduledDate),
			StartTime:      row.StartTime,
			EndTime:        row.EndTime,
			Status:         row.Status,
		})
	}
	lessons, err := s.calendarLessons(resp.Lessons)
	if err != nil {
		return nil, false, err
	}
	if resp.Stats, err = calendar.CalculateStatusCounts(lessons); err != nil {
		s.logger.Error("lesson with unknown status", zap.String("teacher_id", q.TeacherID), zap.Error(err))
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to tally lesson statuses")
	}

	_ = s.cache.Set(ctx, key, resp, 0)
	return resp, false, nil
}

func (s *CalendarService) calendarLessons(rows []dto.TeacherLessonResponse) ([]calendar.CalendarLesson, error) {
	raw := make([]calendar.Lesson, 0, len(rows))
	for _, row := range rows {
		raw = append(raw, calendar.Lesson{
			ID:            row.ID,
			ClassID:       row.ClassID,
			ClassName:     row.ClassName,
			ScheduledDate: row.ScheduledDate,
			StartTime:     row.StartTime.String(),
			EndTime:       row.EndTime.String(),
			Status:        row.Status,
		})
	}
	lessons, err := calendar.ToCalendarLessons(raw, s.rules.Location)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to parse lessons")
	}
	return lessons, nil
}

// Grid renders a week (Monday to Sunday) or a month padded to whole weeks around the anchor.
func (s *CalendarService) Grid(ctx context.Context, q dto.CalendarGridQuery) (*dto.CalendarGridResponse, error) {
	if err := s.validator.Struct(q); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid calendar query")
	}
	view := q.View
	if view == "" {
		view = calendar.Weekly
	}
	today := calendar.Today(s.rules.Now(), s.rules.Location)
	anchor := q.Anchor
	if anchor.IsZero() {
		anchor = today
	}
	anchor = models.CivilDate(anchor)

	dateRange, err := calendar.DateRangeForView(anchor, view)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}

	listed, _, err := s.TeacherLessons(ctx, dto.TeacherLessonsQuery{
		TeacherID:      q.TeacherID,
		From:           dateRange.Start,
		To:             dateRange.End,
		AcademicYearID: q.AcademicYearID,
	})
	if err != nil {
		return nil, err
	}
	lessons, err := s.calendarLessons(listed.Lessons)
	if err != nil {
		return nil, err
	}
	byDate := calendar.GroupLessonsByDate(lessons)

	var days []calendar.MonthDayData
	if view == calendar.Monthly {
		days, err = calendar.GenerateMonthGridData(dateRange, anchor, byDate, today)
	} else {
		days, err = calendar.GenerateWeekGridData(dateRange, anchor, byDate, today)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build calendar grid")
	}
	stats, err := calendar.PeriodStats(byDate)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to tally lesson statuses")
	}

	prev, err := calendar.NavigatePrevious(anchor, view)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	next, err := calendar.NavigateNext(anchor, view)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}

	return &dto.CalendarGridResponse{
		View:           view,
		AlternateView:  calendar.ToggleView(view),
		Anchor:         models.FormatDate(anchor),
		Range:          dto.CalendarRange{StartDate: models.FormatDate(dateRange.Start), EndDate: models.FormatDate(dateRange.End)},
		PreviousAnchor: models.FormatDate(prev),
		NextAnchor:     models.FormatDate(next),
		Days:           days,
		Stats:          stats,
	}, nil
}

var lessonExportColumns = []export.Column{
	{Key: "date", Title: "Date", Width: 1.2},
	{Key: "day", Title: "Day", Width: 1.2},
	{Key: "start", Title: "Start", Width: 0.8},
	{Key: "end", Title: "End", Width: 0.8},
	{Key: "class", Title: "Class", Width: 2},
	{Key: "status", Title: "Status", Width: 1.2},
}

// Export renders a teacher's lessons as CSV or PDF.
func (s *CalendarService) Export(ctx context.Context, q dto.CalendarExportQuery) (*dto.ExportFile, error) {
	if err := s.validator.Struct(q); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid export query")
	}
	renderer, err := export.ForFormat(q.Format)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}

	listed, _, err := s.TeacherLessons(ctx, dto.TeacherLessonsQuery{TeacherID: q.TeacherID, From: q.From, To: q.To})
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{
		Title:    "Teacher lessons",
		Subtitle: fmt.Sprintf("%s to %s, %d lessons", orAll(formatOptionalDate(q.From)), orAll(formatOptionalDate(q.To)), listed.Stats.Total),
		Columns:  lessonExportColumns,
		Rows:     make([]map[string]string, 0, len(listed.Lessons)),
	}
	for _, l := range listed.Lessons {
		day := ""
		if date, err := models.ParseDate(l.ScheduledDate); err == nil {
			day = models.DayOf(date).String()
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"date":   l.ScheduledDate,
			"day":    day,
			"start":  l.StartTime.String(),
			"end":    l.EndTime.String(),
			"class":  l.ClassName,
			"status": string(l.Status),
		})
	}

	body, err := renderer.Render(dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	filename := fmt.Sprintf("lessons_%s_%s_%s.%s", q.TeacherID, orAll(formatOptionalDate(q.From)), orAll(formatOptionalDate(q.To)), renderer.Extension())
	s.logger.Info("calendar exported",
		zap.String("teacher_id", q.TeacherID),
		zap.String("filename", filename),
		zap.Int("rows", len(dataset.Rows)),
	)
	return &dto.ExportFile{Filename: filename, ContentType: renderer.ContentType(), Body: body}, nil
}

func formatOptionalDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return models.FormatDate(t)
}

func orAll(v string) string {
	if v == "" {
		return "all"
	}
	return v
}
