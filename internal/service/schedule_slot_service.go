package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/tutor-schedule-api/internal/dto"
	"github.com/noah-isme/tutor-schedule-api/internal/models"
	"github.com/noah-isme/tutor-schedule-api/pkg/database"
	appErrors "github.com/noah-isme/tutor-schedule-api/pkg/errors"
)

type scheduleSlotStore interface {
	slotLister
	FindByID(ctx context.Context, exec sqlx.ExtContext, classID, slotID string, today time.Time) (*models.ScheduleSlot, error)
	Create(ctx context.Context, exec sqlx.ExtContext, slot *models.ScheduleSlot) error
	Update(ctx context.Context, exec sqlx.ExtContext, slot *models.ScheduleSlot) error
	Archive(ctx context.Context, exec sqlx.ExtContext, slotID string) error
	Delete(ctx context.Context, exec sqlx.ExtContext, slotID string) error
}

type lessonStore interface {
	conflictLessonReader
	CreateBatch(ctx context.Context, exec sqlx.ExtContext, lessons []models.Lesson) error
	ListBySlotFrom(ctx context.Context, exec sqlx.ExtContext, slotID string, from time.Time) ([]models.Lesson, error)
	Reschedule(ctx context.Context, exec sqlx.ExtContext, lessonID string, date time.Time, start, end models.TimeOfDay) error
	DeleteBySlotFrom(ctx context.Context, exec sqlx.ExtContext, slotID string, from time.Time) (int64, error)
	DeleteBySlot(ctx context.Context, exec sqlx.ExtContext, slotID string) (int64, error)
}

type holidayReader interface {
	ListBetween(ctx context.Context, from, to time.Time) ([]models.Holiday, error)
}

type calendarInvalidator interface {
	InvalidateTeacherCalendar(teacherID string)
}

// ScheduleSlotService manages weekly slots and the lessons generated from them.
// Every write runs in one transaction.
type ScheduleSlotService struct {
	db          database.TxBeginner
	slots       scheduleSlotStore
	lessons     lessonStore
	holidays    holidayReader
	conflicts   *ScheduleConflictService
	invalidator calendarInvalidator
	validator   *validator.Validate
	metrics     *MetricsService
	logger      *zap.Logger
}

// ScheduleSlotServiceDeps groups the collaborators of ScheduleSlotService.
type ScheduleSlotServiceDeps struct {
	DB          database.TxBeginner
	Slots       scheduleSlotStore
	Lessons     lessonStore
	Holidays    holidayReader
	Conflicts   *ScheduleConflictService
	Invalidator calendarInvalidator
	Validator   *validator.Validate
	Metrics     *MetricsService
	Logger      *zap.Logger
}

// NewScheduleSlotService constructs the slot service.
func NewScheduleSlotService(deps ScheduleSlotServiceDeps) *ScheduleSlotService {
	if deps.Validator == nil {
		deps.Validator = validator.New()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &ScheduleSlotService{
		db:          deps.DB,
		slots:       deps.Slots,
		lessons:     deps.Lessons,
		holidays:    deps.Holidays,
		conflicts:   deps.Conflicts,
		invalidator: deps.Invalidator,
		validator:   deps.Validator,
		metrics:     deps.Metrics,
		logger:      deps.Logger,
	}
}

func (s *ScheduleSlotService) today() time.Time {
	return s.conflicts.rules.Today()
}

// List returns a class's slots; a semester filter still surfaces global slots.
func (s *ScheduleSlotService) List(ctx context.Context, classID string, q dto.ListScheduleSlotsQuery) ([]models.ScheduleSlot, error) {
	if _, err := s.conflicts.loadClass(ctx, classID); err != nil {
		return nil, err
	}
	slots, err := s.slots.List(ctx, nil, models.ScheduleSlotFilter{
		ClassID:         classID,
		SemesterID:      q.SemesterID,
		IncludeObsolete: q.IncludeObsolete,
	}, s.today())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedule slots")
	}
	if slots == nil {
		slots = []models.ScheduleSlot{}
	}
	return slots, nil
}

// Get returns one slot with its lesson counts.
func (s *ScheduleSlotService) Get(ctx context.Context, classID, slotID string) (*models.ScheduleSlot, error) {
	return s.findSlot(ctx, nil, classID, slotID)
}

func (s *ScheduleSlotService) findSlot(ctx context.Context, exec sqlx.ExtContext, classID, slotID string) (*models.ScheduleSlot, error) {
	slot, err := s.slots.FindByID(ctx, exec, classID, slotID, s.today())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule slot not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule slot")
	}
	return slot, nil
}

func (s *ScheduleSlotService) checkSemester(ctx context.Context, semesterID *string) error {
	if semesterID == nil {
		return nil
	}
	if _, err := s.conflicts.terms.FindSemester(ctx, *semesterID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "semester not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load semester")
	}
	return nil
}

func overlapError(info *models.ExistingScheduleOverlapInfo) error {
	return appErrors.WithDetails(
		appErrors.Clone(appErrors.ErrScheduleConflict, "slot overlaps an existing slot of this class"),
		&models.ScheduleConflictError{Message: "slot overlaps an existing slot of this class", Overlap: info},
	)
}

func conflictError(info models.ScheduleConflictInfo) error {
	return appErrors.WithDetails(
		appErrors.Clone(appErrors.ErrScheduleConflict, "lesson generation collides with existing lessons"),
		&models.ScheduleConflictError{Message: "lesson generation collides with existing lessons", Conflicts: &info},
	)
}

// Create stores a slot and optionally materialises its lessons over the resolved range.
func (s *ScheduleSlotService) Create(ctx context.Context, classID string, req dto.CreateScheduleSlotRequest) (*dto.CreateScheduleSlotResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule slot payload")
	}
	if err := validateTimeRange(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}
	class, err := s.conflicts.loadClass(ctx, classID)
	if err != nil {
		return nil, err
	}
	if err := s.checkSemester(ctx, req.SemesterID); err != nil {
		return nil, err
	}

	slot := &models.ScheduleSlot{
		ClassID:    classID,
		DayOfWeek:  req.DayOfWeek,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		SemesterID: req.SemesterID,
	}
	resp := &dto.CreateScheduleSlotResponse{}

	err = database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		proposal := dto.SlotProposal{ClassID: classID, DayOfWeek: req.DayOfWeek, StartTime: req.StartTime, EndTime: req.EndTime, SemesterID: req.SemesterID}
		overlap, err := s.conflicts.overlaps(ctx, tx, proposal)
		if err != nil {
			return err
		}
		if overlap.HasOverlap && !req.AllowOverlap {
			return overlapError(overlap)
		}

		if err := s.slots.Create(ctx, tx, slot); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create schedule slot")
		}

		if req.GenerateLessons {
			opts := dto.GenerationOptions{}
			if req.GenerationOptions != nil {
				opts = *req.GenerationOptions
			}
			summary, err := s.generateLessons(ctx, tx, class, slot, opts)
			if err != nil {
				return err
			}
			resp.GenerationSummary = summary
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slot.FutureLessonCount = 0
	if resp.GenerationSummary != nil {
		slot.FutureLessonCount = resp.GenerationSummary.LessonsCreated
		s.metrics.RecordGeneration(resp.GenerationSummary.LessonsCreated, resp.GenerationSummary.SkippedHolidays, resp.GenerationSummary.SkippedConflicts)
	}
	resp.Slot = *slot

	s.metrics.RecordSlotWrite("create")
	s.invalidator.InvalidateTeacherCalendar(class.TeacherID)
	s.logger.Info("schedule slot created",
		zap.String("class_id", classID),
		zap.String("slot_id", slot.ID),
		zap.Stringer("day_of_week", slot.DayOfWeek),
		zap.Bool("generated", resp.GenerationSummary != nil),
	)
	return resp, nil
}

// generateLessons materialises one lesson per matching date inside the window,
// skipping holidays and conflicting dates as requested. Without skipConflicts the
// first conflicting date aborts the surrounding transaction.
func (s *ScheduleSlotService) generateLessons(ctx context.Context, exec sqlx.ExtContext, class *models.Class, slot *models.ScheduleSlot, opts dto.GenerationOptions) (*dto.GenerationSummary, error) {
	window, err := s.conflicts.resolveWindow(ctx, class, slot.SemesterID, opts.RangeType)
	if err != nil {
		return nil, err
	}
	summary := &dto.GenerationSummary{FromDate: models.FormatDate(window.from), ToDate: models.FormatDate(window.to)}
	dates := occurrences(slot.DayOfWeek, window.from, window.to)
	if len(dates) == 0 {
		return summary, nil
	}

	var holidays []models.Holiday
	if opts.SkipHolidays {
		if holidays, err = s.holidays.ListBetween(ctx, window.from, window.to); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load holidays")
		}
	}
	index, err := s.conflicts.loadIndex(ctx, exec, class, slot.ID, window)
	if err != nil {
		return nil, err
	}

	lessons := make([]models.Lesson, 0, len(dates))
	for _, date := range dates {
		summary.TotalGenerated++
		if onHoliday(date, holidays) {
			summary.SkippedHolidays++
			continue
		}
		if hits := index.hits(date, slot.StartTime, slot.EndTime); len(hits) > 0 {
			if !opts.SkipConflicts {
				return nil, conflictError(index.conflicts([]time.Time{date}, slot.StartTime, slot.EndTime))
			}
			summary.SkippedConflicts++
			continue
		}
		slotID := slot.ID
		lessons = append(lessons, models.Lesson{
			ClassID:        class.ID,
			ScheduleSlotID: &slotID,
			TeacherID:      class.TeacherID,
			ClassroomID:    class.ClassroomID,
			ScheduledDate:  date,
			StartTime:      slot.StartTime,
			EndTime:        slot.EndTime,
			Status:         models.LessonScheduled,
		})
	}

	if err := s.lessons.CreateBatch(ctx, exec, lessons); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create lessons")
	}
	summary.LessonsCreated = len(lessons)
	return summary, nil
}

func onHoliday(date time.Time, holidays []models.Holiday) bool {
	for _, h := range holidays {
		if h.Covers(date) {
			return true
		}
	}
	return false
}

// Update changes a slot's day, times or semester. With UpdateFutureLessons every
// lesson dated today or later moves to the first occurrence of the new weekday on
// or after its current date and takes the new times; earlier lessons stay as they are.
func (s *ScheduleSlotService) Update(ctx context.Context, classID, slotID string, req dto.UpdateScheduleSlotRequest) (*dto.UpdateScheduleSlotResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule slot payload")
	}
	if err := validateTimeRange(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}
	class, err := s.conflicts.loadClass(ctx, classID)
	if err != nil {
		return nil, err
	}
	if err := s.checkSemester(ctx, req.SemesterID); err != nil {
		return nil, err
	}

	today := s.today()
	resp := &dto.UpdateScheduleSlotResponse{}
	err = database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		slot, err := s.findSlot(ctx, tx, classID, slotID)
		if err != nil {
			return err
		}
		if slot.IsObsolete {
			return appErrors.Clone(appErrors.ErrConflict, "archived schedule slot cannot be modified")
		}

		proposal := dto.SlotProposal{ClassID: classID, DayOfWeek: req.DayOfWeek, StartTime: req.StartTime, EndTime: req.EndTime, SemesterID: req.SemesterID, ExcludeSlotID: slotID}
		overlap, err := s.conflicts.overlaps(ctx, tx, proposal)
		if err != nil {
			return err
		}
		if overlap.HasOverlap && !req.AllowOverlap {
			return overlapError(overlap)
		}

		var future []models.Lesson
		if req.UpdateFutureLessons {
			if future, err = s.lessons.ListBySlotFrom(ctx, tx, slotID, today); err != nil {
				return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load future lessons")
			}
			if !req.AllowConflicts {
				info, err := s.rescheduleConflicts(ctx, tx, class, slotID, future, req)
				if err != nil {
					return err
				}
				if info.HasConflicts {
					return conflictError(info)
				}
			}
		}

		slot.DayOfWeek = req.DayOfWeek
		slot.StartTime = req.StartTime
		slot.EndTime = req.EndTime
		slot.SemesterID = req.SemesterID
		if err := s.slots.Update(ctx, tx, slot); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, "schedule slot not found")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update schedule slot")
		}

		if req.UpdateFutureLessons {
			if err := s.rescheduleFuture(ctx, tx, slot, future); err != nil {
				return err
			}
			resp.UpdatedFutureLessonsCount = len(future)
		}

		updated, err := s.findSlot(ctx, tx, classID, slotID)
		if err != nil {
			return err
		}
		resp.Slot = *updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordSlotWrite("update")
	s.invalidator.InvalidateTeacherCalendar(class.TeacherID)
	s.logger.Info("schedule slot updated",
		zap.String("class_id", classID),
		zap.String("slot_id", slotID),
		zap.Int("updated_future_lessons", resp.UpdatedFutureLessonsCount),
	)
	return resp, nil
}

// rescheduleTargets maps each future lesson to the first date on or after it that
// falls on the slot's new day.
func rescheduleTargets(future []models.Lesson, day models.DayOfWeek) []time.Time {
	targets := make([]time.Time, 0, len(future))
	for _, lesson := range future {
		targets = append(targets, nextOnOrAfter(lesson.ScheduledDate, day))
	}
	return targets
}

// rescheduleConflicts checks the moved lessons against the teacher's, the classroom's
// and the class's other lessons. The slot's own lessons are ignored.
func (s *ScheduleSlotService) rescheduleConflicts(ctx context.Context, exec sqlx.ExtContext, class *models.Class, slotID string, future []models.Lesson, req dto.UpdateScheduleSlotRequest) (models.ScheduleConflictInfo, error) {
	targets := rescheduleTargets(future, req.DayOfWeek)
	if len(targets) == 0 {
		return models.ScheduleConflictInfo{Conflicts: []models.ScheduleConflict{}}, nil
	}
	window := generationWindow{from: targets[0], to: targets[0]}
	for _, d := range targets[1:] {
		if d.Before(window.from) {
			window.from = d
		}
		if d.After(window.to) {
			window.to = d
		}
	}

	index, err := s.conflicts.loadIndex(ctx, exec, class, slotID, window)
	if err != nil {
		return models.ScheduleConflictInfo{}, err
	}
	info := index.conflicts(targets, req.StartTime, req.EndTime)
	for _, c := range info.Conflicts {
		s.metrics.RecordConflict(string(c.ConflictType))
	}
	return info, nil
}

func (s *ScheduleSlotService) rescheduleFuture(ctx context.Context, exec sqlx.ExtContext, slot *models.ScheduleSlot, future []models.Lesson) error {
	for _, lesson := range future {
		date := nextOnOrAfter(lesson.ScheduledDate, slot.DayOfWeek)
		if err := s.lessons.Reschedule(ctx, exec, lesson.ID, date, slot.StartTime, slot.EndTime); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("failed to reschedule lesson %s", lesson.ID))
		}
	}
	return nil
}

// Delete archives a slot that already has past lessons and removes only its future
// lessons; a slot without history is removed together with its lessons.
func (s *ScheduleSlotService) Delete(ctx context.Context, classID, slotID string) (*dto.DeleteScheduleSlotResponse, error) {
	class, err := s.conflicts.loadClass(ctx, classID)
	if err != nil {
		return nil, err
	}

	today := s.today()
	resp := &dto.DeleteScheduleSlotResponse{}
	err = database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		slot, err := s.findSlot(ctx, tx, classID, slotID)
		if err != nil {
			return err
		}
		resp.PastLessonCount = slot.PastLessonCount

		if slot.PastLessonCount > 0 {
			removed, err := s.lessons.DeleteBySlotFrom(ctx, tx, slotID, today)
			if err != nil {
				return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove future lessons")
			}
			if err := s.slots.Archive(ctx, tx, slotID); err != nil {
				return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to archive schedule slot")
			}
			resp.WasArchived = true
			resp.RemovedLessonCount = int(removed)
			return nil
		}

		removed, err := s.lessons.DeleteBySlot(ctx, tx, slotID)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove lessons")
		}
		if err := s.slots.Delete(ctx, tx, slotID); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete schedule slot")
		}
		resp.RemovedLessonCount = int(removed)
		return nil
	})
	if err != nil {
		return nil, err
	}

	operation := "delete"
	if resp.WasArchived {
		operation = "archive"
	}
	s.metrics.RecordSlotWrite(operation)
	s.invalidator.InvalidateTeacherCalendar(class.TeacherID)
	s.logger.Info("schedule slot removed",
		zap.String("class_id", classID),
		zap.String("slot_id", slotID),
		zap.Bool("archived", resp.WasArchived),
		zap.Int("past_lessons", resp.PastLessonCount),
		zap.Int("removed_lessons", resp.RemovedLessonCount),
	)
	return resp, nil
}
