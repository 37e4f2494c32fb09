package service

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tutor-schedule-api/internal/dto"
	"github.com/noah-isme/tutor-schedule-api/internal/models"
	appErrors "github.com/noah-isme/tutor-schedule-api/pkg/errors"
)

func TestCreateSlotGeneratesLessonsSkippingHolidays(t *testing.T) {
	f := newSchedulingFixture()
	f.holidays = stubHolidays{{ID: "h1", Name: "Founders day", StartDate: date("2025-01-15"), EndDate: date("2025-01-15")}}
	db, mock := newTxDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	svc := f.slotService(db)

	resp, err := svc.Create(context.Background(), "class-1", dto.CreateScheduleSlotRequest{
		DayOfWeek:       models.Wednesday,
		StartTime:       models.MustTimeOfDay("14:00"),
		EndTime:         models.MustTimeOfDay("15:00"),
		SemesterID:      strPtr("S1"),
		GenerateLessons: true,
		GenerationOptions: &dto.GenerationOptions{
			RangeType:    dto.RangeUntilSemesterEnd,
			SkipHolidays: true,
		},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	require.NotNil(t, resp.GenerationSummary)
	assert.Equal(t, 3, resp.GenerationSummary.TotalGenerated)
	assert.Equal(t, 2, resp.GenerationSummary.LessonsCreated)
	assert.Equal(t, 1, resp.GenerationSummary.SkippedHolidays)
	assert.Equal(t, 0, resp.GenerationSummary.SkippedConflicts)
	assert.Equal(t, "2025-01-06", resp.GenerationSummary.FromDate)
	assert.Equal(t, "2025-01-27", resp.GenerationSummary.ToDate)

	require.Len(t, f.lessons.created, 2)
	assert.Equal(t, date("2025-01-08"), f.lessons.created[0].ScheduledDate)
	assert.Equal(t, date("2025-01-22"), f.lessons.created[1].ScheduledDate)
	for _, l := range f.lessons.created {
		assert.Equal(t, "teacher-1", l.TeacherID)
		assert.Equal(t, models.LessonScheduled, l.Status)
		assert.True(t, l.FromSlot(resp.Slot.ID))
	}

	assert.False(t, resp.Slot.IsGlobal)
	assert.Equal(t, 2, resp.Slot.FutureLessonCount)
	assert.Equal(t, []string{"teacher-1"}, f.invalidator.teachers)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.slotWrites.WithLabelValues("create")))
	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.lessonOutcomes.WithLabelValues("created")))
}

func TestCreateSlotWithoutGenerationHasNoSummary(t *testing.T) {
	f := newSchedulingFixture()
	db, mock := newTxDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	resp, err := f.slotService(db).Create(context.Background(), "class-1", dto.CreateScheduleSlotRequest{
		DayOfWeek: models.Friday,
		StartTime: models.MustTimeOfDay("10:00"),
		EndTime:   models.MustTimeOfDay("11:00"),
	})
	require.NoError(t, err)
	assert.Nil(t, resp.GenerationSummary)
	assert.True(t, resp.Slot.IsGlobal)
	assert.Empty(t, f.lessons.created)
	require.Len(t, f.slots.slots, 1)
}

func TestCreateSlotSkipsConflictingDates(t *testing.T) {
	f := newSchedulingFixture()
	f.lessons.lessons = conflictFixtureLessons()[:1]
	db, mock := newTxDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	resp, err := f.slotService(db).Create(context.Background(), "class-1", dto.CreateScheduleSlotRequest{
		DayOfWeek:         models.Wednesday,
		StartTime:         models.MustTimeOfDay("14:00"),
		EndTime:           models.MustTimeOfDay("15:00"),
		SemesterID:        strPtr("S1"),
		GenerateLessons:   true,
		GenerationOptions: &dto.GenerationOptions{SkipConflicts: true},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, resp.GenerationSummary.TotalGenerated)
	assert.Equal(t, 2, resp.GenerationSummary.LessonsCreated)
	assert.Equal(t, 1, resp.GenerationSummary.SkippedConflicts)
	require.Len(t, f.lessons.created, 2)
	assert.Equal(t, date("2025-01-15"), f.lessons.created[0].ScheduledDate)
}

func TestCreateSlotAbortsOnConflict(t *testing.T) {
	f := newSchedulingFixture()
	f.lessons.lessons = conflictFixtureLessons()[:1]
	db, mock := newTxDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := f.slotService(db).Create(context.Background(), "class-1", dto.CreateScheduleSlotRequest{
		DayOfWeek:       models.Wednesday,
		StartTime:       models.MustTimeOfDay("14:00"),
		EndTime:         models.MustTimeOfDay("15:00"),
		SemesterID:      strPtr("S1"),
		GenerateLessons: true,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrScheduleConflict)
	require.NoError(t, mock.ExpectationsWereMet())

	appErr := appErrors.FromError(err)
	details, ok := appErr.Details.(*models.ScheduleConflictError)
	require.True(t, ok)
	require.NotNil(t, details.Conflicts)
	assert.Equal(t, models.ConflictTeacher, details.Conflicts.Conflicts[0].ConflictType)
	assert.Empty(t, f.lessons.created)
	assert.Empty(t, f.invalidator.teachers)
}

func TestCreateSlotRejectsOverlapUnlessAllowed(t *testing.T) {
	f := newSchedulingFixture()
	f.slots.slots = []models.ScheduleSlot{{
		ID: "g1", ClassID: "class-1", DayOfWeek: models.Monday,
		StartTime: models.MustTimeOfDay("09:00"), EndTime: models.MustTimeOfDay("10:00"),
	}}
	req := dto.CreateScheduleSlotRequest{
		DayOfWeek:  models.Monday,
		StartTime:  models.MustTimeOfDay("09:30"),
		EndTime:    models.MustTimeOfDay("10:30"),
		SemesterID: strPtr("S1"),
	}

	db, mock := newTxDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err := f.slotService(db).Create(context.Background(), "class-1", req)
	assert.ErrorIs(t, err, appErrors.ErrScheduleConflict)
	details := appErrors.FromError(err).Details.(*models.ScheduleConflictError)
	require.NotNil(t, details.Overlap)
	assert.Equal(t, models.OverlapPartial, details.Overlap.Overlaps[0].OverlapType)

	req.AllowOverlap = true
	db, mock = newTxDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	_, err = f.slotService(db).Create(context.Background(), "class-1", req)
	require.NoError(t, err)
	assert.Len(t, f.slots.slots, 2)
}

func TestCreateSlotUnknownSemester(t *testing.T) {
	f := newSchedulingFixture()
	db, _ := newTxDB(t)

	_, err := f.slotService(db).Create(context.Background(), "class-1", dto.CreateScheduleSlotRequest{
		DayOfWeek:  models.Monday,
		StartTime:  models.MustTimeOfDay("09:00"),
		EndTime:    models.MustTimeOfDay("10:00"),
		SemesterID: strPtr("S9"),
	})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestUpdateSlotMovesOnlyFutureLessons(t *testing.T) {
	f := newSchedulingFixture()
	f.slots.slots = []models.ScheduleSlot{{
		ID: "slot-1", ClassID: "class-1", DayOfWeek: models.Monday,
		StartTime: models.MustTimeOfDay("09:00"), EndTime: models.MustTimeOfDay("10:00"),
		PastLessonCount: 1, FutureLessonCount: 2,
	}}
	f.lessons.lessons = []models.Lesson{
		{ID: "past", ClassID: "class-1", ScheduleSlotID: strPtr("slot-1"), ScheduledDate: date("2024-12-30"), Status: models.LessonConducted},
		{ID: "next", ClassID: "class-1", ScheduleSlotID: strPtr("slot-1"), ScheduledDate: date("2025-01-06"), Status: models.LessonScheduled},
		{ID: "later", ClassID: "class-1", ScheduleSlotID: strPtr("slot-1"), ScheduledDate: date("2025-01-13"), Status: models.LessonScheduled},
	}
	db, mock := newTxDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	resp, err := f.slotService(db).Update(context.Background(), "class-1", "slot-1", dto.UpdateScheduleSlotRequest{
		DayOfWeek:           models.Wednesday,
		StartTime:           models.MustTimeOfDay("10:00"),
		EndTime:             models.MustTimeOfDay("11:00"),
		UpdateFutureLessons: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.UpdatedFutureLessonsCount)
	assert.Equal(t, models.Wednesday, resp.Slot.DayOfWeek)

	require.Len(t, f.lessons.rescheduled, 2)
	assert.Equal(t, "next", f.lessons.rescheduled[0].lessonID)
	assert.Equal(t, date("2025-01-08"), f.lessons.rescheduled[0].date)
	assert.Equal(t, "later", f.lessons.rescheduled[1].lessonID)
	assert.Equal(t, date("2025-01-15"), f.lessons.rescheduled[1].date)
	assert.Equal(t, models.MustTimeOfDay("10:00"), f.lessons.rescheduled[1].start)
	for _, call := range f.lessons.rescheduled {
		assert.NotEqual(t, "past", call.lessonID)
	}
	assert.Equal(t, []string{"teacher-1"}, f.invalidator.teachers)
}

func updateIntoTeacherClashFixture() *schedulingFixture {
	f := newSchedulingFixture()
	f.slots.slots = []models.ScheduleSlot{{
		ID: "slot-1", ClassID: "class-1", DayOfWeek: models.Monday,
		StartTime: models.MustTimeOfDay("09:00"), EndTime: models.MustTimeOfDay("10:00"),
		FutureLessonCount: 1,
	}}
	f.lessons.lessons = []models.Lesson{
		{ID: "next", ClassID: "class-1", ScheduleSlotID: strPtr("slot-1"), TeacherID: "teacher-1", ClassroomID: strPtr("room-1"),
			ScheduledDate: date("2025-01-06"), StartTime: models.MustTimeOfDay("09:00"), EndTime: models.MustTimeOfDay("10:00"), Status: models.LessonScheduled},
		{ID: "violin", ClassID: "class-2", TeacherID: "teacher-1", ClassroomID: strPtr("room-2"),
			ScheduledDate: date("2025-01-08"), StartTime: models.MustTimeOfDay("10:00"), EndTime: models.MustTimeOfDay("11:00"), Status: models.LessonScheduled},
	}
	return f
}

func TestUpdateSlotRejectsMovingLessonsIntoTeacherClash(t *testing.T) {
	f := updateIntoTeacherClashFixture()
	db, mock := newTxDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := f.slotService(db).Update(context.Background(), "class-1", "slot-1", dto.UpdateScheduleSlotRequest{
		DayOfWeek:           models.Wednesday,
		StartTime:           models.MustTimeOfDay("10:00"),
		EndTime:             models.MustTimeOfDay("11:00"),
		UpdateFutureLessons: true,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrScheduleConflict)
	require.NoError(t, mock.ExpectationsWereMet())

	details, ok := appErrors.FromError(err).Details.(*models.ScheduleConflictError)
	require.True(t, ok)
	require.NotNil(t, details.Conflicts)
	require.Len(t, details.Conflicts.Conflicts, 1)
	conflict := details.Conflicts.Conflicts[0]
	assert.Equal(t, models.ConflictTeacher, conflict.ConflictType)
	assert.Equal(t, "teacher-1", conflict.ResourceID)
	require.Len(t, conflict.Instances, 1)
	assert.Equal(t, "2025-01-08", conflict.Instances[0].Date)
	assert.Equal(t, "violin", conflict.Instances[0].LessonID)

	assert.Empty(t, f.lessons.rescheduled)
	assert.Equal(t, models.Monday, f.slots.slots[0].DayOfWeek)
	assert.Empty(t, f.invalidator.teachers)

	require.NotEmpty(t, f.lessons.scopes)
	assert.Equal(t, date("2025-01-08"), f.lessons.scopes[0].From)
	assert.Equal(t, date("2025-01-08"), f.lessons.scopes[0].To)
}

func TestUpdateSlotMovesIntoClashWhenAllowed(t *testing.T) {
	f := updateIntoTeacherClashFixture()
	db, mock := newTxDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	resp, err := f.slotService(db).Update(context.Background(), "class-1", "slot-1", dto.UpdateScheduleSlotRequest{
		DayOfWeek:           models.Wednesday,
		StartTime:           models.MustTimeOfDay("10:00"),
		EndTime:             models.MustTimeOfDay("11:00"),
		UpdateFutureLessons: true,
		AllowConflicts:      true,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.UpdatedFutureLessonsCount)
	require.Len(t, f.lessons.rescheduled, 1)
	assert.Equal(t, date("2025-01-08"), f.lessons.rescheduled[0].date)
	assert.Empty(t, f.lessons.scopes)
}

func TestUpdateSlotIgnoresOwnLessonsWhenMoving(t *testing.T) {
	f := updateIntoTeacherClashFixture()
	f.lessons.lessons = f.lessons.lessons[:1]
	db, mock := newTxDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	resp, err := f.slotService(db).Update(context.Background(), "class-1", "slot-1", dto.UpdateScheduleSlotRequest{
		DayOfWeek:           models.Monday,
		StartTime:           models.MustTimeOfDay("09:30"),
		EndTime:             models.MustTimeOfDay("10:30"),
		UpdateFutureLessons: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.UpdatedFutureLessonsCount)
	require.Len(t, f.lessons.rescheduled, 1)
	assert.Equal(t, date("2025-01-06"), f.lessons.rescheduled[0].date)
	assert.Equal(t, models.MustTimeOfDay("09:30"), f.lessons.rescheduled[0].start)
}

func TestUpdateArchivedSlotIsRejected(t *testing.T) {
	f := newSchedulingFixture()
	f.slots.slots = []models.ScheduleSlot{{
		ID: "slot-1", ClassID: "class-1", DayOfWeek: models.Monday,
		StartTime: models.MustTimeOfDay("09:00"), EndTime: models.MustTimeOfDay("10:00"), IsObsolete: true,
	}}
	db, mock := newTxDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := f.slotService(db).Update(context.Background(), "class-1", "slot-1", dto.UpdateScheduleSlotRequest{
		DayOfWeek: models.Monday,
		StartTime: models.MustTimeOfDay("09:00"),
		EndTime:   models.MustTimeOfDay("10:30"),
	})
	assert.ErrorIs(t, err, appErrors.ErrConflict)
}

func TestDeleteSlotWithHistoryArchives(t *testing.T) {
	f := newSchedulingFixture()
	f.slots.slots = []models.ScheduleSlot{{ID: "slot-1", ClassID: "class-1", DayOfWeek: models.Monday, PastLessonCount: 1, FutureLessonCount: 2}}
	f.lessons.lessons = []models.Lesson{
		{ID: "past", ScheduleSlotID: strPtr("slot-1"), ScheduledDate: date("2024-12-30")},
		{ID: "f1", ScheduleSlotID: strPtr("slot-1"), ScheduledDate: date("2025-01-06")},
		{ID: "f2", ScheduleSlotID: strPtr("slot-1"), ScheduledDate: date("2025-01-13")},
	}
	db, mock := newTxDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	resp, err := f.slotService(db).Delete(context.Background(), "class-1", "slot-1")
	require.NoError(t, err)
	assert.True(t, resp.WasArchived)
	assert.Equal(t, 1, resp.PastLessonCount)
	assert.Equal(t, 2, resp.RemovedLessonCount)
	assert.Equal(t, []string{"slot-1"}, f.slots.archived)
	assert.Empty(t, f.slots.deleted)
	require.Len(t, f.lessons.lessons, 1)
	assert.Equal(t, "past", f.lessons.lessons[0].ID)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.slotWrites.WithLabelValues("archive")))
}

func TestDeleteSlotWithoutHistoryRemoves(t *testing.T) {
	f := newSchedulingFixture()
	f.slots.slots = []models.ScheduleSlot{{ID: "slot-1", ClassID: "class-1", DayOfWeek: models.Monday, FutureLessonCount: 1}}
	f.lessons.lessons = []models.Lesson{{ID: "f1", ScheduleSlotID: strPtr("slot-1"), ScheduledDate: date("2025-01-06")}}
	db, mock := newTxDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	resp, err := f.slotService(db).Delete(context.Background(), "class-1", "slot-1")
	require.NoError(t, err)
	assert.False(t, resp.WasArchived)
	assert.Equal(t, 1, resp.RemovedLessonCount)
	assert.Equal(t, []string{"slot-1"}, f.slots.deleted)
	assert.Empty(t, f.slots.slots)
	assert.Empty(t, f.lessons.lessons)
}

func TestDeleteUnknownSlot(t *testing.T) {
	f := newSchedulingFixture()
	db, mock := newTxDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := f.slotService(db).Delete(context.Background(), "class-1", "nope")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestListSlotsRequiresClass(t *testing.T) {
	f := newSchedulingFixture()
	db, _ := newTxDB(t)

	_, err := f.slotService(db).List(context.Background(), "missing", dto.ListScheduleSlotsQuery{})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	slots, err := f.slotService(db).List(context.Background(), "class-1", dto.ListScheduleSlotsQuery{})
	require.NoError(t, err)
	assert.NotNil(t, slots)
}
