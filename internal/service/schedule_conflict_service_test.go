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

func TestValidateOverlapPartialAgainstGlobalSlot(t *testing.T) {
	f := newSchedulingFixture()
	f.slots.slots = []models.ScheduleSlot{{
		ID: "g1", ClassID: "class-1", DayOfWeek: models.Monday,
		StartTime: models.MustTimeOfDay("09:00"), EndTime: models.MustTimeOfDay("10:00"),
		IsGlobal: true, FutureLessonCount: 4,
	}}

	info, err := f.conflicts.ValidateOverlap(context.Background(), dto.SlotProposal{
		ClassID: "class-1", DayOfWeek: models.Monday,
		StartTime: models.MustTimeOfDay("09:30"), EndTime: models.MustTimeOfDay("10:30"),
		SemesterID: strPtr("S1"),
	})
	require.NoError(t, err)
	require.True(t, info.HasOverlap)
	require.Len(t, info.Overlaps, 1)
	assert.Equal(t, "g1", info.Overlaps[0].ScheduleSlotID)
	assert.Equal(t, models.OverlapPartial, info.Overlaps[0].OverlapType)
	assert.Equal(t, 4, info.Overlaps[0].FutureLessonCount)
}

func TestValidateOverlapOtherDayIsFree(t *testing.T) {
	f := newSchedulingFixture()
	f.slots.slots = []models.ScheduleSlot{{
		ID: "g1", ClassID: "class-1", DayOfWeek: models.Monday,
		StartTime: models.MustTimeOfDay("09:00"), EndTime: models.MustTimeOfDay("10:00"),
	}}

	info, err := f.conflicts.ValidateOverlap(context.Background(), dto.SlotProposal{
		ClassID: "class-1", DayOfWeek: models.Tuesday,
		StartTime: models.MustTimeOfDay("09:30"), EndTime: models.MustTimeOfDay("10:30"),
	})
	require.NoError(t, err)
	assert.False(t, info.HasOverlap)
	assert.NotNil(t, info.Overlaps)
	assert.Empty(t, info.Overlaps)
}

func TestDetectOverlapsScopesAndBoundaries(t *testing.T) {
	nine, ten, eleven := models.MustTimeOfDay("09:00"), models.MustTimeOfDay("10:00"), models.MustTimeOfDay("11:00")
	existing := []models.ScheduleSlot{
		{ID: "s2-slot", ClassID: "class-1", DayOfWeek: models.Monday, StartTime: nine, EndTime: ten, SemesterID: strPtr("S2")},
		{ID: "exact", ClassID: "class-1", DayOfWeek: models.Monday, StartTime: nine, EndTime: ten, SemesterID: strPtr("S1")},
		{ID: "archived", ClassID: "class-1", DayOfWeek: models.Monday, StartTime: nine, EndTime: ten, IsObsolete: true},
		{ID: "later", ClassID: "class-1", DayOfWeek: models.Monday, StartTime: ten, EndTime: eleven},
	}

	info := DetectOverlaps(dto.SlotProposal{ClassID: "class-1", DayOfWeek: models.Monday, StartTime: nine, EndTime: ten, SemesterID: strPtr("S1")}, existing)
	require.Len(t, info.Overlaps, 1)
	assert.Equal(t, "exact", info.Overlaps[0].ScheduleSlotID)
	assert.Equal(t, models.OverlapExact, info.Overlaps[0].OverlapType)

	info = DetectOverlaps(dto.SlotProposal{ClassID: "class-1", DayOfWeek: models.Monday, StartTime: nine, EndTime: ten, ExcludeSlotID: "exact", SemesterID: strPtr("S1")}, existing)
	assert.False(t, info.HasOverlap)

	// a global proposal sees every semester
	info = DetectOverlaps(dto.SlotProposal{ClassID: "class-1", DayOfWeek: models.Monday, StartTime: nine, EndTime: ten}, existing)
	assert.Len(t, info.Overlaps, 2)
}

func TestValidateRejectsInvertedTimes(t *testing.T) {
	f := newSchedulingFixture()
	_, err := f.conflicts.Validate(context.Background(), dto.SlotProposal{
		ClassID: "class-1", DayOfWeek: models.Monday,
		StartTime: models.MustTimeOfDay("10:00"), EndTime: models.MustTimeOfDay("10:00"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestValidateUnknownClass(t *testing.T) {
	f := newSchedulingFixture()
	_, err := f.conflicts.Validate(context.Background(), dto.SlotProposal{
		ClassID: "missing", DayOfWeek: models.Monday,
		StartTime: models.MustTimeOfDay("09:00"), EndTime: models.MustTimeOfDay("10:00"),
	})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func conflictFixtureLessons() []models.Lesson {
	return []models.Lesson{
		{ID: "l-teacher", ClassID: "class-2", TeacherID: "teacher-1", ClassroomID: strPtr("room-2"), ScheduledDate: date("2025-01-08"),
			StartTime: models.MustTimeOfDay("14:30"), EndTime: models.MustTimeOfDay("15:30"), Status: models.LessonScheduled},
		{ID: "l-room", ClassID: "class-2", TeacherID: "teacher-2", ClassroomID: strPtr("room-1"), ScheduledDate: date("2025-01-22"),
			StartTime: models.MustTimeOfDay("13:30"), EndTime: models.MustTimeOfDay("14:30"), Status: models.LessonConducted},
		{ID: "l-class", ClassID: "class-1", ScheduleSlotID: strPtr("other"), TeacherID: "teacher-1", ClassroomID: strPtr("room-1"), ScheduledDate: date("2025-01-15"),
			StartTime: models.MustTimeOfDay("14:00"), EndTime: models.MustTimeOfDay("15:00"), Status: models.LessonScheduled},
		{ID: "l-cancelled", ClassID: "class-2", TeacherID: "teacher-1", ScheduledDate: date("2025-01-15"),
			StartTime: models.MustTimeOfDay("14:00"), EndTime: models.MustTimeOfDay("15:00"), Status: models.LessonCancelled},
		{ID: "l-adjacent", ClassID: "class-2", TeacherID: "teacher-1", ScheduledDate: date("2025-01-08"),
			StartTime: models.MustTimeOfDay("15:00"), EndTime: models.MustTimeOfDay("16:00"), Status: models.LessonScheduled},
	}
}

func TestValidateConflictsGroupsByResource(t *testing.T) {
	f := newSchedulingFixture()
	f.lessons.lessons = conflictFixtureLessons()

	info, err := f.conflicts.ValidateConflicts(context.Background(), dto.SlotProposal{
		ClassID: "class-1", DayOfWeek: models.Wednesday,
		StartTime: models.MustTimeOfDay("14:00"), EndTime: models.MustTimeOfDay("15:00"),
		SemesterID: strPtr("S1"),
	})
	require.NoError(t, err)
	require.True(t, info.HasConflicts)
	require.Len(t, info.Conflicts, 3)

	assert.Equal(t, models.ConflictTeacher, info.Conflicts[0].ConflictType)
	assert.Equal(t, "teacher-1", info.Conflicts[0].ResourceID)
	require.Len(t, info.Conflicts[0].Instances, 1)
	assert.Equal(t, "2025-01-08", info.Conflicts[0].Instances[0].Date)
	assert.Equal(t, "l-teacher", info.Conflicts[0].Instances[0].LessonID)

	assert.Equal(t, models.ConflictClassroom, info.Conflicts[1].ConflictType)
	assert.Equal(t, "room-1", info.Conflicts[1].ResourceID)
	assert.Equal(t, "2025-01-22", info.Conflicts[1].Instances[0].Date)

	assert.Equal(t, models.ConflictClass, info.Conflicts[2].ConflictType)
	assert.Equal(t, "class-1", info.Conflicts[2].ResourceID)
	assert.Equal(t, "2025-01-15", info.Conflicts[2].Instances[0].Date)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.conflicts.WithLabelValues(string(models.ConflictTeacher))))

	require.Len(t, f.lessons.scopes, 1)
	assert.Equal(t, date("2025-01-06"), f.lessons.scopes[0].From)
	assert.Equal(t, date("2025-01-27"), f.lessons.scopes[0].To)
}

func TestValidateConflictsIgnoresLessonsOfEditedSlot(t *testing.T) {
	f := newSchedulingFixture()
	f.lessons.lessons = conflictFixtureLessons()[2:3]

	info, err := f.conflicts.ValidateConflicts(context.Background(), dto.SlotProposal{
		ClassID: "class-1", DayOfWeek: models.Wednesday,
		StartTime: models.MustTimeOfDay("14:00"), EndTime: models.MustTimeOfDay("15:00"),
		SemesterID: strPtr("S1"), ExcludeSlotID: "other",
	})
	require.NoError(t, err)
	assert.False(t, info.HasConflicts)
	assert.Empty(t, info.Conflicts)
}

func TestValidateWindowStartsToday(t *testing.T) {
	f := newSchedulingFixture()

	resp, err := f.conflicts.Validate(context.Background(), dto.SlotProposal{
		ClassID: "class-1", DayOfWeek: models.Friday,
		StartTime: models.MustTimeOfDay("16:00"), EndTime: models.MustTimeOfDay("17:00"),
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Window)
	assert.Equal(t, "2025-01-01", resp.Window.FromDate)
	assert.Equal(t, "2025-06-30", resp.Window.ToDate)
}

func TestValidateWithoutResolvableWindow(t *testing.T) {
	f := newSchedulingFixture()
	proposal := dto.SlotProposal{
		ClassID: "class-x", DayOfWeek: models.Friday,
		StartTime: models.MustTimeOfDay("16:00"), EndTime: models.MustTimeOfDay("17:00"),
	}

	resp, err := f.conflicts.Validate(context.Background(), proposal)
	require.NoError(t, err)
	assert.Nil(t, resp.Window)
	assert.False(t, resp.HasConflicts)

	proposal.RangeType = dto.RangeUntilYearEnd
	_, err = f.conflicts.Validate(context.Background(), proposal)
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	proposal.RangeType = dto.RangeUntilSemesterEnd
	_, err = f.conflicts.Validate(context.Background(), proposal)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestSuggestOrdersByDayThenTimeDistance(t *testing.T) {
	f := newSchedulingFixture()
	f.conflicts.rules.DayEnd = models.MustTimeOfDay("10:00")
	f.slots.slots = []models.ScheduleSlot{{
		ID: "mon", ClassID: "class-1", DayOfWeek: models.Monday,
		StartTime: models.MustTimeOfDay("08:00"), EndTime: models.MustTimeOfDay("09:00"),
	}}
	f.lessons.lessons = []models.Lesson{{
		ID: "busy-tuesday", ClassID: "class-2", TeacherID: "teacher-1", ScheduledDate: date("2025-01-07"),
		StartTime: models.MustTimeOfDay("08:00"), EndTime: models.MustTimeOfDay("09:00"), Status: models.LessonScheduled,
	}}

	suggestions, err := f.conflicts.Suggest(context.Background(), dto.SuggestionQuery{
		ClassID: "class-1", PreferredDay: models.Monday, PreferredStart: models.MustTimeOfDay("08:00"),
		DurationMinutes: 60, MaxSuggestions: 3,
	})
	require.NoError(t, err)
	require.Len(t, suggestions, 3)

	assert.Equal(t, models.Monday, suggestions[0].DayOfWeek)
	assert.Equal(t, "09:00", suggestions[0].StartTime.String())
	assert.Equal(t, "10:00", suggestions[0].EndTime.String())
	assert.Equal(t, models.Sunday, suggestions[1].DayOfWeek)
	assert.Equal(t, "08:00", suggestions[1].StartTime.String())
	assert.Equal(t, models.Sunday, suggestions[2].DayOfWeek)
	assert.Equal(t, "08:30", suggestions[2].StartTime.String())
}

func TestSuggestDefaultsLimit(t *testing.T) {
	f := newSchedulingFixture()

	suggestions, err := f.conflicts.Suggest(context.Background(), dto.SuggestionQuery{
		ClassID: "class-1", PreferredDay: models.Thursday, PreferredStart: models.MustTimeOfDay("15:00"),
		DurationMinutes: 45,
	})
	require.NoError(t, err)
	require.Len(t, suggestions, 5)
	assert.Equal(t, models.Thursday, suggestions[0].DayOfWeek)
	assert.Equal(t, "15:00", suggestions[0].StartTime.String())
	assert.Equal(t, "15:45", suggestions[0].EndTime.String())
}

func TestSuggestStartsAtOffGridPreferredTime(t *testing.T) {
	f := newSchedulingFixture()

	suggestions, err := f.conflicts.Suggest(context.Background(), dto.SuggestionQuery{
		ClassID: "class-1", PreferredDay: models.Thursday, PreferredStart: models.MustTimeOfDay("15:15"),
		DurationMinutes: 60, MaxSuggestions: 3,
	})
	require.NoError(t, err)
	require.Len(t, suggestions, 3)

	assert.Equal(t, models.Thursday, suggestions[0].DayOfWeek)
	assert.Equal(t, "15:15", suggestions[0].StartTime.String())
	assert.Equal(t, "16:15", suggestions[0].EndTime.String())
	assert.Equal(t, "14:45", suggestions[1].StartTime.String())
	assert.Equal(t, "15:45", suggestions[2].StartTime.String())
	for _, s := range suggestions {
		assert.Equal(t, models.Thursday, s.DayOfWeek)
	}
}

func TestSuggestClipsAnchoredGridToTeachingDay(t *testing.T) {
	f := newSchedulingFixture()

	suggestions, err := f.conflicts.Suggest(context.Background(), dto.SuggestionQuery{
		ClassID: "class-1", PreferredDay: models.Friday, PreferredStart: models.MustTimeOfDay("20:45"),
		DurationMinutes: 60, MaxSuggestions: 2,
	})
	require.NoError(t, err)
	require.Len(t, suggestions, 2)
	assert.Equal(t, "19:45", suggestions[0].StartTime.String())
	assert.Equal(t, "20:45", suggestions[0].EndTime.String())
	assert.Equal(t, "19:15", suggestions[1].StartTime.String())
}

func TestSuggestWithoutResolvableWindowSkipsConflictCheck(t *testing.T) {
	f := newSchedulingFixture()
	f.lessons.lessons = []models.Lesson{{
		ID: "elsewhere", ClassID: "class-2", TeacherID: "teacher-9", ScheduledDate: date("2025-01-09"),
		StartTime: models.MustTimeOfDay("15:00"), EndTime: models.MustTimeOfDay("16:00"), Status: models.LessonScheduled,
	}}

	suggestions, err := f.conflicts.Suggest(context.Background(), dto.SuggestionQuery{
		ClassID: "class-x", PreferredDay: models.Thursday, PreferredStart: models.MustTimeOfDay("15:00"),
		DurationMinutes: 60, MaxSuggestions: 1,
	})
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, models.Thursday, suggestions[0].DayOfWeek)
	assert.Equal(t, "15:00", suggestions[0].StartTime.String())
	assert.Empty(t, f.lessons.scopes)
}

func TestSuggestExplicitSemesterRangeNeedsSemester(t *testing.T) {
	f := newSchedulingFixture()

	_, err := f.conflicts.Suggest(context.Background(), dto.SuggestionQuery{
		ClassID: "class-1", PreferredDay: models.Thursday, PreferredStart: models.MustTimeOfDay("15:00"),
		DurationMinutes: 60, RangeType: dto.RangeUntilSemesterEnd,
	})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Empty(t, f.lessons.scopes)

	class, err := f.conflicts.loadClass(context.Background(), "class-1")
	require.NoError(t, err)
	_, err = f.conflicts.resolveWindow(context.Background(), class, nil, dto.RangeUntilSemesterEnd)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestSuggestTreatsEditedSlotAsFree(t *testing.T) {
	f := newSchedulingFixture()
	f.slots.slots = []models.ScheduleSlot{{
		ID: "mon", ClassID: "class-1", DayOfWeek: models.Monday,
		StartTime: models.MustTimeOfDay("09:00"), EndTime: models.MustTimeOfDay("10:00"),
	}}
	f.lessons.lessons = []models.Lesson{{
		ID: "mon-lesson", ClassID: "class-1", ScheduleSlotID: strPtr("mon"), TeacherID: "teacher-1", ClassroomID: strPtr("room-1"),
		ScheduledDate: date("2025-01-06"), StartTime: models.MustTimeOfDay("09:00"), EndTime: models.MustTimeOfDay("10:00"), Status: models.LessonScheduled,
	}}
	query := dto.SuggestionQuery{
		ClassID: "class-1", PreferredDay: models.Monday, PreferredStart: models.MustTimeOfDay("09:00"),
		DurationMinutes: 60, MaxSuggestions: 1,
	}

	suggestions, err := f.conflicts.Suggest(context.Background(), query)
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.NotEqual(t, "09:00", suggestions[0].StartTime.String())

	query.ExcludeSlotID = "mon"
	suggestions, err = f.conflicts.Suggest(context.Background(), query)
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, models.Monday, suggestions[0].DayOfWeek)
	assert.Equal(t, "09:00", suggestions[0].StartTime.String())
}

func TestSuggestRejectsBadDuration(t *testing.T) {
	f := newSchedulingFixture()
	_, err := f.conflicts.Suggest(context.Background(), dto.SuggestionQuery{
		ClassID: "class-1", PreferredDay: models.Monday, DurationMinutes: 0,
	})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}
