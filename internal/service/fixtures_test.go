package service

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/tutor-schedule-api/internal/models"
	"github.com/noah-isme/tutor-schedule-api/pkg/jobs"
)

var fixedToday = time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

func strPtr(v string) *string { return &v }

func date(value string) time.Time {
	d, err := models.ParseDate(value)
	if err != nil {
		panic(err)
	}
	return d
}

func testRules() ScheduleRules {
	return ScheduleRules{
		Location:       time.UTC,
		DayStart:       models.MustTimeOfDay("08:00"),
		DayEnd:         models.MustTimeOfDay("21:00"),
		Step:           30 * time.Minute,
		MaxSuggestions: 5,
		Now:            func() time.Time { return fixedToday },
	}
}

func jobsConfigForTest() jobs.QueueConfig {
	return jobs.QueueConfig{Workers: 1, BufferSize: 4, RetryDelay: 10 * time.Millisecond}
}

func newTxDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

type stubSlotStore struct {
	mu       sync.Mutex
	slots    []models.ScheduleSlot
	archived []string
	deleted  []string
}

func (s *stubSlotStore) List(_ context.Context, _ sqlx.ExtContext, filter models.ScheduleSlotFilter, _ time.Time) ([]models.ScheduleSlot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.ScheduleSlot
	for _, slot := range s.slots {
		if slot.ClassID != filter.ClassID {
			continue
		}
		if slot.IsObsolete && !filter.IncludeObsolete {
			continue
		}
		if filter.DayOfWeek != nil && slot.DayOfWeek != *filter.DayOfWeek {
			continue
		}
		if filter.ExcludeSlotID != "" && slot.ID == filter.ExcludeSlotID {
			continue
		}
		if filter.SemesterID != nil && slot.SemesterID != nil && *slot.SemesterID != *filter.SemesterID {
			continue
		}
		out = append(out, slot)
	}
	return out, nil
}

func (s *stubSlotStore) FindByID(_ context.Context, _ sqlx.ExtContext, classID, slotID string, _ time.Time) (*models.ScheduleSlot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, slot := range s.slots {
		if slot.ID == slotID && slot.ClassID == classID {
			found := slot
			return &found, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *stubSlotStore) Create(_ context.Context, _ sqlx.ExtContext, slot *models.ScheduleSlot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if slot.ID == "" {
		slot.ID = "slot-new"
	}
	slot.IsGlobal = slot.SemesterID == nil
	s.slots = append(s.slots, *slot)
	return nil
}

func (s *stubSlotStore) Update(_ context.Context, _ sqlx.ExtContext, slot *models.ScheduleSlot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.slots {
		if s.slots[i].ID == slot.ID {
			s.slots[i] = *slot
			return nil
		}
	}
	return sql.ErrNoRows
}

func (s *stubSlotStore) Archive(_ context.Context, _ sqlx.ExtContext, slotID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.archived = append(s.archived, slotID)
	for i := range s.slots {
		if s.slots[i].ID == slotID {
			s.slots[i].IsObsolete = true
		}
	}
	return nil
}

func (s *stubSlotStore) Delete(_ context.Context, _ sqlx.ExtContext, slotID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, slotID)
	kept := s.slots[:0]
	for _, slot := range s.slots {
		if slot.ID != slotID {
			kept = append(kept, slot)
		}
	}
	s.slots = kept
	return nil
}

type rescheduleCall struct {
	lessonID string
	date     time.Time
	start    models.TimeOfDay
	end      models.TimeOfDay
}

type stubLessonStore struct {
	mu          sync.Mutex
	lessons     []models.Lesson
	created     []models.Lesson
	rescheduled []rescheduleCall
	scopes      []models.ConflictScope
}

func (s *stubLessonStore) ListForConflicts(_ context.Context, _ sqlx.ExtContext, scope models.ConflictScope) ([]models.Lesson, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scopes = append(s.scopes, scope)
	var out []models.Lesson
	for _, l := range s.lessons {
		if l.Status == models.LessonCancelled {
			continue
		}
		if l.ScheduledDate.Before(scope.From) || l.ScheduledDate.After(scope.To) {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func (s *stubLessonStore) CreateBatch(_ context.Context, _ sqlx.ExtContext, lessons []models.Lesson) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created = append(s.created, lessons...)
	return nil
}

func (s *stubLessonStore) ListBySlotFrom(_ context.Context, _ sqlx.ExtContext, slotID string, from time.Time) ([]models.Lesson, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Lesson
	for _, l := range s.lessons {
		if l.FromSlot(slotID) && !l.ScheduledDate.Before(from) {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledDate.Before(out[j].ScheduledDate) })
	return out, nil
}

func (s *stubLessonStore) Reschedule(_ context.Context, _ sqlx.ExtContext, lessonID string, d time.Time, start, end models.TimeOfDay) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rescheduled = append(s.rescheduled, rescheduleCall{lessonID: lessonID, date: d, start: start, end: end})
	return nil
}

func (s *stubLessonStore) DeleteBySlotFrom(_ context.Context, _ sqlx.ExtContext, slotID string, from time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed int64
	kept := s.lessons[:0]
	for _, l := range s.lessons {
		if l.FromSlot(slotID) && !l.ScheduledDate.Before(from) {
			removed++
			continue
		}
		kept = append(kept, l)
	}
	s.lessons = kept
	return removed, nil
}

func (s *stubLessonStore) DeleteBySlot(_ context.Context, _ sqlx.ExtContext, slotID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed int64
	kept := s.lessons[:0]
	for _, l := range s.lessons {
		if l.FromSlot(slotID) {
			removed++
			continue
		}
		kept = append(kept, l)
	}
	s.lessons = kept
	return removed, nil
}

type stubClasses map[string]*models.Class

func (s stubClasses) FindByID(_ context.Context, id string) (*models.Class, error) {
	if c, ok := s[id]; ok {
		return c, nil
	}
	return nil, sql.ErrNoRows
}

type stubTerms struct {
	semesters map[string]*models.Semester
	years     map[string]*models.AcademicYear
}

func (s stubTerms) FindSemester(_ context.Context, id string) (*models.Semester, error) {
	if sem, ok := s.semesters[id]; ok {
		return sem, nil
	}
	return nil, sql.ErrNoRows
}

func (s stubTerms) FindAcademicYear(_ context.Context, id string) (*models.AcademicYear, error) {
	if y, ok := s.years[id]; ok {
		return y, nil
	}
	return nil, sql.ErrNoRows
}

type stubHolidays []models.Holiday

func (s stubHolidays) ListBetween(_ context.Context, from, to time.Time) ([]models.Holiday, error) {
	var out []models.Holiday
	for _, h := range s {
		if !h.StartDate.After(to) && !h.EndDate.Before(from) {
			out = append(out, h)
		}
	}
	return out, nil
}

type stubInvalidator struct {
	teachers []string
}

func (s *stubInvalidator) InvalidateTeacherCalendar(teacherID string) {
	s.teachers = append(s.teachers, teacherID)
}

type schedulingFixture struct {
	slots       *stubSlotStore
	lessons     *stubLessonStore
	classes     stubClasses
	terms       stubTerms
	holidays    stubHolidays
	invalidator *stubInvalidator
	metrics     *MetricsService
	conflicts   *ScheduleConflictService
}

// newSchedulingFixture seeds class-1 (teacher-1, room-1, year-1) with semester S1
// covering 2025-01-06..2025-01-27 and academic year 2024-07-01..2025-06-30.
func newSchedulingFixture() *schedulingFixture {
	f := &schedulingFixture{
		slots:   &stubSlotStore{},
		lessons: &stubLessonStore{},
		classes: stubClasses{
			"class-1": {ID: "class-1", Name: "Piano A", AcademicYearID: strPtr("year-1"), TeacherID: "teacher-1", ClassroomID: strPtr("room-1"), IsActive: true},
			"class-2": {ID: "class-2", Name: "Violin B", AcademicYearID: strPtr("year-1"), TeacherID: "teacher-2", ClassroomID: strPtr("room-2"), IsActive: true},
			"class-x": {ID: "class-x", Name: "Unscheduled", TeacherID: "teacher-9"},
		},
		terms: stubTerms{
			semesters: map[string]*models.Semester{
				"S1": {ID: "S1", AcademicYearID: "year-1", Name: "Winter", StartDate: date("2025-01-06"), EndDate: date("2025-01-27")},
			},
			years: map[string]*models.AcademicYear{
				"year-1": {ID: "year-1", Name: "2024/2025", StartDate: date("2024-07-01"), EndDate: date("2025-06-30")},
			},
		},
		invalidator: &stubInvalidator{},
		metrics:     NewMetricsService(),
	}
	f.conflicts = NewScheduleConflictService(f.slots, f.lessons, f.classes, f.terms, validator.New(), f.metrics, zap.NewNop(), testRules())
	return f
}

func (f *schedulingFixture) slotService(db *sqlx.DB) *ScheduleSlotService {
	return NewScheduleSlotService(ScheduleSlotServiceDeps{
		DB:          db,
		Slots:       f.slots,
		Lessons:     f.lessons,
		Holidays:    f.holidays,
		Conflicts:   f.conflicts,
		Invalidator: f.invalidator,
		Validator:   validator.New(),
		Metrics:     f.metrics,
		Logger:      zap.NewNop(),
	})
}
