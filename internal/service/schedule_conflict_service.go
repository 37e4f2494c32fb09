package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/tutor-schedule-api/internal/dto"
	"github.com/noah-isme/tutor-schedule-api/internal/models"
	appErrors "github.com/noah-isme/tutor-schedule-api/pkg/errors"
)

type slotLister interface {
	List(ctx context.Context, exec sqlx.ExtContext, filter models.ScheduleSlotFilter, today time.Time) ([]models.ScheduleSlot, error)
}

type conflictLessonReader interface {
	ListForConflicts(ctx context.Context, exec sqlx.ExtContext, scope models.ConflictScope) ([]models.Lesson, error)
}

type classReader interface {
	FindByID(ctx context.Context, id string) (*models.Class, error)
}

type termReader interface {
	FindSemester(ctx context.Context, id string) (*models.Semester, error)
	FindAcademicYear(ctx context.Context, id string) (*models.AcademicYear, error)
}

// ScheduleConflictService answers overlap, conflict and suggestion queries for proposed slots.
type ScheduleConflictService struct {
	slots     slotLister
	lessons   conflictLessonReader
	classes   classReader
	terms     termReader
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
	rules     ScheduleRules
}

// NewScheduleConflictService wires the conflict engine.
func NewScheduleConflictService(slots slotLister, lessons conflictLessonReader, classes classReader, terms termReader, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger, rules ScheduleRules) *ScheduleConflictService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleConflictService{
		slots:     slots,
		lessons:   lessons,
		classes:   classes,
		terms:     terms,
		validator: validate,
		metrics:   metrics,
		logger:    logger,
		rules:     rules.withDefaults(),
	}
}

// generationWindow is the inclusive date span a slot materialises over.
type generationWindow struct {
	from time.Time
	to   time.Time
}

func (w generationWindow) dto() *dto.GenerationWindow {
	return &dto.GenerationWindow{FromDate: models.FormatDate(w.from), ToDate: models.FormatDate(w.to)}
}

// Validate runs both the same-class overlap check and the cross-resource conflict check.
func (s *ScheduleConflictService) Validate(ctx context.Context, proposal dto.SlotProposal) (*dto.ScheduleValidationResponse, error) {
	if err := s.validateProposal(proposal); err != nil {
		return nil, err
	}
	class, err := s.loadClass(ctx, proposal.ClassID)
	if err != nil {
		return nil, err
	}

	overlap, err := s.overlaps(ctx, nil, proposal)
	if err != nil {
		return nil, err
	}
	conflicts, window, err := s.conflicts(ctx, nil, class, proposal)
	if err != nil {
		return nil, err
	}

	resp := &dto.ScheduleValidationResponse{ExistingScheduleOverlapInfo: *overlap, ScheduleConflictInfo: conflicts}
	if window != nil {
		resp.Window = window.dto()
	}
	return resp, nil
}

// ValidateOverlap compares the proposal with the class's other active slots on the same day.
func (s *ScheduleConflictService) ValidateOverlap(ctx context.Context, proposal dto.SlotProposal) (*models.ExistingScheduleOverlapInfo, error) {
	if err := s.validateProposal(proposal); err != nil {
		return nil, err
	}
	if _, err := s.loadClass(ctx, proposal.ClassID); err != nil {
		return nil, err
	}
	return s.overlaps(ctx, nil, proposal)
}

// ValidateConflicts expands the proposal over its generation window and reports collisions
// with the teacher's, the classroom's and the class's existing lessons.
func (s *ScheduleConflictService) ValidateConflicts(ctx context.Context, proposal dto.SlotProposal) (*models.ScheduleConflictInfo, error) {
	if err := s.validateProposal(proposal); err != nil {
		return nil, err
	}
	class, err := s.loadClass(ctx, proposal.ClassID)
	if err != nil {
		return nil, err
	}
	info, _, err := s.conflicts(ctx, nil, class, proposal)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (s *ScheduleConflictService) validateProposal(p dto.SlotProposal) error {
	if err := s.validator.Struct(p); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid slot proposal")
	}
	return validateTimeRange(p.StartTime, p.EndTime)
}

func validateTimeRange(start, end models.TimeOfDay) error {
	if !start.Valid() || !end.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, "times must fall within a single day")
	}
	if start >= end {
		return appErrors.Clone(appErrors.ErrValidation, "startTime must be before endTime")
	}
	return nil
}

func (s *ScheduleConflictService) loadClass(ctx context.Context, id string) (*models.Class, error) {
	class, err := s.classes.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	return class, nil
}

func (s *ScheduleConflictService) overlaps(ctx context.Context, exec sqlx.ExtContext, p dto.SlotProposal) (*models.ExistingScheduleOverlapInfo, error) {
	day := p.DayOfWeek
	existing, err := s.slots.List(ctx, exec, models.ScheduleSlotFilter{
		ClassID:       p.ClassID,
		DayOfWeek:     &day,
		ExcludeSlotID: p.ExcludeSlotID,
	}, s.rules.Today())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule slots")
	}
	info := DetectOverlaps(p, existing)
	return &info, nil
}

// DetectOverlaps applies the same-class overlap rule: same day, intersecting
// half-open ranges, and a shared semester scope (global slots share every scope).
func DetectOverlaps(p dto.SlotProposal, existing []models.ScheduleSlot) models.ExistingScheduleOverlapInfo {
	info := models.ExistingScheduleOverlapInfo{Overlaps: []models.SlotOverlap{}}
	for _, slot := range existing {
		if slot.IsObsolete || slot.DayOfWeek != p.DayOfWeek || slot.ID == p.ExcludeSlotID {
			continue
		}
		if !models.SharesSemesterScope(slot.SemesterID, p.SemesterID) {
			continue
		}
		if !models.Overlaps(p.StartTime, p.EndTime, slot.StartTime, slot.EndTime) {
			continue
		}
		kind := models.OverlapPartial
		if slot.StartTime == p.StartTime && slot.EndTime == p.EndTime {
			kind = models.OverlapExact
		}
		info.Overlaps = append(info.Overlaps, models.SlotOverlap{
			ScheduleSlotID:    slot.ID,
			DayOfWeek:         slot.DayOfWeek,
			StartTime:         slot.StartTime,
			EndTime:           slot.EndTime,
			SemesterID:        slot.SemesterID,
			OverlapType:       kind,
			FutureLessonCount: slot.FutureLessonCount,
		})
	}
	info.HasOverlap = len(info.Overlaps) > 0
	return info
}

// conflicts resolves the window, loads candidate lessons once and groups collisions.
// A nil window means no range could be resolved and nothing was checked.
func (s *ScheduleConflictService) conflicts(ctx context.Context, exec sqlx.ExtContext, class *models.Class, p dto.SlotProposal) (models.ScheduleConflictInfo, *generationWindow, error) {
	empty := models.ScheduleConflictInfo{Conflicts: []models.ScheduleConflict{}}
	window, err := s.resolveWindow(ctx, class, p.SemesterID, p.RangeType)
	if err != nil {
		if p.RangeType == "" && errors.Is(err, appErrors.ErrValidation) {
			return empty, nil, nil
		}
		return empty, nil, err
	}

	index, err := s.loadIndex(ctx, exec, class, p.ExcludeSlotID, window)
	if err != nil {
		return empty, nil, err
	}
	info := index.conflicts(occurrences(p.DayOfWeek, window.from, window.to), p.StartTime, p.EndTime)
	for _, c := range info.Conflicts {
		s.metrics.RecordConflict(string(c.ConflictType))
	}
	return info, &window, nil
}

func (s *ScheduleConflictService) loadIndex(ctx context.Context, exec sqlx.ExtContext, class *models.Class, excludeSlotID string, window generationWindow) (*conflictIndex, error) {
	lessons, err := s.lessons.ListForConflicts(ctx, exec, models.ConflictScope{
		ClassID:     class.ID,
		TeacherID:   class.TeacherID,
		ClassroomID: class.ClassroomID,
		From:        window.from,
		To:          window.to,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lessons")
	}
	return newConflictIndex(class, excludeSlotID, lessons), nil
}

// resolveWindow maps a range policy to dates. UntilSemesterEnd needs a semester,
// UntilYearEnd needs the class's academic year. An empty policy picks the semester
// when one is given. The window never starts before today.
func (s *ScheduleConflictService) resolveWindow(ctx context.Context, class *models.Class, semesterID *string, rangeType dto.GenerationRangeType) (generationWindow, error) {
	if rangeType == "" {
		rangeType = dto.RangeUntilYearEnd
		if semesterID != nil {
			rangeType = dto.RangeUntilSemesterEnd
		}
	}

	var start, end time.Time
	switch rangeType {
	case dto.RangeUntilSemesterEnd:
		if semesterID == nil {
			return generationWindow{}, appErrors.Clone(appErrors.ErrValidation, "UntilSemesterEnd requires a semester-bound slot")
		}
		semester, err := s.terms.FindSemester(ctx, *semesterID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return generationWindow{}, appErrors.Clone(appErrors.ErrNotFound, "semester not found")
			}
			return generationWindow{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load semester")
		}
		start, end = semester.StartDate, semester.EndDate
	case dto.RangeUntilYearEnd:
		if class.AcademicYearID == nil {
			return generationWindow{}, appErrors.Clone(appErrors.ErrValidation, "class has no academic year to generate lessons until")
		}
		year, err := s.terms.FindAcademicYear(ctx, *class.AcademicYearID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return generationWindow{}, appErrors.Clone(appErrors.ErrValidation, "academic year of class not found")
			}
			return generationWindow{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load academic year")
		}
		start, end = year.StartDate, year.EndDate
	default:
		return generationWindow{}, appErrors.Clone(appErrors.ErrValidation, "unknown range type "+string(rangeType))
	}

	return generationWindow{
		from: laterOf(models.CivilDate(start), s.rules.Today()),
		to:   models.CivilDate(end),
	}, nil
}

type suggestionCandidate struct {
	day      models.DayOfWeek
	start    models.TimeOfDay
	dayDist  int
	timeDist int
}

// Suggest searches the teaching-day grid for free slots of the requested length,
// nearest to the preferred day and time first.
func (s *ScheduleConflictService) Suggest(ctx context.Context, q dto.SuggestionQuery) ([]models.TimeSlotSuggestion, error) {
	if err := s.validator.Struct(q); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid suggestion query")
	}
	if !q.PreferredStart.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "preferredStartTime must fall within a single day")
	}
	limit := q.MaxSuggestions
	if limit <= 0 {
		limit = s.rules.MaxSuggestions
	}

	class, err := s.loadClass(ctx, q.ClassID)
	if err != nil {
		return nil, err
	}

	existing, err := s.slots.List(ctx, nil, models.ScheduleSlotFilter{ClassID: q.ClassID}, s.rules.Today())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule slots")
	}

	var (
		index  *conflictIndex
		window generationWindow
	)
	window, err = s.resolveWindow(ctx, class, q.SemesterID, q.RangeType)
	switch {
	case err == nil:
		if index, err = s.loadIndex(ctx, nil, class, q.ExcludeSlotID, window); err != nil {
			return nil, err
		}
	case q.RangeType == "" && errors.Is(err, appErrors.ErrValidation):
		s.logger.Debug("suggestions without conflict window", zap.String("class_id", q.ClassID), zap.Error(err))
	default:
		return nil, err
	}

	duration := time.Duration(q.DurationMinutes) * time.Minute
	candidates := s.candidates(q.PreferredDay, q.PreferredStart, duration)
	datesByDay := make(map[models.DayOfWeek][]time.Time)

	suggestions := make([]models.TimeSlotSuggestion, 0, limit)
	for _, c := range candidates {
		end := c.start.Add(duration)
		proposal := dto.SlotProposal{ClassID: q.ClassID, DayOfWeek: c.day, StartTime: c.start, EndTime: end, SemesterID: q.SemesterID, ExcludeSlotID: q.ExcludeSlotID}
		if DetectOverlaps(proposal, existing).HasOverlap {
			continue
		}
		if index != nil {
			dates, ok := datesByDay[c.day]
			if !ok {
				dates = occurrences(c.day, window.from, window.to)
				datesByDay[c.day] = dates
			}
			if !index.free(dates, c.start, end) {
				continue
			}
		}
		suggestions = append(suggestions, models.TimeSlotSuggestion{DayOfWeek: c.day, StartTime: c.start, EndTime: end})
		if len(suggestions) == limit {
			break
		}
	}
	return suggestions, nil
}

// candidates enumerates starts anchored on the preferred time, stepping outward in both
// directions and clipped to the teaching day, ordered by (day distance, time distance,
// earlier start, ISO day).
func (s *ScheduleConflictService) candidates(preferredDay models.DayOfWeek, preferredStart models.TimeOfDay, duration time.Duration) []suggestionCandidate {
	starts := s.startsAround(preferredStart, s.rules.DayEnd.Add(-duration))
	out := make([]suggestionCandidate, 0, len(starts)*len(models.AllDays))
	for _, day := range models.AllDays {
		for _, start := range starts {
			out = append(out, suggestionCandidate{
				day:      day,
				start:    start,
				dayDist:  day.Distance(preferredDay),
				timeDist: absInt(int(start) - int(preferredStart)),
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.dayDist != b.dayDist {
			return a.dayDist < b.dayDist
		}
		if a.timeDist != b.timeDist {
			return a.timeDist < b.timeDist
		}
		if a.start != b.start {
			return a.start < b.start
		}
		return a.day < b.day
	})
	return out
}

// startsAround lists preferred ± k·Step for every k that keeps the start inside
// [DayStart, latest].
func (s *ScheduleConflictService) startsAround(preferred, latest models.TimeOfDay) []models.TimeOfDay {
	var starts []models.TimeOfDay
	for t := preferred; t >= s.rules.DayStart; t = t.Add(-s.rules.Step) {
		if t <= latest {
			starts = append(starts, t)
		}
	}
	for t := preferred.Add(s.rules.Step); t <= latest; t = t.Add(s.rules.Step) {
		if t >= s.rules.DayStart {
			starts = append(starts, t)
		}
	}
	return starts
}
