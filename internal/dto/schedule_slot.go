package dto

import "github.com/noah-isme/tutor-schedule-api/internal/models"

// GenerationRangeType selects how far lesson generation runs.
type GenerationRangeType string

const (
	RangeUntilYearEnd     GenerationRangeType = "UntilYearEnd"
	RangeUntilSemesterEnd GenerationRangeType = "UntilSemesterEnd"
)

// GenerationOptions controls lesson materialisation for a new slot.
type GenerationOptions struct {
	RangeType     GenerationRangeType `json:"rangeType" validate:"omitempty,oneof=UntilYearEnd UntilSemesterEnd"`
	SkipHolidays  bool                `json:"skipHolidays"`
	SkipConflicts bool                `json:"skipConflicts"`
}

// CreateScheduleSlotRequest creates a weekly slot for a class.
type CreateScheduleSlotRequest struct {
	DayOfWeek         models.DayOfWeek   `json:"dayOfWeek" validate:"min=1,max=7"`
	StartTime         models.TimeOfDay   `json:"startTime" validate:"min=0,max=1439"`
	EndTime           models.TimeOfDay   `json:"endTime" validate:"min=0,max=1439"`
	SemesterID        *string            `json:"semesterId" validate:"omitempty,min=1"`
	GenerateLessons   bool               `json:"generateLessons"`
	GenerationOptions *GenerationOptions `json:"generationOptions"`
	AllowOverlap      bool               `json:"allowOverlap"`
}

// UpdateScheduleSlotRequest changes the day, times or semester of a slot.
type UpdateScheduleSlotRequest struct {
	DayOfWeek           models.DayOfWeek `json:"dayOfWeek" validate:"min=1,max=7"`
	StartTime           models.TimeOfDay `json:"startTime" validate:"min=0,max=1439"`
	EndTime             models.TimeOfDay `json:"endTime" validate:"min=0,max=1439"`
	SemesterID          *string          `json:"semesterId" validate:"omitempty,min=1"`
	UpdateFutureLessons bool             `json:"updateFutureLessons"`
	AllowOverlap        bool             `json:"allowOverlap"`
	AllowConflicts      bool             `json:"allowConflicts"`
}

// GenerationSummary reports what lesson generation did. TotalGenerated counts every
// matching date in the window, before holidays and conflicts are skipped.
type GenerationSummary struct {
	FromDate         string `json:"fromDate"`
	ToDate           string `json:"toDate"`
	TotalGenerated   int    `json:"totalGenerated"`
	LessonsCreated   int    `json:"lessonsCreated"`
	SkippedConflicts int    `json:"skippedConflicts"`
	SkippedHolidays  int    `json:"skippedHolidays"`
}

// CreateScheduleSlotResponse returns the stored slot and the optional generation summary.
type CreateScheduleSlotResponse struct {
	Slot              models.ScheduleSlot `json:"slot"`
	GenerationSummary *GenerationSummary  `json:"generationSummary,omitempty"`
}

// UpdateScheduleSlotResponse returns the updated slot.
type UpdateScheduleSlotResponse struct {
	Slot                      models.ScheduleSlot `json:"slot"`
	UpdatedFutureLessonsCount int                 `json:"updatedFutureLessonsCount"`
}

// DeleteScheduleSlotResponse tells whether the slot was archived or removed.
type DeleteScheduleSlotResponse struct {
	WasArchived        bool `json:"wasArchived"`
	PastLessonCount    int  `json:"pastLessonCount"`
	RemovedLessonCount int  `json:"removedLessonCount"`
}

// ListScheduleSlotsQuery filters a class's slots.
type ListScheduleSlotsQuery struct {
	SemesterID      *string
	IncludeObsolete bool
}

// SlotProposal is a candidate weekly slot to validate.
type SlotProposal struct {
	ClassID       string           `validate:"required"`
	DayOfWeek     models.DayOfWeek `validate:"min=1,max=7"`
	StartTime     models.TimeOfDay
	EndTime       models.TimeOfDay
	SemesterID    *string
	ExcludeSlotID string
	RangeType     GenerationRangeType `validate:"omitempty,oneof=UntilYearEnd UntilSemesterEnd"`
	Seq           *int64
}

// GenerationWindow is the resolved date span conflicts were checked over.
type GenerationWindow struct {
	FromDate string `json:"fromDate"`
	ToDate   string `json:"toDate"`
}

// ScheduleValidationResponse combines same-class overlaps with cross-resource conflicts.
type ScheduleValidationResponse struct {
	models.ExistingScheduleOverlapInfo
	models.ScheduleConflictInfo
	Window *GenerationWindow `json:"window,omitempty"`
}

// SuggestionQuery asks for free alternatives near a preferred time.
type SuggestionQuery struct {
	ClassID         string           `validate:"required"`
	PreferredDay    models.DayOfWeek `validate:"min=1,max=7"`
	PreferredStart  models.TimeOfDay
	DurationMinutes int                 `validate:"min=5,max=720"`
	RangeType       GenerationRangeType `validate:"omitempty,oneof=UntilYearEnd UntilSemesterEnd"`
	MaxSuggestions  int                 `validate:"min=0,max=50"`
	SemesterID      *string
	ExcludeSlotID   string
}
