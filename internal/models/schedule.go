package models

import "time"

// ScheduleSlot is a recurring weekly teaching block for a class. A nil SemesterID marks a global slot.
type ScheduleSlot struct {
	ID                string     `db:"id" json:"id"`
	ClassID           string     `db:"class_id" json:"classId"`
	DayOfWeek         DayOfWeek  `db:"day_of_week" json:"dayOfWeek"`
	StartTime         TimeOfDay  `db:"start_time" json:"startTime"`
	EndTime           TimeOfDay  `db:"end_time" json:"endTime"`
	SemesterID        *string    `db:"semester_id" json:"semesterId,omitempty"`
	IsGlobal          bool       `db:"is_global" json:"isGlobal"`
	IsObsolete        bool       `db:"is_obsolete" json:"isObsolete"`
	PastLessonCount   int        `db:"past_lesson_count" json:"pastLessonCount"`
	FutureLessonCount int        `db:"future_lesson_count" json:"futureLessonCount"`
	CreatedAt         time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updatedAt"`
	ArchivedAt        *time.Time `db:"archived_at" json:"archivedAt,omitempty"`
}

// SharesSemesterScope reports whether two slots are visible in a common semester.
func SharesSemesterScope(a, b *string) bool {
	if a == nil || b == nil {
		return true
	}
	return *a == *b
}

// ScheduleSlotFilter narrows slot listings.
type ScheduleSlotFilter struct {
	ClassID         string
	SemesterID      *string
	DayOfWeek       *DayOfWeek
	IncludeObsolete bool
	ExcludeSlotID   string
}

// OverlapType classifies a same-class overlap.
type OverlapType string

const (
	OverlapExact   OverlapType = "exact"
	OverlapPartial OverlapType = "partial"
)

// SlotOverlap describes an existing slot of the same class intersecting a proposal.
type SlotOverlap struct {
	ScheduleSlotID    string      `json:"scheduleSlotId"`
	DayOfWeek         DayOfWeek   `json:"dayOfWeek"`
	StartTime         TimeOfDay   `json:"startTime"`
	EndTime           TimeOfDay   `json:"endTime"`
	SemesterID        *string     `json:"semesterId,omitempty"`
	OverlapType       OverlapType `json:"overlapType"`
	FutureLessonCount int         `json:"futureLessonCount"`
}

// ExistingScheduleOverlapInfo lists same-class overlaps for a proposed slot.
type ExistingScheduleOverlapInfo struct {
	HasOverlap bool          `json:"hasOverlap"`
	Overlaps   []SlotOverlap `json:"overlaps"`
}

// ConflictType names the resource a conflict was found on.
type ConflictType string

const (
	ConflictTeacher   ConflictType = "teacher_conflict"
	ConflictClassroom ConflictType = "classroom_conflict"
	ConflictClass     ConflictType = "class_conflict"
)

// ConflictInstance is one dated collision with an existing lesson.
type ConflictInstance struct {
	Date      string    `json:"date"`
	StartTime TimeOfDay `json:"startTime"`
	EndTime   TimeOfDay `json:"endTime"`
	LessonID  string    `json:"lessonId"`
	ClassID   string    `json:"classId"`
}

// ScheduleConflict groups the collisions found on one resource.
type ScheduleConflict struct {
	ConflictType ConflictType       `json:"conflictType"`
	ResourceID   string             `json:"resourceId"`
	Instances    []ConflictInstance `json:"instances"`
}

// ScheduleConflictInfo is the cross-resource validation result.
type ScheduleConflictInfo struct {
	HasConflicts bool               `json:"hasConflicts"`
	Conflicts    []ScheduleConflict `json:"conflicts"`
}

// TimeSlotSuggestion is an alternative free weekly slot.
type TimeSlotSuggestion struct {
	DayOfWeek DayOfWeek `json:"dayOfWeek"`
	StartTime TimeOfDay `json:"startTime"`
	EndTime   TimeOfDay `json:"endTime"`
}

// ScheduleConflictError is returned when a slot write collides with existing commitments.
type ScheduleConflictError struct {
	Message   string                       `json:"message"`
	Overlap   *ExistingScheduleOverlapInfo `json:"overlap,omitempty"`
	Conflicts *ScheduleConflictInfo        `json:"conflicts,omitempty"`
}

// Error implements the error interface for conflict errors.
func (e *ScheduleConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}
