package models

import "time"

// LessonStatus is the lifecycle state of a dated lesson.
type LessonStatus string

const (
	LessonScheduled LessonStatus = "Scheduled"
	LessonConducted LessonStatus = "Conducted"
	LessonCancelled LessonStatus = "Cancelled"
	LessonMakeUp    LessonStatus = "Make Up"
	LessonNoShow    LessonStatus = "No Show"
)

// Lesson is a concrete dated occurrence, usually materialised from a ScheduleSlot.
type Lesson struct {
	ID             string       `db:"id" json:"id"`
	ClassID        string       `db:"class_id" json:"classId"`
	ScheduleSlotID *string      `db:"schedule_slot_id" json:"scheduleSlotId,omitempty"`
	TeacherID      string       `db:"teacher_id" json:"teacherId"`
	ClassroomID    *string      `db:"classroom_id" json:"classroomId,omitempty"`
	ScheduledDate  time.Time    `db:"scheduled_date" json:"scheduledDate"`
	StartTime      TimeOfDay    `db:"start_time" json:"startTime"`
	EndTime        TimeOfDay    `db:"end_time" json:"endTime"`
	Status         LessonStatus `db:"status" json:"status"`
	CreatedAt      time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time    `db:"updated_at" json:"updatedAt"`
}

// FromSlot reports whether the lesson was generated by slotID.
func (l Lesson) FromSlot(slotID string) bool {
	return l.ScheduleSlotID != nil && *l.ScheduleSlotID == slotID
}

// TeacherLesson is the calendar read model joined with the class name.
type TeacherLesson struct {
	Lesson
	ClassName string `db:"class_name" json:"className"`
}

// LessonFilter narrows lesson queries. Zero dates leave that side open.
type LessonFilter struct {
	TeacherID      string
	AcademicYearID *string
	From           time.Time
	To             time.Time
	Limit          int
}

// ConflictScope selects every lesson that can collide with a class slot:
// the class itself, its teacher and its classroom.
type ConflictScope struct {
	ClassID     string
	TeacherID   string
	ClassroomID *string
	From        time.Time
	To          time.Time
}
