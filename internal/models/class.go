package models

import "time"

// Class is a taught group with its default teacher and room.
type Class struct {
	ID             string    `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	AcademicYearID *string   `db:"academic_year_id" json:"academicYearId,omitempty"`
	TeacherID      string    `db:"teacher_id" json:"teacherId"`
	ClassroomID    *string   `db:"classroom_id" json:"classroomId,omitempty"`
	IsActive       bool      `db:"is_active" json:"isActive"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`
}
