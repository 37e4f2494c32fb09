package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/tutor-schedule-api/internal/models"
)

const lessonColumns = `id, class_id, schedule_slot_id, teacher_id, classroom_id, scheduled_date, start_time, end_time, status, created_at, updated_at`

// LessonRepository persists dated lesson instances.
type LessonRepository struct {
	db *sqlx.DB
}

// NewLessonRepository builds the repository.
func NewLessonRepository(db *sqlx.DB) *LessonRepository {
	return &LessonRepository{db: db}
}

func (r *LessonRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// nonBlockingStatuses never occupy a teacher, classroom or class.
var nonBlockingStatuses = []string{string(models.LessonCancelled)}

// ListForConflicts returns non-cancelled lessons of the class, its teacher or its
// classroom between two dates inclusive.
func (r *LessonRepository) ListForConflicts(ctx context.Context, exec sqlx.ExtContext, scope models.ConflictScope) ([]models.Lesson, error) {
	query := `SELECT ` + lessonColumns + ` FROM lessons WHERE (class_id = $1 OR teacher_id = $2 OR classroom_id = $3) AND scheduled_date BETWEEN $4 AND $5 AND status <> ALL($6) ORDER BY scheduled_date ASC, start_time ASC`
	var lessons []models.Lesson
	if err := sqlx.SelectContext(ctx, r.exec(exec), &lessons, query,
		scope.ClassID, scope.TeacherID, scope.ClassroomID, scope.From, scope.To, pq.Array(nonBlockingStatuses)); err != nil {
		return nil, fmt.Errorf("list conflict lessons: %w", err)
	}
	return lessons, nil
}

// CreateBatch inserts lessons, filling ids and timestamps.
func (r *LessonRepository) CreateBatch(ctx context.Context, exec sqlx.ExtContext, lessons []models.Lesson) error {
	if len(lessons) == 0 {
		return nil
	}
	target := r.exec(exec)
	now := time.Now().UTC()

	const query = `INSERT INTO lessons (id, class_id, schedule_slot_id, teacher_id, classroom_id, scheduled_date, start_time, end_time, status, created_at, updated_at) VALUES (:id, :class_id, :schedule_slot_id, :teacher_id, :classroom_id, :scheduled_date, :start_time, :end_time, :status, :created_at, :updated_at)`
	for i := range lessons {
		lesson := &lessons[i]
		if lesson.ID == "" {
			lesson.ID = uuid.NewString()
		}
		if lesson.Status == "" {
			lesson.Status = models.LessonScheduled
		}
		lesson.CreatedAt = now
		lesson.UpdatedAt = now
		if _, err := sqlx.NamedExecContext(ctx, target, query, lesson); err != nil {
			return fmt.Errorf("create lesson: %w", err)
		}
	}
	return nil
}

// ListBySlotFrom returns the slot's lessons dated on or after from.
func (r *LessonRepository) ListBySlotFrom(ctx context.Context, exec sqlx.ExtContext, slotID string, from time.Time) ([]models.Lesson, error) {
	query := `SELECT ` + lessonColumns + ` FROM lessons WHERE schedule_slot_id = $1 AND scheduled_date >= $2 ORDER BY scheduled_date ASC`
	var lessons []models.Lesson
	if err := sqlx.SelectContext(ctx, r.exec(exec), &lessons, query, slotID, from); err != nil {
		return nil, fmt.Errorf("list slot lessons: %w", err)
	}
	return lessons, nil
}

// Reschedule moves a lesson to a new date and time.
func (r *LessonRepository) Reschedule(ctx context.Context, exec sqlx.ExtContext, lessonID string, date time.Time, start, end models.TimeOfDay) error {
	const query = `UPDATE lessons SET scheduled_date = $1, start_time = $2, end_time = $3, updated_at = $4 WHERE id = $5`
	res, err := r.exec(exec).ExecContext(ctx, query, date, start, end, time.Now().UTC(), lessonID)
	if err != nil {
		return fmt.Errorf("reschedule lesson: %w", err)
	}
	return expectAffected(res)
}

// DeleteBySlotFrom removes the slot's lessons dated on or after from.
func (r *LessonRepository) DeleteBySlotFrom(ctx context.Context, exec sqlx.ExtContext, slotID string, from time.Time) (int64, error) {
	const query = `DELETE FROM lessons WHERE schedule_slot_id = $1 AND scheduled_date >= $2`
	res, err := r.exec(exec).ExecContext(ctx, query, slotID, from)
	if err != nil {
		return 0, fmt.Errorf("delete future slot lessons: %w", err)
	}
	return res.RowsAffected()
}

// DeleteBySlot removes every lesson of the slot.
func (r *LessonRepository) DeleteBySlot(ctx context.Context, exec sqlx.ExtContext, slotID string) (int64, error) {
	const query = `DELETE FROM lessons WHERE schedule_slot_id = $1`
	res, err := r.exec(exec).ExecContext(ctx, query, slotID)
	if err != nil {
		return 0, fmt.Errorf("delete slot lessons: %w", err)
	}
	return res.RowsAffected()
}

// ListTeacherLessons returns a teacher's lessons joined with class names, ordered by date and time.
func (r *LessonRepository) ListTeacherLessons(ctx context.Context, filter models.LessonFilter) ([]models.TeacherLesson, error) {
	args := []interface{}{filter.TeacherID}
	conditions := []string{"l.teacher_id = $1"}

	if !filter.From.IsZero() {
		args = append(args, filter.From)
		conditions = append(conditions, fmt.Sprintf("l.scheduled_date >= $%d", len(args)))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		conditions = append(conditions, fmt.Sprintf("l.scheduled_date <= $%d", len(args)))
	}
	if filter.AcademicYearID != nil {
		args = append(args, *filter.AcademicYearID)
		conditions = append(conditions, fmt.Sprintf("c.academic_year_id = $%d", len(args)))
	}

	query := `SELECT l.id, l.class_id, l.schedule_slot_id, l.teacher_id, l.classroom_id, l.scheduled_date, l.start_time, l.end_time, l.status, l.created_at, l.updated_at, c.name AS class_name FROM lessons l JOIN classes c ON c.id = l.class_id WHERE ` +
		strings.Join(conditions, " AND ") + ` ORDER BY l.scheduled_date ASC, l.start_time ASC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	var lessons []models.TeacherLesson
	if err := r.db.SelectContext(ctx, &lessons, query, args...); err != nil {
		return nil, fmt.Errorf("list teacher lessons: %w", err)
	}
	return lessons, nil
}
