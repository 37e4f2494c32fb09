package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/tutor-schedule-api/internal/models"
)

// slotSelect projects a slot with its lesson counts split at $1 (today).
const slotSelect = `SELECT s.id, s.class_id, s.day_of_week, s.start_time, s.end_time, s.semester_id, (s.semester_id IS NULL) AS is_global, s.is_obsolete, s.created_at, s.updated_at, s.archived_at, COUNT(l.id) FILTER (WHERE l.scheduled_date < $1) AS past_lesson_count, COUNT(l.id) FILTER (WHERE l.scheduled_date >= $1) AS future_lesson_count FROM schedule_slots s LEFT JOIN lessons l ON l.schedule_slot_id = s.id`

// ScheduleSlotRepository persists recurring weekly slots.
type ScheduleSlotRepository struct {
	db *sqlx.DB
}

// NewScheduleSlotRepository builds the repository.
func NewScheduleSlotRepository(db *sqlx.DB) *ScheduleSlotRepository {
	return &ScheduleSlotRepository{db: db}
}

func (r *ScheduleSlotRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// List returns slots of a class ordered by day and start time. A semester filter
// also yields global slots.
func (r *ScheduleSlotRepository) List(ctx context.Context, exec sqlx.ExtContext, filter models.ScheduleSlotFilter, today time.Time) ([]models.ScheduleSlot, error) {
	args := []interface{}{today, filter.ClassID}
	conditions := []string{"s.class_id = $2"}

	if !filter.IncludeObsolete {
		conditions = append(conditions, "s.is_obsolete = FALSE")
	}
	if filter.SemesterID != nil {
		args = append(args, *filter.SemesterID)
		conditions = append(conditions, fmt.Sprintf("(s.semester_id = $%d OR s.semester_id IS NULL)", len(args)))
	}
	if filter.DayOfWeek != nil {
		args = append(args, *filter.DayOfWeek)
		conditions = append(conditions, fmt.Sprintf("s.day_of_week = $%d", len(args)))
	}
	if filter.ExcludeSlotID != "" {
		args = append(args, filter.ExcludeSlotID)
		conditions = append(conditions, fmt.Sprintf("s.id <> $%d", len(args)))
	}

	query := slotSelect + " WHERE " + strings.Join(conditions, " AND ") + " GROUP BY s.id ORDER BY s.day_of_week ASC, s.start_time ASC"
	var slots []models.ScheduleSlot
	if err := sqlx.SelectContext(ctx, r.exec(exec), &slots, query, args...); err != nil {
		return nil, fmt.Errorf("list schedule slots: %w", err)
	}
	return slots, nil
}

// FindByID loads one slot of a class. Returns sql.ErrNoRows when absent.
func (r *ScheduleSlotRepository) FindByID(ctx context.Context, exec sqlx.ExtContext, classID, slotID string, today time.Time) (*models.ScheduleSlot, error) {
	query := slotSelect + " WHERE s.class_id = $2 AND s.id = $3 GROUP BY s.id"
	var slot models.ScheduleSlot
	if err := sqlx.GetContext(ctx, r.exec(exec), &slot, query, today, classID, slotID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get schedule slot: %w", err)
	}
	return &slot, nil
}

// Create inserts a new slot, filling id and timestamps.
func (r *ScheduleSlotRepository) Create(ctx context.Context, exec sqlx.ExtContext, slot *models.ScheduleSlot) error {
	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	slot.CreatedAt = now
	slot.UpdatedAt = now
	slot.IsGlobal = slot.SemesterID == nil

	const query = `INSERT INTO schedule_slots (id, class_id, day_of_week, start_time, end_time, semester_id, is_obsolete, created_at, updated_at) VALUES (:id, :class_id, :day_of_week, :start_time, :end_time, :semester_id, :is_obsolete, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, slot); err != nil {
		return fmt.Errorf("create schedule slot: %w", err)
	}
	return nil
}

// Update rewrites the day, times and semester of a slot.
func (r *ScheduleSlotRepository) Update(ctx context.Context, exec sqlx.ExtContext, slot *models.ScheduleSlot) error {
	slot.UpdatedAt = time.Now().UTC()
	slot.IsGlobal = slot.SemesterID == nil

	const query = `UPDATE schedule_slots SET day_of_week = $1, start_time = $2, end_time = $3, semester_id = $4, updated_at = $5 WHERE id = $6 AND class_id = $7`
	res, err := r.exec(exec).ExecContext(ctx, query, slot.DayOfWeek, slot.StartTime, slot.EndTime, slot.SemesterID, slot.UpdatedAt, slot.ID, slot.ClassID)
	if err != nil {
		return fmt.Errorf("update schedule slot: %w", err)
	}
	return expectAffected(res)
}

// Archive marks a slot obsolete while keeping the row for historical lessons.
func (r *ScheduleSlotRepository) Archive(ctx context.Context, exec sqlx.ExtContext, slotID string) error {
	now := time.Now().UTC()
	const query = `UPDATE schedule_slots SET is_obsolete = TRUE, archived_at = $1, updated_at = $1 WHERE id = $2`
	res, err := r.exec(exec).ExecContext(ctx, query, now, slotID)
	if err != nil {
		return fmt.Errorf("archive schedule slot: %w", err)
	}
	return expectAffected(res)
}

// Delete removes a slot row.
func (r *ScheduleSlotRepository) Delete(ctx context.Context, exec sqlx.ExtContext, slotID string) error {
	const query = `DELETE FROM schedule_slots WHERE id = $1`
	res, err := r.exec(exec).ExecContext(ctx, query, slotID)
	if err != nil {
		return fmt.Errorf("delete schedule slot: %w", err)
	}
	return expectAffected(res)
}

func expectAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
