package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/tutor-schedule-api/internal/models"
)

// HolidayRepository persists institutional holidays.
type HolidayRepository struct {
	db *sqlx.DB
}

// NewHolidayRepository builds the repository.
func NewHolidayRepository(db *sqlx.DB) *HolidayRepository {
	return &HolidayRepository{db: db}
}

// ListBetween returns holidays intersecting [from, to].
func (r *HolidayRepository) ListBetween(ctx context.Context, from, to time.Time) ([]models.Holiday, error) {
	const query = `SELECT id, name, start_date, end_date, created_at FROM holidays WHERE start_date <= $2 AND end_date >= $1 ORDER BY start_date ASC`
	var holidays []models.Holiday
	if err := r.db.SelectContext(ctx, &holidays, query, from, to); err != nil {
		return nil, fmt.Errorf("list holidays: %w", err)
	}
	return holidays, nil
}

// Create stores a holiday.
func (r *HolidayRepository) Create(ctx context.Context, holiday *models.Holiday) error {
	if holiday.ID == "" {
		holiday.ID = uuid.NewString()
	}
	holiday.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO holidays (id, name, start_date, end_date, created_at) VALUES (:id, :name, :start_date, :end_date, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, holiday); err != nil {
		return fmt.Errorf("create holiday: %w", err)
	}
	return nil
}
