package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/tutor-schedule-api/internal/dto"
	"github.com/noah-isme/tutor-schedule-api/internal/models"
	appErrors "github.com/noah-isme/tutor-schedule-api/pkg/errors"
)

type holidayRepository interface {
	ListBetween(ctx context.Context, from, to time.Time) ([]models.Holiday, error)
	Create(ctx context.Context, holiday *models.Holiday) error
}

// HolidayService manages the days lesson generation can skip.
type HolidayService struct {
	repo      holidayRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewHolidayService constructs the service.
func NewHolidayService(repo holidayRepository, validate *validator.Validate, logger *zap.Logger) *HolidayService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HolidayService{repo: repo, validator: validate, logger: logger}
}

// List returns holidays overlapping [from, to]; a zero bound leaves that side open.
func (s *HolidayService) List(ctx context.Context, from, to time.Time) ([]dto.HolidayResponse, error) {
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "to must not be before from")
	}
	if from.IsZero() {
		from = time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	if to.IsZero() {
		to = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)
	}
	holidays, err := s.repo.ListBetween(ctx, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list holidays")
	}
	out := make([]dto.HolidayResponse, 0, len(holidays))
	for _, h := range holidays {
		out = append(out, toHolidayResponse(h))
	}
	return out, nil
}

// Create registers a holiday.
func (s *HolidayService) Create(ctx context.Context, req dto.CreateHolidayRequest) (*dto.HolidayResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid holiday payload")
	}
	start, err := models.ParseDate(req.StartDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "startDate must be yyyy-MM-dd")
	}
	end, err := models.ParseDate(req.EndDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "endDate must be yyyy-MM-dd")
	}
	if end.Before(start) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "endDate must not be before startDate")
	}

	holiday := &models.Holiday{Name: req.Name, StartDate: start, EndDate: end}
	if err := s.repo.Create(ctx, holiday); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create holiday")
	}
	s.logger.Info("holiday created", zap.String("holiday_id", holiday.ID), zap.String("start", req.StartDate), zap.String("end", req.EndDate))
	resp := toHolidayResponse(*holiday)
	return &resp, nil
}

func toHolidayResponse(h models.Holiday) dto.HolidayResponse {
	return dto.HolidayResponse{
		ID:        h.ID,
		Name:      h.Name,
		StartDate: models.FormatDate(h.StartDate),
		EndDate:   models.FormatDate(h.EndDate),
	}
}
