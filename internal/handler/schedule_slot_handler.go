package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tutor-schedule-api/internal/dto"
	"github.com/noah-isme/tutor-schedule-api/internal/models"
	"github.com/noah-isme/tutor-schedule-api/internal/service"
	appErrors "github.com/noah-isme/tutor-schedule-api/pkg/errors"
	"github.com/noah-isme/tutor-schedule-api/pkg/response"
)

type scheduleSlotManager interface {
	List(ctx context.Context, classID string, q dto.ListScheduleSlotsQuery) ([]models.ScheduleSlot, error)
	Get(ctx context.Context, classID, slotID string) (*models.ScheduleSlot, error)
	Create(ctx context.Context, classID string, req dto.CreateScheduleSlotRequest) (*dto.CreateScheduleSlotResponse, error)
	Update(ctx context.Context, classID, slotID string, req dto.UpdateScheduleSlotRequest) (*dto.UpdateScheduleSlotResponse, error)
	Delete(ctx context.Context, classID, slotID string) (*dto.DeleteScheduleSlotResponse, error)
}

// ScheduleSlotHandler exposes the weekly slots of a class.
type ScheduleSlotHandler struct {
	service scheduleSlotManager
}

// NewScheduleSlotHandler constructs the handler.
func NewScheduleSlotHandler(svc *service.ScheduleSlotService) *ScheduleSlotHandler {
	return &ScheduleSlotHandler{service: svc}
}

// List godoc
// @Summary List schedule slots of a class
// @Tags ScheduleSlots
// @Produce json
// @Param classId path string true "Class ID"
// @Param semesterId query string false "Semester filter; global slots are always included"
// @Param includeObsolete query bool false "Include archived slots"
// @Success 200 {object} response.Envelope
// @Router /classes/{classId}/schedule-slots [get]
func (h *ScheduleSlotHandler) List(c *gin.Context) {
	includeObsolete, err := queryBool(c, "includeObsolete")
	if err != nil {
		response.Error(c, err)
		return
	}
	slots, err := h.service.List(c.Request.Context(), c.Param("classId"), dto.ListScheduleSlotsQuery{
		SemesterID:      optionalString(c, "semesterId"),
		IncludeObsolete: includeObsolete,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, nil)
}

// Get godoc
// @Summary Get a schedule slot
// @Tags ScheduleSlots
// @Produce json
// @Param classId path string true "Class ID"
// @Param slotId path string true "Slot ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /classes/{classId}/schedule-slots/{slotId} [get]
func (h *ScheduleSlotHandler) Get(c *gin.Context) {
	slot, err := h.service.Get(c.Request.Context(), c.Param("classId"), c.Param("slotId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slot, nil)
}

// Create godoc
// @Summary Create a schedule slot and optionally generate its lessons
// @Tags ScheduleSlots
// @Accept json
// @Produce json
// @Param classId path string true "Class ID"
// @Param payload body dto.CreateScheduleSlotRequest true "Slot payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /classes/{classId}/schedule-slots [post]
func (h *ScheduleSlotHandler) Create(c *gin.Context) {
	var req dto.CreateScheduleSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid schedule slot payload"))
		return
	}
	resp, err := h.service.Create(c.Request.Context(), c.Param("classId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, resp)
}

// Update godoc
// @Summary Update a schedule slot
// @Tags ScheduleSlots
// @Accept json
// @Produce json
// @Param classId path string true "Class ID"
// @Param slotId path string true "Slot ID"
// @Param payload body dto.UpdateScheduleSlotRequest true "Slot payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /classes/{classId}/schedule-slots/{slotId} [put]
func (h *ScheduleSlotHandler) Update(c *gin.Context) {
	var req dto.UpdateScheduleSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid schedule slot payload"))
		return
	}
	resp, err := h.service.Update(c.Request.Context(), c.Param("classId"), c.Param("slotId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}

// Delete godoc
// @Summary Delete or archive a schedule slot
// @Description Slots with past lessons are archived and keep their history; others are removed with their lessons.
// @Tags ScheduleSlots
// @Produce json
// @Param classId path string true "Class ID"
// @Param slotId path string true "Slot ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{classId}/schedule-slots/{slotId} [delete]
func (h *ScheduleSlotHandler) Delete(c *gin.Context) {
	resp, err := h.service.Delete(c.Request.Context(), c.Param("classId"), c.Param("slotId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}
