package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tutor-schedule-api/internal/dto"
	"github.com/noah-isme/tutor-schedule-api/internal/middleware"
	"github.com/noah-isme/tutor-schedule-api/internal/models"
	"github.com/noah-isme/tutor-schedule-api/internal/service"
	"github.com/noah-isme/tutor-schedule-api/pkg/response"
)

type scheduleConflictChecker interface {
	Validate(ctx context.Context, proposal dto.SlotProposal) (*dto.ScheduleValidationResponse, error)
	Suggest(ctx context.Context, q dto.SuggestionQuery) ([]models.TimeSlotSuggestion, error)
}

// ScheduleConflictHandler answers live validation and suggestion queries for slot editors.
type ScheduleConflictHandler struct {
	service scheduleConflictChecker
}

// NewScheduleConflictHandler constructs the handler.
func NewScheduleConflictHandler(svc *service.ScheduleConflictService) *ScheduleConflictHandler {
	return &ScheduleConflictHandler{service: svc}
}

// Check godoc
// @Summary Validate a proposed slot against overlaps and resource conflicts
// @Description meta.seq echoes the seq query parameter so clients can drop stale responses.
// @Tags ScheduleSlots
// @Produce json
// @Param classId query string true "Class ID"
// @Param dayOfWeek query string true "ISO day number or name"
// @Param startTime query string true "HH:mm"
// @Param endTime query string true "HH:mm"
// @Param semesterId query string false "Semester ID"
// @Param excludeSlotId query string false "Slot being edited"
// @Param rangeType query string false "UntilYearEnd or UntilSemesterEnd"
// @Param seq query int false "Client request sequence"
// @Success 200 {object} response.Envelope
// @Router /schedule-conflicts [get]
func (h *ScheduleConflictHandler) Check(c *gin.Context) {
	proposal, err := parseProposal(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if proposal.Seq != nil {
		middleware.SetMeta(c, "seq", *proposal.Seq)
	}

	resp, err := h.service.Validate(c.Request.Context(), proposal)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil, middleware.ExtractMeta(c))
}

func parseProposal(c *gin.Context) (dto.SlotProposal, error) {
	var p dto.SlotProposal
	var err error
	p.ClassID = strings.TrimSpace(c.Query("classId"))
	if p.DayOfWeek, err = queryDay(c, "dayOfWeek"); err != nil {
		return p, err
	}
	if p.StartTime, err = queryTime(c, "startTime"); err != nil {
		return p, err
	}
	if p.EndTime, err = queryTime(c, "endTime"); err != nil {
		return p, err
	}
	p.SemesterID = optionalString(c, "semesterId")
	p.ExcludeSlotID = strings.TrimSpace(c.Query("excludeSlotId"))
	p.RangeType = dto.GenerationRangeType(strings.TrimSpace(c.Query("rangeType")))
	if raw := strings.TrimSpace(c.Query("seq")); raw != "" {
		seq, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return p, invalidQuery("seq", err)
		}
		p.Seq = &seq
	}
	return p, nil
}

// Suggest godoc
// @Summary Suggest free slots near a preferred time
// @Tags ScheduleSlots
// @Produce json
// @Param classId query string true "Class ID"
// @Param preferredDayOfWeek query string true "ISO day number or name"
// @Param preferredStartTime query string true "HH:mm"
// @Param duration query int true "Duration in minutes"
// @Param rangeType query string false "UntilYearEnd or UntilSemesterEnd"
// @Param maxSuggestions query int false "Result cap"
// @Param semesterId query string false "Semester ID"
// @Param excludeSlotId query string false "Slot being edited"
// @Success 200 {object} response.Envelope
// @Router /schedule-slots/suggestions [get]
func (h *ScheduleConflictHandler) Suggest(c *gin.Context) {
	var q dto.SuggestionQuery
	var err error
	q.ClassID = strings.TrimSpace(c.Query("classId"))
	if q.PreferredDay, err = queryDay(c, "preferredDayOfWeek"); err != nil {
		response.Error(c, err)
		return
	}
	if q.PreferredStart, err = queryTime(c, "preferredStartTime"); err != nil {
		response.Error(c, err)
		return
	}
	if q.DurationMinutes, err = queryInt(c, "duration", 0); err != nil {
		response.Error(c, err)
		return
	}
	if q.MaxSuggestions, err = queryInt(c, "maxSuggestions", 0); err != nil {
		response.Error(c, err)
		return
	}
	q.RangeType = dto.GenerationRangeType(strings.TrimSpace(c.Query("rangeType")))
	q.SemesterID = optionalString(c, "semesterId")
	q.ExcludeSlotID = strings.TrimSpace(c.Query("excludeSlotId"))

	suggestions, err := h.service.Suggest(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, suggestions, nil)
}
