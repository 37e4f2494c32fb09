package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tutor-schedule-api/internal/calendar"
	"github.com/noah-isme/tutor-schedule-api/internal/dto"
	"github.com/noah-isme/tutor-schedule-api/internal/middleware"
	"github.com/noah-isme/tutor-schedule-api/internal/service"
	"github.com/noah-isme/tutor-schedule-api/pkg/response"
)

type calendarReader interface {
	TeacherLessons(ctx context.Context, q dto.TeacherLessonsQuery) (*dto.TeacherLessonsResponse, bool, error)
	Grid(ctx context.Context, q dto.CalendarGridQuery) (*dto.CalendarGridResponse, error)
	Export(ctx context.Context, q dto.CalendarExportQuery) (*dto.ExportFile, error)
}

// CalendarHandler serves the teacher calendar.
type CalendarHandler struct {
	service calendarReader
}

// NewCalendarHandler constructs the handler.
func NewCalendarHandler(svc *service.CalendarService) *CalendarHandler {
	return &CalendarHandler{service: svc}
}

// TeacherLessons godoc
// @Summary List a teacher's lessons with status totals
// @Tags Calendar
// @Produce json
// @Param teacherId query string false "Teacher ID; teachers default to themselves"
// @Param fromDate query string false "yyyy-MM-dd"
// @Param toDate query string false "yyyy-MM-dd"
// @Param academicYearId query string false "Academic year filter"
// @Param take query int false "Maximum lessons"
// @Success 200 {object} response.Envelope
// @Router /teacher-lessons [get]
func (h *CalendarHandler) TeacherLessons(c *gin.Context) {
	var q dto.TeacherLessonsQuery
	var err error
	if q.TeacherID, err = teacherScope(c); err != nil {
		response.Error(c, err)
		return
	}
	if q.From, err = queryDate(c, "fromDate"); err != nil {
		response.Error(c, err)
		return
	}
	if q.To, err = queryDate(c, "toDate"); err != nil {
		response.Error(c, err)
		return
	}
	if q.Take, err = queryInt(c, "take", 0); err != nil {
		response.Error(c, err)
		return
	}
	q.AcademicYearID = optionalString(c, "academicYearId")

	resp, hit, err := h.service.TeacherLessons(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, resp, nil, middleware.ExtractMeta(c))
}

// Grid godoc
// @Summary Render a weekly or monthly calendar grid
// @Tags Calendar
// @Produce json
// @Param teacherId query string false "Teacher ID; teachers default to themselves"
// @Param view query string false "weekly (default) or monthly"
// @Param anchor query string false "yyyy-MM-dd, defaults to today"
// @Param academicYearId query string false "Academic year filter"
// @Success 200 {object} response.Envelope
// @Router /calendar/grid [get]
func (h *CalendarHandler) Grid(c *gin.Context) {
	var q dto.CalendarGridQuery
	var err error
	if q.TeacherID, err = teacherScope(c); err != nil {
		response.Error(c, err)
		return
	}
	if q.View, err = calendar.ParseView(c.Query("view")); err != nil {
		response.Error(c, invalidQuery("view", err))
		return
	}
	if q.Anchor, err = queryDate(c, "anchor"); err != nil {
		response.Error(c, err)
		return
	}
	q.AcademicYearID = optionalString(c, "academicYearId")

	resp, err := h.service.Grid(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil, middleware.ExtractMeta(c))
}

// Export godoc
// @Summary Download a teacher's lessons as CSV or PDF
// @Tags Calendar
// @Produce text/csv
// @Produce application/pdf
// @Param teacherId query string false "Teacher ID; teachers default to themselves"
// @Param fromDate query string false "yyyy-MM-dd"
// @Param toDate query string false "yyyy-MM-dd"
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Router /calendar/export [get]
func (h *CalendarHandler) Export(c *gin.Context) {
	var q dto.CalendarExportQuery
	var err error
	if q.TeacherID, err = teacherScope(c); err != nil {
		response.Error(c, err)
		return
	}
	if q.From, err = queryDate(c, "fromDate"); err != nil {
		response.Error(c, err)
		return
	}
	if q.To, err = queryDate(c, "toDate"); err != nil {
		response.Error(c, err)
		return
	}
	q.Format = strings.ToLower(strings.TrimSpace(c.Query("format")))

	file, err := h.service.Export(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}
