package handler

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tutor-schedule-api/internal/middleware"
	"github.com/noah-isme/tutor-schedule-api/internal/models"
	appErrors "github.com/noah-isme/tutor-schedule-api/pkg/errors"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		return nil
	}
	return claims
}

// teacherScope resolves the teacher a calendar request is about. Teachers may
// only read their own calendar and default to it when no id is given.
func teacherScope(c *gin.Context) (string, error) {
	teacherID := c.Param("teacherId")
	if teacherID == "" {
		teacherID = strings.TrimSpace(c.Query("teacherId"))
	}
	claims := claimsFromContext(c)
	if claims != nil && claims.Role == models.RoleTeacher {
		if teacherID == "" {
			return claims.UserID, nil
		}
		if teacherID != claims.UserID {
			return "", appErrors.Clone(appErrors.ErrForbidden, "teachers can only read their own calendar")
		}
	}
	if teacherID == "" {
		return "", appErrors.Clone(appErrors.ErrValidation, "teacherId is required")
	}
	return teacherID, nil
}

func invalidQuery(name string, err error) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid "+name)
}

func optionalString(c *gin.Context, name string) *string {
	value := strings.TrimSpace(c.Query(name))
	if value == "" {
		return nil
	}
	return &value
}

func queryDate(c *gin.Context, name string) (time.Time, error) {
	value := strings.TrimSpace(c.Query(name))
	if value == "" {
		return time.Time{}, nil
	}
	d, err := models.ParseDate(value)
	if err != nil {
		return time.Time{}, invalidQuery(name, err)
	}
	return d, nil
}

func queryInt(c *gin.Context, name string, fallback int) (int, error) {
	value := strings.TrimSpace(c.Query(name))
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, invalidQuery(name, err)
	}
	return n, nil
}

func queryBool(c *gin.Context, name string) (bool, error) {
	value := strings.TrimSpace(c.Query(name))
	if value == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, invalidQuery(name, err)
	}
	return b, nil
}

func queryDay(c *gin.Context, name string) (models.DayOfWeek, error) {
	day, err := models.ParseDayOfWeek(c.Query(name))
	if err != nil {
		return 0, invalidQuery(name, err)
	}
	return day, nil
}

func queryTime(c *gin.Context, name string) (models.TimeOfDay, error) {
	t, err := models.ParseTimeOfDay(c.Query(name))
	if err != nil {
		return 0, invalidQuery(name, err)
	}
	return t, nil
}
