package main

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/tutor-schedule-api/internal/handler"
	internalmiddleware "github.com/noah-isme/tutor-schedule-api/internal/middleware"
	"github.com/noah-isme/tutor-schedule-api/internal/models"
)

type routeDeps struct {
	tokens    internalmiddleware.TokenValidator
	auditLog  *zap.Logger
	slots     *handler.ScheduleSlotHandler
	conflicts *handler.ScheduleConflictHandler
	calendar  *handler.CalendarHandler
	holidays  *handler.HolidayHandler
}

func registerRoutes(api *gin.RouterGroup, deps routeDeps) {
	api.Use(internalmiddleware.JWT(deps.tokens))

	planners := internalmiddleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin)
	readers := internalmiddleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin, models.RoleStaff, models.RoleTeacher)

	slots := api.Group("/classes/:classId/schedule-slots")
	slots.GET("", readers, deps.slots.List)
	slots.GET("/:slotId", readers, deps.slots.Get)
	slots.POST("", planners, internalmiddleware.Audit(deps.auditLog, "create", "schedule_slot"), deps.slots.Create)
	slots.PUT("/:slotId", planners, internalmiddleware.Audit(deps.auditLog, "update", "schedule_slot"), deps.slots.Update)
	slots.DELETE("/:slotId", planners, internalmiddleware.Audit(deps.auditLog, "delete", "schedule_slot"), deps.slots.Delete)

	api.GET("/schedule-conflicts", planners, deps.conflicts.Check)
	api.GET("/schedule-slots/suggestions", planners, deps.conflicts.Suggest)

	api.GET("/teacher-lessons", readers, deps.calendar.TeacherLessons)
	api.GET("/teachers/:teacherId/lessons",
		internalmiddleware.RBAC(string(models.RoleSuperAdmin), string(models.RoleAdmin), string(models.RoleStaff), internalmiddleware.SelfTeacher),
		deps.calendar.TeacherLessons,
	)
	api.GET("/calendar/grid", readers, deps.calendar.Grid)
	api.GET("/calendar/export", readers, deps.calendar.Export)

	api.GET("/holidays", readers, deps.holidays.List)
	api.POST("/holidays", planners, internalmiddleware.Audit(deps.auditLog, "create", "holiday"), deps.holidays.Create)
}
