package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Tutor Schedule API",
        "description": "Weekly schedule slots, lesson generation, conflict checks and teacher calendars.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"BearerAuth": []}],
    "tags": [
        {"name": "ScheduleSlots", "description": "Weekly slots, conflict checks and suggestions"},
        {"name": "Calendar", "description": "Teacher lessons, grids and exports"},
        {"name": "Holidays", "description": "Non-teaching days skipped by lesson generation"}
    ],
    "paths": {
        "/classes/{classId}/schedule-slots": {
            "get": {
                "tags": ["ScheduleSlots"],
                "summary": "List schedule slots of a class",
                "parameters": [
                    {"name": "classId", "in": "path", "required": true, "type": "string"},
                    {"name": "semesterId", "in": "query", "type": "string"},
                    {"name": "includeObsolete", "in": "query", "type": "boolean"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["ScheduleSlots"],
                "summary": "Create a schedule slot and optionally generate its lessons",
                "parameters": [
                    {"name": "classId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateScheduleSlotRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Overlap or resource conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/classes/{classId}/schedule-slots/{slotId}": {
            "get": {
                "tags": ["ScheduleSlots"],
                "summary": "Get a schedule slot",
                "parameters": [
                    {"name": "classId", "in": "path", "required": true, "type": "string"},
                    {"name": "slotId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            },
            "put": {
                "tags": ["ScheduleSlots"],
                "summary": "Update a schedule slot",
                "parameters": [
                    {"name": "classId", "in": "path", "required": true, "type": "string"},
                    {"name": "slotId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateScheduleSlotRequest"}}
                ],
                "responses": {"200": {"description": "OK"}, "409": {"description": "Overlap or archived slot"}}
            },
            "delete": {
                "tags": ["ScheduleSlots"],
                "summary": "Delete or archive a schedule slot",
                "parameters": [
                    {"name": "classId", "in": "path", "required": true, "type": "string"},
                    {"name": "slotId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/schedule-conflicts": {
            "get": {
                "tags": ["ScheduleSlots"],
                "summary": "Validate a proposed slot against overlaps and resource conflicts",
                "parameters": [
                    {"name": "classId", "in": "query", "required": true, "type": "string"},
                    {"name": "dayOfWeek", "in": "query", "required": true, "type": "string"},
                    {"name": "startTime", "in": "query", "required": true, "type": "string"},
                    {"name": "endTime", "in": "query", "required": true, "type": "string"},
                    {"name": "semesterId", "in": "query", "type": "string"},
                    {"name": "excludeSlotId", "in": "query", "type": "string"},
                    {"name": "rangeType", "in": "query", "type": "string", "enum": ["UntilYearEnd", "UntilSemesterEnd"]},
                    {"name": "seq", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/schedule-slots/suggestions": {
            "get": {
                "tags": ["ScheduleSlots"],
                "summary": "Suggest free slots near a preferred time",
                "parameters": [
                    {"name": "classId", "in": "query", "required": true, "type": "string"},
                    {"name": "preferredDayOfWeek", "in": "query", "required": true, "type": "string"},
                    {"name": "preferredStartTime", "in": "query", "required": true, "type": "string"},
                    {"name": "duration", "in": "query", "required": true, "type": "integer"},
                    {"name": "rangeType", "in": "query", "type": "string"},
                    {"name": "maxSuggestions", "in": "query", "type": "integer"},
                    {"name": "semesterId", "in": "query", "type": "string"},
                    {"name": "excludeSlotId", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/teacher-lessons": {
            "get": {
                "tags": ["Calendar"],
                "summary": "List a teacher's lessons with status totals",
                "parameters": [
                    {"name": "teacherId", "in": "query", "type": "string"},
                    {"name": "fromDate", "in": "query", "type": "string"},
                    {"name": "toDate", "in": "query", "type": "string"},
                    {"name": "academicYearId", "in": "query", "type": "string"},
                    {"name": "take", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK"}, "403": {"description": "Another teacher's calendar"}}
            }
        },
        "/teachers/{teacherId}/lessons": {
            "get": {
                "tags": ["Calendar"],
                "summary": "List lessons of one teacher",
                "parameters": [
                    {"name": "teacherId", "in": "path", "required": true, "type": "string"},
                    {"name": "fromDate", "in": "query", "type": "string"},
                    {"name": "toDate", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/calendar/grid": {
            "get": {
                "tags": ["Calendar"],
                "summary": "Render a weekly or monthly calendar grid",
                "parameters": [
                    {"name": "teacherId", "in": "query", "type": "string"},
                    {"name": "view", "in": "query", "type": "string", "enum": ["weekly", "monthly"]},
                    {"name": "anchor", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/calendar/export": {
            "get": {
                "tags": ["Calendar"],
                "summary": "Download a teacher's lessons as CSV or PDF",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "teacherId", "in": "query", "type": "string"},
                    {"name": "fromDate", "in": "query", "type": "string"},
                    {"name": "toDate", "in": "query", "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {"200": {"description": "File"}}
            }
        },
        "/holidays": {
            "get": {
                "tags": ["Holidays"],
                "summary": "List holidays",
                "parameters": [
                    {"name": "fromDate", "in": "query", "type": "string"},
                    {"name": "toDate", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["Holidays"],
                "summary": "Create a holiday",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateHolidayRequest"}}
                ],
                "responses": {"201": {"description": "Created"}}
            }
        }
    },
    "definitions": {
        "GenerationOptions": {
            "type": "object",
            "properties": {
                "rangeType": {"type": "string", "enum": ["UntilYearEnd", "UntilSemesterEnd"]},
                "skipHolidays": {"type": "boolean"},
                "skipConflicts": {"type": "boolean"}
            }
        },
        "CreateScheduleSlotRequest": {
            "type": "object",
            "properties": {
                "dayOfWeek": {"type": "string", "example": "MONDAY"},
                "startTime": {"type": "string", "example": "09:00"},
                "endTime": {"type": "string", "example": "10:00"},
                "semesterId": {"type": "string"},
                "generateLessons": {"type": "boolean"},
                "generationOptions": {"$ref": "#/definitions/GenerationOptions"},
                "allowOverlap": {"type": "boolean"}
            },
            "required": ["dayOfWeek", "startTime", "endTime"]
        },
        "UpdateScheduleSlotRequest": {
            "type": "object",
            "properties": {
                "dayOfWeek": {"type": "string"},
                "startTime": {"type": "string"},
                "endTime": {"type": "string"},
                "semesterId": {"type": "string"},
                "updateFutureLessons": {"type": "boolean"},
                "allowOverlap": {"type": "boolean"},
                "allowConflicts": {"type": "boolean"}
            },
            "required": ["dayOfWeek", "startTime", "endTime"]
        },
        "CreateHolidayRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "startDate": {"type": "string", "example": "2025-01-20"},
                "endDate": {"type": "string", "example": "2025-01-24"}
            },
            "required": ["name", "startDate", "endDate"]
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"},
                "details": {"type": "object"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
