package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "School Timetable API",
        "description": "Timetable booking management and conflict detection",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Conflicts", "description": "Pre-confirmation conflict detection"},
        {"name": "Bookings", "description": "Class booking management"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"}
                }
            }
        },
        "/api/v1/schedules/check-conflicts": {
            "post": {
                "tags": ["Conflicts"],
                "summary": "Check a proposed assignment for conflicts",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ConflictCheckRequest"}}
                ],
                "responses": {
                    "200": {"description": "Structured conflict report", "schema": {"$ref": "#/definitions/ConflictCheckResponse"}},
                    "400": {"description": "Missing or malformed fields", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "500": {"description": "Repository failure", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/schedules": {
            "get": {
                "tags": ["Bookings"],
                "summary": "List bookings",
                "parameters": [
                    {"name": "teacherId", "in": "query", "type": "string"},
                    {"name": "dayOfWeek", "in": "query", "type": "string"},
                    {"name": "room", "in": "query", "type": "string"},
                    {"name": "academicYear", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Bookings"],
                "summary": "Create booking",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateBookingRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Room already booked", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/schedules/{id}": {
            "get": {
                "tags": ["Bookings"],
                "summary": "Get booking",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "patch": {
                "tags": ["Bookings"],
                "summary": "Update booking",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateBookingRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Room already booked", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Bookings"],
                "summary": "Delete booking",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Deleted"}
                }
            }
        },
        "/api/v1/schedules/export": {
            "get": {
                "tags": ["Bookings"],
                "summary": "Export a teacher's timetable as CSV or PDF",
                "parameters": [
                    {"name": "teacherId", "in": "query", "required": true, "type": "string"},
                    {"name": "academicYear", "in": "query", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File download"}
                }
            }
        },
        "/api/v1/teachers/{id}/timetable": {
            "get": {
                "tags": ["Bookings"],
                "summary": "Weekly timetable for a teacher",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "academicYear", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "ConflictCheckRequest": {
            "type": "object",
            "required": ["teacher_id", "day_of_week", "start_time", "end_time", "academic_year"],
            "properties": {
                "subject_class_id": {"type": "string"},
                "teacher_id": {"type": "string"},
                "day_of_week": {"type": "string"},
                "start_time": {"type": "string", "example": "09:00"},
                "end_time": {"type": "string", "example": "10:30"},
                "room_number": {"type": "string"},
                "academic_year": {"type": "string", "example": "2024-2025"}
            }
        },
        "ConflictRecord": {
            "type": "object",
            "properties": {
                "type": {"type": "string", "enum": ["TEACHER_CONFLICT", "ROOM_CONFLICT", "WORKLOAD_EXCEEDED", "WORKLOAD_WARNING"]},
                "severity": {"type": "string", "enum": ["critical", "warning", "info"]},
                "blocking": {"type": "boolean"},
                "message": {"type": "string"},
                "details": {"type": "object"}
            }
        },
        "ConflictCheckResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "has_conflicts": {"type": "boolean"},
                "conflicts": {"type": "array", "items": {"$ref": "#/definitions/ConflictRecord"}},
                "conflict_count": {"type": "integer"},
                "critical_conflicts": {"type": "integer"},
                "warnings": {"type": "integer"}
            }
        },
        "CreateBookingRequest": {
            "type": "object",
            "required": ["teacher_id", "subject_name", "section", "day_of_week", "start_time", "end_time", "academic_year"],
            "properties": {
                "teacher_id": {"type": "string"},
                "subject_name": {"type": "string"},
                "section": {"type": "string"},
                "room_number": {"type": "string"},
                "day_of_week": {"type": "string"},
                "start_time": {"type": "string"},
                "end_time": {"type": "string"},
                "academic_year": {"type": "string"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "data": {"type": "object"},
                "error": {"type": "string"},
                "code": {"type": "string"},
                "pagination": {"$ref": "#/definitions/Pagination"}
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
