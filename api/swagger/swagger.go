package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Counseling API",
        "description": "Scheduling and booking service for student counseling sessions",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Authentication"},
        {"name": "Counselors", "description": "Counselor directory"},
        {"name": "Counseling", "description": "Slot discovery and session booking"},
        {"name": "Counselor Schedules", "description": "Weekly availability management"}
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate and receive an access token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/counselors": {
            "get": {
                "tags": ["Counselors"],
                "summary": "List counselors",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/counseling/available-slots": {
            "get": {
                "tags": ["Counseling"],
                "summary": "List bookable slots for a counselor on a date",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "counselorId", "in": "query", "required": true, "type": "string"},
                    {"name": "date", "in": "query", "required": true, "type": "string", "description": "YYYY-MM-DD"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Invalid counselor or date", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/counseling/request": {
            "post": {
                "tags": ["Counseling"],
                "summary": "Reserve a counseling slot",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RequestSessionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Slot already booked", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Slot does not exist in the counselor schedule", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/counseling": {
            "get": {
                "tags": ["Counseling"],
                "summary": "List sessions with aggregate stats",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "counselorId", "in": "query", "type": "string"},
                    {"name": "requesterId", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "dateFrom", "in": "query", "type": "string"},
                    {"name": "dateTo", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "sort", "in": "query", "type": "string"},
                    {"name": "order", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/counseling/export": {
            "get": {
                "tags": ["Counseling"],
                "summary": "Export session history as CSV or PDF",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "description": "csv or pdf"},
                    {"name": "counselorId", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "dateFrom", "in": "query", "type": "string"},
                    {"name": "dateTo", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File download"}
                }
            }
        },
        "/counseling/{id}": {
            "get": {
                "tags": ["Counseling"],
                "summary": "Fetch one session",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/counseling/{id}/approve": {
            "put": {
                "tags": ["Counseling"],
                "summary": "Approve a pending session",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Session is not pending", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/counseling/{id}/reject": {
            "put": {
                "tags": ["Counseling"],
                "summary": "Reject a pending session with a reason",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RejectSessionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Missing rejection reason", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/counseling/{id}/status": {
            "put": {
                "tags": ["Counseling"],
                "summary": "Complete or cancel an approved session",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateSessionStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Invalid transition", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/counselor-schedules": {
            "get": {
                "tags": ["Counselor Schedules"],
                "summary": "List availability windows",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "counselorId", "in": "query", "type": "string"},
                    {"name": "dayOfWeek", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Counselor Schedules"],
                "summary": "Create an availability window",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateAvailabilityRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Invalid or overlapping window", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/counselor-schedules/{id}": {
            "put": {
                "tags": ["Counselor Schedules"],
                "summary": "Update an availability window",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateAvailabilityRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Counselor Schedules"],
                "summary": "Delete an availability window",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "Slot": {
            "type": "object",
            "properties": {
                "start_time": {"type": "string", "example": "08:00"},
                "end_time": {"type": "string", "example": "08:45"},
                "available": {"type": "boolean"}
            }
        },
        "BookingSession": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "counselor_id": {"type": "string"},
                "requester_id": {"type": "string"},
                "date": {"type": "string", "example": "2026-09-07"},
                "start_time": {"type": "string", "example": "08:00"},
                "end_time": {"type": "string", "example": "08:45"},
                "method": {"type": "string", "enum": ["online", "offline"]},
                "meeting_link": {"type": "string"},
                "location": {"type": "string"},
                "status": {"type": "string", "enum": ["pending", "approved", "rejected", "completed", "cancelled"]},
                "rejection_reason": {"type": "string"},
                "complaint_reference": {"type": "string"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "RequestSessionRequest": {
            "type": "object",
            "properties": {
                "counselor_id": {"type": "string"},
                "date": {"type": "string", "example": "2026-09-07"},
                "start_time": {"type": "string", "example": "08:00"},
                "end_time": {"type": "string", "example": "08:45"},
                "method": {"type": "string", "enum": ["online", "offline"]},
                "meeting_link": {"type": "string"},
                "location": {"type": "string"},
                "complaint_reference": {"type": "string"}
            },
            "required": ["counselor_id", "date", "start_time", "end_time", "method"]
        },
        "RejectSessionRequest": {
            "type": "object",
            "properties": {
                "reason": {"type": "string"}
            },
            "required": ["reason"]
        },
        "UpdateSessionStatusRequest": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "enum": ["completed", "cancelled"]}
            },
            "required": ["status"]
        },
        "CreateAvailabilityRequest": {
            "type": "object",
            "properties": {
                "counselor_id": {"type": "string"},
                "day_of_week": {"type": "string", "example": "MONDAY"},
                "start_time": {"type": "string", "example": "08:00"},
                "end_time": {"type": "string", "example": "12:00"},
                "slot_duration_minutes": {"type": "integer", "example": 45},
                "is_active": {"type": "boolean"}
            },
            "required": ["counselor_id", "day_of_week", "start_time", "end_time", "slot_duration_minutes"]
        },
        "UpdateAvailabilityRequest": {
            "type": "object",
            "properties": {
                "day_of_week": {"type": "string"},
                "start_time": {"type": "string"},
                "end_time": {"type": "string"},
                "slot_duration_minutes": {"type": "integer"},
                "is_active": {"type": "boolean"}
            },
            "required": ["day_of_week", "start_time", "end_time", "slot_duration_minutes"]
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
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
