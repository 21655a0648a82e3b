package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "RentLoop API",
        "description": "Availability and reservation engine for the RentLoop rental marketplace",
        "version": "0.1.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Availability", "description": "Merged availability resolution"},
        {"name": "Schedules", "description": "Weekly patterns and date exceptions"},
        {"name": "Blocks", "description": "Manual blocked periods"},
        {"name": "Holds", "description": "Temporary payment holds"},
        {"name": "Reservations", "description": "Reservation lifecycle"}
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
        "/resources/{id}/availability": {
            "get": {
                "tags": ["Availability"],
                "summary": "Resolve availability for a resource",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "from", "in": "query", "required": true, "type": "string"},
                    {"name": "to", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/resources/{id}/availability/check": {
            "get": {
                "tags": ["Availability"],
                "summary": "Check whether an exact range can be booked",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "from", "in": "query", "required": true, "type": "string"},
                    {"name": "to", "in": "query", "required": true, "type": "string"},
                    {"name": "parts", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/owners/me/calendar": {
            "get": {
                "tags": ["Availability"],
                "summary": "Aggregated calendar across the caller's resources",
                "parameters": [
                    {"name": "from", "in": "query", "required": true, "type": "string"},
                    {"name": "to", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/resources/{id}/schedule/weekly": {
            "get": {
                "tags": ["Schedules"],
                "summary": "Get the weekly pattern",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/resources/{id}/schedule/weekly/{dow}": {
            "put": {
                "tags": ["Schedules"],
                "summary": "Set the weekly pattern for one day of week",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "dow", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpsertWeeklyRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/resources/{id}/schedule/exceptions/{date}": {
            "put": {
                "tags": ["Schedules"],
                "summary": "Override availability for one exact date",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "date", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpsertExceptionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Schedules"],
                "summary": "Remove the override for one exact date",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "date", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/blocks": {
            "post": {
                "tags": ["Blocks"],
                "summary": "Create a manual blocked period",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateBlockRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/blocks/{id}": {
            "delete": {
                "tags": ["Blocks"],
                "summary": "Delete a manual blocked period",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/holds": {
            "post": {
                "tags": ["Holds"],
                "summary": "Open a temporary hold for a payment attempt",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BeginHoldRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Range unavailable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/holds/{token}/finalize": {
            "post": {
                "tags": ["Holds"],
                "summary": "Resolve a hold after payment success",
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/FinalizeHoldRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/holds/{token}/cancel": {
            "post": {
                "tags": ["Holds"],
                "summary": "Remove a hold after payment failure",
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reservations": {
            "post": {
                "tags": ["Reservations"],
                "summary": "Open a reservation attempt",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateReservationRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reservations/{id}": {
            "get": {
                "tags": ["Reservations"],
                "summary": "Get a reservation",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reservations/{id}/status": {
            "post": {
                "tags": ["Reservations"],
                "summary": "Drive a reservation status change",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/TransitionReservationRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Invalid transition", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "UpsertWeeklyRequest": {
            "type": "object",
            "properties": {
                "available": {"type": "boolean"},
                "windows": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/TimeWindow"}
                }
            }
        },
        "TimeWindow": {
            "type": "object",
            "properties": {
                "start": {"type": "string"},
                "end": {"type": "string"}
            }
        },
        "UpsertExceptionRequest": {
            "type": "object",
            "properties": {
                "morning": {"type": "boolean"},
                "afternoon": {"type": "boolean"},
                "evening": {"type": "boolean"},
                "morning_start": {"type": "string"},
                "morning_end": {"type": "string"},
                "afternoon_start": {"type": "string"},
                "afternoon_end": {"type": "string"},
                "evening_start": {"type": "string"},
                "evening_end": {"type": "string"}
            }
        },
        "CreateBlockRequest": {
            "type": "object",
            "properties": {
                "resource_id": {"type": "string"},
                "start_date": {"type": "string"},
                "end_date": {"type": "string"},
                "reason": {"type": "string"},
                "all_day": {"type": "boolean"},
                "morning": {"type": "boolean"},
                "afternoon": {"type": "boolean"},
                "evening": {"type": "boolean"}
            },
            "required": ["start_date", "end_date"]
        },
        "BeginHoldRequest": {
            "type": "object",
            "properties": {
                "resource_id": {"type": "string"},
                "start_date": {"type": "string"},
                "end_date": {"type": "string"},
                "day_parts": {
                    "type": "array",
                    "items": {"type": "string"}
                },
                "token": {"type": "string"}
            },
            "required": ["resource_id", "start_date", "end_date", "token"]
        },
        "FinalizeHoldRequest": {
            "type": "object",
            "properties": {
                "reservation_id": {"type": "string"}
            },
            "required": ["reservation_id"]
        },
        "CreateReservationRequest": {
            "type": "object",
            "properties": {
                "resource_id": {"type": "string"},
                "start_date": {"type": "string"},
                "end_date": {"type": "string"},
                "pickup_time": {"type": "string"},
                "return_time": {"type": "string"},
                "total_cents": {"type": "integer"},
                "deposit_cents": {"type": "integer"},
                "notes": {"type": "string"}
            },
            "required": ["resource_id", "start_date", "end_date"]
        },
        "TransitionReservationRequest": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "note": {"type": "string"},
                "cancellation_reason": {"type": "string"},
                "actual_return_date": {"type": "string"}
            },
            "required": ["status"]
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
