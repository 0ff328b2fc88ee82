package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "NEP Timetable API",
        "description": "Generates NEP 2020 aligned class timetables and scores their compliance.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Timetable", "description": "Timetable generation, storage and export"},
        {"name": "Compliance", "description": "NEP 2020 compliance scoring"},
        {"name": "Catalog", "description": "Subjects, teachers and time slots"},
        {"name": "Health", "description": "Liveness and readiness"}
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": ["Health"],
                "summary": "Liveness probe",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/HealthResponse"}}}
            }
        },
        "/timetables/generate": {
            "post": {
                "tags": ["Timetable"],
                "summary": "Generate a NEP 2020 timetable for a class",
                "description": "Tries the remote generator first and falls back to the local heuristic. The source field says which one produced the timetable.",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/GenerateTimetableRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid payload", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "No teachers available", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetables/generate/batch": {
            "post": {
                "tags": ["Timetable"],
                "summary": "Queue timetable generation for several classes",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/BatchGenerateRequest"}}],
                "responses": {"202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/timetables/batches/{id}": {
            "get": {
                "tags": ["Timetable"],
                "summary": "Get batch generation status",
                "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown or expired batch", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetables/compliance": {
            "post": {
                "tags": ["Compliance"],
                "summary": "Score an ad hoc timetable",
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/ComplianceAnalysisRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/classes/{classId}/timetable": {
            "get": {
                "tags": ["Timetable"],
                "summary": "Get the stored timetable of a class",
                "parameters": [{"in": "path", "name": "classId", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/classes/{classId}/compliance": {
            "get": {
                "tags": ["Compliance"],
                "summary": "Score the stored timetable of a class",
                "parameters": [{"in": "path", "name": "classId", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Class has no timetable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/classes/{classId}/timetable/export": {
            "get": {
                "tags": ["Timetable"],
                "summary": "Export the stored timetable of a class",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"in": "path", "name": "classId", "required": true, "type": "string"},
                    {"in": "query", "name": "format", "type": "string", "enum": ["csv", "pdf"], "default": "csv"}
                ],
                "responses": {"200": {"description": "File", "schema": {"type": "file"}}}
            }
        },
        "/subjects": {
            "get": {
                "tags": ["Catalog"],
                "summary": "List subjects",
                "parameters": [
                    {"in": "query", "name": "category", "type": "string"},
                    {"in": "query", "name": "priority", "type": "string", "enum": ["high", "medium", "low"]},
                    {"in": "query", "name": "search", "type": "string"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/teachers": {
            "get": {
                "tags": ["Catalog"],
                "summary": "List teachers of a school",
                "parameters": [
                    {"in": "query", "name": "school_id", "required": true, "type": "string"},
                    {"in": "query", "name": "nep_trained", "type": "boolean"},
                    {"in": "query", "name": "search", "type": "string"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/time-slots": {
            "get": {
                "tags": ["Catalog"],
                "summary": "List time slots",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        }
    },
    "definitions": {
        "HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "GenerationConstraints": {
            "type": "object",
            "properties": {
                "max_periods_per_day": {"type": "integer"},
                "break_duration": {"type": "integer"},
                "nep_compliance_strict": {"type": "boolean"},
                "multidisciplinary_sessions": {"type": "boolean"},
                "co_curricular_mandatory": {"type": "boolean"}
            }
        },
        "GenerationPreferences": {
            "type": "object",
            "properties": {
                "morning_subjects": {"type": "array", "items": {"type": "string"}},
                "afternoon_subjects": {"type": "array", "items": {"type": "string"}},
                "avoid_consecutive": {"type": "array", "items": {"type": "string"}}
            }
        },
        "GenerateTimetableRequest": {
            "type": "object",
            "required": ["school_id", "class_id"],
            "properties": {
                "school_id": {"type": "string"},
                "class_id": {"type": "string"},
                "constraints": {"$ref": "#/definitions/GenerationConstraints"},
                "preferences": {"$ref": "#/definitions/GenerationPreferences"},
                "dry_run": {"type": "boolean"}
            }
        },
        "BatchGenerateRequest": {
            "type": "object",
            "required": ["school_id", "class_ids"],
            "properties": {
                "school_id": {"type": "string"},
                "class_ids": {"type": "array", "items": {"type": "string"}, "maxItems": 50},
                "constraints": {"$ref": "#/definitions/GenerationConstraints"},
                "preferences": {"$ref": "#/definitions/GenerationPreferences"}
            }
        },
        "TimetableEntryInput": {
            "type": "object",
            "required": ["subject_id", "time_slot_id", "day_of_week"],
            "properties": {
                "subject_id": {"type": "string"},
                "teacher_id": {"type": "string"},
                "time_slot_id": {"type": "string"},
                "day_of_week": {"type": "integer", "minimum": 1, "maximum": 6},
                "room_number": {"type": "string"}
            }
        },
        "ComplianceAnalysisRequest": {
            "type": "object",
            "properties": {
                "timetable": {"type": "array", "items": {"$ref": "#/definitions/TimetableEntryInput"}},
                "subject_ids": {"type": "array", "items": {"type": "string"}}
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
