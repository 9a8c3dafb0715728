package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "SMA Roster Ledger API",
        "description": "Class rosters with per-student attendance and behaviour ledgers",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Classes", "description": "Class management"},
        {"name": "Students", "description": "Student roster per class"},
        {"name": "Import", "description": "Roster file import"},
        {"name": "Attendance", "description": "Per-date attendance ledger"},
        {"name": "Behavior", "description": "Behaviour event ledger"},
        {"name": "Export", "description": "Read-only exports"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/classes": {
            "get": {
                "tags": ["Classes"],
                "summary": "List classes",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Classes"],
                "summary": "Create class",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/NameRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Class already exists", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Classes"],
                "summary": "Delete every class",
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/classes/{class}": {
            "delete": {
                "tags": ["Classes"],
                "summary": "Delete class with all of its students",
                "parameters": [{"name": "class", "in": "path", "required": true, "type": "string"}],
                "responses": {"204": {"description": "No Content"}, "404": {"description": "Not Found"}}
            }
        },
        "/classes/{class}/students": {
            "get": {
                "tags": ["Students"],
                "summary": "List students of a class",
                "parameters": [
                    {"name": "class", "in": "path", "required": true, "type": "string"},
                    {"name": "date", "in": "query", "type": "string", "format": "date"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Students"],
                "summary": "Add student to a class",
                "parameters": [
                    {"name": "class", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/NameRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Student already exists", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/classes/{class}/students/{id}": {
            "get": {
                "tags": ["Students"],
                "summary": "Get a student with both ledgers",
                "parameters": [
                    {"name": "class", "in": "path", "required": true, "type": "string"},
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "delete": {
                "tags": ["Students"],
                "summary": "Remove student from a class",
                "parameters": [
                    {"name": "class", "in": "path", "required": true, "type": "string"},
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/classes/{class}/import": {
            "post": {
                "tags": ["Import"],
                "summary": "Import students from a roster file",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "class", "in": "path", "required": true, "type": "string"},
                    {"name": "file", "in": "formData", "required": true, "type": "file"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "413": {"description": "File too large"},
                    "415": {"description": "Unsupported file type"},
                    "422": {"description": "File could not be decoded"}
                }
            }
        },
        "/classes/{class}/attendance": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Get every student's status for a date",
                "parameters": [
                    {"name": "class", "in": "path", "required": true, "type": "string"},
                    {"name": "date", "in": "query", "required": true, "type": "string", "format": "date"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/classes/{class}/students/{id}/attendance": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Get a student's attendance ledger",
                "parameters": [
                    {"name": "class", "in": "path", "required": true, "type": "string"},
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "date", "in": "query", "type": "string", "format": "date"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/classes/{class}/students/{id}/attendance/toggle": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Flip a student's attendance on a date",
                "parameters": [
                    {"name": "class", "in": "path", "required": true, "type": "string"},
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ToggleAttendanceRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/classes/{class}/students/{id}/behavior": {
            "get": {
                "tags": ["Behavior"],
                "summary": "Get a student's behaviour history",
                "parameters": [
                    {"name": "class", "in": "path", "required": true, "type": "string"},
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Behavior"],
                "summary": "Append a behaviour event",
                "parameters": [
                    {"name": "class", "in": "path", "required": true, "type": "string"},
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RecordBehaviorRequest"}}
                ],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/classes/{class}/export": {
            "get": {
                "tags": ["Export"],
                "summary": "Export a class",
                "produces": ["text/plain", "text/csv", "application/pdf"],
                "parameters": [
                    {"name": "class", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["tsv", "csv", "pdf"]}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/classes/{class}/students/{id}/report": {
            "get": {
                "tags": ["Export"],
                "summary": "Narrative report for one student",
                "produces": ["text/plain"],
                "parameters": [
                    {"name": "class", "in": "path", "required": true, "type": "string"},
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/vocabulary": {
            "get": {
                "tags": ["Behavior"],
                "summary": "List suggested behaviour phrases",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        }
    },
    "definitions": {
        "NameRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"}
            },
            "required": ["name"]
        },
        "ToggleAttendanceRequest": {
            "type": "object",
            "properties": {
                "date": {"type": "string", "format": "date"}
            },
            "required": ["date"]
        },
        "RecordBehaviorRequest": {
            "type": "object",
            "properties": {
                "date": {"type": "string", "format": "date"},
                "type": {"type": "string", "enum": ["pos", "neg"]},
                "note": {"type": "string"}
            },
            "required": ["date", "type", "note"]
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
