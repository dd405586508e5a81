// Package docs registers the swagger document served under /swagger/.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/requisitions": {
            "get": {
                "produces": ["application/json"],
                "tags": ["requisitions"],
                "summary": "Create or list requisitions",
                "parameters": [
                    {"type": "string", "description": "Tenant", "name": "X-Tenant-ID", "in": "header", "required": true},
                    {"type": "string", "description": "Status filter", "name": "status", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.response"}}
                }
            },
            "post": {
                "description": "POST creates a requisition; weights must sum to 1.0 or be omitted. GET lists requisitions, optionally by status.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["requisitions"],
                "summary": "Create or list requisitions",
                "parameters": [
                    {"type": "string", "description": "Tenant", "name": "X-Tenant-ID", "in": "header", "required": true},
                    {"description": "Requisition", "name": "requisition", "in": "body", "schema": {"$ref": "#/definitions/api.requisitionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.response"}}
                }
            }
        },
        "/requisitions/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["requisitions"],
                "summary": "Get requisition",
                "parameters": [
                    {"type": "string", "description": "Tenant", "name": "X-Tenant-ID", "in": "header", "required": true},
                    {"type": "string", "description": "Requisition ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.response"}}
                }
            }
        },
        "/candidates": {
            "get": {
                "produces": ["application/json"],
                "tags": ["candidates"],
                "summary": "Create or list candidates",
                "parameters": [
                    {"type": "string", "description": "Tenant", "name": "X-Tenant-ID", "in": "header", "required": true},
                    {"type": "string", "description": "Requisition filter", "name": "requisition_id", "in": "query"},
                    {"type": "string", "description": "Status filter", "name": "status", "in": "query"},
                    {"type": "integer", "description": "Maximum results", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.response"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["candidates"],
                "summary": "Create or list candidates",
                "parameters": [
                    {"type": "string", "description": "Tenant", "name": "X-Tenant-ID", "in": "header", "required": true},
                    {"description": "Candidate", "name": "candidate", "in": "body", "schema": {"$ref": "#/definitions/api.candidateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.response"}}
                }
            }
        },
        "/candidates/{id}/score": {
            "post": {
                "produces": ["application/json"],
                "tags": ["candidates"],
                "summary": "Aggregate candidate score",
                "parameters": [
                    {"type": "string", "description": "Tenant", "name": "X-Tenant-ID", "in": "header", "required": true},
                    {"type": "string", "description": "Candidate ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.response"}}
                }
            }
        },
        "/candidates/{id}/status": {
            "post": {
                "description": "Actions: reject, withdraw, hold, reactivate.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["candidates"],
                "summary": "Update candidate status",
                "parameters": [
                    {"type": "string", "description": "Tenant", "name": "X-Tenant-ID", "in": "header", "required": true},
                    {"type": "string", "description": "Candidate ID", "name": "id", "in": "path", "required": true},
                    {"description": "Action", "name": "action", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.statusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.response"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/api.response"}}
                }
            }
        },
        "/candidates/{id}/resume": {
            "post": {
                "description": "Upload a resume (PDF/DOCX/TXT); its text is scored by the configured LLM for the three assessment types.",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["candidates"],
                "summary": "Upload and assess resume",
                "parameters": [
                    {"type": "string", "description": "Tenant", "name": "X-Tenant-ID", "in": "header", "required": true},
                    {"type": "string", "description": "Candidate ID", "name": "id", "in": "path", "required": true},
                    {"type": "file", "description": "Resume file", "name": "file", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.response"}}
                }
            }
        },
        "/interviews/{id}/complete": {
            "post": {
                "description": "Aggregates feedback into a consensus. Repeated calls return the stored result.",
                "produces": ["application/json"],
                "tags": ["interviews"],
                "summary": "Complete interview",
                "parameters": [
                    {"type": "string", "description": "Tenant", "name": "X-Tenant-ID", "in": "header", "required": true},
                    {"type": "string", "description": "Interview ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.response"}}
                }
            }
        },
        "/offers/{id}/transition": {
            "post": {
                "description": "Actions: update, submit, approve, send, negotiate, revise, accept, reject, withdraw, expire.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["offers"],
                "summary": "Transition offer",
                "parameters": [
                    {"type": "string", "description": "Tenant", "name": "X-Tenant-ID", "in": "header", "required": true},
                    {"type": "string", "description": "Offer ID", "name": "id", "in": "path", "required": true},
                    {"description": "Transition", "name": "transition", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.transitionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.response"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/api.response"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/api.response"}}
                }
            }
        }
    },
    "definitions": {
        "api.response": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "data": {},
                "error": {"type": "string"},
                "current_state": {"type": "string"}
            }
        },
        "api.requisitionRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "department": {"type": "string"},
                "salary_min": {"type": "string"},
                "salary_max": {"type": "string"},
                "currency": {"type": "string"},
                "required_skills": {"type": "array", "items": {"type": "string"}},
                "preferred_skills": {"type": "array", "items": {"type": "string"}},
                "weights": {"$ref": "#/definitions/domain.ScoreWeights"},
                "urgency": {"type": "string"},
                "number_of_positions": {"type": "integer"},
                "status": {"type": "string"}
            }
        },
        "api.candidateRequest": {
            "type": "object",
            "properties": {
                "requisition_id": {"type": "string"},
                "name": {"type": "string"},
                "email": {"type": "string"}
            }
        },
        "api.statusRequest": {
            "type": "object",
            "properties": {
                "action": {"type": "string"},
                "reason": {"type": "string"}
            }
        },
        "api.transitionRequest": {
            "type": "object",
            "properties": {
                "action": {"type": "string"},
                "payload": {"type": "object", "additionalProperties": true}
            }
        },
        "domain.ScoreWeights": {
            "type": "object",
            "properties": {
                "culture": {"type": "number"},
                "skills": {"type": "number"},
                "resume": {"type": "number"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api",
	Schemes:          []string{"http"},
	Title:            "Hiring Pipeline API",
	Description:      "Candidate scoring, interview consensus and offer lifecycle for multi-tenant hiring",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
