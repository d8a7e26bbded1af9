package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Pushmaster API",
        "description": "Deploy workflow tracker: requests, pushes, notifications",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Requests", "description": "Deploy request lifecycle"},
        {"name": "Pushes", "description": "Push lifecycle and membership"},
        {"name": "Users", "description": "Per-user workflow views"},
        {"name": "Reports", "description": "Weekly deploy reports"}
    ],
    "paths": {
        "/requests": {
            "get": {
                "tags": ["Requests"],
                "summary": "List requests awaiting a push",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["Requests"],
                "summary": "File a deploy request",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RequestPayload"}}],
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/requests/{id}": {
            "get": {
                "tags": ["Requests"],
                "summary": "Get a request",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            },
            "put": {
                "tags": ["Requests"],
                "summary": "Edit and resubmit a request",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RequestPayload"}}
                ],
                "responses": {"200": {"description": "OK"}, "412": {"description": "Not editable"}}
            }
        },
        "/requests/{id}/abandon": {
            "post": {
                "tags": ["Requests"],
                "summary": "Abandon a request",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/requests/{id}/withdraw": {
            "post": {
                "tags": ["Requests"],
                "summary": "Withdraw a request from its push",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/requests/{id}/checkin": {
            "post": {
                "tags": ["Requests"],
                "summary": "Mark changes as checked in",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/requests/{id}/tested": {
            "post": {
                "tags": ["Requests"],
                "summary": "Mark a staged request as verified",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/requests/{id}/reject": {
            "post": {
                "tags": ["Requests"],
                "summary": "Reject a request",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "schema": {"$ref": "#/definitions/RejectRequestPayload"}}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/requests/{id}/take-ownership": {
            "post": {
                "tags": ["Requests"],
                "summary": "Take ownership of a request",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/pushes": {
            "get": {
                "tags": ["Pushes"],
                "summary": "List open pushes",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["Pushes"],
                "summary": "Open a new push",
                "parameters": [{"name": "payload", "in": "body", "schema": {"$ref": "#/definitions/CreatePushPayload"}}],
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/pushes/current": {
            "get": {
                "tags": ["Pushes"],
                "summary": "Get the current push",
                "responses": {"200": {"description": "OK"}, "404": {"description": "No current push"}}
            }
        },
        "/pushes/{id}": {
            "get": {
                "tags": ["Pushes"],
                "summary": "Get a push with its requests",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            }
        },
        "/pushes/{id}/accept": {
            "post": {
                "tags": ["Pushes"],
                "summary": "Accept a request into a push",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AcceptRequestPayload"}}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/pushes/{id}/stage": {
            "post": {
                "tags": ["Pushes"],
                "summary": "Send checked-in requests to a stage",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SendToStagePayload"}}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/pushes/{id}/live": {
            "post": {
                "tags": ["Pushes"],
                "summary": "Mark a verified push as live",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}, "412": {"description": "Unverified requests"}}
            }
        },
        "/pushes/{id}/force-live": {
            "post": {
                "tags": ["Pushes"],
                "summary": "Mark a push live without verification",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/pushes/{id}/unlive": {
            "post": {
                "tags": ["Pushes"],
                "summary": "Roll a live push back to stage",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/pushes/{id}/abandon": {
            "post": {
                "tags": ["Pushes"],
                "summary": "Abandon a push",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/pushes/{id}/take-ownership": {
            "post": {
                "tags": ["Pushes"],
                "summary": "Take ownership of a push",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/users/{email}": {
            "get": {
                "tags": ["Users"],
                "summary": "Get a user's display info",
                "parameters": [{"name": "email", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/users/{email}/requests": {
            "get": {
                "tags": ["Users"],
                "summary": "List a user's recent requests",
                "parameters": [{"name": "email", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/users/{email}/pushes": {
            "get": {
                "tags": ["Users"],
                "summary": "List a user's recent pushes",
                "parameters": [{"name": "email", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/reports/weekly/{date}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Weekly deploy report",
                "parameters": [
                    {"name": "date", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        }
    },
    "definitions": {
        "RequestPayload": {
            "type": "object",
            "required": ["subject"],
            "properties": {
                "subject": {"type": "string"},
                "branch": {"type": "string"},
                "message": {"type": "string"},
                "target_date": {"type": "string", "format": "date"},
                "push_plans": {"type": "boolean"},
                "js_serials": {"type": "boolean"},
                "img_serials": {"type": "boolean"},
                "urgent": {"type": "boolean"},
                "tests_pass": {"type": "boolean"},
                "tests_pass_url": {"type": "string"}
            }
        },
        "RejectRequestPayload": {
            "type": "object",
            "properties": {
                "reason": {"type": "string"}
            }
        },
        "CreatePushPayload": {
            "type": "object",
            "properties": {
                "name": {"type": "string"}
            }
        },
        "AcceptRequestPayload": {
            "type": "object",
            "required": ["request_id"],
            "properties": {
                "request_id": {"type": "string"}
            }
        },
        "SendToStagePayload": {
            "type": "object",
            "required": ["stage"],
            "properties": {
                "stage": {"type": "string"}
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
