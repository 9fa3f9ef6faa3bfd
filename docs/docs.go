// Package docs registers the OpenAPI document served under /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/events": {
            "get": {
                "description": "Returns every event matching the optional search text (case-insensitive substring of the name), ordered by sort. Creator names are resolved.",
                "produces": ["application/json"],
                "tags": ["events"],
                "summary": "List events",
                "parameters": [
                    {"type": "string", "description": "Substring of the event name", "name": "search", "in": "query"},
                    {"type": "string", "description": "newest (default), oldest or attendees", "name": "sort", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.Event"}}},
                    "500": {"description": "unexpected failure", "schema": {"$ref": "#/definitions/helpers.ErrorResponse"}}
                }
            }
        },
        "/events/create": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Create an event. name, description, date and category are required; category is case-insensitive; tags may be an array or a comma-separated string; location defaults to Online.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["events"],
                "summary": "Create a new event",
                "parameters": [
                    {"description": "Event data", "name": "event", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.CreateEventInput"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/controllers.CreateEventResponse"}},
                    "400": {"description": "validation error", "schema": {"$ref": "#/definitions/helpers.ErrorResponse"}},
                    "401": {"description": "missing or invalid token", "schema": {"$ref": "#/definitions/helpers.ErrorResponse"}},
                    "403": {"description": "guest caller", "schema": {"$ref": "#/definitions/helpers.ErrorResponse"}},
                    "500": {"description": "unexpected failure", "schema": {"$ref": "#/definitions/helpers.ErrorResponse"}}
                }
            }
        },
        "/events/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["events"],
                "summary": "Get an event by ID",
                "parameters": [
                    {"type": "string", "description": "Event ID (24 hex characters)", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Event"}},
                    "400": {"description": "invalid id format", "schema": {"$ref": "#/definitions/helpers.ErrorResponse"}},
                    "404": {"description": "not found", "schema": {"$ref": "#/definitions/helpers.ErrorResponse"}},
                    "500": {"description": "unexpected failure", "schema": {"$ref": "#/definitions/helpers.ErrorResponse"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["events"],
                "summary": "Update an event",
                "parameters": [
                    {"type": "string", "description": "Event ID (24 hex characters)", "name": "id", "in": "path", "required": true},
                    {"description": "Fields to update", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.EventPatch"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/controllers.UpdateEventResponse"}},
                    "400": {"description": "validation error", "schema": {"$ref": "#/definitions/helpers.ErrorResponse"}},
                    "401": {"description": "missing or invalid token", "schema": {"$ref": "#/definitions/helpers.ErrorResponse"}},
                    "403": {"description": "guest caller", "schema": {"$ref": "#/definitions/helpers.ErrorResponse"}},
                    "404": {"description": "not found", "schema": {"$ref": "#/definitions/helpers.ErrorResponse"}},
                    "500": {"description": "unexpected failure", "schema": {"$ref": "#/definitions/helpers.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["events"],
                "summary": "Delete an event",
                "parameters": [
                    {"type": "string", "description": "Event ID (24 hex characters)", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/controllers.DeleteEventResponse"}},
                    "400": {"description": "invalid or missing id", "schema": {"$ref": "#/definitions/helpers.ErrorResponse"}},
                    "401": {"description": "missing or invalid token", "schema": {"$ref": "#/definitions/helpers.ErrorResponse"}},
                    "403": {"description": "guest caller", "schema": {"$ref": "#/definitions/helpers.ErrorResponse"}},
                    "404": {"description": "not found", "schema": {"$ref": "#/definitions/helpers.ErrorResponse"}},
                    "500": {"description": "unexpected failure", "schema": {"$ref": "#/definitions/helpers.ErrorResponse"}}
                }
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Liveness and store reachability",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/controllers.HealthResponse"}},
                    "503": {"description": "store unreachable", "schema": {"$ref": "#/definitions/helpers.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "controllers.CreateEventResponse": {
            "type": "object",
            "properties": {
                "event": {"$ref": "#/definitions/domain.Event"},
                "message": {"type": "string"}
            }
        },
        "controllers.DeleteEventResponse": {
            "type": "object",
            "properties": {
                "event": {"$ref": "#/definitions/domain.Event"},
                "message": {"type": "string"}
            }
        },
        "controllers.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"}
            }
        },
        "controllers.UpdateEventResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "updatedEvent": {"$ref": "#/definitions/domain.Event"}
            }
        },
        "domain.CreateEventInput": {
            "type": "object",
            "required": ["category", "date", "description", "name"],
            "properties": {
                "category": {"type": "string"},
                "date": {"type": "string"},
                "description": {"type": "string"},
                "location": {"type": "string"},
                "name": {"type": "string"},
                "tags": {"type": "array", "items": {"type": "string"}}
            }
        },
        "domain.Creator": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"}
            }
        },
        "domain.Event": {
            "type": "object",
            "properties": {
                "attendees": {"type": "array", "items": {"type": "string"}},
                "category": {"type": "string"},
                "createdBy": {"$ref": "#/definitions/domain.Creator"},
                "date": {"type": "string"},
                "description": {"type": "string"},
                "id": {"type": "string"},
                "location": {"type": "string"},
                "name": {"type": "string"},
                "tags": {"type": "array", "items": {"type": "string"}}
            }
        },
        "domain.EventPatch": {
            "type": "object",
            "properties": {
                "category": {"type": "string"},
                "date": {"type": "string"},
                "description": {"type": "string"},
                "eventName": {"type": "string"},
                "name": {"type": "string"}
            }
        },
        "helpers.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "message": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and the JWT.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Events API",
	Description:      "Create, browse, update and delete events.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
