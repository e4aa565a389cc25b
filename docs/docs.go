// Package docs is generated by swag; regenerate with `swag init -g cmd/journald/main.go -o docs`.
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
        "/healthz": {
            "get": {"tags": ["health"], "summary": "Health check", "responses": {"200": {"description": "OK"}}}
        },
        "/readyz": {
            "get": {"tags": ["health"], "summary": "Readiness check", "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}}
        },
        "/api/journals": {
            "get": {
                "tags": ["journals"],
                "summary": "List journals",
                "parameters": [
                    {"type": "boolean", "description": "include archived journals", "name": "include_archived", "in": "query"},
                    {"type": "string", "description": "exact strategy label", "name": "strategy", "in": "query"},
                    {"type": "string", "description": "exact asset", "name": "asset", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.apiResponse"}}}
            },
            "post": {
                "consumes": ["application/json"],
                "tags": ["journals"],
                "summary": "Create a journal",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.apiResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.apiResponse"}}
                }
            }
        },
        "/api/journals/archived": {
            "get": {"tags": ["journals"], "summary": "List archived journals", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.apiResponse"}}}}
        },
        "/api/journals/strategies": {
            "get": {"tags": ["journals"], "summary": "Strategy labels", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.apiResponse"}}}}
        },
        "/api/journals/{id}": {
            "get": {
                "tags": ["journals"],
                "summary": "Get a journal",
                "parameters": [{"type": "integer", "description": "journal id", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.apiResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.apiResponse"}}
                }
            },
            "put": {
                "consumes": ["application/json"],
                "tags": ["journals"],
                "summary": "Replace a journal",
                "parameters": [{"type": "integer", "description": "journal id", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.apiResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.apiResponse"}}
                }
            },
            "delete": {
                "tags": ["journals"],
                "summary": "Delete a journal",
                "parameters": [{"type": "integer", "description": "journal id", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.apiResponse"}}}
            }
        },
        "/api/journals/{id}/archive": {
            "post": {
                "tags": ["archival"],
                "summary": "Archive a journal",
                "parameters": [{"type": "integer", "description": "journal id", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.apiResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.apiResponse"}}
                }
            }
        },
        "/api/journals/{id}/unarchive": {
            "post": {
                "tags": ["archival"],
                "summary": "Unarchive a journal",
                "parameters": [{"type": "integer", "description": "journal id", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.apiResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.apiResponse"}}
                }
            }
        },
        "/api/journals/{id}/sell-records": {
            "post": {
                "consumes": ["application/json"],
                "tags": ["sell-records"],
                "summary": "Append a sell record",
                "parameters": [{"type": "integer", "description": "journal id", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.apiResponse"}}}
            }
        },
        "/api/journals/{id}/sell-records/{index}": {
            "put": {
                "consumes": ["application/json"],
                "tags": ["sell-records"],
                "summary": "Update a sell record",
                "parameters": [
                    {"type": "integer", "description": "journal id", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "description": "zero-based record index", "name": "index", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.apiResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.apiResponse"}}
                }
            },
            "delete": {
                "tags": ["sell-records"],
                "summary": "Remove a sell record",
                "parameters": [
                    {"type": "integer", "description": "journal id", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "description": "zero-based record index", "name": "index", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.apiResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.apiResponse"}}
                }
            }
        },
        "/api/journals/{id}/ai-review": {
            "post": {
                "tags": ["reviews"],
                "summary": "Request an AI review",
                "parameters": [{"type": "integer", "description": "journal id", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.apiResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.apiResponse"}}
                }
            }
        },
        "/api/journals/{id}/review-logs": {
            "get": {
                "tags": ["reviews"],
                "summary": "Review history",
                "parameters": [
                    {"type": "integer", "description": "journal id", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "html", "name": "format", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.apiResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.apiResponse"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "tags": ["reviews"],
                "summary": "Add a manual review note",
                "parameters": [{"type": "integer", "description": "journal id", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.apiResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.apiResponse"}}
                }
            }
        },
        "/api/system/switches": {
            "get": {"tags": ["system"], "summary": "List feature switches", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.apiResponse"}}}}
        },
        "/api/system/switches/{name}": {
            "put": {
                "consumes": ["application/json"],
                "tags": ["system"],
                "summary": "Toggle a feature switch",
                "parameters": [{"type": "string", "description": "switch name, e.g. ai_review", "name": "name", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.apiResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.apiResponse"}}
                }
            }
        }
    },
    "definitions": {
        "handler.apiResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "integer"},
                "data": {},
                "message": {"type": "string"},
                "meta": {"type": "object", "additionalProperties": true}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "0.1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "Investment Journal API",
	Description:      "Journals, partial sells, archival and review history.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
