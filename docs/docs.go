// Package docs holds the OpenAPI document served under /swagger.
// Regenerate with: swag init -g cmd/main.go
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
        "/health": {
            "get": {"tags": ["system"], "summary": "Health check", "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}}}
        },
        "/ws": {
            "get": {"tags": ["device"], "summary": "Status stream",
                "description": "WebSocket. Sends the latest snapshot {\"pcStatus\",\"dailyUptime\",\"logs\"} on connect, then every published one.",
                "responses": {"101": {"description": "Switching Protocols"}}}
        },
        "/auth/sign-up": {
            "post": {"tags": ["auth"], "summary": "Claim the device", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/credentials"}}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "409": {"description": "Conflict"}}}
        },
        "/auth/sign-in": {
            "post": {"tags": ["auth"], "summary": "Sign in", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/credentials"}}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "401": {"description": "Unauthorized"}}}
        },
        "/api/v1/status": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["device"], "summary": "Get device status", "produces": ["application/json"],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.DeviceState"}}, "401": {"description": "Unauthorized"}}}
        },
        "/api/v1/power": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["device"], "summary": "Set PC power",
                "description": "Rejected with 409 in maintenance mode and 429 within 2 s of the previous accepted command.",
                "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.PowerRequest"}}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "409": {"description": "Conflict"}, "429": {"description": "Too Many Requests"}}}
        },
        "/api/v1/manual": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["device"], "summary": "User manual", "produces": ["text/html"],
                "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/config": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["settings"], "summary": "Get settings", "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["settings"], "summary": "Update settings", "consumes": ["application/json"], "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}
        },
        "/api/v1/backup": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["settings"], "summary": "Download settings backup", "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        },
        "/api/v1/restore": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["settings"], "summary": "Restore settings backup", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.RestoreRequest"}}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}
        },
        "/api/v1/logs": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["logs"], "summary": "Read the text log", "produces": ["text/plain"],
                "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/logs/old": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["logs"], "summary": "Read the rotated text log", "produces": ["text/plain"],
                "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/events": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["logs"], "summary": "List device events", "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "from", "in": "query"},
                    {"type": "string", "name": "to", "in": "query"},
                    {"type": "string", "name": "type", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}
        }
    },
    "definitions": {
        "credentials": {
            "type": "object",
            "required": ["username", "password"],
            "properties": {"username": {"type": "string"}, "password": {"type": "string"}}
        },
        "handlers.PowerRequest": {
            "type": "object",
            "required": ["on"],
            "properties": {"on": {"type": "boolean", "example": true}}
        },
        "handlers.RestoreRequest": {
            "type": "object",
            "required": ["payload"],
            "properties": {"payload": {"type": "string"}}
        },
        "models.DeviceState": {
            "type": "object",
            "properties": {
                "pc_status": {"type": "string", "enum": ["ON", "OFF", "Error"]},
                "pc_power": {"type": "boolean"},
                "power_command": {"type": "boolean"},
                "maintenance_mode": {"type": "boolean"},
                "connectivity": {"type": "string", "enum": ["DISCONNECTED", "CONNECTING", "CONNECTED"]},
                "indicator": {"type": "string"},
                "uptime_seconds": {"type": "integer"},
                "probe_failures": {"type": "integer"},
                "backoff_interval_ms": {"type": "integer"},
                "fallback_active": {"type": "boolean"},
                "last_changed_at": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Zenith PC Control API",
	Description:      "Remote power control and reachability monitoring for a desktop PC.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
