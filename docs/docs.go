// Package docs registers the OpenAPI document served under /swagger/.
// Regenerate with `swag init -g cmd/server/main.go` after changing handler annotations.
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
        "/v": {"get": {"tags": ["system"], "summary": "Get the api version", "produces": ["application/json"], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/apiResponses.BaseResponse"}}}}},
        "/health": {"get": {"tags": ["system"], "summary": "Health check", "produces": ["application/json"], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/apiResponses.BaseResponse"}}}}},
        "/questions": {"get": {"tags": ["survey"], "summary": "List the questionnaire", "produces": ["application/json"], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/apiResponses.BaseResponse"}}, "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/apiResponses.InternalServerError"}}}}},
        "/survey/session": {"post": {"tags": ["survey"], "summary": "Start a survey session", "consumes": ["application/json"], "produces": ["application/json"], "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.PostSessionBody"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/apiResponses.BaseResponse"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/apiResponses.BadRequestError"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/apiResponses.NotFoundError"}}}}},
        "/survey/response": {"post": {"tags": ["survey"], "summary": "Record an answer", "consumes": ["application/json"], "produces": ["application/json"], "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.PostResponseBody"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/apiResponses.BaseResponse"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/apiResponses.BadRequestError"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/apiResponses.NotFoundError"}}}}},
        "/survey/complete": {"post": {"tags": ["survey"], "summary": "Complete a survey session", "consumes": ["application/json"], "produces": ["application/json"], "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.PostCompleteBody"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/apiResponses.BaseResponse"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/apiResponses.BadRequestError"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/apiResponses.NotFoundError"}}, "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/apiResponses.ConflictError"}}, "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/apiResponses.TooManyRequestsError"}}}}},
        "/users": {"get": {"tags": ["users"], "summary": "List users", "produces": ["application/json"], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/apiResponses.BaseResponse"}}}}},
        "/users/{id}": {"get": {"tags": ["users"], "summary": "Get one user", "produces": ["application/json"], "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/apiResponses.BaseResponse"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/apiResponses.NotFoundError"}}}}},
        "/users/{id}/results": {"get": {"tags": ["users"], "summary": "Get the completed surveys of one user", "produces": ["application/json"], "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/apiResponses.BaseResponse"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/apiResponses.NotFoundError"}}}}},
        "/projects/{userId}": {"get": {"tags": ["users"], "summary": "List the projects a user is assigned to", "produces": ["application/json"], "parameters": [{"type": "integer", "name": "userId", "in": "path", "required": true}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/apiResponses.BaseResponse"}}}}},
        "/admin/users": {
            "get": {"tags": ["admin"], "summary": "List users for administration", "produces": ["application/json"], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/apiResponses.BaseResponse"}}}},
            "post": {"tags": ["admin"], "summary": "Create a user", "consumes": ["application/json"], "produces": ["application/json"], "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.PostUserBody"}}], "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/apiResponses.BaseResponse"}}, "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/apiResponses.ConflictError"}}}}
        },
        "/admin/users/{id}": {"put": {"tags": ["admin"], "summary": "Update a user", "consumes": ["application/json"], "produces": ["application/json"], "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}, {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.PutUserBody"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/apiResponses.BaseResponse"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/apiResponses.NotFoundError"}}}}},
        "/admin/projects": {
            "get": {"tags": ["admin"], "summary": "List projects", "produces": ["application/json"], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/apiResponses.BaseResponse"}}}},
            "post": {"tags": ["admin"], "summary": "Create a project", "consumes": ["application/json"], "produces": ["application/json"], "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.PostProjectBody"}}], "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/apiResponses.BaseResponse"}}}}
        },
        "/admin/user-projects": {
            "post": {"tags": ["admin"], "summary": "Assign a user to a project", "consumes": ["application/json"], "produces": ["application/json"], "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.UserProjectBody"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/apiResponses.BaseResponse"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/apiResponses.NotFoundError"}}}},
            "delete": {"tags": ["admin"], "summary": "Remove a user from a project", "consumes": ["application/json"], "produces": ["application/json"], "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.UserProjectBody"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/apiResponses.BaseResponse"}}}}
        },
        "/admin/survey-results": {"get": {"tags": ["admin"], "summary": "List raw survey results", "produces": ["application/json"], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/apiResponses.BaseResponse"}}}}},
        "/admin/send-results": {"post": {"tags": ["admin"], "summary": "Send results to the export channel", "produces": ["application/json"], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/apiResponses.BaseResponse"}}, "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/apiResponses.TooManyRequestsError"}}, "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/apiResponses.InternalServerError"}}}}},
        "/admin/test-telegram": {"post": {"tags": ["admin"], "summary": "Probe the export channel", "produces": ["application/json"], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/apiResponses.BaseResponse"}}, "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/apiResponses.InternalServerError"}}}}}
    },
    "definitions": {
        "apiResponses.BaseResponse": {"type": "object", "properties": {"status": {"type": "integer", "example": 200}, "success": {"type": "boolean", "example": true}, "message": {"type": "string", "example": "Ok"}, "timestamp": {"type": "string", "format": "date-time"}, "data": {}}},
        "apiResponses.BadRequestError": {"type": "object", "properties": {"status": {"type": "integer", "default": 400}, "success": {"type": "boolean", "default": false}, "message": {"type": "string", "example": "rating: must be at most 5"}, "timestamp": {"type": "string", "format": "date-time"}}},
        "apiResponses.NotFoundError": {"type": "object", "properties": {"status": {"type": "integer", "default": 404}, "success": {"type": "boolean", "default": false}, "message": {"type": "string", "example": "survey session 12: not found"}, "timestamp": {"type": "string", "format": "date-time"}}},
        "apiResponses.ConflictError": {"type": "object", "properties": {"status": {"type": "integer", "default": 409}, "success": {"type": "boolean", "default": false}, "message": {"type": "string"}, "timestamp": {"type": "string", "format": "date-time"}}},
        "apiResponses.TooManyRequestsError": {"type": "object", "properties": {"status": {"type": "integer", "default": 429}, "success": {"type": "boolean", "default": false}, "message": {"type": "string", "example": "Too many requests, please try again in 60 seconds"}, "timestamp": {"type": "string", "format": "date-time"}}},
        "apiResponses.InternalServerError": {"type": "object", "properties": {"status": {"type": "integer", "default": 500}, "success": {"type": "boolean", "default": false}, "message": {"type": "string", "default": "Internal Server Error"}, "timestamp": {"type": "string", "format": "date-time"}}},
        "handlers.PostSessionBody": {"type": "object", "required": ["userId", "projectId"], "properties": {"userId": {"type": "integer"}, "projectId": {"type": "integer"}}},
        "handlers.PostResponseBody": {"type": "object", "required": ["sessionId", "questionId", "rating"], "properties": {"sessionId": {"type": "integer"}, "questionId": {"type": "integer"}, "rating": {"type": "integer", "minimum": 1, "maximum": 5}, "comment": {"type": "string", "maxLength": 2000}}},
        "handlers.PostCompleteBody": {"type": "object", "required": ["sessionId", "totalScore"], "properties": {"sessionId": {"type": "integer"}, "totalScore": {"type": "number"}}},
        "handlers.PostUserBody": {"type": "object", "required": ["name", "email"], "properties": {"name": {"type": "string", "maxLength": 200}, "email": {"type": "string"}, "is_admin": {"type": "boolean"}}},
        "handlers.PutUserBody": {"type": "object", "properties": {"name": {"type": "string"}, "email": {"type": "string"}, "is_active": {"type": "boolean"}, "is_admin": {"type": "boolean"}}},
        "handlers.PostProjectBody": {"type": "object", "required": ["name"], "properties": {"name": {"type": "string"}, "description": {"type": "string"}}},
        "handlers.UserProjectBody": {"type": "object", "required": ["userId", "projectId"], "properties": {"userId": {"type": "integer"}, "projectId": {"type": "integer"}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "CSI Survey API",
	Description:      "Collects systems analysis satisfaction surveys and exports the results to the admin chat.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
