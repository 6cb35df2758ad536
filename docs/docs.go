// Package docs registers the rolegate OpenAPI description with swag so that
// echo-swagger can serve it under /swagger/.
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
        "/": {
            "get": {
                "produces": ["application/json"],
                "tags": ["pages"],
                "summary": "Home page",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.viewResponse"}},
                    "302": {"description": "redirect to /login when not authenticated"}
                }
            }
        },
        "/admin": {
            "get": {
                "produces": ["application/json"],
                "tags": ["pages"],
                "summary": "Admin area",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.viewResponse"}},
                    "302": {"description": "redirect to /login unless role is admin"}
                }
            }
        },
        "/admin/identities": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Create identity",
                "parameters": [
                    {
                        "description": "Identity details",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/handler.createIdentityRequest"}
                    }
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.identityResponse"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "409": {"description": "Conflict", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/health/ready": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Readiness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.readinessResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.readinessResponse"}}
                }
            }
        },
        "/login": {
            "get": {
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Login page",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.viewResponse"}}
                }
            },
            "post": {
                "consumes": ["application/x-www-form-urlencoded"],
                "tags": ["auth"],
                "summary": "Login",
                "parameters": [
                    {"type": "string", "description": "Email", "name": "email", "in": "formData", "required": true},
                    {"type": "string", "description": "Password", "name": "password", "in": "formData", "required": true}
                ],
                "responses": {
                    "302": {"description": "redirect to /admin, /staff or /"},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/logout": {
            "delete": {
                "tags": ["auth"],
                "summary": "Logout",
                "responses": {
                    "303": {"description": "redirect to /login"},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/register": {
            "get": {
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Registration page",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.viewResponse"}}
                }
            },
            "post": {
                "consumes": ["application/x-www-form-urlencoded"],
                "tags": ["auth"],
                "summary": "Register",
                "parameters": [
                    {"type": "string", "description": "Display name", "name": "name", "in": "formData", "required": true},
                    {"type": "string", "description": "Email", "name": "email", "in": "formData", "required": true},
                    {"type": "string", "description": "Password", "name": "password", "in": "formData", "required": true}
                ],
                "responses": {
                    "302": {"description": "redirect to /login, or back to /register with a flash message"},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/staff": {
            "get": {
                "produces": ["application/json"],
                "tags": ["pages"],
                "summary": "Staff area",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.viewResponse"}},
                    "302": {"description": "redirect to /login unless role is admin or staff"}
                }
            }
        }
    },
    "definitions": {
        "handler.createIdentityRequest": {
            "type": "object",
            "required": ["email", "name", "password", "role"],
            "properties": {
                "email": {"type": "string"},
                "name": {"type": "string"},
                "password": {"type": "string", "maxLength": 72, "minLength": 6},
                "role": {"type": "string", "enum": ["admin", "staff", "guest"]}
            }
        },
        "handler.dependencyStatus": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "status": {"type": "string"}
            }
        },
        "handler.identityResponse": {
            "type": "object",
            "properties": {
                "created_at": {"type": "string"},
                "email": {"type": "string"},
                "id": {"type": "string"},
                "name": {"type": "string"},
                "role": {"type": "string", "enum": ["admin", "staff", "guest"]}
            }
        },
        "handler.readinessResponse": {
            "type": "object",
            "properties": {
                "dependencies": {
                    "type": "object",
                    "additionalProperties": {"$ref": "#/definitions/handler.dependencyStatus"}
                },
                "status": {"type": "string"}
            }
        },
        "handler.viewResponse": {
            "type": "object",
            "properties": {
                "data": {"type": "object", "additionalProperties": true},
                "view": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "rolegate",
	Description:      "Session-based authentication and role authorization.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
