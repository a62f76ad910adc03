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
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "paths": {
        "/auth/register": {
            "post": {
                "tags": ["auth"],
                "summary": "Регистрация пользователя",
                "parameters": [{"in": "body", "name": "input", "required": true, "schema": {"$ref": "#/definitions/RegisterInput"}}],
                "responses": {"201": {"description": "user and token"}, "409": {"description": "email or username taken"}, "422": {"description": "validation failed"}}
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["auth"],
                "summary": "Вход по username или email",
                "parameters": [{"in": "body", "name": "input", "required": true, "schema": {"$ref": "#/definitions/LoginInput"}}],
                "responses": {"200": {"description": "user and token"}, "401": {"description": "invalid credentials"}, "403": {"description": "account disabled"}}
            }
        },
        "/sports": {
            "get": {"tags": ["sports"], "summary": "Активные виды спорта", "responses": {"200": {"description": "sports"}}}
        },
        "/users/me": {
            "get": {"tags": ["users"], "summary": "Профиль текущего пользователя", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "user"}}}
        },
        "/users/profile": {
            "patch": {"tags": ["users"], "summary": "Частичное обновление профиля", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "user"}, "422": {"description": "validation failed"}}}
        },
        "/sport-preferences": {
            "get": {"tags": ["preferences"], "summary": "Предпочтения пользователя", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "preferences"}}},
            "post": {"tags": ["preferences"], "summary": "Добавить предпочтение", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "preference"}, "409": {"description": "duplicate sport"}}}
        },
        "/sport-preferences/bulk": {
            "put": {"tags": ["preferences"], "summary": "Заменить все предпочтения", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "preferences"}}}
        },
        "/events": {
            "get": {
                "tags": ["events"],
                "summary": "Список публичных событий",
                "parameters": [
                    {"type": "integer", "name": "sport_type", "in": "query"},
                    {"type": "string", "name": "status", "in": "query"},
                    {"type": "string", "name": "difficulty", "in": "query"},
                    {"type": "boolean", "name": "is_free", "in": "query"},
                    {"type": "integer", "name": "creator", "in": "query"},
                    {"type": "string", "name": "search", "in": "query"},
                    {"type": "string", "name": "start_date_from", "in": "query"},
                    {"type": "string", "name": "start_date_to", "in": "query"},
                    {"type": "string", "name": "ordering", "in": "query"},
                    {"type": "number", "name": "user_lat", "in": "query"},
                    {"type": "number", "name": "user_lng", "in": "query"},
                    {"type": "number", "name": "radius", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"},
                    {"type": "integer", "name": "offset", "in": "query"}
                ],
                "responses": {"200": {"description": "events"}, "400": {"description": "invalid filter"}}
            },
            "post": {"tags": ["events"], "summary": "Создать событие", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "event"}, "400": {"description": "event rules violated"}, "422": {"description": "validation failed"}}}
        },
        "/events/recommended": {
            "get": {
                "tags": ["events"],
                "summary": "Рекомендованные события",
                "security": [{"BearerAuth": []}],
                "parameters": [{"type": "integer", "name": "limit", "in": "query"}],
                "responses": {"200": {"description": "events: [{event, recommendation_score, distance}]"}}
            }
        },
        "/events/{eventID}": {
            "get": {"tags": ["events"], "summary": "Детали события", "parameters": [{"type": "integer", "name": "eventID", "in": "path", "required": true}], "responses": {"200": {"description": "event"}, "404": {"description": "not found"}}},
            "patch": {"tags": ["events"], "summary": "Обновить событие (только создатель)", "security": [{"BearerAuth": []}], "parameters": [{"type": "integer", "name": "eventID", "in": "path", "required": true}], "responses": {"200": {"description": "event"}, "403": {"description": "not the creator"}}},
            "delete": {"tags": ["events"], "summary": "Отменить событие (только создатель)", "security": [{"BearerAuth": []}], "parameters": [{"type": "integer", "name": "eventID", "in": "path", "required": true}], "responses": {"204": {"description": "cancelled"}, "403": {"description": "not the creator"}}}
        },
        "/events/{eventID}/join": {
            "post": {"tags": ["participants"], "summary": "Подать заявку", "security": [{"BearerAuth": []}], "parameters": [{"type": "integer", "name": "eventID", "in": "path", "required": true}], "responses": {"201": {"description": "participant"}, "400": {"description": "event past or closed"}, "409": {"description": "already joined or full"}}}
        },
        "/events/{eventID}/leave": {
            "post": {"tags": ["participants"], "summary": "Отменить участие", "security": [{"BearerAuth": []}], "parameters": [{"type": "integer", "name": "eventID", "in": "path", "required": true}], "responses": {"204": {"description": "left"}}}
        },
        "/events/{eventID}/rate": {
            "post": {"tags": ["participants"], "summary": "Оценить завершенное событие", "security": [{"BearerAuth": []}], "parameters": [{"type": "integer", "name": "eventID", "in": "path", "required": true}], "responses": {"200": {"description": "participant"}}}
        },
        "/notifications": {
            "get": {"tags": ["notifications"], "summary": "Уведомления", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "notifications"}}}
        },
        "/notifications/unread-count": {
            "get": {"tags": ["notifications"], "summary": "Количество непрочитанных", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "unread_count"}}}
        }
    },
    "definitions": {
        "RegisterInput": {
            "type": "object",
            "required": ["username", "email", "password"],
            "properties": {
                "username": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string", "minLength": 8},
                "first_name": {"type": "string"},
                "last_name": {"type": "string"}
            }
        },
        "LoginInput": {
            "type": "object",
            "required": ["login", "password"],
            "properties": {
                "login": {"type": "string"},
                "password": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Sport Events API",
	Description:      "Sport events, participation and personalised event recommendations.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
