// Package docs 由 swag 注解整理而成，提供 /swagger/doc.json 的内容
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "安知鱼",
            "url": "https://github.com/anzhiyu-c/anheyu-news"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/news": {
            "get": {
                "produces": ["application/json"],
                "tags": ["新闻"],
                "summary": "获取新闻列表",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["新闻"],
                "summary": "创建新闻",
                "parameters": [
                    {"description": "新闻内容", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.CreateNewsRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/response.CreatedResponse"}},
                    "400": {"description": "参数校验失败", "schema": {"$ref": "#/definitions/response.Response"}},
                    "429": {"description": "请求过于频繁", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/news/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["新闻"],
                "summary": "获取新闻",
                "parameters": [{"type": "integer", "description": "新闻ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "无效的ID", "schema": {"$ref": "#/definitions/response.Response"}},
                    "404": {"description": "新闻不存在", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            },
            "patch": {
                "description": "请求体为 title/text/img/tags 的任意非空子集，出现未知字段时不做任何修改",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["新闻"],
                "summary": "部分更新新闻",
                "parameters": [
                    {"type": "integer", "description": "新闻ID", "name": "id", "in": "path", "required": true},
                    {"description": "需要更新的字段", "name": "body", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "无效的字段或参数校验失败", "schema": {"$ref": "#/definitions/response.Response"}},
                    "404": {"description": "新闻不存在", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            },
            "delete": {
                "tags": ["新闻"],
                "summary": "删除新闻",
                "parameters": [{"type": "integer", "description": "新闻ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "新闻不存在", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/news/{id}/rollback": {
            "patch": {
                "description": "恢复最近一条历史快照中记录的字段",
                "produces": ["application/json"],
                "tags": ["新闻"],
                "summary": "回滚新闻",
                "parameters": [{"type": "integer", "description": "新闻ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "404": {"description": "新闻不存在或没有历史快照", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/news/{id}/render": {
            "get": {
                "produces": ["application/json"],
                "tags": ["新闻"],
                "summary": "渲染新闻正文",
                "parameters": [{"type": "integer", "description": "新闻ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "404": {"description": "新闻不存在", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/news/{id}/history": {
            "get": {
                "description": "返回新闻的全部历史快照，最新的在前",
                "produces": ["application/json"],
                "tags": ["新闻历史"],
                "summary": "获取新闻历史快照列表",
                "parameters": [{"type": "integer", "description": "新闻ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "404": {"description": "新闻不存在", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/news/{id}/history/count": {
            "get": {
                "produces": ["application/json"],
                "tags": ["新闻历史"],
                "summary": "获取历史快照数量",
                "parameters": [{"type": "integer", "description": "新闻ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/version": {
            "get": {
                "produces": ["application/json"],
                "tags": ["辅助工具"],
                "summary": "获取版本信息",
                "responses": {
                    "200": {"description": "版本信息", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        }
    },
    "definitions": {
        "model.CreateNewsRequest": {
            "type": "object",
            "required": ["title", "text", "img", "tags"],
            "properties": {
                "title": {"type": "string", "maxLength": 100, "minLength": 1},
                "text": {"type": "string"},
                "img": {"type": "string", "maxLength": 255},
                "tags": {"type": "array", "minItems": 1, "items": {"type": "string"}}
            }
        },
        "response.Response": {
            "type": "object",
            "properties": {
                "code": {"type": "integer"},
                "message": {"type": "string"},
                "data": {}
            }
        },
        "response.CreatedResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "integer"},
                "message": {"type": "string"},
                "data": {"type": "object", "properties": {"id": {"type": "integer"}}},
                "id": {"type": "integer"}
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
	Title:            "Anheyu News API",
	Description:      "新闻接口文档，支持字段级更新历史与回滚",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
