// Package docs は swag 形式の API 定義。ハンドラの godoc コメントと揃えること
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"BearerAuth": []}],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["auth"], "summary": "ログイン",
                "consumes": ["application/json", "application/x-www-form-urlencoded"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}],
                "responses": {"200": {"description": "token と dashboard"}, "303": {"description": "フォーム送信時"}, "401": {"description": "認証失敗"}}
            }
        },
        "/auth/register": {
            "post": {
                "tags": ["auth"], "summary": "利用者の新規登録",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterRequest"}}],
                "responses": {"201": {"description": "registered"}, "409": {"description": "ID重複"}}
            }
        },
        "/auth/me": {
            "get": {"tags": ["auth"], "summary": "ログイン中のユーザー", "responses": {"200": {"description": "user_id / role / dashboard"}}}
        },
        "/items": {
            "get": {
                "tags": ["items"], "summary": "備品一覧・検索",
                "parameters": [
                    {"in": "query", "name": "keyword", "type": "string"},
                    {"in": "query", "name": "category", "type": "string"},
                    {"in": "query", "name": "stock", "type": "string", "enum": ["in_stock", "out_of_stock"]},
                    {"in": "query", "name": "limit", "type": "integer"},
                    {"in": "query", "name": "offset", "type": "integer"}
                ],
                "responses": {"200": {"description": "items / total"}}
            },
            "post": {"tags": ["items"], "summary": "備品登録（staff）", "responses": {"201": {"description": "created"}, "403": {"description": "権限なし"}}}
        },
        "/items/categories": {
            "get": {"tags": ["items"], "summary": "カテゴリ一覧", "responses": {"200": {"description": "categories"}}}
        },
        "/items/{item_id}": {
            "get": {"tags": ["items"], "summary": "備品取得", "parameters": [{"in": "path", "name": "item_id", "type": "integer", "required": true}], "responses": {"200": {"description": "item"}, "404": {"description": "not found"}}},
            "patch": {"tags": ["items"], "summary": "備品更新（登録者 / admin）", "parameters": [{"in": "path", "name": "item_id", "type": "integer", "required": true}], "responses": {"200": {"description": "item"}}},
            "delete": {"tags": ["items"], "summary": "備品削除（登録者 / admin）", "parameters": [{"in": "path", "name": "item_id", "type": "integer", "required": true}], "responses": {"204": {"description": "deleted"}, "409": {"description": "貸出記録あり"}}}
        },
        "/items/{item_id}/rentals": {
            "post": {
                "tags": ["rentals"], "summary": "備品を借りる",
                "consumes": ["application/json", "application/x-www-form-urlencoded"],
                "parameters": [
                    {"in": "path", "name": "item_id", "type": "integer", "required": true},
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/BorrowRequest"}}
                ],
                "responses": {"201": {"description": "rental"}, "303": {"description": "フォーム送信時はダッシュボードへ"}, "400": {"description": "在庫不足・日付不正"}}
            }
        },
        "/rentals/history": {
            "get": {
                "tags": ["rentals"], "summary": "貸出履歴（staff）",
                "parameters": [
                    {"in": "query", "name": "user_id", "type": "string"},
                    {"in": "query", "name": "item_id", "type": "integer"},
                    {"in": "query", "name": "status", "type": "string", "enum": ["borrowed", "returned"]},
                    {"in": "query", "name": "start_date", "type": "string", "format": "date"},
                    {"in": "query", "name": "end_date", "type": "string", "format": "date"}
                ],
                "responses": {"200": {"description": "rentals / total"}}
            }
        },
        "/rentals/mine": {"get": {"tags": ["rentals"], "summary": "自分の貸出", "responses": {"200": {"description": "rentals / total"}}}},
        "/rentals/monthly": {"get": {"tags": ["rentals"], "summary": "月別集計", "responses": {"200": {"description": "labels / series / totals"}}}},
        "/rentals/{rental_key}": {"get": {"tags": ["rentals"], "summary": "貸出取得（ID or ULID）", "parameters": [{"in": "path", "name": "rental_key", "type": "string", "required": true}], "responses": {"200": {"description": "rental"}}}},
        "/rentals/{rental_key}/returns": {"get": {"tags": ["rentals"], "summary": "返却ログ", "parameters": [{"in": "path", "name": "rental_key", "type": "string", "required": true}], "responses": {"200": {"description": "returns"}}}},
        "/rentals/{rental_key}/return": {"post": {"tags": ["rentals"], "summary": "1個返却（借り手本人）", "parameters": [{"in": "path", "name": "rental_key", "type": "string", "required": true}], "responses": {"200": {"description": "rental / returned_quantity"}, "303": {"description": "フォーム送信時"}}}},
        "/exports/rentals.csv": {"get": {"tags": ["exports"], "summary": "自分の貸出 CSV", "produces": ["text/csv"], "responses": {"200": {"description": "file"}}}},
        "/exports/rentals.xlsx": {"get": {"tags": ["exports"], "summary": "自分の貸出 Excel", "responses": {"200": {"description": "file"}}}},
        "/exports/rentals.pdf": {"get": {"tags": ["exports"], "summary": "自分の貸出 PDF", "produces": ["application/pdf"], "responses": {"200": {"description": "file"}}}},
        "/admin/exports/rentals.csv": {"get": {"tags": ["exports"], "summary": "全貸出 CSV（staff）", "produces": ["text/csv"], "responses": {"200": {"description": "file"}}}},
        "/admin/exports/rentals.xlsx": {"get": {"tags": ["exports"], "summary": "全貸出 Excel（staff）", "responses": {"200": {"description": "file"}}}},
        "/admin/exports/rentals.pdf": {"get": {"tags": ["exports"], "summary": "全貸出 PDF（staff）", "produces": ["application/pdf"], "responses": {"200": {"description": "file"}}}},
        "/dashboard/admin": {"get": {"tags": ["dashboard"], "summary": "管理者ダッシュボード", "responses": {"200": {"description": "dashboard"}}}},
        "/dashboard/user": {"get": {"tags": ["dashboard"], "summary": "利用者ダッシュボード", "responses": {"200": {"description": "dashboard"}}}}
    },
    "definitions": {
        "LoginRequest": {"type": "object", "required": ["id", "password"], "properties": {"id": {"type": "string"}, "password": {"type": "string"}}},
        "RegisterRequest": {"type": "object", "required": ["id", "password", "email"], "properties": {"id": {"type": "string"}, "password": {"type": "string"}, "email": {"type": "string"}, "role": {"type": "string"}}},
        "BorrowRequest": {"type": "object", "properties": {"quantity": {"type": "integer"}, "expected_return_date": {"type": "string", "format": "date"}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "BIHIN API",
	Description:      "備品の在庫・貸出管理 API",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
