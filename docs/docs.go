// Package docs registers the OpenAPI document served at /swagger.
// Regenerate with `swag init -g cmd/server/main.go` after changing handler annotations.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
  "swagger": "2.0",
  "info": {
    "title": "{{.Title}}",
    "description": "{{escape .Description}}",
    "version": "{{.Version}}"
  },
  "host": "{{.Host}}",
  "basePath": "{{.BasePath}}",
  "schemes": {{ marshal .Schemes }},
  "tags": [
    {"name": "tickets", "description": "工单受理与查询"},
    {"name": "qianfan", "description": "大模型分析直通"},
    {"name": "analysis", "description": "统计分析与预警"},
    {"name": "users", "description": "用户、评论、评价与通知"},
    {"name": "system", "description": "健康检查"}
  ],
  "paths": {}
}`

var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "政务热线智能助手API",
	Description:      "Government hotline ticket intake with model-assisted triage and trend alerts",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
