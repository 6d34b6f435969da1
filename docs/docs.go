// Package docs 由 swag 注解整理的 Swagger 文档
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
	"schemes": {{ marshal .Schemes }},
	"swagger": "2.0",
	"info": {
		"description": "{{escape .Description}}",
		"title": "{{.Title}}",
		"termsOfService": "http://swagger.io/terms/",
		"contact": {
			"name": "API Support",
			"url": "http://www.swagger.io/support",
			"email": "support@swagger.io"
		},
		"license": {
			"name": "Apache 2.0",
			"url": "http://www.apache.org/licenses/LICENSE-2.0.html"
		},
		"version": "{{.Version}}"
	},
	"host": "{{.Host}}",
	"basePath": "{{.BasePath}}",
	"paths": {
		"/health": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"系统"
				],
				"summary": "健康检查",
				"responses": {
					"200": {
						"description": "成功",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					},
					"500": {
						"description": "数据库异常",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					}
				}
			}
		},
		"/api/analytics/daily": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"报表"
				],
				"summary": "日报",
				"responses": {
					"200": {
						"description": "成功",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					},
					"400": {
						"description": "参数错误",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					}
				},
				"parameters": [
					{
						"type": "string",
						"description": "日期 YYYY-MM-DD",
						"name": "date",
						"in": "query"
					}
				]
			}
		},
		"/api/analytics/weekly": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"报表"
				],
				"summary": "周报",
				"responses": {
					"200": {
						"description": "成功",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					}
				}
			}
		},
		"/api/revenue": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"报表"
				],
				"summary": "收入指标",
				"responses": {
					"200": {
						"description": "成功",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					}
				}
			}
		},
		"/api/niches": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"报表"
				],
				"summary": "领域表现",
				"responses": {
					"200": {
						"description": "成功",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					}
				}
			}
		},
		"/api/prediction/{days}": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"报表"
				],
				"summary": "收入预测",
				"responses": {
					"200": {
						"description": "成功",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					},
					"400": {
						"description": "参数错误或数据不足",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					}
				},
				"parameters": [
					{
						"type": "integer",
						"description": "预测天数 1-365",
						"name": "days",
						"in": "path",
						"required": true
					}
				]
			}
		},
		"/api/generate": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"生成"
				],
				"summary": "手动运行批量生成",
				"responses": {
					"200": {
						"description": "成功",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					},
					"400": {
						"description": "已有批量生成正在运行",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					},
					"500": {
						"description": "生成失败",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					}
				},
				"parameters": [
					{
						"description": "请求体",
						"name": "request",
						"in": "body",
						"required": false,
						"schema": {
							"$ref": "#/definitions/models.GenerateRequest"
						}
					}
				],
				"consumes": [
					"application/json"
				]
			}
		},
		"/api/score": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"生成"
				],
				"summary": "提示词质量评分",
				"responses": {
					"200": {
						"description": "成功",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					},
					"400": {
						"description": "参数错误",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					}
				},
				"parameters": [
					{
						"description": "请求体",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/models.ScoreRequest"
						}
					}
				],
				"consumes": [
					"application/json"
				]
			}
		},
		"/api/products": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"商品"
				],
				"summary": "最近的商品",
				"responses": {
					"200": {
						"description": "成功",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					}
				},
				"parameters": [
					{
						"type": "integer",
						"description": "数量，默认20，最大100",
						"name": "limit",
						"in": "query"
					}
				]
			}
		},
		"/api/products/{id}": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"商品"
				],
				"summary": "商品详情及最新指标",
				"responses": {
					"200": {
						"description": "成功",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					},
					"404": {
						"description": "商品不存在",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					}
				},
				"parameters": [
					{
						"type": "string",
						"description": "商品ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				]
			}
		},
		"/api/sales": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"商品"
				],
				"summary": "记录一笔销售",
				"responses": {
					"200": {
						"description": "成功",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					},
					"400": {
						"description": "参数错误",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					},
					"404": {
						"description": "商品不存在",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					}
				},
				"parameters": [
					{
						"description": "请求体",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/models.SaleRequest"
						}
					}
				],
				"consumes": [
					"application/json"
				]
			}
		},
		"/api/customers": {
			"get": {
				"description": "客户总数、本月新客、客户生命周期价值、消费前10和按购买次数的分层",
				"produces": [
					"application/json"
				],
				"tags": [
					"客户"
				],
				"summary": "客户统计",
				"responses": {
					"200": {
						"description": "成功",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					}
				}
			}
		},
		"/api/customers/{email}": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"客户"
				],
				"summary": "客户详情",
				"responses": {
					"200": {
						"description": "成功",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					},
					"404": {
						"description": "客户不存在",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					}
				},
				"parameters": [
					{
						"type": "string",
						"description": "客户邮箱",
						"name": "email",
						"in": "path",
						"required": true
					}
				]
			}
		},
		"/api/scheduler": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"系统"
				],
				"summary": "定时任务状态",
				"responses": {
					"200": {
						"description": "成功",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					}
				}
			}
		},
		"/api/scheduler/{task}/trigger": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"系统"
				],
				"summary": "立即运行定时任务",
				"responses": {
					"200": {
						"description": "成功",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					},
					"400": {
						"description": "未知任务或任务正在运行",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					}
				},
				"parameters": [
					{
						"type": "string",
						"description": "任务名",
						"name": "task",
						"in": "path",
						"required": true
					}
				]
			}
		}
	},
	"definitions": {
		"models.APIResponse": {
			"type": "object",
			"properties": {
				"code": {
					"type": "integer",
					"example": 0
				},
				"data": {},
				"message": {
					"type": "string",
					"example": "success"
				}
			}
		},
		"models.GenerateRequest": {
			"type": "object",
			"properties": {
				"dry_run": {
					"type": "boolean",
					"example": true
				},
				"seed": {
					"type": "integer",
					"example": 42
				}
			}
		},
		"models.ScoreRequest": {
			"type": "object",
			"properties": {
				"text": {
					"type": "string",
					"example": "1. Create a detailed strategic analysis..."
				}
			}
		},
		"models.SaleRequest": {
			"type": "object",
			"properties": {
				"amount": {
					"type": "integer",
					"example": 4500
				},
				"customer_email": {
					"type": "string",
					"example": "buyer@example.com"
				},
				"platform": {
					"type": "string",
					"example": "whop"
				},
				"product_id": {
					"type": "string",
					"example": "mock_1b9d6bcd"
				}
			}
		}
	}
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8000",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "AI 提示词工厂 API",
	Description:      "提示词批量生成、质量评分、Whop 上架与运营报表服务",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
