// Package docs registers the OpenAPI description served at /swagger.
// Regenerate with: swag init -g handlers/handlers.go -o docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
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
        "/api/chat": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Chat"],
                "summary": "Ask a question about the dataset",
                "parameters": [
                    {"description": "Question and optional session id", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.ChatRequest"}}
                ],
                "responses": {
                    "200": {"description": "Answer, optionally with a chart", "schema": {"$ref": "#/definitions/models.ChatResult"}},
                    "400": {"description": "Invalid request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/chat/reset": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Chat"],
                "summary": "Reset a conversation",
                "parameters": [
                    {"description": "Session to reset", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.ResetRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.StatusResponse"}}
                }
            }
        },
        "/api/chat/history": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Chat"],
                "summary": "Get conversation history",
                "parameters": [
                    {"type": "string", "description": "Session ID", "name": "session_id", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.HistoryResponse"}}
                }
            }
        },
        "/api/chat/sessions": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Chat"],
                "summary": "List conversations",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.SessionInfo"}}}
                }
            }
        },
        "/api/debug-plot": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Charts"],
                "summary": "Render a chart request",
                "parameters": [
                    {"description": "Chart request", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/plot.Request"}}
                ],
                "responses": {
                    "200": {"description": "Rendered chart", "schema": {"$ref": "#/definitions/models.PlotResponse"}},
                    "400": {"description": "Request cannot be drawn", "schema": {"$ref": "#/definitions/models.PlotResponse"}}
                }
            }
        },
        "/api/charts/{filename}": {
            "get": {
                "produces": ["image/png"],
                "tags": ["Charts"],
                "summary": "Get an archived chart",
                "parameters": [
                    {"type": "string", "description": "Chart file name", "name": "filename", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}}
                }
            }
        },
        "/api/upload-dataset": {
            "post": {
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["Dataset"],
                "summary": "Upload a dataset",
                "parameters": [
                    {"type": "file", "description": "CSV or XLSX file", "name": "file", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "Summary of the new dataset", "schema": {"type": "object"}}
                }
            }
        },
        "/api/dataset": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Dataset"],
                "summary": "Describe the dataset",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.DatasetInfo"}}
                }
            }
        },
        "/api/attrition-by-age": {"get": {"produces": ["application/json"], "tags": ["Reports"], "summary": "Attrition by age band", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.CategoryReport"}}}}},
        "/api/attrition-by-gender": {"get": {"produces": ["application/json"], "tags": ["Reports"], "summary": "Attrition by gender", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.CategoryReport"}}}}},
        "/api/attrition-by-department": {"get": {"produces": ["application/json"], "tags": ["Reports"], "summary": "Attrition by department", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.CategoryReport"}}}}},
        "/api/attrition-by-education": {"get": {"produces": ["application/json"], "tags": ["Reports"], "summary": "Attrition by education level", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.CategoryReport"}}}}},
        "/api/attrition-by-job-satisfaction": {"get": {"produces": ["application/json"], "tags": ["Reports"], "summary": "Attrition by job satisfaction", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.CategoryReport"}}}}},
        "/api/attrition-by-salary": {"get": {"produces": ["application/json"], "tags": ["Reports"], "summary": "Attrition by income quartile", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.CategoryReport"}}}}},
        "/api/attrition-by-tenure": {"get": {"produces": ["application/json"], "tags": ["Reports"], "summary": "Attrition by tenure band", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.CategoryReport"}}}}},
        "/api/overall-statistics": {"get": {"produces": ["application/json"], "tags": ["Reports"], "summary": "Overall attrition statistics", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.OverallStatistics"}}}}},
        "/api/employee-count": {"get": {"produces": ["application/json"], "tags": ["Reports"], "summary": "Employee counts", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.EmployeeCount"}}}}},
        "/api/factors-correlation": {"get": {"produces": ["application/json"], "tags": ["Reports"], "summary": "Factor correlations", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.FactorCorrelations"}}}}},
        "/api/predictive-factors": {"get": {"produces": ["application/json"], "tags": ["Reports"], "summary": "Predictive factors", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.PredictiveFactors"}}}}},
        "/api/filtered-data": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Reports"],
                "summary": "Filtered statistics",
                "parameters": [
                    {"type": "number", "default": 0, "name": "tenureMin", "in": "query"},
                    {"type": "number", "default": 100, "name": "tenureMax", "in": "query"},
                    {"type": "number", "default": 1, "name": "satisfactionMin", "in": "query"},
                    {"type": "number", "default": 5, "name": "satisfactionMax", "in": "query"},
                    {"type": "number", "default": 1, "name": "performanceMin", "in": "query"},
                    {"type": "number", "default": 5, "name": "performanceMax", "in": "query"},
                    {"type": "array", "items": {"type": "string"}, "collectionFormat": "multi", "name": "departments", "in": "query"},
                    {"type": "string", "default": "all", "name": "gender", "in": "query"},
                    {"type": "string", "default": "all", "name": "education", "in": "query"},
                    {"type": "string", "default": "all", "name": "role", "in": "query"},
                    {"type": "boolean", "name": "atRisk", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.FilteredStatistics"}}
                }
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "Service health status", "schema": {"type": "object"}}
                }
            }
        }
    },
    "definitions": {
        "models.ChatRequest": {
            "type": "object",
            "required": ["message"],
            "properties": {
                "message": {"type": "string"},
                "session_id": {"type": "string"}
            }
        },
        "models.ChatResult": {
            "type": "object",
            "properties": {
                "response": {"type": "string"},
                "status": {"type": "string"},
                "session_id": {"type": "string"},
                "plot_data": {"$ref": "#/definitions/plot.Request"},
                "plot_image": {"type": "string", "format": "byte"},
                "plot_file": {"type": "string"}
            }
        },
        "models.ResetRequest": {
            "type": "object",
            "required": ["session_id"],
            "properties": {"session_id": {"type": "string"}}
        },
        "models.StatusResponse": {
            "type": "object",
            "properties": {"status": {"type": "string"}, "message": {"type": "string"}}
        },
        "models.Message": {
            "type": "object",
            "properties": {"role": {"type": "string"}, "content": {"type": "string"}}
        },
        "models.HistoryResponse": {
            "type": "object",
            "properties": {
                "session_id": {"type": "string"},
                "messages": {"type": "array", "items": {"$ref": "#/definitions/models.Message"}}
            }
        },
        "models.SessionInfo": {
            "type": "object",
            "properties": {"id": {"type": "string"}, "messages": {"type": "integer"}, "updated_at": {"type": "string"}}
        },
        "models.PlotResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "plot_image": {"type": "string", "format": "byte"},
                "plot_file": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "models.DatasetInfo": {
            "type": "object",
            "properties": {
                "source": {"type": "string"},
                "rows": {"type": "integer"},
                "columns": {"type": "array", "items": {"type": "string"}}
            }
        },
        "models.CategoryReport": {
            "type": "object",
            "properties": {
                "labels": {"type": "array", "items": {"type": "string"}},
                "yesCount": {"type": "array", "items": {"type": "integer"}},
                "noCount": {"type": "array", "items": {"type": "integer"}},
                "rates": {"type": "array", "items": {"type": "number"}}
            }
        },
        "models.OverallStatistics": {
            "type": "object",
            "properties": {
                "totalEmployees": {"type": "integer"},
                "attritionCount": {"type": "integer"},
                "retentionCount": {"type": "integer"},
                "attritionRate": {"type": "number"}
            }
        },
        "models.EmployeeCount": {
            "type": "object",
            "properties": {"total": {"type": "integer"}, "attrited": {"type": "integer"}, "active": {"type": "integer"}}
        },
        "models.FactorCorrelations": {
            "type": "object",
            "properties": {
                "factors": {"type": "array", "items": {"type": "string"}},
                "correlations": {"type": "array", "items": {"type": "number"}}
            }
        },
        "models.PredictiveFactors": {
            "type": "object",
            "properties": {
                "factors": {"type": "array", "items": {"type": "string"}},
                "importance": {"type": "array", "items": {"type": "number"}}
            }
        },
        "models.DepartmentStat": {
            "type": "object",
            "properties": {"name": {"type": "string"}, "count": {"type": "integer"}, "attrition": {"type": "integer"}, "rate": {"type": "number"}}
        },
        "models.FilteredStatistics": {
            "type": "object",
            "properties": {
                "totalEmployees": {"type": "integer"},
                "attritionCount": {"type": "integer"},
                "retentionCount": {"type": "integer"},
                "attritionRate": {"type": "number"},
                "filteredData": {"type": "boolean"},
                "departmentStats": {"type": "array", "items": {"$ref": "#/definitions/models.DepartmentStat"}}
            }
        },
        "plot.Request": {
            "type": "object",
            "required": ["type"],
            "properties": {
                "type": {"type": "string", "enum": ["bar", "histogram", "scatter", "pie", "box", "violin", "heatmap", "line"]},
                "x_column": {"type": "string"},
                "y_column": {"type": "string"},
                "title": {"type": "string"},
                "hue": {"type": "string"},
                "columns": {"type": "array", "items": {"type": "string"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:5000",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Attrition Insight API",
	Description:      "Ask questions about an HR employee dataset in natural language and get answers with rendered charts, plus fixed attrition reports.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
