package models

// 响应码定义
const (
	// 成功
	CodeSuccess = 0

	// 客户端错误 (1000-1999)
	CodeInvalidParams    = 1000 // 无效的参数
	CodeMissingParams    = 1001 // 缺少必要参数
	CodeProductNotFound  = 1002 // 商品不存在
	CodeNoReportData     = 1003 // 报告数据不足
	CodeUnknownTask      = 1004 // 未知的定时任务
	CodeTaskRunning      = 1005 // 任务正在运行
	CodeCustomerNotFound = 1006 // 客户不存在

	// 服务端错误 (2000-2999)
	CodeServerError        = 2000 // 服务器内部错误
	CodeDatabaseError      = 2001 // 数据库错误
	CodeGenerationError    = 2002 // 内容生成错误
	CodePublishError       = 2003 // 发布错误
	CodeThirdPartyAPIError = 2005 // 第三方API错误
)

// 错误码对应的消息
var CodeMessages = map[int]string{
	CodeSuccess:            "success",
	CodeInvalidParams:      "无效的参数",
	CodeMissingParams:      "缺少必要参数",
	CodeProductNotFound:    "商品不存在",
	CodeNoReportData:       "报告数据不足",
	CodeUnknownTask:        "未知的定时任务",
	CodeTaskRunning:        "任务正在运行",
	CodeCustomerNotFound:   "客户不存在",
	CodeServerError:        "服务器内部错误",
	CodeDatabaseError:      "数据库错误",
	CodeGenerationError:    "内容生成错误",
	CodePublishError:       "发布错误",
	CodeThirdPartyAPIError: "第三方API错误",
}

// NewSuccessResponse 创建成功响应
func NewSuccessResponse(data interface{}) APIResponse {
	return APIResponse{
		Code:    CodeSuccess,
		Message: CodeMessages[CodeSuccess],
		Data:    data,
	}
}

// NewErrorResponse 创建错误响应
func NewErrorResponse(code int, data interface{}) APIResponse {
	message, exists := CodeMessages[code]
	if !exists {
		message = "未知错误"
	}
	return APIResponse{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// NewCustomErrorResponse 创建自定义错误消息的响应
func NewCustomErrorResponse(code int, message string, data interface{}) APIResponse {
	return APIResponse{
		Code:    code,
		Message: message,
		Data:    data,
	}
}
