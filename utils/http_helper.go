package utils

import (
	"encoding/json"
	"net/http"

	"ai_prompt_factory/models"
)

// WriteFormattedJSON 格式化JSON输出，使其更易读
func WriteFormattedJSON(w http.ResponseWriter, data interface{}) {
	WriteFormattedJSONStatus(w, http.StatusOK, data)
}

// WriteFormattedJSONStatus 以指定状态码输出格式化JSON
func WriteFormattedJSONStatus(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "    ") // 使用4个空格缩进
	encoder.Encode(data)
}

// WriteSuccessResponse 写入成功响应
func WriteSuccessResponse(w http.ResponseWriter, data interface{}) {
	WriteFormattedJSON(w, models.NewSuccessResponse(data))
}

// WriteErrorResponse 写入错误响应
func WriteErrorResponse(w http.ResponseWriter, code int, data interface{}) {
	WriteFormattedJSONStatus(w, httpStatusForCode(code), models.NewErrorResponse(code, data))
}

// WriteCustomErrorResponse 写入自定义错误消息的响应
func WriteCustomErrorResponse(w http.ResponseWriter, code int, message string, data interface{}) {
	WriteFormattedJSONStatus(w, httpStatusForCode(code), models.NewCustomErrorResponse(code, message, data))
}

// HandleServiceError 处理服务层错误的通用函数
func HandleServiceError(w http.ResponseWriter, err error, noDataCode int) {
	if IsSQLNoRowsError(err) {
		WriteErrorResponse(w, noDataCode, map[string]interface{}{})
	} else {
		WriteCustomErrorResponse(w, models.CodeServerError, err.Error(), map[string]interface{}{})
	}
}

// DecodeJSONBody 解析请求体，失败时直接写入参数错误响应
func DecodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := decoder.Decode(dst); err != nil {
		WriteCustomErrorResponse(w, models.CodeInvalidParams, "解析请求体失败: "+err.Error(), map[string]interface{}{})
		return false
	}
	return true
}

func httpStatusForCode(code int) int {
	switch {
	case code == models.CodeProductNotFound, code == models.CodeCustomerNotFound:
		return http.StatusNotFound
	case code >= 1000 && code < 2000:
		return http.StatusBadRequest
	case code >= 2000:
		return http.StatusInternalServerError
	default:
		return http.StatusOK
	}
}
