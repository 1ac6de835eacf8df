package utils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"runtime/debug"

	"buildsync-backend/pkg/apperr"
	"buildsync-backend/pkg/models"

	"github.com/charmbracelet/log"
)

// ErrorBody 错误响应结构
type ErrorBody struct {
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}

// WriteJSONResponse 写入JSON响应
func WriteJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// 头已写出，只能记录
		log.Error("failed to encode response", "err", err)
	}
}

// WriteSuccessResponse 写入成功响应
func WriteSuccessResponse(w http.ResponseWriter, data any) {
	WriteJSONResponse(w, http.StatusOK, data)
}

// WriteMutationResponse 写入 {success, id}
func WriteMutationResponse(w http.ResponseWriter, id string) {
	WriteJSONResponse(w, http.StatusOK, models.MutationResponse{Success: true, ID: id})
}

// WriteErrorResponse 写入错误响应
func WriteErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	WriteJSONResponse(w, statusCode, ErrorBody{Message: message})
}

// WriteError maps err onto its status code. Internal errors carry the stack
// when debug is on.
func WriteError(w http.ResponseWriter, r *http.Request, err error, debugMode bool) {
	status := apperr.HTTPStatus(err)
	body := ErrorBody{Message: err.Error()}
	logger := log.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "path", r.URL.Path, "err", err)
		if debugMode {
			body.Stack = string(debug.Stack())
		}
	} else {
		logger.Warn("request rejected", "path", r.URL.Path, "status", status, "err", err)
	}
	WriteJSONResponse(w, status, body)
}

// ParseJSONBody 解析JSON请求体. A malformed or oversized body is a
// validation error.
func ParseJSONBody(r *http.Request, v any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return apperr.Validation("request body exceeds %d bytes", tooLarge.Limit)
		case errors.Is(err, io.EOF):
			return apperr.Validation("request body is empty")
		default:
			return apperr.Validation("malformed JSON body: %v", err)
		}
	}
	return nil
}

// GetQueryParam 获取查询参数，如果不存在则返回默认值
func GetQueryParam(r *http.Request, key, defaultValue string) string {
	if value := r.URL.Query().Get(key); value != "" {
		return value
	}
	return defaultValue
}
