package api

import (
	"net/http"

	"studenthub/internal/auth"

	"github.com/gin-gonic/gin"
)

// 错误码定义
const (
	// 通用错误码
	ErrCodeInvalidRequest     = "ERR_INVALID_REQUEST"
	ErrCodeUnauthorized       = "ERR_UNAUTHORIZED"
	ErrCodeForbidden          = "ERR_FORBIDDEN"
	ErrCodeNotFound           = "ERR_NOT_FOUND"
	ErrCodeConflict           = "ERR_CONFLICT"
	ErrCodeInternalError      = "ERR_INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "ERR_SERVICE_UNAVAILABLE"

	// 认证错误码
	//
	// ErrCodeTokenInvalid covers every token failure (malformed, bad
	// signature, expired) so the response does not leak which check failed.
	ErrCodeInvalidCredentials = "ERR_INVALID_CREDENTIALS"
	ErrCodeTokenInvalid       = "ERR_TOKEN_INVALID"
	ErrCodeInactiveAccount    = "ERR_INACTIVE_ACCOUNT"

	// 授权错误码
	ErrCodeInsufficientRole    = "ERR_INSUFFICIENT_ROLE"
	ErrCodeSelfTargetForbidden = "ERR_SELF_TARGET_FORBIDDEN"

	// 资源错误码
	ErrCodeUserNotFound       = "ERR_USER_NOT_FOUND"
	ErrCodeRoleNotFound       = "ERR_ROLE_NOT_FOUND"
	ErrCodeFileNotFound       = "ERR_FILE_NOT_FOUND"
	ErrCodeDiscussionNotFound = "ERR_DISCUSSION_NOT_FOUND"

	// 业务逻辑错误码
	ErrCodeMissingField = "ERR_MISSING_FIELD"
	ErrCodeEmailExists  = "ERR_EMAIL_EXISTS"
)

// APIError 统一的 API 错误响应结构
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorResponse 返回统一格式的错误响应
func ErrorResponse(c *gin.Context, status int, code string, message string) {
	c.JSON(status, APIError{
		Code:    code,
		Message: message,
	})
}

// ErrorResponseWithDetails 返回带详情的错误响应
func ErrorResponseWithDetails(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, APIError{
		Code:    code,
		Message: message,
		Details: details,
	})
}

// 常用错误响应快捷函数

// BadRequest 400 错误请求
func BadRequest(c *gin.Context, code string, message string) {
	ErrorResponse(c, http.StatusBadRequest, code, message)
}

// Unauthorized 401 未授权
func Unauthorized(c *gin.Context, code string, message string) {
	ErrorResponse(c, http.StatusUnauthorized, code, message)
}

// Forbidden 403 禁止访问
func Forbidden(c *gin.Context, code string, message string) {
	ErrorResponse(c, http.StatusForbidden, code, message)
}

// NotFound 404 资源不存在
func NotFound(c *gin.Context, code string, message string) {
	ErrorResponse(c, http.StatusNotFound, code, message)
}

// Conflict 409 资源冲突
func Conflict(c *gin.Context, code string, message string) {
	ErrorResponse(c, http.StatusConflict, code, message)
}

// InternalError 500 服务器内部错误
func InternalError(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusInternalServerError, ErrCodeInternalError, message)
}

// ServiceUnavailable 503 服务不可用
func ServiceUnavailable(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, message)
}

// MissingField 缺少必填字段
func MissingField(c *gin.Context, field string) {
	ErrorResponseWithDetails(c, http.StatusBadRequest, ErrCodeMissingField, field+" is required", gin.H{"field": field})
}

// InvalidPayload 无效的请求体
func InvalidPayload(c *gin.Context) {
	ErrorResponse(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request payload")
}

// reasonErrorCode 将拒绝原因映射为错误码
func reasonErrorCode(reason string) string {
	switch reason {
	case auth.ReasonInactiveAccount:
		return ErrCodeInactiveAccount
	case auth.ReasonSelfTargetForbidden:
		return ErrCodeSelfTargetForbidden
	default:
		return ErrCodeInsufficientRole
	}
}
