package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIError is the standardized error payload: an application error code plus
// one or more human-readable messages. Internal details never leak here.
type APIError struct {
	StatusCode int      `json:"-"`
	Code       string   `json:"code,omitempty"`
	Messages   []string `json:"error_msg"`
}

// NewAPIError creates a new APIError instance.
func NewAPIError(statusCode int, code string, messages ...string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Code:       code,
		Messages:   messages,
	}
}

// RespondWithError sends a standardized JSON error response and aborts the request.
func RespondWithError(c *gin.Context, err *APIError) {
	c.JSON(err.StatusCode, gin.H{
		"error_code": err.StatusCode,
		"code":       err.Code,
		"error_msg":  err.Messages,
	})
	c.Abort()
}

// RespondWithData sends a standardized success envelope.
func RespondWithData(c *gin.Context, statusCode int, data interface{}, msg string) {
	c.JSON(statusCode, gin.H{
		"data": data,
		"msg":  msg,
	})
}

// Application error codes.
const (
	ErrCodeBadRequest          = "BAD_REQUEST"
	ErrCodeUnauthorized        = "UNAUTHORIZED"
	ErrCodeForbidden           = "FORBIDDEN"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeStateConflict       = "STATE_CONFLICT"
	ErrCodeInternalServerError = "INTERNAL_SERVER_ERROR"
	ErrCodeValidationFailed    = "VALIDATION_FAILED"
)

// RespondValidationFailed returns a standard validation error.
func RespondValidationFailed(c *gin.Context, details string) {
	RespondWithError(c, NewAPIError(http.StatusBadRequest, ErrCodeValidationFailed, "Input validation failed", details))
}
