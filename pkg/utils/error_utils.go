package utils

import (
	"github.com/gin-gonic/gin"
)

// APIError is the error body returned by the sync API.
// Clients only rely on the "error" string; the code is informational.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code,omitempty"`
	Message    string `json:"error"`
}

// NewAPIError creates a new APIError instance
func NewAPIError(statusCode int, code string, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Code:       code,
		Message:    message,
	}
}

func (e *APIError) Error() string {
	return e.Message
}

// RespondWithError sends a standardized JSON error response
func RespondWithError(c *gin.Context, err *APIError) {
	c.AbortWithStatusJSON(err.StatusCode, err)
}

const (
	ErrCodeBadRequest          = "BAD_REQUEST"
	ErrCodeUnauthorized        = "UNAUTHORIZED"
	ErrCodeUnavailable         = "UNAVAILABLE"
	ErrCodeInternalServerError = "INTERNAL_SERVER_ERROR"
	ErrCodeValidationFailed    = "VALIDATION_FAILED"
)
