package util

import (
	"net/http"

	"fintrack/internal/apperr"
	applog "fintrack/internal/log"

	"github.com/gin-gonic/gin"
)

// SuccessBody is the envelope for every successful response.
type SuccessBody struct {
	Success bool   `json:"success"`
	Data    any    `json:"data"`
	Message string `json:"message,omitempty"`
}

// ErrorDetail is the error part of the failure envelope.
type ErrorDetail struct {
	Message    string `json:"message"`
	StatusCode int    `json:"status_code"`
	Details    any    `json:"details"`
}

// ErrorBody is the envelope for every failed response.
type ErrorBody struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

// Success writes data wrapped in the success envelope.
func Success(c *gin.Context, status int, data any, message string) {
	c.JSON(status, SuccessBody{
		Success: true,
		Data:    data,
		Message: message,
	})
}

// OK is Success with 200.
func OK(c *gin.Context, data any, message string) {
	Success(c, http.StatusOK, data, message)
}

// Error normalizes err into the failure envelope and aborts the chain.
// Server-side failures are logged with their cause and reported to the
// client with a generic message only.
func Error(c *gin.Context, err error) {
	e := apperr.As(err)
	status := e.StatusCode()

	logger := applog.FromContext(c.Request.Context())
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(c.Request.Context(), "request failed",
			applog.FieldMethod, c.Request.Method,
			applog.FieldPath, c.Request.URL.Path,
			applog.FieldStatusCode, status,
			applog.FieldError, err.Error(),
		)
	} else {
		logger.DebugContext(c.Request.Context(), "request rejected",
			applog.FieldPath, c.Request.URL.Path,
			applog.FieldStatusCode, status,
			applog.FieldError, err.Error(),
		)
	}

	var details any
	if len(e.Details) > 0 {
		details = e.Details
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, ErrorBody{
		Success: false,
		Error: ErrorDetail{
			Message:    e.PublicMessage(),
			StatusCode: status,
			Details:    details,
		},
	})
}
