// Package httputil provides HTTP utility functions for request and response handling.
package httputil

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/aicoder/backend/internal/errors"
)

// ErrorResponse represents a structured error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}

var statusByKind = map[error]int{
	apperrors.ErrNotFound:     http.StatusNotFound,
	apperrors.ErrConflict:     http.StatusConflict,
	apperrors.ErrInvalidInput: http.StatusUnprocessableEntity,
	apperrors.ErrUnauthorized: http.StatusUnauthorized,
	apperrors.ErrForbidden:    http.StatusForbidden,
	apperrors.ErrInternal:     http.StatusInternalServerError,
}

var codeByKind = map[error]string{
	apperrors.ErrNotFound:     "not_found",
	apperrors.ErrConflict:     "conflict",
	apperrors.ErrInvalidInput: "invalid_input",
	apperrors.ErrUnauthorized: "unauthorized",
	apperrors.ErrForbidden:    "forbidden",
	apperrors.ErrInternal:     "internal_error",
}

// Internal details stay in the log; invalid input echoes the error text.
var messageByKind = map[error]string{
	apperrors.ErrNotFound:     "The requested resource was not found",
	apperrors.ErrConflict:     "A conflict occurred with existing data",
	apperrors.ErrUnauthorized: "Authentication is required",
	apperrors.ErrForbidden:    "You don't have permission to access this resource",
	apperrors.ErrInternal:     "An internal error occurred",
}

// HandleErrorGin maps domain errors to HTTP status codes and aborts with a JSON response.
func HandleErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if err == nil {
		return
	}

	kind := apperrors.Kind(err)
	statusCode := statusByKind[kind]

	errorResponse := ErrorResponse{Error: codeByKind[kind], Message: messageByKind[kind]}
	if kind == apperrors.ErrInvalidInput {
		errorResponse.Message = err.Error()
	}

	if logger != nil {
		logger.Error("request failed",
			slog.Int("status_code", statusCode),
			slog.String("error_code", errorResponse.Error),
			slog.Any("error", err),
		)
	}

	c.AbortWithStatusJSON(statusCode, errorResponse)
}

// HandleBadRequestGin writes a 400 Bad Request response for malformed JSON or parameters using Gin.
func HandleBadRequestGin(c *gin.Context, err error, logger *slog.Logger) {
	if logger != nil {
		logger.Warn("bad request", slog.Any("error", err))
	}

	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
		Error:   "bad_request",
		Message: err.Error(),
	})
}
