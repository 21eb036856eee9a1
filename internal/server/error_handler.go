// file: internal/server/error_handler.go
// version: 2.0.0
// guid: 5d6e7f8a-9b0c-1d2e-3f4a-5b6c7d8e9f0a

package server

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jdfalk/voicematch/internal/bank"
	"github.com/jdfalk/voicematch/internal/matcher"
	"github.com/jdfalk/voicematch/internal/normalize"
	"github.com/jdfalk/voicematch/internal/server/middleware"
)

// ErrorResponse provides a consistent error response format
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	Status    int    `json:"status"`
	RequestID string `json:"request_id,omitempty"`
}

// RespondWithError sends a standardized error response and logs the error
func RespondWithError(c *gin.Context, statusCode int, message string, code string) {
	logErrorWithContext(c, statusCode, message)

	c.JSON(statusCode, ErrorResponse{
		Error:     message,
		Code:      code,
		Status:    statusCode,
		RequestID: middleware.GetRequestID(c),
	})
}

// RespondWithBadRequest sends a 400 Bad Request error response
func RespondWithBadRequest(c *gin.Context, message string) {
	RespondWithError(c, http.StatusBadRequest, message, "BAD_REQUEST")
}

// RespondWithValidationError sends a 400 error for validation failures
func RespondWithValidationError(c *gin.Context, field string, reason string) {
	message := "validation error: " + field
	if reason != "" {
		message = message + " (" + reason + ")"
	}
	RespondWithError(c, http.StatusBadRequest, message, "VALIDATION_ERROR")
}

// RespondWithNotFound sends a 404 Not Found error response
func RespondWithNotFound(c *gin.Context, resourceType string, id string) {
	message := resourceType + " not found"
	if id != "" {
		message = message + ": " + id
	}
	RespondWithError(c, http.StatusNotFound, message, "NOT_FOUND")
}

// RespondWithUnprocessable sends a 422 for well formed requests that cannot
// be decided.
func RespondWithUnprocessable(c *gin.Context, message string, code string) {
	RespondWithError(c, http.StatusUnprocessableEntity, message, code)
}

// RespondWithInternalError sends a 500 Internal Server Error response
func RespondWithInternalError(c *gin.Context, message string) {
	RespondWithError(c, http.StatusInternalServerError, message, "INTERNAL_ERROR")
}

// RespondWithOK sends a 200 OK response
func RespondWithOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// RespondWithMatchError maps matcher, bank and validation errors onto HTTP
// responses and returns the status written.
func RespondWithMatchError(c *gin.Context, err error) int {
	var ve ValidationError
	switch {
	case errors.As(err, &ve):
		RespondWithError(c, http.StatusBadRequest, ve.Error(), ve.Code)
	case errors.Is(err, matcher.ErrEmptyCandidateSet):
		RespondWithUnprocessable(c, "no candidates to match against", "EMPTY_CANDIDATE_SET")
	case errors.Is(err, matcher.ErrNoTranscript):
		RespondWithError(c, http.StatusBadRequest, err.Error(), "TRANSCRIPT_REQUIRED")
	case errors.Is(err, normalize.ErrUnsupportedLanguage):
		RespondWithError(c, http.StatusBadRequest, err.Error(), "UNSUPPORTED_LANGUAGE")
	case errors.Is(err, ErrOptionNotFound):
		RespondWithUnprocessable(c, err.Error(), "OPTION_NOT_FOUND")
	case errors.Is(err, bank.ErrQuestionNotFound):
		RespondWithError(c, http.StatusNotFound, err.Error(), "NOT_FOUND")
	default:
		RespondWithInternalError(c, err.Error())
	}
	return c.Writer.Status()
}

// logErrorWithContext logs an error with request context for debugging
func logErrorWithContext(c *gin.Context, statusCode int, message string) {
	method := c.Request.Method
	path := c.Request.URL.Path
	clientIP := c.ClientIP()

	logLevel := "WARN"
	if statusCode >= 500 {
		logLevel = "ERROR"
	}

	log.Printf("[%s] %s %s %d - %s (from %s) [request-id: %s]",
		logLevel, method, path, statusCode, message, clientIP, middleware.GetRequestID(c))
}

// HandleBindError handles JSON binding errors with a consistent response
func HandleBindError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		RespondWithError(c, http.StatusRequestEntityTooLarge, "request body too large", "BODY_TOO_LARGE")
		return true
	}

	errMsg := err.Error()
	if strings.Contains(errMsg, "required") || strings.Contains(errMsg, "binding") {
		RespondWithValidationError(c, "request body", errMsg)
	} else {
		RespondWithBadRequest(c, "invalid request: "+errMsg)
	}
	return true
}

// ParseQueryInt parses an integer query parameter with a default value
func ParseQueryInt(c *gin.Context, key string, defaultValue int) int {
	valueStr := c.DefaultQuery(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// ParseQueryBool parses a boolean query parameter with a default value
func ParseQueryBool(c *gin.Context, key string, defaultValue bool) bool {
	valueStr := c.DefaultQuery(key, "")
	if valueStr == "" {
		return defaultValue
	}
	return strings.ToLower(valueStr) == "true" || valueStr == "1"
}
