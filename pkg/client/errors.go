package client

import (
	"errors"
	"strings"
)

// Sentinel errors for connection-related issues.
var (
	// ErrServerNotRunning indicates the server is not reachable.
	ErrServerNotRunning = errors.New("server is not running or unreachable")
	// ErrServerUnhealthy indicates the health check failed.
	ErrServerUnhealthy = errors.New("server health check failed")
)

// ErrorCode represents a domain error code from the API.
type ErrorCode string

const (
	ErrCodeTaskNotFound         ErrorCode = "TASK_NOT_FOUND"
	ErrCodeDependencyNotFound   ErrorCode = "DEPENDENCY_NOT_FOUND"
	ErrCodeNotificationNotFound ErrorCode = "NOTIFICATION_NOT_FOUND"
	ErrCodeBoardNotFound        ErrorCode = "BOARD_NOT_FOUND"
	ErrCodeValidationFailed     ErrorCode = "VALIDATION_FAILED"
	ErrCodeCycleDetected        ErrorCode = "CYCLE_DETECTED"
	ErrCodeUnauthorized         ErrorCode = "UNAUTHORIZED"
	ErrCodeInternalError        ErrorCode = "INTERNAL_ERROR"
)

// Error represents an error response from the API.
type Error struct {
	StatusCode int
	Code       ErrorCode
	Message    string
	Context    map[string]interface{}
}

func (e *Error) Error() string {
	if details := e.Details(); len(details) > 0 {
		return e.Message + ": " + strings.Join(details, "; ")
	}
	return e.Message
}

// Details returns the validation messages of a VALIDATION_FAILED error.
func (e *Error) Details() []string {
	return extractStringSlice(e.Context, "details")
}

// CyclePath returns the cycle of a CYCLE_DETECTED error.
func (e *Error) CyclePath() []string {
	return extractStringSlice(e.Context, "path")
}

// apiErrorResponse wraps the error in the API response format.
type apiErrorResponse struct {
	Error apiError `json:"error"`
}

// apiError is the JSON structure for an API error.
type apiError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// IsTaskNotFound returns true if the error indicates a task was not found.
func IsTaskNotFound(err error) bool {
	return hasErrorCode(err, ErrCodeTaskNotFound)
}

// IsDependencyNotFound returns true if the error indicates a dependency was not found.
func IsDependencyNotFound(err error) bool {
	return hasErrorCode(err, ErrCodeDependencyNotFound)
}

// IsValidationFailed returns true if the error indicates validation failed.
func IsValidationFailed(err error) bool {
	return hasErrorCode(err, ErrCodeValidationFailed)
}

// IsCycleDetected returns true if the error indicates a dependency cycle was detected.
func IsCycleDetected(err error) bool {
	return hasErrorCode(err, ErrCodeCycleDetected)
}

// IsUnauthorized returns true if the token was missing or rejected.
func IsUnauthorized(err error) bool {
	return hasErrorCode(err, ErrCodeUnauthorized)
}

// IsServerNotRunning returns true if the error indicates the server is not running.
func IsServerNotRunning(err error) bool {
	return errors.Is(err, ErrServerNotRunning)
}

func hasErrorCode(err error, code ErrorCode) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == code
	}
	return false
}
