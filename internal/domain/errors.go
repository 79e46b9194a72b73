package domain

import "fmt"

// ErrorCode represents a domain error code.
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

// DomainError represents an error in the domain layer with context.
type DomainError struct {
	Code    ErrorCode
	Message string
	Context map[string]interface{}
	cause   error
}

func (e *DomainError) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause of an internal error.
func (e *DomainError) Unwrap() error {
	return e.cause
}

// IsCode reports whether err is a DomainError with the given code.
func IsCode(err error, code ErrorCode) bool {
	de, ok := AsDomainError(err)
	return ok && de.Code == code
}

// AsDomainError unwraps err to a *DomainError.
func AsDomainError(err error) (*DomainError, bool) {
	for err != nil {
		if de, ok := err.(*DomainError); ok {
			return de, true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return nil, false
		}
		err = u.Unwrap()
	}
	return nil, false
}

// NewTaskNotFoundError creates a task not found error.
func NewTaskNotFoundError(taskID string) *DomainError {
	return &DomainError{
		Code:    ErrCodeTaskNotFound,
		Message: fmt.Sprintf("Task %s not found", taskID),
		Context: map[string]interface{}{"id": taskID},
	}
}

// NewDependencyNotFoundError creates a dependency not found error.
func NewDependencyNotFoundError(id string) *DomainError {
	return &DomainError{
		Code:    ErrCodeDependencyNotFound,
		Message: fmt.Sprintf("Dependency %s not found", id),
		Context: map[string]interface{}{"id": id},
	}
}

// NewNotificationNotFoundError creates a notification not found error.
func NewNotificationNotFoundError(id string) *DomainError {
	return &DomainError{
		Code:    ErrCodeNotificationNotFound,
		Message: fmt.Sprintf("Notification %s not found", id),
		Context: map[string]interface{}{"id": id},
	}
}

// NewBoardNotFoundError creates a board not found error.
func NewBoardNotFoundError(id string) *DomainError {
	return &DomainError{
		Code:    ErrCodeBoardNotFound,
		Message: fmt.Sprintf("Board %s not found", id),
		Context: map[string]interface{}{"id": id},
	}
}

// NewValidationError creates a validation error.
func NewValidationError(details []string) *DomainError {
	return &DomainError{
		Code:    ErrCodeValidationFailed,
		Message: "Validation failed",
		Context: map[string]interface{}{"details": details},
	}
}

// NewSelfDependencyError rejects an edge from a task to itself.
func NewSelfDependencyError(taskID string) *DomainError {
	return &DomainError{
		Code:    ErrCodeValidationFailed,
		Message: "A task cannot depend on itself",
		Context: map[string]interface{}{"task_id": taskID},
	}
}

// NewInvalidDependencyTypeError rejects an unknown dependency type code.
func NewInvalidDependencyTypeError(t DependencyType) *DomainError {
	return &DomainError{
		Code:    ErrCodeValidationFailed,
		Message: fmt.Sprintf("Invalid dependency type %q: must be one of FS, SS, FF, SF", string(t)),
		Context: map[string]interface{}{"dependency_type": string(t)},
	}
}

// NewDuplicateDependencyError rejects a second active edge with the same triple.
func NewDuplicateDependencyError(existingID string) *DomainError {
	return &DomainError{
		Code:    ErrCodeValidationFailed,
		Message: "This dependency already exists",
		Context: map[string]interface{}{"existing_id": existingID},
	}
}

// NewCycleDetectedError creates a cycle detected error. The path starts at the
// proposed predecessor and walks existing edges back to it.
func NewCycleDetectedError(path []string) *DomainError {
	return &DomainError{
		Code:    ErrCodeCycleDetected,
		Message: "Circular dependency detected: adding this dependency would create a cycle",
		Context: map[string]interface{}{"path": path},
	}
}

// NewUnauthorizedError creates an authentication error.
func NewUnauthorizedError() *DomainError {
	return &DomainError{
		Code:    ErrCodeUnauthorized,
		Message: "Authentication is required",
		Context: map[string]interface{}{},
	}
}

// NewInternalError creates an internal error.
func NewInternalError(err error) *DomainError {
	return &DomainError{
		Code:    ErrCodeInternalError,
		Message: "An internal error occurred",
		Context: map[string]interface{}{},
		cause:   err,
	}
}
