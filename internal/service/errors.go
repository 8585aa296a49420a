package service

import (
	"errors"
	"fmt"
)

// Common task service errors. Handlers map these onto HTTP statuses.
var (
	// ErrTaskNotFound indicates the requested task does not exist.
	ErrTaskNotFound = errors.New("task not found")

	// ErrForbidden indicates the task exists but belongs to another user.
	ErrForbidden = errors.New("task belongs to another user")

	// ErrTaskInProgress indicates a retry was requested while a pipeline
	// run is still active for the task.
	ErrTaskInProgress = errors.New("task is currently being processed")
)

// TaskServiceError wraps an underlying error with the operation that
// produced it, keeping the cause inspectable with errors.Is/As.
type TaskServiceError struct {
	Operation string
	Err       error
}

// Error implements the error interface
func (e *TaskServiceError) Error() string {
	return fmt.Sprintf("task service: %s: %v", e.Operation, e.Err)
}

// Unwrap returns the wrapped error
func (e *TaskServiceError) Unwrap() error {
	return e.Err
}

// NewTaskServiceError creates a new TaskServiceError
func NewTaskServiceError(operation string, err error) *TaskServiceError {
	return &TaskServiceError{Operation: operation, Err: err}
}
