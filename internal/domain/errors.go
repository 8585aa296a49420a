// Package domain defines the core business entities and errors.
package domain

import (
	"errors"
	"fmt"
)

// ErrValidation is the parent of all entity validation errors, so callers
// can match the whole class with errors.Is.
var ErrValidation = errors.New("validation failed")

// Common domain errors used across the application.
var (
	// ErrEmptyTaskEmail is returned when a task has no owning email.
	ErrEmptyTaskEmail = fmt.Errorf("%w: task email cannot be empty", ErrValidation)

	// ErrDescriptionTooShort is returned when a task description is
	// shorter than MinDescriptionLength after trimming.
	ErrDescriptionTooShort = fmt.Errorf("%w: task description must be at least 3 characters", ErrValidation)

	// ErrInvalidTaskStatus is returned when a task status is not valid.
	ErrInvalidTaskStatus = fmt.Errorf("%w: invalid task status", ErrValidation)

	// ErrResultStatusMismatch is returned when a result payload is present
	// on a non-terminal task, or missing on a terminal one.
	ErrResultStatusMismatch = fmt.Errorf("%w: result must be set exactly on terminal statuses", ErrValidation)
)
