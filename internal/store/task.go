package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/taskflow-api/internal/domain"
)

// TaskStore defines the interface for task data persistence.
// Version: 1.0
type TaskStore interface {
	// Create saves a new task to the store and assigns its ID.
	// It handles domain validation internally.
	// Returns validation errors from the domain Task if data is invalid.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its unique ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Task, error)

	// ListByEmail retrieves all tasks owned by the given email,
	// newest first. Returns an empty slice if none exist.
	ListByEmail(ctx context.Context, email string) ([]*domain.Task, error)

	// Update saves changes to an existing task.
	// Returns ErrTaskNotFound if the task does not exist.
	// Returns validation errors if the task data is invalid.
	Update(ctx context.Context, task *domain.Task) error

	// UpdateStatus updates the status and type tag of an existing task,
	// clearing any stored result when the status is non-terminal.
	// Returns ErrTaskNotFound if the task does not exist.
	UpdateStatus(ctx context.Context, id int64, status domain.TaskStatus, taskType string) error

	// SetOutcome records a terminal status together with its result
	// payload and type tag in a single write.
	// Returns ErrTaskNotFound if the task does not exist.
	SetOutcome(
		ctx context.Context,
		id int64,
		status domain.TaskStatus,
		taskType string,
		result string,
	) error

	// Delete removes a task from the store.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id int64) error

	// FindByStatus retrieves all tasks with the specified status,
	// oldest first. Used by startup recovery to requeue unfinished work.
	FindByStatus(ctx context.Context, status domain.TaskStatus) ([]*domain.Task, error)

	// WithTx returns a new TaskStore instance that uses the provided transaction.
	// This allows for multiple operations to be executed within a single transaction.
	// The transaction should be created and managed by the caller (typically a service).
	WithTx(tx *sql.Tx) TaskStore
}
