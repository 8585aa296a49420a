package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/phrazzld/taskflow-api/internal/store"
)

// PostgreSQL error codes
const pgCheckViolationCode = "23514"

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the TaskStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// Create implements store.TaskStore.Create
// It saves a new task to the database and assigns the generated ID.
// Returns validation errors from the domain Task if data is invalid.
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()))
		return err
	}

	query := `
		INSERT INTO tasks (email, description, status, result, type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := s.db.QueryRowContext(
		ctx,
		query,
		task.Email,
		task.Description,
		task.Status,
		task.Result,
		task.Type,
		task.CreatedAt,
		task.UpdatedAt,
	).Scan(&task.ID)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgCheckViolationCode {
			log.Warn("check constraint violation during task creation",
				slog.String("error", err.Error()),
				slog.String("email", task.Email))
			return fmt.Errorf("%w: %s", store.ErrInvalidEntity, pgErr.ConstraintName)
		}

		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("email", task.Email))
		return err
	}

	log.Info("task created successfully",
		slog.Int64("task_id", task.ID),
		slog.String("email", task.Email),
		slog.String("status", string(task.Status)))
	return nil
}

// GetByID implements store.TaskStore.GetByID
// It retrieves a task by its unique ID.
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, email, description, status, result, type, created_at, updated_at
		FROM tasks
		WHERE id = $1
	`

	task, err := scanTask(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found", slog.Int64("task_id", id))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task by ID",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return nil, err
	}

	return task, nil
}

// ListByEmail implements store.TaskStore.ListByEmail
// It retrieves all tasks owned by the given email, newest first.
func (s *PostgresTaskStore) ListByEmail(ctx context.Context, email string) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, email, description, status, result, type, created_at, updated_at
		FROM tasks
		WHERE email = $1
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, email)
	if err != nil {
		log.Error("failed to list tasks by email",
			slog.String("error", err.Error()),
			slog.String("email", email))
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return collectTasks(rows)
}

// Update implements store.TaskStore.Update
// It saves changes to an existing task.
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during update",
			slog.String("error", err.Error()),
			slog.Int64("task_id", task.ID))
		return err
	}

	task.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE tasks
		SET description = $1, status = $2, result = $3, type = $4, updated_at = $5
		WHERE id = $6
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		task.Description,
		task.Status,
		task.Result,
		task.Type,
		task.UpdatedAt,
		task.ID,
	)
	if err != nil {
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.Int64("task_id", task.ID))
		return err
	}

	return s.requireRowAffected(ctx, result, task.ID, "update")
}

// UpdateStatus implements store.TaskStore.UpdateStatus
// It updates the status and type tag of an existing task, clearing any
// stored result (non-terminal statuses must not carry a result).
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) UpdateStatus(
	ctx context.Context,
	id int64,
	status domain.TaskStatus,
	taskType string,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Debug("updating task status",
		slog.Int64("task_id", id),
		slog.String("status", string(status)))

	query := `
		UPDATE tasks
		SET status = $1, type = $2, result = NULL, updated_at = $3
		WHERE id = $4
	`

	result, err := s.db.ExecContext(ctx, query, status, taskType, time.Now().UTC(), id)
	if err != nil {
		log.Error("failed to update task status",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id),
			slog.String("status", string(status)))
		return err
	}

	if err := s.requireRowAffected(ctx, result, id, "update_status"); err != nil {
		return err
	}

	log.Info("task status updated successfully",
		slog.Int64("task_id", id),
		slog.String("status", string(status)))
	return nil
}

// SetOutcome implements store.TaskStore.SetOutcome
// It records a terminal status together with its result payload and type
// tag in a single write.
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) SetOutcome(
	ctx context.Context,
	id int64,
	status domain.TaskStatus,
	taskType string,
	result string,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE tasks
		SET status = $1, type = $2, result = $3, updated_at = $4
		WHERE id = $5
	`

	res, err := s.db.ExecContext(ctx, query, status, taskType, result, time.Now().UTC(), id)
	if err != nil {
		log.Error("failed to record task outcome",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id),
			slog.String("status", string(status)))
		return err
	}

	if err := s.requireRowAffected(ctx, res, id, "set_outcome"); err != nil {
		return err
	}

	log.Info("task outcome recorded",
		slog.Int64("task_id", id),
		slog.String("status", string(status)),
		slog.String("type", taskType))
	return nil
}

// Delete implements store.TaskStore.Delete
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) Delete(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return err
	}

	if err := s.requireRowAffected(ctx, result, id, "delete"); err != nil {
		return err
	}

	log.Info("task deleted", slog.Int64("task_id", id))
	return nil
}

// FindByStatus implements store.TaskStore.FindByStatus
// It retrieves all tasks with the specified status, oldest first.
func (s *PostgresTaskStore) FindByStatus(
	ctx context.Context,
	status domain.TaskStatus,
) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, email, description, status, result, type, created_at, updated_at
		FROM tasks
		WHERE status = $1
		ORDER BY created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, status)
	if err != nil {
		log.Error("failed to find tasks by status",
			slog.String("error", err.Error()),
			slog.String("status", string(status)))
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return collectTasks(rows)
}

// WithTx implements store.TaskStore.WithTx
// It returns a new PostgresTaskStore that uses the provided transaction.
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{
		db:     tx,
		logger: s.logger,
	}
}

// requireRowAffected converts a zero-rows-affected update into
// store.ErrTaskNotFound so callers can distinguish a missing id.
func (s *PostgresTaskStore) requireRowAffected(
	ctx context.Context,
	result sql.Result,
	id int64,
	operation string,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id),
			slog.String("operation", operation))
		return err
	}

	if rowsAffected == 0 {
		log.Debug("task not found",
			slog.Int64("task_id", id),
			slog.String("operation", operation))
		return store.ErrTaskNotFound
	}

	return nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for scanTask.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanTask scans a single task row in column order.
func scanTask(row rowScanner) (*domain.Task, error) {
	var task domain.Task
	var status string
	var result sql.NullString

	err := row.Scan(
		&task.ID,
		&task.Email,
		&task.Description,
		&status,
		&result,
		&task.Type,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	task.Status = domain.TaskStatus(status)
	if result.Valid {
		task.Result = &result.String
	}

	return &task, nil
}

// collectTasks drains a result set into a slice of tasks.
func collectTasks(rows *sql.Rows) ([]*domain.Task, error) {
	tasks := make([]*domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}
