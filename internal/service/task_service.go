package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/events"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/phrazzld/taskflow-api/internal/store"
)

// TaskService coordinates task persistence with pipeline job creation.
// All user-facing operations enforce ownership by the caller's email.
// Version: 1.0
type TaskService interface {
	// CreateTask validates and persists a new task, then requests an
	// asynchronous pipeline run for it.
	CreateTask(ctx context.Context, email, description string) (*domain.Task, error)

	// GetTask retrieves a task owned by the given email.
	// Returns ErrTaskNotFound or ErrForbidden.
	GetTask(ctx context.Context, id int64, email string) (*domain.Task, error)

	// ListTasks retrieves all tasks owned by the given email, newest first.
	ListTasks(ctx context.Context, email string) ([]*domain.Task, error)

	// RetryTask resets a task to pending and requests a fresh pipeline
	// run. Returns ErrTaskInProgress while a run is still active.
	RetryTask(ctx context.Context, id int64, email string) (*domain.Task, error)

	// DeleteTask removes a task owned by the given email.
	DeleteTask(ctx context.Context, id int64, email string) error
}

// taskService is the production TaskService implementation.
type taskService struct {
	taskStore    store.TaskStore
	txManager    store.TransactionManager
	eventEmitter events.EventEmitter
	logger       *slog.Logger
}

// NewTaskService creates a task service with the given dependencies.
func NewTaskService(
	taskStore store.TaskStore,
	txManager store.TransactionManager,
	eventEmitter events.EventEmitter,
	baseLogger *slog.Logger,
) (TaskService, error) {
	if taskStore == nil {
		return nil, errors.New("task store cannot be nil")
	}
	if txManager == nil {
		return nil, errors.New("transaction manager cannot be nil")
	}
	if eventEmitter == nil {
		return nil, errors.New("event emitter cannot be nil")
	}
	if baseLogger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &taskService{
		taskStore:    taskStore,
		txManager:    txManager,
		eventEmitter: eventEmitter,
		logger:       baseLogger.With("component", "task_service"),
	}, nil
}

// CreateTask persists the task inside a transaction and emits the
// planning event only after the commit, so a job can never reference an
// uncommitted row.
func (s *taskService) CreateTask(ctx context.Context, email, description string) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	newTask, err := domain.NewTask(email, description)
	if err != nil {
		return nil, NewTaskServiceError("create task", err)
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		return s.taskStore.WithTx(tx).Create(ctx, newTask)
	})
	if err != nil {
		return nil, NewTaskServiceError("create task", err)
	}

	log.Info("task created",
		"task_id", newTask.ID,
		"email", newTask.Email)

	s.requestPlanning(ctx, log, newTask.ID)
	return newTask, nil
}

// GetTask retrieves a task and enforces ownership.
func (s *taskService) GetTask(ctx context.Context, id int64, email string) (*domain.Task, error) {
	return s.getOwnedTask(ctx, "get task", id, email)
}

// ListTasks retrieves all tasks owned by the given email.
func (s *taskService) ListTasks(ctx context.Context, email string) ([]*domain.Task, error) {
	tasks, err := s.taskStore.ListByEmail(ctx, email)
	if err != nil {
		return nil, NewTaskServiceError("list tasks", err)
	}
	return tasks, nil
}

// RetryTask resets a terminal or stuck-pending task and requests a new
// pipeline run. Retrying while in-progress is rejected: the active run
// will write its own terminal status and a concurrent reset would race it.
func (s *taskService) RetryTask(ctx context.Context, id int64, email string) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	tsk, err := s.getOwnedTask(ctx, "retry task", id, email)
	if err != nil {
		return nil, err
	}

	if tsk.Status == domain.TaskStatusInProgress {
		return nil, NewTaskServiceError("retry task", ErrTaskInProgress)
	}

	tsk.ResetForRetry()

	// Full-row update: the reset touches status, type and result together.
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		return s.taskStore.WithTx(tx).Update(ctx, tsk)
	})
	if err != nil {
		return nil, NewTaskServiceError("retry task", err)
	}

	log.Info("task reset for retry", "task_id", tsk.ID)

	s.requestPlanning(ctx, log, tsk.ID)
	return tsk, nil
}

// DeleteTask removes a task after the ownership check.
func (s *taskService) DeleteTask(ctx context.Context, id int64, email string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if _, err := s.getOwnedTask(ctx, "delete task", id, email); err != nil {
		return err
	}

	if err := s.taskStore.Delete(ctx, id); err != nil {
		if store.IsNotFoundError(err) {
			return NewTaskServiceError("delete task", ErrTaskNotFound)
		}
		return NewTaskServiceError("delete task", err)
	}

	log.Info("task deleted", "task_id", id)
	return nil
}

// getOwnedTask loads a task and verifies ownership.
func (s *taskService) getOwnedTask(ctx context.Context, operation string, id int64, email string) (*domain.Task, error) {
	tsk, err := s.taskStore.GetByID(ctx, id)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, NewTaskServiceError(operation, ErrTaskNotFound)
		}
		return nil, NewTaskServiceError(operation, err)
	}

	if !tsk.IsOwnedBy(email) {
		return nil, NewTaskServiceError(operation, ErrForbidden)
	}

	return tsk, nil
}

// requestPlanning emits a workflow planning event for the task. Emission
// failures are logged rather than returned: the task row is already
// committed as pending and startup recovery requeues pending tasks, so
// the request is delayed, not lost.
func (s *taskService) requestPlanning(ctx context.Context, log *slog.Logger, taskID int64) {
	event, err := events.NewTaskRequestEvent(events.EventTypeWorkflowPlanning, struct {
		TaskID int64 `json:"task_id"`
	}{TaskID: taskID})
	if err != nil {
		log.Error("failed to build planning event",
			"task_id", taskID,
			"error", fmt.Sprintf("%v", err))
		return
	}

	if err := s.eventEmitter.EmitEvent(ctx, event); err != nil {
		log.Error("failed to emit planning event",
			"task_id", taskID,
			"event_id", event.ID,
			"error", fmt.Sprintf("%v", err))
	}
}
