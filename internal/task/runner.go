package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/taskflow-api/internal/domain"
)

// RecoveryStore is the slice of the task store the runner needs for
// startup recovery. Satisfied by store.TaskStore.
// Version: 1.0
type RecoveryStore interface {
	// FindByStatus retrieves all tasks with the specified status, oldest first.
	FindByStatus(ctx context.Context, status domain.TaskStatus) ([]*domain.Task, error)

	// UpdateStatus updates the status and type tag of an existing task.
	UpdateStatus(ctx context.Context, id int64, status domain.TaskStatus, taskType string) error
}

// TaskRunner accepts pipeline jobs for asynchronous execution.
// Version: 1.0
type TaskRunner interface {
	// Submit enqueues a job for background processing.
	Submit(ctx context.Context, task Task) error
}

// RunnerConfig holds configuration for the task runner
type RunnerConfig struct {
	// QueueSize is the buffer size of the in-memory job queue
	QueueSize int

	// WorkerCount is the number of concurrent workers
	WorkerCount int
}

// Runner owns the job queue and worker pool, and recovers unfinished
// tasks from the store on startup so that a restart never strands a
// submitted task in a non-terminal state.
type Runner struct {
	queue   *TaskQueue
	pool    *WorkerPool
	store   RecoveryStore
	factory TaskFactory
	logger  *slog.Logger
}

// NewRunner creates a task runner with its own queue and worker pool.
func NewRunner(config RunnerConfig, store RecoveryStore, factory TaskFactory, logger *slog.Logger) (*Runner, error) {
	if store == nil {
		return nil, errors.New("recovery store cannot be nil")
	}
	if factory == nil {
		return nil, errors.New("task factory cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	queueSize := config.QueueSize
	if queueSize <= 0 {
		queueSize = 100
	}

	poolConfig := DefaultWorkerPoolConfig()
	if config.WorkerCount > 0 {
		poolConfig.WorkerCount = config.WorkerCount
	}

	queue := NewTaskQueue(queueSize, logger)
	pool := NewWorkerPool(queue, poolConfig, logger)

	return &Runner{
		queue:   queue,
		pool:    pool,
		store:   store,
		factory: factory,
		logger:  logger.With("component", "task_runner"),
	}, nil
}

// Start recovers unfinished tasks and then launches the worker pool.
// Recovery failures abort startup; running with silently dropped tasks
// is worse than not starting.
func (r *Runner) Start(ctx context.Context) error {
	if err := r.recover(ctx); err != nil {
		return fmt.Errorf("task recovery failed: %w", err)
	}

	r.pool.Start()
	return nil
}

// Stop closes the queue and drains the worker pool.
func (r *Runner) Stop() {
	r.queue.Close()
	r.pool.Stop()
}

// Submit enqueues a job for background processing.
func (r *Runner) Submit(_ context.Context, task Task) error {
	return r.queue.Enqueue(task)
}

// recover requeues tasks that never reached a terminal state.
// Pending tasks are requeued as-is. Tasks stuck in-progress were
// orphaned by a previous shutdown mid-run; they are reset to pending
// before requeueing so the pipeline starts over cleanly.
func (r *Runner) recover(ctx context.Context) error {
	pending, err := r.store.FindByStatus(ctx, domain.TaskStatusPending)
	if err != nil {
		return fmt.Errorf("failed to find pending tasks: %w", err)
	}

	orphaned, err := r.store.FindByStatus(ctx, domain.TaskStatusInProgress)
	if err != nil {
		return fmt.Errorf("failed to find in-progress tasks: %w", err)
	}

	for _, tsk := range orphaned {
		if err := r.store.UpdateStatus(ctx, tsk.ID, domain.TaskStatusPending, tsk.Type); err != nil {
			return fmt.Errorf("failed to reset orphaned task %d: %w", tsk.ID, err)
		}
		r.logger.Info("reset orphaned in-progress task", "task_id", tsk.ID)
	}

	recovered := 0
	for _, tsk := range append(pending, orphaned...) {
		job, err := r.factory.CreateTask(tsk.ID)
		if err != nil {
			return fmt.Errorf("failed to build recovery job for task %d: %w", tsk.ID, err)
		}
		if err := r.queue.Enqueue(job); err != nil {
			return fmt.Errorf("failed to requeue task %d: %w", tsk.ID, err)
		}
		recovered++
	}

	if recovered > 0 {
		r.logger.Info("recovered unfinished tasks",
			"pending", len(pending),
			"orphaned", len(orphaned))
	}

	return nil
}
