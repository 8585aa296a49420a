package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/store"
)

// TaskPipeline exposes the status writes the planning pipeline performs,
// bridging the task package's consumer interface onto the store. Unlike
// TaskService it skips ownership checks; pipeline jobs act on tasks the
// service layer already admitted.
type TaskPipeline struct {
	taskStore store.TaskStore
	logger    *slog.Logger
}

// NewTaskPipeline creates the pipeline-facing task accessor.
func NewTaskPipeline(taskStore store.TaskStore, baseLogger *slog.Logger) (*TaskPipeline, error) {
	if taskStore == nil {
		return nil, errors.New("task store cannot be nil")
	}
	if baseLogger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &TaskPipeline{
		taskStore: taskStore,
		logger:    baseLogger.With("component", "task_pipeline"),
	}, nil
}

// GetTask retrieves a task by ID without ownership checks.
func (p *TaskPipeline) GetTask(ctx context.Context, id int64) (*domain.Task, error) {
	tsk, err := p.taskStore.GetByID(ctx, id)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, NewTaskServiceError("pipeline get task", ErrTaskNotFound)
		}
		return nil, NewTaskServiceError("pipeline get task", err)
	}
	return tsk, nil
}

// MarkInProgress transitions the task into the in-progress state,
// clearing any result left over from a previous run.
func (p *TaskPipeline) MarkInProgress(ctx context.Context, id int64) error {
	err := p.taskStore.UpdateStatus(ctx, id, domain.TaskStatusInProgress, domain.TaskTypeGeminiProcessing)
	if err != nil {
		return NewTaskServiceError("mark in progress", err)
	}

	p.logger.Info("task marked in progress", "task_id", id)
	return nil
}

// RecordOutcome writes a terminal status together with its result payload.
func (p *TaskPipeline) RecordOutcome(
	ctx context.Context,
	id int64,
	status domain.TaskStatus,
	taskType string,
	result *domain.TaskResult,
) error {
	if result == nil {
		return NewTaskServiceError("record outcome", errors.New("result cannot be nil"))
	}

	encoded, err := result.Encode()
	if err != nil {
		return NewTaskServiceError("record outcome", err)
	}

	if err := p.taskStore.SetOutcome(ctx, id, status, taskType, encoded); err != nil {
		return NewTaskServiceError("record outcome", err)
	}

	p.logger.Info("task outcome recorded",
		"task_id", id,
		"status", status,
		"task_type", taskType)
	return nil
}
