package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/taskflow-api/internal/events"
)

// workflowPlanningEventPayload mirrors the payload the service layer
// attaches to a workflow planning event.
type workflowPlanningEventPayload struct {
	TaskID int64 `json:"task_id"`
}

// TaskRequestEventHandler reacts to task request events by building the
// matching pipeline job and handing it to the runner.
type TaskRequestEventHandler struct {
	factory TaskFactory
	runner  TaskRunner
	logger  *slog.Logger
}

// NewTaskRequestEventHandler creates an event handler that submits
// planning jobs to the given runner.
func NewTaskRequestEventHandler(factory TaskFactory, runner TaskRunner, logger *slog.Logger) (*TaskRequestEventHandler, error) {
	if factory == nil {
		return nil, errors.New("task factory cannot be nil")
	}
	if runner == nil {
		return nil, errors.New("task runner cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &TaskRequestEventHandler{
		factory: factory,
		runner:  runner,
		logger:  logger.With("component", "task_request_event_handler"),
	}, nil
}

// HandleEvent builds and submits a pipeline job for workflow planning
// events. Events of other types are ignored.
func (h *TaskRequestEventHandler) HandleEvent(ctx context.Context, event *events.TaskRequestEvent) error {
	if event == nil {
		return errors.New("event cannot be nil")
	}

	if event.Type != events.EventTypeWorkflowPlanning {
		h.logger.Debug("ignoring event of unhandled type",
			"event_id", event.ID,
			"event_type", event.Type)
		return nil
	}

	var payload workflowPlanningEventPayload
	if err := event.UnmarshalPayload(&payload); err != nil {
		return fmt.Errorf("failed to unmarshal event payload: %w", err)
	}

	job, err := h.factory.CreateTask(payload.TaskID)
	if err != nil {
		return fmt.Errorf("failed to create planning job for task %d: %w", payload.TaskID, err)
	}

	if err := h.runner.Submit(ctx, job); err != nil {
		return fmt.Errorf("failed to submit planning job for task %d: %w", payload.TaskID, err)
	}

	h.logger.Info("planning job submitted",
		"event_id", event.ID,
		"task_id", payload.TaskID,
		"job_id", job.ID())
	return nil
}
