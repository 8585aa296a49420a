package task

import (
	"errors"
	"log/slog"
)

// TaskFactory builds pipeline jobs from persisted task IDs.
// Version: 1.0
type TaskFactory interface {
	// CreateTask constructs a ready-to-run job for the given task ID.
	CreateTask(taskID int64) (Task, error)
}

// WorkflowPlanningTaskFactory creates WorkflowPlanningTask instances
// with their pipeline dependencies pre-wired.
type WorkflowPlanningTaskFactory struct {
	service    TaskPipelineService
	planner    Planner
	dispatcher Dispatcher
	logger     *slog.Logger
}

// NewWorkflowPlanningTaskFactory validates the dependencies once so that
// job construction at submit time cannot fail on wiring.
func NewWorkflowPlanningTaskFactory(
	service TaskPipelineService,
	planner Planner,
	dispatcher Dispatcher,
	logger *slog.Logger,
) (*WorkflowPlanningTaskFactory, error) {
	if service == nil {
		return nil, errors.New("task pipeline service cannot be nil")
	}
	if planner == nil {
		return nil, errors.New("planner cannot be nil")
	}
	if dispatcher == nil {
		return nil, errors.New("dispatcher cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &WorkflowPlanningTaskFactory{
		service:    service,
		planner:    planner,
		dispatcher: dispatcher,
		logger:     logger,
	}, nil
}

// CreateTask constructs a planning job for the given task ID.
func (f *WorkflowPlanningTaskFactory) CreateTask(taskID int64) (Task, error) {
	return NewWorkflowPlanningTask(taskID, f.service, f.planner, f.dispatcher, f.logger)
}
