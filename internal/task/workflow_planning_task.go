package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/taskflow-api/internal/classify"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/planning"
)

// TaskPipelineService exposes the task mutations the planning pipeline
// needs. Declared here rather than importing the service package so the
// service layer can depend on this package without a cycle.
// Version: 1.0
type TaskPipelineService interface {
	// GetTask retrieves a task by ID without ownership checks.
	GetTask(ctx context.Context, id int64) (*domain.Task, error)

	// MarkInProgress transitions the task to in-progress, clearing any
	// prior result.
	MarkInProgress(ctx context.Context, id int64) error

	// RecordOutcome writes a terminal status, type tag and result payload.
	RecordOutcome(
		ctx context.Context,
		id int64,
		status domain.TaskStatus,
		taskType string,
		result *domain.TaskResult,
	) error
}

// Planner produces a raw LLM decision for a task description.
// Version: 1.0
type Planner interface {
	// PlanWorkflow asks the model to classify the description and, when
	// automatable, synthesize a workflow graph. Returns the raw response text.
	PlanWorkflow(ctx context.Context, description, model string) (string, error)
}

// Dispatcher registers and executes a synthesized workflow on the
// automation engine.
// Version: 1.0
type Dispatcher interface {
	// Dispatch registers the workflow and triggers its execution,
	// returning the engine's workflow identifier.
	Dispatch(ctx context.Context, taskID int64, workflow json.RawMessage) (string, error)
}

// workflowPlanningPayload is the serialized job payload.
type workflowPlanningPayload struct {
	TaskID int64 `json:"task_id"`
}

// WorkflowPlanningTask runs the full planning pipeline for one task:
// mark in-progress, select a model tier, ask the planner for a decision,
// parse it, dispatch automatable workflows, and record the terminal outcome.
type WorkflowPlanningTask struct {
	id         uuid.UUID
	taskID     int64
	service    TaskPipelineService
	planner    Planner
	dispatcher Dispatcher
	logger     *slog.Logger
	payload    []byte
	status     TaskStatus
}

// NewWorkflowPlanningTask creates a pipeline job for the given task ID.
func NewWorkflowPlanningTask(
	taskID int64,
	service TaskPipelineService,
	planner Planner,
	dispatcher Dispatcher,
	logger *slog.Logger,
) (*WorkflowPlanningTask, error) {
	if taskID <= 0 {
		return nil, fmt.Errorf("invalid task ID: %d", taskID)
	}
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

	payload, err := json.Marshal(workflowPlanningPayload{TaskID: taskID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal task payload: %w", err)
	}

	return &WorkflowPlanningTask{
		id:         uuid.New(),
		taskID:     taskID,
		service:    service,
		planner:    planner,
		dispatcher: dispatcher,
		logger:     logger.With("component", "workflow_planning_task"),
		payload:    payload,
		status:     TaskStatusPending,
	}, nil
}

// ID returns the job's unique identifier
func (t *WorkflowPlanningTask) ID() uuid.UUID {
	return t.id
}

// Type returns the job type identifier
func (t *WorkflowPlanningTask) Type() string {
	return TaskTypeWorkflowPlanning
}

// Payload returns the serialized job data
func (t *WorkflowPlanningTask) Payload() []byte {
	return t.payload
}

// Status returns the current job status
func (t *WorkflowPlanningTask) Status() TaskStatus {
	return t.status
}

// Execute runs the planning pipeline. Every run ends with a terminal
// status write for the task; a declined classification is a normal
// outcome, not an error.
func (t *WorkflowPlanningTask) Execute(ctx context.Context) error {
	t.status = TaskStatusProcessing
	logger := t.logger.With("task_id", t.taskID, "job_id", t.id)

	logger.Info("starting workflow planning")

	tsk, err := t.service.GetTask(ctx, t.taskID)
	if err != nil {
		t.status = TaskStatusFailed
		// Best effort: the task may be gone entirely.
		t.recordFailure(ctx, logger, domain.TaskTypeError, "task lookup failed", err)
		return fmt.Errorf("failed to load task %d: %w", t.taskID, err)
	}

	if err := t.service.MarkInProgress(ctx, t.taskID); err != nil {
		t.status = TaskStatusFailed
		t.recordFailure(ctx, logger, domain.TaskTypeProcessingError, "failed to start task processing", err)
		return fmt.Errorf("failed to mark task %d in progress: %w", t.taskID, err)
	}

	selection := classify.Select(tsk.Description)
	logger.Info("selected model tier",
		"tier", selection.Tier,
		"model", selection.Model)

	raw, err := t.planner.PlanWorkflow(ctx, tsk.Description, selection.Model)
	if err != nil {
		t.status = TaskStatusFailed
		t.recordFailure(ctx, logger, domain.TaskTypeProcessingError, "workflow planning failed", err)
		return fmt.Errorf("planning failed for task %d: %w", t.taskID, err)
	}

	decision, err := planning.ParseDecision(raw)
	if err != nil {
		t.status = TaskStatusFailed
		t.recordFailure(ctx, logger, domain.TaskTypeProcessingError, "model returned an invalid decision", err)
		return fmt.Errorf("invalid decision for task %d: %w", t.taskID, err)
	}

	if !decision.Automatable {
		result := &domain.TaskResult{
			Automatable: boolPtr(false),
			Reason:      decision.Reason,
			Provider:    classify.Provider,
			Model:       selection.Model,
			CompletedAt: time.Now().UTC(),
		}
		if err := t.service.RecordOutcome(
			ctx, t.taskID, domain.TaskStatusFailed, domain.TaskTypeNotAutomatable, result,
		); err != nil {
			t.status = TaskStatusFailed
			return fmt.Errorf("failed to record declined outcome for task %d: %w", t.taskID, err)
		}
		t.status = TaskStatusCompleted
		logger.Info("task classified as not automatable", "reason", decision.Reason)
		return nil
	}

	workflowID, err := t.dispatcher.Dispatch(ctx, t.taskID, decision.Workflow)
	if err != nil {
		t.status = TaskStatusFailed
		t.recordFailure(ctx, logger, domain.TaskTypeProcessingError, "workflow dispatch failed", err)
		return fmt.Errorf("dispatch failed for task %d: %w", t.taskID, err)
	}

	result := &domain.TaskResult{
		Automatable: boolPtr(true),
		Workflow:    decision.Workflow,
		Provider:    classify.Provider,
		Model:       selection.Model,
		WorkflowID:  workflowID,
		CompletedAt: time.Now().UTC(),
	}
	if err := t.service.RecordOutcome(
		ctx, t.taskID, domain.TaskStatusCompleted, domain.TaskTypeAutomatable, result,
	); err != nil {
		t.status = TaskStatusFailed
		return fmt.Errorf("failed to record completed outcome for task %d: %w", t.taskID, err)
	}

	t.status = TaskStatusCompleted
	logger.Info("workflow planning completed", "workflow_id", workflowID)
	return nil
}

// recordFailure writes a failed outcome with the error details. A write
// failure here is logged but not returned; the pipeline error that
// triggered the failure takes precedence.
func (t *WorkflowPlanningTask) recordFailure(ctx context.Context, logger *slog.Logger, taskType, message string, cause error) {
	result := &domain.TaskResult{
		Error:       message,
		Trace:       cause.Error(),
		CompletedAt: time.Now().UTC(),
	}
	if err := t.service.RecordOutcome(
		ctx, t.taskID, domain.TaskStatusFailed, taskType, result,
	); err != nil {
		logger.Error("failed to record failure outcome",
			"error", err,
			"original_error", cause)
	}
}

func boolPtr(b bool) *bool {
	return &b
}
