package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// TaskStatus represents the processing state of a task.
type TaskStatus string

// Possible task status values
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in-progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// Task type tags describing the outcome category of a pipeline run.
const (
	TaskTypeGeminiProcessing = "gemini_processing"
	TaskTypeAutomatable      = "automatable"
	TaskTypeNotAutomatable   = "not_automatable"
	TaskTypeProcessingError  = "processing_error"
	TaskTypeRetry            = "retry"
	TaskTypeError            = "error"
)

// MinDescriptionLength is the minimum trimmed length of a task description.
const MinDescriptionLength = 3

// Task represents a user-submitted automation request tracked
// through a status lifecycle. The description is sent to an LLM
// for classification and, when automatable, workflow synthesis.
type Task struct {
	ID          int64      `json:"id"`
	Email       string     `json:"email"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
	Result      *string    `json:"result,omitempty"`
	Type        string     `json:"type"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewTask creates a new Task owned by the given email with pending status.
// The description is trimmed before validation. The ID is assigned by the
// store at creation time.
// Returns an error if validation fails.
func NewTask(email, description string) (*Task, error) {
	task := &Task{
		Email:       email,
		Description: strings.TrimSpace(description),
		Status:      TaskStatusPending,
		Type:        TaskTypeGeminiProcessing,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.Email == "" {
		return ErrEmptyTaskEmail
	}

	if len(strings.TrimSpace(t.Description)) < MinDescriptionLength {
		return ErrDescriptionTooShort
	}

	if !isValidTaskStatus(t.Status) {
		return ErrInvalidTaskStatus
	}

	// Result must be set exactly on terminal states.
	if t.IsTerminal() != (t.Result != nil) {
		return ErrResultStatusMismatch
	}

	return nil
}

// IsTerminal reports whether the task has reached a terminal status.
func (t *Task) IsTerminal() bool {
	return t.Status == TaskStatusCompleted || t.Status == TaskStatusFailed
}

// IsOwnedBy reports whether the task belongs to the given email.
func (t *Task) IsOwnedBy(email string) bool {
	return t.Email == email
}

// ResetForRetry returns the task to the pending state, clearing any
// prior result so a fresh pipeline run starts from scratch.
func (t *Task) ResetForRetry() {
	t.Status = TaskStatusPending
	t.Result = nil
	t.Type = TaskTypeRetry
	t.UpdatedAt = time.Now().UTC()
}

// isValidTaskStatus checks if the given status is a valid TaskStatus.
func isValidTaskStatus(status TaskStatus) bool {
	switch status {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusFailed:
		return true
	default:
		return false
	}
}

// TaskResult is the structured payload recorded when a pipeline run
// reaches a terminal state. Only the fields relevant to the outcome
// case are populated.
type TaskResult struct {
	// Automatable mirrors the LLM's classification decision.
	Automatable *bool `json:"automatable,omitempty"`

	// Workflow is the synthesized workflow graph, passed through
	// unchanged from the validated LLM decision.
	Workflow json.RawMessage `json:"workflow,omitempty"`

	// Reason is the LLM's stated reason when the task is not automatable.
	Reason string `json:"reason,omitempty"`

	// Provider and Model identify which LLM produced the decision.
	Provider string `json:"provider,omitempty"`
	Model    string `json:"model,omitempty"`

	// WorkflowID is the automation engine's identifier for the
	// registered workflow, set on successful dispatch.
	WorkflowID string `json:"workflow_id,omitempty"`

	// Error and Trace describe a pipeline failure.
	Error string `json:"error,omitempty"`
	Trace string `json:"trace,omitempty"`

	// CompletedAt is when the pipeline run reached its terminal state.
	CompletedAt time.Time `json:"completed_at"`
}

// Encode serializes the result payload to its stored JSON form.
func (r *TaskResult) Encode() (string, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeTaskResult parses a stored result payload.
func DecodeTaskResult(raw string) (*TaskResult, error) {
	var result TaskResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, err
	}
	return &result, nil
}
