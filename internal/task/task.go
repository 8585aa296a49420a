package task

import (
	"context"

	"github.com/google/uuid"
)

// TaskStatus represents the current state of a pipeline job.
// This is the in-memory job lifecycle, distinct from the persisted
// domain.TaskStatus the job mutates.
type TaskStatus string

// Possible job status values
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// Task type constants
const (
	// TaskTypeWorkflowPlanning represents the job type for running the
	// planning pipeline over a submitted task.
	TaskTypeWorkflowPlanning = "workflow_planning"
)

// Task represents a unit of background work to be processed
// Version: 1.0
type Task interface {
	// ID returns the job's unique identifier
	ID() uuid.UUID

	// Type returns the job type identifier
	Type() string

	// Payload returns the job data as a byte slice
	Payload() []byte

	// Status returns the current job status
	Status() TaskStatus

	// Execute runs the job logic
	Execute(ctx context.Context) error
}

// TaskQueueReader provides read-only access to the task channel
// allowing workers to consume jobs without the ability to enqueue
// Version: 1.0
type TaskQueueReader interface {
	// GetChannel returns a read-only channel for consuming jobs
	GetChannel() <-chan Task
}

// TaskQueueWriter provides write access to the task queue
// allowing services to enqueue jobs for processing
// Version: 1.0
type TaskQueueWriter interface {
	// Enqueue adds a job to the queue for processing
	// Returns an error if the queue is full or closed
	Enqueue(task Task) error

	// Close closes the task queue, preventing further job submission
	Close()
}
