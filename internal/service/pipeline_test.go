package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/service"
)

func TestPipelineGetTask(t *testing.T) {
	t.Parallel()

	taskStore := newMockTaskStore()
	pipeline, err := service.NewTaskPipeline(taskStore, testLogger())
	require.NoError(t, err)

	seeded := seedTask(t, taskStore, "owner@example.com", domain.TaskStatusPending)

	got, err := pipeline.GetTask(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, got.ID)

	_, err = pipeline.GetTask(context.Background(), 999)
	assert.ErrorIs(t, err, service.ErrTaskNotFound)
}

func TestPipelineMarkInProgressClearsResult(t *testing.T) {
	t.Parallel()

	taskStore := newMockTaskStore()
	pipeline, err := service.NewTaskPipeline(taskStore, testLogger())
	require.NoError(t, err)

	seeded := seedTask(t, taskStore, "owner@example.com", domain.TaskStatusFailed)
	stale := `{"error":"old failure"}`
	taskStore.tasks[seeded.ID].Result = &stale

	require.NoError(t, pipeline.MarkInProgress(context.Background(), seeded.ID))

	stored := taskStore.tasks[seeded.ID]
	assert.Equal(t, domain.TaskStatusInProgress, stored.Status)
	assert.Equal(t, domain.TaskTypeGeminiProcessing, stored.Type)
	assert.Nil(t, stored.Result)
}

func TestPipelineRecordOutcome(t *testing.T) {
	t.Parallel()

	taskStore := newMockTaskStore()
	pipeline, err := service.NewTaskPipeline(taskStore, testLogger())
	require.NoError(t, err)

	seeded := seedTask(t, taskStore, "owner@example.com", domain.TaskStatusInProgress)

	automatable := true
	result := &domain.TaskResult{
		Automatable: &automatable,
		Workflow:    []byte(`{"nodes":[]}`),
		Provider:    "gemini",
		Model:       "gemini-2.5-flash",
		WorkflowID:  "wf-1",
		CompletedAt: time.Now().UTC(),
	}

	require.NoError(t, pipeline.RecordOutcome(
		context.Background(), seeded.ID, domain.TaskStatusCompleted, domain.TaskTypeAutomatable, result,
	))

	stored := taskStore.tasks[seeded.ID]
	assert.Equal(t, domain.TaskStatusCompleted, stored.Status)
	assert.Equal(t, domain.TaskTypeAutomatable, stored.Type)
	require.NotNil(t, stored.Result)

	decoded, err := domain.DecodeTaskResult(*stored.Result)
	require.NoError(t, err)
	assert.Equal(t, "wf-1", decoded.WorkflowID)
	require.NotNil(t, decoded.Automatable)
	assert.True(t, *decoded.Automatable)
}

func TestPipelineRecordOutcomeNilResult(t *testing.T) {
	t.Parallel()

	pipeline, err := service.NewTaskPipeline(newMockTaskStore(), testLogger())
	require.NoError(t, err)

	err = pipeline.RecordOutcome(context.Background(), 1, domain.TaskStatusFailed, domain.TaskTypeProcessingError, nil)
	assert.Error(t, err)
}
