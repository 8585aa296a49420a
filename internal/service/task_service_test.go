package service_test

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/events"
	"github.com/phrazzld/taskflow-api/internal/service"
	"github.com/phrazzld/taskflow-api/internal/store"
)

// mockTaskStore is an in-memory store.TaskStore for service tests.
type mockTaskStore struct {
	tasks  map[int64]*domain.Task
	nextID int64

	createErr error
	getErr    error
	updateErr error
	deleteErr error

	updateCalls int
}

func newMockTaskStore() *mockTaskStore {
	return &mockTaskStore{tasks: make(map[int64]*domain.Task), nextID: 1}
}

func (m *mockTaskStore) Create(_ context.Context, task *domain.Task) error {
	if m.createErr != nil {
		return m.createErr
	}
	task.ID = m.nextID
	m.nextID++
	copied := *task
	m.tasks[task.ID] = &copied
	return nil
}

func (m *mockTaskStore) GetByID(_ context.Context, id int64) (*domain.Task, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	task, ok := m.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	copied := *task
	return &copied, nil
}

func (m *mockTaskStore) ListByEmail(_ context.Context, email string) ([]*domain.Task, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	var out []*domain.Task
	for _, task := range m.tasks {
		if task.Email == email {
			copied := *task
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *mockTaskStore) Update(_ context.Context, task *domain.Task) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if err := task.Validate(); err != nil {
		return err
	}
	if _, ok := m.tasks[task.ID]; !ok {
		return store.ErrTaskNotFound
	}
	m.updateCalls++
	copied := *task
	m.tasks[task.ID] = &copied
	return nil
}

func (m *mockTaskStore) UpdateStatus(_ context.Context, id int64, status domain.TaskStatus, taskType string) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	task, ok := m.tasks[id]
	if !ok {
		return store.ErrTaskNotFound
	}
	task.Status = status
	task.Type = taskType
	task.Result = nil
	return nil
}

func (m *mockTaskStore) SetOutcome(_ context.Context, id int64, status domain.TaskStatus, taskType, result string) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	task, ok := m.tasks[id]
	if !ok {
		return store.ErrTaskNotFound
	}
	task.Status = status
	task.Type = taskType
	task.Result = &result
	return nil
}

func (m *mockTaskStore) Delete(_ context.Context, id int64) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.tasks[id]; !ok {
		return store.ErrTaskNotFound
	}
	delete(m.tasks, id)
	return nil
}

func (m *mockTaskStore) FindByStatus(_ context.Context, status domain.TaskStatus) ([]*domain.Task, error) {
	var out []*domain.Task
	for _, task := range m.tasks {
		if task.Status == status {
			copied := *task
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *mockTaskStore) WithTx(_ *sql.Tx) store.TaskStore {
	return m
}

// mockTxManager executes the function directly without a transaction.
type mockTxManager struct {
	err error
}

func (m *mockTxManager) RunInTransaction(ctx context.Context, fn store.TxFn) error {
	if m.err != nil {
		return m.err
	}
	return fn(ctx, nil)
}

// mockEmitter records emitted events.
type mockEmitter struct {
	events []*events.TaskRequestEvent
	err    error
}

func (m *mockEmitter) EmitEvent(_ context.Context, event *events.TaskRequestEvent) error {
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, event)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newService(t *testing.T, taskStore store.TaskStore, emitter events.EventEmitter) service.TaskService {
	t.Helper()

	svc, err := service.NewTaskService(taskStore, &mockTxManager{}, emitter, testLogger())
	require.NoError(t, err)
	return svc
}

func seedTask(t *testing.T, taskStore *mockTaskStore, email string, status domain.TaskStatus) *domain.Task {
	t.Helper()

	task, err := domain.NewTask(email, "sync my calendars every night")
	require.NoError(t, err)
	require.NoError(t, taskStore.Create(context.Background(), task))

	if status != domain.TaskStatusPending {
		taskStore.tasks[task.ID].Status = status
		task.Status = status
	}
	return task
}

func TestCreateTaskPersistsAndEmitsEvent(t *testing.T) {
	t.Parallel()

	taskStore := newMockTaskStore()
	emitter := &mockEmitter{}
	svc := newService(t, taskStore, emitter)

	created, err := svc.CreateTask(context.Background(), "user@example.com", "  forward invoices to accounting  ")
	require.NoError(t, err)

	assert.NotZero(t, created.ID)
	assert.Equal(t, "forward invoices to accounting", created.Description)
	assert.Equal(t, domain.TaskStatusPending, created.Status)
	assert.Equal(t, domain.TaskTypeGeminiProcessing, created.Type)

	require.Len(t, emitter.events, 1)
	assert.Equal(t, events.EventTypeWorkflowPlanning, emitter.events[0].Type)

	var payload struct {
		TaskID int64 `json:"task_id"`
	}
	require.NoError(t, emitter.events[0].UnmarshalPayload(&payload))
	assert.Equal(t, created.ID, payload.TaskID)
}

func TestCreateTaskValidationFailure(t *testing.T) {
	t.Parallel()

	taskStore := newMockTaskStore()
	emitter := &mockEmitter{}
	svc := newService(t, taskStore, emitter)

	_, err := svc.CreateTask(context.Background(), "user@example.com", "ab")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDescriptionTooShort)
	assert.Empty(t, emitter.events, "no event is emitted for invalid tasks")
}

func TestCreateTaskSurvivesEmitterFailure(t *testing.T) {
	t.Parallel()

	taskStore := newMockTaskStore()
	svc := newService(t, taskStore, &mockEmitter{err: errors.New("bus down")})

	created, err := svc.CreateTask(context.Background(), "user@example.com", "sync calendars")
	require.NoError(t, err, "a committed task survives an emit failure; recovery picks it up")
	assert.NotZero(t, created.ID)
}

func TestGetTaskEnforcesOwnership(t *testing.T) {
	t.Parallel()

	taskStore := newMockTaskStore()
	svc := newService(t, taskStore, &mockEmitter{})
	seeded := seedTask(t, taskStore, "owner@example.com", domain.TaskStatusPending)

	got, err := svc.GetTask(context.Background(), seeded.ID, "owner@example.com")
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, got.ID)

	_, err = svc.GetTask(context.Background(), seeded.ID, "intruder@example.com")
	assert.ErrorIs(t, err, service.ErrForbidden)
}

func TestGetTaskNotFound(t *testing.T) {
	t.Parallel()

	svc := newService(t, newMockTaskStore(), &mockEmitter{})

	_, err := svc.GetTask(context.Background(), 999, "user@example.com")
	assert.ErrorIs(t, err, service.ErrTaskNotFound)
}

func TestListTasksReturnsOnlyOwned(t *testing.T) {
	t.Parallel()

	taskStore := newMockTaskStore()
	svc := newService(t, taskStore, &mockEmitter{})
	seedTask(t, taskStore, "owner@example.com", domain.TaskStatusPending)
	seedTask(t, taskStore, "other@example.com", domain.TaskStatusPending)

	tasks, err := svc.ListTasks(context.Background(), "owner@example.com")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "owner@example.com", tasks[0].Email)
}

func TestRetryTaskResetsAndEmits(t *testing.T) {
	t.Parallel()

	taskStore := newMockTaskStore()
	emitter := &mockEmitter{}
	svc := newService(t, taskStore, emitter)

	seeded := seedTask(t, taskStore, "owner@example.com", domain.TaskStatusFailed)
	result := `{"error":"boom"}`
	taskStore.tasks[seeded.ID].Result = &result

	retried, err := svc.RetryTask(context.Background(), seeded.ID, "owner@example.com")
	require.NoError(t, err)

	assert.Equal(t, domain.TaskStatusPending, retried.Status)
	assert.Equal(t, domain.TaskTypeRetry, retried.Type)
	assert.Nil(t, retried.Result)

	stored := taskStore.tasks[seeded.ID]
	assert.Equal(t, domain.TaskStatusPending, stored.Status)
	assert.Nil(t, stored.Result, "retry clears the prior result")
	assert.Equal(t, 1, taskStore.updateCalls, "retry persists the reset as a full-row update")

	require.Len(t, emitter.events, 1)
	assert.Equal(t, events.EventTypeWorkflowPlanning, emitter.events[0].Type)
}

func TestRetryTaskRejectedWhileInProgress(t *testing.T) {
	t.Parallel()

	taskStore := newMockTaskStore()
	emitter := &mockEmitter{}
	svc := newService(t, taskStore, emitter)
	seeded := seedTask(t, taskStore, "owner@example.com", domain.TaskStatusInProgress)

	_, err := svc.RetryTask(context.Background(), seeded.ID, "owner@example.com")
	assert.ErrorIs(t, err, service.ErrTaskInProgress)
	assert.Empty(t, emitter.events)
}

func TestRetryTaskOwnership(t *testing.T) {
	t.Parallel()

	taskStore := newMockTaskStore()
	svc := newService(t, taskStore, &mockEmitter{})
	seeded := seedTask(t, taskStore, "owner@example.com", domain.TaskStatusFailed)

	_, err := svc.RetryTask(context.Background(), seeded.ID, "intruder@example.com")
	assert.ErrorIs(t, err, service.ErrForbidden)
}

func TestDeleteTask(t *testing.T) {
	t.Parallel()

	taskStore := newMockTaskStore()
	svc := newService(t, taskStore, &mockEmitter{})
	seeded := seedTask(t, taskStore, "owner@example.com", domain.TaskStatusPending)

	require.NoError(t, svc.DeleteTask(context.Background(), seeded.ID, "owner@example.com"))

	_, err := svc.GetTask(context.Background(), seeded.ID, "owner@example.com")
	assert.ErrorIs(t, err, service.ErrTaskNotFound)
}

func TestDeleteTaskOwnership(t *testing.T) {
	t.Parallel()

	taskStore := newMockTaskStore()
	svc := newService(t, taskStore, &mockEmitter{})
	seeded := seedTask(t, taskStore, "owner@example.com", domain.TaskStatusPending)

	err := svc.DeleteTask(context.Background(), seeded.ID, "intruder@example.com")
	assert.ErrorIs(t, err, service.ErrForbidden)
	assert.Contains(t, taskStore.tasks, seeded.ID)
}

func TestTaskServiceErrorWrapping(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	err := service.NewTaskServiceError("create task", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "create task")
}
