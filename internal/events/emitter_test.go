package events_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskflow-api/internal/events"
)

// recordingHandler records the events it receives and returns a fixed error.
type recordingHandler struct {
	received []*events.TaskRequestEvent
	err      error
}

func (h *recordingHandler) HandleEvent(_ context.Context, event *events.TaskRequestEvent) error {
	h.received = append(h.received, event)
	return h.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewTaskRequestEvent(t *testing.T) {
	t.Parallel()

	payload := struct {
		TaskID int64 `json:"task_id"`
	}{TaskID: 17}

	event, err := events.NewTaskRequestEvent(events.EventTypeWorkflowPlanning, payload)

	require.NoError(t, err)
	assert.Equal(t, events.EventTypeWorkflowPlanning, event.Type)
	assert.NotZero(t, event.ID)
	assert.False(t, event.CreatedAt.IsZero())

	var decoded struct {
		TaskID int64 `json:"task_id"`
	}
	require.NoError(t, event.UnmarshalPayload(&decoded))
	assert.Equal(t, int64(17), decoded.TaskID)
}

func TestEmitEventDeliversToAllHandlers(t *testing.T) {
	t.Parallel()

	emitter := events.NewInMemoryEventEmitter(testLogger())
	first := &recordingHandler{}
	second := &recordingHandler{}
	emitter.RegisterHandler(first)
	emitter.RegisterHandler(second)

	event, err := events.NewTaskRequestEvent(events.EventTypeWorkflowPlanning, map[string]int64{"task_id": 1})
	require.NoError(t, err)

	require.NoError(t, emitter.EmitEvent(context.Background(), event))
	assert.Len(t, first.received, 1)
	assert.Len(t, second.received, 1)
}

func TestEmitEventNoHandlers(t *testing.T) {
	t.Parallel()

	emitter := events.NewInMemoryEventEmitter(testLogger())

	event, err := events.NewTaskRequestEvent(events.EventTypeWorkflowPlanning, map[string]int64{"task_id": 1})
	require.NoError(t, err)

	assert.NoError(t, emitter.EmitEvent(context.Background(), event))
}

func TestEmitEventRejectsNilEvent(t *testing.T) {
	t.Parallel()

	emitter := events.NewInMemoryEventEmitter(testLogger())
	handler := &recordingHandler{}
	emitter.RegisterHandler(handler)

	assert.Error(t, emitter.EmitEvent(context.Background(), nil))
	assert.Empty(t, handler.received)
}

func TestEmitEventReturnsFirstErrorButDeliversToAll(t *testing.T) {
	t.Parallel()

	emitter := events.NewInMemoryEventEmitter(testLogger())
	failure := errors.New("handler exploded")
	failing := &recordingHandler{err: failure}
	trailing := &recordingHandler{}
	emitter.RegisterHandler(failing)
	emitter.RegisterHandler(trailing)

	event, err := events.NewTaskRequestEvent(events.EventTypeWorkflowPlanning, map[string]int64{"task_id": 1})
	require.NoError(t, err)

	err = emitter.EmitEvent(context.Background(), event)
	assert.ErrorIs(t, err, failure)
	assert.Len(t, trailing.received, 1, "later handlers still receive the event")
}
