package task

import (
	"context"

	"github.com/google/uuid"
)

// MockTask is a configurable Task implementation for tests and local
// wiring checks.
type MockTask struct {
	IDValue      uuid.UUID
	TypeValue    string
	PayloadValue []byte
	StatusValue  TaskStatus
	ExecuteFn    func(ctx context.Context) error
}

// NewMockTask creates a mock task with a fresh ID and the given type.
func NewMockTask(taskType string) *MockTask {
	return &MockTask{
		IDValue:     uuid.New(),
		TypeValue:   taskType,
		StatusValue: TaskStatusPending,
	}
}

// ID returns the mock's identifier
func (m *MockTask) ID() uuid.UUID {
	return m.IDValue
}

// Type returns the mock's type string
func (m *MockTask) Type() string {
	return m.TypeValue
}

// Payload returns the mock's payload bytes
func (m *MockTask) Payload() []byte {
	return m.PayloadValue
}

// Status returns the mock's status
func (m *MockTask) Status() TaskStatus {
	return m.StatusValue
}

// Execute calls ExecuteFn when set, otherwise succeeds immediately.
func (m *MockTask) Execute(ctx context.Context) error {
	if m.ExecuteFn != nil {
		return m.ExecuteFn(ctx)
	}
	return nil
}
