package task_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskflow-api/internal/task"
)

func TestWorkerPoolProcessesTasks(t *testing.T) {
	t.Parallel()

	queue := task.NewTaskQueue(10, testLogger())
	pool := task.NewWorkerPool(queue, task.WorkerPoolConfig{WorkerCount: 2}, testLogger())

	const jobCount = 5
	var wg sync.WaitGroup
	wg.Add(jobCount)

	var mu sync.Mutex
	executed := 0

	for i := 0; i < jobCount; i++ {
		job := task.NewMockTask(task.TaskTypeWorkflowPlanning)
		job.ExecuteFn = func(_ context.Context) error {
			mu.Lock()
			executed++
			mu.Unlock()
			wg.Done()
			return nil
		}
		require.NoError(t, queue.Enqueue(job))
	}

	pool.Start()
	defer pool.Stop()

	waitWithTimeout(t, &wg, 2*time.Second)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, jobCount, executed)
}

func TestWorkerPoolInvokesErrorHandler(t *testing.T) {
	t.Parallel()

	queue := task.NewTaskQueue(1, testLogger())
	pool := task.NewWorkerPool(queue, task.WorkerPoolConfig{WorkerCount: 1}, testLogger())

	failure := errors.New("pipeline blew up")
	job := task.NewMockTask(task.TaskTypeWorkflowPlanning)
	job.ExecuteFn = func(_ context.Context) error {
		return failure
	}

	var wg sync.WaitGroup
	wg.Add(1)

	var handledErr error
	pool.SetErrorHandler(func(_ task.Task, err error) {
		handledErr = err
		wg.Done()
	})

	require.NoError(t, queue.Enqueue(job))

	pool.Start()
	defer pool.Stop()

	waitWithTimeout(t, &wg, 2*time.Second)
	assert.ErrorIs(t, handledErr, failure)
}

func TestWorkerPoolStopWaitsForInFlightTask(t *testing.T) {
	t.Parallel()

	queue := task.NewTaskQueue(1, testLogger())
	pool := task.NewWorkerPool(queue, task.WorkerPoolConfig{WorkerCount: 1}, testLogger())

	started := make(chan struct{})
	var mu sync.Mutex
	finished := false

	job := task.NewMockTask(task.TaskTypeWorkflowPlanning)
	job.ExecuteFn = func(_ context.Context) error {
		close(started)
		time.Sleep(50 * time.Millisecond)
		mu.Lock()
		finished = true
		mu.Unlock()
		return nil
	}

	require.NoError(t, queue.Enqueue(job))
	pool.Start()

	<-started
	pool.Stop()

	mu.Lock()
	defer mu.Unlock()
	assert.True(t, finished, "Stop returns only after the in-flight job completes")
}

func TestDefaultWorkerPoolConfig(t *testing.T) {
	t.Parallel()

	config := task.DefaultWorkerPoolConfig()
	assert.Equal(t, 2, config.WorkerCount)
}

func TestWorkerPoolDefaultsInvalidWorkerCount(t *testing.T) {
	t.Parallel()

	queue := task.NewTaskQueue(1, testLogger())
	pool := task.NewWorkerPool(queue, task.WorkerPoolConfig{WorkerCount: -3}, testLogger())

	var wg sync.WaitGroup
	wg.Add(1)

	job := task.NewMockTask(task.TaskTypeWorkflowPlanning)
	job.ExecuteFn = func(_ context.Context) error {
		wg.Done()
		return nil
	}
	require.NoError(t, queue.Enqueue(job))

	pool.Start()
	defer pool.Stop()

	waitWithTimeout(t, &wg, 2*time.Second)
}

func waitWithTimeout(t *testing.T, wg *sync.WaitGroup, timeout time.Duration) {
	t.Helper()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
		t.Fatal("timed out waiting for workers")
	}
}
