package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/taskflow-api/internal/config"
	"github.com/phrazzld/taskflow-api/internal/events"
	"github.com/phrazzld/taskflow-api/internal/platform/gemini"
	"github.com/phrazzld/taskflow-api/internal/platform/n8n"
	"github.com/phrazzld/taskflow-api/internal/platform/postgres"
	"github.com/phrazzld/taskflow-api/internal/service"
	"github.com/phrazzld/taskflow-api/internal/store"
	"github.com/phrazzld/taskflow-api/internal/task"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	taskStore store.TaskStore

	taskService service.TaskService

	eventEmitter events.EventEmitter

	taskRunner *task.Runner
}

// newApplication creates a new application instance with all dependencies
// initialized and the background runner started.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	app.taskStore = postgres.NewPostgresTaskStore(db, logger)

	planner, err := gemini.NewGeminiPlanner(ctx, logger, cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize workflow planner: %w", err)
	}
	logger.Info("Workflow planner initialized")

	dispatcher := n8n.NewClient(cfg.Engine, logger)

	pipeline, err := service.NewTaskPipeline(app.taskStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create task pipeline: %w", err)
	}

	taskFactory, err := task.NewWorkflowPlanningTaskFactory(pipeline, planner, dispatcher, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create task factory: %w", err)
	}

	app.taskRunner, err = task.NewRunner(task.RunnerConfig{
		QueueSize:   cfg.Worker.QueueSize,
		WorkerCount: cfg.Worker.Count,
	}, app.taskStore, taskFactory, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create task runner: %w", err)
	}

	emitter := events.NewInMemoryEventEmitter(logger)
	app.eventEmitter = emitter

	eventHandler, err := task.NewTaskRequestEventHandler(taskFactory, app.taskRunner, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create event handler: %w", err)
	}
	emitter.RegisterHandler(eventHandler)

	app.taskService, err = service.NewTaskService(
		app.taskStore,
		store.NewSQLTransactionManager(db),
		app.eventEmitter,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}

	// Start the runner last: recovery enqueues jobs that use the fully
	// wired pipeline dependencies.
	if err := app.taskRunner.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start task runner: %w", err)
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.taskRunner != nil {
		app.taskRunner.Stop()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
