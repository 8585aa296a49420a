package n8n

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/go-resty/resty/v2"

	"github.com/phrazzld/taskflow-api/internal/config"
	"github.com/phrazzld/taskflow-api/internal/dispatch"
)

// apiKeyHeader is the header n8n expects the API credential in.
const apiKeyHeader = "X-N8N-API-KEY"

// Client implements the dispatch.Dispatcher interface against an
// n8n-compatible automation engine REST API.
type Client struct {
	http   *resty.Client
	apiKey string
	logger *slog.Logger
}

// NewClient creates a workflow engine client from the engine configuration.
// The API key is carried on the client; its absence is only rejected at
// dispatch time so the service can start without engine credentials and
// fail the affected pipeline runs instead.
func NewClient(cfg config.EngineConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	http := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetHeader("Content-Type", "application/json")
	if cfg.APIKey != "" {
		http.SetHeader(apiKeyHeader, cfg.APIKey)
	}

	return &Client{
		http:   http,
		apiKey: cfg.APIKey,
		logger: logger.With(slog.String("component", "n8n_client")),
	}
}

// Ensure Client implements dispatch.Dispatcher
var _ dispatch.Dispatcher = (*Client)(nil)

// createWorkflowRequest is the body of the workflow creation call.
type createWorkflowRequest struct {
	Workflow json.RawMessage `json:"workflow"`
	Active   bool            `json:"active"`
}

// createWorkflowResponse carries the identifier the engine assigned.
type createWorkflowResponse struct {
	ID string `json:"id"`
}

// executeWorkflowResponse acknowledges an execution trigger.
type executeWorkflowResponse struct {
	ExecutionID string `json:"executionId"`
}

// engineError is the error body the engine returns on failures.
type engineError struct {
	Message string `json:"message"`
}

// Dispatch implements dispatch.Dispatcher.Dispatch.
// It registers the workflow marked active, then triggers its execution.
// Any HTTP-level failure in either step aborts the dispatch and wraps the
// underlying cause; a workflow left registered but not executed is an
// accepted inconsistency.
func (c *Client) Dispatch(
	ctx context.Context,
	taskID int64,
	workflow json.RawMessage,
) (string, error) {
	if c.apiKey == "" {
		return "", dispatch.ErrMissingCredential
	}

	log := c.logger.With(slog.Int64("task_id", taskID))

	workflowID, err := c.createWorkflow(ctx, workflow)
	if err != nil {
		log.Error("failed to register workflow on engine",
			slog.String("error", err.Error()))
		return "", err
	}

	log.Info("workflow registered on engine",
		slog.String("workflow_id", workflowID))

	if err := c.executeWorkflow(ctx, workflowID); err != nil {
		log.Error("failed to execute registered workflow",
			slog.String("workflow_id", workflowID),
			slog.String("error", err.Error()))
		return "", err
	}

	log.Info("workflow executed on engine",
		slog.String("workflow_id", workflowID))
	return workflowID, nil
}

// createWorkflow submits the workflow to the engine's creation endpoint.
func (c *Client) createWorkflow(ctx context.Context, workflow json.RawMessage) (string, error) {
	var created createWorkflowResponse
	var engineErr engineError

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(createWorkflowRequest{Workflow: workflow, Active: true}).
		SetResult(&created).
		SetError(&engineErr).
		Post("/api/v1/workflows")
	if err != nil {
		return "", fmt.Errorf("%w: create workflow: %v", dispatch.ErrDispatchFailed, err)
	}

	if resp.IsError() {
		return "", fmt.Errorf("%w: create workflow returned %d: %s",
			dispatch.ErrDispatchFailed, resp.StatusCode(), engineErr.Message)
	}

	if created.ID == "" {
		return "", fmt.Errorf("%w: create workflow response missing id",
			dispatch.ErrDispatchFailed)
	}

	return created.ID, nil
}

// executeWorkflow triggers the engine's execute endpoint for the workflow.
func (c *Client) executeWorkflow(ctx context.Context, workflowID string) error {
	var executed executeWorkflowResponse
	var engineErr engineError

	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&executed).
		SetError(&engineErr).
		Post(fmt.Sprintf("/api/v1/workflows/%s/execute", workflowID))
	if err != nil {
		return fmt.Errorf("%w: execute workflow: %v", dispatch.ErrDispatchFailed, err)
	}

	if resp.IsError() {
		return fmt.Errorf("%w: execute workflow returned %d: %s",
			dispatch.ErrDispatchFailed, resp.StatusCode(), engineErr.Message)
	}

	return nil
}
