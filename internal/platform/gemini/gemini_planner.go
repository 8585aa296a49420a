package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"google.golang.org/genai"

	"github.com/phrazzld/taskflow-api/internal/config"
	"github.com/phrazzld/taskflow-api/internal/planning"
)

// GeminiPlanner implements the planning.Planner interface using
// Google's Gemini API to classify tasks and synthesize workflow graphs.
type GeminiPlanner struct {
	// logger is used for structured logging
	logger *slog.Logger

	// config contains LLM-specific configuration
	config config.LLMConfig

	// client is the Gemini API client for making requests
	client *genai.Client
}

// NewGeminiPlanner creates a new GeminiPlanner with the provided dependencies.
// The API credential is taken from the passed configuration; there is no
// process-wide client state.
func NewGeminiPlanner(
	ctx context.Context,
	logger *slog.Logger,
	cfg config.LLMConfig,
) (*GeminiPlanner, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", planning.ErrInvalidConfig)
	}

	if cfg.MaxAttempts < 1 {
		return nil, fmt.Errorf("%w: max attempts must be at least 1", planning.ErrInvalidConfig)
	}

	if cfg.RetryDelaySeconds < 1 {
		return nil, fmt.Errorf("%w: retry delay must be at least 1s", planning.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v",
			planning.ErrInvalidConfig, err)
	}

	return &GeminiPlanner{
		logger: logger.With(slog.String("component", "gemini_planner")),
		config: cfg,
		client: client,
	}, nil
}

// Ensure GeminiPlanner implements planning.Planner
var _ planning.Planner = (*GeminiPlanner)(nil)

// PlanWorkflow implements planning.Planner.PlanWorkflow.
// It sends the fixed instruction block plus the task description to the
// given model and returns the raw text response. Retryable overload
// failures are retried up to the configured attempt bound with a fixed
// inter-attempt delay; any other failure is permanent immediately.
func (p *GeminiPlanner) PlanWorkflow(
	ctx context.Context,
	description, model string,
) (string, error) {
	if strings.TrimSpace(description) == "" {
		return "", ErrEmptyDescription
	}

	prompt := buildPrompt(description)
	delay := time.Duration(p.config.RetryDelaySeconds) * time.Second

	attempt := 0
	raw, err := planWithRetry(uint(p.config.MaxAttempts), delay, func() (string, error) {
		attempt++
		p.logger.InfoContext(ctx, "making Gemini API call",
			slog.String("model", model),
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", p.config.MaxAttempts))
		return p.generate(ctx, model, prompt)
	})
	if err != nil {
		p.logger.ErrorContext(ctx, "Gemini API call failed",
			slog.String("model", model),
			slog.Int("attempts", attempt),
			slog.String("error", err.Error()))
		return "", err
	}

	p.logger.InfoContext(ctx, "Gemini API call successful",
		slog.String("model", model),
		slog.Int("attempts", attempt),
		slog.Int("response_length", len(raw)))
	return raw, nil
}

// generate performs a single Gemini API call and classifies its failures
// into the planning error taxonomy.
func (p *GeminiPlanner) generate(ctx context.Context, model, prompt string) (string, error) {
	resp, err := p.client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
	if err != nil {
		if isOverloaded(err) {
			return "", fmt.Errorf("%w: model overloaded: %v", planning.ErrTransientFailure, err)
		}
		return "", fmt.Errorf("%w: %v", planning.ErrPlanningFailed, err)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no content generated", planning.ErrInvalidResponse)
	}

	if resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
		return "", fmt.Errorf("%w: finish reason safety", planning.ErrContentBlocked)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("%w: empty text in response", planning.ErrInvalidResponse)
	}

	return text, nil
}

// planWithRetry runs call up to attempts times with a fixed delay between
// attempts, retrying only transient failures. The last error is returned
// once the bound is exhausted.
func planWithRetry(
	attempts uint,
	delay time.Duration,
	call func() (string, error),
) (string, error) {
	var raw string
	err := retry.Do(
		func() error {
			text, err := call()
			if err != nil {
				return err
			}
			raw = text
			return nil
		},
		retry.Attempts(attempts),
		retry.Delay(delay),
		retry.DelayType(retry.FixedDelay),
		retry.RetryIf(isRetryable),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return "", err
	}
	return raw, nil
}

// isRetryable reports whether the error is a transient failure worth
// another attempt.
func isRetryable(err error) bool {
	return errors.Is(err, planning.ErrTransientFailure)
}

// isOverloaded reports whether the API error represents a retryable
// server-side overload condition.
func isOverloaded(err error) bool {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.Code {
	case 429, 500, 503:
		return true
	default:
		return false
	}
}
