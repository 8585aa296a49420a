package gemini

import (
	"io"
	"log/slog"

	"github.com/phrazzld/taskflow-api/internal/config"
)

// plannerConfig aliases the LLM configuration for test readability.
type plannerConfig = config.LLMConfig

// configMutation mutates a valid config to produce an invalid one.
type configMutation func(*plannerConfig)

// validPlannerConfig returns a configuration that passes constructor
// validation.
func validPlannerConfig() plannerConfig {
	return plannerConfig{
		GeminiAPIKey:      "test-api-key",
		MaxAttempts:       3,
		RetryDelaySeconds: 30,
	}
}

// testLogger returns a logger that discards output.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
