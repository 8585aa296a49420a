package planning

import (
	"context"
	"encoding/json"
)

// Planner defines the interface for asking a language model whether a
// task is automatable and, if so, for a synthesized workflow graph.
// This interface serves as a boundary between the application core and
// external LLM services.
type Planner interface {
	// PlanWorkflow sends the task description to the model identified by
	// model and returns the raw text response. The response is expected,
	// but not guaranteed, to contain a JSON object matching the decision
	// contract; callers must run it through ParseDecision.
	//
	// Implementations retry transient overload failures internally and
	// return ErrTransientFailure once the retry bound is exhausted.
	PlanWorkflow(ctx context.Context, description, model string) (string, error)
}

// Decision is the validated outcome of a planning request.
type Decision struct {
	// Automatable is the model's judgment that the task can be expressed
	// as an executable workflow graph.
	Automatable bool `json:"automatable"`

	// Workflow is the synthesized workflow graph. Present exactly when
	// Automatable is true. The graph itself is not validated here;
	// malformed graphs surface downstream at the automation engine.
	Workflow json.RawMessage `json:"workflow,omitempty"`

	// Reason is the model's explanation for declining. Present exactly
	// when Automatable is false.
	Reason string `json:"reason,omitempty"`
}
