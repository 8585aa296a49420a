package gemini

import "errors"

// ErrEmptyDescription is returned when PlanWorkflow is called with an
// empty task description. Upstream validation should make this
// unreachable in practice.
var ErrEmptyDescription = errors.New("task description cannot be empty")
